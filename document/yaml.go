package document

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// ParseYAML decodes a YAML document. Mapping order is preserved. Since JSON
// is a subset of YAML, it also accepts JSON input.
func ParseYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("decode yaml document: %w", err)
	}
	v, err := FromNative(raw)
	if err != nil {
		return nil, fmt.Errorf("decode yaml document: %w", err)
	}
	return v, nil
}
