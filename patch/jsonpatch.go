package patch

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyJSON applies the patch to a JSON encoded document using a standard
// RFC 6902 implementation and returns the resulting JSON.
func ApplyJSON(doc []byte, p Patch) ([]byte, error) {
	if len(p) == 0 {
		return doc, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	ops, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	out, err := ops.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}

// EqualJSON reports whether two JSON documents are semantically equal.
func EqualJSON(a, b []byte) bool {
	return jsonpatch.Equal(a, b)
}
