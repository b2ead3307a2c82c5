// Package patch implements JSON Patch (RFC 6902) operation lists over
// documents: building, encoding and applying them.
package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Altinn/formpatch/document"
)

// Patch is a slice of Operations that represents a patch. Operations are
// applied in order, each one to the result of the previous.
type Patch []Operation

// New creates a new empty Patch.
func New() Patch {
	return Patch{}
}

// Parse decodes a JSON encoded patch.
func Parse(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	if p == nil {
		p = New()
	}
	return p, nil
}

// Add creates a new operation to add a value at the specified path.
func (p Patch) Add(path string, value document.Value) Patch {
	return append(p, Operation{
		Op:    OperationTypeAdd,
		Path:  path,
		Value: value,
	})
}

// Remove creates a new operation to remove the value at the specified path.
func (p Patch) Remove(path string) Patch {
	return append(p, Operation{
		Op:   OperationTypeRemove,
		Path: path,
	})
}

// Replace creates a new operation to replace the value at the specified path.
func (p Patch) Replace(path string, value document.Value) Patch {
	return append(p, Operation{
		Op:    OperationTypeReplace,
		Path:  path,
		Value: value,
	})
}

// Test creates a new operation to test the value at the specified path.
func (p Patch) Test(path string, value document.Value) Patch {
	return append(p, Operation{
		Op:    OperationTypeTest,
		Path:  path,
		Value: value,
	})
}

// MarshalJSON encodes the patch. An empty or nil patch is encoded as [].
func (p Patch) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Operation(p))
}

// String returns one line per operation.
func (p Patch) String() string {
	lines := make([]string, len(p))
	for i, op := range p {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}
