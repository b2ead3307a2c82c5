package patch

import (
	"encoding/json"
	"fmt"

	"github.com/Altinn/formpatch/document"
)

// OperationType defines the allowed JSON Patch operation types.
type OperationType string

const (
	OperationTypeAdd     OperationType = "add"
	OperationTypeRemove  OperationType = "remove"
	OperationTypeReplace OperationType = "replace"
	OperationTypeTest    OperationType = "test"
)

func (t OperationType) valid() bool {
	switch t {
	case OperationTypeAdd, OperationTypeRemove, OperationTypeReplace, OperationTypeTest:
		return true
	}
	return false
}

// Operation represents a single operation in a Patch.
type Operation struct {
	Op    OperationType  `json:"op"`
	Path  string         `json:"path"`
	Value document.Value `json:"value,omitempty"` // Used for "add", "replace", "test"
}

func (o Operation) String() string {
	if o.Op == OperationTypeRemove {
		return fmt.Sprintf("%s %s", o.Op, displayPath(o.Path))
	}
	data, err := json.Marshal(o.Value)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", o.Value))
	}
	return fmt.Sprintf("%s %s %s", o.Op, displayPath(o.Path), data)
}

func displayPath(path string) string {
	if path == "" {
		return `""`
	}
	return path
}

// UnmarshalJSON decodes an operation, keeping a JSON null value distinct from
// a missing one.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var aux struct {
		Op    OperationType   `json:"op"`
		Path  *string         `json:"path"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Op.valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedOp, aux.Op)
	}
	if aux.Path == nil {
		return fmt.Errorf("operation %s: missing path", aux.Op)
	}

	*o = Operation{Op: aux.Op, Path: *aux.Path}
	if len(aux.Value) > 0 {
		v, err := document.ParseJSON(aux.Value)
		if err != nil {
			return fmt.Errorf("operation %s %s: %w", aux.Op, *aux.Path, err)
		}
		o.Value = v
	}
	if o.Value == nil && o.Op != OperationTypeRemove {
		return fmt.Errorf("operation %s %s: missing value", o.Op, o.Path)
	}
	return nil
}
