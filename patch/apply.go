package patch

import (
	"errors"
	"fmt"

	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/internal/core"
)

var (
	// ErrTestFailed is returned when a test operation does not hold.
	ErrTestFailed = errors.New("test operation failed")
	// ErrPathNotFound is returned when an operation targets a missing value.
	ErrPathNotFound = errors.New("path not found")
	// ErrInvalidIndex is returned for array indices that are malformed or out
	// of bounds.
	ErrInvalidIndex = errors.New("invalid array index")
	// ErrUnsupportedOp is returned for operation types other than add,
	// remove, replace and test.
	ErrUnsupportedOp = errors.New("unsupported operation")
)

// Apply applies the patch to doc and returns the result. doc itself is never
// modified: containers along each operation path are copied, everything else
// is shared with doc.
func Apply(doc document.Value, p Patch) (document.Value, error) {
	for i, op := range p {
		var err error
		doc, err = applyOperation(doc, op)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s %s): %w", i, op.Op, displayPath(op.Path), err)
		}
	}
	return doc, nil
}

// MustApply is like Apply but panics on error.
func MustApply(doc document.Value, p Patch) document.Value {
	out, err := Apply(doc, p)
	if err != nil {
		panic(err)
	}
	return out
}

// Get returns the value at path in doc.
func Get(doc document.Value, path string) (document.Value, bool) {
	parts, err := core.ParsePath(path)
	if err != nil {
		return nil, false
	}
	v, err := resolve(doc, parts)
	return v, err == nil
}

func applyOperation(doc document.Value, op Operation) (document.Value, error) {
	parts, err := core.ParsePath(op.Path)
	if err != nil {
		return nil, err
	}

	switch op.Op {
	case OperationTypeTest:
		got, err := resolve(doc, parts)
		if err != nil {
			return nil, err
		}
		if !document.Equal(got, op.Value) {
			return nil, ErrTestFailed
		}
		return doc, nil
	case OperationTypeAdd, OperationTypeReplace, OperationTypeRemove:
		if op.Op != OperationTypeRemove && op.Value == nil {
			return nil, fmt.Errorf("missing value")
		}
		return modify(doc, parts, op)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, op.Op)
	}
}

func resolve(v document.Value, parts []core.PathPart) (document.Value, error) {
	for _, part := range parts {
		switch tv := v.(type) {
		case *document.Object:
			child, ok := tv.Get(part.Key)
			if !ok {
				return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, part.Key)
			}
			v = child
		case document.Array:
			if !part.IsIndex || part.Index >= len(tv) {
				return nil, fmt.Errorf("%w: %q (length %d)", ErrInvalidIndex, part.Key, len(tv))
			}
			v = tv[part.Index]
		default:
			return nil, fmt.Errorf("%w: cannot traverse %q", ErrPathNotFound, part.Key)
		}
	}
	if v == nil {
		return nil, ErrPathNotFound
	}
	return v, nil
}

// modify returns node with op applied at parts, copying every container on
// the way down.
func modify(node document.Value, parts []core.PathPart, op Operation) (document.Value, error) {
	if len(parts) == 0 {
		switch op.Op {
		case OperationTypeAdd:
			return op.Value, nil
		case OperationTypeReplace:
			if node == nil {
				return nil, ErrPathNotFound
			}
			return op.Value, nil
		default:
			return nil, fmt.Errorf("cannot remove the document root")
		}
	}

	part := parts[0]
	last := len(parts) == 1

	switch tv := node.(type) {
	case *document.Object:
		child, ok := tv.Get(part.Key)
		if !last {
			if !ok {
				return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, part.Key)
			}
			newChild, err := modify(child, parts[1:], op)
			if err != nil {
				return nil, err
			}
			return tv.With(part.Key, newChild), nil
		}

		switch op.Op {
		case OperationTypeAdd:
			return tv.With(part.Key, op.Value), nil
		case OperationTypeReplace:
			if !ok {
				return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, part.Key)
			}
			return tv.With(part.Key, op.Value), nil
		default:
			if !ok {
				return nil, fmt.Errorf("%w: member %q", ErrPathNotFound, part.Key)
			}
			return tv.Without(part.Key), nil
		}

	case document.Array:
		if last && op.Op == OperationTypeAdd && part.IsAppend() {
			out := make(document.Array, len(tv), len(tv)+1)
			copy(out, tv)
			return append(out, op.Value), nil
		}

		limit := len(tv)
		if last && op.Op == OperationTypeAdd {
			// Inserting at len is the same as appending.
			limit++
		}
		if !part.IsIndex || part.Index >= limit {
			return nil, fmt.Errorf("%w: %q (length %d)", ErrInvalidIndex, part.Key, len(tv))
		}
		idx := part.Index

		if !last {
			newChild, err := modify(tv[idx], parts[1:], op)
			if err != nil {
				return nil, err
			}
			out := make(document.Array, len(tv))
			copy(out, tv)
			out[idx] = newChild
			return out, nil
		}

		switch op.Op {
		case OperationTypeAdd:
			out := make(document.Array, 0, len(tv)+1)
			out = append(out, tv[:idx]...)
			out = append(out, op.Value)
			return append(out, tv[idx:]...), nil
		case OperationTypeReplace:
			out := make(document.Array, len(tv))
			copy(out, tv)
			out[idx] = op.Value
			return out, nil
		default:
			out := make(document.Array, 0, len(tv)-1)
			out = append(out, tv[:idx]...)
			return append(out, tv[idx+1:]...), nil
		}
	}

	return nil, fmt.Errorf("%w: cannot traverse %q", ErrPathNotFound, part.Key)
}
