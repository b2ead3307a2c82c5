package document

import (
	"github.com/huandu/go-clone"
)

// Clone returns a deep copy of v that shares no mutable state with it.
func Clone(v Value) Value {
	if v == nil {
		return nil
	}
	return clone.Clone(v).(Value)
}
