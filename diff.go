package formpatch

import (
	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/internal/core"
)

// diff emits the operations that turn prev into next at path.
func (s *synthesizer) diff(prev, next document.Value, path core.Path) {
	if document.Equal(prev, next) {
		return
	}

	switch {
	case prev == nil:
		s.add(path, next)
		return
	case next == nil:
		s.test(path, prev)
		s.remove(path)
		return
	}

	switch pv := prev.(type) {
	case *document.Object:
		if nv, ok := next.(*document.Object); ok {
			s.diffObjects(pv, nv, path, "")
			return
		}
	case document.Array:
		if nv, ok := next.(document.Array); ok {
			s.diffArrays(pv, nv, path)
			return
		}
	}

	// Scalars and type changes.
	s.test(path, prev)
	s.replace(path, next)
}

// diffObjects compares members in next's order, then removes the members
// only prev has. skip names a member that is never compared.
func (s *synthesizer) diffObjects(prev, next *document.Object, path core.Path, skip string) {
	next.Range(func(key string, nv document.Value) bool {
		if key == skip && skip != "" {
			return true
		}
		pv, ok := prev.Get(key)
		if !ok {
			// The whole subtree is new.
			s.add(path.Key(key), nv)
			return true
		}
		s.diff(pv, nv, path.Key(key))
		return true
	})

	prev.Range(func(key string, pv document.Value) bool {
		if (key == skip && skip != "") || next.Has(key) {
			return true
		}
		s.test(path.Key(key), pv)
		s.remove(path.Key(key))
		return true
	})
}
