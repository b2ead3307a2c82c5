package formpatch

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/internal/core"
	"github.com/Altinn/formpatch/patch"
)

// merge emits the operations that bring the prev to next change at path into
// current. Paths refer to current.
func (s *synthesizer) merge(prev, next, current document.Value, path core.Path) {
	if document.Equal(prev, next) || document.Equal(current, next) {
		return
	}
	if current == nil {
		s.drop(path, "removed locally")
		return
	}

	switch {
	case prev == nil:
		s.mergeAdded(next, current, path)
		return
	case next == nil:
		s.remove(path)
		return
	}

	switch pv := prev.(type) {
	case *document.Object:
		nv, nok := next.(*document.Object)
		cv, cok := current.(*document.Object)
		if nok && cok {
			s.mergeObjects(pv, nv, cv, path, "")
			return
		}
	case document.Array:
		nv, nok := next.(document.Array)
		cv, cok := current.(document.Array)
		if nok && cok {
			s.mergeArrays(pv, nv, cv, path)
			return
		}
	}

	// Scalars, type changes and containers retyped locally.
	if !document.Equal(current, prev) {
		s.drop(path, "changed locally")
		return
	}
	s.replace(path, next)
}

// mergeObjects merges member by member, so a local edit of one member does
// not block remote edits of its siblings.
func (s *synthesizer) mergeObjects(prev, next, current *document.Object, path core.Path, skip string) {
	next.Range(func(key string, nv document.Value) bool {
		if key == skip && skip != "" {
			return true
		}
		cv, _ := current.Get(key)
		pv, ok := prev.Get(key)
		if !ok {
			s.mergeAdded(nv, cv, path.Key(key))
			return true
		}
		s.merge(pv, nv, cv, path.Key(key))
		return true
	})

	prev.Range(func(key string, _ document.Value) bool {
		if (key == skip && skip != "") || next.Has(key) {
			return true
		}
		if !current.Has(key) {
			s.drop(path.Key(key), "already removed locally")
			return true
		}
		s.remove(path.Key(key))
		return true
	})
}

// mergeAdded handles a value that only next has. Values set locally are never
// overwritten; when both sides added a container the missing parts of next
// are filled in.
func (s *synthesizer) mergeAdded(next, current document.Value, path core.Path) {
	switch {
	case current == nil:
		s.add(path, next)
		return
	case document.Equal(current, next):
		return
	}

	switch nv := next.(type) {
	case *document.Object:
		if cv, ok := current.(*document.Object); ok {
			s.mergeObjects(document.NewObject(), nv, cv, path, "")
			return
		}
	case document.Array:
		if cv, ok := current.(document.Array); ok {
			s.mergeArrays(document.Array{}, nv, cv, path)
			return
		}
	}
	s.drop(path, "set locally")
}

// mergeArrays reconciles rows by identity against current. Arrays that cannot
// be keyed are only patched while current still equals prev. While current
// holds exactly prev's rows in prev's order, next's row order is applied too;
// otherwise the local order is kept.
func (s *synthesizer) mergeArrays(prev, next, current document.Array, path core.Path) {
	prevIDs, nextIDs, ok := s.keyedIDs(prev, next)
	if !ok {
		if !document.Equal(current, prev) {
			s.drop(path, "array changed locally")
			return
		}
		s.diffPositional(prev, next, path)
		return
	}

	if curIDs, ok := s.rowIDs(current); ok && slices.Equal(curIDs, prevIDs) {
		s.mergeRowsInOrder(prev, next, current, prevIDs, nextIDs, path)
		return
	}

	curIndex := s.rowIndex(current)
	prevSet := mapset.NewThreadUnsafeSet(prevIDs...)
	nextIndex := make(map[string]int, len(nextIDs))
	for j, id := range nextIDs {
		nextIndex[id] = j
	}

	// 1. Rows on both sides are merged into current's copy of the row.
	for i, id := range prevIDs {
		j, ok := nextIndex[id]
		if !ok || document.Equal(prev[i], next[j]) {
			continue
		}
		ci, ok := curIndex[id]
		if !ok {
			s.drop(path, "row removed locally")
			continue
		}
		s.mergeObjects(prev[i].(*document.Object), next[j].(*document.Object), current[ci].(*document.Object), path.Index(ci), s.cfg.rowIDKey)
	}

	// 2. New rows are appended, unless current already added the same row.
	var appended document.Array
	for j, id := range nextIDs {
		if prevSet.Contains(id) {
			continue
		}
		if ci, ok := curIndex[id]; ok {
			s.mergeObjects(document.NewObject(), next[j].(*document.Object), current[ci].(*document.Object), path.Index(ci), s.cfg.rowIDKey)
			continue
		}
		appended = append(appended, next[j])
	}

	// 3. Removed rows are removed from current, if still there.
	var removed []int
	for _, id := range prevIDs {
		if _, ok := nextIndex[id]; ok {
			continue
		}
		ci, ok := curIndex[id]
		if !ok {
			s.drop(path, "row already removed locally")
			continue
		}
		removed = append(removed, ci)
	}

	s.removeDescending(path, removed)
	for _, row := range appended {
		s.add(path.Append(), row)
	}
}

// mergeRowsInOrder handles a current whose rows line up with prev, so row
// indices in prev are also indices in current. Rows are matched like in a
// two-way diff; moved rows are removed and re-appended with their local edits
// kept.
func (s *synthesizer) mergeRowsInOrder(prev, next, current document.Array, prevIDs, nextIDs []string, path core.Path) {
	kept, removed, j := matchRows(prevIDs, nextIDs)
	s.logReordered(path, prevIDs, nextIDs, removed, j)

	for _, k := range kept {
		if document.Equal(prev[k.prev], next[k.next]) {
			continue
		}
		s.mergeObjects(prev[k.prev].(*document.Object), next[k.next].(*document.Object), current[k.prev].(*document.Object), path.Index(k.prev), s.cfg.rowIDKey)
	}
	s.removeDescending(path, removed)

	prevIndex := make(map[string]int, len(prevIDs))
	for i, id := range prevIDs {
		prevIndex[id] = i
	}
	for k, row := range next[j:] {
		if i, ok := prevIndex[nextIDs[j+k]]; ok {
			row = s.mergedRow(prev[i].(*document.Object), row.(*document.Object), current[i].(*document.Object))
		}
		s.add(path.Append(), row)
	}
}

// mergedRow returns a copy of current with the prev to next changes of one
// row merged in.
func (s *synthesizer) mergedRow(prev, next, current *document.Object) document.Value {
	sub := &synthesizer{cfg: s.cfg, ops: patch.New(), threeWay: true}
	sub.mergeObjects(prev, next, current, "", s.cfg.rowIDKey)
	merged, err := patch.Apply(current, sub.ops)
	if err != nil {
		s.cfg.logger.Debug("keeping local row", "error", err)
		return document.Clone(current)
	}
	return document.Clone(merged)
}
