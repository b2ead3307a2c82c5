package formpatch

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/internal/core"
)

// diffArrays reconciles two arrays by row identity when both hold only rows,
// and by position otherwise.
func (s *synthesizer) diffArrays(prev, next document.Array, path core.Path) {
	if prevIDs, nextIDs, ok := s.keyedIDs(prev, next); ok {
		s.diffRows(prev, next, prevIDs, nextIDs, path)
		return
	}
	s.diffPositional(prev, next, path)
}

// diffRows keeps the longest run of prev rows whose identities match next in
// order. Kept rows are diffed in place at their prev index, the other prev
// rows are removed and the rest of next is appended. Without reordering this
// means: common rows are diffed, removed rows are removed and new rows are
// appended.
func (s *synthesizer) diffRows(prev, next document.Array, prevIDs, nextIDs []string, path core.Path) {
	kept, removed, j := matchRows(prevIDs, nextIDs)
	appended := next[j:]
	s.logReordered(path, prevIDs, nextIDs, removed, j)

	if len(removed) > 0 || len(appended) > 0 {
		s.test(path, prev)
	}
	// Removals come after these, so prev indices are still valid.
	for _, k := range kept {
		s.diffObjects(prev[k.prev].(*document.Object), next[k.next].(*document.Object), path.Index(k.prev), s.cfg.rowIDKey)
	}
	s.removeDescending(path, removed)
	for _, row := range appended {
		s.add(path.Append(), row)
	}
}

type rowPair struct{ prev, next int }

// matchRows greedily matches prevIDs against nextIDs in order. It returns the
// matched pairs, the unmatched prev indices and the number of next rows
// matched; next rows from that point on are not part of the match.
func matchRows(prevIDs, nextIDs []string) (kept []rowPair, removed []int, j int) {
	for i, id := range prevIDs {
		if j < len(nextIDs) && id == nextIDs[j] {
			kept = append(kept, rowPair{i, j})
			j++
			continue
		}
		removed = append(removed, i)
	}
	return kept, removed, j
}

func (s *synthesizer) logReordered(path core.Path, prevIDs, nextIDs []string, removed []int, j int) {
	if len(removed) == 0 || j == len(nextIDs) {
		return
	}
	removedIDs := mapset.NewThreadUnsafeSet[string]()
	for _, i := range removed {
		removedIDs.Add(prevIDs[i])
	}
	for _, id := range nextIDs[j:] {
		if removedIDs.Contains(id) {
			s.cfg.logger.Debug("rows reordered, re-appending", "path", path.String(), "row", id)
		}
	}
}

// diffPositional removes the prev elements that are not part of the longest
// prefix of next found in prev, then appends the rest of next. Arrays of
// arrays, and arrays where nothing would be kept, are replaced whole.
func (s *synthesizer) diffPositional(prev, next document.Array, path core.Path) {
	if containsArray(prev) || containsArray(next) {
		s.cfg.logger.Debug("nested arrays, replacing", "path", path.String())
		s.test(path, prev)
		s.replace(path, next)
		return
	}

	removed, kept := matchPrefix(prev, next)
	if kept == 0 && len(prev) > 0 {
		s.test(path, prev)
		s.replace(path, next)
		return
	}

	s.test(path, prev)
	s.removeDescending(path, removed)
	for _, v := range next[kept:] {
		s.add(path.Append(), v)
	}
}

// matchPrefix greedily matches next against prev in order. It returns the
// prev indices left unmatched and the length of the matched prefix of next.
func matchPrefix(prev, next document.Array) (removed []int, kept int) {
	for i, v := range prev {
		if kept < len(next) && document.Equal(v, next[kept]) {
			kept++
			continue
		}
		removed = append(removed, i)
	}
	return removed, kept
}

// removeDescending emits removals from the highest index down so that no
// removal shifts the position of a later one.
func (s *synthesizer) removeDescending(path core.Path, indices []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, i := range indices {
		s.remove(path.Index(i))
	}
}

func containsArray(arr document.Array) bool {
	for _, e := range arr {
		if e.Kind() == document.KindArray {
			return true
		}
	}
	return false
}

// keyedIDs returns the row identities of both arrays when the pair can be
// reconciled by identity: it is not empty and every element on both sides
// is a row with an identity that is unique within its array.
func (s *synthesizer) keyedIDs(prev, next document.Array) (prevIDs, nextIDs []string, ok bool) {
	if len(prev) == 0 && len(next) == 0 {
		return nil, nil, false
	}
	if prevIDs, ok = s.rowIDs(prev); !ok {
		return nil, nil, false
	}
	if nextIDs, ok = s.rowIDs(next); !ok {
		return nil, nil, false
	}
	return prevIDs, nextIDs, true
}

// rowIDs returns the canonical identity of every element of arr.
func (s *synthesizer) rowIDs(arr document.Array) ([]string, bool) {
	ids := make([]string, len(arr))
	seen := mapset.NewThreadUnsafeSet[string]()
	for i, e := range arr {
		id, ok := s.cfg.rowID(e)
		if !ok {
			return nil, false
		}
		key := document.Canonical(id)
		if !seen.Add(key) {
			return nil, false
		}
		ids[i] = key
	}
	return ids, true
}

// rowIndex maps the identities of the rows in arr to their index. Elements
// without an identity are left out; the first of duplicate identities wins.
func (s *synthesizer) rowIndex(arr document.Array) map[string]int {
	index := make(map[string]int, len(arr))
	for i, e := range arr {
		id, ok := s.cfg.rowID(e)
		if !ok {
			continue
		}
		key := document.Canonical(id)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}
