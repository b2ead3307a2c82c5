// Package formpatch computes JSON Patch operations between versions of a
// form data document.
//
// CreatePatch compares a previous document with a next one. Given only those
// two it returns a patch that turns prev into next, guarded by test
// operations. Given a third, current document (local state that diverged from
// prev while next was being produced) it returns a patch for current that
// merges in the prev to next changes without clobbering local edits.
//
// Arrays whose elements are rows carrying a row identity (DefaultRowIDKey) are
// reconciled by identity instead of by position.
package formpatch

import (
	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/internal/core"
	"github.com/Altinn/formpatch/patch"
)

// Args are the documents compared by CreatePatch.
type Args struct {
	// Prev is the last document both sides agreed on.
	Prev document.Value
	// Next is the desired document.
	Next document.Value
	// Current is the document the patch will be applied to when it has
	// diverged from Prev. Leave it nil for a two-way diff.
	Current document.Value
}

// CreatePatch returns the operations that reconcile args.Prev with args.Next.
//
// Without args.Current the patch applied to Prev yields Next, and every
// operation that changes or removes an existing value is preceded by a test
// of that value.
//
// With args.Current the patch is meant to be applied to Current. Remote
// changes are kept unless they touch a value that was changed or removed
// locally; rows added remotely are appended after local rows. Such patches
// contain no test operations.
//
// CreatePatch never modifies its arguments. Values in the returned patch may
// share structure with args.Next.
func CreatePatch(args Args, opts ...Option) patch.Patch {
	s := &synthesizer{
		cfg:      newConfig(opts),
		ops:      patch.New(),
		threeWay: args.Current != nil,
	}

	if s.threeWay {
		s.merge(args.Prev, args.Next, args.Current, "")
	} else {
		s.diff(args.Prev, args.Next, "")
	}
	return s.ops
}

// synthesizer accumulates the operations of one CreatePatch call.
type synthesizer struct {
	cfg      *config
	ops      patch.Patch
	threeWay bool
}

func (s *synthesizer) add(path core.Path, v document.Value) {
	s.ops = s.ops.Add(path.String(), v)
}

func (s *synthesizer) remove(path core.Path) {
	s.ops = s.ops.Remove(path.String())
}

func (s *synthesizer) replace(path core.Path, v document.Value) {
	s.ops = s.ops.Replace(path.String(), v)
}

// test guards the next operation in two-way mode. Three-way patches resolve
// conflicts up front and carry no tests.
func (s *synthesizer) test(path core.Path, v document.Value) {
	if s.threeWay {
		return
	}
	s.ops = s.ops.Test(path.String(), v)
}

func (s *synthesizer) drop(path core.Path, reason string) {
	s.cfg.logger.Debug("dropping remote change", "path", path.String(), "reason", reason)
}
