// Package formdata keeps the local copy of a form's data model in sync with
// the server.
//
// A Store holds two snapshots: the model last confirmed by the server and the
// current model with local edits. Saving sends the patch between the two;
// when the server answers with its own version of the model (for example
// after running calculations), Confirm rebases that answer onto whatever the
// user changed in the meantime.
package formdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Altinn/formpatch"
	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/patch"
)

var (
	// ErrNoDocument is returned when the store holds no model, or an edit
	// would leave it without one.
	ErrNoDocument = errors.New("formdata: no document")
	// ErrNilValue is returned when Set is given an absent value.
	ErrNilValue = errors.New("formdata: nil value")
)

// Store is a concurrency-safe holder of a form data model.
type Store struct {
	mu        sync.Mutex
	current   document.Value
	lastSaved document.Value

	logger    *slog.Logger
	patchOpts []formpatch.Option
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used by the store and by the patches it
// computes.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPatchOptions sets options passed to every CreatePatch call.
func WithPatchOptions(opts ...formpatch.Option) StoreOption {
	return func(s *Store) {
		s.patchOpts = append(s.patchOpts, opts...)
	}
}

// NewStore creates a store whose current and last saved models are both
// initial.
func NewStore(initial document.Value, opts ...StoreOption) *Store {
	s := &Store{
		current:   document.Clone(initial),
		lastSaved: document.Clone(initial),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Current returns a copy of the current model.
func (s *Store) Current() document.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Clone(s.current)
}

// LastSaved returns a copy of the model last confirmed by the server.
func (s *Store) LastSaved() document.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Clone(s.lastSaved)
}

// Dirty reports whether the current model has unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !document.Equal(s.current, s.lastSaved)
}

// Set stores value at path in the current model, replacing an existing value
// or adding a new one. Parents must exist.
func (s *Store) Set(path string, value document.Value) error {
	if value == nil {
		return fmt.Errorf("set %s: %w", path, ErrNilValue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := patch.New()
	if _, ok := patch.Get(s.current, path); ok {
		p = p.Replace(path, document.Clone(value))
	} else {
		p = p.Add(path, document.Clone(value))
	}
	updated, err := patch.Apply(s.current, p)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	s.current = updated
	return nil
}

// Update replaces the current model with the result of fn. fn receives a copy
// it may modify freely. The model is left untouched when fn fails.
func (s *Store) Update(fn func(document.Value) (document.Value, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(document.Clone(s.current))
	if err != nil {
		return err
	}
	if updated == nil {
		return ErrNoDocument
	}
	s.current = updated
	return nil
}

// PendingPatch returns the patch that turns the last saved model into the
// current one, together with the snapshot of the current model it was
// computed from. The snapshot is what Confirm expects as sent.
func (s *Store) PendingPatch() (patch.Patch, document.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := document.Clone(s.current)
	p := formpatch.CreatePatch(formpatch.Args{
		Prev: s.lastSaved,
		Next: snapshot,
	}, s.options()...)
	s.logger.Debug("pending patch", "operations", len(p))
	return p, snapshot
}

// Confirm records that the server answered a save of sent with serverModel.
// The changes the server made to sent are merged into the current model,
// keeping local edits made since sent was taken. It returns the patch that
// was applied to the current model.
func (s *Store) Confirm(sent, serverModel document.Value) (patch.Patch, error) {
	if serverModel == nil {
		return nil, fmt.Errorf("confirm: %w", ErrNoDocument)
	}

	serverModel = document.Clone(serverModel)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A nil current would turn the merge into a two-way diff.
	if s.current == nil {
		return nil, fmt.Errorf("confirm: %w", ErrNoDocument)
	}

	p := formpatch.CreatePatch(formpatch.Args{
		Prev:    sent,
		Next:    serverModel,
		Current: s.current,
	}, s.options()...)

	updated, err := patch.Apply(s.current, p)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	s.current = updated
	s.lastSaved = serverModel
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("server changes merged", "operations", len(p), "dirty", !document.Equal(s.current, s.lastSaved))
	}
	return p, nil
}

// Reset replaces both snapshots with model, discarding local edits.
func (s *Store) Reset(model document.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = document.Clone(model)
	s.lastSaved = document.Clone(model)
}

func (s *Store) options() []formpatch.Option {
	opts := make([]formpatch.Option, 0, len(s.patchOpts)+1)
	opts = append(opts, formpatch.WithLogger(s.logger))
	return append(opts, s.patchOpts...)
}
