package formpatch

import (
	"io"
	"log/slog"

	"github.com/Altinn/formpatch/document"
)

// Option allows configuring the behavior of CreatePatch.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) {
	f(c)
}

type config struct {
	identity RowIdentity
	// rowIDKey is left out of row comparisons. Empty when a custom identity
	// extractor is in use.
	rowIDKey string
	logger   *slog.Logger
}

func newConfig(opts []Option) *config {
	c := &config{
		identity: KeyIdentity(DefaultRowIDKey),
		rowIDKey: DefaultRowIDKey,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// WithRowIDKey returns an option that makes CreatePatch identify rows by the
// given object key instead of DefaultRowIDKey.
func WithRowIDKey(key string) Option {
	return optionFunc(func(c *config) {
		c.identity = KeyIdentity(key)
		c.rowIDKey = key
	})
}

// WithRowIdentity returns an option that makes CreatePatch identify rows with
// fn. Arrays whose elements fn does not accept are compared by position.
func WithRowIdentity(fn RowIdentity) Option {
	return optionFunc(func(c *config) {
		c.identity = fn
		c.rowIDKey = ""
	})
}

// WithLogger returns an option that sets the logger used to report remote
// changes dropped during a three-way merge and array fallbacks. Messages are
// logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(c *config) {
		c.logger = logger
	})
}

func (c *config) rowID(v document.Value) (document.Value, bool) {
	row, ok := v.(*document.Object)
	if !ok {
		return nil, false
	}
	return c.identity(row)
}
