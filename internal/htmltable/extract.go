package htmltable

import "github.com/custodia-labs/htmltab/internal/core/domain"

// Options configures Extract.
type Options struct {
	// KeepFootnotes disables removal of bracketed footnote markers.
	KeepFootnotes bool

	// AllAttributes parses the attributes of every tag, not only <table>.
	AllAttributes bool
}

// Option configures extraction.
type Option func(*Options)

// KeepFootnotes keeps markers such as [12] in cell and caption text.
func KeepFootnotes() Option {
	return func(o *Options) {
		o.KeepFootnotes = true
	}
}

// WithOptions applies a complete Options value.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

// Extract returns every non-empty table in text, in the order the tables
// start. Each table is rectangular. Extract never fails: malformed or
// truncated markup yields whatever complete rows could be recovered.
func Extract(text string, opts ...Option) []domain.Table {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	var tokOpts []TokenizerOption
	if o.AllAttributes {
		tokOpts = append(tokOpts, WithAllAttributes())
	}

	normalise := StripFootnotes
	if o.KeepFootnotes {
		normalise = NormaliseText
	}

	b := NewBuilder(normalise)
	for tok := range Tokenize(text, tokOpts...) {
		b.Push(tok)
	}
	return b.Finish()
}
