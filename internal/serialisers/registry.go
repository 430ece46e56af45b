package serialisers

import (
	"fmt"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.SerialiserRegistry = (*Registry)(nil)

// Registry maps output formats to serialisers.
type Registry struct {
	order       []domain.OutputFormat
	serialisers map[domain.OutputFormat]driven.Serialiser
}

// NewRegistry creates a registry holding the given serialisers.
// A later serialiser for the same format replaces an earlier one.
func NewRegistry(serialisers ...driven.Serialiser) *Registry {
	r := &Registry{serialisers: make(map[domain.OutputFormat]driven.Serialiser)}
	for _, s := range serialisers {
		if _, ok := r.serialisers[s.Format()]; !ok {
			r.order = append(r.order, s.Format())
		}
		r.serialisers[s.Format()] = s
	}
	return r
}

// NewDefaultRegistry creates a registry with every built-in format.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewCSV(), NewTSV(), NewJSON("  "), NewMarkdown())
}

// Get returns the serialiser for format.
func (r *Registry) Get(format domain.OutputFormat) (driven.Serialiser, error) {
	s, ok := r.serialisers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return s, nil
}

// Formats returns every registered format in registration order.
func (r *Registry) Formats() []domain.OutputFormat {
	return append([]domain.OutputFormat(nil), r.order...)
}
