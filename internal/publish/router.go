package publish

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
)

// Backend is a named dataflow.Publisher.
type Backend interface {
	dataflow.Publisher
	Name() string
}

// Closer is implemented by backends that hold connections.
type Closer interface {
	Close() error
}

// Router dispatches records to backends.
type Router struct {
	fallback string
	backends map[string]Backend
}

// NewRouter returns a router that uses fallback when a record names no
// backend.
func NewRouter(fallback string, backends ...Backend) (*Router, error) {
	r := &Router{fallback: fallback, backends: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		if _, exists := r.backends[b.Name()]; exists {
			panic(fmt.Sprintf("publish backend '%s' registered twice", b.Name()))
		}
		r.backends[b.Name()] = b
	}
	if _, ok := r.backends[fallback]; !ok {
		return nil, fmt.Errorf("default publisher '%s' is not available; known: %v", fallback, r.Names())
	}
	return r, nil
}

// Names returns the sorted backend names.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Publish implements dataflow.Publisher.
func (r *Router) Publish(ctx context.Context, rec dataflow.Record) error {
	name := rec.Options.String("to", r.fallback)
	backend, ok := r.backends[name]
	if !ok {
		return fmt.Errorf("unknown publisher '%s'; known: %v", name, r.Names())
	}
	ctxlog.FromContext(ctx).Debug("Routing published record.", "target", rec.Target, "publisher", name)
	return backend.Publish(ctx, rec)
}

// Close closes every backend that holds resources.
func (r *Router) Close() error {
	var firstErr error
	for _, name := range r.Names() {
		if c, ok := r.backends[name].(Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing publisher '%s': %w", name, err)
			}
		}
	}
	return firstErr
}
