package registry

import (
	"context"

	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
)

// Registry holds the component definitions of one script.
type Registry struct {
	byName  map[string]*component.Definition
	order   []string
	unnamed []*component.Definition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*component.Definition),
	}
}

// Register adds def. Anonymous workflows are kept in declaration order; the
// first one is the default entry point.
func (r *Registry) Register(ctx context.Context, def *component.Definition) error {
	logger := ctxlog.FromContext(ctx)

	if def.Anonymous() {
		if len(r.unnamed) > 0 {
			logger.Warn("Script declares more than one unnamed workflow, only the first is used as entry.", "ignored", def.Origin().String())
		}
		r.unnamed = append(r.unnamed, def)
		logger.Debug("Registered unnamed workflow.", "origin", def.Origin().String())
		return nil
	}

	if existing, exists := r.byName[def.Name()]; exists {
		return &DuplicateNameError{Name: def.Name(), Existing: existing.Origin().String()}
	}
	r.byName[def.Name()] = def
	r.order = append(r.order, def.Name())

	logger.Debug("Registered component.", "name", def.Name(), "kind", def.Kind(), "inputs", def.Inputs(), "outputs", def.Outputs())
	if free := def.FreeVariables(); len(free) > 0 {
		logger.Debug("Component body reads variables that are not inputs.", "name", def.Name(), "free_variables", free)
	}
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*component.Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Definitions returns the named definitions in registration order.
func (r *Registry) Definitions() []*component.Definition {
	out := make([]*component.Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Entry returns the first unnamed workflow, if any.
func (r *Registry) Entry() (*component.Definition, bool) {
	for _, def := range r.unnamed {
		if def.Kind() == component.KindWorkflow {
			return def, true
		}
	}
	return nil, false
}

// Len returns the number of named definitions.
func (r *Registry) Len() int { return len(r.order) }
