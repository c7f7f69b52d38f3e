// Package binding provides the variable environment of a single component
// invocation.
//
// A Binding owns its locals and is chained to the enclosing script scope for
// reads only. Assignments made while a body runs never leak into the script
// scope or into any other invocation, including concurrent or recursive
// invocations of the same component.
package binding

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Binding is the name→value environment of one invocation.
type Binding struct {
	parent *hcl.EvalContext
	locals map[string]cty.Value
	ctx    *hcl.EvalContext
}

// New creates an empty binding whose reads fall through to parent. parent may
// be nil for a binding with no enclosing scope.
func New(parent *hcl.EvalContext) *Binding {
	locals := make(map[string]cty.Value)

	var ctx *hcl.EvalContext
	if parent != nil {
		ctx = parent.NewChild()
	} else {
		ctx = &hcl.EvalContext{}
	}
	// The child context shares the locals map, so Set is visible to
	// expressions evaluated through EvalContext without rebuilding it.
	ctx.Variables = locals

	return &Binding{parent: parent, locals: locals, ctx: ctx}
}

// Set assigns a local variable.
func (b *Binding) Set(name string, v cty.Value) {
	b.locals[name] = v
}

// Get returns a local variable.
func (b *Binding) Get(name string) (cty.Value, bool) {
	v, ok := b.locals[name]
	return v, ok
}

// Lookup resolves name locally first and then through the enclosing scopes.
func (b *Binding) Lookup(name string) (cty.Value, bool) {
	for ctx := b.ctx; ctx != nil; ctx = ctx.Parent() {
		if v, ok := ctx.Variables[name]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

// Names returns the local variable names, sorted.
func (b *Binding) Names() []string {
	names := make([]string, 0, len(b.locals))
	for name := range b.locals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EvalContext returns the HCL evaluation context that resolves variables
// through this binding.
func (b *Binding) EvalContext() *hcl.EvalContext {
	return b.ctx
}
