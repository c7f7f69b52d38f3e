// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package component

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridflow/internal/binding"
)

// Kind distinguishes the two declaration forms a script can use.
type Kind string

const (
	KindWorkflow Kind = "workflow"
	KindProcess  Kind = "process"
)

// Scope is the script environment a component was declared in. Bindings of
// the component's invocations read through it.
type Scope interface {
	EvalContext() *hcl.EvalContext
}

// Body is the executable payload of a component.
type Body interface {
	// Run evaluates the body's statements against b. It returns once every
	// statement was evaluated, not once the dataflow it wired has finished.
	Run(ctx context.Context, b *binding.Binding) error
	// Source returns the body's original source text.
	Source() string
	// References returns the root names of every variable the body reads.
	References() []string
}

// Declaration is the raw, not yet resolved form of a component.
type Declaration interface {
	// Declare replays the declaration statements into r.
	Declare(r *Resolver) error
	// Compile returns the executable body. r holds the statements resolved
	// by Declare.
	Compile(r *Resolver) (Body, error)
	// Clone returns an independent copy for the resolution pass.
	Clone() Declaration
	// Origin locates the declaration in its source file.
	Origin() Origin
}

// Origin links a definition back to its source, for error reporting.
type Origin struct {
	FilePath string
	Range    hcl.Range
}

func (o Origin) String() string {
	if o.Range.Filename == "" {
		return o.FilePath
	}
	return o.Range.String()
}

// Definition is the compiled, immutable form of a declared component.
type Definition struct {
	name          string
	kind          Kind
	inputs        []string
	outputs       []string
	publish       []PublishTarget
	freeVariables []string
	body          Body
	owner         Scope
	origin        Origin
}

// New resolves and compiles decl into a Definition. An empty name declares
// the anonymous entry workflow.
func New(owner Scope, decl Declaration, name string, kind Kind) (*Definition, error) {
	resolver := NewResolver(name)
	if err := decl.Clone().Declare(resolver); err != nil {
		return nil, err
	}

	body, err := decl.Compile(resolver)
	if err != nil {
		label := name
		if label == "" {
			label = "<entry>"
		}
		return nil, fmt.Errorf("failed to compile %s '%s': %w", kind, label, err)
	}

	inputs := resolver.Inputs()
	return &Definition{
		name:          name,
		kind:          kind,
		inputs:        inputs,
		outputs:       resolver.Outputs(),
		publish:       resolver.Publish(),
		freeVariables: freeVariables(body.References(), inputs),
		body:          body,
		owner:         owner,
		origin:        decl.Origin(),
	}, nil
}

func freeVariables(refs, inputs []string) []string {
	declared := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		declared[in] = struct{}{}
	}
	seen := make(map[string]struct{})
	var free []string
	for _, ref := range refs {
		if _, ok := declared[ref]; ok {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		free = append(free, ref)
	}
	sort.Strings(free)
	return free
}

// Rename returns a new Definition identical to d except for its name. The two
// definitions share the same body.
func (d *Definition) Rename(name string) *Definition {
	return &Definition{
		name:          name,
		kind:          d.kind,
		inputs:        d.Inputs(),
		outputs:       d.Outputs(),
		publish:       d.Publish(),
		freeVariables: d.FreeVariables(),
		body:          d.body,
		owner:         d.owner,
		origin:        d.origin,
	}
}

func (d *Definition) Name() string { return d.name }
func (d *Definition) Kind() Kind   { return d.kind }
func (d *Definition) Body() Body   { return d.body }
func (d *Definition) Owner() Scope { return d.owner }

// Origin returns where the component was declared.
func (d *Definition) Origin() Origin { return d.origin }

// Anonymous reports whether this is an unnamed entry workflow.
func (d *Definition) Anonymous() bool { return d.name == "" }

// Label returns the name used in logs and errors.
func (d *Definition) Label() string {
	if d.name == "" {
		return "<entry>"
	}
	return d.name
}

// Inputs returns the declared inputs in positional order.
func (d *Definition) Inputs() []string { return append([]string(nil), d.inputs...) }

// Outputs returns the declared outputs in order.
func (d *Definition) Outputs() []string { return append([]string(nil), d.outputs...) }

// FreeVariables returns the names the body reads that are not inputs.
func (d *Definition) FreeVariables() []string { return append([]string(nil), d.freeVariables...) }

// Publish returns the declared publish targets in order.
func (d *Definition) Publish() []PublishTarget {
	out := make([]PublishTarget, len(d.publish))
	for i, t := range d.publish {
		out[i] = PublishTarget{Name: t.Name, Options: t.Options.Clone()}
	}
	return out
}
