// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package component

import "github.com/specialistvlad/gridflow/internal/dataflow"

// PublishTarget is one declared publish target.
type PublishTarget struct {
	Name    string
	Options dataflow.Options
}

// Resolver records the calling contract of a component during a single
// resolution pass. It is used once and then discarded.
type Resolver struct {
	component string

	inputs  []string
	outputs []string
	publish []PublishTarget

	seenInputs  map[string]struct{}
	seenOutputs map[string]struct{}
	seenPublish map[string]int
}

// NewResolver returns an empty resolver. component only labels errors.
func NewResolver(component string) *Resolver {
	return &Resolver{
		component:   component,
		seenInputs:  make(map[string]struct{}),
		seenOutputs: make(map[string]struct{}),
		seenPublish: make(map[string]int),
	}
}

// Accept classifies and records one statement.
func (r *Resolver) Accept(stmt Statement) error {
	switch s := stmt.(type) {
	case InputDecl:
		if _, seen := r.seenInputs[s.Name]; !seen {
			r.seenInputs[s.Name] = struct{}{}
			r.inputs = append(r.inputs, s.Name)
		}
	case OutputDecl:
		if _, seen := r.seenOutputs[s.Name]; !seen {
			r.seenOutputs[s.Name] = struct{}{}
			r.outputs = append(r.outputs, s.Name)
		}
	case PublishDecl:
		opts := dataflow.Options{}
		if len(s.Args) == 1 {
			if parsed, ok := dataflow.OptionsFromValue(s.Args[0]); ok {
				opts = parsed
			}
		}
		// A repeated target keeps its first position; the last options win.
		if idx, seen := r.seenPublish[s.Name]; seen {
			r.publish[idx].Options = opts
			return nil
		}
		r.seenPublish[s.Name] = len(r.publish)
		r.publish = append(r.publish, PublishTarget{Name: s.Name, Options: opts})
	default:
		return &UnknownDeclarationError{Component: r.component, Call: stmt.Call()}
	}
	return nil
}

// Inputs returns the declared inputs in order of first occurrence.
func (r *Resolver) Inputs() []string { return append([]string(nil), r.inputs...) }

// Outputs returns the declared outputs in order of first occurrence.
func (r *Resolver) Outputs() []string { return append([]string(nil), r.outputs...) }

// Publish returns the declared publish targets in declaration order.
func (r *Resolver) Publish() []PublishTarget {
	out := make([]PublishTarget, len(r.publish))
	for i, t := range r.publish {
		out[i] = PublishTarget{Name: t.Name, Options: t.Options.Clone()}
	}
	return out
}
