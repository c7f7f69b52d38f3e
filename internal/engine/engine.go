// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridflow/internal/binding"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/specialistvlad/gridflow/internal/stack"
	"github.com/zclconf/go-cty/cty"
)

// Channels is the part of the channel runtime the engine depends on.
type Channels interface {
	IsChannel(v cty.Value) bool
	Create(singleUse bool) *dataflow.Channel
	Bind(ch *dataflow.Channel, v cty.Value) error
	Publish(req dataflow.PublishRequest) error
}

// Engine invokes component definitions of one script session.
type Engine struct {
	stack    *stack.Stack
	channels Channels
}

// New creates an engine that records frames on st and wires outputs through
// channels.
func New(st *stack.Stack, channels Channels) *Engine {
	return &Engine{stack: st, channels: channels}
}

// Invoke runs one invocation of def with positional args and returns its
// outputs keyed by declared name, in declaration order.
func (e *Engine) Invoke(ctx context.Context, def *component.Definition, args []cty.Value) (*dataflow.Bundle, error) {
	inputs := def.Inputs()
	if len(args) != len(inputs) {
		return nil, &ArityError{Component: def.Label(), Declared: len(inputs), Received: len(args)}
	}

	var parent *hcl.EvalContext
	if owner := def.Owner(); owner != nil {
		parent = owner.EvalContext()
	}
	b := binding.New(parent)
	for i, name := range inputs {
		b.Set(name, args[i])
	}

	id := uuid.NewString()
	release := e.stack.Push(def, id)
	defer release()

	ctx = ctxlog.With(ctx, "component", def.Label(), "invocation", id)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking component.", "kind", def.Kind(), "depth", e.stack.Depth(), "args", len(args))

	if err := def.Body().Run(ctx, b); err != nil {
		return nil, fmt.Errorf("component '%s' failed: %w", def.Label(), err)
	}

	out, err := e.collectOutputs(def, b)
	if err != nil {
		return nil, err
	}

	if err := e.applyPublish(ctx, def, b); err != nil {
		return nil, err
	}

	logger.Debug("Component invocation finished.", "outputs", out.Names())
	return out, nil
}

// collectOutputs resolves every declared output to exactly one channel.
func (e *Engine) collectOutputs(def *component.Definition, b *binding.Binding) (*dataflow.Bundle, error) {
	out := dataflow.NewBundle()
	for _, name := range def.Outputs() {
		v, ok := b.Get(name)
		if !ok {
			return nil, &MissingOutputError{Component: def.Label(), Name: name, Reason: "is not assigned"}
		}

		ch, err := e.outputChannel(def, name, v)
		if err != nil {
			return nil, err
		}
		if err := out.Add(name, ch); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Engine) outputChannel(def *component.Definition, name string, v cty.Value) (*dataflow.Channel, error) {
	if e.channels.IsChannel(v) {
		ch, _ := dataflow.AsChannel(v)
		return ch, nil
	}

	if bundle, ok := dataflow.AsBundle(v); ok {
		switch bundle.Size() {
		case 0:
			return nil, &MissingOutputError{Component: def.Label(), Name: name, Reason: "resolves to an empty bundle"}
		case 1:
			return bundle.Channels()[0], nil
		default:
			return nil, &AmbiguousOutputError{Component: def.Label(), Name: name, Size: bundle.Size()}
		}
	}

	// A plain value becomes a completed one-shot channel.
	ch := e.channels.Create(true)
	if err := e.channels.Bind(ch, v); err != nil {
		return nil, fmt.Errorf("component '%s': output '%s': %w", def.Label(), name, err)
	}
	return ch, nil
}

// applyPublish hands every declared publish target to the channel runtime.
func (e *Engine) applyPublish(ctx context.Context, def *component.Definition, b *binding.Binding) error {
	logger := ctxlog.FromContext(ctx)

	for _, target := range def.Publish() {
		v, ok := b.Get(target.Name)
		if !ok {
			return &MissingOutputError{Component: def.Label(), Name: target.Name, Publish: true, Reason: "is not assigned"}
		}

		var channels []*dataflow.Channel
		switch {
		case e.channels.IsChannel(v):
			ch, _ := dataflow.AsChannel(v)
			channels = []*dataflow.Channel{ch}
		default:
			bundle, ok := dataflow.AsBundle(v)
			if !ok {
				return &InvalidPublishTargetError{Component: def.Label(), Name: target.Name, Type: typeName(v)}
			}
			channels = bundle.Channels()
		}

		for _, ch := range channels {
			req := dataflow.PublishRequest{
				Channel:   ch,
				Target:    target.Name,
				Component: def.Label(),
				Options:   target.Options,
			}
			if err := e.channels.Publish(req); err != nil {
				return fmt.Errorf("component '%s': %w", def.Label(), err)
			}
		}
		logger.Debug("Publish target handed to runtime.", "target", target.Name, "channels", len(channels))
	}
	return nil
}

func typeName(v cty.Value) string {
	if v.Type() == cty.NilType {
		return "nothing"
	}
	return v.Type().FriendlyName()
}
