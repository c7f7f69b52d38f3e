package dataflow

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

// Record is one published channel, delivered to a Publisher after the
// channel completed.
type Record struct {
	Target    string
	Component string
	Channel   uint64
	Values    []cty.Value
	Options   Options
}

// Publisher receives the contents of published channels.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// PublishRequest asks the runtime to hand a channel to the publisher once the
// channel is complete.
type PublishRequest struct {
	Channel   *Channel
	Target    string
	Component string
	Options   Options
}

// Runtime creates channels and runs background tasks for one script run.
// Tasks share a context that is cancelled as soon as one of them fails.
type Runtime struct {
	ctx       context.Context
	group     *errgroup.Group
	publisher Publisher
	nextID    atomic.Uint64
}

// NewRuntime creates a runtime whose tasks derive from ctx. A nil publisher
// discards published records.
func NewRuntime(ctx context.Context, publisher Publisher) *Runtime {
	group, groupCtx := errgroup.WithContext(ctx)
	return &Runtime{
		ctx:       groupCtx,
		group:     group,
		publisher: publisher,
	}
}

// IsChannel reports whether v carries a channel.
func (r *Runtime) IsChannel(v cty.Value) bool {
	_, ok := AsChannel(v)
	return ok
}

// Create returns a new, empty channel.
func (r *Runtime) Create(singleUse bool) *Channel {
	return newChannel(r.nextID.Add(1), singleUse)
}

// Bind completes a single-use channel with v.
func (r *Runtime) Bind(ch *Channel, v cty.Value) error {
	if !ch.SingleUse() {
		return fmt.Errorf("cannot bind %s: not a single-use channel", ch)
	}
	return ch.Send(v)
}

// Go schedules fn as a runtime task.
func (r *Runtime) Go(fn func(ctx context.Context) error) {
	r.group.Go(func() error { return fn(r.ctx) })
}

// Publish schedules delivery of req.Channel to the publisher. It returns
// immediately; delivery errors surface from Wait.
func (r *Runtime) Publish(req PublishRequest) error {
	if req.Channel == nil {
		return fmt.Errorf("publish target '%s': channel is nil", req.Target)
	}
	logger := ctxlog.FromContext(r.ctx)
	if r.publisher == nil {
		logger.Debug("No publisher configured, dropping publish request.", "target", req.Target, "channel", req.Channel.ID())
		return nil
	}

	r.Go(func(ctx context.Context) error {
		values, err := req.Channel.Values(ctx)
		if err != nil {
			return fmt.Errorf("publish target '%s': %w", req.Target, err)
		}
		logger.Debug("Publishing channel.", "target", req.Target, "component", req.Component, "channel", req.Channel.ID(), "values", len(values))
		rec := Record{
			Target:    req.Target,
			Component: req.Component,
			Channel:   req.Channel.ID(),
			Values:    values,
			Options:   req.Options.Clone(),
		}
		if err := r.publisher.Publish(ctx, rec); err != nil {
			return fmt.Errorf("publish target '%s': %w", req.Target, err)
		}
		return nil
	})
	return nil
}

// Wait blocks until every task has finished and returns the first error.
func (r *Runtime) Wait() error {
	return r.group.Wait()
}
