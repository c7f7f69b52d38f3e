package dataflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrClosed is returned when sending to a channel that was already closed
	// or, for a single-use channel, already bound.
	ErrClosed = errors.New("channel is closed")

	// ErrEmpty is returned by First when a channel closes without a value.
	ErrEmpty = errors.New("channel closed without a value")
)

// Channel is an append-only stream of values. A single-use channel accepts
// exactly one value and is complete as soon as it is bound; a queue channel
// accepts values until it is closed. Every reader observes every value.
type Channel struct {
	id        uint64
	singleUse bool

	mu     sync.Mutex
	values []cty.Value
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newChannel(id uint64, singleUse bool) *Channel {
	return &Channel{
		id:        id,
		singleUse: singleUse,
		signal:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// ID returns the runtime-unique identifier of the channel.
func (c *Channel) ID() uint64 { return c.id }

// SingleUse reports whether the channel completes after its first value.
func (c *Channel) SingleUse() bool { return c.singleUse }

// String implements fmt.Stringer.
func (c *Channel) String() string {
	kind := "queue"
	if c.singleUse {
		kind = "value"
	}
	return fmt.Sprintf("channel#%d(%s)", c.id, kind)
}

// Send appends a value. A single-use channel is closed by its first Send.
func (c *Channel) Send(v cty.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%s: %w", c, ErrClosed)
	}
	c.values = append(c.values, v)
	close(c.signal)
	c.signal = make(chan struct{})
	if c.singleUse {
		c.closeLocked()
	}
	return nil
}

// Close marks the channel complete. Closing twice is a no-op.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Channel) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.signal)
	close(c.done)
}

// Done returns a channel that is closed once no more values can arrive.
func (c *Channel) Done() <-chan struct{} { return c.done }

// Values blocks until the channel is complete and returns everything it
// received, in order.
func (c *Channel) Values(ctx context.Context) ([]cty.Value, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cty.Value, len(c.values))
	copy(out, c.values)
	return out, nil
}

// First blocks until the channel holds at least one value and returns it.
func (c *Channel) First(ctx context.Context) (cty.Value, error) {
	for {
		c.mu.Lock()
		if len(c.values) > 0 {
			v := c.values[0]
			c.mu.Unlock()
			return v, nil
		}
		if c.closed {
			c.mu.Unlock()
			return cty.NilVal, fmt.Errorf("%s: %w", c, ErrEmpty)
		}
		wait := c.signal
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return cty.NilVal, ctx.Err()
		}
	}
}
