package publish

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
)

// LogPublisher writes every published value to the context logger.
type LogPublisher struct{}

// Name implements Backend.
func (LogPublisher) Name() string { return "log" }

// Publish implements dataflow.Publisher.
func (LogPublisher) Publish(ctx context.Context, rec dataflow.Record) error {
	logger := ctxlog.FromContext(ctx).With("component", rec.Component, "target", rec.Target, "channel", rec.Channel)
	p, err := NewPayload(rec)
	if err != nil {
		return err
	}
	if len(p.Values) == 0 {
		logger.Info("Published channel is empty.")
		return nil
	}
	for i, v := range p.Values {
		logger.Info("Published value.", "index", i, "value", v)
	}
	return nil
}

// PrintPublisher writes `target = value` lines to a writer.
type PrintPublisher struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrintPublisher returns a publisher writing to out.
func NewPrintPublisher(out io.Writer) *PrintPublisher {
	return &PrintPublisher{out: out}
}

// Name implements Backend.
func (p *PrintPublisher) Name() string { return "print" }

// Publish implements dataflow.Publisher.
func (p *PrintPublisher) Publish(_ context.Context, rec dataflow.Record) error {
	payload, err := NewPayload(rec)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(payload.Values) == 0 {
		_, err := fmt.Fprintf(p.out, "%s = (empty)\n", rec.Target)
		return err
	}
	for _, v := range payload.Values {
		if _, err := fmt.Fprintf(p.out, "%s = %v\n", rec.Target, v); err != nil {
			return err
		}
	}
	return nil
}
