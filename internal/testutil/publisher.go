package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/gridflow/internal/dataflow"
)

// RecordingPublisher keeps every record it receives.
type RecordingPublisher struct {
	mu      sync.Mutex
	records []dataflow.Record
}

// Publish implements dataflow.Publisher.
func (p *RecordingPublisher) Publish(_ context.Context, rec dataflow.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return nil
}

// Records returns a copy of the received records.
func (p *RecordingPublisher) Records() []dataflow.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dataflow.Record(nil), p.records...)
}
