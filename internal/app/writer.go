package app

import (
	"io"
	"sync"
)

// lockedWriter serializes writes to the application output. The logger and
// the print publisher both write to it from different goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
