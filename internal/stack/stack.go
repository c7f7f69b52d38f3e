// Package stack tracks which components are currently executing in a script
// session.
//
// Frames are pushed when an invocation starts and released when it ends. Push
// hands back the release function so callers can defer it; releasing is the
// only way a frame leaves the stack, which keeps nested and recursive calls
// balanced on every exit path.
package stack

import (
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/gridflow/internal/component"
)

// Frame is one active invocation.
type Frame struct {
	Definition   *component.Definition
	InvocationID string
	Entered      time.Time
}

// Stack is the call-ordered list of active invocations of one session. The
// mutex only guards Snapshot readers on other goroutines; pushes and pops are
// expected from the session's own goroutine.
type Stack struct {
	mu     sync.RWMutex
	frames []Frame
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Push adds a frame for def and returns the function that removes it. The
// release function must be called exactly once.
func (s *Stack) Push(def *component.Definition, invocationID string) (release func()) {
	s.mu.Lock()
	s.frames = append(s.frames, Frame{Definition: def, InvocationID: invocationID, Entered: time.Now()})
	depth := len(s.frames)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if len(s.frames) != depth || s.frames[depth-1].InvocationID != invocationID {
				panic(fmt.Sprintf("stack: frame %s released out of order", invocationID))
			}
			s.frames = s.frames[:depth-1]
		})
	}
}

// Current returns the innermost executing component, or nil at top level.
func (s *Stack) Current() *component.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1].Definition
}

// Depth returns the number of active frames.
func (s *Stack) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// Snapshot returns a copy of the frames, outermost first.
func (s *Stack) Snapshot() []Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}
