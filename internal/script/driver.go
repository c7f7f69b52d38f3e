package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/zclconf/go-cty/cty"
)

// ErrSessionUsed is returned when Run is called on a session that already ran.
var ErrSessionUsed = errors.New("script session already ran")

// Result is the outcome of a standalone run.
type Result struct {
	// Globals is the script's top-level result.
	Globals cty.Value
	// Entry is the invoked entry component, nil when none was invoked.
	Entry *component.Definition
	// Outputs are the entry's outputs, nil when no entry was invoked.
	Outputs *dataflow.Bundle
}

// Run loads path as a standalone script, invokes its entry component if it
// has one and waits for every runtime task to finish.
func (sess *Session) Run(ctx context.Context, path string) (*Result, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	defer sess.cancel()

	if sess.ran {
		return nil, ErrSessionUsed
	}
	sess.ran = true

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running script.", "path", path, "mode", sess.options.Mode, "entry", sess.options.Entry)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	s, err := sess.load(ctx, abs, false)
	if err != nil {
		return nil, sess.abort(ctx, err)
	}

	def, err := sess.selectEntry(s)
	if err != nil {
		return nil, sess.abort(ctx, err)
	}

	result := &Result{}
	if def != nil {
		out, err := sess.invokeEntry(ctx, def)
		if err != nil {
			return nil, sess.abort(ctx, err)
		}
		result.Entry = def
		result.Outputs = out
	} else {
		logger.Debug("No entry component, returning the top-level result.")
	}

	if err := sess.runtime.Wait(); err != nil {
		return nil, fmt.Errorf("script run failed: %w", err)
	}
	result.Globals = s.Globals()
	return result, nil
}

// selectEntry returns the explicitly requested entry, or else the first
// unnamed workflow. It returns nil when there is nothing to invoke.
func (sess *Session) selectEntry(s *Script) (*component.Definition, error) {
	if sess.options.Entry != "" {
		return s.registry.Resolve(sess.options.Entry)
	}
	def, _ := s.registry.Entry()
	return def, nil
}

func (sess *Session) invokeEntry(ctx context.Context, def *component.Definition) (out *dataflow.Bundle, err error) {
	sess.options.Observer.BeforeEntry(ctx, def)
	defer func() { sess.options.Observer.AfterEntry(ctx, def, err) }()
	return sess.engine.Invoke(ctx, def, nil)
}

// abort cancels outstanding runtime tasks and waits for them before
// returning err.
func (sess *Session) abort(ctx context.Context, err error) error {
	sess.cancel()
	if waitErr := sess.runtime.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		ctxlog.FromContext(ctx).Debug("Runtime task failed during abort.", "error", waitErr)
	}
	return err
}
