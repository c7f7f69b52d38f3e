package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/specialistvlad/gridflow/internal/engine"
	"github.com/specialistvlad/gridflow/internal/functions"
	"github.com/specialistvlad/gridflow/internal/stack"
	"github.com/specialistvlad/gridflow/internal/task"
	"github.com/zclconf/go-cty/cty/function"
)

// Mode selects how declarations are treated.
type Mode string

const (
	ModeModule Mode = "module"
	ModeLegacy Mode = "legacy"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeModule, ModeLegacy:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode '%s', expected '%s' or '%s'", s, ModeModule, ModeLegacy)
	}
}

// Observer is notified around the entry invocation of a standalone run.
type Observer interface {
	BeforeEntry(ctx context.Context, def *component.Definition)
	AfterEntry(ctx context.Context, def *component.Definition, err error)
}

type noopObserver struct{}

func (noopObserver) BeforeEntry(context.Context, *component.Definition)        {}
func (noopObserver) AfterEntry(context.Context, *component.Definition, error) {}

// Options configures a Session.
type Options struct {
	Mode      Mode
	Entry     string
	Publisher dataflow.Publisher
	Observer  Observer
}

// Session is one script evaluation: its execution stack, channel runtime,
// strategy and every script loaded through includes. A session runs once.
type Session struct {
	mu sync.Mutex

	options  Options
	stack    *stack.Stack
	runtime  *dataflow.Runtime
	cancel   context.CancelFunc
	engine   *engine.Engine
	strategy Strategy
	builtins map[string]function.Function
	compiler *task.Compiler

	ran     bool
	loading []string
	modules map[string]*Script
}

// NewSession creates a session whose runtime tasks derive from ctx.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Mode == "" {
		opts.Mode = ModeModule
	}
	strategy, err := strategyFor(opts.Mode)
	if err != nil {
		return nil, err
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	rt := dataflow.NewRuntime(runCtx, opts.Publisher)
	st := stack.New()
	builtins := functions.Builtins(rt)

	return &Session{
		options:  opts,
		stack:    st,
		runtime:  rt,
		cancel:   cancel,
		engine:   engine.New(st, rt),
		strategy: strategy,
		builtins: builtins,
		compiler: task.NewCompiler(rt, builtins),
		modules:  make(map[string]*Script),
	}, nil
}

// Stack returns the session's execution stack. It is safe to Snapshot from
// other goroutines.
func (sess *Session) Stack() *stack.Stack { return sess.stack }

// Mode returns the session mode.
func (sess *Session) Mode() Mode { return sess.options.Mode }
