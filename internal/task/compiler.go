package task

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/binding"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/specialistvlad/gridflow/internal/exprscan"
	"github.com/specialistvlad/gridflow/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Runtime is the part of the channel runtime a process needs.
type Runtime interface {
	Create(singleUse bool) *dataflow.Channel
	Bind(ch *dataflow.Channel, v cty.Value) error
	Go(fn func(ctx context.Context) error)
}

// Signature is what the compiler needs to know about the process it compiles.
type Signature struct {
	Name    string
	Inputs  []string
	Outputs []string
}

// Compiler turns exec blocks into component bodies.
type Compiler struct {
	runtime   Runtime
	functions map[string]function.Function
}

// NewCompiler returns a compiler whose tasks run on rt and may call functions.
func NewCompiler(rt Runtime, functions map[string]function.Function) *Compiler {
	return &Compiler{runtime: rt, functions: functions}
}

// Compile validates exec and returns the body that runs it.
func (c *Compiler) Compile(sig Signature, exec *hclsyntax.Body, source string) (component.Body, error) {
	var diags hcl.Diagnostics
	for _, block := range exec.Blocks {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block in exec",
			Detail:   fmt.Sprintf("An exec block only holds assignments; found a %q block.", block.Type),
			Subject:  block.DefRange().Ptr(),
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}

	return &processBody{
		compiler:   c,
		sig:        sig,
		statements: hclutil.SortedAttributes(exec),
		source:     source,
		refs:       exprscan.Body(exec).Variables,
	}, nil
}

type processBody struct {
	compiler   *Compiler
	sig        Signature
	statements []*hclsyntax.Attribute
	source     string
	refs       []string
}

// Source implements component.Body.
func (p *processBody) Source() string { return p.source }

// References implements component.Body.
func (p *processBody) References() []string { return append([]string(nil), p.refs...) }

// Run implements component.Body. It returns as soon as the task is scheduled.
func (p *processBody) Run(ctx context.Context, b *binding.Binding) error {
	logger := ctxlog.FromContext(ctx)

	// Everything the task reads is captured here, on the caller's goroutine.
	captured := make(map[string]cty.Value, len(p.refs))
	for _, name := range p.refs {
		if v, ok := b.Lookup(name); ok {
			captured[name] = v
		}
	}

	outputs := make(map[string]*dataflow.Channel, len(p.sig.Outputs))
	for _, name := range p.sig.Outputs {
		ch := p.compiler.runtime.Create(true)
		outputs[name] = ch
		b.Set(name, dataflow.ChannelVal(ch))
	}

	p.compiler.runtime.Go(func(taskCtx context.Context) error {
		err := p.execute(taskCtx, captured, outputs)
		if err != nil {
			for _, ch := range outputs {
				ch.Close()
			}
			logger.Error("Process task failed.", "process", p.sig.Name, "error", err)
			return fmt.Errorf("process '%s': %w", p.sig.Name, err)
		}
		logger.Debug("Process task finished.", "process", p.sig.Name)
		return nil
	})
	return nil
}

func (p *processBody) execute(ctx context.Context, captured map[string]cty.Value, outputs map[string]*dataflow.Channel) error {
	vars := make(map[string]cty.Value, len(captured)+len(p.statements))
	for name, v := range captured {
		resolved, err := resolve(ctx, v)
		if err != nil {
			return fmt.Errorf("input '%s': %w", name, err)
		}
		vars[name] = resolved
	}

	evalCtx := &hcl.EvalContext{Variables: vars, Functions: p.compiler.functions}
	for _, stmt := range p.statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, diags := stmt.Expr.Value(evalCtx)
		if err := hclutil.DiagnosticsError(diags); err != nil {
			return err
		}
		vars[stmt.Name] = v
	}

	for _, name := range p.sig.Outputs {
		v, ok := vars[name]
		if !ok {
			return fmt.Errorf("output '%s' is not assigned in exec", name)
		}
		resolved, err := resolve(ctx, v)
		if err != nil {
			return fmt.Errorf("output '%s': %w", name, err)
		}
		if err := p.compiler.runtime.Bind(outputs[name], resolved); err != nil {
			return fmt.Errorf("output '%s': %w", name, err)
		}
	}
	return nil
}

// resolve replaces a channel with its first value. Bundles are not values a
// process can consume.
func resolve(ctx context.Context, v cty.Value) (cty.Value, error) {
	if ch, ok := dataflow.AsChannel(v); ok {
		return ch.First(ctx)
	}
	if _, ok := dataflow.AsBundle(v); ok {
		return cty.NilVal, fmt.Errorf("a bundle cannot be consumed by a process; select a channel with out()")
	}
	return v, nil
}
