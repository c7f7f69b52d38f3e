package testutil

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridflow/internal/binding"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// RunFunc is the behaviour of a FuncBody.
type RunFunc func(ctx context.Context, b *binding.Binding) error

// FuncBody is a component body backed by a Go function.
type FuncBody struct {
	Fn   RunFunc
	Refs []string
}

// Run implements component.Body.
func (f *FuncBody) Run(ctx context.Context, b *binding.Binding) error {
	if f.Fn == nil {
		return nil
	}
	return f.Fn(ctx, b)
}

// Source implements component.Body.
func (f *FuncBody) Source() string { return "<go func>" }

// References implements component.Body.
func (f *FuncBody) References() []string { return f.Refs }

// StaticDecl is a declaration made of fixed statements and a Go body.
type StaticDecl struct {
	Statements []component.Statement
	Body       *FuncBody
}

// Declare implements component.Declaration.
func (d *StaticDecl) Declare(r *component.Resolver) error {
	for _, s := range d.Statements {
		if err := r.Accept(s); err != nil {
			return err
		}
	}
	return nil
}

// Compile implements component.Declaration.
func (d *StaticDecl) Compile(*component.Resolver) (component.Body, error) {
	return d.Body, nil
}

// Clone implements component.Declaration.
func (d *StaticDecl) Clone() component.Declaration {
	return &StaticDecl{Statements: append([]component.Statement(nil), d.Statements...), Body: d.Body}
}

// Origin implements component.Declaration.
func (d *StaticDecl) Origin() component.Origin {
	return component.Origin{FilePath: "<test>"}
}

// Scope is a fixed script scope for test definitions.
type Scope struct {
	Ctx *hcl.EvalContext
}

// EvalContext implements component.Scope.
func (s Scope) EvalContext() *hcl.EvalContext { return s.Ctx }

// Definition builds a workflow definition from statements and a Go body.
func Definition(t *testing.T, name string, fn RunFunc, stmts ...component.Statement) *component.Definition {
	t.Helper()
	return DefinitionIn(t, Scope{Ctx: &hcl.EvalContext{}}, name, fn, stmts...)
}

// DefinitionIn is Definition with an explicit owner scope.
func DefinitionIn(t *testing.T, scope component.Scope, name string, fn RunFunc, stmts ...component.Statement) *component.Definition {
	t.Helper()
	decl := &StaticDecl{Statements: stmts, Body: &FuncBody{Fn: fn}}
	def, err := component.New(scope, decl, name, component.KindWorkflow)
	require.NoError(t, err)
	return def
}

// Take declares an input.
func Take(name string) component.Statement { return component.InputDecl{Name: name} }

// Emit declares an output.
func Emit(name string) component.Statement { return component.OutputDecl{Name: name} }

// Publish declares a publish target. A nil opts map declares no options.
func Publish(name string, opts map[string]string) component.Statement {
	if opts == nil {
		return component.PublishDecl{Name: name}
	}
	attrs := make(map[string]cty.Value, len(opts))
	for k, v := range opts {
		attrs[k] = cty.StringVal(v)
	}
	return component.PublishDecl{Name: name, Args: []cty.Value{cty.ObjectVal(attrs)}}
}
