package script

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/specialistvlad/gridflow/internal/exprscan"
	"github.com/specialistvlad/gridflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Script is one loaded script: its globals and the components it declares
// or includes.
type Script struct {
	session  *Session
	path     string
	registry *registry.Registry
	globals  map[string]cty.Value
	evalCtx  *hcl.EvalContext
	calls    []componentCalls
}

// componentCalls lists the functions a declared component body calls.
type componentCalls struct {
	def   *component.Definition
	names []string
}

func newScript(session *Session, path string) *Script {
	globals := make(map[string]cty.Value)
	return &Script{
		session:  session,
		path:     path,
		registry: registry.New(),
		globals:  globals,
		evalCtx:  &hcl.EvalContext{Variables: globals},
	}
}

// EvalContext implements component.Scope. Its variables are the globals.
func (s *Script) EvalContext() *hcl.EvalContext { return s.evalCtx }

// Global returns a global by name.
func (s *Script) Global(name string) (cty.Value, bool) {
	v, ok := s.globals[name]
	return v, ok
}

// Globals returns the globals as one object, the script's top-level result.
func (s *Script) Globals() cty.Value {
	if len(s.globals) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(s.globals))
	for k, v := range s.globals {
		attrs[k] = v
	}
	return cty.ObjectVal(attrs)
}

func (s *Script) setGlobal(ctx context.Context, name string, v cty.Value) {
	if _, exists := s.globals[name]; exists {
		ctxlog.FromContext(ctx).Debug("Global reassigned.", "name", name, "script", s.path)
	}
	s.globals[name] = v
}

func (s *Script) recordCalls(def *component.Definition, body *hclsyntax.Body) {
	if names := exprscan.Body(body).Functions; len(names) > 0 {
		s.calls = append(s.calls, componentCalls{def: def, names: names})
	}
}

// warnUndefinedCalls logs every function a component body calls that is
// neither a builtin nor a component of s. Bodies run later, so such calls
// would only fail at invocation time.
func (s *Script) warnUndefinedCalls(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, c := range s.calls {
		var undefined []string
		for _, name := range c.names {
			if _, ok := s.session.builtins[name]; ok {
				continue
			}
			if _, ok := s.registry.Lookup(name); ok {
				continue
			}
			undefined = append(undefined, name)
		}
		if len(undefined) > 0 {
			logger.Warn("Component calls functions the script does not define.", "component", c.def.Label(), "functions", undefined, "origin", c.def.Origin().String())
		}
	}
}

// functions returns the function table for expressions evaluated on behalf
// of ctx: the builtins plus one function per registered component.
func (s *Script) functions(ctx context.Context) map[string]function.Function {
	funcs := make(map[string]function.Function, len(s.session.builtins)+s.registry.Len())
	for name, f := range s.session.builtins {
		funcs[name] = f
	}
	for _, def := range s.registry.Definitions() {
		funcs[def.Name()] = s.componentFunc(ctx, def)
	}
	return funcs
}

// exprContext is the context top-level expressions are evaluated in.
func (s *Script) exprContext(ctx context.Context) *hcl.EvalContext {
	child := s.evalCtx.NewChild()
	child.Functions = s.functions(ctx)
	return child
}

// componentFunc exposes def as a function returning the bundle of its
// outputs.
func (s *Script) componentFunc(ctx context.Context, def *component.Definition) function.Function {
	return function.New(&function.Spec{
		Description: "Invokes " + string(def.Kind()) + " '" + def.Name() + "'.",
		VarParam: &function.Parameter{
			Name:             "args",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(dataflow.BundleType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			out, err := s.session.engine.Invoke(ctx, def, args)
			if err != nil {
				return cty.NilVal, err
			}
			return dataflow.BundleVal(out), nil
		},
	})
}
