package component_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridflow/internal/binding"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fakeBody struct {
	refs []string
}

func (b *fakeBody) Run(context.Context, *binding.Binding) error { return nil }
func (b *fakeBody) Source() string                              { return "fake" }
func (b *fakeBody) References() []string                        { return b.refs }

// fakeDecl records how it was used so tests can check that resolution only
// ever touches a clone.
type fakeDecl struct {
	stmts      []component.Statement
	body       *fakeBody
	compileErr error

	isClone  bool
	declared *int
	clones   *int
	compiled []string
}

func newFakeDecl(refs []string, stmts ...component.Statement) *fakeDecl {
	return &fakeDecl{stmts: stmts, body: &fakeBody{refs: refs}, declared: new(int), clones: new(int)}
}

func (d *fakeDecl) Declare(r *component.Resolver) error {
	if !d.isClone {
		panic("resolution must run against a clone")
	}
	*d.declared++
	for _, s := range d.stmts {
		if err := r.Accept(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *fakeDecl) Compile(r *component.Resolver) (component.Body, error) {
	d.compiled = append(r.Inputs(), r.Outputs()...)
	if d.compileErr != nil {
		return nil, d.compileErr
	}
	return d.body, nil
}

func (d *fakeDecl) Clone() component.Declaration {
	*d.clones++
	c := *d
	c.stmts = append([]component.Statement(nil), d.stmts...)
	c.isClone = true
	return &c
}

func (d *fakeDecl) Origin() component.Origin {
	return component.Origin{FilePath: "main.hcl"}
}

type fakeScope struct{}

func (fakeScope) EvalContext() *hcl.EvalContext { return &hcl.EvalContext{} }

func TestResolver_OrderAndDeduplication(t *testing.T) {
	t.Parallel()
	r := component.NewResolver("wf")

	for _, s := range []component.Statement{
		component.InputDecl{Name: "b"},
		component.InputDecl{Name: "a"},
		component.OutputDecl{Name: "z"},
		component.InputDecl{Name: "b"},
		component.OutputDecl{Name: "y"},
		component.OutputDecl{Name: "z"},
	} {
		require.NoError(t, r.Accept(s))
	}

	require.Equal(t, []string{"b", "a"}, r.Inputs())
	require.Equal(t, []string{"z", "y"}, r.Outputs())
}

func TestResolver_PublishOptions(t *testing.T) {
	t.Parallel()
	r := component.NewResolver("wf")
	copyMode := cty.ObjectVal(map[string]cty.Value{"mode": cty.StringVal("copy")})

	require.NoError(t, r.Accept(component.PublishDecl{Name: "single", Args: []cty.Value{copyMode}}))
	require.NoError(t, r.Accept(component.PublishDecl{Name: "none"}))
	require.NoError(t, r.Accept(component.PublishDecl{Name: "two", Args: []cty.Value{copyMode, copyMode}}))
	require.NoError(t, r.Accept(component.PublishDecl{Name: "scalar", Args: []cty.Value{cty.StringVal("x")}}))

	targets := r.Publish()
	require.Len(t, targets, 4)
	require.Equal(t, "single", targets[0].Name)
	require.Equal(t, "copy", targets[0].Options.String("mode", ""))
	for _, target := range targets[1:] {
		require.Empty(t, target.Options, "target %s should have empty options", target.Name)
		require.NotNil(t, target.Options)
	}
}

func TestResolver_RepeatedPublishKeepsPosition(t *testing.T) {
	t.Parallel()
	r := component.NewResolver("wf")
	first := cty.ObjectVal(map[string]cty.Value{"mode": cty.StringVal("copy")})
	second := cty.ObjectVal(map[string]cty.Value{"mode": cty.StringVal("move")})

	require.NoError(t, r.Accept(component.PublishDecl{Name: "a", Args: []cty.Value{first}}))
	require.NoError(t, r.Accept(component.PublishDecl{Name: "b"}))
	require.NoError(t, r.Accept(component.PublishDecl{Name: "a", Args: []cty.Value{second}}))

	targets := r.Publish()
	require.Equal(t, "a", targets[0].Name)
	require.Equal(t, "move", targets[0].Options.String("mode", ""))
	require.Equal(t, "b", targets[1].Name)
}

func TestResolver_UnknownDeclaration(t *testing.T) {
	t.Parallel()
	r := component.NewResolver("wf")

	err := r.Accept(component.UnknownDecl{Name: "publishDir"})
	var unknown *component.UnknownDeclarationError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "wf", unknown.Component)
	require.Equal(t, "publishDir", unknown.Call)
	require.Contains(t, err.Error(), "publishDir")
}

func TestNew_ResolvesFromClone(t *testing.T) {
	t.Parallel()
	decl := newFakeDecl(
		[]string{"x", "y", "greeting", "x", "helper"},
		component.InputDecl{Name: "x"},
		component.InputDecl{Name: "y"},
		component.OutputDecl{Name: "z"},
		component.PublishDecl{Name: "z", Args: []cty.Value{cty.ObjectVal(map[string]cty.Value{"mode": cty.StringVal("copy")})}},
	)

	def, err := component.New(fakeScope{}, decl, "sum", component.KindWorkflow)
	require.NoError(t, err)

	require.Equal(t, 1, *decl.clones)
	require.Equal(t, 1, *decl.declared)
	require.Equal(t, []string{"x", "y", "z"}, decl.compiled, "compile sees the resolved signature")
	require.Equal(t, "sum", def.Name())
	require.Equal(t, component.KindWorkflow, def.Kind())
	require.Equal(t, []string{"x", "y"}, def.Inputs())
	require.Equal(t, []string{"z"}, def.Outputs())
	require.Len(t, def.Publish(), 1)
	if diff := cmp.Diff([]string{"greeting", "helper"}, def.FreeVariables()); diff != "" {
		t.Errorf("free variables mismatch (-want +got):\n%s", diff)
	}
	require.Same(t, decl.body, def.Body())
	require.False(t, def.Anonymous())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown statement", func(t *testing.T) {
		t.Parallel()
		decl := newFakeDecl(nil, component.InputDecl{Name: "x"}, component.UnknownDecl{Name: "tag"})
		_, err := component.New(fakeScope{}, decl, "wf", component.KindWorkflow)
		var unknown *component.UnknownDeclarationError
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("compile failure", func(t *testing.T) {
		t.Parallel()
		decl := newFakeDecl(nil)
		decl.compileErr = errors.New("bad body")
		_, err := component.New(fakeScope{}, decl, "", component.KindWorkflow)
		require.ErrorContains(t, err, "bad body")
		require.ErrorContains(t, err, "<entry>")
	})
}

func TestDefinition_RenameSharesBody(t *testing.T) {
	t.Parallel()
	decl := newFakeDecl(nil, component.InputDecl{Name: "x"}, component.OutputDecl{Name: "y"})
	def, err := component.New(fakeScope{}, decl, "double", component.KindProcess)
	require.NoError(t, err)

	renamed := def.Rename("twice")
	require.Equal(t, "twice", renamed.Name())
	require.Equal(t, "double", def.Name(), "the original is untouched")
	require.Same(t, def.Body(), renamed.Body())
	require.Equal(t, def.Inputs(), renamed.Inputs())
	require.Equal(t, def.Outputs(), renamed.Outputs())
	require.Equal(t, component.KindProcess, renamed.Kind())
}

func TestDefinition_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()
	decl := newFakeDecl(nil, component.InputDecl{Name: "x"})
	def, err := component.New(fakeScope{}, decl, "", component.KindWorkflow)
	require.NoError(t, err)

	inputs := def.Inputs()
	inputs[0] = "mutated"
	require.Equal(t, []string{"x"}, def.Inputs())
	require.True(t, def.Anonymous())
	require.Equal(t, "<entry>", def.Label())
}
