package script_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/specialistvlad/gridflow/internal/engine"
	"github.com/specialistvlad/gridflow/internal/registry"
	"github.com/specialistvlad/gridflow/internal/script"
	"github.com/specialistvlad/gridflow/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type recordingObserver struct {
	mu     sync.Mutex
	before []string
	after  []string
	errs   []error
}

func (o *recordingObserver) BeforeEntry(_ context.Context, def *component.Definition) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.before = append(o.before, def.Label())
}

func (o *recordingObserver) AfterEntry(_ context.Context, def *component.Definition, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.after = append(o.after, def.Label())
	o.errs = append(o.errs, err)
}

type harness struct {
	ctx       context.Context
	session   *script.Session
	publisher *testutil.RecordingPublisher
	observer  *recordingObserver
	logs      *testutil.SafeBuffer
}

func newHarness(t *testing.T, opts script.Options) *harness {
	t.Helper()
	ctx, logs := testutil.Context(t)
	h := &harness{ctx: ctx, publisher: &testutil.RecordingPublisher{}, observer: &recordingObserver{}, logs: logs}
	opts.Publisher = h.publisher
	opts.Observer = h.observer
	session, err := script.NewSession(ctx, opts)
	require.NoError(t, err)
	h.session = session
	return h
}

func (h *harness) run(t *testing.T, files map[string]string) (*script.Result, error) {
	t.Helper()
	dir := testutil.WriteScripts(t, files)
	return h.session.Run(h.ctx, filepath.Join(dir, "main.hcl"))
}

func firstOutput(t *testing.T, b *dataflow.Bundle, name string) cty.Value {
	t.Helper()
	require.NotNil(t, b)
	ch, ok := b.Get(name)
	require.True(t, ok, "no output %q in %v", name, b.Names())
	v, err := ch.First(context.Background())
	require.NoError(t, err)
	return v
}

const sumScript = `
workflow "sum" {
  take "x" {}
  take "y" {}
  emit "z" {}
  main {
    z = x + y
  }
}
`

func TestRun_EntryInvokesNamedWorkflow(t *testing.T) {
	h := newHarness(t, script.Options{})
	res, err := h.run(t, map[string]string{"main.hcl": sumScript + `
workflow {
  emit "total" {}
  publish "total" { mode = "copy" }
  main {
    total = sum(1, 2)
  }
}
`})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	require.True(t, res.Entry.Anonymous())
	require.True(t, firstOutput(t, res.Outputs, "total").RawEquals(cty.NumberIntVal(3)))

	records := h.publisher.Records()
	require.Len(t, records, 1)
	require.Equal(t, "total", records[0].Target)
	require.Equal(t, "copy", records[0].Options.String("mode", ""))
	require.True(t, records[0].Values[0].RawEquals(cty.NumberIntVal(3)))

	require.Equal(t, []string{"<entry>"}, h.observer.before)
	require.Equal(t, []string{"<entry>"}, h.observer.after)
	require.NoError(t, h.observer.errs[0])
	require.Equal(t, 0, h.session.Stack().Depth())
}

func TestRun_ExplicitEntry(t *testing.T) {
	h := newHarness(t, script.Options{Entry: "answer"})
	res, err := h.run(t, map[string]string{"main.hcl": `
workflow "answer" {
  emit "v" {}
  main {
    v = 42
  }
}
workflow {
  main {
    unused = 1
  }
}
`})
	require.NoError(t, err)
	require.Equal(t, "answer", res.Entry.Name())
	require.True(t, firstOutput(t, res.Outputs, "v").RawEquals(cty.NumberIntVal(42)))
}

func TestRun_UnknownEntrySuggestsClosestNames(t *testing.T) {
	h := newHarness(t, script.Options{Entry: "alph"})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow "alpha" {
  main {}
}
workflow "beta" {
  main {}
}
`})
	var unknown *registry.UnknownEntryError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "alph", unknown.Name)
	require.Equal(t, []string{"alpha"}, unknown.Suggestions)
	require.Empty(t, h.observer.before)
}

func TestRun_NoEntryReturnsTopLevelResult(t *testing.T) {
	h := newHarness(t, script.Options{})
	res, err := h.run(t, map[string]string{"main.hcl": sumScript + `
greeting = upper("hi")
three = out(sum(1, 2), "z")
`})
	require.NoError(t, err)
	require.Nil(t, res.Entry)
	require.Nil(t, res.Outputs)
	require.Empty(t, h.observer.before)

	globals := res.Globals.AsValueMap()
	require.Equal(t, "HI", globals["greeting"].AsString())
	ch, ok := dataflow.AsChannel(globals["three"])
	require.True(t, ok)
	v, err := ch.First(context.Background())
	require.NoError(t, err)
	require.True(t, v.RawEquals(cty.NumberIntVal(3)))
}

func TestRun_FirstUnnamedWorkflowIsEntry(t *testing.T) {
	h := newHarness(t, script.Options{})
	res, err := h.run(t, map[string]string{"main.hcl": `
workflow {
  emit "which" {}
  main {
    which = "first"
  }
}
workflow {
  emit "which" {}
  main {
    which = "second"
  }
}
`})
	require.NoError(t, err)
	require.Equal(t, "first", firstOutput(t, res.Outputs, "which").AsString())
	require.Len(t, h.observer.before, 1)
}

func TestRun_ArityErrorSurvivesExpressionCall(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": sumScript + `
workflow {
  main {
    r = sum(1)
  }
}
`})
	var arity *engine.ArityError
	require.ErrorAs(t, err, &arity)
	require.Equal(t, "sum", arity.Component)
	require.Equal(t, 2, arity.Declared)
	require.Equal(t, 1, arity.Received)

	require.Len(t, h.observer.after, 1)
	require.Error(t, h.observer.errs[0])
	require.Equal(t, 0, h.session.Stack().Depth())
}

func TestRun_EntryWithInputsFailsArity(t *testing.T) {
	h := newHarness(t, script.Options{Entry: "sum"})
	_, err := h.run(t, map[string]string{"main.hcl": sumScript})
	var arity *engine.ArityError
	require.ErrorAs(t, err, &arity)
	require.Equal(t, 0, arity.Received)
}

func TestRun_MissingOutput(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow {
  emit "never" {}
  main {
    other = 1
  }
}
`})
	var missing *engine.MissingOutputError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "never", missing.Name)
}

func TestRun_InvalidPublishTarget(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow {
  publish "plain" {}
  main {
    plain = 1
  }
}
`})
	var invalid *engine.InvalidPublishTargetError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "plain", invalid.Name)
}

func TestRun_PublishBundleFansOut(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow {
  publish "both" { mode = "copy" }
  main {
    both = bundle({ a = 1, b = 2 })
  }
}
`})
	require.NoError(t, err)
	records := h.publisher.Records()
	require.Len(t, records, 2)
	for _, rec := range records {
		require.Equal(t, "copy", rec.Options.String("mode", ""))
	}
}

func TestRun_UnknownDeclaration(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow "odd" {
  frobnicate "x" {}
  main {}
}
`})
	var unknown *component.UnknownDeclarationError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "frobnicate", unknown.Call)
}

func TestRun_DuplicateName(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": sumScript + sumScript})
	var dup *registry.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "sum", dup.Name)
}

func TestRun_ComponentShadowingBuiltin(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow "upper" {
  main {}
}
`})
	require.ErrorContains(t, err, "shadows a builtin function")
}

func TestRun_ProcessRunsAsTask(t *testing.T) {
	h := newHarness(t, script.Options{})
	res, err := h.run(t, map[string]string{"main.hcl": `
process "square" {
  take "x" {}
  emit "y" {}
  exec {
    y = x * x
  }
}
workflow {
  emit "r" {}
  publish "r" {}
  main {
    r = square(value(4))
  }
}
`})
	require.NoError(t, err)
	require.True(t, firstOutput(t, res.Outputs, "r").RawEquals(cty.NumberIntVal(16)))
	require.Len(t, h.publisher.Records(), 1)
}

func TestRun_ProcessFailureFailsRun(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
process "broken" {
  emit "y" {}
  exec {
    y = "a" * 2
  }
}
workflow {
  emit "r" {}
  main {
    r = broken()
  }
}
`})
	require.ErrorContains(t, err, "script run failed")
	require.ErrorContains(t, err, "process 'broken'")
}

func TestRun_SessionRunsOnce(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": "a = 1\n"})
	require.NoError(t, err)
	_, err = h.run(t, map[string]string{"main.hcl": "a = 1\n"})
	require.ErrorIs(t, err, script.ErrSessionUsed)
}

func TestRun_DirectoryScript(t *testing.T) {
	h := newHarness(t, script.Options{})
	dir := testutil.WriteScripts(t, map[string]string{
		"a_lib.hcl": sumScript,
		"b_main.hcl": `
workflow {
  emit "z" {}
  main {
    z = sum(2, 2)
  }
}
`,
	})
	res, err := h.session.Run(h.ctx, dir)
	require.NoError(t, err)
	require.True(t, firstOutput(t, res.Outputs, "z").RawEquals(cty.NumberIntVal(4)))
}

func TestRun_DirectoryScriptIncludeResolvesFromItsFile(t *testing.T) {
	h := newHarness(t, script.Options{})
	dir := testutil.WriteScripts(t, map[string]string{
		"proj/main.hcl": `
include "../mods/m.hcl" {}

workflow {
  emit "r" {}
  main {
    r = double(value(3))
  }
}
`,
		"proj/a/util.hcl": "broken = \n",
		"mods/m.hcl": `
workflow "double" {
  take "x" {}
  emit "y" {}
  main {
    y = x * 2
  }
}
`,
	})
	res, err := h.session.Run(h.ctx, filepath.Join(dir, "proj"))
	require.NoError(t, err, "subdirectories are not part of a directory script")
	require.True(t, firstOutput(t, res.Outputs, "r").RawEquals(cty.NumberIntVal(6)))
}

func TestRun_WarnsAboutUndefinedCalls(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": `
workflow "later" {
  emit "r" {}
  main {
    r = nosuch(sum(value(1), upper("a")))
  }
}
` + sumScript})
	require.NoError(t, err, "a body that never runs does not fail the script")

	logs := h.logs.String()
	require.Contains(t, logs, "Component calls functions the script does not define.")
	require.Contains(t, logs, "component=later")
	require.Contains(t, logs, "functions=[nosuch]")
}

func TestRun_NoWarningWhenCallsResolve(t *testing.T) {
	h := newHarness(t, script.Options{})
	_, err := h.run(t, map[string]string{"main.hcl": sumScript + `
workflow "uses" {
  emit "r" {}
  main {
    r = sum(value(1), value(2))
  }
}
`})
	require.NoError(t, err)
	require.NotContains(t, h.logs.String(), "does not define")
}

func TestNewSession_UnknownMode(t *testing.T) {
	ctx, _ := testutil.Context(t)
	_, err := script.NewSession(ctx, script.Options{Mode: "turbo"})
	require.ErrorContains(t, err, "unknown mode 'turbo'")
}
