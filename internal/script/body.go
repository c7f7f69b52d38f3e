package script

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/binding"
	"github.com/specialistvlad/gridflow/internal/exprscan"
	"github.com/specialistvlad/gridflow/internal/hclutil"
)

// workflowBody runs the statements of a `main` block in source order. Each
// statement binds one local variable of the invocation.
type workflowBody struct {
	script     *Script
	statements []*hclsyntax.Attribute
	source     string
	refs       []string
}

func newWorkflowBody(owner *Script, main *hclsyntax.Body, source string) (*workflowBody, error) {
	body := &workflowBody{script: owner, source: source}
	if main == nil {
		return body, nil
	}

	var diags hcl.Diagnostics
	for _, block := range main.Blocks {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block in main",
			Detail:   fmt.Sprintf("A main block only holds assignments; found a %q block.", block.Type),
			Subject:  block.DefRange().Ptr(),
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}

	body.statements = hclutil.SortedAttributes(main)
	body.refs = exprscan.Body(main).Variables
	return body, nil
}

// Run implements component.Body.
func (w *workflowBody) Run(ctx context.Context, b *binding.Binding) error {
	evalCtx := b.EvalContext().NewChild()
	evalCtx.Functions = w.script.functions(ctx)

	for _, stmt := range w.statements {
		v, diags := stmt.Expr.Value(evalCtx)
		if err := hclutil.DiagnosticsError(diags); err != nil {
			return err
		}
		b.Set(stmt.Name, v)
	}
	return nil
}

// Source implements component.Body.
func (w *workflowBody) Source() string { return w.source }

// References implements component.Body.
func (w *workflowBody) References() []string { return append([]string(nil), w.refs...) }
