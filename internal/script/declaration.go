package script

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/hclutil"
	"github.com/specialistvlad/gridflow/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Block types inside a component.
const (
	blockTake    = "take"
	blockEmit    = "emit"
	blockPublish = "publish"
	blockMain    = "main"
	blockExec    = "exec"
)

// declaration is a workflow or process block not yet turned into a
// component.Definition.
type declaration struct {
	ctx    context.Context
	script *Script
	block  *hclsyntax.Block
	kind   component.Kind
	name   string
	src    []byte
}

func (d *declaration) payloadBlock() string {
	if d.kind == component.KindProcess {
		return blockExec
	}
	return blockMain
}

// Declare implements component.Declaration.
func (d *declaration) Declare(r *component.Resolver) error {
	for _, item := range hclutil.Items(d.block.Body) {
		stmt, err := d.statement(item)
		if err != nil {
			return err
		}
		if stmt == nil {
			continue
		}
		if err := r.Accept(stmt); err != nil {
			return fmt.Errorf("%s: %w", item.Range(), err)
		}
	}
	return nil
}

// statement maps one item of the component body to a declaration
// statement. The payload block maps to nil.
func (d *declaration) statement(item hclutil.Item) (component.Statement, error) {
	if item.Attribute != nil {
		return component.UnknownDecl{Name: item.Attribute.Name}, nil
	}

	block := item.Block
	switch block.Type {
	case blockTake, blockEmit, blockPublish:
		if len(block.Labels) != 1 {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Invalid %s block", block.Type),
				Detail:   fmt.Sprintf("A %s block needs exactly one label, the name.", block.Type),
				Subject:  block.DefRange().Ptr(),
			}}
		}
	}

	switch block.Type {
	case blockTake:
		return component.InputDecl{Name: block.Labels[0]}, nil
	case blockEmit:
		return component.OutputDecl{Name: block.Labels[0]}, nil
	case blockPublish:
		args, err := d.publishArgs(block)
		if err != nil {
			return nil, err
		}
		return component.PublishDecl{Name: block.Labels[0], Args: args}, nil
	case d.payloadBlock():
		return nil, nil
	default:
		return component.UnknownDecl{Name: block.Type}, nil
	}
}

// publishArgs evaluates the attributes of a publish block into one object
// argument. An empty block has no arguments.
func (d *declaration) publishArgs(block *hclsyntax.Block) ([]cty.Value, error) {
	if len(block.Body.Blocks) > 0 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block in publish",
			Detail:   "A publish block only holds option assignments.",
			Subject:  block.Body.Blocks[0].DefRange().Ptr(),
		}}
	}
	attrs := hclutil.SortedAttributes(block.Body)
	if len(attrs) == 0 {
		return nil, nil
	}

	evalCtx := d.script.exprContext(d.ctx)
	opts := make(map[string]cty.Value, len(attrs))
	for _, attr := range attrs {
		v, diags := attr.Expr.Value(evalCtx)
		if err := hclutil.DiagnosticsError(diags); err != nil {
			return nil, err
		}
		opts[attr.Name] = v
	}
	return []cty.Value{cty.ObjectVal(opts)}, nil
}

// Compile implements component.Declaration.
func (d *declaration) Compile(r *component.Resolver) (component.Body, error) {
	payload, diags := hclutil.FindUniqueBlock(d.block.Body.Blocks, d.payloadBlock())
	if diags.HasErrors() {
		return nil, diags
	}

	if d.kind == component.KindProcess {
		if payload == nil {
			return nil, fmt.Errorf("%s: process has no exec block", d.block.DefRange())
		}
		sig := task.Signature{Name: d.name, Inputs: r.Inputs(), Outputs: r.Outputs()}
		return d.script.session.compiler.Compile(sig, payload.Body, d.source())
	}

	var main *hclsyntax.Body
	if payload != nil {
		main = payload.Body
	}
	body, err := newWorkflowBody(d.script, main, d.source())
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Clone implements component.Declaration.
func (d *declaration) Clone() component.Declaration {
	clone := *d
	return &clone
}

// Origin implements component.Declaration.
func (d *declaration) Origin() component.Origin {
	return component.Origin{FilePath: d.script.path, Range: d.block.Range()}
}

func (d *declaration) source() string {
	rng := d.block.Range()
	if rng.End.Byte > len(d.src) || rng.Start.Byte > rng.End.Byte {
		return ""
	}
	return string(d.src[rng.Start.Byte:rng.End.Byte])
}
