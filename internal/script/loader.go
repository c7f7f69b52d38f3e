package script

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/fsutil"
	"github.com/specialistvlad/gridflow/internal/hclutil"
)

// Extension is the file extension of script files.
const Extension = ".hcl"

// Top-level block types.
const (
	blockWorkflow = "workflow"
	blockProcess  = "process"
	blockInclude  = "include"
)

// load parses path, a file or a directory of script files, and evaluates its
// top-level items in order.
func (sess *Session) load(ctx context.Context, path string, module bool) (*Script, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ResolveScriptPath(ctx, path, Extension)
	if err != nil {
		return nil, err
	}

	sess.loading = append(sess.loading, path)
	defer func() { sess.loading = slices.Delete(sess.loading, len(sess.loading)-1, len(sess.loading)) }()

	s := newScript(sess, files[0])
	parser := hclparse.NewParser()
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse script file %s: %w", file, diags)
		}
		body, ok := f.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("script file %s is not in native HCL syntax", file)
		}
		if err := sess.evaluate(ctx, s, body, f.Bytes); err != nil {
			return nil, err
		}
	}

	s.warnUndefinedCalls(ctx)
	logger.Debug("Script loaded.", "path", path, "module", module, "files", len(files), "components", s.registry.Names(), "globals", len(s.globals))
	return s, nil
}

func (sess *Session) evaluate(ctx context.Context, s *Script, body *hclsyntax.Body, src []byte) error {
	for _, item := range hclutil.Items(body) {
		if attr := item.Attribute; attr != nil {
			v, diags := attr.Expr.Value(s.exprContext(ctx))
			if err := hclutil.DiagnosticsError(diags); err != nil {
				return fmt.Errorf("failed to evaluate '%s': %w", attr.Name, err)
			}
			s.setGlobal(ctx, attr.Name, v)
			continue
		}

		if err := sess.declare(ctx, s, item.Block, src); err != nil {
			return err
		}
	}
	return nil
}

func (sess *Session) declare(ctx context.Context, s *Script, block *hclsyntax.Block, src []byte) error {
	switch block.Type {
	case blockWorkflow:
		if len(block.Labels) > 1 {
			return labelError(block, "A workflow block takes at most one label, its name.")
		}
		name := ""
		if len(block.Labels) == 1 {
			name = block.Labels[0]
		}
		def, err := sess.define(ctx, s, block, src, name, component.KindWorkflow)
		if err != nil {
			return err
		}
		return sess.strategy.Workflow(ctx, s, def)

	case blockProcess:
		if len(block.Labels) != 1 {
			return labelError(block, "A process block needs exactly one label, its name.")
		}
		def, err := sess.define(ctx, s, block, src, block.Labels[0], component.KindProcess)
		if err != nil {
			return err
		}
		return sess.strategy.Process(ctx, s, def)

	case blockInclude:
		inc, err := decodeInclude(ctx, s, block)
		if err != nil {
			return err
		}
		return sess.strategy.Include(ctx, s, inc)

	default:
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block type",
			Detail:   fmt.Sprintf("Blocks of type %q are not expected here. Expected workflow, process or include.", block.Type),
			Subject:  block.DefRange().Ptr(),
		}}
	}
}

func (sess *Session) define(ctx context.Context, s *Script, block *hclsyntax.Block, src []byte, name string, kind component.Kind) (*component.Definition, error) {
	decl := &declaration{ctx: ctx, script: s, block: block, kind: kind, name: name, src: src}
	def, err := component.New(s, decl, name, kind)
	if err != nil {
		return nil, err
	}
	s.recordCalls(def, block.Body)
	return def, nil
}

func labelError(block *hclsyntax.Block, detail string) error {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid %s block", block.Type),
		Detail:   detail,
		Subject:  block.DefRange().Ptr(),
	}}
}
