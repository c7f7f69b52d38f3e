package script

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Include is a decoded `include` block.
type Include struct {
	Path   string
	Import []string
	Alias  map[string]string
	Range  hcl.Range
}

func decodeInclude(ctx context.Context, s *Script, block *hclsyntax.Block) (*Include, error) {
	if len(block.Labels) != 1 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid include block",
			Detail:   "An include block needs exactly one label, the path of the script to include.",
			Subject:  block.DefRange().Ptr(),
		}}
	}
	inc := &Include{Path: block.Labels[0], Alias: map[string]string{}, Range: block.DefRange()}

	evalCtx := s.exprContext(ctx)
	for _, attr := range hclutil.SortedAttributes(block.Body) {
		v, diags := attr.Expr.Value(evalCtx)
		if err := hclutil.DiagnosticsError(diags); err != nil {
			return nil, err
		}
		switch attr.Name {
		case "import":
			if err := decodeAs(v, cty.List(cty.String), &inc.Import); err != nil {
				return nil, fmt.Errorf("%s: import must be a list of component names: %w", attr.SrcRange, err)
			}
		case "alias":
			if err := decodeAs(v, cty.Map(cty.String), &inc.Alias); err != nil {
				return nil, fmt.Errorf("%s: alias must map component names to new names: %w", attr.SrcRange, err)
			}
		default:
			return nil, fmt.Errorf("%s: unsupported include argument '%s'", attr.SrcRange, attr.Name)
		}
	}
	if len(block.Body.Blocks) > 0 {
		return nil, fmt.Errorf("%s: include takes no nested blocks", block.Body.Blocks[0].DefRange())
	}
	return inc, nil
}

func decodeAs(v cty.Value, ty cty.Type, target any) error {
	converted, err := convert.Convert(v, ty)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, target)
}

// include loads the script inc names as a module and registers the selected
// components into s.
func (sess *Session) include(ctx context.Context, s *Script, inc *Include) error {
	logger := ctxlog.FromContext(ctx)

	// Relative paths resolve against the file holding the include block.
	path := inc.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(inc.Range.Filename), path)
	}
	module, err := sess.loadModule(ctx, path)
	if err != nil {
		return fmt.Errorf("%s: include '%s': %w", inc.Range, inc.Path, err)
	}

	names := inc.Import
	if len(names) == 0 {
		names = module.registry.Names()
	}
	for from := range inc.Alias {
		if !slices.Contains(names, from) {
			return fmt.Errorf("%s: include '%s': alias for '%s', which is not imported", inc.Range, inc.Path, from)
		}
	}

	for _, name := range names {
		def, ok := module.registry.Lookup(name)
		if !ok {
			return fmt.Errorf("%s: include '%s': module declares no component '%s', closest: %v", inc.Range, inc.Path, name, module.registry.Suggest(name))
		}
		if alias, ok := inc.Alias[name]; ok && alias != name {
			def = def.Rename(alias)
		}
		if err := register(ctx, s, def); err != nil {
			return err
		}
		logger.Debug("Included component.", "name", def.Name(), "from", name, "module", module.path)
	}
	return nil
}

// loadModule loads path once per session.
func (sess *Session) loadModule(ctx context.Context, path string) (*Script, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if slices.Contains(sess.loading, abs) {
		return nil, &IncludeCycleError{Chain: append(slices.Clone(sess.loading), abs)}
	}
	if module, ok := sess.modules[abs]; ok {
		return module, nil
	}

	module, err := sess.load(ctx, abs, true)
	if err != nil {
		return nil, err
	}
	sess.modules[abs] = module
	return module, nil
}
