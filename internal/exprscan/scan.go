// Package exprscan reports what HCL expressions refer to: the root variables
// they read and the functions they call.
package exprscan

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Refs is the result of a scan. Both lists are sorted and unique.
type Refs struct {
	Variables []string
	Functions []string
}

// Expressions scans exprs. Nil expressions are ignored.
func Expressions(exprs ...hcl.Expression) Refs {
	vars := make(map[string]struct{})
	funcs := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, traversal := range expr.Variables() {
			vars[traversal.RootName()] = struct{}{}
		}

		// Variables() does not report function calls.
		if node, ok := expr.(hclsyntax.Node); ok {
			hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					funcs[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}
	return Refs{Variables: sortedKeys(vars), Functions: sortedKeys(funcs)}
}

// Body scans every attribute of body and of its nested blocks.
func Body(body *hclsyntax.Body) Refs {
	return Expressions(collect(body, nil)...)
}

func collect(body *hclsyntax.Body, exprs []hcl.Expression) []hcl.Expression {
	if body == nil {
		return exprs
	}
	for _, attr := range body.Attributes {
		exprs = append(exprs, attr.Expr)
	}
	for _, block := range body.Blocks {
		exprs = collect(block.Body, exprs)
	}
	return exprs
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
