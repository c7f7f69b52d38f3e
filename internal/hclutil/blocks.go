package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// FindUniqueBlock searches blocks for the one of the given type.
// It returns a diagnostic error if more than one is found, and nil if none is.
func FindUniqueBlock(blocks hclsyntax.Blocks, name string) (*hclsyntax.Block, hcl.Diagnostics) {
	var found *hclsyntax.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type != name {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + name + "\" block",
				Detail:   "Only one \"" + name + "\" block is allowed.",
				Subject:  block.DefRange().Ptr(),
			})
			continue
		}
		found = block
	}

	return found, diags
}

// SortedAttributes returns the attributes of body in the order they appear in
// the source. hclsyntax keeps attributes in a map, so this is the only way to
// recover statement order.
func SortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sortByStart(attrs, func(a *hclsyntax.Attribute) int { return a.SrcRange.Start.Byte })
	return attrs
}

// Item is one attribute or block of a body, in source order.
type Item struct {
	Attribute *hclsyntax.Attribute
	Block     *hclsyntax.Block
}

// Range returns the source range of the item.
func (i Item) Range() hcl.Range {
	if i.Attribute != nil {
		return i.Attribute.SrcRange
	}
	return i.Block.Range()
}

// Items returns every attribute and block of body in source order.
func Items(body *hclsyntax.Body) []Item {
	items := make([]Item, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		items = append(items, Item{Attribute: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, Item{Block: block})
	}
	sortByStart(items, func(i Item) int { return i.Range().Start.Byte })
	return items
}

func sortByStart[T any](s []T, start func(T) int) {
	// insertion sort keeps equal offsets stable and bodies are small
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && start(s[j]) < start(s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
