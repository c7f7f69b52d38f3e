package registry

import (
	"sort"

	"github.com/agext/levenshtein"
	"github.com/specialistvlad/gridflow/internal/component"
)

// Resolve looks up an explicitly requested entry component.
func (r *Registry) Resolve(name string) (*component.Definition, error) {
	if def, ok := r.byName[name]; ok {
		return def, nil
	}
	return nil, &UnknownEntryError{Name: name, Suggestions: r.Suggest(name)}
}

// Suggest returns every registered name at the smallest edit distance from
// name, sorted. It returns nil for an empty registry.
func (r *Registry) Suggest(name string) []string {
	best := -1
	var matches []string
	for _, candidate := range r.order {
		d := levenshtein.Distance(name, candidate, nil)
		switch {
		case best == -1 || d < best:
			best = d
			matches = []string{candidate}
		case d == best:
			matches = append(matches, candidate)
		}
	}
	sort.Strings(matches)
	return matches
}
