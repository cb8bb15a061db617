// filepath: internal/listview/pipeline.go
// Package listview is the client-side list controller shared by every console
// page: fetch, then tab/filter/search, then paginate, then aggregate.
package listview

import (
	"strings"
)

// All is the "no constraint" value of every tab and structured filter.
const All = "All"

// Tab is a coarse category shown above a list. A nil Match accepts everything.
type Tab[T any] struct {
	Key   string
	Label string
	Match func(T) bool
}

// FilterDef is a field-keyed constraint. Match is only consulted when the
// selected value is not All.
type FilterDef[T any] struct {
	Key   string
	Label string
	Match func(item T, value string) bool
}

// Equals builds a FilterDef matching one string field exactly.
func Equals[T any](key, label string, field func(T) string) FilterDef[T] {
	return FilterDef[T]{
		Key:   key,
		Label: label,
		Match: func(item T, value string) bool { return field(item) == value },
	}
}

// Selector is the full set of list selectors.
type Selector struct {
	Tab     string
	Filters map[string]string
	Query   string
}

// Rules describe how a page narrows its collection.
type Rules[T any] struct {
	Tabs    []Tab[T]
	Filters []FilterDef[T]
	// Searchable returns the fields the free-text query is matched against.
	Searchable func(T) []string
}

func (r Rules[T]) tab(key string) *Tab[T] {
	if key == "" || key == All {
		return nil
	}
	for i := range r.Tabs {
		if strings.EqualFold(r.Tabs[i].Key, key) {
			return &r.Tabs[i]
		}
	}
	return nil
}

// Filter applies the tab predicate, then every structured filter, then the
// search query. It always returns a new slice.
func Filter[T any](items []T, rules Rules[T], sel Selector) []T {
	tab := rules.tab(sel.Tab)
	out := make([]T, 0, len(items))

	for _, item := range items {
		if tab != nil && tab.Match != nil && !tab.Match(item) {
			continue
		}
		if !matchesFilters(item, rules.Filters, sel.Filters) {
			continue
		}
		if sel.Query != "" && rules.Searchable != nil && !MatchesQuery(sel.Query, rules.Searchable(item)...) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesFilters[T any](item T, defs []FilterDef[T], values map[string]string) bool {
	for _, def := range defs {
		value, ok := values[def.Key]
		if !ok || value == "" || value == All {
			continue
		}
		if !def.Match(item, value) {
			return false
		}
	}
	return true
}

// MatchesQuery reports whether query is a case-insensitive substring of any
// field. An empty query matches everything.
func MatchesQuery(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// DistinctOptions returns All followed by the distinct non-empty values in
// first-seen order.
func DistinctOptions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{All}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
