// pkg/model/author.go
package model

import (
	"sort"
	"strings"
)

// AuthorSet is the sorted, duplicate-free list of people credited on a book
type AuthorSet []string

// NewAuthorSet splits a comma-separated author field into an AuthorSet
func NewAuthorSet(raw string) AuthorSet {
	seen := make(map[string]struct{})
	set := AuthorSet{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}
	sort.Strings(set)
	return set
}

// Key returns a stable grouping key
func (a AuthorSet) Key() string {
	return strings.Join(a, "\x1f")
}

// String renders the set for display
func (a AuthorSet) String() string {
	return "(" + strings.Join(a, ", ") + ")"
}
