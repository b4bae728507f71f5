// Package skills provides case-insensitive skill names and sets of them.
package skills

import (
	"sort"
	"strings"
)

// Name is a skill identifier such as "React". Two names are equal when their
// normalized forms are equal.
type Name string

// Normalize returns the canonical comparison key for a skill name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns the canonical comparison key of n.
func (n Name) Key() string {
	return Normalize(string(n))
}

// Equal reports whether n and other name the same skill.
func (n Name) Equal(other Name) bool {
	return n.Key() == other.Key()
}

func (n Name) String() string {
	return strings.TrimSpace(string(n))
}

// Set is a set of skill names keyed by their normalized form. The first
// spelling added is kept for display. The zero value is ready to use.
type Set struct {
	items map[string]Name
	order []string
}

// NewSet builds a set from the provided names, skipping blanks and duplicates.
func NewSet(names ...string) Set {
	var s Set
	for _, name := range names {
		s.Add(Name(name))
	}
	return s
}

// Add inserts name and reports whether it was not already present.
// Blank names are ignored.
func (s *Set) Add(name Name) bool {
	key := name.Key()
	if key == "" {
		return false
	}

	if s.items == nil {
		s.items = make(map[string]Name)
	}

	if _, ok := s.items[key]; ok {
		return false
	}

	s.items[key] = Name(name.String())
	s.order = append(s.order, key)
	return true
}

// Contains reports whether name is in the set.
func (s Set) Contains(name Name) bool {
	_, ok := s.items[name.Key()]
	return ok
}

func (s Set) Len() int {
	return len(s.items)
}

// Each calls fn for every name in insertion order.
func (s Set) Each(fn func(Name)) {
	for _, key := range s.order {
		fn(s.items[key])
	}
}

// Names returns the display names sorted case-insensitively.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.order))
	for _, key := range s.order {
		names = append(names, string(s.items[key]))
	}

	sort.Slice(names, func(i, j int) bool {
		return Normalize(names[i]) < Normalize(names[j])
	})

	return names
}

// Union returns a new set holding the names of s followed by those of other.
func (s Set) Union(other Set) Set {
	var out Set
	s.Each(func(n Name) { out.Add(n) })
	other.Each(func(n Name) { out.Add(n) })
	return out
}
