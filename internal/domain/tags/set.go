package tags

import (
	"slices"
)

// Set is an entity-owned, branch-exclusive collection of tags.
// Insertion order is preserved for persistence; it carries no meaning otherwise.
type Set struct {
	registry *Registry
	tags     []Tag
}

// NewSet creates an empty set that consults reg for hierarchy pruning.
func NewSet(reg *Registry) *Set {
	return &Set{registry: reg}
}

// Registry returns the registry the set prunes against.
func (s *Set) Registry() *Registry {
	return s.registry
}

// OwnedTags lets a Set act as its own Owner.
func (s *Set) OwnedTags() *Set {
	return s
}

// Add inserts t and drops every ancestor and descendant of t already in the set.
// Invalid tags and tags already present are ignored.
func (s *Set) Add(t Tag) {
	if !t.IsValid() || s.Contains(t) {
		return
	}
	s.tags = append(s.tags, t)

	related, err := s.registry.FullHierarchy(t, true)
	if err != nil || len(related) == 0 {
		return
	}
	s.drop(related)
}

// AddMany adds each tag in order. Order matters: a later tag on a branch
// replaces an earlier one.
func (s *Set) AddMany(ts ...Tag) {
	for _, t := range ts {
		s.Add(t)
	}
}

// Remove drops t and every registered descendant of t held by the set.
// Ancestors of t are kept. Invalid tags are ignored.
func (s *Set) Remove(t Tag) {
	if !t.IsValid() {
		return
	}
	descendants, _ := s.registry.Descendants(t)
	s.drop(append(descendants, t))
}

// RemoveMany removes each tag in order.
func (s *Set) RemoveMany(ts ...Tag) {
	for _, t := range ts {
		s.Remove(t)
	}
}

// RemoveUnknown drops tags the registry no longer knows and returns them.
func (s *Set) RemoveUnknown() []Tag {
	var unknown []Tag
	s.tags = slices.DeleteFunc(s.tags, func(t Tag) bool {
		if s.registry.IsKnown(t) {
			return false
		}
		unknown = append(unknown, t)
		return true
	})
	return unknown
}

func (s *Set) drop(ts []Tag) {
	if len(ts) == 0 || len(s.tags) == 0 {
		return
	}
	gone := make(map[Tag]struct{}, len(ts))
	for _, t := range ts {
		gone[t] = struct{}{}
	}
	s.tags = slices.DeleteFunc(s.tags, func(t Tag) bool {
		_, ok := gone[t]
		return ok
	})
}

// Contains reports whether t is literally in the set.
func (s *Set) Contains(t Tag) bool {
	return t.IsValid() && slices.Contains(s.tags, t)
}

// IsEmpty reports whether the set holds no tags.
func (s *Set) IsEmpty() bool {
	return len(s.tags) == 0
}

// Len returns the number of tags in the set.
func (s *Set) Len() int {
	return len(s.tags)
}

// Clear removes every tag.
func (s *Set) Clear() {
	s.tags = nil
}

// Tags returns a snapshot of the set in insertion order.
func (s *Set) Tags() []Tag {
	return slices.Clone(s.tags)
}

// Sorted returns a snapshot of the set in lexicographic order.
func (s *Set) Sorted() []Tag {
	out := slices.Clone(s.tags)
	sortTags(out)
	return out
}

// Strings returns the tag names in insertion order.
func (s *Set) Strings() []string {
	return Strings(s.tags)
}

// Clone returns an independent copy sharing the same registry.
func (s *Set) Clone() *Set {
	return &Set{registry: s.registry, tags: slices.Clone(s.tags)}
}
