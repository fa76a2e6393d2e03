package tags

import (
	"slices"
	"sort"
)

// ChangeKind describes a registry mutation.
type ChangeKind int

const (
	ChangeRegistered ChangeKind = iota
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeRegistered:
		return "registered"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is delivered to a registry observer after every successful mutation.
// For ChangeRegistered, Tags lists the nodes created (root first).
// For ChangeRemoved, Tags lists the removed tag followed by its descendants.
type Change struct {
	Kind ChangeKind
	Tag  Tag
	Tags []Tag
}

// Registry holds the forest of known tags.
type Registry struct {
	roots    []Tag                    // sorted
	parents  map[Tag]Tag              // child -> parent, absent for roots
	children map[Tag]map[Tag]struct{} // parent -> children, absent when empty
	observer func(Change)
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		roots:    make([]Tag, 0),
		parents:  make(map[Tag]Tag),
		children: make(map[Tag]map[Tag]struct{}),
	}
}

// Observe installs fn as the change observer, replacing any previous one.
// Pass nil to stop observing.
func (r *Registry) Observe(fn func(Change)) {
	r.observer = fn
}

func (r *Registry) notify(c Change) {
	if r.observer != nil {
		r.observer(c)
	}
}

// Register validates s and adds it, creating every missing ancestor node.
// Registering a string equal to an existing root tag fails with ReasonAlreadyExists;
// registering an existing non-root tag is a no-op. Nothing is mutated on failure.
func (r *Registry) Register(s string) error {
	_, err := r.register(s)
	return err
}

// MustRegister registers every string and panics on the first error.
func (r *Registry) MustRegister(values ...string) *Registry {
	for _, v := range values {
		if err := r.Register(v); err != nil {
			panic(err)
		}
	}
	return r
}

// RegisterAll registers every string, continuing past failures.
// It returns the tags created and one error per rejected string.
func (r *Registry) RegisterAll(values ...string) ([]Tag, []error) {
	var created []Tag
	var errs []error
	for _, v := range values {
		added, err := r.register(v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		created = append(created, added...)
	}
	return created, errs
}

func (r *Registry) register(s string) ([]Tag, error) {
	if err := checkSyntax(s); err != nil {
		return nil, err
	}
	tag := Tag{name: s}
	if r.isRoot(tag) {
		return nil, &RegistrationError{Tag: s, Reason: ReasonAlreadyExists, Pos: -1}
	}

	var created []Tag
	parts := tag.Parts()
	for i, part := range parts {
		if r.IsKnown(part) {
			continue
		}
		if i == 0 {
			r.insertRoot(part)
		} else {
			parent := parts[i-1]
			r.parents[part] = parent
			kids, ok := r.children[parent]
			if !ok {
				kids = make(map[Tag]struct{})
				r.children[parent] = kids
			}
			kids[part] = struct{}{}
		}
		created = append(created, part)
	}

	if len(created) > 0 {
		r.notify(Change{Kind: ChangeRegistered, Tag: tag, Tags: created})
	}
	return created, nil
}

func (r *Registry) insertRoot(t Tag) {
	i, _ := slices.BinarySearchFunc(r.roots, t, Tag.Compare)
	r.roots = slices.Insert(r.roots, i, t)
}

func (r *Registry) isRoot(t Tag) bool {
	_, found := slices.BinarySearchFunc(r.roots, t, Tag.Compare)
	return found
}

// Remove deletes t and every descendant of t. Tags held by Sets are not
// touched; see Set.RemoveUnknown for an explicit cascade.
// Returns the removed tags, t first.
func (r *Registry) Remove(t Tag) ([]Tag, error) {
	if !t.IsValid() {
		return nil, ErrInvalidTag
	}
	if !r.IsKnown(t) {
		return nil, &UnknownTagError{Tag: t.name}
	}

	if r.isRoot(t) {
		i, _ := slices.BinarySearchFunc(r.roots, t, Tag.Compare)
		r.roots = slices.Delete(r.roots, i, i+1)
	} else {
		parent := r.parents[t]
		if kids, ok := r.children[parent]; ok {
			delete(kids, t)
			if len(kids) == 0 {
				delete(r.children, parent)
			}
		}
	}

	removed := append([]Tag{t}, r.descendants(t)...)
	for _, x := range removed {
		delete(r.parents, x)
		delete(r.children, x)
	}

	r.notify(Change{Kind: ChangeRemoved, Tag: t, Tags: removed})
	return removed, nil
}

// Lookup returns the tag named s if it is known.
func (r *Registry) Lookup(s string) (Tag, error) {
	t, err := Parse(s)
	if err != nil {
		return Tag{}, err
	}
	if !r.IsKnown(t) {
		return Tag{}, &UnknownTagError{Tag: s}
	}
	return t, nil
}

// IsKnown reports whether t is a root tag or has a parent edge.
func (r *Registry) IsKnown(t Tag) bool {
	if !t.IsValid() {
		return false
	}
	if _, ok := r.parents[t]; ok {
		return true
	}
	return r.isRoot(t)
}

// HasChildren reports whether t has at least one child.
func (r *Registry) HasChildren(t Tag) bool {
	return len(r.children[t]) > 0
}

// Parent returns the registered parent of t.
func (r *Registry) Parent(t Tag) (Tag, bool) {
	p, ok := r.parents[t]
	return p, ok
}

// Children returns the immediate children of t, sorted.
func (r *Registry) Children(t Tag) []Tag {
	kids := r.children[t]
	out := make([]Tag, 0, len(kids))
	for k := range kids {
		out = append(out, k)
	}
	sortTags(out)
	return out
}

// Roots returns the root tags, sorted.
func (r *Registry) Roots() []Tag {
	return slices.Clone(r.roots)
}

// Len returns the number of known tags.
func (r *Registry) Len() int {
	return len(r.roots) + len(r.parents)
}

// All returns every known tag, sorted.
func (r *Registry) All() []Tag {
	out := make([]Tag, 0, r.Len())
	r.Walk(func(t Tag, _ int) bool {
		out = append(out, t)
		return true
	})
	sortTags(out)
	return out
}

// Walk visits every known tag depth-first in pre-order, roots and siblings in
// sorted order. Returning false from fn skips the subtree below that tag.
func (r *Registry) Walk(fn func(t Tag, depth int) bool) {
	var visit func(t Tag, depth int)
	visit = func(t Tag, depth int) {
		if !fn(t, depth) {
			return
		}
		for _, c := range r.Children(t) {
			visit(c, depth+1)
		}
	}
	for _, root := range r.roots {
		visit(root, 0)
	}
}

// Ancestors returns the registered ancestors of t, root first.
// Unknown tags have no ancestors.
func (r *Registry) Ancestors(t Tag) ([]Tag, error) {
	if !t.IsValid() {
		return nil, ErrInvalidTag
	}
	var out []Tag
	for p, ok := r.parents[t]; ok; p, ok = r.parents[p] {
		out = append(out, p)
	}
	slices.Reverse(out)
	return out, nil
}

// Descendants returns every registered descendant of t in depth-first order.
// Unknown tags have no descendants.
func (r *Registry) Descendants(t Tag) ([]Tag, error) {
	if !t.IsValid() {
		return nil, ErrInvalidTag
	}
	return r.descendants(t), nil
}

func (r *Registry) descendants(t Tag) []Tag {
	var out []Tag
	for _, c := range r.Children(t) {
		out = append(out, c)
		out = append(out, r.descendants(c)...)
	}
	return out
}

// FullHierarchy returns the ancestors of t, then t unless excludeSelf, then its descendants.
func (r *Registry) FullHierarchy(t Tag, excludeSelf bool) ([]Tag, error) {
	ancestors, err := r.Ancestors(t)
	if err != nil {
		return nil, err
	}
	out := ancestors
	if !excludeSelf {
		out = append(out, t)
	}
	return append(out, r.descendants(t)...), nil
}

// IsDescendantOf reports whether ancestor lies on the registered parent chain of t.
// A tag is not its own descendant.
func (r *Registry) IsDescendantOf(t, ancestor Tag) bool {
	if !ancestor.IsValid() {
		return false
	}
	for p, ok := r.parents[t]; ok; p, ok = r.parents[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Related reports whether a and b are distinct tags on the same registered branch.
func (r *Registry) Related(a, b Tag) bool {
	return r.IsDescendantOf(a, b) || r.IsDescendantOf(b, a)
}

func sortTags(ts []Tag) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].name < ts[j].name })
}
