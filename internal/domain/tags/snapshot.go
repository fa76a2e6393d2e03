package tags

import (
	"fmt"
	"slices"
)

// Snapshot is the persistence shape of a Registry: the ordered root list,
// the parent lookup table and the child lookup table.
type Snapshot struct {
	Roots    []string            `json:"roots" yaml:"roots"`
	Parents  map[string]string   `json:"parents" yaml:"parents"`
	Children map[string][]string `json:"children" yaml:"children"`
}

// Snapshot captures the registry's current structure. Child lists are sorted.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Roots:    Strings(r.roots),
		Parents:  make(map[string]string, len(r.parents)),
		Children: make(map[string][]string, len(r.children)),
	}
	for child, parent := range r.parents {
		snap.Parents[child.name] = parent.name
	}
	for parent := range r.children {
		snap.Children[parent.name] = Strings(r.Children(parent))
	}
	return snap
}

// Restore builds a registry from a snapshot and verifies the forest invariant.
func Restore(snap Snapshot) (*Registry, error) {
	r := NewRegistry()

	for _, s := range snap.Roots {
		t, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: root: %w", ErrCorruptSnapshot, err)
		}
		if r.isRoot(t) {
			return nil, fmt.Errorf("%w: duplicate root %q", ErrCorruptSnapshot, s)
		}
		r.insertRoot(t)
	}
	for c, p := range snap.Parents {
		child, err := Parse(c)
		if err != nil {
			return nil, fmt.Errorf("%w: parent table: %w", ErrCorruptSnapshot, err)
		}
		parent, err := Parse(p)
		if err != nil {
			return nil, fmt.Errorf("%w: parent table: %w", ErrCorruptSnapshot, err)
		}
		r.parents[child] = parent
	}
	for p, kids := range snap.Children {
		parent, err := Parse(p)
		if err != nil {
			return nil, fmt.Errorf("%w: child table: %w", ErrCorruptSnapshot, err)
		}
		if len(kids) == 0 {
			continue
		}
		set := make(map[Tag]struct{}, len(kids))
		for _, k := range kids {
			child, err := Parse(k)
			if err != nil {
				return nil, fmt.Errorf("%w: child table: %w", ErrCorruptSnapshot, err)
			}
			set[child] = struct{}{}
		}
		r.children[parent] = set
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the forest invariant:
//   - roots are sorted, unique and have no parent
//   - every parent edge has a matching child edge and vice versa
//   - every child is named "<parent>.<segment>"
//   - every tag reaches a root through its parent chain
func (r *Registry) Validate() error {
	if !slices.IsSortedFunc(r.roots, Tag.Compare) {
		return fmt.Errorf("%w: roots are not sorted", ErrCorruptSnapshot)
	}
	for i, root := range r.roots {
		if i > 0 && r.roots[i-1] == root {
			return fmt.Errorf("%w: duplicate root %q", ErrCorruptSnapshot, root)
		}
		if root.Depth() != 0 {
			return fmt.Errorf("%w: root %q has depth %d", ErrCorruptSnapshot, root, root.Depth())
		}
		if _, ok := r.parents[root]; ok {
			return fmt.Errorf("%w: root %q has a parent", ErrCorruptSnapshot, root)
		}
	}

	for child, parent := range r.parents {
		if child.Parent() != parent {
			return fmt.Errorf("%w: %q is not a child of %q", ErrCorruptSnapshot, child, parent)
		}
		if _, ok := r.children[parent][child]; !ok {
			return fmt.Errorf("%w: %q missing from children of %q", ErrCorruptSnapshot, child, parent)
		}
	}
	for parent, kids := range r.children {
		if len(kids) == 0 {
			return fmt.Errorf("%w: empty child set for %q", ErrCorruptSnapshot, parent)
		}
		for child := range kids {
			if p, ok := r.parents[child]; !ok || p != parent {
				return fmt.Errorf("%w: %q listed under %q without a parent edge", ErrCorruptSnapshot, child, parent)
			}
		}
	}

	// Depth strictly decreases along parent edges, so chains are finite;
	// each one must end at a root.
	for child := range r.parents {
		top := child
		for p, ok := r.parents[top]; ok; p, ok = r.parents[top] {
			top = p
		}
		if !r.isRoot(top) {
			return fmt.Errorf("%w: %q does not reach a root", ErrCorruptSnapshot, child)
		}
	}
	return nil
}
