package tql

import (
	"fmt"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// Kind identifies the variant of an Expression.
type Kind int

const (
	// KindNone is the uninitialized variant. Evaluating it is an error.
	KindNone Kind = iota
	KindAnyTagsMatch
	KindAllTagsMatch
	KindNoTagsMatch
	KindAnyExpressionsMatch
	KindAllExpressionsMatch
	KindNoExpressionsMatch
)

var kindNames = map[Kind]string{
	KindNone:                "none",
	KindAnyTagsMatch:        "any_tags",
	KindAllTagsMatch:        "all_tags",
	KindNoTagsMatch:         "no_tags",
	KindAnyExpressionsMatch: "any_expressions",
	KindAllExpressionsMatch: "all_expressions",
	KindNoExpressionsMatch:  "no_expressions",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a serialized kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown expression kind %q", s)
}

// IsTagKind reports whether expressions of this kind carry a tag list.
func (k Kind) IsTagKind() bool {
	return k == KindAnyTagsMatch || k == KindAllTagsMatch || k == KindNoTagsMatch
}

// IsExpressionKind reports whether expressions of this kind carry child expressions.
func (k Kind) IsExpressionKind() bool {
	return k == KindAnyExpressionsMatch || k == KindAllExpressionsMatch || k == KindNoExpressionsMatch
}

// Expression is one node of a query tree. Tag kinds use Tags; expression
// kinds use Expressions. Each node owns its children.
type Expression struct {
	Kind        Kind
	Tags        []tags.Tag
	Expressions []*Expression
}

// AnyTags matches when any candidate tag is in ts.
func AnyTags(ts ...tags.Tag) *Expression {
	return &Expression{Kind: KindAnyTagsMatch, Tags: ts}
}

// AllTags matches when every candidate tag is in ts. An empty candidate
// collection matches vacuously.
func AllTags(ts ...tags.Tag) *Expression {
	return &Expression{Kind: KindAllTagsMatch, Tags: ts}
}

// NoTags matches when no candidate tag is in ts.
func NoTags(ts ...tags.Tag) *Expression {
	return &Expression{Kind: KindNoTagsMatch, Tags: ts}
}

// AnyOf matches when any child matches.
func AnyOf(children ...*Expression) *Expression {
	return &Expression{Kind: KindAnyExpressionsMatch, Expressions: children}
}

// AllOf matches when every child matches.
func AllOf(children ...*Expression) *Expression {
	return &Expression{Kind: KindAllExpressionsMatch, Expressions: children}
}

// NoneOf matches when no child matches.
func NoneOf(children ...*Expression) *Expression {
	return &Expression{Kind: KindNoExpressionsMatch, Expressions: children}
}

// Not negates a single expression.
func Not(e *Expression) *Expression {
	return NoneOf(e)
}

// Walk visits e and its descendants depth-first, passing each node's path.
// Returning false from fn skips the node's children.
func (e *Expression) Walk(fn func(path string, node *Expression) bool) {
	e.walk("$", fn)
}

func (e *Expression) walk(path string, fn func(string, *Expression) bool) {
	if !fn(path, e) || e == nil {
		return
	}
	for i, child := range e.Expressions {
		child.walk(fmt.Sprintf("%s[%d]", path, i), fn)
	}
}

// ReferencedTags returns every tag named anywhere in the tree, in visit order.
func (e *Expression) ReferencedTags() []tags.Tag {
	var out []tags.Tag
	e.Walk(func(_ string, node *Expression) bool {
		if node != nil {
			out = append(out, node.Tags...)
		}
		return true
	})
	return out
}

// String renders the expression in canonical TQL.
func (e *Expression) String() string {
	return Format(e)
}

// Query wraps the root of an expression tree.
type Query struct {
	Root *Expression
}

// NewQuery wraps root.
func NewQuery(root *Expression) *Query {
	return &Query{Root: root}
}

// ParseQuery parses TQL text into a Query.
func ParseQuery(input string) (*Query, error) {
	root, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return &Query{Root: root}, nil
}

// String renders the query in canonical TQL.
func (q *Query) String() string {
	return Format(q.Root)
}
