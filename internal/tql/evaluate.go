package tql

import (
	"slices"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
)

// Check reports the first node that cannot be evaluated, or nil.
func (e *Expression) Check() error {
	var bad *MalformedQueryError
	e.Walk(func(path string, node *Expression) bool {
		if bad != nil {
			return false
		}
		bad = checkNode(path, node)
		return bad == nil
	})
	if bad != nil {
		return bad
	}
	return nil
}

func checkNode(path string, node *Expression) *MalformedQueryError {
	switch {
	case node == nil:
		return &MalformedQueryError{Path: path, Reason: "missing expression"}
	case node.Kind.IsTagKind():
		return nil
	case node.Kind.IsExpressionKind():
		if len(node.Expressions) == 0 {
			return &MalformedQueryError{Path: path, Reason: node.Kind.String() + " has no sub-expressions"}
		}
		return nil
	case node.Kind == KindNone:
		return &MalformedQueryError{Path: path, Reason: "uninitialized expression"}
	default:
		return &MalformedQueryError{Path: path, Reason: "unknown kind " + node.Kind.String()}
	}
}

// Evaluate tests candidates against the tree using exact tag equality; the
// registry hierarchy is not consulted. A malformed tree yields false and a
// *MalformedQueryError, and nothing is evaluated.
func (e *Expression) Evaluate(candidates []tags.Tag) (bool, error) {
	if err := e.Check(); err != nil {
		log.Warn(log.CatQuery, "refusing to evaluate malformed query", "error", err)
		return false, err
	}
	return e.eval(candidates), nil
}

// EvaluateSet evaluates against the tags held by set.
func (e *Expression) EvaluateSet(set *tags.Set) (bool, error) {
	return e.Evaluate(set.Tags())
}

func (e *Expression) eval(candidates []tags.Tag) bool {
	switch e.Kind {
	case KindAnyTagsMatch:
		return slices.ContainsFunc(candidates, e.listed)
	case KindAllTagsMatch:
		// Quantifies over the candidates, so an empty collection matches.
		for _, c := range candidates {
			if !e.listed(c) {
				return false
			}
		}
		return true
	case KindNoTagsMatch:
		return !slices.ContainsFunc(candidates, e.listed)
	case KindAnyExpressionsMatch:
		for _, child := range e.Expressions {
			if child.eval(candidates) {
				return true
			}
		}
		return false
	case KindAllExpressionsMatch:
		for _, child := range e.Expressions {
			if !child.eval(candidates) {
				return false
			}
		}
		return true
	case KindNoExpressionsMatch:
		for _, child := range e.Expressions {
			if child.eval(candidates) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (e *Expression) listed(t tags.Tag) bool {
	return slices.ContainsFunc(e.Tags, t.Equal)
}

// Evaluate evaluates the root expression. A query without a root is malformed.
func (q *Query) Evaluate(candidates []tags.Tag) (bool, error) {
	if q == nil || q.Root == nil {
		err := &MalformedQueryError{Path: "$", Reason: "query has no root expression"}
		log.Warn(log.CatQuery, "refusing to evaluate malformed query", "error", err)
		return false, err
	}
	return q.Root.Evaluate(candidates)
}

// MatchesTags evaluates candidates and treats a malformed query as no match.
// The error has already been logged by Evaluate.
func (q *Query) MatchesTags(candidates []tags.Tag) bool {
	ok, err := q.Evaluate(candidates)
	return err == nil && ok
}

// Matches evaluates against the tags the owner holds.
func (q *Query) Matches(o tags.Owner) bool {
	return q.MatchesTags(o.OwnedTags().Tags())
}
