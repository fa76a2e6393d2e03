package taxonomy

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/flags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tql"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tracing"
)

// Check validates expr against the current registry: malformed nodes, invalid
// tags and unregistered tags are all reported.
func (s *Service) Check(expr *tql.Expression) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tql.Validate(expr, s.registry)
}

// precheck rejects expr before evaluation. Unregistered tags only fail under
// FlagStrictQueries. Caller holds mu.
func (s *Service) precheck(expr *tql.Expression) error {
	if s.flags.Enabled(flags.FlagStrictQueries) {
		return tql.Validate(expr, s.registry)
	}
	return expr.Check()
}

// Evaluate runs expr against the tags held by entity id.
func (s *Service) Evaluate(ctx context.Context, id string, expr *tql.Expression) (matched bool, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanQueryEval,
		attribute.String(tracing.AttrEntityID, id),
		attribute.String(tracing.AttrQuery, expr.String()),
	)
	defer func() { tracing.Finish(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.precheck(expr); err != nil {
		return false, err
	}
	e, err := s.loadEntity(ctx, id)
	if err != nil {
		return false, err
	}
	matched, err = expr.EvaluateSet(e.OwnedTags())
	span.SetAttributes(attribute.Bool(tracing.AttrMatched, matched))
	return matched, err
}

// EvaluateTags runs expr against an ad hoc set built from names. The names go
// through the usual set rules, so a later ancestor supersedes its descendants.
func (s *Service) EvaluateTags(ctx context.Context, names []string, expr *tql.Expression) (matched bool, err error) {
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanQueryEval,
		attribute.StringSlice(tracing.AttrTag, names),
		attribute.String(tracing.AttrQuery, expr.String()),
	)
	defer func() { tracing.Finish(span, err) }()

	ts, err := tags.ParseAll(names...)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.precheck(expr); err != nil {
		return false, err
	}
	set := tags.NewSet(s.registry)
	set.AddMany(ts...)
	matched, err = expr.EvaluateSet(set)
	span.SetAttributes(attribute.Bool(tracing.AttrMatched, matched))
	return matched, err
}

// Select returns the stored entities matching expr, in creation order.
func (s *Service) Select(ctx context.Context, expr *tql.Expression) (out []*tags.Entity, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanQuerySelect,
		attribute.String(tracing.AttrQuery, expr.String()))
	defer func() { tracing.Finish(span, err) }()

	s.mu.RLock()
	if err := s.precheck(expr); err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	s.mu.RUnlock()

	all, err := s.Entities(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		ok, err := expr.EvaluateSet(e.OwnedTags())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	span.SetAttributes(attribute.Int(tracing.AttrEntityCount, len(out)))
	return out, nil
}
