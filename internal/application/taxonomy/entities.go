package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/pubsub"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tracing"
)

// MatchMode selects how Has combines several tags.
type MatchMode string

const (
	MatchAny  MatchMode = "any"
	MatchAll  MatchMode = "all"
	MatchNone MatchMode = "none"
)

// ParseMatchMode accepts any, all or none. An empty string means any.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case "", MatchAny:
		return MatchAny, nil
	case MatchAll, MatchNone:
		return MatchMode(s), nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want any, all or none)", s)
	}
}

// lookupAll resolves names against the registry. Caller holds mu.
func (s *Service) lookupAll(names []string) ([]tags.Tag, error) {
	out := make([]tags.Tag, 0, len(names))
	var errs []error
	for _, name := range names {
		tag, err := s.registry.Lookup(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, tag)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// loadEntity reads id through the cache and binds it to the registry.
// Caller holds mu.
func (s *Service) loadEntity(ctx context.Context, id string) (*tags.Entity, error) {
	if id == "" {
		return nil, tags.ErrEmptyEntityID
	}
	rec, err := s.records.Get(ctx, id, s.cacheTTL)
	if err != nil {
		return nil, err
	}
	return rec.Hydrate(s.registry)
}

// detach rebinds e to a private copy of the registry so callers can keep
// using it after mu is released. Caller holds mu.
func (s *Service) detach(e *tags.Entity) (*tags.Entity, error) {
	reg, err := tags.Restore(s.registry.Snapshot())
	if err != nil {
		return nil, err
	}
	return e.Record().Hydrate(reg)
}

// storeEntity saves e, refreshes the cache and publishes EntityChanged.
// Caller holds mu.
func (s *Service) storeEntity(ctx context.Context, e *tags.Entity) error {
	rec := e.Record()
	if err := s.entities.Save(ctx, rec); err != nil {
		return fmt.Errorf("save entity %s: %w", e.ID(), err)
	}
	s.records.Put(ctx, rec.ID, rec, s.cacheTTL)
	s.changes.Publish(pubsub.EntityChanged, Change{EntityID: rec.ID, Tags: rec.Tags})
	return nil
}

// CreateEntity stores a new entity holding the given registered tags.
func (s *Service) CreateEntity(ctx context.Context, name string, tagNames ...string) (e *tags.Entity, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanEntityCreate)
	defer func() { tracing.Finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	ts, err := s.lookupAll(tagNames)
	if err != nil {
		return nil, err
	}
	e = tags.NewEntity(uuid.NewString(), name, s.registry)
	e.OwnedTags().AddMany(ts...)
	if err := s.storeEntity(ctx, e); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(tracing.AttrEntityID, e.ID()))
	log.Info(log.CatTags, "Created entity", "id", e.ID(), "name", name, "tags", e.OwnedTags().Strings())
	return s.detach(e)
}

// Entity returns the stored entity id. The entity is bound to a copy of the
// registry taken at load time, so later taxonomy changes do not reach it.
func (s *Service) Entity(ctx context.Context, id string) (e *tags.Entity, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanEntityFind, attribute.String(tracing.AttrEntityID, id))
	defer func() { tracing.Finish(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err = s.loadEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detach(e)
}

// Entities returns every stored entity ordered by creation time, bound to a
// copy of the registry like Entity.
func (s *Service) Entities(ctx context.Context) (out []*tags.Entity, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanEntityFind)
	defer func() { tracing.Finish(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.entities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	reg, err := tags.Restore(s.registry.Snapshot())
	if err != nil {
		return nil, err
	}
	out = make([]*tags.Entity, 0, len(records))
	for _, rec := range records {
		e, err := rec.Hydrate(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	span.SetAttributes(attribute.Int(tracing.AttrEntityCount, len(out)))
	return out, nil
}

// updateEntity applies fn to the stored entity and saves it.
func (s *Service) updateEntity(ctx context.Context, id string, fn func(*tags.Entity) error) (e *tags.Entity, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanEntityUpdate, attribute.String(tracing.AttrEntityID, id))
	defer func() { tracing.Finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	e, err = s.loadEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	e.Touch()
	if err := s.storeEntity(ctx, e); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrTagCount, e.OwnedTags().Len()))
	return s.detach(e)
}

// AddTags adds registered tags to an entity. Adding a tag supersedes any held
// tag on the same branch.
func (s *Service) AddTags(ctx context.Context, id string, names ...string) (*tags.Entity, error) {
	return s.updateEntity(ctx, id, func(e *tags.Entity) error {
		ts, err := s.lookupAll(names)
		if err != nil {
			return err
		}
		e.OwnedTags().AddMany(ts...)
		log.Debug(log.CatTags, "Added tags", "id", id, "tags", names)
		return nil
	})
}

// RemoveTags removes tags and their descendants from an entity. The tags need
// not be registered, so stale tags can be cleaned up.
func (s *Service) RemoveTags(ctx context.Context, id string, names ...string) (*tags.Entity, error) {
	ts, err := tags.ParseAll(names...)
	if err != nil {
		return nil, err
	}
	return s.updateEntity(ctx, id, func(e *tags.Entity) error {
		e.OwnedTags().RemoveMany(ts...)
		log.Debug(log.CatTags, "Removed tags", "id", id, "tags", names)
		return nil
	})
}

// ClearTags empties an entity's tag set.
func (s *Service) ClearTags(ctx context.Context, id string) (*tags.Entity, error) {
	return s.updateEntity(ctx, id, func(e *tags.Entity) error {
		e.OwnedTags().Clear()
		return nil
	})
}

// DeleteEntity removes the entity id.
func (s *Service) DeleteEntity(ctx context.Context, id string) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanEntityDelete, attribute.String(tracing.AttrEntityID, id))
	defer func() { tracing.Finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.entities.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.records.Invalidate(ctx, id); err != nil {
		log.Warn(log.CatCache, "Invalidate failed", "id", id, "error", err)
	}
	s.changes.Publish(pubsub.EntityDeleted, Change{EntityID: id})
	log.Info(log.CatTags, "Deleted entity", "id", id)
	return nil
}

// Has tests an entity against names. Loose matching accepts a held descendant
// of a requested tag; exact matching requires the tag itself. Names need not
// be registered. The match runs against the live registry under the read lock.
func (s *Service) Has(ctx context.Context, id string, mode MatchMode, exact bool, names ...string) (bool, error) {
	ts, err := tags.ParseAll(names...)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.loadEntity(ctx, id)
	if err != nil {
		return false, err
	}

	m := tags.Match(e)
	switch {
	case mode == MatchAll && exact:
		return m.HasAllExact(ts...), nil
	case mode == MatchAll:
		return m.HasAll(ts...), nil
	case mode == MatchNone && exact:
		return m.HasNoneExact(ts...), nil
	case mode == MatchNone:
		return m.HasNone(ts...), nil
	case exact:
		return m.HasAnyExact(ts...), nil
	default:
		return m.HasAny(ts...), nil
	}
}
