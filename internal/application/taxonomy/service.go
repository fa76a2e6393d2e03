package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brezhnevtusks/Unidork-sub000/internal/cachemanager"
	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/flags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/pubsub"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tracing"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("taxonomy service closed")

// Change is the payload published for every taxonomy or entity mutation.
type Change struct {
	Tags     []string `json:"tags,omitempty"`
	EntityID string   `json:"entity_id,omitempty"`
}

// Options configures a Service.
type Options struct {
	Taxonomy tags.TaxonomyRepository
	Entities tags.EntityRepository

	// Cache backs the entity read-through cache. Nil creates an in-memory cache.
	Cache    cachemanager.CacheManager[string, tags.EntityRecord]
	CacheTTL time.Duration

	Tracer trace.Tracer
	Flags  *flags.Registry
}

// Service coordinates the tag registry with persisted entities.
// All methods are safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	closed   bool
	registry *tags.Registry

	taxonomy tags.TaxonomyRepository
	entities tags.EntityRepository
	records  *cachemanager.ReadThroughCache[string, tags.EntityRecord]
	cacheTTL time.Duration

	changes *pubsub.Broker[Change]
	// pending holds registry changes until the taxonomy is saved. Guarded by mu.
	pending []pubsub.Event[Change]
	tracer  trace.Tracer
	flags   *flags.Registry
}

// NewService creates a service with an empty registry. Call Load to read the
// stored taxonomy.
func NewService(opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	cache := opts.Cache
	if cache == nil {
		cache = cachemanager.NewInMemoryCacheManager[string, tags.EntityRecord]("entities", ttl, cachemanager.DefaultCleanupInterval)
	}

	s := &Service{
		taxonomy: opts.Taxonomy,
		entities: opts.Entities,
		cacheTTL: ttl,
		changes:  pubsub.NewBroker[Change](),
		tracer:   opts.Tracer,
		flags:    opts.Flags,
	}
	s.records = cachemanager.NewReadThroughCache[string, tags.EntityRecord](cache, s.entities.Find, !s.flags.Enabled(flags.FlagEntityCache))
	s.setRegistry(tags.NewRegistry())
	return s
}

// setRegistry swaps the active registry. Caller holds mu or is the constructor.
func (s *Service) setRegistry(reg *tags.Registry) {
	if s.registry != nil {
		s.registry.Observe(nil)
	}
	reg.Observe(s.publishRegistryChange)
	s.registry = reg
}

// publishRegistryChange queues c; saveTaxonomy publishes the queue once the
// change is stored.
func (s *Service) publishRegistryChange(c tags.Change) {
	switch c.Kind {
	case tags.ChangeRegistered:
		s.pending = append(s.pending, pubsub.Event[Change]{Type: pubsub.TagsRegistered, Payload: Change{Tags: tags.Strings(c.Tags)}})
	case tags.ChangeRemoved:
		s.pending = append(s.pending, pubsub.Event[Change]{Type: pubsub.TagsRemoved, Payload: Change{Tags: tags.Strings(c.Tags)}})
	}
}

// Subscribe streams changes of the given types, or all changes, until ctx
// is cancelled.
func (s *Service) Subscribe(ctx context.Context, types ...pubsub.EventType) <-chan pubsub.Event[Change] {
	return s.changes.Subscribe(ctx, types...)
}

// Close stops publishing and rejects further mutations.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.registry.Observe(nil)
	s.changes.Close()

	stats := s.records.Stats()
	log.Debug(log.CatCache, "Entity cache closed", "hits", stats.Hits, "misses", stats.Misses, "loads", stats.Loads)
}

// CacheStats reports how entity reads were served.
func (s *Service) CacheStats() cachemanager.Stats {
	return s.records.Stats()
}

// Load replaces the in-memory registry with the stored taxonomy.
func (s *Service) Load(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanLoad)
	defer func() { tracing.Finish(span, err) }()

	snap, err := s.taxonomy.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	reg, err := tags.Restore(snap)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.setRegistry(reg)

	span.SetAttributes(attribute.Int(tracing.AttrTagCount, reg.Len()))
	log.Debug(log.CatTags, "Taxonomy loaded", "tags", reg.Len())
	return nil
}

// saveTaxonomy persists the registry, restoring prev in memory if the write fails.
// Caller holds mu.
func (s *Service) saveTaxonomy(ctx context.Context, prev tags.Snapshot) error {
	pending := s.pending
	s.pending = nil

	err := s.taxonomy.SaveSnapshot(ctx, s.registry.Snapshot())
	if err == nil {
		for _, ev := range pending {
			s.changes.Publish(ev.Type, ev.Payload)
		}
		return nil
	}
	log.ErrorErr(log.CatDB, "Saving taxonomy failed, reverting", err, "dropped_events", len(pending))
	if reg, restoreErr := tags.Restore(prev); restoreErr == nil {
		s.setRegistry(reg)
	}
	return fmt.Errorf("save taxonomy: %w", err)
}

// Register adds every name, creating missing ancestors, and saves the result.
// Names that fail are reported joined; the rest are still registered.
func (s *Service) Register(ctx context.Context, names ...string) (created []tags.Tag, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanRegister,
		attribute.StringSlice(tracing.AttrTag, names))
	defer func() { tracing.Finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	prev := s.registry.Snapshot()
	created, errs := s.registry.RegisterAll(names...)
	if len(created) > 0 {
		if err := s.saveTaxonomy(ctx, prev); err != nil {
			return nil, err
		}
		log.Info(log.CatTags, "Registered tags", "created", tags.Strings(created))
	}
	span.SetAttributes(attribute.Int(tracing.AttrTagCount, len(created)))
	return created, errors.Join(errs...)
}

// RemoveResult describes a registry removal.
type RemoveResult struct {
	Removed []tags.Tag
	// Pruned lists entities that lost tags through the cascade.
	Pruned []string
}

// Remove deletes name and its subtree. With FlagCascadeRemove enabled every
// stored entity is stripped of tags that are no longer registered.
func (s *Service) Remove(ctx context.Context, name string) (result RemoveResult, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanRemove, attribute.String(tracing.AttrTag, name))
	defer func() { tracing.Finish(span, err) }()

	tag, err := tags.Parse(name)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return result, ErrClosed
	}

	prev := s.registry.Snapshot()
	result.Removed, err = s.registry.Remove(tag)
	if err != nil {
		return result, err
	}
	if err := s.saveTaxonomy(ctx, prev); err != nil {
		return RemoveResult{}, err
	}
	log.Info(log.CatTags, "Removed tags", "removed", tags.Strings(result.Removed))

	if s.flags.Enabled(flags.FlagCascadeRemove) {
		span.AddEvent(tracing.EventCascade)
		result.Pruned, err = s.pruneEntities(ctx)
	}
	span.SetAttributes(
		attribute.Int(tracing.AttrTagCount, len(result.Removed)),
		attribute.Int(tracing.AttrEntityCount, len(result.Pruned)),
	)
	return result, err
}

// pruneEntities drops unregistered tags from every stored entity and returns
// the ids it changed. Caller holds mu.
func (s *Service) pruneEntities(ctx context.Context) (pruned []string, err error) {
	err = tracing.Do(ctx, s.tracer, tracing.SpanPrune, func(ctx context.Context, span trace.Span) error {
		records, err := s.entities.List(ctx)
		if err != nil {
			return fmt.Errorf("list entities: %w", err)
		}

		var errs []error
		for _, rec := range records {
			e, err := rec.Hydrate(s.registry)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			dropped := e.OwnedTags().RemoveUnknown()
			if len(dropped) == 0 {
				continue
			}
			e.Touch()
			if err := s.storeEntity(ctx, e); err != nil {
				errs = append(errs, err)
				continue
			}
			log.Debug(log.CatTags, "Pruned entity", "id", e.ID(), "dropped", tags.Strings(dropped))
			pruned = append(pruned, e.ID())
		}
		span.SetAttributes(
			attribute.Int(tracing.AttrEntityCount, len(records)),
			attribute.StringSlice(tracing.AttrPruned, pruned),
		)
		return errors.Join(errs...)
	})
	return pruned, err
}

// TagInfo describes one registered tag and its place in the forest.
type TagInfo struct {
	Tag         tags.Tag
	Parent      tags.Tag // zero for roots
	Children    []tags.Tag
	Ancestors   []tags.Tag
	Descendants []tags.Tag
}

// Info returns the structure around name, which must be registered.
func (s *Service) Info(name string) (TagInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tag, err := s.registry.Lookup(name)
	if err != nil {
		return TagInfo{}, err
	}
	info := TagInfo{Tag: tag, Children: s.registry.Children(tag)}
	info.Parent, _ = s.registry.Parent(tag)
	if info.Ancestors, err = s.registry.Ancestors(tag); err != nil {
		return TagInfo{}, err
	}
	if info.Descendants, err = s.registry.Descendants(tag); err != nil {
		return TagInfo{}, err
	}
	return info, nil
}

// Lookup returns the registered tag named name.
func (s *Service) Lookup(name string) (tags.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Lookup(name)
}

// All returns every registered tag in sorted order.
func (s *Service) All() []tags.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.All()
}

// Roots returns the registered root tags.
func (s *Service) Roots() []tags.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Roots()
}

// Len returns the number of registered tags.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Len()
}

// Walk visits the forest depth first under a read lock. fn must not call
// back into the service.
func (s *Service) Walk(fn func(t tags.Tag, depth int) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.registry.Walk(fn)
}

// Snapshot returns the flattened registry.
func (s *Service) Snapshot() tags.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Snapshot()
}
