// Package ecs lets donburi entities own hierarchical tags. Each tagged entity
// carries a TagData component holding a tags.Set bound to a shared registry.
package ecs

import (
	"errors"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tql"
)

// ErrInvalidEntity is returned for entities that are not alive in the world.
var ErrInvalidEntity = errors.New("invalid ecs entity")

// ErrNotTagged is returned for entities without the Tags component.
var ErrNotTagged = errors.New("entity has no tags component")

// TagData is the Tags component payload.
type TagData struct {
	Set *tags.Set
}

// Tags is the component type for tag owners.
var Tags = donburi.NewComponentType[TagData]()

// TagsChangedEvent describes one mutation made through this package.
// Added and Removed list the tags the caller passed, not the set delta.
type TagsChangedEvent struct {
	Entity  donburi.Entity
	Added   []tags.Tag
	Removed []tags.Tag
}

// TagsChanged is queued after every mutation. Systems consume it with
// Subscribe and ProcessEvents.
var TagsChanged = events.NewEventType[TagsChangedEvent]()

var tagged = donburi.NewQuery(filter.Contains(Tags))

// owner adapts an entry to tags.Owner.
type owner struct {
	set *tags.Set
}

func (o owner) OwnedTags() *tags.Set { return o.set }

// Create makes a new tagged entity holding ts.
func Create(world donburi.World, reg *tags.Registry, ts ...tags.Tag) donburi.Entity {
	entity := world.Create(Tags)
	set := tags.NewSet(reg)
	set.AddMany(ts...)
	Tags.SetValue(world.Entry(entity), TagData{Set: set})
	return entity
}

// Attach gives entity an empty tag set bound to reg. An entity that already
// has one keeps it.
func Attach(world donburi.World, entity donburi.Entity, reg *tags.Registry) (*tags.Set, error) {
	if !world.Valid(entity) {
		return nil, ErrInvalidEntity
	}
	entry := world.Entry(entity)
	if entry.HasComponent(Tags) {
		return Tags.Get(entry).Set, nil
	}
	data := &TagData{Set: tags.NewSet(reg)}
	donburi.Add(entry, Tags, data)
	log.Debug(log.CatECS, "Attached tag set", "entity", entity)
	return data.Set, nil
}

// OwnerOf returns the tag owner view of entry.
func OwnerOf(entry *donburi.Entry) (tags.Owner, bool) {
	if entry == nil || !entry.Valid() || !entry.HasComponent(Tags) {
		return nil, false
	}
	data := Tags.Get(entry)
	if data.Set == nil {
		return nil, false
	}
	return owner{set: data.Set}, true
}

func setOf(world donburi.World, entity donburi.Entity) (*tags.Set, error) {
	if !world.Valid(entity) {
		return nil, ErrInvalidEntity
	}
	o, ok := OwnerOf(world.Entry(entity))
	if !ok {
		return nil, ErrNotTagged
	}
	return o.OwnedTags(), nil
}

// AddTags adds ts to entity's set and queues a TagsChanged event.
func AddTags(world donburi.World, entity donburi.Entity, ts ...tags.Tag) error {
	set, err := setOf(world, entity)
	if err != nil {
		return err
	}
	set.AddMany(ts...)
	TagsChanged.Publish(world, TagsChangedEvent{Entity: entity, Added: ts})
	return nil
}

// RemoveTags removes ts and their descendants and queues a TagsChanged event.
func RemoveTags(world donburi.World, entity donburi.Entity, ts ...tags.Tag) error {
	set, err := setOf(world, entity)
	if err != nil {
		return err
	}
	set.RemoveMany(ts...)
	TagsChanged.Publish(world, TagsChangedEvent{Entity: entity, Removed: ts})
	return nil
}

// HasTag reports whether entry holds t or a registered descendant of t.
func HasTag(entry *donburi.Entry, t tags.Tag) bool {
	o, ok := OwnerOf(entry)
	return ok && tags.Has(o, t)
}

// Each calls fn for every tagged entity whose set satisfies q. A malformed
// query is reported before any entity is visited.
func Each(world donburi.World, q *tql.Expression, fn func(*donburi.Entry)) error {
	if err := q.Check(); err != nil {
		return err
	}
	tagged.Each(world, func(entry *donburi.Entry) {
		o, ok := OwnerOf(entry)
		if !ok {
			return
		}
		if matched, _ := q.EvaluateSet(o.OwnedTags()); matched {
			fn(entry)
		}
	})
	return nil
}

// EachWithTag calls fn for every entity that HasTag t.
func EachWithTag(world donburi.World, t tags.Tag, fn func(*donburi.Entry)) {
	tagged.Each(world, func(entry *donburi.Entry) {
		if HasTag(entry, t) {
			fn(entry)
		}
	})
}

// Prune drops unregistered tags from every tagged entity, queueing a
// TagsChanged event for each one that changed. It returns that count.
func Prune(world donburi.World) int {
	changed := 0
	tagged.Each(world, func(entry *donburi.Entry) {
		o, ok := OwnerOf(entry)
		if !ok {
			return
		}
		if dropped := o.OwnedTags().RemoveUnknown(); len(dropped) > 0 {
			changed++
			TagsChanged.Publish(world, TagsChangedEvent{Entity: entry.Entity(), Removed: dropped})
		}
	})
	if changed > 0 {
		log.Debug(log.CatECS, "Pruned unknown tags", "entities", changed)
	}
	return changed
}
