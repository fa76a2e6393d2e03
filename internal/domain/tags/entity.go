package tags

import (
	"errors"
	"fmt"
	"time"
)

// Entity errors
var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrEmptyEntityID  = errors.New("entity id cannot be empty")
)

// Entity is a stored tag owner: an identified, named holder of a Set.
type Entity struct {
	id        string
	name      string
	createdAt time.Time
	updatedAt time.Time
	tags      *Set
}

// Compile-time check that Entity implements Owner.
var _ Owner = (*Entity)(nil)

// NewEntity creates an entity with an empty tag set bound to reg.
func NewEntity(id, name string, reg *Registry) *Entity {
	now := time.Now()
	return &Entity{
		id:        id,
		name:      name,
		createdAt: now,
		updatedAt: now,
		tags:      NewSet(reg),
	}
}

func (e *Entity) ID() string           { return e.id }
func (e *Entity) Name() string         { return e.name }
func (e *Entity) CreatedAt() time.Time { return e.createdAt }
func (e *Entity) UpdatedAt() time.Time { return e.updatedAt }

// OwnedTags returns the entity's tag set.
func (e *Entity) OwnedTags() *Set {
	return e.tags
}

// Touch records a modification time.
func (e *Entity) Touch() {
	e.updatedAt = time.Now()
}

// EntityRecord is the persisted form of an Entity: its tag set is stored as
// a flat ordered list of tag names.
type EntityRecord struct {
	ID        string
	Name      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record converts the entity to its persisted form.
func (e *Entity) Record() EntityRecord {
	return EntityRecord{
		ID:        e.id,
		Name:      e.name,
		Tags:      e.tags.Strings(),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}

// Hydrate rebuilds an entity from a record, re-adding the stored tags in order
// so the set invariant holds even if the registry changed since it was saved.
func (rec EntityRecord) Hydrate(reg *Registry) (*Entity, error) {
	if rec.ID == "" {
		return nil, ErrEmptyEntityID
	}
	ts, err := ParseAll(rec.Tags...)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", rec.ID, err)
	}
	e := &Entity{
		id:        rec.ID,
		name:      rec.Name,
		createdAt: rec.CreatedAt,
		updatedAt: rec.UpdatedAt,
		tags:      NewSet(reg),
	}
	e.tags.AddMany(ts...)
	return e, nil
}
