package testutil

import "time"

// entityData holds the fields of an entity to be inserted.
type entityData struct {
	id        string
	name      string
	tags      []string
	createdAt time.Time
	updatedAt time.Time
}

// EntityOption configures an entity added through Builder.WithEntity.
type EntityOption func(*entityData)

func defaultEntity(id string) entityData {
	now := time.Now().Truncate(time.Second)
	return entityData{
		id:        id,
		name:      id,
		createdAt: now,
		updatedAt: now,
	}
}

// Name sets the display name. Defaults to the id.
func Name(name string) EntityOption {
	return func(e *entityData) { e.name = name }
}

// Tags adds tags in order; the set's branch rule applies on insert.
func Tags(tags ...string) EntityOption {
	return func(e *entityData) { e.tags = append(e.tags, tags...) }
}

// CreatedAt sets the creation time.
func CreatedAt(t time.Time) EntityOption {
	return func(e *entityData) { e.createdAt = t }
}

// UpdatedAt sets the modification time.
func UpdatedAt(t time.Time) EntityOption {
	return func(e *entityData) { e.updatedAt = t }
}
