package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/infrastructure/sqlite"
)

// NewRegistry returns a registry holding names and their ancestors.
func NewRegistry(t *testing.T, names ...string) *tags.Registry {
	t.Helper()
	reg := tags.NewRegistry()
	_, errs := reg.RegisterAll(names...)
	for _, err := range errs {
		require.ErrorIs(t, err, tags.ErrAlreadyExists, "unexpected registration failure")
	}
	return reg
}

// NewSet returns a set bound to reg with names added in order.
func NewSet(t *testing.T, reg *tags.Registry, names ...string) *tags.Set {
	t.Helper()
	set := tags.NewSet(reg)
	for _, name := range names {
		tag, err := tags.Parse(name)
		require.NoError(t, err)
		set.Add(tag)
	}
	return set
}

// Builder accumulates a taxonomy and entities and writes them to a database.
type Builder struct {
	t        *testing.T
	db       *sqlite.DB
	tags     []string
	entities []entityData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sqlite.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithTags registers tags in the taxonomy.
func (b *Builder) WithTags(names ...string) *Builder {
	b.tags = append(b.tags, names...)
	return b
}

// WithEntity adds an entity with optional configuration.
func (b *Builder) WithEntity(id string, opts ...EntityOption) *Builder {
	entity := defaultEntity(id)
	for _, opt := range opts {
		opt(&entity)
	}
	b.entities = append(b.entities, entity)
	return b
}

// Build saves the taxonomy, then every entity, and returns the registry.
// Entity tag lists are normalised through a Set bound to that registry.
func (b *Builder) Build() *tags.Registry {
	b.t.Helper()
	ctx := context.Background()

	reg := NewRegistry(b.t, b.tags...)
	require.NoError(b.t, b.db.TaxonomyRepository().SaveSnapshot(ctx, reg.Snapshot()))

	for _, e := range b.entities {
		set := NewSet(b.t, reg, e.tags...)
		rec := tags.EntityRecord{
			ID:        e.id,
			Name:      e.name,
			Tags:      set.Strings(),
			CreatedAt: e.createdAt,
			UpdatedAt: e.updatedAt,
		}
		require.NoError(b.t, b.db.EntityRepository().Save(ctx, rec))
	}
	return reg
}
