package tags

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewEntity(t *testing.T) {
	reg := NewRegistry().MustRegister("Enemy.Flying")
	e := NewEntity("id-1", "bat", reg)

	require.Equal(t, "id-1", e.ID())
	require.Equal(t, "bat", e.Name())
	require.True(t, e.OwnedTags().IsEmpty())
	require.Same(t, reg, e.OwnedTags().Registry())
	require.Equal(t, e.CreatedAt(), e.UpdatedAt())
}

func TestEntity_RecordAndHydrate(t *testing.T) {
	reg := NewRegistry().MustRegister("Enemy.Flying.Boss", "Player")
	e := NewEntity("id-1", "bat", reg)
	e.OwnedTags().AddMany(MustParse("Player"), MustParse("Enemy.Flying.Boss"))

	rec := e.Record()
	require.Equal(t, []string{"Player", "Enemy.Flying.Boss"}, rec.Tags)

	hydrated, err := rec.Hydrate(reg)
	require.NoError(t, err)
	require.Equal(t, rec, hydrated.Record())
	require.True(t, Has(hydrated, MustParse("Enemy")))
}

func TestEntityRecord_HydrateReprunes(t *testing.T) {
	reg := NewRegistry().MustRegister("A.B")
	rec := EntityRecord{ID: "x", Tags: []string{"A.B", "A"}}

	e, err := rec.Hydrate(reg)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, e.OwnedTags().Strings())
}

func TestEntityRecord_HydrateErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := EntityRecord{}.Hydrate(reg)
	require.ErrorIs(t, err, ErrEmptyEntityID)

	_, err = EntityRecord{ID: "x", Tags: []string{"bad..tag"}}.Hydrate(reg)
	require.ErrorIs(t, err, ErrRepeatedDot)
}

func TestEntity_Touch(t *testing.T) {
	e := NewEntity("id", "n", NewRegistry())
	before := e.UpdatedAt()

	time.Sleep(time.Millisecond)
	e.Touch()

	require.True(t, e.UpdatedAt().After(before))
	require.True(t, e.CreatedAt().Equal(before))
}
