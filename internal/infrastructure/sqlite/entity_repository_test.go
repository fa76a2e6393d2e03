package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

func newRecord(id, name string, tagNames ...string) tags.EntityRecord {
	now := time.Now()
	return tags.EntityRecord{ID: id, Name: name, Tags: tagNames, CreatedAt: now, UpdatedAt: now}
}

func TestEntityRepository_SaveAndFind(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()

	rec := newRecord("id-1", "bat", "Player", "Enemy.Flying.Boss")
	require.NoError(t, repo.Save(ctx, rec))

	found, err := repo.Find(ctx, "id-1")
	require.NoError(t, err)
	require.Equal(t, rec.ID, found.ID)
	require.Equal(t, rec.Name, found.Name)
	require.Equal(t, []string{"Player", "Enemy.Flying.Boss"}, found.Tags, "tag order is preserved")
	require.WithinDuration(t, rec.CreatedAt, found.CreatedAt, time.Second)
	require.WithinDuration(t, rec.UpdatedAt, found.UpdatedAt, time.Second)
}

func TestEntityRepository_SaveReplacesTags(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()

	rec := newRecord("id-1", "bat", "A", "B")
	require.NoError(t, repo.Save(ctx, rec))

	rec.Name = "big bat"
	rec.Tags = []string{"C"}
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Save(ctx, rec))

	found, err := repo.Find(ctx, "id-1")
	require.NoError(t, err)
	require.Equal(t, "big bat", found.Name)
	require.Equal(t, []string{"C"}, found.Tags)
	require.WithinDuration(t, rec.UpdatedAt, found.UpdatedAt, time.Second)
}

func TestEntityRepository_EmptyTagList(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newRecord("id-1", "empty")))

	found, err := repo.Find(ctx, "id-1")
	require.NoError(t, err)
	require.Empty(t, found.Tags)
}

func TestEntityRepository_FindMissing(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()

	_, err := repo.Find(context.Background(), "nope")
	require.ErrorIs(t, err, tags.ErrEntityNotFound)
}

func TestEntityRepository_SaveRequiresID(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()

	err := repo.Save(context.Background(), newRecord("", "x"))
	require.ErrorIs(t, err, tags.ErrEmptyEntityID)
}

func TestEntityRepository_List(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"c", "a", "b"} {
		rec := newRecord(id, id, "T"+id)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Save(ctx, rec))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "c", list[0].ID)
	require.Equal(t, "a", list[1].ID)
	require.Equal(t, "b", list[2].ID)
	require.Equal(t, []string{"Ta"}, list[1].Tags)
}

func TestEntityRepository_List_SameTimestamp(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()

	now := time.Now()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		rec := newRecord(id, id)
		rec.CreatedAt, rec.UpdatedAt = now, now
		require.NoError(t, repo.Save(ctx, rec))
	}
	// Re-saving keeps the original position.
	require.NoError(t, repo.Save(ctx, newRecord("zeta", "zeta", "A")))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, rec := range list {
		ids[i] = rec.ID
	}
	require.Equal(t, []string{"zeta", "alpha", "mid"}, ids, "ties keep insertion order")
}

func TestEntityRepository_List_SubSecond(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	second := newRecord("b-second", "b")
	second.CreatedAt = base.Add(200 * time.Millisecond)
	first := newRecord("z-first", "z")
	first.CreatedAt = base.Add(100 * time.Millisecond)
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, first))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "z-first", list[0].ID)
	require.True(t, list[0].CreatedAt.Equal(first.CreatedAt), "nanoseconds survive the round trip")
}

func TestEntityRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := db.EntityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newRecord("id-1", "bat", "A")))
	require.NoError(t, repo.Delete(ctx, "id-1"))

	_, err := repo.Find(ctx, "id-1")
	require.ErrorIs(t, err, tags.ErrEntityNotFound)

	var orphans int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM owner_tags").Scan(&orphans))
	require.Zero(t, orphans, "owner tags cascade on delete")

	require.ErrorIs(t, repo.Delete(ctx, "id-1"), tags.ErrEntityNotFound)
}

func TestEntityRepository_HydrateRoundTrip(t *testing.T) {
	repo := setupTestDB(t).EntityRepository()
	ctx := context.Background()
	reg := tags.NewRegistry().MustRegister("Enemy.Flying.Boss", "Player")

	e := tags.NewEntity("id-1", "boss", reg)
	e.OwnedTags().AddMany(tags.MustParse("Enemy.Flying.Boss"), tags.MustParse("Player"))
	require.NoError(t, repo.Save(ctx, e.Record()))

	found, err := repo.Find(ctx, "id-1")
	require.NoError(t, err)
	hydrated, err := found.Hydrate(reg)
	require.NoError(t, err)
	require.Equal(t, e.OwnedTags().Strings(), hydrated.OwnedTags().Strings())
	require.True(t, tags.Has(hydrated, tags.MustParse("Enemy")))
}
