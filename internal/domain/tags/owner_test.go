package tags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testOwner struct {
	set *Set
}

func (o testOwner) OwnedTags() *Set { return o.set }

func ownerWith(t *testing.T, reg *Registry, names ...string) testOwner {
	t.Helper()
	set := NewSet(reg)
	for _, n := range names {
		set.Add(MustParse(n))
	}
	return testOwner{set: set}
}

func TestHas_LooseMatching(t *testing.T) {
	reg := NewRegistry().MustRegister("A.B.C")
	owner := ownerWith(t, reg, "A.B.C")

	require.True(t, Has(owner, MustParse("A")))
	require.True(t, Has(owner, MustParse("A.B")))
	require.True(t, Has(owner, MustParse("A.B.C")))

	require.False(t, HasExact(owner, MustParse("A")))
	require.False(t, HasExact(owner, MustParse("A.B")))
	require.True(t, HasExact(owner, MustParse("A.B.C")))
}

func TestHas_CoarseDoesNotSatisfyFine(t *testing.T) {
	reg := NewRegistry().MustRegister("A.B.C")
	owner := ownerWith(t, reg, "A.B")

	require.False(t, Has(owner, MustParse("A.B.C")))
	require.True(t, Has(owner, MustParse("A")))
}

func TestHas_InvalidTag(t *testing.T) {
	reg := NewRegistry().MustRegister("A")
	owner := ownerWith(t, reg, "A")

	require.False(t, Has(owner, Tag{}))
	require.False(t, HasExact(owner, Tag{}))
}

func TestHas_UsesRegistryNotPrefix(t *testing.T) {
	reg := NewRegistry().MustRegister("A")
	owner := ownerWith(t, reg, "A.B")

	require.False(t, Has(owner, MustParse("A")), "A.B is not registered under A")
}

func TestHasAnyAllNone(t *testing.T) {
	reg := NewRegistry().MustRegister("Enemy.Flying.Boss", "Enemy.Ground", "Player")
	owner := ownerWith(t, reg, "Enemy.Flying.Boss", "Player")

	enemy := MustParse("Enemy")
	ground := MustParse("Enemy.Ground")
	player := MustParse("Player")
	flying := MustParse("Enemy.Flying")

	tests := []struct {
		name string
		fn   func(Owner, []Tag) bool
		tags []Tag
		want bool
	}{
		{"any hit", HasAny, []Tag{ground, enemy}, true},
		{"any miss", HasAny, []Tag{ground}, false},
		{"any empty", HasAny, nil, false},
		{"all hit", HasAll, []Tag{enemy, flying, player}, true},
		{"all miss", HasAll, []Tag{enemy, ground}, false},
		{"all empty", HasAll, nil, true},
		{"none hit", HasNone, []Tag{ground}, true},
		{"none miss", HasNone, []Tag{ground, flying}, false},
		{"none empty", HasNone, nil, true},
		{"any exact hit", HasAnyExact, []Tag{player, enemy}, true},
		{"any exact miss", HasAnyExact, []Tag{enemy, flying}, false},
		{"all exact hit", HasAllExact, []Tag{player, MustParse("Enemy.Flying.Boss")}, true},
		{"all exact miss", HasAllExact, []Tag{player, enemy}, false},
		{"all exact empty", HasAllExact, nil, true},
		{"none exact hit", HasNoneExact, []Tag{enemy, flying}, true},
		{"none exact miss", HasNoneExact, []Tag{player}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.fn(owner, tt.tags))
		})
	}
}

func TestMatcher(t *testing.T) {
	reg := NewRegistry().MustRegister("Enemy.Flying.Boss", "Player")
	m := Match(ownerWith(t, reg, "Enemy.Flying.Boss"))

	require.True(t, m.Has(MustParse("Enemy")))
	require.True(t, m.HasAny(MustParse("Player"), MustParse("Enemy.Flying")))
	require.False(t, m.HasAll(MustParse("Player"), MustParse("Enemy.Flying")))
	require.True(t, m.HasNone(MustParse("Player")))
	require.False(t, m.HasExact(MustParse("Enemy")))
	require.True(t, m.HasAnyExact(MustParse("Enemy.Flying.Boss")))
	require.False(t, m.HasAllExact(MustParse("Enemy.Flying.Boss"), MustParse("Enemy")))
	require.True(t, m.HasNoneExact(MustParse("Enemy")))
}

func TestMatcher_OwnerOverloads(t *testing.T) {
	reg := NewRegistry().MustRegister("Enemy.Flying.Boss", "Player")
	boss := Match(ownerWith(t, reg, "Enemy.Flying.Boss", "Player"))
	coarse := ownerWith(t, reg, "Enemy")
	exact := ownerWith(t, reg, "Player")
	other := ownerWith(t, reg, "Enemy.Flying")

	require.True(t, boss.HasAllOf(coarse))
	require.True(t, boss.HasAnyOf(other))
	require.False(t, boss.HasNoneOf(other))
	require.False(t, boss.HasAnyExactOf(coarse))
	require.True(t, boss.HasAllExactOf(exact))
	require.True(t, boss.HasNoneExactOf(other))
}

func TestSet_ActsAsOwner(t *testing.T) {
	reg := NewRegistry().MustRegister("A.B")
	set := NewSet(reg)
	set.Add(MustParse("A.B"))

	require.True(t, Has(set, MustParse("A")))
}
