package tql

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

func TestValidate_OK(t *testing.T) {
	reg := tags.NewRegistry().MustRegister("Enemy.Flying", "Player")

	require.NoError(t, Validate(MustParse("any(Enemy, Enemy.Flying) and not all(Player)"), reg))
}

func TestValidate_UnknownTags(t *testing.T) {
	reg := tags.NewRegistry().MustRegister("Enemy")

	err := Validate(MustParse("any(Enemy, Ghost) or none(Enemy.Swimming)"), reg)
	require.Error(t, err)

	var unknown *tags.UnknownTagError
	require.ErrorAs(t, err, &unknown)
	require.Contains(t, err.Error(), "$[0]")
	require.Contains(t, err.Error(), "Ghost")
	require.Contains(t, err.Error(), "$[1]")
	require.Contains(t, err.Error(), "Enemy.Swimming")
}

func TestValidate_Malformed(t *testing.T) {
	expr := AllOf(AnyOf(), &Expression{Kind: KindAnyTagsMatch, Tags: []tags.Tag{{}}})

	err := Validate(expr, nil)
	require.ErrorIs(t, err, ErrMalformedQuery)
	require.ErrorIs(t, err, tags.ErrInvalidTag)
}

func TestValidate_NilRegistrySkipsKnownCheck(t *testing.T) {
	require.NoError(t, Validate(MustParse("any(Anything.At.All)"), nil))
}

func TestExpression_ReferencedTags(t *testing.T) {
	expr := MustParse("any(A) and not none(B, C)")
	require.Equal(t, []string{"A", "B", "C"}, tags.Strings(expr.ReferencedTags()))
}
