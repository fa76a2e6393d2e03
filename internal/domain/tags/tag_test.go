package tags

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	tests := []string{"A", "Enemy", "Enemy.Flying", "Enemy.Flying.Boss", "Level1.Zone22"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			tag, err := Parse(input)
			require.NoError(t, err)
			require.Equal(t, input, tag.String())
			require.True(t, tag.IsValid())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		input  string
		reason Reason
		target error
	}{
		{"", ReasonEmpty, ErrEmpty},
		{".Enemy", ReasonStartsWithDot, ErrStartsWithDot},
		{"Enemy.", ReasonEndsWithDot, ErrEndsWithDot},
		{"Enemy..Boss", ReasonRepeatedDot, ErrRepeatedDot},
		{"Enemy Boss", ReasonInvalidCharacter, ErrInvalidCharacter},
		{"Enemy_Boss", ReasonInvalidCharacter, ErrInvalidCharacter},
		{"Enemy-Boss", ReasonInvalidCharacter, ErrInvalidCharacter},
		{"Énemy", ReasonInvalidCharacter, ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.ErrorIs(t, err, tt.target)

			var regErr *RegistrationError
			require.ErrorAs(t, err, &regErr)
			require.Equal(t, tt.reason, regErr.Reason)
			require.Equal(t, tt.input, regErr.Tag)
		})
	}
}

func TestParse_InvalidCharacterPosition(t *testing.T) {
	_, err := Parse("Enemy.Fly ing")

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	require.Equal(t, 9, regErr.Pos)
	require.Contains(t, err.Error(), "position 9")
}

func TestTag_ZeroValue(t *testing.T) {
	var tag Tag
	require.False(t, tag.IsValid())
	require.False(t, tag.Equal(Tag{}), "invalid tag never equals anything")
	require.Nil(t, tag.Parts())
	require.False(t, tag.IsRoot())
}

func TestTag_Equal(t *testing.T) {
	a := MustParse("Enemy.Flying")
	require.True(t, a.Equal(MustParse("Enemy.Flying")))
	require.False(t, a.Equal(MustParse("Enemy")))
}

func TestTag_Compare(t *testing.T) {
	require.Negative(t, MustParse("A").Compare(MustParse("A.B")))
	require.Positive(t, MustParse("B").Compare(MustParse("A.B")))
	require.Zero(t, MustParse("A.B").Compare(MustParse("A.B")))
}

func TestTag_Depth(t *testing.T) {
	require.Equal(t, 0, MustParse("Enemy").Depth())
	require.Equal(t, 1, MustParse("Enemy.Flying").Depth())
	require.Equal(t, 2, MustParse("Enemy.Flying.Boss").Depth())
}

func TestTag_Name(t *testing.T) {
	require.Equal(t, "Boss", MustParse("Enemy.Flying.Boss").Name())
	require.Equal(t, "Enemy", MustParse("Enemy").Name())
}

func TestTag_Parent(t *testing.T) {
	require.Equal(t, MustParse("Enemy.Flying"), MustParse("Enemy.Flying.Boss").Parent())
	require.False(t, MustParse("Enemy").Parent().IsValid())
}

func TestTag_Parts(t *testing.T) {
	parts := MustParse("A.B.C").Parts()
	require.Equal(t, []string{"A", "A.B", "A.B.C"}, Strings(parts))

	ancestors := MustParse("A.B.C").AncestorParts()
	require.Equal(t, []string{"A", "A.B"}, Strings(ancestors))

	require.Empty(t, MustParse("A").AncestorParts())
}

func TestTag_Child(t *testing.T) {
	require.Equal(t, "A.B", MustParse("A").Child("B").String())
	require.Equal(t, "B", Tag{}.Child("B").String())
}

func TestTag_JSON(t *testing.T) {
	data, err := json.Marshal([]Tag{MustParse("A.B"), MustParse("C")})
	require.NoError(t, err)
	require.JSONEq(t, `["A.B","C"]`, string(data))

	var decoded []Tag
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, []Tag{MustParse("A.B"), MustParse("C")}, decoded)

	err = json.Unmarshal([]byte(`["A..B"]`), &decoded)
	require.ErrorIs(t, err, ErrRepeatedDot)
}

func TestMustParse_Panics(t *testing.T) {
	require.Panics(t, func() { MustParse("bad tag") })
}

func TestParseAll(t *testing.T) {
	ts, err := ParseAll("A", "A.B")
	require.NoError(t, err)
	require.Len(t, ts, 2)

	_, err = ParseAll("A", ".B")
	require.ErrorIs(t, err, ErrStartsWithDot)
}
