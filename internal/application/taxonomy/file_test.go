package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

const sampleTaxonomy = `tags:
  - Enemy.Flying.Boss
  - Enemy.Ground
  - Enemy
  - bad..tag
  - Player
queries:
  - name: flyers
    expression: any(Enemy.Flying.Boss)
`

func TestParseFile(t *testing.T) {
	file, err := ParseFile([]byte(sampleTaxonomy))
	require.NoError(t, err)

	require.Equal(t, []string{"Enemy.Flying.Boss", "Enemy.Ground", "Enemy", "bad..tag", "Player"}, file.Tags)
	require.Equal(t, []QueryDef{{Name: "flyers", Expression: "any(Enemy.Flying.Boss)"}}, file.Queries)
	require.Equal(t, []int{2, 3, 4, 5, 6}, file.lines)
}

func TestParseFile_Empty(t *testing.T) {
	file, err := ParseFile([]byte("  \n"))
	require.NoError(t, err)
	require.Empty(t, file.Tags)
}

func TestParseFile_Invalid(t *testing.T) {
	_, err := ParseFile([]byte("tags: [unclosed"))
	require.Error(t, err)

	_, err = ParseFile([]byte("tags: {a: b}"))
	require.Error(t, err)
}

func TestFile_RegisterInto_ReportsLines(t *testing.T) {
	file, err := ParseFile([]byte(sampleTaxonomy))
	require.NoError(t, err)

	reg := tags.NewRegistry()
	created, errs := file.RegisterInto(reg)

	require.Equal(t, []string{"Enemy", "Enemy.Flying", "Enemy.Flying.Boss", "Enemy.Ground", "Player"},
		tags.Strings(created))
	require.Len(t, errs, 1, "a root listed after its child is not an error")

	var lineErr *LineError
	require.ErrorAs(t, errs[0], &lineErr)
	require.Equal(t, 5, lineErr.Line)
	require.Equal(t, "bad..tag", lineErr.Tag)
	require.ErrorIs(t, errs[0], tags.ErrRepeatedDot)
	require.Contains(t, errs[0].Error(), "line 5")
}

func TestFile_Build(t *testing.T) {
	reg, err := File{Tags: []string{"A.B", "C"}}.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"A", "A.B", "C"}, tags.Strings(reg.All()))

	_, err = File{Tags: []string{"A", ".B"}}.Build()
	require.ErrorIs(t, err, tags.ErrStartsWithDot)
}

func TestFile_EncodeRoundTrip(t *testing.T) {
	reg := tags.NewRegistry().MustRegister("Zeta", "Alpha.One")
	file := NewFile(reg, []QueryDef{{Name: "z", Expression: "any(Zeta)"}})

	data, err := file.Encode()
	require.NoError(t, err)

	decoded, err := ParseFile(data)
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha", "Alpha.One", "Zeta"}, decoded.Tags)
	require.Equal(t, file.Queries, decoded.Queries)

	rebuilt, err := decoded.Build()
	require.NoError(t, err)
	require.Equal(t, reg.Snapshot(), rebuilt.Snapshot())
}

func TestNewFile_EmptyRegistry(t *testing.T) {
	data, err := NewFile(tags.NewRegistry(), nil).Encode()
	require.NoError(t, err)
	require.Equal(t, "tags: []\n", string(data))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTaxonomy), 0o600))

	file, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, file.Tags, 5)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileFS(t *testing.T) {
	fsys := fstest.MapFS{"taxonomy.yaml": {Data: []byte("tags: [A.B]\n")}}

	file, err := ReadFileFS(fsys, "taxonomy.yaml")
	require.NoError(t, err)
	require.Equal(t, []string{"A.B"}, file.Tags)
	require.Equal(t, []int{1}, file.lines)
}
