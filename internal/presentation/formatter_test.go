package presentation

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/application/taxonomy"
	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

func newTextFormatter() (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewFormatter(&buf, WithoutColor()), &buf
}

func TestBuildForest(t *testing.T) {
	reg := tags.NewRegistry().MustRegister("A.B.C", "A.D", "E")

	forest := BuildForest(reg.Walk)

	require.Len(t, forest, 2)
	require.Equal(t, "A", forest[0].Tag)
	require.Len(t, forest[0].Children, 2)
	require.Equal(t, "B", forest[0].Children[0].Name)
	require.Equal(t, "A.B.C", forest[0].Children[0].Children[0].Tag)
	require.Equal(t, "A.D", forest[0].Children[1].Tag)
	require.Equal(t, "E", forest[1].Tag)
	require.Empty(t, forest[1].Children)

	node, ok := FindNode(forest, "A.B")
	require.True(t, ok)
	require.Equal(t, "C", node.Children[0].Name)

	_, ok = FindNode(forest, "Z")
	require.False(t, ok)
}

func TestFormatForest_Text(t *testing.T) {
	reg := tags.NewRegistry().MustRegister("Enemy.Flying.Boss", "Enemy.Ground")
	f, buf := newTextFormatter()

	require.NoError(t, f.FormatForest(BuildForest(reg.Walk)))

	out := buf.String()
	require.Contains(t, out, "Enemy\n")
	require.Contains(t, out, "Flying")
	require.Contains(t, out, "Boss")
	require.Contains(t, out, "╰── Ground")
}

func TestFormatForest_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithJSON(true))

	require.NoError(t, f.FormatForest(nil))
	require.JSONEq(t, `[]`, buf.String())
}

func TestFormatTags(t *testing.T) {
	f, buf := newTextFormatter()
	require.NoError(t, f.FormatTags([]string{"A", "A.B"}))
	require.Equal(t, "A\nA.B\n", buf.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, NewFormatter(&jsonBuf, WithJSON(true)).FormatTags(nil))
	require.JSONEq(t, `[]`, jsonBuf.String())
}

func TestFormatTagInfo(t *testing.T) {
	reg := tags.NewRegistry().MustRegister("A.B.C")
	info := FromTagInfo(taxonomy.TagInfo{
		Tag:         tags.MustParse("A.B"),
		Parent:      tags.MustParse("A"),
		Children:    []tags.Tag{tags.MustParse("A.B.C")},
		Ancestors:   []tags.Tag{tags.MustParse("A")},
		Descendants: []tags.Tag{tags.MustParse("A.B.C")},
	})
	require.Equal(t, 3, reg.Len())

	f, buf := newTextFormatter()
	require.NoError(t, f.FormatTagInfo(info))
	require.Contains(t, buf.String(), "parent:      A\n")
	require.Contains(t, buf.String(), "depth:       1\n")
	require.Contains(t, buf.String(), "children:    A.B.C\n")

	root := FromTagInfo(taxonomy.TagInfo{Tag: tags.MustParse("A")})
	require.Empty(t, root.Parent)
}

func TestFormatEntities(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	es := []EntityDTO{
		{ID: "dragon", Name: "Dragon", Tags: []string{"Enemy.Flying.Boss"}, CreatedAt: created, UpdatedAt: created},
		{ID: "hero", Name: "Hero", Tags: []string{"Player", "Status.Stunned"}, CreatedAt: created, UpdatedAt: created},
	}

	f, buf := newTextFormatter()
	require.NoError(t, f.FormatEntities(es))
	out := buf.String()
	require.Contains(t, out, "ID")
	require.Contains(t, out, "dragon")
	require.Contains(t, out, "Player, Status.Stunned")

	buf.Reset()
	require.NoError(t, f.FormatEntities(nil))
	require.Equal(t, "no entities\n", buf.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, NewFormatter(&jsonBuf, WithJSON(true)).FormatEntities(es))
	var decoded []EntityDTO
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	require.Equal(t, es, decoded)
}

func TestFormatEntity(t *testing.T) {
	f, buf := newTextFormatter()
	require.NoError(t, f.FormatEntity(EntityDTO{ID: "x1", Name: "Box"}))
	require.Contains(t, buf.String(), "Box x1\n")
	require.Contains(t, buf.String(), "tags:    -\n")
}

func TestFormatQueryResult(t *testing.T) {
	f, buf := newTextFormatter()

	require.NoError(t, f.FormatQueryResult(QueryResultDTO{Query: "any(A)", EntityID: "e1", Matched: true}))
	require.Equal(t, "match  e1  any(A)\n", buf.String())

	buf.Reset()
	require.NoError(t, f.FormatQueryResult(QueryResultDTO{Query: "any(A)", Tags: []string{"B", "C"}}))
	require.Equal(t, "no match  [B, C]  any(A)\n", buf.String())
}

func TestFormatSelection_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, WithJSON(true))

	require.NoError(t, f.FormatSelection(SelectionDTO{Name: "flyers", Query: "any(A)"}))
	require.JSONEq(t, `{"name":"flyers","query":"any(A)","entities":[]}`, buf.String())
}

func TestFormatImportResult(t *testing.T) {
	dto := FromImportResult(taxonomy.ImportResult{
		Created: []tags.Tag{tags.MustParse("A"), tags.MustParse("A.B")},
		Queries: []taxonomy.QueryDef{{Name: "q", Expression: "any(A)"}},
		Errors:  []error{&taxonomy.LineError{Line: 4, Tag: "x..y", Err: tags.ErrRepeatedDot}},
	})

	f, buf := newTextFormatter()
	require.NoError(t, f.FormatImportResult(dto))
	out := buf.String()
	require.Contains(t, out, "created 2 tag(s)\n  + A\n  + A.B\n")
	require.Contains(t, out, "queries: q\n")
	require.Contains(t, out, "! line 4:")
}

func TestFormatRemoveResult(t *testing.T) {
	dto := FromRemoveResult(taxonomy.RemoveResult{
		Removed: []tags.Tag{tags.MustParse("A"), tags.MustParse("A.B")},
		Pruned:  []string{"e1"},
	})

	f, buf := newTextFormatter()
	require.NoError(t, f.FormatRemoveResult(dto))
	require.Equal(t, "removed 2 tag(s)\n  - A\n  - A.B\npruned 1 entit(ies): e1\n", buf.String())
}

func TestFormatMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, WithJSON(true)).FormatMessage("ok"))
	require.JSONEq(t, `{"message":"ok"}`, buf.String())
}

func TestFormatReloadResult(t *testing.T) {
	f, buf := newTextFormatter()
	require.NoError(t, f.FormatReloadResult(FromReloadResult(taxonomy.ReloadResult{Tags: 4, Pruned: []string{"a", "b"}})))
	require.Equal(t, "taxonomy now holds 4 tag(s); pruned a, b\n", buf.String())
}
