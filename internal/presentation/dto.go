package presentation

import (
	"time"

	"github.com/brezhnevtusks/Unidork-sub000/internal/application/taxonomy"
	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// TagInfoDTO describes one registered tag.
type TagInfoDTO struct {
	Name        string   `json:"name"`
	Parent      string   `json:"parent,omitempty"`
	Depth       int      `json:"depth"`
	Children    []string `json:"children"`
	Ancestors   []string `json:"ancestors"`
	Descendants []string `json:"descendants"`
}

// FromTagInfo converts service tag info to a DTO.
func FromTagInfo(info taxonomy.TagInfo) TagInfoDTO {
	dto := TagInfoDTO{
		Name:        info.Tag.String(),
		Depth:       info.Tag.Depth(),
		Children:    tags.Strings(info.Children),
		Ancestors:   tags.Strings(info.Ancestors),
		Descendants: tags.Strings(info.Descendants),
	}
	if info.Parent.IsValid() {
		dto.Parent = info.Parent.String()
	}
	return dto
}

// TreeNodeDTO is one node of the rendered forest. Name is the last segment.
type TreeNodeDTO struct {
	Name     string        `json:"name"`
	Tag      string        `json:"tag"`
	Children []TreeNodeDTO `json:"children,omitempty"`
}

// BuildForest collects a depth-first walk into nested nodes.
func BuildForest(walk func(fn func(t tags.Tag, depth int) bool)) []TreeNodeDTO {
	var roots []TreeNodeDTO
	// path[i] points at the open node at depth i.
	var path []*TreeNodeDTO
	walk(func(t tags.Tag, depth int) bool {
		node := TreeNodeDTO{Name: t.Name(), Tag: t.String()}
		path = path[:min(depth, len(path))]
		if depth == 0 || len(path) == 0 {
			roots = append(roots, node)
			path = append(path, &roots[len(roots)-1])
			return true
		}
		parent := path[len(path)-1]
		parent.Children = append(parent.Children, node)
		path = append(path, &parent.Children[len(parent.Children)-1])
		return true
	})
	return roots
}

// FindNode returns the node for tag within forest.
func FindNode(forest []TreeNodeDTO, tag string) (TreeNodeDTO, bool) {
	for _, node := range forest {
		if node.Tag == tag {
			return node, true
		}
		if found, ok := FindNode(node.Children, tag); ok {
			return found, true
		}
	}
	return TreeNodeDTO{}, false
}

// EntityDTO represents a stored entity.
type EntityDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromEntity converts a domain entity to a DTO.
func FromEntity(e *tags.Entity) EntityDTO {
	return EntityDTO{
		ID:        e.ID(),
		Name:      e.Name(),
		Tags:      e.OwnedTags().Strings(),
		CreatedAt: e.CreatedAt(),
		UpdatedAt: e.UpdatedAt(),
	}
}

// FromEntities converts a list of entities.
func FromEntities(es []*tags.Entity) []EntityDTO {
	out := make([]EntityDTO, len(es))
	for i, e := range es {
		out[i] = FromEntity(e)
	}
	return out
}

// QueryResultDTO is the outcome of evaluating one query against one tag set.
type QueryResultDTO struct {
	Query    string   `json:"query"`
	EntityID string   `json:"entity_id,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Matched  bool     `json:"matched"`
}

// SelectionDTO lists the entities a query selected.
type SelectionDTO struct {
	Name     string      `json:"name,omitempty"`
	Query    string      `json:"query"`
	Entities []EntityDTO `json:"entities"`
}

// ImportResultDTO summarises a taxonomy import.
type ImportResultDTO struct {
	Created []string `json:"created"`
	Queries []string `json:"queries,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// FromImportResult converts a service import result.
func FromImportResult(r taxonomy.ImportResult) ImportResultDTO {
	dto := ImportResultDTO{Created: tags.Strings(r.Created)}
	for _, q := range r.Queries {
		dto.Queries = append(dto.Queries, q.Name)
	}
	for _, err := range r.Errors {
		dto.Errors = append(dto.Errors, err.Error())
	}
	return dto
}

// RemoveResultDTO summarises a tag removal.
type RemoveResultDTO struct {
	Removed []string `json:"removed"`
	Pruned  []string `json:"pruned,omitempty"`
}

// FromRemoveResult converts a service remove result.
func FromRemoveResult(r taxonomy.RemoveResult) RemoveResultDTO {
	return RemoveResultDTO{Removed: tags.Strings(r.Removed), Pruned: r.Pruned}
}

// ReloadResultDTO summarises a taxonomy replacement.
type ReloadResultDTO struct {
	Tags   int      `json:"tags"`
	Pruned []string `json:"pruned,omitempty"`
}

// FromReloadResult converts a service reload result.
func FromReloadResult(r taxonomy.ReloadResult) ReloadResultDTO {
	return ReloadResultDTO{Tags: r.Tags, Pruned: r.Pruned}
}
