package sqlite

import (
	"time"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// OwnerModel represents a row of the owners table.
// Timestamps are stored as Unix nanoseconds.
type OwnerModel struct {
	ID        string
	Name      string
	CreatedAt int64
	UpdatedAt int64
}

// OwnerTagModel represents a row of the owner_tags table.
type OwnerTagModel struct {
	OwnerID  string
	Position int
	Tag      string
}

// toOwnerModel converts a domain record to its owners row.
func toOwnerModel(rec tags.EntityRecord) OwnerModel {
	return OwnerModel{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt.UnixNano(),
		UpdatedAt: rec.UpdatedAt.UnixNano(),
	}
}

// toOwnerTagModels converts a record's ordered tag list to owner_tags rows.
func toOwnerTagModels(rec tags.EntityRecord) []OwnerTagModel {
	out := make([]OwnerTagModel, len(rec.Tags))
	for i, tag := range rec.Tags {
		out[i] = OwnerTagModel{OwnerID: rec.ID, Position: i, Tag: tag}
	}
	return out
}

// toRecord rebuilds the domain record. ownerTags must be ordered by position.
func (m OwnerModel) toRecord(ownerTags []string) tags.EntityRecord {
	return tags.EntityRecord{
		ID:        m.ID,
		Name:      m.Name,
		Tags:      ownerTags,
		CreatedAt: time.Unix(0, m.CreatedAt),
		UpdatedAt: time.Unix(0, m.UpdatedAt),
	}
}
