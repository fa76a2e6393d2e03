package tags

import "context"

// TaxonomyRepository persists the registry structure.
type TaxonomyRepository interface {
	// SaveSnapshot replaces the stored taxonomy with snap.
	SaveSnapshot(ctx context.Context, snap Snapshot) error

	// LoadSnapshot returns the stored taxonomy. An empty store yields an empty snapshot.
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

// EntityRepository persists tag owners.
type EntityRepository interface {
	// Save inserts or replaces the entity record and its ordered tag list.
	Save(ctx context.Context, rec EntityRecord) error

	// Find returns the record for id, or ErrEntityNotFound.
	Find(ctx context.Context, id string) (EntityRecord, error)

	// List returns every record ordered by creation time.
	List(ctx context.Context) ([]EntityRecord, error)

	// Delete removes the record for id, or returns ErrEntityNotFound.
	Delete(ctx context.Context, id string) error
}
