package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// entityRepository implements tags.EntityRepository using the owners and
// owner_tags tables.
type entityRepository struct {
	db *sql.DB
}

func newEntityRepository(db *sql.DB) *entityRepository {
	return &entityRepository{db: db}
}

// Ensure entityRepository implements tags.EntityRepository.
var _ tags.EntityRepository = (*entityRepository)(nil)

// Save upserts the owner row and replaces its tag list.
func (r *entityRepository) Save(ctx context.Context, rec tags.EntityRecord) (err error) {
	if rec.ID == "" {
		return tags.ErrEmptyEntityID
	}
	model := toOwnerModel(rec)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO owners (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		model.ID, model.Name, model.CreatedAt, model.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to save owner: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM owner_tags WHERE owner_id = ?`, model.ID); err != nil {
		return fmt.Errorf("failed to clear owner tags: %w", err)
	}
	for _, row := range toOwnerTagModels(rec) {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO owner_tags (owner_id, position, tag) VALUES (?, ?, ?)`,
			row.OwnerID, row.Position, row.Tag,
		); err != nil {
			return fmt.Errorf("failed to insert owner tag %q: %w", row.Tag, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit owner: %w", err)
	}
	return nil
}

// Find returns the record for id, or tags.ErrEntityNotFound.
func (r *entityRepository) Find(ctx context.Context, id string) (tags.EntityRecord, error) {
	var model OwnerModel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM owners WHERE id = ?`, id,
	).Scan(&model.ID, &model.Name, &model.CreatedAt, &model.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return tags.EntityRecord{}, fmt.Errorf("%w: %s", tags.ErrEntityNotFound, id)
	}
	if err != nil {
		return tags.EntityRecord{}, fmt.Errorf("failed to find owner: %w", err)
	}

	var ownerTags []string
	if err := queryEach(ctx, r.db,
		`SELECT tag FROM owner_tags WHERE owner_id = ? ORDER BY position`,
		func(rows *sql.Rows) error {
			var tag string
			if err := rows.Scan(&tag); err != nil {
				return err
			}
			ownerTags = append(ownerTags, tag)
			return nil
		}, id,
	); err != nil {
		return tags.EntityRecord{}, fmt.Errorf("failed to load owner tags: %w", err)
	}

	return model.toRecord(ownerTags), nil
}

// List returns every record ordered by creation time, then insertion order.
func (r *entityRepository) List(ctx context.Context) ([]tags.EntityRecord, error) {
	var models []OwnerModel
	if err := queryEach(ctx, r.db,
		`SELECT id, name, created_at, updated_at FROM owners ORDER BY created_at, rowid`,
		func(rows *sql.Rows) error {
			var m OwnerModel
			if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			models = append(models, m)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}

	byOwner := make(map[string][]string, len(models))
	if err := queryEach(ctx, r.db,
		`SELECT owner_id, tag FROM owner_tags ORDER BY owner_id, position`,
		func(rows *sql.Rows) error {
			var row OwnerTagModel
			if err := rows.Scan(&row.OwnerID, &row.Tag); err != nil {
				return err
			}
			byOwner[row.OwnerID] = append(byOwner[row.OwnerID], row.Tag)
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("failed to list owner tags: %w", err)
	}

	out := make([]tags.EntityRecord, len(models))
	for i, m := range models {
		out[i] = m.toRecord(byOwner[m.ID])
	}
	return out, nil
}

// Delete removes the owner and, by cascade, its tags.
func (r *entityRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM owners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete owner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", tags.ErrEntityNotFound, id)
	}
	return nil
}
