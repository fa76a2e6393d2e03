package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// taxonomyRepository implements tags.TaxonomyRepository using the
// tag_roots, tag_parents and tag_children tables.
type taxonomyRepository struct {
	db *sql.DB
}

func newTaxonomyRepository(db *sql.DB) *taxonomyRepository {
	return &taxonomyRepository{db: db}
}

// Ensure taxonomyRepository implements tags.TaxonomyRepository.
var _ tags.TaxonomyRepository = (*taxonomyRepository)(nil)

// SaveSnapshot replaces the stored taxonomy in a single transaction.
func (r *taxonomyRepository) SaveSnapshot(ctx context.Context, snap tags.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"tag_roots", "tag_parents", "tag_children"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, root := range snap.Roots {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO tag_roots (position, tag) VALUES (?, ?)`, i, root); err != nil {
			return fmt.Errorf("failed to insert root %q: %w", root, err)
		}
	}
	for child, parent := range snap.Parents {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO tag_parents (tag, parent) VALUES (?, ?)`, child, parent); err != nil {
			return fmt.Errorf("failed to insert parent edge %q: %w", child, err)
		}
	}
	for parent, kids := range snap.Children {
		for _, child := range kids {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO tag_children (parent, child) VALUES (?, ?)`, parent, child); err != nil {
				return fmt.Errorf("failed to insert child edge %q: %w", child, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit taxonomy: %w", err)
	}
	return nil
}

// LoadSnapshot reads the stored taxonomy. Child lists come back sorted.
func (r *taxonomyRepository) LoadSnapshot(ctx context.Context) (tags.Snapshot, error) {
	snap := tags.Snapshot{
		Roots:    []string{},
		Parents:  map[string]string{},
		Children: map[string][]string{},
	}

	if err := queryEach(ctx, r.db, `SELECT tag FROM tag_roots ORDER BY position`, func(rows *sql.Rows) error {
		var root string
		if err := rows.Scan(&root); err != nil {
			return err
		}
		snap.Roots = append(snap.Roots, root)
		return nil
	}); err != nil {
		return tags.Snapshot{}, fmt.Errorf("failed to load roots: %w", err)
	}

	if err := queryEach(ctx, r.db, `SELECT tag, parent FROM tag_parents`, func(rows *sql.Rows) error {
		var child, parent string
		if err := rows.Scan(&child, &parent); err != nil {
			return err
		}
		snap.Parents[child] = parent
		return nil
	}); err != nil {
		return tags.Snapshot{}, fmt.Errorf("failed to load parent edges: %w", err)
	}

	if err := queryEach(ctx, r.db, `SELECT parent, child FROM tag_children`, func(rows *sql.Rows) error {
		var parent, child string
		if err := rows.Scan(&parent, &child); err != nil {
			return err
		}
		snap.Children[parent] = append(snap.Children[parent], child)
		return nil
	}); err != nil {
		return tags.Snapshot{}, fmt.Errorf("failed to load child edges: %w", err)
	}
	for _, kids := range snap.Children {
		sort.Strings(kids)
	}

	return snap, nil
}

// queryEach runs query and calls fn for every row.
func queryEach(ctx context.Context, db *sql.DB, query string, fn func(*sql.Rows) error, args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
