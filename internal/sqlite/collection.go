package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/repository"
)

// CollectionRepository implements collection.Repository for SQLite
type CollectionRepository struct {
	db *DB
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

const collectionColumns = `
	c.id, c.tenant_id, c.name, c.tag, c.created_at,
	(SELECT COUNT(*) FROM documents d WHERE d.tenant_id = c.tenant_id AND d.collection_id = c.id)
`

// Create creates a new collection
func (r *CollectionRepository) Create(ctx context.Context, tenantID string, col *collection.Collection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collections (id, tenant_id, name, tag, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, col.ID, tenantID, col.Name, col.Tag, col.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Get retrieves a collection by ID
func (r *CollectionRepository) Get(ctx context.Context, tenantID, id string) (*collection.Collection, error) {
	query := `SELECT` + collectionColumns + `FROM collections c WHERE c.id = ? AND c.tenant_id = ?`

	var col collection.Collection
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&col.ID,
		&col.TenantID,
		&col.Name,
		&col.Tag,
		&col.CreatedAt,
		&col.DocumentCount,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &col, nil
}

// List returns every collection of a tenant ordered by name
func (r *CollectionRepository) List(ctx context.Context, tenantID string) ([]collection.Collection, error) {
	query := `SELECT` + collectionColumns + `FROM collections c WHERE c.tenant_id = ? ORDER BY c.name`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	cols := []collection.Collection{}
	for rows.Next() {
		var col collection.Collection
		if err := rows.Scan(
			&col.ID,
			&col.TenantID,
			&col.Name,
			&col.Tag,
			&col.CreatedAt,
			&col.DocumentCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection rows: %w", err)
	}
	return cols, nil
}

// Update saves the name and tag of a collection
func (r *CollectionRepository) Update(ctx context.Context, tenantID string, col *collection.Collection) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE collections SET name = ?, tag = ? WHERE id = ? AND tenant_id = ?
	`, col.Name, col.Tag, col.ID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	return requireRow(result)
}

// Delete removes a collection. Its documents keep their collection id.
func (r *CollectionRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return requireRow(result)
}
