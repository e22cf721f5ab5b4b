package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/repository"
)

// DocumentRepository implements document.Repository for SQLite
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create stores a new document
func (r *DocumentRepository) Create(ctx context.Context, tenantID string, doc *document.Document) error {
	query := `
		INSERT INTO documents (
			id, tenant_id, collection_id, name, size, mime_type, date, content, is_read_only
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		tenantID,
		nullString(doc.CollectionID),
		doc.Name,
		doc.Size,
		doc.MimeType,
		doc.Date,
		doc.Content,
		doc.IsReadOnly,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID including its content
func (r *DocumentRepository) Get(ctx context.Context, tenantID, id string) (*document.Document, error) {
	query := `
		SELECT id, tenant_id, collection_id, name, size, mime_type, date, content, is_read_only
		FROM documents
		WHERE id = ? AND tenant_id = ?
	`

	var doc document.Document
	var collectionID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&doc.ID,
		&doc.TenantID,
		&collectionID,
		&doc.Name,
		&doc.Size,
		&doc.MimeType,
		&doc.Date,
		&doc.Content,
		&doc.IsReadOnly,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.CollectionID = stringPtr(collectionID)
	return &doc, nil
}

// Update saves every mutable field of a document
func (r *DocumentRepository) Update(ctx context.Context, tenantID string, doc *document.Document) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET collection_id = ?, name = ?, size = ?, mime_type = ?, date = ?, content = ?, is_read_only = ?
		WHERE id = ? AND tenant_id = ?
	`,
		nullString(doc.CollectionID),
		doc.Name,
		doc.Size,
		doc.MimeType,
		doc.Date,
		doc.Content,
		doc.IsReadOnly,
		doc.ID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return requireRow(result)
}

// Delete removes a document; project membership rows cascade
func (r *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return requireRow(result)
}

// List returns document references matching the filters, newest first
func (r *DocumentRepository) List(ctx context.Context, tenantID string, opts document.ListDocumentsOptions) ([]document.DocumentRef, error) {
	query := `
		SELECT d.id, d.collection_id, d.name, d.size, d.mime_type, d.date, d.is_read_only
		FROM documents d
	`
	args := []interface{}{}
	conditions := []string{"d.tenant_id = ?"}

	if opts.ProjectID != "" {
		query += " JOIN project_documents pd ON pd.document_id = d.id"
		conditions = append(conditions, "pd.project_id = ?")
		args = append(args, tenantID, opts.ProjectID)
	} else {
		args = append(args, tenantID)
	}
	if opts.CollectionID != nil {
		conditions = append(conditions, "d.collection_id = ?")
		args = append(args, *opts.CollectionID)
	}

	query += " WHERE " + joinConditions(conditions)
	query += " ORDER BY d.date DESC, d.rowid"
	query, args = paginate(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	refs := []document.DocumentRef{}
	for rows.Next() {
		var ref document.DocumentRef
		var collectionID sql.NullString
		if err := rows.Scan(
			&ref.ID,
			&collectionID,
			&ref.Name,
			&ref.Size,
			&ref.MimeType,
			&ref.Date,
			&ref.IsReadOnly,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		ref.CollectionID = stringPtr(collectionID)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return refs, nil
}
