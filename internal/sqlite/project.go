package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project and attaches its initial documents
func (r *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (id, tenant_id, name, client, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		proj.ID,
		tenantID,
		proj.Name,
		proj.Client,
		proj.Notes,
		proj.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, docID := range proj.DocumentIDs {
		if err := attach(ctx, tx, tenantID, proj.ID, docID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a project by ID with its document ids in attach order
func (r *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	query := `
		SELECT id, tenant_id, name, client, notes, created_at
		FROM projects
		WHERE id = ? AND tenant_id = ?
	`

	var proj project.Project
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&proj.ID,
		&proj.TenantID,
		&proj.Name,
		&proj.Client,
		&proj.Notes,
		&proj.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT document_id FROM project_documents
		WHERE project_id = ?
		ORDER BY attached_at, rowid
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list project documents: %w", err)
	}
	defer rows.Close()

	proj.DocumentIDs = []string{}
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		proj.DocumentIDs = append(proj.DocumentIDs, docID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project documents: %w", err)
	}

	return &proj, nil
}

// List returns all projects for a tenant with summary information
func (r *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	query := `
		SELECT
			p.id,
			p.name,
			p.client,
			p.created_at,
			COUNT(pd.document_id) AS document_count,
			CASE WHEN s.project_id IS NULL THEN 0 ELSE 1 END AS selected
		FROM projects p
		LEFT JOIN project_documents pd ON pd.project_id = p.id
		LEFT JOIN project_selection s ON s.tenant_id = p.tenant_id AND s.project_id = p.id
		WHERE p.tenant_id = ?
		GROUP BY p.id, p.name, p.client, p.created_at, s.project_id
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := []project.ProjectSummary{}
	for rows.Next() {
		var summary project.ProjectSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Client,
			&summary.CreatedAt,
			&summary.DocumentCount,
			&summary.Selected,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// Update saves the name, client and notes of a project
func (r *ProjectRepository) Update(ctx context.Context, tenantID string, proj *project.Project) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, client = ?, notes = ?
		WHERE id = ? AND tenant_id = ?
	`, proj.Name, proj.Client, proj.Notes, proj.ID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(result)
}

// Delete removes a project; membership rows and the selection cascade
func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM drafts WHERE tenant_id = ? AND project_id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete project draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AttachDocument adds a document to a project. Attaching twice is a no-op.
func (r *ProjectRepository) AttachDocument(ctx context.Context, tenantID, projectID, documentID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := attach(ctx, tx, tenantID, projectID, documentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DetachDocument removes a document from a project without deleting it
func (r *ProjectRepository) DetachDocument(ctx context.Context, tenantID, projectID, documentID string) error {
	if err := r.exists(ctx, tenantID, projectID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM project_documents WHERE project_id = ? AND document_id = ?
	`, projectID, documentID)
	if err != nil {
		return fmt.Errorf("failed to detach document: %w", err)
	}
	return nil
}

// SetSelected moves the selection cursor; an empty project id clears it
func (r *ProjectRepository) SetSelected(ctx context.Context, tenantID, projectID string) error {
	if projectID == "" {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM project_selection WHERE tenant_id = ?`, tenantID); err != nil {
			return fmt.Errorf("failed to clear selection: %w", err)
		}
		return nil
	}
	if err := r.exists(ctx, tenantID, projectID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_selection (tenant_id, project_id) VALUES (?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET project_id = excluded.project_id
	`, tenantID, projectID)
	if err != nil {
		return fmt.Errorf("failed to select project: %w", err)
	}
	return nil
}

// GetSelected returns the selected project id, or "" when none is selected
func (r *ProjectRepository) GetSelected(ctx context.Context, tenantID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM project_selection WHERE tenant_id = ?`, tenantID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get selection: %w", err)
	}
	return id, nil
}

func (r *ProjectRepository) exists(ctx context.Context, tenantID, projectID string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ? AND tenant_id = ?`, projectID, tenantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	return nil
}

// attach links a document of the same tenant to a project inside tx.
func attach(ctx context.Context, tx *sql.Tx, tenantID, projectID, documentID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ? AND tenant_id = ?`, projectID, tenantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}

	err = tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ? AND tenant_id = ?`, documentID, tenantID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO project_documents (project_id, document_id) VALUES (?, ?)
		ON CONFLICT(project_id, document_id) DO NOTHING
	`, projectID, documentID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to attach document: %w", err)
	}
	return nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
