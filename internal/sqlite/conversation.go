package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/repository"
)

// MessageRepository implements conversation.MessageRepository for SQLite
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores a message at the end of its conversation
func (r *MessageRepository) Append(ctx context.Context, tenantID string, msg *conversation.Message) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, tenant_id, project_id, role, agent_id, author, text, document_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		tenantID,
		msg.ProjectID,
		msg.Role,
		nullString(msg.AgentID),
		msg.Author,
		msg.Text,
		nullString(msg.DocumentID),
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to append message: %w", err)
	}

	msg.TenantID = tenantID
	msg.CreatedAt = createdAt
	return nil
}

// List returns messages in the order they were appended
func (r *MessageRepository) List(ctx context.Context, tenantID string, opts conversation.ListMessagesOptions) ([]conversation.Message, error) {
	query := `
		SELECT id, tenant_id, project_id, role, agent_id, author, text, document_id, created_at
		FROM messages
		WHERE tenant_id = ?
	`
	args := []interface{}{tenantID}
	if opts.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}
	query += " ORDER BY seq"
	query, args = paginate(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	msgs := []conversation.Message{}
	for rows.Next() {
		var msg conversation.Message
		var agentID, documentID sql.NullString
		if err := rows.Scan(
			&msg.ID,
			&msg.TenantID,
			&msg.ProjectID,
			&msg.Role,
			&agentID,
			&msg.Author,
			&msg.Text,
			&documentID,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.AgentID = stringPtr(agentID)
		msg.DocumentID = stringPtr(documentID)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return msgs, nil
}

// DraftRepository implements conversation.DraftRepository for SQLite
type DraftRepository struct {
	db *DB
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(db *DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Get returns the draft of a project conversation
func (r *DraftRepository) Get(ctx context.Context, tenantID, projectID string) (*conversation.Draft, error) {
	var draft conversation.Draft
	var agentIDs string
	err := r.db.QueryRowContext(ctx, `
		SELECT tenant_id, project_id, prompt, agent_ids, updated_at
		FROM drafts
		WHERE tenant_id = ? AND project_id = ?
	`, tenantID, projectID).Scan(
		&draft.TenantID,
		&draft.ProjectID,
		&draft.Prompt,
		&agentIDs,
		&draft.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if err := json.Unmarshal([]byte(agentIDs), &draft.AgentIDs); err != nil {
		return nil, fmt.Errorf("failed to decode draft agents: %w", err)
	}
	if draft.AgentIDs == nil {
		draft.AgentIDs = []string{}
	}
	return &draft, nil
}

// Save inserts or replaces a draft
func (r *DraftRepository) Save(ctx context.Context, tenantID string, draft *conversation.Draft) error {
	ids := draft.AgentIDs
	if ids == nil {
		ids = []string{}
	}
	agentIDs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode draft agents: %w", err)
	}
	updatedAt := draft.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drafts (tenant_id, project_id, prompt, agent_ids, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, project_id) DO UPDATE SET
			prompt = excluded.prompt,
			agent_ids = excluded.agent_ids,
			updated_at = excluded.updated_at
	`, tenantID, draft.ProjectID, draft.Prompt, string(agentIDs), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	draft.TenantID = tenantID
	draft.UpdatedAt = updatedAt
	return nil
}

// Delete removes a draft
func (r *DraftRepository) Delete(ctx context.Context, tenantID, projectID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE tenant_id = ? AND project_id = ?`, tenantID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return requireRow(result)
}
