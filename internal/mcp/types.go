package mcp

import (
	"github.com/valislegal/valis/internal/dispatch"
	"github.com/valislegal/valis/internal/domain/activity"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type IDParams struct {
	ID string `json:"id"`
}

type CreateProjectParams struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Client      string   `json:"client,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type UpdateProjectParams struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Client *string `json:"client,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type SelectProjectParams struct {
	// ID is the project to select; empty clears the selection.
	ID string `json:"id"`
}

type ProjectDocumentParams struct {
	ProjectID  string `json:"project_id"`
	DocumentID string `json:"document_id"`
}

type CreateCollectionParams struct {
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`
}

type UpdateCollectionParams struct {
	ID   string  `json:"id"`
	Name *string `json:"name,omitempty"`
	Tag  *string `json:"tag,omitempty"`
}

type UploadFileParams struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
	// Data is base64 in JSON.
	Data []byte `json:"data"`
}

type UploadDocumentsParams struct {
	ProjectID    string             `json:"project_id,omitempty"`
	CollectionID *string            `json:"collection_id,omitempty"`
	Files        []UploadFileParams `json:"files"`
}

type CreateDocumentParams struct {
	ProjectID    string  `json:"project_id,omitempty"`
	CollectionID *string `json:"collection_id,omitempty"`
	Name         string  `json:"name"`
	MimeType     string  `json:"mime_type,omitempty"`
	Content      string  `json:"content"`
	ReadOnly     bool    `json:"read_only,omitempty"`
}

type UpdateDocumentParams struct {
	ID           string  `json:"id"`
	Name         *string `json:"name,omitempty"`
	Content      *string `json:"content,omitempty"`
	CollectionID *string `json:"collection_id,omitempty"`
}

type ListDocumentsParams struct {
	ProjectID    string  `json:"project_id,omitempty"`
	CollectionID *string `json:"collection_id,omitempty"`
	Limit        int     `json:"limit,omitempty"`
	Offset       int     `json:"offset,omitempty"`
}

type ExportDocumentParams struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
}

type GetRecentActivityParams struct {
	ProjectID  string           `json:"project_id,omitempty"`
	DocumentID *string          `json:"document_id,omitempty"`
	Status     *activity.Status `json:"status,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Offset     int              `json:"offset,omitempty"`
}

type ProjectScopedParams struct {
	ProjectID string `json:"project_id,omitempty"`
}

type UpdateDraftParams struct {
	ProjectID string   `json:"project_id,omitempty"`
	Prompt    *string  `json:"prompt,omitempty"`
	AgentIDs  []string `json:"agent_ids,omitempty"`
}

type ListMessagesParams struct {
	ProjectID string `json:"project_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type TaskParams struct {
	TaskID string `json:"task_id"`
	// Wait blocks until the task finishes, up to this many milliseconds.
	WaitMS int `json:"wait_ms,omitempty"`
}

// TaskResponse is the observable state of an agent task.
type TaskResponse struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"project_id,omitempty"`
	Status    dispatch.Status  `json:"status"`
	Result    *dispatch.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
