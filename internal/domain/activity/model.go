package activity

import "time"

// Status tags an activity entry in the Lexychain log.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusCreated  Status = "created"
	StatusEdited   Status = "edited"
	StatusDeleted  Status = "deleted"
	StatusExported Status = "exported"
	StatusThinking Status = "thinking"
	StatusEditing  Status = "editing"
	StatusReplied  Status = "replied"
)

// ActivityEntry describes one user or agent action.
type ActivityEntry struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ProjectID   string    `json:"project_id,omitempty"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	DocumentID  *string   `json:"document_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
