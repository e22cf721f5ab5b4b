package collection

import "time"

// Collection is a named grouping of documents independent of any project.
type Collection struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Name          string    `json:"name"`
	Tag           string    `json:"tag,omitempty"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}
