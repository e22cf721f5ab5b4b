package project

import "time"

// Project groups the documents of one matter for a client.
type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Client      string    `json:"client,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	DocumentIDs []string  `json:"document_ids"`
}

// HasDocument reports whether the document is attached to the project.
func (p *Project) HasDocument(documentID string) bool {
	for _, id := range p.DocumentIDs {
		if id == documentID {
			return true
		}
	}
	return false
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Client        string    `json:"client,omitempty"`
	DocumentCount int       `json:"document_count"`
	Selected      bool      `json:"selected"`
	CreatedAt     time.Time `json:"created_at"`
}
