package conversation

import "time"

// Role identifies who wrote a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Agent is a synthetic persona that can be mentioned in a prompt.
type Agent struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Nickname string `json:"nickname" yaml:"nickname"`
}

// Message is one entry of the multiagent conversation.
type Message struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	Role       Role      `json:"role"`
	AgentID    *string   `json:"agent_id,omitempty"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	DocumentID *string   `json:"document_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Draft is the unsent prompt of a conversation and the agents picked for it.
type Draft struct {
	TenantID  string    `json:"tenant_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Prompt    string    `json:"prompt"`
	AgentIDs  []string  `json:"agent_ids"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty reports whether there is nothing to send.
func (d *Draft) IsEmpty() bool {
	return d == nil || (d.Prompt == "" && len(d.AgentIDs) == 0)
}
