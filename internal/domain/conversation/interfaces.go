package conversation

import "context"

// MessageRepository provides persistence for messages.
type MessageRepository interface {
	Append(ctx context.Context, tenantID string, msg *Message) error
	List(ctx context.Context, tenantID string, opts ListMessagesOptions) ([]Message, error)
}

// DraftRepository stores one draft per tenant and project.
type DraftRepository interface {
	Get(ctx context.Context, tenantID, projectID string) (*Draft, error)
	Save(ctx context.Context, tenantID string, draft *Draft) error
	Delete(ctx context.Context, tenantID, projectID string) error
}
