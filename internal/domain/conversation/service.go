package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valislegal/valis/internal/repository"
)

// Service handles drafts, messages and the agent roster.
type Service struct {
	agents   []Agent
	messages MessageRepository
	drafts   DraftRepository
	logger   *slog.Logger
}

// NewService creates a new conversation service over a fixed agent roster.
func NewService(agents []Agent, messages MessageRepository, drafts DraftRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	roster := make([]Agent, len(agents))
	copy(roster, agents)
	return &Service{
		agents:   roster,
		messages: messages,
		drafts:   drafts,
		logger:   logger,
	}
}

// DraftUpdate changes a draft. Nil fields are left alone.
type DraftUpdate struct {
	ProjectID string
	Prompt    *string
	AgentIDs  []string
}

// ListAgents returns the roster.
func (s *Service) ListAgents() []Agent {
	out := make([]Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Agent returns a roster entry by id.
func (s *Service) Agent(id string) (Agent, error) {
	for _, a := range s.agents {
		if a.ID == id {
			return a, nil
		}
	}
	return Agent{}, ErrAgentNotFound
}

// ResolveAgents returns the agents selected explicitly by id plus those
// mentioned by @nickname in the prompt, without duplicates. Unknown ids are
// an error; unknown mentions are ignored.
func (s *Service) ResolveAgents(prompt string, ids []string) ([]Agent, error) {
	var out []Agent
	seen := map[string]bool{}
	for _, id := range ids {
		agent, err := s.Agent(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, id)
		}
		if !seen[agent.ID] {
			seen[agent.ID] = true
			out = append(out, agent)
		}
	}
	for _, nick := range ParseMentions(prompt) {
		for _, agent := range s.agents {
			if strings.ToLower(agent.Nickname) == nick && !seen[agent.ID] {
				seen[agent.ID] = true
				out = append(out, agent)
			}
		}
	}
	return out, nil
}

// GetDraft returns the draft of a conversation, or an empty one.
func (s *Service) GetDraft(ctx context.Context, tenantID, projectID string) (*Draft, error) {
	draft, err := s.drafts.Get(ctx, tenantID, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Draft{TenantID: tenantID, ProjectID: projectID, AgentIDs: []string{}}, nil
		}
		return nil, fmt.Errorf("getting draft: %w", err)
	}
	return draft, nil
}

// UpdateDraft edits the prompt or the agent selection of a draft.
func (s *Service) UpdateDraft(ctx context.Context, tenantID string, req DraftUpdate) (*Draft, error) {
	draft, err := s.GetDraft(ctx, tenantID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	updated := *draft
	if req.Prompt != nil {
		updated.Prompt = *req.Prompt
	}
	if req.AgentIDs != nil {
		ids := make([]string, 0, len(req.AgentIDs))
		seen := map[string]bool{}
		for _, id := range req.AgentIDs {
			if _, err := s.Agent(id); err != nil {
				return nil, fmt.Errorf("%w: %s", err, id)
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		updated.AgentIDs = ids
	}
	updated.UpdatedAt = time.Now()

	if err := s.drafts.Save(ctx, tenantID, &updated); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	return &updated, nil
}

// ClearDraft empties the prompt and the agent selection.
func (s *Service) ClearDraft(ctx context.Context, tenantID, projectID string) error {
	if err := s.drafts.Delete(ctx, tenantID, projectID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}

// AppendMessage adds a message to the conversation log.
func (s *Service) AppendMessage(ctx context.Context, tenantID string, msg *Message) error {
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return ErrInvalidInput
	}
	switch msg.Role {
	case RoleUser:
	case RoleAgent:
		if msg.AgentID == nil {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.TenantID = tenantID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.messages.Append(ctx, tenantID, msg); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	s.logger.Debug("message appended", "tenant_id", tenantID, "project_id", msg.ProjectID, "role", msg.Role)
	return nil
}

// ListMessages returns the conversation log in order.
func (s *Service) ListMessages(ctx context.Context, tenantID string, opts ListMessagesOptions) ([]Message, error) {
	return s.messages.List(ctx, tenantID, opts)
}
