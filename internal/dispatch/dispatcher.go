// Package dispatch sends a prompt to the selected agents and runs their
// replies as cancellable background tasks.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
)

var (
	// ErrNothingToSend indicates a blank prompt or no selected agent.
	ErrNothingToSend = errors.New("nothing to send")
	// ErrClosed indicates the dispatcher no longer accepts prompts.
	ErrClosed = errors.New("dispatcher closed")
	// ErrTaskNotFound indicates an unknown or evicted task id.
	ErrTaskNotFound = errors.New("task not found")
)

// DefaultUserAuthor is the author recorded on user messages.
const DefaultUserAuthor = "Utente"

const retainedTasks = 256

// Conversation is the part of conversation.Service the dispatcher uses.
type Conversation interface {
	ResolveAgents(prompt string, ids []string) ([]conversation.Agent, error)
	AppendMessage(ctx context.Context, tenantID string, msg *conversation.Message) error
	ClearDraft(ctx context.Context, tenantID, projectID string) error
}

// Documents creates artifact documents.
type Documents interface {
	Create(ctx context.Context, tenantID string, req document.CreateRequest) (*document.Document, error)
}

// Activity logs Lexychain entries.
type Activity interface {
	LogActivity(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

// Recorder observes finished tasks.
type Recorder interface {
	ObserveTask(status string, elapsed time.Duration)
}

// Config holds the dispatcher collaborators.
type Config struct {
	Conversation Conversation
	Documents    Documents
	Activity     Activity
	Responder    Responder
	Metrics      Recorder
	// Delay is how long agents "think" before replying.
	Delay  time.Duration
	Logger *slog.Logger
}

// SendRequest is a prompt addressed to agents.
type SendRequest struct {
	ProjectID string   `json:"project_id,omitempty"`
	Prompt    string   `json:"prompt"`
	AgentIDs  []string `json:"agent_ids,omitempty"`
	Author    string   `json:"author,omitempty"`
}

// Dispatcher turns prompts into agent tasks.
type Dispatcher struct {
	cfg    Config
	logger *slog.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	tasks    map[string]*Task
	finished []string
}

// New creates a dispatcher. A nil Responder means SyntheticResponder.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Responder == nil {
		cfg.Responder = SyntheticResponder{}
	}
	base, stop := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:    cfg,
		logger: logger,
		base:   base,
		stop:   stop,
		tasks:  map[string]*Task{},
	}
}

// Send records the user's prompt and starts the agents' task. A blank prompt
// or an empty agent selection returns ErrNothingToSend and changes nothing.
func (d *Dispatcher) Send(ctx context.Context, tenantID string, req SendRequest) (*Task, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrNothingToSend
	}
	agents, err := d.cfg.Conversation.ResolveAgents(prompt, req.AgentIDs)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, ErrNothingToSend
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	author := req.Author
	if author == "" {
		author = DefaultUserAuthor
	}
	msg := &conversation.Message{
		ProjectID: req.ProjectID,
		Role:      conversation.RoleUser,
		Author:    author,
		Text:      prompt,
	}
	if err := d.cfg.Conversation.AppendMessage(ctx, tenantID, msg); err != nil {
		return nil, fmt.Errorf("recording prompt: %w", err)
	}
	d.logActivity(ctx, tenantID, &activity.ActivityEntry{
		ProjectID:   req.ProjectID,
		Status:      activity.StatusThinking,
		Description: fmt.Sprintf("%s sta elaborando la richiesta", agentNames(agents)),
	})
	if err := d.cfg.Conversation.ClearDraft(ctx, tenantID, req.ProjectID); err != nil {
		d.logger.Warn("failed to clear draft", "tenant_id", tenantID, "project_id", req.ProjectID, "error", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	taskCtx, cancel := context.WithCancel(d.base)
	task := newTask(uuid.NewString(), tenantID, req.ProjectID, cancel)
	d.tasks[task.ID] = task
	d.wg.Add(1)
	go d.run(taskCtx, task, prompt, agents)

	d.logger.Info("prompt dispatched", "tenant_id", tenantID, "task_id", task.ID, "agents", len(agents))
	return task, nil
}

// Task returns a task by id while it is retained.
func (d *Dispatcher) Task(tenantID, id string) (*Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	task, ok := d.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Close cancels every in-flight task and waits for them to return.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.stop()
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) run(ctx context.Context, task *Task, prompt string, agents []conversation.Agent) {
	defer d.wg.Done()
	defer task.cancel()
	start := time.Now()

	result, err := d.reply(ctx, task, prompt, agents)
	status := StatusCompleted
	switch {
	case err != nil && ctx.Err() != nil:
		status = StatusCancelled
		err = context.Canceled
	case err != nil:
		status = StatusFailed
		d.logger.Error("agent task failed", "task_id", task.ID, "error", err)
	}
	task.finish(status, result, err)
	d.retire(task.ID)

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.ObserveTask(string(status), time.Since(start))
	}
	d.logger.Debug("agent task finished", "task_id", task.ID, "status", status)
}

func (d *Dispatcher) reply(ctx context.Context, task *Task, prompt string, agents []conversation.Agent) (*Result, error) {
	timer := time.NewTimer(d.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	result := &Result{Replies: make([]conversation.Message, 0, len(agents))}
	for _, agent := range agents {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		text, err := d.cfg.Responder.Reply(ctx, prompt, agent)
		if err != nil {
			return result, fmt.Errorf("reply from %s: %w", agent.ID, err)
		}
		agentID := agent.ID
		msg := &conversation.Message{
			ProjectID: task.ProjectID,
			Role:      conversation.RoleAgent,
			AgentID:   &agentID,
			Author:    agent.Name,
			Text:      text,
		}
		if err := d.cfg.Conversation.AppendMessage(ctx, task.TenantID, msg); err != nil {
			return result, fmt.Errorf("recording reply: %w", err)
		}
		result.Replies = append(result.Replies, *msg)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	title := ArtifactTitle(prompt)
	content, err := d.cfg.Responder.Artifact(ctx, title, prompt, agents)
	if err != nil {
		return result, fmt.Errorf("drafting artifact: %w", err)
	}
	doc, err := d.cfg.Documents.Create(ctx, task.TenantID, document.CreateRequest{
		ProjectID: task.ProjectID,
		Name:      title,
		MimeType:  document.MimeHTML,
		Content:   content,
	})
	if err != nil {
		return result, fmt.Errorf("creating artifact: %w", err)
	}
	result.Artifact = doc

	docID := doc.ID
	d.logActivity(ctx, task.TenantID, &activity.ActivityEntry{
		ProjectID:   task.ProjectID,
		Status:      activity.StatusEditing,
		Description: fmt.Sprintf("%s sta redigendo %q", agentNames(agents), doc.Name),
		DocumentID:  &docID,
	})
	return result, nil
}

func (d *Dispatcher) retire(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finished = append(d.finished, id)
	for len(d.finished) > retainedTasks {
		delete(d.tasks, d.finished[0])
		d.finished = d.finished[1:]
	}
}

func (d *Dispatcher) logActivity(ctx context.Context, tenantID string, entry *activity.ActivityEntry) {
	if d.cfg.Activity == nil {
		return
	}
	if err := d.cfg.Activity.LogActivity(ctx, tenantID, entry); err != nil {
		d.logger.Warn("failed to log activity", "tenant_id", tenantID, "status", entry.Status, "error", err)
	}
}

func agentNames(agents []conversation.Agent) string {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}
