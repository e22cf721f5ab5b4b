package dispatch

import (
	"context"
	"sync"

	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
)

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Result is what a completed task produced.
type Result struct {
	Replies  []conversation.Message `json:"replies"`
	Artifact *document.Document     `json:"artifact"`
}

// Task is the pending reply of the agents to one prompt.
type Task struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	ProjectID string `json:"project_id,omitempty"`

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
	result *Result
	err    error
}

func newTask(id, tenantID, projectID string, cancel context.CancelFunc) *Task {
	return &Task{
		ID:        id,
		TenantID:  tenantID,
		ProjectID: projectID,
		cancel:    cancel,
		done:      make(chan struct{}),
		status:    StatusPending,
	}
}

// Done is closed when the task has finished, whatever the outcome.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel stops the task. Nothing is written after the point of cancellation.
// Cancelling a finished task has no effect.
func (t *Task) Cancel() {
	t.cancel()
}

// Status returns the current state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Wait blocks until the task finishes or ctx is done. Waiting does not
// cancel the task.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

func (t *Task) finish(status Status, result *Result, err error) {
	t.mu.Lock()
	t.status = status
	t.result = result
	t.err = err
	t.mu.Unlock()
	close(t.done)
}
