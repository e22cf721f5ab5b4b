package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valislegal/valis/internal/dispatch"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/export"
)

var (
	// ErrUnknownMethod indicates a method name no service handles.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams indicates parameters that could not be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, tenantID string, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error)
	Update(ctx context.Context, tenantID string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, tenantID, id string) error
	Select(ctx context.Context, tenantID, id string) error
	Selected(ctx context.Context, tenantID string) (*project.Project, error)
	AddDocument(ctx context.Context, tenantID, projectID, documentID string) (*project.Project, error)
	RemoveDocument(ctx context.Context, tenantID, projectID, documentID string) (*project.Project, error)
}

// CollectionService defines collection operations needed by MCP.
type CollectionService interface {
	Create(ctx context.Context, tenantID string, req collection.CreateRequest) (*collection.Collection, error)
	Get(ctx context.Context, tenantID, id string) (*collection.Collection, error)
	List(ctx context.Context, tenantID string) ([]collection.Collection, error)
	Update(ctx context.Context, tenantID string, req collection.UpdateRequest) (*collection.Collection, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// DocumentService defines document operations needed by MCP.
type DocumentService interface {
	Upload(ctx context.Context, tenantID string, req document.UploadRequest) ([]*document.Document, error)
	Create(ctx context.Context, tenantID string, req document.CreateRequest) (*document.Document, error)
	Get(ctx context.Context, tenantID, id string) (*document.Document, error)
	List(ctx context.Context, tenantID string, opts document.ListDocumentsOptions) ([]document.DocumentRef, error)
	Update(ctx context.Context, tenantID string, req document.UpdateRequest) (*document.Document, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// ConversationService defines conversation operations needed by MCP.
type ConversationService interface {
	ListAgents() []conversation.Agent
	GetDraft(ctx context.Context, tenantID, projectID string) (*conversation.Draft, error)
	UpdateDraft(ctx context.Context, tenantID string, req conversation.DraftUpdate) (*conversation.Draft, error)
	ClearDraft(ctx context.Context, tenantID, projectID string) error
	ListMessages(ctx context.Context, tenantID string, opts conversation.ListMessagesOptions) ([]conversation.Message, error)
}

// Dispatcher sends prompts to agents.
type Dispatcher interface {
	Send(ctx context.Context, tenantID string, req dispatch.SendRequest) (*dispatch.Task, error)
	Task(tenantID, id string) (*dispatch.Task, error)
}

// ExportService produces downloadable files.
type ExportService interface {
	Export(ctx context.Context, tenantID, documentID string, format export.Format) (*export.Artifact, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects     ProjectService
	Collections  CollectionService
	Documents    DocumentService
	Activity     ActivityService
	Conversation ConversationService
	Dispatcher   Dispatcher
	Export       ExportService
}

// Handler dispatches MCP commands.
type Handler struct {
	svc Services
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches a named operation to the domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error) {
	switch method {
	// Projects
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.svc.Projects.Create(ctx, tenantID, project.CreateRequest{
			ID:     req.ID,
			Name:   req.Name,
			Client: req.Client,
			Notes:  req.Notes,
		})
		if err != nil {
			return nil, mapError(err)
		}
		for _, docID := range req.DocumentIDs {
			if proj, err = h.svc.Projects.AddDocument(ctx, tenantID, proj.ID, docID); err != nil {
				return nil, mapError(err)
			}
		}
		return proj, nil
	case "list_projects":
		return wrap(h.svc.Projects.List(ctx, tenantID))
	case "get_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.ID == "" {
			return wrap(h.svc.Projects.Selected(ctx, tenantID))
		}
		return wrap(h.svc.Projects.Get(ctx, tenantID, req.ID))
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Update(ctx, tenantID, project.UpdateRequest{
			ID:     req.ID,
			Name:   req.Name,
			Client: req.Client,
			Notes:  req.Notes,
		}))
	case "delete_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return ok("deleted", h.svc.Projects.Delete(ctx, tenantID, req.ID))
	case "select_project":
		var req SelectProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return ok("selected", h.svc.Projects.Select(ctx, tenantID, req.ID))
	case "add_project_document":
		var req ProjectDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.AddDocument(ctx, tenantID, req.ProjectID, req.DocumentID))
	case "remove_project_document":
		var req ProjectDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.RemoveDocument(ctx, tenantID, req.ProjectID, req.DocumentID))

	// Collections
	case "create_collection":
		var req CreateCollectionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Collections.Create(ctx, tenantID, collection.CreateRequest{Name: req.Name, Tag: req.Tag}))
	case "list_collections":
		return wrap(h.svc.Collections.List(ctx, tenantID))
	case "get_collection":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Collections.Get(ctx, tenantID, req.ID))
	case "update_collection":
		var req UpdateCollectionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Collections.Update(ctx, tenantID, collection.UpdateRequest{ID: req.ID, Name: req.Name, Tag: req.Tag}))
	case "delete_collection":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return ok("deleted", h.svc.Collections.Delete(ctx, tenantID, req.ID))

	// Documents
	case "upload_documents":
		var req UploadDocumentsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		files := make([]document.File, 0, len(req.Files))
		for _, f := range req.Files {
			files = append(files, document.File{Name: f.Name, MimeType: f.MimeType, Data: f.Data})
		}
		return wrap(h.svc.Documents.Upload(ctx, tenantID, document.UploadRequest{
			ProjectID:    req.ProjectID,
			CollectionID: req.CollectionID,
			Files:        files,
		}))
	case "create_document":
		var req CreateDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Documents.Create(ctx, tenantID, document.CreateRequest{
			ProjectID:    req.ProjectID,
			CollectionID: req.CollectionID,
			Name:         req.Name,
			MimeType:     req.MimeType,
			Content:      req.Content,
			ReadOnly:     req.ReadOnly,
		}))
	case "get_document":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Documents.Get(ctx, tenantID, req.ID))
	case "list_documents":
		var req ListDocumentsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Documents.List(ctx, tenantID, document.ListDocumentsOptions{
			ProjectID:    req.ProjectID,
			CollectionID: req.CollectionID,
			Limit:        req.Limit,
			Offset:       req.Offset,
		}))
	case "update_document":
		var req UpdateDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Documents.Update(ctx, tenantID, document.UpdateRequest{
			ID:           req.ID,
			Name:         req.Name,
			Content:      req.Content,
			CollectionID: req.CollectionID,
		}))
	case "delete_document":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return ok("deleted", h.svc.Documents.Delete(ctx, tenantID, req.ID))
	case "export_document":
		var req ExportDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		format, err := export.ParseFormat(req.Format)
		if err != nil {
			return nil, mapError(err)
		}
		return wrap(h.svc.Export.Export(ctx, tenantID, req.ID, format))

	// Activity
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Activity.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{
			ProjectID:  req.ProjectID,
			DocumentID: req.DocumentID,
			Status:     req.Status,
			Limit:      req.Limit,
			Offset:     req.Offset,
		}))

	// Conversation
	case "list_agents":
		return h.svc.Conversation.ListAgents(), nil
	case "get_draft":
		var req ProjectScopedParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Conversation.GetDraft(ctx, tenantID, req.ProjectID))
	case "update_draft":
		var req UpdateDraftParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Conversation.UpdateDraft(ctx, tenantID, conversation.DraftUpdate{
			ProjectID: req.ProjectID,
			Prompt:    req.Prompt,
			AgentIDs:  req.AgentIDs,
		}))
	case "clear_draft":
		var req ProjectScopedParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return ok("cleared", h.svc.Conversation.ClearDraft(ctx, tenantID, req.ProjectID))
	case "list_messages":
		var req ListMessagesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Conversation.ListMessages(ctx, tenantID, conversation.ListMessagesOptions{
			ProjectID: req.ProjectID,
			Limit:     req.Limit,
			Offset:    req.Offset,
		}))
	case "send_prompt":
		var req dispatch.SendRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		task, err := h.svc.Dispatcher.Send(ctx, tenantID, req)
		if err != nil {
			return nil, mapError(err)
		}
		return taskResponse(task), nil
	case "get_task":
		var req TaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		task, err := h.svc.Dispatcher.Task(tenantID, req.TaskID)
		if err != nil {
			return nil, mapError(err)
		}
		if req.WaitMS > 0 {
			waitCtx, cancel := context.WithTimeout(ctx, time.Duration(req.WaitMS)*time.Millisecond)
			defer cancel()
			select {
			case <-task.Done():
			case <-waitCtx.Done():
			}
		}
		return taskResponse(task), nil
	case "cancel_task":
		var req TaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		task, err := h.svc.Dispatcher.Task(tenantID, req.TaskID)
		if err != nil {
			return nil, mapError(err)
		}
		task.Cancel()
		<-task.Done()
		return taskResponse(task), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func taskResponse(task *dispatch.Task) TaskResponse {
	resp := TaskResponse{ID: task.ID, ProjectID: task.ProjectID}
	select {
	case <-task.Done():
		result, err := task.Wait(context.Background())
		resp.Result = result
		if err != nil {
			resp.Error = err.Error()
		}
	default:
	}
	resp.Status = task.Status()
	return resp
}

func wrap[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

func ok(status string, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return StatusResponse{Status: status}, nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
