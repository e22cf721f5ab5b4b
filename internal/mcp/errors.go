package mcp

import (
	"errors"
	"fmt"

	"github.com/valislegal/valis/internal/dispatch"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/export"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to API error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, document.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects to find a valid id"}
	case errors.Is(err, project.ErrNoSelection):
		return &APIError{Code: "NO_PROJECT_SELECTED", Message: "no project selected", RecoveryHint: "Pass an id or call select_project first"}
	case errors.Is(err, project.ErrDocumentNotFound), errors.Is(err, document.ErrDocumentNotFound):
		return &APIError{Code: "DOCUMENT_NOT_FOUND", Message: "document not found", RecoveryHint: "Call list_documents to find a valid id"}
	case errors.Is(err, collection.ErrCollectionNotFound):
		return &APIError{Code: "COLLECTION_NOT_FOUND", Message: "collection not found", RecoveryHint: "Call list_collections to find a valid id"}
	case errors.Is(err, conversation.ErrAgentNotFound):
		return &APIError{Code: "AGENT_NOT_FOUND", Message: "agent not found", RecoveryHint: "Call list_agents for the roster"}
	case errors.Is(err, document.ErrNoFiles):
		return &APIError{Code: "NO_FILES", Message: "no files to upload", RecoveryHint: "Attach at least one file"}
	case errors.Is(err, document.ErrReadOnly):
		return &APIError{Code: "READ_ONLY", Message: "document is read-only", RecoveryHint: "Create a new document instead"}
	case errors.Is(err, dispatch.ErrNothingToSend):
		return &APIError{Code: "NOTHING_TO_SEND", Message: "prompt is empty or no agent selected", RecoveryHint: "Write a prompt and mention or select an agent"}
	case errors.Is(err, dispatch.ErrTaskNotFound):
		return &APIError{Code: "TASK_NOT_FOUND", Message: "task not found", RecoveryHint: "Finished tasks are only kept for a while"}
	case errors.Is(err, dispatch.ErrClosed):
		return &APIError{Code: "UNAVAILABLE", Message: "server is shutting down", RecoveryHint: "Retry later"}
	case errors.Is(err, export.ErrUnsupportedFormat):
		return &APIError{Code: "UNSUPPORTED_FORMAT", Message: "unsupported export format", RecoveryHint: "Use docx or html"}
	case errors.Is(err, export.ErrExportFailed):
		return &APIError{Code: "EXPORT_FAILED", Message: "export failed", RecoveryHint: "Check the document content and retry"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, collection.ErrInvalidInput),
		errors.Is(err, document.ErrInvalidInput), errors.Is(err, conversation.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput), errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields"}
	default:
		return nil
	}
}
