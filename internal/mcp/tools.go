package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func strList(description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": map[string]any{"type": "string"}}
}

var page = map[string]any{
	"limit":  integer("Maximum number of results"),
	"offset": integer("Offset for pagination"),
}

func withPage(props map[string]any) map[string]any {
	for k, v := range page {
		props[k] = v
	}
	return props
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	idOnly := func(what string) map[string]any {
		return object([]string{"id"}, map[string]any{"id": str(what + " ID")})
	}
	projectScoped := object(nil, map[string]any{"project_id": str("Project ID (omit for the global conversation)")})

	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a project for a client matter, optionally attaching existing documents",
			InputSchema: object([]string{"name"}, map[string]any{
				"id":           str("Project ID (generated when omitted)"),
				"name":         str("Project display name"),
				"client":       str("Client name"),
				"notes":        str("Free-form notes"),
				"document_ids": strList("Documents to attach"),
			}),
		},
		{
			Name:        "list_projects",
			Description: "List projects, newest first, with document counts and the selection flag",
			InputSchema: object(nil, map[string]any{}),
		},
		{
			Name:        "get_project",
			Description: "Get a project with its document ids, or the selected project when id is omitted",
			InputSchema: object(nil, map[string]any{"id": str("Project ID (omit for the selected project)")}),
		},
		{
			Name:        "update_project",
			Description: "Rename a project or change its client and notes",
			InputSchema: object([]string{"id"}, map[string]any{
				"id":     str("Project ID"),
				"name":   str("New name"),
				"client": str("New client"),
				"notes":  str("New notes"),
			}),
		},
		{Name: "delete_project", Description: "Delete a project. Its documents are kept", InputSchema: idOnly("Project")},
		{
			Name:        "select_project",
			Description: "Make a project the selected one; an empty id clears the selection",
			InputSchema: object(nil, map[string]any{"id": str("Project ID")}),
		},
		{
			Name:        "add_project_document",
			Description: "Attach a document to a project",
			InputSchema: object([]string{"project_id", "document_id"}, map[string]any{
				"project_id":  str("Project ID"),
				"document_id": str("Document ID"),
			}),
		},
		{
			Name:        "remove_project_document",
			Description: "Detach a document from a project",
			InputSchema: object([]string{"project_id", "document_id"}, map[string]any{
				"project_id":  str("Project ID"),
				"document_id": str("Document ID"),
			}),
		},

		// Collections
		{
			Name:        "create_collection",
			Description: "Create an empty collection",
			InputSchema: object([]string{"name"}, map[string]any{"name": str("Collection name"), "tag": str("Tag, e.g. Contratti")}),
		},
		{Name: "list_collections", Description: "List collections with their document counts", InputSchema: object(nil, map[string]any{})},
		{Name: "get_collection", Description: "Get a collection", InputSchema: idOnly("Collection")},
		{
			Name:        "update_collection",
			Description: "Rename or retag a collection",
			InputSchema: object([]string{"id"}, map[string]any{"id": str("Collection ID"), "name": str("New name"), "tag": str("New tag")}),
		},
		{Name: "delete_collection", Description: "Delete a collection. Its documents are kept", InputSchema: idOnly("Collection")},

		// Documents
		{
			Name:        "upload_documents",
			Description: "Upload files as documents. Text and HTML files become editable HTML; other files are stored read-only",
			InputSchema: object([]string{"files"}, map[string]any{
				"project_id":    str("Project to attach the documents to"),
				"collection_id": str("Collection to file the documents under"),
				"files": map[string]any{
					"type": "array",
					"items": object([]string{"name", "data"}, map[string]any{
						"name":      str("File name"),
						"mime_type": str("MIME type (guessed from the name when omitted)"),
						"data":      str("Base64 file content"),
					}),
				},
			}),
		},
		{
			Name:        "create_document",
			Description: "Create an HTML document",
			InputSchema: object([]string{"name", "content"}, map[string]any{
				"project_id":    str("Project to attach the document to"),
				"collection_id": str("Collection to file the document under"),
				"name":          str("Document name"),
				"mime_type":     str("MIME type (default text/html)"),
				"content":       str("HTML content"),
				"read_only":     map[string]any{"type": "boolean", "description": "Lock the content"},
			}),
		},
		{Name: "get_document", Description: "Get a document with its HTML content", InputSchema: idOnly("Document")},
		{
			Name:        "list_documents",
			Description: "List documents, newest first, optionally by project or collection",
			InputSchema: object(nil, withPage(map[string]any{
				"project_id":    str("Project ID"),
				"collection_id": str("Collection ID"),
			})),
		},
		{
			Name:        "update_document",
			Description: "Rename a document, move it to a collection or replace its content",
			InputSchema: object([]string{"id"}, map[string]any{
				"id":            str("Document ID"),
				"name":          str("New name"),
				"content":       str("New HTML content"),
				"collection_id": str("New collection ID (empty string removes it)"),
			}),
		},
		{Name: "delete_document", Description: "Delete a document and detach it from every project", InputSchema: idOnly("Document")},
		{
			Name:        "export_document",
			Description: "Export a document as docx (default) or html; the file is returned base64-encoded",
			InputSchema: object([]string{"id"}, map[string]any{
				"id":     str("Document ID"),
				"format": map[string]any{"type": "string", "enum": []string{"docx", "html"}},
			}),
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "Get Lexychain activity entries, newest first",
			InputSchema: object(nil, withPage(map[string]any{
				"project_id":  str("Project ID"),
				"document_id": str("Document ID"),
				"status": map[string]any{
					"type": "string",
					"enum": []string{"uploaded", "created", "edited", "deleted", "exported", "thinking", "editing", "replied"},
				},
			})),
		},

		// Conversation
		{Name: "list_agents", Description: "List the agents that can be mentioned with @nickname", InputSchema: object(nil, map[string]any{})},
		{Name: "get_draft", Description: "Get the unsent prompt and selected agents", InputSchema: projectScoped},
		{
			Name:        "update_draft",
			Description: "Change the unsent prompt or the selected agents",
			InputSchema: object(nil, map[string]any{
				"project_id": str("Project ID"),
				"prompt":     str("Prompt text"),
				"agent_ids":  strList("Selected agent IDs"),
			}),
		},
		{Name: "clear_draft", Description: "Discard the unsent prompt", InputSchema: projectScoped},
		{
			Name:        "list_messages",
			Description: "List conversation messages in order",
			InputSchema: object(nil, withPage(map[string]any{"project_id": str("Project ID")})),
		},
		{
			Name:        "send_prompt",
			Description: "Send a prompt to the selected and @mentioned agents. Replies and one draft document arrive asynchronously",
			InputSchema: object([]string{"prompt"}, map[string]any{
				"project_id": str("Project ID"),
				"prompt":     str("Prompt text"),
				"agent_ids":  strList("Agent IDs in addition to @mentions"),
				"author":     str("Author shown on the user message"),
			}),
		},
		{
			Name:        "get_task",
			Description: "Get the state of an agent task, optionally waiting for it to finish",
			InputSchema: object([]string{"task_id"}, map[string]any{
				"task_id": str("Task ID returned by send_prompt"),
				"wait_ms": integer("Milliseconds to wait for completion"),
			}),
		},
		{
			Name:        "cancel_task",
			Description: "Cancel a pending agent task; nothing more is written for it",
			InputSchema: object([]string{"task_id"}, map[string]any{"task_id": str("Task ID")}),
		},
	}
}

// registerTools exposes every catalog entry as an MCP tool backed by the handler.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, getTenantID(ctx), name, args)
			if err != nil {
				return toolError(logger, name, err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(logger *slog.Logger, name string, err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		if errors.Is(err, ErrUnknownMethod) {
			apiErr = &APIError{Code: "UNKNOWN_TOOL", Message: err.Error()}
		} else {
			logger.Error("tool failed", "tool", name, "error", err)
			apiErr = &APIError{Code: "INTERNAL", Message: "internal error"}
		}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
