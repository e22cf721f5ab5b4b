package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `Valis is a legal-document workspace: Projects group the Documents of a client matter, Collections file Documents by kind, and a multiagent conversation turns prompts into agent replies plus one draft document.

Core concepts:
- Project: name, client, notes and an ordered list of attached document ids. One project may be "selected".
- Collection: a named, tagged grouping. Deleting it never deletes its documents.
- Document: metadata plus sanitized HTML content. Uploaded binaries are read-only and have no content.
- Lexychain: the activity log (uploaded, created, edited, deleted, exported, thinking, editing, replied).
- Agents: a fixed roster; mention them in a prompt with @nickname or pass agent_ids.

Typical workflow:
1) Orient: list_projects, then get_project (omit id for the selected project).
2) Bring documents in: upload_documents or create_document, attach with add_project_document.
3) Ask the agents: send_prompt returns a task; poll get_task with wait_ms until it is completed.
   Each agent replies once and one "Bozza" document is created and attached.
4) Deliver: export_document (docx, with html fallback) returns the file base64-encoded.

Docs:
- valis://docs/index
- valis://docs/workflows/multiagent
- valis://docs/export
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "valis://docs/index",
		Name:        "docs_index",
		Title:       "Valis docs index",
		Description: "Entry point: what the workspace holds and which tools to call first.",
		Content: `# Valis: docs index

## Quick start

1. ` + "`list_projects`" + ` and ` + "`select_project`" + ` to pick the matter you work on.
2. ` + "`list_documents`" + ` with ` + "`project_id`" + ` to see what is attached.
3. ` + "`get_document`" + ` to read HTML content; ` + "`update_document`" + ` to edit it.
4. ` + "`get_recent_activity`" + ` to see what happened recently (Lexychain).

## Read on demand

- ` + "`valis://docs/workflows/multiagent`" + `: prompts, mentions and agent tasks.
- ` + "`valis://docs/export`" + `: docx export, fallback and file names.

## Limits

- Read-only documents reject content edits; rename and refile are still allowed.
- Listing tools return everything when ` + "`limit`" + ` is omitted.
`,
	},
	{
		URI:         "valis://docs/workflows/multiagent",
		Name:        "docs_multiagent",
		Title:       "Multiagent conversation",
		Description: "How prompts reach agents and what a task produces.",
		Content: `# Multiagent conversation

- Agents are addressed by ` + "`@nickname`" + ` in the prompt or by ` + "`agent_ids`" + `. Unknown mentions are ignored; unknown ids are an error.
- A blank prompt, or a prompt with no agent, sends nothing (` + "`NOTHING_TO_SEND`" + `).
- ` + "`send_prompt`" + ` appends the user message, logs a "thinking" entry, clears the draft and returns a pending task.
- When the task completes there is exactly one reply per agent and exactly one artifact document titled "Bozza - <prompt excerpt>", attached to the project.
- ` + "`cancel_task`" + ` before completion means no reply and no artifact are written.
- Finished tasks stay queryable for a while; after that ` + "`get_task`" + ` reports ` + "`TASK_NOT_FOUND`" + `.
`,
	},
	{
		URI:         "valis://docs/export",
		Name:        "docs_export",
		Title:       "Document export",
		Description: "Formats, fallback behaviour and file names of exported documents.",
		Content: `# Export

- ` + "`export_document`" + ` produces docx by default. If docx encoding fails, a standalone HTML page is produced instead and the file name ends in .html.
- The file name is the document name with its extension replaced; an empty name becomes "documento".
- Headings, paragraphs, lists and tables survive; scripts, styles and inline event handlers are stripped.
- Every export is recorded in the Lexychain as "exported".
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
