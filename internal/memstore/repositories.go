package memstore

import (
	"context"
	"sort"

	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/repository"
	"github.com/valislegal/valis/internal/workspace"
)

// ProjectRepository implements project.Repository.
type ProjectRepository struct{ store *Store }

func (r *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	p := *proj
	p.TenantID = tenantID
	_, err := r.store.Dispatch(ctx, tenantID, workspace.ProjectCreated{Project: p})
	return err
}

func (r *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	p, ok := r.store.Snapshot(tenantID).Project(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.DocumentIDs = append([]string{}, p.DocumentIDs...)
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	s := r.store.Snapshot(tenantID)
	out := make([]project.ProjectSummary, 0, len(s.Projects))
	for _, p := range s.Projects {
		out = append(out, project.ProjectSummary{
			ID:            p.ID,
			Name:          p.Name,
			Client:        p.Client,
			DocumentCount: len(p.DocumentIDs),
			Selected:      p.ID == s.SelectedProjectID,
			CreatedAt:     p.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, tenantID string, proj *project.Project) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.ProjectUpdated{Project: *proj})
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.ProjectDeleted{ID: id})
	return err
}

func (r *ProjectRepository) AttachDocument(ctx context.Context, tenantID, projectID, documentID string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DocumentAttached{ProjectID: projectID, DocumentID: documentID})
	return err
}

func (r *ProjectRepository) DetachDocument(ctx context.Context, tenantID, projectID, documentID string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DocumentDetached{ProjectID: projectID, DocumentID: documentID})
	return err
}

func (r *ProjectRepository) SetSelected(ctx context.Context, tenantID, projectID string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.ProjectSelected{ID: projectID})
	return err
}

func (r *ProjectRepository) GetSelected(ctx context.Context, tenantID string) (string, error) {
	return r.store.Snapshot(tenantID).SelectedProjectID, nil
}

// CollectionRepository implements collection.Repository.
type CollectionRepository struct{ store *Store }

func (r *CollectionRepository) Create(ctx context.Context, tenantID string, col *collection.Collection) error {
	c := *col
	c.TenantID = tenantID
	_, err := r.store.Dispatch(ctx, tenantID, workspace.CollectionCreated{Collection: c})
	return err
}

func (r *CollectionRepository) Get(ctx context.Context, tenantID, id string) (*collection.Collection, error) {
	c, ok := r.store.Snapshot(tenantID).Collection(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CollectionRepository) List(ctx context.Context, tenantID string) ([]collection.Collection, error) {
	s := r.store.Snapshot(tenantID)
	out := make([]collection.Collection, 0, len(s.Collections))
	for _, c := range s.Collections {
		c.DocumentCount = s.DocumentCount(c.ID)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CollectionRepository) Update(ctx context.Context, tenantID string, col *collection.Collection) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.CollectionUpdated{Collection: *col})
	return err
}

func (r *CollectionRepository) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.CollectionDeleted{ID: id})
	return err
}

// DocumentRepository implements document.Repository.
type DocumentRepository struct{ store *Store }

func (r *DocumentRepository) Create(ctx context.Context, tenantID string, doc *document.Document) error {
	d := *doc
	d.TenantID = tenantID
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DocumentStored{Document: d})
	return err
}

func (r *DocumentRepository) Get(ctx context.Context, tenantID, id string) (*document.Document, error) {
	d, ok := r.store.Snapshot(tenantID).Document(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *DocumentRepository) Update(ctx context.Context, tenantID string, doc *document.Document) error {
	d := *doc
	d.TenantID = tenantID
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DocumentUpdated{Document: d})
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DocumentDeleted{ID: id})
	return err
}

func (r *DocumentRepository) List(ctx context.Context, tenantID string, opts document.ListDocumentsOptions) ([]document.DocumentRef, error) {
	s := r.store.Snapshot(tenantID)

	var inProject map[string]bool
	if opts.ProjectID != "" {
		p, ok := s.Project(opts.ProjectID)
		if !ok {
			return []document.DocumentRef{}, nil
		}
		inProject = make(map[string]bool, len(p.DocumentIDs))
		for _, id := range p.DocumentIDs {
			inProject[id] = true
		}
	}

	out := make([]document.DocumentRef, 0, len(s.Documents))
	for i := range s.Documents {
		d := &s.Documents[i]
		if inProject != nil && !inProject[d.ID] {
			continue
		}
		if opts.CollectionID != nil && (d.CollectionID == nil || *d.CollectionID != *opts.CollectionID) {
			continue
		}
		out = append(out, d.Ref())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, opts.Limit, opts.Offset), nil
}

// ActivityRepository implements activity.Repository.
type ActivityRepository struct{ store *Store }

func (r *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	e := *entry
	e.TenantID = tenantID
	s, err := r.store.Dispatch(ctx, tenantID, workspace.ActivityAppended{Entry: e})
	if err != nil {
		return err
	}
	entry.ID = s.LastActivityID
	entry.TenantID = tenantID
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	s := r.store.Snapshot(tenantID)
	out := make([]activity.ActivityEntry, 0, len(s.Activity))
	for i := len(s.Activity) - 1; i >= 0; i-- {
		e := s.Activity[i]
		if opts.ProjectID != "" && e.ProjectID != opts.ProjectID {
			continue
		}
		if opts.DocumentID != nil && (e.DocumentID == nil || *e.DocumentID != *opts.DocumentID) {
			continue
		}
		if opts.Status != nil && e.Status != *opts.Status {
			continue
		}
		out = append(out, e)
	}
	return page(out, opts.Limit, opts.Offset), nil
}

// MessageRepository implements conversation.MessageRepository.
type MessageRepository struct{ store *Store }

func (r *MessageRepository) Append(ctx context.Context, tenantID string, msg *conversation.Message) error {
	m := *msg
	m.TenantID = tenantID
	_, err := r.store.Dispatch(ctx, tenantID, workspace.MessageAppended{Message: m})
	return err
}

func (r *MessageRepository) List(ctx context.Context, tenantID string, opts conversation.ListMessagesOptions) ([]conversation.Message, error) {
	s := r.store.Snapshot(tenantID)
	out := make([]conversation.Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if opts.ProjectID != "" && m.ProjectID != opts.ProjectID {
			continue
		}
		out = append(out, m)
	}
	return page(out, opts.Limit, opts.Offset), nil
}

// DraftRepository implements conversation.DraftRepository.
type DraftRepository struct{ store *Store }

func (r *DraftRepository) Get(ctx context.Context, tenantID, projectID string) (*conversation.Draft, error) {
	d, ok := r.store.Snapshot(tenantID).Draft(projectID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.AgentIDs = append([]string{}, d.AgentIDs...)
	return &d, nil
}

func (r *DraftRepository) Save(ctx context.Context, tenantID string, draft *conversation.Draft) error {
	d := *draft
	d.TenantID = tenantID
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DraftUpdated{Draft: d})
	return err
}

func (r *DraftRepository) Delete(ctx context.Context, tenantID, projectID string) error {
	_, err := r.store.Dispatch(ctx, tenantID, workspace.DraftCleared{ProjectID: projectID})
	return err
}
