package workspace

import (
	"fmt"

	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/repository"
)

// Action is a state transition. The set of actions is closed.
type Action interface {
	apply(s *State) error
}

// Reduce applies an action and returns the resulting state. The input is
// never modified; on error it is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	next := s.clone()
	if err := a.apply(&next); err != nil {
		return s, err
	}
	return next, nil
}

// ReduceAll applies actions in order, stopping at the first error.
func ReduceAll(s State, actions ...Action) (State, error) {
	for _, a := range actions {
		next, err := Reduce(s, a)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

// ProjectCreated adds a project.
type ProjectCreated struct{ Project project.Project }

func (a ProjectCreated) apply(s *State) error {
	if s.projectIndex(a.Project.ID) >= 0 {
		return fmt.Errorf("project %s: %w", a.Project.ID, repository.ErrConflict)
	}
	p := a.Project
	p.DocumentIDs = dedupe(p.DocumentIDs)
	s.Projects = append(s.Projects, p)
	return nil
}

// ProjectUpdated replaces the editable fields of a project. Its document list
// is kept.
type ProjectUpdated struct{ Project project.Project }

func (a ProjectUpdated) apply(s *State) error {
	i := s.projectIndex(a.Project.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	cur := &s.Projects[i]
	cur.Name = a.Project.Name
	cur.Client = a.Project.Client
	cur.Notes = a.Project.Notes
	return nil
}

// ProjectDeleted removes a project, its draft, and the selection if it
// pointed at it.
type ProjectDeleted struct{ ID string }

func (a ProjectDeleted) apply(s *State) error {
	i := s.projectIndex(a.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Projects = append(s.Projects[:i], s.Projects[i+1:]...)
	if s.SelectedProjectID == a.ID {
		s.SelectedProjectID = ""
	}
	if j := s.draftIndex(a.ID); j >= 0 {
		s.Drafts = append(s.Drafts[:j], s.Drafts[j+1:]...)
	}
	return nil
}

// ProjectSelected moves the selection cursor. An empty ID clears it.
type ProjectSelected struct{ ID string }

func (a ProjectSelected) apply(s *State) error {
	if a.ID != "" && s.projectIndex(a.ID) < 0 {
		return repository.ErrNotFound
	}
	s.SelectedProjectID = a.ID
	return nil
}

// DocumentAttached adds a document to a project. Attaching twice is a no-op.
type DocumentAttached struct{ ProjectID, DocumentID string }

func (a DocumentAttached) apply(s *State) error {
	i := s.projectIndex(a.ProjectID)
	if i < 0 {
		return repository.ErrNotFound
	}
	if s.documentIndex(a.DocumentID) < 0 {
		return repository.ErrForeignKeyViolation
	}
	if s.Projects[i].HasDocument(a.DocumentID) {
		return nil
	}
	s.Projects[i].DocumentIDs = append(s.Projects[i].DocumentIDs, a.DocumentID)
	return nil
}

// DocumentDetached removes a document from a project without deleting it.
type DocumentDetached struct{ ProjectID, DocumentID string }

func (a DocumentDetached) apply(s *State) error {
	i := s.projectIndex(a.ProjectID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Projects[i].DocumentIDs = without(s.Projects[i].DocumentIDs, a.DocumentID)
	return nil
}

// CollectionCreated adds a collection.
type CollectionCreated struct{ Collection collection.Collection }

func (a CollectionCreated) apply(s *State) error {
	if s.collectionIndex(a.Collection.ID) >= 0 {
		return fmt.Errorf("collection %s: %w", a.Collection.ID, repository.ErrConflict)
	}
	c := a.Collection
	c.DocumentCount = 0
	s.Collections = append(s.Collections, c)
	return nil
}

// CollectionUpdated renames or retags a collection.
type CollectionUpdated struct{ Collection collection.Collection }

func (a CollectionUpdated) apply(s *State) error {
	i := s.collectionIndex(a.Collection.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Collections[i].Name = a.Collection.Name
	s.Collections[i].Tag = a.Collection.Tag
	return nil
}

// CollectionDeleted removes a collection. Documents keep their reference.
type CollectionDeleted struct{ ID string }

func (a CollectionDeleted) apply(s *State) error {
	i := s.collectionIndex(a.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Collections = append(s.Collections[:i], s.Collections[i+1:]...)
	return nil
}

// DocumentStored registers a new document.
type DocumentStored struct{ Document document.Document }

func (a DocumentStored) apply(s *State) error {
	if s.documentIndex(a.Document.ID) >= 0 {
		return fmt.Errorf("document %s: %w", a.Document.ID, repository.ErrConflict)
	}
	s.Documents = append(s.Documents, a.Document)
	return nil
}

// DocumentUpdated replaces a document.
type DocumentUpdated struct{ Document document.Document }

func (a DocumentUpdated) apply(s *State) error {
	i := s.documentIndex(a.Document.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Documents[i] = a.Document
	return nil
}

// DocumentDeleted removes a document and detaches it from every project.
type DocumentDeleted struct{ ID string }

func (a DocumentDeleted) apply(s *State) error {
	i := s.documentIndex(a.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Documents = append(s.Documents[:i], s.Documents[i+1:]...)
	for j := range s.Projects {
		s.Projects[j].DocumentIDs = without(s.Projects[j].DocumentIDs, a.ID)
	}
	return nil
}

// MessageAppended adds a message to the conversation log.
type MessageAppended struct{ Message conversation.Message }

func (a MessageAppended) apply(s *State) error {
	s.Messages = append(s.Messages, a.Message)
	return nil
}

// ActivityAppended adds a Lexychain entry. The entry gets the next id.
type ActivityAppended struct{ Entry activity.ActivityEntry }

func (a ActivityAppended) apply(s *State) error {
	s.LastActivityID++
	e := a.Entry
	e.ID = s.LastActivityID
	s.Activity = append(s.Activity, e)
	return nil
}

// DraftUpdated stores the draft of a project conversation.
type DraftUpdated struct{ Draft conversation.Draft }

func (a DraftUpdated) apply(s *State) error {
	d := a.Draft
	d.AgentIDs = append([]string(nil), d.AgentIDs...)
	if i := s.draftIndex(d.ProjectID); i >= 0 {
		s.Drafts[i] = d
		return nil
	}
	s.Drafts = append(s.Drafts, d)
	return nil
}

// DraftCleared drops the draft of a project conversation.
type DraftCleared struct{ ProjectID string }

func (a DraftCleared) apply(s *State) error {
	i := s.draftIndex(a.ProjectID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.Drafts = append(s.Drafts[:i], s.Drafts[i+1:]...)
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
