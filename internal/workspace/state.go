// Package workspace holds the state of one tenant's workspace as a plain value
// and the pure reducer that moves it from one version to the next.
package workspace

import (
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
)

// State is a snapshot of one tenant's workspace. Slices are kept in insertion
// order. A State is never modified in place once handed out.
type State struct {
	Projects          []project.Project
	Collections       []collection.Collection
	Documents         []document.Document
	Messages          []conversation.Message
	Activity          []activity.ActivityEntry
	Drafts            []conversation.Draft
	SelectedProjectID string
	LastActivityID    int64
}

// Project looks up a project by id.
func (s State) Project(id string) (project.Project, bool) {
	if i := s.projectIndex(id); i >= 0 {
		return s.Projects[i], true
	}
	return project.Project{}, false
}

// Collection looks up a collection by id, with its document count filled in.
func (s State) Collection(id string) (collection.Collection, bool) {
	if i := s.collectionIndex(id); i >= 0 {
		col := s.Collections[i]
		col.DocumentCount = s.DocumentCount(id)
		return col, true
	}
	return collection.Collection{}, false
}

// Document looks up a document by id.
func (s State) Document(id string) (document.Document, bool) {
	if i := s.documentIndex(id); i >= 0 {
		return s.Documents[i], true
	}
	return document.Document{}, false
}

// Draft looks up the draft of a project conversation.
func (s State) Draft(projectID string) (conversation.Draft, bool) {
	if i := s.draftIndex(projectID); i >= 0 {
		return s.Drafts[i], true
	}
	return conversation.Draft{}, false
}

// DocumentCount counts the documents that reference a collection.
func (s State) DocumentCount(collectionID string) int {
	n := 0
	for _, d := range s.Documents {
		if d.CollectionID != nil && *d.CollectionID == collectionID {
			n++
		}
	}
	return n
}

func (s State) projectIndex(id string) int {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) collectionIndex(id string) int {
	for i := range s.Collections {
		if s.Collections[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) documentIndex(id string) int {
	for i := range s.Documents {
		if s.Documents[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) draftIndex(projectID string) int {
	for i := range s.Drafts {
		if s.Drafts[i].ProjectID == projectID {
			return i
		}
	}
	return -1
}

// clone copies every slice so the copy can be changed without touching s.
func (s State) clone() State {
	out := s
	out.Projects = make([]project.Project, len(s.Projects))
	for i, p := range s.Projects {
		p.DocumentIDs = append([]string(nil), p.DocumentIDs...)
		out.Projects[i] = p
	}
	out.Collections = append([]collection.Collection(nil), s.Collections...)
	out.Documents = append([]document.Document(nil), s.Documents...)
	out.Messages = append([]conversation.Message(nil), s.Messages...)
	out.Activity = append([]activity.ActivityEntry(nil), s.Activity...)
	out.Drafts = make([]conversation.Draft, len(s.Drafts))
	for i, d := range s.Drafts {
		d.AgentIDs = append([]string(nil), d.AgentIDs...)
		out.Drafts[i] = d
	}
	return out
}
