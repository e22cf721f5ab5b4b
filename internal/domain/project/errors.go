package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDocumentNotFound indicates the document to attach doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoSelection indicates no project is currently selected.
	ErrNoSelection = errors.New("no project selected")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
)
