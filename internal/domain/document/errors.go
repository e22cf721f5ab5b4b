package document

import "errors"

var (
	// ErrDocumentNotFound indicates the document doesn't exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoFiles indicates an upload without any file.
	ErrNoFiles = errors.New("no files to upload")
	// ErrReadOnly indicates an edit of a read-only document's content.
	ErrReadOnly = errors.New("document is read-only")
	// ErrProjectNotFound indicates the target project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid input for document operations.
	ErrInvalidInput = errors.New("invalid document input")
)
