package collection

import "errors"

var (
	// ErrCollectionNotFound indicates the collection doesn't exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrInvalidInput indicates invalid collection input.
	ErrInvalidInput = errors.New("invalid collection input")
)
