package conversation

import "errors"

var (
	// ErrAgentNotFound indicates an unknown agent id.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrInvalidInput indicates invalid conversation input.
	ErrInvalidInput = errors.New("invalid conversation input")
)
