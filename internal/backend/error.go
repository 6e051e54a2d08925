package backend

import "errors"

// Error definitions for the backend package.
var (
	ErrNotFound  = errors.New("backend not found in registry")
	ErrNotParser = errors.New("backend does not support structure parsing")
)
