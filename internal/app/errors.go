package app

import "errors"

// ErrNotLoaded and related errors describe validation and runtime failures.
var (
	ErrNotLoaded    = errors.New("ideas not loaded")
	ErrNoRepository = errors.New("repository is required")
)
