package tui

import "errors"

// ErrMissingCollectionService is returned when the collection service is not provided.
var ErrMissingCollectionService = errors.New("tui: collection service is required")

// ErrMissingCollectionName is returned when no collection is selected.
var ErrMissingCollectionName = errors.New("tui: collection name is required")
