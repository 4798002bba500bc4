package store

import "errors"

// Sentinel errors shared by store implementations. The models layer maps
// them onto the application error taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateEdge = errors.New("active payment already exists for this edge")
)
