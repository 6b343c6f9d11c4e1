package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the catalog has no record for the requested id
	ErrNotFound = errors.New("catalog record not found")

	// ErrCatalogOffline indicates the catalog API is unreachable
	ErrCatalogOffline = errors.New("catalog is unreachable")

	// ErrNoPlayer indicates no usable external player was found
	ErrNoPlayer = errors.New("no media player found")
)
