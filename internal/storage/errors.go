// Package storage defines the errors shared by all URL store implementations.
package storage

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to insert
	// a record with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when an attempt is made to retrieve
	// a URL using a short code that doesn't exist.
	ErrURLNotFound = errors.New("url not found")
)
