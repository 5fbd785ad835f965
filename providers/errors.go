package providers

import "errors"

var (
	// ErrDatabasePathIsRequired is returned if offline provider has no
	// path to the database file.
	ErrDatabasePathIsRequired = errors.New("database path is required")

	// ErrIncorrectLocation is returned if provider responded with
	// location string which cannot be parsed.
	ErrIncorrectLocation = errors.New("incorrect location")
)
