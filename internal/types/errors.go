package types

import "errors"

// Error taxonomy. Callers match with errors.Is; producers wrap with %w.
var (
	// ErrMissingRecipient is returned when an email request has no parsable address.
	ErrMissingRecipient = errors.New("missing recipient email")

	// ErrNotFound is returned when clear or update targets a date with no record.
	ErrNotFound = errors.New("no entry found")

	// ErrRecordExists is returned by an insert-mode write on a taken date.
	ErrRecordExists = errors.New("entry already exists")

	// ErrStoreUnreadable covers a backing table that is missing, locked, or corrupt.
	ErrStoreUnreadable = errors.New("attendance store unreadable")

	// ErrStoreWriteFailed covers a failed rewrite of the backing table.
	ErrStoreWriteFailed = errors.New("attendance store write failed")

	// ErrExternalService covers text-extraction and email transport failures.
	ErrExternalService = errors.New("external service failure")
)
