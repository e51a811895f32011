package store

import "errors"

// ErrThreadNotFound is returned when a referenced thread does not exist.
var ErrThreadNotFound = errors.New("thread not found")

// DefaultThreadTitle is the placeholder title for a freshly created thread.
// The client replaces it, typically with a title derived from the first
// message.
const DefaultThreadTitle = "New Chat"

// Thread is one persisted conversation.
type Thread struct {
	ID        string
	Title     string
	CreatedTs int64 // unix milliseconds
	UpdatedTs int64 // unix milliseconds, bumped on every message append

	// MessageCount is populated by ListThreads via JOIN; it is derived, not
	// stored.
	MessageCount int64
}

type FindThread struct {
	ID *string
}

type UpdateThread struct {
	ID        string
	Title     *string
	UpdatedTs *int64
}

type DeleteThread struct {
	ID string
}
