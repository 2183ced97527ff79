package storage

import (
	"context"

	"github.com/poiesic/smartbot/core"
)

// SessionRepository persists conversation sessions keyed by session id.
// Implementations must be safe for concurrent use.
type SessionRepository interface {
	// GetSession retrieves a session by id.
	// Returns ErrNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id string) (*core.Session, error)

	// PutSession creates or replaces a session.
	// Sets CreatedAt on first write and refreshes UpdatedAt on every write.
	PutSession(ctx context.Context, session *core.Session) error

	// DeleteSession removes a session. Deleting a session that doesn't
	// exist is not an error.
	DeleteSession(ctx context.Context, id string) error

	// Close closes the repository and releases resources.
	Close() error
}

// SubmissionRepository persists the contact submissions captured on the
// first query of each session.
type SubmissionRepository interface {
	// AddSubmission stores a submission. For submissions with ID=0,
	// derives a content-based ID from the submission tuple, which also
	// makes identical submissions collide: a second identical submission
	// returns ErrDuplicate.
	AddSubmission(ctx context.Context, submission *core.Submission) (*core.Submission, error)

	// ListSubmissions retrieves all stored submissions.
	ListSubmissions(ctx context.Context) ([]*core.Submission, error)

	// Close closes the repository and releases resources.
	Close() error
}
