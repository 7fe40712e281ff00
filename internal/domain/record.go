package domain

import "time"

// InteractionRecord is the durable proof that a (post, commenter) pair has
// been acted upon. The (PostID, Username) pair is the uniqueness key.
type InteractionRecord struct {
	PostID    string
	Username  string
	CommentID string
	Outcome   Outcome
	Replied   bool
	CreatedAt time.Time
}

// LedgerStats are the aggregate counters kept alongside the ledger.
type LedgerStats struct {
	Total int
	Today int
}

// Credentials identify the platform account. Supplied via environment
// variables only, never embedded in configuration files.
type Credentials struct {
	Username string
	Password string
}
