// Package ports defines the interfaces between the orchestration core and
// its external collaborators (platform client, ledger storage, session
// cache, logging). Concrete adapters live under internal/infrastructure;
// the core depends only on these abstractions.
package ports

import (
	"context"

	"github.com/doeshing/reachout/internal/domain"
)

// ConfigProvider loads and validates the configuration from persistent
// storage before any run starts.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// PlatformClient is the opaque capability surface consumed from the
// platform. Each call may fail with a typed *domain.PlatformBlockedError
// when the account is rate-limited or restricted.
type PlatformClient interface {
	// Login authenticates with the given credentials. Rejected credentials
	// and verification challenges surface as domain.ErrAuthentication.
	Login(ctx context.Context, creds domain.Credentials) error
	// Verify cheaply probes that a restored session is still valid.
	Verify(ctx context.Context) error
	// ListComments returns up to limit comments for a post, oldest first.
	ListComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error)
	// IsFollower reports whether the handle follows the authenticated account.
	IsFollower(ctx context.Context, username string) (bool, error)
	// SendDirectMessage delivers a rendered message to a handle.
	SendDirectMessage(ctx context.Context, username, text string) error
	// ReplyToComment posts a public reply under a comment.
	ReplyToComment(ctx context.Context, postID, commentID, text string) error
	// ExportSession serializes the authenticated state for caching.
	ExportSession() ([]byte, error)
	// RestoreSession rehydrates authenticated state from a cached blob.
	RestoreSession(data []byte) error
}

// SessionProvider owns the single logged-in capability the rest of the
// system depends on.
type SessionProvider interface {
	// Acquire returns a valid authenticated client, restoring from the
	// session cache when possible and logging in otherwise. At most one
	// authentication attempt happens per process lifetime unless the
	// session is explicitly invalidated.
	Acquire(ctx context.Context) (PlatformClient, error)
	// Invalidate discards the session so the next Acquire performs a
	// fresh login.
	Invalidate() error
}

// Ledger is the persistent, deduplicated record of every (post, commenter)
// pair already acted upon. The storage layer's uniqueness constraint on
// (post id, username) is the sole deduplication authority.
type Ledger interface {
	// Exists is a pure lookup with no side effect.
	Exists(ctx context.Context, postID, username string) (bool, error)
	// Record attempts the insert and reports whether it succeeded. Under
	// concurrent callers for the same pair, exactly one call returns true.
	Record(ctx context.Context, rec domain.InteractionRecord) (bool, error)
	// MarkReplied flags that the pair's comment received a public reply.
	MarkReplied(ctx context.Context, postID, username string) error
	// Stats returns lifetime and today counters.
	Stats(ctx context.Context) (domain.LedgerStats, error)
	// Reset deletes records, all of them or one post's, and returns how
	// many rows went away. Manual maintenance only.
	Reset(ctx context.Context, postID string) (int64, error)
	Close() error
}

// Logger provides structured logging for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
