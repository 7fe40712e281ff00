package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for process-wide conditions.
var (
	// ErrAuthentication marks rejected credentials or a verification
	// challenge. Fatal: the run aborts before any pass starts.
	ErrAuthentication = errors.New("authentication failed")

	// ErrHalted marks a run terminated by a platform block. Fatal to the
	// current and all future passes until the process restarts.
	ErrHalted = errors.New("halted after platform block")
)

// PlatformBlockedError is the typed signal that the platform rate-limited or
// restricted the account. Detection is by type, never by string inspection
// of arbitrary error text.
type PlatformBlockedError struct {
	Operation string
	Detail    string
}

func (e *PlatformBlockedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("platform blocked %s", e.Operation)
	}
	return fmt.Sprintf("platform blocked %s: %s", e.Operation, e.Detail)
}

// IsPlatformBlocked reports whether err carries a platform block signal.
func IsPlatformBlocked(err error) bool {
	var blocked *PlatformBlockedError
	return errors.As(err, &blocked)
}

// FetchError scopes a transient comment-listing failure to one post. The
// post's pass is skipped; other posts continue.
type FetchError struct {
	PostID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch comments for post %s: %v", e.PostID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SendError scopes a transient send failure to one target. The ledger is not
// updated, so the target stays eligible for a future run.
type SendError struct {
	PostID   string
	Username string
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to @%s for post %s: %v", e.Username, e.PostID, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// ConfigValidationError names the configuration field that failed
// validation. Fatal at startup, before login.
type ConfigValidationError struct {
	Field  string
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}
