package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Defaults applied when the configuration leaves a knob unset.
const (
	// DefaultCheckInterval is the pause between passes in continuous mode.
	DefaultCheckInterval = time.Minute
	// DefaultCommentPageSize caps how many comments are fetched per post per pass.
	DefaultCommentPageSize = 50
	// DefaultFetchWorkers bounds the parallel comment-fetch pool.
	DefaultFetchWorkers = 5
	// DefaultSendWorkers bounds the parallel message-send pool.
	DefaultSendWorkers = 3
)

// Environment variable names.
const (
	// EnvUsername carries the platform account name. Credentials are never
	// read from configuration files.
	EnvUsername = "REACHOUT_USERNAME"
	// EnvPassword carries the platform account password.
	EnvPassword = "REACHOUT_PASSWORD"
	// EnvConfig overrides the configuration file path.
	EnvConfig = "REACHOUT_CONFIG"
)

// TemplatePlaceholder is the sole token substituted when rendering message
// and reply templates. Any other brace token passes through unaltered.
const TemplatePlaceholder = "{username}"
