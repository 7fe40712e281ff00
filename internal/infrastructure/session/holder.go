// Package session owns the process-wide authenticated-client state. The
// holder restores a cached session where possible so repeated runs skip the
// full login, and performs at most one authentication attempt per process
// lifetime unless explicitly invalidated.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/pkg/filesystem"
	"github.com/doeshing/reachout/internal/ports"
)

// DefaultPath is the session cache location when configuration leaves it
// unset.
func DefaultPath() string {
	return filepath.Join(filesystem.UserHomeDir(), ".reachout", "session.json")
}

// Holder implements ports.SessionProvider around one platform client.
type Holder struct {
	client    ports.PlatformClient
	creds     domain.Credentials
	cachePath string
	log       ports.Logger

	mu       sync.Mutex
	acquired bool
}

// NewHolder builds a holder. Credentials come from the environment; the
// holder never reads them from configuration files.
func NewHolder(client ports.PlatformClient, creds domain.Credentials, cachePath string, log ports.Logger) *Holder {
	if cachePath == "" {
		cachePath = DefaultPath()
	}
	return &Holder{client: client, creds: creds, cachePath: cachePath, log: log}
}

// Acquire returns the authenticated client, restoring from the session cache
// when present and still valid, otherwise performing a full login. On a
// fresh login the new session is persisted with owner-only permissions.
func (h *Holder) Acquire(ctx context.Context) (ports.PlatformClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.acquired {
		return h.client, nil
	}
	if h.creds.Username == "" || h.creds.Password == "" {
		return nil, fmt.Errorf("%w: set %s and %s", domain.ErrAuthentication, domain.EnvUsername, domain.EnvPassword)
	}

	if h.restoreFromCache(ctx) {
		h.acquired = true
		return h.client, nil
	}

	h.log.Info("logging in with credentials", map[string]interface{}{"username": h.creds.Username})
	if err := h.client.Login(ctx, h.creds); err != nil {
		return nil, err
	}
	h.persistSession()
	h.acquired = true
	h.log.Info("logged in", map[string]interface{}{"username": h.creds.Username})
	return h.client, nil
}

func (h *Holder) restoreFromCache(ctx context.Context) bool {
	data, err := os.ReadFile(h.cachePath)
	if err != nil {
		return false
	}
	h.log.Info("found saved session, attempting to restore", map[string]interface{}{"path": h.cachePath})
	if err := h.client.RestoreSession(data); err == nil {
		if err := h.client.Verify(ctx); err == nil {
			h.log.Info("session restored", map[string]interface{}{"username": h.creds.Username})
			return true
		}
	}
	h.log.Warn("session restore failed, falling back to fresh login", map[string]interface{}{"path": h.cachePath})
	_ = os.Remove(h.cachePath)
	return false
}

func (h *Holder) persistSession() {
	data, err := h.client.ExportSession()
	if err != nil {
		h.log.Warn("could not serialize session", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := os.MkdirAll(filepath.Dir(h.cachePath), domain.DirectoryPermissions); err != nil {
		h.log.Warn("could not create session dir", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := os.WriteFile(h.cachePath, data, domain.SecureFilePermissions); err != nil {
		h.log.Warn("could not persist session", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate discards the cached session, forcing a re-login on next use.
func (h *Holder) Invalidate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.acquired = false
	if err := os.Remove(h.cachePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
