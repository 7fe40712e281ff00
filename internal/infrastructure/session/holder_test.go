package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/pkg/logger"
)

type stubClient struct {
	loginCalls   int
	loginErr     error
	verifyErr    error
	restoreErr   error
	restored     []byte
	exported     []byte
	exportErr    error
	verifyCalls  int
	restoreCalls int
}

func (s *stubClient) Login(ctx context.Context, creds domain.Credentials) error {
	s.loginCalls++
	return s.loginErr
}

func (s *stubClient) Verify(ctx context.Context) error {
	s.verifyCalls++
	return s.verifyErr
}

func (s *stubClient) ListComments(context.Context, string, int) ([]domain.Comment, error) {
	return nil, nil
}

func (s *stubClient) IsFollower(context.Context, string) (bool, error) { return false, nil }

func (s *stubClient) SendDirectMessage(context.Context, string, string) error { return nil }

func (s *stubClient) ReplyToComment(context.Context, string, string, string) error { return nil }

func (s *stubClient) ExportSession() ([]byte, error) { return s.exported, s.exportErr }

func (s *stubClient) RestoreSession(data []byte) error {
	s.restoreCalls++
	s.restored = data
	return s.restoreErr
}

var testCreds = domain.Credentials{Username: "creator", Password: "hunter2"}

func TestAcquireFreshLoginPersistsSession(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "session.json")
	client := &stubClient{exported: []byte(`{"token":"tok"}`)}
	holder := NewHolder(client, testCreds, cachePath, logger.Nop())

	got, err := holder.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != client {
		t.Fatal("Acquire() returned a different client")
	}
	if client.loginCalls != 1 {
		t.Fatalf("login calls = %d, want 1", client.loginCalls)
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("session cache not written: %v", err)
	}
	if string(data) != `{"token":"tok"}` {
		t.Fatalf("cached session = %s", data)
	}
	if runtime.GOOS != "windows" {
		info, _ := os.Stat(cachePath)
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("session cache mode = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestAcquireOnlyOneLoginPerProcess(t *testing.T) {
	client := &stubClient{exported: []byte(`{}`)}
	holder := NewHolder(client, testCreds, filepath.Join(t.TempDir(), "session.json"), logger.Nop())

	for i := 0; i < 3; i++ {
		if _, err := holder.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if client.loginCalls != 1 {
		t.Fatalf("login calls = %d, want 1", client.loginCalls)
	}
}

func TestAcquireRestoresValidCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(cachePath, []byte(`{"token":"cached"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	client := &stubClient{}
	holder := NewHolder(client, testCreds, cachePath, logger.Nop())

	if _, err := holder.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if client.loginCalls != 0 {
		t.Fatalf("login calls = %d, want 0 (restored)", client.loginCalls)
	}
	if client.restoreCalls != 1 || client.verifyCalls != 1 {
		t.Fatalf("restore=%d verify=%d, want 1 and 1", client.restoreCalls, client.verifyCalls)
	}
}

func TestAcquireInvalidCacheFallsBackToLogin(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(cachePath, []byte(`{"token":"stale"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	client := &stubClient{verifyErr: errors.New("expired"), exported: []byte(`{"token":"fresh"}`)}
	holder := NewHolder(client, testCreds, cachePath, logger.Nop())

	if _, err := holder.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if client.loginCalls != 1 {
		t.Fatalf("login calls = %d, want 1 after stale cache", client.loginCalls)
	}
	data, _ := os.ReadFile(cachePath)
	if string(data) != `{"token":"fresh"}` {
		t.Fatalf("cache after relogin = %s", data)
	}
}

func TestAcquireMissingCredentials(t *testing.T) {
	holder := NewHolder(&stubClient{}, domain.Credentials{}, filepath.Join(t.TempDir(), "s.json"), logger.Nop())
	_, err := holder.Acquire(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("Acquire() error = %v, want ErrAuthentication", err)
	}
}

func TestAcquireLoginFailure(t *testing.T) {
	client := &stubClient{loginErr: domain.ErrAuthentication}
	holder := NewHolder(client, testCreds, filepath.Join(t.TempDir(), "s.json"), logger.Nop())
	_, err := holder.Acquire(context.Background())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("Acquire() error = %v, want ErrAuthentication", err)
	}
}

func TestInvalidateForcesRelogin(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "session.json")
	client := &stubClient{exported: []byte(`{}`)}
	holder := NewHolder(client, testCreds, cachePath, logger.Nop())

	if _, err := holder.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := holder.Invalidate(); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Fatal("cache file should be removed on Invalidate")
	}
	if _, err := holder.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if client.loginCalls != 2 {
		t.Fatalf("login calls = %d, want 2 after Invalidate", client.loginCalls)
	}
}
