// Package platform is the HTTP adapter for the platform's private API. It
// implements ports.PlatformClient and owns the classification of platform
// pushback: rate-limit/block responses surface as typed
// *domain.PlatformBlockedError, credential rejections and verification
// challenges as domain.ErrAuthentication.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/ports"
)

const requestTimeout = 30 * time.Second

// Client talks to the platform API over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     ports.Logger
	fetch   failsafe.Executor[*http.Response]

	mu    sync.RWMutex
	state sessionState
}

// sessionState is the serialized cache representation of an authenticated
// session.
type sessionState struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	DeviceID string `json:"device_id"`
}

// NewClient builds a client against baseURL.
func NewClient(baseURL string, log ports.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
		log:     log,
		fetch:   newFetchExecutor(),
		state:   sessionState{DeviceID: uuid.NewString()},
	}
}

// newFetchExecutor retries transient comment-listing failures (network
// errors and 5xx) with backoff and jitter. Rate-limit responses are never
// retried; they must surface as a block signal.
func newFetchExecutor() failsafe.Executor[*http.Response] {
	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(500*time.Millisecond, 5*time.Second).
		WithMaxRetries(2).
		WithJitterFactor(0.1).
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode >= 500
		}).
		Build()
	return failsafe.With(retry)
}

// Login implements ports.PlatformClient.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username":  creds.Username,
		"password":  creds.Password,
		"device_id": c.deviceID(),
	}, false)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if err := c.classify("login", resp); err != nil {
		return err
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		return fmt.Errorf("%w: login response missing token", domain.ErrAuthentication)
	}

	c.mu.Lock()
	c.state.Token = body.Token
	c.state.Username = creds.Username
	c.mu.Unlock()
	return nil
}

// Verify probes the session with a cheap authenticated call.
func (c *Client) Verify(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/accounts/me", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.classify("verify", resp)
}

// ListComments returns up to limit comments for a post, oldest first.
// Transient failures are retried before the error is reported.
func (c *Client) ListComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error) {
	path := fmt.Sprintf("/media/%s/comments?limit=%d", postID, limit)
	resp, err := c.fetch.WithContext(ctx).Get(func() (*http.Response, error) {
		return c.do(ctx, http.MethodGet, path, nil, true)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.classify("list comments", resp); err != nil {
		return nil, err
	}

	var body struct {
		Comments []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Text     string `json:"text"`
		} `json:"comments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode comments for post %s: %w", postID, err)
	}

	comments := make([]domain.Comment, 0, len(body.Comments))
	for _, cm := range body.Comments {
		if cm.ID == "" || cm.Username == "" {
			continue
		}
		comments = append(comments, domain.Comment{
			ID:       cm.ID,
			PostID:   postID,
			Username: cm.Username,
			Text:     cm.Text,
		})
	}
	return comments, nil
}

// IsFollower reports whether username follows the authenticated account.
func (c *Client) IsFollower(ctx context.Context, username string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/friendships/"+username, nil, true)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if err := c.classify("friendship check", resp); err != nil {
		return false, err
	}

	var body struct {
		FollowedBy bool `json:"followed_by"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode friendship for @%s: %w", username, err)
	}
	return body.FollowedBy, nil
}

// SendDirectMessage delivers text to username.
func (c *Client) SendDirectMessage(ctx context.Context, username, text string) error {
	resp, err := c.do(ctx, http.MethodPost, "/direct/messages", map[string]string{
		"recipient": username,
		"text":      text,
	}, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.classify("direct message", resp)
}

// ReplyToComment posts a public reply under a comment.
func (c *Client) ReplyToComment(ctx context.Context, postID, commentID, text string) error {
	path := fmt.Sprintf("/media/%s/comments/%s/reply", postID, commentID)
	resp, err := c.do(ctx, http.MethodPost, path, map[string]string{"text": text}, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.classify("comment reply", resp)
}

// ExportSession serializes the authenticated state.
func (c *Client) ExportSession() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.Token == "" {
		return nil, fmt.Errorf("no session to export")
	}
	return json.Marshal(c.state)
}

// RestoreSession rehydrates state from a cached blob.
func (c *Client) RestoreSession(data []byte) error {
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if state.Token == "" {
		return fmt.Errorf("restore session: cached state has no token")
	}
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, authed bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token())
	}
	return c.httpc.Do(req)
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Token
}

func (c *Client) deviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.DeviceID
}

// blockIndicators are body-level codes known to mean the account has been
// rate-limited or restricted. Fallback classifier only; the status code 429
// is the primary signal.
var blockIndicators = []string{"feedback_required", "rate_limited", "spam", "action_blocked"}

// classify converts a non-2xx response into the error taxonomy. The body is
// consumed on error paths.
func (c *Client) classify(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	detail := body.Message
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}

	if resp.StatusCode == http.StatusTooManyRequests || isBlockIndicator(body.Code) {
		return &domain.PlatformBlockedError{Operation: op, Detail: detail}
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s rejected (%s)", domain.ErrAuthentication, op, detail)
	case http.StatusForbidden:
		if body.Code == "challenge_required" {
			return fmt.Errorf("%w: verification challenge presented, complete it in the app", domain.ErrAuthentication)
		}
		return fmt.Errorf("%s forbidden: %s", op, detail)
	default:
		return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, detail)
	}
}

func isBlockIndicator(code string) bool {
	for _, indicator := range blockIndicators {
		if code == indicator {
			return true
		}
	}
	return false
}
