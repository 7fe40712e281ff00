package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Comment is one fetched comment on a monitored post. Comments are ephemeral:
// fetched fresh each pass and never persisted directly.
type Comment struct {
	ID       string
	PostID   string
	Username string
	Text     string
}

// MatchesKeywords reports whether text matches the configured trigger words.
// Matching is case-insensitive substring on each keyword; any single match
// suffices. An empty keyword list matches every comment.
func MatchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// RenderTemplate substitutes the literal handle for the {username}
// placeholder. No other token is altered.
func RenderTemplate(template, username string) string {
	return strings.ReplaceAll(template, TemplatePlaceholder, username)
}

// knownPostSegments are path segments whose following element is the post ID.
var knownPostSegments = map[string]bool{
	"reel":  true,
	"reels": true,
	"p":     true,
	"post":  true,
	"video": true,
}

// ExtractPostID derives the stable post identity from a configured URL.
// It understands the common short-video path shapes (/reel/<id>, /reels/<id>,
// /p/<id>, /video/<id>) and falls back to the last path segment.
func ExtractPostID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse post url %q: %w", rawURL, err)
	}
	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("post url %q has no path", rawURL)
	}
	for i, seg := range segments[:len(segments)-1] {
		if knownPostSegments[strings.ToLower(seg)] {
			return segments[i+1], nil
		}
	}
	return segments[len(segments)-1], nil
}
