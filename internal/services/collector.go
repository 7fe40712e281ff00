package services

import (
	"context"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/ports"
)

// Collector retrieves the current comment page for a monitored post and
// applies keyword filtering. One external call per post per pass.
type Collector struct {
	client   ports.PlatformClient
	pageSize int
	log      ports.Logger
}

// NewCollector builds a collector over an authenticated client.
func NewCollector(client ports.PlatformClient, pageSize int, log ports.Logger) *Collector {
	if pageSize <= 0 {
		pageSize = domain.DefaultCommentPageSize
	}
	return &Collector{client: client, pageSize: pageSize, log: log}
}

// Fetch lists the post's comments. Failures are scoped to the post: the
// caller records a fetch error in the tally and continues with other posts,
// except for a platform block which propagates as-is.
func (c *Collector) Fetch(ctx context.Context, post domain.MonitoredPost) ([]domain.Comment, error) {
	comments, err := c.client.ListComments(ctx, post.ID, c.pageSize)
	if err != nil {
		if domain.IsPlatformBlocked(err) {
			return nil, err
		}
		return nil, &domain.FetchError{PostID: post.ID, Err: err}
	}
	c.log.Debug("fetched comments", map[string]interface{}{
		"post":     post.ID,
		"comments": len(comments),
	})
	return comments, nil
}

// Match splits comments into those matching the post's trigger keywords and
// a count of the rest. An empty keyword list matches everything.
func (c *Collector) Match(post domain.MonitoredPost, comments []domain.Comment) (matched []domain.Comment, skipped int) {
	for _, comment := range comments {
		if domain.MatchesKeywords(comment.Text, post.Keywords) {
			matched = append(matched, comment)
			continue
		}
		skipped++
	}
	return matched, skipped
}
