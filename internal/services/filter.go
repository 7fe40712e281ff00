package services

import (
	"context"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/ports"
)

// Filter classifies each keyword-matched comment into exactly one outcome
// bucket. The ledger lookup runs first: it is local and cheap, and a target
// already handled must never cost an external follower-status call.
type Filter struct {
	ledger ports.Ledger
	client ports.PlatformClient
	log    ports.Logger
}

// NewFilter builds the eligibility filter.
func NewFilter(ledger ports.Ledger, client ports.PlatformClient, log ports.Logger) *Filter {
	return &Filter{ledger: ledger, client: client, log: log}
}

// Evaluate returns OutcomeAlreadyProcessed, OutcomeNotFollower, or
// OutcomeEligible for one comment. A platform block raised by the follower
// check propagates as an error; any other follower-check failure downgrades
// to not-a-follower so a flaky lookup cannot trigger a send.
func (f *Filter) Evaluate(ctx context.Context, post domain.MonitoredPost, comment domain.Comment) (domain.Outcome, error) {
	seen, err := f.ledger.Exists(ctx, post.ID, comment.Username)
	if err != nil {
		return "", err
	}
	if seen {
		return domain.OutcomeAlreadyProcessed, nil
	}

	follows, err := f.client.IsFollower(ctx, comment.Username)
	if err != nil {
		if domain.IsPlatformBlocked(err) {
			return "", err
		}
		f.log.Warn("could not check follow status", map[string]interface{}{
			"username": comment.Username,
			"error":    err.Error(),
		})
		return domain.OutcomeNotFollower, nil
	}
	if !follows {
		f.log.Debug("commenter does not follow, skipping", map[string]interface{}{"username": comment.Username})
		return domain.OutcomeNotFollower, nil
	}
	return domain.OutcomeEligible, nil
}
