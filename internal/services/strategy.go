package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/ports"
)

// StrategyKind selects how a pass is executed.
type StrategyKind int

const (
	// KindSequential processes posts one at a time, fetch through send.
	KindSequential StrategyKind = iota
	// KindFetchParallel fetches all posts concurrently, then sends
	// sequentially.
	KindFetchParallel
	// KindFullParallel fetches concurrently and sends through the pooled
	// governor.
	KindFullParallel
)

func (k StrategyKind) String() string {
	switch k {
	case KindFetchParallel:
		return "fetch-parallel"
	case KindFullParallel:
		return "full-parallel"
	default:
		return "sequential"
	}
}

// Strategy drives one pass over all monitored posts. All strategies share
// the same fetch/filter/send pipeline and produce identical ledger contents
// and tallies for identical inputs; they differ only in interleaving.
type Strategy interface {
	Name() string
	Run(ctx context.Context, posts []domain.MonitoredPost) (*domain.RunTally, error)
}

// Pipeline bundles the collaborators every strategy drives.
type Pipeline struct {
	Collector *Collector
	Filter    *Filter
	Executor  *Executor
	Governor  *Governor
	Log       ports.Logger

	FetchWorkers int
	SendWorkers  int
	SendPacing   time.Duration
}

// errBudgetExhausted stops a pass early without failing it: the remaining
// targets are simply deferred to a future run.
var errBudgetExhausted = errors.New("action budget exhausted")

// NewStrategy builds the strategy for kind over the shared pipeline.
func NewStrategy(kind StrategyKind, p *Pipeline) Strategy {
	switch kind {
	case KindFetchParallel:
		return &fetchParallelStrategy{p}
	case KindFullParallel:
		return &fullParallelStrategy{p}
	default:
		return &sequentialStrategy{p}
	}
}

// sequentialStrategy: for each post, fetch, filter, and send in order.
type sequentialStrategy struct {
	*Pipeline
}

func (s *sequentialStrategy) Name() string { return KindSequential.String() }

func (s *sequentialStrategy) Run(ctx context.Context, posts []domain.MonitoredPost) (*domain.RunTally, error) {
	tally := domain.NewRunTally()
	for _, post := range posts {
		if ctx.Err() != nil || s.Governor.Halted() {
			break
		}
		comments, err := s.Collector.Fetch(ctx, post)
		if err != nil {
			if handled := s.handleFetchError(tally, post, err); handled != nil {
				return tally, handled
			}
			continue
		}
		if err := s.processPost(ctx, tally, post, comments); err != nil {
			if errors.Is(err, errBudgetExhausted) {
				break
			}
			return tally, err
		}
	}
	return tally, nil
}

// fetchParallelStrategy: phase one fetches every post's comments through a
// bounded pool, phase two filters and sends sequentially.
type fetchParallelStrategy struct {
	*Pipeline
}

func (s *fetchParallelStrategy) Name() string { return KindFetchParallel.String() }

func (s *fetchParallelStrategy) Run(ctx context.Context, posts []domain.MonitoredPost) (*domain.RunTally, error) {
	tally := domain.NewRunTally()
	fetched, err := s.fetchAll(ctx, tally, posts)
	if err != nil {
		return tally, err
	}
	for _, item := range fetched {
		if ctx.Err() != nil || s.Governor.Halted() {
			break
		}
		if err := s.processPost(ctx, tally, item.post, item.comments); err != nil {
			if errors.Is(err, errBudgetExhausted) {
				break
			}
			return tally, err
		}
	}
	return tally, nil
}

// fullParallelStrategy: fetch in parallel, collect the full eligible list,
// then hand it to the governor's pooled sender.
type fullParallelStrategy struct {
	*Pipeline
}

func (s *fullParallelStrategy) Name() string { return KindFullParallel.String() }

func (s *fullParallelStrategy) Run(ctx context.Context, posts []domain.MonitoredPost) (*domain.RunTally, error) {
	tally := domain.NewRunTally()
	fetched, err := s.fetchAll(ctx, tally, posts)
	if err != nil {
		return tally, err
	}

	var targets []Target
	for _, item := range fetched {
		eligible, err := s.collectEligible(ctx, tally, item.post, item.comments)
		if err != nil {
			return tally, err
		}
		targets = append(targets, eligible...)
	}

	// The governor enforces the ceiling during admission as well; trimming
	// up front just avoids queueing work that can never run.
	if remaining := s.Governor.Remaining(); len(targets) > remaining {
		s.Log.Info("limiting queued sends to remaining budget", map[string]interface{}{
			"queued": len(targets),
			"budget": remaining,
		})
		targets = targets[:remaining]
	}
	if len(targets) == 0 {
		return tally, nil
	}

	s.Log.Info("sending queued messages", map[string]interface{}{
		"targets": len(targets),
		"workers": s.SendWorkers,
	})
	actions := make([]func(context.Context), 0, len(targets))
	for _, target := range targets {
		target := target
		actions = append(actions, func(ctx context.Context) {
			outcome, _ := s.Executor.Execute(ctx, target)
			tally.Add(target.Post.ID, outcome)
		})
	}
	s.Governor.RunPooled(ctx, actions, s.SendWorkers, s.SendPacing)

	if s.Governor.Halted() {
		return tally, domain.ErrHalted
	}
	return tally, nil
}

type fetchedPost struct {
	post     domain.MonitoredPost
	comments []domain.Comment
}

// fetchAll retrieves every post's comments through a pool bounded by
// FetchWorkers. Per-post failures land in the tally; a platform block
// cancels the remaining fetches and propagates.
func (p *Pipeline) fetchAll(ctx context.Context, tally *domain.RunTally, posts []domain.MonitoredPost) ([]fetchedPost, error) {
	results := make([]*fetchedPost, len(posts))

	group, gctx := errgroup.WithContext(ctx)
	workers := p.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)

	for i, post := range posts {
		i, post := i, post
		group.Go(func() error {
			comments, err := p.Collector.Fetch(gctx, post)
			if err != nil {
				if domain.IsPlatformBlocked(err) {
					p.Governor.SignalBlock()
					return err
				}
				p.Log.Error("skipping post after fetch failure", err, map[string]interface{}{"post": post.ID})
				tally.Add(post.ID, domain.OutcomeFetchFailed)
				return nil
			}
			results[i] = &fetchedPost{post: post, comments: comments}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Preserve configuration order; each post's own comment order is the
	// fetch order.
	fetched := make([]fetchedPost, 0, len(posts))
	for _, r := range results {
		if r != nil {
			fetched = append(fetched, *r)
		}
	}
	return fetched, nil
}

// processPost runs filtering and sequential sending for one post's fetched
// comments, in fetched order.
func (p *Pipeline) processPost(ctx context.Context, tally *domain.RunTally, post domain.MonitoredPost, comments []domain.Comment) error {
	matched, skipped := p.Collector.Match(post, comments)
	for i := 0; i < skipped; i++ {
		tally.Add(post.ID, domain.OutcomeNoKeyword)
	}

	for _, comment := range matched {
		if ctx.Err() != nil || p.Governor.Halted() {
			return nil
		}
		outcome, err := p.Filter.Evaluate(ctx, post, comment)
		if err != nil {
			if domain.IsPlatformBlocked(err) {
				p.Governor.SignalBlock()
				return err
			}
			p.Log.Error("skipping comment after ledger failure", err, map[string]interface{}{"post": post.ID})
			continue
		}
		if outcome != domain.OutcomeEligible {
			tally.Add(post.ID, outcome)
			continue
		}

		if !p.Governor.Permit(ctx) {
			if p.Governor.Halted() {
				return nil
			}
			p.Log.Warn("action budget exhausted, stopping pass", map[string]interface{}{
				"consumed": p.Governor.Consumed(),
			})
			return errBudgetExhausted
		}
		result, err := p.Executor.Execute(ctx, Target{Post: post, Comment: comment})
		tally.Add(post.ID, result)
		if err != nil && domain.IsPlatformBlocked(err) {
			return err
		}
	}
	return nil
}

// collectEligible filters one post's comments, recording every skip, and
// returns the eligible targets in fetched order.
func (p *Pipeline) collectEligible(ctx context.Context, tally *domain.RunTally, post domain.MonitoredPost, comments []domain.Comment) ([]Target, error) {
	matched, skipped := p.Collector.Match(post, comments)
	for i := 0; i < skipped; i++ {
		tally.Add(post.ID, domain.OutcomeNoKeyword)
	}

	var targets []Target
	for _, comment := range matched {
		if ctx.Err() != nil {
			break
		}
		outcome, err := p.Filter.Evaluate(ctx, post, comment)
		if err != nil {
			if domain.IsPlatformBlocked(err) {
				p.Governor.SignalBlock()
				return nil, err
			}
			p.Log.Error("skipping comment after ledger failure", err, map[string]interface{}{"post": post.ID})
			continue
		}
		if outcome != domain.OutcomeEligible {
			tally.Add(post.ID, outcome)
			continue
		}
		targets = append(targets, Target{Post: post, Comment: comment})
	}
	return targets, nil
}

// handleFetchError converts a per-post fetch failure into a tally entry and
// returns a non-nil error only for a platform block.
func (p *Pipeline) handleFetchError(tally *domain.RunTally, post domain.MonitoredPost, err error) error {
	if domain.IsPlatformBlocked(err) {
		p.Governor.SignalBlock()
		return err
	}
	p.Log.Error("skipping post after fetch failure", err, map[string]interface{}{"post": post.ID})
	tally.Add(post.ID, domain.OutcomeFetchFailed)
	return nil
}
