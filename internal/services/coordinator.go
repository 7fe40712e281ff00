package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/ports"
)

// RunOptions select the execution strategy and run mode.
type RunOptions struct {
	Kind       StrategyKind
	Continuous bool
}

// Coordinator drives one pass or an unbounded repeating loop over all
// monitored posts. Authentication failure aborts before any pass; a
// platform block terminates the current pass and prevents all future ones.
type Coordinator struct {
	config   domain.Config
	session  ports.SessionProvider
	ledger   ports.Ledger
	governor *Governor
	log      ports.Logger
}

// NewCoordinator wires the run coordinator.
func NewCoordinator(cfg domain.Config, session ports.SessionProvider, ledger ports.Ledger, governor *Governor, log ports.Logger) *Coordinator {
	return &Coordinator{config: cfg, session: session, ledger: ledger, governor: governor, log: log}
}

// Run executes the configured passes. It returns nil on clean completion
// (including an operator-requested stop in continuous mode),
// domain.ErrAuthentication when login fails, and domain.ErrHalted after a
// platform block.
func (c *Coordinator) Run(ctx context.Context, opts RunOptions) error {
	c.logStats(ctx, "starting")

	client, err := c.session.Acquire(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}

	settings := c.config.Settings
	pipeline := &Pipeline{
		Collector:    NewCollector(client, settings.PageSize(), c.log),
		Filter:       NewFilter(c.ledger, client, c.log),
		Executor:     NewExecutor(client, c.ledger, c.governor, c.log),
		Governor:     c.governor,
		Log:          c.log,
		FetchWorkers: settings.FetchWorkers(),
		SendWorkers:  settings.SendWorkers(),
		SendPacing:   settings.SendPacing(),
	}
	strategy := NewStrategy(opts.Kind, pipeline)

	c.log.Info("run starting", map[string]interface{}{
		"strategy":   strategy.Name(),
		"continuous": opts.Continuous,
		"posts":      len(c.config.Posts),
	})

	for {
		// The budget is per pass; the halted flag survives resets.
		c.governor.ResetBudget()
		passID := uuid.NewString()

		tally, err := strategy.Run(ctx, c.config.Posts)
		c.report(passID, strategy.Name(), tally)
		if err != nil || c.governor.Halted() {
			c.log.Error("platform block: halting, no further passes will run until restart", err,
				map[string]interface{}{"pass_id": passID})
			return domain.ErrHalted
		}
		if ctx.Err() != nil {
			c.log.Info("stopped by operator", map[string]interface{}{"pass_id": passID})
			return nil
		}
		if !opts.Continuous {
			return nil
		}

		c.logStats(ctx, "pass complete")
		interval := settings.CheckInterval()
		c.log.Info("sleeping until next pass", map[string]interface{}{"interval": interval.String()})
		if !c.sleepInterval(ctx, interval) {
			c.log.Info("stopped by operator", nil)
			return nil
		}
	}
}

// sleepInterval waits out the check interval; false means the operator
// requested a stop.
func (c *Coordinator) sleepInterval(ctx context.Context, interval time.Duration) bool {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// report emits the per-post and aggregate outcome summary for one pass.
func (c *Coordinator) report(passID, strategy string, tally *domain.RunTally) {
	for postID, postTally := range tally.PerPost() {
		c.log.Info("post summary", map[string]interface{}{
			"pass_id":           passID,
			"post":              postID,
			"sent":              postTally[domain.OutcomeSent],
			"no_keyword":        postTally[domain.OutcomeNoKeyword],
			"not_following":     postTally[domain.OutcomeNotFollower],
			"already_processed": postTally[domain.OutcomeAlreadyProcessed],
			"send_failed":       postTally[domain.OutcomeSendFailed],
			"fetch_failed":      postTally[domain.OutcomeFetchFailed],
		})
	}
	agg := tally.Aggregate()
	c.log.Info("pass summary", map[string]interface{}{
		"pass_id":           passID,
		"strategy":          strategy,
		"sent":              agg[domain.OutcomeSent],
		"no_keyword":        agg[domain.OutcomeNoKeyword],
		"not_following":     agg[domain.OutcomeNotFollower],
		"already_processed": agg[domain.OutcomeAlreadyProcessed],
		"send_failed":       agg[domain.OutcomeSendFailed],
		"fetch_failed":      agg[domain.OutcomeFetchFailed],
	})
}

func (c *Coordinator) logStats(ctx context.Context, stage string) {
	stats, err := c.ledger.Stats(ctx)
	if err != nil {
		c.log.Warn("could not read ledger stats", map[string]interface{}{"error": err.Error()})
		return
	}
	c.log.Info(stage, map[string]interface{}{
		"total_sent": stats.Total,
		"sent_today": stats.Today,
	})
}
