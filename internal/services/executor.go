package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/ports"
)

// Target is one eligible (post, commenter) pair queued for action.
type Target struct {
	Post    domain.MonitoredPost
	Comment domain.Comment
}

// Executor performs the outbound action for one eligible target: render the
// message, send the DM, best-effort reply to the comment, and commit the
// pair to the ledger. The DM is the primary deliverable; a reply failure is
// logged and never rolls back the ledger record.
type Executor struct {
	client   ports.PlatformClient
	ledger   ports.Ledger
	governor *Governor
	log      ports.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewExecutor builds the action executor.
func NewExecutor(client ports.PlatformClient, ledger ports.Ledger, governor *Governor, log ports.Logger) *Executor {
	return &Executor{
		client:   client,
		ledger:   ledger,
		governor: governor,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepCtx,
	}
}

// Execute acts on one eligible target. The returned outcome is OutcomeSent
// or OutcomeSendFailed; a platform block additionally signals the governor
// and returns the block error so the run halts.
func (e *Executor) Execute(ctx context.Context, target Target) (domain.Outcome, error) {
	post, comment := target.Post, target.Comment
	message := domain.RenderTemplate(post.MessageTemplate, comment.Username)

	if err := e.client.SendDirectMessage(ctx, comment.Username, message); err != nil {
		if domain.IsPlatformBlocked(err) {
			e.governor.SignalBlock()
			return domain.OutcomeSendFailed, err
		}
		e.log.Warn("failed to send message", map[string]interface{}{
			"username": comment.Username,
			"post":     post.ID,
			"error":    err.Error(),
		})
		return domain.OutcomeSendFailed, &domain.SendError{PostID: post.ID, Username: comment.Username, Err: err}
	}

	recorded, err := e.ledger.Record(ctx, domain.InteractionRecord{
		PostID:    post.ID,
		Username:  comment.Username,
		CommentID: comment.ID,
		Outcome:   domain.OutcomeSent,
	})
	if err != nil {
		e.log.Error("message sent but ledger write failed", err, map[string]interface{}{
			"username": comment.Username,
			"post":     post.ID,
		})
	} else if !recorded {
		// Lost the insert race to a concurrent worker reaching the same
		// pair through another path; the pair is recorded either way.
		e.log.Debug("pair already recorded", map[string]interface{}{
			"username": comment.Username,
			"post":     post.ID,
		})
	}
	e.log.Info("message sent", map[string]interface{}{
		"username": comment.Username,
		"post":     post.ID,
	})

	e.replyToComment(ctx, post, comment)
	return domain.OutcomeSent, nil
}

// replyToComment posts one randomly-chosen reply template under the
// triggering comment. Best-effort: failures are logged only.
func (e *Executor) replyToComment(ctx context.Context, post domain.MonitoredPost, comment domain.Comment) {
	if len(post.ReplyTemplates) == 0 || comment.ID == "" {
		return
	}
	text := domain.RenderTemplate(e.pickReply(post.ReplyTemplates), comment.Username)

	e.sleep(ctx, e.replyDelay())
	if err := e.client.ReplyToComment(ctx, post.ID, comment.ID, text); err != nil {
		e.log.Warn("failed to reply to comment", map[string]interface{}{
			"username": comment.Username,
			"post":     post.ID,
			"error":    err.Error(),
		})
		return
	}
	if err := e.ledger.MarkReplied(ctx, post.ID, comment.Username); err != nil {
		e.log.Warn("could not mark reply in ledger", map[string]interface{}{
			"username": comment.Username,
			"post":     post.ID,
			"error":    err.Error(),
		})
	}
	e.log.Info("replied to comment", map[string]interface{}{
		"username": comment.Username,
		"post":     post.ID,
	})
}

func (e *Executor) pickReply(templates []string) string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return templates[e.rng.Intn(len(templates))]
}

// replyDelay is the short 1-2s pause before posting a reply.
func (e *Executor) replyDelay() time.Duration {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return time.Second + time.Duration(e.rng.Int63n(int64(time.Second)))
}
