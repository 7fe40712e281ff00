package domain

import "sync"

// Outcome is the terminal classification of one comment in one pass. Every
// comment that survives fetching lands in exactly one bucket.
type Outcome string

const (
	OutcomeSent             Outcome = "dm_sent"
	OutcomeNoKeyword        Outcome = "no_keyword_match"
	OutcomeNotFollower      Outcome = "not_following"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeSendFailed       Outcome = "send_failed"
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomeEligible         Outcome = "eligible"
)

// PostTally counts outcomes for a single post during one pass.
type PostTally map[Outcome]int

// RunTally accumulates per-post and aggregate outcome counts for one pass.
// Safe for concurrent use: the full-parallel strategy updates it from
// multiple send workers.
type RunTally struct {
	mu      sync.Mutex
	perPost map[string]PostTally
}

// NewRunTally returns an empty tally.
func NewRunTally() *RunTally {
	return &RunTally{perPost: make(map[string]PostTally)}
}

// Add records one outcome for the given post.
func (t *RunTally) Add(postID string, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tally, ok := t.perPost[postID]
	if !ok {
		tally = make(PostTally)
		t.perPost[postID] = tally
	}
	tally[outcome]++
}

// Post returns a copy of one post's tally.
func (t *RunTally) Post(postID string) PostTally {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clonePostTally(t.perPost[postID])
}

// PerPost returns a copy of every per-post tally.
func (t *RunTally) PerPost() map[string]PostTally {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]PostTally, len(t.perPost))
	for id, tally := range t.perPost {
		out[id] = clonePostTally(tally)
	}
	return out
}

// Aggregate sums all per-post tallies.
func (t *RunTally) Aggregate() PostTally {
	t.mu.Lock()
	defer t.mu.Unlock()
	agg := make(PostTally)
	for _, tally := range t.perPost {
		for outcome, n := range tally {
			agg[outcome] += n
		}
	}
	return agg
}

// Count returns the aggregate count for one outcome.
func (t *RunTally) Count(outcome Outcome) int {
	return t.Aggregate()[outcome]
}

func clonePostTally(t PostTally) PostTally {
	out := make(PostTally, len(t))
	for outcome, n := range t {
		out[outcome] = n
	}
	return out
}
