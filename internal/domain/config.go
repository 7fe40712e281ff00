package domain

import "time"

// Config mirrors the on-disk configuration file (config.yaml or config.json).
type Config struct {
	Posts    []MonitoredPost `yaml:"posts" json:"posts"`
	Settings Settings        `yaml:"settings" json:"settings"`
}

// MonitoredPost is one configured post whose comments are scanned.
// ID is derived from the URL at load time and is immutable for a run.
type MonitoredPost struct {
	URL             string   `yaml:"url" json:"url"`
	Keywords        []string `yaml:"keywords" json:"keywords"`
	MessageTemplate string   `yaml:"message_template" json:"message_template"`
	ReplyTemplates  []string `yaml:"reply_templates" json:"reply_templates"`

	ID string `yaml:"-" json:"-"`
}

// Settings holds the run-wide knobs.
type Settings struct {
	// CheckIntervalSeconds wins over CheckIntervalMinutes when both are set;
	// the minutes key is honored only when the seconds key is absent.
	CheckIntervalSeconds int     `yaml:"check_interval_seconds" json:"check_interval_seconds"`
	CheckIntervalMinutes int     `yaml:"check_interval_minutes" json:"check_interval_minutes"`
	MinDelaySeconds      float64 `yaml:"min_delay_seconds" json:"min_delay_seconds"`
	MaxDelaySeconds      float64 `yaml:"max_delay_seconds" json:"max_delay_seconds"`
	MaxActionsPerSession int     `yaml:"max_actions_per_session" json:"max_actions_per_session"`
	MaxParallelFetches   int     `yaml:"max_parallel_fetches" json:"max_parallel_fetches"`
	MaxParallelSends     int     `yaml:"max_parallel_sends" json:"max_parallel_sends"`
	ParallelSendDelay    float64 `yaml:"parallel_send_delay" json:"parallel_send_delay"`
	CommentPageSize      int     `yaml:"comment_page_size" json:"comment_page_size"`
	APIBaseURL           string  `yaml:"api_base_url" json:"api_base_url"`
	LedgerPath           string  `yaml:"ledger_path" json:"ledger_path"`
	SessionPath          string  `yaml:"session_path" json:"session_path"`
}

// CheckInterval resolves the configured interval between passes in
// continuous mode, applying the seconds-over-minutes precedence rule.
func (s Settings) CheckInterval() time.Duration {
	if s.CheckIntervalSeconds > 0 {
		return time.Duration(s.CheckIntervalSeconds) * time.Second
	}
	if s.CheckIntervalMinutes > 0 {
		return time.Duration(s.CheckIntervalMinutes) * time.Minute
	}
	return DefaultCheckInterval
}

// MinDelay returns the lower bound of the randomized inter-action delay.
func (s Settings) MinDelay() time.Duration {
	return time.Duration(s.MinDelaySeconds * float64(time.Second))
}

// MaxDelay returns the upper bound of the randomized inter-action delay.
func (s Settings) MaxDelay() time.Duration {
	return time.Duration(s.MaxDelaySeconds * float64(time.Second))
}

// SendPacing returns the fixed admission delay used by the pooled sender.
func (s Settings) SendPacing() time.Duration {
	return time.Duration(s.ParallelSendDelay * float64(time.Second))
}

// PageSize returns the comment page size fetched per post per pass.
func (s Settings) PageSize() int {
	if s.CommentPageSize > 0 {
		return s.CommentPageSize
	}
	return DefaultCommentPageSize
}

// FetchWorkers returns the bounded size of the parallel fetch pool.
func (s Settings) FetchWorkers() int {
	if s.MaxParallelFetches > 0 {
		return s.MaxParallelFetches
	}
	return DefaultFetchWorkers
}

// SendWorkers returns the bounded size of the parallel send pool.
func (s Settings) SendWorkers() int {
	if s.MaxParallelSends > 0 {
		return s.MaxParallelSends
	}
	return DefaultSendWorkers
}
