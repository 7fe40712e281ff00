package domain

import "fmt"

// Validate checks the loaded configuration before any run starts and derives
// each post's ID from its URL. All problems surface as ConfigValidationError.
func (c *Config) Validate() error {
	if len(c.Posts) == 0 {
		return &ConfigValidationError{Field: "posts", Reason: "at least one monitored post is required"}
	}
	for i := range c.Posts {
		post := &c.Posts[i]
		field := fmt.Sprintf("posts[%d]", i)
		if post.URL == "" {
			return &ConfigValidationError{Field: field + ".url", Reason: "missing"}
		}
		if post.MessageTemplate == "" {
			return &ConfigValidationError{Field: field + ".message_template", Reason: "missing"}
		}
		id, err := ExtractPostID(post.URL)
		if err != nil {
			return &ConfigValidationError{Field: field + ".url", Reason: err.Error()}
		}
		post.ID = id
	}
	return c.Settings.validate()
}

func (s Settings) validate() error {
	nonNegative := map[string]float64{
		"settings.check_interval_seconds": float64(s.CheckIntervalSeconds),
		"settings.check_interval_minutes": float64(s.CheckIntervalMinutes),
		"settings.min_delay_seconds":      s.MinDelaySeconds,
		"settings.max_delay_seconds":      s.MaxDelaySeconds,
		"settings.max_parallel_fetches":   float64(s.MaxParallelFetches),
		"settings.max_parallel_sends":     float64(s.MaxParallelSends),
		"settings.parallel_send_delay":    s.ParallelSendDelay,
		"settings.comment_page_size":      float64(s.CommentPageSize),
	}
	for field, value := range nonNegative {
		if value < 0 {
			return &ConfigValidationError{Field: field, Reason: "must not be negative"}
		}
	}
	if s.MaxActionsPerSession <= 0 {
		return &ConfigValidationError{Field: "settings.max_actions_per_session", Reason: "must be a positive number"}
	}
	if s.MaxDelaySeconds < s.MinDelaySeconds {
		return &ConfigValidationError{Field: "settings.max_delay_seconds", Reason: "must be >= min_delay_seconds"}
	}
	if s.APIBaseURL == "" {
		return &ConfigValidationError{Field: "settings.api_base_url", Reason: "missing"}
	}
	return nil
}
