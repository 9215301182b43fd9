package ratelimit

import (
	"time"

	"github.com/moonforge/worker-bot/pkg/config"
)

// Rules decides who gets throttled and how hard. Admins bypass the limit so a
// flood of worker updates can never lock the review channel out.
type Rules struct {
	cfg    config.RateLimitConfig
	bypass map[int64]struct{}
}

// NewRules builds throttling rules from configuration and the admin allow-list.
func NewRules(cfg config.RateLimitConfig, bypass map[int64]struct{}) *Rules {
	return &Rules{cfg: cfg, bypass: bypass}
}

// Enabled reports whether throttling is active at all.
func (r *Rules) Enabled() bool {
	return r.cfg.Enabled && r.cfg.Limit > 0 && r.cfg.Window > 0
}

// IsExempt returns true if the user bypasses rate limits.
func (r *Rules) IsExempt(userID int64) bool {
	_, ok := r.bypass[userID]
	return ok
}

// PerUserLimit returns the per-user limit and window.
func (r *Rules) PerUserLimit() (int, time.Duration) {
	return r.cfg.Limit, r.cfg.Window
}
