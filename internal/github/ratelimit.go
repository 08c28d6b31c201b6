package github

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ghscout/internal/errors"
)

// Rate limit tiers. GitHub tracks code search separately from the core
// REST quota, with a much smaller per-minute window.
const (
	TierCore   = "core"
	TierSearch = "search"
)

type tierState struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
	window    time.Duration
}

// Limiter tracks remaining request budget per tier and refuses requests
// once a tier is exhausted, until its window resets. State survives
// restarts via a small JSON file so a crashed session cannot burn a
// fresh budget.
type Limiter struct {
	mu        sync.Mutex
	tiers     map[string]*tierState
	statePath string
	logger    *slog.Logger
	now       func() time.Time
}

// NewLimiter creates a limiter with the given budgets. statePath may be
// empty to keep state in memory only.
func NewLimiter(corePerHour, searchPerMinute int, statePath string, logger *slog.Logger) *Limiter {
	l := &Limiter{
		tiers: map[string]*tierState{
			TierCore:   {Limit: corePerHour, Remaining: corePerHour, window: time.Hour},
			TierSearch: {Limit: searchPerMinute, Remaining: searchPerMinute, window: time.Minute},
		},
		statePath: statePath,
		logger:    logger,
		now:       time.Now,
	}
	l.load()
	return l
}

// Acquire consumes one request from the tier's budget. It returns a
// RATE_LIMITED error when the budget is exhausted and the window has
// not yet reset.
func (l *Limiter) Acquire(tier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.tiers[tier]
	if !ok {
		st = l.tiers[TierCore]
		tier = TierCore
	}

	now := l.now()
	if !st.ResetAt.IsZero() && now.After(st.ResetAt) {
		st.Remaining = st.Limit
		st.ResetAt = time.Time{}
	}

	if st.Remaining <= 0 {
		reset := st.ResetAt
		if reset.IsZero() {
			reset = now.Add(st.window)
			st.ResetAt = reset
		}
		wait := int(reset.Sub(now).Seconds())
		if wait < 0 {
			wait = 0
		}
		return errors.NewRateLimited(tier, wait)
	}

	st.Remaining--
	if st.ResetAt.IsZero() {
		st.ResetAt = now.Add(st.window)
	}
	l.persist()
	return nil
}

// Update replaces a tier's state from the x-ratelimit-* response
// headers, which are the authoritative view of the server-side budget.
func (l *Limiter) Update(tier string, remaining int, resetUnix int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.tiers[tier]
	if !ok {
		return
	}
	st.Remaining = remaining
	if resetUnix > 0 {
		st.ResetAt = time.Unix(resetUnix, 0)
	}
	l.persist()
}

// Remaining reports the current budget for a tier.
func (l *Limiter) Remaining(tier string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.tiers[tier]; ok {
		return st.Remaining
	}
	return 0
}

func (l *Limiter) load() {
	if l.statePath == "" {
		return
	}
	data, err := os.ReadFile(l.statePath)
	if err != nil {
		return
	}
	var saved map[string]*tierState
	if err := json.Unmarshal(data, &saved); err != nil {
		l.logger.Debug("Discarding unreadable rate limit state", "path", l.statePath, "error", err)
		return
	}
	for name, st := range saved {
		cur, ok := l.tiers[name]
		if !ok {
			continue
		}
		// Only carry over state that is still inside its window.
		if !st.ResetAt.IsZero() && l.now().Before(st.ResetAt) {
			cur.Remaining = st.Remaining
			cur.ResetAt = st.ResetAt
		}
	}
}

func (l *Limiter) persist() {
	if l.statePath == "" {
		return
	}
	data, err := json.MarshalIndent(l.tiers, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.statePath), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(l.statePath, data, 0o644); err != nil {
		l.logger.Debug("Failed to persist rate limit state", "path", l.statePath, "error", err)
	}
}
