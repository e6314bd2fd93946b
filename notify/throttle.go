package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const alertBurst = 3

// Throttled passes at most burst alerts at once and one more per interval.
// The rest are counted and reported with the next alert that gets through.
type Throttled struct {
	next    Notifier
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu      sync.Mutex
	dropped int
}

// NewThrottled wraps next; an interval of zero or less disables throttling.
func NewThrottled(next Notifier, interval time.Duration, burst int) *Throttled {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log.With().Str("component", "alertThrottle").Logger(),
	}
}

func (t *Throttled) Notify(ctx context.Context, subject, body string) error {
	body, ok := t.admit(body)
	if !ok {
		return nil
	}
	return t.next.Notify(ctx, subject, body)
}

// admit takes a token. On success body gains a note about the alerts
// suppressed since the last one sent.
func (t *Throttled) admit(body string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.limiter.Allow() {
		t.dropped++
		t.logger.Debug().Int("suppressed", t.dropped).Msg("Alert suppressed")
		return body, false
	}
	if t.dropped > 0 {
		body = fmt.Sprintf("%s\n\n(%d similar alerts suppressed since the last email)", body, t.dropped)
		t.dropped = 0
	}
	return body, true
}
