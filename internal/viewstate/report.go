package viewstate

import (
	"sync"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

// DefaultIdleGrace is how long the report aggregates stay alive after the
// last consumer detaches, so rapid navigation does not re-establish the
// seven per-date subscriptions.
const DefaultIdleGrace = 5 * time.Second

// Report coordinates the report screen: the rolling 7-day daily totals and
// the per-category totals, passed through from the store with no selection
// state of its own. Consumers bracket their use with Attach and Detach; the
// underlying subscriptions are torn down only after the idle grace period
// elapses with no consumer attached.
type Report struct {
	live  *store.Live
	grace time.Duration

	mu        sync.Mutex
	consumers int
	daily     *store.Subscription[[]core.DailyTotal]
	cats      *store.Subscription[[]core.CategoryTotal]
	idleTimer *time.Timer
}

func NewReport(live *store.Live, grace time.Duration) *Report {
	if grace <= 0 {
		grace = DefaultIdleGrace
	}
	return &Report{live: live, grace: grace}
}

// Attach registers a consumer, establishing the aggregate subscriptions if
// none are alive.
func (r *Report) Attach() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.idleTimer != nil {
		r.idleTimer.Stop()
		r.idleTimer = nil
	}

	if r.daily == nil {
		daily, err := r.live.DailyTotals()
		if err != nil {
			return err
		}
		cats, err := r.live.CategoryTotals()
		if err != nil {
			daily.Cancel()
			return err
		}
		r.daily, r.cats = daily, cats
	}

	r.consumers++
	return nil
}

// Detach deregisters a consumer. When the last one leaves, teardown is
// deferred by the grace period; an Attach within that window reuses the
// live subscriptions.
func (r *Report) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumers > 0 {
		r.consumers--
	}
	if r.consumers > 0 {
		return
	}

	if r.idleTimer != nil {
		r.idleTimer.Stop()
	}
	r.idleTimer = time.AfterFunc(r.grace, r.teardownIfIdle)
}

func (r *Report) teardownIfIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumers > 0 {
		return
	}
	if r.daily != nil {
		r.daily.Cancel()
		r.daily = nil
	}
	if r.cats != nil {
		r.cats.Cancel()
		r.cats = nil
	}
	r.idleTimer = nil
}

// DailyTotals carries the 7-day sequence, oldest day first. Valid only while
// attached.
func (r *Report) DailyTotals() <-chan []core.DailyTotal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.daily == nil {
		return nil
	}
	return r.daily.Updates()
}

// CategoryTotals carries one row per distinct category. Valid only while
// attached.
func (r *Report) CategoryTotals() <-chan []core.CategoryTotal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cats == nil {
		return nil
	}
	return r.cats.Updates()
}

// Close tears the aggregates down immediately, grace period notwithstanding.
func (r *Report) Close() {
	r.mu.Lock()
	if r.idleTimer != nil {
		r.idleTimer.Stop()
		r.idleTimer = nil
	}
	r.consumers = 0
	r.mu.Unlock()
	r.teardownIfIdle()
}
