// Package viewstate holds the coordinators between the live store and the
// presentation layer: each one owns a piece of UI selection state and
// re-derives its outputs whenever the selection or the underlying data
// changes.
package viewstate

import (
	"sync"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

// pushLatest is a conflating send: a full buffer means the consumer has not
// caught up, so the stale snapshot is replaced rather than queued behind.
// It never blocks, which lets callers push while holding a lock.
func pushLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// List coordinates the browsing screen: a nullable date filter (nil means all
// dates, default is today) and a grouping mode (default by category). It
// exposes the grouped display list and the total for the current selection,
// both recomputed on every insert, date change, or mode toggle.
type List struct {
	live *store.Live

	mu           sync.Mutex
	selectedDate *string
	mode         core.GroupingMode
	gen          uint64
	expenses     []core.Expense
	expSub       *store.Subscription[[]core.Expense]
	totSub       *store.Subscription[float64]

	items chan []core.DisplayItem
	total chan float64
	stop  chan struct{}
}

// NewList starts a coordinator filtered to today's date, grouped by category.
func NewList(live *store.Live) (*List, error) {
	today := core.Today()
	l := &List{
		live:         live,
		selectedDate: &today,
		mode:         core.ByCategory,
		items:        make(chan []core.DisplayItem, 1),
		total:        make(chan float64, 1),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.resubscribeLocked(); err != nil {
		return nil, err
	}
	return l, nil
}

// Items carries the grouped display list for the current selection.
func (l *List) Items() <-chan []core.DisplayItem {
	return l.items
}

// Total carries the summed amount for the current selection.
func (l *List) Total() <-chan float64 {
	return l.total
}

// SelectedDate returns the current date filter, nil meaning all dates.
func (l *List) SelectedDate() *string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectedDate
}

// Mode returns the current grouping mode.
func (l *List) Mode() core.GroupingMode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// ChangeDate replaces the date filter. The previous subscriptions are
// cancelled before the new ones are established, and a generation counter
// fences out anything still in flight: once ChangeDate returns, the exposed
// list reflects only the new selection.
func (l *List) ChangeDate(date *string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selectedDate = date
	return l.resubscribeLocked()
}

// ToggleGroupingMode flips between category and date grouping and regroups
// the last-known expense list immediately, without touching the store. The
// push happens under the lock so it serializes with a concurrent ChangeDate.
func (l *List) ToggleGroupingMode() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = l.mode.Toggle()
	pushLatest(l.items, core.BuildDisplayList(l.expenses, l.mode))
}

// Close cancels the store subscriptions and releases the forwarder.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.cancelSubsLocked()
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
}

func (l *List) cancelSubsLocked() {
	if l.expSub != nil {
		l.expSub.Cancel()
		l.expSub = nil
	}
	if l.totSub != nil {
		l.totSub.Cancel()
		l.totSub = nil
	}
}

func (l *List) resubscribeLocked() error {
	l.gen++
	l.cancelSubsLocked()
	if l.stop != nil {
		close(l.stop)
	}
	l.stop = make(chan struct{})

	var (
		expSub *store.Subscription[[]core.Expense]
		totSub *store.Subscription[float64]
		err    error
	)
	if l.selectedDate == nil {
		expSub, err = l.live.All()
	} else {
		expSub, err = l.live.ByDate(*l.selectedDate)
	}
	if err != nil {
		return err
	}
	if l.selectedDate == nil {
		totSub, err = l.live.Total()
	} else {
		totSub, err = l.live.TotalByDate(*l.selectedDate)
	}
	if err != nil {
		expSub.Cancel()
		return err
	}
	l.expSub, l.totSub = expSub, totSub

	// Both subscriptions arrive with their initial snapshot buffered; drain
	// them here so the switch is visible the moment this call returns.
	select {
	case es := <-expSub.Updates():
		l.expenses = es
		pushLatest(l.items, core.BuildDisplayList(es, l.mode))
	default:
	}
	select {
	case v := <-totSub.Updates():
		pushLatest(l.total, v)
	default:
	}

	go l.forward(l.gen, l.stop, expSub.Updates(), totSub.Updates())
	return nil
}

// forward relays snapshots for one selection generation until the next
// switch closes its stop channel. A relay from an outdated generation is
// dropped under the lock, so a late result from a previous selection is
// never delivered.
func (l *List) forward(gen uint64, stop <-chan struct{}, expCh <-chan []core.Expense, totCh <-chan float64) {
	for {
		select {
		case <-stop:
			return
		case es := <-expCh:
			if !l.deliverExpenses(gen, es) {
				return
			}
		case v := <-totCh:
			if !l.deliverTotal(gen, v) {
				return
			}
		}
	}
}

// deliverExpenses and deliverTotal push while still holding the lock: the
// generation check and the send must be one atomic step, or a relay that
// passed the check could park, lose the race with a ChangeDate, and then
// deliver the outdated selection's snapshot after the switch completed.

func (l *List) deliverExpenses(gen uint64, es []core.Expense) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.expenses = es
	pushLatest(l.items, core.BuildDisplayList(es, l.mode))
	return true
}

func (l *List) deliverTotal(gen uint64, v float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	pushLatest(l.total, v)
	return true
}
