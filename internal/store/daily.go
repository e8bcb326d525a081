package store

import (
	"sync"

	"spendlog/internal/core"
)

// ReportWindowDays is the size of the rolling report window: six days back
// through today, inclusive.
const ReportWindowDays = 7

type indexedTotal struct {
	idx   int
	total float64
}

// DailyTotals combines one live per-date total for each day of the rolling
// window into a single live sequence, oldest day first. The merge is
// positional: output index i always corresponds to window date i no matter
// which underlying total fired. A combined snapshot is emitted once all legs
// have reported (which happens immediately, since each leg delivers its
// initial value on subscribe) and again after every individual change.
func (s *Live) DailyTotals() (*Subscription[[]core.DailyTotal], error) {
	dates := core.PastNDays(ReportWindowDays)

	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = core.WeekdayAbbrev(d)
	}

	legs := make([]*Subscription[float64], len(dates))
	for i, d := range dates {
		leg, err := s.TotalForDate(d)
		if err != nil {
			for _, l := range legs[:i] {
				l.Cancel()
			}
			return nil, err
		}
		legs[i] = leg
	}

	out := &Subscription[[]core.DailyTotal]{updates: make(chan []core.DailyTotal, 1)}
	done := make(chan struct{})
	var once sync.Once
	out.cancel = func() {
		once.Do(func() {
			for _, leg := range legs {
				leg.Cancel()
			}
			close(done)
		})
	}

	updates := make(chan indexedTotal, len(legs))
	for i, leg := range legs {
		go forwardLeg(i, leg.Updates(), updates, done)
	}
	go mergeLegs(labels, updates, done, out)

	return out, nil
}

func forwardLeg(idx int, in <-chan float64, updates chan<- indexedTotal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case v := <-in:
			select {
			case updates <- indexedTotal{idx: idx, total: v}:
			case <-done:
				return
			}
		}
	}
}

// mergeLegs holds the last-known value per leg plus a ready count and
// re-emits the combined snapshot on every update once all legs reported.
func mergeLegs(labels []string, updates <-chan indexedTotal, done <-chan struct{}, out *Subscription[[]core.DailyTotal]) {
	latest := make([]float64, len(labels))
	seen := make([]bool, len(labels))
	ready := 0

	for {
		select {
		case <-done:
			return
		case u := <-updates:
			if !seen[u.idx] {
				seen[u.idx] = true
				ready++
			}
			latest[u.idx] = u.total
			if ready < len(labels) {
				continue
			}

			snapshot := make([]core.DailyTotal, len(labels))
			for i, label := range labels {
				snapshot[i] = core.DailyTotal{DayOfWeek: label, Total: latest[i]}
			}
			out.push(snapshot)
		}
	}
}
