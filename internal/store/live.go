// Package store layers the reactive contract over the durable repository:
// every read is a live query that delivers an initial snapshot immediately
// and a fresh one after each insert, until the subscriber cancels.
package store

import (
	"context"
	"log/slog"
	"sync"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

// Subscription is a live query handle. Updates carries snapshots on a
// conflating capacity-1 channel: a slow consumer only ever sees the latest
// snapshot, never a backlog of stale ones.
type Subscription[T any] struct {
	updates chan T
	cancel  func()

	mu        sync.Mutex
	cancelled bool
}

// Updates returns the snapshot channel. The initial snapshot is already
// buffered when the subscription is handed out.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Cancel detaches the subscriber. Cancel is a barrier: a push in progress
// completes before it returns, and no snapshot is delivered afterwards. A
// snapshot delivered earlier may still sit in the buffer. The channel is
// left open (never closed) and simply goes quiet.
func (s *Subscription[T]) Cancel() {
	s.mu.Lock()
	already := s.cancelled
	s.cancelled = true
	s.mu.Unlock()
	if !already {
		s.cancel()
	}
}

// push is a conflating send: if the buffer is full the stale snapshot is
// dropped in favor of the new one, so holding the lock here cannot block.
// The lock makes the cancelled check and the send atomic against Cancel.
func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	for {
		select {
		case s.updates <- v:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

type liveQuery struct {
	id      uint64
	refresh func(context.Context)
}

// Live owns the mutable state of the system. Inserts are serialized through
// it, and a single dispatcher goroutine re-evaluates every registered query
// after each commit, so all subscribers observe writes in commit order.
type Live struct {
	repo *storage.Repository

	mu     sync.Mutex
	subs   []*liveQuery
	nextID uint64

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// NewLive wraps an open repository and starts the dispatcher.
func NewLive(repo *storage.Repository) *Live {
	s := &Live{
		repo:    repo,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.dispatch()
	return s
}

// Close stops the dispatcher. Subscriptions stop receiving updates; the
// underlying repository is closed by its owner, not here.
func (s *Live) Close() {
	close(s.done)
	<-s.stopped
}

// Insert commits the record and returns its assigned id. The write itself is
// serialized; recomputation of live queries happens on the dispatcher
// goroutine and never blocks the caller.
func (s *Live) Insert(ctx context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	id, err := s.repo.Insert(ctx, e)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return id, nil
}

func (s *Live) dispatch() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
			s.mu.Lock()
			queries := make([]*liveQuery, len(s.subs))
			copy(queries, s.subs)
			s.mu.Unlock()

			ctx := context.Background()
			for _, q := range queries {
				q.refresh(ctx)
			}
		}
	}
}

func (s *Live) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.subs {
		if q.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// subscribe evaluates the initial snapshot and registers the query, all under
// the store lock so no insert can slip between the two. Establishment
// failures (storage I/O) propagate to the caller; later refresh failures are
// logged and the subscriber keeps its last good snapshot.
func subscribe[T any](s *Live, name string, eval func(context.Context) (T, error)) (*Subscription[T], error) {
	sub := &Subscription[T]{updates: make(chan T, 1)}

	s.mu.Lock()
	initial, err := eval(context.Background())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sub.updates <- initial

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, &liveQuery{
		id: id,
		refresh: func(ctx context.Context) {
			v, err := eval(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Live query refresh failed", "query", name, "error", err)
				return
			}
			sub.push(v)
		},
	})
	s.mu.Unlock()

	sub.cancel = func() { s.remove(id) }
	return sub, nil
}

// All is the live list of every expense, newest first.
func (s *Live) All() (*Subscription[[]core.Expense], error) {
	return subscribe(s, "all", s.repo.ListAll)
}

// ByDate is the live list of expenses with an exact date match, newest first.
func (s *Live) ByDate(date string) (*Subscription[[]core.Expense], error) {
	return subscribe(s, "by_date", func(ctx context.Context) ([]core.Expense, error) {
		return s.repo.ListByDate(ctx, date)
	})
}

// Total is the live sum over all records.
func (s *Live) Total() (*Subscription[float64], error) {
	return subscribe(s, "total", s.repo.Total)
}

// TotalByDate is the live sum over records on the given date, 0 when none.
func (s *Live) TotalByDate(date string) (*Subscription[float64], error) {
	return subscribe(s, "total_by_date", func(ctx context.Context) (float64, error) {
		return s.repo.TotalByDate(ctx, date)
	})
}

// TotalForDate has the same semantics as TotalByDate. It is kept as a
// distinct entry point because it backs the per-date legs of the rolling
// 7-day aggregation.
func (s *Live) TotalForDate(date string) (*Subscription[float64], error) {
	return subscribe(s, "total_for_date", func(ctx context.Context) (float64, error) {
		return s.repo.TotalByDate(ctx, date)
	})
}

// CategoryTotals is the live per-category aggregate, one row per distinct
// category value.
func (s *Live) CategoryTotals() (*Subscription[[]core.CategoryTotal], error) {
	return subscribe(s, "category_totals", s.repo.CategoryTotals)
}
