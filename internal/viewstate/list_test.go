package viewstate

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/core"
	"spendlog/internal/storage"
	"spendlog/internal/store"
)

func newTestLive(t *testing.T) *store.Live {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "spendlog.db"))
	require.NoError(t, err)
	live := store.NewLive(repo)
	t.Cleanup(func() {
		live.Close()
		repo.Close()
	})
	return live
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}

func await[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
			panic("unreachable")
		}
	}
}

func rowTitles(items []core.DisplayItem) []string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		if !it.IsHeader {
			titles = append(titles, it.Expense.Title)
		}
	}
	return titles
}

func TestNewListDefaults(t *testing.T) {
	live := newTestLive(t)

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()

	require.NotNil(t, l.SelectedDate())
	assert.Equal(t, core.Today(), *l.SelectedDate())
	assert.Equal(t, core.ByCategory, l.Mode())
	assert.Empty(t, recv(t, l.Items()))
	assert.Zero(t, recv(t, l.Total()))
}

func TestListTracksInsertsForSelection(t *testing.T) {
	live := newTestLive(t)
	ctx := context.Background()

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()
	recv(t, l.Items())

	today := core.Today()
	_, err = live.Insert(ctx, core.Expense{Title: "Lunch", Amount: 250, Category: "Food", Date: today})
	require.NoError(t, err)
	_, err = live.Insert(ctx, core.Expense{Title: "Auto", Amount: 80, Category: "Travel", Date: today})
	require.NoError(t, err)
	_, err = live.Insert(ctx, core.Expense{Title: "elsewhere", Amount: 999, Date: "1999-01-01"})
	require.NoError(t, err)

	items := await(t, l.Items(), func(its []core.DisplayItem) bool {
		return len(rowTitles(its)) == 2
	})
	// Alphabetical category sections: Food before Travel.
	require.Len(t, items, 4)
	assert.Equal(t, "Food", items[0].Header)
	assert.Equal(t, "Lunch", items[1].Expense.Title)
	assert.Equal(t, "Travel", items[2].Header)
	assert.Equal(t, "Auto", items[3].Expense.Title)

	await(t, l.Total(), func(v float64) bool { return v == 330 })
}

func TestToggleGroupingModeRegroupsImmediately(t *testing.T) {
	live := newTestLive(t)
	ctx := context.Background()

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()

	today := core.Today()
	_, err = live.Insert(ctx, core.Expense{Title: "a", Amount: 1, Category: "Food", Date: today})
	require.NoError(t, err)
	await(t, l.Items(), func(its []core.DisplayItem) bool { return len(its) == 2 })

	l.ToggleGroupingMode()
	assert.Equal(t, core.ByDate, l.Mode())

	items := recv(t, l.Items())
	require.NotEmpty(t, items)
	assert.Equal(t, today, items[0].Header, "date header after toggle")

	l.ToggleGroupingMode()
	assert.Equal(t, core.ByCategory, l.Mode())
	items = recv(t, l.Items())
	assert.Equal(t, "Food", items[0].Header)
}

func TestChangeDateToAllDates(t *testing.T) {
	live := newTestLive(t)
	ctx := context.Background()

	_, err := live.Insert(ctx, core.Expense{Title: "old", Amount: 5, Category: "Misc", Date: "1999-01-01"})
	require.NoError(t, err)

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()
	assert.Empty(t, recv(t, l.Items()), "today's filter hides the old record")

	require.NoError(t, l.ChangeDate(nil))
	assert.Nil(t, l.SelectedDate())

	items := recv(t, l.Items())
	assert.Equal(t, []string{"old"}, rowTitles(items))
	assert.Equal(t, 5.0, recv(t, l.Total()))
}

func TestChangeDateNeverLeaksPreviousSelection(t *testing.T) {
	live := newTestLive(t)
	ctx := context.Background()

	_, err := live.Insert(ctx, core.Expense{Title: "match", Amount: 10, Category: "Food", Date: "2025-09-17"})
	require.NoError(t, err)
	_, err = live.Insert(ctx, core.Expense{Title: "stray", Amount: 20, Category: "Misc", Date: "2025-09-18"})
	require.NoError(t, err)

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()

	// Widen to all dates, then narrow while the "all" subscription is active.
	require.NoError(t, l.ChangeDate(nil))
	await(t, l.Items(), func(its []core.DisplayItem) bool { return len(rowTitles(its)) == 2 })

	date := "2025-09-17"
	require.NoError(t, l.ChangeDate(&date))

	// Every snapshot from here on reflects only the new selection, including
	// the ones provoked by further writes.
	items := recv(t, l.Items())
	assert.Equal(t, []string{"match"}, rowTitles(items))

	_, err = live.Insert(ctx, core.Expense{Title: "another", Amount: 1, Category: "Food", Date: date})
	require.NoError(t, err)
	items = await(t, l.Items(), func(its []core.DisplayItem) bool {
		return len(rowTitles(its)) == 2
	})
	for _, it := range items {
		if !it.IsHeader {
			assert.Equal(t, date, it.Expense.Date)
		}
	}
}

func TestChangeDateFenceUnderConcurrentInserts(t *testing.T) {
	live := newTestLive(t)
	ctx := context.Background()

	oldDate, newDate := "2025-09-17", "2025-09-18"
	_, err := live.Insert(ctx, core.Expense{Title: "seed-old", Amount: 1, Category: "Misc", Date: oldDate})
	require.NoError(t, err)
	_, err = live.Insert(ctx, core.Expense{Title: "seed-new", Amount: 2, Category: "Misc", Date: newDate})
	require.NoError(t, err)

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()

	// Keep writes landing on the abandoned date so its subscription has
	// fresh snapshots in flight during every switch.
	stopWrites := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stopWrites:
				return
			default:
				if _, err := live.Insert(ctx, core.Expense{Title: "noise", Amount: 1, Date: oldDate}); err != nil {
					return
				}
			}
		}
	}()

	for i := 0; i < 40; i++ {
		require.NoError(t, l.ChangeDate(&oldDate))
		require.NoError(t, l.ChangeDate(&newDate))

		// Once ChangeDate returns, every snapshot belongs to the new
		// selection, including ones provoked by the concurrent writes.
		deadline := time.After(10 * time.Millisecond)
	drain:
		for {
			select {
			case items := <-l.Items():
				for _, it := range items {
					if !it.IsHeader {
						require.Equal(t, newDate, it.Expense.Date, "iteration %d", i)
					}
				}
			case <-deadline:
				break drain
			}
		}
	}

	close(stopWrites)
	wg.Wait()
}

func TestChangeDateReleasesPreviousForwarder(t *testing.T) {
	live := newTestLive(t)

	l, err := NewList(live)
	require.NoError(t, err)
	defer l.Close()

	before := runtime.NumGoroutine()

	d1, d2 := "2025-09-17", "2025-09-18"
	for i := 0; i < 200; i++ {
		require.NoError(t, l.ChangeDate(&d1))
		require.NoError(t, l.ChangeDate(&d2))
	}

	// Each switch must release the previous generation's forwarder; only a
	// handful of goroutines beyond the baseline may remain.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+10
	}, 2*time.Second, 20*time.Millisecond)
}
