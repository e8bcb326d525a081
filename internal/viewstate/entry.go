package viewstate

import (
	"context"
	"log/slog"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

// Entry coordinates the add-expense surface: it keeps today's running total
// current and turns submitted drafts into inserted records. Draft validation
// belongs to the presentation boundary in front of it; Entry stamps the date
// and forwards as-is.
type Entry struct {
	live     *store.Live
	todaySub *store.Subscription[float64]
}

func NewEntry(live *store.Live) (*Entry, error) {
	sub, err := live.TotalForDate(core.Today())
	if err != nil {
		return nil, err
	}
	return &Entry{live: live, todaySub: sub}, nil
}

// TotalToday carries the amount spent today, kept current as inserts land.
func (e *Entry) TotalToday() <-chan float64 {
	return e.todaySub.Updates()
}

// AddExpense stamps the draft with today's local date and inserts it.
func (e *Entry) AddExpense(ctx context.Context, d core.Draft) (int64, error) {
	expense := d.Expense(core.Today())
	id, err := e.live.Insert(ctx, expense)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Expense added",
		"id", id, "title", expense.Title, "amount", expense.Amount, "date", expense.Date)
	return id, nil
}

func (e *Entry) Close() {
	e.todaySub.Cancel()
}
