package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

// SQL statements mirror the queries the app needs: newest-first listing by
// assigned id, exact-date filtering, and the two aggregate shapes. NULL
// optional columns are folded to '' at scan time; a SUM over zero rows is
// folded to 0.
const (
	insertExpenseSQL = `INSERT INTO expenses (title, amount, category, date, notes, receipt)
VALUES (?, ?, ?, ?, ?, ?)`

	listAllSQL = `SELECT id, title, amount, COALESCE(category, ''), COALESCE(date, ''),
COALESCE(notes, ''), COALESCE(receipt, '')
FROM expenses ORDER BY id DESC`

	listByDateSQL = `SELECT id, title, amount, COALESCE(category, ''), COALESCE(date, ''),
COALESCE(notes, ''), COALESCE(receipt, '')
FROM expenses WHERE date = ? ORDER BY id DESC`

	totalSQL = `SELECT COALESCE(SUM(amount), 0) FROM expenses`

	totalByDateSQL = `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE date = ?`

	categoryTotalsSQL = `SELECT COALESCE(category, ''), SUM(amount)
FROM expenses GROUP BY COALESCE(category, '')`
)

// Repository is the durable expense store: one sqlite file, one table,
// create-only lifecycle. It performs no validation; any well-typed record
// is accepted.
type Repository struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed, runs
// migrations, and returns a ready repository.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert appends a record and returns the assigned id. Identifiers are
// monotonically increasing (AUTOINCREMENT) and never reused.
func (r *Repository) Insert(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertExpenseSQL,
		e.Title, e.Amount, nullable(e.Category), nullable(e.Date),
		nullable(e.Notes), nullable(e.Receipt))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved",
		"id", id, "title", e.Title, "amount", e.Amount, "date", e.Date)

	return id, nil
}

// ListAll returns every expense, newest first by id.
func (r *Repository) ListAll(ctx context.Context) ([]core.Expense, error) {
	return r.list(ctx, listAllSQL)
}

// ListByDate returns the expenses with an exact date match, newest first.
func (r *Repository) ListByDate(ctx context.Context, date string) ([]core.Expense, error) {
	return r.list(ctx, listByDateSQL, date)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.Category, &e.Date, &e.Notes, &e.Receipt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// Total returns the sum of all amounts, 0 when the table is empty.
func (r *Repository) Total(ctx context.Context) (float64, error) {
	return r.scalar(ctx, totalSQL)
}

// TotalByDate returns the sum of amounts recorded on the given date, 0 when
// no records match.
func (r *Repository) TotalByDate(ctx context.Context, date string) (float64, error) {
	return r.scalar(ctx, totalByDateSQL, date)
}

func (r *Repository) scalar(ctx context.Context, query string, args ...any) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query total: %w", err)
	}
	return total, nil
}

// CategoryTotals returns one row per distinct category value present in the
// store. A NULL category and an empty-string category collapse into the same
// "" group; that matches the established behavior and is pinned by tests.
func (r *Repository) CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, categoryTotalsSQL)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	totals := make([]core.CategoryTotal, 0)
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}

	return totals, nil
}

// nullable stores empty optional strings as NULL, keeping the table layout
// faithful to the nullable column definitions.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
