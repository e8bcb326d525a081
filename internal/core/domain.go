package core

import (
	"errors"
	"strings"
)

const maxNotesLen = 100

type (
	// Expense is the sole persisted record. Optional columns (category, date,
	// notes, receipt) surface as empty strings. Records are immutable once
	// inserted: there is no update or delete in this design.
	Expense struct {
		ID       int64
		Title    string
		Amount   float64
		Category string
		Date     string // YYYY-MM-DD, stamped at creation time
		Notes    string
		Receipt  string // opaque reference to an attached image
	}

	// Draft is what the entry surface collects before an expense exists.
	// The date is stamped by the entry coordinator, never supplied here.
	Draft struct {
		Title    string
		Amount   float64
		Category string
		Notes    string
		Receipt  string
	}
)

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNotesTooLong  = errors.New("notes too long (max 100 characters)")
)

// Validate enforces the entry-boundary rules. The store itself accepts any
// well-typed record; validation happens here and only here.
func (d Draft) Validate() error {
	if len(strings.TrimSpace(d.Title)) == 0 {
		return ErrEmptyTitle
	}
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(d.Notes) > maxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// Expense builds the record to insert, stamping the given date.
func (d Draft) Expense(date string) Expense {
	return Expense{
		Title:    d.Title,
		Amount:   d.Amount,
		Category: d.Category,
		Date:     date,
		Notes:    d.Notes,
		Receipt:  d.Receipt,
	}
}
