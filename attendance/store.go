/*
store.go - Persistence interfaces for the attendance engine

PURPOSE:
  Defines the contract between the engine and its storage. Summaries
  and balances are materialized views: the entry log is the only raw
  fact, everything else must be regenerable from it.

KEY INTERFACES:
  EntryStore:   The correctable event log (append, update, delete -
                all mutations flow through the edit pipeline)
  SummaryStore: Materialized daily summaries, one row per employee/day
  BalanceStore: The monthly balance chain
  TxStore:      Atomic multi-write support (all effects or none)

DELETION CONTRACT:
  Entries are never silently deleted. DeleteEntry exists for the
  explicit, confirmed, audited operation of the edit pipeline only.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - attendance/store/memory.go: In-memory for testing

SEE ALSO:
  - tracker.go: The only writer of summaries and balances
*/
package attendance

import (
	"context"
	"time"
)

// =============================================================================
// ENTRY STORE - The correctable event log
// =============================================================================

type EntryStore interface {
	// AppendEntry persists a new entry (stamp, correction, or
	// auto-complete synthesis).
	AppendEntry(ctx context.Context, e TimeEntry) error

	// GetEntry returns an entry by ID, or nil when absent.
	GetEntry(ctx context.Context, id EntryID) (*TimeEntry, error)

	// UpdateEntry replaces an entry's mutable fields (timestamp, type,
	// correction metadata). Edit-pipeline use only.
	UpdateEntry(ctx context.Context, e TimeEntry) error

	// DeleteEntry removes an entry. Explicit, audited operation.
	DeleteEntry(ctx context.Context, id EntryID) error

	// EntriesInRange returns an employee's entries with
	// from <= Timestamp < to, chronologically sorted.
	EntriesInRange(ctx context.Context, emp EmployeeID, from, to time.Time) ([]TimeEntry, error)
}

// =============================================================================
// SUMMARY STORE - Materialized daily rows
// =============================================================================

type SummaryStore interface {
	// SaveSummary upserts the summary for (employee, date).
	SaveSummary(ctx context.Context, s DailySummary) error

	// GetSummary returns the stored summary, or nil when the day has
	// never been reconciled.
	GetSummary(ctx context.Context, emp EmployeeID, date Day) (*DailySummary, error)

	// SummariesInRange returns summaries with from <= Date <= to,
	// ordered by date.
	SummariesInRange(ctx context.Context, emp EmployeeID, from, to Day) ([]DailySummary, error)

	// FlaggedSummaries returns all summaries in [from, to] across
	// employees where HasMissingEntries or NeedsReview is set.
	FlaggedSummaries(ctx context.Context, from, to Day) ([]DailySummary, error)

	// OpenSummaries returns summaries still in status open on or
	// before the given day. Used by the periodic sweep.
	OpenSummaries(ctx context.Context, before Day) ([]DailySummary, error)
}

// =============================================================================
// BALANCE STORE - The monthly chain
// =============================================================================

type BalanceStore interface {
	// SaveBalance upserts one (employee, year, month) row.
	SaveBalance(ctx context.Context, b MonthlyBalance) error

	// GetBalance returns the stored row, or nil when absent.
	GetBalance(ctx context.Context, emp EmployeeID, ym YearMonth) (*MonthlyBalance, error)

	// LatestBalance returns the chronologically last row for an
	// employee, or nil when the employee has no rows yet.
	LatestBalance(ctx context.Context, emp EmployeeID) (*MonthlyBalance, error)

	// BalancesForMonth returns every employee's row for one month.
	BalancesForMonth(ctx context.Context, ym YearMonth) ([]MonthlyBalance, error)
}

// =============================================================================
// COMPOSITE / TRANSACTIONAL STORE
// =============================================================================

// Store is everything the tracker needs from persistence.
type Store interface {
	EntryStore
	SummaryStore
	BalanceStore
}

// TxStore wraps Store with transaction support. Every committed
// mutation of the edit pipeline runs inside WithTx: entry write,
// reconciliation, and the balance cascade land together or not at all.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
