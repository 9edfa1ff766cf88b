/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements attendance.TxStore (entries, summaries, balances), plus
  directory lookup (employees, time models) and the holiday calendar,
  all on one SQLite database. In production, the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  time_entries:      The correctable attendance event log
  daily_summaries:   Materialized per-day rows (derived, regenerable)
  monthly_balances:  The carryover chain
  employees:         Directory records
  time_models:       Contractual weekly schedules
  holidays:          Region-keyed calendar lookup

MUTATION CONTRACT:
  Entries are only ever written through the correction pipeline;
  summaries and balances are written by the tracker inside WithTx, so
  a failed reconciliation rolls the triggering entry write back with it.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATIONS:
  Versioned SQL migrations are embedded in the binary and applied on
  New() via golang-migrate.

USAGE:
  st, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  tracker := attendance.NewTracker(st, st, attendance.Options{Holidays: st})

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/attendance"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// sidesteps SQLITE_BUSY across concurrent writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlitemigrate.WithInstance(s.db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// execer abstracts *sql.DB and *sql.Tx so write paths can run inside
// or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// ENTRY STORE (attendance.EntryStore interface)
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e attendance.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, e)
}

func appendEntry(ctx context.Context, db execer, e attendance.TimeEntry) error {
	query := `
		INSERT INTO time_entries
		(id, employee_id, entry_type, timestamp, source, is_correction,
		 correction_reason, corrected_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.EmployeeID,
		e.Type,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Source,
		boolInt(e.IsCorrection),
		nullString(e.CorrectionReason),
		nullString(string(e.CorrectedBy)),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

const entryColumns = `
	id, employee_id, entry_type, timestamp, source, is_correction,
	correction_reason, corrected_by, created_at`

func (s *Store) GetEntry(ctx context.Context, id attendance.EntryID) (*attendance.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEntry(ctx, s.db, id)
}

func getEntry(ctx context.Context, db execer, id attendance.EntryID) (*attendance.TimeEntry, error) {
	row := db.QueryRowContext(ctx,
		"SELECT"+entryColumns+" FROM time_entries WHERE id = ?", id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e attendance.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateEntry(ctx, s.db, e)
}

func updateEntry(ctx context.Context, db execer, e attendance.TimeEntry) error {
	res, err := db.ExecContext(ctx, `
		UPDATE time_entries
		SET entry_type = ?, timestamp = ?, is_correction = ?,
		    correction_reason = ?, corrected_by = ?
		WHERE id = ?`,
		e.Type,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		boolInt(e.IsCorrection),
		nullString(e.CorrectionReason),
		nullString(string(e.CorrectedBy)),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrEntryNotFound
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id attendance.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteEntry(ctx, s.db, id)
}

func deleteEntry(ctx context.Context, db execer, id attendance.EntryID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrEntryNotFound
	}
	return nil
}

func (s *Store) EntriesInRange(ctx context.Context, emp attendance.EmployeeID, from, to time.Time) ([]attendance.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entriesInRange(ctx, s.db, emp, from, to)
}

func entriesInRange(ctx context.Context, db execer, emp attendance.EmployeeID, from, to time.Time) ([]attendance.TimeEntry, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT"+entryColumns+`
		 FROM time_entries
		 WHERE employee_id = ? AND timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp ASC, created_at ASC`,
		emp,
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []attendance.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row rowScanner) (attendance.TimeEntry, error) {
	var (
		e                attendance.TimeEntry
		timestamp        string
		isCorrection     int
		correctionReason sql.NullString
		correctedBy      sql.NullString
		createdAt        string
	)
	err := row.Scan(&e.ID, &e.EmployeeID, &e.Type, &timestamp, &e.Source,
		&isCorrection, &correctionReason, &correctedBy, &createdAt)
	if err != nil {
		return e, err
	}
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.IsCorrection = isCorrection != 0
	e.CorrectionReason = correctionReason.String
	e.CorrectedBy = attendance.EmployeeID(correctedBy.String)
	return e, nil
}

// =============================================================================
// SUMMARY STORE (attendance.SummaryStore interface)
// =============================================================================

func (s *Store) SaveSummary(ctx context.Context, sum attendance.DailySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSummary(ctx, s.db, sum)
}

func saveSummary(ctx context.Context, db execer, sum attendance.DailySummary) error {
	warningsJSON, err := json.Marshal(sum.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := `
		INSERT INTO daily_summaries
		(employee_id, date, target_minutes, target_override_minutes,
		 worked_minutes, break_minutes, overtime_minutes, status,
		 has_missing_entries, needs_review, review_note, note,
		 warnings_json, holiday_name, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			target_minutes = excluded.target_minutes,
			target_override_minutes = excluded.target_override_minutes,
			worked_minutes = excluded.worked_minutes,
			break_minutes = excluded.break_minutes,
			overtime_minutes = excluded.overtime_minutes,
			status = excluded.status,
			has_missing_entries = excluded.has_missing_entries,
			needs_review = excluded.needs_review,
			review_note = excluded.review_note,
			note = excluded.note,
			warnings_json = excluded.warnings_json,
			holiday_name = excluded.holiday_name,
			computed_at = excluded.computed_at
	`
	_, err = db.ExecContext(ctx, query,
		sum.EmployeeID,
		sum.Date.String(),
		nullInt(sum.TargetMinutes),
		nullInt(sum.TargetOverrideMinutes),
		sum.WorkedMinutes,
		sum.BreakMinutes,
		sum.OvertimeMinutes,
		sum.Status,
		boolInt(sum.HasMissingEntries),
		boolInt(sum.NeedsReview),
		nullString(sum.ReviewNote),
		nullString(sum.Note),
		string(warningsJSON),
		nullString(sum.HolidayName),
		sum.ComputedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

const summaryColumns = `
	employee_id, date, target_minutes, target_override_minutes,
	worked_minutes, break_minutes, overtime_minutes, status,
	has_missing_entries, needs_review, review_note, note,
	warnings_json, holiday_name, computed_at`

func (s *Store) GetSummary(ctx context.Context, emp attendance.EmployeeID, date attendance.Day) (*attendance.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSummary(ctx, s.db, emp, date)
}

func getSummary(ctx context.Context, db execer, emp attendance.EmployeeID, date attendance.Day) (*attendance.DailySummary, error) {
	row := db.QueryRowContext(ctx,
		"SELECT"+summaryColumns+" FROM daily_summaries WHERE employee_id = ? AND date = ?",
		emp, date.String())

	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *Store) SummariesInRange(ctx context.Context, emp attendance.EmployeeID, from, to attendance.Day) ([]attendance.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summariesInRange(ctx, s.db, emp, from, to)
}

func summariesInRange(ctx context.Context, db execer, emp attendance.EmployeeID, from, to attendance.Day) ([]attendance.DailySummary, error) {
	return querySummaries(ctx, db,
		"SELECT"+summaryColumns+`
		 FROM daily_summaries
		 WHERE employee_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		emp, from.String(), to.String())
}

func (s *Store) FlaggedSummaries(ctx context.Context, from, to attendance.Day) ([]attendance.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return querySummaries(ctx, s.db,
		"SELECT"+summaryColumns+`
		 FROM daily_summaries
		 WHERE date >= ? AND date <= ? AND (has_missing_entries = 1 OR needs_review = 1)
		 ORDER BY date ASC, employee_id ASC`,
		from.String(), to.String())
}

func (s *Store) OpenSummaries(ctx context.Context, before attendance.Day) ([]attendance.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return querySummaries(ctx, s.db,
		"SELECT"+summaryColumns+`
		 FROM daily_summaries
		 WHERE date <= ? AND status = 'open'
		 ORDER BY date ASC, employee_id ASC`,
		before.String())
}

func querySummaries(ctx context.Context, db execer, query string, args ...any) ([]attendance.DailySummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []attendance.DailySummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func scanSummary(row rowScanner) (attendance.DailySummary, error) {
	var (
		sum            attendance.DailySummary
		date           string
		target         sql.NullInt64
		targetOverride sql.NullInt64
		hasMissing     int
		needsReview    int
		reviewNote     sql.NullString
		note           sql.NullString
		warningsJSON   sql.NullString
		holidayName    sql.NullString
		computedAt     string
	)
	err := row.Scan(&sum.EmployeeID, &date, &target, &targetOverride,
		&sum.WorkedMinutes, &sum.BreakMinutes, &sum.OvertimeMinutes, &sum.Status,
		&hasMissing, &needsReview, &reviewNote, &note,
		&warningsJSON, &holidayName, &computedAt)
	if err != nil {
		return sum, err
	}

	sum.Date, _ = attendance.ParseDay(date)
	sum.TargetMinutes = intPtr(target)
	sum.TargetOverrideMinutes = intPtr(targetOverride)
	sum.HasMissingEntries = hasMissing != 0
	sum.NeedsReview = needsReview != 0
	sum.ReviewNote = reviewNote.String
	sum.Note = note.String
	sum.HolidayName = holidayName.String
	sum.ComputedAt, _ = time.Parse(time.RFC3339Nano, computedAt)
	if warningsJSON.Valid && warningsJSON.String != "" && warningsJSON.String != "null" {
		if err := json.Unmarshal([]byte(warningsJSON.String), &sum.Warnings); err != nil {
			return sum, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}
	return sum, nil
}

// =============================================================================
// BALANCE STORE (attendance.BalanceStore interface)
// =============================================================================

func (s *Store) SaveBalance(ctx context.Context, b attendance.MonthlyBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBalance(ctx, s.db, b)
}

func saveBalance(ctx context.Context, db execer, b attendance.MonthlyBalance) error {
	query := `
		INSERT INTO monthly_balances
		(employee_id, year, month, carryover_minutes, overtime_minutes,
		 adjustment_minutes, payout_minutes, balance_minutes, audit_log, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year, month) DO UPDATE SET
			carryover_minutes = excluded.carryover_minutes,
			overtime_minutes = excluded.overtime_minutes,
			adjustment_minutes = excluded.adjustment_minutes,
			payout_minutes = excluded.payout_minutes,
			balance_minutes = excluded.balance_minutes,
			audit_log = excluded.audit_log,
			computed_at = excluded.computed_at
	`
	_, err := db.ExecContext(ctx, query,
		b.EmployeeID,
		b.Month.Year,
		int(b.Month.Month),
		b.CarryoverMinutes,
		b.OvertimeMinutes,
		b.AdjustmentMinutes,
		b.PayoutMinutes,
		b.BalanceMinutes,
		nullString(b.AuditLog),
		b.ComputedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

const balanceColumns = `
	employee_id, year, month, carryover_minutes, overtime_minutes,
	adjustment_minutes, payout_minutes, balance_minutes, audit_log, computed_at`

func (s *Store) GetBalance(ctx context.Context, emp attendance.EmployeeID, ym attendance.YearMonth) (*attendance.MonthlyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBalance(ctx, s.db, emp, ym)
}

func getBalance(ctx context.Context, db execer, emp attendance.EmployeeID, ym attendance.YearMonth) (*attendance.MonthlyBalance, error) {
	row := db.QueryRowContext(ctx,
		"SELECT"+balanceColumns+" FROM monthly_balances WHERE employee_id = ? AND year = ? AND month = ?",
		emp, ym.Year, int(ym.Month))

	b, err := scanBalance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) LatestBalance(ctx context.Context, emp attendance.EmployeeID) (*attendance.MonthlyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latestBalance(ctx, s.db, emp)
}

func latestBalance(ctx context.Context, db execer, emp attendance.EmployeeID) (*attendance.MonthlyBalance, error) {
	row := db.QueryRowContext(ctx,
		"SELECT"+balanceColumns+`
		 FROM monthly_balances
		 WHERE employee_id = ?
		 ORDER BY year DESC, month DESC
		 LIMIT 1`, emp)

	b, err := scanBalance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) BalancesForMonth(ctx context.Context, ym attendance.YearMonth) ([]attendance.MonthlyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT"+balanceColumns+`
		 FROM monthly_balances
		 WHERE year = ? AND month = ?
		 ORDER BY employee_id ASC`,
		ym.Year, int(ym.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []attendance.MonthlyBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func scanBalance(row rowScanner) (attendance.MonthlyBalance, error) {
	var (
		b          attendance.MonthlyBalance
		year       int
		month      int
		auditLog   sql.NullString
		computedAt string
	)
	err := row.Scan(&b.EmployeeID, &year, &month, &b.CarryoverMinutes,
		&b.OvertimeMinutes, &b.AdjustmentMinutes, &b.PayoutMinutes,
		&b.BalanceMinutes, &auditLog, &computedAt)
	if err != nil {
		return b, err
	}
	b.Month = attendance.YearMonth{Year: year, Month: time.Month(month)}
	b.AuditLog = auditLog.String
	b.ComputedAt, _ = time.Parse(time.RFC3339Nano, computedAt)
	return b, nil
}

// =============================================================================
// TRANSACTIONAL STORE (attendance.TxStore interface)
// =============================================================================

// WithTx runs fn inside a database transaction. The store passed to fn
// writes through the transaction and reads its own uncommitted writes.
func (s *Store) WithTx(ctx context.Context, fn func(store attendance.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore shadows Store's methods onto a *sql.Tx. No mutex here: the
// parent holds its lock for the transaction's whole lifetime.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) AppendEntry(ctx context.Context, e attendance.TimeEntry) error {
	return appendEntry(ctx, ts.tx, e)
}

func (ts *txStore) GetEntry(ctx context.Context, id attendance.EntryID) (*attendance.TimeEntry, error) {
	return getEntry(ctx, ts.tx, id)
}

func (ts *txStore) UpdateEntry(ctx context.Context, e attendance.TimeEntry) error {
	return updateEntry(ctx, ts.tx, e)
}

func (ts *txStore) DeleteEntry(ctx context.Context, id attendance.EntryID) error {
	return deleteEntry(ctx, ts.tx, id)
}

func (ts *txStore) EntriesInRange(ctx context.Context, emp attendance.EmployeeID, from, to time.Time) ([]attendance.TimeEntry, error) {
	return entriesInRange(ctx, ts.tx, emp, from, to)
}

func (ts *txStore) SaveSummary(ctx context.Context, sum attendance.DailySummary) error {
	return saveSummary(ctx, ts.tx, sum)
}

func (ts *txStore) GetSummary(ctx context.Context, emp attendance.EmployeeID, date attendance.Day) (*attendance.DailySummary, error) {
	return getSummary(ctx, ts.tx, emp, date)
}

func (ts *txStore) SummariesInRange(ctx context.Context, emp attendance.EmployeeID, from, to attendance.Day) ([]attendance.DailySummary, error) {
	return summariesInRange(ctx, ts.tx, emp, from, to)
}

func (ts *txStore) FlaggedSummaries(ctx context.Context, from, to attendance.Day) ([]attendance.DailySummary, error) {
	return querySummaries(ctx, ts.tx,
		"SELECT"+summaryColumns+`
		 FROM daily_summaries
		 WHERE date >= ? AND date <= ? AND (has_missing_entries = 1 OR needs_review = 1)
		 ORDER BY date ASC, employee_id ASC`,
		from.String(), to.String())
}

func (ts *txStore) OpenSummaries(ctx context.Context, before attendance.Day) ([]attendance.DailySummary, error) {
	return querySummaries(ctx, ts.tx,
		"SELECT"+summaryColumns+`
		 FROM daily_summaries
		 WHERE date <= ? AND status = 'open'
		 ORDER BY date ASC, employee_id ASC`,
		before.String())
}

func (ts *txStore) SaveBalance(ctx context.Context, b attendance.MonthlyBalance) error {
	return saveBalance(ctx, ts.tx, b)
}

func (ts *txStore) GetBalance(ctx context.Context, emp attendance.EmployeeID, ym attendance.YearMonth) (*attendance.MonthlyBalance, error) {
	return getBalance(ctx, ts.tx, emp, ym)
}

func (ts *txStore) LatestBalance(ctx context.Context, emp attendance.EmployeeID) (*attendance.MonthlyBalance, error) {
	return latestBalance(ctx, ts.tx, emp)
}

func (ts *txStore) BalancesForMonth(ctx context.Context, ym attendance.YearMonth) ([]attendance.MonthlyBalance, error) {
	rows, err := ts.tx.QueryContext(ctx,
		"SELECT"+balanceColumns+`
		 FROM monthly_balances
		 WHERE year = ? AND month = ?
		 ORDER BY employee_id ASC`,
		ym.Year, int(ym.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []attendance.MonthlyBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
