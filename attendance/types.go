/*
Package attendance provides the core time-tracking engine.

PURPOSE:
  This package contains the types and algorithms for attendance
  time-tracking: a sequence-validated event log, a day reconciliation
  engine that turns raw stampings into audited daily totals, and a
  monthly overtime ledger with carryover, adjustments, and payouts.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: A single timestamped attendance event (the only raw fact)
  - TimeModel: An employee's contractual schedule (per-weekday targets)
  - DailySummary: One reconciled day, derived and regenerable
  - MonthlyBalance: One month's overtime ledger row, chained by carryover

DESIGN PRINCIPLES:
  1. Entries are facts: corrected via the edit pipeline, never silently lost
  2. Summaries are derived: always recomputable from entries + model
  3. Balances are chained: carryover(N) == balance(N-1), always
  4. Warnings are data: sequence problems never block recording reality

USAGE:
  entry := attendance.TimeEntry{
      EmployeeID: "emp-1",
      Type:       attendance.EntryClockIn,
      Timestamp:  time.Now().UTC(),
      Source:     attendance.SourceTerminal,
  }

SEE ALSO:
  - validator.go: State-machine validation of entry sequences
  - reconcile.go: Daily summary derivation and auto-completion
  - balance.go: Monthly ledger math and cascading recompute
  - tracker.go: The transactional correction/edit pipeline
*/
package attendance

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type EntryID string

// =============================================================================
// TIME ENTRY - One attendance event
// =============================================================================

type EntryType string

const (
	EntryClockIn    EntryType = "clock_in"
	EntryClockOut   EntryType = "clock_out"
	EntryBreakStart EntryType = "break_start"
	EntryBreakEnd   EntryType = "break_end"
)

// KnownEntryType reports whether t is one of the four stamp types.
func KnownEntryType(t EntryType) bool {
	switch t {
	case EntryClockIn, EntryClockOut, EntryBreakStart, EntryBreakEnd:
		return true
	}
	return false
}

type EntrySource string

const (
	SourceTerminal        EntrySource = "terminal"
	SourceWeb             EntrySource = "web"
	SourceSelfCorrection  EntrySource = "self_correction"
	SourceAdminCorrection EntrySource = "admin_correction"
	SourceAutoComplete    EntrySource = "auto_complete"
)

// TimeEntry is a single timestamped attendance event.
//
// Entries are grouped by the local calendar day of their timestamp in the
// employee's configured time zone. That grouping is recomputed on every
// read; it is never stored as a separate source of truth.
type TimeEntry struct {
	ID         EntryID
	EmployeeID EmployeeID
	Type       EntryType
	Timestamp  time.Time // absolute instant, stored UTC
	Source     EntrySource

	IsCorrection     bool
	CorrectionReason string
	CorrectedBy      EmployeeID

	CreatedAt time.Time
}

// Day returns the local calendar day this entry belongs to.
func (e TimeEntry) Day(loc *time.Location) Day {
	return DayOf(e.Timestamp, loc)
}

// =============================================================================
// TIME MODEL - Contractual schedule
// =============================================================================

// TimeModel is an employee's contractual schedule. A nil weekday target
// means "no schedule that day", which is distinct from an explicit 0.
type TimeModel struct {
	ID   string
	Name string

	// Indexed by time.Weekday (Sunday == 0).
	WeekdayTargets [7]*int

	DefaultBreakMinutes int
	MinBreakMinutes     int
	IsDefault           bool
}

// TargetFor returns the target minutes for a weekday, or nil when the
// model has no schedule for that day.
func (m *TimeModel) TargetFor(wd time.Weekday) *int {
	if m == nil {
		return nil
	}
	return m.WeekdayTargets[wd]
}

// =============================================================================
// DAILY SUMMARY - One reconciled day
// =============================================================================

type DayStatus string

const (
	StatusComplete DayStatus = "complete"
	StatusOpen     DayStatus = "open"
	StatusAbsent   DayStatus = "absent"
	StatusHoliday  DayStatus = "holiday"
)

// DailySummary is the reconciled view of one employee's day.
//
// Derived fields (worked, break, overtime, status, flags) are replaced on
// every reconciliation. Manual fields (Note, NeedsReview as toggled by a
// human, TargetOverrideMinutes) survive regeneration verbatim.
//
// INVARIANT: OvertimeMinutes == WorkedMinutes - (TargetOverrideMinutes ??
// TargetMinutes ?? 0).
type DailySummary struct {
	EmployeeID EmployeeID
	Date       Day

	TargetMinutes         *int // from TimeModel, nil = no schedule
	TargetOverrideMinutes *int // manual, wins over TargetMinutes

	WorkedMinutes   int
	BreakMinutes    int
	OvertimeMinutes int

	Status            DayStatus
	HasMissingEntries bool

	NeedsReview bool
	ReviewNote  string
	Note        string

	// Sequence warnings observed at last reconciliation. Re-derived on
	// every run, so they self-heal when the underlying entries change.
	Warnings []SequenceWarning

	HolidayName string

	ComputedAt time.Time
}

// EffectiveTarget resolves the target used for overtime computation.
// Absence of any target is treated as zero here, and only here.
func (s DailySummary) EffectiveTarget() int {
	if s.TargetOverrideMinutes != nil {
		return *s.TargetOverrideMinutes
	}
	if s.TargetMinutes != nil {
		return *s.TargetMinutes
	}
	return 0
}

// =============================================================================
// MONTHLY BALANCE - One ledger row in the carryover chain
// =============================================================================

// MonthlyBalance is one employee/year/month overtime ledger row.
//
// INVARIANTS:
//   - BalanceMinutes == CarryoverMinutes + OvertimeMinutes +
//     AdjustmentMinutes - PayoutMinutes
//   - CarryoverMinutes of month N == BalanceMinutes of month N-1
//
// The ledger is a strict chain: recomputing any month requires
// recomputing every later month's carryover.
type MonthlyBalance struct {
	EmployeeID EmployeeID
	Month      YearMonth

	CarryoverMinutes  int
	OvertimeMinutes   int
	AdjustmentMinutes int
	PayoutMinutes     int
	BalanceMinutes    int

	// Append-only free-text trail of manual adjustments and payouts.
	AuditLog string

	ComputedAt time.Time
}

// =============================================================================
// PRESENCE - Derived current state, never persisted
// =============================================================================

// Presence is an employee's current abstract attendance state, derived
// from the latest entry of the current local day.
type Presence struct {
	EmployeeID EmployeeID
	State      AttendanceState
	Since      time.Time // timestamp of the entry that produced the state
	LastEntry  *TimeEntry
}
