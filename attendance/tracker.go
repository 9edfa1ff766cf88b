/*
tracker.go - The correction/edit pipeline and read projections

PURPOSE:
  Tracker is the single entry point for every mutation of the entry
  log and for the derived read projections. Each mutation is
  transactional (all effects or none) and follows the same spine:

    acquire per-employee section
      -> write/update/delete entry
      -> reconcile the affected day(s)
      -> if overtime changed, recompute that month's balance
      -> cascade carryover through every later month to the present
    release section

STAMPING NEVER BLOCKS:
  A stamp is rejected only on structural errors (unknown employee,
  tracking disabled, unknown type). Sequence problems are warnings
  riding along in the result; an employee must always be able to
  record reality.

CORRECTIONS:
  Self-corrections require a reason and leave the day flagged for
  supervisory acknowledgement. Admin corrections require a reason but
  no acknowledgement. Edits re-run the validator in preview mode
  against the simulated post-edit day before committing.

READS RECONCILE:
  Day reads re-run reconciliation instead of trusting stored flags.
  The system self-heals its warnings whenever entries change, and a
  stale open day is auto-completed the next time anyone looks at it.

SEE ALSO:
  - reconcile.go: The per-day derivation
  - balance.go: The monthly chain math
  - locks.go: The per-employee exclusive section
*/
package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRACKER
// =============================================================================

// Options configures a Tracker. Zero values fall back to sane defaults.
type Options struct {
	Holidays        HolidayCalendar
	Clock           Clock
	Policy          ReconcilePolicy
	MinReasonLength int
}

// Tracker is the attendance engine's service façade.
type Tracker struct {
	store    TxStore
	dir      EmployeeDirectory
	holidays HolidayCalendar
	clock    Clock
	policy   ReconcilePolicy

	minReasonLen int
	locks        *employeeLocks
}

const defaultMinReasonLength = 5

func NewTracker(store TxStore, dir EmployeeDirectory, opts Options) *Tracker {
	t := &Tracker{
		store:        store,
		dir:          dir,
		holidays:     opts.Holidays,
		clock:        opts.Clock,
		policy:       opts.Policy,
		minReasonLen: opts.MinReasonLength,
		locks:        newEmployeeLocks(),
	}
	if t.holidays == nil {
		t.holidays = NoHolidays{}
	}
	if t.clock == nil {
		t.clock = SystemClock{}
	}
	if t.policy == (ReconcilePolicy{}) {
		t.policy = DefaultPolicy()
	}
	if t.minReasonLen <= 0 {
		t.minReasonLen = defaultMinReasonLength
	}
	return t
}

// =============================================================================
// STAMPING AND CORRECTIONS
// =============================================================================

// StampResult is returned by Stamp and the correction operations.
// Warnings are advisory: the write has already been committed.
type StampResult struct {
	Entry        TimeEntry
	Warnings     []SequenceWarning
	ExpectedNext []EntryType
	Summary      DailySummary
}

// Stamp appends a live entry at "now". Sequence mismatches never block
// a stamp; they surface as warnings and flag the day.
func (t *Tracker) Stamp(ctx context.Context, emp EmployeeID, typ EntryType, source EntrySource) (*StampResult, error) {
	if source == "" {
		source = SourceWeb
	}
	if source != SourceWeb && source != SourceTerminal {
		return nil, &InvalidInputError{Field: "source", Reason: "stamps come from web or terminal only"}
	}
	if !KnownEntryType(typ) {
		return nil, &InvalidInputError{Field: "entry_type", Reason: fmt.Sprintf("unknown type %q", typ)}
	}

	employee, err := t.requireTracked(ctx, emp)
	if err != nil {
		return nil, err
	}

	entry := TimeEntry{
		ID:         EntryID(uuid.NewString()),
		EmployeeID: emp,
		Type:       typ,
		Timestamp:  t.clock.Now(),
		Source:     source,
		CreatedAt:  t.clock.Now(),
	}

	return t.commitEntry(ctx, employee, entry, nil)
}

// SubmitSelfCorrection appends a retroactive entry on the employee's
// own behalf. Requires a reason and leaves the day flagged until a
// supervisor acknowledges it.
func (t *Tracker) SubmitSelfCorrection(ctx context.Context, emp EmployeeID, typ EntryType, ts time.Time, reason string) (*StampResult, error) {
	if err := t.checkCorrection(typ, ts, reason); err != nil {
		return nil, err
	}
	employee, err := t.requireTracked(ctx, emp)
	if err != nil {
		return nil, err
	}

	entry := TimeEntry{
		ID:               EntryID(uuid.NewString()),
		EmployeeID:       emp,
		Type:             typ,
		Timestamp:        ts.UTC(),
		Source:           SourceSelfCorrection,
		IsCorrection:     true,
		CorrectionReason: reason,
		CorrectedBy:      emp,
		CreatedAt:        t.clock.Now(),
	}

	return t.commitEntry(ctx, employee, entry, func(s *DailySummary) {
		s.NeedsReview = true
		s.ReviewNote = appendNote(s.ReviewNote,
			fmt.Sprintf("self-correction %s@%s awaiting acknowledgement", typ, ts.UTC().Format(time.RFC3339)))
	})
}

// AdminCorrection appends a retroactive entry on an employee's behalf.
// Requires a reason; needs no subsequent acknowledgement.
func (t *Tracker) AdminCorrection(ctx context.Context, emp EmployeeID, typ EntryType, ts time.Time, reason string, admin EmployeeID) (*StampResult, error) {
	if err := t.checkCorrection(typ, ts, reason); err != nil {
		return nil, err
	}
	employee, err := t.requireEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}

	entry := TimeEntry{
		ID:               EntryID(uuid.NewString()),
		EmployeeID:       emp,
		Type:             typ,
		Timestamp:        ts.UTC(),
		Source:           SourceAdminCorrection,
		IsCorrection:     true,
		CorrectionReason: reason,
		CorrectedBy:      admin,
		CreatedAt:        t.clock.Now(),
	}

	return t.commitEntry(ctx, employee, entry, nil)
}

func (t *Tracker) checkCorrection(typ EntryType, ts time.Time, reason string) error {
	if !KnownEntryType(typ) {
		return &InvalidInputError{Field: "entry_type", Reason: fmt.Sprintf("unknown type %q", typ)}
	}
	if ts.IsZero() {
		return &InvalidInputError{Field: "timestamp", Reason: "timestamp is required"}
	}
	if len(strings.TrimSpace(reason)) < t.minReasonLen {
		return &InvalidInputError{Field: "reason",
			Reason: fmt.Sprintf("reason must be at least %d characters", t.minReasonLen)}
	}
	return nil
}

// commitEntry runs the standard mutation spine for a single new entry.
func (t *Tracker) commitEntry(ctx context.Context, employee *Employee, entry TimeEntry, mutateSummary func(*DailySummary)) (*StampResult, error) {
	day := entry.Day(employee.Location())
	plan, err := t.planReconcile(ctx, employee, []Day{day})
	if err != nil {
		return nil, err
	}

	var result StampResult
	unlock := t.locks.Lock(employee.ID)
	defer unlock()

	err = t.store.WithTx(ctx, func(s Store) error {
		if err := s.AppendEntry(ctx, entry); err != nil {
			return err
		}
		summaries, err := t.reconcileAndCascade(ctx, s, employee, plan, mutateSummary)
		if err != nil {
			return err
		}
		result.Summary = summaries[day]
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Entry = entry
	result.Warnings = result.Summary.Warnings
	result.ExpectedNext = t.expectedNextFor(ctx, employee, day)
	return &result, nil
}

// =============================================================================
// EDIT AND DELETE
// =============================================================================

// EditPreview shows the warnings an edit would produce, per affected
// day, without committing anything.
type EditPreview struct {
	Entry        TimeEntry
	NewDay       Day
	OldDay       Day
	Moved        bool // the edit crosses a calendar-day boundary
	Result       ValidationResult
	OldDayResult *ValidationResult // set only when Moved
}

// PreviewEditEntry simulates an edit and validates the resulting
// day(s). Required before committing; the caller shows the warnings.
func (t *Tracker) PreviewEditEntry(ctx context.Context, id EntryID, newType EntryType, newTs time.Time) (*EditPreview, error) {
	if !KnownEntryType(newType) {
		return nil, &InvalidInputError{Field: "entry_type", Reason: fmt.Sprintf("unknown type %q", newType)}
	}
	entry, err := t.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
	}
	employee, err := t.requireEmployee(ctx, entry.EmployeeID)
	if err != nil {
		return nil, err
	}
	loc := employee.Location()

	oldDay := entry.Day(loc)
	newDay := DayOf(newTs, loc)
	preview := &EditPreview{Entry: *entry, NewDay: newDay, OldDay: oldDay, Moved: !oldDay.Equal(newDay)}

	newEntries, err := t.store.EntriesInRange(ctx, entry.EmployeeID, newDay.Start(loc), newDay.End(loc))
	if err != nil {
		return nil, err
	}
	if preview.Moved {
		// The entry leaves its old day entirely: validate the old day
		// without it, and the new day with it inserted.
		oldEntries, err := t.store.EntriesInRange(ctx, entry.EmployeeID, oldDay.Start(loc), oldDay.End(loc))
		if err != nil {
			return nil, err
		}
		oldResult := Validate(withoutEntry(oldEntries, id))
		preview.OldDayResult = &oldResult

		moved := *entry
		moved.Type = newType
		moved.Timestamp = newTs.UTC()
		preview.Result = PreviewInsert(newEntries, moved)
	} else {
		preview.Result = PreviewEdit(newEntries, id, newType, newTs.UTC())
	}
	return preview, nil
}

// EditResult reports a committed edit and the preview that preceded it.
type EditResult struct {
	Preview   *EditPreview
	Summaries map[Day]DailySummary
}

// EditEntry commits an edit to an entry's type and timestamp. The
// preview runs first so warnings can be surfaced; a move across a
// calendar-day boundary reconciles both affected days and cascades
// the balance chain from the earlier affected month.
func (t *Tracker) EditEntry(ctx context.Context, id EntryID, newType EntryType, newTs time.Time, reason string, actor EmployeeID) (*EditResult, error) {
	if len(strings.TrimSpace(reason)) < t.minReasonLen {
		return nil, &InvalidInputError{Field: "reason",
			Reason: fmt.Sprintf("reason must be at least %d characters", t.minReasonLen)}
	}
	preview, err := t.PreviewEditEntry(ctx, id, newType, newTs)
	if err != nil {
		return nil, err
	}
	employee, err := t.requireEmployee(ctx, preview.Entry.EmployeeID)
	if err != nil {
		return nil, err
	}

	edited := preview.Entry
	edited.Type = newType
	edited.Timestamp = newTs.UTC()
	edited.IsCorrection = true
	edited.CorrectionReason = reason
	edited.CorrectedBy = actor

	days := []Day{preview.NewDay}
	if preview.Moved {
		days = append(days, preview.OldDay)
	}
	plan, err := t.planReconcile(ctx, employee, days)
	if err != nil {
		return nil, err
	}

	result := &EditResult{Preview: preview}
	unlock := t.locks.Lock(employee.ID)
	defer unlock()

	err = t.store.WithTx(ctx, func(s Store) error {
		if err := s.UpdateEntry(ctx, edited); err != nil {
			return err
		}
		summaries, err := t.reconcileAndCascade(ctx, s, employee, plan, nil)
		if err != nil {
			return err
		}
		result.Summaries = summaries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteEntry removes an entry. Deletion is explicit and audited: the
// boundary collaborator must have confirmed it, and the owning day is
// reconciled immediately.
func (t *Tracker) DeleteEntry(ctx context.Context, id EntryID, confirmed bool) error {
	if !confirmed {
		return &InvalidInputError{Field: "confirm", Reason: "deletion requires explicit confirmation"}
	}
	entry, err := t.store.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
	}
	employee, err := t.requireEmployee(ctx, entry.EmployeeID)
	if err != nil {
		return err
	}
	day := entry.Day(employee.Location())
	plan, err := t.planReconcile(ctx, employee, []Day{day})
	if err != nil {
		return err
	}

	unlock := t.locks.Lock(employee.ID)
	defer unlock()

	return t.store.WithTx(ctx, func(s Store) error {
		if err := s.DeleteEntry(ctx, id); err != nil {
			return err
		}
		_, err := t.reconcileAndCascade(ctx, s, employee, plan, nil)
		return err
	})
}

func withoutEntry(entries []TimeEntry, id EntryID) []TimeEntry {
	out := make([]TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// RECONCILIATION SPINE
// =============================================================================

// reconcilePlan holds the directory and calendar lookups a reconcile
// pass needs, resolved before the transaction opens. The transaction's
// store must be the only store touched while it is in flight: reading
// back through the outer store would deadlock on its write lock.
type reconcilePlan struct {
	days     []Day
	model    *TimeModel
	holidays map[Day]dayHoliday
}

type dayHoliday struct {
	name string
	is   bool
}

func (t *Tracker) planReconcile(ctx context.Context, employee *Employee, days []Day) (*reconcilePlan, error) {
	model, err := t.dir.TimeModel(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	plan := &reconcilePlan{days: days, model: model, holidays: make(map[Day]dayHoliday, len(days))}
	for _, day := range days {
		name, is := t.holidays.IsHoliday(day, employee.Region)
		plan.holidays[day] = dayHoliday{name: name, is: is}
	}
	return plan, nil
}

// reconcileAndCascade reconciles the planned days inside the caller's
// transaction and, if any day's overtime changed, recomputes the
// balance chain forward from the earliest affected month.
func (t *Tracker) reconcileAndCascade(ctx context.Context, s Store, employee *Employee, plan *reconcilePlan, mutateSummary func(*DailySummary)) (map[Day]DailySummary, error) {
	summaries := make(map[Day]DailySummary, len(plan.days))
	var cascadeFrom YearMonth

	for _, day := range plan.days {
		prior, summary, err := t.reconcileOne(ctx, s, employee, plan, day, mutateSummary)
		if err != nil {
			return nil, err
		}
		summaries[day] = summary

		priorOvertime := 0
		if prior != nil {
			priorOvertime = prior.OvertimeMinutes
		}
		if summary.OvertimeMinutes != priorOvertime {
			ym := YearMonthOf(day)
			if cascadeFrom.IsZero() || ym.Before(cascadeFrom) {
				cascadeFrom = ym
			}
		}
	}

	if !cascadeFrom.IsZero() {
		if err := t.recomputeForward(ctx, s, employee.ID, cascadeFrom); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

// reconcileOne derives and persists one day's summary, including any
// auto-complete entries the reconciler synthesized.
func (t *Tracker) reconcileOne(ctx context.Context, s Store, employee *Employee, plan *reconcilePlan, day Day, mutateSummary func(*DailySummary)) (prior *DailySummary, summary DailySummary, err error) {
	loc := employee.Location()

	entries, err := s.EntriesInRange(ctx, employee.ID, day.Start(loc), day.End(loc))
	if err != nil {
		return nil, DailySummary{}, err
	}
	prior, err = s.GetSummary(ctx, employee.ID, day)
	if err != nil {
		return nil, DailySummary{}, err
	}

	// The adjacent days tell the reconciler whether an open interval
	// spills over midnight in either direction.
	prevEntries, err := s.EntriesInRange(ctx, employee.ID, day.AddDays(-1).Start(loc), day.Start(loc))
	if err != nil {
		return nil, DailySummary{}, err
	}
	nextEntries, err := s.EntriesInRange(ctx, employee.ID, day.End(loc), day.AddDays(1).End(loc))
	if err != nil {
		return nil, DailySummary{}, err
	}
	carryIn := StateAbsent
	if len(prevEntries) > 0 {
		SortEntries(prevEntries)
		carryIn = nominalPostState(prevEntries[len(prevEntries)-1].Type)
	}
	var nextFirst *TimeEntry
	if len(nextEntries) > 0 {
		SortEntries(nextEntries)
		nextFirst = &nextEntries[0]
	}

	hol := plan.holidays[day]
	res := ReconcileDay(ReconcileInput{
		EmployeeID:  employee.ID,
		Date:        day,
		Entries:     entries,
		Model:       plan.model,
		Prior:       prior,
		Now:         t.clock.Now(),
		Location:    loc,
		Policy:      t.policy,
		HolidayName: hol.name,
		IsHoliday:   hol.is,
		CarryIn:     carryIn,
		NextFirst:   nextFirst,
	})

	for _, synth := range res.Synthesized {
		synth.CreatedAt = t.clock.Now()
		if err := s.AppendEntry(ctx, synth); err != nil {
			return nil, DailySummary{}, err
		}
	}

	if mutateSummary != nil {
		mutateSummary(&res.Summary)
	}
	if err := s.SaveSummary(ctx, res.Summary); err != nil {
		return nil, DailySummary{}, err
	}
	return prior, res.Summary, nil
}

// recomputeForward walks the explicit month work list from "from" to
// the present, chronologically, recomputing each row. Idempotent per
// month: an interrupted cascade retried from the same month converges.
func (t *Tracker) recomputeForward(ctx context.Context, s Store, emp EmployeeID, from YearMonth) error {
	end := YearMonthOf(DayOf(t.clock.Now(), time.UTC))
	if from.After(end) {
		end = from
	}

	for _, ym := range MonthsForward(from, end) {
		prior, err := s.GetBalance(ctx, emp, ym.Prev())
		if err != nil {
			return err
		}
		existing, err := s.GetBalance(ctx, emp, ym)
		if err != nil {
			return err
		}
		sums, err := s.SummariesInRange(ctx, emp, ym.FirstDay(), ym.LastDay())
		if err != nil {
			return err
		}

		row := ComputeMonth(emp, ym, prior, existing, SumOvertime(sums), t.clock.Now())
		if existing != nil && sameBalance(*existing, row) {
			// Unchanged inputs yield an unchanged row; don't touch it.
			continue
		}
		if err := s.SaveBalance(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func sameBalance(a, b MonthlyBalance) bool {
	return a.CarryoverMinutes == b.CarryoverMinutes &&
		a.OvertimeMinutes == b.OvertimeMinutes &&
		a.AdjustmentMinutes == b.AdjustmentMinutes &&
		a.PayoutMinutes == b.PayoutMinutes &&
		a.BalanceMinutes == b.BalanceMinutes &&
		a.AuditLog == b.AuditLog
}

// =============================================================================
// BALANCE OPERATIONS
// =============================================================================

// RecomputeMonth recomputes one month and cascades forward. Idempotent.
func (t *Tracker) RecomputeMonth(ctx context.Context, emp EmployeeID, ym YearMonth) (*MonthlyBalance, error) {
	if _, err := t.requireEmployee(ctx, emp); err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(emp)
	defer unlock()

	err := t.store.WithTx(ctx, func(s Store) error {
		return t.recomputeForward(ctx, s, emp, ym)
	})
	if err != nil {
		return nil, err
	}
	return t.store.GetBalance(ctx, emp, ym)
}

// RecordAdjustment applies a manual balance correction. The reason is
// appended to the month's audit trail, never overwritten.
func (t *Tracker) RecordAdjustment(ctx context.Context, emp EmployeeID, ym YearMonth, minutesDelta int, reason string, actor EmployeeID) (*MonthlyBalance, error) {
	if len(strings.TrimSpace(reason)) < t.minReasonLen {
		return nil, &InvalidInputError{Field: "reason",
			Reason: fmt.Sprintf("reason must be at least %d characters", t.minReasonLen)}
	}
	if minutesDelta == 0 {
		return nil, &InvalidInputError{Field: "minutes", Reason: "adjustment of zero minutes"}
	}
	if _, err := t.requireEmployee(ctx, emp); err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(emp)
	defer unlock()

	err := t.store.WithTx(ctx, func(s Store) error {
		row, err := t.currentRow(ctx, s, emp, ym)
		if err != nil {
			return err
		}
		row.AdjustmentMinutes += minutesDelta
		row.AuditLog = AppendAudit(row.AuditLog, t.clock.Now(), string(actor), "adjustment", minutesDelta, reason)
		row.BalanceMinutes = row.CarryoverMinutes + row.OvertimeMinutes + row.AdjustmentMinutes - row.PayoutMinutes
		row.ComputedAt = t.clock.Now()
		if err := s.SaveBalance(ctx, *row); err != nil {
			return err
		}
		return t.recomputeForward(ctx, s, emp, ym.Next())
	})
	if err != nil {
		return nil, err
	}
	return t.store.GetBalance(ctx, emp, ym)
}

// RecordPayout cashes out overtime. Fails with ErrInsufficientBalance
// when minutes exceed the month's balance at commit time; the check
// runs against the freshly recomputed, not a stale, row.
func (t *Tracker) RecordPayout(ctx context.Context, emp EmployeeID, ym YearMonth, minutes int, reason string, actor EmployeeID) (*MonthlyBalance, error) {
	if minutes <= 0 {
		return nil, &InvalidInputError{Field: "minutes", Reason: "payout must be positive"}
	}
	if _, err := t.requireEmployee(ctx, emp); err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(emp)
	defer unlock()

	err := t.store.WithTx(ctx, func(s Store) error {
		row, err := t.currentRow(ctx, s, emp, ym)
		if err != nil {
			return err
		}
		if minutes > row.BalanceMinutes {
			return &InsufficientBalanceError{
				EmployeeID: emp,
				Month:      ym,
				Available:  row.BalanceMinutes,
				Requested:  minutes,
			}
		}
		row.PayoutMinutes += minutes
		row.AuditLog = AppendAudit(row.AuditLog, t.clock.Now(), string(actor), "payout", -minutes, reason)
		row.BalanceMinutes = row.CarryoverMinutes + row.OvertimeMinutes + row.AdjustmentMinutes - row.PayoutMinutes
		row.ComputedAt = t.clock.Now()
		if err := s.SaveBalance(ctx, *row); err != nil {
			return err
		}
		return t.recomputeForward(ctx, s, emp, ym.Next())
	})
	if err != nil {
		return nil, err
	}
	return t.store.GetBalance(ctx, emp, ym)
}

// currentRow recomputes the chain up through ym and returns ym's fresh
// row, materializing it if the month never had one.
func (t *Tracker) currentRow(ctx context.Context, s Store, emp EmployeeID, ym YearMonth) (*MonthlyBalance, error) {
	start := ym
	if latest, err := s.LatestBalance(ctx, emp); err != nil {
		return nil, err
	} else if latest != nil && latest.Month.Before(start) {
		start = latest.Month
	}
	if err := t.recomputeForward(ctx, s, emp, start); err != nil {
		return nil, err
	}
	row, err := s.GetBalance(ctx, emp, ym)
	if err != nil {
		return nil, err
	}
	if row == nil {
		fresh := ComputeMonth(emp, ym, nil, nil, 0, t.clock.Now())
		row = &fresh
	}
	return row, nil
}

// CurrentBalance returns the present month's balance, recomputing from
// the latest existing month forward and creating intermediate
// zero-activity months as needed.
func (t *Tracker) CurrentBalance(ctx context.Context, emp EmployeeID) (*MonthlyBalance, error) {
	if _, err := t.requireEmployee(ctx, emp); err != nil {
		return nil, err
	}
	nowYM := YearMonthOf(DayOf(t.clock.Now(), time.UTC))

	unlock := t.locks.Lock(emp)
	defer unlock()

	var row *MonthlyBalance
	err := t.store.WithTx(ctx, func(s Store) error {
		start := nowYM
		if latest, err := s.LatestBalance(ctx, emp); err != nil {
			return err
		} else if latest != nil && latest.Month.Before(start) {
			start = latest.Month
		}
		if err := t.recomputeForward(ctx, s, emp, start); err != nil {
			return err
		}
		var err error
		row, err = s.GetBalance(ctx, emp, nowYM)
		if err != nil {
			return err
		}
		if row == nil {
			fresh := ComputeMonth(emp, nowYM, nil, nil, 0, t.clock.Now())
			if err := s.SaveBalance(ctx, fresh); err != nil {
				return err
			}
			row = &fresh
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// AllBalances returns every tracked employee's row for one month.
func (t *Tracker) AllBalances(ctx context.Context, ym YearMonth) ([]MonthlyBalance, error) {
	return t.store.BalancesForMonth(ctx, ym)
}

// =============================================================================
// DAY / WEEK / MONTH PROJECTIONS
// =============================================================================

// DaySummary reconciles and returns one day. Reading a stale open day
// is what triggers its auto-completion.
func (t *Tracker) DaySummary(ctx context.Context, emp EmployeeID, date Day) (*DailySummary, error) {
	employee, err := t.requireEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}

	plan, err := t.planReconcile(ctx, employee, []Day{date})
	if err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(emp)
	defer unlock()

	var summary DailySummary
	err = t.store.WithTx(ctx, func(s Store) error {
		summaries, err := t.reconcileAndCascade(ctx, s, employee, plan, nil)
		if err != nil {
			return err
		}
		summary = summaries[date]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// WeekSummary aggregates the calendar week (Monday-based) containing
// date.
type WeekSummary struct {
	Start           Day
	End             Day
	Days            []DailySummary
	WorkedMinutes   int
	BreakMinutes    int
	TargetMinutes   int
	OvertimeMinutes int
}

func (t *Tracker) WeekSummary(ctx context.Context, emp EmployeeID, date Day) (*WeekSummary, error) {
	start := date
	for start.Weekday() != time.Monday {
		start = start.AddDays(-1)
	}
	end := start.AddDays(6)

	days, err := t.rangeSummaries(ctx, emp, start, end)
	if err != nil {
		return nil, err
	}

	week := &WeekSummary{Start: start, End: end, Days: days}
	for _, d := range days {
		week.WorkedMinutes += d.WorkedMinutes
		week.BreakMinutes += d.BreakMinutes
		week.TargetMinutes += d.EffectiveTarget()
		week.OvertimeMinutes += d.OvertimeMinutes
	}
	return week, nil
}

// MonthSummaries reconciles and returns every day of a month up to
// today, materializing no-show rows for scheduled days without entries.
func (t *Tracker) MonthSummaries(ctx context.Context, emp EmployeeID, ym YearMonth) ([]DailySummary, error) {
	return t.rangeSummaries(ctx, emp, ym.FirstDay(), ym.LastDay())
}

func (t *Tracker) rangeSummaries(ctx context.Context, emp EmployeeID, from, to Day) ([]DailySummary, error) {
	employee, err := t.requireEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}
	today := DayOf(t.clock.Now(), employee.Location())
	if to.After(today) {
		to = today
	}
	if from.After(to) {
		return nil, nil
	}

	var days []Day
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	plan, err := t.planReconcile(ctx, employee, days)
	if err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(emp)
	defer unlock()

	var out []DailySummary
	err = t.store.WithTx(ctx, func(s Store) error {
		summaries, err := t.reconcileAndCascade(ctx, s, employee, plan, nil)
		if err != nil {
			return err
		}
		out = out[:0]
		for _, d := range days {
			out = append(out, summaries[d])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MissingEntries surfaces all flagged days in a range across employees
// for supervisory triage.
func (t *Tracker) MissingEntries(ctx context.Context, from, to Day) ([]DailySummary, error) {
	return t.store.FlaggedSummaries(ctx, from, to)
}

// =============================================================================
// DAY-LEVEL MANUAL FIELDS
// =============================================================================

// SetNeedsReview toggles a day's review flag. The human toggle is
// authoritative: it survives recomputation until a new flag-raising
// event occurs.
func (t *Tracker) SetNeedsReview(ctx context.Context, emp EmployeeID, date Day, needsReview bool, note string) (*DailySummary, error) {
	return t.patchDay(ctx, emp, date, func(s *DailySummary) {
		s.NeedsReview = needsReview
		if note != "" {
			s.ReviewNote = appendNote(s.ReviewNote, note)
		}
		if !needsReview {
			s.ReviewNote = ""
		}
	})
}

// SetDayNote replaces a day's free-text note.
func (t *Tracker) SetDayNote(ctx context.Context, emp EmployeeID, date Day, note string) (*DailySummary, error) {
	return t.patchDay(ctx, emp, date, func(s *DailySummary) {
		s.Note = note
	})
}

// SetTargetOverride sets or clears a day's manual target override and
// recomputes overtime and the balance chain.
func (t *Tracker) SetTargetOverride(ctx context.Context, emp EmployeeID, date Day, minutes *int) (*DailySummary, error) {
	if minutes != nil && *minutes < 0 {
		return nil, &InvalidInputError{Field: "target_override", Reason: "override cannot be negative"}
	}
	return t.patchDay(ctx, emp, date, func(s *DailySummary) {
		s.TargetOverrideMinutes = minutes
		s.OvertimeMinutes = s.WorkedMinutes - s.EffectiveTarget()
	})
}

// patchDay reconciles the day with a manual-field mutation applied
// before the save, then cascades if overtime changed.
func (t *Tracker) patchDay(ctx context.Context, emp EmployeeID, date Day, mutate func(*DailySummary)) (*DailySummary, error) {
	employee, err := t.requireEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}

	plan, err := t.planReconcile(ctx, employee, []Day{date})
	if err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(emp)
	defer unlock()

	var summary DailySummary
	err = t.store.WithTx(ctx, func(s Store) error {
		summaries, err := t.reconcileAndCascade(ctx, s, employee, plan, mutate)
		if err != nil {
			return err
		}
		summary = summaries[date]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// =============================================================================
// PRESENCE SNAPSHOT - Pure projection, no stored status field
// =============================================================================

// PresenceSnapshot derives each active employee's current abstract
// state from their latest entry of the current local day.
func (t *Tracker) PresenceSnapshot(ctx context.Context) ([]Presence, error) {
	employees, err := t.dir.ActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	var snapshot []Presence
	for _, e := range employees {
		if !e.TimeTrackingEnabled {
			continue
		}
		loc := e.Location()
		today := DayOf(now, loc)
		entries, err := t.store.EntriesInRange(ctx, e.ID, today.Start(loc), today.End(loc))
		if err != nil {
			return nil, err
		}

		p := Presence{EmployeeID: e.ID, State: StateAbsent}
		if len(entries) > 0 {
			SortEntries(entries)
			last := entries[len(entries)-1]
			p.State = nominalPostState(last.Type)
			p.Since = last.Timestamp
			p.LastEntry = &last
		}
		snapshot = append(snapshot, p)
	}
	return snapshot, nil
}

// ExpectedNextFor reports which stamp types are legal for an employee
// right now. Advisory only; stamping never enforces it.
func (t *Tracker) ExpectedNextFor(ctx context.Context, emp EmployeeID) ([]EntryType, error) {
	employee, err := t.requireEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}
	return t.expectedNextFor(ctx, employee, DayOf(t.clock.Now(), employee.Location())), nil
}

func (t *Tracker) expectedNextFor(ctx context.Context, employee *Employee, day Day) []EntryType {
	loc := employee.Location()
	entries, err := t.store.EntriesInRange(ctx, employee.ID, day.Start(loc), day.End(loc))
	if err != nil {
		return nil
	}
	SortEntries(entries)
	return Validate(entries).ExpectedNext
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (t *Tracker) requireEmployee(ctx context.Context, emp EmployeeID) (*Employee, error) {
	e, err := t.dir.Employee(ctx, emp)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("employee %s: %w", emp, ErrEmployeeNotFound)
	}
	return e, nil
}

func (t *Tracker) requireTracked(ctx context.Context, emp EmployeeID) (*Employee, error) {
	e, err := t.requireEmployee(ctx, emp)
	if err != nil {
		return nil, err
	}
	enabled, err := t.dir.IsTimeTrackingEnabled(ctx, emp)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, fmt.Errorf("employee %s: %w", emp, ErrTrackingDisabled)
	}
	return e, nil
}
