/*
reconcile.go - Day reconciliation

PURPOSE:
  Turns one day's entry set plus the employee's time model into a
  DailySummary: matched work/break intervals, worked and break minutes,
  target resolution, missing-entry detection, and auto-completion of
  days left open past the configured cutoff.

ALGORITHM:
  1. Walk the sorted entries with the attendance state machine, using
     the ACTUAL observed transitions. An illegal transition is consumed
     into the running state for the minutes calculation and recorded as
     a warning, never discarded.
  2. breakMinutes = sum of break intervals, workedMinutes = sum of
     present intervals. Each interval floors to the minute.
  3. A shift can run past midnight: when the adjacent day's entries
     show the open interval closing there, the interval is split at the
     day boundary. No time is created or destroyed by the split.
  4. If the final state is present or break and "now" is past the day's
     cutoff instant, synthesize break_end/clock_out entries at the
     cutoff, tagged auto_complete, and force the day into review.
  5. Target comes from the time model's weekday slot; nil means no
     schedule (treated as zero only at the overtime computation).

AUTO-COMPLETE:
  The single most important failure-tolerance feature. The system must
  never leave a day permanently ambiguous, but it must never silently
  fabricate payable time either: every synthesized entry flags the day
  needsReview with a note naming what was inferred and why.

MANUAL FIELDS:
  Note, TargetOverrideMinutes, and the human-controlled NeedsReview
  toggle are preserved verbatim across recomputation. Only derived
  fields are replaced. A new flag-raising event (fresh warning set,
  synthesized entry) re-raises NeedsReview; an unchanged one does not
  override a supervisor who already cleared it.

SEE ALSO:
  - validator.go: The state machine driving the interval walk
  - tracker.go: Persists the summary and the synthesized entries
*/
package attendance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// RECONCILE POLICY - Cutoff is a clock time, not a runtime timeout
// =============================================================================

// ReconcilePolicy carries the policy knobs for reconciliation.
type ReconcilePolicy struct {
	// Wall-clock time of day at which an unfinished day is auto-closed,
	// e.g. 18:00 for the end of the configured work window.
	CutoffHour   int
	CutoffMinute int
}

// DefaultPolicy closes stale days at the end of the calendar day.
func DefaultPolicy() ReconcilePolicy {
	return ReconcilePolicy{CutoffHour: 23, CutoffMinute: 59}
}

// CutoffOn returns the cutoff instant for a given day.
func (p ReconcilePolicy) CutoffOn(d Day, loc *time.Location) time.Time {
	return d.At(p.CutoffHour, p.CutoffMinute, loc)
}

// =============================================================================
// RECONCILE INPUT / RESULT
// =============================================================================

// ReconcileInput bundles everything the reconciler needs. It is pure:
// all collaborator lookups (model, holiday, clock) happen before.
type ReconcileInput struct {
	EmployeeID EmployeeID
	Date       Day
	Entries    []TimeEntry // the day's entries, any order
	Model      *TimeModel  // nil = no schedule at all
	Prior      *DailySummary
	Now        time.Time
	Location   *time.Location
	Policy     ReconcilePolicy

	// Resolved holiday lookup for Date, from the external calendar.
	HolidayName string
	IsHoliday   bool

	// Cross-midnight context. CarryIn is the state the previous local
	// day's entries end in; NextFirst is the next local day's first
	// entry. The zero values mean nothing spills over the boundary.
	CarryIn   AttendanceState
	NextFirst *TimeEntry
}

// ReconcileResult carries the derived summary plus any entries the
// reconciler synthesized. Synthesized entries must be persisted by the
// caller so the next reconciliation sees a closed day.
type ReconcileResult struct {
	Summary     DailySummary
	Synthesized []TimeEntry
}

// =============================================================================
// RECONCILE DAY
// =============================================================================

// ReconcileDay derives a DailySummary from one day's entries.
func ReconcileDay(in ReconcileInput) ReconcileResult {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	entries := make([]TimeEntry, len(in.Entries))
	copy(entries, in.Entries)
	SortEntries(entries)

	// A carry-in state applies only when this day's first entry legally
	// continues it; otherwise the previous day's open interval is that
	// day's problem, not this one's.
	carryIn := in.CarryIn
	if carryIn == "" {
		carryIn = StateAbsent
	}
	if carryIn != StateAbsent && (len(entries) == 0 || !legalTransition(carryIn, entries[0].Type)) {
		carryIn = StateAbsent
	}

	validation := ValidateFrom(carryIn, entries)

	worked, brk, intervals, state, openSince := partition(entries, carryIn, in.Date.Start(loc))

	target := in.Model.TargetFor(in.Date.Weekday())
	noShow := len(entries) == 0 && target != nil && *target > 0 && !in.IsHoliday

	// A day whose open interval closes on the next day is split at the
	// boundary, not auto-completed: its share runs to midnight.
	if state != StateAbsent && in.NextFirst != nil && legalTransition(state, in.NextFirst.Type) {
		dayEnd := in.Date.End(loc)
		switch state {
		case StateBreak:
			brk += wholeMinutes(openSince, dayEnd)
		case StatePresent:
			worked += wholeMinutes(openSince, dayEnd)
			intervals++
		}
		state = StateAbsent
	}

	// Missing entries are judged BEFORE auto-completion: an interval
	// left open, or a no-show on a scheduled day.
	hasMissing := state != StateAbsent || noShow

	var synthesized []TimeEntry
	if state != StateAbsent {
		cutoff := in.Policy.CutoffOn(in.Date, loc)
		if in.Now.After(cutoff) {
			closeAt := cutoff
			if !openSince.IsZero() && openSince.After(closeAt) {
				// Entries can land after the cutoff; never close an
				// interval before it was opened.
				closeAt = openSince
			}
			synthesized = synthesize(in.EmployeeID, state, closeAt)
			switch state {
			case StateBreak:
				brk += wholeMinutes(openSince, closeAt)
			case StatePresent:
				worked += wholeMinutes(openSince, closeAt)
				intervals++
			}
			state = StateAbsent
		}
	}

	summary := DailySummary{
		EmployeeID:        in.EmployeeID,
		Date:              in.Date,
		TargetMinutes:     target,
		WorkedMinutes:     worked,
		BreakMinutes:      brk,
		HasMissingEntries: hasMissing,
		Warnings:          validation.Warnings,
		ComputedAt:        in.Now,
	}

	// A holiday suspends the schedule: the model's expectation does not
	// apply, so no negative overtime accrues for staying home.
	if in.IsHoliday {
		summary.TargetMinutes = nil
		summary.HolidayName = in.HolidayName
		if summary.HolidayName == "" {
			summary.HolidayName = "holiday"
		}
	}

	applyBreakMinimum(&summary, in.Model, intervals)
	carryManualFields(&summary, in.Prior)

	if len(synthesized) > 0 {
		summary.NeedsReview = true
		note := fmt.Sprintf("auto-completed: synthesized %s at %s because the day was left %s past the cutoff",
			describeSynth(synthesized), synthesized[len(synthesized)-1].Timestamp.In(loc).Format("15:04"),
			stateBeforeSynth(synthesized))
		summary.ReviewNote = appendNote(summary.ReviewNote, note)
	}
	if len(validation.Warnings) > 0 && warningsChanged(in.Prior, validation.Warnings) {
		summary.NeedsReview = true
	}

	summary.Status = deriveStatus(summary, len(entries), intervals, state)
	summary.OvertimeMinutes = summary.WorkedMinutes - summary.EffectiveTarget()

	return ReconcileResult{Summary: summary, Synthesized: synthesized}
}

// partition walks the sorted entries and accumulates present/break
// interval minutes, starting from the carried-in state with its
// interval open since startAt. Illegal transitions are consumed into
// the running state, exactly as the validator simulates them.
func partition(sorted []TimeEntry, start AttendanceState, startAt time.Time) (worked, brk, workIntervals int, final AttendanceState, openSince time.Time) {
	state := start
	var openedAt time.Time
	if state == StatePresent || state == StateBreak {
		openedAt = startAt
	}

	for _, e := range sorted {
		next := nominalPostState(e.Type)
		if next == state {
			continue
		}

		switch state {
		case StatePresent:
			worked += wholeMinutes(openedAt, e.Timestamp)
			workIntervals++
		case StateBreak:
			brk += wholeMinutes(openedAt, e.Timestamp)
		}

		if next == StatePresent || next == StateBreak {
			openedAt = e.Timestamp
		} else {
			openedAt = time.Time{}
		}
		state = next
	}

	return worked, brk, workIntervals, state, openedAt
}

func wholeMinutes(from, to time.Time) int {
	if from.IsZero() || to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Minutes()) // floor to the minute
}

// synthesize builds the closing entries for an auto-completed day.
func synthesize(emp EmployeeID, state AttendanceState, at time.Time) []TimeEntry {
	var out []TimeEntry
	if state == StateBreak {
		out = append(out, TimeEntry{
			ID:         EntryID(uuid.NewString()),
			EmployeeID: emp,
			Type:       EntryBreakEnd,
			Timestamp:  at,
			Source:     SourceAutoComplete,
		})
	}
	out = append(out, TimeEntry{
		ID:         EntryID(uuid.NewString()),
		EmployeeID: emp,
		Type:       EntryClockOut,
		Timestamp:  at,
		Source:     SourceAutoComplete,
	})
	return out
}

func describeSynth(synth []TimeEntry) string {
	if len(synth) == 2 {
		return "break_end and clock_out"
	}
	return "clock_out"
}

func stateBeforeSynth(synth []TimeEntry) AttendanceState {
	if len(synth) == 2 {
		return StateBreak
	}
	return StatePresent
}

// applyBreakMinimum enforces the model's minimum break: when recorded
// breaks fall short on a day with worked time, the shortfall is moved
// from worked to break minutes.
func applyBreakMinimum(s *DailySummary, model *TimeModel, workIntervals int) {
	if model == nil || model.MinBreakMinutes <= 0 || workIntervals == 0 {
		return
	}
	if s.BreakMinutes >= model.MinBreakMinutes {
		return
	}
	shortfall := model.MinBreakMinutes - s.BreakMinutes
	if shortfall > s.WorkedMinutes {
		shortfall = s.WorkedMinutes
	}
	s.WorkedMinutes -= shortfall
	s.BreakMinutes += shortfall
}

// carryManualFields preserves human-authored fields verbatim.
func carryManualFields(s *DailySummary, prior *DailySummary) {
	if prior == nil {
		return
	}
	s.Note = prior.Note
	s.ReviewNote = prior.ReviewNote
	s.NeedsReview = prior.NeedsReview
	s.TargetOverrideMinutes = prior.TargetOverrideMinutes
}

// warningsChanged reports whether the warning set differs from what the
// prior summary already carried. A supervisor who cleared NeedsReview
// stays cleared unless something new goes wrong.
func warningsChanged(prior *DailySummary, warnings []SequenceWarning) bool {
	if prior == nil {
		return true
	}
	if len(prior.Warnings) != len(warnings) {
		return true
	}
	seen := make(map[EntryID]EntryType, len(prior.Warnings))
	for _, w := range prior.Warnings {
		seen[w.EntryID] = w.Got
	}
	for _, w := range warnings {
		if got, ok := seen[w.EntryID]; !ok || got != w.Got {
			return true
		}
	}
	return false
}

func deriveStatus(s DailySummary, entryCount, workIntervals int, finalState AttendanceState) DayStatus {
	switch {
	case s.HolidayName != "":
		return StatusHoliday
	case finalState == StateAbsent && workIntervals > 0:
		return StatusComplete
	case entryCount == 0 && s.TargetMinutes != nil && *s.TargetMinutes > 0:
		return StatusAbsent
	default:
		return StatusOpen
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
