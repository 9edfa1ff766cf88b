/*
validator.go - Attendance state-machine validation

PURPOSE:
  Verifies that one employee/day's chronologically ordered entries form
  a legal trace of the abstract attendance state machine:

    absent --clock_in-->   present
    present --clock_out--> absent
    present --break_start--> break
    break  --break_end-->  present

  Illegal transitions produce warnings, never failures. The simulation
  continues from the RECEIVED type's nominal post-state, so later
  entries are still checked against a plausible trajectory.

WHY WARNINGS, NOT ERRORS:
  Stamping must never block an employee from recording reality. A
  forgotten clock_out followed by a fresh clock_in is a fact to record
  and flag, not a request to reject.

PREVIEW:
  PreviewEdit re-runs validation against a hypothetically edited list
  (one entry's type/timestamp substituted) so a caller can be shown the
  resulting warnings BEFORE committing the edit. This is a required
  capability of the edit pipeline, not a convenience.

SEE ALSO:
  - reconcile.go: Uses the same machine for interval partitioning
  - tracker.go: Calls PreviewEdit before committing edits
*/
package attendance

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// ATTENDANCE STATE MACHINE
// =============================================================================

// AttendanceState is the abstract state of an employee within a day.
type AttendanceState string

const (
	StateAbsent  AttendanceState = "absent"
	StatePresent AttendanceState = "present"
	StateBreak   AttendanceState = "break"
)

// ExpectedNext returns the entry types legal from a state, in stable order.
func ExpectedNext(s AttendanceState) []EntryType {
	switch s {
	case StateAbsent:
		return []EntryType{EntryClockIn}
	case StatePresent:
		return []EntryType{EntryClockOut, EntryBreakStart}
	case StateBreak:
		return []EntryType{EntryBreakEnd}
	default:
		return nil
	}
}

// nominalPostState is the state an entry type lands in, regardless of
// the state it was received from. Used to keep the simulation on a
// plausible trajectory after an illegal transition.
func nominalPostState(t EntryType) AttendanceState {
	switch t {
	case EntryClockIn, EntryBreakEnd:
		return StatePresent
	case EntryBreakStart:
		return StateBreak
	case EntryClockOut:
		return StateAbsent
	default:
		return StateAbsent
	}
}

func legalTransition(from AttendanceState, t EntryType) bool {
	for _, allowed := range ExpectedNext(from) {
		if allowed == t {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// SequenceWarning names one out-of-order entry. Warnings are data: they
// are surfaced to the caller and persisted on the day's summary, and
// they never abort processing.
type SequenceWarning struct {
	EntryID EntryID
	At      time.Time
	Got     EntryType
	Message string
}

// ValidationResult is the outcome of validating one day's entries.
type ValidationResult struct {
	Valid    bool
	Warnings []SequenceWarning

	// ExpectedNext lists the entry types legal from the final state.
	// A day ending present or break is still valid; it will be
	// auto-closed by the reconciler if it stays open past the cutoff.
	ExpectedNext []EntryType

	FinalState AttendanceState
}

// =============================================================================
// VALIDATE - Pure function over a sorted entry list
// =============================================================================

// Validate checks a chronologically ordered entry list for one
// employee/day against the attendance state machine, starting absent.
func Validate(sorted []TimeEntry) ValidationResult {
	return ValidateFrom(StateAbsent, sorted)
}

// ValidateFrom is Validate with an explicit starting state, for a day
// that continues a shift still open at the previous midnight.
func ValidateFrom(start AttendanceState, sorted []TimeEntry) ValidationResult {
	state := start
	var warnings []SequenceWarning

	for _, e := range sorted {
		if !legalTransition(state, e.Type) {
			warnings = append(warnings, SequenceWarning{
				EntryID: e.ID,
				At:      e.Timestamp,
				Got:     e.Type,
				Message: fmt.Sprintf("unexpected %s at %s while %s; expected %s",
					e.Type, e.Timestamp.Format(time.RFC3339), state,
					joinTypes(ExpectedNext(state))),
			})
		}
		// Continue from the received type's nominal post-state so later
		// entries are checked against a plausible trajectory.
		state = nominalPostState(e.Type)
	}

	return ValidationResult{
		Valid:        len(warnings) == 0,
		Warnings:     warnings,
		ExpectedNext: ExpectedNext(state),
		FinalState:   state,
	}
}

// PreviewEdit validates the day as it would look after substituting one
// entry's type and timestamp. The input list is not modified.
func PreviewEdit(entries []TimeEntry, id EntryID, newType EntryType, newTimestamp time.Time) ValidationResult {
	edited := make([]TimeEntry, len(entries))
	copy(edited, entries)
	for i := range edited {
		if edited[i].ID == id {
			edited[i].Type = newType
			edited[i].Timestamp = newTimestamp
		}
	}
	SortEntries(edited)
	return Validate(edited)
}

// PreviewInsert validates the day as it would look with one additional
// entry. Used to surface warnings when submitting corrections.
func PreviewInsert(entries []TimeEntry, extra TimeEntry) ValidationResult {
	edited := make([]TimeEntry, 0, len(entries)+1)
	edited = append(edited, entries...)
	edited = append(edited, extra)
	SortEntries(edited)
	return Validate(edited)
}

// SortEntries orders entries chronologically, with creation time as a
// tiebreaker so corrections sort deterministically. Entries sharing
// both instants (an auto-completed break day closes with break_end and
// clock_out at the same moment) fall back to the state-machine rank,
// then the ID, so every entry set has exactly one replay order.
func SortEntries(entries []TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if typeRank(a.Type) != typeRank(b.Type) {
			return typeRank(a.Type) < typeRank(b.Type)
		}
		return a.ID < b.ID
	})
}

// typeRank orders same-instant entries the way the machine walks them:
// openings before closings.
func typeRank(t EntryType) int {
	switch t {
	case EntryClockIn:
		return 0
	case EntryBreakEnd:
		return 1
	case EntryBreakStart:
		return 2
	case EntryClockOut:
		return 3
	default:
		return 4
	}
}

func joinTypes(types []EntryType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, " or ")
}
