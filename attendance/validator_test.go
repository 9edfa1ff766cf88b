package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func entry(id string, typ attendance.EntryType, hour, minute int) attendance.TimeEntry {
	ts := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return attendance.TimeEntry{
		ID:         attendance.EntryID(id),
		EmployeeID: "emp-1",
		Type:       typ,
		Timestamp:  ts,
		Source:     attendance.SourceTerminal,
		CreatedAt:  ts,
	}
}

// =============================================================================
// LEGAL SEQUENCES
// =============================================================================

func TestValidate_FullDay_Valid(t *testing.T) {
	// GIVEN: A complete day: in, break, back, out
	// WHEN: Validating
	// THEN: No warnings, final state absent

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
		entry("e3", attendance.EntryBreakEnd, 12, 30),
		entry("e4", attendance.EntryClockOut, 17, 30),
	}

	res := attendance.Validate(entries)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, attendance.StateAbsent, res.FinalState)
	assert.Equal(t, []attendance.EntryType{attendance.EntryClockIn}, res.ExpectedNext)
}

func TestValidate_OpenDay_StillValid(t *testing.T) {
	// GIVEN: A day that ends while still clocked in
	// WHEN: Validating
	// THEN: Valid (the reconciler handles open days), final state present

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
	}

	res := attendance.Validate(entries)

	assert.True(t, res.Valid)
	assert.Equal(t, attendance.StatePresent, res.FinalState)
	assert.ElementsMatch(t,
		[]attendance.EntryType{attendance.EntryClockOut, attendance.EntryBreakStart},
		res.ExpectedNext)
}

func TestValidate_EmptyDay_Valid(t *testing.T) {
	res := attendance.Validate(nil)

	assert.True(t, res.Valid)
	assert.Equal(t, attendance.StateAbsent, res.FinalState)
}

// =============================================================================
// ILLEGAL TRANSITIONS PRODUCE WARNINGS, NEVER ERRORS
// =============================================================================

func TestValidate_DoubleClockIn_Warns(t *testing.T) {
	// GIVEN: Two clock_ins in a row (forgotten clock_out yesterday style)
	// WHEN: Validating
	// THEN: One warning on the second entry; simulation continues present

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockIn, 13, 0),
	}

	res := attendance.Validate(entries)

	assert.False(t, res.Valid)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, attendance.EntryID("e2"), res.Warnings[0].EntryID)
	assert.Equal(t, attendance.EntryClockIn, res.Warnings[0].Got)
	assert.Equal(t, attendance.StatePresent, res.FinalState)
}

func TestValidate_BreakEndWhileAbsent_WarnsAndContinues(t *testing.T) {
	// GIVEN: A break_end with no preceding break_start
	// WHEN: Validating
	// THEN: Warned, and the simulation lands in present (break_end's
	//       nominal post-state) so the following clock_out is clean

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryBreakEnd, 12, 30),
		entry("e2", attendance.EntryClockOut, 17, 0),
	}

	res := attendance.Validate(entries)

	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, attendance.EntryID("e1"), res.Warnings[0].EntryID)
	assert.Equal(t, attendance.StateAbsent, res.FinalState)
}

func TestValidate_ClockOutWhileOnBreak_Warns(t *testing.T) {
	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
		entry("e3", attendance.EntryClockOut, 17, 0),
	}

	res := attendance.Validate(entries)

	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, attendance.EntryID("e3"), res.Warnings[0].EntryID)
	assert.Equal(t, attendance.StateAbsent, res.FinalState)
}

// =============================================================================
// PREVIEW
// =============================================================================

func TestPreviewEdit_FixingTypeClearsWarning(t *testing.T) {
	// GIVEN: A day where a clock_out was mis-stamped as clock_in
	// WHEN: Previewing an edit of the bad entry to clock_out
	// THEN: The preview is clean, the original list untouched

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockIn, 17, 0), // should be clock_out
	}

	res := attendance.PreviewEdit(entries, "e2", attendance.EntryClockOut,
		day.Add(17*time.Hour))

	assert.True(t, res.Valid)
	assert.Equal(t, attendance.StateAbsent, res.FinalState)
	// input list untouched
	assert.Equal(t, attendance.EntryClockIn, entries[1].Type)
}

func TestPreviewEdit_MovingTimestampReorders(t *testing.T) {
	// GIVEN: in@9, out@17
	// WHEN: Previewing moving the clock_out before the clock_in
	// THEN: The preview warns; order is by timestamp, not input order

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockOut, 17, 0),
	}

	res := attendance.PreviewEdit(entries, "e2", attendance.EntryClockOut,
		day.Add(8*time.Hour))

	assert.False(t, res.Valid)
}

func TestPreviewInsert_MissingClockOut(t *testing.T) {
	// GIVEN: An open day, in@9
	// WHEN: Previewing inserting the forgotten clock_out@17
	// THEN: Clean

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
	}

	res := attendance.PreviewInsert(entries, entry("e2", attendance.EntryClockOut, 17, 0))

	assert.True(t, res.Valid)
	assert.Equal(t, attendance.StateAbsent, res.FinalState)
}

// =============================================================================
// ORDERING
// =============================================================================

func TestSortEntries_TimestampThenCreatedAt(t *testing.T) {
	// GIVEN: Two entries at the same instant where one is a later
	//        correction
	// WHEN: Sorting
	// THEN: Creation time breaks the tie deterministically

	a := entry("a", attendance.EntryClockIn, 9, 0)
	b := entry("b", attendance.EntryClockOut, 9, 0)
	b.CreatedAt = a.CreatedAt.Add(time.Hour) // corrected later

	entries := []attendance.TimeEntry{b, a}
	attendance.SortEntries(entries)

	assert.Equal(t, attendance.EntryID("a"), entries[0].ID)
	assert.Equal(t, attendance.EntryID("b"), entries[1].ID)
}

func TestSortEntries_SameInstantPair_MachineOrder(t *testing.T) {
	// GIVEN: break_end and clock_out sharing timestamp AND creation time,
	//        the shape an auto-completed break day persists
	// WHEN: Sorting from either input order
	// THEN: break_end replays first, so the pair stays a legal trace

	out := entry("a-out", attendance.EntryClockOut, 23, 59)
	end := entry("z-end", attendance.EntryBreakEnd, 23, 59)

	forward := []attendance.TimeEntry{end, out}
	attendance.SortEntries(forward)
	reversed := []attendance.TimeEntry{out, end}
	attendance.SortEntries(reversed)

	assert.Equal(t, attendance.EntryBreakEnd, forward[0].Type)
	assert.Equal(t, attendance.EntryClockOut, forward[1].Type)
	assert.Equal(t, attendance.EntryBreakEnd, reversed[0].Type)
	assert.Equal(t, attendance.EntryClockOut, reversed[1].Type)
}
