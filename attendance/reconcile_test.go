package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func fullTimeModel() *attendance.TimeModel {
	eight := 480
	m := &attendance.TimeModel{ID: "ft", Name: "Full time", MinBreakMinutes: 30}
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		target := eight
		m.WeekdayTargets[wd] = &target
	}
	return m
}

// monday is a scheduled workday under fullTimeModel.
var monday = attendance.NewDay(2025, time.March, 10)

func reconcileInput(entries []attendance.TimeEntry, now time.Time) attendance.ReconcileInput {
	return attendance.ReconcileInput{
		EmployeeID: "emp-1",
		Date:       monday,
		Entries:    entries,
		Model:      fullTimeModel(),
		Now:        now,
		Location:   time.UTC,
		Policy:     attendance.DefaultPolicy(),
	}
}

// =============================================================================
// MINUTE ACCOUNTING
// =============================================================================

func TestReconcileDay_CompleteDay(t *testing.T) {
	// GIVEN: in@9:00, break 12:00-12:30, out@17:30 on a 480-minute day
	// WHEN: Reconciling after the day ended
	// THEN: 480 worked, 30 break, zero overtime, status complete

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
		entry("e3", attendance.EntryBreakEnd, 12, 30),
		entry("e4", attendance.EntryClockOut, 17, 30),
	}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))

	sum := res.Summary
	assert.Equal(t, 480, sum.WorkedMinutes)
	assert.Equal(t, 30, sum.BreakMinutes)
	assert.Equal(t, 0, sum.OvertimeMinutes)
	assert.Equal(t, attendance.StatusComplete, sum.Status)
	assert.False(t, sum.HasMissingEntries)
	assert.False(t, sum.NeedsReview)
	assert.Empty(t, res.Synthesized)
}

func TestReconcileDay_Overtime(t *testing.T) {
	// GIVEN: 9 hours worked against an 8 hour target (break taken)
	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 8, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
		entry("e3", attendance.EntryBreakEnd, 12, 30),
		entry("e4", attendance.EntryClockOut, 17, 30),
	}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))

	assert.Equal(t, 540, res.Summary.WorkedMinutes)
	assert.Equal(t, 60, res.Summary.OvertimeMinutes)
}

func TestReconcileDay_FloorsToWholeMinutes(t *testing.T) {
	// GIVEN: An interval of 29 minutes 45 seconds
	// WHEN: Reconciling
	// THEN: 29 worked minutes; partial minutes never round up

	in := entry("e1", attendance.EntryClockIn, 9, 0)
	out := entry("e2", attendance.EntryClockOut, 9, 29)
	out.Timestamp = out.Timestamp.Add(45 * time.Second)

	input := reconcileInput([]attendance.TimeEntry{in, out}, day.Add(20*time.Hour))
	input.Model = nil // no break minimum in the way

	res := attendance.ReconcileDay(input)

	assert.Equal(t, 29, res.Summary.WorkedMinutes)
}

func TestReconcileDay_UnsortedInputIsSorted(t *testing.T) {
	entries := []attendance.TimeEntry{
		entry("e4", attendance.EntryClockOut, 17, 30),
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e3", attendance.EntryBreakEnd, 12, 30),
		entry("e2", attendance.EntryBreakStart, 12, 0),
	}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))

	assert.Equal(t, 480, res.Summary.WorkedMinutes)
	assert.Empty(t, res.Summary.Warnings)
}

// =============================================================================
// NO-SHOW AND OPEN DAYS
// =============================================================================

func TestReconcileDay_NoShow(t *testing.T) {
	// GIVEN: A scheduled day with no entries at all
	// WHEN: Reconciling
	// THEN: Status absent, flagged, full negative overtime

	res := attendance.ReconcileDay(reconcileInput(nil, day.Add(25*time.Hour)))

	sum := res.Summary
	assert.Equal(t, attendance.StatusAbsent, sum.Status)
	assert.True(t, sum.HasMissingEntries)
	assert.Equal(t, -480, sum.OvertimeMinutes)
	assert.Equal(t, 0, sum.WorkedMinutes)
}

func TestReconcileDay_UnscheduledDayNoEntries(t *testing.T) {
	// GIVEN: No entries on a day the model has no target for
	input := reconcileInput(nil, day.Add(25*time.Hour))
	input.Date = attendance.NewDay(2025, time.March, 9) // Sunday

	res := attendance.ReconcileDay(input)

	assert.Equal(t, 0, res.Summary.OvertimeMinutes)
	assert.False(t, res.Summary.HasMissingEntries)
}

func TestReconcileDay_OpenDayBeforeCutoff_StaysOpen(t *testing.T) {
	// GIVEN: Clocked in, still during the day
	// WHEN: Reconciling at 15:00
	// THEN: Open, flagged missing, nothing synthesized

	entries := []attendance.TimeEntry{entry("e1", attendance.EntryClockIn, 9, 0)}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(15*time.Hour)))

	assert.Equal(t, attendance.StatusOpen, res.Summary.Status)
	assert.True(t, res.Summary.HasMissingEntries)
	assert.Empty(t, res.Synthesized)
}

// =============================================================================
// AUTO-COMPLETE
// =============================================================================

func TestReconcileDay_AutoCompletePresent(t *testing.T) {
	// GIVEN: Clocked in at 9:00, never out; now is past the cutoff
	// WHEN: Reconciling
	// THEN: A clock_out is synthesized at the cutoff, the day closes,
	//       stays flagged as missing, and needs review

	entries := []attendance.TimeEntry{entry("e1", attendance.EntryClockIn, 9, 0)}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(26*time.Hour)))

	require.Len(t, res.Synthesized, 1)
	synth := res.Synthesized[0]
	assert.Equal(t, attendance.EntryClockOut, synth.Type)
	assert.Equal(t, attendance.SourceAutoComplete, synth.Source)
	assert.Equal(t, day.Add(23*time.Hour+59*time.Minute), synth.Timestamp)

	sum := res.Summary
	assert.Equal(t, attendance.StatusComplete, sum.Status)
	assert.True(t, sum.HasMissingEntries, "auto-completion must not hide the gap")
	assert.True(t, sum.NeedsReview)
	assert.Contains(t, sum.ReviewNote, "auto-completed")
	// 9:00 to 23:59 = 899 minutes, minus 30 minimum break
	assert.Equal(t, 869, sum.WorkedMinutes)
	assert.Equal(t, 30, sum.BreakMinutes)
}

func TestReconcileDay_AutoCompleteOnBreak(t *testing.T) {
	// GIVEN: The day ends while on break
	// WHEN: Reconciling past the cutoff
	// THEN: break_end AND clock_out are synthesized; the open break
	//       counts as break, not work

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
	}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(26*time.Hour)))

	require.Len(t, res.Synthesized, 2)
	assert.Equal(t, attendance.EntryBreakEnd, res.Synthesized[0].Type)
	assert.Equal(t, attendance.EntryClockOut, res.Synthesized[1].Type)

	assert.Equal(t, 180, res.Summary.WorkedMinutes) // 9:00-12:00
	assert.Equal(t, 719, res.Summary.BreakMinutes)  // 12:00-23:59
}

func TestReconcileDay_EntryAfterCutoff_NeverClosesBeforeOpen(t *testing.T) {
	// GIVEN: A correction placed the clock_in AFTER the cutoff instant
	// WHEN: Reconciling past midnight
	// THEN: The synthesized close clamps to the open instant; no
	//       negative interval

	late := entry("e1", attendance.EntryClockIn, 23, 59)
	late.Timestamp = late.Timestamp.Add(30 * time.Second)

	res := attendance.ReconcileDay(reconcileInput([]attendance.TimeEntry{late}, day.Add(26*time.Hour)))

	require.Len(t, res.Synthesized, 1)
	assert.False(t, res.Synthesized[0].Timestamp.Before(late.Timestamp))
	assert.GreaterOrEqual(t, res.Summary.WorkedMinutes, 0)
}

// =============================================================================
// MIDNIGHT SPILLOVER
// =============================================================================

func TestReconcileDay_OpenIntervalClosingNextDay_SplitsAtMidnight(t *testing.T) {
	// GIVEN: clock_in at 22:00 whose clock_out sits on the next day
	// WHEN: Reconciling past the cutoff
	// THEN: The day takes its share up to midnight; nothing is
	//       synthesized and the gap is not flagged

	nextOut := entry("n1", attendance.EntryClockOut, 2, 0)
	nextOut.Timestamp = nextOut.Timestamp.Add(24 * time.Hour)

	input := reconcileInput([]attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 22, 0),
	}, day.Add(30*time.Hour))
	input.NextFirst = &nextOut

	res := attendance.ReconcileDay(input)

	sum := res.Summary
	assert.Empty(t, res.Synthesized)
	assert.False(t, sum.HasMissingEntries)
	assert.False(t, sum.NeedsReview)
	assert.Equal(t, attendance.StatusComplete, sum.Status)
	// 22:00-24:00 = 120, 30 of which the break minimum claims
	assert.Equal(t, 90, sum.WorkedMinutes)
	assert.Equal(t, 30, sum.BreakMinutes)
}

func TestReconcileDay_CarryInFromPreviousDay_CountsFromMidnight(t *testing.T) {
	// GIVEN: The previous day ended still clocked in; this day holds
	//        only the closing clock_out at 2:00
	// WHEN: Reconciling with the carried-in state
	// THEN: 0:00-2:00 counts here and the leading clock_out is legal

	input := reconcileInput([]attendance.TimeEntry{
		entry("e1", attendance.EntryClockOut, 2, 0),
	}, day.Add(30*time.Hour))
	input.CarryIn = attendance.StatePresent

	res := attendance.ReconcileDay(input)

	sum := res.Summary
	assert.Empty(t, sum.Warnings)
	assert.Empty(t, res.Synthesized)
	assert.Equal(t, 90, sum.WorkedMinutes) // 120 minus the break minimum
	assert.Equal(t, 30, sum.BreakMinutes)
	assert.Equal(t, attendance.StatusComplete, sum.Status)
}

func TestReconcileDay_CarryInIgnoredWhenDayStartsFresh(t *testing.T) {
	// GIVEN: The previous day was left open, but this day opens with a
	//        normal clock_in
	// WHEN: Reconciling with the carried-in state
	// THEN: The carry-in does not apply; the day counts from clock_in

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockOut, 17, 30),
	}
	input := reconcileInput(entries, day.Add(20*time.Hour))
	input.CarryIn = attendance.StatePresent

	res := attendance.ReconcileDay(input)

	assert.Equal(t, 480, res.Summary.WorkedMinutes)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestReconcileDay_Holiday_SuspendsTarget(t *testing.T) {
	// GIVEN: A holiday on a scheduled weekday, no entries
	// WHEN: Reconciling
	// THEN: No target applies, no negative overtime, not flagged

	input := reconcileInput(nil, day.Add(25*time.Hour))
	input.IsHoliday = true
	input.HolidayName = "Commonwealth Day"

	res := attendance.ReconcileDay(input)

	sum := res.Summary
	assert.Nil(t, sum.TargetMinutes)
	assert.Equal(t, 0, sum.OvertimeMinutes)
	assert.Equal(t, attendance.StatusHoliday, sum.Status)
	assert.Equal(t, "Commonwealth Day", sum.HolidayName)
	assert.False(t, sum.HasMissingEntries)
}

func TestReconcileDay_WorkedOnHoliday_AllOvertime(t *testing.T) {
	// GIVEN: Four hours worked on a holiday
	// WHEN: Reconciling
	// THEN: All worked time is overtime (no target to offset it)

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockOut, 13, 30),
	}
	input := reconcileInput(entries, day.Add(25*time.Hour))
	input.IsHoliday = true
	input.HolidayName = "Commonwealth Day"

	res := attendance.ReconcileDay(input)

	// 270 recorded minus the 30 minute break minimum
	assert.Equal(t, 240, res.Summary.WorkedMinutes)
	assert.Equal(t, 240, res.Summary.OvertimeMinutes)
}

// =============================================================================
// BREAK MINIMUM
// =============================================================================

func TestReconcileDay_BreakMinimum_MovesShortfall(t *testing.T) {
	// GIVEN: 8.5 hours straight through with no recorded break and a
	//        30 minute minimum
	// WHEN: Reconciling
	// THEN: 30 minutes move from worked to break

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockOut, 17, 30),
	}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))

	assert.Equal(t, 480, res.Summary.WorkedMinutes)
	assert.Equal(t, 30, res.Summary.BreakMinutes)
}

func TestReconcileDay_BreakMinimumSatisfied_NoChange(t *testing.T) {
	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
		entry("e3", attendance.EntryBreakEnd, 12, 45),
		entry("e4", attendance.EntryClockOut, 17, 45),
	}

	res := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))

	assert.Equal(t, 480, res.Summary.WorkedMinutes)
	assert.Equal(t, 45, res.Summary.BreakMinutes)
}

// =============================================================================
// MANUAL FIELD PRESERVATION
// =============================================================================

func TestReconcileDay_ManualFieldsSurviveRecompute(t *testing.T) {
	// GIVEN: A prior summary carrying a note and a target override
	// WHEN: Reconciling again
	// THEN: Manual fields carry over verbatim; override wins for overtime

	override := 240
	prior := &attendance.DailySummary{
		Note:                  "half day approved",
		TargetOverrideMinutes: &override,
	}

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryBreakStart, 12, 0),
		entry("e3", attendance.EntryBreakEnd, 12, 30),
		entry("e4", attendance.EntryClockOut, 13, 30),
	}
	input := reconcileInput(entries, day.Add(20*time.Hour))
	input.Prior = prior

	res := attendance.ReconcileDay(input)

	sum := res.Summary
	assert.Equal(t, "half day approved", sum.Note)
	assert.Equal(t, &override, sum.TargetOverrideMinutes)
	assert.Equal(t, 240, sum.WorkedMinutes)
	assert.Equal(t, 0, sum.OvertimeMinutes, "override replaces the model target")
}

func TestReconcileDay_ClearedReviewStaysCleared(t *testing.T) {
	// GIVEN: A day with an unchanged warning set whose NeedsReview a
	//        supervisor already cleared
	// WHEN: Reconciling again with identical entries
	// THEN: The flag stays cleared

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockIn, 13, 0), // warning
		entry("e3", attendance.EntryClockOut, 17, 0),
	}

	first := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))
	require.True(t, first.Summary.NeedsReview)

	cleared := first.Summary
	cleared.NeedsReview = false

	input := reconcileInput(entries, day.Add(21*time.Hour))
	input.Prior = &cleared

	second := attendance.ReconcileDay(input)

	assert.False(t, second.Summary.NeedsReview)
	assert.Len(t, second.Summary.Warnings, 1, "warnings still reported")
}

func TestReconcileDay_NewWarningReraisesReview(t *testing.T) {
	// GIVEN: A cleared day
	// WHEN: A new out-of-order entry appears
	// THEN: NeedsReview comes back

	entries := []attendance.TimeEntry{
		entry("e1", attendance.EntryClockIn, 9, 0),
		entry("e2", attendance.EntryClockOut, 17, 0),
	}
	first := attendance.ReconcileDay(reconcileInput(entries, day.Add(20*time.Hour)))
	cleared := first.Summary
	cleared.NeedsReview = false

	withBad := append(entries, entry("e3", attendance.EntryBreakEnd, 18, 0))
	input := reconcileInput(withBad, day.Add(21*time.Hour))
	input.Prior = &cleared

	second := attendance.ReconcileDay(input)

	assert.True(t, second.Summary.NeedsReview)
}
