package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var (
	day9  = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	day17 = time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)
)

func entry(id string, typ attendance.EntryType, ts time.Time) attendance.TimeEntry {
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
// ENTRIES
// =============================================================================

func TestStore_EntryRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := entry("e1", attendance.EntryClockOut, day17)
	e.Source = attendance.SourceAdminCorrection
	e.IsCorrection = true
	e.CorrectionReason = "terminal was down"
	e.CorrectedBy = "admin-1"
	require.NoError(t, s.AppendEntry(ctx, e))

	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e, *got)
}

func TestStore_GetEntry_Missing(t *testing.T) {
	s := newStore(t)

	got, err := s.GetEntry(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UpdateEntry(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.AppendEntry(ctx, entry("e1", attendance.EntryClockIn, day9)))

	edited := entry("e1", attendance.EntryClockOut, day17)
	edited.IsCorrection = true
	edited.CorrectionReason = "mis-stamped"
	edited.CorrectedBy = "admin-1"
	require.NoError(t, s.UpdateEntry(ctx, edited))

	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.EntryClockOut, got.Type)
	assert.Equal(t, day17, got.Timestamp)
	assert.True(t, got.IsCorrection)
}

func TestStore_UpdateEntry_Missing(t *testing.T) {
	s := newStore(t)

	err := s.UpdateEntry(context.Background(), entry("ghost", attendance.EntryClockIn, day9))

	assert.ErrorIs(t, err, attendance.ErrEntryNotFound)
}

func TestStore_DeleteEntry(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.AppendEntry(ctx, entry("e1", attendance.EntryClockIn, day9)))

	require.NoError(t, s.DeleteEntry(ctx, "e1"))

	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.DeleteEntry(ctx, "e1"), attendance.ErrEntryNotFound)
}

func TestStore_EntriesInRange(t *testing.T) {
	// GIVEN: Entries on both sides of a day boundary
	// WHEN: Querying one day [start, end)
	// THEN: Only that day's entries return, ordered by timestamp

	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.AppendEntry(ctx, entry("e2", attendance.EntryClockOut, day17)))
	require.NoError(t, s.AppendEntry(ctx, entry("e1", attendance.EntryClockIn, day9)))
	require.NoError(t, s.AppendEntry(ctx, entry("e0", attendance.EntryClockIn, day9.AddDate(0, 0, -1))))
	require.NoError(t, s.AppendEntry(ctx, entry("e3", attendance.EntryClockIn, day9.AddDate(0, 0, 1))))

	d := attendance.NewDay(2025, time.March, 10)
	got, err := s.EntriesInRange(ctx, "emp-1", d.Start(time.UTC), d.End(time.UTC))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, attendance.EntryID("e1"), got[0].ID)
	assert.Equal(t, attendance.EntryID("e2"), got[1].ID)
}

// =============================================================================
// SUMMARIES
// =============================================================================

func summary(d attendance.Day) attendance.DailySummary {
	target := 480
	return attendance.DailySummary{
		EmployeeID:    "emp-1",
		Date:          d,
		TargetMinutes: &target,
		WorkedMinutes: 450,
		BreakMinutes:  30,
		Status:        attendance.StatusComplete,
		ComputedAt:    day17,
	}
}

func TestStore_SummaryRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	d := attendance.NewDay(2025, time.March, 10)

	sum := summary(d)
	override := 240
	sum.TargetOverrideMinutes = &override
	sum.OvertimeMinutes = 210
	sum.NeedsReview = true
	sum.ReviewNote = "self-correction awaiting acknowledgement"
	sum.Note = "on site visit"
	sum.HolidayName = ""
	sum.Warnings = []attendance.SequenceWarning{{
		EntryID: "e2",
		At:      day17,
		Got:     attendance.EntryClockIn,
		Message: "clock_in while present",
	}}
	require.NoError(t, s.SaveSummary(ctx, sum))

	got, err := s.GetSummary(ctx, "emp-1", d)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sum, *got)
}

func TestStore_SummaryUpsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	d := attendance.NewDay(2025, time.March, 10)

	require.NoError(t, s.SaveSummary(ctx, summary(d)))

	updated := summary(d)
	updated.WorkedMinutes = 480
	updated.Status = attendance.StatusOpen
	require.NoError(t, s.SaveSummary(ctx, updated))

	got, err := s.GetSummary(ctx, "emp-1", d)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 480, got.WorkedMinutes)
	assert.Equal(t, attendance.StatusOpen, got.Status)
}

func TestStore_SummariesInRange(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for dom := 10; dom <= 12; dom++ {
		require.NoError(t, s.SaveSummary(ctx, summary(attendance.NewDay(2025, time.March, dom))))
	}

	got, err := s.SummariesInRange(ctx, "emp-1",
		attendance.NewDay(2025, time.March, 10), attendance.NewDay(2025, time.March, 11))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, attendance.NewDay(2025, time.March, 10), got[0].Date)
	assert.Equal(t, attendance.NewDay(2025, time.March, 11), got[1].Date)
}

func TestStore_FlaggedSummaries(t *testing.T) {
	// GIVEN: One clean day, one flagged missing, one flagged for review
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSummary(ctx, summary(attendance.NewDay(2025, time.March, 10))))

	missing := summary(attendance.NewDay(2025, time.March, 11))
	missing.HasMissingEntries = true
	require.NoError(t, s.SaveSummary(ctx, missing))

	review := summary(attendance.NewDay(2025, time.March, 12))
	review.NeedsReview = true
	require.NoError(t, s.SaveSummary(ctx, review))

	got, err := s.FlaggedSummaries(ctx,
		attendance.NewDay(2025, time.March, 1), attendance.NewDay(2025, time.March, 31))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, attendance.NewDay(2025, time.March, 11), got[0].Date)
	assert.Equal(t, attendance.NewDay(2025, time.March, 12), got[1].Date)
}

func TestStore_OpenSummaries(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	open := summary(attendance.NewDay(2025, time.March, 10))
	open.Status = attendance.StatusOpen
	require.NoError(t, s.SaveSummary(ctx, open))
	require.NoError(t, s.SaveSummary(ctx, summary(attendance.NewDay(2025, time.March, 11))))

	openToday := summary(attendance.NewDay(2025, time.March, 13))
	openToday.Status = attendance.StatusOpen
	require.NoError(t, s.SaveSummary(ctx, openToday))

	got, err := s.OpenSummaries(ctx, attendance.NewDay(2025, time.March, 12))
	require.NoError(t, err)

	require.Len(t, got, 1, "open days after the cutoff date stay out")
	assert.Equal(t, attendance.NewDay(2025, time.March, 10), got[0].Date)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestStore_BalanceRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	b := attendance.MonthlyBalance{
		EmployeeID:        "emp-1",
		Month:             attendance.YearMonth{Year: 2025, Month: time.March},
		CarryoverMinutes:  -45,
		OvertimeMinutes:   120,
		AdjustmentMinutes: 60,
		PayoutMinutes:     30,
		BalanceMinutes:    105,
		AuditLog:          "2025-03-05T10:00:00Z admin-1 adjustment +60m: credit",
		ComputedAt:        day17,
	}
	require.NoError(t, s.SaveBalance(ctx, b))

	got, err := s.GetBalance(ctx, "emp-1", b.Month)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b, *got)
}

func TestStore_LatestBalance(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, m := range []time.Month{time.January, time.March, time.February} {
		require.NoError(t, s.SaveBalance(ctx, attendance.MonthlyBalance{
			EmployeeID: "emp-1",
			Month:      attendance.YearMonth{Year: 2025, Month: m},
			ComputedAt: day17,
		}))
	}

	got, err := s.LatestBalance(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.March, got.Month.Month)

	none, err := s.LatestBalance(ctx, "emp-2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStore_BalancesForMonth(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ym := attendance.YearMonth{Year: 2025, Month: time.March}

	for _, emp := range []attendance.EmployeeID{"emp-2", "emp-1"} {
		require.NoError(t, s.SaveBalance(ctx, attendance.MonthlyBalance{
			EmployeeID: emp, Month: ym, ComputedAt: day17,
		}))
	}
	require.NoError(t, s.SaveBalance(ctx, attendance.MonthlyBalance{
		EmployeeID: "emp-1",
		Month:      attendance.YearMonth{Year: 2025, Month: time.April},
		ComputedAt: day17,
	}))

	got, err := s.BalancesForMonth(ctx, ym)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, attendance.EmployeeID("emp-1"), got[0].EmployeeID)
	assert.Equal(t, attendance.EmployeeID("emp-2"), got[1].EmployeeID)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx attendance.Store) error {
		if err := tx.AppendEntry(ctx, entry("e1", attendance.EntryClockIn, day9)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got, "rolled-back writes must not be visible")
}

func TestStore_WithTx_ReadsOwnWrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx attendance.Store) error {
		if err := tx.AppendEntry(ctx, entry("e1", attendance.EntryClockIn, day9)); err != nil {
			return err
		}
		got, err := tx.GetEntry(ctx, "e1")
		if err != nil {
			return err
		}
		require.NotNil(t, got, "uncommitted writes are visible inside the tx")
		return nil
	})
	require.NoError(t, err)

	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// =============================================================================
// DIRECTORY
// =============================================================================

func intp(v int) *int { return &v }

func fullTime() attendance.TimeModel {
	m := attendance.TimeModel{
		ID:                  "model-ft",
		Name:                "Full Time",
		DefaultBreakMinutes: 30,
		MinBreakMinutes:     30,
	}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		m.WeekdayTargets[wd] = intp(480)
	}
	return m
}

func TestStore_EmployeeRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	e := attendance.Employee{
		ID:                  "emp-1",
		Name:                "Ada",
		Email:               "ada@example.com",
		Region:              "BY",
		Timezone:            "Europe/Berlin",
		TimeModelID:         "model-ft",
		TimeTrackingEnabled: true,
	}
	require.NoError(t, s.SaveEmployee(ctx, e))

	got, err := s.Employee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e, *got)

	enabled, err := s.IsTimeTrackingEnabled(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestStore_TimeModelFallsBackToDefault(t *testing.T) {
	// GIVEN: An employee without an assigned model and a default model
	// WHEN: Resolving the employee's model
	// THEN: The default applies

	s := newStore(t)
	ctx := context.Background()

	def := fullTime()
	def.ID = "model-default"
	def.IsDefault = true
	require.NoError(t, s.SaveTimeModel(ctx, def))
	require.NoError(t, s.SaveEmployee(ctx, attendance.Employee{
		ID: "emp-1", Name: "Ada", Timezone: "UTC", TimeTrackingEnabled: true,
	}))

	got, err := s.TimeModel(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "model-default", got.ID)
	assert.Equal(t, 480, *got.WeekdayTargets[time.Monday])
	assert.Nil(t, got.WeekdayTargets[time.Saturday])
}

func TestStore_TimeModelAssignedWinsOverDefault(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	def := fullTime()
	def.ID = "model-default"
	def.IsDefault = true
	require.NoError(t, s.SaveTimeModel(ctx, def))

	part := fullTime()
	part.ID = "model-pt"
	part.Name = "Part Time"
	part.WeekdayTargets[time.Monday] = intp(240)
	require.NoError(t, s.SaveTimeModel(ctx, part))

	require.NoError(t, s.SaveEmployee(ctx, attendance.Employee{
		ID: "emp-1", Name: "Ada", Timezone: "UTC",
		TimeModelID: "model-pt", TimeTrackingEnabled: true,
	}))

	got, err := s.TimeModel(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "model-pt", got.ID)
	assert.Equal(t, 240, *got.WeekdayTargets[time.Monday])
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestStore_HolidayRegionFallback(t *testing.T) {
	// GIVEN: A nationwide holiday and a regional one on different days
	s := newStore(t)
	ctx := context.Background()
	jan1 := attendance.NewDay(2025, time.January, 1)
	jan6 := attendance.NewDay(2025, time.January, 6)

	require.NoError(t, s.SaveHoliday(ctx, jan1, "", "New Year"))
	require.NoError(t, s.SaveHoliday(ctx, jan6, "BY", "Epiphany"))

	name, ok := s.IsHoliday(jan1, "BY")
	assert.True(t, ok, "region-less holidays apply everywhere")
	assert.Equal(t, "New Year", name)

	name, ok = s.IsHoliday(jan6, "BY")
	assert.True(t, ok)
	assert.Equal(t, "Epiphany", name)

	_, ok = s.IsHoliday(jan6, "BE")
	assert.False(t, ok, "regional holidays stay regional")
}

func TestStore_HolidaysInRange(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	jan1 := attendance.NewDay(2025, time.January, 1)
	jan6 := attendance.NewDay(2025, time.January, 6)

	require.NoError(t, s.SaveHoliday(ctx, jan1, "", "New Year"))
	require.NoError(t, s.SaveHoliday(ctx, jan6, "BY", "Epiphany"))
	require.NoError(t, s.SaveHoliday(ctx, attendance.NewDay(2025, time.May, 1), "", "Labour Day"))

	got, err := s.HolidaysInRange(ctx, jan1, attendance.NewDay(2025, time.January, 31), "BY")
	require.NoError(t, err)

	assert.Equal(t, map[attendance.Day]string{
		jan1: "New Year",
		jan6: "Epiphany",
	}, got)
}
