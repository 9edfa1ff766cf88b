package attendance

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// DAY - Civil calendar date (this IS a time-tracking system)
// =============================================================================

// Day is a calendar day, not an instant. Summaries are keyed by Day;
// entries carry instants and are assigned a Day through the employee's
// time zone.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

func NewDay(year int, month time.Month, dom int) Day {
	// Normalize through time.Date so Feb 30 etc. roll over predictably.
	t := time.Date(year, month, dom, 0, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Dom: t.Day()}
}

// DayOf returns the calendar day of an instant in the given location.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return Day{Year: lt.Year(), Month: lt.Month(), Dom: lt.Day()}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return Day{Year: t.Year(), Month: t.Month(), Dom: t.Day()}, nil
}

// Comparison
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Dom < other.Dom
}

func (d Day) After(other Day) bool     { return other.Before(d) }
func (d Day) Equal(other Day) bool     { return d == other }
func (d Day) IsZero() bool             { return d == Day{} }
func (d Day) BeforeOrEqual(o Day) bool { return !d.After(o) }
func (d Day) AfterOrEqual(o Day) bool  { return !d.Before(o) }

// Arithmetic
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Dom+n, 0, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Dom: t.Day()}
}

// Properties
func (d Day) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.UTC).Weekday()
}

func (d Day) YearMonth() YearMonth { return YearMonth{Year: d.Year, Month: d.Month} }

// Start returns the instant at which the day begins in loc.
func (d Day) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

// End returns the instant at which the next day begins in loc
// (exclusive upper bound for the day's entries).
func (d Day) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc)
}

// At returns the instant of a wall-clock time on this day in loc.
func (d Day) At(hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Dom, hour, minute, 0, 0, loc)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Dom)
}

// =============================================================================
// YEAR-MONTH - Ledger chain key
// =============================================================================

// YearMonth identifies one row of the monthly balance chain.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(d Day) YearMonth { return YearMonth{Year: d.Year, Month: d.Month} }

func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) After(other YearMonth) bool { return other.Before(ym) }
func (ym YearMonth) Equal(other YearMonth) bool { return ym == other }
func (ym YearMonth) IsZero() bool               { return ym == YearMonth{} }

// FirstDay and LastDay bound the month's calendar days.
func (ym YearMonth) FirstDay() Day { return NewDay(ym.Year, ym.Month, 1) }
func (ym YearMonth) LastDay() Day  { return NewDay(ym.Year, ym.Month+1, 1).AddDays(-1) }

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// ParseYearMonth parses "2006-01" format.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, err
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MonthsForward returns the chain [from, to] in chronological order.
// Returns nil when from is after to: the cascade never reaches backward.
func MonthsForward(from, to YearMonth) []YearMonth {
	if from.After(to) {
		return nil
	}
	var months []YearMonth
	for ym := from; !ym.After(to); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

// Clock supplies "now". Injectable so auto-completion and cascading
// recompute are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock returns a settable instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the clock forward.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// =============================================================================
// COLLABORATORS - Holiday calendar and employee directory
// =============================================================================

// HolidayCalendar is supplied by the surrounding application.
// Holiday generation is out of scope; the engine only looks dates up.
type HolidayCalendar interface {
	// IsHoliday returns the holiday name when date is a holiday in region.
	IsHoliday(date Day, region string) (string, bool)
}

// NoHolidays is a calendar with no holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Day, string) (string, bool) { return "", false }

// Employee is the directory's view of a person whose time is tracked.
type Employee struct {
	ID       EmployeeID
	Name     string
	Email    string
	Region   string // holiday region
	Timezone string // IANA name, e.g. "Europe/Berlin"

	TimeModelID         string
	TimeTrackingEnabled bool
}

// Location resolves the employee's time zone, falling back to UTC.
func (e Employee) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EmployeeDirectory is supplied by the surrounding application. The
// engine references time models, it does not own them.
type EmployeeDirectory interface {
	Employee(ctx context.Context, id EmployeeID) (*Employee, error)
	TimeModel(ctx context.Context, id EmployeeID) (*TimeModel, error)
	IsTimeTrackingEnabled(ctx context.Context, id EmployeeID) (bool, error)
	ActiveEmployees(ctx context.Context) ([]Employee, error)
}
