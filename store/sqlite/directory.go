package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// EMPLOYEE DIRECTORY (attendance.EmployeeDirectory interface)
// =============================================================================

// SaveEmployee inserts or updates a directory record.
func (s *Store) SaveEmployee(ctx context.Context, e attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees
		(id, name, email, region, timezone, time_model_id, time_tracking_enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			region = excluded.region,
			timezone = excluded.timezone,
			time_model_id = excluded.time_model_id,
			time_tracking_enabled = excluded.time_tracking_enabled
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Name,
		nullString(e.Email),
		e.Region,
		e.Timezone,
		nullString(e.TimeModelID),
		boolInt(e.TimeTrackingEnabled),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

const employeeColumns = `
	id, name, email, region, timezone, time_model_id, time_tracking_enabled`

func (s *Store) Employee(ctx context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT"+employeeColumns+" FROM employees WHERE id = ?", id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// TimeModel resolves the model an employee works under, falling back
// to the default model when the employee has none assigned.
func (s *Store) TimeModel(ctx context.Context, id attendance.EmployeeID) (*attendance.TimeModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var modelID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT time_model_id FROM employees WHERE id = ?", id).Scan(&modelID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if modelID.Valid && modelID.String != "" {
		m, err := s.timeModelByID(ctx, modelID.String)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
	return s.defaultTimeModel(ctx)
}

const modelColumns = `
	id, name, sunday_minutes, monday_minutes, tuesday_minutes,
	wednesday_minutes, thursday_minutes, friday_minutes, saturday_minutes,
	default_break_minutes, min_break_minutes, is_default`

func (s *Store) timeModelByID(ctx context.Context, id string) (*attendance.TimeModel, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+modelColumns+" FROM time_models WHERE id = ?", id)
	m, err := scanModel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) defaultTimeModel(ctx context.Context) (*attendance.TimeModel, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+modelColumns+" FROM time_models WHERE is_default = 1 LIMIT 1")
	m, err := scanModel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) IsTimeTrackingEnabled(ctx context.Context, id attendance.EmployeeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var enabled int
	err := s.db.QueryRowContext(ctx,
		"SELECT time_tracking_enabled FROM employees WHERE id = ?", id).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return enabled != 0, nil
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT"+employeeColumns+" FROM employees ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(row rowScanner) (attendance.Employee, error) {
	var (
		e       attendance.Employee
		email   sql.NullString
		modelID sql.NullString
		enabled int
	)
	err := row.Scan(&e.ID, &e.Name, &email, &e.Region, &e.Timezone, &modelID, &enabled)
	if err != nil {
		return e, err
	}
	e.Email = email.String
	e.TimeModelID = modelID.String
	e.TimeTrackingEnabled = enabled != 0
	return e, nil
}

// =============================================================================
// TIME MODELS (admin CRUD)
// =============================================================================

// SaveTimeModel inserts or updates a time model. At most one model
// should carry is_default; the caller enforces that.
func (s *Store) SaveTimeModel(ctx context.Context, m attendance.TimeModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO time_models
		(id, name, sunday_minutes, monday_minutes, tuesday_minutes,
		 wednesday_minutes, thursday_minutes, friday_minutes, saturday_minutes,
		 default_break_minutes, min_break_minutes, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sunday_minutes = excluded.sunday_minutes,
			monday_minutes = excluded.monday_minutes,
			tuesday_minutes = excluded.tuesday_minutes,
			wednesday_minutes = excluded.wednesday_minutes,
			thursday_minutes = excluded.thursday_minutes,
			friday_minutes = excluded.friday_minutes,
			saturday_minutes = excluded.saturday_minutes,
			default_break_minutes = excluded.default_break_minutes,
			min_break_minutes = excluded.min_break_minutes,
			is_default = excluded.is_default
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID,
		m.Name,
		nullInt(m.WeekdayTargets[time.Sunday]),
		nullInt(m.WeekdayTargets[time.Monday]),
		nullInt(m.WeekdayTargets[time.Tuesday]),
		nullInt(m.WeekdayTargets[time.Wednesday]),
		nullInt(m.WeekdayTargets[time.Thursday]),
		nullInt(m.WeekdayTargets[time.Friday]),
		nullInt(m.WeekdayTargets[time.Saturday]),
		m.DefaultBreakMinutes,
		m.MinBreakMinutes,
		boolInt(m.IsDefault),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save time model: %w", err)
	}
	return nil
}

// ListTimeModels returns all models ordered by name.
func (s *Store) ListTimeModels(ctx context.Context) ([]attendance.TimeModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT"+modelColumns+" FROM time_models ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query time models: %w", err)
	}
	defer rows.Close()

	var models []attendance.TimeModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

func scanModel(row rowScanner) (attendance.TimeModel, error) {
	var (
		m         attendance.TimeModel
		days      [7]sql.NullInt64
		isDefault int
	)
	err := row.Scan(&m.ID, &m.Name,
		&days[time.Sunday], &days[time.Monday], &days[time.Tuesday],
		&days[time.Wednesday], &days[time.Thursday], &days[time.Friday],
		&days[time.Saturday],
		&m.DefaultBreakMinutes, &m.MinBreakMinutes, &isDefault)
	if err != nil {
		return m, err
	}
	for i := range days {
		m.WeekdayTargets[i] = intPtr(days[i])
	}
	m.IsDefault = isDefault != 0
	return m, nil
}

// =============================================================================
// HOLIDAYS (attendance.HolidayCalendar interface)
// =============================================================================

// SaveHoliday records a holiday for a region. An empty region means
// the holiday applies everywhere.
func (s *Store) SaveHoliday(ctx context.Context, date attendance.Day, region, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, region, date, name, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(region, date, name) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		region,
		date.String(),
		name,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// IsHoliday checks the calendar for a region match, falling back to
// region-less holidays which apply everywhere.
func (s *Store) IsHoliday(date attendance.Day, region string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRow(`
		SELECT name FROM holidays
		WHERE date = ? AND (region = ? OR region = '')
		ORDER BY region DESC
		LIMIT 1`, date.String(), region).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// HolidaysInRange lists holidays between two dates, inclusive.
func (s *Store) HolidaysInRange(ctx context.Context, from, to attendance.Day, region string) (map[attendance.Day]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name FROM holidays
		WHERE date >= ? AND date <= ? AND (region = ? OR region = '')
		ORDER BY date ASC`,
		from.String(), to.String(), region)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	result := make(map[attendance.Day]string)
	for rows.Next() {
		var dateStr, name string
		if err := rows.Scan(&dateStr, &name); err != nil {
			return nil, err
		}
		day, err := attendance.ParseDay(dateStr)
		if err != nil {
			continue
		}
		result[day] = name
	}
	return result, rows.Err()
}
