/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

UNITS:
  The engine works in whole minutes. DTOs carry both the raw minute
  values and a decimal-hours rendering (two places, half-up) so clients
  never re-implement the conversion.

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run them
  through the shared validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/types.go: Domain types these project
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// StampRequest records a live entry at server time.
type StampRequest struct {
	Type   string `json:"type" validate:"required,oneof=clock_in clock_out break_start break_end"`
	Source string `json:"source" validate:"omitempty,oneof=terminal web"`
}

// CorrectionRequest submits a backdated entry with a reason.
type CorrectionRequest struct {
	Type      string `json:"type" validate:"required,oneof=clock_in clock_out break_start break_end"`
	Timestamp string `json:"timestamp" validate:"required"` // RFC3339
	Reason    string `json:"reason" validate:"required"`
	Actor     string `json:"actor,omitempty"` // admin corrections only
}

// EditEntryRequest changes an existing entry's type and/or timestamp.
type EditEntryRequest struct {
	Type      string `json:"type" validate:"required,oneof=clock_in clock_out break_start break_end"`
	Timestamp string `json:"timestamp" validate:"required"` // RFC3339
	Reason    string `json:"reason"`                        // required on commit, not preview
	Actor     string `json:"actor,omitempty"`
}

// AdjustmentRequest credits or debits a month's balance.
type AdjustmentRequest struct {
	Month   string `json:"month" validate:"required"` // YYYY-MM
	Minutes int    `json:"minutes" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
	Actor   string `json:"actor" validate:"required"`
}

// PayoutRequest marks overtime minutes as paid out.
type PayoutRequest struct {
	Month   string `json:"month" validate:"required"` // YYYY-MM
	Minutes int    `json:"minutes" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required"`
	Actor   string `json:"actor" validate:"required"`
}

// ReviewRequest toggles a day's review flag.
type ReviewRequest struct {
	NeedsReview bool   `json:"needs_review"`
	Note        string `json:"note,omitempty"`
}

// DayNoteRequest sets the free-text note on a day.
type DayNoteRequest struct {
	Note string `json:"note"`
}

// TargetOverrideRequest overrides a day's target. A null value clears
// the override back to the time model's target.
type TargetOverrideRequest struct {
	Minutes *int `json:"minutes" validate:"omitempty,gte=0"`
}

// CreateEmployeeRequest creates or updates a directory record.
type CreateEmployeeRequest struct {
	ID                  string `json:"id" validate:"required"`
	Name                string `json:"name" validate:"required"`
	Email               string `json:"email" validate:"omitempty,email"`
	Region              string `json:"region"`
	Timezone            string `json:"timezone"`
	TimeModelID         string `json:"time_model_id"`
	TimeTrackingEnabled *bool  `json:"time_tracking_enabled"`
}

// CreateTimeModelRequest creates or updates a time model. Weekday
// targets are minutes; a null weekday is a non-working day.
type CreateTimeModelRequest struct {
	ID                  string `json:"id" validate:"required"`
	Name                string `json:"name" validate:"required"`
	Monday              *int   `json:"monday_minutes" validate:"omitempty,gte=0"`
	Tuesday             *int   `json:"tuesday_minutes" validate:"omitempty,gte=0"`
	Wednesday           *int   `json:"wednesday_minutes" validate:"omitempty,gte=0"`
	Thursday            *int   `json:"thursday_minutes" validate:"omitempty,gte=0"`
	Friday              *int   `json:"friday_minutes" validate:"omitempty,gte=0"`
	Saturday            *int   `json:"saturday_minutes" validate:"omitempty,gte=0"`
	Sunday              *int   `json:"sunday_minutes" validate:"omitempty,gte=0"`
	DefaultBreakMinutes int    `json:"default_break_minutes" validate:"gte=0"`
	MinBreakMinutes     int    `json:"min_break_minutes" validate:"gte=0"`
	IsDefault           bool   `json:"is_default"`
}

// CreateHolidayRequest records a holiday. Empty region applies
// everywhere.
type CreateHolidayRequest struct {
	Date   string `json:"date" validate:"required"` // YYYY-MM-DD
	Region string `json:"region"`
	Name   string `json:"name" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EntryDTO represents a time entry in API responses.
type EntryDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	Type             string `json:"type"`
	Timestamp        string `json:"timestamp"`
	Source           string `json:"source"`
	IsCorrection     bool   `json:"is_correction,omitempty"`
	CorrectionReason string `json:"correction_reason,omitempty"`
	CorrectedBy      string `json:"corrected_by,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// WarningDTO represents a sequence warning.
type WarningDTO struct {
	EntryID string `json:"entry_id,omitempty"`
	At      string `json:"at"`
	Got     string `json:"got"`
	Message string `json:"message"`
}

// StampResponseDTO is returned after a stamp or correction.
type StampResponseDTO struct {
	Entry        EntryDTO        `json:"entry"`
	Warnings     []WarningDTO    `json:"warnings"`
	ExpectedNext []string        `json:"expected_next"`
	Day          DailySummaryDTO `json:"day"`
}

// DailySummaryDTO represents one reconciled day.
type DailySummaryDTO struct {
	EmployeeID        string       `json:"employee_id"`
	Date              string       `json:"date"`
	TargetMinutes     *int         `json:"target_minutes"`
	TargetOverride    *int         `json:"target_override_minutes,omitempty"`
	WorkedMinutes     int          `json:"worked_minutes"`
	WorkedHours       float64      `json:"worked_hours"`
	BreakMinutes      int          `json:"break_minutes"`
	OvertimeMinutes   int          `json:"overtime_minutes"`
	Status            string       `json:"status"`
	HasMissingEntries bool         `json:"has_missing_entries"`
	NeedsReview       bool         `json:"needs_review"`
	ReviewNote        string       `json:"review_note,omitempty"`
	Note              string       `json:"note,omitempty"`
	Warnings          []WarningDTO `json:"warnings"`
	HolidayName       string       `json:"holiday_name,omitempty"`
	ComputedAt        string       `json:"computed_at,omitempty"`
}

// WeekSummaryDTO aggregates a Monday-based week.
type WeekSummaryDTO struct {
	Start           string            `json:"start"`
	End             string            `json:"end"`
	Days            []DailySummaryDTO `json:"days"`
	WorkedMinutes   int               `json:"worked_minutes"`
	WorkedHours     float64           `json:"worked_hours"`
	BreakMinutes    int               `json:"break_minutes"`
	TargetMinutes   int               `json:"target_minutes"`
	OvertimeMinutes int               `json:"overtime_minutes"`
}

// BalanceDTO represents one month's overtime balance row.
type BalanceDTO struct {
	EmployeeID        string  `json:"employee_id"`
	Month             string  `json:"month"`
	CarryoverMinutes  int     `json:"carryover_minutes"`
	OvertimeMinutes   int     `json:"overtime_minutes"`
	AdjustmentMinutes int     `json:"adjustment_minutes"`
	PayoutMinutes     int     `json:"payout_minutes"`
	BalanceMinutes    int     `json:"balance_minutes"`
	BalanceHours      float64 `json:"balance_hours"`
	AuditLog          string  `json:"audit_log,omitempty"`
	ComputedAt        string  `json:"computed_at,omitempty"`
}

// EditPreviewDTO is returned before committing an entry edit.
type EditPreviewDTO struct {
	Entry          EntryDTO     `json:"entry"`
	NewDay         string       `json:"new_day"`
	OldDay         string       `json:"old_day"`
	Moved          bool         `json:"moved"`
	Valid          bool         `json:"valid"`
	Warnings       []WarningDTO `json:"warnings"`
	OldDayValid    *bool        `json:"old_day_valid,omitempty"`
	OldDayWarnings []WarningDTO `json:"old_day_warnings,omitempty"`
}

// PresenceDTO represents one employee's live state.
type PresenceDTO struct {
	EmployeeID string    `json:"employee_id"`
	State      string    `json:"state"`
	Since      string    `json:"since,omitempty"`
	LastEntry  *EntryDTO `json:"last_entry,omitempty"`
}

// EmployeeDTO represents a directory record.
type EmployeeDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email,omitempty"`
	Region              string `json:"region,omitempty"`
	Timezone            string `json:"timezone"`
	TimeModelID         string `json:"time_model_id,omitempty"`
	TimeTrackingEnabled bool   `json:"time_tracking_enabled"`
}

// TimeModelDTO represents a contractual schedule.
type TimeModelDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Monday              *int   `json:"monday_minutes"`
	Tuesday             *int   `json:"tuesday_minutes"`
	Wednesday           *int   `json:"wednesday_minutes"`
	Thursday            *int   `json:"thursday_minutes"`
	Friday              *int   `json:"friday_minutes"`
	Saturday            *int   `json:"saturday_minutes"`
	Sunday              *int   `json:"sunday_minutes"`
	DefaultBreakMinutes int    `json:"default_break_minutes"`
	MinBreakMinutes     int    `json:"min_break_minutes"`
	IsDefault           bool   `json:"is_default"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// minutesToHours renders whole minutes as decimal hours, two places.
func minutesToHours(minutes int) float64 {
	hours, _ := decimal.NewFromInt(int64(minutes)).
		Div(decimal.NewFromInt(60)).
		Round(2).
		Float64()
	return hours
}

func toEntryDTO(e attendance.TimeEntry) EntryDTO {
	return EntryDTO{
		ID:               string(e.ID),
		EmployeeID:       string(e.EmployeeID),
		Type:             string(e.Type),
		Timestamp:        e.Timestamp.Format(time.RFC3339),
		Source:           string(e.Source),
		IsCorrection:     e.IsCorrection,
		CorrectionReason: e.CorrectionReason,
		CorrectedBy:      string(e.CorrectedBy),
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
	}
}

func toWarningDTOs(warnings []attendance.SequenceWarning) []WarningDTO {
	dtos := make([]WarningDTO, len(warnings))
	for i, w := range warnings {
		dtos[i] = WarningDTO{
			EntryID: string(w.EntryID),
			At:      w.At.Format(time.RFC3339),
			Got:     string(w.Got),
			Message: w.Message,
		}
	}
	return dtos
}

func toEntryTypes(types []attendance.EntryType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func toSummaryDTO(s attendance.DailySummary) DailySummaryDTO {
	return DailySummaryDTO{
		EmployeeID:        string(s.EmployeeID),
		Date:              s.Date.String(),
		TargetMinutes:     s.TargetMinutes,
		TargetOverride:    s.TargetOverrideMinutes,
		WorkedMinutes:     s.WorkedMinutes,
		WorkedHours:       minutesToHours(s.WorkedMinutes),
		BreakMinutes:      s.BreakMinutes,
		OvertimeMinutes:   s.OvertimeMinutes,
		Status:            string(s.Status),
		HasMissingEntries: s.HasMissingEntries,
		NeedsReview:       s.NeedsReview,
		ReviewNote:        s.ReviewNote,
		Note:              s.Note,
		Warnings:          toWarningDTOs(s.Warnings),
		HolidayName:       s.HolidayName,
		ComputedAt:        s.ComputedAt.Format(time.RFC3339),
	}
}

func toSummaryDTOs(summaries []attendance.DailySummary) []DailySummaryDTO {
	dtos := make([]DailySummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toSummaryDTO(s)
	}
	return dtos
}

func toBalanceDTO(b attendance.MonthlyBalance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:        string(b.EmployeeID),
		Month:             b.Month.String(),
		CarryoverMinutes:  b.CarryoverMinutes,
		OvertimeMinutes:   b.OvertimeMinutes,
		AdjustmentMinutes: b.AdjustmentMinutes,
		PayoutMinutes:     b.PayoutMinutes,
		BalanceMinutes:    b.BalanceMinutes,
		BalanceHours:      minutesToHours(b.BalanceMinutes),
		AuditLog:          b.AuditLog,
		ComputedAt:        b.ComputedAt.Format(time.RFC3339),
	}
}

func toStampResponse(res *attendance.StampResult) StampResponseDTO {
	return StampResponseDTO{
		Entry:        toEntryDTO(res.Entry),
		Warnings:     toWarningDTOs(res.Warnings),
		ExpectedNext: toEntryTypes(res.ExpectedNext),
		Day:          toSummaryDTO(res.Summary),
	}
}

func toEditPreviewDTO(p *attendance.EditPreview) EditPreviewDTO {
	dto := EditPreviewDTO{
		Entry:    toEntryDTO(p.Entry),
		NewDay:   p.NewDay.String(),
		OldDay:   p.OldDay.String(),
		Moved:    p.Moved,
		Valid:    p.Result.Valid,
		Warnings: toWarningDTOs(p.Result.Warnings),
	}
	if p.OldDayResult != nil {
		valid := p.OldDayResult.Valid
		dto.OldDayValid = &valid
		dto.OldDayWarnings = toWarningDTOs(p.OldDayResult.Warnings)
	}
	return dto
}

func toEmployeeDTO(e attendance.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                  string(e.ID),
		Name:                e.Name,
		Email:               e.Email,
		Region:              e.Region,
		Timezone:            e.Timezone,
		TimeModelID:         e.TimeModelID,
		TimeTrackingEnabled: e.TimeTrackingEnabled,
	}
}

func toTimeModelDTO(m attendance.TimeModel) TimeModelDTO {
	return TimeModelDTO{
		ID:                  m.ID,
		Name:                m.Name,
		Monday:              m.WeekdayTargets[time.Monday],
		Tuesday:             m.WeekdayTargets[time.Tuesday],
		Wednesday:           m.WeekdayTargets[time.Wednesday],
		Thursday:            m.WeekdayTargets[time.Thursday],
		Friday:              m.WeekdayTargets[time.Friday],
		Saturday:            m.WeekdayTargets[time.Saturday],
		Sunday:              m.WeekdayTargets[time.Sunday],
		DefaultBreakMinutes: m.DefaultBreakMinutes,
		MinBreakMinutes:     m.MinBreakMinutes,
		IsDefault:           m.IsDefault,
	}
}
