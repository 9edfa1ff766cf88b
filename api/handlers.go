/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Stamping:
    POST   /api/employees/{id}/stamps            Live stamp at server time
    POST   /api/employees/{id}/corrections       Self-correction (backdated)
    POST   /api/employees/{id}/admin-corrections Admin correction
    GET    /api/employees/{id}/expected-next     Legal next entry types

  Entries:
    GET    /api/employees/{id}/entries           Entries in a range
    POST   /api/entries/{id}/preview             Preview an edit
    PUT    /api/entries/{id}                     Commit an edit
    DELETE /api/entries/{id}?confirm=true        Delete an entry

  Summaries:
    GET    /api/employees/{id}/days/{date}       One reconciled day
    GET    /api/employees/{id}/weeks/{date}      Monday-based week
    GET    /api/employees/{id}/months/{month}    Whole month
    PUT    /api/employees/{id}/days/{date}/review    Toggle review flag
    PUT    /api/employees/{id}/days/{date}/note      Set day note
    PUT    /api/employees/{id}/days/{date}/target    Override target

  Balances:
    GET    /api/employees/{id}/balance           Current month balance
    GET    /api/employees/{id}/balances/{month}  One month
    GET    /api/balances/{month}                 All employees, one month
    POST   /api/employees/{id}/adjustments       Manual adjustment
    POST   /api/employees/{id}/payouts           Overtime payout

  Review:
    GET    /api/review/missing                   Flagged days in a range
    GET    /api/presence                         Live presence board

  Admin:
    GET/POST /api/employees                      Directory
    GET/POST /api/time-models                    Schedules
    POST     /api/holidays                       Holiday calendar

ERROR HANDLING:
  Errors map to HTTP status by classification:
  - 400: Validation errors, invalid input
  - 404: Employee or entry not found
  - 409: Concurrent modification
  - 422: Insufficient balance for payout
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker  *attendance.Tracker
	Store    *sqlite.Store
	validate *validator.Validate
}

// NewHandler creates a new handler around the tracker and store.
func NewHandler(tracker *attendance.Tracker, store *sqlite.Store) *Handler {
	return &Handler{
		Tracker:  tracker,
		Store:    store,
		validate: validator.New(),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// =============================================================================
// STAMPING HANDLERS
// =============================================================================

// Stamp records a live entry at server time.
// POST /api/employees/{id}/stamps
func (h *Handler) Stamp(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	var req StampRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Tracker.Stamp(r.Context(), emp,
		attendance.EntryType(req.Type), attendance.EntrySource(req.Source))
	if err != nil {
		writeDomainError(w, "Failed to record stamp", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStampResponse(res))
}

// SubmitCorrection records a backdated self-correction.
// POST /api/employees/{id}/corrections
func (h *Handler) SubmitCorrection(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	var req CorrectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp (use RFC3339)", err)
		return
	}

	res, err := h.Tracker.SubmitSelfCorrection(r.Context(), emp,
		attendance.EntryType(req.Type), ts, req.Reason)
	if err != nil {
		writeDomainError(w, "Failed to submit correction", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStampResponse(res))
}

// AdminCorrection records a correction on behalf of an employee.
// POST /api/employees/{id}/admin-corrections
func (h *Handler) AdminCorrection(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	var req CorrectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Actor == "" {
		writeError(w, http.StatusBadRequest, "actor is required for admin corrections", nil)
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp (use RFC3339)", err)
		return
	}

	res, err := h.Tracker.AdminCorrection(r.Context(), emp,
		attendance.EntryType(req.Type), ts, req.Reason, attendance.EmployeeID(req.Actor))
	if err != nil {
		writeDomainError(w, "Failed to submit correction", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStampResponse(res))
}

// ExpectedNext returns the entry types legal from the employee's
// current state.
// GET /api/employees/{id}/expected-next
func (h *Handler) ExpectedNext(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	types, err := h.Tracker.ExpectedNextFor(r.Context(), emp)
	if err != nil {
		writeDomainError(w, "Failed to compute expected next", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expected_next": toEntryTypes(types)})
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries in a [from, to] date range.
// GET /api/employees/{id}/entries?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	from, to, ok := parseDayRange(w, r)
	if !ok {
		return
	}

	employee, err := h.Store.Employee(r.Context(), emp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up employee", err)
		return
	}
	if employee == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	loc := employee.Location()
	entries, err := h.Store.EntriesInRange(r.Context(), emp, from.Start(loc), to.AddDays(1).Start(loc))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PreviewEdit simulates an entry edit without committing it.
// POST /api/entries/{id}/preview
func (h *Handler) PreviewEdit(w http.ResponseWriter, r *http.Request) {
	id := attendance.EntryID(chi.URLParam(r, "id"))

	var req EditEntryRequest
	if !h.decode(w, r, &req) {
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp (use RFC3339)", err)
		return
	}

	preview, err := h.Tracker.PreviewEditEntry(r.Context(), id, attendance.EntryType(req.Type), ts)
	if err != nil {
		writeDomainError(w, "Failed to preview edit", err)
		return
	}

	writeJSON(w, http.StatusOK, toEditPreviewDTO(preview))
}

// EditEntry commits an edit to an entry's type and timestamp.
// PUT /api/entries/{id}
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	id := attendance.EntryID(chi.URLParam(r, "id"))

	var req EditEntryRequest
	if !h.decode(w, r, &req) {
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timestamp (use RFC3339)", err)
		return
	}

	res, err := h.Tracker.EditEntry(r.Context(), id,
		attendance.EntryType(req.Type), ts, req.Reason, attendance.EmployeeID(req.Actor))
	if err != nil {
		writeDomainError(w, "Failed to edit entry", err)
		return
	}

	summaries := make(map[string]DailySummaryDTO, len(res.Summaries))
	for day, sum := range res.Summaries {
		summaries[day.String()] = toSummaryDTO(sum)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"preview":   toEditPreviewDTO(res.Preview),
		"summaries": summaries,
	})
}

// DeleteEntry removes an entry. The confirm query parameter is the
// two-step acknowledgement; without it the request is rejected.
// DELETE /api/entries/{id}?confirm=true
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := attendance.EntryID(chi.URLParam(r, "id"))
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.Tracker.DeleteEntry(r.Context(), id, confirmed); err != nil {
		writeDomainError(w, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetDay returns one reconciled day. Reading a stale open day triggers
// reconciliation, so the response is always current.
// GET /api/employees/{id}/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	date, err := attendance.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	sum, err := h.Tracker.DaySummary(r.Context(), emp, date)
	if err != nil {
		writeDomainError(w, "Failed to compute day summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(*sum))
}

// GetWeek returns the Monday-based week containing the date.
// GET /api/employees/{id}/weeks/{date}
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	date, err := attendance.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	week, err := h.Tracker.WeekSummary(r.Context(), emp, date)
	if err != nil {
		writeDomainError(w, "Failed to compute week summary", err)
		return
	}

	writeJSON(w, http.StatusOK, WeekSummaryDTO{
		Start:           week.Start.String(),
		End:             week.End.String(),
		Days:            toSummaryDTOs(week.Days),
		WorkedMinutes:   week.WorkedMinutes,
		WorkedHours:     minutesToHours(week.WorkedMinutes),
		BreakMinutes:    week.BreakMinutes,
		TargetMinutes:   week.TargetMinutes,
		OvertimeMinutes: week.OvertimeMinutes,
	})
}

// GetMonth returns all reconciled days of a month.
// GET /api/employees/{id}/months/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	ym, err := attendance.ParseYearMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	summaries, err := h.Tracker.MonthSummaries(r.Context(), emp, ym)
	if err != nil {
		writeDomainError(w, "Failed to compute month summaries", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTOs(summaries))
}

// SetReview toggles a day's review flag.
// PUT /api/employees/{id}/days/{date}/review
func (h *Handler) SetReview(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	date, err := attendance.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req ReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	sum, err := h.Tracker.SetNeedsReview(r.Context(), emp, date, req.NeedsReview, req.Note)
	if err != nil {
		writeDomainError(w, "Failed to update review flag", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(*sum))
}

// SetNote sets a day's free-text note.
// PUT /api/employees/{id}/days/{date}/note
func (h *Handler) SetNote(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	date, err := attendance.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req DayNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	sum, err := h.Tracker.SetDayNote(r.Context(), emp, date, req.Note)
	if err != nil {
		writeDomainError(w, "Failed to update note", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(*sum))
}

// SetTargetOverride overrides (or clears) a day's target minutes.
// PUT /api/employees/{id}/days/{date}/target
func (h *Handler) SetTargetOverride(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	date, err := attendance.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req TargetOverrideRequest
	if !h.decode(w, r, &req) {
		return
	}

	sum, err := h.Tracker.SetTargetOverride(r.Context(), emp, date, req.Minutes)
	if err != nil {
		writeDomainError(w, "Failed to update target override", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(*sum))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetCurrentBalance returns the employee's balance for the current
// month, forward-filling the chain when months are missing.
// GET /api/employees/{id}/balance
func (h *Handler) GetCurrentBalance(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	balance, err := h.Tracker.CurrentBalance(r.Context(), emp)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*balance))
}

// GetMonthBalance recomputes and returns one month's balance.
// GET /api/employees/{id}/balances/{month}
func (h *Handler) GetMonthBalance(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	ym, err := attendance.ParseYearMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	balance, err := h.Tracker.RecomputeMonth(r.Context(), emp, ym)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*balance))
}

// ListMonthBalances returns all employees' balances for a month.
// GET /api/balances/{month}
func (h *Handler) ListMonthBalances(w http.ResponseWriter, r *http.Request) {
	ym, err := attendance.ParseYearMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	balances, err := h.Tracker.AllBalances(r.Context(), ym)
	if err != nil {
		writeDomainError(w, "Failed to list balances", err)
		return
	}

	dtos := make([]BalanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = toBalanceDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordAdjustment credits or debits a month's balance with an
// audited reason.
// POST /api/employees/{id}/adjustments
func (h *Handler) RecordAdjustment(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	var req AdjustmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	ym, err := attendance.ParseYearMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	balance, err := h.Tracker.RecordAdjustment(r.Context(), emp, ym,
		req.Minutes, req.Reason, attendance.EmployeeID(req.Actor))
	if err != nil {
		writeDomainError(w, "Failed to record adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBalanceDTO(*balance))
}

// RecordPayout marks overtime minutes as paid out.
// POST /api/employees/{id}/payouts
func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
	emp := attendance.EmployeeID(chi.URLParam(r, "id"))

	var req PayoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	ym, err := attendance.ParseYearMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	balance, err := h.Tracker.RecordPayout(r.Context(), emp, ym,
		req.Minutes, req.Reason, attendance.EmployeeID(req.Actor))
	if err != nil {
		writeDomainError(w, "Failed to record payout", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBalanceDTO(*balance))
}

// =============================================================================
// REVIEW / PRESENCE HANDLERS
// =============================================================================

// ListMissing returns flagged days across all employees in a range.
// GET /api/review/missing?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListMissing(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseDayRange(w, r)
	if !ok {
		return
	}

	summaries, err := h.Tracker.MissingEntries(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, "Failed to list flagged days", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTOs(summaries))
}

// GetPresence returns the live presence board.
// GET /api/presence
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	presences, err := h.Tracker.PresenceSnapshot(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to compute presence", err)
		return
	}

	dtos := make([]PresenceDTO, len(presences))
	for i, p := range presences {
		dto := PresenceDTO{
			EmployeeID: string(p.EmployeeID),
			State:      string(p.State),
		}
		if !p.Since.IsZero() {
			dto.Since = p.Since.Format(time.RFC3339)
		}
		if p.LastEntry != nil {
			entry := toEntryDTO(*p.LastEntry)
			dto.LastEntry = &entry
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DIRECTORY / ADMIN HANDLERS
// =============================================================================

// ListEmployees returns all directory records.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ActiveEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single directory record.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := attendance.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.Employee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates a directory record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timezone", err)
		return
	}

	enabled := true
	if req.TimeTrackingEnabled != nil {
		enabled = *req.TimeTrackingEnabled
	}

	emp := attendance.Employee{
		ID:                  attendance.EmployeeID(req.ID),
		Name:                req.Name,
		Email:               req.Email,
		Region:              req.Region,
		Timezone:            tz,
		TimeModelID:         req.TimeModelID,
		TimeTrackingEnabled: enabled,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ListTimeModels returns all time models.
// GET /api/time-models
func (h *Handler) ListTimeModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.Store.ListTimeModels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list time models", err)
		return
	}

	dtos := make([]TimeModelDTO, len(models))
	for i, m := range models {
		dtos[i] = toTimeModelDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTimeModel creates or updates a time model.
// POST /api/time-models
func (h *Handler) CreateTimeModel(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeModelRequest
	if !h.decode(w, r, &req) {
		return
	}

	model := attendance.TimeModel{
		ID:                  req.ID,
		Name:                req.Name,
		DefaultBreakMinutes: req.DefaultBreakMinutes,
		MinBreakMinutes:     req.MinBreakMinutes,
		IsDefault:           req.IsDefault,
	}
	model.WeekdayTargets[time.Monday] = req.Monday
	model.WeekdayTargets[time.Tuesday] = req.Tuesday
	model.WeekdayTargets[time.Wednesday] = req.Wednesday
	model.WeekdayTargets[time.Thursday] = req.Thursday
	model.WeekdayTargets[time.Friday] = req.Friday
	model.WeekdayTargets[time.Saturday] = req.Saturday
	model.WeekdayTargets[time.Sunday] = req.Sunday

	if err := h.Store.SaveTimeModel(r.Context(), model); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save time model", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeModelDTO(model))
}

// CreateHoliday records a holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := attendance.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.SaveHoliday(r.Context(), date, req.Region, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"date":   date.String(),
		"region": req.Region,
		"name":   req.Name,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDayRange(w http.ResponseWriter, r *http.Request) (from, to attendance.Day, ok bool) {
	var err error
	from, err = attendance.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return from, to, false
	}
	to, err = attendance.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return from, to, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not precede from", nil)
		return from, to, false
	}
	return from, to, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var insufficient *attendance.InsufficientBalanceError

	switch {
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.As(err, &insufficient):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, attendance.ErrConcurrentModification):
		writeError(w, http.StatusConflict, message, err)
	case attendance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
