package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY DIRECTORY - EmployeeDirectory implementation (for testing/dev)
// =============================================================================

type Directory struct {
	mu        sync.RWMutex
	employees map[attendance.EmployeeID]attendance.Employee
	models    map[string]attendance.TimeModel
}

func NewDirectory() *Directory {
	return &Directory{
		employees: make(map[attendance.EmployeeID]attendance.Employee),
		models:    make(map[string]attendance.TimeModel),
	}
}

func (d *Directory) PutEmployee(e attendance.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[e.ID] = e
}

func (d *Directory) PutModel(m attendance.TimeModel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.models[m.ID] = m
}

func (d *Directory) Employee(_ context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (d *Directory) TimeModel(_ context.Context, id attendance.EmployeeID) (*attendance.TimeModel, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.employees[id]
	if !ok {
		return nil, nil
	}
	m, ok := d.models[e.TimeModelID]
	if !ok {
		// Fall back to the default model, when one exists.
		for _, candidate := range d.models {
			if candidate.IsDefault {
				m = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (d *Directory) IsTimeTrackingEnabled(_ context.Context, id attendance.EmployeeID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.employees[id]
	return ok && e.TimeTrackingEnabled, nil
}

func (d *Directory) ActiveEmployees(_ context.Context) ([]attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]attendance.Employee, 0, len(d.employees))
	for _, e := range d.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// MEMORY HOLIDAYS - HolidayCalendar implementation (for testing/dev)
// =============================================================================

type Holidays struct {
	mu   sync.RWMutex
	days map[holidayKey]string
}

type holidayKey struct {
	Date   attendance.Day
	Region string
}

func NewHolidays() *Holidays {
	return &Holidays{days: make(map[holidayKey]string)}
}

func (h *Holidays) Put(date attendance.Day, region, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.days[holidayKey{Date: date, Region: region}] = name
}

func (h *Holidays) IsHoliday(date attendance.Day, region string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if name, ok := h.days[holidayKey{Date: date, Region: region}]; ok {
		return name, true
	}
	// Region-less holidays apply everywhere.
	name, ok := h.days[holidayKey{Date: date, Region: ""}]
	return name, ok
}
