// Package store provides in-memory Store implementations for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	entries   map[attendance.EntryID]attendance.TimeEntry
	summaries map[summaryKey]attendance.DailySummary
	balances  map[balanceKey]attendance.MonthlyBalance
}

type summaryKey struct {
	Emp  attendance.EmployeeID
	Date attendance.Day
}

type balanceKey struct {
	Emp   attendance.EmployeeID
	Month attendance.YearMonth
}

func NewMemory() *Memory {
	return &Memory{
		entries:   make(map[attendance.EntryID]attendance.TimeEntry),
		summaries: make(map[summaryKey]attendance.DailySummary),
		balances:  make(map[balanceKey]attendance.MonthlyBalance),
	}
}

// -----------------------------------------------------------------------------
// EntryStore
// -----------------------------------------------------------------------------

func (m *Memory) AppendEntry(_ context.Context, e attendance.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) GetEntry(_ context.Context, id attendance.EntryID) (*attendance.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) UpdateEntry(_ context.Context, e attendance.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return attendance.ErrEntryNotFound
	}
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, id attendance.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return attendance.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) EntriesInRange(_ context.Context, emp attendance.EmployeeID, from, to time.Time) ([]attendance.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.TimeEntry
	for _, e := range m.entries {
		if e.EmployeeID != emp {
			continue
		}
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		result = append(result, e)
	}
	attendance.SortEntries(result)
	return result, nil
}

// -----------------------------------------------------------------------------
// SummaryStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveSummary(_ context.Context, s attendance.DailySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summaryKey{Emp: s.EmployeeID, Date: s.Date}] = s
	return nil
}

func (m *Memory) GetSummary(_ context.Context, emp attendance.EmployeeID, date attendance.Day) (*attendance.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[summaryKey{Emp: emp, Date: date}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) SummariesInRange(_ context.Context, emp attendance.EmployeeID, from, to attendance.Day) ([]attendance.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.DailySummary
	for k, s := range m.summaries {
		if k.Emp != emp {
			continue
		}
		if k.Date.Before(from) || k.Date.After(to) {
			continue
		}
		result = append(result, s)
	}
	sortSummaries(result)
	return result, nil
}

func (m *Memory) FlaggedSummaries(_ context.Context, from, to attendance.Day) ([]attendance.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.DailySummary
	for k, s := range m.summaries {
		if k.Date.Before(from) || k.Date.After(to) {
			continue
		}
		if s.HasMissingEntries || s.NeedsReview {
			result = append(result, s)
		}
	}
	sortSummaries(result)
	return result, nil
}

func (m *Memory) OpenSummaries(_ context.Context, before attendance.Day) ([]attendance.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.DailySummary
	for k, s := range m.summaries {
		if k.Date.After(before) {
			continue
		}
		if s.Status == attendance.StatusOpen {
			result = append(result, s)
		}
	}
	sortSummaries(result)
	return result, nil
}

func sortSummaries(s []attendance.DailySummary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Date != s[j].Date {
			return s[i].Date.Before(s[j].Date)
		}
		return s[i].EmployeeID < s[j].EmployeeID
	})
}

// -----------------------------------------------------------------------------
// BalanceStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveBalance(_ context.Context, b attendance.MonthlyBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey{Emp: b.EmployeeID, Month: b.Month}] = b
	return nil
}

func (m *Memory) GetBalance(_ context.Context, emp attendance.EmployeeID, ym attendance.YearMonth) (*attendance.MonthlyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.balances[balanceKey{Emp: emp, Month: ym}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) LatestBalance(_ context.Context, emp attendance.EmployeeID) (*attendance.MonthlyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *attendance.MonthlyBalance
	for k, b := range m.balances {
		if k.Emp != emp {
			continue
		}
		if latest == nil || latest.Month.Before(b.Month) {
			row := b
			latest = &row
		}
	}
	return latest, nil
}

func (m *Memory) BalancesForMonth(_ context.Context, ym attendance.YearMonth) ([]attendance.MonthlyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.MonthlyBalance
	for k, b := range m.balances {
		if k.Month == ym {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
	txMu sync.Mutex
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction, simulated with a snapshot
// and rollback on error.
func (tm *TxMemory) WithTx(_ context.Context, fn func(attendance.Store) error) error {
	tm.txMu.Lock()
	defer tm.txMu.Unlock()

	snapshot := tm.snapshot()
	if err := fn(tm.Memory); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	s := memorySnapshot{
		entries:   make(map[attendance.EntryID]attendance.TimeEntry, len(tm.entries)),
		summaries: make(map[summaryKey]attendance.DailySummary, len(tm.summaries)),
		balances:  make(map[balanceKey]attendance.MonthlyBalance, len(tm.balances)),
	}
	for k, v := range tm.entries {
		s.entries[k] = v
	}
	for k, v := range tm.summaries {
		s.summaries[k] = v
	}
	for k, v := range tm.balances {
		s.balances[k] = v
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.entries = s.entries
	tm.summaries = s.summaries
	tm.balances = s.balances
}

type memorySnapshot struct {
	entries   map[attendance.EntryID]attendance.TimeEntry
	summaries map[summaryKey]attendance.DailySummary
	balances  map[balanceKey]attendance.MonthlyBalance
}
