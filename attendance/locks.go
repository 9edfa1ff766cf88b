package attendance

import "sync"

// =============================================================================
// PER-EMPLOYEE LOCKS - Single-writer discipline within one employee
// =============================================================================

// employeeLocks serializes the read-validate-reconcile-write section
// per employee. State is partitioned by employee, so no global lock is
// needed across employees; within one employee, two concurrent writers
// could both read a pre-edit day and "fix" it to different results.
//
// Acquisition blocks. Callers tolerate a brief synchronous wait rather
// than spinning; ErrConcurrentModification is reserved for store-level
// conflicts that slip past this discipline.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[EmployeeID]*sync.Mutex
}

func newEmployeeLocks() *employeeLocks {
	return &employeeLocks{locks: make(map[EmployeeID]*sync.Mutex)}
}

// Lock acquires the employee's exclusive section and returns the
// unlock function.
func (l *employeeLocks) Lock(emp EmployeeID) func() {
	l.mu.Lock()
	m, ok := l.locks[emp]
	if !ok {
		m = &sync.Mutex{}
		l.locks[emp] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
