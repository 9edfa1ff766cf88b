/*
balance.go - Monthly overtime ledger

PURPOSE:
  Rolls reconciled daily overtime up into a monthly balance chain:

    balance = carryover + overtime + adjustment - payout
    carryover(N) = balance(N-1)

  The chain is strict. Changing any month's inputs requires
  recomputing every later month's carryover, forward to the present
  and never backward.

IDEMPOTENCE:
  ComputeMonth with unchanged inputs yields an unchanged row, so a
  cascade interrupted halfway and retried from the same starting month
  converges to the same end state.

CASCADE AS A WORK LIST:
  The cascade is an explicit chronological list of (employee, month)
  work items, not a recursive call chain. See MonthsForward in day.go
  and Tracker.recomputeForward in tracker.go.

SEE ALSO:
  - tracker.go: RecordAdjustment, RecordPayout, CurrentBalance
  - day.go: YearMonth arithmetic
*/
package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH COMPUTATION - Pure
// =============================================================================

// ComputeMonth derives one MonthlyBalance row.
//
//	prior    - the previous month's row; nil means zero carryover
//	existing - the stored row for this month; its manual fields
//	           (adjustments, payouts, audit log) are retained
//	overtime - the sum of DailySummary overtime for the month
func ComputeMonth(emp EmployeeID, ym YearMonth, prior, existing *MonthlyBalance, overtime int, now time.Time) MonthlyBalance {
	b := MonthlyBalance{
		EmployeeID:      emp,
		Month:           ym,
		OvertimeMinutes: overtime,
		ComputedAt:      now,
	}
	if prior != nil {
		b.CarryoverMinutes = prior.BalanceMinutes
	}
	if existing != nil {
		b.AdjustmentMinutes = existing.AdjustmentMinutes
		b.PayoutMinutes = existing.PayoutMinutes
		b.AuditLog = existing.AuditLog
	}
	b.BalanceMinutes = b.CarryoverMinutes + b.OvertimeMinutes + b.AdjustmentMinutes - b.PayoutMinutes
	return b
}

// SumOvertime totals the overtime of a month's daily summaries.
func SumOvertime(summaries []DailySummary) int {
	total := 0
	for _, s := range summaries {
		total += s.OvertimeMinutes
	}
	return total
}

// =============================================================================
// AUDIT TRAIL - Append, never overwrite
// =============================================================================

// AppendAudit adds one line to a balance row's audit trail.
func AppendAudit(log string, at time.Time, actor, action string, minutes int, reason string) string {
	line := fmt.Sprintf("%s %s %s %+dm", at.UTC().Format(time.RFC3339), actor, action, minutes)
	if reason != "" {
		line += ": " + reason
	}
	if log == "" {
		return line
	}
	return log + "\n" + line
}
