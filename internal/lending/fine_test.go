// internal/lending/fine_test.go
package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"bookcirc/internal/loan"
)

func TestFinePolicy_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.Float64Range(0.01, 100).Draw(t, "rate")
		policy := FinePolicy{DailyRate: rate}

		due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		// Anywhere from 30 days early to 365 days late, at hour granularity.
		offsetHours := rapid.IntRange(-30*24, 365*24).Draw(t, "offsetHours")
		now := due.Add(time.Duration(offsetHours) * time.Hour)

		l := &loan.Loan{DueDate: due, Status: loan.StatusBorrowed}
		fine := policy.Fine(l, now)

		assert.GreaterOrEqual(t, fine, 0.0, "fine is never negative")

		if !now.After(due) {
			assert.Zero(t, fine, "no fine before the due date")
		} else {
			wholeDays := offsetHours / 24
			assert.InDelta(t, float64(wholeDays)*rate, fine, 1e-9,
				"fine is whole overdue days times the daily rate")
		}

		// One more day overdue never decreases the fine.
		later := policy.Fine(l, now.Add(24*time.Hour))
		assert.GreaterOrEqual(t, later, fine)
	})
}

func TestFinePolicy_ZeroExactlyAtDueDate(t *testing.T) {
	policy := FinePolicy{DailyRate: 2.5}
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &loan.Loan{DueDate: due, Status: loan.StatusBorrowed}

	assert.Zero(t, policy.Fine(l, due))
}

func TestFinePolicy_PartialDayDoesNotCharge(t *testing.T) {
	policy := FinePolicy{DailyRate: 2.5}
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &loan.Loan{DueDate: due, Status: loan.StatusBorrowed}

	// 23 hours late is still zero whole days.
	assert.Zero(t, policy.Fine(l, due.Add(23*time.Hour)))
	assert.InDelta(t, 2.5, policy.Fine(l, due.Add(25*time.Hour)), 1e-9)
}
