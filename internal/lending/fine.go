// internal/lending/fine.go
package lending

import (
	"time"

	"bookcirc/internal/loan"
)

// FinePolicy computes the fine owed on a loan: whole days past the due date,
// each charged at DailyRate.
type FinePolicy struct {
	DailyRate float64
}

// Fine returns the amount owed as of now. For a returned loan the elapsed
// time ends at the return date, otherwise at now. Never negative; zero for a
// loan that is not overdue.
func (p FinePolicy) Fine(l *loan.Loan, now time.Time) float64 {
	end := now
	if l.ReturnDate != nil {
		end = *l.ReturnDate
	}

	overdueDays := int(end.Sub(l.DueDate).Hours() / 24)
	if overdueDays <= 0 {
		return 0
	}
	return float64(overdueDays) * p.DailyRate
}
