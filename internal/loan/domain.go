// internal/loan/domain.go
package loan

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
)

// Loan records one patron borrowing one item for a bounded period.
type Loan struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatronID   uuid.UUID  `db:"patron_id" json:"patron_id"`
	ItemID     uuid.UUID  `db:"item_id" json:"item_id"`
	BorrowDate time.Time  `db:"borrow_date" json:"borrow_date"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	ReturnDate *time.Time `db:"return_date" json:"return_date,omitempty"`
	Status     string     `db:"status" json:"status"`
}

// Open reports whether the loan has not been returned yet.
func (l *Loan) Open() bool {
	return l.Status == StatusBorrowed
}
