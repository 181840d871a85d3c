// internal/lending/domain.go
package lending

import (
	"time"

	"github.com/google/uuid"
)

// LoanCreatedEvent is recorded when a borrow commits.
type LoanCreatedEvent struct {
	LoanID   uuid.UUID `json:"loan_id"`
	PatronID uuid.UUID `json:"patron_id"`
	ItemID   uuid.UUID `json:"item_id"`
	DueDate  time.Time `json:"due_date"`
}

// LoanReturnedEvent is recorded when a return commits.
type LoanReturnedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	PatronID   uuid.UUID `json:"patron_id"`
	ItemID     uuid.UUID `json:"item_id"`
	ReturnDate time.Time `json:"return_date"`
}
