// internal/catalog/domain.go
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a book or other lendable library item. AvailableCopies is
// the authoritative count of copies not tied to an open loan; it is mutated
// only through Repository.AdjustAvailableCopies.
type Item struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ISBN            string    `db:"isbn" json:"isbn"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	TotalCopies     int       `db:"total_copies" json:"total_copies"`
	AvailableCopies int       `db:"available_copies" json:"available_copies"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
