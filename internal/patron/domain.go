// internal/patron/domain.go
package patron

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Patron is a registered borrower. Only active patrons may borrow; the
// lending service reads Status but never writes it.
type Patron struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Credential holds a patron's salted password hash.
type Credential struct {
	PatronID     uuid.UUID `db:"patron_id" json:"-"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Salt         string    `db:"salt" json:"-"`
}

// ValidStatus reports whether s is a known patron status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}
