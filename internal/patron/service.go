// internal/patron/service.go
package patron

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the patron service.
type Service interface {
	Register(ctx context.Context, email, name, password string) (*Patron, error)
	Authenticate(ctx context.Context, email, password string) (*Patron, error)
	GetPatron(ctx context.Context, id uuid.UUID) (*Patron, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}
