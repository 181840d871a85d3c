// internal/lending/service.go
package lending

import (
	"context"

	"github.com/google/uuid"

	"bookcirc/internal/catalog"
	"bookcirc/internal/loan"
	"bookcirc/internal/patron"
	"bookcirc/pkg/eventlog"
	"bookcirc/pkg/postgres"
)

// Service defines the interface for the lending service.
type Service interface {
	Borrow(ctx context.Context, patronID, itemID uuid.UUID, loanPeriodDays int) (*loan.Loan, error)
	Return(ctx context.Context, loanID uuid.UUID) (bool, error)
	CalculateFine(ctx context.Context, loanID uuid.UUID) (float64, error)
}

// UnitOfWork runs a function inside one transaction scope. Everything the
// function does through q commits or rolls back together.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, q postgres.Querier) error) error
}

// PatronStore is the slice of the patron repository the lending service consumes.
type PatronStore interface {
	FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*patron.Patron, error)
}

// ItemStore is the slice of the catalog repository the lending service consumes.
type ItemStore interface {
	FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*catalog.Item, error)
	AdjustAvailableCopies(ctx context.Context, q postgres.Querier, id uuid.UUID, delta int) (bool, error)
}

// LoanStore is the slice of the loan repository the lending service consumes.
type LoanStore interface {
	Create(ctx context.Context, q postgres.Querier, l *loan.Loan) error
	Update(ctx context.Context, q postgres.Querier, l *loan.Loan) error
	FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*loan.Loan, error)
}

// EventLog records domain events inside the caller's transaction.
type EventLog interface {
	Append(ctx context.Context, q postgres.Querier, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events ...eventlog.Event) error
}
