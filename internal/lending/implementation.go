// internal/lending/implementation.go
package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bookcirc/internal/catalog"
	"bookcirc/internal/loan"
	"bookcirc/internal/patron"
	"bookcirc/pkg/eventlog"
	"bookcirc/pkg/postgres"
)

const aggregateTypeLoan = "loan"

// service implements the Service interface. It owns every cross-entity
// business rule; the stores it drives apply no policy of their own.
type service struct {
	uow     UnitOfWork
	patrons PatronStore
	items   ItemStore
	loans   LoanStore
	events  EventLog

	policy FinePolicy
	locale string
	clock  func() time.Time
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures the lending service.
type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// WithClock overrides the time source. Tests use this to move loans past
// their due date without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(s *service) { s.clock = clock }
}

func WithFinePolicy(policy FinePolicy) Option {
	return func(s *service) { s.policy = policy }
}

// WithLocale selects the error-message catalog.
func WithLocale(locale string) Option {
	return func(s *service) { s.locale = locale }
}

// WithEventLog enables recording of loan lifecycle events inside the same
// transaction as the state they describe.
func WithEventLog(events EventLog) Option {
	return func(s *service) { s.events = events }
}

// NewService creates a new lending service instance.
func NewService(uow UnitOfWork, patrons PatronStore, items ItemStore, loans LoanStore, opts ...Option) Service {
	s := &service{
		uow:     uow,
		patrons: patrons,
		items:   items,
		loans:   loans,
		policy:  FinePolicy{DailyRate: 1.0},
		locale:  defaultLocale,
		clock:   time.Now,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("bookcirc/lending"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Borrow lends one copy of an item to a patron. The eligibility check, the
// availability check, the inventory decrement and the loan insert all happen
// inside one transaction: a failure at any point leaves available_copies
// untouched.
func (s *service) Borrow(ctx context.Context, patronID, itemID uuid.UUID, loanPeriodDays int) (*loan.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "lending.borrow",
		trace.WithAttributes(
			attribute.String("patron.id", patronID.String()),
			attribute.String("item.id", itemID.String()),
			attribute.Int("loan.period_days", loanPeriodDays),
		),
	)
	defer span.End()

	// Fail fast before touching any store.
	if patronID == uuid.Nil {
		return nil, s.failf(KindInvalidArgument, "patron id is required")
	}
	if itemID == uuid.Nil {
		return nil, s.failf(KindInvalidArgument, "item id is required")
	}
	if loanPeriodDays <= 0 {
		return nil, s.failf(KindInvalidArgument, "loan period must be positive")
	}

	var created *loan.Loan
	err := s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		p, err := s.patrons.FindByID(ctx, q, patronID)
		if err != nil {
			if errors.Is(err, patron.ErrNotFound) {
				return s.fail(KindNotFound, err)
			}
			return fmt.Errorf("find patron: %w", err)
		}
		if p.Status != patron.StatusActive {
			return s.fail(KindNotEligible, nil)
		}

		item, err := s.items.FindByID(ctx, q, itemID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return s.fail(KindNotFound, err)
			}
			return fmt.Errorf("find item: %w", err)
		}
		if item.AvailableCopies <= 0 {
			return s.fail(KindOutOfStock, nil)
		}

		// The conditional update may still reject when a concurrent borrow
		// took the last copy after our read.
		ok, err := s.items.AdjustAvailableCopies(ctx, q, itemID, -1)
		if err != nil {
			return fmt.Errorf("decrement available copies: %w", err)
		}
		if !ok {
			return s.fail(KindOutOfStock, nil)
		}

		now := s.clock().UTC()
		l := &loan.Loan{
			ID:         uuid.New(),
			PatronID:   patronID,
			ItemID:     itemID,
			BorrowDate: now,
			DueDate:    now.AddDate(0, 0, loanPeriodDays),
			Status:     loan.StatusBorrowed,
		}
		if err := s.loans.Create(ctx, q, l); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}

		if err := s.record(ctx, q, l.ID, 0, "LoanCreated", LoanCreatedEvent{
			LoanID:   l.ID,
			PatronID: l.PatronID,
			ItemID:   l.ItemID,
			DueDate:  l.DueDate,
		}); err != nil {
			return err
		}

		created = l
		return nil
	})
	if err != nil {
		return nil, s.classify(err)
	}

	s.logger.Info("loan created",
		zap.String("loan_id", created.ID.String()),
		zap.String("patron_id", patronID.String()),
		zap.String("item_id", itemID.String()),
		zap.Time("due_date", created.DueDate),
	)
	return created, nil
}

// Return closes a borrowed loan and puts its copy back into circulation.
// The status flip and the inventory increment commit together.
func (s *service) Return(ctx context.Context, loanID uuid.UUID) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "lending.return",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())),
	)
	defer span.End()

	if loanID == uuid.Nil {
		return false, s.failf(KindInvalidArgument, "loan id is required")
	}

	err := s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		l, err := s.loans.FindByID(ctx, q, loanID)
		if err != nil {
			if errors.Is(err, loan.ErrNotFound) {
				return s.fail(KindNotFound, err)
			}
			return fmt.Errorf("find loan: %w", err)
		}
		if !l.Open() {
			return s.fail(KindAlreadyReturned, nil)
		}

		now := s.clock().UTC()
		l.Status = loan.StatusReturned
		l.ReturnDate = &now
		if err := s.loans.Update(ctx, q, l); err != nil {
			return fmt.Errorf("update loan: %w", err)
		}

		ok, err := s.items.AdjustAvailableCopies(ctx, q, l.ItemID, +1)
		if err != nil {
			return fmt.Errorf("increment available copies: %w", err)
		}
		if !ok {
			// Incrementing past total_copies means the counter and the loan
			// records disagree; refuse to commit either write.
			return s.failf(KindTransactionFailure, "inventory increment rejected")
		}

		return s.record(ctx, q, l.ID, 1, "LoanReturned", LoanReturnedEvent{
			LoanID:     l.ID,
			PatronID:   l.PatronID,
			ItemID:     l.ItemID,
			ReturnDate: now,
		})
	})
	if err != nil {
		return false, s.classify(err)
	}

	s.logger.Info("loan returned", zap.String("loan_id", loanID.String()))
	return true, nil
}

// CalculateFine reports the fine owed on a loan. Pure query: no state is
// mutated.
func (s *service) CalculateFine(ctx context.Context, loanID uuid.UUID) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "lending.calculate_fine",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())),
	)
	defer span.End()

	if loanID == uuid.Nil {
		return 0, s.failf(KindInvalidArgument, "loan id is required")
	}

	var fine float64
	err := s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		l, err := s.loans.FindByID(ctx, q, loanID)
		if err != nil {
			if errors.Is(err, loan.ErrNotFound) {
				return s.fail(KindNotFound, err)
			}
			return fmt.Errorf("find loan: %w", err)
		}
		fine = s.policy.Fine(l, s.clock().UTC())
		return nil
	})
	if err != nil {
		return 0, s.classify(err)
	}

	span.SetAttributes(attribute.Float64("fine.amount", fine))
	return fine, nil
}

func (s *service) record(ctx context.Context, q postgres.Querier, loanID uuid.UUID, expectedVersion int, eventType string, payload any) error {
	if s.events == nil {
		return nil
	}

	data, err := eventlog.Encode(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	if err := s.events.Append(ctx, q, loanID, aggregateTypeLoan, expectedVersion, eventlog.Event{
		EventType: eventType,
		Payload:   data,
	}); err != nil {
		return fmt.Errorf("append %s event: %w", eventType, err)
	}
	return nil
}

func (s *service) fail(kind Kind, cause error) error {
	return &Error{Kind: kind, msg: messageFor(s.locale, kind), err: cause}
}

func (s *service) failf(kind Kind, detail string) error {
	return &Error{Kind: kind, msg: messageFor(s.locale, kind) + ": " + detail}
}

// classify guarantees every error leaving the service carries a kind.
// Anything the business checks did not already classify is a failure of the
// transaction itself.
func (s *service) classify(err error) error {
	if KindOf(err) != KindUnknown {
		return err
	}
	s.logger.Error("lending transaction failed", zap.Error(err))
	return s.fail(KindTransactionFailure, err)
}
