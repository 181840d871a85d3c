// internal/patron/implementation.go
package patron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bookcirc/pkg/postgres"
)

var (
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidStatus      = errors.New("invalid patron status")
)

// service implements the Service interface.
type service struct {
	db          *sqlx.DB
	uow         *postgres.UnitOfWork
	repo        *Repository
	logger      *zap.Logger
	rateLimiter *rate.Limiter
}

// NewService creates a new patron service instance.
func NewService(db *sqlx.DB, repo *Repository, logger *zap.Logger) Service {
	return &service{
		db:          db,
		uow:         postgres.NewUnitOfWork(db),
		repo:        repo,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 registrations per minute
	}
}

// Register creates a new patron. The patron row and its credential commit
// in one transaction.
func (s *service) Register(ctx context.Context, email, name, password string) (*Patron, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p := &Patron{
		ID:     uuid.New(),
		Email:  email,
		Name:   name,
		Status: StatusActive,
	}
	credential := &Credential{
		PatronID:     p.ID,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	err = s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		if err := s.repo.Create(ctx, q, p); err != nil {
			return err
		}
		return s.repo.CreateCredential(ctx, q, credential)
	})
	if err != nil {
		return nil, fmt.Errorf("register patron: %w", err)
	}

	s.logger.Info("patron registered",
		zap.String("patron_id", p.ID.String()),
		zap.String("email", p.Email),
	)
	return p, nil
}

// Authenticate verifies a patron's credentials and returns the patron if successful.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Patron, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	p, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	credential, err := s.repo.FindCredential(ctx, s.db, p.ID)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return p, nil
}

func (s *service) GetPatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

// SetStatus changes a patron's eligibility status.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	err := s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		p, err := s.repo.FindByID(ctx, q, id)
		if err != nil {
			return err
		}
		p.Status = status
		return s.repo.Update(ctx, q, p)
	})
	if err != nil {
		return fmt.Errorf("set patron status: %w", err)
	}

	s.logger.Info("patron status changed",
		zap.String("patron_id", id.String()),
		zap.String("status", status),
	)
	return nil
}
