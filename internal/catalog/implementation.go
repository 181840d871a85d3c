// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"bookcirc/pkg/postgres"
)

var ErrInvalidCopies = errors.New("total copies must be positive")

// service implements the Service interface.
type service struct {
	db     *sqlx.DB
	uow    *postgres.UnitOfWork
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new catalog service instance.
func NewService(db *sqlx.DB, repo *Repository, logger *zap.Logger) Service {
	return &service{
		db:     db,
		uow:    postgres.NewUnitOfWork(db),
		repo:   repo,
		logger: logger,
	}
}

// AddItem adds a new item to the catalog. All copies start available.
func (s *service) AddItem(ctx context.Context, isbn, title, author string, totalCopies int) (*Item, error) {
	if totalCopies <= 0 {
		return nil, ErrInvalidCopies
	}

	item := &Item{
		ID:              uuid.New(),
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}

	err := s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		return s.repo.Create(ctx, q, item)
	})
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	s.logger.Info("item added",
		zap.String("item_id", item.ID.String()),
		zap.String("isbn", item.ISBN),
		zap.Int("total_copies", item.TotalCopies),
	)
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *service) RemoveItem(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Within(ctx, func(ctx context.Context, q postgres.Querier) error {
		return s.repo.Delete(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	s.logger.Info("item removed", zap.String("item_id", id.String()))
	return nil
}
