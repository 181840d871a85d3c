// internal/loan/repository.go
package loan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookcirc/pkg/postgres"
)

var ErrNotFound = errors.New("loan not found")

const table = "loans"

var dialect = goqu.Dialect("postgres")

// Repository persists loans. It applies no business policy; status
// transitions are decided by the lending service.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Create(ctx context.Context, q postgres.Querier, l *Loan) error {
	query, args, err := dialect.Insert(table).Prepared(true).Rows(goqu.Record{
		"id":          l.ID,
		"patron_id":   l.PatronID,
		"item_id":     l.ItemID,
		"borrow_date": l.BorrowDate,
		"due_date":    l.DueDate,
		"return_date": l.ReturnDate,
		"status":      l.Status,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, q postgres.Querier, l *Loan) error {
	query, args, err := dialect.Update(table).Prepared(true).Set(goqu.Record{
		"return_date": l.ReturnDate,
		"status":      l.Status,
	}).Where(goqu.C("id").Eq(l.ID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	query, args, err := dialect.Delete(table).Prepared(true).
		Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*Loan, error) {
	query, args, err := dialect.From(table).Prepared(true).
		Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var l Loan
	if err := sqlx.GetContext(ctx, q, &l, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select loan: %w", err)
	}
	return &l, nil
}

func (r *Repository) FindByPatronID(ctx context.Context, q postgres.Querier, patronID uuid.UUID) ([]Loan, error) {
	return r.findBy(ctx, q, goqu.C("patron_id").Eq(patronID))
}

func (r *Repository) FindByItemID(ctx context.Context, q postgres.Querier, itemID uuid.UUID) ([]Loan, error) {
	return r.findBy(ctx, q, goqu.C("item_id").Eq(itemID))
}

func (r *Repository) findBy(ctx context.Context, q postgres.Querier, cond goqu.Expression) ([]Loan, error) {
	query, args, err := dialect.From(table).Prepared(true).
		Where(cond).Order(goqu.C("borrow_date").Asc()).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var loans []Loan
	if err := sqlx.SelectContext(ctx, q, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("select loans: %w", err)
	}
	return loans, nil
}
