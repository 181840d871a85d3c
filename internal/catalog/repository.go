// internal/catalog/repository.go
package catalog

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

var ErrNotFound = errors.New("item not found")

const table = "items"

var dialect = goqu.Dialect("postgres")

// Repository persists catalog items.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Create(ctx context.Context, q postgres.Querier, item *Item) error {
	query, args, err := dialect.Insert(table).Prepared(true).Rows(goqu.Record{
		"id":               item.ID,
		"isbn":             item.ISBN,
		"title":            item.Title,
		"author":           item.Author,
		"total_copies":     item.TotalCopies,
		"available_copies": item.AvailableCopies,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, q postgres.Querier, item *Item) error {
	query, args, err := dialect.Update(table).Prepared(true).Set(goqu.Record{
		"isbn":       item.ISBN,
		"title":      item.Title,
		"author":     item.Author,
		"updated_at": goqu.L("NOW()"),
	}).Where(goqu.C("id").Eq(item.ID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
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
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*Item, error) {
	query, args, err := dialect.From(table).Prepared(true).
		Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var item Item
	if err := sqlx.GetContext(ctx, q, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select item: %w", err)
	}
	return &item, nil
}

// AdjustAvailableCopies changes available_copies by delta in one conditional
// update, guarded so the count stays within [0, total_copies]. It returns
// false when the guard rejects the change, which under concurrent borrows of
// the last copy is how every caller but one loses the race. This is the only
// mutation path for the counter; there is deliberately no plain setter.
func (r *Repository) AdjustAvailableCopies(ctx context.Context, q postgres.Querier, id uuid.UUID, delta int) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE items
		SET available_copies = available_copies + $1, updated_at = NOW()
		WHERE id = $2
		  AND available_copies + $1 >= 0
		  AND available_copies + $1 <= total_copies
	`, delta, id)
	if err != nil {
		return false, fmt.Errorf("adjust available copies: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
