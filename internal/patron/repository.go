// internal/patron/repository.go
package patron

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

var ErrNotFound = errors.New("patron not found")

const (
	table            = "patrons"
	credentialsTable = "credentials"
)

var dialect = goqu.Dialect("postgres")

// Repository persists patrons and their credentials.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Create(ctx context.Context, q postgres.Querier, p *Patron) error {
	query, args, err := dialect.Insert(table).Prepared(true).Rows(goqu.Record{
		"id":     p.ID,
		"email":  p.Email,
		"name":   p.Name,
		"status": p.Status,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert patron: %w", err)
	}
	return nil
}

func (r *Repository) CreateCredential(ctx context.Context, q postgres.Querier, c *Credential) error {
	query, args, err := dialect.Insert(credentialsTable).Prepared(true).Rows(goqu.Record{
		"patron_id":     c.PatronID,
		"password_hash": c.PasswordHash,
		"salt":          c.Salt,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, q postgres.Querier, p *Patron) error {
	query, args, err := dialect.Update(table).Prepared(true).Set(goqu.Record{
		"email":      p.Email,
		"name":       p.Name,
		"status":     p.Status,
		"updated_at": goqu.L("NOW()"),
	}).Where(goqu.C("id").Eq(p.ID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update patron: %w", err)
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
		return fmt.Errorf("delete patron: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*Patron, error) {
	return r.findOne(ctx, q, goqu.C("id").Eq(id))
}

func (r *Repository) FindByEmail(ctx context.Context, q postgres.Querier, email string) (*Patron, error) {
	return r.findOne(ctx, q, goqu.C("email").Eq(email))
}

func (r *Repository) findOne(ctx context.Context, q postgres.Querier, cond goqu.Expression) (*Patron, error) {
	query, args, err := dialect.From(table).Prepared(true).Where(cond).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var p Patron
	if err := sqlx.GetContext(ctx, q, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select patron: %w", err)
	}
	return &p, nil
}

func (r *Repository) FindCredential(ctx context.Context, q postgres.Querier, patronID uuid.UUID) (*Credential, error) {
	query, args, err := dialect.From(credentialsTable).Prepared(true).
		Where(goqu.C("patron_id").Eq(patronID)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var c Credential
	if err := sqlx.GetContext(ctx, q, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select credential: %w", err)
	}
	return &c, nil
}
