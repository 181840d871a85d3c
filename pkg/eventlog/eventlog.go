// pkg/eventlog/eventlog.go
package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookcirc/pkg/postgres"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is one recorded domain event.
type Event struct {
	ID            int64     `db:"id" json:"id"`
	AggregateID   uuid.UUID `db:"aggregate_id" json:"aggregate_id"`
	AggregateType string    `db:"aggregate_type" json:"aggregate_type"`
	EventType     string    `db:"event_type" json:"event_type"`
	Payload       []byte    `db:"payload" json:"payload"`
	Version       int       `db:"version" json:"version"`
	OccurredAt    time.Time `db:"occurred_at" json:"occurred_at"`
}

// Encode serializes an event payload.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode event payload: %w", err)
	}
	return data, nil
}

// Log appends and loads domain events. Unlike a standalone event store it
// never opens its own transaction: Append takes the caller's querier, so the
// recorded events commit or roll back together with the state they describe.
type Log struct {
	table  string
	tracer trace.Tracer
}

type Option func(*Log)

// WithTableName overrides the default events table.
func WithTableName(table string) Option {
	return func(l *Log) {
		l.table = table
	}
}

func New(opts ...Option) *Log {
	l := &Log{
		table:  "lending_events",
		tracer: otel.Tracer("bookcirc/eventlog"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append atomically appends events for one aggregate with optimistic
// concurrency control, inside whatever transaction q belongs to.
func (l *Log) Append(ctx context.Context, q postgres.Querier, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events ...Event) error {
	ctx, span := l.tracer.Start(ctx, "eventlog.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	var currentVersion int
	err := q.QueryRowxContext(ctx, fmt.Sprintf(`
		SELECT COALESCE(MAX(version), 0)
		FROM %s
		WHERE aggregate_id = $1
	`, l.table), aggregateID).Scan(&currentVersion)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("query current version: %w", err)
	}

	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	for i, event := range events {
		version := expectedVersion + i + 1

		_, err := q.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (aggregate_id, aggregate_type, event_type, payload, version, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, l.table),
			aggregateID,
			aggregateType,
			event.EventType,
			event.Payload,
			version,
			time.Now().UTC(),
		)
		if err != nil {
			// Unique constraint violation means another writer won the race.
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}

	return nil
}

// Load returns all events for an aggregate in version order.
func (l *Log) Load(ctx context.Context, q postgres.Querier, aggregateID uuid.UUID) ([]Event, error) {
	ctx, span := l.tracer.Start(ctx, "eventlog.load",
		trace.WithAttributes(attribute.String("aggregate.id", aggregateID.String())),
	)
	defer span.End()

	rows, err := q.QueryxContext(ctx, fmt.Sprintf(`
		SELECT id, aggregate_id, aggregate_type, event_type, payload, version, occurred_at
		FROM %s
		WHERE aggregate_id = $1
		ORDER BY version ASC
	`, l.table), aggregateID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.StructScan(&e); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
