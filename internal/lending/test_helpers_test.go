// internal/lending/test_helpers_test.go
package lending

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookcirc/internal/catalog"
	"bookcirc/internal/loan"
	"bookcirc/internal/patron"
	"bookcirc/pkg/eventlog"
	"bookcirc/pkg/postgres"
)

// memStore is an in-memory stand-in for the three repositories and the unit
// of work. Within serializes callers with a mutex (modelling the store's
// transaction isolation) and snapshots all state up front, restoring it when
// the function fails, so rollback semantics hold exactly.
type memStore struct {
	mu sync.Mutex

	patrons map[uuid.UUID]patron.Patron
	items   map[uuid.UUID]catalog.Item
	loans   map[uuid.UUID]loan.Loan

	findPatronCalls int
}

func newMemStore() *memStore {
	return &memStore{
		patrons: make(map[uuid.UUID]patron.Patron),
		items:   make(map[uuid.UUID]catalog.Item),
		loans:   make(map[uuid.UUID]loan.Loan),
	}
}

func (m *memStore) addPatron(status string) uuid.UUID {
	id := uuid.New()
	m.patrons[id] = patron.Patron{ID: id, Email: id.String() + "@example.com", Name: "Test Patron", Status: status}
	return id
}

func (m *memStore) addItem(total, available int) uuid.UUID {
	id := uuid.New()
	m.items[id] = catalog.Item{ID: id, ISBN: "9780000000000", Title: "Test Book", Author: "Test Author", TotalCopies: total, AvailableCopies: available}
	return id
}

func (m *memStore) addLoan(l loan.Loan) uuid.UUID {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	m.loans[l.ID] = l
	return l.ID
}

func (m *memStore) available(itemID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[itemID].AvailableCopies
}

func (m *memStore) openLoans(itemID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.loans {
		if l.ItemID == itemID && l.Status == loan.StatusBorrowed {
			n++
		}
	}
	return n
}

// Within implements UnitOfWork.
func (m *memStore) Within(ctx context.Context, fn func(ctx context.Context, q postgres.Querier) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	patrons := copyMap(m.patrons)
	items := copyMap(m.items)
	loans := make(map[uuid.UUID]loan.Loan, len(m.loans))
	for id, l := range m.loans {
		if l.ReturnDate != nil {
			rd := *l.ReturnDate
			l.ReturnDate = &rd
		}
		loans[id] = l
	}

	if err := fn(ctx, nil); err != nil {
		m.patrons = patrons
		m.items = items
		m.loans = loans
		return err
	}
	return nil
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// FindByID implements PatronStore.
func (m *memStore) FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*patron.Patron, error) {
	m.findPatronCalls++
	p, ok := m.patrons[id]
	if !ok {
		return nil, patron.ErrNotFound
	}
	return &p, nil
}

// itemStore and loanStore give the item/loan views of memStore their own
// method sets, since all three stores share FindByID-shaped lookups.
type itemStore struct{ m *memStore }

func (s itemStore) FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*catalog.Item, error) {
	item, ok := s.m.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &item, nil
}

func (s itemStore) AdjustAvailableCopies(ctx context.Context, q postgres.Querier, id uuid.UUID, delta int) (bool, error) {
	item, ok := s.m.items[id]
	if !ok {
		return false, nil
	}
	next := item.AvailableCopies + delta
	if next < 0 || next > item.TotalCopies {
		return false, nil
	}
	item.AvailableCopies = next
	s.m.items[id] = item
	return true, nil
}

type loanStore struct{ m *memStore }

func (s loanStore) Create(ctx context.Context, q postgres.Querier, l *loan.Loan) error {
	s.m.loans[l.ID] = *l
	return nil
}

func (s loanStore) Update(ctx context.Context, q postgres.Querier, l *loan.Loan) error {
	if _, ok := s.m.loans[l.ID]; !ok {
		return loan.ErrNotFound
	}
	s.m.loans[l.ID] = *l
	return nil
}

func (s loanStore) FindByID(ctx context.Context, q postgres.Querier, id uuid.UUID) (*loan.Loan, error) {
	l, ok := s.m.loans[id]
	if !ok {
		return nil, loan.ErrNotFound
	}
	if l.ReturnDate != nil {
		rd := *l.ReturnDate
		l.ReturnDate = &rd
	}
	return &l, nil
}

// recordingEventLog captures appended events; failErr, when set, makes every
// append fail.
type recordingEventLog struct {
	mu      sync.Mutex
	events  []eventlog.Event
	failErr error
}

func (r *recordingEventLog) Append(ctx context.Context, q postgres.Querier, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events ...eventlog.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.events = append(r.events, events...)
	return nil
}

var errEventLogDown = errors.New("event log unavailable")

func newTestService(m *memStore, opts ...Option) Service {
	base := []Option{WithFinePolicy(FinePolicy{DailyRate: 0.5})}
	return NewService(m, m, itemStore{m}, loanStore{m}, append(base, opts...)...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
