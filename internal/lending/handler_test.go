// internal/lending/handler_test.go
package lending

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcirc/internal/loan"
)

// stubService returns canned results so the handler's status mapping can be
// tested without a store.
type stubService struct {
	borrowLoan *loan.Loan
	borrowErr  error
	returnErr  error
	fine       float64
	fineErr    error
}

func (s *stubService) Borrow(ctx context.Context, patronID, itemID uuid.UUID, loanPeriodDays int) (*loan.Loan, error) {
	return s.borrowLoan, s.borrowErr
}

func (s *stubService) Return(ctx context.Context, loanID uuid.UUID) (bool, error) {
	if s.returnErr != nil {
		return false, s.returnErr
	}
	return true, nil
}

func (s *stubService) CalculateFine(ctx context.Context, loanID uuid.UUID) (float64, error) {
	return s.fine, s.fineErr
}

func newTestRouter(svc Service) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)
	return r
}

func TestHandleBorrow_Created(t *testing.T) {
	l := &loan.Loan{ID: uuid.New(), PatronID: uuid.New(), ItemID: uuid.New(), Status: loan.StatusBorrowed}
	router := newTestRouter(&stubService{borrowLoan: l})

	body, _ := json.Marshal(map[string]any{
		"patron_id":        l.PatronID,
		"item_id":          l.ItemID,
		"loan_period_days": 14,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var got loan.Loan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, l.ID, got.ID)
}

func TestWriteError_StatusByKind(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindInvalidArgument, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindNotEligible, http.StatusForbidden},
		{KindOutOfStock, http.StatusConflict},
		{KindAlreadyReturned, http.StatusConflict},
		{KindTransactionFailure, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			svc := &stubService{borrowErr: &Error{Kind: tc.kind, msg: messageFor("en", tc.kind)}}
			router := newTestRouter(svc)

			body, _ := json.Marshal(map[string]any{
				"patron_id":        uuid.New(),
				"item_id":          uuid.New(),
				"loan_period_days": 14,
			})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

			assert.Equal(t, tc.status, rec.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.kind.String(), resp["kind"])
		})
	}
}

func TestHandleReturn_AlreadyReturnedConflict(t *testing.T) {
	svc := &stubService{returnErr: &Error{Kind: KindAlreadyReturned, msg: messageFor("en", KindAlreadyReturned)}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans/"+uuid.NewString()+"/return", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleFine_OK(t *testing.T) {
	router := newTestRouter(&stubService{fine: 12.5})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loans/"+uuid.NewString()+"/fine", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]float64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 12.5, resp["fine"], 1e-9)
}

func TestHandleBorrow_BadUUIDInPath(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans/not-a-uuid/return", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
