// internal/lending/handler.go
package lending

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the lending endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/loans", h.handleBorrow)
	r.Post("/loans/{id}/return", h.handleReturn)
	r.Get("/loans/{id}/fine", h.handleFine)
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatronID       uuid.UUID `json:"patron_id"`
		ItemID         uuid.UUID `json:"item_id"`
		LoanPeriodDays int       `json:"loan_period_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.service.Borrow(r.Context(), req.PatronID, req.ItemID, req.LoanPeriodDays)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(l)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	returned, err := h.service.Return(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"returned": returned})
}

func (h *Handler) handleFine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}

	fine, err := h.service.CalculateFine(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]float64{"fine": fine})
}

func writeError(w http.ResponseWriter, err error) {
	kind := KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case KindInvalidArgument:
		status = http.StatusBadRequest
	case KindNotFound:
		status = http.StatusNotFound
	case KindNotEligible:
		status = http.StatusForbidden
	case KindOutOfStock, KindAlreadyReturned:
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  kind.String(),
	})
}
