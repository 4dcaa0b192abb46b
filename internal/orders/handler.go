package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
	"github.com/joao-fontenele/orderflow-placement/internal/placement"
)

type Placer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*placement.Result, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type Handler struct {
	placer Placer
	reader OrderReader
	logger *slog.Logger
}

func NewHandler(placer Placer, reader OrderReader, logger *slog.Logger) *Handler {
	return &Handler{
		placer: placer,
		reader: reader,
		logger: logger,
	}
}

type errorResponse struct {
	Error    string   `json:"error"`
	SkuCodes []string `json:"sku_codes,omitempty"`
}

const maxRequestBytes = 1 << 20

func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.placer.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writePlacementError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) writePlacementError(w http.ResponseWriter, err error) {
	var (
		validationErr *placement.ValidationError
		stockErr      *placement.StockUnavailableError
		inventoryErr  *placement.InventoryLookupError
	)

	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &stockErr):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: stockErr.Error(), SkuCodes: stockErr.SkuCodes})
	case errors.As(err, &inventoryErr):
		h.writeError(w, http.StatusBadGateway, "inventory service unavailable")
	default:
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.reader.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			h.writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(r.Context(), "order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
