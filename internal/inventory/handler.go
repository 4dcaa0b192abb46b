package inventory

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

type StockReader interface {
	StockLevels(ctx context.Context, skuCodes []string) ([]domain.StockLevel, error)
}

type Handler struct {
	repo   StockReader
	logger *slog.Logger
}

func NewHandler(repo StockReader, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleIsInStock(w http.ResponseWriter, r *http.Request) {
	skuCodes := r.URL.Query()["sku_code"]
	if len(skuCodes) == 0 {
		h.writeError(w, http.StatusBadRequest, "missing sku_code")
		return
	}

	levels, err := h.repo.StockLevels(r.Context(), skuCodes)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read stock levels", "error", err, "sku_codes", skuCodes)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	availability := make([]domain.InventoryAvailability, 0, len(levels))
	for _, level := range levels {
		availability = append(availability, domain.InventoryAvailability{
			SkuCode: level.SkuCode,
			InStock: level.Quantity > 0,
		})
	}

	h.logger.InfoContext(r.Context(), "stock checked", "requested", len(skuCodes), "found", len(levels))
	h.writeJSON(w, http.StatusOK, availability)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
