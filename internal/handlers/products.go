package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"qoupay/internal/middleware"
	"qoupay/internal/money"
	"qoupay/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load products")
		return
	}
	rows := make([]map[string]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, productJSON(p))
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	if !product.IsActive {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, productJSON(product))
}

func (h *Handler) BuyProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	productID := chi.URLParam(r, "id")
	result, err := h.purchase.Buy(r.Context(), userID, productID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductUnavailable):
			respondError(w, http.StatusNotFound, "product unavailable")
		case errors.Is(err, services.ErrOutOfStock):
			respondError(w, http.StatusConflict, "product out of stock")
		case errors.Is(err, services.ErrInsufficientFunds):
			respondJSON(w, http.StatusPaymentRequired, map[string]string{
				"error":       "insufficient balance, top up first",
				"deposit_url": "/deposits",
			})
		default:
			respondError(w, http.StatusInternalServerError, "purchase failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"order": map[string]any{
			"id":            result.Order.ID,
			"product_id":    result.Order.ProductID,
			"product_name":  result.Product.Name,
			"quantity":      result.Order.Quantity,
			"total_price":   result.Order.TotalPrice,
			"display_price": money.FormatRupiah(result.Order.TotalPrice),
			"status":        result.Order.Status,
		},
		"balance":         result.Balance,
		"display_balance": money.FormatRupiah(result.Balance),
		"whatsapp_url":    result.WhatsappURL,
		"message":         result.Message,
	})
}
