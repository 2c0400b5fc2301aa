package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"qoupay/internal/models"
	"qoupay/internal/money"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func depositJSON(d models.Deposit) map[string]any {
	return map[string]any{
		"id":              d.ID,
		"reff_id":         d.ReffID,
		"method":          d.Method,
		"amount":          d.Amount,
		"fee":             d.Fee,
		"credit_amount":   d.CreditAmount,
		"display_amount":  money.FormatRupiah(d.CreditAmount),
		"qr_image_url":    d.QRImageURL,
		"qr_image_string": d.QRImageString,
		"status":          d.Status,
		"balance_applied": d.BalanceApplied,
		"expired_at":      d.ExpiredAt,
		"created_at":      d.CreatedAt,
	}
}

func productJSON(p models.Product) map[string]any {
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price,
		"display_price": money.FormatRupiah(p.Price),
		"category":      p.Category,
		"stock":         p.Stock,
		"is_active":     p.IsActive,
		"created_at":    p.CreatedAt,
	}
}
