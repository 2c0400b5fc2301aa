package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"qoupay/internal/gateway"
	"qoupay/internal/middleware"
	"qoupay/internal/money"
	"qoupay/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) DepositMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.depositSv.Methods(r.Context())
	if err != nil {
		var gwErr *gateway.GatewayError
		if errors.As(err, &gwErr) {
			respondError(w, http.StatusBadGateway, "unable to fetch payment methods, try again")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to fetch payment methods")
		return
	}
	respondJSON(w, http.StatusOK, methods)
}

type createDepositRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
}

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	deposit, err := h.depositSv.Create(r.Context(), userID, amount, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidMethod):
			respondError(w, http.StatusBadRequest, "amount and method are required")
		case errors.Is(err, services.ErrAmountBelowMinimum):
			respondError(w, http.StatusBadRequest, fmt.Sprintf("minimum deposit is %s", money.FormatRupiah(h.cfg.MinDepositAmount)))
		case errors.Is(err, services.ErrUserNotFound):
			respondError(w, http.StatusUnauthorized, "user not found")
		default:
			var gwErr *gateway.GatewayError
			if errors.As(err, &gwErr) {
				respondError(w, http.StatusBadGateway, "payment gateway unavailable, try again")
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to create deposit")
		}
		return
	}
	respondJSON(w, http.StatusCreated, depositJSON(deposit))
}

// DepositStatus is the user-facing status view and one of the two
// settlement triggers: opening it settles a success whose credit has
// not been applied yet.
func (h *Handler) DepositStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	depositID := chi.URLParam(r, "id")
	deposit, credited, err := h.depositSv.StatusView(r.Context(), userID, depositID)
	if err != nil {
		if errors.Is(err, services.ErrDepositNotFound) {
			respondError(w, http.StatusNotFound, "deposit not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load deposit status")
		return
	}
	payload := depositJSON(deposit)
	if credited {
		payload["message"] = fmt.Sprintf("Deposit %s berhasil ditambahkan ke saldo Anda.", money.FormatRupiah(deposit.CreditAmount))
	}
	payload["store_whatsapp_link"] = h.cfg.StoreWhatsappLink
	respondJSON(w, http.StatusOK, payload)
}

// CheckDeposit reports the locally stored status for a reference id.
// It does not re-query the gateway.
func (h *Handler) CheckDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reffID := chi.URLParam(r, "reffID")
	deposit, final, err := h.depositSv.CheckByReference(r.Context(), userID, reffID)
	if err != nil {
		if errors.Is(err, services.ErrDepositNotFound) {
			respondError(w, http.StatusNotFound, "deposit not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to check deposit")
		return
	}
	message := fmt.Sprintf("Status saat ini (lokal): %s. Cek manual atau tunggu notifikasi.", deposit.Status)
	if final {
		message = fmt.Sprintf("Status sudah final: %s", deposit.Status)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"data":    depositJSON(deposit),
	})
}
