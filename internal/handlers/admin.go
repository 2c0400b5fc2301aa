package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"qoupay/internal/middleware"
	"qoupay/internal/money"
	"qoupay/internal/services"
	"qoupay/internal/store"
	"qoupay/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	totalUsers, err := h.users.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	totalProducts, err := h.products.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	totalOrders, err := h.orders.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	depositSum, err := h.deposits.SumSuccessful(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_users":                     totalUsers,
		"total_products":                  totalProducts,
		"total_orders":                    totalOrders,
		"total_successful_deposit_amount": depositSum,
		"display_deposit_amount":          money.FormatRupiah(depositSum),
	})
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input, err := h.productInput(uuid.NewString(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.products.Create(r.Context(), tx, input); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{"name": input.Name, "price": input.Price})
		return h.audit.Log(r.Context(), tx, adminID, "product_created", "product", input.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": input.ID})
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")
	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input, err := h.productInput(productID, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.products.Update(r.Context(), tx, input); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{"name": input.Name, "price": input.Price})
		return h.audit.Log(r.Context(), tx, adminID, "product_updated", "product", productID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.products.Delete(r.Context(), tx, productID); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, adminID, "product_deleted", "product", productID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) productInput(id string, req productRequest) (store.ProductInput, error) {
	price, err := money.ParseAmount(req.Price)
	if err != nil {
		return store.ProductInput{}, errors.New("invalid price")
	}
	if req.Name == "" || req.Description == "" {
		return store.ProductInput{}, errors.New("name and description are required")
	}
	if err := validator.ValidateCategory(req.Category); err != nil {
		return store.ProductInput{}, err
	}
	if req.Stock < 0 {
		return store.ProductInput{}, errors.New("invalid stock")
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return store.ProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Category:    req.Category,
		Stock:       req.Stock,
		IsActive:    isActive,
	}, nil
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAll(r.Context())
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

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	users, err := h.users.ListAll(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load users")
		return
	}
	rows := make([]map[string]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, map[string]any{
			"id":              u.ID,
			"username":        u.Username,
			"email":           u.Email,
			"role":            u.Role,
			"balance":         u.Balance,
			"display_balance": money.FormatRupiah(u.Balance),
			"created_at":      u.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	orders, err := h.orders.ListAll(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load orders")
		return
	}
	rows := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, map[string]any{
			"id":            o.ID,
			"username":      o.Username,
			"email":         o.Email,
			"product_name":  o.ProductName,
			"quantity":      o.Quantity,
			"total_price":   o.TotalPrice,
			"display_price": money.FormatRupiah(o.TotalPrice),
			"status":        o.Status,
			"created_at":    o.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) AdminListDeposits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	deposits, err := h.deposits.ListAll(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load deposits")
		return
	}
	rows := make([]map[string]any, 0, len(deposits))
	for _, d := range deposits {
		row := depositJSON(d.Deposit)
		row["username"] = d.Username
		row["email"] = d.Email
		rows = append(rows, row)
	}
	respondJSON(w, http.StatusOK, rows)
}

// AdminApproveDeposit is the admin oracle trigger: approving a pending
// deposit marks it successful and credits the wallet exactly once.
func (h *Handler) AdminApproveDeposit(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	depositID := chi.URLParam(r, "id")
	deposit, credited, err := h.depositSv.Approve(r.Context(), adminID, depositID)
	if err != nil {
		if errors.Is(err, services.ErrDepositNotFound) {
			respondError(w, http.StatusNotFound, "deposit not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to approve deposit")
		return
	}
	payload := depositJSON(deposit)
	if credited {
		payload["message"] = fmt.Sprintf("Deposit %s berhasil di-approve dan saldo telah ditambahkan.", money.FormatRupiah(deposit.CreditAmount))
	} else {
		payload["message"] = "Deposit ini sudah sukses dan saldo sudah diupdate."
	}
	respondJSON(w, http.StatusOK, payload)
}

func (h *Handler) AdminReconcile(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.ledger.Reconcile(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile wallets")
		return
	}
	rows := make([]map[string]any, 0, len(drifts))
	for _, d := range drifts {
		rows = append(rows, map[string]any{
			"user_id":    d.UserID,
			"username":   d.Username,
			"balance":    money.FormatRupiah(d.Balance),
			"ledger_sum": money.FormatRupiah(d.LedgerSum),
			"difference": money.FormatRupiah(d.Difference),
		})
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) AdminListAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	rows, err := h.audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
