package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qoupay/internal/models"
	"qoupay/internal/services"
	"qoupay/internal/store"
)

func adminDeps() testDeps {
	return testDeps{
		users: stubUserStore{
			getRoleFn: func(context.Context, string) (string, error) {
				return models.RoleAdmin, nil
			},
		},
	}
}

func TestAdminRoutesForbiddenForUser(t *testing.T) {
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			getRoleFn: func(context.Context, string) (string, error) {
				return models.RoleUser, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	handler := newTestHandler(adminDeps())
	rec := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminDashboard(t *testing.T) {
	deps := adminDeps()
	deps.users.countFn = func(context.Context) (int64, error) { return 12, nil }
	deps.products = stubProductStore{countFn: func(context.Context) (int64, error) { return 4, nil }}
	deps.orders = stubOrderStore{countFn: func(context.Context) (int64, error) { return 7, nil }}
	deps.deposits = stubDepositStore{sumSuccessfulFn: func(context.Context) (int64, error) { return 250000, nil }}
	handler := newTestHandler(deps)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp["total_users"] != float64(12) || resp["display_deposit_amount"] != "Rp 250.000" {
		t.Fatalf("unexpected dashboard: %v", resp)
	}
}

func TestAdminCreateProductValidation(t *testing.T) {
	handler := newTestHandler(adminDeps())
	cases := []string{
		`{"name":"","description":"d","price":"40000","category":"vps","stock":3}`,
		`{"name":"VPS","description":"d","price":"not-a-price","category":"vps","stock":3}`,
		`{"name":"VPS","description":"d","price":"40000","category":"laundry","stock":3}`,
		`{"name":"VPS","description":"d","price":"40000","category":"vps","stock":-1}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
		req.Header.Set("Authorization", bearerToken(t, "admin-1"))
		rec := doRequest(t, handler, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400: %s", body, rec.Code, rec.Body.String())
		}
	}
}

func TestAdminCreateProduct(t *testing.T) {
	var created store.ProductInput
	deps := adminDeps()
	deps.products = stubProductStore{
		createFn: func(_ context.Context, _ store.Execer, input store.ProductInput) error {
			created = input
			return nil
		},
	}
	handler := newTestHandler(deps)

	body := strings.NewReader(`{"name":"VPS 2GB","description":"2 vCPU","price":"Rp 40.000","category":"vps","stock":5}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Authorization", bearerToken(t, "admin-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if created.Price != 40000 || created.Category != "vps" || !created.IsActive {
		t.Fatalf("unexpected input: %+v", created)
	}
}

func TestAdminApproveDeposit(t *testing.T) {
	deps := adminDeps()
	deps.depositSv = stubDepositService{
		approveFn: func(_ context.Context, adminID, depositID string) (models.Deposit, bool, error) {
			return models.Deposit{
				ID: depositID, CreditAmount: 5000,
				Status: models.DepositSuccess, BalanceApplied: true,
			}, true, nil
		},
	}
	handler := newTestHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/admin/deposits/dep-1/approve", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if message, _ := resp["message"].(string); !strings.Contains(message, "Rp 5.000") {
		t.Fatalf("message = %q", message)
	}
}

func TestAdminApproveDepositAlreadySettled(t *testing.T) {
	deps := adminDeps()
	deps.depositSv = stubDepositService{
		approveFn: func(context.Context, string, string) (models.Deposit, bool, error) {
			return models.Deposit{ID: "dep-1", Status: models.DepositSuccess, BalanceApplied: true}, false, nil
		},
	}
	handler := newTestHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/admin/deposits/dep-1/approve", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin-1"))
	rec := doRequest(t, handler, req)
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if message, _ := resp["message"].(string); !strings.Contains(message, "sudah sukses") {
		t.Fatalf("message = %q", message)
	}
}

func TestAdminApproveDepositNotFound(t *testing.T) {
	deps := adminDeps()
	deps.depositSv = stubDepositService{
		approveFn: func(context.Context, string, string) (models.Deposit, bool, error) {
			return models.Deposit{}, false, services.ErrDepositNotFound
		},
	}
	handler := newTestHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/admin/deposits/dep-404/approve", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAdminReconcile(t *testing.T) {
	deps := adminDeps()
	deps.ledger = stubLedgerStore{
		reconcileFn: func(context.Context) ([]store.WalletDrift, error) {
			return []store.WalletDrift{
				{UserID: "user-1", Username: "budi", Balance: 10000, LedgerSum: 9000, Difference: 1000},
			}, nil
		},
	}
	handler := newTestHandler(deps)

	req := httptest.NewRequest(http.MethodGet, "/admin/reconcile", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(rows) != 1 || rows[0]["difference"] != "Rp 1.000" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
