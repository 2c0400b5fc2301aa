package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qoupay/internal/auth"
	"qoupay/internal/models"
	"qoupay/internal/store"

	"github.com/lib/pq"
)

func TestRegisterSuccess(t *testing.T) {
	var createdRole string
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			createFn: func(_ context.Context, _ store.Execer, _, _, _, _, role string) error {
				createdRole = role
				return nil
			},
		},
	})

	body := strings.NewReader(`{"username":"budi","email":"budi@mail.com","password":"rahasia123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := doRequest(t, handler, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatalf("expected a token")
	}
	if resp["role"] != models.RoleUser || createdRole != models.RoleUser {
		t.Fatalf("role = %q / %q, want user", resp["role"], createdRole)
	}
}

func TestRegisterAdminBootstrap(t *testing.T) {
	var createdRole string
	deps := testDeps{
		users: stubUserStore{
			createFn: func(_ context.Context, _ store.Execer, _, _, _, _, role string) error {
				createdRole = role
				return nil
			},
			hasAnyAdminFn: func(context.Context) (bool, error) {
				return false, nil
			},
		},
	}
	handler := newTestHandler(deps)

	body := strings.NewReader(`{"username":"adminqoupay","email":"admin@mail.com","password":"rahasia123"}`)
	rec := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/register", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if createdRole != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", createdRole)
	}

	// Once an admin exists the reserved username registers as a plain user.
	deps.users.hasAnyAdminFn = func(context.Context) (bool, error) { return true, nil }
	handler = newTestHandler(deps)
	body = strings.NewReader(`{"username":"adminqoupay","email":"admin2@mail.com","password":"rahasia123"}`)
	rec = doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/register", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if createdRole != models.RoleUser {
		t.Fatalf("role = %q, want user", createdRole)
	}
}

func TestRegisterValidation(t *testing.T) {
	handler := newTestHandler(testDeps{})
	cases := []string{
		`{"username":"ab","email":"budi@mail.com","password":"rahasia123"}`,
		`{"username":"budi","email":"not-an-email","password":"rahasia123"}`,
		`{"username":"budi","email":"budi@mail.com","password":"short"}`,
	}
	for _, body := range cases {
		rec := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			createFn: func(context.Context, store.Execer, string, string, string, string, string) error {
				return &pq.Error{Code: "23505"}
			},
		},
	})
	body := strings.NewReader(`{"username":"budi","email":"budi@mail.com","password":"rahasia123"}`)
	rec := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/register", body))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (models.User, error) {
				if email != "budi@mail.com" {
					return models.User{}, sql.ErrNoRows
				}
				return models.User{ID: "user-1", Email: email, PasswordHash: hash, Role: models.RoleUser}, nil
			},
		},
	})

	rec := doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"budi@mail.com","password":"rahasia123"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"budi@mail.com","password":"salah"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, handler, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@mail.com","password":"rahasia123"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: status = %d, want 401", rec.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	handler := newTestHandler(testDeps{})
	rec := doRequest(t, handler, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	handler := newTestHandler(testDeps{
		users: stubUserStore{
			getByIDFn: func(_ context.Context, userID string) (models.User, error) {
				return models.User{ID: userID, Username: "budi", Balance: 12500}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	rec := doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp["display_balance"] != "Rp 12.500" {
		t.Fatalf("display_balance = %v", resp["display_balance"])
	}
}
