package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestDecrementStockGuarded(t *testing.T) {
	store := NewProductStore(stubDB{})
	tx := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "stock = stock - 1") ||
				!strings.Contains(query, "is_active = TRUE") ||
				!strings.Contains(query, "stock > 0") {
				t.Fatalf("decrement must be guarded on activity and stock: %s", query)
			}
			if len(args) != 1 || args[0] != "prod-1" {
				t.Fatalf("unexpected args: %v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	ok, err := store.DecrementStock(context.Background(), tx, "prod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected the decrement to succeed")
	}
}

func TestDecrementStockSoldOut(t *testing.T) {
	store := NewProductStore(stubDB{})
	tx := stubExecer{
		execFn: func(_ context.Context, _ string, _ ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	}
	ok, err := store.DecrementStock(context.Background(), tx, "prod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("a sold-out product must not decrement")
	}
}

func TestProductGetForUpdateLocksRow(t *testing.T) {
	store := NewProductStore(stubDB{})
	tx := stubGetter{
		getFn: func(_ context.Context, _ any, query string, _ ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected a row lock: %s", query)
			}
			return nil
		},
	}
	if _, err := store.GetForUpdate(context.Background(), tx, "prod-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListActiveFiltersInactive(t *testing.T) {
	store := NewProductStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, _ ...any) error {
			if !strings.Contains(query, "is_active = TRUE") {
				t.Fatalf("active listing must filter on is_active: %s", query)
			}
			return nil
		},
	})
	if _, err := store.ListActive(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
