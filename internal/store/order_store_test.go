package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestOrderCreateArgs(t *testing.T) {
	store := NewOrderStore(stubDB{})
	tx := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO orders") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 7 || args[4] != int64(40000) || args[6] != "paid" {
				t.Fatalf("unexpected args: %v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	err := store.Create(context.Background(), tx, OrderInput{
		ID: "order-1", UserID: "user-1", ProductID: "prod-1",
		Quantity: 1, TotalPrice: 40000, PaymentMethod: "balance", Status: "paid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOrderListByUserJoinsProducts(t *testing.T) {
	store := NewOrderStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "JOIN products") {
				t.Fatalf("listing must join the product name: %s", query)
			}
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %v", args)
			}
			*dest.(*[]OrderWithProduct) = []OrderWithProduct{{ProductName: "VPS 2GB"}}
			return nil
		},
	})
	rows, err := store.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ProductName != "VPS 2GB" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
