package store

import (
	"context"

	"qoupay/internal/models"
)

type OrderStore struct {
	db DB
}

func NewOrderStore(db DB) *OrderStore {
	return &OrderStore{db: db}
}

type OrderInput struct {
	ID            string
	UserID        string
	ProductID     string
	Quantity      int
	TotalPrice    int64
	PaymentMethod string
	Status        string
}

func (s *OrderStore) Create(ctx context.Context, tx Execer, input OrderInput) error {
	query := `
		INSERT INTO orders (id, user_id, product_id, quantity, total_price, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.ProductID, input.Quantity,
		input.TotalPrice, input.PaymentMethod, input.Status,
	)
	return err
}

type OrderWithProduct struct {
	models.Order
	ProductName string `db:"product_name"`
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]OrderWithProduct, error) {
	var rows []OrderWithProduct
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.user_id, o.product_id, o.quantity, o.total_price, o.payment_method,
		       o.status, o.created_at, p.name AS product_name
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	return rows, err
}

type OrderDetail struct {
	models.Order
	ProductName string `db:"product_name"`
	Username    string `db:"username"`
	Email       string `db:"email"`
}

func (s *OrderStore) ListAll(ctx context.Context, limit, offset int) ([]OrderDetail, error) {
	var rows []OrderDetail
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.user_id, o.product_id, o.quantity, o.total_price, o.payment_method,
		       o.status, o.created_at, p.name AS product_name, u.username, u.email
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

func (s *OrderStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM orders`)
	return count, err
}
