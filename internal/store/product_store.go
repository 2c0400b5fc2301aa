package store

import (
	"context"

	"qoupay/internal/models"
)

type ProductStore struct {
	db DB
}

func NewProductStore(db DB) *ProductStore {
	return &ProductStore{db: db}
}

type ProductInput struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Category    string
	Stock       int
	IsActive    bool
}

func (s *ProductStore) Create(ctx context.Context, tx Execer, input ProductInput) error {
	query := `
		INSERT INTO products (id, name, description, price, category, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Name, input.Description, input.Price, input.Category, input.Stock, input.IsActive,
	)
	return err
}

func (s *ProductStore) Update(ctx context.Context, tx Execer, input ProductInput) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, stock = $5, is_active = $6
		WHERE id = $7
	`, input.Name, input.Description, input.Price, input.Category, input.Stock, input.IsActive, input.ID)
	return err
}

func (s *ProductStore) Delete(ctx context.Context, tx Execer, productID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	return err
}

func (s *ProductStore) GetByID(ctx context.Context, productID string) (models.Product, error) {
	var row models.Product
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, price, category, stock, is_active, created_at
		FROM products
		WHERE id = $1
	`, productID)
	return row, err
}

func (s *ProductStore) GetForUpdate(ctx context.Context, tx Getter, productID string) (models.Product, error) {
	var row models.Product
	err := tx.GetContext(ctx, &row, `
		SELECT id, name, description, price, category, stock, is_active, created_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID)
	return row, err
}

// DecrementStock takes one unit off an active, in-stock product; zero
// affected rows means the product sold out or was deactivated.
func (s *ProductStore) DecrementStock(ctx context.Context, tx Execer, productID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - 1
		WHERE id = $1 AND is_active = TRUE AND stock > 0
	`, productID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *ProductStore) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, price, category, stock, is_active, created_at
		FROM products
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`)
	return rows, err
}

func (s *ProductStore) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, price, category, stock, is_active, created_at
		FROM products
		ORDER BY created_at DESC
	`)
	return rows, err
}

func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM products`)
	return count, err
}
