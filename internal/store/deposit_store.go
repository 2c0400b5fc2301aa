package store

import (
	"context"
	"errors"

	"qoupay/internal/models"

	"github.com/lib/pq"
)

var ErrDuplicateReference = errors.New("duplicate deposit reference")

type DepositStore struct {
	db DB
}

func NewDepositStore(db DB) *DepositStore {
	return &DepositStore{db: db}
}

type DepositInput struct {
	ID            string
	UserID        string
	ReffID        string
	GatewayID     *string
	Method        string
	Amount        int64
	Fee           int64
	CreditAmount  int64
	QRImageURL    string
	QRImageString string
	Status        string
	ExpiredAt     any
}

func (s *DepositStore) Create(ctx context.Context, tx Execer, input DepositInput) error {
	query := `
		INSERT INTO deposits (id, user_id, reff_id, gateway_id, method, amount, fee, credit_amount,
		                      qr_image_url, qr_image_string, status, expired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.ReffID, input.GatewayID, input.Method,
		input.Amount, input.Fee, input.CreditAmount,
		input.QRImageURL, input.QRImageString, input.Status, input.ExpiredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (s *DepositStore) GetByID(ctx context.Context, depositID string) (models.Deposit, error) {
	var row models.Deposit
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, reff_id, gateway_id, method, amount, fee, credit_amount,
		       qr_image_url, qr_image_string, status, balance_applied, expired_at, created_at
		FROM deposits
		WHERE id = $1
	`, depositID)
	return row, err
}

func (s *DepositStore) GetByIDForUser(ctx context.Context, depositID, userID string) (models.Deposit, error) {
	var row models.Deposit
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, reff_id, gateway_id, method, amount, fee, credit_amount,
		       qr_image_url, qr_image_string, status, balance_applied, expired_at, created_at
		FROM deposits
		WHERE id = $1 AND user_id = $2
	`, depositID, userID)
	return row, err
}

func (s *DepositStore) GetByReference(ctx context.Context, reffID, userID string) (models.Deposit, error) {
	var row models.Deposit
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, reff_id, gateway_id, method, amount, fee, credit_amount,
		       qr_image_url, qr_image_string, status, balance_applied, expired_at, created_at
		FROM deposits
		WHERE reff_id = $1 AND user_id = $2
	`, reffID, userID)
	return row, err
}

func (s *DepositStore) GetForUpdate(ctx context.Context, tx Getter, depositID string) (models.Deposit, error) {
	var row models.Deposit
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, reff_id, gateway_id, method, amount, fee, credit_amount,
		       qr_image_url, qr_image_string, status, balance_applied, expired_at, created_at
		FROM deposits
		WHERE id = $1
		FOR UPDATE
	`, depositID)
	return row, err
}

// ClaimCredit atomically flips balance_applied from false to true and
// pins the status to success in the same statement. Only the caller
// that sees one affected row may credit the wallet.
func (s *DepositStore) ClaimCredit(ctx context.Context, tx Execer, depositID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE deposits
		SET balance_applied = TRUE, status = 'success'
		WHERE id = $1 AND balance_applied = FALSE
	`, depositID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// MarkStatus records a pending deposit's terminal failure. The status
// guard keeps already-settled deposits untouched.
func (s *DepositStore) MarkStatus(ctx context.Context, tx Execer, depositID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE deposits
		SET status = $1
		WHERE id = $2 AND status = 'pending'
	`, status, depositID)
	return err
}

func (s *DepositStore) ListByUser(ctx context.Context, userID string) ([]models.Deposit, error) {
	var rows []models.Deposit
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, reff_id, gateway_id, method, amount, fee, credit_amount,
		       qr_image_url, qr_image_string, status, balance_applied, expired_at, created_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return rows, err
}

type DepositWithUser struct {
	models.Deposit
	Username string `db:"username"`
	Email    string `db:"email"`
}

func (s *DepositStore) ListAll(ctx context.Context, limit, offset int) ([]DepositWithUser, error) {
	var rows []DepositWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT d.id, d.user_id, d.reff_id, d.gateway_id, d.method, d.amount, d.fee, d.credit_amount,
		       d.qr_image_url, d.qr_image_string, d.status, d.balance_applied, d.expired_at, d.created_at,
		       u.username, u.email
		FROM deposits d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

func (s *DepositStore) SumSuccessful(ctx context.Context) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(credit_amount), 0)
		FROM deposits
		WHERE status = 'success'
	`)
	return sum, err
}
