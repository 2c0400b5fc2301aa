package store

import (
	"context"

	"qoupay/internal/models"
)

// LedgerStore keeps the append-only trail behind every wallet
// mutation. Entries are written in the same transaction as the balance
// update so the sum per user always matches the stored balance.
type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LedgerEntryInput struct {
	ID            string
	UserID        string
	ReferenceType string
	ReferenceID   string
	Amount        int64
	Description   string
}

func (s *LedgerStore) Insert(ctx context.Context, tx Execer, entry LedgerEntryInput) error {
	query := `
		INSERT INTO ledger_entries (id, user_id, reference_type, reference_id, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.ReferenceType, entry.ReferenceID, entry.Amount, entry.Description,
	)
	return err
}

func (s *LedgerStore) SumByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE user_id = $1
	`, userID)
	return sum, err
}

func (s *LedgerStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	var rows []models.LedgerEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, reference_type, reference_id, amount, description, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

type WalletDrift struct {
	UserID     string `db:"user_id"`
	Username   string `db:"username"`
	Balance    int64  `db:"balance"`
	LedgerSum  int64  `db:"ledger_sum"`
	Difference int64  `db:"difference"`
}

// Reconcile compares every wallet balance against its ledger sum.
func (s *LedgerStore) Reconcile(ctx context.Context) ([]WalletDrift, error) {
	var rows []WalletDrift
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id AS user_id,
		       u.username,
		       u.balance,
		       COALESCE(SUM(l.amount), 0) AS ledger_sum,
		       (u.balance - COALESCE(SUM(l.amount), 0)) AS difference
		FROM users u
		LEFT JOIN ledger_entries l ON l.user_id = u.id
		GROUP BY u.id, u.username, u.balance
		ORDER BY u.username
	`)
	return rows, err
}
