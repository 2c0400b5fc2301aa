package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"qoupay/internal/db"
	"qoupay/internal/gateway"
	"qoupay/internal/models"
	"qoupay/internal/money"
	"qoupay/internal/store"
	"qoupay/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountBelowMinimum = errors.New("amount below deposit minimum")
	ErrInvalidMethod      = errors.New("invalid payment method")
	ErrUserNotFound       = errors.New("user not found")
	ErrDepositNotFound    = errors.New("deposit not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrOutOfStock         = errors.New("product out of stock")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

type WalletStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	Credit(ctx context.Context, tx store.Tx, userID string, amount int64) (int64, error)
	Debit(ctx context.Context, tx store.Tx, userID string, amount int64) (int64, error)
}

type DepositStore interface {
	Create(ctx context.Context, tx store.Execer, input store.DepositInput) error
	GetByIDForUser(ctx context.Context, depositID, userID string) (models.Deposit, error)
	GetByReference(ctx context.Context, reffID, userID string) (models.Deposit, error)
	GetForUpdate(ctx context.Context, tx store.Getter, depositID string) (models.Deposit, error)
	ClaimCredit(ctx context.Context, tx store.Execer, depositID string) (bool, error)
	MarkStatus(ctx context.Context, tx store.Execer, depositID, status string) error
}

type LedgerStore interface {
	Insert(ctx context.Context, tx store.Execer, entry store.LedgerEntryInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

type GatewayClient interface {
	ListMethods(ctx context.Context) ([]gateway.Method, error)
	CreateDeposit(ctx context.Context, reffID, method string, amount int64) (gateway.DepositQuote, error)
	FetchStatus(ctx context.Context, reffID string) (gateway.DepositStatus, error)
}

// DepositService owns the deposit lifecycle: creating a funding
// request against the gateway and settling it onto the wallet exactly
// once, no matter how many callers race through Settle.
type DepositService struct {
	txRunner   db.TxRunner
	users      WalletStore
	deposits   DepositStore
	ledger     LedgerStore
	audit      AuditStore
	gateway    GatewayClient
	hub        BalanceHub
	minDeposit int64
}

func NewDepositService(txRunner db.TxRunner, users WalletStore, deposits DepositStore, ledger LedgerStore, audit AuditStore, gatewayClient GatewayClient, hub BalanceHub, minDeposit int64) *DepositService {
	return &DepositService{
		txRunner:   txRunner,
		users:      users,
		deposits:   deposits,
		ledger:     ledger,
		audit:      audit,
		gateway:    gatewayClient,
		hub:        hub,
		minDeposit: minDeposit,
	}
}

func (s *DepositService) Methods(ctx context.Context) ([]gateway.Method, error) {
	methods, err := s.gateway.ListMethods(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]gateway.Method, 0, len(methods))
	for _, m := range methods {
		if m.Status == "active" {
			active = append(active, m)
		}
	}
	return active, nil
}

// Create validates the request, asks the gateway for a quote and only
// then persists a pending deposit. A gateway failure leaves no record.
func (s *DepositService) Create(ctx context.Context, userID string, amount int64, method string) (models.Deposit, error) {
	if amount <= 0 {
		return models.Deposit{}, ErrInvalidAmount
	}
	if amount < s.minDeposit {
		return models.Deposit{}, ErrAmountBelowMinimum
	}
	if strings.TrimSpace(method) == "" {
		return models.Deposit{}, ErrInvalidMethod
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Deposit{}, ErrUserNotFound
		}
		return models.Deposit{}, err
	}

	reffID := newReferenceID(user.ID)
	quote, err := s.gateway.CreateDeposit(ctx, reffID, method, amount)
	if err != nil {
		return models.Deposit{}, err
	}

	status := quote.Status
	if status == "" {
		status = models.DepositPending
	}
	depositID := uuid.NewString()
	var gatewayID *string
	if quote.GatewayID != "" {
		gatewayID = &quote.GatewayID
	}
	var expiredAt any
	if quote.ExpiredAt != nil {
		expiredAt = *quote.ExpiredAt
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.deposits.Create(ctx, tx, store.DepositInput{
			ID:            depositID,
			UserID:        user.ID,
			ReffID:        reffID,
			GatewayID:     gatewayID,
			Method:        method,
			Amount:        quote.Nominal,
			Fee:           quote.Fee,
			CreditAmount:  quote.CreditAmount,
			QRImageURL:    quote.QRImageURL,
			QRImageString: quote.QRImageString,
			Status:        status,
			ExpiredAt:     expiredAt,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"reff_id": reffID,
			"method":  method,
			"amount":  quote.Nominal,
		})
		return s.audit.Log(ctx, tx, user.ID, "deposit_created", "deposit", depositID, string(data))
	})
	if err != nil {
		return models.Deposit{}, err
	}
	return models.Deposit{
		ID:             depositID,
		UserID:         user.ID,
		ReffID:         reffID,
		GatewayID:      gatewayID,
		Method:         method,
		Amount:         quote.Nominal,
		Fee:            quote.Fee,
		CreditAmount:   quote.CreditAmount,
		QRImageURL:     quote.QRImageURL,
		QRImageString:  quote.QRImageString,
		Status:         status,
		BalanceApplied: false,
		ExpiredAt:      quote.ExpiredAt,
	}, nil
}

// Settle drives the per-deposit state machine:
//
//	pending -> success -> credited (balance_applied, terminal)
//	pending -> failed | expired    (terminal, never credited)
//
// observed carries a freshly observed gateway status ("" when the
// caller only acts on the stored one, as the user status view does).
// The claim on balance_applied and the wallet credit run in one
// serializable transaction, so concurrent callers credit exactly once
// and a crash between the two writes rolls both back.
func (s *DepositService) Settle(ctx context.Context, actorID, depositID, observed string) (models.Deposit, bool, error) {
	var settled models.Deposit
	var credited bool
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		credited = false
		dep, err := s.deposits.GetForUpdate(ctx, tx, depositID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDepositNotFound
			}
			return err
		}
		settled = dep

		switch {
		case dep.Status == models.DepositFailed || dep.Status == models.DepositExpired:
			return nil
		case dep.Status == models.DepositSuccess && dep.BalanceApplied:
			return nil
		case dep.Status == models.DepositPending && (observed == models.DepositFailed || observed == models.DepositExpired):
			if err := s.deposits.MarkStatus(ctx, tx, dep.ID, observed); err != nil {
				return err
			}
			settled.Status = observed
			return nil
		case dep.Status == models.DepositSuccess,
			dep.Status == models.DepositPending && observed == models.DepositSuccess:
			won, err := s.deposits.ClaimCredit(ctx, tx, dep.ID)
			if err != nil {
				return err
			}
			settled.Status = models.DepositSuccess
			settled.BalanceApplied = true
			if !won {
				return nil
			}
			if _, err := s.users.Credit(ctx, tx, dep.UserID, dep.CreditAmount); err != nil {
				return err
			}
			if err := s.ledger.Insert(ctx, tx, store.LedgerEntryInput{
				ID:            uuid.NewString(),
				UserID:        dep.UserID,
				ReferenceType: "deposit",
				ReferenceID:   dep.ID,
				Amount:        dep.CreditAmount,
				Description:   "Deposit credit " + dep.ReffID,
			}); err != nil {
				return err
			}
			data, _ := json.Marshal(map[string]any{
				"reff_id":       dep.ReffID,
				"credit_amount": dep.CreditAmount,
			})
			if err := s.audit.Log(ctx, tx, actorID, "deposit_settled", "deposit", dep.ID, string(data)); err != nil {
				return err
			}
			credited = true
			return nil
		default:
			// Still pending with nothing new observed.
			return nil
		}
	})
	if err != nil {
		return models.Deposit{}, false, err
	}
	if credited {
		s.broadcastBalance(ctx, settled.UserID)
	}
	return settled, credited, nil
}

// Approve is the admin oracle: the administrator marks the deposit
// successful, which settles it through the same idempotent path the
// user status view uses.
func (s *DepositService) Approve(ctx context.Context, adminID, depositID string) (models.Deposit, bool, error) {
	return s.Settle(ctx, adminID, depositID, models.DepositSuccess)
}

// StatusView is the user-facing status page: it settles a deposit
// whose stored status already reads success but whose wallet credit
// has not been applied yet.
func (s *DepositService) StatusView(ctx context.Context, userID, depositID string) (models.Deposit, bool, error) {
	dep, err := s.deposits.GetByIDForUser(ctx, depositID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Deposit{}, false, ErrDepositNotFound
		}
		return models.Deposit{}, false, err
	}
	return s.Settle(ctx, userID, dep.ID, "")
}

// CheckByReference returns the locally stored record for the status
// check API. It does not re-query the gateway.
func (s *DepositService) CheckByReference(ctx context.Context, userID, reffID string) (models.Deposit, bool, error) {
	dep, err := s.deposits.GetByReference(ctx, reffID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Deposit{}, false, ErrDepositNotFound
		}
		return models.Deposit{}, false, err
	}
	return dep, dep.IsTerminal(), nil
}

func (s *DepositService) broadcastBalance(ctx context.Context, userID string) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Balance:   user.Balance,
		Formatted: money.FormatRupiah(user.Balance),
	})
}

// newReferenceID builds the external correlation key: a recognizable
// prefix, the tail of the user id, the current millisecond and a
// random suffix so two requests can never collide.
func newReferenceID(userID string) string {
	compact := strings.ReplaceAll(userID, "-", "")
	tail := compact
	if len(compact) > 4 {
		tail = compact[len(compact)-4:]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("DEP-%s-%d-%s", tail, time.Now().UnixMilli(), suffix)
}
