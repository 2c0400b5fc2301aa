package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"qoupay/internal/db"
	"qoupay/internal/models"
	"qoupay/internal/money"
	"qoupay/internal/store"
	"qoupay/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProductStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, productID string) (models.Product, error)
	DecrementStock(ctx context.Context, tx store.Execer, productID string) (bool, error)
}

type OrderStore interface {
	Create(ctx context.Context, tx store.Execer, input store.OrderInput) error
}

// PurchaseService spends wallet balance on a product. Debit, stock
// decrement and order creation are one transaction: a failed purchase
// leaves balance, stock and order count untouched.
type PurchaseService struct {
	txRunner          db.TxRunner
	users             WalletStore
	products          ProductStore
	orders            OrderStore
	ledger            LedgerStore
	audit             AuditStore
	hub               BalanceHub
	storeName         string
	storeWhatsappLink string
}

func NewPurchaseService(txRunner db.TxRunner, users WalletStore, products ProductStore, orders OrderStore, ledger LedgerStore, audit AuditStore, hub BalanceHub, storeName, storeWhatsappLink string) *PurchaseService {
	return &PurchaseService{
		txRunner:          txRunner,
		users:             users,
		products:          products,
		orders:            orders,
		ledger:            ledger,
		audit:             audit,
		hub:               hub,
		storeName:         storeName,
		storeWhatsappLink: storeWhatsappLink,
	}
}

type PurchaseResult struct {
	Order       models.Order
	Product     models.Product
	Balance     int64
	WhatsappURL string
	Message     string
}

func (s *PurchaseService) Buy(ctx context.Context, userID, productID string) (PurchaseResult, error) {
	var order models.Order
	var product models.Product
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.products.GetForUpdate(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductUnavailable
			}
			return err
		}
		if !p.IsActive {
			return ErrProductUnavailable
		}
		if p.Stock <= 0 {
			return ErrOutOfStock
		}
		product = p

		balance, err := s.users.Debit(ctx, tx, userID, p.Price)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInsufficientFunds
			}
			return err
		}
		balanceAfter = balance

		decremented, err := s.products.DecrementStock(ctx, tx, productID)
		if err != nil {
			return err
		}
		if !decremented {
			return ErrOutOfStock
		}

		order = models.Order{
			ID:            uuid.NewString(),
			UserID:        userID,
			ProductID:     productID,
			Quantity:      1,
			TotalPrice:    p.Price,
			PaymentMethod: "balance",
			Status:        models.OrderPaid,
		}
		if err := s.orders.Create(ctx, tx, store.OrderInput{
			ID:            order.ID,
			UserID:        order.UserID,
			ProductID:     order.ProductID,
			Quantity:      order.Quantity,
			TotalPrice:    order.TotalPrice,
			PaymentMethod: order.PaymentMethod,
			Status:        order.Status,
		}); err != nil {
			return err
		}
		if err := s.ledger.Insert(ctx, tx, store.LedgerEntryInput{
			ID:            uuid.NewString(),
			UserID:        userID,
			ReferenceType: "order",
			ReferenceID:   order.ID,
			Amount:        -p.Price,
			Description:   "Purchase " + p.Name,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"product_id":  productID,
			"total_price": p.Price,
		})
		return s.audit.Log(ctx, tx, userID, "purchase", "order", order.ID, string(data))
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Balance:   balanceAfter,
		Formatted: money.FormatRupiah(balanceAfter),
	})

	message := fmt.Sprintf("Halo %s, saya telah berhasil melakukan pembelian %s (Order ID: %s). Mohon diproses. Terima kasih.",
		s.storeName, product.Name, order.ID)
	return PurchaseResult{
		Order:       order,
		Product:     product,
		Balance:     balanceAfter,
		WhatsappURL: s.storeWhatsappLink + "?text=" + url.QueryEscape(message),
		Message:     fmt.Sprintf("Pembelian %s berhasil! Saldo Anda telah dikurangi.", product.Name),
	}, nil
}
