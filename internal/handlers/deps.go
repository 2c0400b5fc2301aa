package handlers

import (
	"context"

	"qoupay/internal/gateway"
	"qoupay/internal/models"
	"qoupay/internal/services"
	"qoupay/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, role string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetRole(ctx context.Context, userID string) (string, error)
	HasAnyAdmin(ctx context.Context) (bool, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type ProductStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ProductInput) error
	Update(ctx context.Context, tx store.Execer, input store.ProductInput) error
	Delete(ctx context.Context, tx store.Execer, productID string) error
	GetByID(ctx context.Context, productID string) (models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}

type OrderStore interface {
	ListByUser(ctx context.Context, userID string) ([]store.OrderWithProduct, error)
	ListAll(ctx context.Context, limit, offset int) ([]store.OrderDetail, error)
	Count(ctx context.Context) (int64, error)
}

type DepositStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Deposit, error)
	ListAll(ctx context.Context, limit, offset int) ([]store.DepositWithUser, error)
	SumSuccessful(ctx context.Context) (int64, error)
}

type LedgerStore interface {
	Reconcile(ctx context.Context) ([]store.WalletDrift, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditRow, error)
}

type DepositService interface {
	Methods(ctx context.Context) ([]gateway.Method, error)
	Create(ctx context.Context, userID string, amount int64, method string) (models.Deposit, error)
	Approve(ctx context.Context, adminID, depositID string) (models.Deposit, bool, error)
	StatusView(ctx context.Context, userID, depositID string) (models.Deposit, bool, error)
	CheckByReference(ctx context.Context, userID, reffID string) (models.Deposit, bool, error)
}

type PurchaseService interface {
	Buy(ctx context.Context, userID, productID string) (services.PurchaseResult, error)
}
