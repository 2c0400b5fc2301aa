package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qoupay/internal/auth"
	"qoupay/internal/config"
	"qoupay/internal/gateway"
	"qoupay/internal/models"
	"qoupay/internal/services"
	"qoupay/internal/store"
	"qoupay/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, email, passwordHash, role string) error
	getByEmailFn    func(ctx context.Context, email string) (models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
	getRoleFn       func(ctx context.Context, userID string) (string, error)
	hasAnyAdminFn   func(ctx context.Context) (bool, error)
	listAllFn       func(ctx context.Context, limit, offset int) ([]models.User, error)
	countFn         func(ctx context.Context) (int64, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, role string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash, role)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if s.getByUsernameFn == nil {
		return models.User{}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetRole(ctx context.Context, userID string) (string, error) {
	if s.getRoleFn == nil {
		return models.RoleUser, nil
	}
	return s.getRoleFn(ctx, userID)
}

func (s stubUserStore) HasAnyAdmin(ctx context.Context) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return false, nil
	}
	return s.hasAnyAdminFn(ctx)
}

func (s stubUserStore) ListAll(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

func (s stubUserStore) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx)
}

type stubProductStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.ProductInput) error
	updateFn     func(ctx context.Context, tx store.Execer, input store.ProductInput) error
	deleteFn     func(ctx context.Context, tx store.Execer, productID string) error
	getByIDFn    func(ctx context.Context, productID string) (models.Product, error)
	listActiveFn func(ctx context.Context) ([]models.Product, error)
	listAllFn    func(ctx context.Context) ([]models.Product, error)
	countFn      func(ctx context.Context) (int64, error)
}

func (s stubProductStore) Create(ctx context.Context, tx store.Execer, input store.ProductInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubProductStore) Update(ctx context.Context, tx store.Execer, input store.ProductInput) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, input)
}

func (s stubProductStore) Delete(ctx context.Context, tx store.Execer, productID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, productID)
}

func (s stubProductStore) GetByID(ctx context.Context, productID string) (models.Product, error) {
	if s.getByIDFn == nil {
		return models.Product{}, nil
	}
	return s.getByIDFn(ctx, productID)
}

func (s stubProductStore) ListActive(ctx context.Context) ([]models.Product, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx)
}

func (s stubProductStore) ListAll(ctx context.Context) ([]models.Product, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx)
}

func (s stubProductStore) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx)
}

type stubOrderStore struct {
	listByUserFn func(ctx context.Context, userID string) ([]store.OrderWithProduct, error)
	listAllFn    func(ctx context.Context, limit, offset int) ([]store.OrderDetail, error)
	countFn      func(ctx context.Context) (int64, error)
}

func (s stubOrderStore) ListByUser(ctx context.Context, userID string) ([]store.OrderWithProduct, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubOrderStore) ListAll(ctx context.Context, limit, offset int) ([]store.OrderDetail, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

func (s stubOrderStore) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx)
}

type stubDepositStore struct {
	listByUserFn    func(ctx context.Context, userID string) ([]models.Deposit, error)
	listAllFn       func(ctx context.Context, limit, offset int) ([]store.DepositWithUser, error)
	sumSuccessfulFn func(ctx context.Context) (int64, error)
}

func (s stubDepositStore) ListByUser(ctx context.Context, userID string) ([]models.Deposit, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubDepositStore) ListAll(ctx context.Context, limit, offset int) ([]store.DepositWithUser, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

func (s stubDepositStore) SumSuccessful(ctx context.Context) (int64, error) {
	if s.sumSuccessfulFn == nil {
		return 0, nil
	}
	return s.sumSuccessfulFn(ctx)
}

type stubLedgerStore struct {
	reconcileFn func(ctx context.Context) ([]store.WalletDrift, error)
}

func (s stubLedgerStore) Reconcile(ctx context.Context) ([]store.WalletDrift, error) {
	if s.reconcileFn == nil {
		return nil, nil
	}
	return s.reconcileFn(ctx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditRow, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditRow, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubDepositService struct {
	methodsFn    func(ctx context.Context) ([]gateway.Method, error)
	createFn     func(ctx context.Context, userID string, amount int64, method string) (models.Deposit, error)
	approveFn    func(ctx context.Context, adminID, depositID string) (models.Deposit, bool, error)
	statusViewFn func(ctx context.Context, userID, depositID string) (models.Deposit, bool, error)
	checkFn      func(ctx context.Context, userID, reffID string) (models.Deposit, bool, error)
}

func (s stubDepositService) Methods(ctx context.Context) ([]gateway.Method, error) {
	if s.methodsFn == nil {
		return nil, nil
	}
	return s.methodsFn(ctx)
}

func (s stubDepositService) Create(ctx context.Context, userID string, amount int64, method string) (models.Deposit, error) {
	if s.createFn == nil {
		return models.Deposit{}, nil
	}
	return s.createFn(ctx, userID, amount, method)
}

func (s stubDepositService) Approve(ctx context.Context, adminID, depositID string) (models.Deposit, bool, error) {
	if s.approveFn == nil {
		return models.Deposit{}, false, nil
	}
	return s.approveFn(ctx, adminID, depositID)
}

func (s stubDepositService) StatusView(ctx context.Context, userID, depositID string) (models.Deposit, bool, error) {
	if s.statusViewFn == nil {
		return models.Deposit{}, false, nil
	}
	return s.statusViewFn(ctx, userID, depositID)
}

func (s stubDepositService) CheckByReference(ctx context.Context, userID, reffID string) (models.Deposit, bool, error) {
	if s.checkFn == nil {
		return models.Deposit{}, false, nil
	}
	return s.checkFn(ctx, userID, reffID)
}

type stubPurchaseService struct {
	buyFn func(ctx context.Context, userID, productID string) (services.PurchaseResult, error)
}

func (s stubPurchaseService) Buy(ctx context.Context, userID, productID string) (services.PurchaseResult, error) {
	if s.buyFn == nil {
		return services.PurchaseResult{}, nil
	}
	return s.buyFn(ctx, userID, productID)
}

type testDeps struct {
	users     stubUserStore
	products  stubProductStore
	orders    stubOrderStore
	deposits  stubDepositStore
	ledger    stubLedgerStore
	audit     stubAuditStore
	depositSv stubDepositService
	purchase  stubPurchaseService
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		AllowedOrigins:    "*",
		MinDepositAmount:  2000,
		AdminUsername:     "adminqoupay",
		StoreName:         "QouPay Store",
		StoreWhatsappLink: "https://wa.me/6280000000000",
	}
}

func newTestHandler(deps testDeps) http.Handler {
	h := New(fakeTxRunner{}, testConfig(), deps.users, deps.products, deps.orders,
		deps.deposits, deps.ledger, deps.audit, deps.depositSv, deps.purchase, websocket.NewHub())
	return h.Routes()
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", userID, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
