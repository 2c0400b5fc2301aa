package handlers

import (
	"net/http"

	"qoupay/internal/config"
	"qoupay/internal/db"
	"qoupay/internal/middleware"
	"qoupay/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	users     UserStore
	products  ProductStore
	orders    OrderStore
	deposits  DepositStore
	ledger    LedgerStore
	audit     AuditStore
	depositSv DepositService
	purchase  PurchaseService
	hub       *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, products ProductStore, orders OrderStore, deposits DepositStore, ledger LedgerStore, audit AuditStore, depositSv DepositService, purchase PurchaseService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		users:     users,
		products:  products,
		orders:    orders,
		deposits:  deposits,
		ledger:    ledger,
		audit:     audit,
		depositSv: depositSv,
		purchase:  purchase,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Get("/products", h.ListProducts)
	router.Get("/products/{id}", h.GetProduct)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/products/{id}/buy", h.BuyProduct)

	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/profile", h.Profile)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/deposit/methods", h.DepositMethods)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/deposits", h.CreateDeposit)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/deposits/{id}", h.DepositStatus)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/deposits/reff/{reffID}/check", h.CheckDeposit)
	router.Get("/ws/balance", h.WSBalance)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireAdmin(h.users))
		r.Get("/dashboard", h.AdminDashboard)
		r.Get("/products", h.AdminListProducts)
		r.Post("/products", h.AdminCreateProduct)
		r.Put("/products/{id}", h.AdminUpdateProduct)
		r.Delete("/products/{id}", h.AdminDeleteProduct)
		r.Get("/users", h.AdminListUsers)
		r.Get("/orders", h.AdminListOrders)
		r.Get("/deposits", h.AdminListDeposits)
		r.Post("/deposits/{id}/approve", h.AdminApproveDeposit)
		r.Get("/reconcile", h.AdminReconcile)
		r.Get("/audit", h.AdminListAudit)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
