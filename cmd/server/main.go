package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qoupay/internal/config"
	"qoupay/internal/db"
	"qoupay/internal/gateway"
	"qoupay/internal/handlers"
	"qoupay/internal/services"
	"qoupay/internal/store"
	"qoupay/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	products := store.NewProductStore(database)
	orders := store.NewOrderStore(database)
	deposits := store.NewDepositStore(database)
	ledger := store.NewLedgerStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	depositService := services.NewDepositService(txRunner, users, deposits, ledger, audit, gatewayClient, hub, cfg.MinDepositAmount)
	purchaseService := services.NewPurchaseService(txRunner, users, products, orders, ledger, audit, hub, cfg.StoreName, cfg.StoreWhatsappLink)

	handler := handlers.New(txRunner, cfg, users, products, orders, deposits, ledger, audit, depositService, purchaseService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("qoupay API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
