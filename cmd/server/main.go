package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletbank/internal/config"
	"walletbank/internal/db"
	"walletbank/internal/fraud"
	"walletbank/internal/handlers"
	"walletbank/internal/services"
	"walletbank/internal/store"
	"walletbank/internal/websocket"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.AppEnv)
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	paycodes := store.NewPaymentCodeStore(database)
	alerts := store.NewFraudAlertStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	pipeline := fraud.NewPipeline(alerts, transactions, cfg.RiskQueueCapacity, logger)
	ledger := services.NewLedgerService(txRunner, accounts, transactions, audit, pipeline, hub)
	paycodeService := services.NewPaymentCodeService(txRunner, paycodes, accounts, transactions, audit, pipeline, hub, logger, cfg.PaymentCodeTTL)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go pipeline.Run(workerCtx)
	go paycodeService.RunReaper(workerCtx, cfg.ReaperInterval, cfg.CodeRetention)

	handler := handlers.New(txRunner, cfg, accounts, transactions, alerts, audit, ledger, paycodeService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("walletbank API listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}
}

func newLogger(appEnv string) *zap.Logger {
	if appEnv == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
