package handlers

import (
	"net/http"

	"walletbank/internal/config"
	"walletbank/internal/db"
	"walletbank/internal/middleware"
	"walletbank/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	accounts     AccountStore
	transactions TransactionStore
	alerts       AlertStore
	audit        AuditStore
	ledger       LedgerService
	paycodes     PaymentCodeService
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, accounts AccountStore, transactions TransactionStore, alerts AlertStore, audit AuditStore, ledger LedgerService, paycodes PaymentCodeService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		accounts:     accounts,
		transactions: transactions,
		alerts:       alerts,
		audit:        audit,
		ledger:       ledger,
		paycodes:     paycodes,
		hub:          hub,
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

	router.Post("/auth/login", h.Login)

	authed := middleware.Auth(h.cfg.JWTSecret)
	router.With(authed).Get("/accounts/me", h.Me)
	router.With(authed).Get("/accounts/me/balance", h.GetBalance)
	router.With(authed).Post("/transactions/deposit", h.Deposit)
	router.With(authed).Post("/transactions/withdraw-wallet", h.WithdrawToWallet)
	router.With(authed).Post("/transactions/transfer", h.Transfer)
	router.With(authed).Get("/transactions", h.ListTransactions)
	router.With(authed).Post("/paycodes", h.IssuePaymentCode)
	router.With(authed).Post("/paycodes/redeem", h.RedeemPaymentCode)
	router.With(authed).Get("/paycodes", h.ListPaymentCodes)
	router.Get("/ws/balances", h.WSBalances)

	router.Route("/admin", func(r chi.Router) {
		r.Use(authed)
		r.Use(middleware.RequireAdmin(h.accounts))
		r.Post("/accounts", h.AdminCreateAccount)
		r.Post("/accounts/{number}/deactivate", h.AdminDeactivateAccount)
		r.Get("/accounts", h.AdminListAccounts)
		r.Get("/transactions", h.AdminListTransactions)
		r.Get("/analytics/volume", h.AdminVolume)
		r.Get("/alerts", h.AdminListAlerts)
		r.Post("/alerts/{id}/review", h.AdminReviewAlert)
		r.Get("/audit", h.AdminListAuditLogs)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
