package handlers

import (
	"net/http"

	"walletbank/internal/auth"
	"walletbank/internal/middleware"
	"walletbank/internal/websocket"
)

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":             account.ID,
		"account_number": account.AccountNumber,
		"name":           account.Name,
		"mobile":         account.Mobile,
		"role":           account.Role,
		"is_active":      account.IsActive,
		"balance":        formatMinor(account.Balance),
		"wallet_balance": formatMinor(account.WalletBalance),
		"created_at":     account.CreatedAt,
	})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account_id":     account.ID,
		"balance":        formatMinor(account.Balance),
		"wallet_balance": formatMinor(account.WalletBalance),
	})
}

// WSBalances authenticates via query token because browsers cannot set
// headers on websocket dials.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.AccountID)
}
