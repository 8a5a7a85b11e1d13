package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"walletbank/internal/auth"

	"github.com/jmoiron/sqlx"
)

type loginRequest struct {
	AccountNumber string `json:"account_number"`
	PIN           string `json:"pin"`
}

// Login is the thin identity collaborator: account number + PIN to bearer
// token. The ledger itself trusts the account ID carried by the token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accounts.GetByNumber(r.Context(), req.AccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !account.IsActive {
		respondError(w, http.StatusForbidden, "account_inactive")
		return
	}
	if !auth.CheckPIN(account.PINHash, req.PIN) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		data, _ := json.Marshal(map[string]string{
			"ip":         r.RemoteAddr,
			"user_agent": r.UserAgent(),
		})
		return h.audit.Log(r.Context(), tx, account.ID, "login", "account", account.ID, string(data))
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, account.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
