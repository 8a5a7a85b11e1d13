package middleware

import (
	"context"
	"net/http"

	"walletbank/internal/models"
)

type AccountRoleStore interface {
	GetByID(ctx context.Context, accountID string) (models.Account, error)
}

func RequireAdmin(accounts AccountRoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := AccountIDFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			account, err := accounts.GetByID(r.Context(), accountID)
			if err != nil {
				http.Error(w, "unable to verify admin", http.StatusInternalServerError)
				return
			}
			if account.Role != models.RoleAdmin {
				http.Error(w, "admin privileges required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
