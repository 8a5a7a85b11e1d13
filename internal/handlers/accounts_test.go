package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"walletbank/internal/models"
)

func TestMeReturnsBothBalances(t *testing.T) {
	handler := newTestHandler(stubAccountStore{
		getByIDFn: func(_ context.Context, accountID string) (models.Account, error) {
			return models.Account{
				ID:            accountID,
				AccountNumber: "12345678",
				Name:          "Ada",
				Role:          models.RoleCustomer,
				IsActive:      true,
				Balance:       5000,
				WalletBalance: 1200,
			}, nil
		},
	}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodGet, "/accounts/me", nil)
	rr := httptest.NewRecorder()
	serveAuthed(handler.Me, rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["balance"] != "50.00" || payload["wallet_balance"] != "12.00" {
		t.Fatalf("unexpected balances: %v", payload)
	}
}

func TestGetBalanceUnauthorizedWithoutToken(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{}, stubPaymentCodeService{})
	req := httptest.NewRequest(http.MethodGet, "/accounts/me/balance", nil)
	rr := httptest.NewRecorder()
	serveAuthed(handler.GetBalance, rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestWSBalancesRejectsInvalidToken(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{}, stubPaymentCodeService{})
	req := httptest.NewRequest(http.MethodGet, "/ws/balances?token=bogus", nil)
	rr := httptest.NewRecorder()
	handler.WSBalances(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
