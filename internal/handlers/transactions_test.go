package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"walletbank/internal/models"
	"walletbank/internal/services"
)

func TestDepositSuccess(t *testing.T) {
	to := "acc-1"
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{
		depositFn: func(_ context.Context, accountID string, amount int64) (models.Transaction, error) {
			if accountID != "acc-1" || amount != 5000 {
				t.Fatalf("unexpected deposit args: %s %d", accountID, amount)
			}
			return models.Transaction{ID: "tx-1", Kind: models.KindDeposit, Amount: amount, ToAccountID: &to}, nil
		},
	}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodPost, "/transactions/deposit", []byte(`{"amount":"50.00"}`))
	rr := httptest.NewRecorder()
	serveAuthed(handler.Deposit, rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["amount"] != "50.00" {
		t.Fatalf("unexpected amount: %v", payload["amount"])
	}
}

func TestDepositInvalidAmount(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{
		depositFn: func(context.Context, string, int64) (models.Transaction, error) {
			t.Fatalf("service should not be called")
			return models.Transaction{}, nil
		},
	}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodPost, "/transactions/deposit", []byte(`{"amount":"-5.00"}`))
	rr := httptest.NewRecorder()
	serveAuthed(handler.Deposit, rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestWithdrawToWalletInsufficientFunds(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{
		withdrawFn: func(context.Context, string, int64) (models.Transaction, error) {
			return models.Transaction{}, services.ErrInsufficientFunds
		},
	}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodPost, "/transactions/withdraw-wallet", []byte(`{"amount":"20.00"}`))
	rr := httptest.NewRecorder()
	serveAuthed(handler.WithdrawToWallet, rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTransferSuccess(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{
		transferFn: func(_ context.Context, fromAccountID, toAccountNumber string, amount int64) (models.Transaction, error) {
			if fromAccountID != "acc-1" || toAccountNumber != "87654321" || amount != 1000 {
				t.Fatalf("unexpected transfer args: %s %s %d", fromAccountID, toAccountNumber, amount)
			}
			return models.Transaction{ID: "tx-1", Kind: models.KindTransfer, Amount: amount}, nil
		},
	}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodPost, "/transactions/transfer", []byte(`{"to_account_number":"87654321","amount":"10.00"}`))
	rr := httptest.NewRecorder()
	serveAuthed(handler.Transfer, rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestTransferErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"insufficient", services.ErrInsufficientFunds, http.StatusBadRequest},
		{"same account", services.ErrSameAccount, http.StatusBadRequest},
		{"not found", services.ErrAccountNotFound, http.StatusNotFound},
		{"inactive", services.ErrAccountInactive, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(stubAccountStore{}, stubTransactionStore{}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{
				transferFn: func(context.Context, string, string, int64) (models.Transaction, error) {
					return models.Transaction{}, tc.err
				},
			}, stubPaymentCodeService{})

			req := authedRequest(t, http.MethodPost, "/transactions/transfer", []byte(`{"to_account_number":"87654321","amount":"10.00"}`))
			rr := httptest.NewRecorder()
			serveAuthed(handler.Transfer, rr, req)
			if rr.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rr.Code)
			}
		})
	}
}

func TestListTransactionsRejectsUnknownKind(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{
		listByAccountFn: func(context.Context, string, string, int, int) ([]models.Transaction, error) {
			t.Fatalf("store should not be called")
			return nil, nil
		},
	}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodGet, "/transactions?kind=bogus", nil)
	rr := httptest.NewRecorder()
	serveAuthed(handler.ListTransactions, rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListTransactionsPassesFilter(t *testing.T) {
	handler := newTestHandler(stubAccountStore{}, stubTransactionStore{
		listByAccountFn: func(_ context.Context, accountID, kind string, limit, offset int) ([]models.Transaction, error) {
			if accountID != "acc-1" || kind != "transfer" || limit != 10 || offset != 0 {
				t.Fatalf("unexpected args: %s %s %d %d", accountID, kind, limit, offset)
			}
			return []models.Transaction{{ID: "tx-1", Amount: 1000}}, nil
		},
	}, stubAlertStore{}, stubAuditStore{}, stubLedgerService{}, stubPaymentCodeService{})

	req := authedRequest(t, http.MethodGet, "/transactions?kind=transfer&limit=10", nil)
	rr := httptest.NewRecorder()
	serveAuthed(handler.ListTransactions, rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
