package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"walletbank/internal/auth"
	"walletbank/internal/config"
	"walletbank/internal/middleware"
	"walletbank/internal/models"
	"walletbank/internal/store"
	"walletbank/internal/websocket"

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

type stubAccountStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.AccountInput) error
	getByIDFn      func(ctx context.Context, accountID string) (models.Account, error)
	getByNumberFn  func(ctx context.Context, accountNumber string) (models.Account, error)
	numberExistsFn func(ctx context.Context, accountNumber string) (bool, error)
	setActiveFn    func(ctx context.Context, tx store.Execer, accountID string, active bool) (int64, error)
	listAllFn      func(ctx context.Context, limit, offset int) ([]models.Account, error)
	totalsFn       func(ctx context.Context) (store.AccountTotals, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, input store.AccountInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{ID: accountID, IsActive: true}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) GetByNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	if s.getByNumberFn == nil {
		return models.Account{AccountNumber: accountNumber, IsActive: true}, nil
	}
	return s.getByNumberFn(ctx, accountNumber)
}

func (s stubAccountStore) NumberExists(ctx context.Context, accountNumber string) (bool, error) {
	if s.numberExistsFn == nil {
		return false, nil
	}
	return s.numberExistsFn(ctx, accountNumber)
}

func (s stubAccountStore) SetActive(ctx context.Context, tx store.Execer, accountID string, active bool) (int64, error) {
	if s.setActiveFn == nil {
		return 1, nil
	}
	return s.setActiveFn(ctx, tx, accountID, active)
}

func (s stubAccountStore) ListAll(ctx context.Context, limit, offset int) ([]models.Account, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

func (s stubAccountStore) Totals(ctx context.Context) (store.AccountTotals, error) {
	if s.totalsFn == nil {
		return store.AccountTotals{}, nil
	}
	return s.totalsFn(ctx)
}

type stubTransactionStore struct {
	listByAccountFn func(ctx context.Context, accountID, kind string, limit, offset int) ([]models.Transaction, error)
	listAllFn       func(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]models.Transaction, error)
	volumeByKindFn  func(ctx context.Context, from time.Time) ([]store.VolumePoint, error)
}

func (s stubTransactionStore) ListByAccount(ctx context.Context, accountID, kind string, limit, offset int) ([]models.Transaction, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountID, kind, limit, offset)
}

func (s stubTransactionStore) ListAll(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]models.Transaction, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, accountID, from, to, limit, offset)
}

func (s stubTransactionStore) VolumeByKind(ctx context.Context, from time.Time) ([]store.VolumePoint, error) {
	if s.volumeByKindFn == nil {
		return nil, nil
	}
	return s.volumeByKindFn(ctx, from)
}

type stubAlertStore struct {
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.FraudAlert, error)
	reviewFn       func(ctx context.Context, tx store.Execer, alertID, status, reviewedBy string, reviewedAt time.Time) (int64, error)
}

func (s stubAlertStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.FraudAlert, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

func (s stubAlertStore) Review(ctx context.Context, tx store.Execer, alertID, status, reviewedBy string, reviewedAt time.Time) (int64, error) {
	if s.reviewFn == nil {
		return 1, nil
	}
	return s.reviewFn(ctx, tx, alertID, status, reviewedBy, reviewedAt)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubLedgerService struct {
	depositFn  func(ctx context.Context, accountID string, amount int64) (models.Transaction, error)
	withdrawFn func(ctx context.Context, accountID string, amount int64) (models.Transaction, error)
	transferFn func(ctx context.Context, fromAccountID, toAccountNumber string, amount int64) (models.Transaction, error)
}

func (s stubLedgerService) Deposit(ctx context.Context, accountID string, amount int64) (models.Transaction, error) {
	if s.depositFn == nil {
		return models.Transaction{}, nil
	}
	return s.depositFn(ctx, accountID, amount)
}

func (s stubLedgerService) WithdrawToWallet(ctx context.Context, accountID string, amount int64) (models.Transaction, error) {
	if s.withdrawFn == nil {
		return models.Transaction{}, nil
	}
	return s.withdrawFn(ctx, accountID, amount)
}

func (s stubLedgerService) Transfer(ctx context.Context, fromAccountID, toAccountNumber string, amount int64) (models.Transaction, error) {
	if s.transferFn == nil {
		return models.Transaction{}, nil
	}
	return s.transferFn(ctx, fromAccountID, toAccountNumber, amount)
}

type stubPaymentCodeService struct {
	issueFn  func(ctx context.Context, accountID string, amount *int64, merchantLabel string) (models.PaymentCode, error)
	redeemFn func(ctx context.Context, redeemerAccountID, code string, overrideAmount *int64) (models.Transaction, error)
	listFn   func(ctx context.Context, accountID string, limit, offset int) ([]models.PaymentCode, error)
}

func (s stubPaymentCodeService) Issue(ctx context.Context, accountID string, amount *int64, merchantLabel string) (models.PaymentCode, error) {
	if s.issueFn == nil {
		return models.PaymentCode{}, nil
	}
	return s.issueFn(ctx, accountID, amount, merchantLabel)
}

func (s stubPaymentCodeService) Redeem(ctx context.Context, redeemerAccountID, code string, overrideAmount *int64) (models.Transaction, error) {
	if s.redeemFn == nil {
		return models.Transaction{}, nil
	}
	return s.redeemFn(ctx, redeemerAccountID, code, overrideAmount)
}

func (s stubPaymentCodeService) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.PaymentCode, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, accountID, limit, offset)
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
}

func newTestHandler(accounts AccountStore, transactions TransactionStore, alerts AlertStore, audit AuditStore, ledger LedgerService, paycodes PaymentCodeService) *Handler {
	return New(fakeTxRunner{}, testConfig(), accounts, transactions, alerts, audit, ledger, paycodes, websocket.NewHub())
}

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	token, err := auth.GenerateToken("secret", "acc-1", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serveAuthed(handler http.HandlerFunc, rr *httptest.ResponseRecorder, req *http.Request) {
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
}
