package services

import (
	"context"
	"sync"

	"walletbank/internal/fraud"
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
	getByIDFn        func(ctx context.Context, accountID string) (models.Account, error)
	getByNumberFn    func(ctx context.Context, accountNumber string) (models.Account, error)
	getForUpdateFn   func(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	updateBalancesFn func(ctx context.Context, tx store.Execer, accountID string, balance, walletBalance int64) error
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) GetByNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	if s.getByNumberFn == nil {
		return models.Account{}, nil
	}
	return s.getByNumberFn(ctx, accountNumber)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error) {
	return s.getForUpdateFn(ctx, tx, accountID)
}

func (s stubAccountStore) UpdateBalances(ctx context.Context, tx store.Execer, accountID string, balance, walletBalance int64) error {
	if s.updateBalancesFn == nil {
		return nil
	}
	return s.updateBalancesFn(ctx, tx, accountID, balance, walletBalance)
}

type stubTransactionStore struct {
	createFn func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubRiskSink struct {
	mu     sync.Mutex
	events []fraud.Event
}

func (s *stubRiskSink) Submit(event fraud.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

type stubHub struct {
	mu    sync.Mutex
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, update)
}
