package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"walletbank/internal/db"
	"walletbank/internal/fraud"
	"walletbank/internal/models"
	"walletbank/internal/money"
	"walletbank/internal/store"
	"walletbank/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account inactive")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrCodeNotFound      = errors.New("payment code not found")
	ErrCodeExpired       = errors.New("payment code expired")
	ErrCodeAlreadyUsed   = errors.New("payment code already used")
)

type AccountStore interface {
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	UpdateBalances(ctx context.Context, tx store.Execer, accountID string, balance, walletBalance int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

// RiskSink receives committed transactions after the response is decided.
type RiskSink interface {
	Submit(event fraud.Event)
}

type BalanceHub interface {
	BroadcastBalance(accountID string, update websocket.BalanceUpdate)
}

// LedgerService is the money movement engine: validate, one atomic ledger
// mutation, one completed transaction row, then a fire-and-forget handoff
// to risk scoring. Rejected operations write nothing.
type LedgerService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	audit        AuditStore
	risk         RiskSink
	hub          BalanceHub
	now          func() time.Time
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, audit AuditStore, risk RiskSink, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
		risk:         risk,
		hub:          hub,
		now:          time.Now,
	}
}

func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	var record models.Transaction
	var balanceBefore int64
	var balanceAfter, walletAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		balanceBefore = account.Balance
		balanceAfter = account.Balance + amount
		walletAfter = account.WalletBalance
		if err := s.accounts.UpdateBalances(ctx, tx, accountID, balanceAfter, walletAfter); err != nil {
			return err
		}
		record = s.newTransaction(models.KindDeposit, nil, &accountID, amount, "Deposit")
		if err := s.insertTransaction(ctx, tx, record); err != nil {
			return err
		}
		return s.auditTransaction(ctx, tx, accountID, "deposit", record.ID)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.afterCommit(accountID, balanceBefore, balanceAfter, walletAfter, record)
	return record, nil
}

func (s *LedgerService) WithdrawToWallet(ctx context.Context, accountID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	var record models.Transaction
	var balanceBefore int64
	var balanceAfter, walletAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		if account.Balance < amount {
			return ErrInsufficientFunds
		}
		balanceBefore = account.Balance
		balanceAfter = account.Balance - amount
		walletAfter = account.WalletBalance + amount
		// Both deltas land in one UPDATE: no partial application is
		// ever observable.
		if err := s.accounts.UpdateBalances(ctx, tx, accountID, balanceAfter, walletAfter); err != nil {
			return err
		}
		record = s.newTransaction(models.KindWithdrawToWallet, &accountID, nil, amount, "Withdraw to wallet")
		if err := s.insertTransaction(ctx, tx, record); err != nil {
			return err
		}
		return s.auditTransaction(ctx, tx, accountID, "withdraw_to_wallet", record.ID)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.afterCommit(accountID, balanceBefore, balanceAfter, walletAfter, record)
	return record, nil
}

func (s *LedgerService) Transfer(ctx context.Context, fromAccountID, toAccountNumber string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	destination, err := s.accounts.GetByNumber(ctx, toAccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, ErrAccountNotFound
		}
		return models.Transaction{}, err
	}
	if destination.ID == fromAccountID {
		return models.Transaction{}, ErrSameAccount
	}
	var record models.Transaction
	var fromBefore int64
	var fromBalanceAfter, fromWalletAfter int64
	var toBalanceAfter, toWalletAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		from, to, err := s.lockTwoAccounts(ctx, tx, fromAccountID, destination.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		if !to.IsActive {
			return ErrAccountInactive
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}
		fromBefore = from.Balance
		fromBalanceAfter = from.Balance - amount
		fromWalletAfter = from.WalletBalance
		toBalanceAfter = to.Balance + amount
		toWalletAfter = to.WalletBalance
		if err := s.accounts.UpdateBalances(ctx, tx, from.ID, fromBalanceAfter, fromWalletAfter); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalances(ctx, tx, to.ID, toBalanceAfter, toWalletAfter); err != nil {
			return err
		}
		record = s.newTransaction(models.KindTransfer, &fromAccountID, &to.ID, amount,
			fmt.Sprintf("Transfer to %s", to.AccountNumber))
		if err := s.insertTransaction(ctx, tx, record); err != nil {
			return err
		}
		return s.auditTransaction(ctx, tx, fromAccountID, "transfer", record.ID)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.afterCommit(fromAccountID, fromBefore, fromBalanceAfter, fromWalletAfter, record)
	s.hub.BroadcastBalance(destination.ID, websocket.BalanceUpdate{
		AccountID:     destination.ID,
		Balance:       money.FormatMinor(toBalanceAfter),
		WalletBalance: money.FormatMinor(toWalletAfter),
	})
	return record, nil
}

// lockTwoAccounts acquires row locks in ascending ID order regardless of
// transfer direction, so opposing transfers on the same pair cannot
// deadlock.
func (s *LedgerService) lockTwoAccounts(ctx context.Context, tx store.Getter, firstID, secondID string) (models.Account, models.Account, error) {
	leftID, rightID := orderedIDs(firstID, secondID)
	left, err := s.accounts.GetForUpdate(ctx, tx, leftID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	right, err := s.accounts.GetForUpdate(ctx, tx, rightID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	if firstID == leftID {
		return left, right, nil
	}
	return right, left, nil
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}

func (s *LedgerService) newTransaction(kind models.TransactionKind, fromID, toID *string, amount int64, description string) models.Transaction {
	return models.Transaction{
		ID:              uuid.NewString(),
		ReferenceNumber: newReferenceNumber(s.now()),
		FromAccountID:   fromID,
		ToAccountID:     toID,
		Kind:            kind,
		Status:          models.StatusCompleted,
		Amount:          amount,
		Description:     description,
		CreatedAt:       s.now().UTC(),
	}
}

func (s *LedgerService) insertTransaction(ctx context.Context, tx store.Execer, record models.Transaction) error {
	return s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:              record.ID,
		ReferenceNumber: record.ReferenceNumber,
		FromAccountID:   record.FromAccountID,
		ToAccountID:     record.ToAccountID,
		Kind:            string(record.Kind),
		Status:          string(record.Status),
		Amount:          record.Amount,
		Description:     record.Description,
	})
}

func (s *LedgerService) auditTransaction(ctx context.Context, tx store.Execer, actorID, action, transactionID string) error {
	data, _ := json.Marshal(map[string]string{"transaction_id": transactionID})
	return s.audit.Log(ctx, tx, actorID, action, "transaction", transactionID, string(data))
}

func (s *LedgerService) afterCommit(accountID string, balanceBefore, balanceAfter, walletAfter int64, record models.Transaction) {
	s.hub.BroadcastBalance(accountID, websocket.BalanceUpdate{
		AccountID:     accountID,
		Balance:       money.FormatMinor(balanceAfter),
		WalletBalance: money.FormatMinor(walletAfter),
	})
	s.risk.Submit(fraud.Event{
		TransactionID: record.ID,
		AccountID:     accountID,
		Amount:        record.Amount,
		BalanceBefore: balanceBefore,
		CommittedAt:   record.CreatedAt,
	})
}

// newReferenceNumber builds a human-displayable, globally unique reference;
// the unique index on transactions.reference_number backstops collisions.
func newReferenceNumber(now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102"), uuid.NewString()[:8])
	}
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102"), hex.EncodeToString(buf))
}
