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
	"go.uber.org/zap"
)

type PaymentCodeStore interface {
	Create(ctx context.Context, input store.PaymentCodeInput) error
	GetByCode(ctx context.Context, code string) (models.PaymentCode, error)
	GetForUpdate(ctx context.Context, tx store.Getter, code string) (models.PaymentCode, error)
	MarkUsed(ctx context.Context, tx store.Execer, codeID string, now time.Time) (int64, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.PaymentCode, error)
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaymentCodeService owns the Issued -> Redeemed / Issued -> Expired
// lifecycle. Redemption, the wallet debit, and the used flip commit as one
// unit; losers of a concurrent redemption observe ErrCodeAlreadyUsed.
type PaymentCodeService struct {
	txRunner     db.TxRunner
	codes        PaymentCodeStore
	accounts     AccountStore
	transactions TransactionStore
	audit        AuditStore
	risk         RiskSink
	hub          BalanceHub
	logger       *zap.Logger
	codeTTL      time.Duration
	now          func() time.Time
}

func NewPaymentCodeService(txRunner db.TxRunner, codes PaymentCodeStore, accounts AccountStore, transactions TransactionStore, audit AuditStore, risk RiskSink, hub BalanceHub, logger *zap.Logger, codeTTL time.Duration) *PaymentCodeService {
	if codeTTL <= 0 {
		codeTTL = 15 * time.Minute
	}
	return &PaymentCodeService{
		txRunner:     txRunner,
		codes:        codes,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
		risk:         risk,
		hub:          hub,
		logger:       logger,
		codeTTL:      codeTTL,
		now:          time.Now,
	}
}

// Issue creates a single-use code. Balances are untouched until redemption.
func (s *PaymentCodeService) Issue(ctx context.Context, accountID string, amount *int64, merchantLabel string) (models.PaymentCode, error) {
	if amount != nil && *amount <= 0 {
		return models.PaymentCode{}, ErrInvalidAmount
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentCode{}, ErrAccountNotFound
		}
		return models.PaymentCode{}, err
	}
	token, err := newCodeToken()
	if err != nil {
		return models.PaymentCode{}, err
	}
	now := s.now()
	code := models.PaymentCode{
		ID:               uuid.NewString(),
		IssuingAccountID: accountID,
		Code:             token,
		Amount:           amount,
		MerchantLabel:    merchantLabel,
		ExpiresAt:        now.Add(s.codeTTL).UTC(),
		CreatedAt:        now.UTC(),
	}
	if err := s.codes.Create(ctx, store.PaymentCodeInput{
		ID:               code.ID,
		IssuingAccountID: code.IssuingAccountID,
		Code:             code.Code,
		Amount:           code.Amount,
		MerchantLabel:    code.MerchantLabel,
		ExpiresAt:        code.ExpiresAt,
	}); err != nil {
		return models.PaymentCode{}, err
	}
	return code, nil
}

// Redeem debits the redeemer's wallet and retires the code atomically. An
// explicit override amount wins over the amount fixed at issuance.
func (s *PaymentCodeService) Redeem(ctx context.Context, redeemerAccountID, code string, overrideAmount *int64) (models.Transaction, error) {
	var record models.Transaction
	var redeemerBefore int64
	var redeemerBalance, redeemerWallet int64
	var issuerID string
	var issuerBalance, issuerWallet int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		paymentCode, err := s.codes.GetForUpdate(ctx, tx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCodeNotFound
			}
			return err
		}
		now := s.now()
		if paymentCode.Used {
			return ErrCodeAlreadyUsed
		}
		if !now.Before(paymentCode.ExpiresAt) {
			return ErrCodeExpired
		}
		amount, err := resolveAmount(overrideAmount, paymentCode.Amount)
		if err != nil {
			return err
		}
		issuerID = paymentCode.IssuingAccountID
		redeemer, issuer, err := s.lockParticipants(ctx, tx, redeemerAccountID, issuerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		if redeemer.WalletBalance < amount {
			return ErrInsufficientFunds
		}
		// The row lock on the code makes this CAS decisive: zero rows
		// means a concurrent redemption already won.
		flipped, err := s.codes.MarkUsed(ctx, tx, paymentCode.ID, now)
		if err != nil {
			return err
		}
		if flipped == 0 {
			return ErrCodeAlreadyUsed
		}
		redeemerBefore = redeemer.Balance
		redeemerBalance = redeemer.Balance
		redeemerWallet = redeemer.WalletBalance - amount
		if issuer.ID == redeemer.ID {
			redeemerWallet += amount
			issuerBalance = redeemerBalance
			issuerWallet = redeemerWallet
			if err := s.accounts.UpdateBalances(ctx, tx, redeemer.ID, redeemerBalance, redeemerWallet); err != nil {
				return err
			}
		} else {
			issuerBalance = issuer.Balance
			issuerWallet = issuer.WalletBalance + amount
			if err := s.accounts.UpdateBalances(ctx, tx, redeemer.ID, redeemerBalance, redeemerWallet); err != nil {
				return err
			}
			if err := s.accounts.UpdateBalances(ctx, tx, issuer.ID, issuerBalance, issuerWallet); err != nil {
				return err
			}
		}
		description := "Wallet payment"
		if paymentCode.MerchantLabel != "" {
			description = fmt.Sprintf("Wallet payment to %s", paymentCode.MerchantLabel)
		}
		record = models.Transaction{
			ID:              uuid.NewString(),
			ReferenceNumber: newReferenceNumber(now),
			FromAccountID:   &redeemerAccountID,
			ToAccountID:     &issuerID,
			Kind:            models.KindWalletPayment,
			Status:          models.StatusCompleted,
			Amount:          amount,
			Description:     description,
			CreatedAt:       now.UTC(),
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:              record.ID,
			ReferenceNumber: record.ReferenceNumber,
			FromAccountID:   record.FromAccountID,
			ToAccountID:     record.ToAccountID,
			Kind:            string(record.Kind),
			Status:          string(record.Status),
			Amount:          record.Amount,
			Description:     record.Description,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"transaction_id": record.ID,
			"payment_code":   paymentCode.ID,
		})
		return s.audit.Log(ctx, tx, redeemerAccountID, "wallet_payment", "transaction", record.ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.hub.BroadcastBalance(redeemerAccountID, websocket.BalanceUpdate{
		AccountID:     redeemerAccountID,
		Balance:       money.FormatMinor(redeemerBalance),
		WalletBalance: money.FormatMinor(redeemerWallet),
	})
	if issuerID != redeemerAccountID {
		s.hub.BroadcastBalance(issuerID, websocket.BalanceUpdate{
			AccountID:     issuerID,
			Balance:       money.FormatMinor(issuerBalance),
			WalletBalance: money.FormatMinor(issuerWallet),
		})
	}
	s.risk.Submit(fraud.Event{
		TransactionID: record.ID,
		AccountID:     redeemerAccountID,
		Amount:        record.Amount,
		BalanceBefore: redeemerBefore,
		CommittedAt:   record.CreatedAt,
	})
	return record, nil
}

func (s *PaymentCodeService) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.PaymentCode, error) {
	return s.codes.ListByAccount(ctx, accountID, limit, offset)
}

// RunReaper purges unused codes past expiry plus the retention window.
// Redeemed codes are kept for audit.
func (s *PaymentCodeService) RunReaper(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := s.now().Add(-retention)
			purged, err := s.codes.PurgeExpired(ctx, cutoff)
			if err != nil {
				s.logger.Error("payment code purge failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				s.logger.Info("purged expired payment codes", zap.Int64("count", purged))
			}
		}
	}
}

func (s *PaymentCodeService) lockParticipants(ctx context.Context, tx store.Getter, redeemerID, issuerID string) (models.Account, models.Account, error) {
	if redeemerID == issuerID {
		account, err := s.accounts.GetForUpdate(ctx, tx, redeemerID)
		if err != nil {
			return models.Account{}, models.Account{}, err
		}
		return account, account, nil
	}
	leftID, rightID := orderedIDs(redeemerID, issuerID)
	left, err := s.accounts.GetForUpdate(ctx, tx, leftID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	right, err := s.accounts.GetForUpdate(ctx, tx, rightID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	if redeemerID == leftID {
		return left, right, nil
	}
	return right, left, nil
}

func resolveAmount(override, fixed *int64) (int64, error) {
	amount := int64(0)
	switch {
	case override != nil:
		amount = *override
	case fixed != nil:
		amount = *fixed
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func newCodeToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
