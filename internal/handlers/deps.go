package handlers

import (
	"context"
	"time"

	"walletbank/internal/models"
	"walletbank/internal/store"
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (models.Account, error)
	NumberExists(ctx context.Context, accountNumber string) (bool, error)
	SetActive(ctx context.Context, tx store.Execer, accountID string, active bool) (int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Account, error)
	Totals(ctx context.Context) (store.AccountTotals, error)
}

type TransactionStore interface {
	ListByAccount(ctx context.Context, accountID, kind string, limit, offset int) ([]models.Transaction, error)
	ListAll(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]models.Transaction, error)
	VolumeByKind(ctx context.Context, from time.Time) ([]store.VolumePoint, error)
}

type AlertStore interface {
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.FraudAlert, error)
	Review(ctx context.Context, tx store.Execer, alertID, status, reviewedBy string, reviewedAt time.Time) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type LedgerService interface {
	Deposit(ctx context.Context, accountID string, amount int64) (models.Transaction, error)
	WithdrawToWallet(ctx context.Context, accountID string, amount int64) (models.Transaction, error)
	Transfer(ctx context.Context, fromAccountID, toAccountNumber string, amount int64) (models.Transaction, error)
}

type PaymentCodeService interface {
	Issue(ctx context.Context, accountID string, amount *int64, merchantLabel string) (models.PaymentCode, error)
	Redeem(ctx context.Context, redeemerAccountID, code string, overrideAmount *int64) (models.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.PaymentCode, error)
}
