package store

import (
	"context"

	"walletbank/internal/models"
)

// AccountStore is the ledger table: authoritative balances keyed by account
// ID. All mutation goes through GetForUpdate + UpdateBalances inside a
// TxRunner transaction; nothing else writes balances.
type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

type AccountInput struct {
	ID            string
	AccountNumber string
	Name          string
	Mobile        string
	PINHash       string
	Role          string
}

type AccountTotals struct {
	Accounts      int64 `db:"accounts"`
	Balance       int64 `db:"balance"`
	WalletBalance int64 `db:"wallet_balance"`
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, input AccountInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, account_number, name, mobile, pin_hash, role, is_active, balance, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, 0, 0)
	`, input.ID, input.AccountNumber, input.Name, input.Mobile, input.PINHash, input.Role)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, account_number, name, mobile, pin_hash, role, is_active, balance, wallet_balance, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	return row, err
}

func (s *AccountStore) GetByNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, account_number, name, mobile, pin_hash, role, is_active, balance, wallet_balance, created_at
		FROM accounts
		WHERE account_number = $1
	`, accountNumber)
	return row, err
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, account_number, name, mobile, pin_hash, role, is_active, balance, wallet_balance, created_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	return row, err
}

func (s *AccountStore) UpdateBalances(ctx context.Context, tx Execer, accountID string, balance, walletBalance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, wallet_balance = $2, updated_at = NOW()
		WHERE id = $3
	`, balance, walletBalance, accountID)
	return err
}

func (s *AccountStore) SetActive(ctx context.Context, tx Execer, accountID string, active bool) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AccountStore) NumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM accounts WHERE account_number = $1
	`, accountNumber)
	return count > 0, err
}

func (s *AccountStore) ListAll(ctx context.Context, limit, offset int) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_number, name, mobile, pin_hash, role, is_active, balance, wallet_balance, created_at
		FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) Totals(ctx context.Context) (AccountTotals, error) {
	var totals AccountTotals
	err := s.db.GetContext(ctx, &totals, `
		SELECT COUNT(1) AS accounts,
		       COALESCE(SUM(balance), 0) AS balance,
		       COALESCE(SUM(wallet_balance), 0) AS wallet_balance
		FROM accounts
	`)
	return totals, err
}
