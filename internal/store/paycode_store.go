package store

import (
	"context"
	"time"

	"walletbank/internal/models"
)

type PaymentCodeStore struct {
	db DB
}

func NewPaymentCodeStore(db DB) *PaymentCodeStore {
	return &PaymentCodeStore{db: db}
}

type PaymentCodeInput struct {
	ID               string
	IssuingAccountID string
	Code             string
	Amount           *int64
	MerchantLabel    string
	ExpiresAt        time.Time
}

func (s *PaymentCodeStore) Create(ctx context.Context, input PaymentCodeInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_codes (id, issuing_account_id, code, amount, merchant_label, used, expires_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, input.ID, input.IssuingAccountID, input.Code, input.Amount, input.MerchantLabel, input.ExpiresAt)
	return err
}

func (s *PaymentCodeStore) GetByCode(ctx context.Context, code string) (models.PaymentCode, error) {
	var row models.PaymentCode
	err := s.db.GetContext(ctx, &row, `
		SELECT id, issuing_account_id, code, amount, merchant_label, used, expires_at, created_at
		FROM payment_codes
		WHERE code = $1
	`, code)
	return row, err
}

func (s *PaymentCodeStore) GetForUpdate(ctx context.Context, tx Getter, code string) (models.PaymentCode, error) {
	var row models.PaymentCode
	err := tx.GetContext(ctx, &row, `
		SELECT id, issuing_account_id, code, amount, merchant_label, used, expires_at, created_at
		FROM payment_codes
		WHERE code = $1
		FOR UPDATE
	`, code)
	return row, err
}

// MarkUsed flips used false->true as a compare-and-set. RowsAffected() == 0
// means another redemption won or the code expired; only the winner may
// debit the wallet.
func (s *PaymentCodeStore) MarkUsed(ctx context.Context, tx Execer, codeID string, now time.Time) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE payment_codes
		SET used = TRUE
		WHERE id = $1 AND used = FALSE AND expires_at > $2
	`, codeID, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *PaymentCodeStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.PaymentCode, error) {
	var rows []models.PaymentCode
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, issuing_account_id, code, amount, merchant_label, used, expires_at, created_at
		FROM payment_codes
		WHERE issuing_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PurgeExpired removes unused codes whose expiry fell before the cutoff.
// Redeemed codes stay for audit.
func (s *PaymentCodeStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM payment_codes
		WHERE used = FALSE AND expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
