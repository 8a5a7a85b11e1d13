package store

import (
	"context"
	"fmt"
	"time"

	"walletbank/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID              string
	ReferenceNumber string
	FromAccountID   *string
	ToAccountID     *string
	Kind            string
	Status          string
	Amount          int64
	Description     string
}

type VolumePoint struct {
	Kind  string `db:"kind"`
	Day   string `db:"day"`
	Total int64  `db:"total"`
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, reference_number, from_account_id, to_account_id, kind, status, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.ReferenceNumber, input.FromAccountID, input.ToAccountID,
		input.Kind, input.Status, input.Amount, input.Description)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, reference_number, from_account_id, to_account_id, kind, status, amount, description, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	return row, err
}

// ListByAccount returns transactions the account participated in, newest
// first, optionally filtered by kind.
func (s *TransactionStore) ListByAccount(ctx context.Context, accountID, kind string, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT id, reference_number, from_account_id, to_account_id, kind, status, amount, description, created_at
		FROM transactions
		WHERE (from_account_id = $1 OR to_account_id = $1)
	`
	args := []any{accountID}
	param := 2
	if kind != "" {
		query += " AND kind = $2"
		args = append(args, kind)
		param = 3
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountInitiatedSince counts completed transactions the account initiated in
// the window; deposits have no source account, so credits into the account
// with no source count as initiated too. Feeds the frequency heuristics.
func (s *TransactionStore) CountInitiatedSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM transactions
		WHERE status = 'completed'
		  AND created_at >= $2
		  AND (from_account_id = $1 OR (from_account_id IS NULL AND to_account_id = $1))
	`, accountID, since)
	return count, err
}

func (s *TransactionStore) ListAll(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT id, reference_number, from_account_id, to_account_id, kind, status, amount, description, created_at
		FROM transactions
		WHERE 1=1
	`
	args := []any{}
	param := 1
	if accountID != "" {
		query += fmt.Sprintf(" AND (from_account_id = $%d OR to_account_id = $%d)", param, param)
		args = append(args, accountID)
		param++
	}
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", param)
		args = append(args, *from)
		param++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", param)
		args = append(args, *to)
		param++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) VolumeByKind(ctx context.Context, from time.Time) ([]VolumePoint, error) {
	var rows []VolumePoint
	err := s.db.SelectContext(ctx, &rows, `
		SELECT kind, to_char(date(created_at), 'YYYY-MM-DD') AS day, SUM(amount) AS total
		FROM transactions
		WHERE status = 'completed' AND created_at >= $1
		GROUP BY kind, date(created_at)
		ORDER BY date(created_at)
	`, from)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
