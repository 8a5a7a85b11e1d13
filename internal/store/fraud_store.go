package store

import (
	"context"
	"time"

	"walletbank/internal/models"
)

type FraudAlertStore struct {
	db DB
}

func NewFraudAlertStore(db DB) *FraudAlertStore {
	return &FraudAlertStore{db: db}
}

type FraudAlertInput struct {
	ID            string
	AccountID     string
	TransactionID *string
	AlertType     string
	RiskScore     float64
	Description   string
}

func (s *FraudAlertStore) Create(ctx context.Context, input FraudAlertInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_alerts (id, account_id, transaction_id, alert_type, risk_score, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
	`, input.ID, input.AccountID, input.TransactionID, input.AlertType, input.RiskScore, input.Description)
	return err
}

func (s *FraudAlertStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.FraudAlert, error) {
	query := `
		SELECT id, account_id, transaction_id, alert_type, risk_score, description, status, reviewed_by, reviewed_at, created_at
		FROM fraud_alerts
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, status, limit, offset)
	} else {
		query += " ORDER BY created_at DESC LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}
	var rows []models.FraudAlert
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// Review is the single permitted mutation of an alert. Only pending alerts
// move; RowsAffected() == 0 signals an already-reviewed or missing alert.
func (s *FraudAlertStore) Review(ctx context.Context, tx Execer, alertID, status, reviewedBy string, reviewedAt time.Time) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE fraud_alerts
		SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'pending'
	`, status, reviewedBy, reviewedAt, alertID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
