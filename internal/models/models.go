package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// TransactionKind is a closed set; the scoring pipeline and reporting
// switch over it exhaustively.
type TransactionKind string

const (
	KindDeposit          TransactionKind = "deposit"
	KindWithdrawToWallet TransactionKind = "withdraw_to_wallet"
	KindTransfer         TransactionKind = "transfer"
	KindWalletPayment    TransactionKind = "wallet_payment"
)

func ValidTransactionKind(raw string) bool {
	switch TransactionKind(raw) {
	case KindDeposit, KindWithdrawToWallet, KindTransfer, KindWalletPayment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

type AlertStatus string

const (
	AlertPending        AlertStatus = "pending"
	AlertReviewed       AlertStatus = "reviewed"
	AlertFalsePositive  AlertStatus = "false_positive"
	AlertConfirmedFraud AlertStatus = "confirmed_fraud"
)

// ValidReviewStatus reports whether raw is a terminal review outcome;
// pending is not a value a reviewer may set.
func ValidReviewStatus(raw string) bool {
	switch AlertStatus(raw) {
	case AlertReviewed, AlertFalsePositive, AlertConfirmedFraud:
		return true
	}
	return false
}

type Account struct {
	ID            string    `db:"id" json:"id"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	Name          string    `db:"name" json:"name"`
	Mobile        string    `db:"mobile" json:"mobile"`
	PINHash       string    `db:"pin_hash" json:"-"`
	Role          Role      `db:"role" json:"role"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	Balance       int64     `db:"balance" json:"balance"`
	WalletBalance int64     `db:"wallet_balance" json:"wallet_balance"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Amounts are minor currency units, always positive integers.
type Transaction struct {
	ID              string            `db:"id" json:"id"`
	ReferenceNumber string            `db:"reference_number" json:"reference_number"`
	FromAccountID   *string           `db:"from_account_id" json:"from_account_id,omitempty"`
	ToAccountID     *string           `db:"to_account_id" json:"to_account_id,omitempty"`
	Kind            TransactionKind   `db:"kind" json:"kind"`
	Status          TransactionStatus `db:"status" json:"status"`
	Amount          int64             `db:"amount" json:"amount"`
	Description     string            `db:"description" json:"description"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}

type PaymentCode struct {
	ID               string    `db:"id" json:"id"`
	IssuingAccountID string    `db:"issuing_account_id" json:"issuing_account_id"`
	Code             string    `db:"code" json:"code"`
	Amount           *int64    `db:"amount" json:"amount,omitempty"`
	MerchantLabel    string    `db:"merchant_label" json:"merchant_label"`
	Used             bool      `db:"used" json:"used"`
	ExpiresAt        time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type FraudAlert struct {
	ID            string      `db:"id" json:"id"`
	AccountID     string      `db:"account_id" json:"account_id"`
	TransactionID *string     `db:"transaction_id" json:"transaction_id,omitempty"`
	AlertType     string      `db:"alert_type" json:"alert_type"`
	RiskScore     float64     `db:"risk_score" json:"risk_score"`
	Description   string      `db:"description" json:"description"`
	Status        AlertStatus `db:"status" json:"status"`
	ReviewedBy    *string     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}
