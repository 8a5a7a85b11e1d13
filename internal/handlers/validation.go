package handlers

import (
	"errors"

	"walletbank/internal/money"
)

var (
	errInvalidAmount      = errors.New("invalid amount")
	errAccountNumberSpace = errors.New("account number space exhausted")
	errNoRowsUpdated      = errors.New("no rows updated")
)

func parseAmountMinor(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

// parseOptionalAmount returns nil for an absent amount; payment codes may
// be issued open-amount.
func parseOptionalAmount(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	amount, err := parseAmountMinor(raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}
