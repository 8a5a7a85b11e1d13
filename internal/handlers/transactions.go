package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"walletbank/internal/middleware"
	"walletbank/internal/models"
	"walletbank/internal/services"
)

type amountRequest struct {
	Amount string `json:"amount"`
}

type transferRequest struct {
	ToAccountNumber string `json:"to_account_number"`
	Amount          string `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	record, err := h.ledger.Deposit(r.Context(), accountID, amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionPayload(record))
}

func (h *Handler) WithdrawToWallet(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	record, err := h.ledger.WithdrawToWallet(r.Context(), accountID, amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionPayload(record))
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ToAccountNumber == "" {
		respondError(w, http.StatusBadRequest, "to_account_number is required")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	record, err := h.ledger.Transfer(r.Context(), accountID, req.ToAccountNumber, amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionPayload(record))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)
	kind := r.URL.Query().Get("kind")
	if kind != "" && !models.ValidTransactionKind(kind) {
		respondError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}
	records, err := h.transactions.ListByAccount(r.Context(), accountID, kind, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	payload := make([]map[string]any, 0, len(records))
	for _, record := range records {
		payload = append(payload, transactionPayload(record))
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": payload})
}

func transactionPayload(record models.Transaction) map[string]any {
	return map[string]any{
		"id":               record.ID,
		"reference_number": record.ReferenceNumber,
		"from_account_id":  record.FromAccountID,
		"to_account_id":    record.ToAccountID,
		"kind":             record.Kind,
		"status":           record.Status,
		"amount":           formatMinor(record.Amount),
		"description":      record.Description,
		"created_at":       record.CreatedAt,
	}
}

// respondServiceError maps ledger sentinels onto HTTP statuses. Anything
// not in the table is a 500 with a generic body.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid amount")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, services.ErrSameAccount):
		respondError(w, http.StatusBadRequest, "cannot transfer to the same account")
	case errors.Is(err, services.ErrCodeExpired):
		respondError(w, http.StatusBadRequest, "payment code expired")
	case errors.Is(err, services.ErrCodeAlreadyUsed):
		respondError(w, http.StatusBadRequest, "payment code already used")
	case errors.Is(err, services.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, services.ErrCodeNotFound):
		respondError(w, http.StatusNotFound, "payment code not found")
	case errors.Is(err, services.ErrAccountInactive):
		respondError(w, http.StatusUnprocessableEntity, "account inactive")
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}
