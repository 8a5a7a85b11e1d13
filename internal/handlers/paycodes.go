package handlers

import (
	"encoding/json"
	"net/http"

	"walletbank/internal/middleware"
	"walletbank/internal/models"
)

type issuePaymentCodeRequest struct {
	Amount        string `json:"amount"`
	MerchantLabel string `json:"merchant_label"`
}

type redeemPaymentCodeRequest struct {
	Code   string `json:"code"`
	Amount string `json:"amount"`
}

func (h *Handler) IssuePaymentCode(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req issuePaymentCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	code, err := h.paycodes.Issue(r.Context(), accountID, amount, req.MerchantLabel)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, paymentCodePayload(code))
}

func (h *Handler) RedeemPaymentCode(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req redeemPaymentCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	record, err := h.paycodes.Redeem(r.Context(), accountID, req.Code, amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transactionPayload(record))
}

func (h *Handler) ListPaymentCodes(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)
	codes, err := h.paycodes.ListByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list payment codes")
		return
	}
	payload := make([]map[string]any, 0, len(codes))
	for _, code := range codes {
		payload = append(payload, paymentCodePayload(code))
	}
	respondJSON(w, http.StatusOK, map[string]any{"payment_codes": payload})
}

func paymentCodePayload(code models.PaymentCode) map[string]any {
	payload := map[string]any{
		"id":             code.ID,
		"code":           code.Code,
		"merchant_label": code.MerchantLabel,
		"used":           code.Used,
		"expires_at":     code.ExpiresAt,
		"created_at":     code.CreatedAt,
	}
	if code.Amount != nil {
		payload["amount"] = formatMinor(*code.Amount)
	}
	return payload
}
