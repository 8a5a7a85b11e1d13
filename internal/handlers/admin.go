package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"walletbank/internal/auth"
	"walletbank/internal/middleware"
	"walletbank/internal/models"
	"walletbank/internal/store"
	"walletbank/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const accountNumberWidth = 8

type createAccountRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	PIN    string `json:"pin"`
	Role   string `json:"role"`
}

func (h *Handler) AdminCreateAccount(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AccountIDFromContext(r.Context())
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateMobile(req.Mobile); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePIN(req.PIN); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	role := models.RoleCustomer
	if req.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}
	number, err := h.uniqueAccountNumber(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to allocate account number")
		return
	}
	pinHash, err := auth.HashPIN(req.PIN)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to hash pin")
		return
	}
	accountID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.accounts.Create(r.Context(), tx, store.AccountInput{
			ID:            accountID,
			AccountNumber: number,
			Name:          req.Name,
			Mobile:        req.Mobile,
			PINHash:       pinHash,
			Role:          string(role),
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"account_number": number, "role": string(role)})
		return h.audit.Log(r.Context(), tx, adminID, "create_account", "account", accountID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":             accountID,
		"account_number": number,
		"name":           req.Name,
		"mobile":         req.Mobile,
		"role":           role,
		"is_active":      true,
		"balance":        formatMinor(0),
		"wallet_balance": formatMinor(0),
	})
}

// uniqueAccountNumber draws random numbers until one is free. Collisions at
// 8 digits are rare; the cap guards a saturated number space.
func (h *Handler) uniqueAccountNumber(r *http.Request) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		number, err := auth.GenerateAccountNumber(accountNumberWidth)
		if err != nil {
			return "", err
		}
		exists, err := h.accounts.NumberExists(r.Context(), number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", errAccountNumberSpace
}

func (h *Handler) AdminDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AccountIDFromContext(r.Context())
	number := chi.URLParam(r, "number")
	account, err := h.accounts.GetByNumber(r.Context(), number)
	if err != nil {
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		affected, err := h.accounts.SetActive(r.Context(), tx, account.ID, false)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errNoRowsUpdated
		}
		return h.audit.Log(r.Context(), tx, adminID, "deactivate_account", "account", account.ID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to deactivate account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"account_number": number, "is_active": false})
}

func (h *Handler) AdminListAccounts(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)
	accounts, err := h.accounts.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list accounts")
		return
	}
	payload := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		payload = append(payload, map[string]any{
			"id":             account.ID,
			"account_number": account.AccountNumber,
			"name":           account.Name,
			"mobile":         account.Mobile,
			"role":           account.Role,
			"is_active":      account.IsActive,
			"balance":        formatMinor(account.Balance),
			"wallet_balance": formatMinor(account.WalletBalance),
			"created_at":     account.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"accounts": payload})
}

func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)
	accountID := r.URL.Query().Get("account_id")
	from, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid from timestamp")
		return
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid to timestamp")
		return
	}
	records, err := h.transactions.ListAll(r.Context(), accountID, from, to, limit, offset)
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

// AdminVolume returns per-kind daily totals plus the aggregate ledger
// position, the two numbers the dashboard plots.
func (h *Handler) AdminVolume(w http.ResponseWriter, r *http.Request) {
	days := parseInt(r.URL.Query().Get("days"), 30)
	from := time.Now().UTC().AddDate(0, 0, -days)
	points, err := h.transactions.VolumeByKind(r.Context(), from)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to aggregate volume")
		return
	}
	totals, err := h.accounts.Totals(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to aggregate totals")
		return
	}
	series := make([]map[string]any, 0, len(points))
	for _, point := range points {
		series = append(series, map[string]any{
			"kind":  point.Kind,
			"day":   point.Day,
			"total": formatMinor(point.Total),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"from":                 from,
		"volume":               series,
		"accounts":             totals.Accounts,
		"total_balance":        formatMinor(totals.Balance),
		"total_wallet_balance": formatMinor(totals.WalletBalance),
	})
}

func (h *Handler) AdminListAlerts(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(models.AlertPending)
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)
	alerts, err := h.alerts.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list alerts")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

type reviewAlertRequest struct {
	Status string `json:"status"`
}

func (h *Handler) AdminReviewAlert(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.AccountIDFromContext(r.Context())
	alertID := chi.URLParam(r, "id")
	var req reviewAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !models.ValidReviewStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "unknown review status")
		return
	}
	var affected int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		affected, err = h.alerts.Review(r.Context(), tx, alertID, req.Status, adminID, time.Now().UTC())
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		data, _ := json.Marshal(map[string]string{"status": req.Status})
		return h.audit.Log(r.Context(), tx, adminID, "review_alert", "fraud_alert", alertID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to review alert")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "alert not found or already reviewed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": alertID, "status": req.Status})
}

func (h *Handler) AdminListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 100)
	offset := parseInt(r.URL.Query().Get("offset"), 0)
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"audit_logs": logs})
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
