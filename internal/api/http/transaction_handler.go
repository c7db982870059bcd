package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/service"
)

type TransactionHandler struct {
	txService service.TransactionService
}

func NewTransactionHandler(txService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

type createTransactionRequest struct {
	ListingID int32  `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type conditionRequest struct {
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

type damageClaimRequest struct {
	AmountCents  int32    `json:"amount_cents"`
	Notes        string   `json:"notes"`
	EvidenceURLs []string `json:"evidence_urls"`
}

type rateRequest struct {
	Stars   int32  `json:"stars"`
	Comment string `json:"comment"`
}

type confirmReturnResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
	Degraded    bool                `json:"degraded"`
}

type listTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Total        int32                `json:"total"`
	Page         int32                `json:"page"`
	PageSize     int32                `json:"page_size"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	t, err := h.txService.Request(r.Context(), userID, req.ListingID, req.StartDate, req.EndDate)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.simpleAction(w, r, h.txService.Approve)
}

func (h *TransactionHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.simpleAction(w, r, h.txService.Decline)
}

func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.simpleAction(w, r, h.txService.Cancel)
}

func (h *TransactionHandler) ChargeLateFee(w http.ResponseWriter, r *http.Request) {
	h.simpleAction(w, r, h.txService.ChargeLateFee)
}

func (h *TransactionHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.simpleAction(w, r, h.txService.ConfirmPayment)
}

func (h *TransactionHandler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req conditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	t, err := h.txService.ConfirmPickup(r.Context(), userID, txID, domain.Condition(req.Condition), req.Notes)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req conditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	t, degraded, err := h.txService.ConfirmReturn(r.Context(), userID, txID, domain.Condition(req.Condition), req.Notes)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, confirmReturnResponse{Transaction: t, Degraded: degraded})
}

func (h *TransactionHandler) FileDamageClaim(w http.ResponseWriter, r *http.Request) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req damageClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	t, err := h.txService.FileDamageClaim(r.Context(), userID, txID, req.AmountCents, req.Notes, req.EvidenceURLs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	t, err := h.txService.Rate(r.Context(), userID, txID, req.Stars, req.Comment)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	report, err := h.txService.PaymentStatus(r.Context(), userID, txID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	t, err := h.txService.Get(r.Context(), userID, txID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	status := r.URL.Query().Get("status")
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}

	var (
		transactions []domain.Transaction
		total        int32
		err          error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "lender":
		transactions, total, err = h.txService.ListLending(r.Context(), userID, status, page, pageSize)
	case "", "borrower":
		transactions, total, err = h.txService.ListBorrowing(r.Context(), userID, status, page, pageSize)
	default:
		respondWithError(w, http.StatusBadRequest, "invalid_input", "role must be borrower or lender")
		return
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, listTransactionsResponse{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	})
}

// simpleAction covers the transitions that need no request body.
func (h *TransactionHandler) simpleAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, userID, txID int32) (*domain.Transaction, error)) {
	userID, txID, ok := h.identify(w, r)
	if !ok {
		return
	}
	t, err := action(r.Context(), userID, txID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) identify(w http.ResponseWriter, r *http.Request) (int32, int32, bool) {
	userID, ok := GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return 0, 0, false
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_transaction_id", "Invalid transaction ID")
		return 0, 0, false
	}
	return userID, int32(id), true
}

func queryInt32(r *http.Request, name string, def int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return def
	}
	return int32(v)
}
