package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/payment"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, errorResponse{Error: errorCode, Message: message})
}

// respondServiceError translates the service error taxonomy to HTTP. Internal
// details never leak: unclassified errors become a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		respondWithError(w, http.StatusBadRequest, vErr.Reason, vErr.Message)
		return
	}

	var aErr *domain.AuthorizationError
	if errors.As(err, &aErr) {
		respondWithError(w, http.StatusForbidden, "forbidden", aErr.Message)
		return
	}

	if errors.Is(err, domain.ErrNotFoundOrWrongState) {
		respondWithError(w, http.StatusConflict, "wrong_state",
			"The transaction is not in a state that allows this action")
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "not_found", "Resource not found")
		return
	}

	var oErr *payment.OrchestrationError
	if errors.As(err, &oErr) {
		logger.ErrorContext(r.Context(), "Payment orchestration failed",
			"path", r.URL.Path, "kind", oErr.Kind, "error", err)
		respondWithError(w, http.StatusBadGateway, string(oErr.Kind),
			"The payment processor could not complete the operation")
		return
	}

	logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	respondWithError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
}
