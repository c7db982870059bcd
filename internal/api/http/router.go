package http

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"borrowly-backend/internal/repository"
	"borrowly-backend/internal/security"
	"borrowly-backend/internal/service"
)

// NewRouter assembles the full HTTP surface under /api/v1. Every transaction
// route requires a valid bearer token; identity comes from the token, never
// from the request body.
func NewRouter(
	txService service.TransactionService,
	noteRepo repository.NotificationRepository,
	tokens security.TokenManager,
	allowedOrigins []string,
) http.Handler {
	txHandler := NewTransactionHandler(txService)
	noteHandler := NewNotificationHandler(noteRepo)

	r := mux.NewRouter()

	limiter := NewRateLimiter(rate.Limit(50), 100)
	r.Use(Recovery())
	r.Use(RequestLogging())
	r.Use(SecurityHeaders())
	r.Use(limiter.Middleware())

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(Authentication(tokens))

	tx := api.PathPrefix("/transactions").Subrouter()
	tx.HandleFunc("", txHandler.Create).Methods("POST")
	tx.HandleFunc("", txHandler.List).Methods("GET")
	tx.HandleFunc("/{id}", txHandler.Get).Methods("GET")
	tx.HandleFunc("/{id}/approve", txHandler.Approve).Methods("POST")
	tx.HandleFunc("/{id}/decline", txHandler.Decline).Methods("POST")
	tx.HandleFunc("/{id}/cancel", txHandler.Cancel).Methods("POST")
	tx.HandleFunc("/{id}/pickup", txHandler.ConfirmPickup).Methods("POST")
	tx.HandleFunc("/{id}/return", txHandler.ConfirmReturn).Methods("POST")
	tx.HandleFunc("/{id}/damage-claim", txHandler.FileDamageClaim).Methods("POST")
	tx.HandleFunc("/{id}/late-fee", txHandler.ChargeLateFee).Methods("POST")
	tx.HandleFunc("/{id}/rate", txHandler.Rate).Methods("POST")
	tx.HandleFunc("/{id}/confirm-payment", txHandler.ConfirmPayment).Methods("POST")
	tx.HandleFunc("/{id}/payment-status", txHandler.PaymentStatus).Methods("GET")

	notes := api.PathPrefix("/notifications").Subrouter()
	notes.HandleFunc("", noteHandler.List).Methods("GET")
	notes.HandleFunc("/{id}/read", noteHandler.MarkAsRead).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
	)
	return cors(r)
}
