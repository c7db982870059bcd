package service

import (
	"context"

	"borrowly-backend/internal/domain"
)

// TransactionService is the transition controller: the only mutation path for
// rental transactions. Each method validates actor, role, and current state,
// issues any payment-processor calls, and only then performs the state-gated
// local write.
type TransactionService interface {
	Request(ctx context.Context, borrowerID, listingID int32, startDate, endDate string) (*domain.Transaction, error)
	Approve(ctx context.Context, lenderID, transactionID int32) (*domain.Transaction, error)
	Decline(ctx context.Context, lenderID, transactionID int32) (*domain.Transaction, error)
	Cancel(ctx context.Context, borrowerID, transactionID int32) (*domain.Transaction, error)
	ConfirmPickup(ctx context.Context, lenderID, transactionID int32, condition domain.Condition, notes string) (*domain.Transaction, error)

	// ConfirmReturn runs the condition comparison. The boolean reports the
	// degraded branch: true means no funds moved and the transaction is
	// parked in return_pending awaiting a damage claim (or a clean re-check).
	ConfirmReturn(ctx context.Context, lenderID, transactionID int32, condition domain.Condition, notes string) (*domain.Transaction, bool, error)

	FileDamageClaim(ctx context.Context, lenderID, transactionID int32, requestedCents int32, notes string, evidenceURLs []string) (*domain.Transaction, error)
	ChargeLateFee(ctx context.Context, lenderID, transactionID int32) (*domain.Transaction, error)
	Rate(ctx context.Context, raterID, transactionID, stars int32, comment string) (*domain.Transaction, error)

	// ConfirmPayment re-queries the live hold and repairs a locally stale
	// payment status. Safe to call repeatedly; it never moves money.
	ConfirmPayment(ctx context.Context, userID, transactionID int32) (*domain.Transaction, error)

	PaymentStatus(ctx context.Context, userID, transactionID int32) (*PaymentStatusReport, error)

	Get(ctx context.Context, userID, transactionID int32) (*domain.Transaction, error)
	ListBorrowing(ctx context.Context, borrowerID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error)
	ListLending(ctx context.Context, lenderID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error)
}

// PaymentStatusReport combines the locally persisted payment fields with the
// processor's live view of the hold, when one exists.
type PaymentStatusReport struct {
	TransactionID      int32                    `json:"transaction_id"`
	Status             domain.TransactionStatus `json:"status"`
	PaymentStatus      domain.PaymentStatus     `json:"payment_status"`
	HoldRef            string                   `json:"hold_ref,omitempty"`
	TransferRef        string                   `json:"transfer_ref,omitempty"`
	LateFeeChargeRefs  []string                 `json:"late_fee_charge_refs,omitempty"`
	LateFeeAmountCents int32                    `json:"late_fee_amount_cents"`
	ProcessorStatus    string                   `json:"processor_status,omitempty"`
	ProcessorAvailable bool                     `json:"processor_available"`
}

// Notifier is the external notification collaborator. Dispatch is
// fire-and-forget: implementations log failures and never return them, so a
// notification outage can neither block nor reverse a transition.
type Notifier interface {
	Notify(ctx context.Context, userID int32, eventType string, payload map[string]string)
}

// Notification event types.
const (
	EventTransactionRequested = "transaction_requested"
	EventTransactionApproved  = "transaction_approved"
	EventTransactionDeclined  = "transaction_declined"
	EventTransactionCancelled = "transaction_cancelled"
	EventPickupConfirmed      = "pickup_confirmed"
	EventReturnFlagged        = "return_flagged"
	EventReturnConfirmed      = "return_confirmed"
	EventDamageClaimFiled     = "damage_claim_filed"
	EventLateFeeCharged       = "late_fee_charged"
	EventRatingReceived       = "rating_received"
	EventReturnOverdue        = "return_overdue"
)
