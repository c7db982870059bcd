package repository

import (
	"context"
	"time"

	"borrowly-backend/internal/domain"
)

// TransactionRepository persists the rental transaction lifecycle. Every
// status-changing method is a state-gated conditional write: the UPDATE is
// conditioned on the current status matching the expected pre-state, and zero
// affected rows surfaces as domain.ErrNotFoundOrWrongState. That optimistic
// check is the system's only concurrency control.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	ListByBorrower(ctx context.Context, borrowerID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error)
	ListByLender(ctx context.Context, lenderID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error)

	// SetHold records the authorization hold created right after the row was
	// inserted. Gated on status=requested and payment_status=none.
	SetHold(ctx context.Context, id int32, holdRef string) error

	// MarkApproved moves requested → approved_paid.
	MarkApproved(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error

	// MarkDeclined moves requested → cancelled (lender declines).
	MarkDeclined(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error

	// MarkCancelled moves requested|approved_paid → cancelled (borrower cancels).
	MarkCancelled(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error

	// MarkPickedUp moves approved_paid → picked_up and records the handover
	// condition.
	MarkPickedUp(ctx context.Context, id int32, condition domain.Condition, notes string, pickupAt time.Time) error

	// MarkReturnPending records a degraded return condition and parks the
	// transaction in return_pending. Gated on picked_up|return_pending. No
	// funds move on this path.
	MarkReturnPending(ctx context.Context, id int32, condition domain.Condition, notes string, returnAt time.Time) error

	// SettleCleanReturn is the one multi-statement write group: transaction
	// row to returned, listing availability restored, listing counters
	// updated. Entered only after the payout transfer and deposit refund have
	// already succeeded at the processor.
	SettleCleanReturn(ctx context.Context, settle CleanReturnSettlement) error

	// SettleDamageClaim records a lender damage claim: status returned,
	// payment_status damage_claimed, claim amount/notes/evidence stored, and
	// the listing freed, in one write group.
	SettleDamageClaim(ctx context.Context, settle DamageClaimSettlement) error

	// AppendLateFee adds an independent late-fee charge to the running total
	// and reference list. Gated on picked_up. Repeatable.
	AppendLateFee(ctx context.Context, id int32, amountCents int32, chargeRef string) error

	// MarkCompleted moves returned → completed once both parties have rated.
	MarkCompleted(ctx context.Context, id int32) error

	// UpdatePaymentStatus repairs a stale local payment status against live
	// processor state (reconciliation). Gated on the expected current value.
	UpdatePaymentStatus(ctx context.Context, id int32, from, to domain.PaymentStatus) error

	// ListStaleAuthorized returns transactions whose hold is still locally
	// authorized after cutoff, for the reconciliation sweep.
	ListStaleAuthorized(ctx context.Context, cutoff time.Time, limit int32) ([]domain.Transaction, error)

	// ListOverdue returns picked_up transactions whose agreed end date has
	// passed, for the reminder sweep.
	ListOverdue(ctx context.Context, asOf time.Time, limit int32) ([]domain.Transaction, error)
}

// CleanReturnSettlement carries the post-processor facts the clean-return
// write group persists.
type CleanReturnSettlement struct {
	TransactionID  int32
	ListingID      int32
	Condition      domain.Condition
	Notes          string
	TransferRef    string // empty when payout was deferred or zero
	PaymentStatus  domain.PaymentStatus
	EarningsCents  int32 // credited to the listing's total earnings
	ActualReturnAt time.Time
}

// DamageClaimSettlement carries the damage-claim write group facts.
type DamageClaimSettlement struct {
	TransactionID  int32
	ListingID      int32
	ClaimCents     int32
	Notes          string
	EvidenceURLs   []string
	TransferRef    string
	EarningsCents  int32
	ActualReturnAt time.Time
}

type ListingRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Listing, error)
	// SetAvailability flips the availability flag outside the settlement
	// write groups (approve occupies, cancel frees).
	SetAvailability(ctx context.Context, id int32, available bool) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type RatingRepository interface {
	// Upsert is keyed on (transaction, rater): a repeat submission updates.
	Upsert(ctx context.Context, rating *domain.Rating) error
	CountByTransaction(ctx context.Context, transactionID int32) (int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
