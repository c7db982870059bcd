package payment

import (
	"context"
	"fmt"
)

// ErrorKind classifies which orchestrator call failed. The transition
// controller aborts before any local write when one of these surfaces, so the
// transaction stays in its prior status and the action is safe to retry.
type ErrorKind string

const (
	KindHoldFailed     ErrorKind = "hold_failed"
	KindCaptureFailed  ErrorKind = "capture_failed"
	KindCancelFailed   ErrorKind = "cancel_failed"
	KindTransferFailed ErrorKind = "transfer_failed"
	KindRefundFailed   ErrorKind = "refund_failed"
	KindChargeFailed   ErrorKind = "charge_failed"
	KindLookupFailed   ErrorKind = "lookup_failed"
)

// OrchestrationError wraps a failed processor call.
type OrchestrationError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("payment orchestration failed (%s) during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

// Hold is the processor's view of an authorization hold.
type Hold struct {
	Ref           string `json:"ref"`
	Status        string `json:"status"` // "authorized", "captured", "cancelled"
	AmountCents   int32  `json:"amount_cents"`
	CapturedCents int32  `json:"captured_cents"`
	RefundedCents int32  `json:"refunded_cents"`
}

// Hold statuses reported by the processor.
const (
	HoldStatusAuthorized = "authorized"
	HoldStatusCaptured   = "captured"
	HoldStatusCancelled  = "cancelled"
)

// Charge is the processor's view of an independent auto-capture charge.
type Charge struct {
	Ref         string `json:"ref"`
	Status      string `json:"status"` // "succeeded", "failed"
	AmountCents int32  `json:"amount_cents"`
}

// Charge statuses reported by the processor.
const (
	ChargeStatusSucceeded = "succeeded"
	ChargeStatusFailed    = "failed"
)

// Processor is the narrow surface consumed from the external payment
// processor. Every mutating call takes a caller-supplied idempotency key so
// client or network retries never duplicate a financial effect.
//
// Amount semantics: 0 means "full amount" on CaptureHold and Refund.
type Processor interface {
	// CreateHold reserves funds on the payer's instrument without moving
	// them (manual capture). Returns the hold reference.
	CreateHold(ctx context.Context, idemKey string, amountCents int32, payerRef string, metadata map[string]string) (string, error)

	// CaptureHold finalizes some or all of a hold into a charge. A hold can
	// be captured only once.
	CaptureHold(ctx context.Context, idemKey, holdRef string, amountCents int32) error

	// CancelHold releases an uncaptured hold; no funds move.
	CancelHold(ctx context.Context, idemKey, holdRef string) error

	// Refund returns some or all of a captured charge to the payer.
	// Returns the refund reference.
	Refund(ctx context.Context, idemKey, holdRef string, amountCents int32) (string, error)

	// Transfer moves settled funds to a connected payout account.
	// Returns the transfer reference.
	Transfer(ctx context.Context, idemKey string, amountCents int32, payoutAccountRef string, metadata map[string]string) (string, error)

	// ChargeIndependent creates an immediate auto-capture charge, distinct
	// from any hold. Used for late fees: the original hold is already
	// consumed by the time fees accrue. Returns the charge reference.
	ChargeIndependent(ctx context.Context, idemKey string, amountCents int32, payerRef string, metadata map[string]string) (string, error)

	// GetHold retrieves live hold state, used by the payment-status endpoint
	// and the reconciliation sweep.
	GetHold(ctx context.Context, holdRef string) (*Hold, error)

	// GetCharge retrieves live state of an independent charge.
	GetCharge(ctx context.Context, chargeRef string) (*Charge, error)
}

// IdempotencyKey builds the {transactionID}-{operation}-{seq} key. The key is
// fully deterministic for a logical attempt: a retry after a failure between
// the processor call and the local write presents the same key, so the
// processor deduplicates and no financial effect happens twice. Operations
// that happen at most once per transaction pass seq 0; repeatable operations
// derive seq from durable local state (late fees pass the cents already
// charged, so retrying an unrecorded charge reuses its key while the next
// accrual gets a fresh one).
func IdempotencyKey(transactionID int32, operation string, seq int32) string {
	return fmt.Sprintf("%d-%s-%d", transactionID, operation, seq)
}
