package domain

import "time"

type TransactionStatus string

const (
	StatusRequested     TransactionStatus = "requested"
	StatusApprovedPaid  TransactionStatus = "approved_paid"
	StatusPickedUp      TransactionStatus = "picked_up"
	StatusReturnPending TransactionStatus = "return_pending"
	StatusReturned      TransactionStatus = "returned"
	StatusDisputed      TransactionStatus = "disputed"
	StatusCancelled     TransactionStatus = "cancelled"
	StatusCompleted     TransactionStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusNone          PaymentStatus = "none"
	PaymentStatusAuthorized    PaymentStatus = "authorized"
	PaymentStatusCaptured      PaymentStatus = "captured"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusCancelled     PaymentStatus = "cancelled"
	PaymentStatusDamageClaimed PaymentStatus = "damage_claimed"
	PaymentStatusFailed        PaymentStatus = "failed"
)

// Transaction is the rental transaction record. Pricing fields are a snapshot
// taken from the listing at request time; all later money movement uses the
// snapshot, not live listing prices. Mutations go through the transition
// controller and its state-gated repository writes, never direct field edits.
type Transaction struct {
	ID         int32 `json:"id"`
	ListingID  int32 `json:"listing_id"`
	BorrowerID int32 `json:"borrower_id"`
	LenderID   int32 `json:"lender_id"`

	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	RentalDays         int32     `json:"rental_days"`
	DailyRateCents     int32     `json:"daily_rate_cents"`
	RentalFeeCents     int32     `json:"rental_fee_cents"`
	DepositCents       int32     `json:"deposit_cents"`
	PlatformFeeCents   int32     `json:"platform_fee_cents"`
	LenderPayoutCents  int32     `json:"lender_payout_cents"`
	LateFeePerDayCents int32     `json:"late_fee_per_day_cents"`

	Status        TransactionStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status"`

	ConditionAtPickup Condition `json:"condition_at_pickup,omitempty"`
	ConditionAtReturn Condition `json:"condition_at_return,omitempty"`
	ConditionNotes    string    `json:"condition_notes,omitempty"`

	LateFeeAmountCents     int32    `json:"late_fee_amount_cents"`
	DamageClaimAmountCents int32    `json:"damage_claim_amount_cents"`
	DamageClaimNotes       string   `json:"damage_claim_notes,omitempty"`
	DamageEvidenceURLs     []string `json:"damage_evidence_urls,omitempty"`

	// External payment processor references, kept for retries and for the
	// reconciliation sweep to re-query live processor state.
	HoldRef           string   `json:"hold_ref,omitempty"`
	TransferRef       string   `json:"transfer_ref,omitempty"`
	LateFeeChargeRefs []string `json:"late_fee_charge_refs,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	ActualPickupAt *time.Time `json:"actual_pickup_at,omitempty"`
	ActualReturnAt *time.Time `json:"actual_return_at,omitempty"`
}

// TotalChargeCents is the amount held at request time: rental fee plus deposit.
func (t *Transaction) TotalChargeCents() int32 {
	return t.RentalFeeCents + t.DepositCents
}

// IsParticipant reports whether userID is the borrower or the lender.
func (t *Transaction) IsParticipant(userID int32) bool {
	return t.BorrowerID == userID || t.LenderID == userID
}

// IsTerminal reports whether the transaction can no longer change status,
// rating upserts excepted.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusDisputed
}

// Occupied reports whether the transaction keeps its listing unavailable.
func (s TransactionStatus) Occupied() bool {
	return s == StatusApprovedPaid || s == StatusPickedUp || s == StatusReturnPending
}
