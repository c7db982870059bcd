package pricing

import (
	"math"
	"time"

	"borrowly-backend/internal/domain"
)

// Quote is the fee breakdown snapshotted onto the transaction at request
// time. All amounts are integer cents. LenderPayoutCents + PlatformFeeCents
// always equals RentalFeeCents.
type Quote struct {
	RentalFeeCents    int32 `json:"rental_fee_cents"`
	PlatformFeeCents  int32 `json:"platform_fee_cents"`
	LenderPayoutCents int32 `json:"lender_payout_cents"`
}

// RentalDays computes the billable duration: ceil((end - start) / 1 day).
// A request spanning any part of a day pays for the whole day. Returns an
// invalid-input error when end is not after start.
func RentalDays(start, end time.Time) (int32, error) {
	if !end.After(start) {
		return 0, domain.NewValidationError(domain.ReasonInvalidInput, "end date must be after start date")
	}
	days := int32(math.Ceil(end.Sub(start).Hours() / 24))
	return days, nil
}

// CheckDuration validates days against the listing's duration bounds.
// A zero MaxDurationDays means the listing has no upper bound.
func CheckDuration(days, minDays, maxDays int32) error {
	if minDays > 0 && days < minDays {
		return domain.NewValidationError(domain.ReasonDurationOutOfRange,
			"rental of %d days is below the listing minimum of %d", days, minDays)
	}
	if maxDays > 0 && days > maxDays {
		return domain.NewValidationError(domain.ReasonDurationOutOfRange,
			"rental of %d days exceeds the listing maximum of %d", days, maxDays)
	}
	return nil
}

// Compute derives the fee breakdown from the daily rate and duration.
// The platform fee is rounded to the nearest cent; the lender payout is the
// remainder, so the three figures conserve to the cent.
//
// feePercent is injected configuration (e.g. 0.02), never a literal constant
// at call sites, so tests can override it.
func Compute(dailyRateCents, days int32, feePercent float64) Quote {
	rentalFee := dailyRateCents * days
	platformFee := int32(math.Round(float64(rentalFee) * feePercent))
	return Quote{
		RentalFeeCents:    rentalFee,
		PlatformFeeCents:  platformFee,
		LenderPayoutCents: rentalFee - platformFee,
	}
}

// CheckChargeable rejects totals the processor cannot charge. A zero total is
// allowed (free rental, no hold is created); a positive total below the
// processor minimum is not.
func CheckChargeable(totalCents, minChargeCents int32) error {
	if totalCents > 0 && totalCents < minChargeCents {
		return domain.NewValidationError(domain.ReasonAmountTooSmall,
			"chargeable amount of %d cents is below the processor minimum of %d", totalCents, minChargeCents)
	}
	return nil
}

// OverdueDays computes whole days a rental is past its agreed end date,
// rounding partial days up. Zero or negative means not overdue.
func OverdueDays(end, now time.Time) int32 {
	if !now.After(end) {
		return 0
	}
	return int32(math.Ceil(now.Sub(end).Hours() / 24))
}
