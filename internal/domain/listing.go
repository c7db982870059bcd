package domain

// Listing is the read model the lifecycle engine needs from the listing
// subsystem: rental terms to snapshot at request time, plus the availability
// flag and borrow counters the settlement paths maintain. Listing CRUD itself
// lives outside this core.
type Listing struct {
	ID                 int32  `json:"id"`
	OwnerID            int32  `json:"owner_id"`
	Title              string `json:"title"`
	DailyRateCents     int32  `json:"daily_rate_cents"`
	DepositCents       int32  `json:"deposit_cents"`
	LateFeePerDayCents int32  `json:"late_fee_per_day_cents"`
	MinDurationDays    int32  `json:"min_duration_days"`
	MaxDurationDays    int32  `json:"max_duration_days"`
	Available          bool   `json:"available"`
	TimesBorrowed      int32  `json:"times_borrowed"`
	TotalEarningsCents int64  `json:"total_earnings_cents"`
}
