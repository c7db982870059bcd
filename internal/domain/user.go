package domain

// User carries the identity and payment references the lifecycle engine
// needs. Account management is an external collaborator.
type User struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// PaymentCustomerRef identifies the user as a payer at the external
	// processor (holds and independent charges are created against it).
	PaymentCustomerRef string `json:"payment_customer_ref,omitempty"`

	// PayoutAccountRef is the connected account able to receive transfers.
	// Empty means no payout account is configured; transfers to this user
	// are deferred.
	PayoutAccountRef string `json:"payout_account_ref,omitempty"`

	// PushToken is the device token for push notifications, if registered.
	PushToken string `json:"push_token,omitempty"`
}

// HasPayoutAccount reports whether transfers to this user can be executed now.
func (u *User) HasPayoutAccount() bool {
	return u.PayoutAccountRef != ""
}
