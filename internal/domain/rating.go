package domain

// Rating is keyed by (transaction, rater); a second submission by the same
// rater updates the earlier one. Once both parties have rated, the
// transaction moves to completed.
type Rating struct {
	ID            int32  `json:"id"`
	TransactionID int32  `json:"transaction_id"`
	RaterID       int32  `json:"rater_id"`
	RateeID       int32  `json:"ratee_id"`
	Stars         int32  `json:"stars"`
	Comment       string `json:"comment,omitempty"`
	CreatedOn     string `json:"created_on"`
}
