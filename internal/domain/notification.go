package domain

// Notification is the in-app record written by the notification dispatcher.
// Delivery (push, email) is best-effort; the row is the durable trace.
type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	EventType  string            `json:"event_type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  string            `json:"created_on"`
}
