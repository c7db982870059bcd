package notify

import (
	"context"
	"fmt"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/repository"
)

// Dispatcher fans a lifecycle event out to the in-app notification table,
// push, and email. Every channel is best-effort: failures are logged and
// swallowed so notification outages can never block a transition.
type Dispatcher struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	email    EmailSender // nil disables email
	push     PushSender  // nil disables push
}

func NewDispatcher(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, email EmailSender, push PushSender) *Dispatcher {
	return &Dispatcher{noteRepo: noteRepo, userRepo: userRepo, email: email, push: push}
}

func (d *Dispatcher) Notify(ctx context.Context, userID int32, eventType string, payload map[string]string) {
	title, message := render(eventType, payload)

	note := &domain.Notification{
		UserID:     userID,
		EventType:  eventType,
		Title:      title,
		Message:    message,
		Attributes: payload,
	}
	if err := d.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to store notification", "user_id", userID, "event_type", eventType, "error", err)
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("Failed to load notification recipient", "user_id", userID, "event_type", eventType, "error", err)
		return
	}

	if d.push != nil && user.PushToken != "" {
		if err := d.push.SendPush(ctx, user.PushToken, title, message, payload); err != nil {
			logger.Warn("Push delivery failed", "user_id", userID, "event_type", eventType, "error", err)
		}
	}

	if d.email != nil && user.Email != "" {
		html := fmt.Sprintf("<html><body><h2>%s</h2><p>%s</p></body></html>", title, message)
		if err := d.email.SendEmail(user.Email, user.Name, title, message, html); err != nil {
			logger.Warn("Email delivery failed", "user_id", userID, "event_type", eventType, "error", err)
		}
	}
}

// render maps an event type to a human-readable title and message. Unknown
// events still produce a generic line so the row is never empty.
func render(eventType string, payload map[string]string) (string, string) {
	txID := payload["transaction_id"]
	switch eventType {
	case "transaction_requested":
		return "New rental request", fmt.Sprintf("You have a new rental request for %q.", payload["listing_title"])
	case "transaction_approved":
		return "Request approved", fmt.Sprintf("Your rental request #%s was approved and payment was collected.", txID)
	case "transaction_declined":
		return "Request declined", fmt.Sprintf("Your rental request #%s was declined. Any hold on your payment method was released.", txID)
	case "transaction_cancelled":
		return "Rental cancelled", fmt.Sprintf("Rental #%s was cancelled.", txID)
	case "pickup_confirmed":
		return "Pickup confirmed", fmt.Sprintf("Pickup for rental #%s was confirmed in %s condition.", txID, payload["condition"])
	case "return_flagged":
		return "Return needs review", fmt.Sprintf("The item for rental #%s came back in worse condition (%s at pickup, %s at return).",
			txID, payload["condition_at_pickup"], payload["condition_at_return"])
	case "return_confirmed":
		return "Return confirmed", fmt.Sprintf("Rental #%s is settled. Your deposit refund is on its way.", txID)
	case "damage_claim_filed":
		return "Damage claim filed", fmt.Sprintf("A damage claim was filed on rental #%s. %s cents were withheld from your deposit.",
			txID, payload["claim_cents"])
	case "late_fee_charged":
		return "Late fee charged", fmt.Sprintf("A late fee of %s cents was charged for rental #%s (%s day(s) overdue).",
			payload["charge_cents"], txID, payload["days_overdue"])
	case "rating_received":
		return "New rating", fmt.Sprintf("You received a %s-star rating on rental #%s.", payload["stars"], txID)
	case "return_overdue":
		return "Return overdue", fmt.Sprintf("Rental #%s is %s day(s) past its end date. Please arrange the return.",
			txID, payload["days_overdue"])
	default:
		return "Rental update", fmt.Sprintf("There is an update on rental #%s.", txID)
	}
}
