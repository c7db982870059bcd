package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/payment"
	"borrowly-backend/internal/pricing"
	"borrowly-backend/internal/service"
)

// SendOverdueReminders notifies borrowers whose rental is past its agreed end
// date and still out. Purely informational; late fees stay a lender action.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := time.Now()

		overdue, err := jr.store.Transactions.ListOverdue(ctx, now, 200)
		if err != nil {
			logger.Error("Failed to list overdue transactions", "error", err)
			return
		}

		for i := range overdue {
			t := &overdue[i]
			days := pricing.OverdueDays(t.EndDate, now)
			jr.notifier.Notify(ctx, t.BorrowerID, service.EventReturnOverdue, map[string]string{
				"transaction_id": fmt.Sprintf("%d", t.ID),
				"listing_id":     fmt.Sprintf("%d", t.ListingID),
				"days_overdue":   fmt.Sprintf("%d", days),
			})
		}
		logger.Info("Overdue reminders sent", "count", len(overdue))
	})
}

// ReconcilePayments sweeps transactions whose hold has been locally
// authorized for too long and repairs the payment status from the
// processor's live view. This is the automated counterpart of the
// confirm-payment endpoint; it never moves money.
func (jr *JobRunner) ReconcilePayments() {
	jr.runWithRecovery("ReconcilePayments", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-24 * time.Hour)

		stale, err := jr.store.Transactions.ListStaleAuthorized(ctx, cutoff, 100)
		if err != nil {
			logger.Error("Failed to list stale authorized transactions", "error", err)
			return
		}

		repaired := 0
		for i := range stale {
			t := &stale[i]
			if t.HoldRef == "" {
				continue
			}
			hold, err := jr.processor.GetHold(ctx, t.HoldRef)
			if err != nil {
				logger.Warn("Hold lookup failed during reconciliation",
					"transaction_id", t.ID, "hold_ref", t.HoldRef, "error", err)
				continue
			}

			var to domain.PaymentStatus
			switch hold.Status {
			case payment.HoldStatusCaptured:
				to = domain.PaymentStatusCaptured
			case payment.HoldStatusCancelled:
				to = domain.PaymentStatusCancelled
			default:
				continue
			}

			err = jr.store.Transactions.UpdatePaymentStatus(ctx, t.ID, domain.PaymentStatusAuthorized, to)
			if err != nil {
				if errors.Is(err, domain.ErrNotFoundOrWrongState) {
					continue
				}
				logger.Error("Failed to repair payment status",
					"transaction_id", t.ID, "to", to, "error", err)
				continue
			}
			repaired++
			logger.Info("Repaired stale payment status",
				"transaction_id", t.ID, "hold_ref", t.HoldRef, "payment_status", to)
		}
		logger.Info("Payment reconciliation finished", "scanned", len(stale), "repaired", repaired)
	})
}
