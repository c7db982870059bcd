package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/payment"
	"borrowly-backend/internal/pricing"
	"borrowly-backend/internal/repository"
)

type transactionService struct {
	txRepo      repository.TransactionRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	ratingRepo  repository.RatingRepository
	processor   payment.Processor
	notifier    Notifier

	feePercent     float64
	minChargeCents int32
	now            func() time.Time
}

// NewTransactionService wires the transition controller. feePercent and
// minChargeCents come from configuration so tests can override them.
func NewTransactionService(
	txRepo repository.TransactionRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
	processor payment.Processor,
	notifier Notifier,
	feePercent float64,
	minChargeCents int32,
) TransactionService {
	return &transactionService{
		txRepo:         txRepo,
		listingRepo:    listingRepo,
		userRepo:       userRepo,
		ratingRepo:     ratingRepo,
		processor:      processor,
		notifier:       notifier,
		feePercent:     feePercent,
		minChargeCents: minChargeCents,
		now:            time.Now,
	}
}

const dateLayout = "2006-01-02"

func (s *transactionService) Request(ctx context.Context, borrowerID, listingID int32, startDateStr, endDateStr string) (*domain.Transaction, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Available {
		return nil, domain.NewValidationError(domain.ReasonListingUnavailable, "listing %d is not available", listingID)
	}
	if listing.OwnerID == borrowerID {
		return nil, domain.NewValidationError(domain.ReasonOwnListing, "cannot borrow your own listing")
	}

	start, err := time.Parse(dateLayout, startDateStr)
	if err != nil {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, "invalid start date %q", startDateStr)
	}
	end, err := time.Parse(dateLayout, endDateStr)
	if err != nil {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, "invalid end date %q", endDateStr)
	}

	days, err := pricing.RentalDays(start, end)
	if err != nil {
		return nil, err
	}
	if err := pricing.CheckDuration(days, listing.MinDurationDays, listing.MaxDurationDays); err != nil {
		return nil, err
	}

	quote := pricing.Compute(listing.DailyRateCents, days, s.feePercent)
	total := quote.RentalFeeCents + listing.DepositCents
	if err := pricing.CheckChargeable(total, s.minChargeCents); err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		ListingID:          listingID,
		BorrowerID:         borrowerID,
		LenderID:           listing.OwnerID,
		StartDate:          start,
		EndDate:            end,
		RentalDays:         days,
		DailyRateCents:     listing.DailyRateCents,
		RentalFeeCents:     quote.RentalFeeCents,
		DepositCents:       listing.DepositCents,
		PlatformFeeCents:   quote.PlatformFeeCents,
		LenderPayoutCents:  quote.LenderPayoutCents,
		LateFeePerDayCents: listing.LateFeePerDayCents,
		Status:             domain.StatusRequested,
		PaymentStatus:      domain.PaymentStatusNone,
	}
	if err := s.txRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	// The hold needs the transaction id for its idempotency key, so the row
	// is inserted first with payment_status=none; the hold reference lands
	// with a gated write right after. A failed hold leaves the request
	// visible but unpayable, marked failed for the reconciliation sweep.
	if total > 0 {
		borrower, err := s.userRepo.GetByID(ctx, borrowerID)
		if err != nil {
			return nil, err
		}
		holdRef, err := s.processor.CreateHold(ctx,
			payment.IdempotencyKey(t.ID, "create_hold", 0),
			total, borrower.PaymentCustomerRef, s.metadata(t, "rental_hold"))
		if err != nil {
			if updErr := s.txRepo.UpdatePaymentStatus(ctx, t.ID, domain.PaymentStatusNone, domain.PaymentStatusFailed); updErr != nil {
				logger.Error("Failed to flag transaction after hold failure", "transaction_id", t.ID, "error", updErr)
			}
			return nil, err
		}
		if err := s.txRepo.SetHold(ctx, t.ID, holdRef); err != nil {
			// The hold exists at the processor but its ref was never
			// persisted, so the reconciliation sweep cannot find it. Record
			// the inconsistency and release the hold best-effort.
			logger.PartialSettlement(t.ID, "request", []string{"create_hold"},
				map[string]string{"hold_ref": holdRef}, err)
			if cancelErr := s.processor.CancelHold(ctx,
				payment.IdempotencyKey(t.ID, "cancel_hold", 0), holdRef); cancelErr != nil {
				logger.Error("Failed to release orphaned hold", "transaction_id", t.ID, "hold_ref", holdRef, "error", cancelErr)
			}
			return nil, err
		}
		t.HoldRef = holdRef
		t.PaymentStatus = domain.PaymentStatusAuthorized
	}

	s.notifier.Notify(ctx, t.LenderID, EventTransactionRequested, s.payload(t, map[string]string{
		"listing_title": listing.Title,
	}))
	return t, nil
}

func (s *transactionService) Approve(ctx context.Context, lenderID, transactionID int32) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionApprove, lenderID); err != nil {
		return nil, err
	}

	// Processor first, local write second: a capture failure leaves the
	// transaction in requested, safe to retry.
	newPayment := t.PaymentStatus
	switch {
	case t.PaymentStatus == domain.PaymentStatusAuthorized && t.HoldRef != "":
		if err := s.processor.CaptureHold(ctx,
			payment.IdempotencyKey(t.ID, "capture_hold", 0), t.HoldRef, 0); err != nil {
			return nil, err
		}
		newPayment = domain.PaymentStatusCaptured
	case t.PaymentStatus == domain.PaymentStatusCaptured:
		// Capture already happened on an earlier attempt that crashed before
		// the status write; just finish the transition.
	case t.TotalChargeCents() == 0:
		// Free rental: nothing to capture, approval alone marks it paid.
	default:
		return nil, domain.NewValidationError(domain.ReasonInvalidInput,
			"payment for transaction %d was never authorized; the request must be re-submitted", t.ID)
	}

	if err := s.txRepo.MarkApproved(ctx, t.ID, newPayment); err != nil {
		return nil, err
	}
	t.Status = domain.StatusApprovedPaid
	t.PaymentStatus = newPayment

	if err := s.listingRepo.SetAvailability(ctx, t.ListingID, false); err != nil {
		logger.Error("Failed to mark listing unavailable", "listing_id", t.ListingID, "transaction_id", t.ID, "error", err)
	}

	s.notifier.Notify(ctx, t.BorrowerID, EventTransactionApproved, s.payload(t, nil))
	return t, nil
}

func (s *transactionService) Decline(ctx context.Context, lenderID, transactionID int32) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionDecline, lenderID); err != nil {
		return nil, err
	}

	newPayment := t.PaymentStatus
	if t.PaymentStatus == domain.PaymentStatusAuthorized && t.HoldRef != "" {
		if err := s.processor.CancelHold(ctx,
			payment.IdempotencyKey(t.ID, "cancel_hold", 0), t.HoldRef); err != nil {
			return nil, err
		}
		newPayment = domain.PaymentStatusCancelled
	}

	if err := s.txRepo.MarkDeclined(ctx, t.ID, newPayment); err != nil {
		return nil, err
	}
	t.Status = domain.StatusCancelled
	t.PaymentStatus = newPayment

	s.notifier.Notify(ctx, t.BorrowerID, EventTransactionDeclined, s.payload(t, nil))
	return t, nil
}

func (s *transactionService) Cancel(ctx context.Context, borrowerID, transactionID int32) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionCancel, borrowerID); err != nil {
		return nil, err
	}
	wasOccupied := t.Status.Occupied()

	newPayment := t.PaymentStatus
	switch t.PaymentStatus {
	case domain.PaymentStatusAuthorized:
		// Uncaptured hold: release it, no funds ever moved.
		if err := s.processor.CancelHold(ctx,
			payment.IdempotencyKey(t.ID, "cancel_hold", 0), t.HoldRef); err != nil {
			return nil, err
		}
		newPayment = domain.PaymentStatusCancelled
	case domain.PaymentStatusCaptured:
		// Captured at approval: full refund.
		if _, err := s.processor.Refund(ctx,
			payment.IdempotencyKey(t.ID, "refund_full", 0), t.HoldRef, 0); err != nil {
			return nil, err
		}
		newPayment = domain.PaymentStatusRefunded
	}

	if err := s.txRepo.MarkCancelled(ctx, t.ID, newPayment); err != nil {
		return nil, err
	}
	t.Status = domain.StatusCancelled
	t.PaymentStatus = newPayment

	if wasOccupied {
		if err := s.listingRepo.SetAvailability(ctx, t.ListingID, true); err != nil {
			logger.Error("Failed to restore listing availability", "listing_id", t.ListingID, "transaction_id", t.ID, "error", err)
		}
	}

	s.notifier.Notify(ctx, t.LenderID, EventTransactionCancelled, s.payload(t, nil))
	return t, nil
}

func (s *transactionService) ConfirmPickup(ctx context.Context, lenderID, transactionID int32, condition domain.Condition, notes string) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionConfirmPickup, lenderID); err != nil {
		return nil, err
	}
	if !condition.Valid() {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, "unknown condition %q", condition)
	}

	// Capture already happened at approval; pickup is a pure local write.
	pickupAt := s.now()
	if err := s.txRepo.MarkPickedUp(ctx, t.ID, condition, notes, pickupAt); err != nil {
		return nil, err
	}
	t.Status = domain.StatusPickedUp
	t.ConditionAtPickup = condition
	t.ConditionNotes = notes
	t.ActualPickupAt = &pickupAt

	s.notifier.Notify(ctx, t.BorrowerID, EventPickupConfirmed, s.payload(t, map[string]string{
		"condition": string(condition),
	}))
	return t, nil
}

func (s *transactionService) ConfirmReturn(ctx context.Context, lenderID, transactionID int32, condition domain.Condition, notes string) (*domain.Transaction, bool, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, false, err
	}
	if err := checkTransition(t, ActionConfirmReturn, lenderID); err != nil {
		return nil, false, err
	}
	if !condition.Valid() {
		return nil, false, domain.NewValidationError(domain.ReasonInvalidInput, "unknown condition %q", condition)
	}
	if !t.ConditionAtPickup.Valid() {
		return nil, false, domain.NewValidationError(domain.ReasonInvalidInput,
			"transaction %d has no recorded pickup condition", t.ID)
	}

	returnAt := s.now()

	if domain.ConditionDegraded(t.ConditionAtPickup, condition) {
		// Degraded branch: no funds move, no auto-completion. The lender
		// must file a damage claim (or confirm a clean re-inspection) or the
		// transaction stays unsettled in return_pending.
		if err := s.txRepo.MarkReturnPending(ctx, t.ID, condition, notes, returnAt); err != nil {
			return nil, false, err
		}
		t.Status = domain.StatusReturnPending
		t.ConditionAtReturn = condition
		t.ConditionNotes = notes
		t.ActualReturnAt = &returnAt

		s.notifier.Notify(ctx, t.BorrowerID, EventReturnFlagged, s.payload(t, map[string]string{
			"condition_at_pickup": string(t.ConditionAtPickup),
			"condition_at_return": string(condition),
		}))
		return t, true, nil
	}

	// Clean return: payout transfer and deposit refund must both succeed at
	// the processor before the local settlement group is entered.
	var succeeded []string
	refs := map[string]string{"hold_ref": t.HoldRef}

	transferRef := ""
	if t.LenderPayoutCents > 0 {
		lender, err := s.userRepo.GetByID(ctx, t.LenderID)
		if err != nil {
			return nil, false, err
		}
		if lender.HasPayoutAccount() {
			transferRef, err = s.processor.Transfer(ctx,
				payment.IdempotencyKey(t.ID, "payout_transfer", 0),
				t.LenderPayoutCents, lender.PayoutAccountRef, s.metadata(t, "lender_payout"))
			if err != nil {
				return nil, false, err
			}
			succeeded = append(succeeded, "payout_transfer")
			refs["transfer_ref"] = transferRef
		} else {
			logger.Info("Lender has no payout account; payout deferred",
				"transaction_id", t.ID, "lender_id", t.LenderID, "payout_cents", t.LenderPayoutCents)
		}
	}

	newPayment := t.PaymentStatus
	if t.DepositCents > 0 && t.PaymentStatus == domain.PaymentStatusCaptured {
		if _, err := s.processor.Refund(ctx,
			payment.IdempotencyKey(t.ID, "refund_deposit", 0), t.HoldRef, t.DepositCents); err != nil {
			logger.PartialSettlement(t.ID, "confirm_return", succeeded, refs, err)
			return nil, false, err
		}
		newPayment = domain.PaymentStatusRefunded
	}

	err = s.txRepo.SettleCleanReturn(ctx, repository.CleanReturnSettlement{
		TransactionID:  t.ID,
		ListingID:      t.ListingID,
		Condition:      condition,
		Notes:          notes,
		TransferRef:    transferRef,
		PaymentStatus:  newPayment,
		EarningsCents:  t.LenderPayoutCents,
		ActualReturnAt: returnAt,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFoundOrWrongState) {
			logger.PartialSettlement(t.ID, "confirm_return", append(succeeded, "refund_deposit"), refs, err)
		}
		return nil, false, err
	}
	t.Status = domain.StatusReturned
	t.PaymentStatus = newPayment
	t.ConditionAtReturn = condition
	t.ConditionNotes = notes
	t.TransferRef = transferRef
	t.ActualReturnAt = &returnAt

	s.notifier.Notify(ctx, t.BorrowerID, EventReturnConfirmed, s.payload(t, map[string]string{
		"refunded_deposit_cents": fmt.Sprintf("%d", t.DepositCents),
	}))
	return t, false, nil
}

func (s *transactionService) FileDamageClaim(ctx context.Context, lenderID, transactionID int32, requestedCents int32, notes string, evidenceURLs []string) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionFileDamageClaim, lenderID); err != nil {
		return nil, err
	}

	// The claim is a unilateral lender settlement capped at the deposit.
	claim := requestedCents
	if claim > t.DepositCents {
		claim = t.DepositCents
	}
	if claim <= 0 {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput,
			"damage claim must be a positive amount backed by a deposit")
	}
	refundCents := t.DepositCents - claim

	var succeeded []string
	refs := map[string]string{"hold_ref": t.HoldRef}

	// Borrower gets back whatever the claim leaves of the deposit.
	if refundCents > 0 && t.PaymentStatus == domain.PaymentStatusCaptured {
		if _, err := s.processor.Refund(ctx,
			payment.IdempotencyKey(t.ID, "claim_refund", 0), t.HoldRef, refundCents); err != nil {
			return nil, err
		}
		succeeded = append(succeeded, "claim_refund")
	}

	// Lender receives payout plus the claimed slice of the deposit.
	transferRef := ""
	transferCents := t.LenderPayoutCents + claim
	if transferCents > 0 {
		lender, err := s.userRepo.GetByID(ctx, t.LenderID)
		if err != nil {
			return nil, err
		}
		if lender.HasPayoutAccount() {
			transferRef, err = s.processor.Transfer(ctx,
				payment.IdempotencyKey(t.ID, "claim_transfer", 0),
				transferCents, lender.PayoutAccountRef, s.metadata(t, "damage_claim_settlement"))
			if err != nil {
				logger.PartialSettlement(t.ID, "file_damage_claim", succeeded, refs, err)
				return nil, err
			}
			refs["transfer_ref"] = transferRef
			succeeded = append(succeeded, "claim_transfer")
		} else {
			logger.Info("Lender has no payout account; claim settlement deferred",
				"transaction_id", t.ID, "lender_id", t.LenderID, "transfer_cents", transferCents)
		}
	}

	returnAt := s.now()
	err = s.txRepo.SettleDamageClaim(ctx, repository.DamageClaimSettlement{
		TransactionID:  t.ID,
		ListingID:      t.ListingID,
		ClaimCents:     claim,
		Notes:          notes,
		EvidenceURLs:   evidenceURLs,
		TransferRef:    transferRef,
		EarningsCents:  transferCents,
		ActualReturnAt: returnAt,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFoundOrWrongState) {
			logger.PartialSettlement(t.ID, "file_damage_claim", succeeded, refs, err)
		}
		return nil, err
	}
	t.Status = domain.StatusReturned
	t.PaymentStatus = domain.PaymentStatusDamageClaimed
	t.DamageClaimAmountCents = claim
	t.DamageClaimNotes = notes
	t.DamageEvidenceURLs = evidenceURLs
	t.TransferRef = transferRef
	t.ActualReturnAt = &returnAt

	s.notifier.Notify(ctx, t.BorrowerID, EventDamageClaimFiled, s.payload(t, map[string]string{
		"claim_cents":  fmt.Sprintf("%d", claim),
		"refund_cents": fmt.Sprintf("%d", refundCents),
	}))
	return t, nil
}

func (s *transactionService) ChargeLateFee(ctx context.Context, lenderID, transactionID int32) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionChargeLateFee, lenderID); err != nil {
		return nil, err
	}
	if t.LateFeePerDayCents <= 0 {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput,
			"listing has no late fee configured")
	}

	overdueDays := pricing.OverdueDays(t.EndDate, s.now())
	if overdueDays <= 0 {
		return nil, domain.NewValidationError(domain.ReasonNotOverdue,
			"transaction %d is not past its end date", t.ID)
	}

	// Repeatable: each call charges only days accrued since the last one.
	accruedCents := t.LateFeePerDayCents * overdueDays
	chargeCents := accruedCents - t.LateFeeAmountCents
	if chargeCents <= 0 {
		return nil, domain.NewValidationError(domain.ReasonNotOverdue,
			"no newly accrued late fees for transaction %d", t.ID)
	}
	if err := pricing.CheckChargeable(chargeCents, s.minChargeCents); err != nil {
		return nil, err
	}

	borrower, err := s.userRepo.GetByID(ctx, t.BorrowerID)
	if err != nil {
		return nil, err
	}

	// Independent auto-capture charge: the original hold was consumed at
	// approval and a hold can be captured only once. The cents already charged
	// sequence the key, so retrying an unrecorded charge reuses it while the
	// next accrual gets a fresh one.
	chargeRef, err := s.processor.ChargeIndependent(ctx,
		payment.IdempotencyKey(t.ID, "late_fee", t.LateFeeAmountCents),
		chargeCents, borrower.PaymentCustomerRef, s.metadata(t, "late_fee"))
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.AppendLateFee(ctx, t.ID, chargeCents, chargeRef); err != nil {
		logger.PartialSettlement(t.ID, "charge_late_fee", []string{"late_fee_charge"},
			map[string]string{"charge_ref": chargeRef}, err)
		return nil, err
	}
	t.LateFeeAmountCents += chargeCents
	t.LateFeeChargeRefs = append(t.LateFeeChargeRefs, chargeRef)

	s.notifier.Notify(ctx, t.BorrowerID, EventLateFeeCharged, s.payload(t, map[string]string{
		"charge_cents": fmt.Sprintf("%d", chargeCents),
		"days_overdue": fmt.Sprintf("%d", overdueDays),
	}))
	return t, nil
}

func (s *transactionService) Rate(ctx context.Context, raterID, transactionID, stars int32, comment string) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(t, ActionRate, raterID); err != nil {
		return nil, err
	}
	if stars < 1 || stars > 5 {
		return nil, domain.NewValidationError(domain.ReasonInvalidInput, "stars must be between 1 and 5")
	}

	rateeID := t.BorrowerID
	if raterID == t.BorrowerID {
		rateeID = t.LenderID
	}
	rating := &domain.Rating{
		TransactionID: t.ID,
		RaterID:       raterID,
		RateeID:       rateeID,
		Stars:         stars,
		Comment:       comment,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, err
	}

	count, err := s.ratingRepo.CountByTransaction(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if count >= 2 && t.Status == domain.StatusReturned {
		if err := s.txRepo.MarkCompleted(ctx, t.ID); err != nil {
			// A concurrent rating may have completed it already.
			if !errors.Is(err, domain.ErrNotFoundOrWrongState) {
				return nil, err
			}
		}
		t.Status = domain.StatusCompleted
	}

	s.notifier.Notify(ctx, rateeID, EventRatingReceived, s.payload(t, map[string]string{
		"stars": fmt.Sprintf("%d", stars),
	}))
	return t, nil
}

func (s *transactionService) ConfirmPayment(ctx context.Context, userID, transactionID int32) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(userID) {
		return nil, domain.NewAuthorizationError("user %d is not a party to transaction %d", userID, t.ID)
	}
	if t.HoldRef == "" || t.PaymentStatus != domain.PaymentStatusAuthorized {
		return t, nil
	}

	// The local row says authorized; ask the processor what actually
	// happened and repair the stale side. Never moves money.
	hold, err := s.processor.GetHold(ctx, t.HoldRef)
	if err != nil {
		return nil, err
	}

	var repaired domain.PaymentStatus
	switch hold.Status {
	case payment.HoldStatusCaptured:
		repaired = domain.PaymentStatusCaptured
	case payment.HoldStatusCancelled:
		repaired = domain.PaymentStatusCancelled
	default:
		return t, nil
	}

	err = s.txRepo.UpdatePaymentStatus(ctx, t.ID, domain.PaymentStatusAuthorized, repaired)
	if err != nil && !errors.Is(err, domain.ErrNotFoundOrWrongState) {
		return nil, err
	}
	t.PaymentStatus = repaired
	logger.Info("Repaired stale payment status from live processor state",
		"transaction_id", t.ID, "hold_ref", t.HoldRef, "payment_status", repaired)
	return t, nil
}

func (s *transactionService) PaymentStatus(ctx context.Context, userID, transactionID int32) (*PaymentStatusReport, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(userID) {
		return nil, domain.NewAuthorizationError("user %d is not a party to transaction %d", userID, t.ID)
	}

	report := &PaymentStatusReport{
		TransactionID:      t.ID,
		Status:             t.Status,
		PaymentStatus:      t.PaymentStatus,
		HoldRef:            t.HoldRef,
		TransferRef:        t.TransferRef,
		LateFeeChargeRefs:  t.LateFeeChargeRefs,
		LateFeeAmountCents: t.LateFeeAmountCents,
	}
	if t.HoldRef != "" {
		hold, err := s.processor.GetHold(ctx, t.HoldRef)
		if err != nil {
			// Live lookup is best-effort; the local view still answers.
			logger.Warn("Processor hold lookup failed", "transaction_id", t.ID, "hold_ref", t.HoldRef, "error", err)
		} else {
			report.ProcessorStatus = hold.Status
			report.ProcessorAvailable = true
		}
	}
	return report, nil
}

func (s *transactionService) Get(ctx context.Context, userID, transactionID int32) (*domain.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(userID) {
		return nil, domain.NewAuthorizationError("user %d is not a party to transaction %d", userID, t.ID)
	}
	return t, nil
}

func (s *transactionService) ListBorrowing(ctx context.Context, borrowerID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.txRepo.ListByBorrower(ctx, borrowerID, status, page, pageSize)
}

func (s *transactionService) ListLending(ctx context.Context, lenderID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.txRepo.ListByLender(ctx, lenderID, status, page, pageSize)
}

func (s *transactionService) metadata(t *domain.Transaction, purpose string) map[string]string {
	return map[string]string{
		"transaction_id": fmt.Sprintf("%d", t.ID),
		"listing_id":     fmt.Sprintf("%d", t.ListingID),
		"purpose":        purpose,
	}
}

func (s *transactionService) payload(t *domain.Transaction, extra map[string]string) map[string]string {
	p := map[string]string{
		"transaction_id": fmt.Sprintf("%d", t.ID),
		"listing_id":     fmt.Sprintf("%d", t.ListingID),
		"status":         string(t.Status),
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}
