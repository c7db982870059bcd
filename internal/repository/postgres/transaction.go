package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/logger"
	"borrowly-backend/internal/repository"

	"github.com/lib/pq"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const txColumns = `id, listing_id, borrower_id, lender_id, start_date, end_date, rental_days,
	daily_rate_cents, rental_fee_cents, deposit_cents, platform_fee_cents, lender_payout_cents,
	late_fee_per_day_cents, status, payment_status, condition_at_pickup, condition_at_return,
	condition_notes, late_fee_amount_cents, damage_claim_amount_cents, damage_claim_notes,
	damage_evidence_urls, hold_ref, transfer_ref, late_fee_charge_refs, created_on,
	actual_pickup_at, actual_return_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var pickupAt, returnAt sql.NullTime
	var evidence, chargeRefs pq.StringArray
	err := row.Scan(
		&t.ID, &t.ListingID, &t.BorrowerID, &t.LenderID, &t.StartDate, &t.EndDate, &t.RentalDays,
		&t.DailyRateCents, &t.RentalFeeCents, &t.DepositCents, &t.PlatformFeeCents, &t.LenderPayoutCents,
		&t.LateFeePerDayCents, &t.Status, &t.PaymentStatus, &t.ConditionAtPickup, &t.ConditionAtReturn,
		&t.ConditionNotes, &t.LateFeeAmountCents, &t.DamageClaimAmountCents, &t.DamageClaimNotes,
		&evidence, &t.HoldRef, &t.TransferRef, &chargeRefs, &t.CreatedAt,
		&pickupAt, &returnAt,
	)
	if err != nil {
		return nil, err
	}
	t.DamageEvidenceURLs = []string(evidence)
	t.LateFeeChargeRefs = []string(chargeRefs)
	if pickupAt.Valid {
		t.ActualPickupAt = &pickupAt.Time
	}
	if returnAt.Valid {
		t.ActualReturnAt = &returnAt.Time
	}
	return t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (listing_id, borrower_id, lender_id, start_date, end_date,
	            rental_days, daily_rate_cents, rental_fee_cents, deposit_cents, platform_fee_cents,
	            lender_payout_cents, late_fee_per_day_cents, status, payment_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id, created_on`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		t.ListingID, t.BorrowerID, t.LenderID, t.StartDate, t.EndDate,
		t.RentalDays, t.DailyRateCents, t.RentalFeeCents, t.DepositCents, t.PlatformFeeCents,
		t.LenderPayoutCents, t.LateFeePerDayCents, t.Status, t.PaymentStatus, now, now,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// execGated runs a state-gated UPDATE and converts "zero rows affected" into
// domain.ErrNotFoundOrWrongState.
func (r *transactionRepository) execGated(ctx context.Context, operation, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(operation, 0, err)
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult(operation, rows, nil)
	if rows == 0 {
		return domain.ErrNotFoundOrWrongState
	}
	return nil
}

func (r *transactionRepository) SetHold(ctx context.Context, id int32, holdRef string) error {
	query := `UPDATE transactions
	          SET hold_ref = $2, payment_status = $3, updated_on = now()
	          WHERE id = $1 AND status = $4 AND payment_status = $5`
	return r.execGated(ctx, "transactions.set_hold", query,
		id, holdRef, domain.PaymentStatusAuthorized, domain.StatusRequested, domain.PaymentStatusNone)
}

func (r *transactionRepository) MarkApproved(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error {
	query := `UPDATE transactions
	          SET status = $2, payment_status = $3, updated_on = now()
	          WHERE id = $1 AND status = $4`
	return r.execGated(ctx, "transactions.mark_approved", query,
		id, domain.StatusApprovedPaid, paymentStatus, domain.StatusRequested)
}

func (r *transactionRepository) MarkDeclined(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error {
	query := `UPDATE transactions
	          SET status = $2, payment_status = $3, updated_on = now()
	          WHERE id = $1 AND status = $4`
	return r.execGated(ctx, "transactions.mark_declined", query,
		id, domain.StatusCancelled, paymentStatus, domain.StatusRequested)
}

func (r *transactionRepository) MarkCancelled(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error {
	query := `UPDATE transactions
	          SET status = $2, payment_status = $3, updated_on = now()
	          WHERE id = $1 AND status = ANY($4)`
	return r.execGated(ctx, "transactions.mark_cancelled", query,
		id, domain.StatusCancelled, paymentStatus,
		pq.Array([]string{string(domain.StatusRequested), string(domain.StatusApprovedPaid)}))
}

func (r *transactionRepository) MarkPickedUp(ctx context.Context, id int32, condition domain.Condition, notes string, pickupAt time.Time) error {
	query := `UPDATE transactions
	          SET status = $2, condition_at_pickup = $3, condition_notes = $4,
	              actual_pickup_at = $5, updated_on = now()
	          WHERE id = $1 AND status = $6`
	return r.execGated(ctx, "transactions.mark_picked_up", query,
		id, domain.StatusPickedUp, condition, notes, pickupAt, domain.StatusApprovedPaid)
}

func (r *transactionRepository) MarkReturnPending(ctx context.Context, id int32, condition domain.Condition, notes string, returnAt time.Time) error {
	query := `UPDATE transactions
	          SET status = $2, condition_at_return = $3, condition_notes = $4,
	              actual_return_at = $5, updated_on = now()
	          WHERE id = $1 AND status = ANY($6)`
	return r.execGated(ctx, "transactions.mark_return_pending", query,
		id, domain.StatusReturnPending, condition, notes, returnAt,
		pq.Array([]string{string(domain.StatusPickedUp), string(domain.StatusReturnPending)}))
}

func (r *transactionRepository) SettleCleanReturn(ctx context.Context, s repository.CleanReturnSettlement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE transactions
	          SET status = $2, payment_status = $3, condition_at_return = $4, condition_notes = $5,
	              transfer_ref = $6, actual_return_at = $7, updated_on = now()
	          WHERE id = $1 AND status = ANY($8)`
	res, err := tx.ExecContext(ctx, query,
		s.TransactionID, domain.StatusReturned, s.PaymentStatus, s.Condition, s.Notes,
		s.TransferRef, s.ActualReturnAt,
		pq.Array([]string{string(domain.StatusPickedUp), string(domain.StatusReturnPending)}))
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFoundOrWrongState
	}

	listingQuery := `UPDATE listings
	                 SET available = true, times_borrowed = times_borrowed + 1,
	                     total_earnings_cents = total_earnings_cents + $2, updated_on = now()
	                 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, listingQuery, s.ListingID, s.EarningsCents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clean-return settlement: %w", err)
	}
	logger.DatabaseResult("transactions.settle_clean_return", rows, nil, "transaction_id", s.TransactionID)
	return nil
}

func (r *transactionRepository) SettleDamageClaim(ctx context.Context, s repository.DamageClaimSettlement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE transactions
	          SET status = $2, payment_status = $3, damage_claim_amount_cents = $4,
	              damage_claim_notes = $5, damage_evidence_urls = $6, transfer_ref = $7,
	              actual_return_at = $8, updated_on = now()
	          WHERE id = $1 AND status = ANY($9)`
	res, err := tx.ExecContext(ctx, query,
		s.TransactionID, domain.StatusReturned, domain.PaymentStatusDamageClaimed, s.ClaimCents,
		s.Notes, pq.Array(s.EvidenceURLs), s.TransferRef, s.ActualReturnAt,
		pq.Array([]string{string(domain.StatusPickedUp), string(domain.StatusReturnPending)}))
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFoundOrWrongState
	}

	listingQuery := `UPDATE listings
	                 SET available = true, times_borrowed = times_borrowed + 1,
	                     total_earnings_cents = total_earnings_cents + $2, updated_on = now()
	                 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, listingQuery, s.ListingID, s.EarningsCents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit damage-claim settlement: %w", err)
	}
	logger.DatabaseResult("transactions.settle_damage_claim", rows, nil, "transaction_id", s.TransactionID)
	return nil
}

func (r *transactionRepository) AppendLateFee(ctx context.Context, id int32, amountCents int32, chargeRef string) error {
	query := `UPDATE transactions
	          SET late_fee_amount_cents = late_fee_amount_cents + $2,
	              late_fee_charge_refs = array_append(late_fee_charge_refs, $3),
	              updated_on = now()
	          WHERE id = $1 AND status = $4`
	return r.execGated(ctx, "transactions.append_late_fee", query,
		id, amountCents, chargeRef, domain.StatusPickedUp)
}

func (r *transactionRepository) MarkCompleted(ctx context.Context, id int32) error {
	query := `UPDATE transactions
	          SET status = $2, updated_on = now()
	          WHERE id = $1 AND status = $3`
	return r.execGated(ctx, "transactions.mark_completed", query,
		id, domain.StatusCompleted, domain.StatusReturned)
}

func (r *transactionRepository) UpdatePaymentStatus(ctx context.Context, id int32, from, to domain.PaymentStatus) error {
	query := `UPDATE transactions
	          SET payment_status = $3, updated_on = now()
	          WHERE id = $1 AND payment_status = $2`
	return r.execGated(ctx, "transactions.update_payment_status", query, id, from, to)
}

func (r *transactionRepository) ListByBorrower(ctx context.Context, borrowerID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return r.list(ctx, "borrower_id", borrowerID, status, page, pageSize)
}

func (r *transactionRepository) ListByLender(ctx context.Context, lenderID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return r.list(ctx, "lender_id", lenderID, status, page, pageSize)
}

func (r *transactionRepository) list(ctx context.Context, column string, userID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize
	base := `SELECT ` + txColumns + ` FROM transactions WHERE ` + column + ` = $1`

	args := []any{userID}
	argIdx := 2
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := `SELECT count(*) FROM (` + base + `) AS sub`
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	base += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, *t)
	}
	return txs, count, rows.Err()
}

func (r *transactionRepository) ListStaleAuthorized(ctx context.Context, cutoff time.Time, limit int32) ([]domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions
	          WHERE payment_status = $1 AND hold_ref <> '' AND updated_on < $2
	          ORDER BY updated_on ASC LIMIT $3`
	return r.queryMany(ctx, query, domain.PaymentStatusAuthorized, cutoff, limit)
}

func (r *transactionRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int32) ([]domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions
	          WHERE status = $1 AND end_date < $2
	          ORDER BY end_date ASC LIMIT $3`
	return r.queryMany(ctx, query, domain.StatusPickedUp, asOf, limit)
}

func (r *transactionRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
