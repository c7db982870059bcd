package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/repository"
)

func newMockRepo(t *testing.T) (repository.TransactionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	return NewTransactionRepository(db), mock, func() { db.Close() }
}

func TestTransactionRepository_Create(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()
	ctx := context.Background()

	tx := &domain.Transaction{
		ListingID:      2,
		BorrowerID:     1,
		LenderID:       10,
		StartDate:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC),
		RentalDays:     3,
		DailyRateCents: 1000,
		RentalFeeCents: 3000,
		Status:         domain.StatusRequested,
		PaymentStatus:  domain.PaymentStatusNone,
	}

	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(tx.ListingID, tx.BorrowerID, tx.LenderID, tx.StartDate, tx.EndDate,
			tx.RentalDays, tx.DailyRateCents, tx.RentalFeeCents, tx.DepositCents, tx.PlatformFeeCents,
			tx.LenderPayoutCents, tx.LateFeePerDayCents, tx.Status, tx.PaymentStatus,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(5, time.Now()))

	err := repo.Create(ctx, tx)
	assert.NoError(t, err)
	assert.Equal(t, int32(5), tx.ID)
}

func TestTransactionRepository_GatedWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("MarkApproved Success", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec("UPDATE transactions").
			WithArgs(int32(5), domain.StatusApprovedPaid, domain.PaymentStatusCaptured, domain.StatusRequested).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkApproved(ctx, 5, domain.PaymentStatusCaptured))
	})

	t.Run("Zero Rows Means Wrong State", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec("UPDATE transactions").
			WithArgs(int32(5), domain.StatusApprovedPaid, domain.PaymentStatusCaptured, domain.StatusRequested).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkApproved(ctx, 5, domain.PaymentStatusCaptured)
		assert.ErrorIs(t, err, domain.ErrNotFoundOrWrongState)
	})

	t.Run("SetHold Gated On Requested And None", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec("UPDATE transactions").
			WithArgs(int32(5), "hold_1", domain.PaymentStatusAuthorized, domain.StatusRequested, domain.PaymentStatusNone).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetHold(ctx, 5, "hold_1"))
	})

	t.Run("AppendLateFee Accumulates", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec("UPDATE transactions").
			WithArgs(int32(5), int32(1500), "ch_1", domain.StatusPickedUp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.AppendLateFee(ctx, 5, 1500, "ch_1"))
	})

	t.Run("UpdatePaymentStatus Gated On Expected Current", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectExec("UPDATE transactions").
			WithArgs(int32(5), domain.PaymentStatusAuthorized, domain.PaymentStatusCaptured).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePaymentStatus(ctx, 5, domain.PaymentStatusAuthorized, domain.PaymentStatusCaptured)
		assert.ErrorIs(t, err, domain.ErrNotFoundOrWrongState)
	})
}

func TestTransactionRepository_SettleCleanReturn(t *testing.T) {
	ctx := context.Background()
	returnAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	settlement := repository.CleanReturnSettlement{
		TransactionID:  5,
		ListingID:      2,
		Condition:      domain.ConditionGood,
		Notes:          "",
		TransferRef:    "tr_1",
		PaymentStatus:  domain.PaymentStatusRefunded,
		EarningsCents:  2940,
		ActualReturnAt: returnAt,
	}

	t.Run("Commits Both Writes", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions").
			WithArgs(settlement.TransactionID, domain.StatusReturned, settlement.PaymentStatus,
				settlement.Condition, settlement.Notes, settlement.TransferRef, returnAt, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE listings").
			WithArgs(settlement.ListingID, settlement.EarningsCents).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.SettleCleanReturn(ctx, settlement))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong State Rolls Back", func(t *testing.T) {
		repo, mock, closeDB := newMockRepo(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transactions").
			WithArgs(settlement.TransactionID, domain.StatusReturned, settlement.PaymentStatus,
				settlement.Condition, settlement.Notes, settlement.TransferRef, returnAt, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SettleCleanReturn(ctx, settlement)
		assert.ErrorIs(t, err, domain.ErrNotFoundOrWrongState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_SettleDamageClaim(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()
	ctx := context.Background()
	returnAt := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	settlement := repository.DamageClaimSettlement{
		TransactionID:  5,
		ListingID:      2,
		ClaimCents:     1500,
		Notes:          "cracked chuck",
		EvidenceURLs:   []string{"https://img/1.jpg"},
		TransferRef:    "tr_2",
		EarningsCents:  4440,
		ActualReturnAt: returnAt,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions").
		WithArgs(settlement.TransactionID, domain.StatusReturned, domain.PaymentStatusDamageClaimed,
			settlement.ClaimCents, settlement.Notes, sqlmock.AnyArg(), settlement.TransferRef,
			returnAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE listings").
		WithArgs(settlement.ListingID, settlement.EarningsCents).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.SettleDamageClaim(ctx, settlement))
	assert.NoError(t, mock.ExpectationsWereMet())
}
