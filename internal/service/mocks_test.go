package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/payment"
	"borrowly-backend/internal/repository"
)

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) ListByBorrower(ctx context.Context, borrowerID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, borrowerID, status, page, pageSize)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) ListByLender(ctx context.Context, lenderID int32, status string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, lenderID, status, page, pageSize)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) SetHold(ctx context.Context, id int32, holdRef string) error {
	args := m.Called(ctx, id, holdRef)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkApproved(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error {
	args := m.Called(ctx, id, paymentStatus)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkDeclined(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error {
	args := m.Called(ctx, id, paymentStatus)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkCancelled(ctx context.Context, id int32, paymentStatus domain.PaymentStatus) error {
	args := m.Called(ctx, id, paymentStatus)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkPickedUp(ctx context.Context, id int32, condition domain.Condition, notes string, pickupAt time.Time) error {
	args := m.Called(ctx, id, condition, notes, pickupAt)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkReturnPending(ctx context.Context, id int32, condition domain.Condition, notes string, returnAt time.Time) error {
	args := m.Called(ctx, id, condition, notes, returnAt)
	return args.Error(0)
}
func (m *MockTransactionRepo) SettleCleanReturn(ctx context.Context, settle repository.CleanReturnSettlement) error {
	args := m.Called(ctx, settle)
	return args.Error(0)
}
func (m *MockTransactionRepo) SettleDamageClaim(ctx context.Context, settle repository.DamageClaimSettlement) error {
	args := m.Called(ctx, settle)
	return args.Error(0)
}
func (m *MockTransactionRepo) AppendLateFee(ctx context.Context, id int32, amountCents int32, chargeRef string) error {
	args := m.Called(ctx, id, amountCents, chargeRef)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkCompleted(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTransactionRepo) UpdatePaymentStatus(ctx context.Context, id int32, from, to domain.PaymentStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockTransactionRepo) ListStaleAuthorized(ctx context.Context, cutoff time.Time, limit int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) ListOverdue(ctx context.Context, asOf time.Time, limit int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, asOf, limit)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockListingRepo
type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepo) SetAvailability(ctx context.Context, id int32, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockRatingRepo
type MockRatingRepo struct {
	mock.Mock
}

func (m *MockRatingRepo) Upsert(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}
func (m *MockRatingRepo) CountByTransaction(ctx context.Context, transactionID int32) (int32, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(int32), args.Error(1)
}

// MockProcessor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateHold(ctx context.Context, idemKey string, amountCents int32, payerRef string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, idemKey, amountCents, payerRef, metadata)
	return args.String(0), args.Error(1)
}
func (m *MockProcessor) CaptureHold(ctx context.Context, idemKey, holdRef string, amountCents int32) error {
	args := m.Called(ctx, idemKey, holdRef, amountCents)
	return args.Error(0)
}
func (m *MockProcessor) CancelHold(ctx context.Context, idemKey, holdRef string) error {
	args := m.Called(ctx, idemKey, holdRef)
	return args.Error(0)
}
func (m *MockProcessor) Refund(ctx context.Context, idemKey, holdRef string, amountCents int32) (string, error) {
	args := m.Called(ctx, idemKey, holdRef, amountCents)
	return args.String(0), args.Error(1)
}
func (m *MockProcessor) Transfer(ctx context.Context, idemKey string, amountCents int32, payoutAccountRef string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, idemKey, amountCents, payoutAccountRef, metadata)
	return args.String(0), args.Error(1)
}
func (m *MockProcessor) ChargeIndependent(ctx context.Context, idemKey string, amountCents int32, payerRef string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, idemKey, amountCents, payerRef, metadata)
	return args.String(0), args.Error(1)
}
func (m *MockProcessor) GetHold(ctx context.Context, holdRef string) (*payment.Hold, error) {
	args := m.Called(ctx, holdRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Hold), args.Error(1)
}
func (m *MockProcessor) GetCharge(ctx context.Context, chargeRef string) (*payment.Charge, error) {
	args := m.Called(ctx, chargeRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Charge), args.Error(1)
}

// MockNotifier records dispatched events without delivering anything.
type MockNotifier struct {
	Events []string
}

func (m *MockNotifier) Notify(ctx context.Context, userID int32, eventType string, payload map[string]string) {
	m.Events = append(m.Events, eventType)
}
