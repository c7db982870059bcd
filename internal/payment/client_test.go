package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_CreateHold(t *testing.T) {
	var gotIdemKey, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/holds", r.URL.Path)
		gotIdemKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"ref": "hold_1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)
	key := IdempotencyKey(5, "create_hold", 0)
	ref, err := client.CreateHold(context.Background(), key, 5000, "cus_1", map[string]string{"transaction_id": "5"})

	assert.NoError(t, err)
	assert.Equal(t, "hold_1", ref)
	assert.Equal(t, key, gotIdemKey)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, float64(5000), gotBody["amount_cents"])
	assert.Equal(t, "cus_1", gotBody["payer_ref"])
	assert.Equal(t, false, gotBody["capture"])
}

func TestClient_ErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"code": "card_declined", "message": "insufficient funds"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		kind ErrorKind
	}{
		{"CreateHold", func() error { _, err := client.CreateHold(ctx, "k", 100, "cus", nil); return err }, KindHoldFailed},
		{"CaptureHold", func() error { return client.CaptureHold(ctx, "k", "h", 0) }, KindCaptureFailed},
		{"CancelHold", func() error { return client.CancelHold(ctx, "k", "h") }, KindCancelFailed},
		{"Refund", func() error { _, err := client.Refund(ctx, "k", "h", 0); return err }, KindRefundFailed},
		{"Transfer", func() error { _, err := client.Transfer(ctx, "k", 100, "acct", nil); return err }, KindTransferFailed},
		{"ChargeIndependent", func() error { _, err := client.ChargeIndependent(ctx, "k", 100, "cus", nil); return err }, KindChargeFailed},
		{"GetHold", func() error { _, err := client.GetHold(ctx, "h"); return err }, KindLookupFailed},
		{"GetCharge", func() error { _, err := client.GetCharge(ctx, "ch"); return err }, KindLookupFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var oErr *OrchestrationError
			assert.ErrorAs(t, err, &oErr)
			assert.Equal(t, tc.kind, oErr.Kind)
			assert.Contains(t, oErr.Error(), "card_declined")
		})
	}
}

func TestClient_GetHold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/holds/hold_1", r.URL.Path)
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		json.NewEncoder(w).Encode(Hold{Ref: "hold_1", Status: HoldStatusCaptured, AmountCents: 5000, CapturedCents: 5000})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)
	hold, err := client.GetHold(context.Background(), "hold_1")

	assert.NoError(t, err)
	assert.Equal(t, HoldStatusCaptured, hold.Status)
	assert.Equal(t, int32(5000), hold.CapturedCents)
}

func TestClient_GetCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/charges/ch_1", r.URL.Path)
		json.NewEncoder(w).Encode(Charge{Ref: "ch_1", Status: ChargeStatusSucceeded, AmountCents: 1500})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)
	charge, err := client.GetCharge(context.Background(), "ch_1")

	assert.NoError(t, err)
	assert.Equal(t, ChargeStatusSucceeded, charge.Status)
	assert.Equal(t, int32(1500), charge.AmountCents)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 20*time.Millisecond)
	err := client.CaptureHold(context.Background(), "k", "h", 0)

	var oErr *OrchestrationError
	assert.ErrorAs(t, err, &oErr)
	assert.Equal(t, KindCaptureFailed, oErr.Kind)
}

func TestIdempotencyKey(t *testing.T) {
	// A retry of the same logical attempt must present the identical key so
	// the processor can deduplicate it.
	assert.Equal(t, "42-capture_hold-0", IdempotencyKey(42, "capture_hold", 0))
	assert.Equal(t, IdempotencyKey(42, "capture_hold", 0), IdempotencyKey(42, "capture_hold", 0))

	// A later late-fee accrual is a new logical attempt.
	assert.Equal(t, "42-late_fee-1500", IdempotencyKey(42, "late_fee", 1500))
	assert.NotEqual(t, IdempotencyKey(42, "late_fee", 0), IdempotencyKey(42, "late_fee", 1500))
}

func TestOrchestrationError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &OrchestrationError{Kind: KindRefundFailed, Op: "refund", Err: cause}
	assert.ErrorIs(t, err, cause)
}
