package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"borrowly-backend/internal/logger"
)

const serviceName = "payment-processor"

// Client talks to the external payment processor over HTTPS/JSON. Mutating
// requests carry the Idempotency-Key header; the processor deduplicates on it.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a processor client. timeout bounds every call; there is no
// retry inside the client, retry policy belongs to the caller.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type holdRequest struct {
	AmountCents int32             `json:"amount_cents"`
	PayerRef    string            `json:"payer_ref"`
	Capture     bool              `json:"capture"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type captureRequest struct {
	AmountCents int32 `json:"amount_cents,omitempty"`
}

type refundRequest struct {
	HoldRef     string `json:"hold_ref"`
	AmountCents int32  `json:"amount_cents,omitempty"`
}

type transferRequest struct {
	AmountCents      int32             `json:"amount_cents"`
	PayoutAccountRef string            `json:"payout_account_ref"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type refResponse struct {
	Ref string `json:"ref"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) CreateHold(ctx context.Context, idemKey string, amountCents int32, payerRef string, metadata map[string]string) (string, error) {
	var out refResponse
	err := c.do(ctx, http.MethodPost, "/v1/holds", idemKey, holdRequest{
		AmountCents: amountCents,
		PayerRef:    payerRef,
		Capture:     false,
		Metadata:    metadata,
	}, &out)
	if err != nil {
		return "", &OrchestrationError{Kind: KindHoldFailed, Op: "create_hold", Err: err}
	}
	return out.Ref, nil
}

func (c *Client) CaptureHold(ctx context.Context, idemKey, holdRef string, amountCents int32) error {
	err := c.do(ctx, http.MethodPost, "/v1/holds/"+holdRef+"/capture", idemKey, captureRequest{AmountCents: amountCents}, nil)
	if err != nil {
		return &OrchestrationError{Kind: KindCaptureFailed, Op: "capture_hold", Err: err}
	}
	return nil
}

func (c *Client) CancelHold(ctx context.Context, idemKey, holdRef string) error {
	err := c.do(ctx, http.MethodPost, "/v1/holds/"+holdRef+"/cancel", idemKey, struct{}{}, nil)
	if err != nil {
		return &OrchestrationError{Kind: KindCancelFailed, Op: "cancel_hold", Err: err}
	}
	return nil
}

func (c *Client) Refund(ctx context.Context, idemKey, holdRef string, amountCents int32) (string, error) {
	var out refResponse
	err := c.do(ctx, http.MethodPost, "/v1/refunds", idemKey, refundRequest{
		HoldRef:     holdRef,
		AmountCents: amountCents,
	}, &out)
	if err != nil {
		return "", &OrchestrationError{Kind: KindRefundFailed, Op: "refund", Err: err}
	}
	return out.Ref, nil
}

func (c *Client) Transfer(ctx context.Context, idemKey string, amountCents int32, payoutAccountRef string, metadata map[string]string) (string, error) {
	var out refResponse
	err := c.do(ctx, http.MethodPost, "/v1/transfers", idemKey, transferRequest{
		AmountCents:      amountCents,
		PayoutAccountRef: payoutAccountRef,
		Metadata:         metadata,
	}, &out)
	if err != nil {
		return "", &OrchestrationError{Kind: KindTransferFailed, Op: "transfer", Err: err}
	}
	return out.Ref, nil
}

func (c *Client) ChargeIndependent(ctx context.Context, idemKey string, amountCents int32, payerRef string, metadata map[string]string) (string, error) {
	var out refResponse
	err := c.do(ctx, http.MethodPost, "/v1/charges", idemKey, holdRequest{
		AmountCents: amountCents,
		PayerRef:    payerRef,
		Capture:     true,
		Metadata:    metadata,
	}, &out)
	if err != nil {
		return "", &OrchestrationError{Kind: KindChargeFailed, Op: "charge_independent", Err: err}
	}
	return out.Ref, nil
}

func (c *Client) GetHold(ctx context.Context, holdRef string) (*Hold, error) {
	var out Hold
	err := c.do(ctx, http.MethodGet, "/v1/holds/"+holdRef, "", nil, &out)
	if err != nil {
		return nil, &OrchestrationError{Kind: KindLookupFailed, Op: "get_hold", Err: err}
	}
	return &out, nil
}

func (c *Client) GetCharge(ctx context.Context, chargeRef string) (*Charge, error) {
	var out Charge
	err := c.do(ctx, http.MethodGet, "/v1/charges/"+chargeRef, "", nil, &out)
	if err != nil {
		return nil, &OrchestrationError{Kind: KindLookupFailed, Op: "get_charge", Err: err}
	}
	return &out, nil
}

// do executes one processor call. Non-2xx responses are decoded into the
// processor's error envelope when possible.
func (c *Client) do(ctx context.Context, method, path, idemKey string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	logger.ExternalServiceCall(serviceName, method+" "+path, "idempotency_key", idemKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult(serviceName, method+" "+path, err)
		return fmt.Errorf("processor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		raw, _ := io.ReadAll(resp.Body)
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Code != "" {
			err = fmt.Errorf("processor returned %d (%s): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		} else {
			err = fmt.Errorf("processor returned %d: %s", resp.StatusCode, string(raw))
		}
		logger.ExternalServiceResult(serviceName, method+" "+path, err)
		return err
	}

	logger.ExternalServiceResult(serviceName, method+" "+path, nil, "status", resp.StatusCode)
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
