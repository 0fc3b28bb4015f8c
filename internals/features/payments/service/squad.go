package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

/* =========================================================
   Squad client

   Thin client over the two Squad endpoints this system uses:
   POST /transaction/initiate and GET /transaction/verify/{ref}.
========================================================= */

var ErrGatewayUnavailable = errors.New("payment gateway unreachable")

type SquadClient struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

func NewSquadClient(baseURL, secretKey string) *SquadClient {
	return &SquadClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SecretKey: secretKey,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SquadClient) authHeader() string {
	key := strings.TrimSpace(s.SecretKey)
	if !strings.HasPrefix(key, "Bearer ") {
		key = "Bearer " + key
	}
	return key
}

/* ===================== Initiate ===================== */

type SquadInitiateRequest struct {
	Email           string            `json:"email"`
	AmountSubunit   int64             `json:"-"`
	Currency        string            `json:"currency"`
	TransactionRef  string            `json:"transaction_ref"`
	CustomerName    string            `json:"customer_name"`
	CallbackURL     string            `json:"callback_url"`
	PaymentChannels []string          `json:"payment_channels"`
	Metadata        map[string]string `json:"metadata"`
}

type SquadCheckout struct {
	CheckoutURL string
	Reference   string
}

func (s *SquadClient) Initiate(ctx context.Context, req SquadInitiateRequest) (*SquadCheckout, error) {
	if strings.TrimSpace(s.SecretKey) == "" {
		return nil, errors.New("squad secret key is not configured")
	}

	payload := map[string]interface{}{
		"email":            req.Email,
		"amount":           fmt.Sprintf("%d", req.AmountSubunit),
		"currency":         req.Currency,
		"initiate_type":    "inline",
		"transaction_ref":  req.TransactionRef,
		"customer_name":    req.CustomerName,
		"callback_url":     req.CallbackURL,
		"payment_channels": req.PaymentChannels,
		"metadata":         req.Metadata,
		"pass_charge":      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/transaction/initiate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", s.authHeader())
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	var out struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Data    struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("squad initiate: bad response: %w", err)
	}
	if out.Status != 200 || out.Data.CheckoutURL == "" {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("squad initiate failed: %s", msg)
	}
	return &SquadCheckout{CheckoutURL: out.Data.CheckoutURL, Reference: req.TransactionRef}, nil
}

/* ===================== Verify ===================== */

// SquadVerifiedTransaction is the subset of the verify payload the
// reconciler needs. Amount is in the smallest currency subunit.
type SquadVerifiedTransaction struct {
	TransactionStatus string                 `json:"transaction_status"`
	TransactionAmount float64                `json:"transaction_amount"`
	TransactionType   string                 `json:"transaction_type"`
	CurrencyID        string                 `json:"transaction_currency_id"`
	CreatedAt         string                 `json:"created_at"`
	Meta              map[string]interface{} `json:"meta"`
	Raw               map[string]interface{} `json:"-"`
}

func (t *SquadVerifiedTransaction) IsSuccessful() bool {
	return strings.EqualFold(strings.TrimSpace(t.TransactionStatus), "success")
}

func (t *SquadVerifiedTransaction) Currency() string {
	if c := strings.ToUpper(strings.TrimSpace(t.CurrencyID)); c != "" {
		return c
	}
	return "USD"
}

// Verify looks a transaction up by reference. A nil error with a
// non-success TransactionStatus means the gateway answered but the
// payment did not go through; callers must check IsSuccessful.
func (s *SquadClient) Verify(ctx context.Context, reference string) (*SquadVerifiedTransaction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", s.authHeader())
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	var out struct {
		Status  int                    `json:"status"`
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("squad verify: bad response: %w", err)
	}
	if out.Status != 200 || !out.Success || out.Data == nil {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("squad verify failed: %s (check live vs sandbox reference)", msg)
	}

	txn := &SquadVerifiedTransaction{Raw: out.Data}
	if v, ok := out.Data["transaction_status"].(string); ok {
		txn.TransactionStatus = v
	}
	if v, ok := out.Data["transaction_amount"].(float64); ok {
		txn.TransactionAmount = v
	}
	if v, ok := out.Data["transaction_type"].(string); ok {
		txn.TransactionType = v
	}
	if v, ok := out.Data["transaction_currency_id"].(string); ok {
		txn.CurrencyID = v
	} else if v, ok := out.Data["currency"].(string); ok {
		txn.CurrencyID = v
	}
	if v, ok := out.Data["created_at"].(string); ok {
		txn.CreatedAt = v
	}
	if v, ok := out.Data["meta"].(map[string]interface{}); ok {
		txn.Meta = v
	}
	return txn, nil
}
