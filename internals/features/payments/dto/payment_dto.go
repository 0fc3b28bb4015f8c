package dto

import (
	regdto "aspir_backend/internals/features/registration/dto"
)

/* ===================== Initialize ===================== */

const (
	PaymentOptionFull    = "full"
	PaymentOptionPartial = "partial"
)

// InitializePaymentRequest starts a Squad checkout. Either an existing
// registration_id or an inline registration payload (the combined
// register-and-pay flow) must be provided. payment_option "full"
// charges the remaining balance in one go; "partial" charges only the
// registration fee.
type InitializePaymentRequest struct {
	RegistrationID string                            `json:"registration_id" validate:"omitempty,uuid"`
	Registration   *regdto.CreateRegistrationRequest `json:"registration,omitempty"`
	PaymentOption  string                            `json:"payment_option" validate:"omitempty,oneof=full partial"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
	AmountNGN   int64  `json:"amount_ngn_subunit"`
	AmountUSD   string `json:"amount_usd"`
}

/* ===================== Manual reconcile ===================== */

type ReconcileRequest struct {
	Reference string `json:"reference" validate:"required,min=5,max=100"`
}

/* ===================== Squad webhook ===================== */

// SquadWebhookPayload mirrors Squad's webhook envelope. Amounts are
// subunits; meta carries the charge-time payment_type and
// exchange_rate written at initiation.
type SquadWebhookPayload struct {
	Event string           `json:"Event"`
	Body  SquadWebhookBody `json:"Body"`
}

type SquadWebhookBody struct {
	TransactionRef    string               `json:"transaction_ref"`
	TransactionStatus string               `json:"transaction_status"`
	Amount            float64              `json:"amount"`
	TransactionType   string               `json:"transaction_type"`
	Email             string               `json:"email"`
	CreatedAt         string               `json:"created_at"`
	Meta              SquadWebhookMetadata `json:"meta"`
}

type SquadWebhookMetadata struct {
	PaymentType  string `json:"payment_type"`
	ExchangeRate string `json:"exchange_rate"`
}

/* ===================== Paystack webhook ===================== */

type PaystackWebhookPayload struct {
	Event string              `json:"event"`
	Data  PaystackWebhookData `json:"data"`
}

type PaystackWebhookData struct {
	Reference string                 `json:"reference"`
	Amount    float64                `json:"amount"`
	Currency  string                 `json:"currency"`
	Status    string                 `json:"status"`
	Channel   string                 `json:"channel"`
	PaidAt    string                 `json:"paid_at"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// MetadataString pulls a string field out of the loosely typed
// Paystack metadata object.
func (d *PaystackWebhookData) MetadataString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata[key].(string); ok {
		return v
	}
	return ""
}
