package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

/* ===================== Enums (string) ===================== */

const (
	ActivityStatusInitiated = "initiated"
	ActivityStatusSuccess   = "success"
	ActivityStatusFailed    = "failed"
)

const (
	PaymentTypeRegistrationFee = "registration_fee"
	PaymentTypeCourseFee       = "course_fee"
	PaymentTypeFullPayment     = "full_payment"
)

const (
	GatewaySquad    = "squad"
	GatewayPaystack = "paystack"
)

/* ===================== Transaction ===================== */

// Transaction is the append-only ledger of successful payments.
// One row per gateway reference; never updated, never deleted.
type Transaction struct {
	TransactionID             int64     `gorm:"column:transaction_id;primaryKey;autoIncrement" json:"transaction_id"`
	TransactionRegistrationID uuid.UUID `gorm:"column:transaction_registration_id;type:uuid;not null;index" json:"transaction_registration_id"`

	// Unique constraint is what makes reconciliation idempotent: a
	// duplicate delivery hits the existing row instead of inserting.
	TransactionReference string `gorm:"column:transaction_reference;type:varchar(100);not null;uniqueIndex" json:"transaction_reference"`

	TransactionAmount   decimal.Decimal `gorm:"column:transaction_amount;type:numeric(10,2);not null" json:"transaction_amount"`
	TransactionCurrency string          `gorm:"column:transaction_currency;type:varchar(3);not null;default:USD" json:"transaction_currency"`

	TransactionPaidAt  *time.Time        `gorm:"column:transaction_paid_at" json:"transaction_paid_at,omitempty"`
	TransactionChannel *string           `gorm:"column:transaction_channel;type:varchar(50)" json:"transaction_channel,omitempty"`
	TransactionRawPayload datatypes.JSONMap `gorm:"column:transaction_raw_payload;type:jsonb" json:"transaction_raw_payload,omitempty"`

	CreatedAt time.Time `gorm:"column:transaction_created_at;autoCreateTime" json:"transaction_created_at"`
}

func (Transaction) TableName() string { return "transactions" }

/* ===================== Payment activity ===================== */

// PaymentActivity logs every payment lifecycle event for observability:
// initiated (checkout created), success, failed. Append-only.
type PaymentActivity struct {
	ActivityID             int64     `gorm:"column:activity_id;primaryKey;autoIncrement" json:"activity_id"`
	ActivityRegistrationID uuid.UUID `gorm:"column:activity_registration_id;type:uuid;not null;index" json:"activity_registration_id"`

	ActivityReference   string          `gorm:"column:activity_reference;type:varchar(100);not null;index" json:"activity_reference"`
	ActivityStatus      string          `gorm:"column:activity_status;type:varchar(20);not null;index" json:"activity_status"`
	ActivityPaymentType string          `gorm:"column:activity_payment_type;type:varchar(20);not null;default:'registration_fee'" json:"activity_payment_type"`
	ActivityAmount      decimal.Decimal `gorm:"column:activity_amount;type:numeric(10,2);not null" json:"activity_amount"`
	ActivityCurrency    string          `gorm:"column:activity_currency;type:varchar(3);not null;default:USD" json:"activity_currency"`
	ActivityGateway     string          `gorm:"column:activity_gateway;type:varchar(20);not null;default:'squad'" json:"activity_gateway"`
	ActivityMessage     *string         `gorm:"column:activity_message;type:varchar(255)" json:"activity_message,omitempty"`

	CreatedAt time.Time `gorm:"column:activity_created_at;autoCreateTime" json:"activity_created_at"`
}

func (PaymentActivity) TableName() string { return "payment_activities" }
