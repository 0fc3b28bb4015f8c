package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"aspir_backend/internals/configs"
	paydto "aspir_backend/internals/features/payments/dto"
	paymodel "aspir_backend/internals/features/payments/model"
	payservice "aspir_backend/internals/features/payments/service"
)

/* =========================================================
   WebhookController

   Gateway callbacks. Squad expects plain-text replies; anything
   other than a 200 makes it retry, which the idempotent
   reconciler absorbs. Paystack is gated on its HMAC signature
   before the body is even parsed.
========================================================= */

type WebhookController struct {
	DB         *gorm.DB
	Reconciler *payservice.Reconciler
}

func NewWebhookController(db *gorm.DB, rec *payservice.Reconciler) *WebhookController {
	return &WebhookController{DB: db, Reconciler: rec}
}

// POST /api/webhooks/squad
func (ctrl *WebhookController) SquadWebhook(c *fiber.Ctx) error {
	var payload paydto.SquadWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid payload")
	}

	if !strings.EqualFold(payload.Event, "charge_successful") {
		log.Printf("ℹ️ squad webhook ignored: event=%q", payload.Event)
		return c.Status(fiber.StatusOK).SendString("ignored")
	}
	if payload.Body.TransactionRef == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing transaction_ref")
	}

	rate := decimal.Zero
	if r, err := decimal.NewFromString(payload.Body.Meta.ExchangeRate); err == nil && r.IsPositive() {
		rate = r
	}

	outcome := payservice.Outcome{
		Success:       strings.EqualFold(payload.Body.TransactionStatus, "success"),
		SubunitAmount: decimal.NewFromFloat(payload.Body.Amount),
		Currency:      "NGN",
		ExchangeRate:  rate,
		PaymentType:   payload.Body.Meta.PaymentType,
		Channel:       payload.Body.TransactionType,
		Gateway:       paymodel.GatewaySquad,
		PaidAt:        parseGatewayTime(payload.Body.CreatedAt),
		Raw: map[string]interface{}{
			"event":              payload.Event,
			"transaction_ref":    payload.Body.TransactionRef,
			"transaction_status": payload.Body.TransactionStatus,
			"amount":             payload.Body.Amount,
			"email":              payload.Body.Email,
		},
	}

	result, err := ctrl.Reconciler.Reconcile(c.Context(), payload.Body.TransactionRef, outcome)
	if err != nil {
		if errors.Is(err, payservice.ErrRegistrationNotFound) {
			log.Printf("⚠️ squad webhook: no registration for ref %q", payload.Body.TransactionRef)
			return c.Status(fiber.StatusNotFound).SendString("registration not found")
		}
		log.Printf("❌ squad webhook reconcile failed for %q: %v", payload.Body.TransactionRef, err)
		return c.Status(fiber.StatusInternalServerError).SendString("error")
	}

	if result.AlreadyReconciled {
		return c.Status(fiber.StatusOK).SendString("already processed")
	}
	return c.Status(fiber.StatusOK).SendString("success")
}

// POST /api/webhooks/paystack
func (ctrl *WebhookController) PaystackWebhook(c *fiber.Ctx) error {
	cfg := configs.App()
	secret := cfg.PaystackWebhookSecret
	if secret == "" {
		// Paystack signs with the account secret key unless a separate
		// webhook secret is configured.
		secret = cfg.PaystackSecretKey
	}
	signature := c.Get("X-Paystack-Signature")
	if !payservice.ValidPaystackSignature(c.Body(), signature, secret) {
		return c.Status(fiber.StatusUnauthorized).SendString("invalid signature")
	}

	var payload paydto.PaystackWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid payload")
	}

	if payload.Event != "charge.success" {
		return c.Status(fiber.StatusOK).SendString("ignored")
	}
	if payload.Data.Reference == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing reference")
	}

	rate := decimal.Zero
	if r, err := decimal.NewFromString(payload.Data.MetadataString("exchange_rate")); err == nil && r.IsPositive() {
		rate = r
	}

	currency := strings.ToUpper(payload.Data.Currency)
	if currency == "" {
		currency = "NGN"
	}

	outcome := payservice.Outcome{
		Success:       true,
		SubunitAmount: decimal.NewFromFloat(payload.Data.Amount),
		Currency:      currency,
		ExchangeRate:  rate,
		PaymentType:   payload.Data.MetadataString("payment_type"),
		Channel:       payload.Data.Channel,
		Gateway:       paymodel.GatewayPaystack,
		PaidAt:        parseGatewayTime(payload.Data.PaidAt),
		Raw: map[string]interface{}{
			"event":     payload.Event,
			"reference": payload.Data.Reference,
			"amount":    payload.Data.Amount,
			"currency":  payload.Data.Currency,
			"metadata":  payload.Data.Metadata,
		},
	}

	if _, err := ctrl.Reconciler.Reconcile(c.Context(), payload.Data.Reference, outcome); err != nil {
		if errors.Is(err, payservice.ErrRegistrationNotFound) {
			log.Printf("⚠️ paystack webhook: no registration for ref %q", payload.Data.Reference)
			return c.Status(fiber.StatusNotFound).SendString("registration not found")
		}
		log.Printf("❌ paystack webhook reconcile failed for %q: %v", payload.Data.Reference, err)
		return c.Status(fiber.StatusInternalServerError).SendString("error")
	}
	return c.Status(fiber.StatusOK).SendString("success")
}
