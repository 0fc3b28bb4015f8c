package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	paydto "aspir_backend/internals/features/payments/dto"
	paymodel "aspir_backend/internals/features/payments/model"
	payservice "aspir_backend/internals/features/payments/service"
	helper "aspir_backend/internals/helpers"
)

/* =========================================================
   ReconcileController

   Staff-triggered reconciliation for payments whose webhook
   never arrived. Verifies the reference with Squad first, so a
   typo or an unpaid checkout cannot mark anything paid.
========================================================= */

type ReconcileController struct {
	DB         *gorm.DB
	Squad      *payservice.SquadClient
	Reconciler *payservice.Reconciler
}

func NewReconcileController(db *gorm.DB, squad *payservice.SquadClient, rec *payservice.Reconciler) *ReconcileController {
	return &ReconcileController{DB: db, Squad: squad, Reconciler: rec}
}

// POST /api/admin/payments/reconcile
func (ctrl *ReconcileController) Reconcile(c *fiber.Ctx) error {
	var req paydto.ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	// Short-circuit before touching the gateway.
	var existing paymodel.Transaction
	err := ctrl.DB.Where("transaction_reference = ?", req.Reference).First(&existing).Error
	if err == nil {
		return helper.Success(c, "This payment was already recorded", fiber.Map{
			"reference":       existing.TransactionReference,
			"registration_id": existing.TransactionRegistrationID,
			"amount_usd":      existing.TransactionAmount,
			"recorded_at":     existing.CreatedAt,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to check existing transactions")
	}

	txn, err := ctrl.Squad.Verify(c.Context(), req.Reference)
	if err != nil {
		if errors.Is(err, payservice.ErrGatewayUnavailable) {
			return helper.Error(c, fiber.StatusServiceUnavailable, "Payment gateway is unreachable, try again shortly")
		}
		return helper.Error(c, fiber.StatusBadGateway, err.Error())
	}
	if !txn.IsSuccessful() {
		return helper.Error(c, fiber.StatusBadRequest,
			"Gateway reports this transaction as \""+txn.TransactionStatus+"\", not success; nothing was recorded")
	}

	outcome := payservice.Outcome{
		Success:       true,
		SubunitAmount: decimal.NewFromFloat(txn.TransactionAmount),
		Currency:      txn.Currency(),
		PaymentType:   metaString(txn.Meta, "payment_type"),
		ExchangeRate:  metaRate(txn.Meta),
		Channel:       txn.TransactionType,
		Gateway:       paymodel.GatewaySquad,
		PaidAt:        parseGatewayTime(txn.CreatedAt),
		Raw:           txn.Raw,
	}

	result, err := ctrl.Reconciler.Reconcile(c.Context(), req.Reference, outcome)
	if err != nil {
		if errors.Is(err, payservice.ErrRegistrationNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "No registration matches this reference")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Reconciliation failed")
	}

	return helper.Success(c, "Payment reconciled", fiber.Map{
		"reference":           req.Reference,
		"registration_id":     result.Registration.RegistrationID,
		"registration_status": result.Registration.RegistrationStatus,
		"amount_usd":          result.AmountUSD,
		"became_fully_paid":   result.BecameFullyPaid,
		"participant_id":      result.Registration.RegistrationParticipantID,
	})
}
