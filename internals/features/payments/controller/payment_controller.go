package controller

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"aspir_backend/internals/configs"
	paydto "aspir_backend/internals/features/payments/dto"
	paymodel "aspir_backend/internals/features/payments/model"
	payservice "aspir_backend/internals/features/payments/service"
	regmodel "aspir_backend/internals/features/registration/model"
	regservice "aspir_backend/internals/features/registration/service"
	helper "aspir_backend/internals/helpers"
)

var validate = validator.New()

/* =========================================================
   PaymentController

   Checkout initiation against Squad plus the applicant-facing
   verify endpoint. Reconciliation itself lives in the service;
   these handlers only translate HTTP in and out.
========================================================= */

type PaymentController struct {
	DB         *gorm.DB
	Squad      *payservice.SquadClient
	Rates      payservice.RateSource
	Reconciler *payservice.Reconciler
}

func NewPaymentController(db *gorm.DB, squad *payservice.SquadClient, rates payservice.RateSource, rec *payservice.Reconciler) *PaymentController {
	return &PaymentController{DB: db, Squad: squad, Rates: rates, Reconciler: rec}
}

// POST /api/payments/initialize
// payment_option "full" charges the remaining balance, "partial" the
// registration fee only.
func (ctrl *PaymentController) InitializePayment(c *fiber.Ctx) error {
	var req paydto.InitializePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	registrationID := req.RegistrationID
	if registrationID == "" {
		// Combined register-and-pay: create the registration first.
		if req.Registration == nil {
			return helper.Error(c, fiber.StatusBadRequest, "Provide registration_id or a registration payload")
		}
		if err := validate.Struct(req.Registration); err != nil {
			return helper.ValidationError(c, err)
		}
		reg := req.Registration.ToModel()
		if err := regservice.CreateRegistration(ctrl.DB, reg); err != nil {
			var maint *regservice.MaintenanceError
			var fieldErr *regservice.FieldError
			switch {
			case errors.As(err, &maint):
				return helper.Error(c, fiber.StatusServiceUnavailable, maint.Message)
			case errors.As(err, &fieldErr):
				return helper.ErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed",
					fiber.Map{fieldErr.Field: fieldErr.Message})
			default:
				return helper.Error(c, fiber.StatusInternalServerError, "Failed to save registration")
			}
		}
		registrationID = reg.RegistrationID.String()
	}

	intent := payservice.IntentFullPayment
	if req.PaymentOption == paydto.PaymentOptionPartial {
		intent = payservice.IntentRegistrationFee
	}
	return ctrl.startCheckout(c, registrationID, intent)
}

// POST /api/payments/registration-fee/:id
func (ctrl *PaymentController) PayRegistrationFee(c *fiber.Ctx) error {
	return ctrl.startCheckout(c, c.Params("id"), payservice.IntentRegistrationFee)
}

// POST /api/payments/course-fee/:id
func (ctrl *PaymentController) PayCourseFee(c *fiber.Ctx) error {
	return ctrl.startCheckout(c, c.Params("id"), payservice.IntentCourseFee)
}

func (ctrl *PaymentController) startCheckout(c *fiber.Ctx, registrationID string, intent payservice.PaymentIntent) error {
	var reg regmodel.Registration
	if err := ctrl.DB.First(&reg, "registration_id = ?", registrationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Registration not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registration")
	}

	amountUSD, failMsg := chargeAmount(&reg, intent)
	if failMsg != "" {
		return helper.Error(c, fiber.StatusBadRequest, failMsg)
	}

	reference, err := payservice.BuildReference(intent, reg.RegistrationID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Could not create payment reference")
	}

	rate := ctrl.Rates.USDToNGN(c.Context())
	amountNGN := payservice.USDToSubunitNGN(amountUSD, rate)

	checkout, err := ctrl.Squad.Initiate(c.Context(), payservice.SquadInitiateRequest{
		Email:           reg.RegistrationEmail,
		AmountSubunit:   amountNGN,
		Currency:        "NGN",
		TransactionRef:  reference,
		CustomerName:    reg.RegistrationFullName,
		CallbackURL:     configs.App().SiteURL + "/payment-callback",
		PaymentChannels: []string{"card", "bank", "ussd", "transfer"},
		Metadata: map[string]string{
			"registration_id": reg.RegistrationID.String(),
			"payment_type":    intent.PaymentType(),
			"exchange_rate":   rate.String(),
		},
	})
	if err != nil {
		if errors.Is(err, payservice.ErrGatewayUnavailable) {
			return helper.Error(c, fiber.StatusServiceUnavailable, "Payment gateway is unreachable, try again shortly")
		}
		return helper.Error(c, fiber.StatusBadGateway, err.Error())
	}

	// Remember the outstanding reference for legacy webhook lookups.
	if err := ctrl.DB.Model(&regmodel.Registration{}).
		Where("registration_id = ?", reg.RegistrationID).
		Update("registration_squad_reference", reference).Error; err != nil {
		log.Printf("⚠️ failed to store squad reference for %s: %v", reg.RegistrationID, err)
	}

	activity := paymodel.PaymentActivity{
		ActivityRegistrationID: reg.RegistrationID,
		ActivityReference:      reference,
		ActivityStatus:         paymodel.ActivityStatusInitiated,
		ActivityPaymentType:    intent.PaymentType(),
		ActivityAmount:         amountUSD,
		ActivityCurrency:       "USD",
		ActivityGateway:        paymodel.GatewaySquad,
	}
	if err := ctrl.DB.Create(&activity).Error; err != nil {
		log.Printf("⚠️ failed to log initiation for %s: %v", reference, err)
	}

	return helper.Success(c, "Checkout created", paydto.CheckoutResponse{
		CheckoutURL: checkout.CheckoutURL,
		Reference:   reference,
		AmountNGN:   amountNGN,
		AmountUSD:   amountUSD.StringFixed(2),
	})
}

// chargeAmount picks the USD amount for an intent, or a rejection
// message when nothing is owed for it.
func chargeAmount(reg *regmodel.Registration, intent payservice.PaymentIntent) (decimal.Decimal, string) {
	if reg.IsFullyPaid() {
		return decimal.Zero, "This registration is already fully paid"
	}
	switch intent {
	case payservice.IntentRegistrationFee:
		if reg.RegistrationFeePaid {
			return decimal.Zero, "The registration fee has already been paid"
		}
		if reg.RegistrationFeeAmount != nil {
			return *reg.RegistrationFeeAmount, ""
		}
		return reg.DefaultRegistrationFee(), ""
	case payservice.IntentCourseFee:
		if reg.CourseFeePaid {
			return decimal.Zero, "The course fee has already been paid"
		}
		if !reg.RegistrationFeePaid {
			return decimal.Zero, "Pay the registration fee before the course fee"
		}
		if reg.CourseFeeAmount != nil {
			return *reg.CourseFeeAmount, ""
		}
		return reg.DefaultCourseFee(), ""
	default:
		return reg.RemainingBalance(), ""
	}
}

// GET /api/payments/verify/:reference
// The callback page lands here after checkout. Verifies with the
// gateway and reconciles on success, so payment state is correct even
// when the webhook is late or lost.
func (ctrl *PaymentController) VerifyPayment(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Missing reference")
	}

	txn, err := ctrl.Squad.Verify(c.Context(), reference)
	if err != nil {
		if errors.Is(err, payservice.ErrGatewayUnavailable) {
			return helper.Error(c, fiber.StatusServiceUnavailable, "Payment gateway is unreachable, try again shortly")
		}
		return helper.Error(c, fiber.StatusBadGateway, err.Error())
	}

	outcome := payservice.Outcome{
		Success:       txn.IsSuccessful(),
		SubunitAmount: decimal.NewFromFloat(txn.TransactionAmount),
		Currency:      txn.Currency(),
		PaymentType:   metaString(txn.Meta, "payment_type"),
		ExchangeRate:  metaRate(txn.Meta),
		Channel:       txn.TransactionType,
		Gateway:       paymodel.GatewaySquad,
		PaidAt:        parseGatewayTime(txn.CreatedAt),
		Raw:           txn.Raw,
	}

	result, err := ctrl.Reconciler.Reconcile(c.Context(), reference, outcome)
	if err != nil {
		if errors.Is(err, payservice.ErrRegistrationNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "No registration matches this reference")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Reconciliation failed")
	}

	return helper.Success(c, "Payment verified", fiber.Map{
		"reference":           reference,
		"payment_successful":  outcome.Success,
		"registration_id":     result.Registration.RegistrationID,
		"registration_status": result.Registration.RegistrationStatus,
		"fully_paid":          result.Registration.IsFullyPaid(),
		"participant_id":      result.Registration.RegistrationParticipantID,
	})
}

/* ===================== shared helpers ===================== */

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaRate(meta map[string]interface{}) decimal.Decimal {
	s := metaString(meta, "exchange_rate")
	if s == "" {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(s)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero
	}
	return rate
}

func parseGatewayTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
