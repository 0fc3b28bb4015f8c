package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymodel "aspir_backend/internals/features/payments/model"
	regmodel "aspir_backend/internals/features/registration/model"
	regservice "aspir_backend/internals/features/registration/service"
)

/* =========================================================
   Payment state reconciler

   One entry point for every payment-completion signal: gateway
   webhooks and staff manual reconciliation both land here. The
   registration write, ledger Transaction, PaymentActivity and
   participant-ID allocation happen in one DB transaction;
   notifications run after commit and never fail the event.
========================================================= */

var ErrRegistrationNotFound = errors.New("no registration matches this reference")

// Outcome is the gateway-reported result of a charge.
type Outcome struct {
	Success       bool
	SubunitAmount decimal.Decimal // smallest currency subunit (kobo, cents)
	Currency      string
	ExchangeRate  decimal.Decimal // charge-time USD→NGN rate from metadata; zero when absent
	PaymentType   string          // metadata payment_type, may be empty
	Channel       string
	Gateway       string
	PaidAt        *time.Time
	Raw           map[string]interface{}
}

type Result struct {
	Registration      *regmodel.Registration
	Intent            PaymentIntent
	AlreadyReconciled bool
	BecameFullyPaid   bool
	AmountUSD         decimal.Decimal
}

// Notifier sends the participant/staff mails. Failures are logged
// here and never propagate.
type Notifier interface {
	SendRegistrationConfirmation(reg *regmodel.Registration) error
	SendCourseFeeReceived(reg *regmodel.Registration) error
	SendPaymentComplete(reg *regmodel.Registration) error
	SendStaffPaymentNotification(reg *regmodel.Registration, paymentType string, amountUSD decimal.Decimal, reference string) error
}

type Reconciler struct {
	DB        *gorm.DB
	Rates     RateSource
	Allocator *regservice.Allocator
	Notifier  Notifier // optional
}

func NewReconciler(db *gorm.DB, rates RateSource, allocator *regservice.Allocator, notifier Notifier) *Reconciler {
	return &Reconciler{DB: db, Rates: rates, Allocator: allocator, Notifier: notifier}
}

/* ===================== Pure transitions ===================== */

// DeriveStatus is the invariant: PAID iff both fees are paid.
func DeriveStatus(registrationFeePaid, courseFeePaid bool) string {
	if registrationFeePaid && courseFeePaid {
		return regmodel.StatusPaid
	}
	return regmodel.StatusPending
}

// ApplySuccess applies the transition table for a successful charge.
// Unrecognized/legacy intents count as full payment rather than
// under-counting.
func ApplySuccess(reg *regmodel.Registration, intent PaymentIntent) {
	switch intent {
	case IntentRegistrationFee:
		reg.RegistrationFeePaid = true
	case IntentCourseFee:
		reg.CourseFeePaid = true
	default: // IntentFullPayment, IntentLegacy
		reg.RegistrationFeePaid = true
		reg.CourseFeePaid = true
	}
	reg.RegistrationStatus = DeriveStatus(reg.RegistrationFeePaid, reg.CourseFeePaid)
}

// ApplyFailure marks the registration FAILED without touching the fee
// flags: a failed retry must not erase an earlier partial payment.
func ApplyFailure(reg *regmodel.Registration) {
	reg.RegistrationStatus = regmodel.StatusFailed
}

/* ===================== Resolution ===================== */

type resolverFunc func(tx *gorm.DB, parsed ParsedReference) (*regmodel.Registration, error)

// resolvers are tried in order; gorm.ErrRecordNotFound moves on to
// the next strategy, anything else aborts.
var resolvers = []resolverFunc{
	func(tx *gorm.DB, p ParsedReference) (*regmodel.Registration, error) {
		if p.Intent == IntentLegacy {
			return nil, gorm.ErrRecordNotFound
		}
		var reg regmodel.Registration
		if err := tx.First(&reg, "registration_id = ?", p.RegistrationID).Error; err != nil {
			return nil, err
		}
		return &reg, nil
	},
	func(tx *gorm.DB, p ParsedReference) (*regmodel.Registration, error) {
		var reg regmodel.Registration
		if err := tx.First(&reg, "registration_squad_reference = ?", p.Raw).Error; err != nil {
			return nil, err
		}
		return &reg, nil
	},
	func(tx *gorm.DB, p ParsedReference) (*regmodel.Registration, error) {
		var reg regmodel.Registration
		if err := tx.First(&reg, "registration_paystack_reference = ?", p.Raw).Error; err != nil {
			return nil, err
		}
		return &reg, nil
	},
}

// ResolveRegistration maps a parsed reference onto a registration.
func ResolveRegistration(tx *gorm.DB, parsed ParsedReference) (*regmodel.Registration, error) {
	for _, resolve := range resolvers {
		reg, err := resolve(tx, parsed)
		if err == nil {
			return reg, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, ErrRegistrationNotFound
}

/* ===================== Reconcile ===================== */

func (r *Reconciler) Reconcile(ctx context.Context, reference string, out Outcome) (*Result, error) {
	parsed := ParseReference(reference)
	res := &Result{Intent: parsed.Intent}

	// Rate resolution can hit Redis and an HTTP API; resolve it before
	// the DB transaction opens so those round-trips never run while
	// row locks are held.
	var amountUSD decimal.Decimal
	if out.Success {
		rate := out.ExchangeRate
		if rate.IsZero() && out.Currency != "USD" {
			rate = r.Rates.USDToNGN(ctx)
		}
		amountUSD = SubunitToUSD(out.SubunitAmount, out.Currency, rate)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := ResolveRegistration(tx, parsed)
		if err != nil {
			return err
		}
		res.Registration = reg

		if !out.Success {
			return r.applyFailed(tx, reg, reference, out)
		}

		// Cheap pre-check for the common redelivery case. Not the
		// authority; the insert below is.
		var existing paymodel.Transaction
		err = tx.Where("transaction_reference = ?", reference).First(&existing).Error
		if err == nil {
			res.AlreadyReconciled = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		intent := parsed.Intent
		if intent == IntentLegacy {
			if fromMeta := IntentFromPaymentType(out.PaymentType); fromMeta != IntentLegacy {
				intent = fromMeta
			}
		}
		res.Intent = intent
		res.AmountUSD = amountUSD

		// The unique reference makes this insert the atomic
		// get-or-create: whoever lands the row owns every side effect
		// after it. A zero-row DoNothing means a concurrent delivery
		// won the race, so nothing further may be written or sent.
		ledger := paymodel.Transaction{
			TransactionRegistrationID: reg.RegistrationID,
			TransactionReference:      reference,
			TransactionAmount:         amountUSD,
			TransactionCurrency:       "USD",
			TransactionPaidAt:         out.PaidAt,
			TransactionRawPayload:     datatypes.JSONMap(out.Raw),
		}
		if out.Channel != "" {
			ledger.TransactionChannel = &out.Channel
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_reference"}},
			DoNothing: true,
		}).Create(&ledger)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			res.AlreadyReconciled = true
			return nil
		}

		wasFullyPaid := reg.IsFullyPaid()
		ApplySuccess(reg, intent)

		if err := tx.Model(&regmodel.Registration{}).
			Where("registration_id = ?", reg.RegistrationID).
			Updates(map[string]interface{}{
				"registration_fee_paid": reg.RegistrationFeePaid,
				"course_fee_paid":       reg.CourseFeePaid,
				"registration_status":   reg.RegistrationStatus,
			}).Error; err != nil {
			return err
		}

		activity := paymodel.PaymentActivity{
			ActivityRegistrationID: reg.RegistrationID,
			ActivityReference:      reference,
			ActivityStatus:         paymodel.ActivityStatusSuccess,
			ActivityPaymentType:    intent.PaymentType(),
			ActivityAmount:         amountUSD,
			ActivityCurrency:       "USD",
			ActivityGateway:        gatewayOrDefault(out.Gateway),
		}
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}

		if !wasFullyPaid && reg.IsFullyPaid() {
			res.BecameFullyPaid = true
			if _, err := r.Allocator.GenerateInTx(tx, reg); err != nil {
				if errors.Is(err, regservice.ErrNoCohort) {
					// Staff can allocate later; do not fail the payment.
					log.Printf("⚠️ participant ID deferred for %s: no cohort assigned", reg.RegistrationID)
				} else {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Success && !res.AlreadyReconciled {
		r.notify(res, reference)
	}
	return res, nil
}

func (r *Reconciler) applyFailed(tx *gorm.DB, reg *regmodel.Registration, reference string, out Outcome) error {
	ApplyFailure(reg)
	if err := tx.Model(&regmodel.Registration{}).
		Where("registration_id = ?", reg.RegistrationID).
		Update("registration_status", reg.RegistrationStatus).Error; err != nil {
		return err
	}
	msg := "gateway reported failure"
	activity := paymodel.PaymentActivity{
		ActivityRegistrationID: reg.RegistrationID,
		ActivityReference:      reference,
		ActivityStatus:         paymodel.ActivityStatusFailed,
		ActivityPaymentType:    IntentFromPaymentType(out.PaymentType).PaymentType(),
		ActivityAmount:         decimal.Zero,
		ActivityCurrency:       "USD",
		ActivityGateway:        gatewayOrDefault(out.Gateway),
		ActivityMessage:        &msg,
	}
	return tx.Create(&activity).Error
}

// notify sends exactly one participant mail (selected by payment
// type) plus the staff summary. Transport failures are logged and
// swallowed; the payment is already committed.
func (r *Reconciler) notify(res *Result, reference string) {
	if r.Notifier == nil {
		return
	}
	reg := res.Registration

	var err error
	switch {
	case res.Intent == IntentFullPayment || res.Intent == IntentLegacy:
		err = r.Notifier.SendPaymentComplete(reg)
	case res.Intent == IntentRegistrationFee:
		err = r.Notifier.SendRegistrationConfirmation(reg)
	case res.Intent == IntentCourseFee && reg.IsFullyPaid():
		err = r.Notifier.SendPaymentComplete(reg)
	default:
		err = r.Notifier.SendCourseFeeReceived(reg)
	}
	if err != nil {
		log.Printf("⚠️ participant mail failed for %s: %v", reg.RegistrationID, err)
	}

	if err := r.Notifier.SendStaffPaymentNotification(reg, res.Intent.PaymentType(), res.AmountUSD, reference); err != nil {
		log.Printf("⚠️ staff mail failed for %s: %v", reg.RegistrationID, err)
	}
}

func gatewayOrDefault(g string) string {
	if g == "" {
		return paymodel.GatewaySquad
	}
	return g
}
