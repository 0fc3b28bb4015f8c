package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"aspir_backend/internals/features/payments/model"
)

/* =========================================================
   Reference taxonomy

   Every checkout gets a reference of the form
     ASPIR-REG-<registration-uuid>[-<attempt>]
     ASPIR-COURSE-<registration-uuid>[-<attempt>]
     ASPIR-FULL-<registration-uuid>[-<attempt>]
   The attempt suffix is random per initialization so a retried
   checkout never trips the gateway's duplicate-reference check.
   Anything else is a legacy reference resolved against the
   stored gateway reference columns.
========================================================= */

type PaymentIntent int

const (
	IntentLegacy PaymentIntent = iota
	IntentRegistrationFee
	IntentCourseFee
	IntentFullPayment
)

const (
	prefixRegistration = "ASPIR-REG-"
	prefixCourse       = "ASPIR-COURSE-"
	prefixFull         = "ASPIR-FULL-"
)

// uuidLen is the canonical textual UUID length; registration IDs are
// always this long, which is what makes suffix stripping unambiguous.
const uuidLen = 36

func (i PaymentIntent) String() string {
	switch i {
	case IntentRegistrationFee:
		return "registration_fee"
	case IntentCourseFee:
		return "course_fee"
	case IntentFullPayment:
		return "full_payment"
	}
	return "legacy"
}

// PaymentType maps the intent onto the ledger's payment_type value.
// Legacy references are treated as full payments (fail-safe: assume
// the charge covered everything rather than under-count).
func (i PaymentIntent) PaymentType() string {
	switch i {
	case IntentRegistrationFee:
		return model.PaymentTypeRegistrationFee
	case IntentCourseFee:
		return model.PaymentTypeCourseFee
	}
	return model.PaymentTypeFullPayment
}

// IntentFromPaymentType classifies a metadata payment_type string.
func IntentFromPaymentType(s string) PaymentIntent {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.PaymentTypeRegistrationFee:
		return IntentRegistrationFee
	case model.PaymentTypeCourseFee:
		return IntentCourseFee
	case model.PaymentTypeFullPayment:
		return IntentFullPayment
	}
	return IntentLegacy
}

type ParsedReference struct {
	Raw            string
	Intent         PaymentIntent
	RegistrationID uuid.UUID // zero value when Intent is IntentLegacy
}

// ParseReference classifies a reference by its structural prefix and
// extracts the registration UUID, stripping any attempt suffix.
func ParseReference(ref string) ParsedReference {
	ref = strings.TrimSpace(ref)
	parsed := ParsedReference{Raw: ref, Intent: IntentLegacy}

	var rest string
	switch {
	case strings.HasPrefix(ref, prefixRegistration):
		parsed.Intent = IntentRegistrationFee
		rest = ref[len(prefixRegistration):]
	case strings.HasPrefix(ref, prefixCourse):
		parsed.Intent = IntentCourseFee
		rest = ref[len(prefixCourse):]
	case strings.HasPrefix(ref, prefixFull):
		parsed.Intent = IntentFullPayment
		rest = ref[len(prefixFull):]
	default:
		return parsed
	}

	if len(rest) < uuidLen {
		parsed.Intent = IntentLegacy
		return parsed
	}
	idPart := rest[:uuidLen]
	tail := rest[uuidLen:]
	if tail != "" && !strings.HasPrefix(tail, "-") {
		// Not a clean attempt suffix; fall back to legacy lookup.
		parsed.Intent = IntentLegacy
		return parsed
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		parsed.Intent = IntentLegacy
		return parsed
	}
	parsed.RegistrationID = id
	return parsed
}

// BuildReference produces a fresh gateway reference for one checkout
// attempt. Each call yields a distinct suffix.
func BuildReference(intent PaymentIntent, registrationID uuid.UUID) (string, error) {
	var prefix string
	switch intent {
	case IntentRegistrationFee:
		prefix = prefixRegistration
	case IntentCourseFee:
		prefix = prefixCourse
	case IntentFullPayment:
		prefix = prefixFull
	default:
		return "", fmt.Errorf("cannot build a reference for intent %q", intent)
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("reference suffix: %w", err)
	}
	return prefix + registrationID.String() + "-" + hex.EncodeToString(suffix), nil
}
