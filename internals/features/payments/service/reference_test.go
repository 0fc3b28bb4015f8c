package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseReferenceByPrefix(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		ref    string
		intent PaymentIntent
	}{
		{"ASPIR-REG-" + id.String(), IntentRegistrationFee},
		{"ASPIR-COURSE-" + id.String(), IntentCourseFee},
		{"ASPIR-FULL-" + id.String(), IntentFullPayment},
	}
	for _, tc := range cases {
		parsed := ParseReference(tc.ref)
		if parsed.Intent != tc.intent {
			t.Errorf("%s: intent = %v, want %v", tc.ref, parsed.Intent, tc.intent)
		}
		if parsed.RegistrationID != id {
			t.Errorf("%s: registration ID = %s, want %s", tc.ref, parsed.RegistrationID, id)
		}
	}
}

func TestParseReferenceStripsAttemptSuffix(t *testing.T) {
	id := uuid.New()
	parsed := ParseReference("ASPIR-FULL-" + id.String() + "-a1b2c3")
	if parsed.Intent != IntentFullPayment {
		t.Fatalf("intent = %v, want full payment", parsed.Intent)
	}
	if parsed.RegistrationID != id {
		t.Fatalf("registration ID = %s, want %s", parsed.RegistrationID, id)
	}
}

func TestParseReferenceLegacyFallback(t *testing.T) {
	for _, ref := range []string{
		"",
		"SQ-8f3a2c",
		"ASPIR-REG-not-a-uuid",
		"ASPIR-FULL-" + uuid.New().String() + "garbage", // suffix without separator
		"ASPIR-FULL-short",
	} {
		parsed := ParseReference(ref)
		if parsed.Intent != IntentLegacy {
			t.Errorf("%q: intent = %v, want legacy", ref, parsed.Intent)
		}
		if parsed.RegistrationID != uuid.Nil {
			t.Errorf("%q: registration ID should be zero, got %s", ref, parsed.RegistrationID)
		}
	}
}

func TestBuildReferenceRoundTrip(t *testing.T) {
	id := uuid.New()
	for _, intent := range []PaymentIntent{IntentRegistrationFee, IntentCourseFee, IntentFullPayment} {
		ref, err := BuildReference(intent, id)
		if err != nil {
			t.Fatalf("BuildReference(%v): %v", intent, err)
		}
		parsed := ParseReference(ref)
		if parsed.Intent != intent {
			t.Errorf("%s: round-trip intent = %v, want %v", ref, parsed.Intent, intent)
		}
		if parsed.RegistrationID != id {
			t.Errorf("%s: round-trip ID = %s, want %s", ref, parsed.RegistrationID, id)
		}
	}
}

func TestBuildReferenceDistinctPerAttempt(t *testing.T) {
	id := uuid.New()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := BuildReference(IntentCourseFee, id)
		if err != nil {
			t.Fatal(err)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference generated: %s", ref)
		}
		seen[ref] = true
	}
}

func TestBuildReferenceRejectsLegacy(t *testing.T) {
	if _, err := BuildReference(IntentLegacy, uuid.New()); err == nil {
		t.Fatal("expected an error for the legacy intent")
	}
}

func TestIntentPaymentTypeMapping(t *testing.T) {
	if got := IntentRegistrationFee.PaymentType(); got != "registration_fee" {
		t.Errorf("registration intent type = %q", got)
	}
	if got := IntentCourseFee.PaymentType(); got != "course_fee" {
		t.Errorf("course intent type = %q", got)
	}
	// Legacy counts as a full payment rather than under-counting.
	if got := IntentLegacy.PaymentType(); got != "full_payment" {
		t.Errorf("legacy intent type = %q", got)
	}
}

func TestIntentFromPaymentType(t *testing.T) {
	if IntentFromPaymentType(" Registration_Fee ") != IntentRegistrationFee {
		t.Error("case/space-insensitive classification failed")
	}
	if IntentFromPaymentType("donation") != IntentLegacy {
		t.Error("unknown types must classify as legacy")
	}
}

func TestReferencePrefixesAreUnambiguous(t *testing.T) {
	// ASPIR-REG- must not be a prefix of the others, otherwise the
	// switch order would matter.
	for _, p := range []string{prefixCourse, prefixFull} {
		if strings.HasPrefix(p, prefixRegistration) {
			t.Fatalf("%q collides with %q", p, prefixRegistration)
		}
	}
}
