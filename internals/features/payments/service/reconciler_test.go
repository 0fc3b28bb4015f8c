package service

import (
	"testing"

	regmodel "aspir_backend/internals/features/registration/model"
)

func TestApplySuccessTransitions(t *testing.T) {
	cases := []struct {
		name         string
		intent       PaymentIntent
		startRegPaid bool
		startCrsPaid bool
		wantRegPaid  bool
		wantCrsPaid  bool
		wantStatus   string
	}{
		{"full payment pays everything", IntentFullPayment, false, false, true, true, regmodel.StatusPaid},
		{"legacy treated as full", IntentLegacy, false, false, true, true, regmodel.StatusPaid},
		{"registration fee alone stays pending", IntentRegistrationFee, false, false, true, false, regmodel.StatusPending},
		{"course fee alone stays pending", IntentCourseFee, false, false, false, true, regmodel.StatusPending},
		{"registration fee completes when course already paid", IntentRegistrationFee, false, true, true, true, regmodel.StatusPaid},
		{"course fee completes when registration already paid", IntentCourseFee, true, false, true, true, regmodel.StatusPaid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := &regmodel.Registration{
				RegistrationFeePaid: tc.startRegPaid,
				CourseFeePaid:       tc.startCrsPaid,
				RegistrationStatus:  regmodel.StatusPending,
			}
			ApplySuccess(reg, tc.intent)
			if reg.RegistrationFeePaid != tc.wantRegPaid || reg.CourseFeePaid != tc.wantCrsPaid {
				t.Errorf("flags = (%v, %v), want (%v, %v)",
					reg.RegistrationFeePaid, reg.CourseFeePaid, tc.wantRegPaid, tc.wantCrsPaid)
			}
			if reg.RegistrationStatus != tc.wantStatus {
				t.Errorf("status = %s, want %s", reg.RegistrationStatus, tc.wantStatus)
			}
		})
	}
}

func TestApplyFailureKeepsPaidFlags(t *testing.T) {
	// A failed retry of the course fee must not erase the paid
	// registration fee.
	reg := &regmodel.Registration{
		RegistrationFeePaid: true,
		CourseFeePaid:       false,
		RegistrationStatus:  regmodel.StatusPending,
	}
	ApplyFailure(reg)
	if !reg.RegistrationFeePaid {
		t.Error("registration fee flag was cleared by a failure")
	}
	if reg.CourseFeePaid {
		t.Error("course fee flag was set by a failure")
	}
	if reg.RegistrationStatus != regmodel.StatusFailed {
		t.Errorf("status = %s, want FAILED", reg.RegistrationStatus)
	}
}

func TestSuccessAfterFailureRecovers(t *testing.T) {
	reg := &regmodel.Registration{RegistrationStatus: regmodel.StatusFailed}
	ApplySuccess(reg, IntentFullPayment)
	if reg.RegistrationStatus != regmodel.StatusPaid {
		t.Errorf("status = %s, want PAID after a later success", reg.RegistrationStatus)
	}
}

func TestDeriveStatus(t *testing.T) {
	if DeriveStatus(true, true) != regmodel.StatusPaid {
		t.Error("both flags paid must derive PAID")
	}
	if DeriveStatus(true, false) != regmodel.StatusPending {
		t.Error("partial payment must derive PENDING")
	}
	if DeriveStatus(false, false) != regmodel.StatusPending {
		t.Error("nothing paid must derive PENDING")
	}
}

func TestPartialThenFull(t *testing.T) {
	reg := &regmodel.Registration{RegistrationStatus: regmodel.StatusPending}

	ApplySuccess(reg, IntentRegistrationFee)
	if reg.IsFullyPaid() || reg.RegistrationStatus != regmodel.StatusPending {
		t.Fatal("first installment must leave the registration pending")
	}

	ApplySuccess(reg, IntentCourseFee)
	if !reg.IsFullyPaid() || reg.RegistrationStatus != regmodel.StatusPaid {
		t.Fatal("second installment must complete the registration")
	}
}
