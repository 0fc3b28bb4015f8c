package service

import (
	"gorm.io/gorm"

	"aspir_backend/internals/features/registration/model"
)

/* =========================================================
   Registration creation

   Shared by the public register endpoint and the combined
   register-and-pay flow so both apply the same validation and
   pricing.
========================================================= */

// MaintenanceError carries the staff-configured downtime message.
type MaintenanceError struct {
	Message string
}

func (e *MaintenanceError) Error() string { return e.Message }

// FieldError is a business-rule rejection tied to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// CreateRegistration validates the business rules (maintenance mode,
// age band, guardian requirement, cohort availability), applies the
// active pricing, and persists the row as PENDING.
func CreateRegistration(db *gorm.DB, reg *model.Registration) error {
	settings, err := LoadSettings(db)
	if err != nil {
		return err
	}

	if settings.SettingsMaintenance {
		msg := "Registration is temporarily closed for maintenance"
		if settings.SettingsMaintenanceMsg != nil && *settings.SettingsMaintenanceMsg != "" {
			msg = *settings.SettingsMaintenanceMsg
		}
		return &MaintenanceError{Message: msg}
	}

	switch reg.RegistrationGroup {
	case model.GroupOne:
		if reg.RegistrationAge < settings.SettingsGroup1MinAge || reg.RegistrationAge > settings.SettingsGroup1MaxAge {
			return &FieldError{Field: "age", Message: "age does not fall within Group 1's range"}
		}
	case model.GroupTwo:
		if reg.RegistrationAge < settings.SettingsGroup2MinAge || reg.RegistrationAge > settings.SettingsGroup2MaxAge {
			return &FieldError{Field: "age", Message: "age does not fall within Group 2's range"}
		}
	}

	if reg.RegistrationAge < settings.SettingsGuardianAge {
		if reg.RegistrationGuardianName == nil || *reg.RegistrationGuardianName == "" ||
			reg.RegistrationGuardianPhone == nil || *reg.RegistrationGuardianPhone == "" {
			return &FieldError{Field: "guardian", Message: "guardian name and phone are required for applicants under the guardian age"}
		}
	}

	pricing, err := ActivePricing(db, reg.RegistrationEnrollmentType)
	if err != nil {
		return err
	}
	if pricing != nil {
		reg.RegistrationAmount = pricing.TotalAmount()
		regFee, courseFee := pricing.PricingRegistrationFee, pricing.PricingCourseFee
		reg.RegistrationFeeAmount = &regFee
		reg.CourseFeeAmount = &courseFee
	} else {
		reg.RegistrationAmount = reg.DefaultAmount()
	}

	if reg.RegistrationCohortID != nil {
		var cohort model.Cohort
		if err := db.First(&cohort, "cohort_id = ? AND cohort_is_active = ?", *reg.RegistrationCohortID, true).Error; err != nil {
			return &FieldError{Field: "cohort_id", Message: "selected cohort is not available"}
		}
	}

	return db.Create(reg).Error
}
