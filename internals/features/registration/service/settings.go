package service

import (
	"errors"

	"gorm.io/gorm"

	"aspir_backend/internals/features/registration/model"
)

/* =========================================================
   Program settings & pricing lookups
========================================================= */

// LoadSettings fetches the single settings row, creating it with
// defaults on first use. Callers hold the returned snapshot; nothing
// reads settings ambiently.
func LoadSettings(db *gorm.DB) (*model.ProgramSettings, error) {
	settings := model.ProgramSettings{SettingsID: 1}
	if err := db.FirstOrCreate(&settings, model.ProgramSettings{SettingsID: 1}).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func SaveSettings(db *gorm.DB, s *model.ProgramSettings) error {
	s.SettingsID = 1
	return db.Save(s).Error
}

// ActivePricing returns the active pricing config for an enrollment
// type, or nil when none is configured (callers fall back to the
// registration's default fees).
func ActivePricing(db *gorm.DB, enrollmentType string) (*model.PricingConfig, error) {
	var pricing model.PricingConfig
	err := db.Where("pricing_enrollment_type = ? AND pricing_is_active = ?", enrollmentType, true).
		First(&pricing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}
