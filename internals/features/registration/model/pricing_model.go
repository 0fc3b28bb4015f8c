package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

/* ===================== Pricing ===================== */

type PricingConfig struct {
	PricingID             uuid.UUID       `gorm:"column:pricing_id;type:uuid;default:gen_random_uuid();primaryKey" json:"pricing_id"`
	PricingEnrollmentType string          `gorm:"column:pricing_enrollment_type;type:varchar(10);not null;uniqueIndex" json:"pricing_enrollment_type"`
	PricingRegistrationFee decimal.Decimal `gorm:"column:pricing_registration_fee;type:numeric(10,2);not null" json:"pricing_registration_fee"`
	PricingCourseFee      decimal.Decimal `gorm:"column:pricing_course_fee;type:numeric(10,2);not null" json:"pricing_course_fee"`
	PricingCurrency       string          `gorm:"column:pricing_currency;type:varchar(3);not null;default:USD" json:"pricing_currency"`
	PricingIsActive       bool            `gorm:"column:pricing_is_active;not null;default:true" json:"pricing_is_active"`

	CreatedAt time.Time `gorm:"column:pricing_created_at;autoCreateTime" json:"pricing_created_at"`
	UpdatedAt time.Time `gorm:"column:pricing_updated_at;autoUpdateTime" json:"pricing_updated_at"`
}

func (PricingConfig) TableName() string { return "pricing_configs" }

func (p *PricingConfig) TotalAmount() decimal.Decimal {
	return p.PricingRegistrationFee.Add(p.PricingCourseFee)
}

/* ===================== Program settings ===================== */

// ProgramSettings is a single-row table (settings_id is always 1).
// It is read and written through the settings service, never as an
// ambient global; controllers receive a loaded snapshot.
type ProgramSettings struct {
	SettingsID            int     `gorm:"column:settings_id;primaryKey" json:"settings_id"`
	SettingsSiteName      string  `gorm:"column:settings_site_name;type:varchar(200);not null;default:'ASPIR Mentorship Program'" json:"settings_site_name"`
	SettingsSiteTagline   string  `gorm:"column:settings_site_tagline;type:varchar(300);not null;default:'A step-by-step journey to Purpose, Excellence & Leadership'" json:"settings_site_tagline"`
	SettingsGroup1MinAge  int     `gorm:"column:settings_group1_min_age;not null;default:10" json:"settings_group1_min_age"`
	SettingsGroup1MaxAge  int     `gorm:"column:settings_group1_max_age;not null;default:15" json:"settings_group1_max_age"`
	SettingsGroup2MinAge  int     `gorm:"column:settings_group2_min_age;not null;default:16" json:"settings_group2_min_age"`
	SettingsGroup2MaxAge  int     `gorm:"column:settings_group2_max_age;not null;default:22" json:"settings_group2_max_age"`
	SettingsGuardianAge   int     `gorm:"column:settings_guardian_required_age;not null;default:16" json:"settings_guardian_required_age"`
	SettingsMaintenance   bool    `gorm:"column:settings_maintenance_mode;not null;default:false" json:"settings_maintenance_mode"`
	SettingsMaintenanceMsg *string `gorm:"column:settings_maintenance_message" json:"settings_maintenance_message,omitempty"`
	SettingsMoodlePassword *string `gorm:"column:settings_moodle_default_password;type:varchar(128)" json:"-"`

	UpdatedAt time.Time `gorm:"column:settings_updated_at;autoUpdateTime" json:"settings_updated_at"`
}

func (ProgramSettings) TableName() string { return "program_settings" }
