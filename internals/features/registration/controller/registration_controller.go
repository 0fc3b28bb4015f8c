package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"aspir_backend/internals/features/registration/dto"
	"aspir_backend/internals/features/registration/model"
	"aspir_backend/internals/features/registration/service"
	helper "aspir_backend/internals/helpers"
	"aspir_backend/internals/mailer"
)

var validate = validator.New()

/* =========================================================
   RegistrationController (public)

   The applicant-facing surface: create a registration, check
   payment status, browse the program catalog.
========================================================= */

type RegistrationController struct {
	DB     *gorm.DB
	Mailer *mailer.Mailer // optional
}

func NewRegistrationController(db *gorm.DB, m *mailer.Mailer) *RegistrationController {
	return &RegistrationController{DB: db, Mailer: m}
}

// POST /api/registrations
func (ctrl *RegistrationController) Register(c *fiber.Ctx) error {
	var req dto.CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	reg := req.ToModel()
	if err := service.CreateRegistration(ctrl.DB, reg); err != nil {
		var maint *service.MaintenanceError
		var fieldErr *service.FieldError
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

	if ctrl.Mailer != nil {
		if err := ctrl.Mailer.SendStaffNewRegistration(reg); err != nil {
			log.Printf("⚠️ staff new-registration mail failed: %v", err)
		}
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Registration created", dto.FromModel(reg))
}

// GET /api/registrations/:id/status
func (ctrl *RegistrationController) CheckStatus(c *fiber.Ctx) error {
	var reg model.Registration
	if err := ctrl.DB.First(&reg, "registration_id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Registration not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registration")
	}
	return helper.Success(c, "OK", dto.StatusFromModel(&reg))
}

// GET /api/registrations/lookup?email=
// Email lookup for applicants who lost their registration link.
func (ctrl *RegistrationController) LookupByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Missing email")
	}
	var regs []model.Registration
	if err := ctrl.DB.Where("registration_email = LOWER(?)", email).
		Order("registration_created_at DESC").Find(&regs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Lookup failed")
	}
	out := make([]*dto.StatusResponse, 0, len(regs))
	for i := range regs {
		out = append(out, dto.StatusFromModel(&regs[i]))
	}
	return helper.Success(c, "OK", out)
}

/* ===================== Catalog ===================== */

// GET /api/program
// Program landing data: settings, active cohorts/dimensions, pricing
// in both USD and indicative NGN.
func (ctrl *RegistrationController) ProgramInfo(c *fiber.Ctx) error {
	settings, err := service.LoadSettings(ctrl.DB)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load program settings")
	}

	var cohorts []model.Cohort
	if err := ctrl.DB.Where("cohort_is_active = ?", true).
		Order("cohort_created_at DESC").Find(&cohorts).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load cohorts")
	}

	var dimensions []model.Dimension
	if err := ctrl.DB.Where("dimension_is_active = ?", true).
		Order("dimension_display_order ASC").Find(&dimensions).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load dimensions")
	}

	var pricing []model.PricingConfig
	if err := ctrl.DB.Where("pricing_is_active = ?", true).Find(&pricing).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load pricing")
	}

	return helper.Success(c, "OK", fiber.Map{
		"site_name":    settings.SettingsSiteName,
		"site_tagline": settings.SettingsSiteTagline,
		"groups": fiber.Map{
			model.GroupOne: fiber.Map{"min_age": settings.SettingsGroup1MinAge, "max_age": settings.SettingsGroup1MaxAge},
			model.GroupTwo: fiber.Map{"min_age": settings.SettingsGroup2MinAge, "max_age": settings.SettingsGroup2MaxAge},
		},
		"guardian_required_under": settings.SettingsGuardianAge,
		"cohorts":                 cohorts,
		"dimensions":              dimensions,
		"pricing":                 pricing,
		"maintenance":             settings.SettingsMaintenance,
	})
}
