package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"aspir_backend/internals/configs"
	paymodel "aspir_backend/internals/features/payments/model"
	"aspir_backend/internals/features/registration/dto"
	"aspir_backend/internals/features/registration/model"
	"aspir_backend/internals/features/registration/service"
	helper "aspir_backend/internals/helpers"
)

/* =========================================================
   AdminController

   Staff CRUD over registrations and the program catalog. All
   routes are mounted behind the staff JWT middleware.
========================================================= */

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

/* ===================== Registrations ===================== */

// GET /api/admin/registrations?status=&group=&cohort_id=&search=&page=&per_page=
func (ctrl *AdminController) ListRegistrations(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 25, 100)

	q := ctrl.DB.Model(&model.Registration{})
	if status := strings.ToUpper(c.Query("status")); status != "" {
		q = q.Where("registration_status = ?", status)
	}
	if group := strings.ToUpper(c.Query("group")); group != "" {
		q = q.Where("registration_group = ?", group)
	}
	if cohortID := c.Query("cohort_id"); cohortID != "" {
		q = q.Where("registration_cohort_id = ?", cohortID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"registration_full_name ILIKE ? OR registration_email ILIKE ? OR registration_participant_id ILIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to count registrations")
	}

	var regs []model.Registration
	if err := q.Order("registration_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&regs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registrations")
	}

	return helper.Success(c, "OK", fiber.Map{
		"registrations": dto.FromModels(regs),
		"pagination":    helper.BuildPagination(paging, total, len(regs)),
	})
}

// GET /api/admin/registrations/:id
func (ctrl *AdminController) GetRegistration(c *fiber.Ctx) error {
	var reg model.Registration
	if err := ctrl.DB.First(&reg, "registration_id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Registration not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registration")
	}
	return helper.Success(c, "OK", dto.FromModel(&reg))
}

// PATCH /api/admin/registrations/:id
// Contact and assignment fields only; payment flags and participant
// IDs are changed through their own flows.
func (ctrl *AdminController) UpdateRegistration(c *fiber.Ctx) error {
	var reg model.Registration
	if err := ctrl.DB.First(&reg, "registration_id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Registration not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registration")
	}

	var req dto.UpdateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	updates := map[string]interface{}{}
	req.ApplyTo(updates)
	if len(updates) == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "No updatable fields provided")
	}

	if err := ctrl.DB.Model(&model.Registration{}).
		Where("registration_id = ?", reg.RegistrationID).
		Updates(updates).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update registration")
	}

	if err := ctrl.DB.First(&reg, "registration_id = ?", reg.RegistrationID).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to reload registration")
	}
	return helper.Success(c, "Registration updated", dto.FromModel(&reg))
}

// DELETE /api/admin/registrations/:id  (soft delete)
func (ctrl *AdminController) DeleteRegistration(c *fiber.Ctx) error {
	result := ctrl.DB.Delete(&model.Registration{}, "registration_id = ?", c.Params("id"))
	if result.Error != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to delete registration")
	}
	if result.RowsAffected == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Registration not found")
	}
	return helper.Success(c, "Registration deleted", nil)
}

// GET /api/admin/registrations/:id/transactions
func (ctrl *AdminController) ListTransactions(c *fiber.Ctx) error {
	var txns []paymodel.Transaction
	if err := ctrl.DB.Where("transaction_registration_id = ?", c.Params("id")).
		Order("transaction_created_at DESC").Find(&txns).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load transactions")
	}
	return helper.Success(c, "OK", txns)
}

// GET /api/admin/registrations/:id/activities
func (ctrl *AdminController) ListActivities(c *fiber.Ctx) error {
	var activities []paymodel.PaymentActivity
	if err := ctrl.DB.Where("activity_registration_id = ?", c.Params("id")).
		Order("activity_created_at DESC").Find(&activities).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load payment activity")
	}
	return helper.Success(c, "OK", activities)
}

// GET /api/admin/stats
func (ctrl *AdminController) Stats(c *fiber.Ctx) error {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := ctrl.DB.Model(&model.Registration{}).
		Select("registration_status AS status, COUNT(*) AS count").
		Group("registration_status").Scan(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}

	byStatus := map[string]int64{}
	var total int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		total += r.Count
	}

	var withID int64
	if err := ctrl.DB.Model(&model.Registration{}).
		Where("registration_participant_id IS NOT NULL AND registration_participant_id <> ''").
		Count(&withID).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to compute stats")
	}

	return helper.Success(c, "OK", fiber.Map{
		"total":                total,
		"by_status":            byStatus,
		"with_participant_ids": withID,
	})
}

/* ===================== Catalog management ===================== */

// POST /api/admin/cohorts
func (ctrl *AdminController) CreateCohort(c *fiber.Ctx) error {
	var cohort model.Cohort
	if err := c.BodyParser(&cohort); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cohort.CohortCode = strings.ToUpper(strings.TrimSpace(cohort.CohortCode))
	if cohort.CohortName == "" || cohort.CohortCode == "" {
		return helper.Error(c, fiber.StatusBadRequest, "cohort_name and cohort_code are required")
	}
	if err := ctrl.DB.Create(&cohort).Error; err != nil {
		return helper.Error(c, fiber.StatusConflict, "Cohort name or code already exists")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Cohort created", cohort)
}

// PATCH /api/admin/cohorts/:id
// The code itself is immutable once set; renaming it would orphan
// every participant ID issued under it.
func (ctrl *AdminController) UpdateCohort(c *fiber.Ctx) error {
	var cohort model.Cohort
	if err := ctrl.DB.First(&cohort, "cohort_id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Cohort not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load cohort")
	}

	var body struct {
		CohortName        *string `json:"cohort_name"`
		CohortDescription *string `json:"cohort_description"`
		CohortIsActive    *bool   `json:"cohort_is_active"`
		CohortIsNewIntake *bool   `json:"cohort_is_new_intake"`
	}
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if body.CohortName != nil {
		updates["cohort_name"] = *body.CohortName
	}
	if body.CohortDescription != nil {
		updates["cohort_description"] = *body.CohortDescription
	}
	if body.CohortIsActive != nil {
		updates["cohort_is_active"] = *body.CohortIsActive
	}
	if body.CohortIsNewIntake != nil {
		updates["cohort_is_new_intake"] = *body.CohortIsNewIntake
	}
	if len(updates) == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "No updatable fields provided")
	}

	if err := ctrl.DB.Model(&cohort).Updates(updates).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update cohort")
	}
	return helper.Success(c, "Cohort updated", cohort)
}

// GET /api/admin/cohorts
func (ctrl *AdminController) ListCohorts(c *fiber.Ctx) error {
	var cohorts []model.Cohort
	if err := ctrl.DB.Order("cohort_created_at DESC").Find(&cohorts).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load cohorts")
	}
	return helper.Success(c, "OK", cohorts)
}

// GET /api/admin/dimensions
func (ctrl *AdminController) ListDimensions(c *fiber.Ctx) error {
	var dims []model.Dimension
	if err := ctrl.DB.Order("dimension_display_order ASC").Find(&dims).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load dimensions")
	}
	return helper.Success(c, "OK", dims)
}

// POST /api/admin/dimensions
func (ctrl *AdminController) CreateDimension(c *fiber.Ctx) error {
	var dim model.Dimension
	if err := c.BodyParser(&dim); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	dim.DimensionCode = strings.ToUpper(strings.TrimSpace(dim.DimensionCode))
	if len(dim.DimensionCode) != 1 || dim.DimensionName == "" {
		return helper.Error(c, fiber.StatusBadRequest, "dimension_code must be a single letter and dimension_name is required")
	}
	if err := ctrl.DB.Create(&dim).Error; err != nil {
		return helper.Error(c, fiber.StatusConflict, "Dimension code already exists")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Dimension created", dim)
}

// PATCH /api/admin/dimensions/:id
func (ctrl *AdminController) UpdateDimension(c *fiber.Ctx) error {
	var dim model.Dimension
	if err := ctrl.DB.First(&dim, "dimension_id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Dimension not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load dimension")
	}

	var body struct {
		DimensionName         *string `json:"dimension_name"`
		DimensionDescription  *string `json:"dimension_description"`
		DimensionIsActive     *bool   `json:"dimension_is_active"`
		DimensionDisplayOrder *int    `json:"dimension_display_order"`
	}
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if body.DimensionName != nil {
		updates["dimension_name"] = *body.DimensionName
	}
	if body.DimensionDescription != nil {
		updates["dimension_description"] = *body.DimensionDescription
	}
	if body.DimensionIsActive != nil {
		updates["dimension_is_active"] = *body.DimensionIsActive
	}
	if body.DimensionDisplayOrder != nil {
		updates["dimension_display_order"] = *body.DimensionDisplayOrder
	}
	if len(updates) == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "No updatable fields provided")
	}

	if err := ctrl.DB.Model(&dim).Updates(updates).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update dimension")
	}
	return helper.Success(c, "Dimension updated", dim)
}

// PUT /api/admin/pricing
// Upserts the pricing row for an enrollment type.
func (ctrl *AdminController) UpsertPricing(c *fiber.Ctx) error {
	var pricing model.PricingConfig
	if err := c.BodyParser(&pricing); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	pricing.PricingEnrollmentType = strings.ToUpper(strings.TrimSpace(pricing.PricingEnrollmentType))
	if pricing.PricingEnrollmentType != model.EnrollmentNew && pricing.PricingEnrollmentType != model.EnrollmentReturning {
		return helper.Error(c, fiber.StatusBadRequest, "pricing_enrollment_type must be NEW or RETURNING")
	}

	var existing model.PricingConfig
	err := ctrl.DB.Where("pricing_enrollment_type = ?", pricing.PricingEnrollmentType).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"pricing_registration_fee": pricing.PricingRegistrationFee,
			"pricing_course_fee":       pricing.PricingCourseFee,
			"pricing_is_active":        pricing.PricingIsActive,
		}
		if err := ctrl.DB.Model(&existing).Updates(updates).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to update pricing")
		}
		return helper.Success(c, "Pricing updated", existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := ctrl.DB.Create(&pricing).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to create pricing")
		}
		return helper.SuccessWithCode(c, fiber.StatusCreated, "Pricing created", pricing)
	default:
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load pricing")
	}
}

// GET /api/admin/settings
func (ctrl *AdminController) GetSettings(c *fiber.Ctx) error {
	settings, err := service.LoadSettings(ctrl.DB)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load settings")
	}
	return helper.Success(c, "OK", settings)
}

// PUT /api/admin/settings
func (ctrl *AdminController) UpdateSettings(c *fiber.Ctx) error {
	settings, err := service.LoadSettings(ctrl.DB)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load settings")
	}
	if err := c.BodyParser(settings); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := service.SaveSettings(ctrl.DB, settings); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to save settings")
	}
	// Services hold config snapshots; refresh them after a change.
	configs.Reload()
	return helper.Success(c, "Settings updated", settings)
}
