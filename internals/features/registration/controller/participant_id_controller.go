package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"aspir_backend/internals/features/registration/dto"
	"aspir_backend/internals/features/registration/model"
	"aspir_backend/internals/features/registration/service"
	helper "aspir_backend/internals/helpers"
	"aspir_backend/internals/mailer"
)

/* =========================================================
   ParticipantIDController

   Staff operations on participant IDs: single allocation,
   backfill over paid registrations, normalization of legacy
   formats, and import of externally assigned IDs.
========================================================= */

type ParticipantIDController struct {
	DB        *gorm.DB
	Allocator *service.Allocator
	Mailer    *mailer.Mailer // optional
}

func NewParticipantIDController(db *gorm.DB, alloc *service.Allocator, m *mailer.Mailer) *ParticipantIDController {
	return &ParticipantIDController{DB: db, Allocator: alloc, Mailer: m}
}

// POST /api/admin/participant-ids/generate
func (ctrl *ParticipantIDController) Generate(c *fiber.Ctx) error {
	var req dto.GenerateParticipantIDRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var reg model.Registration
	if err := ctrl.DB.First(&reg, "registration_id = ?", req.RegistrationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Registration not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registration")
	}

	id, err := ctrl.Allocator.Generate(c.Context(), &reg)
	if err != nil {
		if errors.Is(err, service.ErrNoCohort) {
			return helper.Error(c, fiber.StatusBadRequest, "Assign a cohort before generating a participant ID")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to generate participant ID")
	}

	if ctrl.Mailer != nil {
		if err := ctrl.Mailer.SendParticipantID(&reg); err != nil {
			log.Printf("⚠️ participant ID mail failed for %s: %v", reg.RegistrationID, err)
		}
	}

	return helper.Success(c, "Participant ID assigned", fiber.Map{
		"registration_id": reg.RegistrationID,
		"participant_id":  id,
	})
}

// POST /api/admin/participant-ids/backfill
// Walks paid registrations without an ID, oldest first, and assigns
// one per row. Rows without a cohort are reported, not failed.
func (ctrl *ParticipantIDController) Backfill(c *fiber.Ctx) error {
	var req dto.BackfillParticipantIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	q := ctrl.DB.
		Where("(registration_participant_id IS NULL OR registration_participant_id = '')")
	if req.IncludePartiallyPaid {
		q = q.Where("registration_fee_paid = ? OR course_fee_paid = ?", true, true)
	} else {
		q = q.Where("registration_fee_paid = ? AND course_fee_paid = ?", true, true)
	}

	var regs []model.Registration
	if err := q.Order("registration_created_at ASC").Find(&regs).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load registrations")
	}

	assigned := make([]fiber.Map, 0, len(regs))
	noCohort := make([]string, 0)
	for i := range regs {
		reg := &regs[i]
		if req.DryRun {
			if reg.RegistrationCohortID == nil {
				noCohort = append(noCohort, reg.RegistrationFullName)
			} else {
				assigned = append(assigned, fiber.Map{
					"registration_id": reg.RegistrationID,
					"full_name":       reg.RegistrationFullName,
				})
			}
			continue
		}

		id, err := ctrl.Allocator.Generate(c.Context(), reg)
		if err != nil {
			if errors.Is(err, service.ErrNoCohort) {
				noCohort = append(noCohort, reg.RegistrationFullName)
				continue
			}
			return helper.Error(c, fiber.StatusInternalServerError, "Backfill stopped: "+err.Error())
		}
		assigned = append(assigned, fiber.Map{
			"registration_id": reg.RegistrationID,
			"full_name":       reg.RegistrationFullName,
			"participant_id":  id,
		})
	}

	return helper.Success(c, "Backfill complete", fiber.Map{
		"dry_run":           req.DryRun,
		"assigned":          assigned,
		"assigned_count":    len(assigned),
		"missing_cohort":    noCohort,
		"missing_cohort_ct": len(noCohort),
	})
}

// POST /api/admin/participant-ids/normalize
func (ctrl *ParticipantIDController) Normalize(c *fiber.Ctx) error {
	var req dto.NormalizeParticipantIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := ctrl.Allocator.NormalizeAll(c.Context(), req.DryRun)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Normalization failed: "+err.Error())
	}
	return helper.Success(c, "Normalization complete", fiber.Map{
		"dry_run": req.DryRun,
		"report":  report,
	})
}

// POST /api/admin/participant-ids/import
// Accepts pre-parsed rows of (full name, participant ID) and matches
// them onto registrations by exact case-insensitive name. The ID is
// canonicalized before assignment; rows whose cohort is unknown are
// rejected per-row.
func (ctrl *ParticipantIDController) Import(c *fiber.Ctx) error {
	var req dto.ImportParticipantIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var cohorts []model.Cohort
	if err := ctrl.DB.Find(&cohorts).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load cohorts")
	}
	codes := make([]string, 0, len(cohorts))
	codeByID := make(map[string]string, len(cohorts))
	for _, co := range cohorts {
		codes = append(codes, co.CohortCode)
		codeByID[co.CohortID.String()] = co.CohortCode
	}

	applied := make([]fiber.Map, 0, len(req.Rows))
	skipped := make([]fiber.Map, 0)
	skip := func(row dto.ImportParticipantIDRow, reason string) {
		skipped = append(skipped, fiber.Map{
			"full_name":      row.FullName,
			"participant_id": row.ParticipantID,
			"reason":         reason,
		})
	}

	for _, row := range req.Rows {
		canonical := service.ParseToCanonical(row.ParticipantID, codes)
		if canonical == "" {
			skip(row, "participant ID does not match any known cohort")
			continue
		}

		var regs []model.Registration
		if err := ctrl.DB.
			Where("LOWER(registration_full_name) = LOWER(?)", strings.TrimSpace(row.FullName)).
			Find(&regs).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Import stopped: "+err.Error())
		}
		switch {
		case len(regs) == 0:
			skip(row, "no registration with this name")
			continue
		case len(regs) > 1:
			skip(row, "name matches more than one registration")
			continue
		}
		reg := regs[0]

		// The ID's cohort must agree with the registration's assignment.
		if reg.RegistrationCohortID != nil {
			idCohort, _, _ := service.ParseParticipantID(canonical, codes)
			if assigned := codeByID[reg.RegistrationCohortID.String()]; assigned != "" && !strings.EqualFold(assigned, idCohort) {
				skip(row, "participant ID cohort does not match the registration's cohort")
				continue
			}
		}

		if reg.RegistrationParticipantID != nil && *reg.RegistrationParticipantID == canonical {
			continue
		}

		var taken int64
		if err := ctrl.DB.Model(&model.Registration{}).
			Where("registration_participant_id = ? AND registration_id <> ?", canonical, reg.RegistrationID).
			Count(&taken).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Import stopped: "+err.Error())
		}
		if taken > 0 {
			skip(row, "participant ID already assigned to someone else")
			continue
		}

		if !req.DryRun {
			if err := ctrl.DB.Model(&model.Registration{}).
				Where("registration_id = ?", reg.RegistrationID).
				Update("registration_participant_id", canonical).Error; err != nil {
				return helper.Error(c, fiber.StatusInternalServerError, "Import stopped: "+err.Error())
			}
		}
		applied = append(applied, fiber.Map{
			"registration_id": reg.RegistrationID,
			"full_name":       reg.RegistrationFullName,
			"participant_id":  canonical,
		})
	}

	return helper.Success(c, "Import complete", fiber.Map{
		"dry_run":       req.DryRun,
		"applied":       applied,
		"applied_count": len(applied),
		"skipped":       skipped,
		"skipped_count": len(skipped),
	})
}
