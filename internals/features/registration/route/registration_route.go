package route

import (
	"github.com/gofiber/fiber/v2"

	regcontroller "aspir_backend/internals/features/registration/controller"
	"aspir_backend/internals/middlewares/auth"
)

// RegistrationRoutes mounts the applicant-facing endpoints.
func RegistrationRoutes(api fiber.Router, reg *regcontroller.RegistrationController) {
	api.Get("/program", reg.ProgramInfo)

	r := api.Group("/registrations")
	r.Post("/", reg.Register)
	r.Get("/lookup", reg.LookupByEmail)
	r.Get("/:id/status", reg.CheckStatus)
}

// RegistrationAdminRoutes mounts the staff surface for registrations,
// the program catalog, and participant-ID operations.
func RegistrationAdminRoutes(api fiber.Router, admin *regcontroller.AdminController, pids *regcontroller.ParticipantIDController) {
	g := api.Group("/admin", auth.StaffOnly())

	g.Get("/stats", admin.Stats)

	g.Get("/registrations", admin.ListRegistrations)
	g.Get("/registrations/:id", admin.GetRegistration)
	g.Patch("/registrations/:id", admin.UpdateRegistration)
	g.Delete("/registrations/:id", admin.DeleteRegistration)
	g.Get("/registrations/:id/transactions", admin.ListTransactions)
	g.Get("/registrations/:id/activities", admin.ListActivities)

	g.Get("/cohorts", admin.ListCohorts)
	g.Post("/cohorts", admin.CreateCohort)
	g.Patch("/cohorts/:id", admin.UpdateCohort)

	g.Get("/dimensions", admin.ListDimensions)
	g.Post("/dimensions", admin.CreateDimension)
	g.Patch("/dimensions/:id", admin.UpdateDimension)

	g.Put("/pricing", admin.UpsertPricing)
	g.Get("/settings", admin.GetSettings)
	g.Put("/settings", admin.UpdateSettings)

	g.Post("/participant-ids/generate", pids.Generate)
	g.Post("/participant-ids/backfill", pids.Backfill)
	g.Post("/participant-ids/normalize", pids.Normalize)
	g.Post("/participant-ids/import", pids.Import)
}
