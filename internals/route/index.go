package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"aspir_backend/internals/configs"
	paycontroller "aspir_backend/internals/features/payments/controller"
	payroute "aspir_backend/internals/features/payments/route"
	payservice "aspir_backend/internals/features/payments/service"
	regcontroller "aspir_backend/internals/features/registration/controller"
	regroute "aspir_backend/internals/features/registration/route"
	regservice "aspir_backend/internals/features/registration/service"
	usercontroller "aspir_backend/internals/features/users/controller"
	userroute "aspir_backend/internals/features/users/route"
	"aspir_backend/internals/mailer"
)

// SetupRoutes builds the service graph and mounts every feature
// under /api.
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client) {
	cfg := configs.App()

	squad := payservice.NewSquadClient(cfg.SquadBaseURL, cfg.SquadSecretKey)
	rates := payservice.NewExchangeRates(rdb, cfg.USDToNGNRate)
	allocator := regservice.NewAllocator(db)
	mail := mailer.New(cfg)
	reconciler := payservice.NewReconciler(db, rates, allocator, mail)

	payments := paycontroller.NewPaymentController(db, squad, rates, reconciler)
	webhooks := paycontroller.NewWebhookController(db, reconciler)
	reconcile := paycontroller.NewReconcileController(db, squad, reconciler)

	registrations := regcontroller.NewRegistrationController(db, mail)
	admin := regcontroller.NewAdminController(db)
	participantIDs := regcontroller.NewParticipantIDController(db, allocator, mail)

	authCtrl := usercontroller.NewAuthController(db)

	api := app.Group("/api")
	regroute.RegistrationRoutes(api, registrations)
	regroute.RegistrationAdminRoutes(api, admin, participantIDs)
	payroute.PaymentRoutes(api, payments, webhooks)
	payroute.PaymentAdminRoutes(api, reconcile)
	userroute.UserRoutes(api, authCtrl)
}
