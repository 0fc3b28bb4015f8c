package route

import (
	"github.com/gofiber/fiber/v2"

	paycontroller "aspir_backend/internals/features/payments/controller"
	"aspir_backend/internals/middlewares/auth"
)

// PaymentRoutes mounts the public payment surface: checkout
// initiation, the callback verify, and both gateway webhooks.
func PaymentRoutes(api fiber.Router, payments *paycontroller.PaymentController, webhooks *paycontroller.WebhookController) {
	pay := api.Group("/payments")
	pay.Post("/initialize", payments.InitializePayment)
	pay.Post("/registration-fee/:id", payments.PayRegistrationFee)
	pay.Post("/course-fee/:id", payments.PayCourseFee)
	pay.Get("/verify/:reference", payments.VerifyPayment)

	hooks := api.Group("/webhooks")
	hooks.Post("/squad", webhooks.SquadWebhook)
	hooks.Post("/paystack", webhooks.PaystackWebhook)
}

// PaymentAdminRoutes mounts staff-only payment operations.
func PaymentAdminRoutes(api fiber.Router, reconcile *paycontroller.ReconcileController) {
	admin := api.Group("/admin", auth.StaffOnly())
	admin.Post("/payments/reconcile", reconcile.Reconcile)
}
