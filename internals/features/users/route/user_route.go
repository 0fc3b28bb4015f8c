package route

import (
	"github.com/gofiber/fiber/v2"

	usercontroller "aspir_backend/internals/features/users/controller"
	"aspir_backend/internals/middlewares/auth"
)

func UserRoutes(api fiber.Router, authCtrl *usercontroller.AuthController) {
	api.Post("/auth/login", authCtrl.Login)
	api.Get("/admin/me", auth.StaffOnly(), authCtrl.Me)
}
