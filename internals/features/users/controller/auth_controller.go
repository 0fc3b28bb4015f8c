package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"aspir_backend/internals/configs"
	"aspir_backend/internals/features/users/model"
	helper "aspir_backend/internals/helpers"
	"aspir_backend/internals/middlewares/auth"
)

var validate = validator.New()

const tokenTTL = 12 * time.Hour

/* =========================================================
   AuthController: staff login
========================================================= */

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// POST /api/auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var user model.StaffUser
	err := ctrl.DB.Where("user_email = LOWER(?) AND user_is_active = ?", strings.TrimSpace(req.Email), true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.CheckPassword(req.Password)) {
		// Same message for unknown email and wrong password.
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Login failed")
	}

	now := time.Now()
	claims := auth.StaffClaims{
		UserID:  user.UserID.String(),
		Email:   user.UserEmail,
		IsStaff: user.UserIsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Subject:   user.UserID.String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(configs.App().JWTSecret))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	return helper.Success(c, "Login successful", fiber.Map{
		"token":      token,
		"expires_in": int(tokenTTL.Seconds()),
		"user": fiber.Map{
			"user_id":    user.UserID,
			"user_name":  user.UserName,
			"user_email": user.UserEmail,
		},
	})
}

// GET /api/admin/me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	var user model.StaffUser
	if err := ctrl.DB.First(&user, "user_id = ?", c.Locals("staff_user_id")).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "User not found")
	}
	return helper.Success(c, "OK", user)
}
