package Controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"RiderBross/Models"
	"RiderBross/middleware"
)

type AuthController struct {
	DB       *gorm.DB
	TokenTTL time.Duration
}

func NewAuthController(db *gorm.DB, ttl time.Duration) *AuthController {
	return &AuthController{DB: db, TokenTTL: ttl}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Contraseña"`
}

// Login checks the password and sets the jwt cookie
// POST /api/login
func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var req LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return badRequest(ctx, err)
	}

	var user Models.User
	if err := c.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Email o contraseña incorrectos"})
	}
	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(req.Password)); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Email o contraseña incorrectos"})
	}

	token, expires, err := middleware.IssueToken(user, c.TokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("could not sign token")
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo iniciar sesión"})
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return ctx.JSON(fiber.Map{"message": "ok", "user": user})
}

// Logout expires the cookie
// POST /api/logout
func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "ok"})
}

// User returns the logged in user
// GET /api/user
func (c *AuthController) User(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No autorizado"})
	}
	return ctx.JSON(user)
}

// CreateAdmin stores a new administrator with a bcrypt hashed password.
func CreateAdmin(db *gorm.DB, name, email, password string) (*Models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := Models.User{
		Name:       name,
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Password:   hash,
		Permission: Models.PermissionAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
