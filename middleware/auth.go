package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"RiderBross/Models"
)

// CookieName is the cookie holding the session token.
const CookieName = "jwt"

var secretKey = []byte("secret")

// SetSecret replaces the signing key, called once at startup.
func SetSecret(secret string) {
	secretKey = []byte(secret)
}

// IssueToken signs a token for user valid for ttl.
func IssueToken(user Models.User, ttl time.Duration) (string, time.Time, error) {
	expires := time.Now().Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatUint(uint64(user.Id), 10),
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	return token, expires, err
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "No autorizado",
	})
}

// Verify only lets through users holding at least requiredPermission.
// The user is stored in c.Locals("user").
func Verify(requiredPermission int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(CookieName)
		if cookie == "" {
			return unauthorized(c)
		}

		token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secretKey, nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c)
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return unauthorized(c)
		}

		var user Models.User
		if err := Models.DB.Where("id = ?", claims.Issuer).First(&user).Error; err != nil {
			return unauthorized(c)
		}

		c.Locals("user", user)

		// With no specific permission any non-zero permission will do
		if requiredPermission == Models.PermissionNone && user.Permission != Models.PermissionNone {
			return c.Next()
		}
		if requiredPermission != Models.PermissionNone && user.Permission >= requiredPermission {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No tenés permisos para esta sección",
		})
	}
}

// CurrentUser returns the user stored by Verify, or nil.
func CurrentUser(c *fiber.Ctx) *Models.User {
	if user, ok := c.Locals("user").(Models.User); ok {
		return &user
	}
	return nil
}
