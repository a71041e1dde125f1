package Controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"RiderBross/Editor"
	"RiderBross/Photo"
)

func parseID(ctx *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, Editor.ErrInvalidID
	}
	return uint(id), nil
}

func badRequest(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func notFound(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

// respondError maps an error to its status code. Store errors are reported
// verbatim with 500.
func respondError(ctx *fiber.Ctx, err error) error {
	var validation *Editor.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, Editor.ErrInvalidID),
		errors.Is(err, Editor.ErrInvalidDate),
		errors.Is(err, Editor.ErrDraftNotFound),
		errors.Is(err, Photo.ErrStillTooLarge),
		errors.Is(err, Photo.ErrUnprocessable):
		return badRequest(ctx, err)
	case errors.Is(err, Photo.ErrTooHeavy):
		return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, Editor.ErrNotAuthorized):
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, Editor.ErrSessionNotFound):
		return notFound(ctx, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(ctx, "Registro inexistente")
	case isUniqueViolation(err):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
