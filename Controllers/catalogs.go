package Controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type labeled[T any] interface {
	*T
	SetLabel(string)
}

// CatalogController serves a lookup table with a single text column
// (brands, provinces, states, service categories).
type CatalogController[T any, PT labeled[T]] struct {
	DB *gorm.DB
	// Column is the text column, used for ordering
	Column string
}

func NewCatalogController[T any, PT labeled[T]](db *gorm.DB, column string) *CatalogController[T, PT] {
	return &CatalogController[T, PT]{DB: db, Column: column}
}

type CatalogRequest struct {
	Value string `json:"value" validate:"required,max=120" label:"Descripción"`
}

func (c *CatalogController[T, PT]) bind(ctx *fiber.Ctx) (string, error) {
	var req CatalogRequest
	if err := ctx.BodyParser(&req); err != nil {
		return "", err
	}
	req.Value = strings.TrimSpace(req.Value)
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return req.Value, nil
}

func (c *CatalogController[T, PT]) List(ctx *fiber.Ctx) error {
	var items []T
	if err := c.DB.Order(c.Column + " ASC").Find(&items).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(items)
}

func (c *CatalogController[T, PT]) Create(ctx *fiber.Ctx) error {
	value, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	item := PT(new(T))
	item.SetLabel(value)
	if err := c.DB.Create(item).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(item)
}

func (c *CatalogController[T, PT]) Update(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}
	value, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	item := PT(new(T))
	if err := c.DB.First(item, id).Error; err != nil {
		return respondError(ctx, err)
	}
	item.SetLabel(value)
	if err := c.DB.Save(item).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(item)
}

func (c *CatalogController[T, PT]) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	result := c.DB.Delete(PT(new(T)), id)
	if result.Error != nil {
		return respondError(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return respondError(ctx, gorm.ErrRecordNotFound)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
