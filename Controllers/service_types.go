package Controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"RiderBross/AbstractFunctions"
	"RiderBross/Editor"
	"RiderBross/Models"
)

// ServiceTypeController handles the service type catalog
type ServiceTypeController struct {
	DB *gorm.DB
}

func NewServiceTypeController(db *gorm.DB) *ServiceTypeController {
	return &ServiceTypeController{DB: db}
}

type ServiceTypeRequest struct {
	Name       string  `json:"name" validate:"required,max=255" label:"Nombre"`
	Reference  *string `json:"reference" validate:"omitempty,max=255" label:"Referencia"`
	CategoryID *uint   `json:"category_id"`
}

func (c *ServiceTypeController) bind(ctx *fiber.Ctx) (*ServiceTypeRequest, error) {
	var req ServiceTypeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Reference = AbstractFunctions.TrimOrNil(req.Reference)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetServiceTypes lists types grouped by category, the order the editor uses
// GET /api/tipos-servicio
func (c *ServiceTypeController) GetServiceTypes(ctx *fiber.Ctx) error {
	var types []Models.ServiceType
	if err := c.DB.Preload("Category").Find(&types).Error; err != nil {
		return respondError(ctx, err)
	}

	options := make([]Editor.TypeOption, 0, len(types))
	for _, t := range types {
		opt := Editor.TypeOption{ID: t.ID, Name: t.Name, Reference: t.Reference, CategoryID: t.CategoryID}
		if t.Category != nil {
			name := t.Category.Name
			opt.CategoryName = &name
		}
		options = append(options, opt)
	}
	Editor.SortTypeOptions(options)
	return ctx.JSON(options)
}

// GetServiceType GET /api/tipos-servicio/:id
func (c *ServiceTypeController) GetServiceType(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var serviceType Models.ServiceType
	if err := c.DB.Preload("Category").First(&serviceType, id).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serviceType)
}

// CreateServiceType POST /api/tipos-servicio
func (c *ServiceTypeController) CreateServiceType(ctx *fiber.Ctx) error {
	req, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	serviceType := Models.ServiceType{Name: req.Name, Reference: req.Reference, CategoryID: req.CategoryID}
	if err := c.DB.Create(&serviceType).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serviceType)
}

// UpdateServiceType PUT /api/tipos-servicio/:id
func (c *ServiceTypeController) UpdateServiceType(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}
	req, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var serviceType Models.ServiceType
	if err := c.DB.First(&serviceType, id).Error; err != nil {
		return respondError(ctx, err)
	}
	serviceType.Name = req.Name
	serviceType.Reference = req.Reference
	serviceType.CategoryID = req.CategoryID
	if err := c.DB.Omit("Category").Save(&serviceType).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serviceType)
}

// DeleteServiceType DELETE /api/tipos-servicio/:id
func (c *ServiceTypeController) DeleteServiceType(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	result := c.DB.Delete(&Models.ServiceType{}, id)
	if result.Error != nil {
		return respondError(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return respondError(ctx, gorm.ErrRecordNotFound)
	}
	return ctx.JSON(fiber.Map{"message": "Tipo de servicio eliminado"})
}
