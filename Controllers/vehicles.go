package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"RiderBross/AbstractFunctions"
	"RiderBross/Models"
)

// VehicleController handles vehicle-related API endpoints
type VehicleController struct {
	DB *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{DB: db}
}

type VehicleRequest struct {
	Plate          string  `json:"plate" validate:"required" label:"Patente"`
	BrandID        *uint   `json:"brand_id"`
	Model          *string `json:"model"`
	Year           *string `json:"year"`
	CurrentKm      *string `json:"current_km"`
	ClientID       *uint   `json:"client_id"`
	PrivateComment *string `json:"private_comment"`
}

func (r VehicleRequest) apply(vehicle *Models.Vehicle) {
	vehicle.Plate = r.Plate
	vehicle.BrandID = r.BrandID
	vehicle.ModelName = AbstractFunctions.TrimOrNil(r.Model)
	vehicle.Year = AbstractFunctions.TrimOrNil(r.Year)
	vehicle.ClientID = r.ClientID
	vehicle.PrivateComment = AbstractFunctions.TrimOrNil(r.PrivateComment)
	vehicle.CurrentKm = 0
	if r.CurrentKm != nil {
		if km := AbstractFunctions.ParseKm(*r.CurrentKm); km != nil {
			vehicle.CurrentKm = *km
		}
	}
}

func (c *VehicleController) bind(ctx *fiber.Ctx) (*VehicleRequest, error) {
	var req VehicleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, err
	}
	req.Plate = AbstractFunctions.FormatPlate(req.Plate)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetVehicles GET /api/vehiculos
func (c *VehicleController) GetVehicles(ctx *fiber.Ctx) error {
	var vehicles []Models.Vehicle
	if err := c.DB.Preload("Brand").Preload("Client").Order("plate ASC").Find(&vehicles).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(vehicles)
}

// GetVehicle GET /api/vehiculos/:id
func (c *VehicleController) GetVehicle(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var vehicle Models.Vehicle
	if err := c.DB.Preload("Brand").Preload("Client").First(&vehicle, id).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(vehicle)
}

// CreateVehicle POST /api/vehiculos
func (c *VehicleController) CreateVehicle(ctx *fiber.Ctx) error {
	req, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var vehicle Models.Vehicle
	req.apply(&vehicle)
	if err := c.DB.Create(&vehicle).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(vehicle)
}

// UpdateVehicle PUT /api/vehiculos/:id
func (c *VehicleController) UpdateVehicle(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}
	req, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var vehicle Models.Vehicle
	if err := c.DB.First(&vehicle, id).Error; err != nil {
		return respondError(ctx, err)
	}
	req.apply(&vehicle)
	if err := c.DB.Omit("Brand", "Client").Save(&vehicle).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(vehicle)
}

// DeleteVehicle DELETE /api/vehiculos/:id
func (c *VehicleController) DeleteVehicle(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	// plates are unique, a soft-deleted row would block re-registering it
	result := c.DB.Unscoped().Delete(&Models.Vehicle{}, id)
	if result.Error != nil {
		return respondError(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return respondError(ctx, gorm.ErrRecordNotFound)
	}
	return ctx.JSON(fiber.Map{"message": "Vehículo eliminado"})
}
