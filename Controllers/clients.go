package Controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"RiderBross/AbstractFunctions"
	"RiderBross/Models"
)

// ClientController handles client-related API endpoints
type ClientController struct {
	DB *gorm.DB
}

func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{DB: db}
}

type ClientRequest struct {
	Names          string  `json:"names" validate:"required" label:"Nombres"`
	Surnames       string  `json:"surnames" validate:"required" label:"Apellidos"`
	Email          string  `json:"email" validate:"required,email" label:"Email"`
	DNI            int64   `json:"dni" validate:"gt=0" label:"DNI"`
	Phone          int64   `json:"phone" validate:"gt=0" label:"Teléfono"`
	ProvinceID     *uint   `json:"province_id"`
	Locality       *string `json:"locality"`
	Address        *string `json:"address"`
	BirthDate      *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02" label:"Fecha de nacimiento"`
	PrivateComment *string `json:"private_comment"`
}

// normalize upper-cases names, lower-cases the email and nils blank optionals.
func (r *ClientRequest) normalize() {
	r.Names = strings.ToUpper(strings.TrimSpace(r.Names))
	r.Surnames = strings.ToUpper(strings.TrimSpace(r.Surnames))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Locality = AbstractFunctions.TrimOrNil(r.Locality)
	r.Address = AbstractFunctions.TrimOrNil(r.Address)
	r.BirthDate = AbstractFunctions.TrimOrNil(r.BirthDate)
	r.PrivateComment = AbstractFunctions.TrimOrNil(r.PrivateComment)
}

func (r ClientRequest) apply(client *Models.Client) {
	phone := r.Phone
	client.Names = r.Names
	client.Surnames = r.Surnames
	client.Email = r.Email
	client.DNI = r.DNI
	client.Phone = &phone
	client.ProvinceID = r.ProvinceID
	client.Locality = r.Locality
	client.Address = r.Address
	client.PrivateComment = r.PrivateComment
	client.BirthDate = nil
	if r.BirthDate != nil {
		// format already checked by the validator
		t, _ := time.Parse("2006-01-02", *r.BirthDate)
		d := datatypes.Date(t)
		client.BirthDate = &d
	}
}

func (c *ClientController) bind(ctx *fiber.Ctx) (*ClientRequest, error) {
	var req ClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, err
	}
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetClients lists clients by surname
// GET /api/clientes
func (c *ClientController) GetClients(ctx *fiber.Ctx) error {
	var clients []Models.Client
	if err := c.DB.Preload("Province").Order("surnames ASC").Order("names ASC").Find(&clients).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(clients)
}

// GetClient GET /api/clientes/:id
func (c *ClientController) GetClient(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var client Models.Client
	if err := c.DB.Preload("Province").First(&client, id).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(client)
}

// CreateClient POST /api/clientes
func (c *ClientController) CreateClient(ctx *fiber.Ctx) error {
	req, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var client Models.Client
	req.apply(&client)
	if err := c.DB.Create(&client).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(client)
}

// UpdateClient PUT /api/clientes/:id
func (c *ClientController) UpdateClient(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}
	req, err := c.bind(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var client Models.Client
	if err := c.DB.First(&client, id).Error; err != nil {
		return respondError(ctx, err)
	}
	req.apply(&client)
	// Save writes nil optionals as NULL, Updates would skip them
	if err := c.DB.Omit("Province").Save(&client).Error; err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(client)
}

// DeleteClient DELETE /api/clientes/:id
func (c *ClientController) DeleteClient(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	result := c.DB.Delete(&Models.Client{}, id)
	if result.Error != nil {
		return respondError(ctx, result.Error)
	}
	if result.RowsAffected == 0 {
		return respondError(ctx, gorm.ErrRecordNotFound)
	}
	return ctx.JSON(fiber.Map{"message": "Cliente eliminado"})
}
