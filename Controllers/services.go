package Controllers

import (
	"bytes"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"RiderBross/Editor"
	"RiderBross/Photo"
	"RiderBross/Store"
	"RiderBross/middleware"
)

// ServiceController exposes service records. Writes go through the editor's
// submission pipeline.
type ServiceController struct {
	Store     *Store.GormStore
	Submitter *Editor.Submitter
}

func NewServiceController(store *Store.GormStore, submitter *Editor.Submitter) *ServiceController {
	return &ServiceController{Store: store, Submitter: submitter}
}

// ServiceRequest is a whole service in one payload.
type ServiceRequest struct {
	VehicleID   int64                `json:"vehicle_id"`
	ServiceDate string               `json:"service_date"`
	Km          *int64               `json:"km"`
	Rating      *int                 `json:"rating"`
	Comment     *string              `json:"comment"`
	Details     []Editor.DetailInput `json:"details"`
	// PhotoAction is keep (default), set or clear
	PhotoAction string `json:"photo_action"`
	// PhotoBase64 is the image for set, plain base64 or a data: URL
	PhotoBase64 string `json:"photo_base64"`
}

func (c *ServiceController) input(ctx *fiber.Ctx) (Editor.ServiceInput, error) {
	var req ServiceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return Editor.ServiceInput{}, err
	}

	in := Editor.ServiceInput{
		VehicleID:   req.VehicleID,
		ServiceDate: req.ServiceDate,
		Km:          req.Km,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Details:     req.Details,
		Photo:       Photo.NewAttachment(),
	}

	// The client always follows the vehicle
	if req.VehicleID > 0 {
		clientID, err := c.Store.VehicleClientID(ctx.UserContext(), uint(req.VehicleID))
		if err != nil {
			return in, err
		}
		in.ClientID = clientID
	}

	switch Photo.Intent(req.PhotoAction) {
	case Photo.IntentClear:
		in.Photo.Clear()
	case Photo.IntentSet:
		enc, err := capturePhoto(req.PhotoBase64)
		if err != nil {
			return in, err
		}
		in.Photo.Set(enc)
	}
	return in, nil
}

// capturePhoto re-compresses an uploaded base64 image so stored photos
// always respect the size ceiling.
func capturePhoto(payload string) (*Photo.Encoded, error) {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(raw) == 0 {
		return nil, Photo.ErrUnprocessable
	}
	return Photo.Capture(bytes.NewReader(raw), int64(len(raw)))
}

// GetServices lists services newest first
// GET /api/servicios
func (c *ServiceController) GetServices(ctx *fiber.Ctx) error {
	services, err := c.Store.ListServices(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}

	rows := make([]ServiceRow, 0, len(services))
	for _, s := range services {
		rows = append(rows, toServiceRow(s))
	}
	return ctx.JSON(rows)
}

// GetService returns one service with its details and photo preview
// GET /api/servicios/:id
func (c *ServiceController) GetService(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	service, err := c.Store.GetService(ctx.UserContext(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	photo := Photo.NewAttachment()
	if service.Photo != nil {
		photo.Hydrate(*service.Photo)
	}

	return ctx.JSON(fiber.Map{
		"data":  service,
		"photo": photo.Preview(),
	})
}

// CreateService POST /api/servicios
func (c *ServiceController) CreateService(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return respondError(ctx, Editor.ErrNotAuthorized)
	}

	in, err := c.input(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	id, err := c.Submitter.Create(ctx.UserContext(), user, in)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// UpdateService PUT /api/servicios/:id
func (c *ServiceController) UpdateService(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return respondError(ctx, Editor.ErrNotAuthorized)
	}
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	in, err := c.input(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := c.Submitter.Update(ctx.UserContext(), user, int64(id), in); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"id": id})
}

// DeleteService DELETE /api/servicios/:id
func (c *ServiceController) DeleteService(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}
	if err := c.Store.DeleteService(ctx.UserContext(), id); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Servicio eliminado"})
}

// ExportServices downloads the service list as xlsx
// GET /api/servicios/export
func (c *ServiceController) ExportServices(ctx *fiber.Ctx) error {
	services, err := c.Store.ListServices(ctx.UserContext())
	if err != nil {
		return respondError(ctx, err)
	}

	rows := make([]ServiceRow, 0, len(services))
	for _, s := range services {
		rows = append(rows, toServiceRow(s))
	}

	buf, err := servicesWorkbook(rows)
	if err != nil {
		return respondError(ctx, err)
	}

	filename := "servicios-" + time.Now().Format("2006-01-02") + ".xlsx"
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Send(buf.Bytes())
}
