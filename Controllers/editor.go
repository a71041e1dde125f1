package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"RiderBross/Editor"
	"RiderBross/Photo"
	"RiderBross/middleware"
)

// EditorController drives server side service editor sessions.
type EditorController struct {
	Manager *Editor.Manager
}

func NewEditorController(manager *Editor.Manager) *EditorController {
	return &EditorController{Manager: manager}
}

// sessionView is what the form renders.
type sessionView struct {
	*Editor.Session
	Title        string              `json:"title"`
	HeaderReady  bool                `json:"header_ready"`
	Groups       []Editor.DraftGroup `json:"groups"`
	PhotoPreview string              `json:"photo_preview"`
	VehicleLabel string              `json:"vehicle_label,omitempty"`
	ClientName   string              `json:"client_name,omitempty"`
	Address      string              `json:"client_address,omitempty"`
	Violations   []string            `json:"violations"`
}

func view(s *Editor.Session) sessionView {
	v := sessionView{
		Session:      s,
		Title:        s.Title(),
		HeaderReady:  s.HeaderReady(),
		Groups:       s.Groups(),
		PhotoPreview: s.Photo.Preview(),
		Violations:   []string{},
	}
	if s.VehicleID != nil {
		if vehicle := s.Refs.Vehicle(*s.VehicleID); vehicle != nil {
			v.VehicleLabel = s.Refs.VehicleLabel(*vehicle)
		}
	}
	v.Address = "—"
	if s.ClientID != nil {
		if client := s.Refs.Client(*s.ClientID); client != nil {
			v.ClientName = client.FullName()
			v.Address = s.Refs.ClientAddress(*client)
		}
	}
	for _, err := range Editor.Violations(s.Input()) {
		v.Violations = append(v.Violations, err.Error())
	}
	return v
}

func (c *EditorController) update(ctx *fiber.Ctx, fn func(*Editor.Session) error) error {
	s, err := c.Manager.Update(ctx.UserContext(), ctx.Params("session"), fn)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(view(s))
}

type openRequest struct {
	ServiceID *uint `json:"service_id"`
}

// Open POST /api/editor/sessions
func (c *EditorController) Open(ctx *fiber.Ctx) error {
	var req openRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return badRequest(ctx, err)
		}
	}

	s, err := c.Manager.Open(ctx.UserContext(), req.ServiceID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(view(s))
}

// Get GET /api/editor/sessions/:session
func (c *EditorController) Get(ctx *fiber.Ctx) error {
	s, err := c.Manager.Get(ctx.UserContext(), ctx.Params("session"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(view(s))
}

// SetHeader PATCH /api/editor/sessions/:session/header
func (c *EditorController) SetHeader(ctx *fiber.Ctx) error {
	var patch Editor.HeaderPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return badRequest(ctx, err)
	}
	return c.update(ctx, func(s *Editor.Session) error {
		s.SetHeader(patch)
		return nil
	})
}

// AddItem POST /api/editor/sessions/:session/items
func (c *EditorController) AddItem(ctx *fiber.Ctx) error {
	var partial *Editor.DraftPatch
	if len(ctx.Body()) > 0 {
		partial = &Editor.DraftPatch{}
		if err := ctx.BodyParser(partial); err != nil {
			return badRequest(ctx, err)
		}
	}
	return c.update(ctx, func(s *Editor.Session) error {
		_, err := s.AddLineItem(partial)
		return err
	})
}

type bulkRequest struct {
	ServiceTypeIDs []uint `json:"service_type_ids"`
}

// BulkAdd POST /api/editor/sessions/:session/items/bulk
func (c *EditorController) BulkAdd(ctx *fiber.Ctx) error {
	var req bulkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, err)
	}
	return c.update(ctx, func(s *Editor.Session) error {
		s.BulkAdd(req.ServiceTypeIDs)
		return nil
	})
}

// Duplicate POST /api/editor/sessions/:session/items/:key/duplicate
func (c *EditorController) Duplicate(ctx *fiber.Ctx) error {
	key := ctx.Params("key")
	return c.update(ctx, func(s *Editor.Session) error {
		_, err := s.Duplicate(key)
		return err
	})
}

// PatchItem PATCH /api/editor/sessions/:session/items/:key
func (c *EditorController) PatchItem(ctx *fiber.Ctx) error {
	var patch Editor.DraftPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return badRequest(ctx, err)
	}
	key := ctx.Params("key")
	return c.update(ctx, func(s *Editor.Session) error {
		_, err := s.Patch(key, patch)
		return err
	})
}

// RemoveItem DELETE /api/editor/sessions/:session/items/:key
func (c *EditorController) RemoveItem(ctx *fiber.Ctx) error {
	key := ctx.Params("key")
	return c.update(ctx, func(s *Editor.Session) error {
		return s.Remove(key)
	})
}

// UploadPhoto PUT /api/editor/sessions/:session/photo (multipart field "photo")
func (c *EditorController) UploadPhoto(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("photo")
	if err != nil {
		return badRequest(ctx, Photo.ErrUnprocessable)
	}
	file, err := header.Open()
	if err != nil {
		return respondError(ctx, Photo.ErrUnprocessable)
	}
	defer file.Close()

	enc, err := Photo.Capture(file, header.Size)
	if err != nil {
		return respondError(ctx, err)
	}
	return c.update(ctx, func(s *Editor.Session) error {
		s.AttachPhoto(enc)
		return nil
	})
}

// ClearPhoto DELETE /api/editor/sessions/:session/photo
func (c *EditorController) ClearPhoto(ctx *fiber.Ctx) error {
	return c.update(ctx, func(s *Editor.Session) error {
		s.ClearPhoto()
		return nil
	})
}

// Validate GET /api/editor/sessions/:session/validate
func (c *EditorController) Validate(ctx *fiber.Ctx) error {
	s, err := c.Manager.Get(ctx.UserContext(), ctx.Params("session"))
	if err != nil {
		return respondError(ctx, err)
	}
	if err := Editor.Validate(s.Input()); err != nil {
		return badRequest(ctx, err)
	}
	return ctx.JSON(fiber.Map{"valid": true})
}

// Submit POST /api/editor/sessions/:session/submit
func (c *EditorController) Submit(ctx *fiber.Ctx) error {
	id, err := c.Manager.Submit(ctx.UserContext(), ctx.Params("session"), middleware.CurrentUser(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"id": id})
}

// Discard DELETE /api/editor/sessions/:session
func (c *EditorController) Discard(ctx *fiber.Ctx) error {
	if err := c.Manager.Discard(ctx.UserContext(), ctx.Params("session")); err != nil {
		return respondError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
