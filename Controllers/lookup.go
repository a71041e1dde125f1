package Controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"RiderBross/AbstractFunctions"
	"RiderBross/Store"
)

var (
	ErrPlateLength  = errors.New("La patente debe tener entre 6 y 8 caracteres")
	ErrPlateMissing = errors.New("No se encontró ninguna motocicleta con esa patente")
)

// LookupController is the public service history lookup by plate.
type LookupController struct {
	Store *Store.GormStore
}

func NewLookupController(store *Store.GormStore) *LookupController {
	return &LookupController{Store: store}
}

type HistoryDetail struct {
	ServiceType    string  `json:"service_type"`
	State          string  `json:"state"`
	NextDueKm      string  `json:"next_due_km"`
	Comment        *string `json:"comment"`
	Recommendation *string `json:"recommendation"`
}

type HistoryEntry struct {
	ID          uint            `json:"id"`
	ServiceDate string          `json:"service_date"`
	Km          string          `json:"km"`
	Rating      *int            `json:"rating"`
	Comment     *string         `json:"comment"`
	Details     []HistoryDetail `json:"details"`
}

type VehicleHistory struct {
	Plate     string         `json:"plate"`
	Brand     string         `json:"brand"`
	Model     string         `json:"model"`
	Year      string         `json:"year"`
	CurrentKm string         `json:"current_km"`
	Services  []HistoryEntry `json:"services"`
}

// History normalises the plate and loads the vehicle with its services,
// newest first. Private comments are never exposed.
func (c *LookupController) History(ctx *fiber.Ctx, plate string) (*VehicleHistory, error) {
	clean := AbstractFunctions.CleanPlate(plate)
	if len(clean) < 6 || len(clean) > 8 {
		return nil, ErrPlateLength
	}

	vehicle, err := c.Store.VehicleByPlate(ctx.UserContext(), AbstractFunctions.FormatPlate(clean))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlateMissing
	}
	if err != nil {
		return nil, err
	}

	services, err := c.Store.ServiceHistory(ctx.UserContext(), vehicle.ID)
	if err != nil {
		return nil, err
	}

	history := &VehicleHistory{
		Plate:     vehicle.Plate,
		CurrentKm: AbstractFunctions.FormatKmInt(vehicle.CurrentKm),
		Services:  make([]HistoryEntry, 0, len(services)),
	}
	if vehicle.Brand != nil {
		history.Brand = vehicle.Brand.Description
	}
	if vehicle.ModelName != nil {
		history.Model = *vehicle.ModelName
	}
	if vehicle.Year != nil {
		history.Year = *vehicle.Year
	}

	for _, s := range services {
		entry := HistoryEntry{
			ID:          s.ID,
			ServiceDate: time.Time(s.ServiceDate).Format("02/01/2006"),
			Km:          AbstractFunctions.FormatKmInt(s.Km),
			Rating:      s.Rating,
			Comment:     s.Comment,
			Details:     make([]HistoryDetail, 0, len(s.Details)),
		}
		for _, d := range s.Details {
			detail := HistoryDetail{Comment: d.Comment, Recommendation: d.Recommendation}
			if d.ServiceType != nil {
				detail.ServiceType = d.ServiceType.Name
			}
			if d.State != nil {
				detail.State = d.State.Description
			}
			if d.NextDueKm != nil {
				detail.NextDueKm = AbstractFunctions.FormatKmInt(*d.NextDueKm)
			}
			entry.Details = append(entry.Details, detail)
		}
		history.Services = append(history.Services, entry)
	}
	return history, nil
}

func lookupStatus(err error) int {
	switch {
	case errors.Is(err, ErrPlateLength):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrPlateMissing):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// GetHistory GET /api/consulta/:patente
func (c *LookupController) GetHistory(ctx *fiber.Ctx) error {
	history, err := c.History(ctx, ctx.Params("patente"))
	if err != nil {
		return ctx.Status(lookupStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(history)
}

// RenderHistory GET /consulta/:patente
func (c *LookupController) RenderHistory(ctx *fiber.Ctx) error {
	history, err := c.History(ctx, ctx.Params("patente"))
	if err != nil {
		return ctx.Status(lookupStatus(err)).Render("consulta", fiber.Map{
			"Error": err.Error(),
		})
	}
	return ctx.Render("consulta", fiber.Map{
		"History": history,
	})
}
