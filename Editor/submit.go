package Editor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"RiderBross/AbstractFunctions"
	"RiderBross/Models"
)

var (
	ErrNotAuthorized = errors.New("No autorizado")
	ErrInvalidID     = errors.New("ID inválido")
	ErrInvalidDate   = errors.New("Fecha de servicio inválida.")
)

// Submitter runs the validate-then-store pipeline for service records.
type Submitter struct {
	store  ServiceStore
	atomic bool
}

type SubmitterOption func(*Submitter)

// WithAtomicReplace runs the header write and the detail replacement in one
// transaction when the store supports it.
func WithAtomicReplace(enabled bool) SubmitterOption {
	return func(s *Submitter) {
		s.atomic = enabled
	}
}

func NewSubmitter(store ServiceStore, opts ...SubmitterOption) *Submitter {
	s := &Submitter{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new service and its non-empty details, returning the new id.
func (s *Submitter) Create(ctx context.Context, user *Models.User, in ServiceInput) (uint, error) {
	if user == nil {
		return 0, ErrNotAuthorized
	}
	if err := Validate(in); err != nil {
		return 0, err
	}
	date, err := parseServiceDate(in.ServiceDate)
	if err != nil {
		return 0, err
	}
	photo, _, err := in.Photo.StoredValue()
	if err != nil {
		return 0, err
	}

	var serviceID uint
	err = s.run(ctx, func(store ServiceStore) error {
		clientID, err := store.VehicleClientID(ctx, uint(in.VehicleID))
		if err != nil {
			return err
		}

		service := Models.Service{
			VehicleID:   uint(in.VehicleID),
			ClientID:    clientID,
			ServiceDate: date,
			Km:          *in.Km,
			Rating:      in.Rating,
			Comment:     AbstractFunctions.TrimOrNil(in.Comment),
			Photo:       photo,
		}
		if err := store.InsertService(ctx, &service); err != nil {
			return err
		}
		serviceID = service.ID

		return insertDetails(ctx, store, service.ID, in.Details)
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint("service_id", serviceID).Uint("user_id", user.Id).Msg("service created")
	return serviceID, nil
}

// Update rewrites the header of service id and replaces all of its details.
func (s *Submitter) Update(ctx context.Context, user *Models.User, id int64, in ServiceInput) error {
	if user == nil {
		return ErrNotAuthorized
	}
	if id <= 0 {
		return ErrInvalidID
	}
	if err := Validate(in); err != nil {
		return err
	}
	date, err := parseServiceDate(in.ServiceDate)
	if err != nil {
		return err
	}
	photo, photoChanged, err := in.Photo.StoredValue()
	if err != nil {
		return err
	}

	serviceID := uint(id)
	err = s.run(ctx, func(store ServiceStore) error {
		clientID, err := store.VehicleClientID(ctx, uint(in.VehicleID))
		if err != nil {
			return err
		}

		fields := map[string]interface{}{
			"vehicle_id":   uint(in.VehicleID),
			"client_id":    clientID,
			"service_date": date,
			"km":           *in.Km,
			"rating":       in.Rating,
			"comment":      AbstractFunctions.TrimOrNil(in.Comment),
		}
		if photoChanged {
			fields["photo"] = photo
		}
		if err := store.UpdateService(ctx, serviceID, fields); err != nil {
			return err
		}

		// replace-all: old details never survive an update
		if err := store.DeleteServiceDetails(ctx, serviceID); err != nil {
			return err
		}
		return insertDetails(ctx, store, serviceID, in.Details)
	})
	if err != nil {
		return err
	}

	log.Info().Uint("service_id", serviceID).Uint("user_id", user.Id).Msg("service updated")
	return nil
}

func (s *Submitter) run(ctx context.Context, fn func(ServiceStore) error) error {
	if s.atomic {
		if tx, ok := s.store.(TxServiceStore); ok {
			return tx.Transaction(ctx, fn)
		}
		log.Warn().Msg("atomic replace requested but the store has no transactions")
	}
	return fn(s.store)
}

// StoredDetails drops empty drafts and numbers the rest in display order.
func StoredDetails(serviceID uint, details []DetailInput) []Models.ServiceDetail {
	var rows []Models.ServiceDetail
	for _, d := range details {
		row := toDetail(serviceID, d)
		if row.IsEmpty() {
			continue
		}
		row.ItemOrder = len(rows) + 1
		rows = append(rows, row)
	}
	return rows
}

func insertDetails(ctx context.Context, store ServiceStore, serviceID uint, details []DetailInput) error {
	rows := StoredDetails(serviceID, details)
	if len(rows) == 0 {
		return nil
	}
	return store.InsertServiceDetails(ctx, rows)
}

func parseServiceDate(value string) (datatypes.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return datatypes.Date{}, ErrInvalidDate
	}
	return datatypes.Date(t), nil
}
