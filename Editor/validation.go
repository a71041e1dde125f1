package Editor

import (
	"strings"

	"RiderBross/AbstractFunctions"
	"RiderBross/Models"
	"RiderBross/Photo"
)

// MaxDetails is the most line items a single service may carry.
const MaxDetails = 200

// ValidationError is a user-facing rule violation. Rule is its priority (1 = checked first).
type ValidationError struct {
	Rule    int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrInvalidVehicle       = &ValidationError{1, "Vehículo inválido."}
	ErrMissingDate          = &ValidationError{2, "Fecha de servicio es obligatoria."}
	ErrInvalidKm            = &ValidationError{3, "KM inválido."}
	ErrInvalidRating        = &ValidationError{4, "Calificación inválida."}
	ErrDuplicateServiceType = &ValidationError{5, "No podés repetir el mismo Tipo de Servicio."}
	ErrMissingClient        = &ValidationError{6, "Cliente es obligatorio."}
	ErrHeaderNotReady       = &ValidationError{7, "Completá Vehículo, Cliente y KM Actual antes de cargar detalles."}
	ErrNextDueBelowKm       = &ValidationError{8, "Ningún 'Próximo (km)' puede ser menor que el KM Actual."}
	ErrTooManyDetails       = &ValidationError{9, "Demasiados detalles (máx. 200)."}
)

// ServiceInput is a fully parsed service ready to be checked and stored.
type ServiceInput struct {
	VehicleID int64 `json:"vehicle_id"`
	// ClientID is resolved from the vehicle, never typed in by the user
	ClientID    *uint            `json:"client_id"`
	ServiceDate string           `json:"service_date"`
	Km          *int64           `json:"km"`
	Rating      *int             `json:"rating"`
	Comment     *string          `json:"comment"`
	Details     []DetailInput    `json:"details"`
	Photo       Photo.Attachment `json:"photo"`
}

type DetailInput struct {
	ServiceTypeID  *uint   `json:"service_type_id"`
	NextDueKm      *int64  `json:"next_due_km"`
	Comment        *string `json:"comment"`
	StateID        *uint   `json:"state_id"`
	Recommendation *string `json:"recommendation"`
}

// HeaderReady is the gate for entering line items: vehicle, client and a positive km.
func (in ServiceInput) HeaderReady() bool {
	return in.VehicleID > 0 && in.ClientID != nil && in.Km != nil && *in.Km > 0
}

// Violations returns every broken rule in priority order. It never touches a store.
func Violations(in ServiceInput) []error {
	var errs []error

	if in.VehicleID <= 0 {
		errs = append(errs, ErrInvalidVehicle)
	}
	if strings.TrimSpace(in.ServiceDate) == "" {
		errs = append(errs, ErrMissingDate)
	}
	kmOK := in.Km != nil && *in.Km > 0
	if !kmOK {
		errs = append(errs, ErrInvalidKm)
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		errs = append(errs, ErrInvalidRating)
	}
	if hasDuplicateTypes(in.Details) {
		errs = append(errs, ErrDuplicateServiceType)
	}
	if len(in.Details) > 0 && in.ClientID == nil {
		errs = append(errs, ErrMissingClient)
	}
	if len(in.Details) > 0 && !in.HeaderReady() {
		errs = append(errs, ErrHeaderNotReady)
	}
	if kmOK {
		for _, d := range in.Details {
			if d.NextDueKm != nil && *d.NextDueKm < *in.Km {
				errs = append(errs, ErrNextDueBelowKm)
				break
			}
		}
	}
	if countStored(in.Details) > MaxDetails {
		errs = append(errs, ErrTooManyDetails)
	}

	return errs
}

// Validate returns the highest priority violation, or nil.
func Validate(in ServiceInput) error {
	if errs := Violations(in); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func hasDuplicateTypes(details []DetailInput) bool {
	seen := make(map[uint]struct{}, len(details))
	for _, d := range details {
		if d.ServiceTypeID == nil {
			continue
		}
		if _, ok := seen[*d.ServiceTypeID]; ok {
			return true
		}
		seen[*d.ServiceTypeID] = struct{}{}
	}
	return false
}

func countStored(details []DetailInput) int {
	n := 0
	for _, d := range details {
		if !toDetail(0, d).IsEmpty() {
			n++
		}
	}
	return n
}

// toDetail trims free text and maps a draft onto a storable row.
func toDetail(serviceID uint, d DetailInput) Models.ServiceDetail {
	return Models.ServiceDetail{
		ServiceID:      serviceID,
		ServiceTypeID:  d.ServiceTypeID,
		NextDueKm:      d.NextDueKm,
		Comment:        AbstractFunctions.TrimOrNil(d.Comment),
		StateID:        d.StateID,
		Recommendation: AbstractFunctions.TrimOrNil(d.Recommendation),
	}
}
