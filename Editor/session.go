package Editor

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"RiderBross/AbstractFunctions"
	"RiderBross/Models"
	"RiderBross/Photo"
)

// Session is the server side state of one open service editor.
type Session struct {
	ID string `json:"id"`
	// ServiceID is set when an existing service is being edited
	ServiceID   *uint            `json:"service_id"`
	VehicleID   *uint            `json:"vehicle_id"`
	ClientID    *uint            `json:"client_id"`
	ServiceDate string           `json:"service_date"`
	Km          string           `json:"km"`
	Rating      *int             `json:"rating"`
	Comment     string           `json:"comment"`
	Drafts      []Draft          `json:"drafts"`
	Photo       Photo.Attachment `json:"photo"`
	Refs        ReferenceData    `json:"refs"`
	// LoadError is the reference data failure shown above the form, if any
	LoadError string `json:"load_error,omitempty"`
}

// HeaderPatch changes only the header fields that are set.
type HeaderPatch struct {
	VehicleID    *uint   `json:"vehicle_id"`
	ClearVehicle bool    `json:"clear_vehicle"`
	ServiceDate  *string `json:"service_date"`
	Km           *string `json:"km"`
	Rating       *int    `json:"rating"`
	ClearRating  bool    `json:"clear_rating"`
	Comment      *string `json:"comment"`
}

// NewSession opens a blank editor dated today.
func NewSession(refs ReferenceData, loadErr error) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		ServiceDate: time.Now().Format("2006-01-02"),
		Photo:       Photo.NewAttachment(),
		Refs:        refs,
	}
	if loadErr != nil {
		s.LoadError = loadErr.Error()
	}
	return s
}

// SessionFromService opens the editor on a stored service and its details.
func SessionFromService(service *Models.Service, refs ReferenceData, loadErr error) (*Session, error) {
	s := NewSession(refs, loadErr)

	id := service.ID
	vehicleID := service.VehicleID
	s.ServiceID = &id
	s.VehicleID = &vehicleID
	s.ClientID = refs.ClientForVehicle(vehicleID)
	if s.ClientID == nil {
		s.ClientID = service.ClientID
	}
	s.ServiceDate = time.Time(service.ServiceDate).Format("2006-01-02")
	s.Km = AbstractFunctions.FormatKmInt(service.Km)
	s.Rating = service.Rating
	if service.Comment != nil {
		s.Comment = *service.Comment
	}

	for _, d := range service.Details {
		draft := Draft{
			Key:           newDraftKey(),
			ServiceTypeID: d.ServiceTypeID,
			StateID:       d.StateID,
		}
		if d.NextDueKm != nil {
			draft.NextDueKm = AbstractFunctions.FormatKmInt(*d.NextDueKm)
		}
		if d.Comment != nil {
			draft.Comment = *d.Comment
		}
		if d.Recommendation != nil {
			draft.Recommendation = *d.Recommendation
		}
		s.Drafts = append(s.Drafts, draft)
	}

	if service.Photo != nil {
		s.Photo.Hydrate(*service.Photo)
	}
	return s, nil
}

// SetHeader applies a header patch. Picking a vehicle also picks its owner.
func (s *Session) SetHeader(p HeaderPatch) {
	if p.ClearVehicle {
		s.VehicleID = nil
		s.ClientID = nil
	} else if p.VehicleID != nil {
		id := *p.VehicleID
		s.VehicleID = &id
		s.ClientID = s.Refs.ClientForVehicle(id)
	}
	if p.ServiceDate != nil {
		s.ServiceDate = *p.ServiceDate
	}
	if p.Km != nil {
		s.Km = AbstractFunctions.FormatKm(*p.Km)
	}
	if p.ClearRating {
		s.Rating = nil
	} else if p.Rating != nil {
		r := *p.Rating
		s.Rating = &r
	}
	if p.Comment != nil {
		s.Comment = *p.Comment
	}
}

func (s *Session) KmValue() *int64 {
	return AbstractFunctions.ParseKm(s.Km)
}

func (s *Session) HeaderReady() bool {
	return s.Input().HeaderReady()
}

func (s *Session) AttachPhoto(enc *Photo.Encoded) {
	s.Photo.Set(enc)
}

func (s *Session) ClearPhoto() {
	s.Photo.Clear()
}

// Input composes the session into a submission.
func (s *Session) Input() ServiceInput {
	in := ServiceInput{
		ClientID:    s.ClientID,
		ServiceDate: s.ServiceDate,
		Km:          s.KmValue(),
		Rating:      s.Rating,
		Comment:     AbstractFunctions.StringOrNil(s.Comment),
		Photo:       s.Photo,
	}
	if s.VehicleID != nil {
		in.VehicleID = int64(*s.VehicleID)
	}
	for _, d := range s.Drafts {
		in.Details = append(in.Details, DetailInput{
			ServiceTypeID:  d.ServiceTypeID,
			NextDueKm:      AbstractFunctions.ParseKm(d.NextDueKm),
			Comment:        AbstractFunctions.StringOrNil(d.Comment),
			StateID:        d.StateID,
			Recommendation: AbstractFunctions.StringOrNil(d.Recommendation),
		})
	}
	return in
}

// Clone copies everything a handler may mutate. Reference data is shared.
func (s *Session) Clone() *Session {
	c := *s
	c.Drafts = append([]Draft(nil), s.Drafts...)
	return &c
}

// Title is the heading shown above the form.
func (s *Session) Title() string {
	if s.ServiceID == nil {
		return "Nuevo servicio"
	}
	return "Editar servicio #" + strconv.FormatUint(uint64(*s.ServiceID), 10)
}
