package Models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is one visit / work order for a vehicle.
type Service struct {
	gorm.Model
	VehicleID   uint           `json:"vehicle_id" gorm:"not null;index"`
	ClientID    *uint          `json:"client_id" gorm:"index"`
	ServiceDate datatypes.Date `json:"service_date" gorm:"not null"`
	Km          int64          `json:"km" gorm:"not null"`
	Rating      *int           `json:"rating"`
	Comment     *string        `json:"comment" gorm:"type:text"`
	// Photo holds the JPEG bytes as escaped hex text ("\x..."), see Photo.EncodeStored
	Photo *string `json:"-" gorm:"size:4194304"`

	// Relationships
	Vehicle *Vehicle        `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Client  *Client         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Details []ServiceDetail `json:"details,omitempty" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
}

func (Service) TableName() string {
	return "servicios"
}

// ServiceDetail is one checklist line of a service.
type ServiceDetail struct {
	gorm.Model
	ServiceID      uint    `json:"service_id" gorm:"not null;index"`
	ServiceTypeID  *uint   `json:"service_type_id" gorm:"index"`
	NextDueKm      *int64  `json:"next_due_km"`
	Comment        *string `json:"comment" gorm:"type:text"`
	StateID        *uint   `json:"state_id"`
	Recommendation *string `json:"recommendation" gorm:"type:text"`
	ItemOrder      int     `json:"item_order" gorm:"not null;default:0"`

	ServiceType *ServiceType `json:"service_type,omitempty" gorm:"foreignKey:ServiceTypeID"`
	State       *State       `json:"state,omitempty" gorm:"foreignKey:StateID"`
}

func (ServiceDetail) TableName() string {
	return "detallesservicio"
}

// IsEmpty reports whether the line carries no data at all; empty lines are never stored.
func (d ServiceDetail) IsEmpty() bool {
	return d.ServiceTypeID == nil && d.NextDueKm == nil && d.StateID == nil &&
		d.Comment == nil && d.Recommendation == nil
}
