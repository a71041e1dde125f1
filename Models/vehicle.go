package Models

import (
	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	Plate          string  `json:"plate" gorm:"size:20;not null;uniqueIndex"`
	BrandID        *uint   `json:"brand_id" gorm:"index"`
	ModelName      *string `json:"model" gorm:"column:model;size:120"`
	Year           *string `json:"year" gorm:"size:10"`
	CurrentKm      int64   `json:"current_km" gorm:"not null;default:0"`
	ClientID       *uint   `json:"client_id" gorm:"index"`
	PrivateComment *string `json:"private_comment" gorm:"type:text"`

	Brand  *Brand  `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Vehicle) TableName() string {
	return "vehiculo"
}
