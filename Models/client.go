package Models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Client struct {
	gorm.Model
	Names          string          `json:"names" gorm:"size:255;not null"`
	Surnames       string          `json:"surnames" gorm:"size:255;not null;index"`
	Email          string          `json:"email" gorm:"size:255;not null"`
	DNI            int64           `json:"dni" gorm:"not null"`
	Phone          *int64          `json:"phone"`
	ProvinceID     *uint           `json:"province_id" gorm:"index"`
	Locality       *string         `json:"locality" gorm:"size:255"`
	Address        *string         `json:"address" gorm:"size:255"`
	BirthDate      *datatypes.Date `json:"birth_date"`
	PrivateComment *string         `json:"private_comment" gorm:"type:text"`

	Province *Province `json:"province,omitempty" gorm:"foreignKey:ProvinceID"`
}

func (Client) TableName() string {
	return "clientes"
}

// FullName renders "SURNAMES, NAMES" as shown in selectors.
func (c Client) FullName() string {
	return c.Surnames + ", " + c.Names
}
