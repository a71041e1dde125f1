package Models

import (
	"gorm.io/gorm"
)

type Province struct {
	gorm.Model
	Description string `json:"description" gorm:"size:120;not null"`
}

func (Province) TableName() string {
	return "provincias"
}

type Brand struct {
	gorm.Model
	Description string `json:"description" gorm:"size:120;not null;uniqueIndex"`
}

func (Brand) TableName() string {
	return "marcas"
}

// State is the condition a line item was found in ("OK", "Cambiar", ...)
type State struct {
	gorm.Model
	Description string `json:"description" gorm:"size:120;not null"`
}

func (State) TableName() string {
	return "estados"
}

type ServiceCategory struct {
	gorm.Model
	Name string `json:"name" gorm:"size:120;not null"`
}

func (ServiceCategory) TableName() string {
	return "categoriasservicio"
}

// ServiceType is a catalog entry such as "Cambio de aceite", optionally grouped under a category.
type ServiceType struct {
	gorm.Model
	Name       string  `json:"name" gorm:"size:255;not null"`
	Reference  *string `json:"reference" gorm:"size:255"`
	CategoryID *uint   `json:"category_id" gorm:"index"`

	Category *ServiceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (ServiceType) TableName() string {
	return "tiposservicio"
}

// SetLabel lets the catalog endpoints write the one text column of each lookup table.
func (p *Province) SetLabel(value string)        { p.Description = value }
func (b *Brand) SetLabel(value string)           { b.Description = value }
func (s *State) SetLabel(value string)           { s.Description = value }
func (c *ServiceCategory) SetLabel(value string) { c.Name = value }
