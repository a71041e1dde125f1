package Editor

import (
	"context"

	"RiderBross/Models"
)

// ReferenceStore provides the lookup sets used to populate the editor.
type ReferenceStore interface {
	ListVehicles(ctx context.Context) ([]Models.Vehicle, error)
	ListClients(ctx context.Context) ([]Models.Client, error)
	ListBrands(ctx context.Context) ([]Models.Brand, error)
	ListProvinces(ctx context.Context) ([]Models.Province, error)
	ListServiceTypes(ctx context.Context) ([]Models.ServiceType, error)
	ListStates(ctx context.Context) ([]Models.State, error)
	CategoriesByIDs(ctx context.Context, ids []uint) ([]Models.ServiceCategory, error)
}

// ServiceStore persists service headers and their line items.
type ServiceStore interface {
	VehicleClientID(ctx context.Context, vehicleID uint) (*uint, error)
	InsertService(ctx context.Context, service *Models.Service) error
	UpdateService(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteServiceDetails(ctx context.Context, serviceID uint) error
	InsertServiceDetails(ctx context.Context, details []Models.ServiceDetail) error
}

// TxServiceStore can run a group of writes atomically.
type TxServiceStore interface {
	ServiceStore
	Transaction(ctx context.Context, fn func(ServiceStore) error) error
}

// ServiceReader loads an existing service (with details) to edit it.
type ServiceReader interface {
	GetService(ctx context.Context, id uint) (*Models.Service, error)
}
