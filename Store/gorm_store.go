package Store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"RiderBross/Editor"
	"RiderBross/Models"
)

// GormStore implements the editor's store ports on top of gorm.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var (
	_ Editor.ReferenceStore = (*GormStore)(nil)
	_ Editor.TxServiceStore = (*GormStore)(nil)
	_ Editor.ServiceReader  = (*GormStore)(nil)
)

func (s *GormStore) ListVehicles(ctx context.Context) ([]Models.Vehicle, error) {
	var vehicles []Models.Vehicle
	err := s.DB.WithContext(ctx).Order("plate ASC").Find(&vehicles).Error
	return vehicles, errors.Wrap(err, "vehículos")
}

func (s *GormStore) ListClients(ctx context.Context) ([]Models.Client, error) {
	var clients []Models.Client
	err := s.DB.WithContext(ctx).Order("surnames ASC").Order("names ASC").Find(&clients).Error
	return clients, errors.Wrap(err, "clientes")
}

func (s *GormStore) ListBrands(ctx context.Context) ([]Models.Brand, error) {
	var brands []Models.Brand
	err := s.DB.WithContext(ctx).Order("description ASC").Find(&brands).Error
	return brands, errors.Wrap(err, "marcas")
}

func (s *GormStore) ListProvinces(ctx context.Context) ([]Models.Province, error) {
	var provinces []Models.Province
	err := s.DB.WithContext(ctx).Order("description ASC").Find(&provinces).Error
	return provinces, errors.Wrap(err, "provincias")
}

func (s *GormStore) ListServiceTypes(ctx context.Context) ([]Models.ServiceType, error) {
	var types []Models.ServiceType
	err := s.DB.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, errors.Wrap(err, "tipos de servicio")
}

func (s *GormStore) ListStates(ctx context.Context) ([]Models.State, error) {
	var states []Models.State
	err := s.DB.WithContext(ctx).Order("id ASC").Find(&states).Error
	return states, errors.Wrap(err, "estados")
}

func (s *GormStore) CategoriesByIDs(ctx context.Context, ids []uint) ([]Models.ServiceCategory, error) {
	var categories []Models.ServiceCategory
	err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error
	return categories, errors.Wrap(err, "categorías")
}

// VehicleClientID returns the vehicle's owner. Unknown vehicles have none.
func (s *GormStore) VehicleClientID(ctx context.Context, vehicleID uint) (*uint, error) {
	var vehicle Models.Vehicle
	err := s.DB.WithContext(ctx).Select("id", "client_id").First(&vehicle, vehicleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vehicle.ClientID, nil
}

func (s *GormStore) InsertService(ctx context.Context, service *Models.Service) error {
	return s.DB.WithContext(ctx).Omit("Details", "Vehicle", "Client").Create(service).Error
}

func (s *GormStore) UpdateService(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := s.DB.WithContext(ctx).Model(&Models.Service{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteServiceDetails removes every detail of the service for good.
func (s *GormStore) DeleteServiceDetails(ctx context.Context, serviceID uint) error {
	return s.DB.WithContext(ctx).Unscoped().Where("service_id = ?", serviceID).Delete(&Models.ServiceDetail{}).Error
}

func (s *GormStore) InsertServiceDetails(ctx context.Context, details []Models.ServiceDetail) error {
	return s.DB.WithContext(ctx).Omit("ServiceType", "State").CreateInBatches(details, 100).Error
}

func (s *GormStore) Transaction(ctx context.Context, fn func(Editor.ServiceStore) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

// GetService loads a service with its ordered details.
func (s *GormStore) GetService(ctx context.Context, id uint) (*Models.Service, error) {
	var service Models.Service
	err := s.DB.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC").Order("id ASC")
		}).
		First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// DeleteService removes a service and its details.
func (s *GormStore) DeleteService(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Details first
		if err := tx.Unscoped().Where("service_id = ?", id).Delete(&Models.ServiceDetail{}).Error; err != nil {
			return err
		}
		// 2. Then the header
		result := tx.Unscoped().Delete(&Models.Service{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListServices returns service headers newest first, with vehicle, brand and client.
func (s *GormStore) ListServices(ctx context.Context) ([]Models.Service, error) {
	var services []Models.Service
	err := s.DB.WithContext(ctx).
		Omit("photo").
		Preload("Vehicle").
		Preload("Vehicle.Brand").
		Preload("Client").
		Order("id DESC").
		Find(&services).Error
	return services, err
}

// VehicleByPlate finds a vehicle by its stored (masked) plate.
func (s *GormStore) VehicleByPlate(ctx context.Context, plate string) (*Models.Vehicle, error) {
	var vehicle Models.Vehicle
	err := s.DB.WithContext(ctx).Preload("Brand").Where("plate = ?", plate).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// ServiceHistory returns a vehicle's services newest first with type and
// state names on every detail.
func (s *GormStore) ServiceHistory(ctx context.Context, vehicleID uint) ([]Models.Service, error) {
	var services []Models.Service
	err := s.DB.WithContext(ctx).
		Omit("photo").
		Where("vehicle_id = ?", vehicleID).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC").Order("id ASC")
		}).
		Preload("Details.ServiceType").
		Preload("Details.State").
		Order("service_date DESC").
		Order("id DESC").
		Find(&services).Error
	return services, err
}
