package Editor

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"RiderBross/Models"
)

// recordingStore is a ServiceStore that keeps every call in order.
type recordingStore struct {
	owners   map[uint]*uint
	services map[uint]*Models.Service
	nextID   uint

	calls    []string
	inserted []Models.ServiceDetail
	updated  map[string]interface{}
	failOn   string
	txCount  int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		owners:   map[uint]*uint{},
		services: map[uint]*Models.Service{},
		nextID:   100,
	}
}

var errStore = errors.New("duplicate key value violates unique constraint")

func (s *recordingStore) record(op string) error {
	s.calls = append(s.calls, op)
	if s.failOn == op {
		return errStore
	}
	return nil
}

func (s *recordingStore) VehicleClientID(_ context.Context, vehicleID uint) (*uint, error) {
	if err := s.record("vehicle_client"); err != nil {
		return nil, err
	}
	return s.owners[vehicleID], nil
}

func (s *recordingStore) InsertService(_ context.Context, service *Models.Service) error {
	if err := s.record("insert_service"); err != nil {
		return err
	}
	s.nextID++
	service.ID = s.nextID
	s.services[service.ID] = service
	return nil
}

func (s *recordingStore) UpdateService(_ context.Context, _ uint, fields map[string]interface{}) error {
	if err := s.record("update_service"); err != nil {
		return err
	}
	s.updated = fields
	return nil
}

func (s *recordingStore) DeleteServiceDetails(_ context.Context, _ uint) error {
	return s.record("delete_details")
}

func (s *recordingStore) InsertServiceDetails(_ context.Context, details []Models.ServiceDetail) error {
	if err := s.record("insert_details"); err != nil {
		return err
	}
	s.inserted = append(s.inserted, details...)
	return nil
}

func (s *recordingStore) GetService(_ context.Context, id uint) (*Models.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return svc, nil
}

func (s *recordingStore) writes() []string {
	var out []string
	for _, c := range s.calls {
		if c != "vehicle_client" {
			out = append(out, c)
		}
	}
	return out
}

// txStore adds a Transaction that just counts how often it was used.
type txStore struct {
	*recordingStore
}

func (s txStore) Transaction(_ context.Context, fn func(ServiceStore) error) error {
	s.txCount++
	return fn(s.recordingStore)
}

type mockRefStore struct {
	mock.Mock
}

func (m *mockRefStore) ListVehicles(ctx context.Context) ([]Models.Vehicle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Models.Vehicle), args.Error(1)
}

func (m *mockRefStore) ListClients(ctx context.Context) ([]Models.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Models.Client), args.Error(1)
}

func (m *mockRefStore) ListBrands(ctx context.Context) ([]Models.Brand, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Models.Brand), args.Error(1)
}

func (m *mockRefStore) ListProvinces(ctx context.Context) ([]Models.Province, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Models.Province), args.Error(1)
}

func (m *mockRefStore) ListServiceTypes(ctx context.Context) ([]Models.ServiceType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Models.ServiceType), args.Error(1)
}

func (m *mockRefStore) ListStates(ctx context.Context) ([]Models.State, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Models.State), args.Error(1)
}

func (m *mockRefStore) CategoriesByIDs(ctx context.Context, ids []uint) ([]Models.ServiceCategory, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Models.ServiceCategory), args.Error(1)
}

func uintPtr(v uint) *uint    { return &v }
func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func vehicle(id uint, plate string, clientID *uint) Models.Vehicle {
	v := Models.Vehicle{Plate: plate, ClientID: clientID}
	v.ID = id
	return v
}

func serviceType(id uint, name string, categoryID *uint) Models.ServiceType {
	t := Models.ServiceType{Name: name, CategoryID: categoryID}
	t.ID = id
	return t
}

func category(id uint, name string) Models.ServiceCategory {
	c := Models.ServiceCategory{Name: name}
	c.ID = id
	return c
}

// readySession has vehicle 1 owned by client 7 at 15.000 km.
func readySession() *Session {
	refs := ReferenceData{
		Vehicles: []Models.Vehicle{vehicle(1, "A1-60P-XS", uintPtr(7))},
		ServiceTypes: []TypeOption{
			{ID: 1, Name: "Cambio de aceite", CategoryID: uintPtr(10), CategoryName: strPtr("Motor")},
			{ID: 2, Name: "Filtro de aire", CategoryID: uintPtr(10), CategoryName: strPtr("Motor")},
			{ID: 3, Name: "Pastillas", CategoryID: uintPtr(11), CategoryName: strPtr("Frenos")},
			{ID: 4, Name: "Lavado"},
		},
	}
	s := NewSession(refs, nil)
	s.SetHeader(HeaderPatch{VehicleID: uintPtr(1), ServiceDate: strPtr("2024-05-01"), Km: strPtr("15000")})
	return s
}
