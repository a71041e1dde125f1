package Editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"RiderBross/Models"
)

func stubLists(m *mockRefStore, typesErr error) {
	m.On("ListVehicles", mock.Anything).Return([]Models.Vehicle{vehicle(1, "ABC-123", uintPtr(7))}, nil)
	m.On("ListClients", mock.Anything).Return([]Models.Client{}, nil)
	m.On("ListBrands", mock.Anything).Return([]Models.Brand{}, nil)
	m.On("ListProvinces", mock.Anything).Return([]Models.Province{}, nil)
	m.On("ListStates", mock.Anything).Return([]Models.State{}, nil)
	m.On("ListServiceTypes", mock.Anything).Return([]Models.ServiceType{
		serviceType(1, "Pastillas", uintPtr(20)),
		serviceType(2, "Lavado", nil),
		serviceType(3, "Aceite", uintPtr(21)),
		serviceType(4, "Ábside", uintPtr(21)),
		serviceType(5, "Bujías", uintPtr(21)),
	}, typesErr)
}

func names(options []TypeOption) []string {
	var out []string
	for _, o := range options {
		out = append(out, o.Name)
	}
	return out
}

func TestLoaderSortsTypesByCategory(t *testing.T) {
	m := new(mockRefStore)
	stubLists(m, nil)
	m.On("CategoriesByIDs", mock.Anything, []uint{20, 21}).
		Return([]Models.ServiceCategory{category(20, "Frenos"), category(21, "Motor")}, nil)

	refs, err := NewLoader(m).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Pastillas", "Ábside", "Aceite", "Bujías", "Lavado"}, names(refs.ServiceTypes))
	assert.Equal(t, "Frenos", *refs.ServiceTypes[0].CategoryName)
	assert.Nil(t, refs.ServiceTypes[4].CategoryName)
	assert.Equal(t, uint(7), *refs.ClientForVehicle(1))
	assert.Nil(t, refs.ClientForVehicle(99))
	m.AssertExpectations(t)
}

func TestLoaderToleratesCategoryFailure(t *testing.T) {
	m := new(mockRefStore)
	stubLists(m, nil)
	m.On("CategoriesByIDs", mock.Anything, mock.Anything).
		Return([]Models.ServiceCategory(nil), errors.New("permission denied"))

	refs, err := NewLoader(m).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, refs.ServiceTypes, 5)
	for _, o := range refs.ServiceTypes {
		assert.Nil(t, o.CategoryName)
	}
	assert.Equal(t, []string{"Ábside", "Aceite", "Bujías", "Lavado", "Pastillas"}, names(refs.ServiceTypes))
}

func TestLoaderFailsOnRequiredSet(t *testing.T) {
	m := new(mockRefStore)
	stubLists(m, errors.New("connection refused"))

	refs, err := NewLoader(m).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error al cargar datos de referencia: connection refused", err.Error())
	assert.Empty(t, refs.Vehicles)
	m.AssertNotCalled(t, "CategoriesByIDs", mock.Anything, mock.Anything)
}

func TestVehicleLabelAndAddress(t *testing.T) {
	province := Models.Province{Description: "Córdoba"}
	province.ID = 3
	brand := Models.Brand{Description: "Honda"}
	brand.ID = 2
	client := Models.Client{Names: "JUAN", Surnames: "PEREZ", ProvinceID: uintPtr(3), Address: strPtr("San Martín 123")}
	client.ID = 7

	refs := ReferenceData{
		Brands:    []Models.Brand{brand},
		Clients:   []Models.Client{client},
		Provinces: []Models.Province{province},
	}

	v := vehicle(1, "A1-60P-XS", uintPtr(7))
	v.BrandID = uintPtr(2)
	v.ModelName = strPtr("CB 250")
	assert.Equal(t, "A1-60P-XS — PEREZ, JUAN — Honda CB 250", refs.VehicleLabel(v))
	assert.Equal(t, "ABC-123 — Sin cliente", refs.VehicleLabel(vehicle(2, "ABC-123", nil)))

	assert.Equal(t, "Córdoba - San Martín 123", refs.ClientAddress(client))
	assert.Equal(t, "—", refs.ClientAddress(Models.Client{}))
}
