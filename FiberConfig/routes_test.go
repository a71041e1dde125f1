package FiberConfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"RiderBross/Config"
	"RiderBross/Controllers"
	"RiderBross/Editor"
	"RiderBross/Models"
	"RiderBross/middleware"
)

type testServer struct {
	app     *fiber.App
	db      *gorm.DB
	cookie  *http.Cookie
	vehicle Models.Vehicle
	oil     Models.ServiceType
	brakes  Models.ServiceType
	ok      Models.State
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	Models.DB = db

	cfg := Config.Config{
		Server: Config.ServerConfig{BodyLimit: 4 * 1024 * 1024, CorsOrigins: []string{"*"}, Templates: "../Templates"},
		Auth:   Config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Logging: Config.LoggingConfig{
			Level:     "info",
			SkipPaths: []string{"/health"},
		},
		Editor: Config.EditorConfig{AtomicReplace: true},
	}
	s := &testServer{db: db, app: New(cfg, db, Editor.NewMemoryRegistry(time.Hour))}

	admin, err := Controllers.CreateAdmin(db, "Admin", "admin@riderbross.com", "secreto")
	require.NoError(t, err)
	token, _, err := middleware.IssueToken(*admin, time.Hour)
	require.NoError(t, err)
	s.cookie = &http.Cookie{Name: middleware.CookieName, Value: token}

	engine := Models.ServiceCategory{Name: "Motor"}
	require.NoError(t, db.Create(&engine).Error)
	s.oil = Models.ServiceType{Name: "Cambio de aceite", CategoryID: &engine.ID}
	require.NoError(t, db.Create(&s.oil).Error)
	s.brakes = Models.ServiceType{Name: "Pastillas"}
	require.NoError(t, db.Create(&s.brakes).Error)
	s.ok = Models.State{Description: "OK"}
	require.NoError(t, db.Create(&s.ok).Error)

	brand := Models.Brand{Description: "HONDA"}
	require.NoError(t, db.Create(&brand).Error)
	client := Models.Client{Names: "JUAN", Surnames: "PEREZ", Email: "juan@example.com", DNI: 30111222}
	require.NoError(t, db.Create(&client).Error)
	model := "CB 190R"
	s.vehicle = Models.Vehicle{Plate: "A1-60P-XS", BrandID: &brand.ID, ModelName: &model, ClientID: &client.ID, CurrentKm: 14000}
	require.NoError(t, db.Create(&s.vehicle).Error)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, auth bool) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if auth {
		req.AddCookie(s.cookie)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminRoutesNeedCookie(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/clientes", nil, false)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "No autorizado", errorMessage(t, body))

	status, _ = s.do(t, http.MethodGet, "/api/clientes", nil, true)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		bytes.NewBufferString(`{"email":"ADMIN@riderbross.com ","password":"secreto"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.CookieName && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "login must set the jwt cookie")

	status, body := s.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "admin@riderbross.com", "password": "otra",
	}, false)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Email o contraseña incorrectos", errorMessage(t, body))
}

func TestCreateServiceRejectsInvalidVehicle(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/servicios", map[string]interface{}{
		"vehicle_id":   0,
		"service_date": "2024-05-10",
		"km":           15000,
	}, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, Editor.ErrInvalidVehicle.Error(), errorMessage(t, body))

	var count int64
	require.NoError(t, s.db.Model(&Models.Service{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateServiceThenLookup(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/servicios", map[string]interface{}{
		"vehicle_id":   s.vehicle.ID,
		"service_date": "2024-05-10",
		"km":           15000,
		"details": []map[string]interface{}{
			{"service_type_id": s.oil.ID, "next_due_km": 18000, "state_id": s.ok.ID},
			{},
			{"service_type_id": s.brakes.ID, "recommendation": "Revisar en 2000 km"},
		},
	}, true)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var details []Models.ServiceDetail
	require.NoError(t, s.db.Order("item_order").Find(&details).Error)
	require.Len(t, details, 2)
	assert.Equal(t, 1, details[0].ItemOrder)
	assert.Equal(t, 2, details[1].ItemOrder)

	var service Models.Service
	require.NoError(t, s.db.First(&service).Error)
	require.NotNil(t, service.ClientID)
	assert.Equal(t, *s.vehicle.ClientID, *service.ClientID)

	status, body = s.do(t, http.MethodGet, "/api/consulta/a160pxs", nil, false)
	require.Equal(t, fiber.StatusOK, status, string(body))

	var history Controllers.VehicleHistory
	require.NoError(t, json.Unmarshal(body, &history))
	assert.Equal(t, "A1-60P-XS", history.Plate)
	assert.Equal(t, "HONDA", history.Brand)
	require.Len(t, history.Services, 1)
	assert.Equal(t, "15.000", history.Services[0].Km)
	require.Len(t, history.Services[0].Details, 2)
	assert.Equal(t, "Cambio de aceite", history.Services[0].Details[0].ServiceType)
	assert.Equal(t, "18.000", history.Services[0].Details[0].NextDueKm)
}

func TestLookupErrors(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/consulta/ab1", nil, false)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, Controllers.ErrPlateLength.Error(), errorMessage(t, body))

	status, body = s.do(t, http.MethodGet, "/api/consulta/ZZ999ZZ", nil, false)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, Controllers.ErrPlateMissing.Error(), errorMessage(t, body))
}

func TestLookupPage(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/consulta/A160PXS", nil, false)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Patente: A1-60P-XS")
	assert.Contains(t, string(body), "No se encontraron servicios")

	status, body = s.do(t, http.MethodGet, "/consulta/x", nil, false)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "La patente debe tener entre 6 y 8 caracteres")
}

func TestClientValidationMessage(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/clientes", map[string]interface{}{
		"names":    "ana",
		"surnames": "gomez",
		"email":    "no-es-un-email",
		"dni":      123,
		"phone":    456,
	}, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, errorMessage(t, body), "Email")

	status, body = s.do(t, http.MethodPost, "/api/clientes", map[string]interface{}{
		"names":    " ana ",
		"surnames": "gomez",
		"email":    "ANA@Example.com",
		"dni":      123,
		"phone":    456,
	}, true)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var client Models.Client
	require.NoError(t, s.db.Where("dni = ?", 123).First(&client).Error)
	assert.Equal(t, "ANA", client.Names)
	assert.Equal(t, "ana@example.com", client.Email)
}

func TestEditorSessionOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/editor/sessions", nil, true)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var opened struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(body, &opened))
	assert.Equal(t, "Nuevo servicio", opened.Title)
	base := "/api/editor/sessions/" + opened.ID

	// line items are gated until the header is ready
	status, body = s.do(t, http.MethodPost, base+"/items", nil, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, Editor.ErrHeaderNotReady.Error(), errorMessage(t, body))

	status, body = s.do(t, http.MethodPatch, base+"/header", map[string]interface{}{
		"vehicle_id": s.vehicle.ID,
		"km":         "15000",
	}, true)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var header struct {
		ClientID    *uint  `json:"client_id"`
		Km          string `json:"km"`
		HeaderReady bool   `json:"header_ready"`
	}
	require.NoError(t, json.Unmarshal(body, &header))
	require.NotNil(t, header.ClientID)
	assert.Equal(t, "15.000", header.Km)
	assert.True(t, header.HeaderReady)

	status, body = s.do(t, http.MethodPost, base+"/items/bulk", map[string]interface{}{
		"service_type_ids": []uint{s.oil.ID, s.brakes.ID, s.oil.ID},
	}, true)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var grouped struct {
		Groups []Editor.DraftGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(body, &grouped))
	require.Len(t, grouped.Groups, 2)
	assert.Equal(t, "Motor", grouped.Groups[0].Name)
	assert.Equal(t, Editor.GroupUncategorized, grouped.Groups[1].Name)

	status, body = s.do(t, http.MethodPost, base+"/submit", nil, true)
	require.Equal(t, fiber.StatusOK, status, string(body))

	var details []Models.ServiceDetail
	require.NoError(t, s.db.Find(&details).Error)
	assert.Len(t, details, 2)

	// a submitted session is gone
	status, _ = s.do(t, http.MethodGet, base, nil, true)
	assert.Equal(t, fiber.StatusNotFound, status)
}
