package FiberConfig

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"RiderBross/Config"
	"RiderBross/Controllers"
	"RiderBross/Editor"
	"RiderBross/Models"
	"RiderBross/Store"
	"RiderBross/middleware"
)

// NewRegistry picks the editor session backend.
func NewRegistry(cfg Config.Config) Editor.Registry {
	if cfg.Sessions.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("editor sessions stored in redis")
		return Editor.NewRedisRegistry(client, cfg.Sessions.TTL)
	}
	return Editor.NewMemoryRegistry(cfg.Sessions.TTL)
}

func SetupRoutes(app *fiber.App, cfg Config.Config, db *gorm.DB, registry Editor.Registry) {
	store := Store.NewGormStore(db)
	submitter := Editor.NewSubmitter(store, Editor.WithAtomicReplace(cfg.Editor.AtomicReplace))
	manager := Editor.NewManager(registry, Editor.NewLoader(store), store, submitter)

	// Initialize handlers
	authController := Controllers.NewAuthController(db, cfg.Auth.TokenTTL)
	lookupController := Controllers.NewLookupController(store)
	clientController := Controllers.NewClientController(db)
	vehicleController := Controllers.NewVehicleController(db)
	serviceTypeController := Controllers.NewServiceTypeController(db)
	serviceController := Controllers.NewServiceController(store, submitter)
	editorController := Controllers.NewEditorController(manager)
	logController := Controllers.NewLogController(cfg.Logging.File)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Static("/static", "static/")

	// Public history lookup
	app.Get("/consulta/:patente", lookupController.RenderHistory)

	api := app.Group("/api")
	api.Get("/consulta/:patente", lookupController.GetHistory)

	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	api.Get("/user", middleware.Verify(Models.PermissionNone), authController.User)

	staff := middleware.Verify(Models.PermissionStaff)

	clients := api.Group("/clientes", staff)
	clients.Get("/", clientController.GetClients)
	clients.Post("/", clientController.CreateClient)
	clients.Get("/:id", clientController.GetClient)
	clients.Put("/:id", clientController.UpdateClient)
	clients.Delete("/:id", clientController.DeleteClient)

	vehicles := api.Group("/vehiculos", staff)
	vehicles.Get("/", vehicleController.GetVehicles)
	vehicles.Post("/", vehicleController.CreateVehicle)
	vehicles.Get("/:id", vehicleController.GetVehicle)
	vehicles.Put("/:id", vehicleController.UpdateVehicle)
	vehicles.Delete("/:id", vehicleController.DeleteVehicle)

	catalog(api.Group("/marcas", staff), Controllers.NewCatalogController[Models.Brand](db, "description"))
	catalog(api.Group("/provincias", staff), Controllers.NewCatalogController[Models.Province](db, "description"))
	catalog(api.Group("/estados", staff), Controllers.NewCatalogController[Models.State](db, "description"))
	catalog(api.Group("/categorias", staff), Controllers.NewCatalogController[Models.ServiceCategory](db, "name"))

	types := api.Group("/tipos-servicio", staff)
	types.Get("/", serviceTypeController.GetServiceTypes)
	types.Post("/", serviceTypeController.CreateServiceType)
	types.Get("/:id", serviceTypeController.GetServiceType)
	types.Put("/:id", serviceTypeController.UpdateServiceType)
	types.Delete("/:id", serviceTypeController.DeleteServiceType)

	services := api.Group("/servicios", staff)
	services.Get("/", serviceController.GetServices)
	// export before :id
	services.Get("/export", serviceController.ExportServices)
	services.Post("/", serviceController.CreateService)
	services.Get("/:id", serviceController.GetService)
	services.Put("/:id", serviceController.UpdateService)
	services.Delete("/:id", serviceController.DeleteService)

	// Service editor sessions
	editor := api.Group("/editor/sessions", staff)
	editor.Post("/", editorController.Open)
	editor.Get("/:session", editorController.Get)
	editor.Delete("/:session", editorController.Discard)
	editor.Patch("/:session/header", editorController.SetHeader)
	editor.Post("/:session/items", editorController.AddItem)
	editor.Post("/:session/items/bulk", editorController.BulkAdd)
	editor.Post("/:session/items/:key/duplicate", editorController.Duplicate)
	editor.Patch("/:session/items/:key", editorController.PatchItem)
	editor.Delete("/:session/items/:key", editorController.RemoveItem)
	editor.Put("/:session/photo", editorController.UploadPhoto)
	editor.Delete("/:session/photo", editorController.ClearPhoto)
	editor.Get("/:session/validate", editorController.Validate)
	editor.Post("/:session/submit", editorController.Submit)

	// Logs API routes
	logs := api.Group("/logs", middleware.Verify(Models.PermissionAdmin))
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
}

type catalogHandlers interface {
	List(*fiber.Ctx) error
	Create(*fiber.Ctx) error
	Update(*fiber.Ctx) error
	Delete(*fiber.Ctx) error
}

func catalog(group fiber.Router, c catalogHandlers) {
	group.Get("/", c.List)
	group.Post("/", c.Create)
	group.Put("/:id", c.Update)
	group.Delete("/:id", c.Delete)
}

// New builds the fiber app with every route mounted.
func New(cfg Config.Config, db *gorm.DB, registry Editor.Registry) *fiber.App {
	middleware.SetSecret(cfg.Auth.JWTSecret)

	// Html Template engine
	engine := html.New(cfg.Server.Templates, ".html")
	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: cfg.Server.BodyLimit,
	})

	app.Use(middleware.RequestLogger(cfg.Logging))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CorsOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	SetupRoutes(app, cfg, db, registry)
	return app
}

// FiberConfig starts serving on the configured address.
func FiberConfig(cfg Config.Config, db *gorm.DB) error {
	app := New(cfg, db, NewRegistry(cfg))
	log.Info().Str("address", cfg.Server.Address).Msg("Server Up...")
	return app.Listen(cfg.Server.Address)
}
