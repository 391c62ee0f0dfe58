package router

import (
	companysvc "canoe-backend/internal/application/companies"
	fundsvc "canoe-backend/internal/application/funds"
	healthsvc "canoe-backend/internal/application/health"
	managersvc "canoe-backend/internal/application/managers"
	warningsvc "canoe-backend/internal/application/warnings"
	"canoe-backend/internal/config"
	"canoe-backend/internal/infrastructure/database"
	companyhandler "canoe-backend/internal/interfaces/handlers/companies"
	fundhandler "canoe-backend/internal/interfaces/handlers/funds"
	healthhandler "canoe-backend/internal/interfaces/handlers/health"
	managerhandler "canoe-backend/internal/interfaces/handlers/managers"
	"canoe-backend/internal/interfaces/handlers/request"
	warninghandler "canoe-backend/internal/interfaces/handlers/warnings"
	"canoe-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Rdb and Queue may be nil.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Rdb      *redis.Client
	Notifier fundsvc.Notifier
	Queue    healthsvc.QueueStats
}

// CreateApp builds the Fiber app with middleware, health routes and the /api resources.
func CreateApp(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(d.Rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(d.Rdb))
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		IsProduction:   cfg.IsProduction(),
	}))

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		DB:             healthsvc.PingFunc(func() error { return database.Ping(d.DB) }),
		Queue:          d.Queue,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/health", hh.Dashboard)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)

	paging := request.Paging{Default: cfg.PageSize, Max: cfg.MaxPageSize}
	api := app.Group("/api")

	fh := &fundhandler.Handlers{Service: fundsvc.NewService(d.DB, d.Notifier), Paging: paging}
	resource(api, "/funds", fh)

	mh := &managerhandler.Handlers{Service: &managersvc.Service{DB: d.DB}, Paging: paging}
	resource(api, "/fund-managers", mh)

	ch := &companyhandler.Handlers{Service: &companysvc.Service{DB: d.DB}, Paging: paging}
	resource(api, "/companies", ch)

	wh := &warninghandler.Handlers{Service: &warningsvc.Service{DB: d.DB}, Paging: paging}
	api.Get("/duplicate-warnings", wh.Index)
	api.Patch("/duplicate-warnings/:id/resolve", wh.Resolve)

	return app
}

type resourceHandlers interface {
	Index(c *fiber.Ctx) error
	Store(c *fiber.Ctx) error
	Show(c *fiber.Ctx) error
	Update(c *fiber.Ctx) error
	Destroy(c *fiber.Ctx) error
}

// resource registers the index/store/show/update/destroy routes under path.
func resource(g fiber.Router, path string, h resourceHandlers) {
	g.Get(path, h.Index)
	g.Post(path, h.Store)
	g.Get(path+"/:id", h.Show)
	g.Put(path+"/:id", h.Update)
	g.Patch(path+"/:id", h.Update)
	g.Delete(path+"/:id", h.Destroy)
}
