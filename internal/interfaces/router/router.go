package router

import (
	admsvc "cribz-gateway/internal/application/admin"
	catsvc "cribz-gateway/internal/application/catalog"
	setsvc "cribz-gateway/internal/application/settings"
	"cribz-gateway/internal/application/view"
	"cribz-gateway/internal/config"
	"cribz-gateway/internal/infrastructure/database"
	admhandler "cribz-gateway/internal/interfaces/handlers/admin"
	authhandler "cribz-gateway/internal/interfaces/handlers/auth"
	cathandler "cribz-gateway/internal/interfaces/handlers/catalog"
	healthhandler "cribz-gateway/internal/interfaces/handlers/health"
	sethandler "cribz-gateway/internal/interfaces/handlers/settings"
	"cribz-gateway/internal/middleware"
	"cribz-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	up := &upstream.Client{BaseURL: cfg.UpstreamBaseURL}

	hh := &healthhandler.Handlers{
		Rdb:          rdb,
		Upstream:     up,
		AdminKeyHash: cfg.HealthAdminKeyHash,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errDB = database.AutoMigrate(db); errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	ah := &authhandler.Handlers{Rdb: rdb}
	ag := app.Group("/api/v1/auth")
	ag.Post("/attach", ah.Attach)
	ag.Get("/me", ah.Me)
	ag.Delete("/detach", ah.Detach)

	// Settings: backed by the gateway-local DB when configured, defaults
	// otherwise. The catalog handlers still read currency through it.
	ss := &setsvc.Service{DB: db}
	if db != nil {
		sh := &sethandler.Handlers{Service: ss}
		sg := app.Group("/api/v1/settings", middleware.RequireAuth())
		sg.Get("/", sh.Get)
		sg.Put("/", sh.Put)
	}

	projector := view.NewProjector()
	cs := &catsvc.Service{Upstream: up, Snapshot: projector}
	ch := &cathandler.Handlers{Service: cs, Projector: projector, Settings: ss}
	cg := app.Group("/api/v1/catalog", middleware.RequireAuth())
	cg.Get("/my-listings", ch.MyListings)
	cg.Get("/filter", ch.Filter)
	cg.Get("/listing/:id", ch.Detail)
	cg.Post("/create-listing", ch.Create)
	cg.Put("/edit-listing/:id", ch.Edit)
	cg.Delete("/delete-listing/:id", ch.Delete)
	cg.Patch("/approve/:id", ch.Approve)
	cg.Patch("/decline/:id", ch.Decline)

	as := &admsvc.Service{Upstream: up}
	adh := &admhandler.Handlers{Service: as}
	adg := app.Group("/api/v1/admin", middleware.RequireAuth(), middleware.RequireAdmin())
	adg.Get("/dashboard", adh.Dashboard)
	adg.Get("/pending", adh.Pending)
	adg.Get("/users", adh.Users)
	adg.Get("/stats", adh.Stats)
	adg.Get("/transactions", adh.Transactions)
	adg.Get("/withdrawals", adh.Withdrawals)
	adg.Post("/credit", adh.Credit)
	adg.Patch("/approve/:id", adh.Approve)
	adg.Patch("/reject/:id", adh.Reject)
	adg.Delete("/property/:id", adh.DeleteProperty)

	return app, db, rdb, nil
}
