// Package kernel assembles the HTTP handler: global middleware, operational
// endpoints and the API routes.
package kernel

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/routes"
	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/cache"
	"github.com/shashiranjanraj/ventas/pkg/metrics"
	"github.com/shashiranjanraj/ventas/pkg/middleware"
	"github.com/shashiranjanraj/ventas/pkg/reqid"
	"github.com/shashiranjanraj/ventas/pkg/response"
	"github.com/shashiranjanraj/ventas/pkg/router"
	"github.com/shashiranjanraj/ventas/pkg/storage"
)

// Deps are the long-lived resources the kernel wires into the routes.
// Cache, Disk and RateLimit are optional.
type Deps struct {
	DB             *gorm.DB
	Cache          cache.Store
	Disk           storage.Disk
	RateLimit      *middleware.RateLimiter
	CORS           *middleware.CORSOptions
	ReportLimit    int
	IdempotencyTTL time.Duration
	// StorageDir, when set, is served read-only under /storage.
	StorageDir string
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(deps Deps) (*HTTPKernel, error) {
	r := router.New()

	// Outermost first: metrics see the full latency; Recovery sits inside
	// Logger so a recovered panic is logged with its request_id.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	cors := middleware.DefaultCORSOptions()
	if deps.CORS != nil {
		cors = *deps.CORS
	}
	r.Use(middleware.CORS(cors))
	if deps.RateLimit != nil {
		r.Use(deps.RateLimit.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w, "") })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/", "home", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/routes", http.StatusFound)
	})
	r.Get("/routes", "routes", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, r.Routes())
	})
	if deps.StorageDir != "" {
		files := http.StripPrefix("/storage/", http.FileServer(http.Dir(deps.StorageDir)))
		r.Handle(http.MethodGet, "/storage/*", "storage", files)
	}

	err := routes.RegisterAPI(r, routes.Services{
		DB:             deps.DB,
		Catalog:        services.NewCatalogService(deps.DB),
		Sales:          services.NewSaleService(deps.DB),
		Reports:        services.NewReportService(deps.DB, deps.Disk, deps.ReportLimit),
		Cache:          deps.Cache,
		IdempotencyTTL: deps.IdempotencyTTL,
	})
	if err != nil {
		return nil, err
	}

	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the mounted routes for route:list.
func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }
