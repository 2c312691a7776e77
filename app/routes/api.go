// Package routes declares the ventas HTTP API.
package routes

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/controllers"
	"github.com/shashiranjanraj/ventas/app/queries"
	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/cache"
	"github.com/shashiranjanraj/ventas/pkg/graphql"
	"github.com/shashiranjanraj/ventas/pkg/middleware"
	"github.com/shashiranjanraj/ventas/pkg/router"
)

// Services holds what the controllers are built from.
type Services struct {
	DB             *gorm.DB
	Catalog        *services.CatalogService
	Sales          *services.SaleService
	Reports        *services.ReportService
	Cache          cache.Store
	IdempotencyTTL time.Duration
}

// RegisterAPI mounts every resource route on r.
func RegisterAPI(r *router.Router, s Services) error {
	customers := controllers.NewCustomerController(s.Catalog)
	products := controllers.NewProductController(s.Catalog)
	sales := controllers.NewSaleController(s.Sales)
	lines := controllers.NewLineController(s.Sales)
	reports := controllers.NewReportController(s.Reports)
	health := controllers.NewHealthController(s.DB)

	schema, err := queries.NewReportsSchema(s.Reports)
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}

	r.Get("/health", "health", health.Show)

	c := r.Group("/clientes")
	c.Get("/", "clientes.index", customers.Index)
	c.Post("/", "clientes.store", customers.Store)
	c.Get("/{id}", "clientes.show", customers.Show)
	c.Put("/{id}", "clientes.update", customers.Update)
	c.Delete("/{id}", "clientes.destroy", customers.Destroy)

	p := r.Group("/productos")
	p.Get("/", "productos.index", products.Index)
	p.Post("/", "productos.store", products.Store)
	p.Get("/{id}", "productos.show", products.Show)
	p.Put("/{id}", "productos.update", products.Update)
	p.Delete("/{id}", "productos.destroy", products.Destroy)

	v := r.Group("/ventas")
	v.Get("/", "ventas.index", sales.Index)
	if s.Cache != nil {
		v.Post("/", "ventas.store", sales.Store, middleware.Idempotency(s.Cache, idempotencyTTL(s.IdempotencyTTL)))
	} else {
		v.Post("/", "ventas.store", sales.Store)
	}
	v.Get("/{id}", "ventas.show", sales.Show)
	v.Put("/{id}", "ventas.update", sales.Update)
	v.Delete("/{id}", "ventas.destroy", sales.Destroy)
	v.Get("/{id}/detalles", "ventas.detalles", sales.Lines)
	v.Post("/{id}/recalcular", "ventas.recalcular", sales.Recalculate)

	d := r.Group("/detalles")
	d.Get("/", "detalles.index", lines.Index)
	d.Post("/", "detalles.store", lines.Store)
	d.Get("/{id}", "detalles.show", lines.Show)
	d.Put("/{id}", "detalles.update", lines.Update)
	d.Delete("/{id}", "detalles.destroy", lines.Destroy)

	rep := r.Group("/reportes")
	rep.Get("/"+services.ReportTopProducts, "reportes.productos", reports.TopProducts)
	rep.Get("/"+services.ReportTopCustomers, "reportes.clientes", reports.TopCustomers)
	rep.Post("/{reporte}/exportar", "reportes.exportar", reports.Export)

	r.Post("/graphql", "graphql", graphql.Handler(schema))
	r.Get("/graphql", "graphql.get", graphql.Handler(schema))

	return nil
}

func idempotencyTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}
