package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

type ReportController struct {
	service *services.ReportService
}

func NewReportController(service *services.ReportService) *ReportController {
	return &ReportController{service: service}
}

// TopProducts serves GET /reportes/productos-mas-vendidos?limit=N.
func (c *ReportController) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := c.service.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := c.service.TopProducts(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, rows)
}

// TopCustomers serves GET /reportes/clientes-mas-ventas?limit=N.
func (c *ReportController) TopCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := c.service.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := c.service.TopCustomers(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, rows)
}

// Export writes the named report as CSV to the storage disk.
func (c *ReportController) Export(w http.ResponseWriter, r *http.Request) {
	limit, err := c.service.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	export, err := c.service.Export(r.Context(), chi.URLParam(r, "reporte"), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, export)
}
