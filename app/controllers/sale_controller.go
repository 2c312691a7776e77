package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

type SaleController struct {
	service *services.SaleService
}

func NewSaleController(service *services.SaleService) *SaleController {
	return &SaleController{service: service}
}

func (c *SaleController) Index(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sales, page, err := c.service.ListSales(r.Context(), skip, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Paginated(w, sales, page)
}

// Store creates a sale with its lines; the response carries the computed total.
func (c *SaleController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CreateSaleInput
	if !decode(w, r, &in) {
		return
	}
	sale, err := c.service.CreateSale(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, sale)
}

func (c *SaleController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	sale, err := c.service.GetSale(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, sale)
}

// Update changes cliente_id and fecha only.
func (c *SaleController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in services.UpdateSaleInput
	if !decode(w, r, &in) {
		return
	}
	sale, err := c.service.UpdateSaleHeader(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, sale)
}

func (c *SaleController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := c.service.DeleteSale(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (c *SaleController) Lines(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	lines, err := c.service.ListSaleLines(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, lines)
}

func (c *SaleController) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	total, err := c.service.Recalculate(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"venta_id": id, "total": total})
}
