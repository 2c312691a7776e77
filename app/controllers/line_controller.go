package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

// LineController serves /detalles. Every mutation recalculates the owning
// sale inside the same transaction.
type LineController struct {
	service *services.SaleService
}

func NewLineController(service *services.SaleService) *LineController {
	return &LineController{service: service}
}

func (c *LineController) Index(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	lines, page, err := c.service.ListLines(r.Context(), skip, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Paginated(w, lines, page)
}

func (c *LineController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.AddLineInput
	if !decode(w, r, &in) {
		return
	}
	line, err := c.service.AddLine(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, line)
}

func (c *LineController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	line, err := c.service.GetLine(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, line)
}

func (c *LineController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in services.UpdateLineInput
	if !decode(w, r, &in) {
		return
	}
	line, err := c.service.UpdateLine(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, line)
}

func (c *LineController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := c.service.DeleteLine(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	response.NoContent(w)
}
