package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

type ProductController struct {
	service *services.CatalogService
}

func NewProductController(service *services.CatalogService) *ProductController {
	return &ProductController{service: service}
}

func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	products, page, err := c.service.ListProducts(r.Context(), skip, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Paginated(w, products, page)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if !decode(w, r, &in) {
		return
	}
	product, err := c.service.CreateProduct(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	product, err := c.service.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in services.UpdateProductInput
	if !decode(w, r, &in) {
		return
	}
	product, err := c.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := c.service.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	response.NoContent(w)
}
