package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

type CustomerController struct {
	service *services.CatalogService
}

func NewCustomerController(service *services.CatalogService) *CustomerController {
	return &CustomerController{service: service}
}

func (c *CustomerController) Index(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	customers, page, err := c.service.ListCustomers(r.Context(), skip, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Paginated(w, customers, page)
}

func (c *CustomerController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.CustomerInput
	if !decode(w, r, &in) {
		return
	}
	customer, err := c.service.CreateCustomer(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, customer)
}

func (c *CustomerController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	customer, err := c.service.GetCustomer(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, customer)
}

func (c *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var in services.UpdateCustomerInput
	if !decode(w, r, &in) {
		return
	}
	customer, err := c.service.UpdateCustomer(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, customer)
}

func (c *CustomerController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := c.service.DeleteCustomer(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	response.NoContent(w)
}
