package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ventas/app/models"
)

func TestDeleteCustomerWithSalesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createScenarioA(t, f)

	err := f.catalog.DeleteCustomer(ctx, f.customer.ID)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)

	_, err = f.catalog.GetCustomer(ctx, f.customer.ID)
	assert.NoError(t, err, "customer must still exist")
}

func TestDeleteCustomerForeignKeyBackstop(t *testing.T) {
	f := newFixture(t)
	createScenarioA(t, f)

	err := f.db.Delete(&models.Customer{}, f.customer.ID).Error
	assert.Error(t, err, "the store itself refuses to orphan a sale")
}

func TestDeleteCustomerWithoutSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.catalog.DeleteCustomer(ctx, f.customer.ID))
	_, err := f.catalog.GetCustomer(ctx, f.customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.catalog.DeleteCustomer(ctx, f.customer.ID), ErrNotFound)
}

func TestDeleteProductOnSaleLinesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createScenarioA(t, f)

	assert.ErrorIs(t, f.catalog.DeleteProduct(ctx, f.products[0].ID), ErrReferentialIntegrity)

	unsold, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Mouse", Price: ptr(dec("5990"))})
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteProduct(ctx, unsold.ID))
}

func TestCustomerUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Otra Ana", Email: "ANA@example.cl", RUT: "33.333.333-3"})
	assert.ErrorIs(t, err, ErrConflict, "email is compared case-insensitively")

	_, err = f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Otra Ana", Email: "otra@example.cl", RUT: f.customer.RUT})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCustomerValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateCustomer(context.Background(), CustomerInput{Name: "X", Email: "not-an-email"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "rut")
}

func TestUpdateCustomerPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.catalog.UpdateCustomer(ctx, f.customer.ID, UpdateCustomerInput{Name: ptr("Ana María Pérez")})
	require.NoError(t, err)
	assert.Equal(t, "Ana María Pérez", updated.Name)
	assert.Equal(t, f.customer.Email, updated.Email)
	assert.Equal(t, f.customer.UUID, updated.UUID)

	_, err = f.catalog.UpdateCustomer(ctx, f.customer.ID, UpdateCustomerInput{Name: ptr("")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.catalog.UpdateCustomer(ctx, 999, UpdateCustomerInput{Name: ptr("Nadie")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProductPriceLeavesSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	p, err := f.catalog.UpdateProduct(ctx, f.products[0].ID, UpdateProductInput{Price: ptr(dec("99999"))})
	require.NoError(t, err)
	requireDecimal(t, "99999", p.Price)
	assert.Equal(t, "Teclado", p.Name)

	lines, err := f.sales.ListSaleLines(ctx, sale.ID)
	require.NoError(t, err)
	requireDecimal(t, "15000", lines[0].Price)
	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
}

func TestProductPriceMustBeInCents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Cable", Price: ptr(dec("1990.999"))})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "precio")

	p, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Cable", Price: ptr(dec("1990.90"))})
	require.NoError(t, err)
	requireDecimal(t, "1990.9", p.Price)

	_, err = f.catalog.UpdateProduct(ctx, p.ID, UpdateProductInput{Price: ptr(dec("0.001"))})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListCustomersPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, c := range []CustomerInput{
		{Name: "B", Email: "b@example.cl", RUT: "2"},
		{Name: "C", Email: "c@example.cl", RUT: "3"},
	} {
		_, err := f.catalog.CreateCustomer(ctx, c)
		require.NoError(t, err)
	}

	customers, page, err := f.catalog.ListCustomers(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, customers, 1)
	assert.Equal(t, "B", customers[0].Name)

	products, page, err := f.catalog.ListProducts(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	assert.Len(t, products, 2)
}
