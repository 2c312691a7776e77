package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/internal/testdb"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(productID uint, price, discount string, qty int) LineInput {
	return LineInput{
		ProductID: productID,
		Price:     ptr(dec(price)),
		Discount:  ptr(dec(discount)),
		Quantity:  ptr(qty),
	}
}

type fixture struct {
	db       *gorm.DB
	catalog  *CatalogService
	sales    *SaleService
	customer models.Customer
	products []models.Product
}

// newFixture opens a fresh database with one customer and two products.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db := testdb.Open(t)
	f := &fixture{db: db, catalog: NewCatalogService(db), sales: NewSaleService(db)}

	var err error
	f.customer, err = f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Ana Pérez", Email: "ana@example.cl", RUT: "11.111.111-1"})
	require.NoError(t, err)

	for _, p := range []ProductInput{
		{Name: "Teclado", Category: "Periféricos", Price: ptr(dec("15000"))},
		{Name: "Monitor", Category: "Pantallas", Price: ptr(dec("25000"))},
	} {
		created, err := f.catalog.CreateProduct(ctx, p)
		require.NoError(t, err)
		f.products = append(f.products, created)
	}
	return f
}

// storedTotal reads ventas.total straight from the table.
func (f *fixture) storedTotal(t *testing.T, saleID uint) decimal.Decimal {
	t.Helper()
	var s models.Sale
	require.NoError(t, f.db.First(&s, saleID).Error)
	return s.Total
}

// lineSum recomputes Σ (precio - descuento) * cantidad from the stored lines.
func (f *fixture) lineSum(t *testing.T, saleID uint) decimal.Decimal {
	t.Helper()
	var lines []models.SaleLine
	require.NoError(t, f.db.Where("venta_id = ?", saleID).Find(&lines).Error)
	return SaleTotal(lines)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
