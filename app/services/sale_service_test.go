package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ventas/app/models"
)

// createScenarioA stores the sale of the worked example:
// 15000×2 + (25000-2000)×1 = 53000.
func createScenarioA(t *testing.T, f *fixture) models.Sale {
	t.Helper()
	sale, err := f.sales.CreateSale(context.Background(), CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines: []LineInput{
			line(f.products[0].ID, "15000", "0", 2),
			line(f.products[1].ID, "25000", "2000", 1),
		},
	})
	require.NoError(t, err)
	return sale
}

func TestCreateSaleComputesTotal(t *testing.T) {
	f := newFixture(t)
	sale := createScenarioA(t, f)

	requireDecimal(t, "53000", sale.Total)
	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
	require.Len(t, sale.Lines, 2)
	assert.NotZero(t, sale.Lines[0].ID)
	assert.NotEmpty(t, sale.UUID)
}

func TestUpdateLineQuantityRecalculates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	updated, err := f.sales.UpdateLine(ctx, sale.Lines[0].ID, UpdateLineInput{Quantity: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	requireDecimal(t, "15000", updated.Price)

	requireDecimal(t, "68000", f.storedTotal(t, sale.ID))
}

func TestDeleteLineRecalculates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	_, err := f.sales.UpdateLine(ctx, sale.Lines[0].ID, UpdateLineInput{Quantity: ptr(3)})
	require.NoError(t, err)
	require.NoError(t, f.sales.DeleteLine(ctx, sale.Lines[1].ID))

	requireDecimal(t, "45000", f.storedTotal(t, sale.ID))

	lines, err := f.sales.ListSaleLines(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAddLineRecalculates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	l, err := f.sales.AddLine(ctx, AddLineInput{SaleID: sale.ID, LineInput: LineInput{
		ProductID: f.products[1].ID,
		Price:     ptr(dec("1000.50")),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Quantity, "cantidad defaults to 1")
	requireDecimal(t, "0", l.Discount)

	requireDecimal(t, "54000.50", f.storedTotal(t, sale.ID))
}

func TestTotalMatchesLinesAfterEveryMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	check := func(step string) {
		t.Helper()
		assert.Truef(t, f.lineSum(t, sale.ID).Equal(f.storedTotal(t, sale.ID)), "after %s", step)
	}
	check("create")

	added, err := f.sales.AddLine(ctx, AddLineInput{SaleID: sale.ID, LineInput: line(f.products[0].ID, "999.99", "0.99", 4)})
	require.NoError(t, err)
	check("add")

	_, err = f.sales.UpdateLine(ctx, added.ID, UpdateLineInput{Discount: ptr(dec("100")), Price: ptr(dec("1200"))})
	require.NoError(t, err)
	check("update price and discount")

	_, err = f.sales.UpdateLine(ctx, added.ID, UpdateLineInput{ProductID: ptr(f.products[1].ID)})
	require.NoError(t, err)
	check("update product")

	require.NoError(t, f.sales.DeleteLine(ctx, sale.Lines[0].ID))
	check("delete")
}

func TestSaleWithoutLinesHasZeroTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.sales.CreateSale(ctx, CreateSaleInput{CustomerID: f.customer.ID})
	require.NoError(t, err)
	requireDecimal(t, "0", sale.Total)
	assert.NotNil(t, sale.Lines)
	assert.Empty(t, sale.Lines)

	// Removing the last line brings the total back to zero.
	l, err := f.sales.AddLine(ctx, AddLineInput{SaleID: sale.ID, LineInput: line(f.products[0].ID, "500", "0", 2)})
	require.NoError(t, err)
	requireDecimal(t, "1000", f.storedTotal(t, sale.ID))

	require.NoError(t, f.sales.DeleteLine(ctx, l.ID))
	requireDecimal(t, "0", f.storedTotal(t, sale.ID))
}

func TestRecalculateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	first, err := f.sales.Recalculate(ctx, sale.ID)
	require.NoError(t, err)
	second, err := f.sales.Recalculate(ctx, sale.ID)
	require.NoError(t, err)

	requireDecimal(t, "53000", first)
	assert.True(t, first.Equal(second))
}

func TestRecalculateRepairsDriftedTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	require.NoError(t, f.db.Model(&models.Sale{}).Where("id = ?", sale.ID).Update("total", decimal.NewFromInt(1)).Error)

	total, err := f.sales.Recalculate(ctx, sale.ID)
	require.NoError(t, err)
	requireDecimal(t, "53000", total)
	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
}

func TestRecalculateUnknownSale(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Recalculate(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSaleHeaderKeepsLinesAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	other, err := f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Luis Soto", Email: "luis@example.cl", RUT: "22.222.222-2"})
	require.NoError(t, err)

	when := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	updated, err := f.sales.UpdateSaleHeader(ctx, sale.ID, UpdateSaleInput{CustomerID: ptr(other.ID), Date: &when})
	require.NoError(t, err)

	assert.Equal(t, other.ID, updated.CustomerID)
	assert.True(t, when.Equal(updated.Date))
	requireDecimal(t, "53000", updated.Total)
	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
	assert.Len(t, updated.Lines, 2)

	reloaded, err := f.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, reloaded.CustomerID)
	assert.Len(t, reloaded.Lines, 2)
}

func TestUpdateSaleHeaderUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	sale := createScenarioA(t, f)

	_, err := f.sales.UpdateSaleHeader(context.Background(), sale.ID, UpdateSaleInput{CustomerID: ptr(uint(999))})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSaleUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.CreateSale(context.Background(), CreateSaleInput{
		CustomerID: 999,
		Lines:      []LineInput{line(f.products[0].ID, "100", "0", 1)},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, f.db.Model(&models.Sale{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateSaleUnknownProductRollsBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.CreateSale(context.Background(), CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines: []LineInput{
			line(f.products[0].ID, "100", "0", 1),
			line(999, "100", "0", 1),
		},
	})
	assert.ErrorIs(t, err, ErrReferentialIntegrity)

	var sales, lines int64
	require.NoError(t, f.db.Model(&models.Sale{}).Count(&sales).Error)
	require.NoError(t, f.db.Model(&models.SaleLine{}).Count(&lines).Error)
	assert.Zero(t, sales)
	assert.Zero(t, lines)
}

func TestAddLineToUnknownSale(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.AddLine(context.Background(), AddLineInput{SaleID: 999, LineInput: line(f.products[0].ID, "100", "0", 1)})
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestLineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	cases := []struct {
		name  string
		in    LineInput
		field string
	}{
		{"zero quantity", line(f.products[0].ID, "100", "0", 0), "cantidad"},
		{"negative quantity", line(f.products[0].ID, "100", "0", -1), "cantidad"},
		{"negative price", line(f.products[0].ID, "-1", "0", 1), "precio"},
		{"negative discount", line(f.products[0].ID, "100", "-5", 1), "descuento"},
		{"discount above price", line(f.products[0].ID, "100", "100.01", 1), "descuento"},
		{"missing price", LineInput{ProductID: f.products[0].ID}, "precio"},
		{"sub-cent price", line(f.products[0].ID, "0.005", "0", 1), "precio"},
		{"sub-cent discount", line(f.products[0].ID, "100", "0.125", 1), "descuento"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.sales.AddLine(ctx, AddLineInput{SaleID: sale.ID, LineInput: tc.in})
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
}

func TestMoneyInCentsKeepsTotalsAndReportsAligned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sales.CreateSale(ctx, CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines:      []LineInput{line(f.products[0].ID, "0.005", "0", 1)},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "detalles[0].precio")

	sale, err := f.sales.CreateSale(ctx, CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines:      []LineInput{line(f.products[0].ID, "10.500", "0.25", 3)},
	})
	require.NoError(t, err)
	requireDecimal(t, "30.75", sale.Total)

	_, err = f.sales.UpdateLine(ctx, sale.Lines[0].ID, UpdateLineInput{Price: ptr(dec("10.001"))})
	assert.ErrorIs(t, err, ErrValidation)
	requireDecimal(t, "30.75", f.storedTotal(t, sale.ID))

	customers, err := NewReportService(f.db, nil, 0).TopCustomers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	requireDecimal(t, "30.75", customers[0].Revenue)
}

func TestCreateSaleValidationKeysPointAtLine(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.CreateSale(context.Background(), CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines: []LineInput{
			line(f.products[0].ID, "100", "0", 1),
			line(f.products[1].ID, "100", "150", 1),
		},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "detalles[1].descuento")
}

func TestUpdateLineRejectsDiscountAboveStoredPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	_, err := f.sales.UpdateLine(ctx, sale.Lines[0].ID, UpdateLineInput{Discount: ptr(dec("15000.01"))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.sales.UpdateLine(ctx, sale.Lines[0].ID, UpdateLineInput{Quantity: ptr(0)})
	assert.ErrorIs(t, err, ErrValidation)

	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
}

func TestUpdateLineUnknownProduct(t *testing.T) {
	f := newFixture(t)
	sale := createScenarioA(t, f)

	_, err := f.sales.UpdateLine(context.Background(), sale.Lines[0].ID, UpdateLineInput{ProductID: ptr(uint(999))})
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
	requireDecimal(t, "53000", f.storedTotal(t, sale.ID))
}

func TestLineNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sales.UpdateLine(ctx, 42, UpdateLineInput{Quantity: ptr(2)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.sales.DeleteLine(ctx, 42), ErrNotFound)
	_, err = f.sales.GetLine(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.sales.ListSaleLines(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSaleRemovesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := createScenarioA(t, f)

	require.NoError(t, f.sales.DeleteSale(ctx, sale.ID))

	_, err := f.sales.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, f.db.Model(&models.SaleLine{}).Where("venta_id = ?", sale.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, f.sales.DeleteSale(ctx, sale.ID), ErrNotFound)
}

func TestListSalesIncludesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createScenarioA(t, f)
	_, err := f.sales.CreateSale(ctx, CreateSaleInput{CustomerID: f.customer.ID})
	require.NoError(t, err)

	sales, page, err := f.sales.ListSales(ctx, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, sales, 2)
	assert.Len(t, sales[0].Lines, 2)
	assert.NotNil(t, sales[1].Lines)
	assert.Empty(t, sales[1].Lines)

	lines, page, err := f.sales.ListLines(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, lines, 1)
}

func TestSaleTotal(t *testing.T) {
	assert.True(t, SaleTotal(nil).IsZero())

	lines := []models.SaleLine{
		{Price: dec("0.10"), Discount: dec("0"), Quantity: 3},
		{Price: dec("0.20"), Discount: dec("0.05"), Quantity: 1},
	}
	requireDecimal(t, "0.45", SaleTotal(lines))
}
