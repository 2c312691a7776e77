package services

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ventas/pkg/storage"
)

// seedReportStore adds to the fixture:
//
//	Ana   sale 1: Teclado 15000×2, Monitor (25000-2000)×1   = 53000
//	Luis  sale 2: Teclado (14000-500)×3                      = 40500
//	Luis  sale 3: Mouse 5000×5                               = 25000
//	Carla no sales
func seedReportStore(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()

	mouse, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Mouse", Category: "Periféricos", Price: ptr(dec("5000"))})
	require.NoError(t, err)
	luis, err := f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Luis Soto", Email: "luis@example.cl", RUT: "22.222.222-2"})
	require.NoError(t, err)
	_, err = f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Carla Rojas", Email: "carla@example.cl", RUT: "33.333.333-3"})
	require.NoError(t, err)

	createScenarioA(t, f)
	for _, in := range []CreateSaleInput{
		{CustomerID: luis.ID, Lines: []LineInput{line(f.products[0].ID, "14000", "500", 3)}},
		{CustomerID: luis.ID, Lines: []LineInput{line(mouse.ID, "5000", "0", 5)}},
	} {
		_, err := f.sales.CreateSale(ctx, in)
		require.NoError(t, err)
	}
}

func TestTopProductsRanksByUnitsThenRevenue(t *testing.T) {
	f := newFixture(t)
	seedReportStore(t, f)
	reports := NewReportService(f.db, nil, 0)

	rows, err := reports.TopProducts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Teclado", rows[0].Name)
	assert.EqualValues(t, 5, rows[0].UnitsSold)
	requireDecimal(t, "70500", rows[0].Revenue)

	assert.Equal(t, "Mouse", rows[1].Name, "same units as Teclado, less revenue")
	requireDecimal(t, "25000", rows[1].Revenue)

	assert.Equal(t, "Monitor", rows[2].Name)
	assert.EqualValues(t, 1, rows[2].UnitsSold)
	requireDecimal(t, "23000", rows[2].Revenue)

	top1, err := reports.TopProducts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, rows[0].ProductID, top1[0].ProductID)
}

func TestTopProductsMoreUnitsWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A: 10 cheap units, B: 5 expensive units. Units decide, not revenue.
	_, err := f.sales.CreateSale(ctx, CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines: []LineInput{
			line(f.products[1].ID, "1000", "0", 5),
			line(f.products[0].ID, "100", "0", 10),
		},
	})
	require.NoError(t, err)

	rows, err := NewReportService(f.db, nil, 0).TopProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, f.products[0].ID, rows[0].ProductID)
	assert.Equal(t, f.products[1].ID, rows[1].ProductID)
}

func TestTopProductsFullTieOrdersByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sales.CreateSale(ctx, CreateSaleInput{
		CustomerID: f.customer.ID,
		Lines: []LineInput{
			line(f.products[1].ID, "100", "0", 2),
			line(f.products[0].ID, "100", "0", 2),
		},
	})
	require.NoError(t, err)

	rows, err := NewReportService(f.db, nil, 0).TopProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Less(t, rows[0].ProductID, rows[1].ProductID)
}

func TestTopCustomersRanksByRevenue(t *testing.T) {
	f := newFixture(t)
	seedReportStore(t, f)

	rows, err := NewReportService(f.db, nil, 0).TopCustomers(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2, "customers without sales are left out")

	assert.Equal(t, "Luis Soto", rows[0].Name)
	assert.EqualValues(t, 2, rows[0].SaleCount)
	requireDecimal(t, "65500", rows[0].Revenue)

	assert.Equal(t, f.customer.ID, rows[1].CustomerID)
	assert.EqualValues(t, 1, rows[1].SaleCount)
	requireDecimal(t, "53000", rows[1].Revenue)
}

func TestLargeLimitReturnsWholeRanking(t *testing.T) {
	f := newFixture(t)
	seedReportStore(t, f)
	reports := NewReportService(f.db, nil, 0)

	products, err := reports.TopProducts(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	customers, err := reports.TopCustomers(context.Background(), 101)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}

func TestTopCustomersRevenueMatchesLines(t *testing.T) {
	f := newFixture(t)
	seedReportStore(t, f)
	ctx := context.Background()

	rows, err := NewReportService(f.db, nil, 0).TopCustomers(ctx, 5)
	require.NoError(t, err)

	sales, _, err := f.sales.ListSales(ctx, 0, 0)
	require.NoError(t, err)
	for _, r := range rows {
		sum := dec("0")
		for _, s := range sales {
			if s.CustomerID == r.CustomerID {
				sum = sum.Add(SaleTotal(s.Lines))
			}
		}
		assert.Truef(t, sum.Equal(r.Revenue), "customer %d: lines %s, report %s", r.CustomerID, sum, r.Revenue)
	}
}

func TestTopCustomersTieBreaks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	luis, err := f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Luis Soto", Email: "luis@example.cl", RUT: "2"})
	require.NoError(t, err)
	carla, err := f.catalog.CreateCustomer(ctx, CustomerInput{Name: "Carla Rojas", Email: "carla@example.cl", RUT: "3"})
	require.NoError(t, err)

	p := f.products[0].ID
	for _, in := range []CreateSaleInput{
		// Ana: 1000 in one sale. Luis: 1000 in two sales. Carla: 1000 in one sale.
		{CustomerID: f.customer.ID, Lines: []LineInput{line(p, "1000", "0", 1)}},
		{CustomerID: luis.ID, Lines: []LineInput{line(p, "500", "0", 1)}},
		{CustomerID: luis.ID, Lines: []LineInput{line(p, "500", "0", 1)}},
		{CustomerID: carla.ID, Lines: []LineInput{line(p, "1000", "0", 1)}},
	} {
		_, err := f.sales.CreateSale(ctx, in)
		require.NoError(t, err)
	}

	rows, err := NewReportService(f.db, nil, 0).TopCustomers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, luis.ID, rows[0].CustomerID, "more sales breaks a revenue tie")
	assert.Equal(t, f.customer.ID, rows[1].CustomerID, "lower id breaks a full tie")
	assert.Equal(t, carla.ID, rows[2].CustomerID)
}

func TestReportsOnEmptyStore(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.db, nil, 0)

	products, err := reports.TopProducts(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	customers, err := reports.TopCustomers(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, customers)
	assert.Empty(t, customers)
}

func TestReportLimitValidation(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.db, nil, 7)

	for _, n := range []int{0, -1} {
		_, err := reports.TopProducts(context.Background(), n)
		assert.ErrorIs(t, err, ErrValidation, "limit %d", n)
		_, err = reports.TopCustomers(context.Background(), n)
		assert.ErrorIs(t, err, ErrValidation, "limit %d", n)
	}

	n, err := reports.ParseLimit("")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = reports.ParseLimit(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = reports.ParseLimit("1000")
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	for _, raw := range []string{"abc", "0", "-2", "1.5"} {
		_, err := reports.ParseLimit(raw)
		assert.ErrorIs(t, err, ErrValidation, "raw %q", raw)
	}
}

func TestExportWritesCSVToDisk(t *testing.T) {
	f := newFixture(t)
	seedReportStore(t, f)
	ctx := context.Background()

	disk, err := storage.New(ctx, storage.Config{Driver: "local", LocalRoot: t.TempDir(), LocalURL: "http://localhost:8080/storage"})
	require.NoError(t, err)

	reports := NewReportService(f.db, disk, 0)
	reports.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))

	for _, report := range []string{ReportTopProducts, ReportTopCustomers} {
		export, err := reports.Export(ctx, report, 5)
		require.NoError(t, err)
		assert.Equal(t, "reportes/"+report+"-20240315T103000Z.csv", export.Path)
		assert.Equal(t, "http://localhost:8080/storage/"+export.Path, export.URL)

		data, err := disk.Get(ctx, export.Path)
		require.NoError(t, err)
		g.Assert(t, report, data)
	}
	_, err = reports.Export(ctx, "ventas-por-dia", 5)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reports.Export(ctx, ReportTopProducts, 0)
	assert.ErrorIs(t, err, ErrValidation)
}
