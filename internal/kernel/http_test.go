package kernel

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ventas/internal/testdb"
	"github.com/shashiranjanraj/ventas/pkg/cache"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	k, err := NewHTTPKernel(Deps{DB: testdb.Open(t), Cache: store})
	require.NoError(t, err)
	return &client{t: t, h: k.Handler()}
}

func (c *client) do(method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// create posts body and returns the decoded data object.
func (c *client) create(path, body string) map[string]any {
	c.t.Helper()
	rec, env := c.do(http.MethodPost, path, body)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(env.Data, &out))
	return out
}

func data[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// seedScenarioA creates Ana, Teclado and Monitor, then the 53000 sale.
func (c *client) seedScenarioA() (saleID int) {
	c.create("/clientes", `{"nombre":"Ana Pérez","email":"ana@example.cl","rut":"11.111.111-1"}`)
	c.create("/productos", `{"nombre":"Teclado","categoria":"Periféricos","precio":15000}`)
	c.create("/productos", `{"nombre":"Monitor","categoria":"Pantallas","precio":"25000"}`)

	sale := c.create("/ventas", `{
		"cliente_id": 1,
		"fecha": "2024-03-15T10:30:00Z",
		"detalles": [
			{"producto_id": 1, "precio": 15000, "descuento": 0, "cantidad": 2},
			{"producto_id": 2, "precio": 25000, "descuento": 2000, "cantidad": 1}
		]
	}`)
	require.EqualValues(c.t, 53000, sale["total"])
	require.Len(c.t, sale["detalles"], 2)
	return int(sale["id"].(float64))
}

func TestSaleLifecycleKeepsTotalInSync(t *testing.T) {
	c := newClient(t)
	saleID := c.seedScenarioA()

	_, env := c.do(http.MethodGet, fmt.Sprintf("/ventas/%d", saleID), "")
	sale := data[map[string]any](t, env)
	assert.EqualValues(t, 53000, sale["total"])

	// Scenario B: first line quantity 2 → 3.
	lines := sale["detalles"].([]any)
	firstLine := int(lines[0].(map[string]any)["id"].(float64))
	rec, env := c.do(http.MethodPut, fmt.Sprintf("/detalles/%d", firstLine), `{"cantidad":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 3, data[map[string]any](t, env)["cantidad"])

	_, env = c.do(http.MethodGet, fmt.Sprintf("/ventas/%d", saleID), "")
	assert.EqualValues(t, 68000, data[map[string]any](t, env)["total"])

	// Scenario C: drop the monitor line.
	secondLine := int(lines[1].(map[string]any)["id"].(float64))
	rec, _ = c.do(http.MethodDelete, fmt.Sprintf("/detalles/%d", secondLine), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, env = c.do(http.MethodGet, fmt.Sprintf("/ventas/%d", saleID), "")
	assert.EqualValues(t, 45000, data[map[string]any](t, env)["total"])

	// Standalone line create.
	line := c.create("/detalles", fmt.Sprintf(`{"venta_id":%d,"producto_id":2,"precio":"1000.50"}`, saleID))
	assert.EqualValues(t, 1, line["cantidad"])

	_, env = c.do(http.MethodGet, fmt.Sprintf("/ventas/%d/detalles", saleID), "")
	assert.Len(t, data[[]any](t, env), 2)

	rec, env = c.do(http.MethodPost, fmt.Sprintf("/ventas/%d/recalcular", saleID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 46000.5, data[map[string]any](t, env)["total"])
}

func TestHeaderUpdateLeavesTotal(t *testing.T) {
	c := newClient(t)
	saleID := c.seedScenarioA()
	c.create("/clientes", `{"nombre":"Luis Soto","email":"luis@example.cl","rut":"2"}`)

	rec, env := c.do(http.MethodPut, fmt.Sprintf("/ventas/%d", saleID), `{"cliente_id":2,"fecha":"2024-04-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sale := data[map[string]any](t, env)
	assert.EqualValues(t, 2, sale["cliente_id"])
	assert.EqualValues(t, 53000, sale["total"])

	rec, _ = c.do(http.MethodPut, fmt.Sprintf("/ventas/%d", saleID), `{"cliente_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	c := newClient(t)
	c.seedScenarioA()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown sale", http.MethodGet, "/ventas/999", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/ventas/abc", "", http.StatusUnprocessableEntity},
		{"zero id", http.MethodGet, "/clientes/0", "", http.StatusUnprocessableEntity},
		{"malformed body", http.MethodPost, "/ventas", `{"cliente_id":`, http.StatusBadRequest},
		{"missing body", http.MethodPost, "/productos", "", http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/detalles", `{"venta_id":1,"producto_id":1,"precio":10,"cantidad":0}`, http.StatusUnprocessableEntity},
		{"negative price", http.MethodPost, "/detalles", `{"venta_id":1,"producto_id":1,"precio":-1}`, http.StatusUnprocessableEntity},
		{"discount above price", http.MethodPost, "/detalles", `{"venta_id":1,"producto_id":1,"precio":10,"descuento":11}`, http.StatusUnprocessableEntity},
		{"unknown product", http.MethodPost, "/detalles", `{"venta_id":1,"producto_id":77,"precio":10}`, http.StatusConflict},
		{"unknown sale for line", http.MethodPost, "/detalles", `{"venta_id":77,"producto_id":1,"precio":10}`, http.StatusConflict},
		{"customer with sales", http.MethodDelete, "/clientes/1", "", http.StatusConflict},
		{"product with lines", http.MethodDelete, "/productos/1", "", http.StatusConflict},
		{"duplicate email", http.MethodPost, "/clientes", `{"nombre":"Otra","email":"ana@example.cl","rut":"9"}`, http.StatusConflict},
		{"bad skip", http.MethodGet, "/ventas?skip=-1", "", http.StatusUnprocessableEntity},
		{"listing limit zero", http.MethodGet, "/clientes?limit=0", "", http.StatusUnprocessableEntity},
		{"listing limit above max", http.MethodGet, "/productos?limit=501", "", http.StatusUnprocessableEntity},
		{"sub-cent price", http.MethodPost, "/detalles", `{"venta_id":1,"producto_id":1,"precio":"0.005"}`, http.StatusUnprocessableEntity},
		{"sub-cent product price", http.MethodPost, "/productos", `{"nombre":"Cable","precio":1990.999}`, http.StatusUnprocessableEntity},
		{"report limit above one hundred", http.MethodGet, "/reportes/clientes-mas-ventas?limit=101", "", http.StatusOK},
		{"bad limit", http.MethodGet, "/reportes/productos-mas-vendidos?limit=0", "", http.StatusUnprocessableEntity},
		{"limit not a number", http.MethodGet, "/reportes/clientes-mas-ventas?limit=x", "", http.StatusUnprocessableEntity},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/ventas", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.status, env.Status)
		})
	}

	_, env := c.do(http.MethodGet, "/ventas/1", "")
	assert.EqualValues(t, 53000, data[map[string]any](t, env)["total"], "rejected requests leave the sale untouched")
}

func TestListingLimitIsReportedInPagination(t *testing.T) {
	c := newClient(t)
	c.seedScenarioA()

	rec, env := c.do(http.MethodGet, "/productos?limit=500", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := data[map[string]any](t, env)["pagination"].(map[string]any)
	assert.EqualValues(t, 500, page["limit"])
	assert.EqualValues(t, 2, page["total"])

	_, env = c.do(http.MethodGet, "/productos", "")
	page = data[map[string]any](t, env)["pagination"].(map[string]any)
	assert.EqualValues(t, 100, page["limit"])
}

func TestSaleWithoutLinesListsEmptyDetalles(t *testing.T) {
	c := newClient(t)
	c.seedScenarioA()

	sale := c.create("/ventas", `{"cliente_id":1}`)
	require.Contains(t, sale, "detalles")
	assert.Equal(t, []any{}, sale["detalles"])
	assert.EqualValues(t, 0, sale["total"])

	_, env := c.do(http.MethodGet, fmt.Sprintf("/ventas/%v", sale["id"]), "")
	shown := data[map[string]any](t, env)
	require.Contains(t, shown, "detalles")
	assert.Equal(t, []any{}, shown["detalles"])
}

func TestValidationKeysForSaleLines(t *testing.T) {
	c := newClient(t)
	c.seedScenarioA()

	rec, env := c.do(http.MethodPost, "/ventas", `{"cliente_id":1,"detalles":[{"producto_id":1,"precio":10},{"producto_id":1,"precio":10,"cantidad":-2}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "detalles[1].cantidad")
}

func TestReportsEndpoints(t *testing.T) {
	c := newClient(t)
	c.seedScenarioA()

	rec, env := c.do(http.MethodGet, "/reportes/productos-mas-vendidos?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := data[[]map[string]any](t, env)
	require.Len(t, products, 1)
	assert.Equal(t, "Teclado", products[0]["nombre"])
	assert.EqualValues(t, 2, products[0]["total_cantidad"])

	_, env = c.do(http.MethodGet, "/reportes/clientes-mas-ventas", "")
	customers := data[[]map[string]any](t, env)
	require.Len(t, customers, 1)
	assert.EqualValues(t, 53000, customers[0]["total_monto"])
	assert.EqualValues(t, 1, customers[0]["total_ventas"])

	rec, _ = c.do(http.MethodPost, "/graphql", `{"query":"{ topCustomers(limit: 3) { nombre totalMonto } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"topCustomers":[{"nombre":"Ana Pérez","totalMonto":"53000.00"}]}}`, rec.Body.String())
}

func TestEmptyReportIsEmptyList(t *testing.T) {
	c := newClient(t)
	rec, _ := c.do(http.MethodGet, "/reportes/productos-mas-vendidos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":[]}`, rec.Body.String())
}

func TestIdempotentSaleCreation(t *testing.T) {
	c := newClient(t)
	c.seedScenarioA()

	body := `{"cliente_id":1,"detalles":[{"producto_id":1,"precio":100,"cantidad":1}]}`
	first, _ := c.do(http.MethodPost, "/ventas", body, "Idempotency-Key", "pedido-42")
	second, _ := c.do(http.MethodPost, "/ventas", body, "Idempotency-Key", "pedido-42")

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	_, env := c.do(http.MethodGet, "/ventas", "")
	page := data[map[string]any](t, env)
	assert.EqualValues(t, 2, page["pagination"].(map[string]any)["total"], "scenario A plus one replayed sale")
}

func TestOperationalEndpoints(t *testing.T) {
	c := newClient(t)

	rec, _ := c.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/routes", rec.Header().Get("Location"))

	rec, env := c.do(http.MethodGet, "/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"/ventas/{id}/detalles"`)

	rec, _ = c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	c.do(http.MethodGet, "/ventas", "")
	rec, _ = c.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ventas_http_requests_total")

	rec, _ = c.do(http.MethodGet, "/ventas", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
