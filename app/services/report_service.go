package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/repositories"
	"github.com/shashiranjanraj/ventas/pkg/logger"
	"github.com/shashiranjanraj/ventas/pkg/metrics"
	"github.com/shashiranjanraj/ventas/pkg/storage"
)

const DefaultReportLimit = 5

// Report names as they appear in URLs.
const (
	ReportTopProducts  = "productos-mas-vendidos"
	ReportTopCustomers = "clientes-mas-ventas"
)

// Export is the location of a rendered report file.
type Export struct {
	Report string `json:"reporte"`
	Path   string `json:"path"`
	URL    string `json:"url"`
	Rows   int    `json:"filas"`
}

// ReportService computes the rankings. Results are never cached.
type ReportService struct {
	db           *gorm.DB
	disk         storage.Disk
	defaultLimit int
	now          func() time.Time
}

// NewReportService wires the aggregator. disk may be nil when exports are
// not needed; defaultLimit <= 0 falls back to DefaultReportLimit.
func NewReportService(db *gorm.DB, disk storage.Disk, defaultLimit int) *ReportService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultReportLimit
	}
	return &ReportService{db: db, disk: disk, defaultLimit: defaultLimit, now: time.Now}
}

// ParseLimit turns the raw limit query value into a ranking size. An empty
// value selects the default.
func (s *ReportService) ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("limit", "The limit must be an integer.")
	}
	return n, checkLimit(n)
}

func checkLimit(n int) error {
	if n <= 0 {
		return invalid("limit", "The limit must be greater than 0.")
	}
	return nil
}

// TopProducts ranks products by units sold.
func (s *ReportService) TopProducts(ctx context.Context, limit int) ([]repositories.ProductRanking, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	defer metrics.ObserveReport("top_products", time.Now())

	rows, err := repositories.NewReportRepository(s.db).TopProducts(ctx, limit)
	if err != nil {
		return nil, storeError(err, "top products")
	}
	if rows == nil {
		rows = []repositories.ProductRanking{}
	}
	return rows, nil
}

// TopCustomers ranks customers by the sum of their sale totals.
func (s *ReportService) TopCustomers(ctx context.Context, limit int) ([]repositories.CustomerRanking, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	defer metrics.ObserveReport("top_customers", time.Now())

	rows, err := repositories.NewReportRepository(s.db).TopCustomers(ctx, limit)
	if err != nil {
		return nil, storeError(err, "top customers")
	}
	if rows == nil {
		rows = []repositories.CustomerRanking{}
	}
	return rows, nil
}

// Export renders report as CSV and writes it to the storage disk under
// reportes/<report>-<UTC timestamp>.csv.
func (s *ReportService) Export(ctx context.Context, report string, limit int) (Export, error) {
	if s.disk == nil {
		return Export{}, fmt.Errorf("report export: no storage disk configured")
	}

	var (
		data []byte
		rows int
		err  error
	)
	switch report {
	case ReportTopProducts:
		var ranking []repositories.ProductRanking
		if ranking, err = s.TopProducts(ctx, limit); err == nil {
			data, err = ProductRankingCSV(ranking)
			rows = len(ranking)
		}
	case ReportTopCustomers:
		var ranking []repositories.CustomerRanking
		if ranking, err = s.TopCustomers(ctx, limit); err == nil {
			data, err = CustomerRankingCSV(ranking)
			rows = len(ranking)
		}
	default:
		return Export{}, fmt.Errorf("report %q: %w", report, ErrNotFound)
	}
	if err != nil {
		return Export{}, err
	}

	path := fmt.Sprintf("reportes/%s-%s.csv", report, s.now().UTC().Format("20060102T150405Z"))
	if err := s.disk.Put(ctx, path, data, "text/csv"); err != nil {
		return Export{}, fmt.Errorf("report export: %w", err)
	}

	logger.WithCtx(ctx).Info("report exported", "reporte", report, "path", path, "filas", rows)
	return Export{Report: report, Path: path, URL: s.disk.URL(path), Rows: rows}, nil
}

// ProductRankingCSV renders the best-selling products report.
func ProductRankingCSV(rows []repositories.ProductRanking) ([]byte, error) {
	records := [][]string{{"producto_id", "nombre", "total_cantidad", "total_ingresos"}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatUint(uint64(r.ProductID), 10),
			r.Name,
			strconv.FormatInt(r.UnitsSold, 10),
			r.Revenue.StringFixed(2),
		})
	}
	return writeCSV(records)
}

// CustomerRankingCSV renders the top customers report.
func CustomerRankingCSV(rows []repositories.CustomerRanking) ([]byte, error) {
	records := [][]string{{"cliente_id", "nombre", "total_ventas", "total_monto"}}
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatUint(uint64(r.CustomerID), 10),
			r.Name,
			strconv.FormatInt(r.SaleCount, 10),
			r.Revenue.StringFixed(2),
		})
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}
