package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRanking is one row of the best-selling products report.
type ProductRanking struct {
	ProductID uint            `json:"producto_id"    gorm:"column:producto_id"`
	Name      string          `json:"nombre"         gorm:"column:nombre"`
	UnitsSold int64           `json:"total_cantidad" gorm:"column:total_cantidad"`
	Revenue   decimal.Decimal `json:"total_ingresos" gorm:"column:total_ingresos"`
}

// CustomerRanking is one row of the top customers report.
type CustomerRanking struct {
	CustomerID uint            `json:"cliente_id"  gorm:"column:cliente_id"`
	Name       string          `json:"nombre"      gorm:"column:nombre"`
	SaleCount  int64           `json:"total_ventas" gorm:"column:total_ventas"`
	Revenue    decimal.Decimal `json:"total_monto"  gorm:"column:total_monto"`
}

// ReportRepository runs the read-only ranking aggregations.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// TopProducts ranks products by units sold, then revenue, then id.
// Products that were never sold do not appear.
func (r *ReportRepository) TopProducts(ctx context.Context, limit int) ([]ProductRanking, error) {
	rows := []ProductRanking{}
	err := r.db.WithContext(ctx).
		Table("detalles_ventas AS d").
		Select(`d.producto_id AS producto_id,
			p.nombre AS nombre,
			SUM(d.cantidad) AS total_cantidad,
			COALESCE(SUM((d.precio - d.descuento) * d.cantidad), 0) AS total_ingresos`).
		Joins("JOIN productos AS p ON p.id = d.producto_id").
		Group("d.producto_id, p.nombre").
		Order("total_cantidad DESC, total_ingresos DESC, d.producto_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, nil
}

// TopCustomers ranks customers by the sum of their sale totals, then by
// number of sales, then id. Customers without sales do not appear.
func (r *ReportRepository) TopCustomers(ctx context.Context, limit int) ([]CustomerRanking, error) {
	rows := []CustomerRanking{}
	err := r.db.WithContext(ctx).
		Table("ventas AS v").
		Select(`v.cliente_id AS cliente_id,
			c.nombre AS nombre,
			COUNT(v.id) AS total_ventas,
			COALESCE(SUM(v.total), 0) AS total_monto`).
		Joins("JOIN clientes AS c ON c.id = v.cliente_id").
		Group("v.cliente_id, c.nombre").
		Order("total_monto DESC, total_ventas DESC, v.cliente_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, nil
}
