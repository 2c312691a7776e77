package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a purchase by one customer. Total is derived from its lines and
// is only ever written by the recalculation in the sale service.
type Sale struct {
	ID         uint            `gorm:"primaryKey"                              json:"id"`
	UUID       string          `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`
	CustomerID uint            `gorm:"column:cliente_id;not null;index"        json:"cliente_id"`
	Date       time.Time       `gorm:"column:fecha;not null;index"             json:"fecha"`
	Total      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"   json:"total"`
	Timestamps

	Customer *Customer  `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Lines    []SaleLine `gorm:"-"                                                                    json:"detalles"`
}

func (Sale) TableName() string { return "ventas" }

// SaleLine is one product sold inside a Sale. Price and discount are
// per-unit snapshots taken when the line was written.
type SaleLine struct {
	ID        uint            `gorm:"primaryKey"                               json:"id"`
	UUID      string          `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`
	SaleID    uint            `gorm:"column:venta_id;not null;index"            json:"venta_id"`
	ProductID uint            `gorm:"column:producto_id;not null;index"         json:"producto_id"`
	Price     decimal.Decimal `gorm:"column:precio;type:decimal(14,2);not null" json:"precio"`
	Discount  decimal.Decimal `gorm:"column:descuento;type:decimal(14,2);not null;default:0" json:"descuento"`
	Quantity  int             `gorm:"column:cantidad;not null"                  json:"cantidad"`
	Timestamps

	Sale    *Sale    `gorm:"foreignKey:SaleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"     json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (SaleLine) TableName() string { return "detalles_ventas" }

// Subtotal is (precio - descuento) * cantidad.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.Price.Sub(l.Discount).Mul(decimal.NewFromInt(int64(l.Quantity)))
}
