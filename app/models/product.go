package models

import "github.com/shopspring/decimal"

// Product is a catalogue item. Its price is only the current list price;
// sale lines keep their own snapshot.
type Product struct {
	ID       uint            `gorm:"primaryKey"                            json:"id"`
	UUID     string          `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`
	Name     string          `gorm:"column:nombre;size:255;not null;index" json:"nombre"`
	Category string          `gorm:"column:categoria;size:100;index"       json:"categoria"`
	Price    decimal.Decimal `gorm:"column:precio;type:decimal(14,2);not null" json:"precio"`
	Timestamps
}

func (Product) TableName() string { return "productos" }
