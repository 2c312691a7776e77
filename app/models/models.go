// Package models holds the GORM entities of the sales domain.
//
// Associations are declared only for foreign-key constraints. Nothing is
// preloaded: Sale.Lines is filled by an explicit query in the repositories.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as a JSON number (53000, 12.5), not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// Timestamps are shared by every table. modified_at keeps the column name
// clients already know.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null"                   json:"created_at"`
	UpdatedAt time.Time `gorm:"column:modified_at;not null" json:"modified_at"`
}
