// Package orm holds query helpers shared by the repositories.
package orm

import (
	"context"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Pagination describes one skip/limit window of a listing.
type Pagination struct {
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Normalize clamps skip and limit to the accepted range.
func Normalize(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

// Paginate is a gorm scope applying skip/limit.
func Paginate(skip, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(skip).Limit(limit)
	}
}

// FindPage counts model rows, then loads one page into dest ordered by id.
func FindPage(ctx context.Context, db *gorm.DB, model, dest any, skip, limit int) (Pagination, error) {
	skip, limit = Normalize(skip, limit)
	p := Pagination{Skip: skip, Limit: limit}

	if err := db.WithContext(ctx).Model(model).Count(&p.Total).Error; err != nil {
		return p, err
	}
	if err := db.WithContext(ctx).Model(model).Order("id ASC").Scopes(Paginate(skip, limit)).Find(dest).Error; err != nil {
		return p, err
	}
	return p, nil
}
