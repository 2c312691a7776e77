package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/pkg/orm"
)

// SaleRepository handles the ventas table. It never touches lines; see
// SaleLineRepository.
type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// FindByID loads the sale header only. Lines are not preloaded.
func (r *SaleRepository) FindByID(ctx context.Context, id uint) (models.Sale, error) {
	var s models.Sale
	err := r.db.WithContext(ctx).First(&s, id).Error
	return s, translate(err)
}

func (r *SaleRepository) All(ctx context.Context, skip, limit int) ([]models.Sale, orm.Pagination, error) {
	sales := []models.Sale{}
	p, err := orm.FindPage(ctx, r.db, &models.Sale{}, &sales, skip, limit)
	return sales, p, translate(err)
}

func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	return translate(r.db.WithContext(ctx).Omit("Customer").Create(s).Error)
}

// UpdateHeader writes cliente_id and fecha. total is left alone.
func (r *SaleRepository) UpdateHeader(ctx context.Context, s *models.Sale) error {
	err := r.db.WithContext(ctx).Model(s).Updates(map[string]any{
		"cliente_id": s.CustomerID,
		"fecha":      s.Date,
	}).Error
	return translate(err)
}

// UpdateTotal stores the recalculated total of sale id.
func (r *SaleRepository) UpdateTotal(ctx context.Context, id uint, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).Update("total", total)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *SaleRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Sale{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// CountByCustomer returns how many sales reference customerID.
func (r *SaleRepository) CountByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Sale{}).Where("cliente_id = ?", customerID).Count(&n).Error
	return n, translate(err)
}
