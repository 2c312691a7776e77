package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/pkg/collection"
	"github.com/shashiranjanraj/ventas/pkg/orm"
)

// SaleLineRepository handles the detalles_ventas table.
type SaleLineRepository struct {
	db *gorm.DB
}

func NewSaleLineRepository(db *gorm.DB) *SaleLineRepository {
	return &SaleLineRepository{db: db}
}

func (r *SaleLineRepository) FindByID(ctx context.Context, id uint) (models.SaleLine, error) {
	var l models.SaleLine
	err := r.db.WithContext(ctx).First(&l, id).Error
	return l, translate(err)
}

// ForSale returns the lines of saleID in insertion order. This is the only
// way lines are read alongside a sale.
func (r *SaleLineRepository) ForSale(ctx context.Context, saleID uint) ([]models.SaleLine, error) {
	lines := []models.SaleLine{}
	err := r.db.WithContext(ctx).Where("venta_id = ?", saleID).Order("id ASC").Find(&lines).Error
	return lines, translate(err)
}

// ForSales groups the lines of several sales by sale id.
func (r *SaleLineRepository) ForSales(ctx context.Context, saleIDs []uint) (map[uint][]models.SaleLine, error) {
	if len(saleIDs) == 0 {
		return map[uint][]models.SaleLine{}, nil
	}

	var lines []models.SaleLine
	if err := r.db.WithContext(ctx).Where("venta_id IN ?", saleIDs).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, translate(err)
	}
	return collection.GroupBy(lines, func(l models.SaleLine) uint { return l.SaleID }), nil
}

func (r *SaleLineRepository) All(ctx context.Context, skip, limit int) ([]models.SaleLine, orm.Pagination, error) {
	lines := []models.SaleLine{}
	p, err := orm.FindPage(ctx, r.db, &models.SaleLine{}, &lines, skip, limit)
	return lines, p, translate(err)
}

func (r *SaleLineRepository) Create(ctx context.Context, l *models.SaleLine) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

// CreateBatch inserts lines in one statement.
func (r *SaleLineRepository) CreateBatch(ctx context.Context, lines []models.SaleLine) error {
	if len(lines) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error)
}

func (r *SaleLineRepository) Save(ctx context.Context, l *models.SaleLine) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error)
}

func (r *SaleLineRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.SaleLine{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteForSale removes every line of saleID.
func (r *SaleLineRepository) DeleteForSale(ctx context.Context, saleID uint) error {
	return translate(r.db.WithContext(ctx).Where("venta_id = ?", saleID).Delete(&models.SaleLine{}).Error)
}

// CountByProduct returns how many lines reference productID.
func (r *SaleLineRepository) CountByProduct(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SaleLine{}).Where("producto_id = ?", productID).Count(&n).Error
	return n, translate(err)
}
