package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/pkg/orm"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return p, translate(err)
}

// FindByName returns the first product called name. Used by the seeders.
func (r *ProductRepository) FindByName(ctx context.Context, name string) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Where("nombre = ?", name).Order("id ASC").First(&p).Error
	return p, translate(err)
}

func (r *ProductRepository) All(ctx context.Context, skip, limit int) ([]models.Product, orm.Pagination, error) {
	products := []models.Product{}
	p, err := orm.FindPage(ctx, r.db, &models.Product{}, &products, skip, limit)
	return products, p, translate(err)
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
