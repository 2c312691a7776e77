package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/pkg/orm"
)

// CustomerRepository handles database operations for Customer.
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository binds the repository to db, which may be a transaction.
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return c, translate(err)
}

// Exists reports whether a customer with id is stored.
func (r *CustomerRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Count(&n).Error
	return n > 0, translate(err)
}

// All returns one page of customers ordered by id.
func (r *CustomerRepository) All(ctx context.Context, skip, limit int) ([]models.Customer, orm.Pagination, error) {
	customers := []models.Customer{}
	p, err := orm.FindPage(ctx, r.db, &models.Customer{}, &customers, skip, limit)
	return customers, p, translate(err)
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *CustomerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// FindByEmail looks up a customer by their unique email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	return c, translate(err)
}
