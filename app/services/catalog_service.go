package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/app/repositories"
	"github.com/shashiranjanraj/ventas/pkg/logger"
	"github.com/shashiranjanraj/ventas/pkg/orm"
)

type CustomerInput struct {
	Name  string `json:"nombre" validate:"required,max=255"`
	Email string `json:"email"  validate:"required,email,max=255"`
	RUT   string `json:"rut"    validate:"required,max=20"`
}

type UpdateCustomerInput struct {
	Name  *string `json:"nombre" validate:"nullable,min=1,max=255"`
	Email *string `json:"email"  validate:"nullable,email,max=255"`
	RUT   *string `json:"rut"    validate:"nullable,min=1,max=20"`
}

type ProductInput struct {
	Name     string           `json:"nombre"    validate:"required,max=255"`
	Category string           `json:"categoria" validate:"max=100"`
	Price    *decimal.Decimal `json:"precio"    validate:"required,gte=0"`
}

type UpdateProductInput struct {
	Name     *string          `json:"nombre"    validate:"nullable,min=1,max=255"`
	Category *string          `json:"categoria" validate:"nullable,max=100"`
	Price    *decimal.Decimal `json:"precio"    validate:"nullable,gte=0"`
}

// CatalogService manages customers and products.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ─── Customers ───────────────────────────────────────────────────────────────

func (s *CatalogService) CreateCustomer(ctx context.Context, in CustomerInput) (models.Customer, error) {
	if err := checkInput(in); err != nil {
		return models.Customer{}, err
	}

	c := models.Customer{
		UUID:  uuid.NewString(),
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		RUT:   strings.TrimSpace(in.RUT),
	}
	if err := repositories.NewCustomerRepository(s.db).Create(ctx, &c); err != nil {
		return models.Customer{}, storeError(err, "create customer")
	}
	logger.WithCtx(ctx).Info("customer created", "cliente_id", c.ID)
	return c, nil
}

func (s *CatalogService) GetCustomer(ctx context.Context, id uint) (models.Customer, error) {
	c, err := repositories.NewCustomerRepository(s.db).FindByID(ctx, id)
	return c, storeError(err, fmt.Sprintf("customer %d", id))
}

func (s *CatalogService) ListCustomers(ctx context.Context, skip, limit int) ([]models.Customer, orm.Pagination, error) {
	customers, page, err := repositories.NewCustomerRepository(s.db).All(ctx, skip, limit)
	return customers, page, storeError(err, "list customers")
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, id uint, in UpdateCustomerInput) (models.Customer, error) {
	if err := checkInput(in); err != nil {
		return models.Customer{}, err
	}

	var c models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customers := repositories.NewCustomerRepository(tx)

		var err error
		if c, err = customers.FindByID(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("customer %d", id))
		}
		if in.Name != nil {
			c.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
		if in.RUT != nil {
			c.RUT = strings.TrimSpace(*in.RUT)
		}
		return storeError(customers.Update(ctx, &c), fmt.Sprintf("update customer %d", id))
	})
	if err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// DeleteCustomer refuses while any sale references the customer. The
// foreign key backs the check up.
func (s *CatalogService) DeleteCustomer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repositories.NewCustomerRepository(tx).FindByID(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("customer %d", id))
		}

		n, err := repositories.NewSaleRepository(tx).CountByCustomer(ctx, id)
		if err != nil {
			return storeError(err, fmt.Sprintf("customer %d sales", id))
		}
		if n > 0 {
			return fmt.Errorf("customer %d has %d sales: %w", id, n, ErrReferentialIntegrity)
		}

		if err := repositories.NewCustomerRepository(tx).Delete(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("delete customer %d", id))
		}
		logger.WithCtx(ctx).Info("customer deleted", "cliente_id", id)
		return nil
	})
}

// ─── Products ────────────────────────────────────────────────────────────────

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := checkInput(in); err != nil {
		return models.Product{}, err
	}
	if err := checkPrice(in.Price); err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		UUID:     uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Price:    *in.Price,
	}
	if err := repositories.NewProductRepository(s.db).Create(ctx, &p); err != nil {
		return models.Product{}, storeError(err, "create product")
	}
	logger.WithCtx(ctx).Info("product created", "producto_id", p.ID)
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	p, err := repositories.NewProductRepository(s.db).FindByID(ctx, id)
	return p, storeError(err, fmt.Sprintf("product %d", id))
}

func (s *CatalogService) ListProducts(ctx context.Context, skip, limit int) ([]models.Product, orm.Pagination, error) {
	products, page, err := repositories.NewProductRepository(s.db).All(ctx, skip, limit)
	return products, page, storeError(err, "list products")
}

// UpdateProduct changes the catalogue entry only. Existing sale lines keep
// the price they were sold at.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in UpdateProductInput) (models.Product, error) {
	if err := checkInput(in); err != nil {
		return models.Product{}, err
	}
	if err := checkPrice(in.Price); err != nil {
		return models.Product{}, err
	}

	var p models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repositories.NewProductRepository(tx)

		var err error
		if p, err = products.FindByID(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("product %d", id))
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Category != nil {
			p.Category = strings.TrimSpace(*in.Category)
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		return storeError(products.Update(ctx, &p), fmt.Sprintf("update product %d", id))
	})
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct refuses while any sale line references the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repositories.NewProductRepository(tx).FindByID(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("product %d", id))
		}

		n, err := repositories.NewSaleLineRepository(tx).CountByProduct(ctx, id)
		if err != nil {
			return storeError(err, fmt.Sprintf("product %d lines", id))
		}
		if n > 0 {
			return fmt.Errorf("product %d is on %d sale lines: %w", id, n, ErrReferentialIntegrity)
		}

		if err := repositories.NewProductRepository(tx).Delete(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("delete product %d", id))
		}
		logger.WithCtx(ctx).Info("product deleted", "producto_id", id)
		return nil
	})
}
