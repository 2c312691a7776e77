package seeders

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/collection"
)

//go:embed data/demo.yaml
var demoYAML []byte

func init() {
	Register("demo", SeedDemo)
}

type demoData struct {
	Customers []struct {
		Name  string `yaml:"nombre"`
		Email string `yaml:"email"`
		RUT   string `yaml:"rut"`
	} `yaml:"clientes"`
	Products  []struct {
		Name     string `yaml:"nombre"`
		Category string `yaml:"categoria"`
		Price    string `yaml:"precio"`
	} `yaml:"productos"`
	Sales []struct {
		Customer string `yaml:"cliente"`
		Date     string `yaml:"fecha"`
		Lines    []struct {
			Product  string `yaml:"producto"`
			Price    string `yaml:"precio"`
			Discount string `yaml:"descuento"`
			Quantity int    `yaml:"cantidad"`
		} `yaml:"detalles"`
	} `yaml:"ventas"`
}

func parseDemo(raw []byte) (demoData, error) {
	var d demoData
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("parse demo data: %w", err)
	}
	return d, nil
}

// SeedDemo loads data/demo.yaml through the services, so every sale total
// is computed by the regular recalculation.
func SeedDemo(ctx context.Context, db *gorm.DB) error {
	data, err := parseDemo(demoYAML)
	if err != nil {
		return err
	}
	return seed(ctx, db, data)
}

func seed(ctx context.Context, db *gorm.DB, data demoData) error {
	catalog := services.NewCatalogService(db)
	sales := services.NewSaleService(db)

	var existingCustomers []models.Customer
	if err := db.WithContext(ctx).Find(&existingCustomers).Error; err != nil {
		return err
	}
	customers := collection.KeyBy(existingCustomers, func(c models.Customer) string { return c.Email })
	for _, c := range data.Customers {
		if _, ok := customers[c.Email]; ok {
			continue
		}
		created, err := catalog.CreateCustomer(ctx, services.CustomerInput{Name: c.Name, Email: c.Email, RUT: c.RUT})
		if err != nil {
			return fmt.Errorf("customer %s: %w", c.Email, err)
		}
		customers[created.Email] = created
	}

	var existingProducts []models.Product
	if err := db.WithContext(ctx).Find(&existingProducts).Error; err != nil {
		return err
	}
	products := collection.KeyBy(existingProducts, func(p models.Product) string { return p.Name })
	for _, p := range data.Products {
		if _, ok := products[p.Name]; ok {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("product %s: precio: %w", p.Name, err)
		}
		created, err := catalog.CreateProduct(ctx, services.ProductInput{Name: p.Name, Category: p.Category, Price: &price})
		if err != nil {
			return fmt.Errorf("product %s: %w", p.Name, err)
		}
		products[created.Name] = created
	}

	var saleCount int64
	if err := db.WithContext(ctx).Model(&models.Sale{}).Count(&saleCount).Error; err != nil {
		return err
	}
	if saleCount > 0 {
		return nil
	}

	for i, s := range data.Sales {
		customer, ok := customers[s.Customer]
		if !ok {
			return fmt.Errorf("sale %d: unknown customer %q", i, s.Customer)
		}
		date, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			return fmt.Errorf("sale %d: fecha: %w", i, err)
		}

		in := services.CreateSaleInput{CustomerID: customer.ID, Date: &date}
		for _, l := range s.Lines {
			product, ok := products[l.Product]
			if !ok {
				return fmt.Errorf("sale %d: unknown product %q", i, l.Product)
			}
			line := services.LineInput{ProductID: product.ID}
			if line.Price, err = optionalDecimal(l.Price); err != nil {
				return fmt.Errorf("sale %d: precio: %w", i, err)
			}
			if line.Price == nil {
				line.Price = &product.Price
			}
			if line.Discount, err = optionalDecimal(l.Discount); err != nil {
				return fmt.Errorf("sale %d: descuento: %w", i, err)
			}
			if l.Quantity != 0 {
				q := l.Quantity
				line.Quantity = &q
			}
			in.Lines = append(in.Lines, line)
		}
		if _, err := sales.CreateSale(ctx, in); err != nil {
			return fmt.Errorf("sale %d: %w", i, err)
		}
	}
	return nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
