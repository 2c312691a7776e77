package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/app/repositories"
	"github.com/shashiranjanraj/ventas/pkg/collection"
	"github.com/shashiranjanraj/ventas/pkg/logger"
	"github.com/shashiranjanraj/ventas/pkg/metrics"
	"github.com/shashiranjanraj/ventas/pkg/orm"
)

// Recalculation triggers, used as the metrics label.
const (
	triggerCreate      = "create"
	triggerLineAdded   = "line_added"
	triggerLineUpdated = "line_updated"
	triggerLineDeleted = "line_deleted"
	triggerManual      = "manual"
)

// SaleService owns sales and their lines. Every mutation of a line
// recomputes the owning sale's total inside the same transaction.
type SaleService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db, now: time.Now}
}

// SaleTotal is Σ (precio - descuento) * cantidad over lines.
func SaleTotal(lines []models.SaleLine) decimal.Decimal {
	return collection.Reduce(lines, decimal.Zero, func(total decimal.Decimal, l models.SaleLine) decimal.Decimal {
		return total.Add(l.Subtotal())
	})
}

// CreateSale stores a sale and its initial lines, then computes the total
// once. The customer must exist.
func (s *SaleService) CreateSale(ctx context.Context, in CreateSaleInput) (models.Sale, error) {
	if err := checkInput(in); err != nil {
		return models.Sale{}, err
	}

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := customerMustExist(ctx, tx, in.CustomerID); err != nil {
			return err
		}

		sale = models.Sale{
			UUID:       uuid.NewString(),
			CustomerID: in.CustomerID,
			Date:       s.now(),
		}
		if in.Date != nil {
			sale.Date = *in.Date
		}
		if err := repositories.NewSaleRepository(tx).Create(ctx, &sale); err != nil {
			return storeError(err, "create sale")
		}

		lines := make([]models.SaleLine, 0, len(in.Lines))
		for i, li := range in.Lines {
			l := li.toModel(sale.ID)
			if err := checkLine(l, fmt.Sprintf("detalles[%d].", i)); err != nil {
				return err
			}
			lines = append(lines, l)
		}
		if err := repositories.NewSaleLineRepository(tx).CreateBatch(ctx, lines); err != nil {
			return storeError(err, "create sale lines")
		}

		total, err := recalculate(ctx, tx, sale.ID, triggerCreate)
		if err != nil {
			return err
		}
		sale.Total = total
		sale.Lines = lines
		return nil
	})
	if err != nil {
		return models.Sale{}, err
	}

	metrics.SalesCreated.Inc()
	logger.WithCtx(ctx).Info("sale created",
		"sale_id", sale.ID, "cliente_id", sale.CustomerID, "lines", len(sale.Lines), "total", sale.Total)

	return sale, nil
}

// GetSale returns the sale header with its lines.
func (s *SaleService) GetSale(ctx context.Context, id uint) (models.Sale, error) {
	db := s.db.WithContext(ctx)

	sale, err := repositories.NewSaleRepository(db).FindByID(ctx, id)
	if err != nil {
		return models.Sale{}, storeError(err, fmt.Sprintf("sale %d", id))
	}
	sale.Lines, err = repositories.NewSaleLineRepository(db).ForSale(ctx, id)
	if err != nil {
		return models.Sale{}, storeError(err, fmt.Sprintf("sale %d lines", id))
	}
	return sale, nil
}

// ListSales returns one page of sales, each with its lines.
func (s *SaleService) ListSales(ctx context.Context, skip, limit int) ([]models.Sale, orm.Pagination, error) {
	db := s.db.WithContext(ctx)

	sales, page, err := repositories.NewSaleRepository(db).All(ctx, skip, limit)
	if err != nil {
		return nil, page, storeError(err, "list sales")
	}

	ids := collection.Map(sales, func(v models.Sale) uint { return v.ID })
	bySale, err := repositories.NewSaleLineRepository(db).ForSales(ctx, ids)
	if err != nil {
		return nil, page, storeError(err, "list sale lines")
	}
	for i := range sales {
		sales[i].Lines = bySale[sales[i].ID]
		if sales[i].Lines == nil {
			sales[i].Lines = []models.SaleLine{}
		}
	}
	return sales, page, nil
}

// UpdateSaleHeader changes cliente_id and/or fecha. Lines and total stay
// as they are.
func (s *SaleService) UpdateSaleHeader(ctx context.Context, id uint, in UpdateSaleInput) (models.Sale, error) {
	if err := checkInput(in); err != nil {
		return models.Sale{}, err
	}

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sales := repositories.NewSaleRepository(tx)

		var err error
		sale, err = sales.FindByID(ctx, id)
		if err != nil {
			return storeError(err, fmt.Sprintf("sale %d", id))
		}

		if in.CustomerID != nil {
			if err := customerMustExist(ctx, tx, *in.CustomerID); err != nil {
				return err
			}
			sale.CustomerID = *in.CustomerID
		}
		if in.Date != nil {
			sale.Date = *in.Date
		}

		if err := sales.UpdateHeader(ctx, &sale); err != nil {
			return storeError(err, fmt.Sprintf("update sale %d", id))
		}

		sale.Lines, err = repositories.NewSaleLineRepository(tx).ForSale(ctx, id)
		return storeError(err, fmt.Sprintf("sale %d lines", id))
	})
	if err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

// DeleteSale removes a sale and all of its lines.
func (s *SaleService) DeleteSale(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewSaleLineRepository(tx).DeleteForSale(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("delete sale %d lines", id))
		}
		if err := repositories.NewSaleRepository(tx).Delete(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("sale %d", id))
		}
		logger.WithCtx(ctx).Info("sale deleted", "sale_id", id)
		return nil
	})
}

// ─── Lines ───────────────────────────────────────────────────────────────────

// AddLine appends a line to an existing sale and recomputes its total.
func (s *SaleService) AddLine(ctx context.Context, in AddLineInput) (models.SaleLine, error) {
	if err := checkInput(in); err != nil {
		return models.SaleLine{}, err
	}

	line := in.toModel(in.SaleID)
	if err := checkLine(line, ""); err != nil {
		return models.SaleLine{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewSaleLineRepository(tx).Create(ctx, &line); err != nil {
			return storeError(err, fmt.Sprintf("add line to sale %d", in.SaleID))
		}
		_, err := recalculate(ctx, tx, line.SaleID, triggerLineAdded)
		return err
	})
	if err != nil {
		return models.SaleLine{}, err
	}
	return line, nil
}

// GetLine returns a single line.
func (s *SaleService) GetLine(ctx context.Context, id uint) (models.SaleLine, error) {
	line, err := repositories.NewSaleLineRepository(s.db.WithContext(ctx)).FindByID(ctx, id)
	return line, storeError(err, fmt.Sprintf("sale line %d", id))
}

// ListLines returns one page of lines across all sales.
func (s *SaleService) ListLines(ctx context.Context, skip, limit int) ([]models.SaleLine, orm.Pagination, error) {
	lines, page, err := repositories.NewSaleLineRepository(s.db.WithContext(ctx)).All(ctx, skip, limit)
	return lines, page, storeError(err, "list sale lines")
}

// ListSaleLines returns the lines of one sale; the sale must exist.
func (s *SaleService) ListSaleLines(ctx context.Context, saleID uint) ([]models.SaleLine, error) {
	db := s.db.WithContext(ctx)
	if _, err := repositories.NewSaleRepository(db).FindByID(ctx, saleID); err != nil {
		return nil, storeError(err, fmt.Sprintf("sale %d", saleID))
	}
	lines, err := repositories.NewSaleLineRepository(db).ForSale(ctx, saleID)
	return lines, storeError(err, fmt.Sprintf("sale %d lines", saleID))
}

// UpdateLine applies the set fields of in and recomputes the owning sale.
func (s *SaleService) UpdateLine(ctx context.Context, id uint, in UpdateLineInput) (models.SaleLine, error) {
	if err := checkInput(in); err != nil {
		return models.SaleLine{}, err
	}

	var line models.SaleLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := repositories.NewSaleLineRepository(tx)

		var err error
		line, err = lines.FindByID(ctx, id)
		if err != nil {
			return storeError(err, fmt.Sprintf("sale line %d", id))
		}

		if in.ProductID != nil {
			line.ProductID = *in.ProductID
		}
		if in.Price != nil {
			line.Price = *in.Price
		}
		if in.Discount != nil {
			line.Discount = *in.Discount
		}
		if in.Quantity != nil {
			line.Quantity = *in.Quantity
		}
		if err := checkLine(line, ""); err != nil {
			return err
		}

		if err := lines.Save(ctx, &line); err != nil {
			return storeError(err, fmt.Sprintf("update sale line %d", id))
		}
		_, err = recalculate(ctx, tx, line.SaleID, triggerLineUpdated)
		return err
	})
	if err != nil {
		return models.SaleLine{}, err
	}
	return line, nil
}

// DeleteLine removes a line and recomputes the owning sale.
func (s *SaleService) DeleteLine(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := repositories.NewSaleLineRepository(tx)

		line, err := lines.FindByID(ctx, id)
		if err != nil {
			return storeError(err, fmt.Sprintf("sale line %d", id))
		}
		if err := lines.Delete(ctx, id); err != nil {
			return storeError(err, fmt.Sprintf("delete sale line %d", id))
		}
		_, err = recalculate(ctx, tx, line.SaleID, triggerLineDeleted)
		return err
	})
}

// Recalculate recomputes and stores the total of saleID. Running it twice
// yields the same value.
func (s *SaleService) Recalculate(ctx context.Context, saleID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = recalculate(ctx, tx, saleID, triggerManual)
		return err
	})
	return total, err
}

// recalculate must run on the transaction of the mutation that caused it.
func recalculate(ctx context.Context, tx *gorm.DB, saleID uint, trigger string) (decimal.Decimal, error) {
	lines, err := repositories.NewSaleLineRepository(tx).ForSale(ctx, saleID)
	if err != nil {
		return decimal.Zero, storeError(err, fmt.Sprintf("sale %d lines", saleID))
	}

	total := SaleTotal(lines)
	if err := repositories.NewSaleRepository(tx).UpdateTotal(ctx, saleID, total); err != nil {
		return decimal.Zero, storeError(err, fmt.Sprintf("sale %d", saleID))
	}

	metrics.RecordRecalculation(trigger)
	logger.WithCtx(ctx).Debug("sale total recalculated",
		"sale_id", saleID, "lines", len(lines), "total", total, "trigger", trigger)
	return total, nil
}

func customerMustExist(ctx context.Context, tx *gorm.DB, id uint) error {
	ok, err := repositories.NewCustomerRepository(tx).Exists(ctx, id)
	if err != nil {
		return storeError(err, fmt.Sprintf("customer %d", id))
	}
	if !ok {
		return fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return nil
}
