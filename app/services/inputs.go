package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ventas/app/models"
	"github.com/shashiranjanraj/ventas/pkg/validate"
)

// LineInput describes one line of a new sale.
type LineInput struct {
	ProductID uint             `json:"producto_id" validate:"required"`
	Price     *decimal.Decimal `json:"precio"      validate:"required,gte=0"`
	Discount  *decimal.Decimal `json:"descuento"   validate:"nullable,gte=0"`
	Quantity  *int             `json:"cantidad"    validate:"nullable,gt=0"`
}

// toModel applies the defaults: no discount, one unit.
func (in LineInput) toModel(saleID uint) models.SaleLine {
	l := models.SaleLine{
		UUID:      uuid.NewString(),
		SaleID:    saleID,
		ProductID: in.ProductID,
		Price:     *in.Price,
		Discount:  decimal.Zero,
		Quantity:  1,
	}
	if in.Discount != nil {
		l.Discount = *in.Discount
	}
	if in.Quantity != nil {
		l.Quantity = *in.Quantity
	}
	return l
}

// AddLineInput adds a line to an existing sale.
type AddLineInput struct {
	SaleID uint `json:"venta_id" validate:"required"`
	LineInput
}

// CreateSaleInput creates a sale with its initial lines.
type CreateSaleInput struct {
	CustomerID uint        `json:"cliente_id" validate:"required"`
	Date       *time.Time  `json:"fecha"`
	Lines      []LineInput `json:"detalles"   validate:"dive"`
}

// UpdateLineInput changes only the fields that are set.
type UpdateLineInput struct {
	ProductID *uint            `json:"producto_id" validate:"nullable,gt=0"`
	Price     *decimal.Decimal `json:"precio"      validate:"nullable,gte=0"`
	Discount  *decimal.Decimal `json:"descuento"   validate:"nullable,gte=0"`
	Quantity  *int             `json:"cantidad"    validate:"nullable,gt=0"`
}

// UpdateSaleInput changes the sale header. Lines and total are never touched.
type UpdateSaleInput struct {
	CustomerID *uint      `json:"cliente_id" validate:"nullable,gt=0"`
	Date       *time.Time `json:"fecha"`
}

// checkInput runs the struct-tag rules on in.
func checkInput(in any) error {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// checkLine enforces the rules that span fields of one line. prefix is
// prepended to the field keys, e.g. "detalles[2].".
func checkLine(l models.SaleLine, prefix string) error {
	switch {
	case l.Quantity <= 0:
		return invalid(prefix+"cantidad", "The cantidad must be greater than 0.")
	case l.Price.IsNegative():
		return invalid(prefix+"precio", "The precio must be greater than or equal to 0.")
	case l.Discount.IsNegative():
		return invalid(prefix+"descuento", "The descuento must be greater than or equal to 0.")
	case !inCents(l.Price):
		return invalid(prefix+"precio", centsMessage("precio"))
	case !inCents(l.Discount):
		return invalid(prefix+"descuento", centsMessage("descuento"))
	case l.Discount.GreaterThan(l.Price):
		return invalid(prefix+"descuento", fmt.Sprintf("The descuento must not be greater than the precio (%s).", l.Price))
	}
	return nil
}

// moneyScale matches the decimal(14,2) money columns.
const moneyScale = 2

// inCents reports whether d fits the money columns without rounding.
// Trailing zeros are fine: 1.500 is accepted, 0.005 is not.
func inCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}

func centsMessage(field string) string {
	return fmt.Sprintf("The %s must not have more than %d decimal places.", field, moneyScale)
}

// checkPrice rejects a catalogue price the money columns would round.
func checkPrice(price *decimal.Decimal) error {
	if price != nil && !inCents(*price) {
		return invalid("precio", centsMessage("precio"))
	}
	return nil
}
