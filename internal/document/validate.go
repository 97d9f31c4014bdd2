package document

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ghufronakbar/hasmart-pos/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the document against the local submission rules. It
// returns a common.AppError with per-field details; nothing is sent to the
// backend while validation fails.
func (d *Document) Validate() error {
	details := map[string]string{}

	if !d.Kind.Valid() {
		details["kind"] = "unknown document type"
	}
	if d.Header.Date.IsZero() {
		details["date"] = "date is required"
	}
	if strings.TrimSpace(d.Header.CounterpartyCode) == "" {
		details["counterpartyCode"] = "counterparty is required"
	}
	if strings.TrimSpace(d.Header.Branch) == "" {
		details["branch"] = "branch is required"
	}
	if d.Header.TaxPct.IsNegative() || d.Header.TaxPct.GreaterThan(decimal.NewFromInt(100)) {
		details["taxPercentage"] = "tax percentage must be between 0 and 100"
	}

	if len(d.Lines) == 0 {
		details["items"] = "at least 1 item required"
	}
	for i, line := range d.Lines {
		validateLine(i, line.Line, details)
	}

	if d.Kind.Config().RequiresOrigin && !d.Verified && !d.EditMode {
		details["invoiceNumber"] = "return must be verified against an origin invoice"
	}

	if len(details) > 0 {
		return common.ValidationError("document is not submittable", details)
	}
	return nil
}

func validateLine(i int, line Line, details map[string]string) {
	key := func(field string) string { return fmt.Sprintf("items[%d].%s", i, field) }

	if err := validate.Struct(line); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "ItemID":
					details[key("itemId")] = "item is required"
				case "VariantID":
					details[key("variantId")] = "unit must be selected"
				case "Qty":
					details[key("quantity")] = "quantity must be at least 1"
				case "UnitPrice":
					details[key("unitPrice")] = "price must not be negative"
				}
			}
		} else {
			details[key("line")] = err.Error()
		}
	}
	for j, disc := range line.Discounts {
		if disc.Percentage.IsNegative() || disc.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			details[key(fmt.Sprintf("discounts[%d]", j))] = "discount must be between 0 and 100"
		}
	}
}
