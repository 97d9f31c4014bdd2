package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no item matched the scanned code.
var ErrNotFound = errors.New("catalog: item not found")

// Variant is one sellable unit of measure of an item, e.g. "piece" or
// "box of 12".
type Variant struct {
	ID         int64           `json:"id"`
	Unit       string          `json:"unit"`
	Amount     int             `json:"amount"`
	IsBaseUnit bool            `json:"isBaseUnit"`
	BuyPrice   decimal.Decimal `json:"buyPrice"`
	SellPrice  decimal.Decimal `json:"sellPrice"`
}

// Item is a master-data item together with its unit variants.
type Item struct {
	ID       int64     `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
	Variants []Variant `json:"variants"`
}

// BaseVariant returns the canonical unit variant when one is configured.
func (i Item) BaseVariant() (Variant, bool) {
	for _, v := range i.Variants {
		if v.IsBaseUnit {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantByID looks a variant up by identifier.
func (i Item) VariantByID(id int64) (Variant, bool) {
	for _, v := range i.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Lookup resolves a scanned code into an item. Implementations return
// ErrNotFound when the code has no match.
type Lookup interface {
	ItemByCode(ctx context.Context, code string) (Item, error)
}
