package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
	"github.com/ghufronakbar/hasmart-pos/internal/pricing"
)

var (
	// ErrItemInactive is returned when a scanned item is flagged inactive.
	ErrItemInactive = errors.New("cart: item is not sellable")
	// ErrNoUnit is returned when an item has no configured unit variants.
	ErrNoUnit = errors.New("cart: item has no purchasable or sellable unit")
	// ErrLineNotFound indicates the referenced line index is out of range.
	ErrLineNotFound = errors.New("cart: line not found")
	// ErrVariantNotFound indicates the requested variant does not belong to the line's item.
	ErrVariantNotFound = errors.New("cart: variant not found")
)

// Controller maintains a document's line collection under the two input
// channels, manual item picks and scanned codes, with identical merge
// semantics: one line per exact item+variant pair.
type Controller struct {
	Doc     *document.Document
	Catalog catalog.Lookup

	// LastAffected is the index of the most recently added or merged line,
	// -1 when no add has happened yet. The UI uses it to move input focus.
	LastAffected int
}

// NewController wires a controller around an edit buffer.
func NewController(doc *document.Document, lookup catalog.Lookup) *Controller {
	return &Controller{Doc: doc, Catalog: lookup, LastAffected: -1}
}

// referencePrice picks the buy or sell price depending on document kind.
func (c *Controller) referencePrice(v catalog.Variant) decimal.Decimal {
	if c.Doc.Kind.Config().UsesBuyPrice {
		return v.BuyPrice
	}
	return v.SellPrice
}

// AddScan resolves a scanned code and merges it into the cart. A repeat scan
// of the same item+variant increments the existing line by one; otherwise a
// new line with quantity 1 is appended. The cart is left untouched on any
// failure.
func (c *Controller) AddScan(ctx context.Context, code string) (pricing.Summary, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return c.Doc.Summary(), fmt.Errorf("cart: empty scan code: %w", catalog.ErrNotFound)
	}
	item, err := c.Catalog.ItemByCode(ctx, code)
	if err != nil {
		return c.Doc.Summary(), err
	}
	if !item.IsActive {
		return c.Doc.Summary(), fmt.Errorf("%s: %w", item.Name, ErrItemInactive)
	}
	variant, ok := item.BaseVariant()
	if !ok {
		if len(item.Variants) == 0 {
			return c.Doc.Summary(), fmt.Errorf("%s: %w", item.Name, ErrNoUnit)
		}
		variant = item.Variants[0]
	}

	if idx := c.Doc.FindLine(item.ID, variant.ID); idx >= 0 {
		c.Doc.Lines[idx].Qty++
		c.LastAffected = idx
		return c.Doc.Summary(), nil
	}
	c.appendLine(item, variant)
	return c.Doc.Summary(), nil
}

// AddManual appends a line for an explicitly picked item. When the item has
// exactly one variant it is selected automatically; otherwise variantID must
// name one of the item's variants, or be zero to leave the unit pending user
// choice. Picking a pair that is already in the cart moves focus to the
// existing line without changing its quantity.
func (c *Controller) AddManual(item catalog.Item, variantID int64) (pricing.Summary, error) {
	if !item.IsActive {
		return c.Doc.Summary(), fmt.Errorf("%s: %w", item.Name, ErrItemInactive)
	}
	if len(item.Variants) == 0 {
		return c.Doc.Summary(), fmt.Errorf("%s: %w", item.Name, ErrNoUnit)
	}

	var variant catalog.Variant
	switch {
	case variantID > 0:
		v, ok := item.VariantByID(variantID)
		if !ok {
			return c.Doc.Summary(), ErrVariantNotFound
		}
		variant = v
	case len(item.Variants) == 1:
		variant = item.Variants[0]
	default:
		// Unit left unselected; validation blocks submission until chosen.
		variant = catalog.Variant{}
	}

	if variant.ID > 0 {
		if idx := c.Doc.FindLine(item.ID, variant.ID); idx >= 0 {
			c.LastAffected = idx
			return c.Doc.Summary(), nil
		}
	}
	c.appendLine(item, variant)
	return c.Doc.Summary(), nil
}

func (c *Controller) appendLine(item catalog.Item, variant catalog.Variant) {
	line := document.LineView{
		Line: document.Line{
			ItemID:    item.ID,
			VariantID: variant.ID,
			Qty:       1,
			UnitPrice: c.referencePrice(variant),
		},
		DisplayName:       item.Name,
		VariantLabel:      variant.Unit,
		AvailableVariants: item.Variants,
	}
	c.Doc.Lines = append(c.Doc.Lines, line)
	c.LastAffected = len(c.Doc.Lines) - 1
}

// IncrementQty raises a line's quantity by one.
func (c *Controller) IncrementQty(idx int) (pricing.Summary, error) {
	if idx < 0 || idx >= len(c.Doc.Lines) {
		return c.Doc.Summary(), ErrLineNotFound
	}
	c.Doc.Lines[idx].Qty++
	return c.Doc.Summary(), nil
}

// DecrementQty lowers a line's quantity by one, clamped at 1.
func (c *Controller) DecrementQty(idx int) (pricing.Summary, error) {
	if idx < 0 || idx >= len(c.Doc.Lines) {
		return c.Doc.Summary(), ErrLineNotFound
	}
	if c.Doc.Lines[idx].Qty > 1 {
		c.Doc.Lines[idx].Qty--
	}
	return c.Doc.Summary(), nil
}

// SetQty sets a line's quantity directly, clamped at 1.
func (c *Controller) SetQty(idx, qty int) (pricing.Summary, error) {
	if idx < 0 || idx >= len(c.Doc.Lines) {
		return c.Doc.Summary(), ErrLineNotFound
	}
	if qty < 1 {
		qty = 1
	}
	c.Doc.Lines[idx].Qty = qty
	return c.Doc.Summary(), nil
}

// SwitchVariant replaces the unit on an existing line and resets its price to
// the new variant's reference price. Quantity and discounts are preserved.
func (c *Controller) SwitchVariant(idx int, variantID int64) (pricing.Summary, error) {
	if idx < 0 || idx >= len(c.Doc.Lines) {
		return c.Doc.Summary(), ErrLineNotFound
	}
	line := &c.Doc.Lines[idx]
	var variant catalog.Variant
	found := false
	for _, v := range line.AvailableVariants {
		if v.ID == variantID {
			variant = v
			found = true
			break
		}
	}
	if !found {
		return c.Doc.Summary(), ErrVariantNotFound
	}
	if dup := c.Doc.FindLine(line.ItemID, variant.ID); dup >= 0 && dup != idx {
		return c.Doc.Summary(), fmt.Errorf("cart: unit already on another line: %w", ErrVariantNotFound)
	}
	line.VariantID = variant.ID
	line.VariantLabel = variant.Unit
	line.UnitPrice = c.referencePrice(variant)
	return c.Doc.Summary(), nil
}

// SetDiscounts replaces a line's discount chain.
func (c *Controller) SetDiscounts(idx int, chain []document.Discount) (pricing.Summary, error) {
	if idx < 0 || idx >= len(c.Doc.Lines) {
		return c.Doc.Summary(), ErrLineNotFound
	}
	c.Doc.Lines[idx].Discounts = chain
	return c.Doc.Summary(), nil
}

// RemoveLine deletes a line from the collection.
func (c *Controller) RemoveLine(idx int) (pricing.Summary, error) {
	if idx < 0 || idx >= len(c.Doc.Lines) {
		return c.Doc.Summary(), ErrLineNotFound
	}
	c.Doc.Lines = append(c.Doc.Lines[:idx], c.Doc.Lines[idx+1:]...)
	if c.LastAffected >= len(c.Doc.Lines) {
		c.LastAffected = len(c.Doc.Lines) - 1
	}
	return c.Doc.Summary(), nil
}
