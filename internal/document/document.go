package document

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
	"github.com/ghufronakbar/hasmart-pos/internal/pricing"
)

// Discount is one slot in a cascading discount chain. A zero percentage is a
// no-op but still occupies its slot so the user can edit it independently.
type Discount struct {
	Percentage decimal.Decimal `json:"percentage"`
}

// Line is the persisted shape of one document row. Only these fields ever
// reach the backend.
type Line struct {
	ItemID    int64           `json:"itemId" validate:"gt=0"`
	VariantID int64           `json:"variantId" validate:"gt=0"`
	Qty       int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Discounts []Discount      `json:"discounts"`
}

// ChainPercentages flattens the discount chain for the pricing engine.
func (l Line) ChainPercentages() []decimal.Decimal {
	if len(l.Discounts) == 0 {
		return nil
	}
	out := make([]decimal.Decimal, len(l.Discounts))
	for i, d := range l.Discounts {
		out[i] = d.Percentage
	}
	return out
}

// LineView decorates a Line with display-only annotations. The annotations
// never appear in a submission payload.
type LineView struct {
	Line
	DisplayName       string
	VariantLabel      string
	AvailableVariants []catalog.Variant
}

// Header carries the document-level fields shared by every kind.
type Header struct {
	Date             time.Time       `json:"date"`
	DueDate          time.Time       `json:"dueDate,omitempty"`
	CounterpartyCode string          `json:"counterpartyCode"`
	Branch           string          `json:"branch"`
	Notes            string          `json:"notes,omitempty"`
	TaxPct           decimal.Decimal `json:"taxPercentage"`
}

// Document is the transient edit buffer for one transaction. It is created
// empty, or seeded from an origin invoice for return kinds, mutated in memory
// and discarded when the dialog closes. The backend owns persisted state.
type Document struct {
	Kind   Kind
	Header Header
	Lines  []LineView

	// Verified is set once a return document has been matched against its
	// origin invoice.
	Verified bool
	// EditMode bypasses the origin-verification gate for documents that
	// already exist on the backend.
	EditMode bool
}

// New creates an empty edit buffer for the given kind dated now.
func New(kind Kind) *Document {
	return &Document{Kind: kind, Header: Header{Date: time.Now()}}
}

// Summary recomputes all totals from the current lines. Callers invoke it
// after every mutation; there is no hidden observer graph.
func (d *Document) Summary() pricing.Summary {
	inputs := make([]pricing.LineInput, 0, len(d.Lines))
	for _, l := range d.Lines {
		inputs = append(inputs, pricing.LineInput{
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Chain:     l.ChainPercentages(),
		})
	}
	return pricing.Summarize(inputs, d.Header.TaxPct, d.Kind.Config().Taxable)
}

// FindLine returns the index of the line with the exact item+variant pair,
// or -1 when absent.
func (d *Document) FindLine(itemID, variantID int64) int {
	for i, l := range d.Lines {
		if l.ItemID == itemID && l.VariantID == variantID {
			return i
		}
	}
	return -1
}

// Payload is the submission shape sent to the backend: header fields plus
// bare domain lines.
type Payload struct {
	Header
	Lines []Line `json:"items"`
}

// Payload strips display annotations and returns the submittable form of the
// document. Amounts are rounded at this boundary.
func (d *Document) Payload() Payload {
	lines := make([]Line, 0, len(d.Lines))
	for _, l := range d.Lines {
		line := l.Line
		line.UnitPrice = pricing.RoundMoney(line.UnitPrice)
		lines = append(lines, line)
	}
	return Payload{Header: d.Header, Lines: lines}
}
