package returns

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
	"github.com/ghufronakbar/hasmart-pos/internal/pricing"
)

// ErrNotReturnKind is returned when a non-return document is verified.
var ErrNotReturnKind = errors.New("returns: document kind does not take an origin invoice")

// OriginLine is one line of the origin invoice as returned by the backend.
type OriginLine struct {
	ItemID            int64
	VariantID         int64
	Qty               int
	UnitPrice         decimal.Decimal
	Discounts         []document.Discount
	DisplayName       string
	VariantLabel      string
	AvailableVariants []catalog.Variant
}

// Origin is a read-only snapshot of the transaction a return is created
// against. It is owned by the backend; values are copied at seed time and
// the copies are independently editable afterwards.
type Origin struct {
	InvoiceNumber    string
	CounterpartyCode string
	Branch           string
	TaxPct           decimal.Decimal
	Lines            []OriginLine
}

// Source fetches origin invoices by invoice number.
type Source interface {
	InvoiceByNumber(ctx context.Context, number string) (Origin, error)
}

// Loader seeds return documents from their origin invoice.
type Loader struct {
	Source Source
}

// Verify fetches the origin invoice and seeds the return document from it:
// header fields are copied, lines default to the original quantity, price
// and discount chain, and the document is marked verified. The recorded tax
// percentage is reused directly instead of being re-derived from amounts.
// On any failure the document is left untouched and unverified.
//
// Returned quantities are deliberately not capped at the origin quantity;
// over-returns are an accepted adjustment allowance.
func (l Loader) Verify(ctx context.Context, doc *document.Document, invoiceNo string) (pricing.Summary, error) {
	if doc == nil || !doc.Kind.Config().RequiresOrigin {
		return pricing.Summary{}, ErrNotReturnKind
	}
	invoiceNo = strings.TrimSpace(invoiceNo)
	origin, err := l.Source.InvoiceByNumber(ctx, invoiceNo)
	if err != nil {
		return doc.Summary(), err
	}

	doc.Header.CounterpartyCode = origin.CounterpartyCode
	doc.Header.Branch = origin.Branch
	doc.Header.TaxPct = origin.TaxPct
	doc.Lines = doc.Lines[:0]
	for _, src := range origin.Lines {
		discounts := make([]document.Discount, len(src.Discounts))
		copy(discounts, src.Discounts)
		doc.Lines = append(doc.Lines, document.LineView{
			Line: document.Line{
				ItemID:    src.ItemID,
				VariantID: src.VariantID,
				Qty:       src.Qty,
				UnitPrice: src.UnitPrice,
				Discounts: discounts,
			},
			DisplayName:       src.DisplayName,
			VariantLabel:      src.VariantLabel,
			AvailableVariants: src.AvailableVariants,
		})
	}
	doc.Verified = true
	return doc.Summary(), nil
}
