package document_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
	"github.com/ghufronakbar/hasmart-pos/internal/common"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
)

func populatedDoc(kind document.Kind) *document.Document {
	doc := document.New(kind)
	doc.Header.CounterpartyCode = "SUP-001"
	doc.Header.Branch = "JKT-01"
	doc.Lines = append(doc.Lines, document.LineView{
		Line: document.Line{
			ItemID:    12,
			VariantID: 3,
			Qty:       2,
			UnitPrice: decimal.NewFromInt(15000),
			Discounts: []document.Discount{{Percentage: decimal.NewFromInt(5)}},
		},
		DisplayName:       "Cooking Oil 1L",
		VariantLabel:      "pcs",
		AvailableVariants: []catalog.Variant{{ID: 3, Unit: "pcs", IsBaseUnit: true}},
	})
	return doc
}

func TestPayloadStripsDisplayAnnotations(t *testing.T) {
	doc := populatedDoc(document.KindPurchase)
	payload := doc.Payload()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	for _, forbidden := range []string{"DisplayName", "displayName", "VariantLabel", "variantLabel", "AvailableVariants", "availableVariants"} {
		require.NotContains(t, string(raw), forbidden)
	}
	require.Contains(t, string(raw), "itemId")
	require.Contains(t, string(raw), "quantity")
	require.Contains(t, string(raw), "unitPrice")
}

func TestSummaryTaxOnlyForTaxableKinds(t *testing.T) {
	doc := populatedDoc(document.KindSale)
	doc.Header.TaxPct = decimal.NewFromInt(10)
	sum := doc.Summary()
	require.True(t, sum.TaxAmount.IsZero(), "plain sales have no tax concept")
	require.True(t, sum.GrandTotal.Equal(sum.TaxableAmount))

	doc = populatedDoc(document.KindPurchase)
	doc.Header.TaxPct = decimal.NewFromInt(10)
	sum = doc.Summary()
	require.True(t, sum.TaxAmount.IsPositive())
}

func TestValidateRejectsEmptyDocument(t *testing.T) {
	doc := document.New(document.KindPurchase)
	doc.Header.CounterpartyCode = "SUP-001"
	doc.Header.Branch = "JKT-01"

	err := doc.Validate()
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
	details := appErr.Details.(map[string]string)
	require.Contains(t, details["items"], "at least 1 item")
}

func TestValidateFieldRules(t *testing.T) {
	doc := populatedDoc(document.KindPurchase)
	doc.Lines[0].VariantID = 0
	doc.Lines[0].UnitPrice = decimal.NewFromInt(-1)
	doc.Lines[0].Discounts = []document.Discount{{Percentage: decimal.NewFromInt(120)}}

	err := doc.Validate()
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	details := appErr.Details.(map[string]string)
	require.Contains(t, details, "items[0].variantId")
	require.Contains(t, details, "items[0].unitPrice")
	require.Contains(t, details, "items[0].discounts[0]")
}

func TestValidateUnverifiedReturnBlocked(t *testing.T) {
	doc := populatedDoc(document.KindSalesReturn)
	err := doc.Validate()
	require.Error(t, err)

	doc.Verified = true
	require.NoError(t, doc.Validate())
}

func TestValidateEditModeBypassesOriginGate(t *testing.T) {
	doc := populatedDoc(document.KindPurchaseReturn)
	doc.EditMode = true
	require.NoError(t, doc.Validate())
}

func TestFindLineMatchesExactPair(t *testing.T) {
	doc := populatedDoc(document.KindSale)
	require.Equal(t, 0, doc.FindLine(12, 3))
	require.Equal(t, -1, doc.FindLine(12, 4))
	require.Equal(t, -1, doc.FindLine(13, 3))
}

func TestNewDocumentDatedNow(t *testing.T) {
	doc := document.New(document.KindSell)
	require.WithinDuration(t, time.Now(), doc.Header.Date, time.Second)
	require.False(t, doc.Verified)
}
