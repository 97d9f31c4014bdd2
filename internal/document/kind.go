package document

// Kind identifies one of the transaction document types.
type Kind string

const (
	KindPurchase       Kind = "purchase"
	KindPurchaseReturn Kind = "purchase-return"
	KindSale           Kind = "sale"
	KindSell           Kind = "sell"
	KindSellReturn     Kind = "sell-return"
	KindSalesReturn    Kind = "sales-return"
)

// KindConfig captures the behavioural differences between document types so
// that one cart/pricing flow serves all of them.
type KindConfig struct {
	// UsesBuyPrice selects which reference price seeds new lines.
	UsesBuyPrice bool
	// Taxable marks kinds that carry a document-level tax percentage.
	Taxable bool
	// RequiresOrigin marks return kinds that must be verified against an
	// origin invoice before submission.
	RequiresOrigin bool
	// RequiresMember marks kinds that cannot be submitted without a
	// verified counterparty.
	RequiresMember bool
}

var kindConfigs = map[Kind]KindConfig{
	KindPurchase:       {UsesBuyPrice: true, Taxable: true},
	KindPurchaseReturn: {UsesBuyPrice: true, Taxable: true, RequiresOrigin: true},
	KindSale:           {},
	KindSell:           {Taxable: true, RequiresMember: true},
	KindSellReturn:     {Taxable: true, RequiresOrigin: true, RequiresMember: true},
	KindSalesReturn:    {RequiresOrigin: true},
}

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	_, ok := kindConfigs[k]
	return ok
}

// Config returns the behaviour flags for the kind. Unknown kinds get the
// zero config.
func (k Kind) Config() KindConfig {
	return kindConfigs[k]
}

func (k Kind) String() string {
	return string(k)
}
