package rebal

// Holding is one row of the holdings snapshot: a position of a single security
// within a single account. Quantity, Price and AverageCost are per-share;
// Value and Cost are the derived aggregates.
//
// Holdings are value types: the engine never mutates its input slice, and the
// after-trade table it returns shares no rows with the input.
type Holding struct {
	Account     string
	TaxStatus   string
	Name        string
	Symbol      string
	Sleeve      string // filled by classification; may be empty on raw input rows
	Quantity    float64
	Price       float64
	AverageCost float64
	Value       float64 // Quantity * Price
	Cost        float64 // Quantity * AverageCost
}

// NewHolding builds a holding row with its derived columns computed.
func NewHolding(account, name, symbol string, quantity, price, averageCost float64) Holding {
	h := Holding{
		Account:     account,
		Name:        name,
		Symbol:      symbol,
		Quantity:    quantity,
		Price:       price,
		AverageCost: averageCost,
	}
	h.recompute()
	return h
}

// ident is the tradable identifier of the row. The engine keys everything by
// (account, identifier); today the identifier is simply the symbol.
func (h Holding) ident() string { return h.Symbol }

// recompute refreshes the derived Value and Cost columns.
func (h *Holding) recompute() {
	h.Value = h.Quantity * h.Price
	h.Cost = h.Quantity * h.AverageCost
}
