package action

import "github.com/shopspring/decimal"

// Payload is the kind-specific body of an action.
//
// The interface is sealed by the unexported isPayload method; the only
// implementations are the four payload types in this file.
type Payload interface {
	Kind() Kind
	isPayload()
}

// SaleLine is one item of a sale: how much of which item at what unit price.
type SaleLine struct {
	Name     string          `json:"name" cbor:"name"`
	Quantity decimal.Decimal `json:"quantity" cbor:"quantity"`
	Price    decimal.Decimal `json:"price" cbor:"price"`
}

// Subtotal returns quantity x price rounded to Precision.
func (l SaleLine) Subtotal() decimal.Decimal {
	return Round(l.Quantity.Mul(l.Price))
}

// SalePayload describes a sale of one or more catalog items.
type SalePayload struct {
	Items         []SaleLine `json:"items" cbor:"items"`
	PaymentMethod string     `json:"payment_method,omitempty" cbor:"payment_method,omitempty"`
	Customer      string     `json:"customer,omitempty" cbor:"customer,omitempty"`
}

// Kind implements Payload.
func (SalePayload) Kind() Kind { return AddSale }
func (SalePayload) isPayload() {}

// Total returns the sum of every line's subtotal.
func (p SalePayload) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Items {
		total = total.Add(line.Subtotal())
	}
	return Round(total)
}

// ExpensePayload describes a single expense.
type ExpensePayload struct {
	Amount      decimal.Decimal `json:"amount" cbor:"amount"`
	Description string          `json:"description" cbor:"description"`
	Category    string          `json:"category" cbor:"category"`
}

// Kind implements Payload.
func (ExpensePayload) Kind() Kind { return AddExpense }
func (ExpensePayload) isPayload() {}

// InventoryUpdatePayload adjusts an existing catalog item.
//
// DeltaQty is signed: positive restocks, negative records consumption.
// Price, when set, replaces the item's selling price.
type InventoryUpdatePayload struct {
	Item     string           `json:"item" cbor:"item"`
	DeltaQty *decimal.Decimal `json:"delta_qty,omitempty" cbor:"delta_qty,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty" cbor:"price,omitempty"`
}

// Kind implements Payload.
func (InventoryUpdatePayload) Kind() Kind { return UpdateInventory }
func (InventoryUpdatePayload) isPayload() {}

// InventoryAddPayload creates a new catalog item. Unset numbers default to
// zero and an empty category defaults to DefaultCategory at execution time.
type InventoryAddPayload struct {
	Item      string           `json:"item" cbor:"item"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty" cbor:"quantity,omitempty"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty" cbor:"cost_price,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty" cbor:"price,omitempty"`
	Category  string           `json:"category,omitempty" cbor:"category,omitempty"`
}

// Kind implements Payload.
func (InventoryAddPayload) Kind() Kind { return AddInventory }
func (InventoryAddPayload) isPayload() {}

// DefaultCategory is the bucket used for new items that arrive without one.
const DefaultCategory = "general"

// DefaultPaymentMethod is recorded for sales that do not name one.
const DefaultPaymentMethod = "cash"

// DecimalPtr is a convenience for building optional payload fields.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// OrZero dereferences an optional decimal, returning zero when unset.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// KindOf returns p's kind, or KindUnknown for a nil payload.
func KindOf(p Payload) Kind {
	if p == nil {
		return KindUnknown
	}
	return p.Kind()
}
