package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError explains why a payload is structurally unacceptable.
type ValidationError struct {
	// Kind is the payload's kind, or KindUnknown for a nil/foreign payload.
	Kind Kind

	// Field is a path into the payload ("items[1].quantity"), empty when
	// the payload as a whole is wrong.
	Field string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a payload's shape. It never consults current state:
// a sale of more units than are in stock is valid here and fails later,
// at execution.
func Validate(p Payload) error {
	switch v := p.(type) {
	case SalePayload:
		return validateSale(v)
	case ExpensePayload:
		return validateExpense(v)
	case InventoryUpdatePayload:
		return validateInventoryUpdate(v)
	case InventoryAddPayload:
		return validateInventoryAdd(v)
	case nil:
		return &ValidationError{Reason: "payload is missing"}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unsupported payload type %T", p)}
	}
}

func validateSale(p SalePayload) error {
	if len(p.Items) == 0 {
		return &ValidationError{Kind: AddSale, Field: "items", Reason: "at least one item is required"}
	}
	for i, line := range p.Items {
		if blank(line.Name) {
			return &ValidationError{Kind: AddSale, Field: fmt.Sprintf("items[%d].name", i), Reason: "name is required"}
		}
		if err := CheckPositive(line.Quantity); err != nil {
			return &ValidationError{Kind: AddSale, Field: fmt.Sprintf("items[%d].quantity", i), Reason: err.Error()}
		}
		if err := CheckPositive(line.Price); err != nil {
			return &ValidationError{Kind: AddSale, Field: fmt.Sprintf("items[%d].price", i), Reason: err.Error()}
		}
	}
	return nil
}

func validateExpense(p ExpensePayload) error {
	if err := CheckPositive(p.Amount); err != nil {
		return &ValidationError{Kind: AddExpense, Field: "amount", Reason: err.Error()}
	}
	if blank(p.Description) {
		return &ValidationError{Kind: AddExpense, Field: "description", Reason: "description is required"}
	}
	if blank(p.Category) {
		return &ValidationError{Kind: AddExpense, Field: "category", Reason: "category is required"}
	}
	return nil
}

func validateInventoryUpdate(p InventoryUpdatePayload) error {
	if blank(p.Item) {
		return &ValidationError{Kind: UpdateInventory, Field: "item", Reason: "item name is required"}
	}
	if p.DeltaQty == nil && p.Price == nil {
		return &ValidationError{Kind: UpdateInventory, Reason: "nothing to update: give a quantity change or a new price"}
	}
	if p.DeltaQty != nil && Round(*p.DeltaQty).IsZero() {
		return &ValidationError{Kind: UpdateInventory, Field: "delta_qty", Reason: ErrZero.Error()}
	}
	if p.Price != nil {
		if err := CheckPositive(*p.Price); err != nil {
			return &ValidationError{Kind: UpdateInventory, Field: "price", Reason: err.Error()}
		}
	}
	return nil
}

func validateInventoryAdd(p InventoryAddPayload) error {
	if blank(p.Item) {
		return &ValidationError{Kind: AddInventory, Field: "item", Reason: "item name is required"}
	}
	optional := []struct {
		field string
		value *decimal.Decimal
	}{
		{"quantity", p.Quantity},
		{"cost_price", p.CostPrice},
		{"price", p.Price},
	}
	for _, o := range optional {
		if o.value == nil {
			continue
		}
		if err := CheckPositive(*o.value); err != nil {
			return &ValidationError{Kind: AddInventory, Field: o.field, Reason: err.Error()}
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
