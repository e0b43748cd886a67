package action

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		payload   Payload
		wantField string
		wantErr   bool
	}{
		{
			name: "valid sale",
			payload: SalePayload{Items: []SaleLine{
				{Name: "Rice", Quantity: dec("5"), Price: dec("30")},
			}},
		},
		{
			name:      "sale without items",
			payload:   SalePayload{},
			wantErr:   true,
			wantField: "items",
		},
		{
			name: "sale line without name",
			payload: SalePayload{Items: []SaleLine{
				{Name: "Rice", Quantity: dec("1"), Price: dec("30")},
				{Name: "  ", Quantity: dec("1"), Price: dec("30")},
			}},
			wantErr:   true,
			wantField: "items[1].name",
		},
		{
			name: "sale line with zero quantity",
			payload: SalePayload{Items: []SaleLine{
				{Name: "Rice", Quantity: dec("0"), Price: dec("30")},
			}},
			wantErr:   true,
			wantField: "items[0].quantity",
		},
		{
			name: "sale line with negative price",
			payload: SalePayload{Items: []SaleLine{
				{Name: "Rice", Quantity: dec("1"), Price: dec("-2")},
			}},
			wantErr:   true,
			wantField: "items[0].price",
		},
		{
			name:    "sale quantity above stock is still valid",
			payload: SalePayload{Items: []SaleLine{{Name: "Rice", Quantity: dec("100000"), Price: dec("1")}}},
		},
		{
			name:    "valid expense",
			payload: ExpensePayload{Amount: dec("1200"), Description: "electricity bill", Category: "Electricity"},
		},
		{
			name:      "expense with zero amount",
			payload:   ExpensePayload{Amount: dec("0"), Description: "x", Category: "y"},
			wantErr:   true,
			wantField: "amount",
		},
		{
			name:      "expense without category",
			payload:   ExpensePayload{Amount: dec("10"), Description: "tea"},
			wantErr:   true,
			wantField: "category",
		},
		{
			name:      "expense without description",
			payload:   ExpensePayload{Amount: dec("10"), Category: "Food"},
			wantErr:   true,
			wantField: "description",
		},
		{
			name:    "inventory update with negative delta",
			payload: InventoryUpdatePayload{Item: "Milk", DeltaQty: DecimalPtr(dec("-5"))},
		},
		{
			name:    "inventory update with price only",
			payload: InventoryUpdatePayload{Item: "Milk", Price: DecimalPtr(dec("25"))},
		},
		{
			name:    "inventory update with nothing to change",
			payload: InventoryUpdatePayload{Item: "Milk"},
			wantErr: true,
		},
		{
			name:      "inventory update with zero delta",
			payload:   InventoryUpdatePayload{Item: "Milk", DeltaQty: DecimalPtr(dec("0"))},
			wantErr:   true,
			wantField: "delta_qty",
		},
		{
			name:      "inventory update without item",
			payload:   InventoryUpdatePayload{DeltaQty: DecimalPtr(dec("1"))},
			wantErr:   true,
			wantField: "item",
		},
		{
			name:    "inventory add with only a name",
			payload: InventoryAddPayload{Item: "Sugar"},
		},
		{
			name:      "inventory add with zero price",
			payload:   InventoryAddPayload{Item: "Sugar", Price: DecimalPtr(dec("0"))},
			wantErr:   true,
			wantField: "price",
		},
		{
			name:    "nil payload",
			payload: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestValidate_RejectsPointerPayloads(t *testing.T) {
	err := Validate(&SalePayload{Items: []SaleLine{{Name: "Rice", Quantity: dec("1"), Price: dec("1")}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported payload type")
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Kind: AddExpense, Field: "amount", Reason: "value must be greater than zero"}
	assert.Equal(t, "invalid add_expense: amount: value must be greater than zero", err.Error())
}

// Property: a sale built from non-empty names and positive numbers always
// validates, and its total is the sum of the line subtotals.
func TestValidateSale_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("well-formed sales validate", prop.ForAll(
		func(names []string, qty float64, price float64) bool {
			if len(names) == 0 {
				return true
			}
			q, err := NormalizeQuantity(qty)
			if err != nil {
				return false
			}
			p, err := NormalizeAmount(price)
			if err != nil {
				return false
			}
			sale := SalePayload{}
			want := decimal.Zero
			for _, name := range names {
				sale.Items = append(sale.Items, SaleLine{Name: name, Quantity: q, Price: p})
				want = want.Add(Round(q.Mul(p)))
			}
			return Validate(sale) == nil && sale.Total().Equal(Round(want))
		},
		gen.SliceOfN(3, gen.Identifier()),
		gen.Float64Range(0.01, 1000),
		gen.Float64Range(0.01, 10000),
	))

	properties.Property("any non-positive quantity is rejected", prop.ForAll(
		func(qty float64) bool {
			sale := SalePayload{Items: []SaleLine{{Name: "Rice", Quantity: decimal.NewFromFloat(qty), Price: dec("1")}}}
			return Validate(sale) != nil
		},
		gen.Float64Range(-1000, 0.004),
	))

	properties.TestingRun(t)
}
