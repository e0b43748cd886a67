package compose

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/roach88/tally/internal/action"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := New()
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComposer_Match(t *testing.T) {
	c := newTestComposer(t)

	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"en-GB", language.English},
		{"hi", language.Hindi},
		{"hi-IN", language.Hindi},
		{"te", language.Telugu},
		{"te-IN", language.Telugu},
		{"fr", language.English},
		{"", language.English},
		{"not a locale!", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Match(tt.locale))
		})
	}
}

func TestComposer_PreviewGolden(t *testing.T) {
	c := newTestComposer(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name    string
		payload action.Payload
		locale  string
	}{
		{
			name: "preview_sale_en",
			payload: action.SalePayload{
				Items: []action.SaleLine{
					{Name: "Rice", Quantity: dec("5"), Price: dec("30")},
					{Name: "Dal", Quantity: dec("2"), Price: dec("95.5")},
				},
				PaymentMethod: "upi",
				Customer:      "Ravi",
			},
			locale: "en",
		},
		{
			name: "preview_expense_hi",
			payload: action.ExpensePayload{
				Amount:      dec("1200"),
				Description: "electricity bill",
				Category:    "Electricity",
			},
			locale: "hi",
		},
		{
			name: "preview_update_te",
			payload: action.InventoryUpdatePayload{
				Item:     "Milk",
				DeltaQty: action.DecimalPtr(dec("-5")),
				Price:    action.DecimalPtr(dec("28")),
			},
			locale: "te",
		},
		{
			name: "preview_add_en",
			payload: action.InventoryAddPayload{
				Item:      "  basmati   rice ",
				Quantity:  action.DecimalPtr(dec("20")),
				CostPrice: action.DecimalPtr(dec("60")),
			},
			locale: "en",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, []byte(c.Preview(tt.payload, tt.locale)))
		})
	}
}

func TestComposer_PreviewExpenseContainsFigures(t *testing.T) {
	c := newTestComposer(t)
	payload := action.ExpensePayload{
		Amount:      dec("1200"),
		Description: "electricity bill",
		Category:    "Electricity",
	}

	for _, locale := range []string{"en", "hi", "te"} {
		t.Run(locale, func(t *testing.T) {
			got := c.Preview(payload, locale)
			assert.Contains(t, got, "1200")
			assert.Contains(t, got, "Electricity")
			assert.Contains(t, got, "electricity bill")
		})
	}
}

func TestComposer_PreviewSaleDefaultsPayment(t *testing.T) {
	c := newTestComposer(t)
	got := c.Preview(action.SalePayload{
		Items: []action.SaleLine{{Name: "Rice", Quantity: dec("5"), Price: dec("30")}},
	}, "en")

	assert.Contains(t, got, "Total: 150.00")
	assert.Contains(t, got, "Payment: cash")
	assert.NotContains(t, got, "Customer:")
}

func TestComposer_UnknownLocaleFallsBackToEnglish(t *testing.T) {
	c := newTestComposer(t)
	payload := action.ExpensePayload{Amount: dec("10"), Description: "tea", Category: "Staff"}

	assert.Equal(t, c.Preview(payload, "en"), c.Preview(payload, "de"))
	assert.Equal(t, c.Cancelled("en"), c.Cancelled("xx-YY"))
}

func TestComposer_LocalesDiffer(t *testing.T) {
	c := newTestComposer(t)
	en, hi, te := c.NothingPending("en"), c.NothingPending("hi"), c.NothingPending("te")
	assert.NotEqual(t, en, hi)
	assert.NotEqual(t, en, te)
	assert.NotEqual(t, hi, te)
}

func TestComposer_Success(t *testing.T) {
	c := newTestComposer(t)

	tests := []struct {
		name    string
		summary Summary
		want    string
	}{
		{"sale", Summary{Kind: action.AddSale, Total: dec("150")}, "Sale recorded. Total: 150.00"},
		{"expense", Summary{Kind: action.AddExpense, Amount: dec("1200"), Category: "Electricity"}, "Expense of 1200.00 recorded under Electricity."},
		{"update", Summary{Kind: action.UpdateInventory, Item: "Milk", OnHand: dec("15")}, "Stock for Milk updated. On hand: 15"},
		{"add", Summary{Kind: action.AddInventory, Item: "Sugar"}, "Added Sugar to your catalog."},
		{"unknown", Summary{}, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Success("en", tt.summary))
		})
	}
}

func TestComposer_Failure(t *testing.T) {
	c := newTestComposer(t)

	tests := []struct {
		name    string
		problem Problem
		want    string
	}{
		{"not found", Problem{Code: CodeItemNotFound, Item: "Ghee"}, "Item Ghee was not found in your catalog."},
		{"stock", Problem{Code: CodeInsufficientStock, Item: "Rice", Available: dec("3"), Requested: dec("5")}, "Not enough stock for Rice: 3 available, 5 requested."},
		{"duplicate", Problem{Code: CodeDuplicateItem, Item: "Rice"}, "Item Rice is already in your catalog."},
		{"stock changed", Problem{Code: CodeStockChanged, Item: "Rice"}, "Stock for Rice changed while recording. Please check it and try again."},
		{"internal", Problem{Code: CodeInternal}, "Something went wrong. Please try again."},
		{"unknown code", Problem{Code: "WHAT"}, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Failure("en", tt.problem))
		})
	}

	hi := c.Failure("hi", Problem{Code: CodeInsufficientStock, Item: "Rice", Available: dec("3"), Requested: dec("5")})
	assert.Contains(t, hi, "Rice")
	assert.Contains(t, hi, "3")
	assert.Contains(t, hi, "5")
}

func TestComposer_EveryKindHasPreview(t *testing.T) {
	c := newTestComposer(t)
	payloads := map[action.Kind]action.Payload{
		action.AddSale:         action.SalePayload{Items: []action.SaleLine{{Name: "a", Quantity: dec("1"), Price: dec("1")}}},
		action.AddExpense:      action.ExpensePayload{Amount: dec("1"), Description: "d", Category: "c"},
		action.UpdateInventory: action.InventoryUpdatePayload{Item: "a", DeltaQty: action.DecimalPtr(dec("1"))},
		action.AddInventory:    action.InventoryAddPayload{Item: "a"},
	}
	for _, kind := range action.Kinds() {
		p, ok := payloads[kind]
		require.True(t, ok, "no sample payload for %s", kind)
		for _, tag := range Supported {
			got := c.Preview(p, tag.String())
			assert.NotEqual(t, c.NotAction(tag.String()), got, "%s/%s", kind, tag)
		}
	}
}
