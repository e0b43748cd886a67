package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry with its current on-hand stock.
type Item struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewItem is the input to CreateItem. Zero values mean "not given".
type NewItem struct {
	Owner     string
	Name      string
	Quantity  decimal.Decimal
	CostPrice decimal.Decimal
	Price     decimal.Decimal
	Category  string
}

// SaleLine binds a sold quantity to its selling price and the catalog's
// cost basis at the time of sale.
type SaleLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// Sale is an append-only sale record.
type Sale struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner"`
	Lines         []SaleLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Customer      string          `json:"customer,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewSaleLine names a catalog item by the operator's spelling.
type NewSaleLine struct {
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// NewSale is the input to RecordSale.
type NewSale struct {
	Lines         []NewSaleLine
	PaymentMethod string
	Customer      string
}

// Expense is an append-only expense record.
type Expense struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewExpense is the input to RecordExpense.
type NewExpense struct {
	Amount      decimal.Decimal
	Category    string
	Description string
}

// RecordStore is the ledger as seen by the executor and the CLI.
type RecordStore interface {
	ListItems(ctx context.Context, owner string) ([]Item, error)
	ItemNames(ctx context.Context, owner string) ([]string, error)
	FindItem(ctx context.Context, owner, name string) (Item, error)
	CreateItem(ctx context.Context, item NewItem) (Item, error)
	AdjustItem(ctx context.Context, owner, name string, delta, price *decimal.Decimal) (Item, error)
	RecordSale(ctx context.Context, owner string, sale NewSale) (Sale, error)
	RecordExpense(ctx context.Context, owner string, expense NewExpense) (Expense, error)
	ListSales(ctx context.Context, owner string) ([]Sale, error)
	GetSale(ctx context.Context, owner, id string) (Sale, error)
	ListExpenses(ctx context.Context, owner string) ([]Expense, error)
}
