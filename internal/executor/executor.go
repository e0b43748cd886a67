// Package executor applies confirmed actions to the record store. There
// is one handler per action kind; Execute dispatches with an exhaustive
// type switch over the sealed payload set.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/ledger"
)

// RecordStore is the subset of ledger.RecordStore the executor writes to.
type RecordStore interface {
	CreateItem(ctx context.Context, item ledger.NewItem) (ledger.Item, error)
	AdjustItem(ctx context.Context, owner, name string, delta, price *decimal.Decimal) (ledger.Item, error)
	RecordSale(ctx context.Context, owner string, sale ledger.NewSale) (ledger.Sale, error)
	RecordExpense(ctx context.Context, owner string, expense ledger.NewExpense) (ledger.Expense, error)
}

// Result reports what an executed action changed.
type Result struct {
	Kind      action.Kind     `json:"kind"`
	SaleID    string          `json:"sale_id,omitempty"`
	ExpenseID string          `json:"expense_id,omitempty"`
	ItemID    string          `json:"item_id,omitempty"`
	Item      string          `json:"item,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category,omitempty"`
	OnHand    decimal.Decimal `json:"on_hand"`
}

// Executor dispatches validated payloads to their handlers.
type Executor struct {
	store  RecordStore
	logger *slog.Logger
}

// New creates an Executor. A nil logger selects slog.Default().
func New(store RecordStore, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, logger: logger}
}

// Execute applies p on behalf of owner. Every failure is an *ExecError.
func (e *Executor) Execute(ctx context.Context, owner string, p action.Payload) (Result, error) {
	var (
		res Result
		err error
	)
	switch v := p.(type) {
	case action.SalePayload:
		res, err = e.executeSale(ctx, owner, v)
	case action.ExpensePayload:
		res, err = e.executeExpense(ctx, owner, v)
	case action.InventoryUpdatePayload:
		res, err = e.executeInventoryUpdate(ctx, owner, v)
	case action.InventoryAddPayload:
		res, err = e.executeInventoryAdd(ctx, owner, v)
	default:
		err = fmt.Errorf("unsupported payload type %T", p)
	}
	if err == nil {
		return res, nil
	}

	ee := classify(err)
	if ee.Code == CodeInternal {
		e.logger.Error("execute failed",
			"owner", owner,
			"kind", action.KindOf(p).String(),
			"error", err,
			"event", "execute_internal_failure",
		)
	}
	return Result{}, ee
}

func (e *Executor) executeSale(ctx context.Context, owner string, p action.SalePayload) (Result, error) {
	lines := make([]ledger.NewSaleLine, len(p.Items))
	for i, item := range p.Items {
		lines[i] = ledger.NewSaleLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}
	sale, err := e.store.RecordSale(ctx, owner, ledger.NewSale{
		Lines:         lines,
		PaymentMethod: p.PaymentMethod,
		Customer:      p.Customer,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: action.AddSale, SaleID: sale.ID, Total: sale.Total}, nil
}

func (e *Executor) executeExpense(ctx context.Context, owner string, p action.ExpensePayload) (Result, error) {
	exp, err := e.store.RecordExpense(ctx, owner, ledger.NewExpense{
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:      action.AddExpense,
		ExpenseID: exp.ID,
		Amount:    exp.Amount,
		Category:  exp.Category,
	}, nil
}

func (e *Executor) executeInventoryUpdate(ctx context.Context, owner string, p action.InventoryUpdatePayload) (Result, error) {
	it, err := e.store.AdjustItem(ctx, owner, p.Item, p.DeltaQty, p.Price)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: action.UpdateInventory, ItemID: it.ID, Item: it.Name, OnHand: it.Quantity}, nil
}

// executeInventoryAdd defaults missing quantity and prices to zero and the
// category to action.DefaultCategory.
func (e *Executor) executeInventoryAdd(ctx context.Context, owner string, p action.InventoryAddPayload) (Result, error) {
	it, err := e.store.CreateItem(ctx, ledger.NewItem{
		Owner:     owner,
		Name:      p.Item,
		Quantity:  action.OrZero(p.Quantity),
		CostPrice: action.OrZero(p.CostPrice),
		Price:     action.OrZero(p.Price),
		Category:  p.Category,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Kind:     action.AddInventory,
		ItemID:   it.ID,
		Item:     it.Name,
		OnHand:   it.Quantity,
		Category: it.Category,
	}, nil
}
