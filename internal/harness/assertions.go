package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/ledger"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the harness's final
// state and returns the failure messages.
func EvaluateAssertions(ctx context.Context, h *Harness, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(ctx, h, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(ctx context.Context, h *Harness, a Assertion) error {
	owner := h.scenario.Owner
	switch a.Type {
	case AssertStock:
		return assertStock(ctx, h.ledger, owner, a)

	case AssertSalesCount:
		sales, err := h.ledger.ListSales(ctx, owner)
		if err != nil {
			return err
		}
		return assertCount(a, len(sales))

	case AssertExpensesCount:
		expenses, err := h.ledger.ListExpenses(ctx, owner)
		if err != nil {
			return err
		}
		return assertCount(a, len(expenses))

	case AssertPendingCount:
		n, err := h.pending.Len(ctx)
		if err != nil {
			return err
		}
		return assertCount(a, n)

	case AssertItemExists:
		return assertItemExists(ctx, h.ledger, owner, a)

	case AssertJournalCount:
		entries, err := h.ledger.ListJournal(ctx, owner, 0)
		if err != nil {
			return err
		}
		n := 0
		for _, e := range entries {
			switch {
			case a.Outcome == "":
				n++
			case a.Outcome == OutcomeUnresolved && !e.Resolved():
				n++
			case a.Outcome == e.Outcome:
				n++
			}
		}
		return assertCount(a, n)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertStock(ctx context.Context, led *ledger.SQLStore, owner string, a Assertion) error {
	want, err := decimal.NewFromString(a.Quantity)
	if err != nil {
		return fmt.Errorf("stock %s: bad quantity %q: %w", a.Item, a.Quantity, err)
	}
	it, err := led.FindItem(ctx, owner, a.Item)
	if ledger.IsItemNotFound(err) {
		return &AssertionError{
			Type:     AssertStock,
			Expected: fmt.Sprintf("%s on hand: %s", a.Item, action.FormatQuantity(want)),
			Actual:   "item not in catalog",
		}
	}
	if err != nil {
		return err
	}
	if !it.Quantity.Equal(want) {
		return &AssertionError{
			Type:     AssertStock,
			Expected: fmt.Sprintf("%s on hand: %s", a.Item, action.FormatQuantity(want)),
			Actual:   fmt.Sprintf("%s on hand: %s", it.Name, action.FormatQuantity(it.Quantity)),
		}
	}
	return nil
}

func assertItemExists(ctx context.Context, led *ledger.SQLStore, owner string, a Assertion) error {
	_, err := led.FindItem(ctx, owner, a.Item)
	exists := err == nil
	if err != nil && !ledger.IsItemNotFound(err) {
		return err
	}
	if exists == !a.Absent {
		return nil
	}
	expected, actual := "present", "absent"
	if a.Absent {
		expected, actual = actual, expected
	}
	return &AssertionError{
		Type:     AssertItemExists,
		Expected: fmt.Sprintf("%s %s", a.Item, expected),
		Actual:   fmt.Sprintf("%s %s", a.Item, actual),
	}
}

func assertCount(a Assertion, got int) error {
	if *a.Count == got {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d", *a.Count),
		Actual:   fmt.Sprintf("%d", got),
	}
}
