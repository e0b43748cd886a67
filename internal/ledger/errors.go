package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound means no catalog item (or no unique one) matched a name.
	ErrItemNotFound = errors.New("item not found")

	// ErrInsufficientStock means a decrement would take on-hand stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateItem means an item with the same folded name already exists.
	ErrDuplicateItem = errors.New("item already exists")

	// ErrStockChanged means the item's stock moved between the read and the
	// compare-and-set write.
	ErrStockChanged = errors.New("stock changed concurrently")

	// ErrSaleNotFound is returned by GetSale for an unknown id.
	ErrSaleNotFound = errors.New("sale not found")
)

// ItemError reports a feasibility failure against one catalog item.
// Available and Requested are set for ErrInsufficientStock.
type ItemError struct {
	Err       error
	Item      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("%v for %q (available %s, requested %s)",
			e.Err, e.Item, e.Available.String(), e.Requested.String())
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Item)
}

// Unwrap returns the sentinel.
func (e *ItemError) Unwrap() error {
	return e.Err
}

// IsItemNotFound reports whether err is (or wraps) ErrItemNotFound.
func IsItemNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// IsInsufficientStock reports whether err is (or wraps) ErrInsufficientStock.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsStockChanged reports whether err is (or wraps) ErrStockChanged.
func IsStockChanged(err error) bool {
	return errors.Is(err, ErrStockChanged)
}

// IsDuplicateItem reports whether err is (or wraps) ErrDuplicateItem.
func IsDuplicateItem(err error) bool {
	return errors.Is(err, ErrDuplicateItem)
}
