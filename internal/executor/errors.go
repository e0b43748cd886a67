package executor

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/tally/internal/ledger"
)

// Code classifies an execution failure for the caller.
type Code string

const (
	CodeItemNotFound      Code = "ITEM_NOT_FOUND"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeDuplicateItem     Code = "DUPLICATE_ITEM"
	CodeStockChanged      Code = "STOCK_CHANGED"
	CodeInternal          Code = "INTERNAL"
)

// ExecError is the structured failure of Execute. Item, Available and
// Requested are filled when the record store reported them.
type ExecError struct {
	Code      Code
	Item      string
	Available decimal.Decimal
	Requested decimal.Decimal
	Err       error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// AsExecError extracts an ExecError from err.
func AsExecError(err error) (*ExecError, bool) {
	var ee *ExecError
	ok := errors.As(err, &ee)
	return ee, ok
}

// classify maps a record-store error onto an ExecError.
func classify(err error) *ExecError {
	ee := &ExecError{Code: CodeInternal, Err: err}

	var ie *ledger.ItemError
	if errors.As(err, &ie) {
		ee.Item = ie.Item
		ee.Available = ie.Available
		ee.Requested = ie.Requested
	}

	switch {
	case ledger.IsItemNotFound(err):
		ee.Code = CodeItemNotFound
	case ledger.IsInsufficientStock(err):
		ee.Code = CodeInsufficientStock
	case ledger.IsDuplicateItem(err):
		ee.Code = CodeDuplicateItem
	case ledger.IsStockChanged(err):
		ee.Code = CodeStockChanged
	}
	return ee
}
