package placement

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a malformed order request. Index is the offending
// line item, or -1 when the violation concerns the request as a whole.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid order request: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid order request: line_items[%d].%s %s", e.Index, e.Field, e.Reason)
}

type InventoryLookupError struct {
	Err error
}

func (e *InventoryLookupError) Error() string {
	return fmt.Sprintf("inventory lookup failed: %v", e.Err)
}

func (e *InventoryLookupError) Unwrap() error {
	return e.Err
}

// StockUnavailableError lists the product codes that were reported out of
// stock or were missing from the inventory response.
type StockUnavailableError struct {
	SkuCodes []string
}

func (e *StockUnavailableError) Error() string {
	if len(e.SkuCodes) == 0 {
		return "product is not in stock, please try again later"
	}
	return fmt.Sprintf("product is not in stock, please try again later: %s", strings.Join(e.SkuCodes, ", "))
}

type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store order: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// TerminalState classifies the error returned by PlaceOrder into the state the
// attempt ended in. A nil error means the attempt completed.
func TerminalState(err error) State {
	if err == nil {
		return StateCompleted
	}

	var validationErr *ValidationError
	var stockErr *StockUnavailableError
	if errors.As(err, &validationErr) || errors.As(err, &stockErr) {
		return StateRejected
	}

	return StateFailed
}
