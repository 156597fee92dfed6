/*
errors.go - Centralized error types for the allocation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  These are the rejection conditions of the manual override path; the
  automatic run never fails - its infeasibilities become terminal
  sub-order statuses plus log entries, not errors.

ERROR CATEGORIES:
  1. Lookup errors     - Unknown sub-order
  2. Validation errors - Bad quantity, exceeds request
  3. Pool errors       - Insufficient stock, credit limit exceeded

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, allocation.ErrInsufficientStock) {
        var se *allocation.InsufficientStockError
        errors.As(err, &se) // se.Available, se.Warehouse
    }

SEE ALSO:
  - manual.go: Produces these errors
  - ledger.go: Guards that back the pool errors
*/
package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSubOrderNotFound is returned when the target sub-order does not exist.
	ErrSubOrderNotFound = errors.New("sub-order not found")

	// ErrNegativeQuantity is returned when a manual quantity is below zero.
	ErrNegativeQuantity = errors.New("quantity must be zero or greater")

	// ErrExceedsRequest is returned when a manual quantity is above the
	// sub-order's requested quantity.
	ErrExceedsRequest = errors.New("quantity exceeds requested quantity")

	// ErrInsufficientStock is returned when the resolved warehouse cannot
	// cover the additional units a manual override needs.
	ErrInsufficientStock = errors.New("insufficient warehouse stock")

	// ErrCreditLimitExceeded is returned when the new total value would push
	// the customer past their credit limit.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")

	// ErrCustomerNotFound is returned when a sub-order references a customer
	// missing from the snapshot.
	ErrCustomerNotFound = errors.New("customer not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context for the operator
// =============================================================================

// ExceedsRequestError reports a manual quantity above the request.
type ExceedsRequestError struct {
	SubOrderID SubOrderID
	Requested  int
	Quantity   int
}

func (e *ExceedsRequestError) Error() string {
	return fmt.Sprintf("quantity %d exceeds requested quantity %d for %s",
		e.Quantity, e.Requested, e.SubOrderID)
}

func (e *ExceedsRequestError) Unwrap() error { return ErrExceedsRequest }

// InsufficientStockError names the warehouse and its remaining stock.
type InsufficientStockError struct {
	Warehouse WarehouseID
	Available int
	Needed    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock at %s: %d available, %d needed",
		e.Warehouse, e.Available, e.Needed)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CreditLimitError names the customer's available headroom.
type CreditLimitError struct {
	Customer CustomerID
	Headroom decimal.Decimal
	Needed   decimal.Decimal
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("credit limit exceeded for %s: %s headroom, %s needed",
		e.Customer, e.Headroom.StringFixed(MoneyPlaces), e.Needed.StringFixed(MoneyPlaces))
}

func (e *CreditLimitError) Unwrap() error { return ErrCreditLimitExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a rejected manual request
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNegativeQuantity) ||
		errors.Is(err, ErrExceedsRequest) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrCreditLimitExceeded)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSubOrderNotFound) ||
		errors.Is(err, ErrCustomerNotFound)
}
