/*
manual.go - Manual allocation override

PURPOSE:
  Lets an operator replace one sub-order's allocation with an explicit
  quantity, re-validated against the CURRENT ledger state rather than the
  snapshot the auto run saw. The manual path writes through the same
  ledger contract as the orchestrator, so the pool invariants survive any
  interleaving of auto runs and manual overrides.

VALIDATE-THEN-COMMIT:
  Every precondition is checked before anything mutates. A rejection
  leaves the state byte-identical to before the call.

REJECTIONS (in check order):
  - unknown sub-order
  - negative quantity
  - quantity exceeds the sub-order's request
  - insufficient stock at the resolved warehouse for the additional units
  - new total value exceeds the customer's credit limit

CLASSIFICATION:
  The three-way status rule applies, with one deliberate asymmetry: a
  zero-quantity override classifies UNALLOCATED, not CREDIT_EXCEEDED -
  the operator chose zero, the system did not find zero feasible.
*/
package allocation

import "github.com/shopspring/decimal"

// ManualAllocate sets one sub-order's allocated quantity to qty, mutating
// the state in place under the caller's single-writer contract. Returns a
// structured error and leaves the state untouched if any validation fails.
func ManualAllocate(state *State, id SubOrderID, qty int) error {
	sub := state.FindSubOrder(id)
	if sub == nil {
		return ErrSubOrderNotFound
	}
	if qty < 0 {
		return ErrNegativeQuantity
	}
	if qty > sub.RequestQty {
		return &ExceedsRequestError{SubOrderID: id, Requested: sub.RequestQty, Quantity: qty}
	}

	ledger := NewLedger(state)

	// Use the auto-resolved resources when present; a never-auto-resolved
	// sub-order resolves its original request now, against current stock.
	warehouse := sub.ResolvedWarehouse
	if warehouse == "" {
		warehouse = ResolveWarehouse(sub.Warehouse, state)
	}
	supplier := sub.ResolvedSupplier
	if supplier == "" {
		supplier = ResolveSupplier(sub.Supplier, state)
	}

	// Additional units needed beyond what this sub-order already holds.
	diff := qty - sub.Allocated
	if stock := ledger.Stock(warehouse); diff > stock {
		return &InsufficientStockError{Warehouse: warehouse, Available: stock, Needed: diff}
	}

	unitPrice := state.Prices.UnitPrice(sub.ItemID, supplier, sub.Tier)
	newValue := roundMoney(unitPrice.Mul(decimal.NewFromInt(int64(qty))))

	customer, ok := ledger.Customer(sub.CustomerID)
	if !ok {
		return ErrCustomerNotFound
	}
	projected := roundMoney(customer.UsedCredit.Sub(sub.TotalValue).Add(newValue))
	if projected.GreaterThan(customer.CreditLimit) {
		headroom := customer.CreditLimit.Sub(customer.UsedCredit.Sub(sub.TotalValue))
		return &CreditLimitError{Customer: sub.CustomerID, Headroom: headroom, Needed: newValue}
	}

	// All checks passed; commit atomically.
	_ = ledger.AdjustStock(warehouse, diff)
	_ = ledger.RechargeCredit(sub.CustomerID, sub.TotalValue, newValue)

	sub.Allocated = qty
	sub.ResolvedWarehouse = warehouse
	sub.ResolvedSupplier = supplier
	sub.UnitPrice = unitPrice
	sub.TotalValue = newValue
	sub.Status = classify(qty, sub.RequestQty)
	return nil
}
