/*
ledger.go - Shared stock and credit pools

PURPOSE:
  The Ledger is the single mutation path for the two shared pools: stock
  per warehouse and used credit per customer. Both the automatic
  orchestrator and the manual validator write through it, so the pool
  invariants live in exactly one place.

INVARIANTS (hold after every mutation):
  1. Warehouse stock never goes negative and is debited exactly once per
     allocated unit.
  2. 0 <= UsedCredit <= CreditLimit for every customer.
  3. Credit mutations are banker's-rounded to monetary precision, so used
     credit stays exact to two decimals.

OWNERSHIP:
  A Ledger is a view over a State owned by the caller: it indexes the
  state's backing arrays and mutates them in place under a single-writer
  contract. It holds no state of its own beyond the indexes.

SEE ALSO:
  - engine.go: Auto-allocation writes (debit stock, charge credit)
  - manual.go: Manual override writes (delta stock, recharge credit)
*/
package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger indexes a State's pools for mutation. Not safe for concurrent use;
// allocation operations are strictly sequential by design.
type Ledger struct {
	state      *State
	warehouses map[WarehouseID]*Warehouse
	customers  map[CustomerID]*Customer
}

// NewLedger builds the pool indexes over the given state.
func NewLedger(state *State) *Ledger {
	l := &Ledger{
		state:      state,
		warehouses: make(map[WarehouseID]*Warehouse, len(state.Warehouses)),
		customers:  make(map[CustomerID]*Customer, len(state.Customers)),
	}
	for i := range state.Warehouses {
		w := &state.Warehouses[i]
		l.warehouses[w.ID] = w
	}
	for i := range state.Customers {
		c := &state.Customers[i]
		l.customers[c.ID] = c
	}
	return l
}

// =============================================================================
// STOCK POOL
// =============================================================================

// Stock returns the current stock of a warehouse, or 0 if unknown.
// Unknown warehouses (including an unresolved wildcard) read as empty, so
// allocation against them fails closed.
func (l *Ledger) Stock(id WarehouseID) int {
	if w, ok := l.warehouses[id]; ok {
		return w.Stock
	}
	return 0
}

// DebitStock removes qty units from a warehouse.
func (l *Ledger) DebitStock(id WarehouseID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("debit of %d units from %s: quantity must not be negative", qty, id)
	}
	w, ok := l.warehouses[id]
	if !ok {
		return fmt.Errorf("debit from unknown warehouse %s", id)
	}
	if qty > w.Stock {
		return &InsufficientStockError{Warehouse: id, Available: w.Stock, Needed: qty}
	}
	w.Stock -= qty
	return nil
}

// ReleaseStock returns qty previously allocated units to a warehouse.
func (l *Ledger) ReleaseStock(id WarehouseID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("release of %d units to %s: quantity must not be negative", qty, id)
	}
	w, ok := l.warehouses[id]
	if !ok {
		return fmt.Errorf("release to unknown warehouse %s", id)
	}
	w.Stock += qty
	return nil
}

// AdjustStock applies a signed delta: positive debits, negative releases.
func (l *Ledger) AdjustStock(id WarehouseID, delta int) error {
	if delta >= 0 {
		return l.DebitStock(id, delta)
	}
	return l.ReleaseStock(id, -delta)
}

// =============================================================================
// CREDIT POOL
// =============================================================================

// Customer returns the customer record, if present.
func (l *Ledger) Customer(id CustomerID) (*Customer, bool) {
	c, ok := l.customers[id]
	return c, ok
}

// RemainingCredit returns the customer's credit headroom, or zero for an
// unknown customer (fails closed, mirroring the stock side).
func (l *Ledger) RemainingCredit(id CustomerID) decimal.Decimal {
	if c, ok := l.customers[id]; ok {
		return c.RemainingCredit()
	}
	return decimal.Zero
}

// ChargeCredit increases a customer's used credit by amount, rounded to
// monetary precision. The caller must have verified headroom; the guard
// here is the invariant of last resort.
func (l *Ledger) ChargeCredit(id CustomerID, amount decimal.Decimal) error {
	c, ok := l.customers[id]
	if !ok {
		return fmt.Errorf("charge for unknown customer %s: %w", id, ErrCustomerNotFound)
	}
	next := roundMoney(c.UsedCredit.Add(amount))
	if next.GreaterThan(c.CreditLimit) {
		return &CreditLimitError{
			Customer: id,
			Headroom: c.RemainingCredit(),
			Needed:   amount,
		}
	}
	if next.IsNegative() {
		next = decimal.Zero
	}
	c.UsedCredit = next
	return nil
}

// RechargeCredit replaces one charged value with another atomically:
// usedCredit += newValue - oldValue, rounded. Used by the manual path when
// it rewrites a sub-order's total value.
func (l *Ledger) RechargeCredit(id CustomerID, oldValue, newValue decimal.Decimal) error {
	return l.ChargeCredit(id, newValue.Sub(oldValue))
}
