/*
engine.go - Auto-allocation orchestrator

PURPOSE:
  Runs the full allocation pass: orders the backlog by priority, then for
  each sub-order resolves resources, prices the request, computes the
  feasible quantity against current stock and credit, commits the ledger
  mutation, and emits one log entry.

STATE MACHINE PER SUB-ORDER:
  1. Resolve  - wildcard warehouse/supplier to concrete IDs
  2. Price    - unit price for (item, resolved supplier, tier)
  3. Gate     - no stock at resolved warehouse -> UNALLOCATED, skip
  4. Gate     - no remaining credit            -> CREDIT_EXCEEDED, skip
  5. Feasible - min(request, stock, credit-affordable units)
  6. Value    - feasible * unitPrice, banker's-rounded
  7. Classify - CREDIT_EXCEEDED / PARTIAL / ALLOCATED
  8. Commit   - debit stock, charge credit, write results back

FAILURE SEMANTICS:
  No step raises a fatal error. Every infeasibility is a terminal status
  plus a structured log entry; the run completes for every sub-order.

CONCURRENCY:
  None. Each sub-order's feasibility depends on pool state mutated by
  every strictly-prior sub-order, so the loop must stay sequential. The
  run is atomic from the caller's perspective: Run copies its input and
  returns a fully-applied new state.
*/
package allocation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run executes one automatic allocation pass over a copy of the given
// state. The caller's input is never mutated. It returns the updated state
// and one log entry per sub-order, in processing order.
func Run(input State) (State, []LogEntry) {
	state := input.Clone()
	ledger := NewLedger(&state)

	backlog := Backlog(&state)
	OrderBacklog(backlog)

	logs := make([]LogEntry, 0, len(backlog))
	for _, sub := range backlog {
		logs = append(logs, allocateOne(sub, &state, ledger))
	}
	return state, logs
}

// allocateOne runs the per-sub-order state machine and returns its log entry.
func allocateOne(sub *SubOrder, state *State, ledger *Ledger) LogEntry {
	// 1. Resolve resources against current pool state.
	warehouse := ResolveWarehouse(sub.Warehouse, state)
	supplier := ResolveSupplier(sub.Supplier, state)
	sub.ResolvedWarehouse = warehouse
	sub.ResolvedSupplier = supplier

	// 2. Price the request.
	unitPrice := state.Prices.UnitPrice(sub.ItemID, supplier, sub.Tier)
	sub.UnitPrice = unitPrice

	// 3. Gate on stock.
	stock := ledger.Stock(warehouse)
	if stock <= 0 {
		sub.Allocated = 0
		sub.TotalValue = decimal.Zero
		sub.Status = StatusUnallocated
		return logEntry(sub.ID, LogError,
			"no stock at warehouse %s for %s", warehouse, sub.ItemID)
	}

	// 4. Gate on credit.
	remaining := ledger.RemainingCredit(sub.CustomerID)
	if !remaining.IsPositive() {
		sub.Allocated = 0
		sub.TotalValue = decimal.Zero
		sub.Status = StatusCreditExceeded
		return logEntry(sub.ID, LogError,
			"customer %s has no remaining credit", sub.CustomerID)
	}

	// 5. Feasible quantity: request, stock, and credit-affordable units.
	allocatable := sub.RequestQty
	if stock < allocatable {
		allocatable = stock
	}
	if unitPrice.IsPositive() {
		affordable := creditUnits(remaining, unitPrice)
		if affordable < allocatable {
			allocatable = affordable
		}
	}
	if allocatable < 0 {
		allocatable = 0
	}

	// 6. Derive value.
	totalValue := roundMoney(unitPrice.Mul(decimal.NewFromInt(int64(allocatable))))

	// 8. Commit before classification writes the log; the two gates above
	// guarantee both mutations succeed.
	_ = ledger.DebitStock(warehouse, allocatable)
	_ = ledger.ChargeCredit(sub.CustomerID, totalValue)
	sub.Allocated = allocatable
	sub.TotalValue = totalValue

	// 7. Classify.
	switch {
	case allocatable == 0:
		sub.Status = StatusCreditExceeded
		return logEntry(sub.ID, LogWarning,
			"credit insufficient for even one unit at %s/unit",
			unitPrice.StringFixed(MoneyPlaces))
	case allocatable < sub.RequestQty:
		sub.Status = StatusPartial
		return logEntry(sub.ID, LogWarning,
			"partially allocated %d of %d units from %s",
			allocatable, sub.RequestQty, warehouse)
	default:
		sub.Status = StatusAllocated
		return logEntry(sub.ID, LogSuccess,
			"allocated %d units from %s, value %s",
			allocatable, warehouse, totalValue.StringFixed(MoneyPlaces))
	}
}

// creditUnits returns floor(remaining / unitPrice), capped to a sane int.
func creditUnits(remaining, unitPrice decimal.Decimal) int {
	units := remaining.Div(unitPrice).Floor()
	if !units.IsPositive() {
		return 0
	}
	return int(units.IntPart())
}

func logEntry(id SubOrderID, severity LogSeverity, format string, args ...any) LogEntry {
	return LogEntry{
		ID:         uuid.NewString(),
		SubOrderID: id,
		Message:    fmt.Sprintf(format, args...),
		Severity:   severity,
	}
}
