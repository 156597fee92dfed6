/*
Package allocation provides the core stock and credit allocation engine.

PURPOSE:
  This package contains the domain model and algorithms for distributing a
  finite pool of warehouse stock and per-customer credit across a backlog of
  purchase sub-orders. Sub-orders carry an urgency tier and a request quantity;
  the engine decides, in strict priority order, how many units each one gets.

KEY CONCEPTS IN THIS FILE (types.go):
  - State: The full allocation snapshot (orders, pools, price book)
  - SubOrder: The atomic unit of allocation
  - WarehouseRef/SupplierRef: Tagged resource references (concrete vs "any")
  - UrgencyTier: Three fixed severity classes driving ordering and pricing
  - Status: Terminal allocation outcome per sub-order
  - LogEntry: Structured per-sub-order run log

DESIGN PRINCIPLES:
  1. Value semantics: Run operates on a structural copy; callers' data is
     never aliased or mutated.
  2. Precision: Uses decimal.Decimal for all money values to avoid
     floating-point errors; every derived value is banker's-rounded.
  3. Type Safety: Strong typing for IDs prevents mixing warehouse/supplier/
     customer identifiers.
  4. No sentinel strings inside the algorithm: wildcard requests are tagged
     references, resolved once per sub-order before any arithmetic.

USAGE:
  st := seed.New(42)
  updated, logs := allocation.Run(st)
  err := allocation.ManualAllocate(&updated, "ORDER-0001-001", 25)

SEE ALSO:
  - ledger.go:   Shared stock/credit pools and their mutation contract
  - engine.go:   Auto-allocation orchestrator
  - manual.go:   Manual override validator
  - pricing.go:  Tiered price resolution
  - rounding.go: Half-to-even rounding primitive
*/
package allocation

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	OrderID     string
	SubOrderID  string
	ItemID      string
	WarehouseID string
	SupplierID  string
	CustomerID  string
)

// Reserved identifiers used on the wire and in stored data to denote the
// "any warehouse" / "any supplier" wildcard. Inside the engine these are
// represented as tagged refs, never compared as strings.
const (
	WildcardWarehouseID WarehouseID = "WH-000"
	WildcardSupplierID  SupplierID  = "SP-000"
)

// =============================================================================
// RESOURCE REFERENCES - Concrete vs "any" wildcard
// =============================================================================

// WarehouseRef is a sub-order's warehouse request: either a concrete
// warehouse or the "any warehouse" wildcard.
type WarehouseRef struct {
	ID  WarehouseID
	Any bool
}

func ConcreteWarehouse(id WarehouseID) WarehouseRef { return WarehouseRef{ID: id} }
func AnyWarehouse() WarehouseRef                    { return WarehouseRef{Any: true} }

// ParseWarehouseRef maps the reserved wildcard identifier to an Any ref.
func ParseWarehouseRef(id WarehouseID) WarehouseRef {
	if id == WildcardWarehouseID {
		return AnyWarehouse()
	}
	return ConcreteWarehouse(id)
}

// String renders the ref back to its wire form.
func (r WarehouseRef) String() string {
	if r.Any {
		return string(WildcardWarehouseID)
	}
	return string(r.ID)
}

// SupplierRef is a sub-order's supplier request: either a concrete supplier
// or the "any supplier" wildcard.
type SupplierRef struct {
	ID  SupplierID
	Any bool
}

func ConcreteSupplier(id SupplierID) SupplierRef { return SupplierRef{ID: id} }
func AnySupplier() SupplierRef                   { return SupplierRef{Any: true} }

func ParseSupplierRef(id SupplierID) SupplierRef {
	if id == WildcardSupplierID {
		return AnySupplier()
	}
	return ConcreteSupplier(id)
}

func (r SupplierRef) String() string {
	if r.Any {
		return string(WildcardSupplierID)
	}
	return string(r.ID)
}

// =============================================================================
// URGENCY TIERS
// =============================================================================

// UrgencyTier classifies how urgent a sub-order is. Tiers are totally
// ordered by severity; more severe tiers claim shared stock first and pay a
// different price multiplier.
type UrgencyTier string

const (
	TierEmergency UrgencyTier = "EMERGENCY"
	TierOverdue   UrgencyTier = "OVERDUE"
	TierDaily     UrgencyTier = "DAILY"
)

// Severity returns the priority rank of the tier; lower is more urgent.
// Unknown tiers sort last.
func (t UrgencyTier) Severity() int {
	switch t {
	case TierEmergency:
		return 1
	case TierOverdue:
		return 2
	case TierDaily:
		return 3
	default:
		return 4
	}
}

func (t UrgencyTier) Valid() bool {
	return t == TierEmergency || t == TierOverdue || t == TierDaily
}

// =============================================================================
// STATUS - Terminal allocation outcome
// =============================================================================

// Status is a pure function of (allocated, requestQty) plus the terminal
// failure gates; it is never set independently of them.
type Status string

const (
	StatusUnallocated    Status = "UNALLOCATED"
	StatusPartial        Status = "PARTIAL"
	StatusAllocated      Status = "ALLOCATED"
	StatusCreditExceeded Status = "CREDIT_EXCEEDED"
)

// classify maps an (allocated, requested) pair to its three-way status.
// The auto path overrides the zero case to CREDIT_EXCEEDED; the manual path
// keeps UNALLOCATED because the operator explicitly chose zero.
func classify(allocated, requested int) Status {
	switch {
	case allocated == 0:
		return StatusUnallocated
	case allocated < requested:
		return StatusPartial
	default:
		return StatusAllocated
	}
}

// =============================================================================
// POOL ENTITIES
// =============================================================================

// Warehouse holds a non-negative stock quantity. The wildcard entry is never
// part of State.Warehouses; it exists only as a request ref.
type Warehouse struct {
	ID    WarehouseID
	Stock int
}

// Supplier stock is informational: it drives wildcard resolution and display
// but is never debited and never gates allocation quantity.
type Supplier struct {
	ID    SupplierID
	Stock int
}

// Customer tracks a credit pool. Invariant after every mutation:
// 0 <= UsedCredit <= CreditLimit.
type Customer struct {
	ID          CustomerID
	CreditLimit decimal.Decimal
	UsedCredit  decimal.Decimal
}

// RemainingCredit returns CreditLimit - UsedCredit.
func (c Customer) RemainingCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.UsedCredit)
}

// =============================================================================
// ORDERS
// =============================================================================

// SubOrder is the allocatable unit: one (item, warehouse, supplier, customer)
// request within a parent order.
type SubOrder struct {
	ID         SubOrderID
	OrderID    OrderID
	ItemID     ItemID
	Warehouse  WarehouseRef
	Supplier   SupplierRef
	RequestQty int
	Tier       UrgencyTier
	CreatedOn  string // ISO calendar date (YYYY-MM-DD); lexical order == chronological
	CustomerID CustomerID
	Remark     string

	// Mutable allocation results.
	Allocated         int
	Status            Status
	ResolvedWarehouse WarehouseID
	ResolvedSupplier  SupplierID
	UnitPrice         decimal.Decimal
	TotalValue        decimal.Decimal
}

// Order groups sub-orders. Collection order carries no meaning; only the
// cross-sub-order priority ordering matters.
type Order struct {
	ID        OrderID
	SubOrders []SubOrder
}

// =============================================================================
// LOG ENTRIES
// =============================================================================

type LogSeverity string

const (
	LogSuccess LogSeverity = "success"
	LogWarning LogSeverity = "warning"
	LogError   LogSeverity = "error"
)

// LogEntry records the outcome of one sub-order in an allocation run.
type LogEntry struct {
	ID         string
	SubOrderID SubOrderID
	Message    string
	Severity   LogSeverity
}

// =============================================================================
// STATE - Full allocation snapshot
// =============================================================================

// State is the complete input/output of an allocation run: the order backlog
// plus the resource pools and price book. The engine always operates on a
// copy; callers own their input.
type State struct {
	Orders     []Order
	Warehouses []Warehouse
	Suppliers  []Supplier
	Customers  []Customer
	Prices     PriceBook
}

// Clone returns a deep structural copy of the state.
func (s State) Clone() State {
	out := State{
		Orders:     make([]Order, len(s.Orders)),
		Warehouses: append([]Warehouse(nil), s.Warehouses...),
		Suppliers:  append([]Supplier(nil), s.Suppliers...),
		Customers:  append([]Customer(nil), s.Customers...),
		Prices:     s.Prices.Clone(),
	}
	for i, o := range s.Orders {
		out.Orders[i] = Order{
			ID:        o.ID,
			SubOrders: append([]SubOrder(nil), o.SubOrders...),
		}
	}
	return out
}

// FindSubOrder returns a pointer into the state's backing arrays, or nil.
func (s *State) FindSubOrder(id SubOrderID) *SubOrder {
	for i := range s.Orders {
		for j := range s.Orders[i].SubOrders {
			if s.Orders[i].SubOrders[j].ID == id {
				return &s.Orders[i].SubOrders[j]
			}
		}
	}
	return nil
}

// SubOrderCount returns the total sub-order count across all orders.
func (s *State) SubOrderCount() int {
	n := 0
	for i := range s.Orders {
		n += len(s.Orders[i].SubOrders)
	}
	return n
}
