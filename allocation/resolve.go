/*
resolve.go - Wildcard resource resolution

PURPOSE:
  Maps an "any warehouse" / "any supplier" request to the concrete resource
  currently holding the most stock, as observed at the moment of
  resolution. Because earlier sub-orders in a run debit stock before later
  ones resolve, resolution is order-sensitive - which is exactly why the
  priority orderer must run before the orchestrator loop.

TIE-BREAKING:
  Among equal-stock candidates the first in snapshot order wins. The winner
  is unspecified by contract but deterministic for a fixed input order.

NO CANDIDATES:
  With no concrete candidate at all, resolution yields the wildcard
  identifier unchanged; the caller then observes zero stock there and
  fails closed.
*/
package allocation

// ResolveWarehouse resolves a warehouse request against current stock.
// Concrete requests pass through untouched.
func ResolveWarehouse(ref WarehouseRef, state *State) WarehouseID {
	if !ref.Any {
		return ref.ID
	}

	best := WildcardWarehouseID
	bestStock := -1
	for i := range state.Warehouses {
		if state.Warehouses[i].Stock > bestStock {
			best = state.Warehouses[i].ID
			bestStock = state.Warehouses[i].Stock
		}
	}
	return best
}

// ResolveSupplier resolves a supplier request against current supplier
// stock. Same contract as ResolveWarehouse, independently applied.
func ResolveSupplier(ref SupplierRef, state *State) SupplierID {
	if !ref.Any {
		return ref.ID
	}

	best := WildcardSupplierID
	bestStock := -1
	for i := range state.Suppliers {
		if state.Suppliers[i].Stock > bestStock {
			best = state.Suppliers[i].ID
			bestStock = state.Suppliers[i].Stock
		}
	}
	return best
}
