package allocation_test

import (
	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/allocation"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared by the engine, manual, pricing and resolver tests in this package.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pct(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// referencePrices builds the reference price book:
//   Item-1/SP-001 base 123.49 -> URGENT 148.19, OVERDUE 123.49, DAILY 111.14
//   Item-2/SP-001 base 88.885 -> 88.88 at the default 100% (the tie case)
func referencePrices() allocation.PriceBook {
	return allocation.NewPriceBook(
		allocation.PriceEntry{
			ItemID:     "Item-1",
			SupplierID: "SP-001",
			BasePrice:  dec("123.49"),
			Tiers: map[allocation.PriceTier]decimal.Decimal{
				allocation.PriceTierUrgent:  pct(120),
				allocation.PriceTierOverdue: pct(100),
				allocation.PriceTierDaily:   pct(90),
			},
		},
		allocation.PriceEntry{
			ItemID:     "Item-2",
			SupplierID: "SP-001",
			BasePrice:  dec("88.885"),
			Tiers:      map[allocation.PriceTier]decimal.Decimal{},
		},
	)
}

// sub builds a minimal unallocated sub-order.
func sub(id string, item allocation.ItemID, wh allocation.WarehouseID, qty int,
	tier allocation.UrgencyTier, created string, customer allocation.CustomerID) allocation.SubOrder {
	return allocation.SubOrder{
		ID:         allocation.SubOrderID(id),
		ItemID:     item,
		Warehouse:  allocation.ParseWarehouseRef(wh),
		Supplier:   allocation.ConcreteSupplier("SP-001"),
		RequestQty: qty,
		Tier:       tier,
		CreatedOn:  created,
		CustomerID: customer,
		Status:     allocation.StatusUnallocated,
	}
}

// stateWith wraps sub-orders into single-sub-order parent orders with the
// given pools and the reference price book.
func stateWith(warehouses []allocation.Warehouse, customers []allocation.Customer,
	subs ...allocation.SubOrder) allocation.State {
	orders := make([]allocation.Order, len(subs))
	for i, s := range subs {
		s.OrderID = allocation.OrderID("O-" + string(s.ID))
		orders[i] = allocation.Order{ID: s.OrderID, SubOrders: []allocation.SubOrder{s}}
	}
	return allocation.State{
		Orders:     orders,
		Warehouses: warehouses,
		Suppliers:  []allocation.Supplier{{ID: "SP-001", Stock: 400}},
		Customers:  customers,
		Prices:     referencePrices(),
	}
}

func richCustomer(id allocation.CustomerID) allocation.Customer {
	return allocation.Customer{ID: id, CreditLimit: dec("999999"), UsedCredit: decimal.Zero}
}

// findSub locates a sub-order in a state by ID; fails the lookup as nil.
func findSub(st *allocation.State, id allocation.SubOrderID) *allocation.SubOrder {
	return st.FindSubOrder(id)
}
