/*
Package seed generates the reference demo dataset for the allocation engine.

PURPOSE:
  Produces the pristine snapshot an allocation run starts from: two
  concrete warehouses, one concrete supplier, two customers, the
  reference price book, and a generated order backlog spread across
  urgency tiers and creation dates.

DETERMINISM:
  Generation is driven entirely by the caller's seed value. The same seed
  always yields a bit-identical State, which is what makes reset()
  idempotent: restoring the snapshot twice gives the same bytes twice.

PRICE BOOK NOTE:
  The Item-2 base price of 88.885 is deliberate: at two decimals it lands
  exactly on the .5 rounding boundary and exercises the half-to-even rule.

SEE ALSO:
  - allocation/types.go: The State being generated
  - api/handlers.go:     Reset endpoint restoring this snapshot
*/
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/allocation"
)

// DefaultSeed is the seed used by the server when none is given.
const DefaultSeed int64 = 20250101

// DefaultOrderCount matches the reference dataset size.
const DefaultOrderCount = 2000

// New builds the full demo snapshot for a seed value.
func New(seedValue int64) allocation.State {
	return NewWithCount(seedValue, DefaultOrderCount)
}

// NewWithCount builds a snapshot with a custom backlog size.
func NewWithCount(seedValue int64, orderCount int) allocation.State {
	rng := rand.New(rand.NewSource(seedValue))

	return allocation.State{
		Orders: generateOrders(rng, orderCount),
		Warehouses: []allocation.Warehouse{
			{ID: "WH-001", Stock: 500},
			{ID: "WH-002", Stock: 300},
		},
		Suppliers: []allocation.Supplier{
			{ID: "SP-001", Stock: 400},
		},
		Customers: []allocation.Customer{
			{ID: "CT-0001", CreditLimit: decimal.NewFromInt(50000)},
			{ID: "CT-0002", CreditLimit: decimal.NewFromInt(80000)},
		},
		Prices: Prices(),
	}
}

// Prices returns the reference price book.
func Prices() allocation.PriceBook {
	return allocation.NewPriceBook(
		allocation.PriceEntry{
			ItemID:     "Item-1",
			SupplierID: "SP-001",
			BasePrice:  mustDecimal("123.49"),
			Tiers: map[allocation.PriceTier]decimal.Decimal{
				allocation.PriceTierUrgent:  decimal.NewFromInt(120),
				allocation.PriceTierOverdue: decimal.NewFromInt(100),
				allocation.PriceTierDaily:   decimal.NewFromInt(90),
			},
		},
		allocation.PriceEntry{
			ItemID:     "Item-2",
			SupplierID: "SP-001",
			BasePrice:  mustDecimal("88.885"),
			Tiers: map[allocation.PriceTier]decimal.Decimal{
				allocation.PriceTierOverdue: decimal.NewFromInt(100),
			},
		},
	)
}

var tiers = []allocation.UrgencyTier{
	allocation.TierEmergency,
	allocation.TierOverdue,
	allocation.TierDaily,
}

func generateOrders(rng *rand.Rand, count int) []allocation.Order {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	spanDays := 365

	orders := make([]allocation.Order, count)
	for i := 0; i < count; i++ {
		index := i + 1
		orderID := allocation.OrderID(fmt.Sprintf("ORDER-%04d", index))

		warehouse := allocation.WarehouseID("WH-002")
		if index%2 == 0 {
			warehouse = "WH-001"
		}
		customer := allocation.CustomerID("CT-0002")
		if index%2 == 0 {
			customer = "CT-0001"
		}
		item := allocation.ItemID("Item-1")
		if index%5 == 0 {
			item = "Item-2"
		}

		// A small slice of the backlog requests "any" resources so demo
		// runs exercise wildcard resolution.
		warehouseRef := allocation.ConcreteWarehouse(warehouse)
		if index%17 == 0 {
			warehouseRef = allocation.AnyWarehouse()
		}
		supplierRef := allocation.ConcreteSupplier("SP-001")
		if index%23 == 0 {
			supplierRef = allocation.AnySupplier()
		}

		created := start.AddDate(0, 0, rng.Intn(spanDays)).Format("2006-01-02")

		orders[i] = allocation.Order{
			ID: orderID,
			SubOrders: []allocation.SubOrder{
				{
					ID:         allocation.SubOrderID(fmt.Sprintf("%s-001", orderID)),
					OrderID:    orderID,
					ItemID:     item,
					Warehouse:  warehouseRef,
					Supplier:   supplierRef,
					RequestQty: rng.Intn(500),
					Tier:       tiers[rng.Intn(len(tiers))],
					CreatedOn:  created,
					CustomerID: customer,
					Status:     allocation.StatusUnallocated,
				},
			},
		}
	}
	return orders
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
