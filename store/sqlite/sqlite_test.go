package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/allocation"
	"github.com/warp/allocation-engine/seed"
	"github.com/warp/allocation-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSnapshotRoundTrip(t *testing.T) {
	// GIVEN a state with pools, prices, and a backlog carrying both
	// concrete and wildcard references
	store := newTestStore(t)
	ctx := context.Background()

	prices := allocation.NewPriceBook()
	prices.Put(allocation.PriceEntry{
		ItemID:     "Item-1",
		SupplierID: "SP-001",
		BasePrice:  dec("123.49"),
		Tiers: map[allocation.PriceTier]decimal.Decimal{
			allocation.PriceTierUrgent:  dec("120"),
			allocation.PriceTierOverdue: dec("100"),
			allocation.PriceTierDaily:   dec("90"),
		},
	})

	state := allocation.State{
		Warehouses: []allocation.Warehouse{{ID: "WH-001", Stock: 500}},
		Suppliers:  []allocation.Supplier{{ID: "SP-001", Stock: 400}},
		Customers: []allocation.Customer{
			{ID: "CT-0001", CreditLimit: dec("50000"), UsedCredit: dec("338.88")},
		},
		Prices: prices,
		Orders: []allocation.Order{
			{
				ID: "ORDER-0001",
				SubOrders: []allocation.SubOrder{
					{
						ID:         "SUB-0001",
						OrderID:    "ORDER-0001",
						ItemID:     "Item-1",
						Warehouse:  allocation.ConcreteWarehouse("WH-001"),
						Supplier:   allocation.AnySupplier(),
						RequestQty: 40,
						Tier:       allocation.TierEmergency,
						CreatedOn:  "2025-03-01",
						CustomerID: "CT-0001",
						Allocated:  40,
						Status:     allocation.StatusAllocated,
						UnitPrice:  dec("148.19"),
						TotalValue: dec("5927.60"),
					},
				},
			},
		},
	}

	// WHEN saved and loaded back
	if err := store.SaveSnapshot(ctx, state); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}
	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	// THEN pools survive exactly
	if len(loaded.Warehouses) != 1 || loaded.Warehouses[0].Stock != 500 {
		t.Errorf("warehouses did not round trip: %+v", loaded.Warehouses)
	}
	if len(loaded.Suppliers) != 1 || loaded.Suppliers[0].Stock != 400 {
		t.Errorf("suppliers did not round trip: %+v", loaded.Suppliers)
	}

	// AND decimals come back exact, not floating-point approximate
	cust := loaded.Customers[0]
	if !cust.UsedCredit.Equal(dec("338.88")) {
		t.Errorf("expected used credit 338.88, got %s", cust.UsedCredit)
	}
	if !cust.CreditLimit.Equal(dec("50000")) {
		t.Errorf("expected credit limit 50000, got %s", cust.CreditLimit)
	}

	// AND price tiers survive the JSON round trip
	price := loaded.Prices.UnitPrice("Item-1", "SP-001", allocation.TierEmergency)
	if !price.Equal(dec("148.19")) {
		t.Errorf("expected URGENT price 148.19, got %s", price)
	}

	// AND sub-order references keep their wildcard-ness
	sub := loaded.FindSubOrder("SUB-0001")
	if sub == nil {
		t.Fatal("sub-order SUB-0001 missing after load")
	}
	if sub.Warehouse.Any || sub.Warehouse.ID != "WH-001" {
		t.Errorf("warehouse ref did not round trip: %+v", sub.Warehouse)
	}
	if !sub.Supplier.Any {
		t.Errorf("supplier wildcard was lost: %+v", sub.Supplier)
	}
	if sub.Allocated != 40 || sub.Status != allocation.StatusAllocated {
		t.Errorf("allocation result did not round trip: allocated=%d status=%s",
			sub.Allocated, sub.Status)
	}
	if !sub.TotalValue.Equal(dec("5927.60")) {
		t.Errorf("expected total value 5927.60, got %s", sub.TotalValue)
	}
}

func TestHasSnapshot(t *testing.T) {
	// GIVEN a fresh store
	store := newTestStore(t)
	ctx := context.Background()

	// THEN it starts empty
	has, err := store.HasSnapshot(ctx)
	if err != nil {
		t.Fatalf("failed to check snapshot: %v", err)
	}
	if has {
		t.Error("expected no snapshot in a fresh store")
	}

	// WHEN a seeded state is saved
	if err := store.SaveSnapshot(ctx, seed.NewWithCount(seed.DefaultSeed, 10)); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}

	// THEN the snapshot is detected
	has, err = store.HasSnapshot(ctx)
	if err != nil {
		t.Fatalf("failed to check snapshot: %v", err)
	}
	if !has {
		t.Error("expected snapshot after save")
	}
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	// GIVEN a store holding a 10-order snapshot
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSnapshot(ctx, seed.NewWithCount(1, 10)); err != nil {
		t.Fatalf("failed to save first snapshot: %v", err)
	}

	// WHEN a smaller snapshot is saved over it
	if err := store.SaveSnapshot(ctx, seed.NewWithCount(2, 3)); err != nil {
		t.Fatalf("failed to save second snapshot: %v", err)
	}

	// THEN only the new snapshot remains
	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	if loaded.SubOrderCount() != 3 {
		t.Errorf("expected 3 sub-orders after replace, got %d", loaded.SubOrderCount())
	}
}

func TestSeededSnapshotRoundTrip(t *testing.T) {
	// GIVEN a full seeded state
	store := newTestStore(t)
	ctx := context.Background()
	state := seed.NewWithCount(seed.DefaultSeed, 50)

	// WHEN saved and loaded
	if err := store.SaveSnapshot(ctx, state); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}
	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	// THEN every sub-order survives with its fields intact
	if loaded.SubOrderCount() != state.SubOrderCount() {
		t.Fatalf("expected %d sub-orders, got %d", state.SubOrderCount(), loaded.SubOrderCount())
	}
	for _, o := range state.Orders {
		for _, want := range o.SubOrders {
			got := loaded.FindSubOrder(want.ID)
			if got == nil {
				t.Fatalf("sub-order %s missing after load", want.ID)
			}
			if got.RequestQty != want.RequestQty || got.Tier != want.Tier ||
				got.CreatedOn != want.CreatedOn || got.CustomerID != want.CustomerID {
				t.Errorf("sub-order %s changed across round trip", want.ID)
			}
			if got.Warehouse != want.Warehouse || got.Supplier != want.Supplier {
				t.Errorf("sub-order %s refs changed: %+v/%+v", want.ID, got.Warehouse, got.Supplier)
			}
		}
	}
}

func TestRunLogReplaceSemantics(t *testing.T) {
	// GIVEN a stored run log
	store := newTestStore(t)
	ctx := context.Background()

	first := []allocation.LogEntry{
		{ID: "log-1", SubOrderID: "SUB-0001", Message: "fully allocated 40 units", Severity: allocation.LogSuccess},
		{ID: "log-2", SubOrderID: "SUB-0002", Message: "no stock available", Severity: allocation.LogError},
	}
	if err := store.SaveRunLog(ctx, "run-1", first); err != nil {
		t.Fatalf("failed to save run log: %v", err)
	}

	// WHEN a new run's log is saved
	second := []allocation.LogEntry{
		{ID: "log-3", SubOrderID: "SUB-0001", Message: "partially allocated 10 of 40", Severity: allocation.LogWarning},
	}
	if err := store.SaveRunLog(ctx, "run-2", second); err != nil {
		t.Fatalf("failed to save run log: %v", err)
	}

	// THEN only the last run is kept, in insertion order
	runID, entries, err := store.LoadRunLog(ctx)
	if err != nil {
		t.Fatalf("failed to load run log: %v", err)
	}
	if runID != "run-2" {
		t.Errorf("expected run ID run-2, got %s", runID)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "log-3" || entries[0].Severity != allocation.LogWarning {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestLoadRunLogEmpty(t *testing.T) {
	// GIVEN a fresh store
	store := newTestStore(t)

	// WHEN the log is loaded before any run
	runID, entries, err := store.LoadRunLog(context.Background())

	// THEN it is simply empty, not an error
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runID != "" || len(entries) != 0 {
		t.Errorf("expected empty log, got runID=%q entries=%d", runID, len(entries))
	}
}
