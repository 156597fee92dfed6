package allocation_test

import (
	"testing"

	"github.com/warp/allocation-engine/allocation"
)

func backlogIDs(backlog []*allocation.SubOrder) []allocation.SubOrderID {
	ids := make([]allocation.SubOrderID, len(backlog))
	for i, s := range backlog {
		ids[i] = s.ID
	}
	return ids
}

func TestOrderBacklog_TierSeverityFirst(t *testing.T) {
	// GIVEN: One sub-order per tier, listed least-urgent first
	// THEN: EMERGENCY > OVERDUE > DAILY regardless of input order

	backlog := []*allocation.SubOrder{
		{ID: "daily", Tier: allocation.TierDaily, CreatedOn: "2025-01-01"},
		{ID: "overdue", Tier: allocation.TierOverdue, CreatedOn: "2025-01-01"},
		{ID: "emergency", Tier: allocation.TierEmergency, CreatedOn: "2025-01-01"},
	}

	allocation.OrderBacklog(backlog)

	got := backlogIDs(backlog)
	want := []allocation.SubOrderID{"emergency", "overdue", "daily"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrderBacklog_FIFOWithinTier(t *testing.T) {
	// Equal tier: earlier creation date is processed first.
	backlog := []*allocation.SubOrder{
		{ID: "late", Tier: allocation.TierDaily, CreatedOn: "2025-06-15"},
		{ID: "early", Tier: allocation.TierDaily, CreatedOn: "2025-02-01"},
		{ID: "mid", Tier: allocation.TierDaily, CreatedOn: "2025-03-10"},
	}

	allocation.OrderBacklog(backlog)

	got := backlogIDs(backlog)
	want := []allocation.SubOrderID{"early", "mid", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestOrderBacklog_StableOnFullTies(t *testing.T) {
	// Same tier and date: input order is preserved.
	backlog := []*allocation.SubOrder{
		{ID: "first", Tier: allocation.TierOverdue, CreatedOn: "2025-01-01"},
		{ID: "second", Tier: allocation.TierOverdue, CreatedOn: "2025-01-01"},
		{ID: "third", Tier: allocation.TierOverdue, CreatedOn: "2025-01-01"},
	}

	allocation.OrderBacklog(backlog)

	got := backlogIDs(backlog)
	want := []allocation.SubOrderID{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBacklog_FlattensAllOrders(t *testing.T) {
	st := stateWith(
		[]allocation.Warehouse{{ID: "WH-001", Stock: 100}},
		[]allocation.Customer{richCustomer("CT-0001")},
		sub("S-1", "Item-1", "WH-001", 10, allocation.TierDaily, "2025-01-01", "CT-0001"),
		sub("S-2", "Item-1", "WH-001", 10, allocation.TierDaily, "2025-01-02", "CT-0001"),
		sub("S-3", "Item-1", "WH-001", 10, allocation.TierDaily, "2025-01-03", "CT-0001"),
	)

	backlog := allocation.Backlog(&st)
	if len(backlog) != 3 {
		t.Fatalf("backlog length = %d, want 3", len(backlog))
	}

	// Pointers must index the state's backing arrays.
	backlog[0].Allocated = 7
	if got := st.Orders[0].SubOrders[0].Allocated; got != 7 {
		t.Errorf("backlog write not visible in state, got %d", got)
	}
}
