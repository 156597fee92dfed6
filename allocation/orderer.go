/*
orderer.go - Priority ordering of the sub-order backlog

PURPOSE:
  Total-orders the backlog before the orchestrator touches any pool:
  most severe urgency tier first, then creation date ascending (FIFO
  within a tier). This ordering is load-bearing - the orchestrator is a
  single-pass greedy allocator over shared pools, so a different order
  changes WHICH sub-orders succeed, not just how they are listed.

STABILITY:
  Sub-orders equal on both keys keep their input order, which keeps the
  whole run deterministic for a fixed snapshot.
*/
package allocation

import "sort"

// OrderBacklog sorts sub-order pointers in allocation priority order:
// urgency severity ascending (EMERGENCY first), then creation date
// ascending, stable for full ties.
func OrderBacklog(backlog []*SubOrder) {
	sort.SliceStable(backlog, func(i, j int) bool {
		a, b := backlog[i], backlog[j]
		if a.Tier.Severity() != b.Tier.Severity() {
			return a.Tier.Severity() < b.Tier.Severity()
		}
		return a.CreatedOn < b.CreatedOn
	})
}

// Backlog flattens a state's orders into one slice of sub-order pointers.
// The pointers index into the state's backing arrays, so orchestrator
// writes land directly in the state.
func Backlog(state *State) []*SubOrder {
	backlog := make([]*SubOrder, 0, state.SubOrderCount())
	for i := range state.Orders {
		for j := range state.Orders[i].SubOrders {
			backlog = append(backlog, &state.Orders[i].SubOrders[j])
		}
	}
	return backlog
}
