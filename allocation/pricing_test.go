package allocation_test

import (
	"testing"

	"github.com/warp/allocation-engine/allocation"
)

func TestUnitPrice_TierMultipliers(t *testing.T) {
	// GIVEN: Item-1/SP-001 base 123.49 with URGENT 120%, OVERDUE 100%, DAILY 90%
	// THEN: Each urgency tier prices through its mapped tier name, rounded half-to-even

	prices := referencePrices()

	cases := []struct {
		tier allocation.UrgencyTier
		want string
	}{
		{allocation.TierEmergency, "148.19"}, // 148.188 rounded
		{allocation.TierOverdue, "123.49"},
		{allocation.TierDaily, "111.14"}, // 111.141 rounded
	}

	for _, c := range cases {
		got := prices.UnitPrice("Item-1", "SP-001", c.tier)
		if got.StringFixed(2) != c.want {
			t.Errorf("UnitPrice(Item-1, SP-001, %s) = %s, want %s", c.tier, got, c.want)
		}
	}
}

func TestUnitPrice_MissingTierDefaultsTo100Percent(t *testing.T) {
	// GIVEN: Item-2/SP-001 base 88.885 with no tiers defined
	// THEN: All tiers price at 100%, and 88.885 rounds half-to-even to 88.88

	prices := referencePrices()

	for _, tier := range []allocation.UrgencyTier{
		allocation.TierEmergency, allocation.TierOverdue, allocation.TierDaily,
	} {
		got := prices.UnitPrice("Item-2", "SP-001", tier)
		if got.StringFixed(2) != "88.88" {
			t.Errorf("UnitPrice(Item-2, SP-001, %s) = %s, want 88.88", tier, got)
		}
	}
}

func TestUnitPrice_MissingEntryIsZero(t *testing.T) {
	// Unpriced items are allowed: zero price, not an error.
	prices := referencePrices()

	if got := prices.UnitPrice("UNKNOWN-ITEM", "SP-001", allocation.TierDaily); !got.IsZero() {
		t.Errorf("UnitPrice for unknown item = %s, want 0", got)
	}
	if got := prices.UnitPrice("Item-1", "SP-999", allocation.TierDaily); !got.IsZero() {
		t.Errorf("UnitPrice for unknown supplier = %s, want 0", got)
	}
}

func TestPriceTierFor_ExplicitMapping(t *testing.T) {
	// EMERGENCY prices under the textually different "URGENT" tier name.
	if got := allocation.PriceTierFor(allocation.TierEmergency); got != allocation.PriceTierUrgent {
		t.Errorf("PriceTierFor(EMERGENCY) = %s, want URGENT", got)
	}
	if got := allocation.PriceTierFor(allocation.TierOverdue); got != allocation.PriceTierOverdue {
		t.Errorf("PriceTierFor(OVERDUE) = %s, want OVERDUE", got)
	}
	if got := allocation.PriceTierFor(allocation.TierDaily); got != allocation.PriceTierDaily {
		t.Errorf("PriceTierFor(DAILY) = %s, want DAILY", got)
	}
}

func TestUnitPrice_Deterministic(t *testing.T) {
	prices := referencePrices()
	first := prices.UnitPrice("Item-1", "SP-001", allocation.TierDaily)
	for i := 0; i < 5; i++ {
		if got := prices.UnitPrice("Item-1", "SP-001", allocation.TierDaily); !got.Equal(first) {
			t.Fatalf("UnitPrice not deterministic: %s then %s", first, got)
		}
	}
}
