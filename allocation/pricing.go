/*
pricing.go - Tiered price resolution

PURPOSE:
  Resolves a per-unit price for an (item, supplier, urgency tier) triple.
  Each price entry holds a base price plus named tier percentages; the
  resolved price is basePrice * percentage / 100, banker's-rounded to
  monetary precision.

TIER VOCABULARY:
  Price tiers are keyed by name and map onto the urgency vocabulary
  explicitly. One name differs between the two vocabularies: the EMERGENCY
  urgency tier prices under the "URGENT" tier name. Never assume the
  strings are identical.

UNPRICED ITEMS:
  A missing (item, supplier) entry is not an error: the unit price is zero
  and allocation proceeds unconstrained by credit. A missing tier on an
  existing entry defaults to 100%.

DETERMINISM:
  Same inputs always produce the same price. No dependence on allocation
  order, no randomness.
*/
package allocation

import "github.com/shopspring/decimal"

// =============================================================================
// PRICE TIERS - Named multipliers, mapped from urgency tiers
// =============================================================================

// PriceTier names a percentage multiplier inside a price entry.
type PriceTier string

const (
	PriceTierUrgent  PriceTier = "URGENT"
	PriceTierOverdue PriceTier = "OVERDUE"
	PriceTierDaily   PriceTier = "DAILY"
)

// priceTierFor is the explicit urgency-to-price-tier mapping.
// EMERGENCY intentionally maps to the textually different "URGENT".
var priceTierFor = map[UrgencyTier]PriceTier{
	TierEmergency: PriceTierUrgent,
	TierOverdue:   PriceTierOverdue,
	TierDaily:     PriceTierDaily,
}

// PriceTierFor returns the price-tier name for an urgency tier.
// Unknown urgency tiers fall through to an empty name, which misses every
// entry tier and therefore prices at the 100% default.
func PriceTierFor(tier UrgencyTier) PriceTier {
	return priceTierFor[tier]
}

// =============================================================================
// PRICE BOOK
// =============================================================================

// PriceEntry holds the base price and tier percentages for one
// (item, supplier) pair. Percentages are whole-number percents (120 = 120%).
type PriceEntry struct {
	ItemID     ItemID
	SupplierID SupplierID
	BasePrice  decimal.Decimal
	Tiers      map[PriceTier]decimal.Decimal
}

type priceKey struct {
	Item     ItemID
	Supplier SupplierID
}

// PriceBook indexes price entries by (item, supplier).
type PriceBook map[priceKey]PriceEntry

func NewPriceBook(entries ...PriceEntry) PriceBook {
	pb := make(PriceBook, len(entries))
	for _, e := range entries {
		pb.Put(e)
	}
	return pb
}

func (pb PriceBook) Put(e PriceEntry) {
	pb[priceKey{Item: e.ItemID, Supplier: e.SupplierID}] = e
}

func (pb PriceBook) Get(item ItemID, supplier SupplierID) (PriceEntry, bool) {
	e, ok := pb[priceKey{Item: item, Supplier: supplier}]
	return e, ok
}

// Entries returns all price entries, in unspecified order.
func (pb PriceBook) Entries() []PriceEntry {
	out := make([]PriceEntry, 0, len(pb))
	for _, e := range pb {
		out = append(out, e)
	}
	return out
}

// Clone deep-copies the book, including each entry's tier map.
func (pb PriceBook) Clone() PriceBook {
	out := make(PriceBook, len(pb))
	for k, e := range pb {
		tiers := make(map[PriceTier]decimal.Decimal, len(e.Tiers))
		for t, p := range e.Tiers {
			tiers[t] = p
		}
		e.Tiers = tiers
		out[k] = e
	}
	return out
}

// UnitPrice resolves the per-unit price for an item from a supplier at an
// urgency tier. Missing entry: zero. Missing tier: 100% of base. The result
// is banker's-rounded to monetary precision.
func (pb PriceBook) UnitPrice(item ItemID, supplier SupplierID, tier UrgencyTier) decimal.Decimal {
	entry, ok := pb.Get(item, supplier)
	if !ok {
		return decimal.Zero
	}

	percent, ok := entry.Tiers[PriceTierFor(tier)]
	if !ok {
		percent = decimal.NewFromInt(100)
	}

	return roundMoney(entry.BasePrice.Mul(percent).Div(decimal.NewFromInt(100)))
}
