// Package economy holds the mutable progression state and the validated,
// all-or-nothing actions that change it.
package economy

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/probably-a-wizard/internal/catalog"
)

// Precision is the number of decimal places inventory quantities keep.
const Precision = 3

// Inventory holds a non-negative quantity of every resource. It is a value
// type: copying it copies every quantity.
type Inventory [catalog.NumResources]float64

// round fixes q to Precision decimal places.
func round(q float64) float64 {
	return decimal.NewFromFloat(q).Round(Precision).InexactFloat64()
}

// add returns q + amount, clamped at zero and rounded.
func add(q, amount float64) float64 {
	sum := decimal.NewFromFloat(q).Add(decimal.NewFromFloat(amount)).Round(Precision)
	if sum.IsNegative() {
		return 0
	}
	return sum.InexactFloat64()
}

// Get returns the quantity held of r.
func (inv *Inventory) Get(r catalog.Resource) float64 {
	return inv[r]
}

// Add adds amount (which may be negative) to r, clamping at zero.
func (inv *Inventory) Add(r catalog.Resource, amount float64) {
	inv[r] = add(inv[r], amount)
}

// CanAfford reports whether every cost entry is covered.
func (inv *Inventory) CanAfford(cost catalog.Cost) bool {
	for r, amount := range cost {
		if inv[r] < amount {
			return false
		}
	}
	return true
}

// Spend subtracts cost, clamping each entry at zero.
func (inv *Inventory) Spend(cost catalog.Cost) {
	for r, amount := range cost {
		inv[r] = add(inv[r], -amount)
	}
}

// Map returns the inventory keyed by resource.
func (inv *Inventory) Map() map[catalog.Resource]float64 {
	out := make(map[catalog.Resource]float64, catalog.NumResources)
	for i, q := range inv {
		out[catalog.Resource(i)] = q
	}
	return out
}
