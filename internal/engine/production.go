package engine

import (
	"github.com/shopspring/decimal"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
)

var one = decimal.NewFromInt(1)

// Production advances slotted managers tick by tick. Fractional output is
// carried between calls for the life of the session.
type Production struct {
	conversionSeconds decimal.Decimal

	carry    map[string]decimal.Decimal             // production slot id → fractional units
	progress map[catalog.BuildingID]decimal.Decimal // fractional conversions
}

// Report summarises one Advance.
type Report struct {
	Gains       map[catalog.Resource]float64
	Conversions map[catalog.BuildingID]int
}

// Empty reports whether nothing changed.
func (r Report) Empty() bool { return len(r.Gains) == 0 && len(r.Conversions) == 0 }

// NewProduction creates accumulators for a session. conversionSeconds is the
// time one level-0 manager takes to complete a conversion.
func NewProduction(conversionSeconds float64) *Production {
	return &Production{
		conversionSeconds: decimal.NewFromFloat(conversionSeconds),
		carry:             make(map[string]decimal.Decimal),
		progress:          make(map[catalog.BuildingID]decimal.Decimal),
	}
}

// Reset drops every accumulator.
func (p *Production) Reset() {
	clear(p.carry)
	clear(p.progress)
}

// Advance runs Gather then Convert.
func (p *Production) Advance(st *economy.State, dt float64) Report {
	return Report{
		Gains:       p.Gather(st, dt),
		Conversions: p.Convert(st, dt),
	}
}

// slotYield is the raw output of one production slot over a span of time.
type slotYield struct {
	slot     string
	resource catalog.Resource
	amount   decimal.Decimal
}

// yields computes pps·dt for every occupied production slot with pps > 0.
// Ticks and offline catch-up both start from it.
func yields(st *economy.State, dt decimal.Decimal) []slotYield {
	var out []slotYield
	for _, slot := range st.ProductionSlots() {
		if !slot.Occupied() {
			continue
		}
		pps := st.EffectivePps(slot.Manager)
		if pps <= 0 {
			continue
		}
		out = append(out, slotYield{
			slot:     slot.ID,
			resource: catalog.BaseResource(slot.Chain),
			amount:   decimal.NewFromFloat(pps).Mul(dt),
		})
	}
	return out
}

// Gather credits every occupied production slot with pps·dt, emitting whole
// units to the chain's tier-0 resource and keeping the remainder for the
// next call.
func (p *Production) Gather(st *economy.State, dt float64) map[catalog.Resource]float64 {
	gains := make(map[catalog.Resource]float64)
	if dt <= 0 {
		return gains
	}

	live := make(map[string]bool)
	for _, y := range yields(st, decimal.NewFromFloat(dt)) {
		live[y.slot] = true
		acc := p.carry[y.slot].Add(y.amount)
		whole := acc.Floor()
		p.carry[y.slot] = acc.Sub(whole)
		if whole.IsZero() {
			continue
		}
		units := whole.InexactFloat64()
		if st.AddResource(y.resource, units).OK {
			gains[y.resource] += units
		}
	}
	for id := range p.carry {
		if !live[id] {
			delete(p.carry, id)
		}
	}
	return gains
}

// Convert runs automatic conversions. Each built converter advances its
// progress by Σ (1/conversionSeconds)·multiplier(level) over the managers
// in its conversion slots, then converts once per whole unit of progress.
// A failed conversion (not enough input) resets progress and stops that
// building for this call.
func (p *Production) Convert(st *economy.State, dt float64) map[catalog.BuildingID]int {
	done := make(map[catalog.BuildingID]int)
	if dt <= 0 {
		return done
	}
	step := decimal.NewFromFloat(dt)

	rates := make(map[catalog.BuildingID]decimal.Decimal)
	for _, slot := range st.ConversionSlots() {
		if !slot.Occupied() || !st.IsBuilt(slot.Building) {
			continue
		}
		mult := decimal.NewFromFloat(catalog.EffectiveMultiplier(st.Level(slot.Manager)))
		rates[slot.Building] = rates[slot.Building].Add(mult.Div(p.conversionSeconds))
	}

	for _, b := range catalog.ConverterBuildings() {
		rate, staffed := rates[b.ID]
		if !staffed {
			delete(p.progress, b.ID)
			continue
		}
		prog := p.progress[b.ID].Add(rate.Mul(step))
		for prog.GreaterThanOrEqual(one) {
			if !st.ConvertResource(b.ID).OK {
				prog = decimal.Zero
				break
			}
			prog = prog.Sub(one)
			done[b.ID]++
		}
		p.progress[b.ID] = prog
	}
	return done
}
