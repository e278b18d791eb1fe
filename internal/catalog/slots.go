package catalog

import "fmt"

// SlotsPerOwner is the number of manager slots per chain and per converter.
const SlotsPerOwner = 4

// ProductionSlotID returns the id of the n-th production slot of chain.
func ProductionSlotID(chain Chain, n int) string {
	return fmt.Sprintf("%s-slot-%d", chain, n)
}

// ConversionSlotID returns the id of the n-th conversion slot of building.
func ConversionSlotID(b BuildingID, n int) string {
	return fmt.Sprintf("%s-bslot-%d", b, n)
}

// ProductionSlotDef is a production slot feeding tier 0 of Chain.
type ProductionSlotDef struct {
	ID    string
	Chain Chain
}

// ConversionSlotDef is a conversion slot attached to a converter building.
type ConversionSlotDef struct {
	ID       string
	Building BuildingID
}

// DefaultProductionSlots returns four slots per chain.
func DefaultProductionSlots() []ProductionSlotDef {
	out := make([]ProductionSlotDef, 0, NumChains*SlotsPerOwner)
	for _, c := range AllChains() {
		for i := 0; i < SlotsPerOwner; i++ {
			out = append(out, ProductionSlotDef{ID: ProductionSlotID(c, i), Chain: c})
		}
	}
	return out
}

// DefaultConversionSlots returns four slots per converter building.
func DefaultConversionSlots() []ConversionSlotDef {
	var out []ConversionSlotDef
	for _, b := range ConverterBuildings() {
		for i := 0; i < SlotsPerOwner; i++ {
			out = append(out, ConversionSlotDef{ID: ConversionSlotID(b.ID, i), Building: b.ID})
		}
	}
	return out
}
