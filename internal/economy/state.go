package economy

import (
	"github.com/talgya/probably-a-wizard/internal/catalog"
)

// ProductionSlot feeds tier 0 of Chain with its manager's output.
type ProductionSlot struct {
	ID      string
	Chain   catalog.Chain
	Manager catalog.ManagerID
}

// ConversionSlot speeds up automatic conversion at Building.
type ConversionSlot struct {
	ID       string
	Building catalog.BuildingID
	Manager  catalog.ManagerID
}

// Occupied reports whether a manager is assigned.
func (s ProductionSlot) Occupied() bool { return s.Manager != catalog.NoManager }

// Occupied reports whether a manager is assigned.
func (s ConversionSlot) Occupied() bool { return s.Manager != catalog.NoManager }

// State is the progression snapshot of one game session. Fields are only
// changed by the action methods, which validate before writing so that a
// failed action leaves the state untouched. State is not safe for concurrent
// use; callers serialise access (see engine.Session).
type State struct {
	inventory     Inventory
	built         map[catalog.BuildingID]bool
	housingLevel  int
	housingChains int
	unlocked      map[catalog.ManagerID]bool
	discovered    map[catalog.ManagerID]bool
	levels        map[catalog.ManagerID]int
	production    []ProductionSlot
	conversion    []ConversionSlot
	activeTier    [catalog.NumChains]int

	notices []Notification
}

// New returns the default state of a fresh game: starter managers
// discovered and unlocked, empty inventory, no buildings, empty slots.
func New() *State {
	s := &State{
		built:      make(map[catalog.BuildingID]bool),
		unlocked:   make(map[catalog.ManagerID]bool),
		discovered: make(map[catalog.ManagerID]bool),
		levels:     make(map[catalog.ManagerID]int),
	}
	for _, id := range catalog.StarterManagers {
		s.discovered[id] = true
		s.unlocked[id] = true
	}
	for _, def := range catalog.DefaultProductionSlots() {
		s.production = append(s.production, ProductionSlot{ID: def.ID, Chain: def.Chain})
	}
	for _, def := range catalog.DefaultConversionSlots() {
		s.conversion = append(s.conversion, ConversionSlot{ID: def.ID, Building: def.Building})
	}
	return s
}

// ── Inventory ────────────────────────────────────────────────────────

// Quantity returns the amount held of r.
func (s *State) Quantity(r catalog.Resource) float64 { return s.inventory.Get(r) }

// Inventory returns a copy of the inventory.
func (s *State) Inventory() Inventory { return s.inventory }

// IsResourceUnlocked reports whether r's tier has been reached.
func (s *State) IsResourceUnlocked(r catalog.Resource) bool {
	return catalog.IsResourceUnlocked(r, s)
}

// UnlockedResources lists every unlocked resource.
func (s *State) UnlockedResources() []catalog.Resource {
	return catalog.UnlockedResources(s)
}

// ── Buildings & housing ──────────────────────────────────────────────

// IsBuilt reports whether b has been built. It makes State a catalog.BuiltSet.
func (s *State) IsBuilt(b catalog.BuildingID) bool { return s.built[b] }

// BuiltBuildings returns the built buildings in catalog order.
func (s *State) BuiltBuildings() []catalog.BuildingID {
	var out []catalog.BuildingID
	for _, b := range catalog.AllBuildings() {
		if s.built[b.ID] {
			out = append(out, b.ID)
		}
	}
	return out
}

// UnlockedTiers returns the unlocked tier indices of chain.
func (s *State) UnlockedTiers(chain catalog.Chain) []int {
	return catalog.UnlockedTierIndices(chain, s)
}

// HousingLevel returns the housing level (0–7).
func (s *State) HousingLevel() int { return s.housingLevel }

// HousingChains returns the number of housing chains (0–4).
func (s *State) HousingChains() int { return s.housingChains }

// HousingCapacity returns chains × capacityOf(level).
func (s *State) HousingCapacity() int {
	return catalog.HousingCapacity(s.housingLevel, s.housingChains)
}

// HousedPeople sums the housing cost of every unlocked manager.
func (s *State) HousedPeople() int {
	total := 0
	for id := range s.unlocked {
		if def, ok := catalog.GetManager(id); ok {
			total += def.HousingCost
		}
	}
	return total
}

// ── Managers ─────────────────────────────────────────────────────────

// IsDiscovered reports whether m is known.
func (s *State) IsDiscovered(m catalog.ManagerID) bool { return s.discovered[m] }

// IsUnlocked reports whether m has been paid for.
func (s *State) IsUnlocked(m catalog.ManagerID) bool { return s.unlocked[m] }

// Discovered returns the discovered managers sorted by wire id.
func (s *State) Discovered() []catalog.ManagerID { return sortedSet(s.discovered) }

// Unlocked returns the unlocked managers sorted by wire id.
func (s *State) Unlocked() []catalog.ManagerID { return sortedSet(s.unlocked) }

func sortedSet(set map[catalog.ManagerID]bool) []catalog.ManagerID {
	out := make([]catalog.ManagerID, 0, len(set))
	for id, ok := range set {
		if ok {
			out = append(out, id)
		}
	}
	catalog.SortManagers(out)
	return out
}

// Level returns m's level (0 when never levelled).
func (s *State) Level(m catalog.ManagerID) int { return s.levels[m] }

// Levels returns a copy of every manager's level, zero included.
func (s *State) Levels() map[catalog.ManagerID]int {
	out := make(map[catalog.ManagerID]int)
	for _, id := range catalog.AllManagers() {
		out[id] = s.levels[id]
	}
	return out
}

// EffectivePps returns m's production per second at its current level.
func (s *State) EffectivePps(m catalog.ManagerID) float64 {
	return catalog.EffectivePps(m, s.levels[m])
}

// ── Slots ────────────────────────────────────────────────────────────

// ProductionSlots returns a copy of the production slots.
func (s *State) ProductionSlots() []ProductionSlot {
	out := make([]ProductionSlot, len(s.production))
	copy(out, s.production)
	return out
}

// ConversionSlots returns a copy of the conversion slots.
func (s *State) ConversionSlots() []ConversionSlot {
	out := make([]ConversionSlot, len(s.conversion))
	copy(out, s.conversion)
	return out
}

// SlotOf returns the id of the slot m occupies, if any.
func (s *State) SlotOf(m catalog.ManagerID) (string, bool) {
	if m == catalog.NoManager {
		return "", false
	}
	for _, slot := range s.production {
		if slot.Manager == m {
			return slot.ID, true
		}
	}
	for _, slot := range s.conversion {
		if slot.Manager == m {
			return slot.ID, true
		}
	}
	return "", false
}

// ActiveTier returns the tier index selected for display in chain.
func (s *State) ActiveTier(chain catalog.Chain) int { return s.activeTier[chain] }
