package economy

import (
	"fmt"
	"slices"

	"github.com/talgya/probably-a-wizard/internal/catalog"
)

// Result is the outcome of an action. When OK is false, Reason says why and
// the state is exactly as it was before the call.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

var ok = Result{OK: true}

func fail(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// CombineResult is the outcome of AttemptCombine. OK false with no reason
// means the pair simply does not combine; it is not an error.
type CombineResult struct {
	OK           bool              `json:"ok"`
	Discovered   catalog.ManagerID `json:"discoveredId,omitempty"`
	AlreadyKnown bool              `json:"alreadyKnown,omitempty"`
}

// AddResource adds a gathered amount of r. Negative amounts are rejected and
// resources whose tier is not yet unlocked are left untouched.
func (s *State) AddResource(r catalog.Resource, amount float64) Result {
	if !r.Valid() {
		return fail("Unknown resource.")
	}
	if amount < 0 {
		return fail("Amount must not be negative.")
	}
	if !s.IsResourceUnlocked(r) {
		return fail("%s is not unlocked yet.", r.Name())
	}
	s.inventory.Add(r, amount)
	return ok
}

// UnlockManager pays for a discovered manager and makes it assignable.
func (s *State) UnlockManager(m catalog.ManagerID) Result {
	def, known := catalog.GetManager(m)
	if !known {
		return fail("Unknown character.")
	}
	if !s.discovered[m] {
		return fail("Discover this character first.")
	}
	if s.unlocked[m] {
		return fail("Character already unlocked.")
	}
	cost := catalog.ManagerUnlockCost(m)
	if !s.inventory.CanAfford(cost) {
		return fail("Not enough resources.")
	}
	housed, capacity := s.HousedPeople(), s.HousingCapacity()
	if housed+def.HousingCost > capacity {
		return fail("Not enough housing (%d/%d).", housed, capacity)
	}

	s.inventory.Spend(cost)
	s.unlocked[m] = true
	return ok
}

// LevelUpManager raises an unlocked manager's level by exactly one.
func (s *State) LevelUpManager(m catalog.ManagerID) Result {
	def, known := catalog.GetManager(m)
	if !known {
		return fail("Unknown character.")
	}
	if !s.unlocked[m] {
		return fail("Character not unlocked.")
	}
	level := s.levels[m]
	if level >= catalog.MaxManagerLevel {
		return fail("Already at maximum level.")
	}
	cost := catalog.LevelUpCost(level, def.Tier)
	if !s.inventory.CanAfford(cost) {
		return fail("Not enough resources.")
	}

	s.inventory.Spend(cost)
	s.levels[m] = level + 1
	return ok
}

// AssignToSlot places m in the production or conversion slot slotID.
// Assigning NoManager clears the slot. A manager may hold only one slot
// across the whole game; re-assigning it to the slot it already holds is a
// no-op.
func (s *State) AssignToSlot(slotID string, m catalog.ManagerID) Result {
	if m == catalog.NoManager {
		return s.ClearSlot(slotID)
	}
	pi := slices.IndexFunc(s.production, func(sl ProductionSlot) bool { return sl.ID == slotID })
	ci := slices.IndexFunc(s.conversion, func(sl ConversionSlot) bool { return sl.ID == slotID })
	if pi < 0 && ci < 0 {
		return fail("Unknown slot.")
	}
	if !m.Valid() {
		return fail("Unknown character.")
	}
	if !s.unlocked[m] {
		return fail("Character is not unlocked.")
	}
	if current, held := s.SlotOf(m); held {
		if current == slotID {
			return ok
		}
		return fail("Character already assigned to another slot.")
	}

	if pi >= 0 {
		next := slices.Clone(s.production)
		next[pi].Manager = m
		s.production = next
	} else {
		next := slices.Clone(s.conversion)
		next[ci].Manager = m
		s.conversion = next
	}
	return ok
}

// ClearSlot empties slotID. Clearing an empty slot succeeds.
func (s *State) ClearSlot(slotID string) Result {
	if i := slices.IndexFunc(s.production, func(sl ProductionSlot) bool { return sl.ID == slotID }); i >= 0 {
		next := slices.Clone(s.production)
		next[i].Manager = catalog.NoManager
		s.production = next
		return ok
	}
	if i := slices.IndexFunc(s.conversion, func(sl ConversionSlot) bool { return sl.ID == slotID }); i >= 0 {
		next := slices.Clone(s.conversion)
		next[i].Manager = catalog.NoManager
		s.conversion = next
		return ok
	}
	return fail("Unknown slot.")
}

// AttemptCombine looks up the pair in the combination graph. A new result is
// added to the discovered set but not unlocked.
func (s *State) AttemptCombine(a, b catalog.ManagerID) CombineResult {
	result, found := catalog.Combine(a, b)
	if !found {
		return CombineResult{}
	}
	if s.discovered[result] {
		return CombineResult{OK: true, Discovered: result, AlreadyKnown: true}
	}
	s.discovered[result] = true
	return CombineResult{OK: true, Discovered: result}
}

// BuildBuilding pays for and marks b as built. Buildings that unlock a
// resource queue a resource_unlocked notification.
func (s *State) BuildBuilding(b catalog.BuildingID) Result {
	if !b.Valid() {
		return fail("Unknown building.")
	}
	def := catalog.GetBuilding(b)
	if s.built[b] {
		return fail("Already built.")
	}
	if !catalog.PrerequisiteSatisfied(def, s) {
		prereq := catalog.GetBuilding(*def.Prerequisite)
		return fail("Requires %s to be built first.", prereq.Name)
	}
	if !s.inventory.CanAfford(def.Cost) {
		return fail("Not enough resources.")
	}

	s.inventory.Spend(def.Cost)
	s.built[b] = true
	if def.Unlocks != nil {
		r := *def.Unlocks
		s.notify(Notification{Kind: NotifyResourceUnlocked, Label: r.Name(), Resource: &r})
	}
	return ok
}

// ConvertResource turns exactly Ratio units of the building's input into one
// unit of its output. Bulk conversion means calling it repeatedly.
func (s *State) ConvertResource(b catalog.BuildingID) Result {
	if !b.Valid() {
		return fail("Unknown building.")
	}
	if !s.built[b] {
		return fail("Building not built yet.")
	}
	conv := catalog.GetBuilding(b).Conversion
	if conv == nil {
		return fail("This building cannot convert resources.")
	}
	ratio := float64(conv.Ratio)
	if s.inventory.Get(conv.Input) < ratio {
		return fail("Need %d %s to convert.", conv.Ratio, conv.Input.Name())
	}

	s.inventory.Add(conv.Input, -ratio)
	s.inventory.Add(conv.Output, 1)
	return ok
}

// UpgradeHousing raises the housing level by one, paying the base cost
// multiplied by the number of housing chains.
func (s *State) UpgradeHousing() Result {
	if s.housingChains == 0 {
		return fail("Build a housing chain first.")
	}
	if s.housingLevel >= catalog.MaxHousingLevel {
		return fail("Housing is at maximum level.")
	}
	cost, available := catalog.HousingUpgradeCost(s.housingLevel, s.housingChains)
	if !available {
		return fail("No upgrade available.")
	}
	if !s.inventory.CanAfford(cost) {
		return fail("Not enough resources.")
	}

	s.inventory.Spend(cost)
	s.housingLevel++
	return ok
}

// AddHousingChain adds a parallel housing chain. The first chain also lifts
// the housing level to at least 1.
func (s *State) AddHousingChain() Result {
	if s.housingChains >= catalog.MaxHousingChains {
		return fail("Maximum %d housing chains.", catalog.MaxHousingChains)
	}
	cost, available := catalog.HousingChainCost(s.housingLevel)
	if !available {
		return fail("Cannot add chain.")
	}
	if !s.inventory.CanAfford(cost) {
		return fail("Not enough resources.")
	}

	s.inventory.Spend(cost)
	s.housingChains++
	s.housingLevel = max(s.housingLevel, 1)
	return ok
}

// SetActiveChainTier selects which unlocked tier of chain is on display.
func (s *State) SetActiveChainTier(chain catalog.Chain, tier int) Result {
	if int(chain) >= catalog.NumChains {
		return fail("Unknown chain.")
	}
	if !slices.Contains(s.UnlockedTiers(chain), tier) {
		return fail("Tier not unlocked.")
	}
	s.activeTier[chain] = tier
	return ok
}
