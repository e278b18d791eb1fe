package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/probably-a-wizard/internal/catalog"
)

func fund(t *testing.T, s *State, cost catalog.Cost) {
	t.Helper()
	for r, q := range cost {
		s.inventory.Add(r, q)
	}
}

func TestAddResource(t *testing.T) {
	s := New()
	res := s.AddResource(catalog.Berries, 50)
	require.True(t, res.OK)
	assert.Equal(t, float64(50), s.Quantity(catalog.Berries))

	before := s.Inventory()
	res = s.AddResource(catalog.Croissants, 50)
	assert.False(t, res.OK)
	assert.Equal(t, before, s.Inventory())

	res = s.AddResource(catalog.Berries, -10)
	assert.False(t, res.OK)
	assert.Equal(t, float64(50), s.Quantity(catalog.Berries))
}

func TestAddResourceRounds(t *testing.T) {
	s := New()
	for range 10 {
		s.AddResource(catalog.Coal, 0.1)
	}
	assert.Equal(t, 1.0, s.Quantity(catalog.Coal))

	s.AddResource(catalog.Coal, 0.00049)
	assert.Equal(t, 1.0, s.Quantity(catalog.Coal))
}

func TestUnlockManagerNeedsDiscovery(t *testing.T) {
	s := New()
	res := s.UnlockManager(catalog.Fisher)
	assert.Equal(t, Result{Reason: "Discover this character first."}, res)

	res = s.UnlockManager(catalog.Gatherer)
	assert.Equal(t, "Character already unlocked.", res.Reason)
}

func TestUnlockManagerCost(t *testing.T) {
	s := New()
	require.True(t, s.AttemptCombine(catalog.Gatherer, catalog.Builder).OK)
	require.True(t, s.IsDiscovered(catalog.Fisher))
	chain, _ := catalog.HousingChainCost(0)
	fund(t, s, chain)
	require.True(t, s.AddHousingChain().OK)

	s.AddResource(catalog.CoolSticks, 40)
	before := s.Inventory()
	res := s.UnlockManager(catalog.Fisher)
	assert.Equal(t, Result{Reason: "Not enough resources."}, res)
	assert.Equal(t, before, s.Inventory())
	assert.False(t, s.IsUnlocked(catalog.Fisher))

	s.AddResource(catalog.CoolSticks, 10)
	s.AddResource(catalog.Berries, 30)
	res = s.UnlockManager(catalog.Fisher)
	require.True(t, res.OK)
	assert.True(t, s.IsUnlocked(catalog.Fisher))
	assert.Equal(t, float64(0), s.Quantity(catalog.CoolSticks))
	assert.Equal(t, float64(5), s.Quantity(catalog.Berries))
}

func TestHousingNeverOverfilled(t *testing.T) {
	s := New()
	assert.LessOrEqual(t, s.HousedPeople(), s.HousingCapacity())
	for _, m := range catalog.AllManagers() {
		s.discovered[m] = true
		fund(t, s, catalog.ManagerUnlockCost(m))
		s.UnlockManager(m)
		assert.LessOrEqual(t, s.HousedPeople(), s.HousingCapacity())
	}
}

func TestUnlockManagerNeedsHousing(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.HousedPeople(), "starters are not housed")
	require.True(t, s.AttemptCombine(catalog.Gatherer, catalog.Gatherer).OK)
	require.True(t, s.IsDiscovered(catalog.Farmer))

	fund(t, s, catalog.ManagerUnlockCost(catalog.Farmer))
	before := s.Inventory()
	res := s.UnlockManager(catalog.Farmer)
	assert.Equal(t, "Not enough housing (0/0).", res.Reason)
	assert.Equal(t, before, s.Inventory())
	assert.False(t, s.IsUnlocked(catalog.Farmer))

	chain, _ := catalog.HousingChainCost(s.HousingLevel())
	fund(t, s, chain)
	require.True(t, s.AddHousingChain().OK)
	require.Equal(t, 1, s.HousingCapacity())

	require.True(t, s.UnlockManager(catalog.Farmer).OK)
	assert.Equal(t, 1, s.HousedPeople())

	// The tent is full again.
	require.True(t, s.AttemptCombine(catalog.Gatherer, catalog.Builder).OK)
	fund(t, s, catalog.ManagerUnlockCost(catalog.Fisher))
	assert.Equal(t, "Not enough housing (1/1).", s.UnlockManager(catalog.Fisher).Reason)
}

func TestLevelUpManager(t *testing.T) {
	s := New()
	res := s.LevelUpManager(catalog.Farmer)
	assert.Equal(t, "Character not unlocked.", res.Reason)

	res = s.LevelUpManager(catalog.Gatherer)
	assert.Equal(t, "Not enough resources.", res.Reason)
	assert.Equal(t, 0, s.Level(catalog.Gatherer))

	s.AddResource(catalog.Berries, 60)
	require.True(t, s.LevelUpManager(catalog.Gatherer).OK)
	assert.Equal(t, 1, s.Level(catalog.Gatherer))
	assert.Equal(t, float64(10), s.Quantity(catalog.Berries))

	s.levels[catalog.Gatherer] = catalog.MaxManagerLevel
	s.AddResource(catalog.Berries, 1e12)
	res = s.LevelUpManager(catalog.Gatherer)
	assert.Equal(t, "Already at maximum level.", res.Reason)
	assert.Equal(t, catalog.MaxManagerLevel, s.Level(catalog.Gatherer))
}

func TestSlotExclusivity(t *testing.T) {
	s := New()
	require.True(t, s.AssignToSlot("food-slot-0", catalog.Gatherer).OK)

	res := s.AssignToSlot("energy-slot-2", catalog.Gatherer)
	assert.Equal(t, "Character already assigned to another slot.", res.Reason)

	res = s.AssignToSlot("bakery-bslot-0", catalog.Gatherer)
	assert.False(t, res.OK, "exclusivity spans conversion slots too")

	assert.True(t, s.AssignToSlot("food-slot-0", catalog.Gatherer).OK, "same slot is a no-op")

	require.True(t, s.ClearSlot("food-slot-0").OK)
	assert.True(t, s.ClearSlot("food-slot-0").OK)
	require.True(t, s.AssignToSlot("bakery-bslot-0", catalog.Gatherer).OK)

	slot, held := s.SlotOf(catalog.Gatherer)
	require.True(t, held)
	assert.Equal(t, "bakery-bslot-0", slot)

	counts := make(map[catalog.ManagerID]int)
	for _, sl := range s.ProductionSlots() {
		if sl.Occupied() {
			counts[sl.Manager]++
		}
	}
	for _, sl := range s.ConversionSlots() {
		if sl.Occupied() {
			counts[sl.Manager]++
		}
	}
	for m, n := range counts {
		assert.Equal(t, 1, n, "manager %s", m)
	}
}

func TestAssignRejectsLockedAndUnknown(t *testing.T) {
	s := New()
	res := s.AssignToSlot("food-slot-0", catalog.Farmer)
	assert.Equal(t, "Character is not unlocked.", res.Reason)

	res = s.AssignToSlot("moon-slot-0", catalog.Gatherer)
	assert.Equal(t, "Unknown slot.", res.Reason)

	res = s.AssignToSlot("food-slot-0", catalog.NoManager)
	assert.True(t, res.OK, "assigning nobody clears")
}

func TestAssignDoesNotMutateEarlierCopies(t *testing.T) {
	s := New()
	before := s.ProductionSlots()
	require.True(t, s.AssignToSlot("food-slot-0", catalog.Curious).OK)
	assert.False(t, before[0].Occupied())
	assert.True(t, s.ProductionSlots()[0].Occupied())
}

func TestAttemptCombine(t *testing.T) {
	s := New()
	res := s.AttemptCombine(catalog.Curious, catalog.Strange)
	assert.Equal(t, CombineResult{}, res)

	res = s.AttemptCombine(catalog.Builder, catalog.Gatherer)
	assert.Equal(t, CombineResult{OK: true, Discovered: catalog.Fisher}, res)
	assert.True(t, s.IsDiscovered(catalog.Fisher))
	assert.False(t, s.IsUnlocked(catalog.Fisher))

	discovered := s.Discovered()
	res = s.AttemptCombine(catalog.Gatherer, catalog.Builder)
	assert.Equal(t, CombineResult{OK: true, Discovered: catalog.Fisher, AlreadyKnown: true}, res)
	assert.Equal(t, discovered, s.Discovered())
}

func TestBuildBuilding(t *testing.T) {
	s := New()
	res := s.BuildBuilding(catalog.Bakery)
	assert.Equal(t, "Not enough resources.", res.Reason)

	fund(t, s, catalog.GetBuilding(catalog.Bakery).Cost.Scale(2))
	require.True(t, s.BuildBuilding(catalog.Bakery).OK)
	assert.True(t, s.IsBuilt(catalog.Bakery))
	assert.True(t, s.IsResourceUnlocked(catalog.Croissants))

	res = s.BuildBuilding(catalog.Bakery)
	assert.Equal(t, Result{Reason: "Already built."}, res)

	notes := s.TakeNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, NotifyResourceUnlocked, notes[0].Kind)
	assert.Equal(t, "Croissants", notes[0].Label)
	assert.NotEmpty(t, notes[0].ID)
	assert.Empty(t, s.TakeNotifications(), "notifications are consumed once")
}

func TestBuildBuildingPrerequisite(t *testing.T) {
	s := New()
	fund(t, s, catalog.GetBuilding(catalog.FoodTruck).Cost)
	res := s.BuildBuilding(catalog.FoodTruck)
	assert.Equal(t, "Requires Bakery to be built first.", res.Reason)
	assert.False(t, s.IsBuilt(catalog.FoodTruck))
}

func TestConvertResource(t *testing.T) {
	s := New()
	res := s.ConvertResource(catalog.Bakery)
	assert.Equal(t, "Building not built yet.", res.Reason)

	s.built[catalog.Bakery] = true
	s.AddResource(catalog.Berries, 999)
	res = s.ConvertResource(catalog.Bakery)
	assert.Equal(t, Result{Reason: "Need 1000 Berries to convert."}, res)
	assert.Equal(t, float64(999), s.Quantity(catalog.Berries))

	s.AddResource(catalog.Berries, 1)
	require.True(t, s.ConvertResource(catalog.Bakery).OK)
	assert.Equal(t, float64(0), s.Quantity(catalog.Berries))
	assert.Equal(t, float64(1), s.Quantity(catalog.Croissants))

	s.built[catalog.BoatDock] = true
	res = s.ConvertResource(catalog.BoatDock)
	assert.Equal(t, "This building cannot convert resources.", res.Reason)
}

func TestHousingActions(t *testing.T) {
	s := New()
	res := s.UpgradeHousing()
	assert.Equal(t, "Build a housing chain first.", res.Reason)

	fund(t, s, catalog.Cost{catalog.Berries: 100, catalog.CoolSticks: 100})
	require.True(t, s.AddHousingChain().OK)
	assert.Equal(t, 1, s.HousingChains())
	assert.Equal(t, 1, s.HousingLevel())
	assert.Equal(t, 1, s.HousingCapacity())

	cost, _ := catalog.HousingUpgradeCost(s.HousingLevel(), s.HousingChains())
	fund(t, s, cost)
	require.True(t, s.UpgradeHousing().OK)
	assert.Equal(t, 2, s.HousingLevel())

	s.housingChains = catalog.MaxHousingChains
	assert.Equal(t, "Maximum 4 housing chains.", s.AddHousingChain().Reason)

	s.housingLevel = catalog.MaxHousingLevel
	assert.Equal(t, "Housing is at maximum level.", s.UpgradeHousing().Reason)
}

func TestSetActiveChainTier(t *testing.T) {
	s := New()
	assert.False(t, s.SetActiveChainTier(catalog.ChainFood, 1).OK)
	s.built[catalog.Bakery] = true
	require.True(t, s.SetActiveChainTier(catalog.ChainFood, 1).OK)
	assert.Equal(t, 1, s.ActiveTier(catalog.ChainFood))
}

func TestFailedActionsLeaveStateUnchanged(t *testing.T) {
	s := New()
	s.AddResource(catalog.Berries, 10)
	before := s.Snapshot(time.UnixMilli(0))

	s.UnlockManager(catalog.Farmer)
	s.LevelUpManager(catalog.Gatherer)
	s.BuildBuilding(catalog.TreeFort)
	s.ConvertResource(catalog.Bakery)
	s.AddHousingChain()
	s.AssignToSlot("food-slot-0", catalog.Hunter)

	assert.Equal(t, before, s.Snapshot(time.UnixMilli(0)))
}

func TestDismissNotification(t *testing.T) {
	s := New()
	n := s.NotifyOffline(OfflineSummary{ElapsedSeconds: 5})
	require.Len(t, s.PendingNotifications(), 1)
	assert.False(t, s.DismissNotification("nope"))
	assert.True(t, s.DismissNotification(n.ID))
	assert.Empty(t, s.PendingNotifications())
}
