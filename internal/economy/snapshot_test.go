package economy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/probably-a-wizard/internal/catalog"
)

func TestSnapshotWireShape(t *testing.T) {
	s := New()
	s.AddResource(catalog.Berries, 12.5)
	require.True(t, s.AssignToSlot("food-slot-1", catalog.Gatherer).OK)

	raw, err := json.Marshal(s.Snapshot(time.UnixMilli(1700000000000)))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"inventory", "buildings", "unlockedManagerIds",
		"discoveredManagerIds", "productionSlots", "conversionSlots", "managerLevels", "lastActiveAt"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, float64(1700000000000), doc["lastActiveAt"])
	assert.Equal(t, []any{"builder", "curious", "gatherer", "strange"}, doc["unlockedManagerIds"])

	slots := doc["productionSlots"].([]any)
	first := slots[0].(map[string]any)
	assert.Equal(t, "food-slot-0", first["id"])
	assert.Equal(t, "food", first["chainId"])
	assert.Contains(t, first, "managerId")
	assert.Nil(t, first["managerId"])
	assert.Equal(t, "gatherer", slots[1].(map[string]any)["managerId"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.AttemptCombine(catalog.Gatherer, catalog.Builder)
	fund(t, s, catalog.Cost{catalog.CoolSticks: 1000, catalog.Berries: 1000})
	require.True(t, s.AddHousingChain().OK)
	require.True(t, s.UnlockManager(catalog.Fisher).OK)
	require.True(t, s.BuildBuilding(catalog.Bakery).OK)
	require.True(t, s.LevelUpManager(catalog.Curious).OK)
	require.True(t, s.AssignToSlot("food-slot-0", catalog.Fisher).OK)
	require.True(t, s.AssignToSlot("bakery-bslot-2", catalog.Curious).OK)
	require.True(t, s.SetActiveChainTier(catalog.ChainFood, 1).OK)

	now := time.UnixMilli(1700000000000)
	raw, err := json.Marshal(s.Snapshot(now))
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	back := Restore(snap)

	assert.Equal(t, s.Inventory(), back.Inventory())
	assert.Equal(t, s.BuiltBuildings(), back.BuiltBuildings())
	assert.Equal(t, s.HousingLevel(), back.HousingLevel())
	assert.Equal(t, s.HousingChains(), back.HousingChains())
	assert.Equal(t, s.Unlocked(), back.Unlocked())
	assert.Equal(t, s.Discovered(), back.Discovered())
	assert.Equal(t, s.Levels(), back.Levels())
	assert.Equal(t, s.ProductionSlots(), back.ProductionSlots())
	assert.Equal(t, s.ConversionSlots(), back.ConversionSlots())
	assert.Equal(t, 1, back.ActiveTier(catalog.ChainFood))
	assert.Equal(t, now, snap.LastActive())
}

func TestRestoreDefaultsAbsentCollections(t *testing.T) {
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"inventory":{"berries":3}}`), &snap))
	s := Restore(snap)

	assert.Equal(t, float64(3), s.Quantity(catalog.Berries))
	assert.Equal(t, []catalog.ManagerID{catalog.Builder, catalog.Curious, catalog.Gatherer, catalog.Strange}, s.Unlocked())
	assert.Len(t, s.ProductionSlots(), 16)
	assert.Len(t, s.ConversionSlots(), 80)
	assert.Empty(t, s.BuiltBuildings())
}

func TestRestoreRepairsInvariants(t *testing.T) {
	raw := `{
		"inventory": {"berries": -5, "unobtainium": 10},
		"buildings": {"builtBuildings": ["bakery", "castle"], "housingLevel": 99, "housingChains": -1},
		"unlockedManagerIds": ["gatherer", "hunter", "wizard"],
		"discoveredManagerIds": [],
		"productionSlots": [
			{"id": "food-slot-0", "chainId": "food", "managerId": "gatherer"},
			{"id": "food-slot-1", "chainId": "food", "managerId": "gatherer"},
			{"id": "energy-slot-0", "chainId": "energy", "managerId": "farmer"},
			{"id": "moon-slot-0", "chainId": "moon", "managerId": null}
		],
		"conversionSlots": [
			{"id": "bakery-bslot-0", "buildingId": "bakery", "managerId": "gatherer"}
		],
		"managerLevels": {"gatherer": 250, "wizard": 3},
		"activeChainTier": {"food": 3},
		"lastActiveAt": 0
	}`
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	s := Restore(snap)

	assert.Equal(t, float64(0), s.Quantity(catalog.Berries))
	assert.Equal(t, []catalog.BuildingID{catalog.Bakery}, s.BuiltBuildings())
	assert.Equal(t, catalog.MaxHousingLevel, s.HousingLevel())
	assert.Equal(t, 0, s.HousingChains())
	assert.ElementsMatch(t, []catalog.ManagerID{
		catalog.Gatherer, catalog.Builder, catalog.Curious, catalog.Strange, catalog.Hunter,
	}, s.Unlocked())
	assert.True(t, s.IsDiscovered(catalog.Curious), "empty discovered list falls back to starters")
	assert.True(t, s.IsDiscovered(catalog.Hunter), "unlocked implies discovered")
	assert.Equal(t, catalog.MaxManagerLevel, s.Level(catalog.Gatherer))

	slots := s.ProductionSlots()
	assert.Equal(t, catalog.Gatherer, slots[0].Manager)
	assert.False(t, slots[1].Occupied(), "duplicate assignment cleared")
	assert.False(t, slots[8].Occupied(), "locked manager cleared")
	assert.False(t, s.ConversionSlots()[0].Occupied())
	assert.Equal(t, 0, s.ActiveTier(catalog.ChainFood), "tier 3 is not unlocked")
}

func TestRestoreKeepsStartersUnlocked(t *testing.T) {
	snap := Snapshot{
		UnlockedManagerIDs:   []string{},
		DiscoveredManagerIDs: []string{"fisher"},
	}
	s := Restore(snap)
	for _, m := range catalog.StarterManagers {
		assert.True(t, s.IsUnlocked(m), "%s", m)
		assert.True(t, s.IsDiscovered(m), "%s", m)
	}
	assert.True(t, s.IsDiscovered(catalog.Fisher))
	assert.False(t, s.IsUnlocked(catalog.Fisher))
}

func TestLastActiveMissing(t *testing.T) {
	assert.True(t, Snapshot{}.LastActive().IsZero())
	assert.True(t, Snapshot{LastActiveAt: -5}.LastActive().IsZero())
	assert.Equal(t, int64(1), Snapshot{LastActiveAt: 1}.LastActive().UnixMilli())
}
