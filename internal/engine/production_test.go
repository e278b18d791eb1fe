package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
)

func ref(s string) *string { return &s }

// stateWith restores a state where the given managers are unlocked and
// placed in the given slots.
func stateWith(t *testing.T, inventory map[string]float64, built []string, slots map[string]string) *economy.State {
	t.Helper()
	snap := economy.Snapshot{
		Inventory: inventory,
		Buildings: economy.BuildingsSnapshot{BuiltBuildings: built},
		UnlockedManagerIDs: []string{"gatherer", "builder", "curious", "strange",
			"farmer", "fisher", "hunter", "toolmaker", "scholar", "engineer"},
	}
	for slot, manager := range slots {
		if strings.Contains(slot, "-bslot-") {
			snap.ConversionSlots = append(snap.ConversionSlots, economy.ConversionSlotSnapshot{ID: slot, ManagerID: ref(manager)})
		} else {
			snap.ProductionSlots = append(snap.ProductionSlots, economy.ProductionSlotSnapshot{ID: slot, ManagerID: ref(manager)})
		}
	}
	st := economy.Restore(snap)
	for slot, manager := range slots {
		m, _ := catalog.ParseManager(manager)
		got, held := st.SlotOf(m)
		require.True(t, held, "manager %s", manager)
		require.Equal(t, slot, got)
	}
	return st
}

func TestFractionalProductionCarriesOver(t *testing.T) {
	st := stateWith(t, nil, nil, map[string]string{"food-slot-0": "hunter"})
	require.InDelta(t, 0.3, st.EffectivePps(catalog.Hunter), 1e-12)

	p := NewProduction(20)
	for range 40 {
		p.Advance(st, 0.25)
	}
	assert.Equal(t, float64(3), st.Quantity(catalog.Berries))
}

func TestGatherFeedsChainTierZero(t *testing.T) {
	st := stateWith(t, nil, nil, map[string]string{
		"energy-slot-1":  "gatherer",
		"culture-slot-3": "engineer",
	})
	p := NewProduction(20)
	gains := p.Gather(st, 10)

	assert.Equal(t, float64(2), gains[catalog.Coal])
	assert.Equal(t, float64(4), gains[catalog.Novels])
	assert.Equal(t, float64(2), st.Quantity(catalog.Coal))
	assert.Equal(t, float64(0), st.Quantity(catalog.Berries))
}

func TestGatherNoSlotsNoGain(t *testing.T) {
	st := economy.New()
	p := NewProduction(20)
	assert.Empty(t, p.Gather(st, 3600))
	assert.Empty(t, p.Gather(st, -1))
}

func TestConvertDrainsWholeProgress(t *testing.T) {
	st := stateWith(t, map[string]float64{"berries": 2000}, []string{"bakery"},
		map[string]string{"bakery-bslot-0": "gatherer"})
	p := NewProduction(20)

	done := p.Convert(st, 19.75)
	assert.Empty(t, done)

	done = p.Convert(st, 0.25)
	assert.Equal(t, 1, done[catalog.Bakery])
	assert.Equal(t, float64(1000), st.Quantity(catalog.Berries))
	assert.Equal(t, float64(1), st.Quantity(catalog.Croissants))

	// Two conversions' worth of progress but input for only one: the second
	// fails and progress resets.
	done = p.Convert(st, 40)
	assert.Equal(t, 1, done[catalog.Bakery])
	assert.Equal(t, float64(0), st.Quantity(catalog.Berries))
	assert.Equal(t, float64(2), st.Quantity(catalog.Croissants))
	assert.True(t, p.progress[catalog.Bakery].IsZero())
}

func TestConvertIgnoresUnbuiltBuildings(t *testing.T) {
	st := stateWith(t, map[string]float64{"cool-sticks": 5000}, nil,
		map[string]string{"tree-fort-bslot-0": "builder"})
	p := NewProduction(20)
	assert.Empty(t, p.Convert(st, 1000))
	assert.Equal(t, float64(5000), st.Quantity(catalog.CoolSticks))
}

func TestOfflineElapsed(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	limit := 12 * time.Hour

	assert.Equal(t, 20000*time.Second, OfflineElapsed(now.Add(-20000*time.Second), now, limit))
	assert.Equal(t, limit, OfflineElapsed(now.Add(-100000*time.Second), now, limit))
	assert.Equal(t, time.Duration(0), OfflineElapsed(now.Add(time.Hour), now, limit), "clock moved backwards")
}

func TestCatchUp(t *testing.T) {
	st := stateWith(t, nil, nil, map[string]string{"food-slot-0": "hunter"})
	now := time.UnixMilli(1_700_000_000_000)

	summary, ok := CatchUp(st, now.Add(-20000*time.Second), now, 12*time.Hour)
	require.True(t, ok)
	assert.Equal(t, float64(20000), summary.ElapsedSeconds)
	assert.Equal(t, float64(6000), summary.Gains[catalog.Berries])
	assert.Equal(t, float64(6000), st.Quantity(catalog.Berries))

	notes := st.TakeNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, economy.NotifyOfflineProgress, notes[0].Kind)
	assert.Equal(t, summary, *notes[0].Offline)
}

func TestCatchUpWithoutGainsIsSilent(t *testing.T) {
	st := economy.New()
	now := time.Now()
	_, ok := CatchUp(st, now.Add(-time.Hour), now, 12*time.Hour)
	assert.False(t, ok)
	assert.Empty(t, st.PendingNotifications())
}

func TestCatchUpCreditsFractions(t *testing.T) {
	st := stateWith(t, nil, nil, map[string]string{
		"food-slot-0": "gatherer",
		"food-slot-1": "hunter",
	})
	now := time.UnixMilli(1_700_000_000_000)

	summary, ok := CatchUp(st, now.Add(-4*time.Second), now, 12*time.Hour)
	require.True(t, ok)
	// 0.2·4 + 0.3·4
	assert.InDelta(t, 2.0, summary.Gains[catalog.Berries], 1e-9)

	_, ok = CatchUp(st, now.Add(-1234*time.Millisecond), now, 12*time.Hour)
	require.True(t, ok)
	assert.InDelta(t, 2.617, st.Quantity(catalog.Berries), 1e-9)
}

func TestCatchUpWithoutLastActive(t *testing.T) {
	st := stateWith(t, nil, nil, map[string]string{"food-slot-0": "hunter"})
	now := time.UnixMilli(1_700_000_000_000)

	_, ok := CatchUp(st, time.Time{}, now, 12*time.Hour)
	assert.False(t, ok)
	assert.Zero(t, st.Quantity(catalog.Berries))
	assert.Equal(t, time.Duration(0), OfflineElapsed(time.Time{}, now, 12*time.Hour))
}
