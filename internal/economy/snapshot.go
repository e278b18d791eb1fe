package economy

import (
	"log/slog"
	"time"

	"github.com/talgya/probably-a-wizard/internal/catalog"
)

// Snapshot is the persisted form of a State. Ids are kept as wire strings so
// that a save written by a newer or older catalog still decodes; Restore
// drops what it does not recognise.
type Snapshot struct {
	Inventory            map[string]float64       `json:"inventory"`
	Buildings            BuildingsSnapshot        `json:"buildings"`
	UnlockedManagerIDs   []string                 `json:"unlockedManagerIds"`
	DiscoveredManagerIDs []string                 `json:"discoveredManagerIds"`
	ProductionSlots      []ProductionSlotSnapshot `json:"productionSlots"`
	ConversionSlots      []ConversionSlotSnapshot `json:"conversionSlots"`
	ManagerLevels        map[string]int           `json:"managerLevels"`
	ActiveChainTier      map[string]int           `json:"activeChainTier,omitempty"`
	LastActiveAt         int64                    `json:"lastActiveAt"`
}

type BuildingsSnapshot struct {
	BuiltBuildings []string `json:"builtBuildings"`
	HousingLevel   int      `json:"housingLevel"`
	HousingChains  int      `json:"housingChains"`
}

type ProductionSlotSnapshot struct {
	ID        string  `json:"id"`
	ChainID   string  `json:"chainId"`
	ManagerID *string `json:"managerId"`
}

type ConversionSlotSnapshot struct {
	ID         string  `json:"id"`
	BuildingID string  `json:"buildingId"`
	ManagerID  *string `json:"managerId"`
}

// LastActive converts LastActiveAt to a time. A missing or non-positive
// stamp yields the zero time.
func (snap Snapshot) LastActive() time.Time {
	if snap.LastActiveAt <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(snap.LastActiveAt)
}

func managerRef(m catalog.ManagerID) *string {
	if m == catalog.NoManager {
		return nil
	}
	id := m.String()
	return &id
}

func managerStrings(ids []catalog.ManagerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Snapshot serialises the full state, stamping lastActiveAt with now.
func (s *State) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Inventory: make(map[string]float64, catalog.NumResources),
		Buildings: BuildingsSnapshot{
			BuiltBuildings: []string{},
			HousingLevel:   s.housingLevel,
			HousingChains:  s.housingChains,
		},
		UnlockedManagerIDs:   managerStrings(s.Unlocked()),
		DiscoveredManagerIDs: managerStrings(s.Discovered()),
		ProductionSlots:      make([]ProductionSlotSnapshot, 0, len(s.production)),
		ConversionSlots:      make([]ConversionSlotSnapshot, 0, len(s.conversion)),
		ManagerLevels:        make(map[string]int),
		ActiveChainTier:      make(map[string]int, catalog.NumChains),
		LastActiveAt:         now.UnixMilli(),
	}
	for i, q := range s.inventory {
		snap.Inventory[catalog.Resource(i).String()] = q
	}
	for _, b := range s.BuiltBuildings() {
		snap.Buildings.BuiltBuildings = append(snap.Buildings.BuiltBuildings, b.String())
	}
	for _, slot := range s.production {
		snap.ProductionSlots = append(snap.ProductionSlots, ProductionSlotSnapshot{
			ID: slot.ID, ChainID: slot.Chain.String(), ManagerID: managerRef(slot.Manager),
		})
	}
	for _, slot := range s.conversion {
		snap.ConversionSlots = append(snap.ConversionSlots, ConversionSlotSnapshot{
			ID: slot.ID, BuildingID: slot.Building.String(), ManagerID: managerRef(slot.Manager),
		})
	}
	for id, level := range s.levels {
		if level > 0 {
			snap.ManagerLevels[id.String()] = level
		}
	}
	for _, c := range catalog.AllChains() {
		snap.ActiveChainTier[c.String()] = s.activeTier[c]
	}
	return snap
}

// Restore rebuilds a State from a snapshot on top of New(). Absent
// collections take their defaults, unknown ids are dropped with a warning, and slot assignments
// that would break exclusivity or name a locked manager are cleared.
func Restore(snap Snapshot) *State {
	s := New()

	for key, q := range snap.Inventory {
		r, err := catalog.ParseResource(key)
		if err != nil {
			slog.Warn("restore: dropping inventory entry", "resource", key)
			continue
		}
		s.inventory[r] = add(0, q)
	}

	for _, key := range snap.Buildings.BuiltBuildings {
		b, err := catalog.ParseBuilding(key)
		if err != nil {
			slog.Warn("restore: dropping building", "building", key)
			continue
		}
		s.built[b] = true
	}
	s.housingLevel = clamp(snap.Buildings.HousingLevel, 0, catalog.MaxHousingLevel)
	s.housingChains = clamp(snap.Buildings.HousingChains, 0, catalog.MaxHousingChains)

	// Saved ids add to the starters; they never lock a starter again.
	for id := range parseManagerSet(snap.UnlockedManagerIDs, "unlocked") {
		s.unlocked[id] = true
	}
	for id := range parseManagerSet(snap.DiscoveredManagerIDs, "discovered") {
		s.discovered[id] = true
	}
	for id := range s.unlocked {
		s.discovered[id] = true
	}

	for key, level := range snap.ManagerLevels {
		m, err := catalog.ParseManager(key)
		if err != nil {
			slog.Warn("restore: dropping manager level", "manager", key)
			continue
		}
		s.levels[m] = clamp(level, 0, catalog.MaxManagerLevel)
	}

	seen := make(map[catalog.ManagerID]bool)
	slotManager := func(slotID string, ref *string) catalog.ManagerID {
		if ref == nil {
			return catalog.NoManager
		}
		m, err := catalog.ParseManager(*ref)
		switch {
		case err != nil:
			slog.Warn("restore: clearing slot with unknown manager", "slot", slotID, "manager", *ref)
			return catalog.NoManager
		case !s.unlocked[m]:
			slog.Warn("restore: clearing slot with locked manager", "slot", slotID, "manager", *ref)
			return catalog.NoManager
		case seen[m]:
			slog.Warn("restore: clearing duplicate assignment", "slot", slotID, "manager", *ref)
			return catalog.NoManager
		}
		seen[m] = true
		return m
	}

	saved := make(map[string]*string, len(snap.ProductionSlots))
	for _, slot := range snap.ProductionSlots {
		saved[slot.ID] = slot.ManagerID
	}
	for i := range s.production {
		if ref, ok := saved[s.production[i].ID]; ok {
			s.production[i].Manager = slotManager(s.production[i].ID, ref)
		}
	}
	saved = make(map[string]*string, len(snap.ConversionSlots))
	for _, slot := range snap.ConversionSlots {
		saved[slot.ID] = slot.ManagerID
	}
	for i := range s.conversion {
		if ref, ok := saved[s.conversion[i].ID]; ok {
			s.conversion[i].Manager = slotManager(s.conversion[i].ID, ref)
		}
	}

	for key, tier := range snap.ActiveChainTier {
		c, err := catalog.ParseChain(key)
		if err != nil {
			continue
		}
		if s.SetActiveChainTier(c, tier).OK {
			continue
		}
		s.activeTier[c] = 0
	}
	return s
}

func parseManagerSet(ids []string, field string) map[catalog.ManagerID]bool {
	set := make(map[catalog.ManagerID]bool, len(ids))
	for _, key := range ids {
		m, err := catalog.ParseManager(key)
		if err != nil {
			slog.Warn("restore: dropping manager", "field", field, "manager", key)
			continue
		}
		set[m] = true
	}
	return set
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
