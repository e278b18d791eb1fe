package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ManagerID identifies a manager (character). NoManager marks an empty slot.
type ManagerID uint8

const (
	NoManager ManagerID = iota
	Gatherer
	Builder
	Curious
	Strange
	Farmer
	Fisher
	Hunter
	Toolmaker
	Scholar
	Engineer

	numManagerIDs
)

// MaxManagerLevel is the level cap for every manager.
const MaxManagerLevel = 100

// Manager is a static manager definition.
type Manager struct {
	ID          ManagerID
	Key         string
	Name        string
	Pps         float64
	HousingCost int
	Tier        int
	ShortBio    string
	UnlockCost  Cost
}

var managers = map[ManagerID]Manager{
	Gatherer: {Gatherer, "gatherer", "Gatherer", 0.2, 0, 0,
		"Picks up random things and insists they might be useful later. Usually right.", Cost{}},
	Builder: {Builder, "builder", "Builder", 0.2, 0, 0,
		"Can turn a pile of junk into a slightly more organized pile of junk.", Cost{}},
	Curious: {Curious, "curious", "Curious", 0.2, 0, 0,
		"Has pressed every button labeled \"Do Not Press.\"", Cost{}},
	Strange: {Strange, "strange", "Strange", 0.2, 0, 0,
		"Nobody knows where they came from. Not even them.", Cost{}},
	Farmer: {Farmer, "farmer", "Farmer", 0.25, 1, 1,
		"Accidentally invented agriculture by dropping food and forgetting about it.", Cost{CoolSticks: 50, Berries: 25}},
	Fisher: {Fisher, "fisher", "Fisher", 0.25, 1, 1,
		"Stares at water for hours. Calls it \"productive.\"", Cost{CoolSticks: 50, Berries: 25}},
	Hunter: {Hunter, "hunter", "Hunter", 0.3, 1, 1,
		"Tracks creatures using instinct, patience, and questionable guesses.", Cost{CoolSticks: 60, Berries: 30}},
	Toolmaker: {Toolmaker, "toolmaker", "Toolmaker", 0.3, 1, 1,
		"Solves problems by making new problems that solve old problems.", Cost{CardboardBoxes: 75}},
	Scholar: {Scholar, "scholar", "Scholar", 0.35, 1, 2,
		"Knows many things. Rarely useful things, but still impressive.", Cost{Novels: 75}},
	Engineer: {Engineer, "engineer", "Engineer", 0.4, 1, 2,
		"Can fix anything. May leave behind extra screws.", Cost{PowerTools: 50}},
}

// StarterManagers are discovered and unlocked in a fresh game.
var StarterManagers = []ManagerID{Gatherer, Builder, Curious, Strange}

// AllManagers returns every manager id in catalog order.
func AllManagers() []ManagerID {
	out := make([]ManagerID, 0, len(managers))
	for id := Gatherer; id < numManagerIDs; id++ {
		out = append(out, id)
	}
	return out
}

// Valid reports whether m names a catalog manager.
func (m ManagerID) Valid() bool { return m > NoManager && m < numManagerIDs }

// String returns the wire id of the manager.
func (m ManagerID) String() string {
	if m.Valid() {
		return managers[m].Key
	}
	if m == NoManager {
		return ""
	}
	return fmt.Sprintf("manager(%d)", uint8(m))
}

// ParseManager maps a wire id to a ManagerID.
func ParseManager(id string) (ManagerID, error) {
	for mid, def := range managers {
		if def.Key == id {
			return mid, nil
		}
	}
	return NoManager, fmt.Errorf("manager %q: %w", id, ErrUnknownID)
}

func (m ManagerID) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ManagerID) UnmarshalText(b []byte) error {
	v, err := ParseManager(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// GetManager returns the definition for id.
func GetManager(id ManagerID) (Manager, bool) {
	def, ok := managers[id]
	return def, ok
}

// ManagerUnlockCost returns the cost of unlocking a discovered manager.
func ManagerUnlockCost(id ManagerID) Cost {
	return managers[id].UnlockCost
}

// SortManagers sorts ids by wire id, the order snapshots persist them in.
func SortManagers(ids []ManagerID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

// ── Leveling ─────────────────────────────────────────────────────────

// LevelUpResource returns the resource a manager of the given tier spends to
// level up.
func LevelUpResource(tier int) Resource {
	switch tier {
	case 1:
		return Croissants
	case 2:
		return Tacos
	default:
		return Berries
	}
}

// LevelUpCost returns the cost of going from currentLevel to currentLevel+1:
// floor(50 × 1.15^level) of the tier's level-up resource.
func LevelUpCost(currentLevel, tier int) Cost {
	amount := math.Floor(50 * math.Pow(1.15, float64(currentLevel)))
	return Cost{LevelUpResource(tier): amount}
}

// tierBonus steps up at levels 25, 50, 75 and 100.
func tierBonus(level int) float64 {
	switch {
	case level >= 100:
		return 3.0
	case level >= 75:
		return 2.0
	case level >= 50:
		return 1.5
	case level >= 25:
		return 1.25
	default:
		return 1.0
	}
}

// EffectiveMultiplier is (1 + 0.02×level) × tierBonus(level).
func EffectiveMultiplier(level int) float64 {
	return (1 + float64(level)*0.02) * tierBonus(level)
}

// EffectivePps returns a manager's production per second at level.
func EffectivePps(id ManagerID, level int) float64 {
	def, ok := managers[id]
	if !ok {
		return 0
	}
	return def.Pps * EffectiveMultiplier(level)
}

// LevelTierName returns the level band: default, bronze, silver, gold or
// legendary.
func LevelTierName(level int) string {
	switch {
	case level >= 100:
		return "legendary"
	case level >= 75:
		return "gold"
	case level >= 50:
		return "silver"
	case level >= 25:
		return "bronze"
	default:
		return "default"
	}
}

// NextTierThreshold returns the level at which the next band starts.
func NextTierThreshold(level int) int {
	switch {
	case level < 25:
		return 25
	case level < 50:
		return 50
	case level < 75:
		return 75
	default:
		return 100
	}
}

// ── Combination graph ────────────────────────────────────────────────

// CombinationKey is the order-independent key of a manager pair.
func CombinationKey(a, b ManagerID) string {
	pair := []string{a.String(), b.String()}
	sort.Strings(pair)
	return strings.Join(pair, "+")
}

var combinations = map[string]ManagerID{
	CombinationKey(Gatherer, Gatherer): Farmer,
	CombinationKey(Gatherer, Builder):  Fisher,
	CombinationKey(Gatherer, Strange):  Hunter,
	CombinationKey(Builder, Farmer):    Toolmaker,
	CombinationKey(Curious, Farmer):    Scholar,
	CombinationKey(Builder, Toolmaker): Engineer,
}

// Combine returns the manager produced by combining a and b, if any.
func Combine(a, b ManagerID) (ManagerID, bool) {
	result, ok := combinations[CombinationKey(a, b)]
	return result, ok
}

// Combinations returns a copy of the combination graph keyed by pair key.
func Combinations() map[string]ManagerID {
	out := make(map[string]ManagerID, len(combinations))
	for k, v := range combinations {
		out[k] = v
	}
	return out
}
