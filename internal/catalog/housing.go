package catalog

// Housing limits how many housed managers can be unlocked. Capacity is
// chains × capacityOf(level).
const (
	MaxHousingLevel  = 7
	MaxHousingChains = 4
)

var housingTierNames = [MaxHousingLevel + 1]string{
	"None", "Tent", "House", "Duplex", "Hotel", "Apartment Complex", "Floating City", "Space Station",
}

var housingTierCapacity = [MaxHousingLevel + 1]int{0, 1, 2, 4, 8, 16, 32, 64}

// housingUpgradeCosts[n] is the base cost of reaching level n.
var housingUpgradeCosts = [MaxHousingLevel + 1]Cost{
	{},
	{Berries: 100, CoolSticks: 100},
	{Berries: 250, CoolSticks: 250, Coal: 100, Novels: 100},
	{Croissants: 100, CardboardBoxes: 100, AABatteries: 100, ClassicMovies: 100},
	{Tacos: 50, PowerTools: 50, CaffeinatedBeverage: 50, DinoBones: 50},
	{ChocolateCake: 25, Printers3D: 25, RadioactiveCores: 25, VideoGames: 25},
	{SushiPlatter: 10, AutonomousBuilders: 10, LightningInABottle: 10, ArtificialIntelligence: 10},
	{NectarOfTheGods: 5, NanoBots: 5, PocketBlackHole: 5, AlienTech: 5},
}

// HousingCapacityOf returns the per-chain capacity of a housing level.
func HousingCapacityOf(level int) int {
	if level < 0 || level > MaxHousingLevel {
		return 0
	}
	return housingTierCapacity[level]
}

// HousingCapacity returns the total capacity for the given level and chains.
func HousingCapacity(level, chains int) int {
	return chains * HousingCapacityOf(level)
}

// HousingTierName returns the display name of a housing level.
func HousingTierName(level int) string {
	if level < 0 || level > MaxHousingLevel {
		return "Unknown"
	}
	return housingTierNames[level]
}

// HousingUpgradeCost returns the cost of raising the housing level by one.
// The base cost is multiplied by max(1, chains). ok is false when level is
// already at the maximum: there is no further upgrade.
func HousingUpgradeCost(level, chains int) (cost Cost, ok bool) {
	next := level + 1
	if level < 0 || next > MaxHousingLevel {
		return nil, false
	}
	return housingUpgradeCosts[next].Scale(float64(max(1, chains))), true
}

// HousingChainCost returns the cost of adding one housing chain: the upgrade
// cost of the current level, or of level 1 when level is 0.
func HousingChainCost(level int) (cost Cost, ok bool) {
	if level == 0 {
		level = 1
	}
	if level < 0 || level > MaxHousingLevel {
		return nil, false
	}
	return housingUpgradeCosts[level].Scale(1), true
}
