package catalog

import (
	"fmt"
	"sort"
)

// Cost is a partial inventory: the quantity of each resource required.
type Cost map[Resource]float64

// Resources returns the cost's resources in catalog order.
func (c Cost) Resources() []Resource {
	out := make([]Resource, 0, len(c))
	for r := range c {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Scale returns a copy of the cost with every amount multiplied by k.
func (c Cost) Scale(k float64) Cost {
	out := make(Cost, len(c))
	for r, v := range c {
		out[r] = v * k
	}
	return out
}

// BuildingID identifies a building definition.
type BuildingID uint8

const (
	// Food chain
	Bakery BuildingID = iota
	FoodTruck
	ChocolateFactory
	BoatDock
	PirateShip
	DivineGarden
	ForbiddenTree

	// Construction chain
	TreeFort
	HardwareStore
	FabricationLab
	TechInstitute
	RobotFightClub
	SecretLab
	NanoControlTower

	// Energy chain
	ElectronicsStore
	CoffeeShop
	NuclearReactor
	WizardTower
	LightningRod
	RingOfStones
	DimensionalPortal

	// Culture chain
	CultureLibrary
	MovieTheater
	Museum
	NerdStore
	DataCenter
	SpaceCenter
	RocketShip

	// Standalone
	Zoo
	HauntedHouse
	Greenhouse
	TrainStation
	Airport

	NumBuildings
)

// Conversion describes a converter building: Ratio units of Input make one
// unit of Output.
type Conversion struct {
	Input  Resource
	Output Resource
	Ratio  int
}

// Building is a static building definition. Standalone buildings carry no
// chain; Chain is only meaningful when Standalone is false.
type Building struct {
	ID             BuildingID
	Key            string
	Name           string
	Chain          Chain
	Cost           Cost
	Prerequisite   *BuildingID
	Infrastructure bool
	Standalone     bool
	Conversion     *Conversion
	Unlocks        *Resource
}

func bid(b BuildingID) *BuildingID { return &b }
func rid(r Resource) *Resource     { return &r }

func converter(id BuildingID, key, name string, chain Chain, cost Cost, prereq *BuildingID, in, out Resource, ratio int) Building {
	return Building{
		ID: id, Key: key, Name: name, Chain: chain, Cost: cost, Prerequisite: prereq,
		Conversion: &Conversion{Input: in, Output: out, Ratio: ratio},
		Unlocks:    rid(out),
	}
}

func infrastructure(id BuildingID, key, name string, chain Chain, cost Cost, prereq BuildingID) Building {
	return Building{
		ID: id, Key: key, Name: name, Chain: chain, Cost: cost,
		Prerequisite: bid(prereq), Infrastructure: true,
	}
}

func standalone(id BuildingID, key, name string, cost Cost) Building {
	return Building{ID: id, Key: key, Name: name, Cost: cost, Standalone: true}
}

// buildings is indexed by BuildingID.
var buildings = [NumBuildings]Building{
	// ── Food ─────────────────────────────────────────────────────────
	converter(Bakery, "bakery", "Bakery", ChainFood,
		Cost{CoolSticks: 300, Berries: 100}, nil, Berries, Croissants, 1000),
	converter(FoodTruck, "food-truck", "Food Truck", ChainFood,
		Cost{Croissants: 200, CardboardBoxes: 100, AABatteries: 50}, bid(Bakery), Croissants, Tacos, 2500),
	converter(ChocolateFactory, "chocolate-factory", "Chocolate Factory", ChainFood,
		Cost{Tacos: 150, PowerTools: 100, ClassicMovies: 50}, bid(FoodTruck), Tacos, ChocolateCake, 5000),
	infrastructure(BoatDock, "boat-dock", "Boat Dock", ChainFood,
		Cost{ChocolateCake: 100, Printers3D: 75, RadioactiveCores: 50}, ChocolateFactory),
	converter(PirateShip, "pirate-ship", "Pirate Ship", ChainFood,
		Cost{ChocolateCake: 150, Printers3D: 100, VideoGames: 50}, bid(BoatDock), ChocolateCake, SushiPlatter, 10000),
	infrastructure(DivineGarden, "divine-garden", "Divine Garden", ChainFood,
		Cost{SushiPlatter: 75, AutonomousBuilders: 50, ArtificialIntelligence: 50}, PirateShip),
	converter(ForbiddenTree, "forbidden-tree", "Forbidden Tree", ChainFood,
		Cost{SushiPlatter: 100, LightningInABottle: 50, AlienTech: 25}, bid(DivineGarden), SushiPlatter, NectarOfTheGods, 25000),

	// ── Construction ─────────────────────────────────────────────────
	converter(TreeFort, "tree-fort", "Tree Fort", ChainConstruction,
		Cost{CoolSticks: 300, Berries: 100}, nil, CoolSticks, CardboardBoxes, 1000),
	converter(HardwareStore, "hardware-store", "Hardware Store", ChainConstruction,
		Cost{CardboardBoxes: 200, Croissants: 100, AABatteries: 50}, bid(TreeFort), CardboardBoxes, PowerTools, 2500),
	converter(FabricationLab, "fabrication-lab", "Fabrication Lab", ChainConstruction,
		Cost{PowerTools: 150, Tacos: 100, ClassicMovies: 50}, bid(HardwareStore), PowerTools, Printers3D, 5000),
	infrastructure(TechInstitute, "tech-institute", "Tech Institute", ChainConstruction,
		Cost{Printers3D: 100, ChocolateCake: 75, RadioactiveCores: 50}, FabricationLab),
	converter(RobotFightClub, "robot-fight-club", "Robot Fight Club", ChainConstruction,
		Cost{Printers3D: 150, ChocolateCake: 100, VideoGames: 50}, bid(TechInstitute), Printers3D, AutonomousBuilders, 10000),
	infrastructure(SecretLab, "secret-lab", "Secret Lab", ChainConstruction,
		Cost{AutonomousBuilders: 75, SushiPlatter: 50, ArtificialIntelligence: 50}, RobotFightClub),
	converter(NanoControlTower, "nano-control-tower", "Nano Control Tower", ChainConstruction,
		Cost{AutonomousBuilders: 100, LightningInABottle: 50, AlienTech: 25}, bid(SecretLab), AutonomousBuilders, NanoBots, 25000),

	// ── Energy ───────────────────────────────────────────────────────
	converter(ElectronicsStore, "electronics-store", "Electronics Store", ChainEnergy,
		Cost{Coal: 300, CoolSticks: 100}, nil, Coal, AABatteries, 1000),
	converter(CoffeeShop, "coffee-shop", "Coffee Shop", ChainEnergy,
		Cost{AABatteries: 200, Croissants: 100, CardboardBoxes: 50}, bid(ElectronicsStore), AABatteries, CaffeinatedBeverage, 2500),
	converter(NuclearReactor, "nuclear-reactor", "Nuclear Reactor", ChainEnergy,
		Cost{CaffeinatedBeverage: 150, Tacos: 100, ClassicMovies: 50}, bid(CoffeeShop), CaffeinatedBeverage, RadioactiveCores, 5000),
	infrastructure(WizardTower, "wizard-tower", "Wizard Tower", ChainEnergy,
		Cost{RadioactiveCores: 100, ChocolateCake: 75, Printers3D: 50}, NuclearReactor),
	converter(LightningRod, "lightning-rod", "Lightning Rod", ChainEnergy,
		Cost{RadioactiveCores: 150, ChocolateCake: 100, VideoGames: 50}, bid(WizardTower), RadioactiveCores, LightningInABottle, 10000),
	infrastructure(RingOfStones, "ring-of-stones", "Ring of Stones", ChainEnergy,
		Cost{LightningInABottle: 75, SushiPlatter: 50, ArtificialIntelligence: 50}, LightningRod),
	converter(DimensionalPortal, "dimensional-portal", "Dimensional Portal", ChainEnergy,
		Cost{LightningInABottle: 100, AutonomousBuilders: 50, AlienTech: 25}, bid(RingOfStones), LightningInABottle, PocketBlackHole, 25000),

	// ── Culture ──────────────────────────────────────────────────────
	converter(CultureLibrary, "culture-library", "Library", ChainCulture,
		Cost{Novels: 300, CoolSticks: 100}, nil, Novels, ClassicMovies, 1000),
	converter(MovieTheater, "movie-theater", "Movie Theater", ChainCulture,
		Cost{ClassicMovies: 200, Croissants: 100, CardboardBoxes: 50}, bid(CultureLibrary), ClassicMovies, DinoBones, 2500),
	converter(Museum, "museum", "Museum", ChainCulture,
		Cost{DinoBones: 150, Tacos: 100, AABatteries: 50}, bid(MovieTheater), DinoBones, VideoGames, 5000),
	infrastructure(NerdStore, "nerd-store", "Nerd Store", ChainCulture,
		Cost{VideoGames: 100, ChocolateCake: 75, PowerTools: 50}, Museum),
	converter(DataCenter, "data-center", "Data Center", ChainCulture,
		Cost{VideoGames: 150, ChocolateCake: 100, RadioactiveCores: 50}, bid(NerdStore), VideoGames, ArtificialIntelligence, 10000),
	infrastructure(SpaceCenter, "space-center", "Space Center", ChainCulture,
		Cost{ArtificialIntelligence: 75, SushiPlatter: 50, AutonomousBuilders: 50}, DataCenter),
	converter(RocketShip, "rocket-ship", "Rocket Ship", ChainCulture,
		Cost{ArtificialIntelligence: 100, LightningInABottle: 50, PocketBlackHole: 25}, bid(SpaceCenter), ArtificialIntelligence, AlienTech, 25000),

	// ── Standalone ───────────────────────────────────────────────────
	standalone(Zoo, "zoo", "Zoo", Cost{Tacos: 200, PowerTools: 200, DinoBones: 100}),
	standalone(HauntedHouse, "haunted-house", "Haunted House", Cost{Tacos: 200, CaffeinatedBeverage: 200, DinoBones: 100}),
	standalone(Greenhouse, "greenhouse", "Greenhouse", Cost{Tacos: 200, PowerTools: 200, CaffeinatedBeverage: 100}),
	standalone(TrainStation, "train-station", "Train Station", Cost{ChocolateCake: 200, Printers3D: 200, RadioactiveCores: 100}),
	standalone(Airport, "airport", "Airport", Cost{ChocolateCake: 500, Printers3D: 500, RadioactiveCores: 200}),
}

// Valid reports whether b names a catalog building.
func (b BuildingID) Valid() bool { return b < NumBuildings }

// String returns the wire id of the building.
func (b BuildingID) String() string {
	if b.Valid() {
		return buildings[b].Key
	}
	return fmt.Sprintf("building(%d)", uint8(b))
}

// ParseBuilding maps a wire id to a BuildingID.
func ParseBuilding(id string) (BuildingID, error) {
	for i := range buildings {
		if buildings[i].Key == id {
			return BuildingID(i), nil
		}
	}
	return 0, fmt.Errorf("building %q: %w", id, ErrUnknownID)
}

func (b BuildingID) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BuildingID) UnmarshalText(text []byte) error {
	v, err := ParseBuilding(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// GetBuilding returns the definition for id.
func GetBuilding(id BuildingID) Building {
	return buildings[id]
}

// AllBuildings returns every building definition in catalog order.
func AllBuildings() []Building {
	out := make([]Building, NumBuildings)
	copy(out, buildings[:])
	return out
}

// BuildingsForChain returns the chain's buildings in progression order.
func BuildingsForChain(chain Chain) []Building {
	var out []Building
	for _, b := range buildings {
		if !b.Standalone && b.Chain == chain {
			out = append(out, b)
		}
	}
	return out
}

// StandaloneBuildings returns buildings that belong to no chain.
func StandaloneBuildings() []Building {
	var out []Building
	for _, b := range buildings {
		if b.Standalone {
			out = append(out, b)
		}
	}
	return out
}

// ConverterBuildings returns every building with a conversion pair.
func ConverterBuildings() []Building {
	var out []Building
	for _, b := range buildings {
		if b.Conversion != nil {
			out = append(out, b)
		}
	}
	return out
}

// ConverterFor returns the building whose conversion output is r.
func ConverterFor(r Resource) (Building, bool) {
	for _, b := range buildings {
		if b.Conversion != nil && b.Conversion.Output == r {
			return b, true
		}
	}
	return Building{}, false
}

// PrerequisiteSatisfied reports whether b's prerequisite is absent or built.
func PrerequisiteSatisfied(b Building, built BuiltSet) bool {
	return b.Prerequisite == nil || built.IsBuilt(*b.Prerequisite)
}
