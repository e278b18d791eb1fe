// Package catalog holds the immutable economy reference data: resource chains
// and their tiers, building definitions, the housing table, manager
// definitions and the combination graph. Everything here is pure data and
// pure lookups; nothing in this package mutates.
package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownID is returned when a wire id does not name a catalog entry.
var ErrUnknownID = errors.New("unknown id")

// Chain is a production ladder of resource tiers.
type Chain uint8

const (
	ChainFood Chain = iota
	ChainConstruction
	ChainEnergy
	ChainCulture

	NumChains = 4
)

// TiersPerChain is the number of resource tiers in every chain.
const TiersPerChain = 6

var chainIDs = [NumChains]string{"food", "construction", "energy", "culture"}
var chainNames = [NumChains]string{"Food", "Construction", "Energy", "Culture"}

// AllChains returns every chain in display order.
func AllChains() []Chain {
	return []Chain{ChainFood, ChainConstruction, ChainEnergy, ChainCulture}
}

// String returns the wire id of the chain.
func (c Chain) String() string {
	if int(c) < NumChains {
		return chainIDs[c]
	}
	return fmt.Sprintf("chain(%d)", uint8(c))
}

// Name returns the display name of the chain.
func (c Chain) Name() string {
	if int(c) < NumChains {
		return chainNames[c]
	}
	return "Unknown"
}

// ParseChain maps a wire id to a Chain.
func ParseChain(id string) (Chain, error) {
	for i, s := range chainIDs {
		if s == id {
			return Chain(i), nil
		}
	}
	return 0, fmt.Errorf("chain %q: %w", id, ErrUnknownID)
}

func (c Chain) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Chain) UnmarshalText(b []byte) error {
	v, err := ParseChain(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Resource is one tier of one chain. Values are laid out chain-major so that
// Resource(chain*TiersPerChain + tier) names the tier's resource.
type Resource uint8

const (
	Berries Resource = iota
	Croissants
	Tacos
	ChocolateCake
	SushiPlatter
	NectarOfTheGods

	CoolSticks
	CardboardBoxes
	PowerTools
	Printers3D
	AutonomousBuilders
	NanoBots

	Coal
	AABatteries
	CaffeinatedBeverage
	RadioactiveCores
	LightningInABottle
	PocketBlackHole

	Novels
	ClassicMovies
	DinoBones
	VideoGames
	ArtificialIntelligence
	AlienTech

	NumResources = NumChains * TiersPerChain
)

type resourceInfo struct {
	id   string
	name string
}

var resources = [NumResources]resourceInfo{
	{"berries", "Berries"},
	{"croissants", "Croissants"},
	{"tacos", "Tacos"},
	{"chocolate-cake", "Chocolate Cake"},
	{"sushi-platter", "Sushi Platter"},
	{"nectar-of-the-gods", "Nectar of the Gods"},

	{"cool-sticks", "Cool Sticks"},
	{"cardboard-boxes", "Cardboard Boxes"},
	{"power-tools", "Power Tools"},
	{"3d-printers", "3D Printers"},
	{"autonomous-builders", "Autonomous Builders"},
	{"nano-bots", "Nano Bots"},

	{"coal", "Coal"},
	{"aa-batteries", "AA Batteries"},
	{"caffeinated-beverage", "Caffeinated Beverage"},
	{"radioactive-cores", "Radioactive Cores"},
	{"lightning-in-a-bottle", "Lightning in a Bottle"},
	{"pocket-black-hole", "Pocket Black Hole"},

	{"novels", "Novels"},
	{"classic-movies", "Classic Movies"},
	{"dino-bones", "Dino Bones"},
	{"video-games", "Video Games"},
	{"artificial-intelligence", "Artificial Intelligence"},
	{"alien-tech", "Alien Tech"},
}

// AllResources returns every resource in chain-major order.
func AllResources() []Resource {
	out := make([]Resource, NumResources)
	for i := range out {
		out[i] = Resource(i)
	}
	return out
}

// Valid reports whether r names a catalog resource.
func (r Resource) Valid() bool { return int(r) < NumResources }

// String returns the wire id of the resource.
func (r Resource) String() string {
	if r.Valid() {
		return resources[r].id
	}
	return fmt.Sprintf("resource(%d)", uint8(r))
}

// Name returns the display label of the resource.
func (r Resource) Name() string {
	if r.Valid() {
		return resources[r].name
	}
	return "Unknown"
}

// Chain returns the chain the resource belongs to.
func (r Resource) Chain() Chain { return Chain(int(r) / TiersPerChain) }

// Tier returns the 0-based tier index of the resource within its chain.
func (r Resource) Tier() int { return int(r) % TiersPerChain }

// ParseResource maps a wire id to a Resource.
func ParseResource(id string) (Resource, error) {
	for i := range resources {
		if resources[i].id == id {
			return Resource(i), nil
		}
	}
	return 0, fmt.Errorf("resource %q: %w", id, ErrUnknownID)
}

func (r Resource) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Resource) UnmarshalText(b []byte) error {
	v, err := ParseResource(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// TierResource returns the resource at tierIndex of chain. ok is false when
// chain or tierIndex is out of range.
func TierResource(chain Chain, tierIndex int) (r Resource, ok bool) {
	if int(chain) >= NumChains || tierIndex < 0 || tierIndex >= TiersPerChain {
		return 0, false
	}
	return Resource(int(chain)*TiersPerChain + tierIndex), true
}

// BaseResource returns the chain's tier-0 resource.
func BaseResource(chain Chain) Resource {
	return Resource(int(chain) * TiersPerChain)
}

// ChainTiers returns the chain's resources ordered by tier.
func ChainTiers(chain Chain) []Resource {
	out := make([]Resource, TiersPerChain)
	for i := range out {
		out[i] = BaseResource(chain) + Resource(i)
	}
	return out
}

// StartingResources are the tier-0 resources, always unlocked.
func StartingResources() []Resource {
	out := make([]Resource, 0, NumChains)
	for _, c := range AllChains() {
		out = append(out, BaseResource(c))
	}
	return out
}

// BuiltSet answers whether a building has been built.
type BuiltSet interface {
	IsBuilt(BuildingID) bool
}

// IsResourceUnlocked reports whether r can currently be held: tier-0
// resources always, higher tiers once a built building unlocks them.
func IsResourceUnlocked(r Resource, built BuiltSet) bool {
	if r.Tier() == 0 {
		return true
	}
	for _, b := range buildings {
		if b.Unlocks != nil && *b.Unlocks == r && built.IsBuilt(b.ID) {
			return true
		}
	}
	return false
}

// UnlockedResources lists every resource currently unlocked, in catalog order.
func UnlockedResources(built BuiltSet) []Resource {
	var out []Resource
	for _, r := range AllResources() {
		if IsResourceUnlocked(r, built) {
			out = append(out, r)
		}
	}
	return out
}

// UnlockedTierIndices returns the tier indices of chain that are unlocked.
// Tier 0 is always present.
func UnlockedTierIndices(chain Chain, built BuiltSet) []int {
	out := []int{0}
	for i, r := range ChainTiers(chain)[1:] {
		if IsResourceUnlocked(r, built) {
			out = append(out, i+1)
		}
	}
	return out
}
