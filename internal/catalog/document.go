package catalog

// Document is a serialisable view of the whole catalog, used by the HTTP
// catalog endpoint and the CLI dump.
type Document struct {
	Chains       []ChainDoc           `json:"chains" yaml:"chains"`
	Buildings    []BuildingDoc        `json:"buildings" yaml:"buildings"`
	Managers     []ManagerDoc         `json:"managers" yaml:"managers"`
	Housing      []HousingDoc         `json:"housing" yaml:"housing"`
	Combinations map[string]ManagerID `json:"combinations" yaml:"combinations"`
}

type ChainDoc struct {
	ID    Chain      `json:"id" yaml:"id"`
	Name  string     `json:"name" yaml:"name"`
	Tiers []Resource `json:"tiers" yaml:"tiers"`
}

type BuildingDoc struct {
	ID             BuildingID  `json:"id" yaml:"id"`
	Name           string      `json:"name" yaml:"name"`
	Chain          *Chain      `json:"chain,omitempty" yaml:"chain,omitempty"`
	Cost           Cost        `json:"cost" yaml:"cost"`
	Prerequisite   *BuildingID `json:"prerequisite,omitempty" yaml:"prerequisite,omitempty"`
	Infrastructure bool        `json:"infrastructure,omitempty" yaml:"infrastructure,omitempty"`
	Input          *Resource   `json:"input,omitempty" yaml:"input,omitempty"`
	Output         *Resource   `json:"output,omitempty" yaml:"output,omitempty"`
	Ratio          int         `json:"ratio,omitempty" yaml:"ratio,omitempty"`
}

type ManagerDoc struct {
	ID          ManagerID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Pps         float64   `json:"pps" yaml:"pps"`
	HousingCost int       `json:"housingCost" yaml:"housing_cost"`
	Tier        int       `json:"tier" yaml:"tier"`
	Bio         string    `json:"bio" yaml:"bio"`
	UnlockCost  Cost      `json:"unlockCost,omitempty" yaml:"unlock_cost,omitempty"`
	Starter     bool      `json:"starter,omitempty" yaml:"starter,omitempty"`
}

type HousingDoc struct {
	Level       int    `json:"level" yaml:"level"`
	Name        string `json:"name" yaml:"name"`
	Capacity    int    `json:"capacity" yaml:"capacity"`
	UpgradeCost Cost   `json:"upgradeCost,omitempty" yaml:"upgrade_cost,omitempty"`
}

// Describe builds the catalog document.
func Describe() Document {
	doc := Document{Combinations: Combinations()}

	for _, c := range AllChains() {
		doc.Chains = append(doc.Chains, ChainDoc{ID: c, Name: c.Name(), Tiers: ChainTiers(c)})
	}

	for _, b := range buildings {
		d := BuildingDoc{
			ID:             b.ID,
			Name:           b.Name,
			Cost:           b.Cost,
			Prerequisite:   b.Prerequisite,
			Infrastructure: b.Infrastructure,
		}
		if !b.Standalone {
			chain := b.Chain
			d.Chain = &chain
		}
		if conv := b.Conversion; conv != nil {
			in, out := conv.Input, conv.Output
			d.Input, d.Output, d.Ratio = &in, &out, conv.Ratio
		}
		doc.Buildings = append(doc.Buildings, d)
	}

	starters := make(map[ManagerID]bool)
	for _, id := range StarterManagers {
		starters[id] = true
	}
	for _, id := range AllManagers() {
		m := managers[id]
		doc.Managers = append(doc.Managers, ManagerDoc{
			ID:          id,
			Name:        m.Name,
			Pps:         m.Pps,
			HousingCost: m.HousingCost,
			Tier:        m.Tier,
			Bio:         m.ShortBio,
			UnlockCost:  m.UnlockCost,
			Starter:     starters[id],
		})
	}

	for level := 0; level <= MaxHousingLevel; level++ {
		d := HousingDoc{Level: level, Name: HousingTierName(level), Capacity: HousingCapacityOf(level)}
		if level < MaxHousingLevel {
			d.UpgradeCost = housingUpgradeCosts[level+1]
		}
		doc.Housing = append(doc.Housing, d)
	}
	return doc
}
