package config

import (
	"sift/internal/tiers"
)

func buildTierTable(model TierModel) (tiers.Table, error) {
	defs := make([]tiers.Def, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		def, err := tiers.NewDef(tier.ID, tier.Folder, tier.Description, tier.Requires, tier.Flags)
		if err != nil {
			return tiers.Table{}, err
		}
		defs = append(defs, def)
	}
	return tiers.NewTable(defs, model.FallbackTier)
}
