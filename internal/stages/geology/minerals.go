package geology

import "worldgen/internal/world"

// ore describes how one mineral is scored.
type ore struct {
	mineral   world.Mineral
	threshold float64
	hosts     []world.Rock
	host      float64
	provinces []world.Province
	province  float64
	// band is the relative elevation range (height above sea) that earns
	// the band bonus.
	bandLo, bandHi float64
	band           float64
}

// ores is in catalog order.
var ores = []ore{
	{world.MineralIron, 0.72, []world.Rock{world.RockBasalt, world.RockGabbro}, 0.16,
		[]world.Province{world.ProvinceOceanic, world.ProvinceVolcanicArc}, 0.12, -1, 0.1, 0.04},
	{world.MineralCopper, 0.78, []world.Rock{world.RockRhyolite, world.RockBasalt}, 0.18,
		[]world.Province{world.ProvinceVolcanicArc}, 0.13, 0.15, 0.4, 0.05},
	{world.MineralGold, 0.9, []world.Rock{world.RockSchist, world.RockGneiss}, 0.17,
		[]world.Province{world.ProvinceOrogen}, 0.14, 0.2, 1, 0.06},
	{world.MineralTin, 0.82, []world.Rock{world.RockGranite}, 0.14,
		[]world.Province{world.ProvinceCraton}, 0.1, 0.07, 0.25, 0.04},
	{world.MineralCoal, 0.74, []world.Rock{world.RockShale, world.RockSandstone}, 0.2,
		[]world.Province{world.ProvinceBasin}, 0.16, 0, 0.12, 0.08},
	{world.MineralGem, 0.94, []world.Rock{world.RockSchist, world.RockGneiss, world.RockRhyolite}, 0.12,
		[]world.Province{world.ProvinceOrogen}, 0.1, 0.3, 1, 0.05},
}

// depthWeight scales the host bonus for the top three strata.
var depthWeight = [3]float64{1, 0.6, 0.3}

// PickMineral scores every mineral and returns the one with the largest
// positive margin over its threshold, or MineralNone. Ties keep the earlier
// catalog entry. relElev is elevation minus sea level.
func PickMineral(stack []world.Stratum, prov world.Province, relElev, richness float64, sample func(world.Mineral) float64) world.Mineral {
	best, bestMargin := world.MineralNone, 0.0
	for _, o := range ores {
		score := sample(o.mineral) + o.hostBonus(stack) + o.provinceBonus(prov)
		if relElev >= o.bandLo && relElev <= o.bandHi {
			score += o.band
		}
		score = min(max(score, 0), 1)
		margin := score - (o.threshold - richness*0.25)
		if margin > bestMargin {
			best, bestMargin = o.mineral, margin
		}
	}
	return best
}

func (o ore) hostBonus(stack []world.Stratum) float64 {
	for l := 0; l < len(stack) && l < len(depthWeight); l++ {
		for _, r := range o.hosts {
			if stack[l].Rock == r {
				return o.host * depthWeight[l]
			}
		}
	}
	return 0
}

func (o ore) provinceBonus(p world.Province) float64 {
	for _, q := range o.provinces {
		if q == p {
			return o.province
		}
	}
	return 0
}
