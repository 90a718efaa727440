package world

// Biome is a categorical biome id. The numeric values are stable and part of
// the layer hash.
type Biome uint8

const (
	BiomeWater Biome = iota
	BiomeWetland
	BiomeAlpine
	BiomePolarDesert
	BiomeTundra
	BiomeBorealForest
	BiomeTemperateGrassland
	BiomeMediterranean
	BiomeTemperateForest
	BiomeHotDesert
	BiomeSavanna
	BiomeTropicalSeasonalForest
	BiomeTropicalRainforest
	// BiomeBarren is reserved in the catalog and palette. Classification
	// never assigns it.
	BiomeBarren
	biomeCount
)

var biomeNames = [biomeCount]string{
	"water", "wetland", "alpine", "polar_desert", "tundra", "boreal_forest",
	"temperate_grassland", "mediterranean", "temperate_forest", "hot_desert",
	"savanna", "tropical_seasonal_forest", "tropical_rainforest", "barren",
}

func (b Biome) String() string {
	if b >= biomeCount {
		return "unknown"
	}
	return biomeNames[b]
}

// BiomeCount is the size of the biome catalog.
const BiomeCount = int(biomeCount)

// RiverClass orders channel size by accumulation.
type RiverClass uint8

const (
	RiverNone RiverClass = iota
	RiverStream
	RiverRiver
	RiverMajor
)

func (r RiverClass) String() string {
	switch r {
	case RiverNone:
		return "none"
	case RiverStream:
		return "stream"
	case RiverRiver:
		return "river"
	case RiverMajor:
		return "major_river"
	}
	return "unknown"
}

// WaterClass is the per-cell water mask category.
type WaterClass uint8

const (
	WaterLand WaterClass = iota
	WaterLake
	WaterOcean
	WaterRiver
)

func (w WaterClass) String() string {
	switch w {
	case WaterLand:
		return "land"
	case WaterLake:
		return "lake"
	case WaterOcean:
		return "ocean"
	case WaterRiver:
		return "river"
	}
	return "unknown"
}

// Province is a coarse geologic setting.
type Province uint8

const (
	ProvinceOceanic Province = iota
	ProvinceCraton
	ProvinceOrogen
	ProvinceBasin
	ProvinceVolcanicArc
)

// ProvinceCount is the size of the province catalog.
const ProvinceCount = 5

// Rock is a code from the fixed rock catalog.
type Rock uint8

const (
	RockBasalt Rock = iota
	RockGabbro
	RockGranite
	RockSandstone
	RockLimestone
	RockSchist
	RockGneiss
	RockShale
	RockRhyolite
)

// RockCount is the size of the rock catalog.
const RockCount = 9

// Mineral is the per-cell mineral occurrence code.
type Mineral uint8

const (
	MineralNone Mineral = iota
	MineralIron
	MineralCopper
	MineralGold
	MineralTin
	MineralCoal
	MineralGem
)

// MineralCount includes MineralNone.
const MineralCount = 7

var provinceNames = [ProvinceCount]string{"oceanic", "craton", "orogen", "basin", "volcanic_arc"}

func (p Province) String() string {
	if int(p) >= ProvinceCount {
		return "unknown"
	}
	return provinceNames[p]
}

var rockNames = [RockCount]string{
	"basalt", "gabbro", "granite", "sandstone", "limestone", "schist", "gneiss", "shale", "rhyolite",
}

func (r Rock) String() string {
	if int(r) >= RockCount {
		return "unknown"
	}
	return rockNames[r]
}

var mineralNames = [MineralCount]string{"none", "iron", "copper", "gold", "tin", "coal", "gem"}

func (m Mineral) String() string {
	if int(m) >= MineralCount {
		return "unknown"
	}
	return mineralNames[m]
}
