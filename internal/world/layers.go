package world

// LayerName identifies one field of a world.
type LayerName string

const (
	LayerBaseElevation LayerName = "base_elevation"
	LayerFilled        LayerName = "filled_elevation"

	LayerElevation     LayerName = "elevation"
	LayerTemperature   LayerName = "temperature"
	LayerRainfall      LayerName = "rainfall"
	LayerPressure      LayerName = "pressure"
	LayerWindU         LayerName = "wind_u"
	LayerWindV         LayerName = "wind_v"
	LayerFlowDirection LayerName = "flow_direction"
	LayerAccumulation  LayerName = "accumulation"
	LayerFertility     LayerName = "fertility"
	LayerBiome         LayerName = "biome"
	LayerWaterMask     LayerName = "water_mask"
	LayerRiverClass    LayerName = "river_class"
	LayerLakeID        LayerName = "lake_id"
	LayerProvince      LayerName = "geologic_province"
	LayerRockType      LayerName = "rock_type"
	LayerStrata        LayerName = "strata"
	LayerMineral       LayerName = "mineral"
)

// FinalLayers is the declared order in which finalized layers enter the
// world checksum. Working copies (base and filled elevation) are hashed per
// stage but are not part of the finished world.
var FinalLayers = []LayerName{
	LayerElevation,
	LayerTemperature,
	LayerRainfall,
	LayerPressure,
	LayerWindU,
	LayerWindV,
	LayerFlowDirection,
	LayerAccumulation,
	LayerFertility,
	LayerBiome,
	LayerWaterMask,
	LayerRiverClass,
	LayerLakeID,
	LayerProvince,
	LayerRockType,
	LayerStrata,
	LayerMineral,
}

// IsFinal reports whether name belongs to the finished world.
func IsFinal(name LayerName) bool {
	for _, n := range FinalLayers {
		if n == name {
			return true
		}
	}
	return false
}
