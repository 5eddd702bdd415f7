package domain

import "fmt"

// Synthetic grid geometry.
const (
	SyntheticGridSize    = 5
	SyntheticGridSpacing = 0.05 // degrees
	HeatThresholdC       = 35.0
)

// ReturnPeriodIntensity is one row of a synthetic return-period table.
type ReturnPeriodIntensity struct {
	ReturnPeriod float64
	Intensity    float64
}

// SyntheticFloodTable is the river flood depth (m) by return period.
var SyntheticFloodTable = []ReturnPeriodIntensity{
	{2, 0.3}, {5, 0.8}, {10, 1.5}, {25, 2.5}, {50, 3.2}, {100, 3.8},
}

// SyntheticHeatTable is the heat wave excess over HeatThresholdC (deg C) by
// return period.
var SyntheticHeatTable = []ReturnPeriodIntensity{
	{2, 1.0}, {5, 2.5}, {10, 4.0}, {25, 5.8}, {50, 7.0}, {100, 8.2},
}

// SyntheticGrid returns a SyntheticGridSize x SyntheticGridSize grid centred
// on p, row-major by latitude then longitude.
func SyntheticGrid(p Geo) []Geo {
	half := SyntheticGridSize / 2
	out := make([]Geo, 0, SyntheticGridSize*SyntheticGridSize)
	for i := 0; i < SyntheticGridSize; i++ {
		for j := 0; j < SyntheticGridSize; j++ {
			out = append(out, Geo{
				Lat: p.Lat + float64(i-half)*SyntheticGridSpacing,
				Lon: p.Lon + float64(j-half)*SyntheticGridSpacing,
			})
		}
	}
	return out
}

// SyntheticEventSet builds a uniform event set from a return-period table:
// every centroid of the grid gets the tabulated intensity with fraction 1.
func SyntheticEventSet(kind HazardKind, units string, grid []Geo, table []ReturnPeriodIntensity) HazardEventSet {
	set := HazardEventSet{
		Kind:      kind,
		Units:     units,
		Centroids: append([]Geo(nil), grid...),
		Events:    make([]HazardEvent, len(table)),
	}
	for i, row := range table {
		intensity := make(map[int]float64, len(grid))
		for c := range grid {
			intensity[c] = row.Intensity
		}
		set.Events[i] = HazardEvent{
			ID:           fmt.Sprintf("%s_RP%g", kind.Code(), row.ReturnPeriod),
			ReturnPeriod: row.ReturnPeriod,
			Intensity:    intensity,
		}
	}
	return set
}

// SyntheticHazards returns the deterministic flood and heat sets for an
// asset location.
func SyntheticHazards(p Geo) []HazardEventSet {
	grid := SyntheticGrid(p)
	return []HazardEventSet{
		SyntheticEventSet(HazardFloodDepth, "m", grid, SyntheticFloodTable),
		SyntheticEventSet(HazardHeatDelta, "deg_C above threshold", grid, SyntheticHeatTable),
	}
}
