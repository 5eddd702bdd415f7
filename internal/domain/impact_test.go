package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fiveBillion = 5e9

func testExposure(hazards ...HazardKind) ExposurePoint {
	return ExposurePoint{
		ID:       "asset-1",
		Location: Geo{Lat: -22.5, Lon: -43.3},
		Value:    fiveBillion,
		Linkage:  LinkAll(AssetGeneric, hazards...),
	}
}

// singleEventSet places one event on a one-centroid grid at the exposure.
func singleEventSet(kind HazardKind, intensity, returnPeriod float64) *HazardEventSet {
	return &HazardEventSet{
		Kind:      kind,
		Centroids: []Geo{{Lat: -22.5, Lon: -43.3}},
		Events: []HazardEvent{
			{ID: "ev1", ReturnPeriod: returnPeriod, Intensity: map[int]float64{0: intensity}},
		},
	}
}

func selectCurve(t *testing.T, hazard HazardKind) *DamageCurve {
	t.Helper()
	c, err := BuiltinCatalog().Select(hazard, AssetGeneric)
	require.NoError(t, err)
	return c
}

func TestComputeImpacts_FloodAtTwoMetres(t *testing.T) {
	impacts, err := ComputeImpacts(testExposure(HazardFloodDepth), singleEventSet(HazardFloodDepth, 2, 50), selectCurve(t, HazardFloodDepth))
	require.NoError(t, err)
	require.Len(t, impacts, 1)

	ev := impacts[0]
	assert.Equal(t, "ev1", ev.EventID)
	assert.Equal(t, 0.60, ev.Ratio)
	assert.Equal(t, 1.0, ev.Fraction)
	assert.Equal(t, 0.02, ev.Frequency)
	assert.InDelta(t, 3e9, ev.Impact, 1e-3)

	s := Summarize(impacts, fiveBillion)
	assert.InDelta(t, 6e7, s.EAI, 1e-3)
}

func TestComputeImpacts_HeatAtThreeDegrees(t *testing.T) {
	impacts, err := ComputeImpacts(testExposure(HazardHeatDelta), singleEventSet(HazardHeatDelta, 3, 10), selectCurve(t, HazardHeatDelta))
	require.NoError(t, err)
	require.Len(t, impacts, 1)

	assert.InDelta(t, 5e8, impacts[0].Impact, 1e-3)
	assert.InDelta(t, 5e7, Summarize(impacts, fiveBillion).EAI, 1e-3)
}

func TestComputeImpacts_UsesNearestCentroidAndFraction(t *testing.T) {
	set := &HazardEventSet{
		Kind:      HazardFloodDepth,
		Centroids: []Geo{{Lat: -23, Lon: -44}, {Lat: -22.5, Lon: -43.3}},
		Events: []HazardEvent{
			{ID: "a", ReturnPeriod: 10, Intensity: map[int]float64{0: 6, 1: 1}, Fraction: map[int]float64{1: 0.5}},
			{ID: "b", ReturnPeriod: 100, Intensity: map[int]float64{0: 6}},
		},
	}

	impacts, err := ComputeImpacts(testExposure(HazardFloodDepth), set, selectCurve(t, HazardFloodDepth))
	require.NoError(t, err)
	require.Len(t, impacts, 2)

	assert.Equal(t, 1, impacts[0].Centroid)
	assert.Equal(t, 1.0, impacts[0].Intensity)
	assert.InDelta(t, fiveBillion*0.40*0.5, impacts[0].Impact, 1e-3)

	// Event b never reaches the asset's centroid.
	assert.Equal(t, 0.0, impacts[1].Intensity)
	assert.Equal(t, 0.0, impacts[1].Impact)
}

func TestComputeImpacts_Errors(t *testing.T) {
	flood := selectCurve(t, HazardFloodDepth)

	t.Run("negative intensity", func(t *testing.T) {
		_, err := ComputeImpacts(testExposure(HazardFloodDepth), singleEventSet(HazardFloodDepth, -1, 10), flood)
		assert.True(t, errors.Is(err, ErrInvalidHazardData))
	})

	t.Run("NaN intensity", func(t *testing.T) {
		_, err := ComputeImpacts(testExposure(HazardFloodDepth), singleEventSet(HazardFloodDepth, math.NaN(), 10), flood)
		assert.True(t, errors.Is(err, ErrInvalidHazardData))
	})

	t.Run("curve for another hazard", func(t *testing.T) {
		_, err := ComputeImpacts(testExposure(HazardHeatDelta), singleEventSet(HazardHeatDelta, 3, 10), flood)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("negative value", func(t *testing.T) {
		exp := testExposure(HazardFloodDepth)
		exp.Value = -1
		_, err := ComputeImpacts(exp, singleEventSet(HazardFloodDepth, 1, 10), flood)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("nil inputs", func(t *testing.T) {
		_, err := ComputeImpacts(testExposure(), nil, flood)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})
}

func TestComputeImpacts_Idempotent(t *testing.T) {
	exp := testExposure(HazardFloodDepth)
	set := SyntheticHazards(exp.Location)[0]
	curve := selectCurve(t, HazardFloodDepth)

	first, err := ComputeImpacts(exp, &set, curve)
	require.NoError(t, err)
	second, err := ComputeImpacts(exp, &set, curve)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Summarize(first, exp.Value), Summarize(second, exp.Value))
}

func TestExposurePoint_AssetKindFor(t *testing.T) {
	exp := ExposurePoint{
		ID:      "a",
		Linkage: map[HazardKind]AssetKind{HazardWind: AssetFPSO, HazardWave: ""},
	}

	kind, err := exp.AssetKindFor(HazardWind)
	require.NoError(t, err)
	assert.Equal(t, AssetFPSO, kind)

	kind, err = exp.AssetKindFor(HazardWave)
	require.NoError(t, err)
	assert.Equal(t, AssetGeneric, kind)

	_, err = exp.AssetKindFor(HazardFloodDepth)
	assert.True(t, errors.Is(err, ErrConfiguration))

	assert.Equal(t, []HazardKind{HazardWind, HazardWave}, exp.LinkedHazards())
}
