package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floodCurve(t *testing.T) *DamageCurve {
	t.Helper()
	c, err := BuiltinCatalog().Select(HazardFloodDepth, AssetGeneric)
	require.NoError(t, err)
	return c
}

func TestNewDamageCurve_Validation(t *testing.T) {
	tests := []struct {
		name string
		def  CurveDefinition
	}{
		{"no hazard", CurveDefinition{Name: "x", Intensity: []float64{0, 1}, Ratio: []float64{0, 1}}},
		{"single point", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0}, Ratio: []float64{0}}},
		{"ratio above one", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1}, Ratio: []float64{0, 1.2}}},
		{"negative ratio", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1}, Ratio: []float64{-0.1, 0.5}}},
		{"NaN ratio", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1}, Ratio: []float64{0, math.NaN()}}},
		{"decreasing ratio", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1, 2}, Ratio: []float64{0, 0.5, 0.4}}},
		{"repeated intensity", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1, 1}, Ratio: []float64{0, 0.5, 0.6}}},
		{"unsorted intensity", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 2, 1}, Ratio: []float64{0, 0.5, 0.6}}},
		{"infinite intensity", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, math.Inf(1)}, Ratio: []float64{0, 1}}},
		{"length mismatch", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1, 2}, Ratio: []float64{0, 1}}},
		{"mdd length mismatch", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1}, MDD: []float64{0}}},
		{"paa length mismatch", CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1}, MDD: []float64{0, 1}, PAA: []float64{1}}},
		{"unknown status", CurveDefinition{Hazard: HazardWind, Status: "draft", Intensity: []float64{0, 1}, Ratio: []float64{0, 1}}},
		{"unknown hazard", CurveDefinition{Hazard: "HAIL", Intensity: []float64{0, 1}, Ratio: []float64{0, 1}}},
		{"unknown asset", CurveDefinition{Hazard: HazardWind, Asset: "SUBMARINE", Intensity: []float64{0, 1}, Ratio: []float64{0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDamageCurve(tt.def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCurve), "got %v", err)
		})
	}
}

func TestNewDamageCurve_Defaults(t *testing.T) {
	c, err := NewDamageCurve(CurveDefinition{Hazard: HazardWind, Intensity: []float64{0, 1}, Ratio: []float64{0, 1}})
	require.NoError(t, err)
	assert.Equal(t, AssetGeneric, c.Asset())
	assert.Equal(t, StatusPlaceholder, c.Status())
}

func TestNewDamageCurve_NormalizesKinds(t *testing.T) {
	c, err := NewDamageCurve(CurveDefinition{Hazard: "rf", Asset: "fpso", Intensity: []float64{0, 1}, Ratio: []float64{0, 1}})
	require.NoError(t, err)
	assert.Equal(t, HazardFloodDepth, c.Hazard())
	assert.Equal(t, AssetFPSO, c.Asset())
}

func TestNewDamageCurve_MDDTimesPAA(t *testing.T) {
	c, err := NewDamageCurve(CurveDefinition{
		Hazard:    HazardWave,
		Intensity: []float64{0, 2, 4},
		MDD:       []float64{0, 0.5, 0.8},
		PAA:       []float64{0, 0.5, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.8}, c.Definition().Ratio)
	assert.InDelta(t, 0.25, c.Evaluate(2), 1e-12)
}

func TestNewDamageCurve_CopiesInput(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 0.5, 1}
	c, err := NewDamageCurve(CurveDefinition{Hazard: HazardWind, Intensity: xs, Ratio: ys})
	require.NoError(t, err)

	xs[1] = 1.9
	ys[1] = 0.9
	assert.Equal(t, 0.5, c.Evaluate(1))

	def := c.Definition()
	def.Ratio[1] = 0.7
	assert.Equal(t, 0.5, c.Evaluate(1))
}

func TestEvaluate(t *testing.T) {
	c := floodCurve(t)

	tests := []struct {
		name      string
		intensity float64
		want      float64
	}{
		{"below range", -1, 0},
		{"first point", 0, 0},
		{"calibration point", 2, 0.60},
		{"between points", 1.5, 0.50},
		{"scaled depth", 2.2, 0.625},
		{"last point", 6, 1.0},
		{"above range", 12, 1.0},
		{"NaN treated as below range", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, c.Evaluate(tt.intensity), 1e-12)
		})
	}
}

func TestEvaluate_ClampsToLastRatioBelowOne(t *testing.T) {
	c := MustDamageCurve(CurveDefinition{
		Hazard:    HazardHeatDelta,
		Intensity: []float64{0, 5},
		Ratio:     []float64{0.1, 0.4},
	})
	assert.Equal(t, 0.1, c.Evaluate(-3))
	assert.Equal(t, 0.4, c.Evaluate(50))
}

func TestEvaluateAll(t *testing.T) {
	c := floodCurve(t)
	got := c.EvaluateAll([]float64{0, 0.5, 1, 2, 4, 6})
	assert.Equal(t, []float64{0, 0.25, 0.40, 0.60, 0.85, 1.00}, got)
	assert.Empty(t, c.EvaluateAll(nil))
}

func TestLegacyStepEquivalence(t *testing.T) {
	cat := BuiltinCatalog()

	wind, err := cat.Select(HazardWind, assetKindUnspecified)
	require.NoError(t, err)
	wave, err := cat.Select(HazardWave, AssetGeneric)
	require.NoError(t, err)

	tests := []struct {
		name      string
		curve     *DamageCurve
		intensity float64
		want      float64
	}{
		{"wind calm", wind, 10, 0.0},
		{"wind attention", wind, LegacyWindAttentionKn, LegacyAttentionRatio},
		{"wind inside attention band", wind, 17.5, LegacyAttentionRatio},
		{"wind stop", wind, LegacyWindStopKn, LegacyStopRatio},
		{"wind storm", wind, 45, LegacyStopRatio},
		{"wave calm", wave, 1.0, 0.0},
		{"wave attention", wave, LegacyWaveAttentionM, LegacyAttentionRatio},
		{"wave inside attention band", wave, 3.0, LegacyAttentionRatio},
		{"wave stop", wave, LegacyWaveStopM, LegacyStopRatio},
		{"wave storm", wave, 9, LegacyStopRatio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.curve.Evaluate(tt.intensity))
		})
	}
}

func TestDescribe(t *testing.T) {
	c := floodCurve(t)
	d := c.Describe()

	assert.Equal(t, 11, d.ID)
	assert.Equal(t, HazardFloodDepth, d.Hazard)
	assert.Equal(t, AssetGeneric, d.Asset)
	assert.Equal(t, StatusCalibrated, d.Status)
	assert.Equal(t, "m", d.Unit)
	assert.Equal(t, 6, d.Points)
	assert.Equal(t, "structural_damage", d.Type)
	assert.False(t, d.Fallback)
}

func TestPoints(t *testing.T) {
	c := floodCurve(t)
	p := c.Points(100)

	require.Len(t, p.FineIntensity, 100)
	require.Len(t, p.FineMDR, 100)
	assert.Equal(t, 0.0, p.FineIntensity[0])
	assert.Equal(t, 6.0, p.FineIntensity[99])
	assert.Equal(t, 1.0, p.FineMDR[99])
	assert.Equal(t, []float64{0, 0.25, 0.40, 0.60, 0.85, 1.00}, p.MDR)

	for i := 1; i < len(p.FineMDR); i++ {
		assert.GreaterOrEqual(t, p.FineMDR[i], p.FineMDR[i-1])
	}

	assert.Len(t, c.Points(1).FineIntensity, 2)
}
