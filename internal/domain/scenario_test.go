package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_MultiplicativeFlood(t *testing.T) {
	baseline := singleEventSet(HazardFloodDepth, 2, 50)

	future, err := Project(baseline, HazardFloodDepth, Multiplicative(1.10))
	require.NoError(t, err)

	assert.InDelta(t, 2.2, future.Events[0].Intensity[0], 1e-12)
	assert.InDelta(t, 0.625, selectCurve(t, HazardFloodDepth).Evaluate(future.Events[0].Intensity[0]), 1e-12)

	// Baseline untouched, identity and frequency preserved.
	assert.Equal(t, 2.0, baseline.Events[0].Intensity[0])
	assert.Equal(t, baseline.Events[0].ID, future.Events[0].ID)
	assert.Equal(t, baseline.Events[0].AnnualFrequency(), future.Events[0].AnnualFrequency())
}

func TestProject_AdditiveHeat(t *testing.T) {
	baseline := validSet()
	baseline.Kind = HazardHeatDelta

	future, err := Project(&baseline, HazardHeatDelta, Additive(1.5))
	require.NoError(t, err)

	assert.Equal(t, 3.0, future.Events[0].Intensity[0])
	assert.Equal(t, 3.5, future.Events[1].Intensity[0])
	assert.Equal(t, 2.0, future.Events[1].Intensity[1])
	// Unreached centroids stay unreached.
	_, reached := future.Events[0].Intensity[1]
	assert.False(t, reached)
	assert.Equal(t, 0.5, future.Events[1].Fraction[1])
	assert.Equal(t, 1.5, baseline.Events[0].Intensity[0])
}

func TestProject_FloorsAtZero(t *testing.T) {
	future, err := Project(singleEventSet(HazardHeatDelta, 1, 10), HazardHeatDelta, Additive(-3))
	require.NoError(t, err)
	assert.Equal(t, 0.0, future.Events[0].Intensity[0])
}

func TestProject_Errors(t *testing.T) {
	_, err := Project(nil, HazardFloodDepth, Multiplicative(1))
	assert.True(t, errors.Is(err, ErrInvalidHazardData))

	_, err = Project(singleEventSet(HazardFloodDepth, 1, 10), HazardHeatDelta, Additive(1))
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Project(singleEventSet(HazardFloodDepth, 1, 10), HazardFloodDepth, Multiplicative(-1))
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Project(singleEventSet(HazardFloodDepth, 1, 10), HazardFloodDepth, ScalingRule{Mode: "EXPONENTIAL", Value: 2})
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestProject_RepeatedRunsDoNotInterfere(t *testing.T) {
	baseline := SyntheticHazards(Geo{Lat: -22.485, Lon: -43.27})[0]
	before := baseline.Clone()

	var derived []HazardEventSet
	for _, s := range Scenarios() {
		for _, h := range s.Horizons() {
			rule, err := RuleFor(s, h, HazardFloodDepth)
			require.NoError(t, err)
			out, err := Project(&baseline, HazardFloodDepth, rule)
			require.NoError(t, err)
			derived = append(derived, out)
		}
	}

	require.Len(t, derived, 6)
	assert.Equal(t, before, baseline)
	derived[0].Events[0].Intensity[0] = 1000
	assert.NotEqual(t, 1000.0, derived[1].Events[0].Intensity[0])
}

func TestRuleFor(t *testing.T) {
	ssp585, err := LookupScenario("SSP585")
	require.NoError(t, err)

	flood, err := RuleFor(ssp585, 2100, HazardFloodDepth)
	require.NoError(t, err)
	assert.Equal(t, ScalingMultiplicative, flood.Mode)
	assert.InDelta(t, 1+0.07*3.3, flood.Value, 1e-12)
	assert.InDelta(t, 23.1, flood.DeltaPct(), 1e-9)

	heat, err := RuleFor(ssp585, 2050, HazardHeatDelta)
	require.NoError(t, err)
	assert.Equal(t, ScalingAdditive, heat.Mode)
	assert.InDelta(t, 1.3*1.2, heat.Value, 1e-12)
	assert.Equal(t, 0.0, heat.DeltaPct())

	_, err = RuleFor(ssp585, 2075, HazardFloodDepth)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = RuleFor(ssp585, 2050, HazardKind("HAIL"))
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = LookupScenario("ssp119")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestScenarioTable(t *testing.T) {
	scenarios := Scenarios()
	require.Len(t, scenarios, 2)
	assert.Equal(t, DefaultHorizons, scenarios[0].Horizons())
	for _, h := range DefaultHorizons {
		assert.Greater(t, scenarios[1].Warming[h], scenarios[0].Warming[h], "horizon %d", h)
	}
}

func TestScenarioOrdering_SyntheticAsset(t *testing.T) {
	exp := ExposurePoint{
		ID:       "REDUC",
		Location: Geo{Lat: -22.485, Lon: -43.27},
		Value:    2.5e9,
		Linkage:  LinkAll(AssetGeneric, HazardFloodDepth, HazardHeatDelta),
	}

	for _, baseline := range SyntheticHazards(exp.Location) {
		baseline := baseline
		t.Run(string(baseline.Kind), func(t *testing.T) {
			curve := selectCurve(t, baseline.Kind)
			eai := func(set *HazardEventSet) float64 {
				impacts, err := ComputeImpacts(exp, set, curve)
				require.NoError(t, err)
				return Summarize(impacts, exp.Value).EAI
			}

			base := eai(&baseline)
			var projected []ScenarioEAI
			for _, s := range Scenarios() {
				for _, h := range s.Horizons() {
					rule, err := RuleFor(s, h, baseline.Kind)
					require.NoError(t, err)
					future, err := Project(&baseline, baseline.Kind, rule)
					require.NoError(t, err)
					projected = append(projected, ScenarioEAI{Scenario: s, Horizon: h, EAI: eai(&future)})
				}
			}

			assert.Empty(t, CheckScenarioOrdering(baseline.Kind, base, projected))
		})
	}
}

func TestCheckScenarioOrdering_ReportsViolations(t *testing.T) {
	ssp245, _ := LookupScenario(ScenarioSSP245)
	ssp585, _ := LookupScenario(ScenarioSSP585)

	violations := CheckScenarioOrdering(HazardFloodDepth, 100, []ScenarioEAI{
		{Scenario: ssp245, Horizon: 2030, EAI: 90},  // below baseline
		{Scenario: ssp245, Horizon: 2050, EAI: 150}, // ok
		{Scenario: ssp245, Horizon: 2100, EAI: 140}, // decreases in horizon
		{Scenario: ssp585, Horizon: 2030, EAI: 120},
		{Scenario: ssp585, Horizon: 2050, EAI: 130}, // below ssp245 2050
		{Scenario: ssp585, Horizon: 2100, EAI: 200},
	})

	require.Len(t, violations, 3)
	for _, v := range violations {
		assert.Equal(t, HazardFloodDepth, v.Hazard)
		assert.NotEmpty(t, v.Message)
	}
}
