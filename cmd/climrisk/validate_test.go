package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

func assessDefault(t *testing.T) *assessment.Result {
	t.Helper()
	a := assessment.New(domain.BuiltinCatalog(), assessment.Options{
		Pricing: domain.PricingInput{Loading: 0.15, Method: domain.RiskLoadTVaR, Quantile: 0.95},
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	res, err := a.Assess(context.Background(), assessment.Request{Asset: defaultRegistry()[0].ExposurePoint})
	require.NoError(t, err)
	return res
}

func failedPhases(phases []*phase) []string {
	var out []string
	for _, p := range phases {
		if !p.passed() {
			out = append(out, p.name)
		}
	}
	return out
}

func TestValidateResult_EngineOutputPasses(t *testing.T) {
	res := assessDefault(t)
	assert.Empty(t, failedPhases(validateResult(res)))
}

func TestValidateResult_DetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *assessment.Result)
		phase  string
	}{
		{"missing run id", func(r *assessment.Result) { r.Metadata.RunID = "" }, "Phase 1: Metadata"},
		{"eai above value", func(r *assessment.Result) {
			h := r.Baseline.Hazards["RF"]
			h.Results.EAI = r.Asset.Value * 2
			r.Baseline.Hazards["RF"] = h
		}, "Phase 2: EAI Bounds"},
		{"total mismatch", func(r *assessment.Result) { r.Aggregated.TotalEAI++ }, "Phase 2: EAI Bounds"},
		{"curve not monotone", func(r *assessment.Result) {
			h := r.Baseline.Hazards["RF"]
			curve := append([]domain.ExceedancePoint(nil), h.Results.ExceedanceCurve...)
			curve[0], curve[len(curve)-1] = curve[len(curve)-1], curve[0]
			h.Results.ExceedanceCurve = curve
			r.Baseline.Hazards["RF"] = h
		}, "Phase 3: Exceedance Curves"},
		{"premium below pure", func(r *assessment.Result) {
			r.Aggregated.Pricing.TechnicalPremium = r.Aggregated.Pricing.PurePremium / 2
		}, "Phase 4: Pricing"},
		{"projection below baseline", func(r *assessment.Result) {
			hp := r.Projections[domain.ScenarioSSP245].Horizons[2030]
			h := hp.Hazards["RF"]
			h.Results.EAI = 0
			hp.Hazards["RF"] = h
		}, "Phase 5: Scenario Ordering"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := assessDefault(t)
			tt.mutate(res)
			assert.Contains(t, failedPhases(validateResult(res)), tt.phase)
		})
	}
}

func TestValidateResult_TotalAboveValueNeedsWarning(t *testing.T) {
	a := assessment.New(domain.BuiltinCatalog(), assessment.Options{
		Pricing: domain.PricingInput{Loading: 0.15},
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	event := func(kind domain.HazardKind, intensity float64) domain.HazardEventSet {
		return domain.HazardEventSet{
			Kind:      kind,
			Centroids: []domain.Geo{{Lat: -22.485, Lon: -43.27}},
			Events:    []domain.HazardEvent{{ID: "e1", ReturnPeriod: 1, Intensity: map[int]float64{0: intensity}}},
		}
	}
	res, err := a.Assess(context.Background(), assessment.Request{
		Asset:   defaultRegistry()[0].ExposurePoint,
		Hazards: []domain.HazardEventSet{event(domain.HazardFloodDepth, 6), event(domain.HazardHeatDelta, 8)},
	})
	require.NoError(t, err)
	require.Greater(t, res.Aggregated.TotalEAI, res.Asset.Value)
	require.NotEmpty(t, res.Aggregated.Warnings)

	assert.NotContains(t, failedPhases(validateResult(res)), "Phase 2: EAI Bounds")

	res.Aggregated.Warnings = nil
	bounds := validateBounds(res)
	require.False(t, bounds.passed())
	assert.Contains(t, bounds.errors[0], "without a warning")
}

func TestRunValidate_Files(t *testing.T) {
	dir := t.TempDir()
	path, err := saveResult(dir, assessDefault(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results_REDUC.json"), path)

	paths, err := resultPaths([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)

	var out bytes.Buffer
	assert.True(t, runValidate(&out, paths))
	assert.Contains(t, out.String(), "All validations passed.")

	bad := filepath.Join(dir, "results_BAD.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	out.Reset()
	assert.False(t, runValidate(&out, []string{path, bad}))
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestResultPaths_Empty(t *testing.T) {
	_, err := resultPaths([]string{t.TempDir()})
	assert.Error(t, err)
}
