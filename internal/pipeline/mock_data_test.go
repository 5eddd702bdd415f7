package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
)

func readFixtureRequests(t *testing.T) []json.RawMessage {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "requests.json"))
	require.NoError(t, err)

	var rows []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &rows))
	return rows
}

func TestBatchRunner_WithFixtureRequests(t *testing.T) {
	rows := readFixtureRequests(t)
	reqs := make([]assessment.Request, 0, len(rows))
	for _, row := range rows {
		req, err := assessment.ParseRequest(row)
		require.NoError(t, err)
		reqs = append(reqs, req)
	}

	metrics := newTestMetrics()
	a := assessment.New(domain.BuiltinCatalog(), assessment.Options{Pricing: domain.PricingInput{Loading: 0.15}}, nil, slog.Default(), metrics)
	runner := pipeline.NewBatchRunner(a, 2, slog.Default(), metrics)

	outcome, err := runner.Run(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 3)
	require.Len(t, outcome.Succeeded(), 3)

	reduc := outcome.Results[0]
	assert.Equal(t, "REDUC", reduc.Asset.ID)
	assert.True(t, reduc.Metadata.SyntheticHazards)
	assert.Contains(t, reduc.Baseline.Hazards, "RF")
	assert.Contains(t, reduc.Baseline.Hazards, "HW")

	fpso := outcome.Results[1]
	require.Contains(t, fpso.Baseline.Hazards, "WS")
	require.Contains(t, fpso.Baseline.Hazards, "OW")
	assert.Equal(t, 1, fpso.Baseline.Hazards["WS"].ImpactFunction.ID)
	assert.Equal(t, 2, fpso.Baseline.Hazards["OW"].ImpactFunction.ID)
	assert.False(t, fpso.Baseline.Hazards["WS"].ImpactFunction.Fallback)
	assert.Greater(t, fpso.Aggregated.TotalEAI, 0.0)
	assert.LessOrEqual(t, fpso.Aggregated.TotalEAI, fpso.Asset.Value)
	assert.Len(t, fpso.Projections["ssp585"].Horizons, 1)
	assert.Empty(t, fpso.OrderingViolations)

	pipe := outcome.Results[2]
	assert.Contains(t, pipe.Baseline.Hazards, "OW")
	assert.NotContains(t, pipe.Baseline.Hazards, "WS")

	// The unlinked WIND set on the pipeline is the only failure in the run.
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "PIPE-TAG-07", outcome.Failures[0].AssetID)
	assert.Equal(t, domain.HazardWind, outcome.Failures[0].Hazard)
	assert.Equal(t, "configuration", outcome.Failures[0].Reason)

	for _, res := range outcome.Succeeded() {
		msg, err := assessment.Serialize(res)
		require.NoError(t, err)
		assert.Equal(t, res.Asset.ID, string(msg.Key))
	}
}
