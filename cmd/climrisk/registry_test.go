package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

const registryYAML = `
assets:
  - id: REDUC
    name: REDUC - Refinaria Duque de Caxias
    type: REFINERY
    region: Duque de Caxias, RJ
    operator: Petrobras
    location: {lat: -22.485, lon: -43.27}
    value: 2500000000
  - id: FPSO-SANTOS-01
    type: FPSO
    location: {lat: -25.2, lon: -42.9}
    value: 1800000000
    linkage:
      FLOOD_DEPTH: GENERIC
      HEAT_DELTA: GENERIC
    scenarios: [ssp585]
    horizons: [2050, 2100]
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRegistry_Default(t *testing.T) {
	entries, err := loadRegistry("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "REDUC", entries[0].ID)
	assert.Equal(t, domain.AssetRefinery, entries[0].Kind)
	assert.Equal(t, 2.5e9, entries[0].Value)
}

func TestLoadRegistry_File(t *testing.T) {
	entries, err := loadRegistry(writeTemp(t, "assets.yaml", registryYAML))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	reduc := entries[0]
	assert.Equal(t, "Petrobras", reduc.Operator)
	assert.Equal(t, domain.Geo{Lat: -22.485, Lon: -43.27}, reduc.Location)
	assert.Empty(t, reduc.Linkage)

	fpso := entries[1]
	assert.Equal(t, domain.AssetFPSO, fpso.Kind)
	assert.Equal(t, domain.AssetGeneric, fpso.Linkage[domain.HazardFloodDepth])
	assert.Equal(t, []string{"ssp585"}, fpso.Scenarios)
	assert.Equal(t, []int{2050, 2100}, fpso.Horizons)
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "assets: []\n", "no assets"},
		{"missing id", "assets:\n  - value: 1\n", "has no id"},
		{"duplicate", "assets:\n  - id: A\n  - id: A\n", "duplicate asset id"},
		{"malformed", "assets: [\n", "parse registry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadRegistry(writeTemp(t, "assets.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := loadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFilterRegistry(t *testing.T) {
	entries, err := loadRegistry(writeTemp(t, "assets.yaml", registryYAML))
	require.NoError(t, err)

	all, err := filterRegistry(entries, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := filterRegistry(entries, "FPSO-SANTOS-01")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "FPSO-SANTOS-01", one[0].ID)

	_, err = filterRegistry(entries, "NOPE")
	require.Error(t, err)
	assert.Equal(t, `asset "NOPE" not found. Available: [REDUC, FPSO-SANTOS-01]`, err.Error())
}
