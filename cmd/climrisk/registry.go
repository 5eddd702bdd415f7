package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// registryEntry is one asset of the batch registry plus the optional run
// settings for it. Empty scenarios or horizons select every built-in one.
type registryEntry struct {
	domain.ExposurePoint `yaml:",inline"`
	Operator             string   `yaml:"operator"`
	Scenarios            []string `yaml:"scenarios"`
	Horizons             []int    `yaml:"horizons"`
}

type registryFile struct {
	Assets []registryEntry `yaml:"assets"`
}

// defaultRegistry is used when no registry file is given.
func defaultRegistry() []registryEntry {
	return []registryEntry{
		{
			ExposurePoint: domain.ExposurePoint{
				ID:       "REDUC",
				Name:     "REDUC - Refinaria Duque de Caxias",
				Kind:     domain.AssetRefinery,
				Region:   "Duque de Caxias, RJ",
				Location: domain.Geo{Lat: -22.485, Lon: -43.27},
				Value:    2_500_000_000,
			},
			Operator: "Petrobras",
		},
	}
}

func loadRegistry(path string) ([]registryEntry, error) {
	if path == "" {
		return defaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if len(f.Assets) == 0 {
		return nil, fmt.Errorf("registry %s has no assets", path)
	}
	seen := make(map[string]bool, len(f.Assets))
	for i, a := range f.Assets {
		if a.ID == "" {
			return nil, fmt.Errorf("registry %s: asset %d has no id", path, i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("registry %s: duplicate asset id %q", path, a.ID)
		}
		seen[a.ID] = true
	}
	return f.Assets, nil
}

// filterRegistry keeps the named asset. An unknown id is an error listing
// the available ids.
func filterRegistry(entries []registryEntry, id string) ([]registryEntry, error) {
	if id == "" {
		return entries, nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.ID == id {
			return []registryEntry{e}, nil
		}
		ids = append(ids, e.ID)
	}
	return nil, fmt.Errorf("asset %q not found. Available: [%s]", id, strings.Join(ids, ", "))
}
