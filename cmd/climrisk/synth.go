package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func synthCmd() *cobra.Command {
	var registryPath, outPath string

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write assessment requests with the synthetic hazard sets inlined",
		Long: "Generates one request per registry asset with the deterministic flood and heat\n" +
			"tables materialized on the 5x5 grid around the asset. The output is a JSON array\n" +
			"suitable for publishing to the request topic or as a test fixture.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := loadRegistry(registryPath)
			if err != nil {
				return err
			}
			reqs, err := synthRequests(entries)
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				return writeRequests(cmd.OutOrStdout(), reqs)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := writeRequests(f, reqs); err != nil {
				_ = f.Close()
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d requests to %s\n", len(reqs), outPath)
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "asset registry YAML file (default: built-in REDUC entry)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	return cmd
}

// synthRequests builds validated requests whose hazards and linkage are
// explicit, so consumers do not rely on the engine defaults.
func synthRequests(entries []registryEntry) ([]assessment.Request, error) {
	reqs := make([]assessment.Request, 0, len(entries))
	for _, e := range entries {
		asset := e.ExposurePoint
		hazards := domain.SyntheticHazards(asset.Location)
		if len(asset.Linkage) == 0 {
			kind, err := domain.ParseAssetKind(string(asset.Kind))
			if err != nil {
				return nil, fmt.Errorf("asset %s: %w", asset.ID, err)
			}
			asset.Linkage = domain.LinkAll(kind, domain.HazardFloodDepth, domain.HazardHeatDelta)
		}
		req := assessment.Request{Asset: asset, Hazards: hazards, Scenarios: e.Scenarios, Horizons: e.Horizons}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("asset %s: %w", asset.ID, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func writeRequests(w io.Writer, reqs []assessment.Request) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reqs)
}
