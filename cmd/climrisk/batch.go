package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/mapbox"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/objectstore"
	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
)

type batchOptions struct {
	registry string
	asset    string
	outDir   string
	dryRun   bool
}

func batchCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess every registry asset, save results locally and upload them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.registry, "registry", "", "asset registry YAML file (default: built-in REDUC entry)")
	cmd.Flags().StringVar(&opts.asset, "asset", "", "run only the asset with this id")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "local results directory (default: $RESULTS_DIR)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "skip the object storage upload")
	return cmd
}

func runBatch(ctx context.Context, out io.Writer, opts batchOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	entries, err := loadRegistry(opts.registry)
	if err != nil {
		return err
	}
	entries, err = filterRegistry(entries, opts.asset)
	if err != nil {
		return err
	}

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		geocoder = mapbox.NewCachedGeocoder(
			mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger),
			cfg.MapboxCacheSize, metrics,
		)
	}
	assessor, err := assessment.NewFromConfig(cfg, geocoder, logger, metrics)
	if err != nil {
		return err
	}

	var store *objectstore.ResultStore
	switch {
	case opts.dryRun:
		logger.Info("dry run, skipping upload")
	case !cfg.ResultStoreEnabled:
		logger.Warn("result store not configured, skipping upload")
	default:
		store, err = objectstore.NewResultStore(ctx, cfg, logger, metrics)
		if err != nil {
			return err
		}
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.ResultsDir
	}

	reqs := make([]assessment.Request, len(entries))
	for i, e := range entries {
		reqs[i] = assessment.Request{Asset: e.ExposurePoint, Scenarios: e.Scenarios, Horizons: e.Horizons}
	}

	runner := pipeline.NewBatchRunner(assessor, cfg.BatchConcurrency, logger, metrics)
	outcome, err := runner.Run(ctx, reqs)
	if err != nil {
		return err
	}

	succeeded := outcome.Succeeded()
	for _, res := range succeeded {
		path, err := saveResult(outDir, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-16s EAI %14.2f USD (%6.3f%%)  saved %s\n",
			res.Asset.ID, res.Aggregated.TotalEAI, res.Aggregated.TotalEAIRatioPct, path)

		if store != nil {
			key, err := store.Put(ctx, res)
			if err != nil {
				// An upload failure does not lose the local copy.
				logger.Error("upload failed", "asset_id", res.Asset.ID, "error", err)
				continue
			}
			fmt.Fprintf(out, "%-16s uploaded s3://%s/%s\n", res.Asset.ID, cfg.ResultBucket, key)
		}
	}

	for _, f := range outcome.Failures {
		logger.Warn("assessment failure",
			"asset_id", f.AssetID,
			"hazard", f.Hazard,
			"scenario", f.Scenario,
			"reason", f.Reason,
			"error", f.Error,
		)
	}

	fmt.Fprintf(out, "\nBatch complete. Processed %d of %d assets, %d failures.\n",
		len(succeeded), len(reqs), len(outcome.Failures))
	if len(succeeded) == 0 {
		return fmt.Errorf("no asset was assessed")
	}
	return nil
}

// saveResult writes the result as indented JSON and returns the path.
func saveResult(dir string, res *assessment.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result %s: %w", res.Asset.ID, err)
	}
	path := filepath.Join(dir, assessment.FileName(res.Asset.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
