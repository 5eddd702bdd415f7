// Command climrisk is the operator CLI for the climate risk engine. It runs
// the asset registry through the engine as a batch, re-checks result files,
// prints the curve catalog and generates request fixtures.
//
// Usage:
//
//	climrisk batch --registry assets.yaml --asset REDUC --dry-run
//	climrisk validate results/results_REDUC.json
//	climrisk curves
//	climrisk synth --out internal/pipeline/testdata/requests.json
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "climrisk",
		Short:        "Climate hazard impact engine (H x E x V) for oil and gas assets",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(curvesCmd())
	rootCmd.AddCommand(synthCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
