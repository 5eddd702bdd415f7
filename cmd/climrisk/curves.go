package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func curvesCmd() *cobra.Command {
	var catalogPath string
	var points int

	cmd := &cobra.Command{
		Use:   "curves [hazard asset]",
		Short: "List the damage curve catalog, or export one curve as JSON",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <hazard> <asset>, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := domain.BuiltinCatalog()
			if catalogPath != "" {
				c, err := domain.LoadCatalog(catalogPath)
				if err != nil {
					return err
				}
				catalog = c
			}
			if len(args) == 2 {
				return exportCurve(cmd.OutOrStdout(), catalog, args[0], args[1], points)
			}
			return listCurves(cmd.OutOrStdout(), catalog)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "curve catalog YAML file (default: built-in catalog)")
	cmd.Flags().IntVar(&points, "points", 100, "fine grid size for curve export")
	return cmd
}

func listCurves(w io.Writer, catalog *domain.CurveCatalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHAZARD\tASSET\tSTATUS\tUNIT\tPOINTS\tNAME")
	for _, c := range catalog.Curves() {
		d := c.Describe()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n", d.ID, d.Hazard, d.Asset, d.Status, d.Unit, d.Points, d.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, t := range catalog.AssetTypes() {
		hazards := make([]string, len(t.Hazards))
		for i, h := range t.Hazards {
			hazards[i] = string(h)
		}
		fmt.Fprintf(w, "%-16s %-12s %s\n", t.ID, t.Status, strings.Join(hazards, ", "))
	}
	return nil
}

func exportCurve(w io.Writer, catalog *domain.CurveCatalog, hazardArg, assetArg string, points int) error {
	hazard, err := domain.ParseHazardKind(hazardArg)
	if err != nil {
		return err
	}
	asset, err := domain.ParseAssetKind(assetArg)
	if err != nil {
		return err
	}
	res, err := catalog.Resolve(hazard, asset)
	if err != nil {
		return err
	}
	pts := res.Curve.Points(points)
	pts.Fallback = res.Fallback

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pts)
}
