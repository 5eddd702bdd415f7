package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [result files or directories...]",
		Short: "Re-check result invariants on saved result files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := resultPaths(args)
			if err != nil {
				return err
			}
			if !runValidate(cmd.OutOrStdout(), paths) {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
}

// resultPaths expands directories to the results_*.json files they contain.
func resultPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "results_*.json"))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no result files found")
	}
	sort.Strings(out)
	return out, nil
}

func runValidate(w io.Writer, paths []string) bool {
	fmt.Fprintln(w, "=== Result Integrity Validation ===")

	allPassed := true
	for _, path := range paths {
		res, err := loadResult(path)
		if err != nil {
			fmt.Fprintf(w, "\n%s\n  \033[31mFAIL\033[0m %v\n", path, err)
			allPassed = false
			continue
		}

		phases := validateResult(res)

		fmt.Fprintf(w, "\n%s (%s)\n", path, res.Asset.ID)
		for _, p := range phases {
			status := "\033[32mPASS\033[0m"
			if !p.passed() {
				status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
				allPassed = false
			}
			fmt.Fprintf(w, "  %-40s %s\n", p.name, status)
		}
		for _, p := range phases {
			for i, e := range p.errors {
				fmt.Fprintf(w, "    %s [%d] %s\n", p.name, i+1, e)
			}
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}

func loadResult(path string) (*assessment.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res assessment.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &res, nil
}

func validateResult(res *assessment.Result) []*phase {
	return []*phase{
		validateMetadata(res),
		validateBounds(res),
		validateExceedance(res),
		validatePricing(res),
		validateOrdering(res),
	}
}

// ── Phase 1: Metadata ──

func validateMetadata(res *assessment.Result) *phase {
	p := &phase{name: "Phase 1: Metadata"}
	m := res.Metadata
	if m.RunID == "" {
		p.errorf("run_id is empty")
	}
	if m.Pipeline != assessment.PipelineName {
		p.errorf("pipeline is %q (expected %q)", m.Pipeline, assessment.PipelineName)
	}
	if m.GeneratedAt.IsZero() {
		p.errorf("generated_at is zero")
	}
	if m.HazardCount != len(res.Baseline.Hazards) {
		p.errorf("n_hazards is %d but baseline has %d hazards", m.HazardCount, len(res.Baseline.Hazards))
	}
	if res.Asset.ID == "" {
		p.errorf("asset id is empty")
	}
	for code, h := range res.Baseline.Hazards {
		if h.ImpactFunction.Status == domain.StatusPlaceholder && !res.Provisional {
			p.errorf("%s uses a placeholder curve but the result is not provisional", code)
		}
	}
	return p
}

// ── Phase 2: Bounds ──
// 0 <= EAI <= value per hazard, totals add up and are flagged above value,
// contributions sum to 100.

func validateBounds(res *assessment.Result) *phase {
	p := &phase{name: "Phase 2: EAI Bounds"}
	value := res.Asset.Value

	checkBlock := func(label string, hazards map[string]assessment.HazardResult, agg assessment.Aggregated, withContribution bool) {
		var sum float64
		for code, h := range hazards {
			eai := h.Results.EAI
			sum += eai
			if eai < 0 || eai > value+tolerance(value) {
				p.errorf("%s %s: EAI %.2f outside [0, %.2f]", label, code, eai, value)
			}
			if tv := h.Results.TotalValue; tv > 0 && !floatNear(h.Results.EAIRatioPct, eai/tv*100) {
				p.errorf("%s %s: eai_ratio_pct %.6f does not match EAI/value", label, code, h.Results.EAIRatioPct)
			}
		}
		if !floatNear(agg.TotalEAI, sum) {
			p.errorf("%s: total EAI %.2f != sum of hazards %.2f", label, agg.TotalEAI, sum)
		}
		if agg.TotalEAI > value+tolerance(value) && !hasWarning(agg.Warnings, domain.WarningImpactExceedsValue) {
			p.errorf("%s: total EAI %.2f exceeds value %.2f without a warning", label, agg.TotalEAI, value)
		}
		if !withContribution || agg.TotalEAI <= 0 {
			return
		}
		var pct float64
		for _, v := range agg.ContributionPct {
			pct += v
		}
		if math.Abs(pct-100) > 1e-6 {
			p.errorf("%s: contributions sum to %.6f%%", label, pct)
		}
	}

	checkBlock("baseline", res.Baseline.Hazards, res.Aggregated, true)
	for _, id := range sortedKeys(res.Projections) {
		for _, hz := range sortedKeys(res.Projections[id].Horizons) {
			hp := res.Projections[id].Horizons[hz]
			checkBlock(fmt.Sprintf("%s/%d", id, hz), hp.Hazards, hp.Aggregated, true)
		}
	}
	return p
}

// ── Phase 3: Exceedance curves ──
// Impact non-increasing, cumulative probability non-decreasing in [0, 1].

func validateExceedance(res *assessment.Result) *phase {
	p := &phase{name: "Phase 3: Exceedance Curves"}
	for _, code := range sortedKeys(res.Baseline.Hazards) {
		curve := res.Baseline.Hazards[code].Results.ExceedanceCurve
		for i, pt := range curve {
			if pt.Probability < 0 || pt.Probability > 1 {
				p.errorf("%s point %d: probability %g outside [0, 1]", code, i, pt.Probability)
			}
			if i == 0 {
				continue
			}
			prev := curve[i-1]
			if pt.Impact > prev.Impact+tolerance(prev.Impact) {
				p.errorf("%s point %d: impact increases (%g > %g)", code, i, pt.Impact, prev.Impact)
			}
			if pt.Probability+1e-12 < prev.Probability {
				p.errorf("%s point %d: probability decreases (%g < %g)", code, i, pt.Probability, prev.Probability)
			}
		}
	}
	return p
}

// ── Phase 4: Pricing ──

func validatePricing(res *assessment.Result) *phase {
	p := &phase{name: "Phase 4: Pricing"}
	for _, code := range sortedKeys(res.Baseline.Hazards) {
		h := res.Baseline.Hazards[code]
		pr := h.Pricing
		if !floatNear(pr.AAL, h.Results.EAI) {
			p.errorf("%s: AAL %.2f != EAI %.2f", code, pr.AAL, h.Results.EAI)
		}
		if pr.RiskLoad < 0 {
			p.errorf("%s: negative risk load %.2f", code, pr.RiskLoad)
		}
		if pr.TechnicalPremium+tolerance(pr.PurePremium) < pr.PurePremium {
			p.errorf("%s: technical premium %.2f below pure premium %.2f", code, pr.TechnicalPremium, pr.PurePremium)
		}
		if pr.TVaR+tolerance(pr.VaR) < pr.VaR {
			p.errorf("%s: TVaR %.2f below VaR %.2f", code, pr.TVaR, pr.VaR)
		}
	}
	agg := res.Aggregated.Pricing
	if agg.TechnicalPremium+tolerance(agg.PurePremium) < agg.PurePremium {
		p.errorf("aggregate: technical premium %.2f below pure premium %.2f", agg.TechnicalPremium, agg.PurePremium)
	}
	return p
}

// ── Phase 5: Scenario ordering ──
// Projected EAI >= baseline, non-decreasing in horizon and in forcing.

func validateOrdering(res *assessment.Result) *phase {
	p := &phase{name: "Phase 5: Scenario Ordering"}
	for _, code := range sortedKeys(res.Baseline.Hazards) {
		base := res.Baseline.Hazards[code]
		var projected []domain.ScenarioEAI
		for _, id := range sortedKeys(res.Projections) {
			sc, err := domain.LookupScenario(id)
			if err != nil {
				p.errorf("unknown scenario %q", id)
				continue
			}
			for hz, hp := range res.Projections[id].Horizons {
				if h, ok := hp.Hazards[code]; ok {
					projected = append(projected, domain.ScenarioEAI{Scenario: sc, Horizon: hz, EAI: h.Results.EAI})
				}
			}
		}
		for _, v := range domain.CheckScenarioOrdering(base.Kind, base.Results.EAI, projected) {
			p.errorf("%s: %s", code, v.Message)
		}
	}
	return p
}

// ── Helpers ──

func tolerance(scale float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(scale))
}

func floatNear(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func sortedKeys[K int | string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func hasWarning(ws []domain.Warning, code string) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
