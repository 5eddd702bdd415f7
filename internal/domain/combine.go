package domain

import (
	"fmt"
	"sort"
)

// AggregationMethod tags how per-hazard results were combined.
const AggregationMethod = "simple independent sum"

// AggregationNote is attached to every aggregated result.
const AggregationNote = "Independence between hazards assumed. No correlation modeled."

// CombinedReturnPeriod is a row of the multi-hazard return-period table,
// built only from return periods every hazard reports.
type CombinedReturnPeriod struct {
	ReturnPeriod float64                `json:"return_period"`
	Impact       float64                `json:"impact"`
	ByHazard     map[HazardKind]float64 `json:"by_hazard"`
}

// AggregatedResult is the multi-hazard view of one exposure.
type AggregatedResult struct {
	Summaries       map[HazardKind]ImpactSummary        `json:"summaries"`
	TotalEAI        float64                             `json:"eai_total"`
	TotalValue      float64                             `json:"total_value_exposed"`
	ContributionPct map[HazardKind]float64              `json:"contribution_pct"`
	Method          string                              `json:"aggregation_method"`
	Note            string                              `json:"aggregation_note"`
	Combined        []CombinedReturnPeriod              `json:"impact_by_return_period"`
	Unmatched       map[HazardKind][]ReturnPeriodImpact `json:"unmatched_return_periods,omitempty"`
	Warnings        []Warning                           `json:"warnings,omitempty"`
}

// Aggregate sums per-hazard EAI under the independence assumption and builds
// the combined return-period table from the return periods common to all
// inputs. Return periods only some hazards report are listed per hazard in
// Unmatched and never summed.
//
// The total is never clamped. When it exceeds the exposed value the result
// carries an impact_exceeds_value warning instead.
func Aggregate(summaries map[HazardKind]ImpactSummary) AggregatedResult {
	res := AggregatedResult{
		Summaries:       make(map[HazardKind]ImpactSummary, len(summaries)),
		ContributionPct: make(map[HazardKind]float64, len(summaries)),
		Method:          AggregationMethod,
		Note:            AggregationNote,
	}

	kinds := sortedKinds(summaries)

	// Sum in a fixed order so totals are bit-identical across calls.
	for _, k := range kinds {
		s := summaries[k]
		res.Summaries[k] = s
		res.TotalEAI += s.EAI
		if s.TotalValue > res.TotalValue {
			res.TotalValue = s.TotalValue
		}
	}
	for _, k := range kinds {
		pct := 0.0
		if res.TotalEAI > 0 {
			pct = summaries[k].EAI / res.TotalEAI * 100
		}
		res.ContributionPct[k] = pct
	}
	if res.TotalEAI > res.TotalValue {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarningImpactExceedsValue,
			Message: fmt.Sprintf("summed expected annual impact %.2f exceeds exposed value %.2f", res.TotalEAI, res.TotalValue),
			Raw:     res.TotalEAI,
			Limit:   res.TotalValue,
		})
	}

	res.Combined, res.Unmatched = combineReturnPeriods(kinds, summaries)
	return res
}

func combineReturnPeriods(kinds []HazardKind, summaries map[HazardKind]ImpactSummary) ([]CombinedReturnPeriod, map[HazardKind][]ReturnPeriodImpact) {
	combined := []CombinedReturnPeriod{}
	if len(kinds) == 0 {
		return combined, nil
	}

	count := make(map[float64]int)
	for _, k := range kinds {
		for _, row := range summaries[k].ImpactByReturnPeriod {
			count[row.ReturnPeriod]++
		}
	}

	common := make([]float64, 0, len(count))
	for rp, n := range count {
		if n == len(kinds) {
			common = append(common, rp)
		}
	}
	sort.Float64s(common)

	for _, rp := range common {
		row := CombinedReturnPeriod{ReturnPeriod: rp, ByHazard: make(map[HazardKind]float64, len(kinds))}
		for _, k := range kinds {
			v, _ := summaries[k].ImpactAt(rp)
			row.ByHazard[k] = v
			row.Impact += v
		}
		combined = append(combined, row)
	}

	var unmatched map[HazardKind][]ReturnPeriodImpact
	for _, k := range kinds {
		for _, row := range summaries[k].ImpactByReturnPeriod {
			if count[row.ReturnPeriod] == len(kinds) {
				continue
			}
			if unmatched == nil {
				unmatched = make(map[HazardKind][]ReturnPeriodImpact)
			}
			unmatched[k] = append(unmatched[k], row)
		}
	}
	return combined, unmatched
}

// TotalEAIRatioPct returns the total EAI as a percentage of the exposed value.
func (r AggregatedResult) TotalEAIRatioPct() float64 {
	if r.TotalValue <= 0 {
		return 0
	}
	return r.TotalEAI / r.TotalValue * 100
}

func sortedKinds(summaries map[HazardKind]ImpactSummary) []HazardKind {
	kinds := make([]HazardKind, 0, len(summaries))
	for k := range summaries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
