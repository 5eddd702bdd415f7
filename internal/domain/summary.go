package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ExceedancePoint is one step of the loss exceedance curve. Probability is
// the annual exceedance frequency of losses >= Impact; Frequency is the
// frequency of the events whose loss equals Impact exactly.
type ExceedancePoint struct {
	Impact      float64 `json:"impact"`
	Probability float64 `json:"probability"`
	Frequency   float64 `json:"frequency"`
}

// ReturnPeriodImpact is one row of the impact-by-return-period table.
type ReturnPeriodImpact struct {
	ReturnPeriod float64 `json:"return_period"`
	Impact       float64 `json:"impact"`
}

// ImpactSummary is the annualized view of one hazard on one exposure.
type ImpactSummary struct {
	EAI                  float64              `json:"eai"`
	RawEAI               float64              `json:"eai_raw"`
	TotalValue           float64              `json:"total_value_exposed"`
	ImpactByReturnPeriod []ReturnPeriodImpact `json:"impact_by_return_period"`
	ExceedanceCurve      []ExceedancePoint    `json:"exceedance_curve"`
	Events               int                  `json:"n_events"`
	Warnings             []Warning            `json:"warnings,omitempty"`
}

// Summarize turns per-event impacts into EAI, the return-period table and the
// step exceedance curve.
//
// Events sharing a return period are summed into one bucket. If the EAI
// exceeds totalValue the reported EAI is clamped to it, RawEAI keeps the
// unclamped figure, and an impact_exceeds_value warning is attached.
func Summarize(impacts []EventImpact, totalValue float64) ImpactSummary {
	s := ImpactSummary{
		TotalValue: totalValue,
		Events:     len(impacts),
	}

	byRP := make(map[float64]float64, len(impacts))
	for _, ev := range impacts {
		s.RawEAI += ev.Impact * ev.Frequency
		byRP[ev.ReturnPeriod] += ev.Impact
	}

	s.EAI = s.RawEAI
	if s.RawEAI > totalValue {
		s.EAI = totalValue
		s.Warnings = append(s.Warnings, Warning{
			Code:    WarningImpactExceedsValue,
			Message: fmt.Sprintf("expected annual impact %.2f exceeds exposed value %.2f; reported figure clamped", s.RawEAI, totalValue),
			Raw:     s.RawEAI,
			Limit:   totalValue,
		})
	}

	s.ImpactByReturnPeriod = make([]ReturnPeriodImpact, 0, len(byRP))
	for rp, v := range byRP {
		s.ImpactByReturnPeriod = append(s.ImpactByReturnPeriod, ReturnPeriodImpact{ReturnPeriod: rp, Impact: v})
	}
	sort.Slice(s.ImpactByReturnPeriod, func(i, j int) bool {
		return s.ImpactByReturnPeriod[i].ReturnPeriod < s.ImpactByReturnPeriod[j].ReturnPeriod
	})

	s.ExceedanceCurve = exceedanceCurve(impacts)
	return s
}

func exceedanceCurve(impacts []EventImpact) []ExceedancePoint {
	sorted := append([]EventImpact(nil), impacts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Impact > sorted[j].Impact })

	out := make([]ExceedancePoint, 0, len(sorted))
	var cum float64
	for _, ev := range sorted {
		cum += ev.Frequency
		if n := len(out); n > 0 && out[n-1].Impact == ev.Impact {
			out[n-1].Frequency += ev.Frequency
			out[n-1].Probability = cum
			continue
		}
		out = append(out, ExceedancePoint{Impact: ev.Impact, Probability: cum, Frequency: ev.Frequency})
	}
	return out
}

// ImpactAt returns the impact-by-return-period entry for rp.
func (s ImpactSummary) ImpactAt(rp float64) (float64, bool) {
	i := sort.Search(len(s.ImpactByReturnPeriod), func(i int) bool {
		return s.ImpactByReturnPeriod[i].ReturnPeriod >= rp
	})
	if i < len(s.ImpactByReturnPeriod) && s.ImpactByReturnPeriod[i].ReturnPeriod == rp {
		return s.ImpactByReturnPeriod[i].Impact, true
	}
	return 0, false
}

// MaxImpact returns the largest single-event impact.
func (s ImpactSummary) MaxImpact() float64 {
	if len(s.ExceedanceCurve) == 0 {
		return 0
	}
	return s.ExceedanceCurve[0].Impact
}

// EAIRatioPct returns EAI as a percentage of the exposed value.
func (s ImpactSummary) EAIRatioPct() float64 {
	if s.TotalValue <= 0 {
		return 0
	}
	return s.EAI / s.TotalValue * 100
}

// Clamped reports whether the EAI was clamped to the exposed value.
func (s ImpactSummary) Clamped() bool {
	for _, w := range s.Warnings {
		if w.Code == WarningImpactExceedsValue {
			return true
		}
	}
	return false
}

// ExceedanceMethod selects how exceedance probabilities are presented.
type ExceedanceMethod string

const (
	ExceedanceStep       ExceedanceMethod = "step"
	ExceedanceWeibull    ExceedanceMethod = "weibull"
	ExceedanceHazen      ExceedanceMethod = "hazen"
	ExceedanceGringorten ExceedanceMethod = "gringorten"
)

// ParseExceedanceMethod normalizes a method name. Empty selects step.
func ParseExceedanceMethod(s string) (ExceedanceMethod, error) {
	switch m := ExceedanceMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ExceedanceStep, nil
	case ExceedanceStep, ExceedanceWeibull, ExceedanceHazen, ExceedanceGringorten:
		return m, nil
	default:
		return "", fmt.Errorf("unknown exceedance method %q", s)
	}
}

// PlottingPositions returns the empirical exceedance probability for ranks
// 1..n (rank 1 is the largest loss), clipped to [0,1].
func PlottingPositions(n int, method ExceedanceMethod) []float64 {
	out := make([]float64, n)
	fn := float64(n)
	for i := range out {
		r := float64(i + 1)
		var p float64
		switch method {
		case ExceedanceHazen:
			p = (r - 0.5) / fn
		case ExceedanceGringorten:
			p = (r - 0.44) / (fn + 0.12)
		default:
			p = r / (fn + 1)
		}
		out[i] = math.Min(1, math.Max(0, p))
	}
	return out
}

// PresentationCurve returns the exceedance curve for display. The step method
// returns the raw curve; the plotting-position methods re-rank the distinct
// loss levels and replace probabilities with empirical positions. Metrics are
// always computed on the raw step curve.
func (s ImpactSummary) PresentationCurve(method ExceedanceMethod) []ExceedancePoint {
	out := append([]ExceedancePoint(nil), s.ExceedanceCurve...)
	if method == ExceedanceStep || method == "" {
		return out
	}
	probs := PlottingPositions(len(out), method)
	for i := range out {
		out[i].Probability = probs[i]
	}
	return out
}
