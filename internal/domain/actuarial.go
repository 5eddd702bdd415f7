package domain

import (
	"fmt"
	"math"
	"strings"
)

// probTol absorbs rounding in 1 - confidence (1 - 0.9 is 0.09999999999999998).
const probTol = 1e-9

// AAL is the average annual loss, the actuarial name for EAI.
func AAL(s ImpactSummary) float64 { return s.EAI }

// PML returns the probable maximum loss at a return period: the table entry
// when the return period was modeled, otherwise linear interpolation in
// exceedance probability on the step curve, clamped at both ends.
func PML(s ImpactSummary, returnPeriod float64) float64 {
	if v, ok := s.ImpactAt(returnPeriod); ok {
		return v
	}
	curve := s.ExceedanceCurve
	if len(curve) == 0 || returnPeriod <= 0 {
		return 0
	}
	p := 1 / returnPeriod
	if p <= curve[0].Probability {
		return curve[0].Impact
	}
	last := curve[len(curve)-1]
	if p >= last.Probability {
		return last.Impact
	}
	for i := 1; i < len(curve); i++ {
		lo, hi := curve[i-1], curve[i]
		if p <= hi.Probability {
			t := (p - lo.Probability) / (hi.Probability - lo.Probability)
			return lo.Impact + t*(hi.Impact-lo.Impact)
		}
	}
	return last.Impact
}

// tail returns the curve points whose exceedance probability is at most
// 1 - confidence.
func tail(s ImpactSummary, confidence float64) []ExceedancePoint {
	limit := 1 - confidence + probTol
	n := 0
	for n < len(s.ExceedanceCurve) && s.ExceedanceCurve[n].Probability <= limit {
		n++
	}
	return s.ExceedanceCurve[:n]
}

// VaR returns the value-at-risk at the confidence level: the smallest loss
// whose annual exceedance probability is at most 1 - confidence. When even
// the largest loss is exceeded more often than that, the largest loss is
// returned.
func VaR(s ImpactSummary, confidence float64) float64 {
	if len(s.ExceedanceCurve) == 0 {
		return 0
	}
	t := tail(s, confidence)
	if len(t) == 0 {
		return s.ExceedanceCurve[0].Impact
	}
	return t[len(t)-1].Impact
}

// TVaR returns the frequency-weighted mean loss over the tail used by VaR.
// With a single tail point it equals VaR.
func TVaR(s ImpactSummary, confidence float64) float64 {
	t := tail(s, confidence)
	var num, den float64
	for _, pt := range t {
		num += pt.Impact * pt.Frequency
		den += pt.Frequency
	}
	if den <= 0 {
		return VaR(s, confidence)
	}
	return num / den
}

// StdDev returns the standard deviation of annual loss treating each event
// as an independent Poisson process: sqrt(sum f_i x L_i^2).
func StdDev(s ImpactSummary) float64 {
	var v float64
	for _, pt := range s.ExceedanceCurve {
		v += pt.Frequency * pt.Impact * pt.Impact
	}
	return math.Sqrt(v)
}

// PurePremium equals EAI.
func PurePremium(s ImpactSummary) float64 { return s.EAI }

// TechnicalPremium is EAI x (1 + loading). The loading is applied as given;
// config and request validation reject negative values.
func TechnicalPremium(s ImpactSummary, loading float64) float64 {
	return s.EAI * (1 + loading)
}

// RiskLoadMethod selects the capital charge added on top of the loaded
// premium.
type RiskLoadMethod string

const (
	RiskLoadNone  RiskLoadMethod = "none"
	RiskLoadVaR   RiskLoadMethod = "var"
	RiskLoadTVaR  RiskLoadMethod = "tvar"
	RiskLoadStdev RiskLoadMethod = "stdev"
)

// ParseRiskLoadMethod normalizes a method name. Empty selects none.
func ParseRiskLoadMethod(s string) (RiskLoadMethod, error) {
	switch m := RiskLoadMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return RiskLoadNone, nil
	case RiskLoadNone, RiskLoadVaR, RiskLoadTVaR, RiskLoadStdev:
		return m, nil
	default:
		return "", fmt.Errorf("unknown risk load method %q", s)
	}
}

// Quantile bounds for the risk load.
const (
	MinRiskQuantile = 0.5
	MaxRiskQuantile = 0.999
)

// SensitivityQuantiles are the confidence levels reported in the pricing
// sensitivity table.
var SensitivityQuantiles = []float64{0.90, 0.95, 0.99}

// StandardReturnPeriods are the PML points reported with every pricing.
var StandardReturnPeriods = []float64{10, 50, 100, 250}

// PricingInput holds the externally configured pricing parameters.
type PricingInput struct {
	Loading  float64        `json:"loading"`
	Method   RiskLoadMethod `json:"risk_load_method"`
	Quantile float64        `json:"risk_quantile"`
}

func (in PricingInput) normalized() PricingInput {
	out := in
	if out.Method == "" {
		out.Method = RiskLoadNone
	}
	if math.IsNaN(out.Quantile) || out.Quantile == 0 {
		out.Quantile = 0.95
	}
	out.Quantile = math.Min(MaxRiskQuantile, math.Max(MinRiskQuantile, out.Quantile))
	return out
}

// QuantileSensitivity is one row of the pricing sensitivity table.
type QuantileSensitivity struct {
	Quantile         float64 `json:"quantile"`
	VaR              float64 `json:"var"`
	TVaR             float64 `json:"tvar"`
	TechnicalPremium float64 `json:"technical_premium"`
}

// Pricing is the actuarial block reported with each summary.
type Pricing struct {
	AAL              float64               `json:"aal"`
	PML              []ReturnPeriodImpact  `json:"pml"`
	VaR              float64               `json:"var"`
	TVaR             float64               `json:"tvar"`
	StdDev           float64               `json:"stdev"`
	RiskLoadMethod   RiskLoadMethod        `json:"risk_load_method"`
	RiskQuantile     float64               `json:"risk_quantile"`
	RiskLoad         float64               `json:"risk_load"`
	Loading          float64               `json:"loading"`
	PurePremium      float64               `json:"pure_premium"`
	TechnicalPremium float64               `json:"technical_premium"`
	Sensitivity      []QuantileSensitivity `json:"quantile_sensitivity"`
}

func riskLoad(s ImpactSummary, method RiskLoadMethod, confidence float64) float64 {
	switch method {
	case RiskLoadVaR:
		return math.Max(VaR(s, confidence)-s.EAI, 0)
	case RiskLoadTVaR:
		return math.Max(TVaR(s, confidence)-s.EAI, 0)
	case RiskLoadStdev:
		return StdDev(s)
	default:
		return 0
	}
}

// Price derives the full pricing block from a summary. With the none method
// the technical premium reduces to EAI x (1 + loading).
func Price(s ImpactSummary, in PricingInput) Pricing {
	in = in.normalized()
	p := Pricing{
		AAL:            AAL(s),
		PML:            make([]ReturnPeriodImpact, 0, len(StandardReturnPeriods)),
		VaR:            VaR(s, in.Quantile),
		TVaR:           TVaR(s, in.Quantile),
		StdDev:         StdDev(s),
		RiskLoadMethod: in.Method,
		RiskQuantile:   in.Quantile,
		RiskLoad:       riskLoad(s, in.Method, in.Quantile),
		Loading:        in.Loading,
		PurePremium:    PurePremium(s),
	}
	p.TechnicalPremium = TechnicalPremium(s, in.Loading) + p.RiskLoad
	for _, rp := range StandardReturnPeriods {
		p.PML = append(p.PML, ReturnPeriodImpact{ReturnPeriod: rp, Impact: PML(s, rp)})
	}
	for _, q := range SensitivityQuantiles {
		p.Sensitivity = append(p.Sensitivity, QuantileSensitivity{
			Quantile:         q,
			VaR:              VaR(s, q),
			TVaR:             TVaR(s, q),
			TechnicalPremium: TechnicalPremium(s, in.Loading) + riskLoad(s, in.Method, q),
		})
	}
	return p
}

// PortfolioPricing is the multi-hazard premium. Per-hazard risk loads are
// summed with no diversification credit.
type PortfolioPricing struct {
	AAL              float64 `json:"aal"`
	RiskLoad         float64 `json:"risk_load"`
	Loading          float64 `json:"loading"`
	PurePremium      float64 `json:"pure_premium"`
	TechnicalPremium float64 `json:"technical_premium"`
}

// PriceAggregate prices an aggregated result from its per-hazard summaries.
func PriceAggregate(r AggregatedResult, in PricingInput) PortfolioPricing {
	in = in.normalized()
	out := PortfolioPricing{AAL: r.TotalEAI, PurePremium: r.TotalEAI, Loading: in.Loading}
	for _, k := range sortedKinds(r.Summaries) {
		out.RiskLoad += riskLoad(r.Summaries[k], in.Method, in.Quantile)
	}
	out.TechnicalPremium = r.TotalEAI*(1+in.Loading) + out.RiskLoad
	return out
}
