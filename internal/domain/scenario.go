package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ScalingMode selects how a scaling rule transforms intensities.
type ScalingMode string

const (
	ScalingMultiplicative ScalingMode = "MULTIPLICATIVE"
	ScalingAdditive       ScalingMode = "ADDITIVE"
)

// ScalingRule rescales baseline intensities to a future climate.
type ScalingRule struct {
	Mode  ScalingMode `json:"mode"`
	Value float64     `json:"value"`
}

// Multiplicative returns intensity x factor.
func Multiplicative(factor float64) ScalingRule {
	return ScalingRule{Mode: ScalingMultiplicative, Value: factor}
}

// Additive returns intensity + offset.
func Additive(offset float64) ScalingRule {
	return ScalingRule{Mode: ScalingAdditive, Value: offset}
}

// Apply returns the scaled intensity, floored at zero.
func (r ScalingRule) Apply(x float64) float64 {
	var y float64
	if r.Mode == ScalingAdditive {
		y = x + r.Value
	} else {
		y = x * r.Value
	}
	return math.Max(0, y)
}

// DeltaPct is the relative change the rule implies for a unit baseline
// intensity, in percent. For additive rules it is not meaningful and returns 0.
func (r ScalingRule) DeltaPct() float64 {
	if r.Mode == ScalingMultiplicative {
		return (r.Value - 1) * 100
	}
	return 0
}

func (r ScalingRule) validate() error {
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return fmt.Errorf("%w: scaling value %g is not finite", ErrConfiguration, r.Value)
	}
	switch r.Mode {
	case ScalingMultiplicative:
		if r.Value < 0 {
			return fmt.Errorf("%w: multiplicative factor %g is negative", ErrConfiguration, r.Value)
		}
	case ScalingAdditive:
	default:
		return fmt.Errorf("%w: unknown scaling mode %q", ErrConfiguration, r.Mode)
	}
	return nil
}

// Project derives a future event set from the baseline. Only intensities at
// reached centroids change; event identity, order, frequency and fraction are
// preserved, and the baseline is never modified.
func Project(baseline *HazardEventSet, hazard HazardKind, rule ScalingRule) (HazardEventSet, error) {
	if baseline == nil {
		return HazardEventSet{}, fmt.Errorf("%w: nil baseline event set", ErrInvalidHazardData)
	}
	if baseline.Kind != hazard {
		return HazardEventSet{}, fmt.Errorf("%w: %s rule applied to %s event set", ErrConfiguration, hazard, baseline.Kind)
	}
	if err := rule.validate(); err != nil {
		return HazardEventSet{}, err
	}

	out := baseline.Clone()
	for i := range out.Events {
		for idx, x := range out.Events[i].Intensity {
			out.Events[i].Intensity[idx] = rule.Apply(x)
		}
	}
	return out, nil
}

// Scenario is an emissions pathway with its global warming level increase
// over the baseline period at each horizon.
type Scenario struct {
	ID          string          `json:"id"`
	Name        string          `json:"scenario_name"`
	Description string          `json:"description"`
	Forcing     int             `json:"-"`
	Warming     map[int]float64 `json:"warming_c"`
}

// Horizons returns the scenario horizons in ascending order.
func (s Scenario) Horizons() []int {
	out := make([]int, 0, len(s.Warming))
	for h := range s.Warming {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

// Scenario identifiers.
const (
	ScenarioBaseline = "baseline"
	ScenarioSSP245   = "ssp245"
	ScenarioSSP585   = "ssp585"
)

// DefaultHorizons are the projection years.
var DefaultHorizons = []int{2030, 2050, 2100}

// Scenarios returns the built-in scenario table ordered by forcing. Warming
// is the global mean surface temperature increase above the baseline period,
// in degrees C, at each horizon.
func Scenarios() []Scenario {
	return []Scenario{
		{
			ID:          ScenarioSSP245,
			Name:        "SSP2-4.5 (Moderate)",
			Description: "Middle of the road - moderate challenges",
			Forcing:     1,
			Warming:     map[int]float64{2030: 0.4, 2050: 0.9, 2100: 1.6},
		},
		{
			ID:          ScenarioSSP585,
			Name:        "SSP5-8.5 (High Emissions)",
			Description: "Fossil-fueled development - high challenges",
			Forcing:     2,
			Warming:     map[int]float64{2030: 0.5, 2050: 1.3, 2100: 3.3},
		},
	}
}

// LookupScenario finds a built-in scenario by id, case-insensitively.
func LookupScenario(id string) (Scenario, error) {
	want := strings.ToLower(strings.TrimSpace(id))
	for _, s := range Scenarios() {
		if s.ID == want {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: unknown scenario %q", ErrConfiguration, id)
}

// HazardScaling is how one hazard kind responds to warming.
type HazardScaling struct {
	Mode ScalingMode
	// PerDegree is the fractional intensity change per degree of warming for
	// multiplicative hazards, or the regional amplification of global warming
	// for additive ones.
	PerDegree float64
}

// DefaultScaling is the per-hazard response used by the projector.
var DefaultScaling = map[HazardKind]HazardScaling{
	HazardFloodDepth:    {Mode: ScalingMultiplicative, PerDegree: 0.07},
	HazardHeatDelta:     {Mode: ScalingAdditive, PerDegree: 1.2},
	HazardWind:          {Mode: ScalingMultiplicative, PerDegree: 0.02},
	HazardWave:          {Mode: ScalingMultiplicative, PerDegree: 0.02},
	HazardFireIntensity: {Mode: ScalingMultiplicative, PerDegree: 0.10},
}

// RuleFor returns the scaling rule for a hazard kind under a scenario at a
// horizon.
func RuleFor(s Scenario, horizon int, hazard HazardKind) (ScalingRule, error) {
	warming, ok := s.Warming[horizon]
	if !ok {
		return ScalingRule{}, fmt.Errorf("%w: scenario %s has no horizon %d", ErrConfiguration, s.ID, horizon)
	}
	hs, ok := DefaultScaling[hazard]
	if !ok {
		return ScalingRule{}, fmt.Errorf("%w: no scaling for hazard %s", ErrConfiguration, hazard)
	}
	if hs.Mode == ScalingAdditive {
		return Additive(warming * hs.PerDegree), nil
	}
	return Multiplicative(1 + hs.PerDegree*warming), nil
}

// ScenarioEAI is one projected EAI used by the ordering diagnostic.
type ScenarioEAI struct {
	Scenario Scenario
	Horizon  int
	EAI      float64
}

// OrderingViolation describes a projected EAI that breaks the expected
// ordering by warming level or forcing.
type OrderingViolation struct {
	Hazard  HazardKind `json:"hazard"`
	Message string     `json:"message"`
}

// CheckScenarioOrdering checks, for one hazard, that projected EAI is at
// least the baseline, non-decreasing in horizon within a scenario and
// non-decreasing in forcing at each horizon. It reports rather than fails.
func CheckScenarioOrdering(hazard HazardKind, baseline float64, projected []ScenarioEAI) []OrderingViolation {
	const tol = 1e-9
	var out []OrderingViolation
	add := func(format string, args ...any) {
		out = append(out, OrderingViolation{Hazard: hazard, Message: fmt.Sprintf(format, args...)})
	}

	pts := append([]ScenarioEAI(nil), projected...)
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].Scenario.Forcing != pts[j].Scenario.Forcing {
			return pts[i].Scenario.Forcing < pts[j].Scenario.Forcing
		}
		return pts[i].Horizon < pts[j].Horizon
	})

	for _, p := range pts {
		if p.EAI < baseline*(1-tol) {
			add("%s %d EAI %.2f below baseline %.2f", p.Scenario.ID, p.Horizon, p.EAI, baseline)
		}
	}
	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		if prev.Scenario.ID == cur.Scenario.ID && cur.EAI < prev.EAI*(1-tol) {
			add("%s EAI decreases from %d (%.2f) to %d (%.2f)", cur.Scenario.ID, prev.Horizon, prev.EAI, cur.Horizon, cur.EAI)
		}
	}
	for i := range pts {
		for j := range pts {
			lo, hi := pts[i], pts[j]
			if lo.Horizon != hi.Horizon || lo.Scenario.Forcing >= hi.Scenario.Forcing {
				continue
			}
			if hi.EAI < lo.EAI*(1-tol) {
				add("%d: %s EAI %.2f below %s EAI %.2f", hi.Horizon, hi.Scenario.ID, hi.EAI, lo.Scenario.ID, lo.EAI)
			}
		}
	}
	return out
}
