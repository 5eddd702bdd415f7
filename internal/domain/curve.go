package domain

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// CurveDefinition is the static description of a vulnerability curve as it
// appears in the catalog file. Ratios are given either directly (Ratio) or as
// mean damage degree times percentage of assets affected (MDD x PAA).
type CurveDefinition struct {
	ID         int               `yaml:"id" json:"id"`
	Hazard     HazardKind        `yaml:"hazard" json:"hazard"`
	Asset      AssetKind         `yaml:"asset" json:"asset"`
	Name       string            `yaml:"name" json:"name"`
	Unit       string            `yaml:"unit" json:"unit"`
	Status     CalibrationStatus `yaml:"status" json:"status"`
	Source     string            `yaml:"source" json:"source"`
	LossType   string            `yaml:"loss_type" json:"loss_type"`
	References []string          `yaml:"references" json:"references,omitempty"`
	Intensity  []float64         `yaml:"intensity" json:"intensity"`
	Ratio      []float64         `yaml:"ratio,omitempty" json:"ratio,omitempty"`
	MDD        []float64         `yaml:"mdd,omitempty" json:"mdd,omitempty"`
	PAA        []float64         `yaml:"paa,omitempty" json:"paa,omitempty"`
}

// DamageCurve maps hazard intensity to a damage ratio in [0,1] by
// piecewise-linear interpolation. It is immutable once built.
type DamageCurve struct {
	def       CurveDefinition
	intensity []float64
	ratio     []float64
	fit       interp.PiecewiseLinear
}

// NewDamageCurve validates a definition and builds the curve. All shape
// problems are reported here as ErrInvalidCurve.
func NewDamageCurve(def CurveDefinition) (*DamageCurve, error) {
	if def.Hazard == "" {
		return nil, fmt.Errorf("%w: curve %q has no hazard kind", ErrInvalidCurve, def.Name)
	}
	hazard, err := ParseHazardKind(string(def.Hazard))
	if err != nil {
		return nil, fmt.Errorf("%w: curve %q: %v", ErrInvalidCurve, def.Name, err)
	}
	asset, err := ParseAssetKind(string(def.Asset))
	if err != nil {
		return nil, fmt.Errorf("%w: curve %q: %v", ErrInvalidCurve, def.Name, err)
	}
	def.Hazard, def.Asset = hazard, asset
	if def.Status == "" {
		def.Status = StatusPlaceholder
	}
	if !def.Status.valid() {
		return nil, fmt.Errorf("%w: curve %q has unknown status %q", ErrInvalidCurve, def.Name, def.Status)
	}

	n := len(def.Intensity)
	if n < 2 {
		return nil, fmt.Errorf("%w: curve %q needs at least 2 points, got %d", ErrInvalidCurve, def.Name, n)
	}

	ratio, err := resolveRatio(def)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		x, y := def.Intensity[i], ratio[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: curve %q point %d intensity is not finite", ErrInvalidCurve, def.Name, i)
		}
		if math.IsNaN(y) || y < 0 || y > 1 {
			return nil, fmt.Errorf("%w: curve %q point %d ratio %g outside [0,1]", ErrInvalidCurve, def.Name, i, y)
		}
		if i == 0 {
			continue
		}
		if x <= def.Intensity[i-1] {
			return nil, fmt.Errorf("%w: curve %q intensities not strictly increasing at point %d", ErrInvalidCurve, def.Name, i)
		}
		if y < ratio[i-1] {
			return nil, fmt.Errorf("%w: curve %q ratio decreases at point %d", ErrInvalidCurve, def.Name, i)
		}
	}

	c := &DamageCurve{
		def:       def,
		intensity: append([]float64(nil), def.Intensity...),
		ratio:     ratio,
	}
	c.def.Intensity = append([]float64(nil), def.Intensity...)
	c.def.Ratio = append([]float64(nil), ratio...)
	c.def.MDD = append([]float64(nil), def.MDD...)
	c.def.PAA = append([]float64(nil), def.PAA...)
	c.def.References = append([]string(nil), def.References...)
	if err := c.fit.Fit(c.intensity, c.ratio); err != nil {
		return nil, fmt.Errorf("%w: curve %q: %v", ErrInvalidCurve, def.Name, err)
	}
	return c, nil
}

// MustDamageCurve is NewDamageCurve for static tables; it panics on error.
func MustDamageCurve(def CurveDefinition) *DamageCurve {
	c, err := NewDamageCurve(def)
	if err != nil {
		panic(err)
	}
	return c
}

func resolveRatio(def CurveDefinition) ([]float64, error) {
	n := len(def.Intensity)
	if len(def.Ratio) > 0 {
		if len(def.Ratio) != n {
			return nil, fmt.Errorf("%w: curve %q has %d intensities but %d ratios", ErrInvalidCurve, def.Name, n, len(def.Ratio))
		}
		return append([]float64(nil), def.Ratio...), nil
	}
	if len(def.MDD) != n {
		return nil, fmt.Errorf("%w: curve %q has %d intensities but %d mdd values", ErrInvalidCurve, def.Name, n, len(def.MDD))
	}
	out := make([]float64, n)
	for i := range out {
		paa := 1.0
		if len(def.PAA) > 0 {
			if len(def.PAA) != n {
				return nil, fmt.Errorf("%w: curve %q has %d intensities but %d paa values", ErrInvalidCurve, def.Name, n, len(def.PAA))
			}
			paa = def.PAA[i]
		}
		out[i] = def.MDD[i] * paa
	}
	return out, nil
}

// Evaluate returns the damage ratio at the given intensity. Below the first
// point it returns the first ratio, above the last point the last ratio.
// NaN is treated as below range.
func (c *DamageCurve) Evaluate(intensity float64) float64 {
	xs, ys := c.intensity, c.ratio
	n := len(xs)
	if math.IsNaN(intensity) || intensity <= xs[0] {
		return ys[0]
	}
	if intensity >= xs[n-1] {
		return ys[n-1]
	}

	i := sort.SearchFloat64s(xs, intensity)
	if xs[i] == intensity {
		return ys[i]
	}
	r := c.fit.Predict(intensity)

	// Rounding must never push a value outside its segment.
	return math.Min(math.Max(r, ys[i-1]), ys[i])
}

// EvaluateAll applies Evaluate elementwise and returns a slice of the same length.
func (c *DamageCurve) EvaluateAll(intensities []float64) []float64 {
	out := make([]float64, len(intensities))
	for i, x := range intensities {
		out[i] = c.Evaluate(x)
	}
	return out
}

// Hazard returns the hazard kind the curve applies to.
func (c *DamageCurve) Hazard() HazardKind { return c.def.Hazard }

// Asset returns the asset kind the curve applies to.
func (c *DamageCurve) Asset() AssetKind { return c.def.Asset }

// Status returns the calibration status.
func (c *DamageCurve) Status() CalibrationStatus { return c.def.Status }

// Unit returns the intensity unit.
func (c *DamageCurve) Unit() string { return c.def.Unit }

// Name returns the display name.
func (c *DamageCurve) Name() string { return c.def.Name }

// Definition returns a copy of the definition with resolved ratios.
func (c *DamageCurve) Definition() CurveDefinition {
	d := c.def
	d.Intensity = append([]float64(nil), c.def.Intensity...)
	d.Ratio = append([]float64(nil), c.def.Ratio...)
	d.MDD = append([]float64(nil), c.def.MDD...)
	d.PAA = append([]float64(nil), c.def.PAA...)
	d.References = append([]string(nil), c.def.References...)
	return d
}

// ImpactFunction describes the curve used for a result so consumers can tell
// calibrated figures from provisional ones.
type ImpactFunction struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Hazard     HazardKind        `json:"hazard"`
	Asset      AssetKind         `json:"asset"`
	Source     string            `json:"source,omitempty"`
	Type       string            `json:"type,omitempty"`
	Status     CalibrationStatus `json:"status"`
	Unit       string            `json:"intensity_unit"`
	Points     int               `json:"n_calibration_points"`
	References []string          `json:"references,omitempty"`
	Fallback   bool              `json:"fallback"`
}

// Describe returns the descriptor for this curve.
func (c *DamageCurve) Describe() ImpactFunction {
	return ImpactFunction{
		ID:         c.def.ID,
		Name:       c.def.Name,
		Hazard:     c.def.Hazard,
		Asset:      c.def.Asset,
		Source:     c.def.Source,
		Type:       c.def.LossType,
		Status:     c.def.Status,
		Unit:       c.def.Unit,
		Points:     len(c.intensity),
		References: append([]string(nil), c.def.References...),
	}
}

// CurvePoints is the chart-ready export of a curve: raw calibration points
// plus an evenly spaced fine grid.
type CurvePoints struct {
	ImpactFunction
	Intensity     []float64 `json:"intensity"`
	MDD           []float64 `json:"mdd,omitempty"`
	PAA           []float64 `json:"paa,omitempty"`
	MDR           []float64 `json:"mdr"`
	FineIntensity []float64 `json:"fine_intensity"`
	FineMDR       []float64 `json:"fine_mdr"`
}

// Points exports the curve with a fine grid of n evenly spaced samples
// between the first and last calibration point.
func (c *DamageCurve) Points(n int) CurvePoints {
	if n < 2 {
		n = 2
	}
	lo, hi := c.intensity[0], c.intensity[len(c.intensity)-1]
	fine := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range fine {
		fine[i] = lo + float64(i)*step
	}
	fine[n-1] = hi

	return CurvePoints{
		ImpactFunction: c.Describe(),
		Intensity:      append([]float64(nil), c.intensity...),
		MDD:            append([]float64(nil), c.def.MDD...),
		PAA:            append([]float64(nil), c.def.PAA...),
		MDR:            append([]float64(nil), c.ratio...),
		FineIntensity:  fine,
		FineMDR:        c.EvaluateAll(fine),
	}
}
