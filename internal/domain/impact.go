package domain

import "fmt"

// EventImpact is the loss one event causes at one exposure.
type EventImpact struct {
	EventID      string  `json:"event_id"`
	ReturnPeriod float64 `json:"return_period"`
	Frequency    float64 `json:"frequency"`
	Centroid     int     `json:"centroid"`
	Intensity    float64 `json:"intensity"`
	Ratio        float64 `json:"damage_ratio"`
	Fraction     float64 `json:"fraction_affected"`
	Impact       float64 `json:"impact"`
}

// ComputeImpacts evaluates every event of the set at the exposure's nearest
// centroid and returns one impact per event, in event order.
//
// impact = value x curve(intensity) x fraction. The set is validated first, so
// negative or NaN intensities fail with ErrInvalidHazardData instead of
// reaching any financial figure.
func ComputeImpacts(exposure ExposurePoint, set *HazardEventSet, curve *DamageCurve) ([]EventImpact, error) {
	if set == nil || curve == nil {
		return nil, fmt.Errorf("%w: compute impacts needs an event set and a curve", ErrConfiguration)
	}
	if err := exposure.Validate(); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if curve.Hazard() != set.Kind {
		return nil, fmt.Errorf("%w: curve for %s applied to %s event set", ErrConfiguration, curve.Hazard(), set.Kind)
	}

	idx := NearestCentroid(set.Centroids, exposure.Location)
	out := make([]EventImpact, len(set.Events))
	for i, ev := range set.Events {
		x := ev.IntensityAt(idx)
		ratio := curve.Evaluate(x)
		frac := ev.FractionAt(idx)
		out[i] = EventImpact{
			EventID:      ev.ID,
			ReturnPeriod: ev.Period(),
			Frequency:    ev.AnnualFrequency(),
			Centroid:     idx,
			Intensity:    x,
			Ratio:        ratio,
			Fraction:     frac,
			Impact:       exposure.Value * ratio * frac,
		}
	}
	return out, nil
}
