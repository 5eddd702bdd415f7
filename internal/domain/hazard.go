package domain

import (
	"fmt"
	"math"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

// HazardEvent is one realization of a hazard over the centroid grid.
//
// Intensity and Fraction are sparse, keyed by centroid index. A centroid with
// no intensity entry is not reached by the event (intensity 0). A centroid
// with no fraction entry is fully affected (fraction 1).
type HazardEvent struct {
	ID           string          `json:"id" validate:"required"`
	ReturnPeriod float64         `json:"return_period,omitempty" validate:"gte=0"`
	Frequency    float64         `json:"frequency,omitempty" validate:"gte=0"`
	Intensity    map[int]float64 `json:"intensity"`
	Fraction     map[int]float64 `json:"fraction,omitempty"`
}

// AnnualFrequency returns the event's annual occurrence frequency, derived
// from the return period when no explicit frequency is set.
func (e HazardEvent) AnnualFrequency() float64 {
	if e.Frequency > 0 {
		return e.Frequency
	}
	if e.ReturnPeriod > 0 {
		return 1 / e.ReturnPeriod
	}
	return 0
}

// Period returns the return period in years, derived from the frequency when
// not set explicitly.
func (e HazardEvent) Period() float64 {
	if e.ReturnPeriod > 0 {
		return e.ReturnPeriod
	}
	if e.Frequency > 0 {
		return 1 / e.Frequency
	}
	return 0
}

// IntensityAt returns the intensity at a centroid, 0 when absent.
func (e HazardEvent) IntensityAt(centroid int) float64 {
	return e.Intensity[centroid]
}

// FractionAt returns the affected fraction at a centroid, 1 when absent.
func (e HazardEvent) FractionAt(centroid int) float64 {
	if f, ok := e.Fraction[centroid]; ok {
		return f
	}
	return 1
}

func (e HazardEvent) clone() HazardEvent {
	out := e
	out.Intensity = make(map[int]float64, len(e.Intensity))
	for k, v := range e.Intensity {
		out.Intensity[k] = v
	}
	if e.Fraction != nil {
		out.Fraction = make(map[int]float64, len(e.Fraction))
		for k, v := range e.Fraction {
			out.Fraction[k] = v
		}
	}
	return out
}

// HazardEventSet is a finite set of events of one hazard kind sharing a
// centroid grid.
type HazardEventSet struct {
	Kind      HazardKind    `json:"kind" validate:"required"`
	Units     string        `json:"units,omitempty"`
	Centroids []Geo         `json:"centroids" validate:"required,min=1,dive"`
	Events    []HazardEvent `json:"events" validate:"required,min=1,dive"`
}

// Validate checks the set invariants and reports the first violation as
// ErrInvalidHazardData.
func (s *HazardEventSet) Validate() error {
	if s.Kind == "" {
		return fmt.Errorf("%w: event set has no hazard kind", ErrInvalidHazardData)
	}
	if len(s.Centroids) == 0 {
		return fmt.Errorf("%w: %s event set has no centroids", ErrInvalidHazardData, s.Kind)
	}
	for i, c := range s.Centroids {
		if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
			return fmt.Errorf("%w: %s centroid %d has invalid coordinates (%g, %g)", ErrInvalidHazardData, s.Kind, i, c.Lat, c.Lon)
		}
	}
	seen := make(map[string]bool, len(s.Events))
	for _, ev := range s.Events {
		if err := s.validateEvent(ev); err != nil {
			return err
		}
		if seen[ev.ID] {
			return fmt.Errorf("%w: %s duplicate event id %q", ErrInvalidHazardData, s.Kind, ev.ID)
		}
		seen[ev.ID] = true
	}
	return nil
}

func (s *HazardEventSet) validateEvent(ev HazardEvent) error {
	f := ev.AnnualFrequency()
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fmt.Errorf("%w: %s event %q has non-positive frequency", ErrInvalidHazardData, s.Kind, ev.ID)
	}
	n := len(s.Centroids)
	for idx, v := range ev.Intensity {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: %s event %q references centroid %d of %d", ErrInvalidHazardData, s.Kind, ev.ID, idx, n)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s event %q intensity %g at centroid %d", ErrInvalidHazardData, s.Kind, ev.ID, v, idx)
		}
	}
	for idx, v := range ev.Fraction {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: %s event %q references centroid %d of %d", ErrInvalidHazardData, s.Kind, ev.ID, idx, n)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s event %q fraction %g at centroid %d", ErrInvalidHazardData, s.Kind, ev.ID, v, idx)
		}
	}
	return nil
}

// Clone returns a deep copy that shares nothing with the receiver.
func (s *HazardEventSet) Clone() HazardEventSet {
	out := HazardEventSet{
		Kind:      s.Kind,
		Units:     s.Units,
		Centroids: append([]Geo(nil), s.Centroids...),
		Events:    make([]HazardEvent, len(s.Events)),
	}
	for i, ev := range s.Events {
		out.Events[i] = ev.clone()
	}
	return out
}

// MaxIntensity returns the largest intensity found anywhere in the set.
func (s *HazardEventSet) MaxIntensity() float64 {
	var m float64
	for _, ev := range s.Events {
		for _, v := range ev.Intensity {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// ReturnPeriods lists the return period of each event in set order.
func (s *HazardEventSet) ReturnPeriods() []float64 {
	out := make([]float64, len(s.Events))
	for i, ev := range s.Events {
		out[i] = ev.Period()
	}
	return out
}

const earthRadiusKm = 6371.0088

// DistanceKm returns the great-circle (haversine) distance between two points.
func DistanceKm(a, b Geo) float64 {
	const rad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// NearestCentroid returns the index of the grid point closest to p. Ties go
// to the lowest index so the choice is deterministic. It returns -1 for an
// empty grid.
func NearestCentroid(grid []Geo, p Geo) int {
	best, bestDist := -1, math.Inf(1)
	for i, c := range grid {
		if d := DistanceKm(c, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
