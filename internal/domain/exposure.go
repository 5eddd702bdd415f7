package domain

import (
	"fmt"
	"math"
	"sort"
)

// ExposurePoint is a single asset: where it is, what it is worth, and which
// curve family applies to it for each hazard kind.
type ExposurePoint struct {
	ID       string                   `json:"id" yaml:"id" validate:"required"`
	Name     string                   `json:"name,omitempty" yaml:"name"`
	Kind     AssetKind                `json:"type,omitempty" yaml:"type"`
	Region   string                   `json:"region,omitempty" yaml:"region"`
	Location Geo                      `json:"location" yaml:"location"`
	Value    float64                  `json:"value" yaml:"value" validate:"gte=0"`
	Linkage  map[HazardKind]AssetKind `json:"linkage" yaml:"linkage"`
}

// Validate checks the value and coordinates.
func (e ExposurePoint) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: exposure has no id", ErrConfiguration)
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) || e.Value < 0 {
		return fmt.Errorf("%w: exposure %s has invalid value %g", ErrConfiguration, e.ID, e.Value)
	}
	lat, lon := e.Location.Lat, e.Location.Lon
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: exposure %s has invalid coordinates (%g, %g)", ErrConfiguration, e.ID, lat, lon)
	}
	return nil
}

// AssetKindFor returns the curve family linked to the hazard kind. A missing
// linkage is a configuration error; an empty linkage value selects GENERIC.
func (e ExposurePoint) AssetKindFor(hazard HazardKind) (AssetKind, error) {
	kind, ok := e.Linkage[hazard]
	if !ok {
		return "", fmt.Errorf("%w: exposure %s has no linkage for hazard %s", ErrConfiguration, e.ID, hazard)
	}
	if kind == assetKindUnspecified {
		return AssetGeneric, nil
	}
	return kind, nil
}

// LinkedHazards returns the hazard kinds the exposure has a linkage for, in
// the canonical hazard order.
func (e ExposurePoint) LinkedHazards() []HazardKind {
	var out []HazardKind
	for _, h := range HazardKinds() {
		if _, ok := e.Linkage[h]; ok {
			out = append(out, h)
		}
	}
	// Unknown kinds supplied by a custom catalog go last, sorted.
	var extra []HazardKind
	for h := range e.Linkage {
		if _, known := hazardMeta[h]; !known {
			extra = append(extra, h)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// LinkAll returns a linkage mapping every given hazard kind to one asset kind.
func LinkAll(asset AssetKind, hazards ...HazardKind) map[HazardKind]AssetKind {
	out := make(map[HazardKind]AssetKind, len(hazards))
	for _, h := range hazards {
		out[h] = asset
	}
	return out
}
