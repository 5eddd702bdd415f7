package domain

import "errors"

var (
	// ErrInvalidCurve is returned when a curve definition is malformed. It is
	// raised while building or loading a catalog, never while evaluating.
	ErrInvalidCurve = errors.New("invalid damage curve")

	// ErrCurveNotFound is returned when neither the exact nor the GENERIC
	// curve exists for a (hazard, asset) pair.
	ErrCurveNotFound = errors.New("damage curve not found")

	// ErrInvalidHazardData is returned for negative or NaN intensities,
	// non-positive frequencies and malformed event sets.
	ErrInvalidHazardData = errors.New("invalid hazard data")

	// ErrConfiguration is returned when an exposure lacks the hazard linkage
	// needed to pick a curve.
	ErrConfiguration = errors.New("configuration error")
)

// WarningImpactExceedsValue flags an EAI that exceeded the exposed value and
// was clamped for reporting.
const WarningImpactExceedsValue = "impact_exceeds_value"

// Warning is a non-fatal diagnostic carried alongside a result.
type Warning struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Raw     float64 `json:"raw,omitempty"`
	Limit   float64 `json:"limit,omitempty"`
}
