package domain

import (
	"fmt"
	"strings"
)

// HazardKind identifies the physical quantity a hazard event set carries.
type HazardKind string

const (
	HazardWind          HazardKind = "WIND"           // 10 m wind speed, knots
	HazardWave          HazardKind = "WAVE"           // significant wave height Hs, metres
	HazardFloodDepth    HazardKind = "FLOOD_DEPTH"    // inundation depth, metres
	HazardHeatDelta     HazardKind = "HEAT_DELTA"     // degrees C above the operating threshold
	HazardFireIntensity HazardKind = "FIRE_INTENSITY" // fire radiative power, MW
)

// hazardMeta holds the display name and the legacy CLIMADA-style code used in
// result payloads ("RF", "HW", ...).
var hazardMeta = map[HazardKind]struct {
	code string
	name string
}{
	HazardWind:          {code: "WS", name: "Wind Storm"},
	HazardWave:          {code: "OW", name: "Ocean Wave"},
	HazardFloodDepth:    {code: "RF", name: "River Flood"},
	HazardHeatDelta:     {code: "HW", name: "Heat Wave"},
	HazardFireIntensity: {code: "WF", name: "Wildfire"},
}

// HazardKinds returns every known hazard kind in a stable order.
func HazardKinds() []HazardKind {
	return []HazardKind{HazardWind, HazardWave, HazardFloodDepth, HazardHeatDelta, HazardFireIntensity}
}

// ParseHazardKind accepts the canonical name ("FLOOD_DEPTH"), a lower-case
// variant, or the short payload code ("RF").
func ParseHazardKind(s string) (HazardKind, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := hazardMeta[HazardKind(v)]; ok {
		return HazardKind(v), nil
	}
	for k, m := range hazardMeta {
		if m.code == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown hazard kind %q", s)
}

// UnmarshalText normalizes hazard kinds read from JSON or YAML, so catalog
// files and requests accept the same spellings as ParseHazardKind.
func (k *HazardKind) UnmarshalText(text []byte) error {
	v, err := ParseHazardKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Code returns the short hazard code used as the payload key.
func (k HazardKind) Code() string {
	if m, ok := hazardMeta[k]; ok {
		return m.code
	}
	return string(k)
}

// TypeName returns the human-readable hazard name.
func (k HazardKind) TypeName() string {
	if m, ok := hazardMeta[k]; ok {
		return m.name
	}
	return string(k)
}

// AssetKind selects a vulnerability curve family.
type AssetKind string

const (
	AssetFPSO          AssetKind = "FPSO"
	AssetFixedPlatform AssetKind = "FIXED_PLATFORM"
	AssetSupportVessel AssetKind = "SUPPORT_VESSEL"
	AssetPipeline      AssetKind = "PIPELINE"
	AssetRefinery      AssetKind = "REFINERY"
	AssetGeneric       AssetKind = "GENERIC"
)

const assetKindUnspecified AssetKind = ""

// AssetKinds returns every known asset kind in a stable order.
func AssetKinds() []AssetKind {
	return []AssetKind{AssetFPSO, AssetFixedPlatform, AssetSupportVessel, AssetPipeline, AssetRefinery, AssetGeneric}
}

// ParseAssetKind normalizes an asset kind. An empty string maps to GENERIC.
func ParseAssetKind(s string) (AssetKind, error) {
	v := AssetKind(strings.ToUpper(strings.TrimSpace(s)))
	if v == assetKindUnspecified {
		return AssetGeneric, nil
	}
	for _, k := range AssetKinds() {
		if k == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown asset kind %q", s)
}

// UnmarshalText normalizes asset kinds read from JSON or YAML.
func (k *AssetKind) UnmarshalText(text []byte) error {
	v, err := ParseAssetKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// CalibrationStatus records how much trust a curve deserves.
type CalibrationStatus string

const (
	StatusCalibrated  CalibrationStatus = "calibrated"
	StatusStub        CalibrationStatus = "stub"
	StatusLegacy      CalibrationStatus = "legacy"
	StatusPlaceholder CalibrationStatus = "placeholder"
)

func (s CalibrationStatus) valid() bool {
	switch s {
	case StatusCalibrated, StatusStub, StatusLegacy, StatusPlaceholder:
		return true
	default:
		return false
	}
}
