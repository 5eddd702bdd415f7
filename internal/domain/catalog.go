package domain

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type curveKey struct {
	hazard HazardKind
	asset  AssetKind
}

// CurveCatalog is the read-only set of damage curves indexed by
// (hazard kind, asset kind). Build it once at startup and pass it to every
// computation; it has no write path and is safe for concurrent use.
type CurveCatalog struct {
	curves map[curveKey]*DamageCurve
}

// NewCatalog validates every definition and indexes the resulting curves.
// Duplicate (hazard, asset) pairs are rejected.
func NewCatalog(defs ...CurveDefinition) (*CurveCatalog, error) {
	cat := &CurveCatalog{curves: make(map[curveKey]*DamageCurve, len(defs))}
	for _, def := range defs {
		c, err := NewDamageCurve(def)
		if err != nil {
			return nil, err
		}
		key := curveKey{hazard: c.Hazard(), asset: c.Asset()}
		if _, dup := cat.curves[key]; dup {
			return nil, fmt.Errorf("%w: duplicate curve for %s/%s", ErrInvalidCurve, key.hazard, key.asset)
		}
		cat.curves[key] = c
	}
	return cat, nil
}

// Resolution records how a curve lookup was satisfied.
type Resolution struct {
	Curve     *DamageCurve
	Hazard    HazardKind
	Requested AssetKind
	Resolved  AssetKind
	Fallback  bool
}

// FallbackOrder lists the asset kinds tried, in order, when resolving a curve
// for the given asset kind.
func FallbackOrder(asset AssetKind) []AssetKind {
	if asset == assetKindUnspecified || asset == AssetGeneric {
		return []AssetKind{AssetGeneric}
	}
	return []AssetKind{asset, AssetGeneric}
}

// Resolve looks up the curve for (hazard, asset) following FallbackOrder.
func (c *CurveCatalog) Resolve(hazard HazardKind, asset AssetKind) (Resolution, error) {
	if asset == assetKindUnspecified {
		asset = AssetGeneric
	}
	for i, candidate := range FallbackOrder(asset) {
		if curve, ok := c.curves[curveKey{hazard: hazard, asset: candidate}]; ok {
			return Resolution{
				Curve:     curve,
				Hazard:    hazard,
				Requested: asset,
				Resolved:  candidate,
				Fallback:  i > 0,
			}, nil
		}
	}
	return Resolution{}, fmt.Errorf("%w: %s/%s (also tried %s)", ErrCurveNotFound, hazard, asset, AssetGeneric)
}

// Select returns the curve for (hazard, asset) with the GENERIC fallback.
func (c *CurveCatalog) Select(hazard HazardKind, asset AssetKind) (*DamageCurve, error) {
	r, err := c.Resolve(hazard, asset)
	if err != nil {
		return nil, err
	}
	return r.Curve, nil
}

// Curves returns all curves ordered by hazard then asset.
func (c *CurveCatalog) Curves() []*DamageCurve {
	out := make([]*DamageCurve, 0, len(c.curves))
	for _, curve := range c.curves {
		out = append(out, curve)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hazard() != out[j].Hazard() {
			return out[i].Hazard() < out[j].Hazard()
		}
		return out[i].Asset() < out[j].Asset()
	})
	return out
}

// HazardsFor lists the hazard kinds that have a curve registered specifically
// for the asset kind.
func (c *CurveCatalog) HazardsFor(asset AssetKind) []HazardKind {
	var out []HazardKind
	for _, h := range HazardKinds() {
		if _, ok := c.curves[curveKey{hazard: h, asset: asset}]; ok {
			out = append(out, h)
		}
	}
	return out
}

type catalogFile struct {
	Curves []CurveDefinition `yaml:"curves"`
}

// ParseCatalog builds a catalog from YAML.
func ParseCatalog(data []byte) (*CurveCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrInvalidCurve, err)
	}
	if len(f.Curves) == 0 {
		return nil, fmt.Errorf("%w: catalog has no curves", ErrInvalidCurve)
	}
	return NewCatalog(f.Curves...)
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*CurveCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curve catalog: %w", err)
	}
	return ParseCatalog(data)
}
