package domain

// Built-in vulnerability curves for offshore and onshore oil & gas assets.
//
// Wind is in knots, wave is significant wave height in metres, flood is
// inundation depth in metres, heat is degrees above the 35 C operating
// threshold, fire is fire radiative power in MW.

// Legacy three-state model thresholds. GENERIC wind and wave curves must
// reproduce 0 / 35% / 100% exactly at and beyond these points.
const (
	LegacyWindAttentionKn = 15.0
	LegacyWindStopKn      = 20.0
	LegacyWaveAttentionM  = 2.0
	LegacyWaveStopM       = 4.0
	LegacyAttentionRatio  = 0.35
	LegacyStopRatio       = 1.0
)

var (
	fpsoWindIntensity = []float64{0, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 65}
	fpsoWindMDD       = []float64{0.00, 0.01, 0.04, 0.08, 0.14, 0.24, 0.35, 0.50, 0.65, 0.78, 0.88, 0.95}
	fpsoWindPAA       = []float64{0.00, 0.10, 0.30, 0.60, 0.85, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00}

	fpsoWaveIntensity = []float64{0, 1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 8, 10, 12}
	fpsoWaveMDD       = []float64{0.00, 0.01, 0.04, 0.10, 0.22, 0.38, 0.55, 0.72, 0.85, 0.93}
	fpsoWavePAA       = []float64{0.00, 0.10, 0.40, 0.70, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00}

	pipelineWaveIntensity = []float64{0, 3, 5, 7, 9, 12, 15}
	pipelineWaveMDD       = []float64{0.00, 0.00, 0.03, 0.10, 0.28, 0.55, 0.80}
	pipelineWavePAA       = []float64{0.00, 0.00, 0.20, 0.60, 1.00, 1.00, 1.00}

	floodDepth = []float64{0, 0.5, 1, 2, 4, 6}
	floodRatio = []float64{0.00, 0.25, 0.40, 0.60, 0.85, 1.00}

	refineryFloodDepth = []float64{0, 0.5, 1, 1.5, 2, 3, 4, 5, 6}
	refineryFloodMDD   = []float64{0.00, 0.04, 0.08, 0.14, 0.22, 0.38, 0.52, 0.64, 0.75}

	heatDelta = []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}
	heatRatio = []float64{0.00, 0.02, 0.05, 0.10, 0.15, 0.21, 0.28, 0.34, 0.40, 0.52}

	fireFRP   = []float64{0, 50, 200, 500, 1000, 2000}
	fireRatio = []float64{0.00, 0.02, 0.10, 0.30, 0.60, 0.85}
)

var (
	refsFPSO     = []string{"DNV-ST-0119", "DNVGL-OS-E301", "API RP 2SK", "OGP 434-14"}
	refsFixed    = []string{"API RP 2A-WSD", "ISO 19901-2"}
	refsVessel   = []string{"IMO MODU Code", "DNV-GL Ship Rules"}
	refsPipeline = []string{"DNV-ST-F101", "DNVGL-RP-F105", "API RP 1111"}
	refsLegacy   = []string{"internal three-state operating model"}
	refsFlood    = []string{"Huizinga et al. (2017), doi:10.2760/16510"}
	refsHeat     = []string{"ECA/McKinsey (2009)", "Kjellstrom et al. (2016)", "ILO (2019)"}
)

// BuiltinCurves returns the definitions of the default catalog.
func BuiltinCurves() []CurveDefinition {
	return []CurveDefinition{
		{
			ID: 1, Hazard: HazardWind, Asset: AssetFPSO, Unit: "kn",
			Name: "FPSO/FLNG - Wind Vulnerability (kn)", Status: StatusCalibrated,
			Source: "literature review, Santos Basin pre-salt operations", LossType: "operational_loss",
			References: refsFPSO, Intensity: fpsoWindIntensity, MDD: fpsoWindMDD, PAA: fpsoWindPAA,
		},
		{
			ID: 2, Hazard: HazardWave, Asset: AssetFPSO, Unit: "m",
			Name: "FPSO/FLNG - Wave Vulnerability (Hs m)", Status: StatusCalibrated,
			Source: "DNVGL-OS-E301 / API RP 2SK operating limits", LossType: "operational_loss",
			References: refsFPSO, Intensity: fpsoWaveIntensity, MDD: fpsoWaveMDD, PAA: fpsoWavePAA,
		},
		{
			ID: 3, Hazard: HazardWind, Asset: AssetPipeline, Unit: "kn",
			Name: "Subsea Pipeline - Wind (no direct sensitivity)", Status: StatusStub,
			Source: "engineering judgement", LossType: "structural_damage",
			References: refsPipeline, Intensity: []float64{0, 100}, Ratio: []float64{0, 0},
		},
		{
			ID: 4, Hazard: HazardWave, Asset: AssetPipeline, Unit: "m",
			Name: "Subsea Pipeline - Wave Vulnerability (Hs m)", Status: StatusStub,
			Source: "riser fatigue and on-bottom stability proxy", LossType: "structural_damage",
			References: refsPipeline, Intensity: pipelineWaveIntensity, MDD: pipelineWaveMDD, PAA: pipelineWavePAA,
		},
		{
			ID: 5, Hazard: HazardWind, Asset: AssetGeneric, Unit: "kn",
			Name: "Generic Offshore - Wind step (legacy)", Status: StatusLegacy,
			Source: "three-state operating model", LossType: "operational_loss", References: refsLegacy,
			Intensity: []float64{0, 14.9, LegacyWindAttentionKn, 19.9, LegacyWindStopKn, 100},
			Ratio:     []float64{0, 0, LegacyAttentionRatio, LegacyAttentionRatio, LegacyStopRatio, LegacyStopRatio},
		},
		{
			ID: 6, Hazard: HazardWave, Asset: AssetGeneric, Unit: "m",
			Name: "Generic Offshore - Wave step (legacy)", Status: StatusLegacy,
			Source: "three-state operating model", LossType: "operational_loss", References: refsLegacy,
			Intensity: []float64{0, 1.9, LegacyWaveAttentionM, 3.9, LegacyWaveStopM, 20},
			Ratio:     []float64{0, 0, LegacyAttentionRatio, LegacyAttentionRatio, LegacyStopRatio, LegacyStopRatio},
		},
		{
			ID: 7, Hazard: HazardWind, Asset: AssetFixedPlatform, Unit: "kn",
			Name: "Fixed Platform - Wind (FPSO proxy)", Status: StatusStub,
			Source: "FPSO curve pending calibration", LossType: "operational_loss",
			References: refsFixed, Intensity: fpsoWindIntensity, MDD: fpsoWindMDD, PAA: fpsoWindPAA,
		},
		{
			ID: 8, Hazard: HazardWave, Asset: AssetFixedPlatform, Unit: "m",
			Name: "Fixed Platform - Wave (FPSO proxy)", Status: StatusStub,
			Source: "FPSO curve pending calibration", LossType: "operational_loss",
			References: refsFixed, Intensity: fpsoWaveIntensity, MDD: fpsoWaveMDD, PAA: fpsoWavePAA,
		},
		{
			ID: 9, Hazard: HazardWind, Asset: AssetSupportVessel, Unit: "kn",
			Name: "Support Vessel - Wind (FPSO proxy)", Status: StatusStub,
			Source: "FPSO curve pending calibration", LossType: "operational_loss",
			References: refsVessel, Intensity: fpsoWindIntensity, MDD: fpsoWindMDD, PAA: fpsoWindPAA,
		},
		{
			ID: 10, Hazard: HazardWave, Asset: AssetSupportVessel, Unit: "m",
			Name: "Support Vessel - Wave (FPSO proxy)", Status: StatusStub,
			Source: "FPSO curve pending calibration", LossType: "operational_loss",
			References: refsVessel, Intensity: fpsoWaveIntensity, MDD: fpsoWaveMDD, PAA: fpsoWavePAA,
		},
		{
			ID: 11, Hazard: HazardFloodDepth, Asset: AssetGeneric, Unit: "m",
			Name: "Flood depth-damage - Industrial", Status: StatusCalibrated,
			Source: "Huizinga et al. (2017), doi: 10.2760/16510", LossType: "structural_damage",
			References: refsFlood, Intensity: floodDepth, Ratio: floodRatio,
		},
		{
			ID: 12, Hazard: HazardFloodDepth, Asset: AssetRefinery, Unit: "m",
			Name: "Flood damage - South America (manual)", Status: StatusStub,
			Source: "JRC South America residential", LossType: "structural_damage",
			References: refsFlood, Intensity: refineryFloodDepth, MDD: refineryFloodMDD,
		},
		{
			ID: 13, Hazard: HazardHeatDelta, Asset: AssetGeneric, Unit: "deg_C above threshold",
			Name: "Heat Wave - Industrial Facility", Status: StatusStub,
			Source: "Custom - ECA/McKinsey (2009), Kjellstrom et al. (2016), ILO (2019)", LossType: "operational_loss",
			References: refsHeat, Intensity: heatDelta, Ratio: heatRatio,
		},
		{
			ID: 14, Hazard: HazardFireIntensity, Asset: AssetGeneric, Unit: "MW",
			Name: "Wildfire - Industrial Facility (placeholder)", Status: StatusPlaceholder,
			Source: "not calibrated", LossType: "structural_damage",
			Intensity: fireFRP, Ratio: fireRatio,
		},
	}
}

// BuiltinCatalog builds the default catalog. The tables are static, so a
// failure here is a programming error.
func BuiltinCatalog() *CurveCatalog {
	cat, err := NewCatalog(BuiltinCurves()...)
	if err != nil {
		panic(err)
	}
	return cat
}

// AssetType describes an asset kind for listing endpoints.
type AssetType struct {
	ID          AssetKind         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	References  []string          `json:"references"`
	Status      CalibrationStatus `json:"status"`
	Hazards     []HazardKind      `json:"hazards_supported"`
}

var assetTypeMeta = map[AssetKind]AssetType{
	AssetFPSO: {
		Name:        "FPSO / FLNG",
		Description: "Floating production, storage and offloading unit. Operations are sensitive to wind and waves above warranty surveyor limits.",
		References:  refsFPSO,
		Status:      StatusCalibrated,
	},
	AssetFixedPlatform: {
		Name:        "Fixed Platform / Semi-submersible",
		Description: "Seabed-anchored structure, more vulnerable to long-period waves (fatigue) than to wind. Uses FPSO curves until calibrated.",
		References:  refsFixed,
		Status:      StatusStub,
	},
	AssetSupportVessel: {
		Name:        "Support Vessel (PSV / AHTS)",
		Description: "Offshore support ships with more conservative operating limits than FPSOs.",
		References:  refsVessel,
		Status:      StatusStub,
	},
	AssetPipeline: {
		Name:        "Subsea Pipeline / Risers",
		Description: "Submerged infrastructure, insensitive to wind, dominated by currents and waves.",
		References:  refsPipeline,
		Status:      StatusStub,
	},
	AssetRefinery: {
		Name:        "Onshore Refinery",
		Description: "Coastal processing plant exposed to river flooding and heat stress.",
		References:  refsFlood,
		Status:      StatusStub,
	},
	AssetGeneric: {
		Name:        "Generic (legacy)",
		Description: "Three-state step model (0% / 35% / 100%) kept for comparison with pre-curve results, plus generic flood, heat and fire curves.",
		References:  refsLegacy,
		Status:      StatusLegacy,
	},
}

// AssetTypes lists the asset kinds with the hazards each has curves for.
func (c *CurveCatalog) AssetTypes() []AssetType {
	out := make([]AssetType, 0, len(assetTypeMeta))
	for _, k := range AssetKinds() {
		meta, ok := assetTypeMeta[k]
		if !ok {
			continue
		}
		meta.ID = k
		meta.References = append([]string(nil), meta.References...)
		meta.Hazards = c.HazardsFor(k)
		out = append(out, meta)
	}
	return out
}
