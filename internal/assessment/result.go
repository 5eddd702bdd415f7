package assessment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Payload constants.
const (
	PipelineName = "climate-risk-engine"
	Methodology  = "H x E x V probabilistic impact (nearest centroid, frequency-weighted EAI)"
)

// Result is the full assessment of one asset: baseline per hazard, the
// multi-hazard aggregate and the scenario projections.
type Result struct {
	Metadata    Metadata                      `json:"metadata"`
	Asset       domain.ExposurePoint          `json:"asset"`
	Baseline    Baseline                      `json:"baseline"`
	Aggregated  Aggregated                    `json:"aggregated_results"`
	Projections map[string]ScenarioProjection `json:"projections"`

	// Provisional is set when any figure was computed with a placeholder
	// curve. ProvisionalHazards lists the hazard codes concerned.
	Provisional        bool     `json:"provisional"`
	ProvisionalHazards []string `json:"provisional_hazards,omitempty"`

	OrderingViolations []domain.OrderingViolation `json:"scenario_ordering_violations,omitempty"`
	Failures           []TupleFailure             `json:"failures,omitempty"`
	Limitations        []string                   `json:"limitations"`
}

// Metadata identifies the run that produced a result.
type Metadata struct {
	RunID            string                  `json:"run_id"`
	Pipeline         string                  `json:"pipeline"`
	Version          string                  `json:"version"`
	GeneratedAt      time.Time               `json:"generated_at"`
	Methodology      string                  `json:"methodology"`
	HazardCount      int                     `json:"n_hazards"`
	Scenarios        []string                `json:"scenarios"`
	Horizons         []int                   `json:"horizons"`
	SyntheticHazards bool                    `json:"synthetic_hazards"`
	ExceedanceMethod domain.ExceedanceMethod `json:"exceedance_method"`
	Pricing          domain.PricingInput     `json:"pricing"`
}

// Baseline holds the present-climate result per hazard code ("RF", "HW", ...).
type Baseline struct {
	Hazards map[string]HazardResult `json:"hazards"`
}

// HazardResult is the per-hazard block shared by baseline and projections.
type HazardResult struct {
	Kind           domain.HazardKind     `json:"hazard_kind"`
	Type           string                `json:"type"`
	TypeName       string                `json:"type_name"`
	Events         int                   `json:"n_events"`
	ReturnPeriods  []float64             `json:"return_periods"`
	IntensityUnit  string                `json:"intensity_unit"`
	ThresholdC     *float64              `json:"threshold_c,omitempty"`
	MaxIntensity   float64               `json:"max_intensity"`
	ImpactFunction domain.ImpactFunction `json:"impact_function"`
	Results        HazardFigures         `json:"results"`
	Pricing        domain.Pricing        `json:"pricing"`

	// Set on projections only.
	ScaleFactor *domain.ScalingRule `json:"scale_factor,omitempty"`
	DeltaPct    *float64            `json:"delta_pct,omitempty"`
}

// HazardFigures are the annualized figures of one hazard.
type HazardFigures struct {
	EAI                  float64                     `json:"eai_usd"`
	RawEAI               float64                     `json:"eai_raw_usd"`
	EAIRatioPct          float64                     `json:"eai_ratio_pct"`
	TotalValue           float64                     `json:"total_value_exposed"`
	ImpactByReturnPeriod []domain.ReturnPeriodImpact `json:"impact_by_return_period"`
	ExceedanceCurve      []domain.ExceedancePoint    `json:"exceedance_curve"`
	PresentationCurve    []domain.ExceedancePoint    `json:"presentation_curve"`
	Warnings             []domain.Warning            `json:"warnings,omitempty"`
}

// Aggregated is the multi-hazard block.
type Aggregated struct {
	TotalEAI             float64                                           `json:"eai_total_usd"`
	TotalEAIRatioPct     float64                                           `json:"eai_total_ratio_pct"`
	ContributionPct      map[string]float64                                `json:"contribution_pct"`
	Method               string                                            `json:"aggregation_method"`
	Note                 string                                            `json:"note"`
	ImpactByReturnPeriod []domain.CombinedReturnPeriod                     `json:"impact_by_return_period"`
	Unmatched            map[domain.HazardKind][]domain.ReturnPeriodImpact `json:"unmatched_return_periods,omitempty"`
	Pricing              domain.PortfolioPricing                           `json:"pricing"`
	DeltaPct             *float64                                          `json:"delta_pct,omitempty"`
	Warnings             []domain.Warning                                  `json:"warnings,omitempty"`
}

// ScenarioProjection holds every horizon of one scenario.
type ScenarioProjection struct {
	ScenarioName string                    `json:"scenario_name"`
	Description  string                    `json:"description"`
	Horizons     map[int]HorizonProjection `json:"horizons"`
}

// HorizonProjection is one (scenario, horizon) cell.
type HorizonProjection struct {
	WarmingC     float64                       `json:"warming_c"`
	ScaleFactors map[string]domain.ScalingRule `json:"scale_factors"`
	Hazards      map[string]HazardResult       `json:"hazards"`
	Aggregated   Aggregated                    `json:"aggregated"`
}

// TupleFailure records one (asset, hazard, scenario, horizon) computation that
// failed without aborting the rest of the assessment.
type TupleFailure struct {
	AssetID  string            `json:"asset_id"`
	Hazard   domain.HazardKind `json:"hazard"`
	Scenario string            `json:"scenario"`
	Horizon  int               `json:"horizon,omitempty"`
	Reason   string            `json:"reason"`
	Error    string            `json:"error"`
}

// EAITotal returns the aggregated baseline EAI.
func (r *Result) EAITotal() float64 { return r.Aggregated.TotalEAI }

// Serialize encodes a result as a sink message keyed by asset id.
func Serialize(r *Result) (domain.OutputMessage, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("marshal result %s: %w", r.Asset.ID, err)
	}
	return domain.OutputMessage{
		Key:   []byte(r.Asset.ID),
		Value: data,
		Headers: map[string]string{
			"asset_id":     r.Asset.ID,
			"run_id":       r.Metadata.RunID,
			"generated_at": r.Metadata.GeneratedAt.Format(time.RFC3339),
			"provisional":  strconv.FormatBool(r.Provisional),
			"failures":     strconv.Itoa(len(r.Failures)),
		},
	}, nil
}

// ObjectKey is the storage key of a result document.
func ObjectKey(assetID string) string {
	return "results/" + FileName(assetID)
}

// FileName is the local file name of a result document.
func FileName(assetID string) string {
	return "results_" + assetID + ".json"
}
