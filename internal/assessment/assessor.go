package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// Version is reported in result metadata.
const Version = "1.0.0"

// Options are the service defaults applied to every request.
type Options struct {
	Pricing    domain.PricingInput
	Exceedance domain.ExceedanceMethod
}

// Assessor runs the H x E x V pipeline for one asset at a time. It holds no
// mutable state and is safe for concurrent use.
type Assessor struct {
	catalog  *domain.CurveCatalog
	opts     Options
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
	newRunID func() string
}

// New creates an Assessor. Pass a nil geocoder to disable region labeling.
func New(catalog *domain.CurveCatalog, opts Options, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	if opts.Exceedance == "" {
		opts.Exceedance = domain.ExceedanceStep
	}
	return &Assessor{
		catalog:  catalog,
		opts:     opts,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
		newRunID: uuid.NewString,
	}
}

// NewFromConfig loads the curve catalog named by the configuration (or the
// built-in one) and creates an Assessor with the configured pricing.
func NewFromConfig(cfg *config.Config, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) (*Assessor, error) {
	catalog := domain.BuiltinCatalog()
	if cfg.CurveCatalogPath != "" {
		c, err := domain.LoadCatalog(cfg.CurveCatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = c
		logger.Info("curve catalog loaded", "path", cfg.CurveCatalogPath, "curves", len(c.Curves()))
	}

	method, err := domain.ParseRiskLoadMethod(cfg.RiskLoadMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	exceedance, err := domain.ParseExceedanceMethod(cfg.ExceedanceMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	return New(catalog, Options{
		Pricing: domain.PricingInput{
			Loading:  cfg.PremiumLoading,
			Method:   method,
			Quantile: cfg.RiskQuantile,
		},
		Exceedance: exceedance,
	}, geocoder, logger, metrics), nil
}

// Catalog returns the curve catalog the assessor resolves curves from.
func (a *Assessor) Catalog() *domain.CurveCatalog { return a.catalog }

// baselineRun is the state carried from the baseline into the projections
// for one hazard.
type baselineRun struct {
	set        *domain.HazardEventSet
	resolution domain.Resolution
	summary    domain.ImpactSummary
}

// Assess computes the full result for one request. It returns an error only
// when the request itself is unusable; failures of individual (hazard,
// scenario, horizon) tuples are recorded in Result.Failures.
func (a *Assessor) Assess(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() { a.metrics.AssessmentDuration.Observe(time.Since(start).Seconds()) }()

	res, err := a.assess(ctx, req)
	if err != nil {
		a.metrics.AssessmentErrors.Inc()
		return nil, err
	}
	return res, nil
}

func (a *Assessor) assess(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exposure := domain.LabelRegion(ctx, req.Asset, a.geocoder, a.logger)
	hazards := req.Hazards
	synthetic := len(hazards) == 0
	if synthetic {
		hazards = domain.SyntheticHazards(exposure.Location)
	}

	if len(exposure.Linkage) == 0 {
		kind, err := domain.ParseAssetKind(string(exposure.Kind))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		exposure.Linkage = domain.LinkAll(kind, hazardKinds(hazards)...)
		a.logger.Info("exposure linkage defaulted",
			"asset_id", exposure.ID,
			"asset_kind", kind,
			"hazards", len(hazards),
		)
	}
	if err := exposure.Validate(); err != nil {
		return nil, fmt.Errorf("assess %s: %w", exposure.ID, err)
	}

	pricing := req.pricing(a.opts.Pricing)
	scenarios := req.scenarios()
	horizons := req.horizons()

	res := &Result{
		Metadata: Metadata{
			RunID:            a.newRunID(),
			Pipeline:         PipelineName,
			Version:          Version,
			GeneratedAt:      domain.Now(),
			Methodology:      Methodology,
			HazardCount:      len(hazards),
			Scenarios:        scenarioIDs(scenarios),
			Horizons:         horizons,
			SyntheticHazards: synthetic,
			ExceedanceMethod: a.opts.Exceedance,
			Pricing:          pricing,
		},
		Asset:       exposure,
		Baseline:    Baseline{Hazards: make(map[string]HazardResult, len(hazards))},
		Projections: make(map[string]ScenarioProjection, len(scenarios)),
	}

	var runs []baselineRun
	summaries := make(map[domain.HazardKind]domain.ImpactSummary, len(hazards))
	for i := range hazards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		set := &hazards[i]

		resolution, err := a.resolveCurve(exposure, set.Kind)
		if err != nil {
			a.recordFailure(res, exposure.ID, set.Kind, domain.ScenarioBaseline, 0, err)
			continue
		}
		hr, summary, err := a.evaluate(exposure, set, resolution, pricing)
		if err != nil {
			a.recordFailure(res, exposure.ID, set.Kind, domain.ScenarioBaseline, 0, err)
			continue
		}

		res.Baseline.Hazards[set.Kind.Code()] = hr
		summaries[set.Kind] = summary
		runs = append(runs, baselineRun{set: set, resolution: resolution, summary: summary})
		if resolution.Curve.Status() == domain.StatusPlaceholder {
			res.Provisional = true
			res.ProvisionalHazards = append(res.ProvisionalHazards, set.Kind.Code())
		}
	}
	res.Aggregated = aggregate(summaries, pricing)

	projected := make(map[domain.HazardKind][]domain.ScenarioEAI, len(runs))
	for _, s := range scenarios {
		sp := ScenarioProjection{
			ScenarioName: s.Name,
			Description:  s.Description,
			Horizons:     make(map[int]HorizonProjection, len(horizons)),
		}
		for _, h := range horizons {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			hp, eais := a.project(res, exposure, runs, s, h, pricing)
			hp.Aggregated.DeltaPct = deltaPct(res.Aggregated.TotalEAI, hp.Aggregated.TotalEAI)
			sp.Horizons[h] = hp
			for k, e := range eais {
				projected[k] = append(projected[k], e)
			}
		}
		res.Projections[s.ID] = sp
	}

	for _, r := range runs {
		violations := domain.CheckScenarioOrdering(r.set.Kind, r.summary.EAI, projected[r.set.Kind])
		for _, v := range violations {
			a.logger.Warn("scenario ordering violated", "asset_id", exposure.ID, "hazard", v.Hazard, "detail", v.Message)
		}
		res.OrderingViolations = append(res.OrderingViolations, violations...)
	}

	res.Limitations = limitations(synthetic, runs, len(scenarios) > 0)
	return res, nil
}

// project evaluates every baseline hazard under one scenario and horizon.
func (a *Assessor) project(res *Result, exposure domain.ExposurePoint, runs []baselineRun, s domain.Scenario, horizon int, pricing domain.PricingInput) (HorizonProjection, map[domain.HazardKind]domain.ScenarioEAI) {
	hp := HorizonProjection{
		WarmingC:     s.Warming[horizon],
		ScaleFactors: make(map[string]domain.ScalingRule, len(runs)),
		Hazards:      make(map[string]HazardResult, len(runs)),
	}
	summaries := make(map[domain.HazardKind]domain.ImpactSummary, len(runs))
	eais := make(map[domain.HazardKind]domain.ScenarioEAI, len(runs))

	for _, r := range runs {
		kind := r.set.Kind
		rule, err := domain.RuleFor(s, horizon, kind)
		if err != nil {
			a.recordFailure(res, exposure.ID, kind, s.ID, horizon, err)
			continue
		}
		future, err := domain.Project(r.set, kind, rule)
		if err != nil {
			a.recordFailure(res, exposure.ID, kind, s.ID, horizon, err)
			continue
		}
		hr, summary, err := a.evaluate(exposure, &future, r.resolution, pricing)
		if err != nil {
			a.recordFailure(res, exposure.ID, kind, s.ID, horizon, err)
			continue
		}

		hr.ScaleFactor = &rule
		hr.DeltaPct = deltaPct(r.summary.EAI, summary.EAI)
		hp.ScaleFactors[kind.Code()] = rule
		hp.Hazards[kind.Code()] = hr
		summaries[kind] = summary
		eais[kind] = domain.ScenarioEAI{Scenario: s, Horizon: horizon, EAI: summary.EAI}
	}

	hp.Aggregated = aggregate(summaries, pricing)
	return hp, eais
}

// resolveCurve picks the curve for the exposure's linkage, logging any
// fallback to GENERIC.
func (a *Assessor) resolveCurve(exposure domain.ExposurePoint, hazard domain.HazardKind) (domain.Resolution, error) {
	assetKind, err := exposure.AssetKindFor(hazard)
	if err != nil {
		return domain.Resolution{}, err
	}
	r, err := a.catalog.Resolve(hazard, assetKind)
	if err != nil {
		return domain.Resolution{}, err
	}
	if r.Fallback {
		a.metrics.CurveFallbacks.WithLabelValues(string(hazard)).Inc()
		a.logger.Info("curve fallback",
			"asset_id", exposure.ID,
			"hazard", hazard,
			"requested", r.Requested,
			"resolved", r.Resolved,
		)
	}
	return r, nil
}

// evaluate runs impact, summary and pricing for one event set.
func (a *Assessor) evaluate(exposure domain.ExposurePoint, set *domain.HazardEventSet, r domain.Resolution, pricing domain.PricingInput) (HazardResult, domain.ImpactSummary, error) {
	impacts, err := domain.ComputeImpacts(exposure, set, r.Curve)
	if err != nil {
		return HazardResult{}, domain.ImpactSummary{}, err
	}
	summary := domain.Summarize(impacts, exposure.Value)
	if summary.Clamped() {
		a.metrics.EAIClampWarnings.WithLabelValues(string(set.Kind)).Inc()
		a.logger.Warn("expected annual impact clamped to exposed value",
			"asset_id", exposure.ID,
			"hazard", set.Kind,
			"eai_raw", summary.RawEAI,
			"value", exposure.Value,
		)
	}

	fn := r.Curve.Describe()
	fn.Fallback = r.Fallback

	unit := set.Units
	if unit == "" {
		unit = r.Curve.Unit()
	}

	hr := HazardResult{
		Kind:           set.Kind,
		Type:           set.Kind.Code(),
		TypeName:       set.Kind.TypeName(),
		Events:         len(set.Events),
		ReturnPeriods:  set.ReturnPeriods(),
		IntensityUnit:  unit,
		MaxIntensity:   set.MaxIntensity(),
		ImpactFunction: fn,
		Results: HazardFigures{
			EAI:                  summary.EAI,
			RawEAI:               summary.RawEAI,
			EAIRatioPct:          summary.EAIRatioPct(),
			TotalValue:           summary.TotalValue,
			ImpactByReturnPeriod: summary.ImpactByReturnPeriod,
			ExceedanceCurve:      summary.ExceedanceCurve,
			PresentationCurve:    summary.PresentationCurve(a.opts.Exceedance),
			Warnings:             summary.Warnings,
		},
		Pricing: domain.Price(summary, pricing),
	}
	if set.Kind == domain.HazardHeatDelta {
		threshold := domain.HeatThresholdC
		hr.ThresholdC = &threshold
	}
	return hr, summary, nil
}

func (a *Assessor) recordFailure(res *Result, assetID string, hazard domain.HazardKind, scenario string, horizon int, err error) {
	reason := FailureReason(err)
	a.metrics.TupleFailures.WithLabelValues(reason).Inc()
	a.logger.Warn("assessment tuple failed",
		"asset_id", assetID,
		"hazard", hazard,
		"scenario", scenario,
		"horizon", horizon,
		"reason", reason,
		"error", err,
	)
	res.Failures = append(res.Failures, TupleFailure{
		AssetID:  assetID,
		Hazard:   hazard,
		Scenario: scenario,
		Horizon:  horizon,
		Reason:   reason,
		Error:    err.Error(),
	})
}

// FailureReason maps an engine error to a short metric label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCurve):
		return "invalid_curve"
	case errors.Is(err, domain.ErrCurveNotFound):
		return "curve_not_found"
	case errors.Is(err, domain.ErrInvalidHazardData):
		return "invalid_hazard_data"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "other"
	}
}

func aggregate(summaries map[domain.HazardKind]domain.ImpactSummary, pricing domain.PricingInput) Aggregated {
	agg := domain.Aggregate(summaries)
	contribution := make(map[string]float64, len(agg.ContributionPct))
	for k, pct := range agg.ContributionPct {
		contribution[k.Code()] = pct
	}
	return Aggregated{
		TotalEAI:             agg.TotalEAI,
		TotalEAIRatioPct:     agg.TotalEAIRatioPct(),
		ContributionPct:      contribution,
		Method:               agg.Method,
		Note:                 agg.Note,
		ImpactByReturnPeriod: agg.Combined,
		Unmatched:            agg.Unmatched,
		Pricing:              domain.PriceAggregate(agg, pricing),
		Warnings:             agg.Warnings,
	}
}

// deltaPct is the relative change from base in percent. It is undefined (nil)
// when the baseline is zero and the projection is not.
func deltaPct(base, projected float64) *float64 {
	var d float64
	switch {
	case base != 0:
		d = (projected - base) / base * 100
	case projected != 0:
		return nil
	}
	return &d
}

func hazardKinds(sets []domain.HazardEventSet) []domain.HazardKind {
	out := make([]domain.HazardKind, 0, len(sets))
	for _, s := range sets {
		out = append(out, s.Kind)
	}
	return out
}

func scenarioIDs(scenarios []domain.Scenario) []string {
	out := []string{domain.ScenarioBaseline}
	for _, s := range scenarios {
		out = append(out, s.ID)
	}
	return out
}

func limitations(synthetic bool, runs []baselineRun, projected bool) []string {
	var out []string
	if synthetic {
		out = append(out, "Synthetic hazard data (calibrated return-period tables, not observed)")
	}
	out = append(out, "Exposure value taken from the asset registry, not independently verified")
	for _, r := range runs {
		name := r.set.Kind.TypeName()
		curve := r.resolution.Curve
		switch curve.Status() {
		case domain.StatusStub:
			out = append(out, fmt.Sprintf("%s impact function is a stub (points borrowed from another asset class)", name))
		case domain.StatusLegacy:
			out = append(out, fmt.Sprintf("%s impact function is the legacy step function", name))
		case domain.StatusPlaceholder:
			out = append(out, fmt.Sprintf("%s impact function is a placeholder; figures are provisional", name))
		}
		if r.resolution.Fallback {
			out = append(out, fmt.Sprintf("%s uses the GENERIC impact function (no %s curve)", name, r.resolution.Requested))
		}
	}
	out = append(out,
		"Independence between hazards assumed (no correlation)",
		"Single asset analysis",
		"Nearest-centroid hazard lookup (no spatial interpolation)",
	)
	if projected {
		out = append(out, "Scale factors from global warming levels (IPCC AR6 regional averages, not downscaled)")
	}
	return out
}
