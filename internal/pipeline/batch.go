package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// BatchRunner assesses a registry of assets concurrently. A failing asset
// never stops its siblings; only cancellation of the context aborts the run.
type BatchRunner struct {
	assessor    Assessor
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// BatchOutcome holds the results of a run in request order. Results[i] is nil
// when request i could not be assessed at all. Failures lists whole-request
// failures followed by the per-tuple failures reported inside results.
type BatchOutcome struct {
	Results  []*assessment.Result
	Failures []assessment.TupleFailure
}

// Succeeded returns the non-nil results.
func (o BatchOutcome) Succeeded() []*assessment.Result {
	out := make([]*assessment.Result, 0, len(o.Results))
	for _, r := range o.Results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// NewBatchRunner creates a BatchRunner running at most concurrency
// assessments at a time.
func NewBatchRunner(assessor Assessor, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchRunner{
		assessor:    assessor,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run assesses every request and collects failures.
func (b *BatchRunner) Run(ctx context.Context, reqs []assessment.Request) (BatchOutcome, error) {
	start := time.Now()
	b.metrics.BatchSize.Observe(float64(len(reqs)))
	b.metrics.RequestsConsumed.Add(float64(len(reqs)))

	results := make([]*assessment.Result, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i := range reqs {
		g.Go(func() error {
			res, err := b.assessor.Assess(gctx, reqs[i])
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchOutcome{}, err
	}

	out := BatchOutcome{Results: results}
	for i, err := range errs {
		if err == nil {
			continue
		}
		reason := assessment.FailureReason(err)
		b.metrics.TupleFailures.WithLabelValues(reason).Inc()
		b.logger.Warn("asset assessment failed",
			"asset_id", reqs[i].Asset.ID,
			"reason", reason,
			"error", err,
		)
		out.Failures = append(out.Failures, assessment.TupleFailure{
			AssetID: reqs[i].Asset.ID,
			Reason:  reason,
			Error:   err.Error(),
		})
	}
	for _, res := range results {
		if res != nil {
			out.Failures = append(out.Failures, res.Failures...)
		}
	}

	succeeded := len(out.Succeeded())
	b.metrics.ResultsProduced.Add(float64(succeeded))
	b.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("batch complete",
		"assets", len(reqs),
		"succeeded", succeeded,
		"failures", len(out.Failures),
		"duration", time.Since(start),
	)
	return out, nil
}
