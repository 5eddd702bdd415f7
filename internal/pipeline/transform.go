package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Assessor computes the result for one request.
type Assessor interface {
	Assess(ctx context.Context, req assessment.Request) (*assessment.Result, error)
}

// AssessmentTransformer implements Transformer: it decodes a request, runs
// the assessment and serializes the result.
type AssessmentTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{
		assessor: assessor,
		logger:   logger,
	}
}

func (t *AssessmentTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	req, err := assessment.ParseRequest(raw.Value)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	res, err := t.assessor.Assess(ctx, req)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	if len(res.Failures) > 0 {
		t.logger.Info("assessment completed with failed tuples",
			"asset_id", res.Asset.ID,
			"run_id", res.Metadata.RunID,
			"failures", len(res.Failures),
		)
	}
	return assessment.Serialize(res)
}
