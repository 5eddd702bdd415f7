package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// ErrInvalidRequest is returned when a request fails structural validation.
var ErrInvalidRequest = errors.New("invalid assessment request")

var validate = validator.New()

// Request asks for a full assessment of one asset. Hazards may be omitted, in
// which case the deterministic synthetic flood and heat sets are generated at
// the asset location.
type Request struct {
	Asset     domain.ExposurePoint    `json:"asset"`
	Hazards   []domain.HazardEventSet `json:"hazards,omitempty" validate:"omitempty,dive"`
	Scenarios []string                `json:"scenarios,omitempty" validate:"omitempty,dive,required"`
	Horizons  []int                   `json:"horizons,omitempty" validate:"omitempty,dive,oneof=2030 2050 2100"`

	// Pricing overrides. Nil fields fall back to the service defaults.
	Loading        *float64 `json:"loading,omitempty" validate:"omitempty,gte=0"`
	RiskLoadMethod string   `json:"risk_load_method,omitempty" validate:"omitempty,oneof=none var tvar stdev"`
	RiskQuantile   *float64 `json:"risk_quantile,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// ParseRequest decodes and validates a JSON request.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks struct tags and cross-field rules that tags cannot express.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	seen := make(map[domain.HazardKind]bool, len(r.Hazards))
	for _, set := range r.Hazards {
		if seen[set.Kind] {
			return fmt.Errorf("%w: hazard %s supplied more than once", ErrInvalidRequest, set.Kind)
		}
		seen[set.Kind] = true
	}
	for _, id := range r.Scenarios {
		if _, err := domain.LookupScenario(id); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

// scenarios resolves the requested scenarios, defaulting to all built-ins.
func (r Request) scenarios() []domain.Scenario {
	if len(r.Scenarios) == 0 {
		return domain.Scenarios()
	}
	out := make([]domain.Scenario, 0, len(r.Scenarios))
	for _, id := range r.Scenarios {
		s, err := domain.LookupScenario(id)
		if err == nil {
			out = append(out, s)
		}
	}
	return out
}

func (r Request) horizons() []int {
	if len(r.Horizons) == 0 {
		return append([]int(nil), domain.DefaultHorizons...)
	}
	return append([]int(nil), r.Horizons...)
}

// pricing merges request overrides into the defaults.
func (r Request) pricing(defaults domain.PricingInput) domain.PricingInput {
	out := defaults
	if r.Loading != nil {
		out.Loading = *r.Loading
	}
	if r.RiskLoadMethod != "" {
		out.Method = domain.RiskLoadMethod(r.RiskLoadMethod)
	}
	if r.RiskQuantile != nil {
		out.Quantile = *r.RiskQuantile
	}
	return out
}
