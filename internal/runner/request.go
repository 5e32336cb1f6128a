package runner

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/serifhq/bcel-go/internal/changepoint"
	"github.com/serifhq/bcel-go/internal/errors"
	"github.com/serifhq/bcel-go/internal/priors"
)

// NoiseOverride carries an explicit noise-scale prior, bypassing the
// biomarker catalog derivation.
type NoiseOverride struct {
	LogMu    float64 `json:"logMu"`
	LogSigma float64 `json:"logSigma"`
	Blend    float64 `json:"blend"`
}

// Request describes one relationship to fit. Either Relationship must name
// a catalog prior or Prior must carry an explicit one.
type Request struct {
	// Relationship is the catalog key, "dose→response" ("->" also accepted).
	Relationship string `json:"relationship"`

	Dose     []float64 `json:"dose"`
	Response []float64 `json:"response"`
	// Covariates are column major: one slice per covariate.
	Covariates [][]float64 `json:"covariates,omitempty"`

	// Prior overrides the catalog lookup when present.
	Prior *priors.Spec `json:"prior,omitempty"`

	// WindowDays, Aggregation and DoseUnit rescale weekly literature
	// priors onto the request's dose window.
	WindowDays  int    `json:"windowDays,omitempty"`
	Aggregation string `json:"aggregation,omitempty"`
	DoseUnit    string `json:"doseUnit,omitempty"`

	// Weight tempers the likelihood for autocorrelated or interpolated
	// series. Zero takes the configured default.
	Weight float64 `json:"weight,omitempty"`
	// EffectiveN is the independent-observation count driving prior
	// blending. Zero derives it from the weight and observation count.
	EffectiveN float64 `json:"effectiveN,omitempty"`

	CurrentDose *float64 `json:"currentDose,omitempty"`

	Noise *NoiseOverride `json:"noise,omitempty"`
}

// Validate rejects requests the pipeline cannot fit.
func (r *Request) Validate() error {
	if r.Relationship == "" && r.Prior == nil {
		return errors.Newf("request needs a relationship key or an explicit prior").
			Category(errors.CategoryValidation).
			Build()
	}
	if len(r.Dose) != len(r.Response) {
		return errors.Newf("dose and response lengths differ: %d vs %d", len(r.Dose), len(r.Response)).
			Category(errors.CategoryValidation).
			Context("relationship", r.Relationship).
			Build()
	}
	if r.Weight < 0 || r.Weight > 1 {
		return errors.Newf("weight must be in (0, 1], got %g", r.Weight).
			Category(errors.CategoryValidation).
			Context("relationship", r.Relationship).
			Build()
	}
	return nil
}

// SourceTarget splits the relationship key into its dose and response
// variable names.
func (r *Request) SourceTarget() (source, target string) {
	key := priors.NormalizeKey(r.Relationship)
	parts := strings.SplitN(key, "→", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return key, ""
}

// observations builds an isolated observation set. Arrays are copied so
// concurrent fits never alias caller memory.
func (r *Request) observations() *changepoint.ObservationSet {
	obs := &changepoint.ObservationSet{
		X: append([]float64(nil), r.Dose...),
		Y: append([]float64(nil), r.Response...),
	}
	if len(r.Covariates) > 0 {
		obs.Z = make([][]float64, len(r.Covariates))
		for i, col := range r.Covariates {
			obs.Z[i] = append([]float64(nil), col...)
		}
	}
	return obs
}

// LoadRequests reads a JSON array of requests from a file.
func LoadRequests(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return reqs, nil
}

func meanAbs(v []float64) float64 {
	if len(v) == 0 {
		return 1
	}
	var s float64
	for _, x := range v {
		s += math.Abs(x)
	}
	return s / float64(len(v))
}

func toModelPrior(spec priors.Spec) changepoint.Prior {
	return changepoint.Prior{
		ThetaMu:        spec.ThetaMu,
		ThetaSigma:     spec.ThetaSigma,
		BetaBelowMu:    spec.BetaBelowMu,
		BetaBelowSigma: spec.BetaBelowSigma,
		BetaAboveMu:    spec.BetaAboveMu,
		BetaAboveSigma: spec.BetaAboveSigma,
	}
}
