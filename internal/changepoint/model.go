// Package changepoint implements Bayesian estimation of piecewise-linear
// dose→response curves with an unknown threshold. Three fitting strategies
// share one contract: multi-start MAP with a Laplace approximation, an
// exact grid-conditional marginal over the threshold (the default), and a
// full random-walk sampling backend.
package changepoint

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/serifhq/bcel-go/internal/errors"
)

// ObservationSet is one relationship's prepared data: paired dose and
// response values plus an optional standardized covariate matrix.
type ObservationSet struct {
	X []float64   // dose values
	Y []float64   // response values
	Z [][]float64 // optional covariates, Z[k] is column k of length len(X)
}

// NCov returns the number of covariate columns.
func (o *ObservationSet) NCov() int {
	return len(o.Z)
}

// Len returns the number of observations.
func (o *ObservationSet) Len() int {
	return len(o.X)
}

// Validate rejects degenerate inputs the engine must never receive.
// Filtering sparse or constant-dose data is the caller's responsibility.
func (o *ObservationSet) Validate() error {
	if len(o.X) < 2 || len(o.X) != len(o.Y) {
		return errors.Newf("need at least 2 paired observations, got %d dose and %d response",
			len(o.X), len(o.Y)).
			Component("changepoint").
			Category(errors.CategoryValidation).
			Build()
	}
	if stat.Variance(o.X, nil) == 0 {
		return errors.Newf("dose values have zero variance").
			Component("changepoint").
			Category(errors.CategoryValidation).
			Build()
	}
	for k := range o.Z {
		if len(o.Z[k]) != len(o.X) {
			return errors.Newf("covariate column %d has %d rows, want %d", k, len(o.Z[k]), len(o.X)).
				Component("changepoint").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return nil
}

// Clone deep-copies the observation set so concurrent fits never alias
// caller arrays.
func (o *ObservationSet) Clone() *ObservationSet {
	out := &ObservationSet{
		X: append([]float64(nil), o.X...),
		Y: append([]float64(nil), o.Y...),
	}
	if o.Z != nil {
		out.Z = make([][]float64, len(o.Z))
		for k := range o.Z {
			out.Z[k] = append([]float64(nil), o.Z[k]...)
		}
	}
	return out
}

// Params is one point in parameter space.
type Params struct {
	Theta     float64
	Alpha     float64
	BetaBelow float64
	BetaAbove float64
	Sigma     float64
	Gamma     []float64
}

// Predict evaluates the piecewise-linear model at a single dose. Continuity
// at the threshold is structural: both branches equal alpha there. The kink
// is intentionally sharp, never smoothed.
func Predict(x, theta, alpha, betaBelow, betaAbove float64) float64 {
	if x <= theta {
		return alpha + betaBelow*(x-theta)
	}
	return alpha + betaAbove*(x-theta)
}

// PredictAll evaluates the model over the observation set's doses,
// including the covariate adjustment when gamma is present.
func PredictAll(o *ObservationSet, p Params, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(o.X))
	}
	for i, x := range o.X {
		dst[i] = Predict(x, p.Theta, p.Alpha, p.BetaBelow, p.BetaAbove)
	}
	for k, g := range p.Gamma {
		if k >= len(o.Z) {
			break
		}
		for i := range dst {
			dst[i] += g * o.Z[k][i]
		}
	}
	return dst
}

func meanAndStd(y []float64) (mean, sd float64) {
	mean = stat.Mean(y, nil)
	sd = math.Sqrt(stat.Variance(y, nil))
	if math.IsNaN(sd) {
		sd = 0
	}
	return mean, sd
}
