package changepoint

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/serifhq/bcel-go/internal/errors"
)

const (
	mapRestarts      = 10
	mapThetaPriorSDs = 4.0
	mapThetaMargin   = 0.10
	mapMaxIterations = 2000
	mapGradientTol   = 1e-6
)

// mapResult is the best point found across restarts, in the natural
// parameter space.
type mapResult struct {
	point   []float64
	value   float64
	success bool
}

// boundedObjective wraps the objective with a logistic reparameterization of
// theta so the unconstrained optimizer respects the theta bounds. The first
// coordinate of the working vector is the logit of theta's position in
// [lo, hi]; all other coordinates pass through.
type boundedObjective struct {
	inner  *objective
	lo, hi float64
}

func (b *boundedObjective) toNatural(w []float64) []float64 {
	v := make([]float64, len(w))
	copy(v, w)
	v[0] = b.lo + (b.hi-b.lo)*sigmoid(w[0])
	return v
}

func (b *boundedObjective) toWorking(v []float64) []float64 {
	w := make([]float64, len(v))
	copy(w, v)
	frac := (v[0] - b.lo) / (b.hi - b.lo)
	frac = math.Min(math.Max(frac, 1e-6), 1-1e-6)
	w[0] = math.Log(frac / (1 - frac))
	return w
}

func (b *boundedObjective) eval(w []float64) float64 {
	return b.inner.negLogPosterior(b.toNatural(w))
}

func sigmoid(x float64) float64 {
	// Split on sign to avoid overflow in exp.
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// fitMAP runs multi-start quasi-Newton optimization of the tempered
// posterior. Individual restarts may fail on pathological surfaces; the fit
// errors only when every restart does.
func fitMAP(o *objective, restarts, maxIter int, rng *rand.Rand) (*mapResult, error) {
	if restarts <= 0 {
		restarts = mapRestarts
	}
	if maxIter <= 0 {
		maxIter = mapMaxIterations
	}
	lo, hi := o.thetaBounds(mapThetaPriorSDs, mapThetaMargin)
	bounded := &boundedObjective{inner: o, lo: lo, hi: hi}

	best := &mapResult{value: math.Inf(1)}
	var lastErr error
	for r := 0; r < restarts; r++ {
		start := bounded.toWorking(drawStart(o, lo, hi, rng))
		point, value, err := minimizeOnce(bounded, start, maxIter)
		if err != nil {
			lastErr = err
			continue
		}
		if value < best.value {
			best.point = bounded.toNatural(point)
			best.value = value
			best.success = true
		}
	}
	if !best.success {
		return nil, errors.New(lastErr).
			Category(errors.CategoryOptimization).
			Context("restarts", restarts).
			Build()
	}
	return best, nil
}

// drawStart samples a restart point in the natural parameter space. Theta is
// drawn tighter than the prior and clamped inside the bounds; slopes jitter
// around the prior means.
func drawStart(o *objective, lo, hi float64, rng *rand.Rand) []float64 {
	v := make([]float64, o.nParams())

	thetaDraw := distuv.Normal{Mu: o.prior.ThetaMu, Sigma: 0.5 * o.prior.ThetaSigma, Src: rng}
	theta := thetaDraw.Rand()
	span := hi - lo
	theta = math.Min(math.Max(theta, lo+0.01*span), hi-0.01*span)
	v[0] = theta

	v[1] = o.yMean + 0.2*o.ySD*rng.NormFloat64()
	v[2] = o.prior.BetaBelowMu + 0.3*o.prior.BetaBelowSigma*rng.NormFloat64()
	v[3] = o.prior.BetaAboveMu + 0.3*o.prior.BetaAboveSigma*rng.NormFloat64()
	v[4] = math.Log(math.Max(0.5*o.ySD, 0.01))
	for i := nCoreParams; i < len(v); i++ {
		v[i] = 0.1 * rng.NormFloat64()
	}
	return v
}

// minimizeOnce runs a single quasi-Newton minimization with gradients by
// finite differences. Panics inside gonum on degenerate line searches are
// converted into restart failures.
func minimizeOnce(b *boundedObjective, start []float64, maxIter int) (point []float64, value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			point, value = nil, 0
			err = errors.Newf("optimizer panic: %v", r).
				Category(errors.CategoryOptimization).
				Build()
		}
	}()

	problem := optimize.Problem{Func: b.eval}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: mapGradientTol,
	}
	result, err := optimize.Minimize(problem, start, settings, &optimize.LBFGS{})
	if err != nil {
		return nil, 0, errors.New(err).
			Category(errors.CategoryOptimization).
			Build()
	}
	if math.IsInf(result.F, 0) || math.IsNaN(result.F) {
		return nil, 0, errors.Newf("optimizer terminated at non-finite objective").
			Category(errors.CategoryNumerics).
			Build()
	}
	return result.X, result.F, nil
}
