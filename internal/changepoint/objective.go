package changepoint

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior carries the population prior parameters the model needs. It is a
// plain value so the engine stays independent of the catalog package;
// callers convert their prior specs into it.
type Prior struct {
	ThetaMu    float64
	ThetaSigma float64

	BetaBelowMu    float64
	BetaBelowSigma float64

	BetaAboveMu    float64
	BetaAboveSigma float64
}

// NoisePrior is an informative log-normal prior on the noise scale, blended
// against the reference prior (-log sigma) with weight Blend in [0,1].
type NoisePrior struct {
	LogMu    float64
	LogSigma float64
	Blend    float64
}

// Parameter vector layout used by the optimizer and Hessian code:
// [theta, alpha, betaBelow, betaAbove, logSigma, gamma...].
const nCoreParams = 5

// objective evaluates the tempered negative log-posterior.
type objective struct {
	obs   *ObservationSet
	prior Prior
	noise *NoisePrior
	// weight tempers only the likelihood term, compensating for
	// autocorrelated or interpolated observations.
	weight float64

	yMean float64
	ySD   float64
}

func newObjective(obs *ObservationSet, prior Prior, noise *NoisePrior, weight float64) *objective {
	yMean, ySD := meanAndStd(obs.Y)
	return &objective{
		obs:    obs,
		prior:  prior,
		noise:  noise,
		weight: weight,
		yMean:  yMean,
		ySD:    ySD,
	}
}

func (o *objective) nParams() int {
	return nCoreParams + o.obs.NCov()
}

// unpack maps a parameter vector to model parameters.
func unpack(v []float64) Params {
	p := Params{
		Theta:     v[0],
		Alpha:     v[1],
		BetaBelow: v[2],
		BetaAbove: v[3],
		Sigma:     math.Exp(v[4]),
	}
	if len(v) > nCoreParams {
		p.Gamma = v[nCoreParams:]
	}
	return p
}

// negLogPosterior is the optimization target. Returns +Inf for numerically
// unusable points so the optimizer backs away instead of crashing.
func (o *objective) negLogPosterior(v []float64) float64 {
	p := unpack(v)
	if !math.IsInf(p.Sigma, 0) && p.Sigma <= 0 {
		return math.Inf(1)
	}
	if math.IsInf(p.Sigma, 1) || math.IsNaN(p.Sigma) {
		return math.Inf(1)
	}

	pred := PredictAll(o.obs, p, nil)
	resid := distuv.Normal{Mu: 0, Sigma: p.Sigma}
	ll := 0.0
	for i, y := range o.obs.Y {
		ll += resid.LogProb(y - pred[i])
	}
	ll *= o.weight

	lp := distuv.Normal{Mu: o.prior.ThetaMu, Sigma: o.prior.ThetaSigma}.LogProb(p.Theta)
	lp += distuv.Normal{Mu: o.prior.BetaBelowMu, Sigma: o.prior.BetaBelowSigma}.LogProb(p.BetaBelow)
	lp += distuv.Normal{Mu: o.prior.BetaAboveMu, Sigma: o.prior.BetaAboveSigma}.LogProb(p.BetaAbove)
	lp += distuv.Normal{Mu: o.yMean, Sigma: o.ySD + 1e-6}.LogProb(p.Alpha)
	lp += o.sigmaLogPrior(v[4])

	// Weakly informative zero-centered priors absorb confounding through
	// the covariates without dominating.
	if len(p.Gamma) > 0 {
		gammaPrior := distuv.Normal{Mu: 0, Sigma: 5.0}
		for _, g := range p.Gamma {
			lp += gammaPrior.LogProb(g)
		}
	}

	total := ll + lp
	if math.IsNaN(total) {
		return math.Inf(1)
	}
	return -total
}

// sigmaLogPrior blends the literature-informed log-normal with the
// reference prior; without a noise spec the reference prior applies alone.
func (o *objective) sigmaLogPrior(logSigma float64) float64 {
	if o.noise == nil || o.noise.Blend <= 0 {
		return -logSigma
	}
	informative := distuv.Normal{Mu: o.noise.LogMu, Sigma: o.noise.LogSigma}.LogProb(logSigma)
	return o.noise.Blend*informative + (1-o.noise.Blend)*(-logSigma)
}

// thetaBounds intersects the prior's plausible range with the observed dose
// range plus a small margin.
func (o *objective) thetaBounds(priorSDs, margin float64) (lo, hi float64) {
	lo = o.prior.ThetaMu - priorSDs*o.prior.ThetaSigma
	hi = o.prior.ThetaMu + priorSDs*o.prior.ThetaSigma

	xMin, xMax := o.obs.X[0], o.obs.X[0]
	for _, x := range o.obs.X {
		xMin = math.Min(xMin, x)
		xMax = math.Max(xMax, x)
	}
	span := xMax - xMin + 1e-6
	lo = math.Max(lo, xMin-margin*span)
	hi = math.Min(hi, xMax+margin*span)
	if hi <= lo {
		// Prior and data ranges barely overlap; fall back to the data range.
		lo, hi = xMin-margin*span, xMax+margin*span
	}
	return lo, hi
}
