package changepoint

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/serifhq/bcel-go/internal/errors"
)

const (
	gridThetaPriorSDs = 3.0
	gridThetaMargin   = 0.05
	gridSigmaPoints   = 50
	gridSigmaFloor    = 1e-10
)

// gridConditional holds the conditional linear solution at one grid point.
type gridConditional struct {
	beta  []float64
	sigma float64
	cov   *mat.SymDense
}

// fitGrid evaluates theta's marginal posterior on a dense grid, solving the
// remaining parameters analytically at each point, then draws joint samples
// by ancestral sampling: theta from its discrete marginal, the linear
// coefficients from the conditional Gaussian. Unlike a single-point Laplace
// fit this keeps multi-modality in theta.
func fitGrid(o *objective, nGrid, nSamples int, rng *rand.Rand) (*PosteriorSummary, error) {
	n := o.obs.Len()
	nCoef := 3 + o.obs.NCov()
	if n < nCoef {
		return nil, errors.Newf("need at least %d observations for %d linear coefficients, have %d", nCoef, nCoef, n).
			Category(errors.CategoryModelFit).
			Context("n_obs", n).
			Build()
	}

	xMin, xMax := o.obs.X[0], o.obs.X[0]
	for _, x := range o.obs.X {
		xMin = math.Min(xMin, x)
		xMax = math.Max(xMax, x)
	}
	xRange := xMax - xMin + 1e-6
	lo := math.Max(o.prior.ThetaMu-gridThetaPriorSDs*o.prior.ThetaSigma, xMin-gridThetaMargin*xRange)
	hi := math.Min(o.prior.ThetaMu+gridThetaPriorSDs*o.prior.ThetaSigma, xMax+gridThetaMargin*xRange)
	if hi <= lo {
		lo, hi = xMin-gridThetaMargin*xRange, xMax+gridThetaMargin*xRange
	}

	thetaGrid := make([]float64, nGrid)
	step := (hi - lo) / float64(nGrid-1)
	for i := range thetaGrid {
		thetaGrid[i] = lo + float64(i)*step
	}

	logMarginal := make([]float64, nGrid)
	conditionals := make([]*gridConditional, nGrid)
	for i := range logMarginal {
		logMarginal[i] = math.Inf(-1)
	}

	yVec := mat.NewVecDense(n, o.obs.Y)
	a := mat.NewDense(n, nCoef, nil)
	for k := 0; k < o.obs.NCov(); k++ {
		for r := 0; r < n; r++ {
			a.Set(r, 3+k, o.obs.Z[k][r])
		}
	}

	for i, th := range thetaGrid {
		for r, x := range o.obs.X {
			a.Set(r, 0, 1)
			if x <= th {
				a.Set(r, 1, x-th)
				a.Set(r, 2, 0)
			} else {
				a.Set(r, 1, 0)
				a.Set(r, 2, x-th)
			}
		}

		cond, ssRes, ok := solveConditional(o, a, yVec, n, nCoef)
		if !ok {
			continue
		}
		conditionals[i] = cond
		logMarginal[i] = o.gridLogMarginal(th, cond, ssRes, n)
	}

	// Shift-exponentiate for numerical stability before normalizing.
	maxLM := math.Inf(-1)
	for _, lm := range logMarginal {
		maxLM = math.Max(maxLM, lm)
	}
	if math.IsInf(maxLM, -1) {
		return nil, errors.Newf("no grid point produced a finite posterior").
			Category(errors.CategoryNumerics).
			Build()
	}
	weights := make([]float64, nGrid)
	for i, lm := range logMarginal {
		if math.IsInf(lm, -1) {
			weights[i] = 0
			continue
		}
		weights[i] = math.Exp(lm - maxLM)
	}

	samples := o.drawAncestral(thetaGrid, weights, conditionals, nSamples, rng)

	mapIdx := 0
	for i, w := range weights {
		if w > weights[mapIdx] {
			mapIdx = i
		}
	}
	sigmaMean := 1.0
	if cp := conditionals[mapIdx]; cp != nil {
		sigmaMean = cp.sigma
	}

	tMean, tSD := stat.MeanStdDev(samples.Theta, nil)
	aMean, aSD := stat.MeanStdDev(samples.Alpha, nil)
	bbMean, bbSD := stat.MeanStdDev(samples.BetaBelow, nil)
	baMean, baSD := stat.MeanStdDev(samples.BetaAbove, nil)

	return &PosteriorSummary{
		Theta:     ParamEstimate{Mean: tMean, SD: tSD},
		Alpha:     ParamEstimate{Mean: aMean, SD: aSD},
		BetaBelow: ParamEstimate{Mean: bbMean, SD: bbSD},
		BetaAbove: ParamEstimate{Mean: baMean, SD: baSD},
		SigmaMean: sigmaMean,
		NObs:      n,
		Converged: true,
		Method:    MethodGrid,
		Raw:       samples,
	}, nil
}

// solveConditional computes the OLS solution and conditional covariance for
// one design matrix. Returns ok=false when the design is rank deficient.
func solveConditional(o *objective, a *mat.Dense, y *mat.VecDense, n, nCoef int) (*gridConditional, float64, bool) {
	var qr mat.QR
	qr.Factorize(a)
	beta := mat.NewVecDense(nCoef, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, 0, false
	}

	var pred mat.VecDense
	pred.MulVec(a, beta)
	ssRes := 0.0
	for r := 0; r < n; r++ {
		d := y.AtVec(r) - pred.AtVec(r)
		ssRes += d * d
	}

	sigma := o.chooseSigma(ssRes, n, nCoef)

	var ata mat.Dense
	ata.Mul(a.T(), a)
	cov := mat.NewSymDense(nCoef, nil)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err == nil {
		for i := 0; i < nCoef; i++ {
			for j := i; j < nCoef; j++ {
				cov.SetSym(i, j, 0.5*(inv.At(i, j)+inv.At(j, i))*sigma*sigma)
			}
		}
	} else {
		for i := 0; i < nCoef; i++ {
			cov.SetSym(i, i, sigma*sigma)
		}
	}

	return &gridConditional{beta: beta.RawVector().Data, sigma: sigma, cov: cov}, ssRes, true
}

// chooseSigma is the OLS residual estimate, replaced by a 1-D MAP search
// over a log-spaced grid when an informative noise prior is present.
func (o *objective) chooseSigma(ssRes float64, n, nCoef int) float64 {
	dof := n - nCoef
	if dof < 1 {
		dof = 1
	}
	sigmaOLS := math.Max(math.Sqrt(ssRes/float64(dof)), gridSigmaFloor)
	if o.noise == nil || o.noise.Blend <= 0 {
		return sigmaOLS
	}

	ref := math.Max(sigmaOLS, math.Exp(o.noise.LogMu))
	logLo := math.Log(math.Max(ref*0.1, gridSigmaFloor))
	logHi := math.Log(ref * 5.0)
	logStep := (logHi - logLo) / float64(gridSigmaPoints-1)

	best := sigmaOLS
	bestLP := math.Inf(-1)
	for k := 0; k < gridSigmaPoints; k++ {
		logSG := logLo + float64(k)*logStep
		sg := math.Exp(logSG)
		ll := o.weight * (-0.5*float64(n)*math.Log(2*math.Pi) - float64(n)*logSG - 0.5*ssRes/(sg*sg))
		total := ll + o.sigmaLogPrior(logSG)
		if total > bestLP {
			bestLP = total
			best = sg
		}
	}
	return best
}

// gridLogMarginal scores one grid point: tempered likelihood at the
// conditional optimum plus all prior terms.
func (o *objective) gridLogMarginal(th float64, cond *gridConditional, ssRes float64, n int) float64 {
	sigma := math.Max(cond.sigma, gridSigmaFloor)
	ll := o.weight * (-0.5*float64(n)*math.Log(2*math.Pi) - float64(n)*math.Log(sigma) - 0.5*ssRes/(sigma*sigma))

	lp := distuv.Normal{Mu: o.prior.ThetaMu, Sigma: o.prior.ThetaSigma}.LogProb(th)
	lp += distuv.Normal{Mu: o.prior.BetaBelowMu, Sigma: o.prior.BetaBelowSigma}.LogProb(cond.beta[1])
	lp += distuv.Normal{Mu: o.prior.BetaAboveMu, Sigma: o.prior.BetaAboveSigma}.LogProb(cond.beta[2])
	lp += distuv.Normal{Mu: o.yMean, Sigma: o.ySD + 1e-6}.LogProb(cond.beta[0])
	if o.noise != nil && o.noise.Blend > 0 {
		lp += o.sigmaLogPrior(math.Log(sigma))
	}
	if len(cond.beta) > 3 {
		gammaPrior := distuv.Normal{Mu: 0, Sigma: 5.0}
		for _, g := range cond.beta[3:] {
			lp += gammaPrior.LogProb(g)
		}
	}
	return ll + lp
}

// drawAncestral samples theta indices from the discrete marginal, then the
// linear coefficients from each conditional Gaussian.
func (o *objective) drawAncestral(thetaGrid, weights []float64, conds []*gridConditional, nSamples int, rng *rand.Rand) *Samples {
	cat := distuv.NewCategorical(weights, rng)
	out := &Samples{
		Theta:     make([]float64, 0, nSamples),
		Alpha:     make([]float64, 0, nSamples),
		BetaBelow: make([]float64, 0, nSamples),
		BetaAbove: make([]float64, 0, nSamples),
	}

	mvns := make([]*distmv.Normal, len(conds))
	for i, cp := range conds {
		if cp == nil {
			continue
		}
		if mvn, ok := distmv.NewNormal(cp.beta, cp.cov, rng); ok {
			mvns[i] = mvn
		}
	}

	for s := 0; s < nSamples; s++ {
		idx := int(cat.Rand())
		cp := conds[idx]
		out.Theta = append(out.Theta, thetaGrid[idx])
		if cp == nil {
			out.Alpha = append(out.Alpha, o.yMean)
			out.BetaBelow = append(out.BetaBelow, o.prior.BetaBelowMu)
			out.BetaAbove = append(out.BetaAbove, o.prior.BetaAboveMu)
			continue
		}
		if mvn := mvns[idx]; mvn != nil {
			draw := mvn.Rand(nil)
			out.Alpha = append(out.Alpha, draw[0])
			out.BetaBelow = append(out.BetaBelow, draw[1])
			out.BetaAbove = append(out.BetaAbove, draw[2])
		} else {
			// Degenerate conditional covariance: fall back to the mode.
			out.Alpha = append(out.Alpha, cp.beta[0])
			out.BetaBelow = append(out.BetaBelow, cp.beta[1])
			out.BetaAbove = append(out.BetaAbove, cp.beta[2])
		}
	}
	return out
}
