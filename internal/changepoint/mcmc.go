package changepoint

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/serifhq/bcel-go/internal/errors"
)

const (
	rhatThreshold = 1.05
	essThreshold  = 100.0

	// Proposal scales adapt toward this acceptance rate during tuning.
	targetAcceptance = 0.30
	adaptInterval    = 50
)

// samplerConfig controls the full-sampling backend.
type samplerConfig struct {
	Draws  int
	Tune   int
	Chains int
}

// chainDraws stores the retained draws of one chain, core parameters only.
type chainDraws struct {
	theta, alpha, betaBelow, betaAbove, sigma []float64
}

// fitMCMC samples the tempered posterior with coordinate-wise random-walk
// Metropolis. Proposal scales adapt during the tuning phase and freeze for
// the retained draws. Poor diagnostics clear the convergence flag but the
// summary is still returned.
func fitMCMC(o *objective, cfg samplerConfig, rng *rand.Rand) (*PosteriorSummary, error) {
	if cfg.Chains < 1 || cfg.Draws < 2 {
		return nil, errors.Newf("sampler needs at least 1 chain and 2 draws, got %d/%d", cfg.Chains, cfg.Draws).
			Category(errors.CategoryConfiguration).
			Build()
	}

	lo, hi := o.thetaBounds(mapThetaPriorSDs, mapThetaMargin)
	chains := make([]*chainDraws, cfg.Chains)
	for c := range chains {
		chainRNG := rand.New(rand.NewSource(rng.Uint64()))
		chains[c] = runChain(o, cfg, lo, hi, chainRNG)
	}

	pooled := &Samples{}
	var sigmaSum float64
	var sigmaN int
	for _, ch := range chains {
		pooled.Theta = append(pooled.Theta, ch.theta...)
		pooled.Alpha = append(pooled.Alpha, ch.alpha...)
		pooled.BetaBelow = append(pooled.BetaBelow, ch.betaBelow...)
		pooled.BetaAbove = append(pooled.BetaAbove, ch.betaAbove...)
		for _, s := range ch.sigma {
			sigmaSum += s
			sigmaN++
		}
	}

	rhatMax, essMin := diagnostics(chains)

	tMean, tSD := stat.MeanStdDev(pooled.Theta, nil)
	aMean, aSD := stat.MeanStdDev(pooled.Alpha, nil)
	bbMean, bbSD := stat.MeanStdDev(pooled.BetaBelow, nil)
	baMean, baSD := stat.MeanStdDev(pooled.BetaAbove, nil)

	return &PosteriorSummary{
		Theta:     ParamEstimate{Mean: tMean, SD: tSD},
		Alpha:     ParamEstimate{Mean: aMean, SD: aSD},
		BetaBelow: ParamEstimate{Mean: bbMean, SD: bbSD},
		BetaAbove: ParamEstimate{Mean: baMean, SD: baSD},
		SigmaMean: sigmaSum / float64(sigmaN),
		NObs:      o.obs.Len(),
		Converged: rhatMax <= rhatThreshold && essMin > essThreshold,
		Method:    MethodSampling,
		Raw:       pooled,
		RHatMax:   rhatMax,
		ESSMin:    essMin,
	}, nil
}

func runChain(o *objective, cfg samplerConfig, thetaLo, thetaHi float64, rng *rand.Rand) *chainDraws {
	nParams := o.nParams()
	cur := drawStart(o, thetaLo, thetaHi, rng)
	curLP := -o.negLogPosterior(cur)
	for math.IsInf(curLP, -1) {
		cur = drawStart(o, thetaLo, thetaHi, rng)
		curLP = -o.negLogPosterior(cur)
	}

	scales := make([]float64, nParams)
	scales[0] = 0.1 * o.prior.ThetaSigma
	scales[1] = 0.1 * math.Max(o.ySD, 1e-3)
	scales[2] = 0.1 * o.prior.BetaBelowSigma
	scales[3] = 0.1 * o.prior.BetaAboveSigma
	scales[4] = 0.1
	for i := nCoreParams; i < nParams; i++ {
		scales[i] = 0.1
	}

	out := &chainDraws{
		theta:     make([]float64, 0, cfg.Draws),
		alpha:     make([]float64, 0, cfg.Draws),
		betaBelow: make([]float64, 0, cfg.Draws),
		betaAbove: make([]float64, 0, cfg.Draws),
		sigma:     make([]float64, 0, cfg.Draws),
	}

	accepted := make([]int, nParams)
	proposed := make([]int, nParams)
	total := cfg.Tune + cfg.Draws
	prop := make([]float64, nParams)

	for it := 0; it < total; it++ {
		for j := 0; j < nParams; j++ {
			copy(prop, cur)
			prop[j] += scales[j] * rng.NormFloat64()
			propLP := -o.negLogPosterior(prop)
			proposed[j]++
			if propLP-curLP >= math.Log(rng.Float64()+1e-300) {
				copy(cur, prop)
				curLP = propLP
				accepted[j]++
			}
		}

		if it < cfg.Tune && (it+1)%adaptInterval == 0 {
			for j := 0; j < nParams; j++ {
				rate := float64(accepted[j]) / float64(proposed[j])
				if rate > targetAcceptance {
					scales[j] *= 1.2
				} else {
					scales[j] /= 1.2
				}
				accepted[j], proposed[j] = 0, 0
			}
		}

		if it >= cfg.Tune {
			out.theta = append(out.theta, cur[0])
			out.alpha = append(out.alpha, cur[1])
			out.betaBelow = append(out.betaBelow, cur[2])
			out.betaAbove = append(out.betaAbove, cur[3])
			out.sigma = append(out.sigma, math.Exp(cur[4]))
		}
	}
	return out
}

// diagnostics computes the worst split scale reduction and the smallest
// effective sample size across the four core parameters.
func diagnostics(chains []*chainDraws) (rhatMax, essMin float64) {
	extract := []func(*chainDraws) []float64{
		func(c *chainDraws) []float64 { return c.theta },
		func(c *chainDraws) []float64 { return c.alpha },
		func(c *chainDraws) []float64 { return c.betaBelow },
		func(c *chainDraws) []float64 { return c.betaAbove },
	}
	essMin = math.Inf(1)
	for _, get := range extract {
		seqs := make([][]float64, 0, 2*len(chains))
		var pooledESS float64
		for _, c := range chains {
			d := get(c)
			half := len(d) / 2
			if half < 2 {
				continue
			}
			seqs = append(seqs, d[:half], d[half:half*2])
			pooledESS += effectiveSampleSize(d)
		}
		rhatMax = math.Max(rhatMax, splitRHat(seqs))
		essMin = math.Min(essMin, pooledESS)
	}
	return rhatMax, essMin
}

// splitRHat is the potential scale reduction factor over split sequences.
func splitRHat(seqs [][]float64) float64 {
	m := len(seqs)
	if m < 2 {
		return math.Inf(1)
	}
	n := len(seqs[0])
	means := make([]float64, m)
	vars := make([]float64, m)
	for i, s := range seqs {
		means[i], vars[i] = stat.MeanVariance(s, nil)
	}
	grand := stat.Mean(means, nil)

	var b, w float64
	for i := 0; i < m; i++ {
		d := means[i] - grand
		b += d * d
		w += vars[i]
	}
	b *= float64(n) / float64(m-1)
	w /= float64(m)
	if w <= 0 {
		return 1.0
	}
	vHat := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(vHat / w)
}

// effectiveSampleSize uses the initial positive sequence of autocorrelation
// pair sums.
func effectiveSampleSize(d []float64) float64 {
	n := len(d)
	if n < 4 {
		return float64(n)
	}
	mean, variance := stat.MeanVariance(d, nil)
	if variance <= 0 {
		return float64(n)
	}

	autocov := func(lag int) float64 {
		var s float64
		for i := 0; i < n-lag; i++ {
			s += (d[i] - mean) * (d[i+lag] - mean)
		}
		return s / float64(n)
	}

	c0 := autocov(0)
	var sum float64
	for lag := 1; lag+1 < n; lag += 2 {
		pair := autocov(lag) + autocov(lag+1)
		if pair <= 0 {
			break
		}
		sum += pair
	}
	ess := float64(n) / (1 + 2*sum/c0)
	if ess > float64(n) {
		ess = float64(n)
	}
	return ess
}
