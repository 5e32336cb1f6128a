package changepoint

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	hessianRelStep   = 1e-4
	hessianMinStep   = 1e-6
	hessianRidge     = 1e-3
	hessianDiagFloor = 1e-4
)

// laplaceSummary builds a Gaussian posterior approximation around the MAP
// point from the curvature of the negative log posterior.
func laplaceSummary(o *objective, point []float64, logger *slog.Logger) *PosteriorSummary {
	n := len(point)
	hess := hessianAt(o, point)

	// Ridge scaled to the local curvature keeps near-singular Hessians
	// invertible without drowning out well-identified directions.
	for i := 0; i < n; i++ {
		ridge := hessianRidge * math.Max(math.Abs(hess.At(i, i)), hessianDiagFloor)
		hess.SetSym(i, i, hess.At(i, i)+ridge)
	}

	sds := make([]float64, n)
	var cov mat.SymDense
	if err := covFromHessian(&cov, hess); err == nil {
		for i := 0; i < n; i++ {
			sds[i] = math.Sqrt(cov.At(i, i))
		}
	}
	for i := 0; i < n; i++ {
		if sds[i] <= 0 || math.IsNaN(sds[i]) || math.IsInf(sds[i], 0) {
			fb := fallbackSD(o, i)
			if logger != nil {
				logger.Warn("laplace variance not positive, using prior scale",
					"param", paramName(i), "fallback_sd", fb)
			}
			sds[i] = fb
		}
	}

	return &PosteriorSummary{
		Theta:     ParamEstimate{Mean: point[0], SD: sds[0]},
		Alpha:     ParamEstimate{Mean: point[1], SD: sds[1]},
		BetaBelow: ParamEstimate{Mean: point[2], SD: sds[2]},
		BetaAbove: ParamEstimate{Mean: point[3], SD: sds[3]},
		SigmaMean: math.Exp(point[4]),
		NObs:      o.obs.Len(),
		Converged: true,
		Method:    MethodLaplace,
	}
}

// hessianAt estimates the Hessian by central second differences with steps
// scaled to each coordinate's magnitude.
func hessianAt(o *objective, point []float64) *mat.SymDense {
	n := len(point)
	steps := make([]float64, n)
	for i, x := range point {
		steps[i] = math.Max(math.Abs(x)*hessianRelStep, hessianMinStep)
	}

	f0 := o.negLogPosterior(point)
	work := make([]float64, n)
	hess := mat.NewSymDense(n, nil)

	evalAt := func(di, dj int, si, sj float64) float64 {
		copy(work, point)
		work[di] += si
		work[dj] += sj
		return o.negLogPosterior(work)
	}

	for i := 0; i < n; i++ {
		hi := steps[i]
		copy(work, point)
		work[i] = point[i] + hi
		fp := o.negLogPosterior(work)
		work[i] = point[i] - hi
		fm := o.negLogPosterior(work)
		hess.SetSym(i, i, (fp-2*f0+fm)/(hi*hi))

		for j := i + 1; j < n; j++ {
			hj := steps[j]
			fpp := evalAt(i, j, hi, hj)
			fpm := evalAt(i, j, hi, -hj)
			fmp := evalAt(i, j, -hi, hj)
			fmm := evalAt(i, j, -hi, -hj)
			hess.SetSym(i, j, (fpp-fpm-fmp+fmm)/(4*hi*hj))
		}
	}
	return hess
}

// covFromHessian inverts the regularized Hessian, preferring Cholesky and
// falling back to a general solve when the matrix is not positive definite.
func covFromHessian(dst *mat.SymDense, hess *mat.SymDense) error {
	var chol mat.Cholesky
	if chol.Factorize(hess) {
		return chol.InverseTo(dst)
	}
	n := hess.SymmetricDim()
	var inv mat.Dense
	if err := inv.Inverse(hess); err != nil {
		return err
	}
	dst.ReuseAsSym(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dst.SetSym(i, j, 0.5*(inv.At(i, j)+inv.At(j, i)))
		}
	}
	return nil
}

// fallbackSD is the prior scale for a parameter whose Laplace variance came
// out unusable.
func fallbackSD(o *objective, i int) float64 {
	switch i {
	case 0:
		return o.prior.ThetaSigma
	case 1:
		if o.ySD > 0 {
			return o.ySD
		}
		return 1.0
	case 2:
		return o.prior.BetaBelowSigma
	case 3:
		return o.prior.BetaAboveSigma
	case 4:
		return 0.5
	default:
		return 1.0
	}
}

func paramName(i int) string {
	switch i {
	case 0:
		return "theta"
	case 1:
		return "alpha"
	case 2:
		return "beta_below"
	case 3:
		return "beta_above"
	case 4:
		return "log_sigma"
	default:
		return "gamma"
	}
}
