package changepoint

// Method tags recorded on each summary.
const (
	MethodLaplace   = "map_laplace"
	MethodGrid      = "grid_conditional"
	MethodSampling  = "random_walk_mcmc"
	MethodPriorOnly = "prior_only"
)

// ParamEstimate is a marginal posterior mean and standard deviation.
type ParamEstimate struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Samples holds raw joint posterior draws when the method produces them.
// Slices are parallel: index i is one joint draw.
type Samples struct {
	Theta     []float64 `json:"theta"`
	Alpha     []float64 `json:"alpha"`
	BetaBelow []float64 `json:"betaBelow"`
	BetaAbove []float64 `json:"betaAbove"`
}

// Len returns the number of joint draws.
func (s *Samples) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Theta)
}

// PosteriorSummary is the result of one fit. It is immutable once produced;
// derived quantities (blends, classifications, worlds) are computed from it
// without mutation.
type PosteriorSummary struct {
	Theta     ParamEstimate `json:"theta"`
	Alpha     ParamEstimate `json:"alpha"`
	BetaBelow ParamEstimate `json:"betaBelow"`
	BetaAbove ParamEstimate `json:"betaAbove"`
	SigmaMean float64       `json:"sigmaMean"`

	NObs      int    `json:"nObs"`
	Converged bool   `json:"converged"`
	Method    string `json:"method"`

	// Raw joint draws, present for grid and sampling methods.
	Raw *Samples `json:"-"`

	// Sampler diagnostics, populated by the sampling backend only.
	RHatMax float64 `json:"rhatMax,omitempty"`
	ESSMin  float64 `json:"essMin,omitempty"`
}

// PriorOnlySummary returns the population prior restated as a posterior,
// used when every optimizer restart fails. Downstream treats it as a
// lower-confidence result, never as an absent one.
func PriorOnlySummary(pr Prior, y []float64) *PosteriorSummary {
	yMean, ySD := 0.0, 1.0
	if len(y) > 0 {
		yMean, ySD = meanAndStd(y)
		if ySD == 0 {
			ySD = 1
		}
	}
	return &PosteriorSummary{
		Theta:     ParamEstimate{Mean: pr.ThetaMu, SD: pr.ThetaSigma},
		Alpha:     ParamEstimate{Mean: yMean, SD: ySD},
		BetaBelow: ParamEstimate{Mean: pr.BetaBelowMu, SD: pr.BetaBelowSigma},
		BetaAbove: ParamEstimate{Mean: pr.BetaAboveMu, SD: pr.BetaAboveSigma},
		SigmaMean: ySD,
		NObs:      len(y),
		Converged: false,
		Method:    MethodPriorOnly,
	}
}
