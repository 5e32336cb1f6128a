// Package analysis turns fitted posteriors into qualitative assessments:
// curve shape, changepoint probability, effect size, position relative to
// the threshold, and posterior world samples for downstream sampling.
//
// Shape is data driven. The prior's curve hint breaks ties only when the
// posterior sign pattern is ambiguous.
package analysis

import (
	"math"

	"github.com/serifhq/bcel-go/internal/changepoint"
	"github.com/serifhq/bcel-go/internal/priors"
)

// Slope magnitude below this fraction of the larger slope counts as zero.
const slopeZeroFraction = 0.15

// Slopes closer than this many standard errors are indistinguishable.
const linearZThreshold = 1.5

// Current status values.
const (
	StatusAtOptimal      = "at_optimal"
	StatusBelowOptimal   = "below_optimal"
	StatusAboveOptimal   = "above_optimal"
	StatusBelowThreshold = "below_threshold"
	StatusAboveThreshold = "above_threshold"
)

// Effect size categories.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Classify determines the curve shape from the slope posteriors. Equal
// slopes are always linear. Otherwise the sign pattern decides, with
// near-zero slopes collapsing v shapes back to linear.
func Classify(s *changepoint.PosteriorSummary, priorHint string) string {
	bb, ba := s.BetaBelow.Mean, s.BetaAbove.Mean
	bbSD, baSD := s.BetaBelow.SD, s.BetaAbove.SD

	diff := math.Abs(bb - ba)
	if diff == 0 {
		return priors.CurveLinear
	}
	se := math.Sqrt(bbSD*bbSD + baSD*baSD)
	if se > 0 && diff/se < linearZThreshold {
		return priors.CurveLinear
	}

	maxAbs := math.Max(math.Max(math.Abs(bb), math.Abs(ba)), 1e-10)
	bbZero := math.Abs(bb) < slopeZeroFraction*maxAbs || math.Abs(bb) < bbSD
	baZero := math.Abs(ba) < slopeZeroFraction*maxAbs || math.Abs(ba) < baSD

	switch {
	case bb >= 0 && ba <= 0:
		if bbZero && baZero {
			return priors.CurveLinear
		}
		return priors.CurveVMax
	case bb <= 0 && ba >= 0:
		if bbZero && baZero {
			return priors.CurveLinear
		}
		return priors.CurveVMin
	case bb <= 0 && ba <= 0:
		return priors.CurvePlateauDown
	case bb >= 0 && ba >= 0:
		return priors.CurvePlateauUp
	}
	return priorHint
}

// ChangepointProbability combines a statistical criterion (are the slopes
// distinguishable) with a practical one (is at least one slope meaningful
// against the noise). Two tiny but distinguishable slopes stay improbable.
func ChangepointProbability(s *changepoint.PosteriorSummary) float64 {
	bb, ba := s.BetaBelow.Mean, s.BetaAbove.Mean
	se := math.Sqrt(s.BetaBelow.SD*s.BetaBelow.SD + s.BetaAbove.SD*s.BetaAbove.SD)

	zProb := 0.5
	if se >= 1e-10 {
		z := math.Abs(bb-ba) / se
		zProb = 1.0 / (1.0 + math.Exp(-1.5*(z-1.0)))
	}

	sigma := math.Max(s.SigmaMean, 1e-10)
	practicalRatio := math.Max(math.Abs(bb), math.Abs(ba)) / sigma
	pracProb := 1.0 / (1.0 + math.Exp(-5.0*(practicalRatio-0.3)))

	// Geometric mean: both criteria must hold for a high probability.
	prob := math.Sqrt(zProb * pracProb)
	return math.Min(math.Max(prob, 0.05), 0.99)
}

// EffectSizeCategory grades the larger slope against the residual noise,
// a Cohen's d analogue per unit dose.
func EffectSizeCategory(s *changepoint.PosteriorSummary) string {
	sigma := math.Max(s.SigmaMean, 1e-10)
	d := math.Max(math.Abs(s.BetaBelow.Mean), math.Abs(s.BetaAbove.Mean)) / sigma
	switch {
	case d < 0.2:
		return SizeSmall
	case d < 0.5:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// CurrentStatus places the current dose relative to the threshold. What
// counts as optimal depends on the shape: plateaus want one side of theta,
// v shapes want theta itself with a doubled tolerance band, and linear
// curves have no optimum at all, only a side of the kink.
func CurrentStatus(currentValue, theta float64, curveType string) string {
	tolerance := 0.05 * math.Abs(theta)
	if theta == 0 {
		tolerance = 0.5
	}

	switch curveType {
	case priors.CurvePlateauUp:
		if currentValue >= theta-tolerance {
			return StatusAtOptimal
		}
		return StatusBelowOptimal
	case priors.CurvePlateauDown:
		if currentValue <= theta+tolerance {
			return StatusAtOptimal
		}
		return StatusAboveOptimal
	case priors.CurveVMin, priors.CurveVMax:
		if math.Abs(currentValue-theta) <= tolerance*2 {
			return StatusAtOptimal
		}
		if currentValue < theta {
			return StatusBelowOptimal
		}
		return StatusAboveOptimal
	default:
		if currentValue < theta {
			return StatusBelowThreshold
		}
		return StatusAboveThreshold
	}
}
