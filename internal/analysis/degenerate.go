package analysis

import (
	"math"

	"github.com/serifhq/bcel-go/internal/changepoint"
)

// DegenerateFlags marks fits whose threshold is not interpretable. Flagged
// fits are still returned in full; consumers decide what to surface.
type DegenerateFlags struct {
	ThetaAtBoundary  bool `json:"thetaAtBoundary"`
	ThetaAtZero      bool `json:"thetaAtZero"`
	NegligibleEffect bool `json:"negligibleEffect"`
}

// Any reports whether any degeneracy was detected.
func (d DegenerateFlags) Any() bool {
	return d.ThetaAtBoundary || d.ThetaAtZero || d.NegligibleEffect
}

// Reason names the first detected degeneracy, empty when clean.
func (d DegenerateFlags) Reason() string {
	switch {
	case d.ThetaAtBoundary:
		return "theta at data boundary"
	case d.ThetaAtZero:
		return "theta at zero for non-negative dose"
	case d.NegligibleEffect:
		return "near-zero effect on both sides"
	default:
		return ""
	}
}

// DetectDegenerate checks a fitted summary against the dose values it was
// fitted on. A threshold hugging the data boundary usually means the model
// found an edge artifact, a non-positive threshold over a non-negative dose
// is meaningless, and two negligible slopes mean there is nothing to
// threshold in the first place.
func DetectDegenerate(s *changepoint.PosteriorSummary, x []float64) DegenerateFlags {
	var flags DegenerateFlags
	if len(x) == 0 {
		return flags
	}

	xMin, xMax := x[0], x[0]
	for _, v := range x {
		xMin = math.Min(xMin, v)
		xMax = math.Max(xMax, v)
	}
	xRange := xMax - xMin

	theta := s.Theta.Mean
	flags.ThetaAtBoundary = math.Abs(theta-xMin) < 0.01*(xRange+1e-6) ||
		math.Abs(theta-xMax) < 0.01*(xRange+1e-6)
	flags.ThetaAtZero = theta <= 0 && xMin >= 0
	flags.NegligibleEffect = math.Max(math.Abs(s.BetaBelow.Mean), math.Abs(s.BetaAbove.Mean)) < 1e-3

	return flags
}
