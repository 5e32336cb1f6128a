package analysis

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/serifhq/bcel-go/internal/changepoint"
)

// DefaultWorlds is the number of joint posterior draws handed to
// downstream Thompson-style samplers.
const DefaultWorlds = 128

// Worlds holds joint posterior draws. Index i across the slices is one
// complete dose-response curve.
type Worlds struct {
	Theta     []float64 `json:"theta"`
	Alpha     []float64 `json:"alpha"`
	BetaBelow []float64 `json:"betaBelow"`
	BetaAbove []float64 `json:"betaAbove"`
}

// Len returns the number of worlds.
func (w *Worlds) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Theta)
}

// SampleWorlds draws n joint curves. When the fit kept raw posterior
// samples those are subsampled without replacement, preserving joint
// structure and multi-modality. Otherwise independent Gaussian marginals
// around the summary are used.
func SampleWorlds(s *changepoint.PosteriorSummary, n int, rng *rand.Rand) *Worlds {
	if n <= 0 {
		n = DefaultWorlds
	}

	if s.Raw.Len() >= n {
		idx := rng.Perm(s.Raw.Len())[:n]
		w := &Worlds{
			Theta:     make([]float64, n),
			Alpha:     make([]float64, n),
			BetaBelow: make([]float64, n),
			BetaAbove: make([]float64, n),
		}
		for i, j := range idx {
			w.Theta[i] = s.Raw.Theta[j]
			w.Alpha[i] = s.Raw.Alpha[j]
			w.BetaBelow[i] = s.Raw.BetaBelow[j]
			w.BetaAbove[i] = s.Raw.BetaAbove[j]
		}
		return w
	}

	w := &Worlds{
		Theta:     make([]float64, n),
		Alpha:     make([]float64, n),
		BetaBelow: make([]float64, n),
		BetaAbove: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		w.Theta[i] = s.Theta.Mean + s.Theta.SD*rng.NormFloat64()
		w.Alpha[i] = s.Alpha.Mean + s.Alpha.SD*rng.NormFloat64()
		w.BetaBelow[i] = s.BetaBelow.Mean + s.BetaBelow.SD*rng.NormFloat64()
		w.BetaAbove[i] = s.BetaAbove.Mean + s.BetaAbove.SD*rng.NormFloat64()
	}
	return w
}

// ChangepointFraction is the share of worlds whose slopes differ by more
// than 20% relative to the below-threshold slope. A cheap sample-based
// cross-check of ChangepointProbability.
func (w *Worlds) ChangepointFraction() float64 {
	if w.Len() == 0 {
		return 0
	}
	hits := 0
	for i := range w.Theta {
		bb, ba := w.BetaBelow[i], w.BetaAbove[i]
		if math.Abs(ba-bb)/(math.Abs(bb)+1e-6) > 0.2 {
			hits++
		}
	}
	return float64(hits) / float64(w.Len())
}

// Effect evaluates every world's predicted response change when the dose
// moves from current to target, returning the mean and spread of the delta.
func (w *Worlds) Effect(current, target float64) (mean, sd float64) {
	if w.Len() == 0 {
		return 0, 0
	}
	deltas := make([]float64, w.Len())
	for i := range w.Theta {
		yCur := changepoint.Predict(current, w.Theta[i], w.Alpha[i], w.BetaBelow[i], w.BetaAbove[i])
		yTgt := changepoint.Predict(target, w.Theta[i], w.Alpha[i], w.BetaBelow[i], w.BetaAbove[i])
		deltas[i] = yTgt - yCur
	}
	return stat.MeanStdDev(deltas, nil)
}
