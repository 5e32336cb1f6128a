package blend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serifhq/bcel-go/internal/changepoint"
)

func testSummary() *changepoint.PosteriorSummary {
	return &changepoint.PosteriorSummary{
		Theta:     changepoint.ParamEstimate{Mean: 48, SD: 4},
		Alpha:     changepoint.ParamEstimate{Mean: 12, SD: 1},
		BetaBelow: changepoint.ParamEstimate{Mean: 0.25, SD: 0.04},
		BetaAbove: changepoint.ParamEstimate{Mean: 0.01, SD: 0.03},
		SigmaMean: 0.6,
		NObs:      40,
		Converged: true,
		Method:    changepoint.MethodGrid,
	}
}

func testPrior() changepoint.Prior {
	return changepoint.Prior{
		ThetaMu: 45, ThetaSigma: 15,
		BetaBelowMu: 0.15, BetaBelowSigma: 0.1,
		BetaAboveMu: 0, BetaAboveSigma: 0.05,
	}
}

func TestPersonalWeightSaturates(t *testing.T) {
	assert.InDelta(t, 0.99, PersonalWeight(1e6, 100), 1e-9, "huge evidence hits the upper clamp")
	assert.InDelta(t, 0.01, PersonalWeight(0, 500), 0.04, "no evidence sits at the lower end")
	assert.InDelta(t, 0.5, PersonalWeight(100, 100), 1e-9, "midpoint gives an even split")
}

func TestPersonalWeightMonotoneInEvidence(t *testing.T) {
	prev := 0.0
	for _, n := range []float64{0, 10, 50, 100, 200, 400, 1000} {
		w := PersonalWeight(n, 100)
		assert.GreaterOrEqual(t, w, prev)
		prev = w
	}
}

func TestMidpointAdaptsToPriorTightness(t *testing.T) {
	loose := Midpoint(0.6, 0.5, 0.5, 2)
	tight := Midpoint(0.6, 0.01, 0.01, 2)
	assert.Greater(t, tight, loose, "tighter priors need more personal evidence")

	assert.LessOrEqual(t, tight, 500.0)
	assert.GreaterOrEqual(t, loose, 30.0)
}

func TestMidpointTierScaling(t *testing.T) {
	t1 := Midpoint(1.0, 0.1, 0.1, 1)
	t3 := Midpoint(1.0, 0.1, 0.1, 3)
	assert.Greater(t, t1, t3, "tier 1 priors count for more")
}

func TestMidpointFallbacks(t *testing.T) {
	assert.Equal(t, 150.0, Midpoint(0, 0.1, 0.1, 1))
	assert.Equal(t, 100.0, Midpoint(0, 0.1, 0.1, 2))
	assert.Equal(t, 50.0, Midpoint(0, 0.1, 0.1, 3))
	assert.Equal(t, 100.0, Midpoint(0, 0.1, 0.1, 9), "unknown tier uses the middle fallback")
}

func TestBlendFewObservationsLeansOnPrior(t *testing.T) {
	// Tier 1 prior, 3 effective observations: the prior should dominate.
	b := Blend(testSummary(), testPrior(), 1, 3)

	assert.Less(t, b.PersonalWeight, 0.3)
	assert.InDelta(t, 1.0, b.PersonalWeight+b.PopulationWeight, 1e-12)
	assert.Equal(t, "low", b.Confidence)
	assert.InDelta(t, 0.85, b.PriorStrength, 1e-12)

	// Blended theta sits closer to the prior mean than the personal one.
	assert.Less(t, b.Theta.Mean-45, 48-b.Theta.Mean)
}

func TestBlendHeavyEvidenceLeansPersonal(t *testing.T) {
	b := Blend(testSummary(), testPrior(), 2, 2000)

	assert.Greater(t, b.PersonalWeight, 0.9)
	assert.Equal(t, "high", b.Confidence)
	assert.InDelta(t, 48.0, b.Theta.Mean, 0.5)
}

func TestBlendAlphaStaysPersonal(t *testing.T) {
	b := Blend(testSummary(), testPrior(), 2, 10)
	assert.InDelta(t, 12.0, b.Alpha.Mean, 1e-12)
	assert.InDelta(t, 1.0, b.Alpha.SD, 1e-12)
}

func TestBlendDoesNotMutateInputs(t *testing.T) {
	s := testSummary()
	p := testPrior()
	before := *s
	_ = Blend(s, p, 2, 50)
	assert.Equal(t, before, *s)
}
