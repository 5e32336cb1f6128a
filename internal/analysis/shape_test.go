package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serifhq/bcel-go/internal/changepoint"
	"github.com/serifhq/bcel-go/internal/priors"
)

func summaryWith(bb, bbSD, ba, baSD, sigma float64) *changepoint.PosteriorSummary {
	return &changepoint.PosteriorSummary{
		BetaBelow: changepoint.ParamEstimate{Mean: bb, SD: bbSD},
		BetaAbove: changepoint.ParamEstimate{Mean: ba, SD: baSD},
		SigmaMean: sigma,
	}
}

func TestClassifyEqualSlopesAlwaysLinear(t *testing.T) {
	for _, v := range []float64{-3, -0.01, 0, 0.01, 5} {
		s := summaryWith(v, 0, v, 0, 1)
		assert.Equal(t, priors.CurveLinear, Classify(s, priors.CurveVMax),
			"equal slopes are linear regardless of their common value")
	}
}

func TestClassifyIndistinguishableSlopesAreLinear(t *testing.T) {
	// Slopes differ but within 1.5 combined standard errors.
	s := summaryWith(0.10, 0.2, 0.05, 0.2, 1)
	assert.Equal(t, priors.CurveLinear, Classify(s, priors.CurvePlateauUp))
}

func TestClassifySignPatterns(t *testing.T) {
	cases := []struct {
		name   string
		bb, ba float64
		want   string
	}{
		{"rising then flat", 0.5, 0.01, priors.CurvePlateauUp},
		{"flat then rising", 0.01, 0.5, priors.CurvePlateauUp},
		{"falling then flat", -0.5, -0.01, priors.CurvePlateauDown},
		{"flat then falling", -0.01, -0.5, priors.CurvePlateauDown},
		{"rising then falling", 0.5, -0.5, priors.CurveVMax},
		{"falling then rising", -0.5, 0.5, priors.CurveVMin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := summaryWith(tc.bb, 0.01, tc.ba, 0.01, 1)
			assert.Equal(t, tc.want, Classify(s, priors.CurveLinear))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	s := summaryWith(0.5, 0.01, -0.5, 0.01, 1)
	before := *s
	first := Classify(s, priors.CurveLinear)
	second := Classify(s, priors.CurveLinear)
	assert.Equal(t, first, second)
	assert.Equal(t, before, *s)
}

func TestChangepointProbabilityBounds(t *testing.T) {
	// Wildly different large slopes against small noise: near certain.
	high := ChangepointProbability(summaryWith(2, 0.05, -2, 0.05, 0.5))
	assert.InDelta(t, 0.99, high, 1e-9)

	// Identical slopes: bottoms out at the clamp.
	low := ChangepointProbability(summaryWith(0.1, 0.05, 0.1, 0.05, 1))
	assert.GreaterOrEqual(t, low, 0.05)
	assert.Less(t, low, 0.3)
}

func TestChangepointProbabilityMonotoneInSlopeGap(t *testing.T) {
	prev := 0.0
	for _, gap := range []float64{0, 0.2, 0.5, 1.0, 2.0} {
		p := ChangepointProbability(summaryWith(gap, 0.1, -gap, 0.1, 0.5))
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestChangepointProbabilityTinySlopesStayLow(t *testing.T) {
	// Statistically distinguishable but practically negligible.
	p := ChangepointProbability(summaryWith(0.001, 0.0001, -0.001, 0.0001, 1))
	assert.Less(t, p, 0.5)
}

func TestEffectSizeCategory(t *testing.T) {
	assert.Equal(t, SizeSmall, EffectSizeCategory(summaryWith(0.1, 0, 0.05, 0, 1)))
	assert.Equal(t, SizeMedium, EffectSizeCategory(summaryWith(0.3, 0, 0.1, 0, 1)))
	assert.Equal(t, SizeLarge, EffectSizeCategory(summaryWith(0.8, 0, 0.1, 0, 1)))
}

func TestCurrentStatusPlateaus(t *testing.T) {
	// plateau_up: optimal is at or above theta.
	assert.Equal(t, StatusAtOptimal, CurrentStatus(105, 100, priors.CurvePlateauUp))
	assert.Equal(t, StatusAtOptimal, CurrentStatus(96, 100, priors.CurvePlateauUp))
	assert.Equal(t, StatusBelowOptimal, CurrentStatus(50, 100, priors.CurvePlateauUp))

	// plateau_down: optimal is at or below theta.
	assert.Equal(t, StatusAtOptimal, CurrentStatus(90, 100, priors.CurvePlateauDown))
	assert.Equal(t, StatusAboveOptimal, CurrentStatus(130, 100, priors.CurvePlateauDown))
}

func TestCurrentStatusVShapesUseWiderBand(t *testing.T) {
	// 5% tolerance doubled: within 10 of theta=100 counts as optimal.
	assert.Equal(t, StatusAtOptimal, CurrentStatus(92, 100, priors.CurveVMin))
	assert.Equal(t, StatusBelowOptimal, CurrentStatus(85, 100, priors.CurveVMin))
	assert.Equal(t, StatusAboveOptimal, CurrentStatus(115, 100, priors.CurveVMax))
}

func TestCurrentStatusLinearNeverOptimal(t *testing.T) {
	assert.Equal(t, StatusBelowThreshold, CurrentStatus(100, 100.1, priors.CurveLinear))
	assert.Equal(t, StatusAboveThreshold, CurrentStatus(100.1, 100, priors.CurveLinear))
}

func TestCurrentStatusZeroThetaTolerance(t *testing.T) {
	// theta=0 uses an absolute tolerance of 0.5.
	assert.Equal(t, StatusAtOptimal, CurrentStatus(0.4, 0, priors.CurvePlateauDown))
	assert.Equal(t, StatusAboveOptimal, CurrentStatus(0.6, 0, priors.CurvePlateauDown))
}
