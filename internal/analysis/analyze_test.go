package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/serifhq/bcel-go/internal/changepoint"
	"github.com/serifhq/bcel-go/internal/priors"
)

func plateauSummary() *changepoint.PosteriorSummary {
	return &changepoint.PosteriorSummary{
		Theta:     changepoint.ParamEstimate{Mean: 50, SD: 4},
		Alpha:     changepoint.ParamEstimate{Mean: 12, SD: 1},
		BetaBelow: changepoint.ParamEstimate{Mean: 0.4, SD: 0.03},
		BetaAbove: changepoint.ParamEstimate{Mean: 0.01, SD: 0.02},
		SigmaMean: 0.6,
		NObs:      40,
		Converged: true,
		Method:    changepoint.MethodGrid,
	}
}

func TestSampleWorldsGaussianFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := SampleWorlds(plateauSummary(), 64, rng)

	require.Equal(t, 64, w.Len())
	assert.Len(t, w.Alpha, 64)
	assert.Len(t, w.BetaBelow, 64)
	assert.Len(t, w.BetaAbove, 64)
}

func TestSampleWorldsSubsamplesRawDraws(t *testing.T) {
	s := plateauSummary()
	s.Raw = &changepoint.Samples{}
	for i := 0; i < 300; i++ {
		v := float64(i)
		s.Raw.Theta = append(s.Raw.Theta, v)
		s.Raw.Alpha = append(s.Raw.Alpha, v+1000)
		s.Raw.BetaBelow = append(s.Raw.BetaBelow, v+2000)
		s.Raw.BetaAbove = append(s.Raw.BetaAbove, v+3000)
	}

	w := SampleWorlds(s, 128, rand.New(rand.NewSource(2)))
	require.Equal(t, 128, w.Len())
	seen := map[float64]bool{}
	for i, th := range w.Theta {
		// Joint structure preserved: each world is one raw draw.
		assert.Equal(t, th+1000, w.Alpha[i])
		assert.Equal(t, th+2000, w.BetaBelow[i])
		assert.Equal(t, th+3000, w.BetaAbove[i])
		assert.False(t, seen[th], "subsampling is without replacement")
		seen[th] = true
	}
}

func TestSampleWorldsDeterministicPerSeed(t *testing.T) {
	a := SampleWorlds(plateauSummary(), 32, rand.New(rand.NewSource(9)))
	b := SampleWorlds(plateauSummary(), 32, rand.New(rand.NewSource(9)))
	assert.Equal(t, a, b)
}

func TestChangepointFraction(t *testing.T) {
	w := &Worlds{
		BetaBelow: []float64{1, 1, 1, 1},
		BetaAbove: []float64{1, 1, 0.5, 0.5},
		Theta:     make([]float64, 4),
		Alpha:     make([]float64, 4),
	}
	assert.InDelta(t, 0.5, w.ChangepointFraction(), 1e-12)
}

func TestWorldsEffect(t *testing.T) {
	// Single deterministic world: slope 0.4 below theta=50, flat above.
	w := &Worlds{
		Theta:     []float64{50},
		Alpha:     []float64{12},
		BetaBelow: []float64{0.4},
		BetaAbove: []float64{0},
	}
	mean, _ := w.Effect(30, 50)
	assert.InDelta(t, 8.0, mean, 1e-12)

	mean, _ = w.Effect(50, 70)
	assert.InDelta(t, 0.0, mean, 1e-12)
}

func TestDetectDegenerate(t *testing.T) {
	x := []float64{10, 20, 30, 40, 50}

	clean := plateauSummary()
	clean.Theta.Mean = 30
	assert.False(t, DetectDegenerate(clean, x).Any())

	boundary := plateauSummary()
	boundary.Theta.Mean = 49.9
	flags := DetectDegenerate(boundary, x)
	assert.True(t, flags.ThetaAtBoundary)
	assert.True(t, flags.Any())

	atZero := plateauSummary()
	atZero.Theta.Mean = -2
	assert.True(t, DetectDegenerate(atZero, x).ThetaAtZero)

	negligible := plateauSummary()
	negligible.Theta.Mean = 30
	negligible.BetaBelow.Mean = 1e-4
	negligible.BetaAbove.Mean = -1e-4
	assert.True(t, DetectDegenerate(negligible, x).NegligibleEffect)
}

func TestAnalyzeAssemblesAssessment(t *testing.T) {
	current := 70.0
	in := Input{
		Summary:        plateauSummary(),
		Source:         "weekly_zone2_min",
		Target:         "hdl",
		X:              []float64{10, 30, 50, 70, 90},
		ThetaUnit:      "min",
		EffectUnit:     "mg/dL",
		PerUnit:        "min",
		PriorCurveHint: priors.CurvePlateauUp,
		CurrentValue:   &current,
		EffectiveN:     35,
		WorldCount:     64,
		Seed:           7,
	}

	a := Analyze(in)

	assert.Equal(t, priors.CurvePlateauUp, a.CurveType)
	assert.InDelta(t, 50-1.96*4, a.Theta.Low, 1e-9)
	assert.InDelta(t, 50+1.96*4, a.Theta.High, 1e-9)
	assert.Equal(t, "50.0 min", a.Theta.DisplayValue)
	assert.Contains(t, a.BetaBelow.Description, "mg/dL/min")
	assert.Contains(t, a.BetaBelow.Description, "(strong)")
	assert.Contains(t, a.BetaAbove.Description, "(diminishing)")
	assert.Equal(t, StatusAtOptimal, a.CurrentStatus)
	assert.Equal(t, 40, a.Observations)
	assert.InDelta(t, 20.0, a.CompletePct, 1e-9, "40 of 200 expected weekly points")
	assert.False(t, a.Degenerate)
	assert.Equal(t, 64, a.Worlds.Len())
	assert.GreaterOrEqual(t, a.Priority, 1)
	assert.LessOrEqual(t, a.Priority, 10)
}

func TestAnalyzeLinearReportsThresholdSide(t *testing.T) {
	s := plateauSummary()
	s.BetaBelow = changepoint.ParamEstimate{Mean: 0.1, SD: 0.2}
	s.BetaAbove = changepoint.ParamEstimate{Mean: 0.1, SD: 0.2}
	current := 40.0

	a := Analyze(Input{
		Summary:      s,
		X:            []float64{10, 30, 50, 70, 90},
		CurrentValue: &current,
		Seed:         3,
	})

	assert.Equal(t, priors.CurveLinear, a.CurveType)
	assert.Equal(t, StatusBelowThreshold, a.CurrentStatus)
}

func TestFittedFallingCurveClassifiesPlateauDown(t *testing.T) {
	// End to end: a gentle decline that steepens past the changepoint is
	// fitted from raw doses and classified without relying on the hint.
	rng := rand.New(rand.NewSource(19))
	n := 80
	obs := &changepoint.ObservationSet{
		X: make([]float64, n),
		Y: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := 10 + 90*rng.Float64()
		obs.X[i] = x
		obs.Y[i] = changepoint.Predict(x, 55, 20, -0.05, -0.4) + 0.5*rng.NormFloat64()
	}
	prior := changepoint.Prior{
		ThetaMu: 50, ThetaSigma: 15,
		BetaBelowMu: -0.05, BetaBelowSigma: 0.1,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.2,
	}

	fitter := &changepoint.GridFitter{}
	s, err := fitter.Fit(obs, prior, changepoint.FitOptions{Seed: 23})
	require.NoError(t, err)

	assert.InDelta(t, 55.0, s.Theta.Mean, 10.0)
	assert.Less(t, s.BetaBelow.Mean, 0.0)
	assert.Less(t, s.BetaAbove.Mean, s.BetaBelow.Mean)
	assert.Equal(t, priors.CurvePlateauDown, Classify(s, priors.CurveLinear))
}
