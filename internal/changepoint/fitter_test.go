package changepoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// syntheticPlateau generates a plateau-down curve: positive slope up to the
// changepoint, flat after, plus Gaussian noise.
func syntheticPlateau(n int, theta, alpha, betaBelow, sigma float64, seed uint64) *ObservationSet {
	rng := rand.New(rand.NewSource(seed))
	obs := &ObservationSet{
		X: make([]float64, n),
		Y: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := 10 + 90*rng.Float64()
		obs.X[i] = x
		obs.Y[i] = Predict(x, theta, alpha, betaBelow, 0) + sigma*rng.NormFloat64()
	}
	return obs
}

func plateauPrior() Prior {
	return Prior{
		ThetaMu: 45, ThetaSigma: 15,
		BetaBelowMu: 0.15, BetaBelowSigma: 0.1,
		BetaAboveMu: 0, BetaAboveSigma: 0.05,
	}
}

func TestGridFitterRecoversPlateau(t *testing.T) {
	obs := syntheticPlateau(80, 50, 10, 0.2, 0.5, 7)
	fitter := &GridFitter{}

	s, err := fitter.Fit(obs, plateauPrior(), FitOptions{Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, MethodGrid, s.Method)
	assert.True(t, s.Converged)
	assert.Equal(t, 80, s.NObs)
	assert.InDelta(t, 50.0, s.Theta.Mean, 10.0)
	assert.InDelta(t, 0.2, s.BetaBelow.Mean, 0.05)
	assert.InDelta(t, 0.0, s.BetaAbove.Mean, 0.1)
	assert.Greater(t, s.Theta.SD, 0.0)
	require.NotNil(t, s.Raw)
	assert.Equal(t, 1000, s.Raw.Len())
}

// syntheticLine generates kink-free linear data.
func syntheticLine(n int, intercept, slope, sigma float64, seed uint64) *ObservationSet {
	rng := rand.New(rand.NewSource(seed))
	obs := &ObservationSet{
		X: make([]float64, n),
		Y: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := 100 * rng.Float64()
		obs.X[i] = x
		obs.Y[i] = intercept + slope*x + sigma*rng.NormFloat64()
	}
	return obs
}

func TestGridThetaFollowsPriorWithoutKink(t *testing.T) {
	// Purely linear data carries no changepoint information, so the theta
	// marginal reduces to the prior restricted to the grid: same center,
	// the mild variance shrink of a +-3 sd truncation, and both slopes
	// landing on the shared line.
	obs := syntheticLine(80, 2, 0.3, 0.2, 17)
	prior := Prior{
		ThetaMu: 50, ThetaSigma: 10,
		BetaBelowMu: 0.3, BetaBelowSigma: 0.1,
		BetaAboveMu: 0.3, BetaAboveSigma: 0.1,
	}
	fitter := &GridFitter{}

	s, err := fitter.Fit(obs, prior, FitOptions{Seed: 6})
	require.NoError(t, err)
	require.Equal(t, MethodGrid, s.Method)

	assert.InDelta(t, 50.0, s.Theta.Mean, 3.0)
	assert.InDelta(t, 9.5, s.Theta.SD, 2.0)

	inOneSD := 0
	for _, v := range s.Raw.Theta {
		require.GreaterOrEqual(t, v, 20.0, "draw left the grid support")
		require.LessOrEqual(t, v, 80.0, "draw left the grid support")
		if v >= 40 && v <= 60 {
			inOneSD++
		}
	}
	frac := float64(inOneSD) / float64(s.Raw.Len())
	assert.InDelta(t, 0.68, frac, 0.10, "one-sd mass should match the prior")

	assert.InDelta(t, 0.3, s.BetaBelow.Mean, 0.05)
	assert.InDelta(t, 0.3, s.BetaAbove.Mean, 0.05)
	se := math.Hypot(s.BetaBelow.SD, s.BetaAbove.SD)
	assert.Less(t, math.Abs(s.BetaBelow.Mean-s.BetaAbove.Mean), 1.5*se,
		"slopes should be statistically indistinguishable")
}

func TestGridFitterIsDeterministicPerSeed(t *testing.T) {
	obs := syntheticPlateau(40, 50, 10, 0.2, 0.5, 11)
	fitter := &GridFitter{Points: 100, Samples: 200}

	a, err := fitter.Fit(obs, plateauPrior(), FitOptions{Seed: 99})
	require.NoError(t, err)
	b, err := fitter.Fit(obs.Clone(), plateauPrior(), FitOptions{Seed: 99})
	require.NoError(t, err)

	assert.Equal(t, a.Theta, b.Theta)
	assert.Equal(t, a.BetaBelow, b.BetaBelow)
	assert.Equal(t, a.Raw.Theta, b.Raw.Theta)
}

func TestLaplaceFitterProducesFiniteEstimates(t *testing.T) {
	obs := syntheticPlateau(60, 50, 10, 0.2, 0.5, 3)
	fitter := &LaplaceFitter{}

	s, err := fitter.Fit(obs, plateauPrior(), FitOptions{Seed: 1})
	require.NoError(t, err)

	if s.Method == MethodPriorOnly {
		// Optimizer degradation path is still a valid outcome.
		assert.False(t, s.Converged)
		return
	}
	assert.Equal(t, MethodLaplace, s.Method)
	assert.True(t, s.Converged)
	assert.InDelta(t, 50.0, s.Theta.Mean, 15.0)
	assert.Greater(t, s.Theta.SD, 0.0)
	assert.Greater(t, s.BetaBelow.SD, 0.0)
	assert.Greater(t, s.SigmaMean, 0.0)
}

func TestGridFallsBackWhenUnderdetermined(t *testing.T) {
	// Two points cannot support three linear coefficients; the grid path
	// fails and the laplace fallback degrades to prior-only at worst.
	obs := &ObservationSet{X: []float64{1, 2}, Y: []float64{3, 4}}
	fitter := &GridFitter{}

	s, err := fitter.Fit(obs, plateauPrior(), FitOptions{Seed: 5})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NotEqual(t, MethodGrid, s.Method)
}

func TestSamplerFitterRunsAndReportsDiagnostics(t *testing.T) {
	obs := syntheticPlateau(50, 50, 10, 0.2, 0.5, 21)
	fitter := &SamplerFitter{Draws: 200, Tune: 200, Chains: 2}

	s, err := fitter.Fit(obs, plateauPrior(), FitOptions{Seed: 8})
	require.NoError(t, err)

	assert.Equal(t, MethodSampling, s.Method)
	assert.Equal(t, 50, s.NObs)
	assert.Equal(t, 400, s.Raw.Len())
	assert.Greater(t, s.RHatMax, 0.0)
	assert.Greater(t, s.ESSMin, 0.0)
	assert.InDelta(t, 50.0, s.Theta.Mean, 20.0)
}

func TestSamplerSubsamplesLargeSets(t *testing.T) {
	obs := syntheticPlateau(700, 50, 10, 0.2, 0.5, 13)
	fitter := &SamplerFitter{Draws: 50, Tune: 50, Chains: 2, MaxObservations: 100}

	s, err := fitter.Fit(obs, plateauPrior(), FitOptions{Seed: 4})
	require.NoError(t, err)
	// NObs reports the raw count even when the sampler saw a subsample.
	assert.Equal(t, 700, s.NObs)
}

func TestNewSelectsBackend(t *testing.T) {
	f, err := New(Config{Method: "grid"})
	require.NoError(t, err)
	assert.IsType(t, &GridFitter{}, f)

	f, err = New(Config{Method: "laplace"})
	require.NoError(t, err)
	assert.IsType(t, &LaplaceFitter{}, f)

	f, err = New(Config{Method: "mcmc"})
	require.NoError(t, err)
	assert.IsType(t, &SamplerFitter{}, f)

	_, err = New(Config{Method: "variational"})
	assert.Error(t, err)
}

func TestNewThreadsOptimizerSizing(t *testing.T) {
	cfg := Config{Restarts: 4, MaxIterations: 300, GridPoints: 120, GridSamples: 600}

	f, err := New(cfg)
	require.NoError(t, err)
	grid := f.(*GridFitter)
	assert.Equal(t, 120, grid.Points)
	assert.Equal(t, 600, grid.Samples)
	assert.Equal(t, 4, grid.Restarts)
	assert.Equal(t, 300, grid.MaxIterations)

	cfg.Method = "laplace"
	f, err = New(cfg)
	require.NoError(t, err)
	laplace := f.(*LaplaceFitter)
	assert.Equal(t, 4, laplace.Restarts)
	assert.Equal(t, 300, laplace.MaxIterations)
}

func TestEffectiveN(t *testing.T) {
	assert.InDelta(t, 100.0, EffectiveN(100, 1.0), 1e-12)
	assert.InDelta(t, 30.0, EffectiveN(100, 0.3), 1e-12)
	assert.InDelta(t, 50.0, EffectiveN(50, 0), 1e-12, "zero weight defaults to full")
}
