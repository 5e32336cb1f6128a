package changepoint

import (
	"log/slog"
	"math"

	"golang.org/x/exp/rand"

	"github.com/serifhq/bcel-go/internal/errors"
	"github.com/serifhq/bcel-go/internal/logging"
)

// Fitter estimates the posterior of the piecewise-linear model for one
// observation set under one prior.
type Fitter interface {
	Fit(obs *ObservationSet, prior Prior, opts FitOptions) (*PosteriorSummary, error)
}

// FitOptions are the per-fit knobs shared by all backends.
type FitOptions struct {
	// Noise is the optional informative prior on the residual scale.
	Noise *NoisePrior
	// Weight tempers the likelihood; zero means full weight.
	Weight float64
	// Seed makes the fit reproducible. Every fit should get its own.
	Seed uint64
	// Logger receives fallback and degradation warnings. Nil uses the
	// package service logger.
	Logger *slog.Logger
}

func (o FitOptions) weight() float64 {
	if o.Weight <= 0 || o.Weight > 1 {
		return 1
	}
	return o.Weight
}

func (o FitOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.ForService("changepoint")
}

func checkFitInputs(obs *ObservationSet, prior Prior) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	if prior.ThetaSigma <= 0 || prior.BetaBelowSigma <= 0 || prior.BetaAboveSigma <= 0 {
		return errors.Newf("prior sigmas must be positive").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// LaplaceFitter is multi-start MAP optimization followed by a Gaussian
// curvature approximation. Fast, single-mode.
type LaplaceFitter struct {
	// Restarts overrides the default optimizer restart count when positive.
	Restarts int
	// MaxIterations caps each restart's optimizer iterations when positive.
	MaxIterations int
}

func (f *LaplaceFitter) Fit(obs *ObservationSet, prior Prior, opts FitOptions) (*PosteriorSummary, error) {
	if err := checkFitInputs(obs, prior); err != nil {
		return nil, err
	}
	o := newObjective(obs, prior, opts.Noise, opts.weight())
	rng := rand.New(rand.NewSource(opts.Seed))

	res, err := fitMAP(o, f.Restarts, f.MaxIterations, rng)
	if err != nil {
		// Optimization failure degrades to the prior restated as a
		// posterior rather than dropping the relationship.
		opts.logger().Warn("all optimizer restarts failed, returning prior-only posterior",
			"n_obs", obs.Len(), "error", err)
		return PriorOnlySummary(prior, obs.Y), nil
	}
	return laplaceSummary(o, res.point, opts.logger()), nil
}

// GridFitter marginalizes theta exactly on a dense grid with conditional
// closed-form solutions for the linear parameters. The default backend.
type GridFitter struct {
	Points  int
	Samples int
	// Restarts and MaxIterations size the laplace fallback's optimizer
	// when positive.
	Restarts      int
	MaxIterations int
}

func (f *GridFitter) points() int {
	if f.Points > 0 {
		return f.Points
	}
	return 200
}

func (f *GridFitter) samples() int {
	if f.Samples > 0 {
		return f.Samples
	}
	return 1000
}

func (f *GridFitter) Fit(obs *ObservationSet, prior Prior, opts FitOptions) (*PosteriorSummary, error) {
	if err := checkFitInputs(obs, prior); err != nil {
		return nil, err
	}
	o := newObjective(obs, prior, opts.Noise, opts.weight())
	rng := rand.New(rand.NewSource(opts.Seed))

	summary, err := fitGrid(o, f.points(), f.samples(), rng)
	if err == nil {
		return summary, nil
	}
	opts.logger().Warn("grid estimator failed, falling back to laplace",
		"n_obs", obs.Len(), "error", err)

	laplace := &LaplaceFitter{Restarts: f.Restarts, MaxIterations: f.MaxIterations}
	return laplace.Fit(obs, prior, opts)
}

// SamplerFitter is the full-sampling backend. Large observation sets are
// subsampled with the tempering weight rescaled so total evidence strength
// is preserved.
type SamplerFitter struct {
	Draws           int
	Tune            int
	Chains          int
	MaxObservations int
}

func (f *SamplerFitter) config() samplerConfig {
	cfg := samplerConfig{Draws: f.Draws, Tune: f.Tune, Chains: f.Chains}
	if cfg.Draws <= 0 {
		cfg.Draws = 500
	}
	if cfg.Tune <= 0 {
		cfg.Tune = 500
	}
	if cfg.Chains <= 0 {
		cfg.Chains = 2
	}
	return cfg
}

func (f *SamplerFitter) maxObs() int {
	if f.MaxObservations > 0 {
		return f.MaxObservations
	}
	return 500
}

func (f *SamplerFitter) Fit(obs *ObservationSet, prior Prior, opts FitOptions) (*PosteriorSummary, error) {
	if err := checkFitInputs(obs, prior); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	weight := opts.weight()
	fitObs := obs
	if rawN := obs.Len(); rawN > f.maxObs() {
		fitObs = subsample(obs, f.maxObs(), rng)
		weight *= float64(rawN) / float64(fitObs.Len())
		opts.logger().Debug("subsampled observations for sampler",
			"raw_n", rawN, "kept_n", fitObs.Len(), "rescaled_weight", weight)
	}

	o := newObjective(fitObs, prior, opts.Noise, weight)
	summary, err := fitMCMC(o, f.config(), rng)
	if err != nil {
		return nil, err
	}
	summary.NObs = obs.Len()
	return summary, nil
}

// subsample keeps k observations chosen uniformly without replacement.
func subsample(obs *ObservationSet, k int, rng *rand.Rand) *ObservationSet {
	idx := rng.Perm(obs.Len())[:k]
	out := &ObservationSet{
		X: make([]float64, k),
		Y: make([]float64, k),
	}
	if nc := obs.NCov(); nc > 0 {
		out.Z = make([][]float64, nc)
		for c := range out.Z {
			out.Z[c] = make([]float64, k)
		}
	}
	for i, j := range idx {
		out.X[i] = obs.X[j]
		out.Y[i] = obs.Y[j]
		for c := range out.Z {
			out.Z[c][i] = obs.Z[c][j]
		}
	}
	return out
}

// Config selects and sizes a fitting backend. Zero fields take the
// backend defaults.
type Config struct {
	Method        string
	Restarts      int
	MaxIterations int
	GridPoints    int
	GridSamples   int

	Draws           int
	Tune            int
	Chains          int
	MaxObservations int
}

// New returns the fitter for a configured method name.
func New(cfg Config) (Fitter, error) {
	switch cfg.Method {
	case "laplace":
		return &LaplaceFitter{Restarts: cfg.Restarts, MaxIterations: cfg.MaxIterations}, nil
	case "grid", "":
		return &GridFitter{
			Points:        cfg.GridPoints,
			Samples:       cfg.GridSamples,
			Restarts:      cfg.Restarts,
			MaxIterations: cfg.MaxIterations,
		}, nil
	case "mcmc":
		return &SamplerFitter{
			Draws:           cfg.Draws,
			Tune:            cfg.Tune,
			Chains:          cfg.Chains,
			MaxObservations: cfg.MaxObservations,
		}, nil
	default:
		return nil, errors.Newf("unknown fit method %q", cfg.Method).
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// EffectiveN converts a tempering weight and observation count into the
// evidence strength downstream blending uses.
func EffectiveN(nObs int, weight float64) float64 {
	if weight <= 0 || weight > 1 {
		weight = 1
	}
	return math.Max(float64(nObs)*weight, 0)
}
