package conf

import (
	"github.com/serifhq/bcel-go/internal/errors"
)

// ValidateSettings checks the loaded configuration for values the engine
// cannot run with.
func ValidateSettings(s *Settings) error {
	switch s.Fit.Method {
	case "grid", "laplace", "mcmc":
	default:
		return errors.Newf("invalid fit.method %q, expected grid, laplace or mcmc", s.Fit.Method).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if s.Fit.Restarts < 1 {
		return errors.Newf("fit.restarts must be at least 1, got %d", s.Fit.Restarts).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if s.Fit.GridSize < 2 {
		return errors.Newf("fit.gridsize must be at least 2, got %d", s.Fit.GridSize).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if s.Fit.GridSamples < 1 || s.Fit.Worlds < 1 {
		return errors.Newf("fit.gridsamples and fit.worlds must be positive").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if s.Fit.Tempering <= 0 || s.Fit.Tempering > 1 {
		return errors.Newf("fit.tempering must be in (0, 1], got %g", s.Fit.Tempering).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if s.Sampler.Chains < 1 || s.Sampler.Draws < 1 {
		return errors.Newf("sampler.chains and sampler.draws must be positive").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return nil
}
