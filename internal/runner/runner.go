// Package runner drives the fitting pipeline: prior resolution, posterior
// estimation, evidence blending, and assessment assembly, concurrently
// across independent relationships.
package runner

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/serifhq/bcel-go/internal/analysis"
	"github.com/serifhq/bcel-go/internal/blend"
	"github.com/serifhq/bcel-go/internal/changepoint"
	"github.com/serifhq/bcel-go/internal/conf"
	"github.com/serifhq/bcel-go/internal/errors"
	"github.com/serifhq/bcel-go/internal/logging"
	"github.com/serifhq/bcel-go/internal/observability"
	"github.com/serifhq/bcel-go/internal/priors"
)

// Result is the outcome of one request. Exactly one of Assessment and
// Error is meaningful.
type Result struct {
	ID           string               `json:"id"`
	Relationship string               `json:"relationship"`
	Assessment   *analysis.Assessment `json:"assessment,omitempty"`
	Error        string               `json:"error,omitempty"`
	DurationMs   int64                `json:"durationMs"`
}

// Runner owns the shared read-only pieces of the pipeline. Safe for
// concurrent use; per-request state is never shared between fits.
type Runner struct {
	catalog  *priors.Catalog
	fitter   changepoint.Fitter
	settings *conf.Settings
	metrics  *observability.Metrics
	log      *slog.Logger
}

// New assembles a runner from validated settings. metrics may be nil.
func New(catalog *priors.Catalog, settings *conf.Settings, metrics *observability.Metrics) (*Runner, error) {
	fitter, err := changepoint.New(changepoint.Config{
		Method:          settings.Fit.Method,
		Restarts:        settings.Fit.Restarts,
		MaxIterations:   settings.Fit.MaxIter,
		GridPoints:      settings.Fit.GridSize,
		GridSamples:     settings.Fit.GridSamples,
		Draws:           settings.Sampler.Draws,
		Tune:            settings.Sampler.Tune,
		Chains:          settings.Sampler.Chains,
		MaxObservations: settings.Sampler.MaxObservations,
	})
	if err != nil {
		return nil, err
	}
	return &Runner{
		catalog:  catalog,
		fitter:   fitter,
		settings: settings,
		metrics:  metrics,
		log:      logging.ForService("runner"),
	}, nil
}

// Run fits all requests, bounded by the configured worker count. Every
// request produces a Result; per-request failures are captured in the
// result rather than aborting the batch.
func (r *Runner) Run(ctx context.Context, requests []Request) []Result {
	results := make([]Result, len(requests))

	workers := r.settings.Fit.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range requests {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{
					ID:           uuid.NewString(),
					Relationship: requests[i].Relationship,
					Error:        ctx.Err().Error(),
				}
				return nil
			default:
			}
			seed := r.settings.Fit.Seed + uint64(i)
			results[i] = r.runOne(&requests[i], seed)
			return nil
		})
	}
	// Workers never return errors; the group is used for bounding only.
	_ = g.Wait()
	return results
}

func (r *Runner) runOne(req *Request, seed uint64) Result {
	id := uuid.NewString()
	start := time.Now()

	assessment, err := r.fitOne(req, seed)
	elapsed := time.Since(start)

	res := Result{
		ID:           id,
		Relationship: req.Relationship,
		DurationMs:   elapsed.Milliseconds(),
	}
	if err != nil {
		r.log.Error("fit failed",
			"relationship", req.Relationship, "id", id, "error", err)
		res.Error = err.Error()
		return res
	}
	r.log.Info("fit complete",
		"relationship", req.Relationship,
		"id", id,
		"method", assessment.Method,
		"curve_type", assessment.CurveType,
		"theta", assessment.Theta.Value,
		"changepoint_prob", assessment.ChangepointProb,
		"duration_ms", elapsed.Milliseconds())
	res.Assessment = assessment
	return res
}

func (r *Runner) fitOne(req *Request, seed uint64) (*analysis.Assessment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	spec, err := r.resolvePrior(req)
	if err != nil {
		if r.metrics != nil {
			r.metrics.Fitter.RecordPriorMiss()
		}
		return nil, err
	}

	obs := req.observations()
	weight := req.Weight
	if weight == 0 {
		weight = r.settings.Fit.Tempering
	}
	effectiveN := req.EffectiveN
	if effectiveN <= 0 {
		effectiveN = changepoint.EffectiveN(obs.Len(), weight)
	}

	_, target := req.SourceTarget()
	noise := r.resolveNoise(req, target, obs.Y, effectiveN)

	method := r.settings.Fit.Method
	if r.metrics != nil {
		r.metrics.Fitter.RecordFitStart(method)
		r.metrics.Fitter.RecordObservations(obs.Len())
	}
	fitStart := time.Now()
	summary, err := r.fitter.Fit(obs, toModelPrior(spec), changepoint.FitOptions{
		Noise:  noise,
		Weight: weight,
		Seed:   seed,
		Logger: r.log,
	})
	if r.metrics != nil {
		r.metrics.Fitter.RecordFitComplete(method, time.Since(fitStart).Seconds(), err)
	}
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryModelFit).
			Context("relationship", req.Relationship).
			Build()
	}
	if r.metrics != nil && summary.Method != method && method != "" {
		r.metrics.Fitter.RecordFallback(summary.Method)
	}

	blended := blend.Blend(summary, toModelPrior(spec), spec.EvidenceTier, effectiveN)

	source, target := req.SourceTarget()
	assessment := analysis.Analyze(analysis.Input{
		Summary:        summary,
		Blended:        blended,
		Source:         source,
		Target:         target,
		X:              obs.X,
		ThetaUnit:      spec.ThetaUnit,
		EffectUnit:     spec.EffectUnit,
		PerUnit:        spec.PerUnit,
		PriorCurveHint: spec.CurveType,
		CurrentValue:   req.CurrentDose,
		EffectiveN:     effectiveN,
		WorldCount:     r.settings.Fit.Worlds,
		Seed:           seed,
	})

	if assessment.Degenerate && r.metrics != nil {
		r.metrics.Fitter.RecordDegenerate(assessment.DegenerateReason)
	}
	return assessment, nil
}

// resolvePrior takes the explicit prior when given, otherwise looks up the
// catalog. A missing prior is fatal for the request; substituting a default
// would silently produce nonsense thresholds.
func (r *Runner) resolvePrior(req *Request) (priors.Spec, error) {
	var spec priors.Spec
	if req.Prior != nil {
		spec = *req.Prior
		if err := spec.Validate(); err != nil {
			return priors.Spec{}, err
		}
	} else {
		var err error
		spec, err = r.catalog.Get(req.Relationship)
		if err != nil {
			return priors.Spec{}, err
		}
	}

	if req.WindowDays > 0 {
		rescaled := priors.Rescale(spec, req.WindowDays, req.Aggregation, req.DoseUnit)
		if rescaled.ThetaMu != spec.ThetaMu {
			r.log.Debug("prior rescaled to dose window",
				"relationship", req.Relationship,
				"theta_mu", spec.ThetaMu, "rescaled_theta_mu", rescaled.ThetaMu,
				"window_days", req.WindowDays)
		}
		spec = rescaled
	}
	return spec, nil
}

func (r *Runner) resolveNoise(req *Request, target string, y []float64, effectiveN float64) *changepoint.NoisePrior {
	if req.Noise != nil {
		return &changepoint.NoisePrior{
			LogMu:    req.Noise.LogMu,
			LogSigma: req.Noise.LogSigma,
			Blend:    req.Noise.Blend,
		}
	}
	np := r.catalog.NoisePriorFor(target, meanAbs(y), effectiveN)
	if np == nil {
		return nil
	}
	return &changepoint.NoisePrior{LogMu: np.LogMu, LogSigma: np.LogSigma, Blend: np.Blend}
}
