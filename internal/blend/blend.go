// Package blend fuses a personal posterior with its population prior.
//
// The model is non-conjugate, so precision arithmetic is off the table
// (posterior spread can exceed prior spread when theta uncertainty leaks
// into the slopes). Instead the personal weight follows an effective
// sample size sigmoid whose midpoint is the number of observations the
// prior is worth at the observed noise level.
package blend

import (
	"math"

	"github.com/serifhq/bcel-go/internal/changepoint"
)

const (
	midpointMin = 30.0
	midpointMax = 500.0

	weightMin = 0.01
	weightMax = 0.99
)

var tierMultipliers = map[int]float64{1: 1.5, 2: 1.0, 3: 0.7}

var fallbackMidpoints = map[int]float64{1: 150, 2: 100, 3: 50}

var tierStrengths = map[int]float64{1: 0.85, 2: 0.55, 3: 0.25}

// BlendedPosterior is the evidence-weighted combination of a fitted
// posterior and the population prior. Alpha has no population analogue, so
// its blend degenerates to the personal estimate.
type BlendedPosterior struct {
	Theta     changepoint.ParamEstimate `json:"theta"`
	Alpha     changepoint.ParamEstimate `json:"alpha"`
	BetaBelow changepoint.ParamEstimate `json:"betaBelow"`
	BetaAbove changepoint.ParamEstimate `json:"betaAbove"`
	SigmaMean float64                   `json:"sigmaMean"`

	PersonalWeight   float64 `json:"personalWeight"`
	PopulationWeight float64 `json:"populationWeight"`
	PriorStrength    float64 `json:"priorStrength"`
	EvidenceTier     int     `json:"evidenceTier"`
	Observations     int     `json:"observations"`
	EffectiveN       float64 `json:"effectiveN"`
	Midpoint         float64 `json:"midpoint"`
	Confidence       string  `json:"confidence"`
}

// Midpoint estimates the prior's equivalent sample size: how many
// observations at the fitted noise level would carry the same information
// as the tighter of the two slope priors. Tier scaling makes meta-analytic
// priors count for more. Falls back to tier constants when the inputs
// cannot support the calculation.
func Midpoint(residualSigma, betaBelowSigma, betaAboveSigma float64, tier int) float64 {
	if betaBelowSigma > 0 && betaAboveSigma > 0 && residualSigma > 1e-8 {
		equivBelow := (residualSigma / betaBelowSigma) * (residualSigma / betaBelowSigma)
		equivAbove := (residualSigma / betaAboveSigma) * (residualSigma / betaAboveSigma)
		mult, ok := tierMultipliers[tier]
		if !ok {
			mult = 1.0
		}
		m := math.Max(equivBelow, equivAbove) * mult
		return math.Min(math.Max(m, midpointMin), midpointMax)
	}
	if m, ok := fallbackMidpoints[tier]; ok {
		return m
	}
	return 100
}

// PersonalWeight maps effective sample size through a sigmoid centered on
// the midpoint. The slope is calibrated so the weight reaches about 0.95 at
// twice the midpoint. Clamped so neither source is ever claimed absolute.
func PersonalWeight(effectiveN, midpoint float64) float64 {
	slope := 3.0 / midpoint
	w := 1.0 / (1.0 + math.Exp(-slope*(effectiveN-midpoint)))
	return math.Min(math.Max(w, weightMin), weightMax)
}

// Blend combines the fitted posterior with the prior using the adaptive
// personal weight. Pure: neither input is mutated.
func Blend(summary *changepoint.PosteriorSummary, prior changepoint.Prior, tier int, effectiveN float64) *BlendedPosterior {
	midpoint := Midpoint(summary.SigmaMean, prior.BetaBelowSigma, prior.BetaAboveSigma, tier)
	pw := PersonalWeight(effectiveN, midpoint)

	strength, ok := tierStrengths[tier]
	if !ok {
		strength = tierStrengths[2]
	}

	return &BlendedPosterior{
		Theta:     blendParam(summary.Theta, prior.ThetaMu, prior.ThetaSigma, pw),
		Alpha:     blendParam(summary.Alpha, summary.Alpha.Mean, summary.Alpha.SD, pw),
		BetaBelow: blendParam(summary.BetaBelow, prior.BetaBelowMu, prior.BetaBelowSigma, pw),
		BetaAbove: blendParam(summary.BetaAbove, prior.BetaAboveMu, prior.BetaAboveSigma, pw),
		SigmaMean: summary.SigmaMean,

		PersonalWeight:   pw,
		PopulationWeight: 1 - pw,
		PriorStrength:    strength,
		EvidenceTier:     tier,
		Observations:     summary.NObs,
		EffectiveN:       effectiveN,
		Midpoint:         midpoint,
		Confidence:       confidenceLabel(effectiveN),
	}
}

func blendParam(personal changepoint.ParamEstimate, popMean, popSD, pw float64) changepoint.ParamEstimate {
	return changepoint.ParamEstimate{
		Mean: pw*personal.Mean + (1-pw)*popMean,
		SD:   math.Sqrt(pw*personal.SD*personal.SD + (1-pw)*popSD*popSD),
	}
}

func confidenceLabel(effectiveN float64) string {
	switch {
	case effectiveN > 100:
		return "high"
	case effectiveN > 30:
		return "medium"
	default:
		return "low"
	}
}
