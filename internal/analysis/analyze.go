package analysis

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/serifhq/bcel-go/internal/blend"
	"github.com/serifhq/bcel-go/internal/changepoint"
)

// ThresholdEstimate is the threshold with a 95% interval and a
// human-readable rendering.
type ThresholdEstimate struct {
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	DisplayValue string  `json:"displayValue"`
}

// SlopeEstimate is one side's effect per unit dose.
type SlopeEstimate struct {
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// Assessment is the complete per-relationship output: shape, threshold,
// effect sizes, position, certainty, and posterior worlds.
type Assessment struct {
	Source string `json:"source"`
	Target string `json:"target"`

	CurveType string            `json:"curveType"`
	Theta     ThresholdEstimate `json:"theta"`
	BetaBelow SlopeEstimate     `json:"betaBelow"`
	BetaAbove SlopeEstimate     `json:"betaAbove"`

	Observations    int     `json:"observations"`
	EffectiveN      float64 `json:"effectiveN"`
	CompletePct     float64 `json:"completePct"`
	ChangepointProb float64 `json:"changepointProb"`
	SizeCategory    string  `json:"sizeCategory"`

	CurrentValue  *float64 `json:"currentValue,omitempty"`
	CurrentStatus string   `json:"currentStatus,omitempty"`

	Degenerate       bool   `json:"degenerate,omitempty"`
	DegenerateReason string `json:"degenerateReason,omitempty"`

	Priority int `json:"priority"`

	Method    string `json:"method"`
	Converged bool   `json:"converged"`

	Certainty *blend.BlendedPosterior `json:"certainty,omitempty"`
	Worlds    *Worlds                 `json:"posteriorSamples,omitempty"`
}

// Input carries everything Analyze needs for one relationship.
type Input struct {
	Summary *changepoint.PosteriorSummary
	// Blended is optional certainty metadata from the evidence blender.
	Blended *blend.BlendedPosterior

	Source string
	Target string
	X      []float64

	ThetaUnit  string
	EffectUnit string
	PerUnit    string
	// PriorCurveHint breaks classification ties, defaults to linear.
	PriorCurveHint string

	CurrentValue *float64
	EffectiveN   float64
	// ExpectedObs overrides the completeness heuristic when positive.
	ExpectedObs int

	WorldCount int
	Seed       uint64
}

// Analyze assembles the full assessment from a fitted summary. Pure except
// for the seeded world draws.
func Analyze(in Input) *Assessment {
	s := in.Summary
	rng := rand.New(rand.NewSource(in.Seed))

	hint := in.PriorCurveHint
	if hint == "" {
		hint = "linear"
	}
	curveType := Classify(s, hint)

	theta := ThresholdEstimate{
		Value: s.Theta.Mean,
		Unit:  in.ThetaUnit,
		Low:   s.Theta.Mean - 1.96*s.Theta.SD,
		High:  s.Theta.Mean + 1.96*s.Theta.SD,
	}
	theta.DisplayValue = fmt.Sprintf("%.1f %s", theta.Value, theta.Unit)

	flags := DetectDegenerate(s, in.X)

	a := &Assessment{
		Source:    in.Source,
		Target:    in.Target,
		CurveType: curveType,
		Theta:     theta,
		BetaBelow: slopeEstimate(s.BetaBelow.Mean, s.BetaAbove.Mean, in.EffectUnit, in.PerUnit, true),
		BetaAbove: slopeEstimate(s.BetaAbove.Mean, s.BetaBelow.Mean, in.EffectUnit, in.PerUnit, false),

		Observations:    s.NObs,
		EffectiveN:      in.EffectiveN,
		CompletePct:     completePct(s.NObs, in.ExpectedObs),
		ChangepointProb: ChangepointProbability(s),
		SizeCategory:    EffectSizeCategory(s),

		Degenerate:       flags.Any(),
		DegenerateReason: flags.Reason(),

		Method:    s.Method,
		Converged: s.Converged,

		Certainty: in.Blended,
		Worlds:    SampleWorlds(s, in.WorldCount, rng),
	}

	if in.CurrentValue != nil {
		v := *in.CurrentValue
		a.CurrentValue = &v
		a.CurrentStatus = CurrentStatus(v, theta.Value, curveType)
	}

	a.Priority = priority(a)
	return a
}

// slopeEstimate renders one slope with a qualitative label relative to the
// other side.
func slopeEstimate(value, other float64, effectUnit, perUnit string, below bool) SlopeEstimate {
	desc := fmt.Sprintf("%+.2f %s", value, effectUnit)
	if perUnit != "" {
		desc = fmt.Sprintf("%+.2f %s/%s", value, effectUnit, perUnit)
	}

	av, ao := math.Abs(value), math.Abs(other)
	switch {
	case av < ao*0.3:
		if below {
			desc += " (stable)"
		} else {
			desc += " (diminishing)"
		}
	case av > ao*3:
		if below {
			desc += " (strong)"
		} else {
			desc += " (sharp)"
		}
	}

	return SlopeEstimate{Value: value, Unit: effectUnit, Description: desc}
}

// completePct grades observation counts against a timescale heuristic:
// sparse lab draws expect about a dozen points, weekly aggregates a couple
// hundred, daily series about three years' worth.
func completePct(nObs, expected int) float64 {
	if expected <= 0 {
		switch {
		case nObs < 20:
			expected = 12
		case nObs < 200:
			expected = 200
		default:
			expected = 1100
		}
	}
	pct := float64(nObs) / float64(expected) * 100
	return math.Min(pct, 100)
}

// priority ranks the assessment for surfacing, 1 highest through 10.
// Larger effects, off-optimal positions, and confident changepoints rank
// higher.
func priority(a *Assessment) int {
	score := 5
	switch a.SizeCategory {
	case SizeLarge:
		score -= 2
	case SizeSmall:
		score += 2
	}
	switch a.CurrentStatus {
	case StatusAboveOptimal, StatusBelowOptimal, StatusAboveThreshold, StatusBelowThreshold:
		score--
	}
	if a.ChangepointProb > 0.8 {
		score--
	}
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
