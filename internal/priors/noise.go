package priors

import (
	"math"
	"strings"
)

// Suffixes stripped from response variable names when inferring the
// conceptual biomarker family.
var familySuffixes = []string{
	"_smoothed", "_raw", "_pct", "_min", "_mean", "_7d_mean",
	"_7d", "_score", "_hrs", "_ms", "_bpm", "_derived",
}

// InferResponseFamily recovers the conceptual family of a response variable
// by reverse-matching known column names, then by stripping processing
// suffixes, then by prefix matching. Returns "" when no family matches.
func (c *Catalog) InferResponseFamily(responseVar string) string {
	// Direct lookup against each family's known columns.
	for id, cols := range c.families {
		for _, col := range cols {
			if responseVar == col {
				return id
			}
		}
	}

	base := responseVar
	for _, suffix := range familySuffixes {
		base = strings.ReplaceAll(base, suffix, "")
	}
	base = strings.TrimRight(base, "_")

	if _, ok := c.families[base]; ok {
		return base
	}
	if _, ok := c.noise[base]; ok {
		return base
	}

	for id := range c.families {
		if strings.HasPrefix(base, id) || strings.HasPrefix(id, base) {
			return id
		}
	}
	return ""
}

// NoisePrior is an informative log-normal prior on the model's noise scale,
// blended against the reference prior with weight Blend.
type NoisePrior struct {
	LogMu    float64
	LogSigma float64
	Blend    float64
}

// NoisePriorFor derives a noise-scale prior for a response variable from the
// biomarker noise catalog. meanAbsResponse anchors the expected noise level
// (sigma ≈ total CV × typical response magnitude); effectiveN sets the blend
// weight, which decays as personal evidence accumulates.
//
// Returns nil when the family is unknown or the level is degenerate, in
// which case the reference prior applies alone.
func (c *Catalog) NoisePriorFor(responseVar string, meanAbsResponse float64, effectiveN float64) *NoisePrior {
	family := c.InferResponseFamily(responseVar)
	if family == "" {
		return nil
	}
	noise, ok := c.noise[family]
	if !ok {
		return nil
	}

	expected := meanAbsResponse * noise.TotalCV()
	if expected <= 0 || math.IsNaN(expected) || math.IsInf(expected, 0) {
		return nil
	}

	return &NoisePrior{
		LogMu:    math.Log(expected),
		LogSigma: 0.5, // ~2.7x range at two sd
		Blend:    1.0 / (1.0 + effectiveN/20.0),
	}
}
