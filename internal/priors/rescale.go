package priors

import (
	"strconv"
	"strings"
)

// Units that represent weekly quantities and need scaling for non-7-day
// dose windows.
var weeklyUnits = map[string]bool{
	"km/wk":    true,
	"km/week":  true,
	"hr/wk":    true,
	"hrs/week": true,
	"min/wk":   true,
	"min/week": true,
}

// Hour-based prior units that need conversion when the dose is in minutes.
var hourUnits = map[string]bool{
	"hr/wk":    true,
	"hrs/week": true,
}

// Rescale adapts a prior authored for a canonical weekly window to the
// actual dose aggregation window and unit. Theta mean and sd are multiplied
// by (window ratio)×(unit ratio), slope means and sds divided by the same
// factor. Returns the original spec unchanged when no scaling applies.
//
// windowDays is the dose aggregation window in days, agg the aggregation
// method ("sum", "mean", "max", "last"), doseUnit the unit of the dose
// column (e.g. "min", "km").
func Rescale(spec Spec, windowDays int, agg, doseUnit string) Spec {
	if !weeklyUnits[spec.ThetaUnit] {
		return spec
	}
	if agg != "sum" && agg != "mean" {
		return spec
	}

	timeScale := 1.0
	if agg == "sum" && windowDays != 7 {
		timeScale = float64(windowDays) / 7.0
	}

	unitScale := 1.0
	if hourUnits[spec.ThetaUnit] && doseUnit == "min" {
		unitScale = 60.0
	}

	totalScale := timeScale * unitScale
	if totalScale == 1.0 {
		return spec
	}

	out := spec
	out.ThetaMu *= totalScale
	out.ThetaSigma *= totalScale
	out.BetaBelowMu /= totalScale
	out.BetaBelowSigma /= totalScale
	out.BetaAboveMu /= totalScale
	out.BetaAboveSigma /= totalScale
	out.ThetaUnit = rescaledUnit(spec.ThetaUnit, windowDays, timeScale, unitScale)
	return out
}

func rescaledUnit(unit string, windowDays int, timeScale, unitScale float64) string {
	if unitScale > 1 {
		unit = strings.ReplaceAll(unit, "hrs/", "min/")
		unit = strings.ReplaceAll(unit, "hr/", "min/")
	}
	if timeScale != 1.0 {
		suffix := "/" + strconv.Itoa(windowDays) + "d"
		unit = strings.ReplaceAll(unit, "/week", suffix)
		unit = strings.ReplaceAll(unit, "/wk", suffix)
	}
	return unit
}
