package priors

// Literature-based priors per relationship, keyed "source→target".
// Primary references cited per entry; values express the expected
// piecewise-linear response around a physiological threshold.
var builtinSpecs = map[string]Spec{
	"weekly_run_km→iron_total": {
		ThetaMu: 40.0, ThetaSigma: 10.0, ThetaUnit: "km/wk",
		BetaBelowMu: -0.2, BetaBelowSigma: 0.15,
		BetaAboveMu: -0.8, BetaAboveSigma: 0.3,
		EffectUnit: "mcg/dL", PerUnit: "per 10 km/wk",
		Source:    "Sim et al., Sports Med 2019",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"weekly_run_km→ferritin": {
		ThetaMu: 35.0, ThetaSigma: 7.0, ThetaUnit: "km/wk",
		BetaBelowMu: -0.5, BetaBelowSigma: 0.3,
		BetaAboveMu: -1.5, BetaAboveSigma: 0.6,
		EffectUnit: "ng/mL", PerUnit: "per 10 km/wk",
		Source:    "Peeling et al., IJSNEM 2008",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"weekly_run_km→hemoglobin": {
		ThetaMu: 45.0, ThetaSigma: 12.0, ThetaUnit: "km/wk",
		BetaBelowMu: -0.01, BetaBelowSigma: 0.02,
		BetaAboveMu: -0.15, BetaAboveSigma: 0.08,
		EffectUnit: "g/dL", PerUnit: "per 10 km/wk",
		Source:    "Mairbäurl, Front Physiol 2013; Eichner, Am J Med 1985",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"weekly_training_hrs→testosterone": {
		ThetaMu: 12.0, ThetaSigma: 3.0, ThetaUnit: "hr/wk",
		BetaBelowMu: 2.0, BetaBelowSigma: 3.0,
		BetaAboveMu: -15.0, BetaAboveSigma: 3.5,
		EffectUnit: "ng/dL", PerUnit: "per hr/wk",
		Source:    "Hackney et al., BJSM 2003",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"weekly_training_hrs→cortisol": {
		ThetaMu: 12.0, ThetaSigma: 3.0, ThetaUnit: "hr/wk",
		BetaBelowMu: -0.5, BetaBelowSigma: 0.5,
		BetaAboveMu: 2.0, BetaAboveSigma: 1.0,
		EffectUnit: "mcg/dL", PerUnit: "per hr/wk",
		Source:    "Hackney et al., BJSM 2003; Cadegiani & Kater 2017",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"weekly_training_hrs→glucose": {
		ThetaMu: 10.0, ThetaSigma: 3.0, ThetaUnit: "hr/wk",
		BetaBelowMu: -1.0, BetaBelowSigma: 0.5,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.3,
		EffectUnit: "mg/dL", PerUnit: "per hr/wk",
		Source:    "Colberg et al., Diabetes Care 2016",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"weekly_training_hrs→hba1c": {
		ThetaMu: 10.0, ThetaSigma: 3.0, ThetaUnit: "hr/wk",
		BetaBelowMu: -0.02, BetaBelowSigma: 0.01,
		BetaAboveMu: -0.005, BetaAboveSigma: 0.005,
		EffectUnit: "%", PerUnit: "per hr/wk",
		Source:    "Boulé et al., JAMA 2001 meta-analysis",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"weekly_training_hrs→dhea_s": {
		ThetaMu: 12.0, ThetaSigma: 4.0, ThetaUnit: "hr/wk",
		BetaBelowMu: 3.0, BetaBelowSigma: 2.0,
		BetaAboveMu: -5.0, BetaAboveSigma: 3.0,
		EffectUnit: "mcg/dL", PerUnit: "per hr/wk",
		Source:    "Copeland et al., Eur J Appl Physiol 2002",
		CurveType: CurveVMax, EvidenceTier: 2,
	},
	"weekly_training_hrs→homocysteine": {
		ThetaMu: 10.0, ThetaSigma: 4.0, ThetaUnit: "hr/wk",
		BetaBelowMu: -0.15, BetaBelowSigma: 0.15,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.3,
		EffectUnit: "umol/L", PerUnit: "per hr/wk",
		Source:    "Randeva et al., Thromb Haemost 2002; wide prior",
		CurveType: CurveLinear, EvidenceTier: 3,
	},
	"weekly_zone2_min→triglycerides": {
		ThetaMu: 150.0, ThetaSigma: 30.0, ThetaUnit: "min/wk",
		BetaBelowMu: -5.0, BetaBelowSigma: 1.5,
		BetaAboveMu: -1.0, BetaAboveSigma: 1.0,
		EffectUnit: "mg/dL", PerUnit: "per 30 min/wk",
		Source:    "AHA Physical Activity Guidelines",
		CurveType: CurvePlateauUp, EvidenceTier: 1,
	},
	"weekly_zone2_min→hdl": {
		ThetaMu: 150.0, ThetaSigma: 20.0, ThetaUnit: "min/wk",
		BetaBelowMu: 1.0, BetaBelowSigma: 0.35,
		BetaAboveMu: 0.2, BetaAboveSigma: 0.3,
		EffectUnit: "mg/dL", PerUnit: "per 30 min/wk",
		Source:    "AHA Guidelines; Kodama et al. 2007",
		CurveType: CurvePlateauUp, EvidenceTier: 1,
	},
	"weekly_zone2_min→ldl": {
		ThetaMu: 150.0, ThetaSigma: 30.0, ThetaUnit: "min/wk",
		BetaBelowMu: -1.0, BetaBelowSigma: 0.8,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.5,
		EffectUnit: "mg/dL", PerUnit: "per 30 min/wk",
		Source:    "Mann et al., J Lipid Res 2014; Kelley et al. 2012",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"acwr→hscrp": {
		ThetaMu: 1.3, ThetaSigma: 0.2, ThetaUnit: "ratio",
		BetaBelowMu: -0.02, BetaBelowSigma: 0.02,
		BetaAboveMu: 0.1, BetaAboveSigma: 0.05,
		EffectUnit: "mg/L", PerUnit: "per 0.1 ACWR",
		Source:    "Hulin et al., BJSM 2016",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"acwr→resting_hr": {
		ThetaMu: 1.3, ThetaSigma: 0.2, ThetaUnit: "ratio",
		BetaBelowMu: 0.1, BetaBelowSigma: 0.2,
		BetaAboveMu: 2.5, BetaAboveSigma: 1.0,
		EffectUnit: "bpm", PerUnit: "per 0.1 ACWR",
		Source:    "Hulin et al., BJSM 2016; Gabbett, BJSM 2016",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"acwr→wbc": {
		ThetaMu: 1.3, ThetaSigma: 0.2, ThetaUnit: "ratio",
		BetaBelowMu: 0.02, BetaBelowSigma: 0.02,
		BetaAboveMu: -0.05, BetaAboveSigma: 0.03,
		EffectUnit: "K/uL", PerUnit: "per 0.1 ACWR",
		Source:    "Gleeson, J Appl Physiol 2007",
		CurveType: CurveVMin, EvidenceTier: 2,
	},
	"training_consistency→vo2_peak": {
		ThetaMu: 0.6, ThetaSigma: 0.15, ThetaUnit: "fraction",
		BetaBelowMu: 5.0, BetaBelowSigma: 3.0,
		BetaAboveMu: 1.0, BetaAboveSigma: 1.0,
		EffectUnit: "ml/min/kg", PerUnit: "per 0.1 consistency",
		Source:    "General exercise physiology",
		CurveType: CurvePlateauUp, EvidenceTier: 3,
	},
	"ferritin→vo2_peak": {
		ThetaMu: 30.0, ThetaSigma: 10.0, ThetaUnit: "ng/mL",
		BetaBelowMu: 0.5, BetaBelowSigma: 0.3,
		BetaAboveMu: 0.1, BetaAboveSigma: 0.1,
		EffectUnit: "ml/min/kg", PerUnit: "per 10 ng/mL",
		Source:    "DellaValle & Haas, MSSE 2014",
		CurveType: CurvePlateauUp, EvidenceTier: 2,
	},
	"sleep_duration→next_day_hrv": {
		ThetaMu: 7.0, ThetaSigma: 0.8, ThetaUnit: "hours",
		BetaBelowMu: 5.0, BetaBelowSigma: 2.0,
		BetaAboveMu: 0.5, BetaAboveSigma: 0.2,
		EffectUnit: "ms", PerUnit: "per hr",
		Source:    "Zhang et al., Front Neurol 2025; Lastella et al. 2015",
		CurveType: CurvePlateauUp, EvidenceTier: 1,
	},
	"sleep_duration→testosterone": {
		ThetaMu: 7.0, ThetaSigma: 1.0, ThetaUnit: "hours",
		BetaBelowMu: 15.0, BetaBelowSigma: 6.0,
		BetaAboveMu: 3.0, BetaAboveSigma: 3.0,
		EffectUnit: "ng/dL", PerUnit: "per hr",
		Source:    "Leproult & Van Cauter, JAMA 2011",
		CurveType: CurvePlateauUp, EvidenceTier: 1,
	},
	"sleep_duration→cortisol": {
		ThetaMu: 7.0, ThetaSigma: 1.0, ThetaUnit: "hours",
		BetaBelowMu: -1.0, BetaBelowSigma: 0.5,
		BetaAboveMu: -0.2, BetaAboveSigma: 0.2,
		EffectUnit: "mcg/dL", PerUnit: "per hr",
		Source:    "Spiegel et al., Lancet 1999",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"sleep_debt→resting_hr": {
		ThetaMu: 5.0, ThetaSigma: 3.0, ThetaUnit: "hours deficit",
		BetaBelowMu: 0.2, BetaBelowSigma: 0.15,
		BetaAboveMu: 1.0, BetaAboveSigma: 0.4,
		EffectUnit: "bpm", PerUnit: "per hr deficit",
		Source:    "Spiegel et al., Lancet 1999",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"daily_trimp→next_day_hrv": {
		ThetaMu: 175.0, ThetaSigma: 35.0, ThetaUnit: "TRIMP",
		BetaBelowMu: -0.02, BetaBelowSigma: 0.01,
		BetaAboveMu: -0.06, BetaAboveSigma: 0.03,
		EffectUnit: "ms", PerUnit: "per 50 TRIMP",
		Source:    "Stanley et al., Sports Med 2013; Buchheit 2014",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"daily_trimp→resting_hr": {
		ThetaMu: 150.0, ThetaSigma: 50.0, ThetaUnit: "TRIMP",
		BetaBelowMu: 0.005, BetaBelowSigma: 0.003,
		BetaAboveMu: 0.015, BetaAboveSigma: 0.006,
		EffectUnit: "bpm", PerUnit: "per 50 TRIMP",
		Source:    "Stanley et al., Sports Med 2013; Buchheit 2014",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"daily_trimp→sleep_efficiency": {
		ThetaMu: 100.0, ThetaSigma: 30.0, ThetaUnit: "TRIMP",
		BetaBelowMu: 0.15, BetaBelowSigma: 0.1,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.15,
		EffectUnit: "%", PerUnit: "per 50 TRIMP",
		Source:    "Killer et al., Eur J Appl Physiol 2017; Myllymäki et al. 2011",
		CurveType: CurveVMax, EvidenceTier: 2,
	},
	"daily_steps→sleep_efficiency": {
		ThetaMu: 10000.0, ThetaSigma: 3000.0, ThetaUnit: "steps",
		BetaBelowMu: 0.25, BetaBelowSigma: 0.15,
		BetaAboveMu: -0.05, BetaAboveSigma: 0.15,
		EffectUnit: "%", PerUnit: "per 2000 steps",
		Source:    "Kredlow et al., J Behav Med 2015",
		CurveType: CurveVMax, EvidenceTier: 1,
	},
	"active_energy→deep_sleep": {
		ThetaMu: 500.0, ThetaSigma: 150.0, ThetaUnit: "kcal",
		BetaBelowMu: 1.5, BetaBelowSigma: 0.8,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.4,
		EffectUnit: "min", PerUnit: "per 100 kcal",
		Source:    "Kline, Am J Lifestyle Med 2014; Stutz et al. 2019",
		CurveType: CurveVMax, EvidenceTier: 1,
	},
	"workout_end_hour→sleep_efficiency": {
		ThetaMu: 20.5, ThetaSigma: 1.5, ThetaUnit: "hour",
		BetaBelowMu: 0.05, BetaBelowSigma: 0.15,
		BetaAboveMu: -2.0, BetaAboveSigma: 1.5,
		EffectUnit: "%", PerUnit: "per hr later",
		Source:    "Stutz et al., Sports Med 2019; Frimpong et al. 2021",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"bedtime_hour→sleep_quality": {
		ThetaMu: 22.5, ThetaSigma: 1.0, ThetaUnit: "hour",
		BetaBelowMu: 0.1, BetaBelowSigma: 0.2,
		BetaAboveMu: -2.5, BetaAboveSigma: 1.0,
		EffectUnit: "min quality", PerUnit: "per hr later",
		Source:    "Faust et al., npj Digital Medicine 2020",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"weekly_km→hrv_baseline": {
		ThetaMu: 50.0, ThetaSigma: 15.0, ThetaUnit: "km/week",
		BetaBelowMu: 0.25, BetaBelowSigma: 0.15,
		BetaAboveMu: -0.3, BetaAboveSigma: 0.25,
		EffectUnit: "ms", PerUnit: "per 10 km/wk",
		Source:    "Plews et al., Sports Med 2013; Buchheit 2014",
		CurveType: CurveVMax, EvidenceTier: 1,
	},
	"travel_load→sleep_efficiency": {
		ThetaMu: 0.5, ThetaSigma: 0.15, ThetaUnit: "jet lag score",
		BetaBelowMu: -1.5, BetaBelowSigma: 0.8,
		BetaAboveMu: -8.0, BetaAboveSigma: 3.0,
		EffectUnit: "%", PerUnit: "per 0.2 load",
		Source:    "Dunican et al. 2023; Fowler et al., MSSE 2017",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"travel_load→resting_hr": {
		ThetaMu: 0.45, ThetaSigma: 0.20, ThetaUnit: "jet lag score",
		BetaBelowMu: 0.3, BetaBelowSigma: 0.2,
		BetaAboveMu: 1.5, BetaAboveSigma: 0.8,
		EffectUnit: "bpm", PerUnit: "per 0.2 load",
		Source:    "Morris et al., PNAS 2016; Grimaldi et al. 2016",
		CurveType: CurvePlateauDown, EvidenceTier: 2,
	},
	"iron_saturation→hemoglobin": {
		ThetaMu: 20.0, ThetaSigma: 8.0, ThetaUnit: "%",
		BetaBelowMu: 0.05, BetaBelowSigma: 0.03,
		BetaAboveMu: 0.01, BetaAboveSigma: 0.01,
		EffectUnit: "g/dL", PerUnit: "per 5%",
		Source:    "Iron physiology: saturation gates marrow delivery",
		CurveType: CurvePlateauUp, EvidenceTier: 2,
	},
	"vitamin_d→testosterone": {
		ThetaMu: 30.0, ThetaSigma: 10.0, ThetaUnit: "ng/mL",
		BetaBelowMu: 5.0, BetaBelowSigma: 4.0,
		BetaAboveMu: 1.0, BetaAboveSigma: 2.0,
		EffectUnit: "ng/dL", PerUnit: "per 10 ng/mL",
		Source:    "Pilz et al., Horm Metab Res 2011",
		CurveType: CurvePlateauUp, EvidenceTier: 2,
	},
	"b12→homocysteine": {
		ThetaMu: 400.0, ThetaSigma: 150.0, ThetaUnit: "pg/mL",
		BetaBelowMu: -0.5, BetaBelowSigma: 0.4,
		BetaAboveMu: -0.1, BetaAboveSigma: 0.1,
		EffectUnit: "umol/L", PerUnit: "per 100 pg/mL",
		Source:    "Selhub, Annu Rev Nutr 1999",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"omega3_index→hscrp": {
		ThetaMu: 4.0, ThetaSigma: 1.5, ThetaUnit: "%",
		BetaBelowMu: -0.03, BetaBelowSigma: 0.02,
		BetaAboveMu: -0.01, BetaAboveSigma: 0.01,
		EffectUnit: "mg/L", PerUnit: "per 1%",
		Source:    "Calder, Br J Clin Pharmacol 2013",
		CurveType: CurvePlateauDown, EvidenceTier: 1,
	},
	"dietary_energy→body_mass": {
		ThetaMu: 2500.0, ThetaSigma: 500.0, ThetaUnit: "kcal/day",
		BetaBelowMu: -0.001, BetaBelowSigma: 0.001,
		BetaAboveMu: 0.002, BetaAboveSigma: 0.002,
		EffectUnit: "kg", PerUnit: "per 100 kcal/day",
		Source:    "Hall et al., Lancet 2011; very wide prior",
		CurveType: CurveLinear, EvidenceTier: 1,
	},
}

// Measurement variability per response family. Primary reference:
// Ricós et al., Scand J Clin Lab Invest 1999 and the Westgard biological
// variation database.
var builtinNoise = map[string]BiomarkerNoise{
	"testosterone": {
		CVAnalytical: 0.07, CVBiological: 0.14,
		TypicalLevel: 450, TypicalLevelUnit: "ng/dL",
		Source: "Ricós et al. 1999; Westgard BV database",
	},
	"cortisol": {
		CVAnalytical: 0.08, CVBiological: 0.21,
		TypicalLevel: 12.0, TypicalLevelUnit: "mcg/dL",
		Source: "Ricós et al. 1999; diurnal variation dominates",
	},
	"ferritin": {
		CVAnalytical: 0.05, CVBiological: 0.15,
		TypicalLevel: 80, TypicalLevelUnit: "ng/mL",
		Source: "Ricós et al. 1999; Westgard BV database",
	},
	"iron_total": {
		CVAnalytical: 0.05, CVBiological: 0.27,
		TypicalLevel: 100, TypicalLevelUnit: "mcg/dL",
		Source: "Ricós et al. 1999; high within-day variation",
	},
	"hdl": {
		CVAnalytical: 0.04, CVBiological: 0.07,
		TypicalLevel: 55, TypicalLevelUnit: "mg/dL",
		Source: "Ricós et al. 1999; Westgard BV database",
	},
	"ldl": {
		CVAnalytical: 0.04, CVBiological: 0.09,
		TypicalLevel: 110, TypicalLevelUnit: "mg/dL",
		Source: "Ricós et al. 1999; Westgard BV database",
	},
	"triglycerides": {
		CVAnalytical: 0.05, CVBiological: 0.21,
		TypicalLevel: 100, TypicalLevelUnit: "mg/dL",
		Source: "Ricós et al. 1999; fasting state dependent",
	},
	"hscrp": {
		CVAnalytical: 0.05, CVBiological: 0.42,
		TypicalLevel: 1.0, TypicalLevelUnit: "mg/L",
		Source: "Ricós et al. 1999; CRP has very high CVI",
	},
	"hemoglobin": {
		CVAnalytical: 0.015, CVBiological: 0.03,
		TypicalLevel: 15.0, TypicalLevelUnit: "g/dL",
		Source: "Ricós et al. 1999; Westgard BV database",
	},
	"wbc": {
		CVAnalytical: 0.03, CVBiological: 0.11,
		TypicalLevel: 6.5, TypicalLevelUnit: "K/uL",
		Source: "Ricós et al. 1999; Westgard BV database",
	},
	"glucose": {
		CVAnalytical: 0.03, CVBiological: 0.06,
		TypicalLevel: 90, TypicalLevelUnit: "mg/dL",
		Source: "Ricós et al. 1999; fasting glucose",
	},
	"insulin": {
		CVAnalytical: 0.06, CVBiological: 0.21,
		TypicalLevel: 8.0, TypicalLevelUnit: "uIU/mL",
		Source: "Ricós et al. 1999; pulsatile secretion",
	},
	"hrv_daily": {
		CVAnalytical: 0.03, CVBiological: 0.08,
		TypicalLevel: 50, TypicalLevelUnit: "ms RMSSD",
		Source: "Plews et al., Sports Med 2013; device CV ~3%",
	},
	"resting_hr": {
		CVAnalytical: 0.02, CVBiological: 0.05,
		TypicalLevel: 55, TypicalLevelUnit: "bpm",
		Source: "Buchheit, Front Physiol 2014; optical HR CV ~2%",
	},
	"sleep_efficiency": {
		CVAnalytical: 0.03, CVBiological: 0.06,
		TypicalLevel: 85, TypicalLevelUnit: "%",
		Source: "Roomkham et al., NPJ Digit Med 2018",
	},
	"deep_sleep": {
		CVAnalytical: 0.05, CVBiological: 0.15,
		TypicalLevel: 90, TypicalLevelUnit: "min",
		Source: "de Zambotti et al., Sleep 2019",
	},
	"vo2peak": {
		CVAnalytical: 0.03, CVBiological: 0.05,
		TypicalLevel: 50, TypicalLevelUnit: "ml/min/kg",
		Source: "Katch et al., Med Sci Sports 1982; test-retest CV",
	},
}

// Known response column names per family, used for reverse matching when a
// request's response variable carries processing suffixes.
var responseFamilies = map[string][]string{
	"iron_total":       {"iron_total_smoothed", "iron_total_raw"},
	"ferritin":         {"ferritin_smoothed", "ferritin_raw"},
	"hemoglobin":       {"hemoglobin_smoothed", "hemoglobin_raw"},
	"testosterone":     {"testosterone_smoothed", "testosterone_raw"},
	"cortisol":         {"cortisol_smoothed", "cortisol_raw"},
	"triglycerides":    {"triglycerides_smoothed", "triglycerides_raw"},
	"hdl":              {"hdl_smoothed", "hdl_raw"},
	"ldl":              {"ldl_smoothed", "ldl_raw"},
	"hscrp":            {"hscrp_smoothed", "hscrp_raw"},
	"glucose":          {"glucose_smoothed", "glucose_raw"},
	"insulin":          {"insulin_smoothed", "insulin_raw"},
	"wbc":              {"wbc_smoothed", "wbc_raw"},
	"vo2peak":          {"vo2_peak_smoothed", "vo2max_apple"},
	"hrv_daily":        {"hrv_rmssd_ms", "hrv_daily_ms"},
	"resting_hr":       {"resting_hr_bpm"},
	"sleep_efficiency": {"sleep_efficiency_pct"},
	"deep_sleep":       {"deep_sleep_min"},
}
