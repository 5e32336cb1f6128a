// Package priors holds the literature-derived population priors for each
// dose→response relationship and the measurement-noise specifications used
// to build informative noise-scale priors.
//
// The catalog is an immutable lookup table constructed once at startup and
// injected into the fitting components.
package priors

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/serifhq/bcel-go/internal/errors"
)

// Curve type hints carried by each prior.
const (
	CurvePlateauUp   = "plateau_up"
	CurvePlateauDown = "plateau_down"
	CurveVMin        = "v_min"
	CurveVMax        = "v_max"
	CurveLinear      = "linear"
)

// Spec is the population prior for a single dose→response relationship.
// All sigma fields must be positive.
type Spec struct {
	ThetaMu    float64 `yaml:"theta_mu"`
	ThetaSigma float64 `yaml:"theta_sigma"`
	ThetaUnit  string  `yaml:"theta_unit"`

	BetaBelowMu    float64 `yaml:"beta_below_mu"`
	BetaBelowSigma float64 `yaml:"beta_below_sigma"`

	BetaAboveMu    float64 `yaml:"beta_above_mu"`
	BetaAboveSigma float64 `yaml:"beta_above_sigma"`

	EffectUnit string `yaml:"effect_unit"`
	PerUnit    string `yaml:"per_unit"`

	Source string `yaml:"source"`

	// CurveType is a hint only; the fitted posterior decides the shape.
	CurveType string `yaml:"curve_type"`

	// EvidenceTier ranks literature support: 1 meta-analysis/RCT,
	// 2 strong observational, 3 mechanistic/wide.
	EvidenceTier int `yaml:"evidence_tier"`
}

// Validate checks the spec for values the model cannot accept.
func (s *Spec) Validate() error {
	if s.ThetaSigma <= 0 || s.BetaBelowSigma <= 0 || s.BetaAboveSigma <= 0 {
		return errors.Newf("prior sigma fields must be positive (theta=%g, below=%g, above=%g)",
			s.ThetaSigma, s.BetaBelowSigma, s.BetaAboveSigma).
			Component("priors").
			Category(errors.CategoryValidation).
			Build()
	}
	switch s.CurveType {
	case CurvePlateauUp, CurvePlateauDown, CurveVMin, CurveVMax, CurveLinear:
	default:
		return errors.Newf("unknown curve type %q", s.CurveType).
			Component("priors").
			Category(errors.CategoryValidation).
			Build()
	}
	if s.EvidenceTier < 1 || s.EvidenceTier > 3 {
		return errors.Newf("evidence tier must be 1-3, got %d", s.EvidenceTier).
			Component("priors").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// BiomarkerNoise encodes known measurement variability for an outcome:
// assay imprecision plus within-individual day-to-day variation at steady
// state. Together they define the noise floor of repeated measurements.
type BiomarkerNoise struct {
	CVAnalytical     float64 `yaml:"cv_analytical"`
	CVBiological     float64 `yaml:"cv_biological"`
	TypicalLevel     float64 `yaml:"typical_level"`
	TypicalLevelUnit string  `yaml:"typical_level_unit"`
	Source           string  `yaml:"source"`
}

// TotalCV combines analytical and biological variation (root sum of squares).
func (b BiomarkerNoise) TotalCV() float64 {
	return math.Sqrt(b.CVAnalytical*b.CVAnalytical + b.CVBiological*b.CVBiological)
}

// Catalog is the immutable prior lookup table.
type Catalog struct {
	specs    map[string]Spec
	noise    map[string]BiomarkerNoise
	families map[string][]string // family ID -> known response column names
}

// NewCatalog builds a catalog from the built-in literature priors. If
// overlayPath is non-empty, a YAML file of additional or replacement priors
// is merged in; overlay entries are validated like built-ins.
func NewCatalog(overlayPath string) (*Catalog, error) {
	specs := make(map[string]Spec, len(builtinSpecs))
	for key, spec := range builtinSpecs {
		specs[key] = spec
	}

	if overlayPath != "" {
		overlay, err := loadOverlay(overlayPath)
		if err != nil {
			return nil, err
		}
		for key, spec := range overlay {
			specs[NormalizeKey(key)] = spec
		}
	}

	for key, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("prior %q: %w", key, err)
		}
	}

	noise := make(map[string]BiomarkerNoise, len(builtinNoise))
	for id, n := range builtinNoise {
		noise[id] = n
	}

	families := make(map[string][]string, len(responseFamilies))
	for id, cols := range responseFamilies {
		families[id] = append([]string(nil), cols...)
	}

	return &Catalog{specs: specs, noise: noise, families: families}, nil
}

func loadOverlay(path string) (map[string]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading prior overlay: %w", err)).
			Component("priors").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	overlay := make(map[string]Spec)
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, errors.New(fmt.Errorf("parsing prior overlay: %w", err)).
			Component("priors").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return overlay, nil
}

// NormalizeKey accepts both "a→b" and "a->b" relationship keys.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(key, "->", "→")
}

// Get returns the prior for a relationship key, or an error when the key is
// absent. A missing prior is fatal for that relationship; substituting a
// different prior is never allowed.
func (c *Catalog) Get(key string) (Spec, error) {
	spec, ok := c.specs[NormalizeKey(key)]
	if !ok {
		return Spec{}, errors.Newf("no prior found for relationship: %s", key).
			Component("priors").
			Category(errors.CategoryPriorLookup).
			Context("key", key).
			Build()
	}
	return spec, nil
}

// Has reports whether a prior exists for the relationship key.
func (c *Catalog) Has(key string) bool {
	_, ok := c.specs[NormalizeKey(key)]
	return ok
}

// Keys returns all relationship keys in the catalog.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.specs))
	for key := range c.specs {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of priors in the catalog.
func (c *Catalog) Len() int {
	return len(c.specs)
}

// Noise returns the measurement-noise spec for a response family.
func (c *Catalog) Noise(familyID string) (BiomarkerNoise, bool) {
	n, ok := c.noise[familyID]
	return n, ok
}
