package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/exp/rand"

	"github.com/serifhq/bcel-go/internal/changepoint"
	"github.com/serifhq/bcel-go/internal/conf"
	"github.com/serifhq/bcel-go/internal/observability"
	"github.com/serifhq/bcel-go/internal/priors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Fit.Method = "grid"
	s.Fit.GridSize = 80
	s.Fit.GridSamples = 200
	s.Fit.Worlds = 32
	s.Fit.Seed = 42
	s.Fit.MaxWorkers = 2
	s.Fit.Tempering = 1.0
	return s
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	catalog, err := priors.NewCatalog("")
	require.NoError(t, err)
	r, err := New(catalog, testSettings(), nil)
	require.NoError(t, err)
	return r
}

// hdlRequest builds synthetic minutes-per-week to HDL data rising toward a
// plateau near the catalog prior's threshold.
func hdlRequest(seed uint64) Request {
	rng := rand.New(rand.NewSource(seed))
	n := 60
	req := Request{
		Relationship: "weekly_zone2_min→hdl",
		Dose:         make([]float64, n),
		Response:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := 60 + 180*rng.Float64()
		req.Dose[i] = x
		req.Response[i] = changepoint.Predict(x, 150, 55, 0.9, 0.1) + 2*rng.NormFloat64()
	}
	return req
}

func TestRunFitsBatch(t *testing.T) {
	r := testRunner(t)
	requests := []Request{
		hdlRequest(1),
		{Relationship: "no_such→edge", Dose: []float64{1, 2, 3}, Response: []float64{1, 2, 3}},
		hdlRequest(2),
	}

	results := r.Run(context.Background(), requests)
	require.Len(t, results, 3)

	assert.Equal(t, "weekly_zone2_min→hdl", results[0].Relationship)
	require.NotNil(t, results[0].Assessment, "result order matches request order")
	assert.Equal(t, changepoint.MethodGrid, results[0].Assessment.Method)
	assert.InDelta(t, 150, results[0].Assessment.Theta.Value, 40)
	assert.Equal(t, 32, results[0].Assessment.Worlds.Len())
	require.NotNil(t, results[0].Assessment.Certainty)
	assert.Equal(t, 1, results[0].Assessment.Certainty.EvidenceTier)

	assert.Nil(t, results[1].Assessment)
	assert.NotEmpty(t, results[1].Error, "missing prior is fatal for that request only")

	require.NotNil(t, results[2].Assessment)
	assert.NotEqual(t, results[0].ID, results[2].ID)
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	r := testRunner(t)
	requests := []Request{hdlRequest(1)}

	a := r.Run(context.Background(), requests)
	b := r.Run(context.Background(), requests)

	require.NotNil(t, a[0].Assessment)
	require.NotNil(t, b[0].Assessment)
	assert.Equal(t, a[0].Assessment.Theta, b[0].Assessment.Theta)
	assert.Equal(t, a[0].Assessment.Worlds, b[0].Assessment.Worlds)
}

func TestRunRecordsMetrics(t *testing.T) {
	catalog, err := priors.NewCatalog("")
	require.NoError(t, err)
	metrics, err := observability.NewMetrics()
	require.NoError(t, err)
	r, err := New(catalog, testSettings(), metrics)
	require.NoError(t, err)

	r.Run(context.Background(), []Request{hdlRequest(1)})

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "bcel_fits_completed_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRequestValidate(t *testing.T) {
	bad := Request{Dose: []float64{1}, Response: []float64{1}}
	assert.Error(t, bad.Validate(), "needs a relationship or prior")

	mismatched := Request{Relationship: "a→b", Dose: []float64{1, 2}, Response: []float64{1}}
	assert.Error(t, mismatched.Validate())

	overweight := Request{Relationship: "a→b", Weight: 1.5}
	assert.Error(t, overweight.Validate())

	ok := Request{Relationship: "a→b", Dose: []float64{1, 2}, Response: []float64{1, 2}}
	assert.NoError(t, ok.Validate())
}

func TestSourceTargetAcceptsASCIIArrow(t *testing.T) {
	req := Request{Relationship: "sleep_duration->next_day_hrv"}
	source, target := req.SourceTarget()
	assert.Equal(t, "sleep_duration", source)
	assert.Equal(t, "next_day_hrv", target)
}

func TestObservationsCopiesArrays(t *testing.T) {
	req := Request{
		Relationship: "a→b",
		Dose:         []float64{1, 2, 3},
		Response:     []float64{4, 5, 6},
		Covariates:   [][]float64{{7, 8, 9}},
	}
	obs := req.observations()
	obs.X[0] = -1
	obs.Z[0][0] = -1
	assert.Equal(t, 1.0, req.Dose[0])
	assert.Equal(t, 7.0, req.Covariates[0][0])
}

func TestLoadRequestsRoundTrip(t *testing.T) {
	reqs := []Request{hdlRequest(1)}
	data, err := json.Marshal(reqs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "requests.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadRequests(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, reqs[0].Relationship, loaded[0].Relationship)
	assert.Equal(t, reqs[0].Dose, loaded[0].Dose)

	_, err = LoadRequests(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunOutputWrite(t *testing.T) {
	r := testRunner(t)
	results := r.Run(context.Background(), []Request{hdlRequest(1)})

	out := NewRunOutput("test-run", results)
	dir := t.TempDir()
	path, err := out.Write(dir, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded RunOutput
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, out.RunID, loaded.RunID)
	assert.Equal(t, "test-run", loaded.Name)
	require.Len(t, loaded.Results, 1)
	assert.NotNil(t, loaded.Results[0].Assessment)
}
