package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderMetadata(t *testing.T) {
	base := fmt.Errorf("prior not found for edge: %s", "run_km→ferritin")
	ee := New(base).
		Component("priors").
		Category(CategoryPriorLookup).
		Context("edge_key", "run_km→ferritin").
		Build()

	require.NotNil(t, ee)
	assert.Equal(t, "priors", ee.GetComponent())
	assert.Equal(t, string(CategoryPriorLookup), ee.GetCategory())
	assert.Equal(t, "run_km→ferritin", ee.GetContext()["edge_key"])
	assert.ErrorIs(t, ee, base)
}

func TestDefaultsWhenUnset(t *testing.T) {
	ee := Newf("hessian inversion failed").Build()
	assert.Equal(t, string(CategoryGeneric), ee.GetCategory())
	// Detection runs from a test binary, so component falls back to unknown.
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
}

func TestIsMatchesCategory(t *testing.T) {
	a := Newf("restart 3 diverged").Category(CategoryOptimization).Build()
	b := Newf("different message").Category(CategoryOptimization).Build()
	assert.ErrorIs(t, a, b)
}

func TestContextIsCopied(t *testing.T) {
	ee := Newf("x").Context("n_obs", 12).Build()
	ctx := ee.GetContext()
	ctx["n_obs"] = 99
	assert.Equal(t, 12, ee.GetContext()["n_obs"])
}
