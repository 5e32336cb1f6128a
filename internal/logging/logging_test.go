package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForServiceWithoutInit(t *testing.T) {
	saved := structuredLogger
	structuredLogger = nil
	defer func() { structuredLogger = saved }()

	log := ForService("runner")
	require.NotNil(t, log, "ForService must never return nil")
	assert.NotPanics(t, func() {
		log.Info("fit complete", "id", "abc")
		log.Error("fit failed", "error", "boom")
	})
}

func TestForServiceCarriesServiceAttribute(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	ForService("changepoint").Info("grid fallback")

	var record map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &record))
	assert.Equal(t, "changepoint", record["service"])
	assert.Equal(t, "grid fallback", record["msg"])
}
