package runner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/serifhq/bcel-go/internal/errors"
)

// RunOutput is the persisted envelope for one batch of fits.
type RunOutput struct {
	RunID     string    `json:"runId"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Results   []Result  `json:"results"`
}

// NewRunOutput wraps results with run metadata.
func NewRunOutput(name string, results []Result) *RunOutput {
	return &RunOutput{
		RunID:     uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Results:   results,
	}
}

// Write persists the output as JSON under dir, returning the file path.
func (o *RunOutput) Write(dir string, pretty bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New(err).
			Category(errors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(o, "", "  ")
	} else {
		data, err = json.Marshal(o)
	}
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryFileIO).
			Build()
	}

	path := filepath.Join(dir, "assessments_"+o.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return path, nil
}
