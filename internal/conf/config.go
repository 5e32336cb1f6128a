// Package conf loads and validates application settings from config files,
// environment variables, and defaults using viper.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/serifhq/bcel-go/internal/errors"
)

// Settings is the root configuration structure.
type Settings struct {
	Debug bool // true to enable debug logging

	Main struct {
		Name string    // instance name, included in output metadata
		Log  LogConfig // file log settings
	}

	Fit     FitSettings
	Sampler SamplerSettings
	Priors  PriorsSettings
	Output  OutputSettings
}

// LogConfig holds file logging settings.
type LogConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// FitSettings controls the estimation engine.
type FitSettings struct {
	Method      string  // "grid", "laplace" or "mcmc"
	Restarts    int     // multi-start optimizer restarts
	MaxIter     int     // optimizer iteration cap per restart
	GridSize    int     // theta grid resolution
	GridSamples int     // posterior draws from the grid marginal
	Worlds      int     // joint posterior world draws per relationship
	Seed        uint64  // base RNG seed, per-request seeds derive from it
	MaxWorkers  int     // concurrent relationship fits, 0 means NumCPU
	Tempering   float64 // default likelihood weight when a request omits one
}

// SamplerSettings controls the optional full-sampling backend.
type SamplerSettings struct {
	Draws           int // posterior draws per chain
	Tune            int // warmup iterations per chain
	Chains          int
	MaxObservations int // subsample threshold
}

// PriorsSettings controls catalog construction.
type PriorsSettings struct {
	OverlayPath string // optional YAML file merged over the built-in catalog
}

// OutputSettings controls result persistence.
type OutputSettings struct {
	Directory string
	Pretty    bool // indent output JSON
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads configuration from disk and returns validated settings.
func Load() (*Settings, error) {
	setDefaultConfig()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Defaults are complete, a missing config file is fine.
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"."}, nil
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "bcel-go"),
	}, nil
}

// Setting returns the loaded settings, loading them on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
