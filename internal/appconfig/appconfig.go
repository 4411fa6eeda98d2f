// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for a single model request.
	defaultRequestTimeout = 120 * time.Second
	// gatedRequestTimeout is the default timeout when a confidence constraint
	// lengthens the completion.
	gatedRequestTimeout = 180 * time.Second
	// defaultNumCtx is the context window requested from the endpoint.
	defaultNumCtx = 4096
)

// Config represents the top-level application configuration.
type Config struct {
	HostURL             string   `json:"hostUrl"`
	Model               string   `json:"model"`
	Questions           int      `json:"questions,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	NumCtx              int      `json:"numCtx,omitempty"`
	TimeoutSeconds      int      `json:"timeout,omitempty"`
	ConfidenceThreshold *float64 `json:"confidenceThreshold,omitempty"`
	Workers             int      `json:"workers,omitempty"`
	DatasetDir          string   `json:"datasetDir,omitempty"`
	ResultsDir          string   `json:"resultsDir,omitempty"`
	HistoryDB           string   `json:"historyDb,omitempty"`
	LogFile             string   `json:"logFile,omitempty"`
	Debug               bool     `json:"debug"`
	TUI                 bool     `json:"tui"`
	ConfigPath          string   `json:"-"`
}

// RequestTimeout returns the timeout for one model request. Gated runs get
// a longer default because the confidence constraint lengthens completions.
func (c Config) RequestTimeout(gated bool) time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	if gated {
		return gatedRequestTimeout
	}
	return defaultRequestTimeout
}

// ContextWindow returns the configured num_ctx, applying the default if unset.
func (c Config) ContextWindow() int {
	if c.NumCtx <= 0 {
		return defaultNumCtx
	}
	return c.NumCtx
}

// WorkerCount returns the in-flight request cap, defaulting to sequential.
func (c Config) WorkerCount() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "medbench.log"
}

// DatasetPath resolves the dataset file for a suite.
func (c Config) DatasetPath(suiteName string) string {
	dir := c.DatasetDir
	if strings.TrimSpace(dir) == "" {
		dir = "datasets"
	}
	return filepath.Join(dir, suiteName+".json")
}

// ResultsDirPath returns the directory result logs are written to.
func (c Config) ResultsDirPath() string {
	if strings.TrimSpace(c.ResultsDir) != "" {
		return c.ResultsDir
	}
	return "results"
}

// HistoryDBPath returns the run-history database path.
func (c Config) HistoryDBPath() string {
	if strings.TrimSpace(c.HistoryDB) != "" {
		return c.HistoryDB
	}
	return "data/medbench.db"
}

// EffectiveTemperature returns the configured sampling temperature, or the
// suite's default when the config leaves it unset. A pointer distinguishes
// an explicit 0 from absence.
func (c Config) EffectiveTemperature(suiteDefault float64) float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return suiteDefault
}

// EffectiveThreshold returns the configured confidence threshold, or the
// suite's default when unset.
func (c Config) EffectiveThreshold(suiteDefault float64) float64 {
	if c.ConfidenceThreshold != nil {
		return *c.ConfidenceThreshold
	}
	return suiteDefault
}

// ErrNoConfig reports that no configuration file exists at the requested
// path nor at the legacy fallback. Callers running on flags alone treat it
// as non-fatal.
var ErrNoConfig = errors.New("no configuration file found")

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return validate(config)
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return validate(config)
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("%w (searched %q and %q)", ErrNoConfig, DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("%w at %q", ErrNoConfig, path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// validate rejects configs missing the fields every run needs or carrying
// an out-of-range threshold.
func validate(config Config) (Config, error) {
	if strings.TrimSpace(config.HostURL) == "" {
		return Config{}, errors.New("config must set hostUrl")
	}
	if strings.TrimSpace(config.Model) == "" {
		return Config{}, errors.New("config must set model")
	}
	if t := config.ConfidenceThreshold; t != nil && (*t < 0 || *t > 1) {
		return Config{}, fmt.Errorf("confidenceThreshold %v out of range [0,1]", *t)
	}
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
