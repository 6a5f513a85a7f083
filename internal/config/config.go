// Package config holds the run configuration for pool-detect: defaults,
// environment overrides and the values the CLI flags fill in.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pool-detect/internal/detection"
	"github.com/ironsheep/pool-detect/internal/render"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "POOL_DETECT_LOG_LEVEL"
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvLLMModel    = "POOL_DETECT_LLM_MODEL"
	EnvLLMEndpoint = "POOL_DETECT_LLM_ENDPOINT"
)

const (
	DefaultMethod    = detection.MethodOpenCV
	DefaultOutputDir = "./data/output"
	DefaultLogLevel  = "info"
)

// Config is everything one run needs.
type Config struct {
	Method    string
	OutputDir string
	LogLevel  string
	// Debug forces debug logging regardless of LogLevel.
	Debug bool

	Params  detection.Params
	LLM     detection.LLMOptions
	Overlay render.Style
}

// Default returns the configuration used when no flags or environment
// variables are set.
func Default() Config {
	return Config{
		Method:    DefaultMethod,
		OutputDir: DefaultOutputDir,
		LogLevel:  DefaultLogLevel,
		Params:    detection.DefaultParams(),
		LLM:       detection.DefaultLLMOptions(),
		Overlay:   render.DefaultStyle(),
	}
}

// ApplyEnv overrides fields from the environment. lookup has the signature
// of os.LookupEnv; empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvLogLevel); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := get(EnvAPIKey); ok {
		c.LLM.APIKey = v
	}
	if v, ok := get(EnvLLMModel); ok {
		c.LLM.Model = v
	}
	if v, ok := get(EnvLLMEndpoint); ok {
		c.LLM.Endpoint = v
	}
}

// Level resolves the logrus level for this configuration.
func (c Config) Level() (logrus.Level, error) {
	if c.Debug {
		return logrus.DebugLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, errors.Wrapf(err, "invalid %s", EnvLogLevel)
	}
	return lvl, nil
}

// DetectorOptions builds the registry options for the configured method.
func (c Config) DetectorOptions(log logrus.FieldLogger) detection.Options {
	return detection.Options{
		Params: c.Params,
		LLM:    c.LLM,
		Logger: log,
	}
}
