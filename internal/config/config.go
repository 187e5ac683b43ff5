// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/opencoder/internal/model"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete opencoder configuration.
type Config struct {
	// Endpoint settings
	APIURL      string `toml:"api_url" json:"api_url" yaml:"api_url"`
	APIKey      string `toml:"api_key" json:"api_key" yaml:"api_key"`
	Model       string `toml:"model" json:"model" yaml:"model"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`

	// SystemPrompt seeds every transcript
	SystemPrompt string `toml:"system_prompt" json:"system_prompt" yaml:"system_prompt"`

	// Logging
	LogLevel string `toml:"log_level" json:"log_level" yaml:"log_level"`
	LogFile  string `toml:"log_file" json:"log_file" yaml:"log_file"`

	// Sampling parameters sent with every request
	Sampling SamplingConfig `toml:"sampling" json:"sampling" yaml:"sampling"`
}

// SamplingConfig holds the default sampling parameters.
type SamplingConfig struct {
	TopP             float64 `toml:"top_p" json:"top_p" yaml:"top_p"`
	TopK             uint64  `toml:"top_k" json:"top_k" yaml:"top_k"`
	Temperature      float64 `toml:"temperature" json:"temperature" yaml:"temperature"`
	PresencePenalty  float64 `toml:"presence_penalty" json:"presence_penalty" yaml:"presence_penalty"`
	FrequencyPenalty float64 `toml:"frequency_penalty" json:"frequency_penalty" yaml:"frequency_penalty"`
	RepeatPenalty    float64 `toml:"repeat_penalty" json:"repeat_penalty" yaml:"repeat_penalty"`
}

// DefaultSystemPrompt is used when none is configured.
const DefaultSystemPrompt = "You are a helpful coding assistant. Answer concisely and use Markdown for code."

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		APIURL:       "http://127.0.0.1:1234/v1",
		APIKey:       "suwako",
		Model:        "Qwen/Qwen3-4B-Thinking-2507",
		TimeoutSecs:  60,
		SystemPrompt: DefaultSystemPrompt,
		LogLevel:     "info",
		LogFile:      "opencoder.log",
		Sampling: SamplingConfig{
			TopP:             0.95,
			TopK:             20,
			Temperature:      0.6,
			PresencePenalty:  0,
			FrequencyPenalty: 0,
			RepeatPenalty:    1.0,
		},
	}
}

// Settings returns the initial session settings.
func (c *Config) Settings() model.Settings {
	return model.Settings{
		Name:             c.Model,
		TopP:             c.Sampling.TopP,
		TopK:             c.Sampling.TopK,
		Temperature:      c.Sampling.Temperature,
		PresencePenalty:  c.Sampling.PresencePenalty,
		FrequencyPenalty: c.Sampling.FrequencyPenalty,
		RepeatPenalty:    c.Sampling.RepeatPenalty,
	}
}

// Timeout returns the request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the opencoder configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opencoder"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// InputHistoryPath returns the path of the line-editor history file.
func InputHistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "input_history"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Options control where Load looks.
type Options struct {
	// Path is an explicit config file. It must exist when set. When empty
	// the default path is used if present.
	Path string

	// DotEnvPath is the .env file to read. Empty means ".env" in the
	// working directory. A missing file is not an error.
	DotEnvPath string

	// Getenv looks up environment variables. Defaults to os.LookupEnv.
	Getenv func(string) (string, bool)
}

// Load builds the configuration: defaults, then the config file, then
// .env, then the process environment, then validation.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path := opts.Path
	if path == "" {
		defaultPath, err := ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				path = defaultPath
			}
		}
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	lookup, err := envLookup(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(lookup); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes path into cfg. The format follows the extension: .json,
// .yaml/.yml, anything else is TOML. Fields absent from the file keep their
// current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

// envLookup layers the process environment over the .env file.
func envLookup(opts Options) (func(string) (string, bool), error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.LookupEnv
	}

	dotEnvPath := opts.DotEnvPath
	if dotEnvPath == "" {
		dotEnvPath = ".env"
	}
	dotEnv, err := godotenv.Read(dotEnvPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", dotEnvPath, err)
		}
		dotEnv = map[string]string{}
	}

	return func(key string) (string, bool) {
		if v, ok := getenv(key); ok {
			return v, true
		}
		v, ok := dotEnv[key]
		return v, ok
	}, nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - API_URL, API_KEY, MODEL, SYSTEM_PROMPT
//   - LOG_LEVEL, LOG_FILE
//   - RUST_LOG, read leniently and only when LOG_LEVEL is unset
//   - TIMEOUT_SECS
//   - TOP_P, TOP_K, TEMPERATURE, PRESENCE_PENALTY, FREQUENCY_PENALTY,
//     REPEAT_PENALTY
//
// Unparsable numbers are collected into ValidateErrors.
func (c *Config) ApplyEnvOverrides(lookup func(string) (string, bool)) error {
	var errs ValidateErrors

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, ValidationError{Field: key, Message: fmt.Sprintf("invalid number '%s'", v)})
				return
			}
			*dst = f
		}
	}

	str("API_URL", &c.APIURL)
	str("API_KEY", &c.APIKey)
	str("MODEL", &c.Model)
	str("SYSTEM_PROMPT", &c.SystemPrompt)
	if v, ok := lookup("RUST_LOG"); ok {
		if level, ok := rustLogLevel(v); ok {
			c.LogLevel = level
		}
	}
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)

	if v, ok := lookup("TIMEOUT_SECS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "TIMEOUT_SECS", Message: fmt.Sprintf("invalid integer '%s'", v)})
		} else {
			c.TimeoutSecs = n
		}
	}
	if v, ok := lookup("TOP_K"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, ValidationError{Field: "TOP_K", Message: fmt.Sprintf("invalid unsigned integer '%s'", v)})
		} else {
			c.Sampling.TopK = n
		}
	}

	float("TOP_P", &c.Sampling.TopP)
	float("TEMPERATURE", &c.Sampling.Temperature)
	float("PRESENCE_PENALTY", &c.Sampling.PresencePenalty)
	float("FREQUENCY_PENALTY", &c.Sampling.FrequencyPenalty)
	float("REPEAT_PENALTY", &c.Sampling.RepeatPenalty)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// rustLogLevel reads a level from a RUST_LOG style filter such as
// "warn,hyper=off". The first directive without a target wins; trace maps
// to debug. It reports false when no usable level is present, so a filter
// meant for another program never blocks startup.
func rustLogLevel(filter string) (string, bool) {
	for _, directive := range strings.Split(filter, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		if directive == "" || strings.Contains(directive, "=") {
			continue
		}
		if directive == "trace" {
			return "debug", true
		}
		if validLogLevels[directive] {
			return directive, true
		}
		return "", false
	}
	return "", false
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// validLogLevels are the levels the logger accepts.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate validates the configuration and returns any errors. Sampling
// parameters are not range-checked; the server decides what it accepts.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.APIURL),
		})
	}

	if c.Model == "" {
		errs = append(errs, ValidationError{Field: "model", Message: "must not be empty"})
	}

	if c.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout_secs",
			Message: fmt.Sprintf("must be positive, got %d", c.TimeoutSecs),
		})
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.LogLevel),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// String returns the config as JSON with the API key redacted.
func (c *Config) String() string {
	safe := *c
	if safe.APIKey != "" {
		safe.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
