// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opencoder/internal/model"
)

// envMap returns a lookup backed by m, isolating tests from the real
// environment.
func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// isolated returns options that touch neither the user's home nor the
// working directory.
func isolated(t *testing.T, env map[string]string) Options {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return Options{
		DotEnvPath: filepath.Join(t.TempDir(), ".env"),
		Getenv:     envMap(env),
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://127.0.0.1:1234/v1", cfg.APIURL)
	assert.Equal(t, "Qwen/Qwen3-4B-Thinking-2507", cfg.Model)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, model.Settings{
		Name:          "Qwen/Qwen3-4B-Thinking-2507",
		TopP:          0.95,
		TopK:          20,
		Temperature:   0.6,
		RepeatPenalty: 1.0,
	}, cfg.Settings())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(isolated(t, nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"config.toml", "model = \"file-model\"\ntimeout_secs = 5\n\n[sampling]\ntemperature = 0.2\n"},
		{"config.yaml", "model: file-model\ntimeout_secs: 5\nsampling:\n  temperature: 0.2\n"},
		{"config.json", `{"model":"file-model","timeout_secs":5,"sampling":{"temperature":0.2}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := isolated(t, nil)
			opts.Path = writeFile(t, t.TempDir(), tc.name, tc.content)

			cfg, err := Load(opts)
			require.NoError(t, err)
			assert.Equal(t, "file-model", cfg.Model)
			assert.Equal(t, 5, cfg.TimeoutSecs)
			assert.Equal(t, 0.2, cfg.Sampling.Temperature)
			assert.Equal(t, 0.95, cfg.Sampling.TopP, "unset fields keep defaults")
		})
	}
}

func TestLoad_DefaultPathUsedWhenPresent(t *testing.T) {
	opts := isolated(t, nil)
	dir, err := ConfigDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0700))
	writeFile(t, dir, "config.toml", "model = \"home-model\"\n")

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "home-model", cfg.Model)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	opts := isolated(t, nil)
	opts.Path = filepath.Join(t.TempDir(), "missing.toml")

	_, err := Load(opts)
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	opts := isolated(t, map[string]string{"MODEL": "env-model"})
	opts.Path = writeFile(t, t.TempDir(), "config.toml", "model = \"file-model\"\napi_key = \"file-key\"\n")
	opts.DotEnvPath = writeFile(t, t.TempDir(), ".env", "MODEL=dotenv-model\nAPI_KEY=dotenv-key\nTOP_K=7\n")

	cfg, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.Model, "environment beats .env")
	assert.Equal(t, "dotenv-key", cfg.APIKey, ".env beats the config file")
	assert.Equal(t, uint64(7), cfg.Sampling.TopK)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnvOverrides(envMap(map[string]string{
		"API_URL":           "https://api.example.com/v1",
		"RUST_LOG":          "debug",
		"TIMEOUT_SECS":      "15",
		"TOP_P":             "0.5",
		"TEMPERATURE":       "1.5",
		"PRESENCE_PENALTY":  "0.1",
		"FREQUENCY_PENALTY": "0.2",
		"REPEAT_PENALTY":    "1.3",
		"SYSTEM_PROMPT":     "be terse",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel, "RUST_LOG is honoured")
	assert.Equal(t, 15, cfg.TimeoutSecs)
	assert.Equal(t, SamplingConfig{
		TopP:             0.5,
		TopK:             20,
		Temperature:      1.5,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.2,
		RepeatPenalty:    1.3,
	}, cfg.Sampling)
	assert.Equal(t, "be terse", cfg.SystemPrompt)
}

func TestApplyEnvOverrides_LogLevelBeatsRustLog(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnvOverrides(envMap(map[string]string{"RUST_LOG": "debug", "LOG_LEVEL": "warn"})))
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnvOverrides_RustLogFilterDirectives(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"debug", "debug"},
		{"trace", "debug"},
		{"WARN", "warn"},
		{"warn,hyper=off", "warn"},
		{"hyper=off, error", "error"},
		{"opencoder=debug", "info"},
		{"WARNING", "info"},
		{"off", "info"},
		{"", "info"},
	}

	for _, tc := range tests {
		t.Run(tc.filter, func(t *testing.T) {
			cfg, err := Load(isolated(t, map[string]string{"RUST_LOG": tc.filter}))
			require.NoError(t, err, "a RUST_LOG filter never blocks startup")
			assert.Equal(t, tc.want, cfg.LogLevel)
		})
	}
}

func TestLoad_LogLevelStaysStrict(t *testing.T) {
	_, err := Load(isolated(t, map[string]string{"RUST_LOG": "debug", "LOG_LEVEL": "trace"}))

	var errs ValidateErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "log_level", errs[0].Field)
}

func TestApplyEnvOverrides_BadNumbers(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnvOverrides(envMap(map[string]string{
		"TIMEOUT_SECS": "soon",
		"TOP_K":        "-3",
		"TEMPERATURE":  "hot",
	}))

	var errs ValidateErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 3)
	assert.Equal(t, 60, cfg.TimeoutSecs)
	assert.Equal(t, 0.6, cfg.Sampling.Temperature)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.APIURL = "localhost:1234" }, "api_url"},
		{"ftp url", func(c *Config) { c.APIURL = "ftp://host/v1" }, "api_url"},
		{"empty model", func(c *Config) { c.Model = "" }, "model"},
		{"zero timeout", func(c *Config) { c.TimeoutSecs = 0 }, "timeout_secs"},
		{"unknown level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			var errs ValidateErrors
			require.ErrorAs(t, cfg.Validate(), &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.field, errs[0].Field)
		})
	}
}

func TestValidate_SamplingNotRangeChecked(t *testing.T) {
	cfg := Default()
	cfg.Sampling.Temperature = 42
	cfg.Sampling.TopP = -1
	assert.NoError(t, cfg.Validate())
}

func TestString_RedactsKey(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "sk-very-secret"

	s := cfg.String()
	assert.NotContains(t, s, "sk-very-secret")
	assert.Contains(t, s, "[REDACTED]")
	assert.Equal(t, "sk-very-secret", cfg.APIKey)
}
