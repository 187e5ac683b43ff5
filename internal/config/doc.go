// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for opencoder.
//
// Supports TOML, YAML and JSON configuration files, a .env file, environment
// variable overrides and validation.
//
// # Key Types
//
//   - Config: Endpoint, logging and system prompt settings
//   - SamplingConfig: Default sampling parameters
//   - Options: Where Load looks for files and variables
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (API_URL, MODEL, TEMPERATURE, ...)
//   - .env in the working directory
//   - --config FILE, or ~/.opencoder/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load(config.Options{Path: flagPath})
//	if err != nil {
//	    return err
//	}
//	client := lm.NewClient(cfg.APIURL, cfg.APIKey).WithTimeout(cfg.Timeout())
package config
