// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// SAMPLING SETTINGS
// =============================================================================

// Settings holds the model name and sampling parameters sent with every chat
// request. Values are passed through to the API verbatim; range checking is
// left to the server.
type Settings struct {
	Name             string  `json:"model" toml:"model" yaml:"model"`
	TopP             float64 `json:"top_p" toml:"top_p" yaml:"top_p"`
	TopK             uint64  `json:"top_k" toml:"top_k" yaml:"top_k"`
	Temperature      float64 `json:"temperature" toml:"temperature" yaml:"temperature"`
	PresencePenalty  float64 `json:"presence_penalty" toml:"presence_penalty" yaml:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty" toml:"frequency_penalty" yaml:"frequency_penalty"`
	RepeatPenalty    float64 `json:"repeat_penalty" toml:"repeat_penalty" yaml:"repeat_penalty"`
}

// Setting keys accepted by /set.
const (
	KeyModel            = "model"
	KeyTopP             = "top_p"
	KeyTopK             = "top_k"
	KeyTemperature      = "temperature"
	KeyPresencePenalty  = "presence_penalty"
	KeyFrequencyPenalty = "frequency_penalty"
	KeyRepeatPenalty    = "repeat_penalty"
)

// SettingKeys lists every key in display order.
var SettingKeys = []string{
	KeyModel,
	KeyTopP,
	KeyTopK,
	KeyTemperature,
	KeyPresencePenalty,
	KeyFrequencyPenalty,
	KeyRepeatPenalty,
}

// FloatField returns a pointer to the float parameter named by key, or nil
// if key does not name a float parameter.
func (s *Settings) FloatField(key string) *float64 {
	switch key {
	case KeyTopP:
		return &s.TopP
	case KeyTemperature:
		return &s.Temperature
	case KeyPresencePenalty:
		return &s.PresencePenalty
	case KeyFrequencyPenalty:
		return &s.FrequencyPenalty
	case KeyRepeatPenalty:
		return &s.RepeatPenalty
	}
	return nil
}

// Value returns the current value of key formatted for display.
func (s *Settings) Value(key string) (string, bool) {
	switch key {
	case KeyModel:
		return s.Name, true
	case KeyTopK:
		return fmt.Sprintf("%d", s.TopK), true
	}
	if f := s.FloatField(key); f != nil {
		return fmt.Sprintf("%g", *f), true
	}
	return "", false
}

// String renders all settings, one per line.
func (s Settings) String() string {
	var b strings.Builder
	for _, key := range SettingKeys {
		v, _ := s.Value(key)
		fmt.Fprintf(&b, "%-18s %s\n", key, v)
	}
	return strings.TrimRight(b.String(), "\n")
}
