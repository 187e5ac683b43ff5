// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/lm"
	"github.com/jeranaias/opencoder/internal/model"
)

// ErrSelectionCancelled is returned by a Prompter when the user backs out.
var ErrSelectionCancelled = errors.New("selection cancelled")

// Prompter asks the user for input outside the main prompt loop.
type Prompter interface {
	// Select lets the user pick one of options.
	Select(title string, options []string) (string, error)

	// Input reads one free-text answer.
	Input(label string) (string, error)
}

// State is everything a command handler or chat turn may read or change.
type State struct {
	Client     *lm.Client
	Settings   model.Settings
	Transcript *model.Transcript
	Prompter   Prompter
	Logger     *zap.Logger
}

// New creates a State with a transcript seeded from systemPrompt.
func New(client *lm.Client, settings model.Settings, systemPrompt string, prompter Prompter, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		Client:     client,
		Settings:   settings,
		Transcript: model.NewTranscript(systemPrompt),
		Prompter:   prompter,
		Logger:     logger,
	}
}
