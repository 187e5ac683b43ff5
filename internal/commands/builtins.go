// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/model"
	"github.com/jeranaias/opencoder/internal/session"
)

// historyPreviewWidth bounds each /history line, in terminal cells.
const historyPreviewWidth = 72

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// RegisterBuiltins registers every built-in command on r.
func RegisterBuiltins(r *Registry) {
	r.Register(&Command{
		Name:        "/exit",
		Aliases:     []string{"/quit"},
		Description: "Exit the application",
		Handler:     HandleExit,
	})

	r.Register(&Command{
		Name:        "/help",
		Description: "Show this help message",
		Handler:     helpHandler(r),
		Markdown:    true,
	})

	r.Register(&Command{
		Name:        "/set",
		Description: "Set a value",
		Usage:       setUsage,
		Args: []ArgDef{
			{Name: "key", Description: "Setting to change", Values: model.SettingKeys},
		},
		Handler: HandleSet,
	})

	r.Register(&Command{
		Name:        "/settings",
		Description: "Show the current model settings",
		Handler:     HandleSettings,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "Show the conversation so far",
		Handler:     HandleHistory,
	})

	r.Register(&Command{
		Name:        "/models",
		Description: "List the models offered by the server",
		Handler:     HandleModels,
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleExit asks the runner to end the process.
func HandleExit(_ context.Context, st *session.State, _ string) (string, error) {
	st.Logger.Info("exiting")
	return "", ErrExit
}

// helpHandler returns a /help handler listing the commands in r at call time.
func helpHandler(r *Registry) HandlerFunc {
	return func(_ context.Context, _ *session.State, _ string) (string, error) {
		return GenerateHelpText(r), nil
	}
}

// GenerateHelpText renders usage for every visible command as markdown.
func GenerateHelpText(r *Registry) string {
	var sb strings.Builder

	sb.WriteString("Usage: `<command> [args]`\n\n")
	sb.WriteString("Commands:\n\n")
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		fmt.Fprintf(&sb, "- `%s` %s\n", usage, cmd.Description)
	}
	sb.WriteString("\nAnything else is sent to the model as a chat message.\n")

	return sb.String()
}

// HandleSettings prints the current settings.
func HandleSettings(_ context.Context, st *session.State, _ string) (string, error) {
	return st.Settings.String(), nil
}

// HandleHistory prints one preview line per transcript message.
func HandleHistory(_ context.Context, st *session.State, _ string) (string, error) {
	msgs := st.Transcript.Messages()

	var sb strings.Builder
	for i, msg := range msgs {
		preview := strings.ReplaceAll(msg.Content, "\n", " ")
		preview = model.Message{Content: preview}.Preview(historyPreviewWidth)
		fmt.Fprintf(&sb, "%3d  %-9s %s\n", i, msg.Role.DisplayName(), preview)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// HandleModels lists the model catalog.
func HandleModels(ctx context.Context, st *session.State, _ string) (string, error) {
	list, err := st.Client.ListModels(ctx)
	if err != nil {
		return "", err
	}

	ids := list.IDs()
	if len(ids) == 0 {
		st.Logger.Warn("no models available")
		return noModelsMessage, nil
	}

	var sb strings.Builder
	for _, id := range ids {
		marker := " "
		if id == st.Settings.Name {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %s\n", marker, id)
	}
	st.Logger.Debug("models listed", zap.Int("count", len(ids)))
	return strings.TrimRight(sb.String(), "\n"), nil
}
