// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/lm"
	"github.com/jeranaias/opencoder/internal/ui"
)

// newAskCommand builds "opencoder ask PROMPT...": one non-streamed
// completion, printed with the model name and rendered as markdown.
func newAskCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask PROMPT...",
		Short: "Ask a single question without starting the REPL",
		Example: `  opencoder ask "What does defer do in Go?"
  opencoder --model qwen3 ask explain this regex: ^a+b$`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, client, err := opts.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			prompt := strings.Join(args, " ")
			logger.Debug("ask", zap.Int("prompt_len", len(prompt)))

			body, err := client.ChatCompletion(cmd.Context(), cfg.Settings(), prompt)
			if err != nil {
				return err
			}
			reply, err := lm.FormatModelResponse(body)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			ui.NewOutput(stdout, interactiveOutput(stdout), GetTerminalWidth()).Reply(reply.Model, reply.Message)
			return nil
		},
	}
}
