// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/commands"
	"github.com/jeranaias/opencoder/internal/model"
	"github.com/jeranaias/opencoder/internal/session"
	"github.com/jeranaias/opencoder/internal/ui"
)

// Prompt is shown before every input line.
const Prompt = "> "

// LineReader supplies input lines. ReadLine returns io.EOF when the user
// is done (Ctrl+D, Ctrl+C at the prompt, end of piped input).
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// =============================================================================
// SESSION RUNNER
// =============================================================================

// Runner owns the session state and drives the read, dispatch and render
// loop.
type Runner struct {
	input     LineReader
	out       *ui.Output
	registry  *commands.Registry
	state     *session.State
	indicator *ui.Indicator
	logger    *zap.Logger
}

// NewRunner creates a runner. A nil indicator disables the busy animation.
func NewRunner(input LineReader, out *ui.Output, registry *commands.Registry, state *session.State, indicator *ui.Indicator) *Runner {
	if indicator == nil {
		indicator = ui.NewIndicator(io.Discard, "", false)
	}
	logger := state.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		input:     input,
		out:       out,
		registry:  registry,
		state:     state,
		indicator: indicator,
		logger:    logger.Named("runner"),
	}
}

// State returns the session state the runner owns.
func (r *Runner) State() *session.State {
	return r.state
}

// Run loops until the input ends or a command returns commands.ErrExit.
// Any other error is printed and the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	for {
		line, err := r.input.ReadLine(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Info("input closed")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		r.out.Echo(line)
		if err := r.HandleLine(ctx, line); err != nil {
			if errors.Is(err, commands.ErrExit) {
				r.logger.Info("exit requested")
				return nil
			}
			r.out.Error(err)
		}
	}
}

// HandleLine dispatches one non-blank line: a command when it starts with
// the command prefix, otherwise a chat turn.
func (r *Runner) HandleLine(ctx context.Context, line string) error {
	if name, args, ok := commands.Parse(line); ok {
		return r.runCommand(ctx, name, args)
	}
	return r.ChatTurn(ctx, line)
}

func (r *Runner) runCommand(ctx context.Context, name, args string) error {
	out, err := r.registry.Execute(ctx, name, args, r.state)
	if err != nil {
		return err
	}

	if cmd := r.registry.Get(name); cmd != nil && cmd.Markdown {
		r.out.Markdown(out)
		return nil
	}
	r.out.CommandResponse(out)
	return nil
}

// =============================================================================
// CHAT TURN
// =============================================================================

// ChatTurn sends text with the whole transcript and streams the reply.
//
// The user message is appended first and is never removed. Deltas are
// printed in arrival order and accumulated; a non-empty accumulation is
// committed as one assistant message when the stream ends, whether through
// a stop event, [DONE] or EOF. On error nothing is committed and the error
// is returned.
func (r *Runner) ChatTurn(ctx context.Context, text string) error {
	st := r.state
	st.Transcript.Append(model.NewUserMessage(text))
	r.logger.Debug("chat turn", zap.String("state", "sending"), zap.Int("messages", st.Transcript.Len()))

	stream, err := st.Client.StreamChatCompletion(ctx, st.Settings, st.Transcript.Messages())
	if err != nil {
		r.logger.Debug("chat turn", zap.String("state", "failed"), zap.Error(err))
		return err
	}
	defer stream.Close()

	r.indicator.Start()
	defer r.indicator.Stop()

	var pending strings.Builder
	printed := false
	for {
		ev, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.indicator.Stop()
			if printed {
				r.out.EndStream()
			}
			r.logger.Debug("chat turn", zap.String("state", "failed"), zap.Int("received", pending.Len()), zap.Error(err))
			return err
		}

		if ev.Delta != "" {
			if !printed {
				r.indicator.Stop()
				r.logger.Debug("chat turn", zap.String("state", "streaming"))
				printed = true
			}
			r.out.Delta(ev.Delta)
			pending.WriteString(ev.Delta)
		}
		if ev.Final {
			break
		}
	}

	r.indicator.Stop()
	if printed {
		r.out.EndStream()
	}

	r.logger.Debug("chat turn", zap.String("state", "committing"), zap.Int("length", pending.Len()))
	if pending.Len() > 0 {
		st.Transcript.Append(model.NewAssistantMessage(pending.String()))
	}
	return nil
}
