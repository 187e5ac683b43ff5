// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/commands"
	"github.com/jeranaias/opencoder/internal/config"
	"github.com/jeranaias/opencoder/internal/lm"
	"github.com/jeranaias/opencoder/internal/logging"
	"github.com/jeranaias/opencoder/internal/session"
	"github.com/jeranaias/opencoder/internal/ui"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// completionTimeout bounds the model lookup behind "/set model <tab>".
const completionTimeout = 2 * time.Second

// rootOptions holds global flags plus hooks tests use to isolate the
// environment.
type rootOptions struct {
	configPath string
	model      string
	logLevel   string

	dotEnvPath string
	getenv     func(string) (string, bool)
}

// NewRootCommand builds the opencoder command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "opencoder",
		Short: "Chat with an OpenAI-compatible model from the terminal",
		Long: `opencoder is an interactive terminal client for OpenAI-compatible
chat completion endpoints.

Run without arguments to start the REPL. Type a message to chat, or a
/command (try /help) to change settings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lipgloss.SetColorProfile(GetColorProfile())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default ~/.opencoder/config.toml)")
	flags.StringVar(&opts.model, "model", "", "Model to use (overrides config and MODEL)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newAskCommand(opts), newVersionCommand())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, stderr io.Writer) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		ui.NewOutput(stderr, false, 0).Error(err)
		return 1
	}
	return 0
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		Path:       o.configPath,
		DotEnvPath: o.dotEnvPath,
		Getenv:     o.getenv,
	})
	if err != nil {
		return nil, err
	}

	if o.model != "" {
		cfg.Model = o.model
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}
	return cfg, nil
}

// setup loads config and builds the logger and client.
func (o *rootOptions) setup() (*config.Config, *zap.Logger, *lm.Client, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("starting",
		zap.String("version", Version),
		zap.String("api_url", cfg.APIURL),
		zap.String("model", cfg.Model))

	client := lm.NewClient(cfg.APIURL, cfg.APIKey).
		WithTimeout(cfg.Timeout()).
		WithLogger(logger)
	return cfg, logger, client, nil
}

// =============================================================================
// REPL
// =============================================================================

func runREPL(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, client, err := opts.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	stdout := cmd.OutOrStdout()
	interactive := interactiveOutput(stdout)
	out := ui.NewOutput(stdout, interactive, GetTerminalWidth())

	registry := commands.NewDefaultRegistry(logger)
	completer := commands.NewCompleter(registry)
	completer.ModelsFn = modelLookup(cmd.Context(), client)

	console := NewConsole(completer, interactive && IsTTY())
	defer console.Close()

	state := session.New(client, cfg.Settings(), cfg.SystemPrompt, console, logger)
	indicator := ui.NewIndicator(stdout, "Thinking...", interactive)

	out.Banner()
	out.Welcome()

	return NewRunner(console, out, registry, state, indicator).Run(cmd.Context())
}

// modelLookup returns model ids for tab completion, or nothing on error.
func modelLookup(ctx context.Context, client *lm.Client) func() []string {
	return func() []string {
		ctx, cancel := context.WithTimeout(ctx, completionTimeout)
		defer cancel()

		list, err := client.ListModels(ctx)
		if err != nil {
			return nil
		}
		return list.IDs()
	}
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opencoder %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:  %s\n", GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:   %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
