package cli

import (
	"context"
	"fmt"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// skipConfigAnnotation marks commands that run without loading configuration
const skipConfigAnnotation = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "jobanalyzer",
	Short: "Decide whether a job posting is worth applying to",
	Long: `Jobanalyzer sends a job posting and a resume to a generative model and
returns a structured analysis: whether to apply, how confident the advice is,
how well the profile matches, better-fitting roles, experience level, timing
and concrete next steps.

Run it as an HTTP relay for a browser front end with "serve", or once from
the command line with "analyze".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime loads configuration after flags are parsed and attaches it with a logger to the context
func loadRuntime(cmd *cobra.Command, args []string) error {
	if _, skip := cmd.Annotations[skipConfigAnnotation]; skip {
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	logger.Info("Starting jobanalyzer",
		"version", Version,
		"command", cmd.Name(),
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider,
		"ai_model", cfg.AI.Model)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("config not found in context")
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, fmt.Errorf("logger not found in context")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
