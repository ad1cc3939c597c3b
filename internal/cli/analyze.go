package cli

import (
	"context"
	"fmt"

	"jobanalyzer/internal/ai"
	"jobanalyzer/internal/common"
	"jobanalyzer/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job-posting-file] [resume-file]",
	Short: "Analyze whether a job posting is worth applying to",
	Long: `Send a job posting and a resume to the model once and print the analysis.

The analysis includes:
- Application recommendation and confidence level
- Job profile match analysis
- Better-fitting target job profiles
- Experience level assessment
- Timing analysis
- Concrete recommendations`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeModel  string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: text, json, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Model to use (default from config)")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	aiService, err := ai.NewService(cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	analyzeConfig.MaxFileSize = cfg.App.MaxFileSize

	createInput := func(contents []string) (types.AnalysisRequest, error) {
		if len(contents) != 2 {
			return types.AnalysisRequest{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.AnalysisRequest{
			JobPosting: contents[0],
			Resume:     contents[1],
			Model:      analyzeModel,
		}, nil
	}

	logDetails := func(input types.AnalysisRequest, cfg common.CommandConfig) {
		logger.Info("Starting job analysis",
			"job_posting_chars", len(input.JobPosting),
			"resume_chars", len(input.Resume),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, input types.AnalysisRequest) (types.AnalysisResult, error) {
		return aiService.Analyze(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to analyze job posting: %w", err)
	}

	logger.Info("Job analysis completed successfully")
	return nil
}
