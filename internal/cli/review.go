package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/forgereview/internal/config"
	"github.com/dshills/forgereview/internal/logger"
	"github.com/dshills/forgereview/internal/output"
)

// Review flags
var (
	flagFormat     string
	flagOut        string
	flagProvider   string
	flagReviewer   string
	flagModel      string
	flagPromptOnly bool
	flagNoRedact   bool
	flagNoHistory  bool
	flagFailUnder  int
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, yaml)")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "Force the forge (github, gitlab, bitbucket) instead of detecting it from the URL")
	cmd.Flags().StringVar(&flagReviewer, "reviewer", "", "Reviewer (manual, file, anthropic, openai, gemini, ollama, lmstudio)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name for automated reviewers")
	cmd.Flags().BoolVar(&flagPromptOnly, "prompt-only", false, "Print the review prompt and exit")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Do not record the review in the history")
	cmd.Flags().IntVar(&flagFailUnder, "fail-under", 0, "Exit with code 1 when the review score is below this value")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagReviewer != "" {
		m["reviewer"] = flagReviewer
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	return m
}

var reviewCmd = &cobra.Command{
	Use:   "review <pr-url>",
	Short: "Review a pull request",
	Long: `Review a GitHub pull request, GitLab merge request or Bitbucket pull request.

The forge is detected from the URL. The review is produced by the configured
reviewer and recorded in the review history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagFailUnder < 0 || flagFailUnder > 100 {
			return fmt.Errorf("--fail-under must be between 0 and 100, got %d", flagFailUnder)
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}
		runReview(cmd, args[0], cfg)
		return nil
	},
}

func runReview(cmd *cobra.Command, prURL string, cfg config.Config) {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()
	log := logger.New(cfg.Log, stderr)

	if flagNoRedact {
		fmt.Fprintln(stderr, "WARNING: secret redaction is disabled")
	}

	engine, _, cleanup, err := buildEngine(ctx, cfg, log, engineOptions{
		forceProvider: flagProvider,
		noRedact:      flagNoRedact,
		noHistory:     flagNoHistory,
		promptOnly:    flagPromptOnly,
		in:            cmd.InOrStdin(),
		out:           stderr,
	})
	if err != nil {
		fail(cmd, err)
		return
	}
	defer cleanup()

	if flagPromptOnly {
		prompt, err := engine.Prompt(ctx, prURL)
		if err != nil {
			fail(cmd, err)
			return
		}
		if err := writePrompt(cmd, prompt); err != nil {
			fail(cmd, err)
		}
		return
	}

	fmt.Fprintf(stderr, "Analyzing PR: %s\n", prURL)
	res, err := engine.Run(ctx, prURL)
	if err != nil {
		fail(cmd, err)
		return
	}

	stdout := cmd.OutOrStdout()
	opts := output.Options{Color: stdout == os.Stdout && !color.NoColor}
	if err := output.WriteResult(stdout, res, cfg.Format, flagOut, opts); err != nil {
		fail(cmd, fmt.Errorf("writing output: %w", err))
		return
	}
	if flagOut != "" {
		fmt.Fprintf(stderr, "Output saved to %s\n", flagOut)
	}

	if flagFailUnder > 0 {
		switch {
		case !res.HasScore:
			fail(cmd, withCode(ExitLowScore, errors.New("review has no SCORE line")))
		case res.Score < flagFailUnder:
			fail(cmd, withCode(ExitLowScore, fmt.Errorf("score %d is below --fail-under %d", res.Score, flagFailUnder)))
		}
	}
}

func writePrompt(cmd *cobra.Command, prompt string) error {
	if flagOut == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), prompt)
		return err
	}
	if err := os.WriteFile(flagOut, []byte(prompt), 0o644); err != nil {
		return fmt.Errorf("writing prompt: %w", err)
	}
	return nil
}

func init() {
	addReviewFlags(reviewCmd)
}
