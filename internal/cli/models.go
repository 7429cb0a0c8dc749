package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/forgereview/internal/config"
	"github.com/dshills/forgereview/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Reviewer and model management",
}

type modelInfo struct {
	Reviewer string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Reviewer: "anthropic",
		Models: []string{
			"claude-sonnet-4-5",
			"claude-opus-4-1",
			"claude-haiku-4-5",
		},
	},
	{
		Reviewer: "openai",
		Models: []string{
			"gpt-4.1",
			"gpt-4.1-mini",
			"o3-mini",
		},
	},
	{
		Reviewer: "gemini",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Reviewer: "ollama",
		Models: []string{
			"llama3.3",
			"qwen2.5-coder",
			"deepseek-coder-v2",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reviewers and known models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, name := range []string{"manual", "file"} {
			fmt.Fprintf(out, "%s: (interactive, no model)\n", name)
		}
		fmt.Fprintln(out)
		for _, info := range knownModels {
			fmt.Fprintf(out, "%s:\n", info.Reviewer)
			for _, m := range info.Models {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate reviewer credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if providers.Interactive(cfg.Reviewer) {
			fmt.Fprintf(out, "OK: %s is interactive and needs no credentials\n", cfg.Reviewer)
			return nil
		}

		fmt.Fprintf(out, "Checking %s...\n", cfg.Reviewer)
		p, err := providers.New(cfg, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			fail(cmd, withCode(ExitAuthError, err))
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		_, err = p.Review(ctx, providers.ReviewRequest{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		})
		if err != nil {
			if providers.IsAuthError(err) {
				err = withCode(ExitAuthError, err)
			}
			fail(cmd, err)
			return nil
		}

		fmt.Fprintf(out, "OK: %s is configured and responding\n", p.Name())
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagReviewer, "reviewer", "", "Reviewer to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
