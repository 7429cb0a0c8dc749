package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/forgereview/internal/config"
	"github.com/dshills/forgereview/internal/logger"
	"github.com/dshills/forgereview/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review dashboard and HTTP API",
	Long: `Serve a small dashboard and JSON API for reviewing pull requests.

The manual reviewer needs a terminal and cannot be used here. The file
reviewer works but handles one review at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagAddr != "" {
			overrides["server.addr"] = flagAddr
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		if cfg.Reviewer == "manual" {
			return withCode(ExitUsageError, errors.New(`the manual reviewer cannot be used with serve; choose "file" or an automated reviewer`))
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}
		if err := runServe(cmd.Context(), cmd, cfg); err != nil {
			fail(cmd, err)
		}
		return nil
	},
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	log := logger.New(cfg.Log, cmd.ErrOrStderr())

	engine, store, cleanup, err := buildEngine(ctx, cfg, log, engineOptions{
		noRedact: flagNoRedact,
		in:       cmd.InOrStdin(),
		out:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer cleanup()

	h, err := server.NewHandler(engine, store, log)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Server, h, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :5000)")
	serveCmd.Flags().StringVar(&flagReviewer, "reviewer", "", "Reviewer (file, anthropic, openai, gemini, ollama, lmstudio)")
	serveCmd.Flags().StringVar(&flagModel, "model", "", "Model name for automated reviewers")
	serveCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}
