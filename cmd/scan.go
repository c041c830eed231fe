package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/crawl-status-check/internal/app"
	"github.com/JakeFAU/crawl-status-check/internal/config"
	"github.com/JakeFAU/crawl-status-check/internal/logging"
)

// newScanCmd creates the 'scan' subcommand, which crawls the given seed URLs
// and reports the status code of every URL reached from them.
func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url> [url...]",
		Short: "Crawl from the given URLs and report their status codes",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScanCommand,
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "write redirects and errors to this report file")
	flags.Bool("overwrite", false, "truncate the report file instead of appending to it")
	flags.IntP("concurrency", "c", 10, "number of concurrent requests")
	flags.Duration("timeout", 0, "per-request timeout (default 10s)")
	flags.String("user-agent", "", "User-Agent header sent with every request")
	flags.Int("max-depth", 0, "maximum link depth from the seeds, 0 for unlimited")
	flags.Bool("internal-only", false, "only crawl URLs on the seed hosts")
	flags.Bool("follow-redirects", true, "crawl the Location target of 3xx responses")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while crawling")
	flags.Bool("dev-logs", false, "human-friendly development logs")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("log-outcomes", false, "log one structured record per crawled URL")

	return cmd
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	appInstance, err := app.New(cfg, cmd.OutOrStdout(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer appInstance.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return crawlError(ctx, appInstance.Run(ctx, args))
}

// crawlError keeps every joined cause, such as a failed report write, when the
// crawl was interrupted.
func crawlError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return fmt.Errorf("crawl interrupted; partial summary printed: %w", err)
	}
	return fmt.Errorf("run crawl: %w", err)
}
