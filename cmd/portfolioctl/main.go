// Command portfolioctl runs maintenance tasks against the content store.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"portfolio-sync/internal/app"
	"portfolio-sync/internal/config"
	"portfolio-sync/internal/repository"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Maintain the portfolio content store",
		Long: `Maintain the portfolio content store selected by STORE_DRIVER.

Examples:
  portfolioctl migrate --status
  portfolioctl seed --reset
  portfolioctl export --domain projects --format yaml > projects.yaml
  portfolioctl import --domain projects --file projects.yaml
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")

	logger := func() *log.Logger {
		if quiet {
			return log.New(io.Discard, "", 0)
		}
		return log.New(os.Stderr, "", log.LstdFlags|log.LUTC)
	}

	cmd.AddCommand(
		migrateCmd(logger),
		seedCmd(logger),
		exportCmd(logger),
		importCmd(logger),
		hashPasswordCmd(),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the portfolioctl version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// withSlots opens the configured backend and hands its domain slots to fn.
func withSlots(logger *log.Logger, fn func(ctx context.Context, slots repository.ContentSlots) error) error {
	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Printf("close error: %v", err)
		}
	}()

	return fn(ctx, repository.NewContentSlots(backend.Store, logger, nil))
}
