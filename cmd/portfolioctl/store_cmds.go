package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"portfolio-sync/internal/config"
	"portfolio-sync/internal/database/migration"
	dbpostgres "portfolio-sync/internal/database/postgres"
	"portfolio-sync/internal/database/seeder"
	"portfolio-sync/internal/repository"
)

var errNotPostgres = errors.New("migrations only apply to STORE_DRIVER=postgres")

func migrateCmd(logger func() *log.Logger) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadStore()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.DriverPostgres {
				return errNotPostgres
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := dbpostgres.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			r := migration.Runner{Dir: cfg.Store.MigrationsDir, Logger: logger()}
			if status {
				rows, err := r.Status(ctx, pool.SQLDB())
				if err != nil {
					return err
				}
				printStatus(cmd, rows)
				return nil
			}

			applied, err := r.Run(ctx, pool.SQLDB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Show migration status instead of applying")
	return cmd
}

func printStatus(cmd *cobra.Command, rows []migration.Status) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED\tNOTE")
	for _, s := range rows {
		applied := "pending"
		if s.Applied && s.AppliedAt != nil {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		note := ""
		if s.Modified {
			note = "modified since applied"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, s.Name, applied, note)
	}
	_ = w.Flush()
}

func seedCmd(logger func() *log.Logger) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the built-in default content where a domain has none",
		Long: `Store the built-in default content for every domain whose slot is
absent or unreadable. With --reset the defaults overwrite every domain.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := logger()
			return withSlots(l, func(ctx context.Context, slots repository.ContentSlots) error {
				r := seeder.Runner{Seeders: seeder.Defaults(slots, reset), Logger: l}
				return r.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Overwrite stored content with the defaults")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
