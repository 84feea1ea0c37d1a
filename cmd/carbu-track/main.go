package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Berenger2/carbu-track/internal/api"
	"github.com/Berenger2/carbu-track/internal/config"
	"github.com/Berenger2/carbu-track/internal/feed"
	"github.com/Berenger2/carbu-track/internal/migrate"
	"github.com/Berenger2/carbu-track/internal/pipeline"
	"github.com/Berenger2/carbu-track/internal/storage"
	"github.com/Berenger2/carbu-track/internal/worker"
)

func main() {
	root := &cobra.Command{
		Use:   "carbu-track",
		Short: "Fuel price ETL and read API for department 69 (Lyon)",
	}
	root.AddCommand(serveCmd(), workerCmd(), runCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer st.Close()

			mux := api.NewMux(st)
			log.Printf("carbu-track listening on %s (db driver=%s)", cfg.ListenAddr, cfg.DB.Driver)
			return http.ListenAndServe(cfg.ListenAddr, mux)
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the ETL pipeline on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer st.Close()

			runner := pipeline.NewRunner(feed.NewClient(cfg.FeedURL), st, cfg)
			if err := worker.Run(ctx, cfg, runner); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer st.Close()

			runner := pipeline.NewRunner(feed.NewClient(cfg.FeedURL), st, cfg)
			summary, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("run %s: fetched=%d transformed=%d filtered=%d limited=%d inserted=%d skipped=%d failed=%d in %s\n",
				summary.RunID, summary.Fetched, summary.Transformed, summary.Filtered, summary.Limited,
				summary.Persist.Inserted, summary.Persist.Skipped, summary.Persist.Failed, summary.Duration)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			driver := cfg.DB.Driver
			dsn := storeDSN(cfg)
			switch args[0] {
			case "up":
				return migrate.Up(cmd.Context(), driver, dsn)
			case "down":
				return migrate.Down(cmd.Context(), driver, dsn)
			default:
				return migrate.Status(cmd.Context(), driver, dsn)
			}
		},
	}
	return cmd
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	return storage.Open(ctx, storage.Config{
		Driver: cfg.DB.Driver,
		DSN:    storeDSN(cfg),
	})
}

// storeDSN picks the DSN for the configured driver: sqlite uses a file path,
// the postgres drivers build one from the DB_* variables.
func storeDSN(cfg config.Config) string {
	switch cfg.DB.Driver {
	case "sqlite", "sqlite3", "memory":
		return cfg.DB.DSN
	default:
		return cfg.DB.PostgresDSN()
	}
}
