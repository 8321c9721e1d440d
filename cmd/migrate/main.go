package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cuotas/api/internal/config"
	"cuotas/api/internal/database"
	"cuotas/api/internal/log"
	"cuotas/api/internal/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	configDir string
	timeout   time.Duration
	log       zerolog.Logger
	manager   *migrate.Manager
	pool      *pgxpool.Pool
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the embedded database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.pool != nil {
				e.pool.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&e.configDir, "config", "", "directory holding config.yaml")
	root.PersistentFlags().DurationVar(&e.timeout, "timeout", 5*time.Minute, "upper bound for the whole run")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE:  e.up,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE:  e.down,
		},
		&cobra.Command{
			Use:   "status",
			Short: "List applied migrations",
			Args:  cobra.NoArgs,
			RunE:  e.status,
		},
	)
	return root
}

func (e *env) open(ctx context.Context) error {
	var paths []string
	if e.configDir != "" {
		paths = append(paths, e.configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}
	e.log = log.New(cfg.Environment, "migrate", cfg.Logging.Level)

	pool, err := database.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	e.pool = pool
	e.manager = migrate.New(pool)
	return nil
}

func (e *env) up(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), e.timeout)
	defer cancel()

	applied, err := e.manager.Up(ctx)
	for _, name := range applied {
		e.log.Info().Str("migration", name).Msg("applied")
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		e.log.Info().Msg("schema up to date")
	}
	return nil
}

func (e *env) down(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), e.timeout)
	defer cancel()

	name, err := e.manager.Down(ctx)
	if errors.Is(err, migrate.ErrNothingToRollback) {
		e.log.Info().Msg("nothing to roll back")
		return nil
	}
	if err != nil {
		return err
	}
	e.log.Info().Str("migration", name).Msg("rolled back")
	return nil
}

func (e *env) status(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), e.timeout)
	defer cancel()

	applied, err := e.manager.Status(ctx)
	if err != nil {
		return err
	}
	for _, name := range applied {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	e.log.Info().Int("count", len(applied)).Msg("migration status")
	return nil
}
