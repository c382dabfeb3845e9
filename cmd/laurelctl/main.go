// Package main provides laurelctl, the operator CLI for the readiness
// engine. Commands run the engine in-process against the configured store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	service "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/pkg/logger"
)

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	dbPath       string
	taxonomyFile string
	logLevel     string
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "laurelctl",
		Short:         "Award readiness operator CLI",
		Long:          "laurelctl analyzes content against the award taxonomy, inspects checklists and readiness, manages manual overrides and seeds synthetic content.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "SQLite database path (overrides LAUREL_DB_PATH)")
	root.PersistentFlags().StringVar(&g.taxonomyFile, "taxonomy", "", "YAML taxonomy file (overrides LAUREL_TAXONOMY_FILE)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LAUREL_LOG_LEVEL)")

	root.AddCommand(
		newAnalyzeCmd(g),
		newAnalyzeAllCmd(g),
		newReadinessCmd(g),
		newChecklistCmd(g),
		newOverrideCmd(g),
		newClearOverrideCmd(g),
		newStateCmd(g),
		newReportCmd(g),
		newSuggestionsCmd(g),
		newSeedCmd(g),
		newLoadCmd(g),
	)
	return root
}

// loadConfig reads layered configuration, applies flag overrides and
// initializes logging on stderr so stdout stays machine readable.
func loadConfig(ctx context.Context, cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
	}
	if g.taxonomyFile != "" {
		cfg.TaxonomyFile = g.taxonomyFile
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// runService starts a service for one command, runs fn and stops the
// service.
func runService(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, svc *service.Service) error) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx, cmd, g)
	if err != nil {
		return err
	}
	svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Get()))
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()
	return fn(ctx, svc)
}

// withService runs fn through runService and prints its result as JSON.
func withService(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, svc *service.Service) (any, error)) error {
	return runService(cmd, g, func(ctx context.Context, svc *service.Service) error {
		out, err := fn(ctx, svc)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
