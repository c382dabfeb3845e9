package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/laurel/internal/adapters/content"
	"github.com/okian/laurel/internal/adapters/sqlitedb"
	service "github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/seed"
)

var errDBRequired = errors.New("a SQLite database is required: pass --db or set LAUREL_DB_PATH")

type seedFlags struct {
	count         int
	workers       int
	seed          uint64
	eventRatio    float64
	archivedRatio float64
	noiseRatio    float64
	analyze       bool
}

type seedResult struct {
	Seed     seed.Stats `json:"seed"`
	Analysis any        `json:"analysis,omitempty"`
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	f := &seedFlags{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write synthetic documents and events into the content store",
		Long:  "Generates content whose text mixes award criterion keywords with filler words and writes it into the SQLite content table. Use --analyze to run a whole-corpus analysis afterwards.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, g, f)
		},
	}
	cmd.Flags().IntVarP(&f.count, "count", "n", 100, "number of items to generate")
	cmd.Flags().IntVar(&f.workers, "workers", runtime.NumCPU(), "concurrent writers")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for reproducible content (0 picks one)")
	cmd.Flags().Float64Var(&f.eventRatio, "event-ratio", seed.DefaultEventRatio, "share of events among generated items")
	cmd.Flags().Float64Var(&f.archivedRatio, "archived-ratio", seed.DefaultArchivedRatio, "share of archived items")
	cmd.Flags().Float64Var(&f.noiseRatio, "noise-ratio", seed.DefaultNoiseRatio, "share of items without criterion keywords")
	cmd.Flags().BoolVar(&f.analyze, "analyze", false, "run analyze-all after seeding")
	return cmd
}

func runSeed(cmd *cobra.Command, g *globalFlags, f *seedFlags) error {
	ctx := cmd.Context()
	if f.count <= 0 {
		return fmt.Errorf("count must be positive, got %d", f.count)
	}
	cfg, err := loadConfig(ctx, cmd, g)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return errDBRequired
	}
	tax, err := taxonomy.Resolve(cfg.TaxonomyFile)
	if err != nil {
		return err
	}

	opts := []seed.GeneratorOption{
		seed.WithEventRatio(f.eventRatio),
		seed.WithArchivedRatio(f.archivedRatio),
		seed.WithNoiseRatio(f.noiseRatio),
	}
	if f.seed != 0 {
		opts = append(opts, seed.WithSeed(f.seed))
	}
	gen, err := seed.NewGenerator(tax, opts...)
	if err != nil {
		return err
	}
	drafts, err := gen.Generate(ctx, f.count)
	if err != nil {
		return err
	}

	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	stats, err := seed.Write(ctx, content.NewSQLiteSource(db), drafts, f.workers)
	if cerr := db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	res := seedResult{Seed: stats}
	if !f.analyze {
		return printJSON(cmd.OutOrStdout(), res)
	}
	return withService(cmd, g, func(ctx context.Context, svc *service.Service) (any, error) {
		batch, err := svc.AnalyzeAllContent(ctx)
		if err != nil {
			return nil, err
		}
		res.Analysis = batch
		return res, nil
	})
}

type loadFlags struct {
	url     string
	workers int
	timeout time.Duration
	limit   int
}

func newLoadCmd(g *globalFlags) *cobra.Command {
	f := &loadFlags{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit every active item to a running server for async analysis",
		Long:  "Reads active content from the shared SQLite store and posts each item to /v1/analyze/async on a running server, reporting accepted, duplicate and failed submissions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, g, f)
		},
	}
	cmd.Flags().StringVar(&f.url, "url", "http://localhost:9080", "base URL of the server")
	cmd.Flags().IntVar(&f.workers, "workers", runtime.NumCPU()*2, "concurrent requests")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "submit at most this many items (0 means all)")
	return cmd
}

func runLoad(cmd *cobra.Command, g *globalFlags, f *loadFlags) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx, cmd, g)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return errDBRequired
	}
	refs, err := activeRefs(ctx, cfg.DBPath, f.limit)
	if err != nil {
		return err
	}
	stats, err := seed.Submit(ctx, seed.LoadConfig{BaseURL: f.url, Workers: f.workers, Timeout: f.timeout}, refs)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), stats)
}

func activeRefs(ctx context.Context, path string, limit int) ([]model.ContentRef, error) {
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	items, err := content.NewSQLiteSource(db).ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	refs := make([]model.ContentRef, len(items))
	for i, it := range items {
		refs[i] = it.Ref()
	}
	return refs, nil
}
