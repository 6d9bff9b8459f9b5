package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rental-terms-qa/internal/repository"
	"rental-terms-qa/internal/seed"
	"rental-terms-qa/pkg/config"
	"rental-terms-qa/pkg/logger"
	"rental-terms-qa/pkg/postgres"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	files     []string
	cacheFile string
	reset     bool
	force     bool
}

func main() {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Import rental terms from YAML files into Postgres",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.files, "file", "f", []string{filepath.Join("seed", "rental_terms.yaml")}, "seed file(s) to import")
	cmd.Flags().StringVar(&opts.cacheFile, "cache", filepath.Join("seed", ".seed_cache.json"), "file tracking already imported seed files")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "delete existing rental terms before importing")
	cmd.Flags().BoolVar(&opts.force, "force", false, "import files even if they are unchanged since the last run")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Output); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	repo := repository.NewRentalTermsRepository(db, appLogger)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	appLogger.Info("Starting database seeding...")

	cache, err := seed.LoadCache(opts.cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &seed.Cache{ProcessedFiles: make(map[string]seed.ProcessedFile)}
	}

	if opts.reset {
		deleted, err := repo.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset rental terms: %w", err)
		}
		appLogger.Info("Existing rental terms deleted", zap.Int64("rows", deleted))
		// a reset store no longer holds what the cache says was imported
		cache.ProcessedFiles = make(map[string]seed.ProcessedFile)
	}

	for _, path := range opts.files {
		if err := importFile(ctx, repo, cache, path, opts.force, appLogger); err != nil {
			appLogger.Error("Failed to import seed file", zap.String("path", path), zap.Error(err))
			return err
		}
	}

	if err := cache.Save(opts.cacheFile); err != nil {
		appLogger.Warn("Failed to save cache", zap.Error(err))
	} else {
		appLogger.Info("Cache saved", zap.Int("processed_files", len(cache.ProcessedFiles)))
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	appLogger.Info("Database seeding completed successfully!", zap.Int("rental_terms", total))
	return nil
}

func importFile(
	ctx context.Context,
	repo *repository.RentalTermsRepository,
	cache *seed.Cache,
	path string,
	force bool,
	logger *zap.Logger,
) error {
	fileHash, err := seed.FileHash(path)
	if err != nil {
		return err
	}

	if cached, unchanged := cache.Unchanged(path, fileHash); unchanged && !force {
		logger.Info("Seed file already imported, skipping",
			zap.String("path", path),
			zap.Time("processed_at", cached.ProcessedAt),
		)
		return nil
	}

	records, err := seed.LoadFile(path)
	if err != nil {
		return err
	}

	logger.Info("Importing seed file", zap.String("path", path), zap.Int("records", len(records)))

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription(filepath.Base(path)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("records"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		progressbar.OptionSetWriter(os.Stderr),
	)

	for i := range records {
		if err := repo.Create(ctx, &records[i]); err != nil {
			return fmt.Errorf("failed to insert %s / %s: %w", records[i].Country, records[i].VehicleType, err)
		}
		_ = bar.Add(1)
	}

	cache.Mark(path, fileHash, len(records), time.Now())
	return nil
}
