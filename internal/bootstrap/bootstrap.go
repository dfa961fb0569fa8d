// Package bootstrap provides dependency initialization for the clip synthesis API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/maauso/clipsynth-api/internal/audio"
	"github.com/maauso/clipsynth-api/internal/config"
	"github.com/maauso/clipsynth-api/internal/estimate"
	"github.com/maauso/clipsynth-api/internal/library"
	"github.com/maauso/clipsynth-api/internal/retention"
	"github.com/maauso/clipsynth-api/internal/storage"
	"github.com/maauso/clipsynth-api/internal/synth"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Library     *library.Library
	Store       storage.Storage
	Synthesizer *synth.Synthesizer
	Estimator   estimate.Estimator
	// Janitor is nil when output retention is disabled.
	Janitor *retention.Janitor
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Load the clip library once; it is read-only afterwards
	lib, err := library.Load(cfg.AudioDir, libraryOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("load clip library: %w", err)
	}
	logger.Info("clip library loaded",
		slog.String("audio_dir", lib.Dir()),
		slog.Int("clips", lib.Len()),
		slog.Bool("bucketed", lib.Bucketed()),
	)
	if lib.Len() == 0 {
		logger.Warn("clip library is empty, synthesis requests will fail",
			slog.String("audio_dir", cfg.AudioDir),
		)
	}

	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize synthesizer
	s := synth.New(lib, audio.NewWAVDecoder(), store, logger,
		synth.WithDefaultRange(config.Seconds(cfg.DefaultMinSec), config.Seconds(cfg.DefaultMaxSec)),
	)

	deps := &Dependencies{
		Library:     lib,
		Store:       store,
		Synthesizer: s,
		Estimator: estimate.Estimator{
			PerWord: config.Seconds(cfg.EstimateWordSec),
			PerChar: config.Seconds(cfg.EstimateCharSec),
			Min:     config.Seconds(cfg.EstimateMinSec),
			Max:     config.Seconds(cfg.EstimateMaxSec),
		},
	}

	// Initialize output janitor
	if cfg.RetentionEnabled() {
		j, err := retention.NewJanitor(store, cfg.OutputRetention, cfg.PruneInterval, logger)
		if err != nil {
			return nil, fmt.Errorf("create output janitor: %w", err)
		}
		deps.Janitor = j
		logger.Info("output retention enabled",
			slog.Duration("max_age", cfg.OutputRetention),
			slog.Duration("interval", cfg.PruneInterval),
		)
	}

	return deps, nil
}

// libraryOptions overlays the configured scan settings on the library defaults.
func libraryOptions(cfg *config.Config) library.Options {
	opts := library.DefaultOptions()
	if cfg.ClipExt != "" {
		opts.Extension = cfg.ClipExt
	}
	opts.FoldCase = cfg.ClipExtFoldCase
	opts.Buckets = cfg.ActiveBuckets()
	if cfg.DefaultBucket != "" {
		opts.DefaultBucket = cfg.DefaultBucket
	}
	return opts
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.OutputDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 mirror configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("output_dir", s3Store.Dir()),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("output_dir", localStore.Dir()),
	)
	return localStore, nil
}
