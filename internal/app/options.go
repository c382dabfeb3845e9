package service

import (
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/internal/domain/analysis"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of async analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the async request queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the number of tracked pending submissions.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBatchConcurrency bounds parallel matching during batch analysis.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithStoreRetryAttempts sets how often the SQLite store retries a busy write.
func WithStoreRetryAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.storeRetryAttempts = n
		}
	}
}

// WithDBPath selects the SQLite database. Empty keeps everything in memory.
func WithDBPath(path string) Option {
	return func(s *Service) { s.dbPath = path }
}

// WithTaxonomyFile loads the award catalogue from a YAML file.
func WithTaxonomyFile(path string) Option {
	return func(s *Service) { s.taxonomyFile = path }
}

// WithTaxonomy injects a prebuilt taxonomy, taking precedence over files.
func WithTaxonomy(tax *taxonomy.Taxonomy) Option {
	return func(s *Service) { s.tax = tax }
}

// WithContentSource injects the content collaborator, taking precedence
// over the database-backed source.
func WithContentSource(src analysis.Source) Option {
	return func(s *Service) { s.source = src }
}

// WithMatchThreshold sets the similarity at which a criterion matches.
func WithMatchThreshold(threshold float64) Option {
	return func(s *Service) { s.matchThreshold = threshold }
}

// WithReadinessThresholds sets the ready and nearly-ready cutoffs.
func WithReadinessThresholds(ready, nearlyReady float64) Option {
	return func(s *Service) {
		s.readyRate = ready
		s.nearlyReadyRate = nearlyReady
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig applies every service setting carried by cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		for _, opt := range []Option{
			WithWorkerCount(cfg.WorkerCount),
			WithQueueSize(cfg.QueueSize),
			WithDedupeSize(cfg.DedupeSize),
			WithBatchConcurrency(cfg.BatchConcurrency),
			WithStoreRetryAttempts(cfg.StoreRetryAttempts),
			WithDBPath(cfg.DBPath),
			WithTaxonomyFile(cfg.TaxonomyFile),
			WithMatchThreshold(cfg.MatchThreshold),
			WithReadinessThresholds(cfg.ReadyRate, cfg.NearlyReadyRate),
		} {
			opt(s)
		}
	}
}
