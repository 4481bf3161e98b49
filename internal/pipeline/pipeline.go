package pipeline

import (
	"errors"
	"log/slog"

	"github.com/quillback/loglearn/internal/task"
)

// Default values used when Config leaves a field unset.
const (
	// DefaultBatchSize is the number of items accumulated before a batch
	// is flushed to the pool.
	DefaultBatchSize = 25
)

// Config holds tunable settings for a Pipeline.
type Config struct {
	// BatchSize is the default number of items per batch for runs that do
	// not override it. Defaults to DefaultBatchSize if zero or negative.
	BatchSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize}
}

// Pipeline drives multi-batch analysis runs over a task pool. A Pipeline is
// stateless across runs; each Process call owns its run bookkeeping, so a
// single Pipeline may serve concurrent runs.
type Pipeline struct {
	pool   *task.Pool
	config Config
	logger *slog.Logger
}

// New creates a Pipeline that submits work to the given pool.
// Returns an error if pool or logger is nil.
func New(pool *task.Pool, config Config, logger *slog.Logger) (*Pipeline, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if config.BatchSize <= 0 {
		logger.Warn("invalid batch size specified, using default",
			"batch_size", config.BatchSize,
			"default", DefaultBatchSize)
		config.BatchSize = DefaultBatchSize
	}

	return &Pipeline{
		pool:   pool,
		config: config,
		logger: logger.With("component", "pipeline"),
	}, nil
}

// BatchSize returns the configured default batch size.
func (p *Pipeline) BatchSize() int {
	return p.config.BatchSize
}
