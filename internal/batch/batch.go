// Package batch runs decision extraction for many Notas concurrently.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/jmylchreest/notadecision/internal/logger"
	"github.com/jmylchreest/notadecision/pkg/decision"
)

// Decider extracts the decision section of a Nota.
type Decider interface {
	Decision(ctx context.Context, notaID string) (*decision.Result, error)
}

// Result is the outcome for a single Nota.
type Result struct {
	NotaID   string
	Index    int // position among the distinct input ids
	Result   *decision.Result
	Error    error
	Duration time.Duration
}

// Config holds runner settings.
type Config struct {
	Concurrency int           // Max concurrent extractions
	Delay       time.Duration // Delay before each extraction
}

// DefaultConfig returns the runner defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 3,
	}
}

// Runner fans extraction out over a bounded number of goroutines.
type Runner struct {
	decider Decider
	config  Config
}

// New creates a runner.
func New(decider Decider, cfg Config) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Runner{
		decider: decider,
		config:  cfg,
	}
}

// Run extracts every distinct id and streams results in completion order.
// The channel is closed once all work is done or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, ids []string) <-chan Result {
	results := make(chan Result, r.config.Concurrency)

	go func() {
		defer close(results)
		r.run(ctx, ids, results)
	}()

	return results
}

func (r *Runner) run(ctx context.Context, ids []string, results chan<- Result) {
	queue := NewIDQueue()
	for _, id := range ids {
		if !queue.Add(id) {
			logger.Debug("skipping id", "id", id)
		}
	}
	logger.Debug("batch starting",
		"ids", queue.Len(),
		"concurrency", r.config.Concurrency,
		"delay", r.config.Delay)

	sem := make(chan struct{}, r.config.Concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		id, index, ok := queue.Pop()
		if !ok {
			return
		}

		select {
		case <-ctx.Done():
			return
		case sem <- struct{}{}:
		}
		wg.Add(1)

		go func(id string, index int) {
			defer wg.Done()
			defer func() { <-sem }()

			if r.config.Delay > 0 {
				select {
				case <-ctx.Done():
					results <- Result{NotaID: id, Index: index, Error: ctx.Err()}
					return
				case <-time.After(r.config.Delay):
				}
			}

			start := time.Now()
			res, err := r.decider.Decision(ctx, id)
			results <- Result{
				NotaID:   id,
				Index:    index,
				Result:   res,
				Error:    err,
				Duration: time.Since(start),
			}
		}(id, index)
	}
}
