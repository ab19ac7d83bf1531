package jobs

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
)

// DefaultWorkers is the batch parallelism when none is configured.
const DefaultWorkers = 4

// AnalyzeFunc produces a verdict document for one job. Implementations
// must be safe for concurrent calls; the pipeline itself is.
type AnalyzeFunc func(ctx context.Context, job Job) (*forensics.Document, error)

// Runner drains queued jobs through an AnalyzeFunc with bounded
// parallelism. Analysis failures are recorded on the job, not returned;
// Run only propagates context cancellation.
type Runner struct {
	queue   *Queue
	analyze AnalyzeFunc
	workers int
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets how many jobs run concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner over a queue.
func NewRunner(q *Queue, analyze AnalyzeFunc, opts ...RunnerOption) *Runner {
	r := &Runner{
		queue:   q,
		analyze: analyze,
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes the given job ids. It returns once every job has been
// handled or the context is cancelled, whichever comes first.
func (r *Runner) Run(ctx context.Context, ids []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.runOne(gctx, id)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) runOne(ctx context.Context, id string) {
	if err := r.queue.MarkProcessing(id); err != nil {
		r.logger.Debug("job skipped", "job", id, "reason", err)
		return
	}
	job, ok := r.queue.Get(id)
	if !ok {
		return
	}

	doc, err := r.analyze(ctx, job)
	if err != nil {
		if _, ferr := r.queue.Fail(id, err.Error()); ferr != nil {
			r.logger.Error("job not recorded", "job", id, "error", ferr)
			return
		}
		r.logger.Warn("job failed", "job", id, "asset", job.AssetID, "error", err)
		return
	}

	stored, err := r.queue.Complete(id, doc)
	if err != nil {
		r.logger.Error("job not recorded", "job", id, "error", err)
		return
	}
	if !stored {
		r.logger.Debug("job result discarded", "job", id)
		return
	}
	r.logger.Info("job completed", "job", id, "asset", job.AssetID)
}
