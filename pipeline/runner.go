package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xXAI-botXx/3xM/concurrency"
	"github.com/xXAI-botXx/3xM/convert"
	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/metrics"
	"github.com/xXAI-botXx/3xM/storage"
)

// Runner executes jobs on a bounded worker pool.
type Runner struct {
	workers        int
	logger         logging.Logger
	collector      *metrics.Collector
	reporter       Reporter
	processors     map[convert.Modality]convert.Processor
	convertOpts    []convert.Option
	deleteOriginal bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the pool size. Zero or less uses one worker per CPU.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

func WithReporter(rep Reporter) Option {
	return func(r *Runner) { r.reporter = rep }
}

// WithProcessor overrides the processor used for its modality.
func WithProcessor(p convert.Processor) Option {
	return func(r *Runner) { r.processors[p.Modality()] = p }
}

// WithConvertOptions passes options to the default processors.
func WithConvertOptions(opts ...convert.Option) Option {
	return func(r *Runner) { r.convertOpts = append(r.convertOpts, opts...) }
}

// WithDeleteOriginal removes the source directories after a run in which every
// item succeeded.
func WithDeleteOriginal(enabled bool) Option {
	return func(r *Runner) { r.deleteOriginal = enabled }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:     logging.NewNop(),
		reporter:   nopReporter{},
		processors: make(map[convert.Modality]convert.Processor),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.workers = concurrency.NewPool(r.workers).Size()
	return r
}

// Workers returns the pool size.
func (r *Runner) Workers() int {
	return r.workers
}

func (r *Runner) processor(m convert.Modality) (convert.Processor, error) {
	if p, ok := r.processors[m]; ok {
		return p, nil
	}
	return convert.New(m, r.convertOpts...)
}

// Run processes every image of job. It first deletes and recreates each stage's
// output directory, so anything previously written there is lost. A job whose
// output directory holds one of its sources is rejected before that.
//
// A name whose label output another name already writes is recorded as a
// failed item and not processed.
//
// Items that fail are recorded in the summary and do not end the run. A
// filesystem error while resetting, listing or writing stops dispatching, waits
// for running items and is returned together with the summary. Canceling ctx
// stops dispatching the same way and returns ctx's error.
func (r *Runner) Run(ctx context.Context, job Job) (*Summary, error) {
	runID := uuid.NewString()
	ctx = logging.SetRunID(ctx, runID)
	logger := logging.WithContext(r.logger, ctx).Named("pipeline")

	summary := newSummary(runID, job, r.workers)
	defer func() { summary.Finished = time.Now() }()

	if err := job.Validate(); err != nil {
		return summary, err
	}

	processors := make([]convert.Processor, len(job.Stages))
	for i, s := range job.Stages {
		p, err := r.processor(s.Modality)
		if err != nil {
			return summary, err
		}
		processors[i] = p
	}

	for _, s := range job.Stages {
		if err := storage.ResetDir(s.OutputDir); err != nil {
			return summary, err
		}
	}
	listed, err := storage.ListImages(job.ListDir, job.Extensions)
	if err != nil {
		return summary, err
	}
	names, collisions := splitLabelCollisions(job, listed)
	summary.Total = len(listed)

	progress := NewProgress(len(listed))
	r.reporter.Start(job, len(listed))
	if r.collector != nil {
		r.collector.SetGauge(metrics.WorkersConfigured, float64(r.workers), nil)
	}
	for _, name := range listed {
		keeper, ok := collisions[name]
		if !ok {
			continue
		}
		res := convert.Result{
			Name:     name,
			Modality: convert.ModalityMask,
			Outcome:  convert.OutcomeFailed,
			Err: apperrors.NewInvalid("name", name,
				"label output "+convert.LabelOutputPath(name)+" is also written for "+keeper),
		}
		summary.record(res)
		r.record(res)
		summary.Processed++
		r.reporter.Report(progress.Done(true), []convert.Result{res})
	}

	var processedMu sync.Mutex
	task := func(ctx context.Context, i int) error {
		item := WorkItem{Name: names[i], Stages: job.Stages, Size: job.Size}
		results, fatal := r.processItem(ctx, item, processors)

		failed := false
		for _, res := range results {
			summary.record(res)
			r.record(res)
			failed = failed || !res.OK()
		}
		if fatal == nil {
			processedMu.Lock()
			summary.Processed++
			processedMu.Unlock()
		}
		r.reporter.Report(progress.Done(failed), results)
		return fatal
	}

	_, runErr := concurrency.NewPool(r.workers).Run(ctx, len(names), task)
	summary.Canceled = runErr != nil && ctx.Err() != nil && errors.Is(runErr, ctx.Err())
	summary.Finished = time.Now()

	if r.collector != nil {
		r.collector.ObserveHistogram(metrics.RunDuration, summary.Elapsed().Seconds(), map[string]string{"job": job.Name})
	}
	if runErr != nil {
		logger.WithError(runErr).Error("run stopped",
			logging.Count("processed", summary.Processed),
			logging.Count("total", summary.Total),
		)
		r.reporter.Finish(summary)
		return summary, runErr
	}

	if r.deleteOriginal {
		if err := r.removeOriginals(logger, job, summary); err != nil {
			r.reporter.Finish(summary)
			return summary, err
		}
	}
	r.reporter.Finish(summary)
	return summary, nil
}

// processItem runs the stages of one item in order. A batch-fatal result ends
// the item and is returned as the error.
func (r *Runner) processItem(ctx context.Context, item WorkItem, processors []convert.Processor) ([]convert.Result, error) {
	items := item.Items()
	results := make([]convert.Result, 0, len(items))
	for i, in := range items {
		res := processors[i].Process(ctx, in)
		results = append(results, res)
		if res.Outcome == convert.OutcomeFatal {
			return results, res.Err
		}
	}
	return results, nil
}

func (r *Runner) record(res convert.Result) {
	if r.collector == nil {
		return
	}
	r.collector.RecordItem(string(res.Modality), res.Outcome.String(), res.Duration, res.Bytes)
	if res.OK() && res.Modality == convert.ModalityMask {
		r.collector.RecordInstances(res.Instances)
	}
}

func (r *Runner) removeOriginals(logger logging.Logger, job Job, summary *Summary) error {
	if n := summary.FailureCount(); n > 0 {
		logger.Warn("originals kept, run had failures", logging.Count("failures", n))
		return nil
	}
	for _, s := range job.Stages {
		if err := storage.RemoveDir(s.SourceDir); err != nil {
			return err
		}
		logger.Info("originals deleted", logging.File(s.SourceDir))
	}
	return nil
}
