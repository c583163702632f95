package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/xXAI-botXx/3xM/concurrency"
	"github.com/xXAI-botXx/3xM/convert"
	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/imaging"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/metrics"
	"github.com/xXAI-botXx/3xM/storage"
)

// DefaultQuiet is how long a file must stay unchanged before it is converted.
const DefaultQuiet = 500 * time.Millisecond

// Watcher converts images as they appear in a source directory. Unlike Run it
// never resets the output directory.
type Watcher struct {
	stage      Stage
	size       imaging.Size
	extensions []string
	processor  convert.Processor
	quiet      time.Duration
	sem        *concurrency.Semaphore
	logger     logging.Logger
	collector  *metrics.Collector
	onResult   func(convert.Result)

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
	fatal  chan error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithQuiet sets the debounce interval.
func WithQuiet(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.quiet = d }
}

// WithWatchWorkers bounds the number of files converted at once.
func WithWatchWorkers(n int) WatcherOption {
	return func(w *Watcher) { w.sem = concurrency.NewSemaphore(concurrency.NewPool(n).Size()) }
}

func WithWatchLogger(l logging.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

func WithWatchMetrics(c *metrics.Collector) WatcherOption {
	return func(w *Watcher) { w.collector = c }
}

// OnResult registers a callback invoked after every converted file. It may be
// called from several goroutines at once.
func OnResult(fn func(convert.Result)) WatcherOption {
	return func(w *Watcher) { w.onResult = fn }
}

// NewWatcher creates a watcher for the single-stage job.
func NewWatcher(job Job, processor convert.Processor, opts ...WatcherOption) (*Watcher, error) {
	if len(job.Stages) != 1 {
		return nil, apperrors.NewInvalid("stages", len(job.Stages), "watch needs exactly one stage")
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	w := &Watcher{
		stage:      job.Stages[0],
		size:       job.Size,
		extensions: job.Extensions,
		processor:  processor,
		quiet:      DefaultQuiet,
		logger:     logging.NewNop(),
		timers:     make(map[string]*time.Timer),
		fatal:      make(chan error, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sem == nil {
		w.sem = concurrency.NewSemaphore(concurrency.NewPool(0).Size())
	}
	if len(w.extensions) == 0 {
		w.extensions = storage.DefaultExtensions
	}
	return w, nil
}

// Run converts the images already present, then every image created or
// rewritten until ctx is done. It returns nil when ctx ends the watch and the
// filesystem error when a write fails.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.stage.OutputDir, 0o755); err != nil {
		return apperrors.NewFilesystem("mkdir", w.stage.OutputDir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.NewFilesystem("watch", w.stage.SourceDir, err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.stage.SourceDir); err != nil {
		return apperrors.NewFilesystem("watch", w.stage.SourceDir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		w.stopTimers()
		w.wg.Wait()
	}()

	names, err := storage.ListImages(w.stage.SourceDir, w.extensions)
	if err != nil {
		return err
	}
	for _, name := range names {
		w.schedule(ctx, name, 0)
	}
	w.logger.Info("watching",
		logging.File(w.stage.SourceDir),
		logging.Modality(string(w.processor.Modality())),
		logging.Count("existing", len(names)),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.fatal:
			return err
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !storage.HasExtension(name, w.extensions) {
				continue
			}
			w.schedule(ctx, name, w.quiet)
		}
	}
}

// schedule converts name once it has been quiet for delay, restarting the wait
// if it is already pending.
func (w *Watcher) schedule(ctx context.Context, name string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[name]; ok && t.Stop() {
		t.Reset(delay)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[name] == t {
			delete(w.timers, name)
		}
		w.mu.Unlock()
		w.convert(ctx, name)
	})
	w.timers[name] = t
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, name)
	}
}

func (w *Watcher) convert(ctx context.Context, name string) {
	if ctx.Err() != nil {
		return
	}
	if err := w.sem.Acquire(ctx); err != nil {
		return
	}
	defer w.sem.Release()

	item := WorkItem{Name: name, Stages: []Stage{w.stage}, Size: w.size}.Items()[0]
	res := w.processor.Process(ctx, item)

	if w.collector != nil {
		w.collector.RecordItem(string(res.Modality), res.Outcome.String(), res.Duration, res.Bytes)
	}
	if res.OK() {
		w.logger.Info("converted", logging.Name(name), logging.File(res.Output), logging.Elapsed(res.Duration))
	} else {
		w.logger.Warn("conversion "+res.Outcome.String(), logging.Name(name), zap.Error(res.Err))
	}
	if w.onResult != nil {
		w.onResult(res)
	}
	if res.Outcome == convert.OutcomeFatal {
		select {
		case w.fatal <- res.Err:
		default:
		}
	}
}
