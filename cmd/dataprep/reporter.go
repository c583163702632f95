package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/xXAI-botXx/3xM/convert"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/pipeline"
)

func isTerminalFD(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newReporter draws a progress bar on interactive terminals and falls back to
// log lines everywhere else.
func newReporter(w io.Writer, logger logging.Logger) pipeline.Reporter {
	if isTerminal(w) {
		return pipeline.Reporters{&barReporter{out: w}, pipeline.NewLogReporter(logger.Named("progress"), 1<<30)}
	}
	return pipeline.NewLogReporter(logger.Named("progress"), 100)
}

// barReporter renders a progressbar. Item failures are left to the log reporter.
// Snapshots arrive from several workers in any order, so the bar advances by
// one per report and the failure count only grows.
type barReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar

	mu     sync.Mutex
	failed int
}

func (r *barReporter) Start(job pipeline.Job, total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(job.Name),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("img"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.out) }),
	)
}

func (r *barReporter) Report(p pipeline.Snapshot, _ []convert.Result) {
	r.mu.Lock()
	if p.Failed > r.failed {
		r.failed = p.Failed
		r.bar.Describe(fmt.Sprintf("%d failed", p.Failed))
	}
	r.mu.Unlock()
	_ = r.bar.Add(1)
}

func (r *barReporter) Finish(s *pipeline.Summary) {
	_ = r.bar.Finish()
}
