package pipeline

import (
	"go.uber.org/zap"

	"github.com/xXAI-botXx/3xM/convert"
	"github.com/xXAI-botXx/3xM/logging"
)

// Reporter observes a run. Report is called from worker goroutines after each
// item and must be safe for concurrent use.
type Reporter interface {
	Start(job Job, total int)
	Report(p Snapshot, results []convert.Result)
	Finish(s *Summary)
}

// LogReporter writes progress lines and failures to a logger.
type LogReporter struct {
	logger logging.Logger
	// Every logs a progress line after this many items; the last item always logs.
	Every int
	Width int
}

// NewLogReporter creates a reporter logging a progress line every n items.
func NewLogReporter(logger logging.Logger, every int) *LogReporter {
	if every <= 0 {
		every = 1
	}
	return &LogReporter{logger: logger, Every: every, Width: 40}
}

func (r *LogReporter) Start(job Job, total int) {
	r.logger.Info("run started",
		logging.Name(job.Name),
		logging.File(job.ListDir),
		logging.Count("items", total),
	)
}

func (r *LogReporter) Report(p Snapshot, results []convert.Result) {
	for _, res := range results {
		switch {
		case res.OK():
			r.logger.Debug("item done",
				logging.Name(res.Name),
				logging.Modality(string(res.Modality)),
				logging.File(res.Output),
				logging.Elapsed(res.Duration),
			)
		default:
			r.logger.Warn("item "+res.Outcome.String(),
				logging.Name(res.Name),
				logging.Modality(string(res.Modality)),
				logging.Outcome(res.Outcome.String()),
				zap.Error(res.Err),
			)
		}
	}
	if p.Processed%r.Every == 0 || p.Processed == p.Total {
		r.logger.Info(FormatBar(p.Processed, p.Total, r.Width),
			logging.Count("failed", p.Failed),
			logging.Elapsed(p.Elapsed),
		)
	}
}

func (r *LogReporter) Finish(s *Summary) {
	r.logger.Info("run finished",
		logging.Name(s.Job),
		logging.Count("processed", s.Processed),
		logging.Count("total", s.Total),
		logging.Count("failures", s.FailureCount()),
		zap.String("duration", FormatElapsed(s.Elapsed())),
		zap.String("finished", s.Finished.Format("2006-01-02 15:04")),
	)
}

// Reporters fans out to several reporters.
type Reporters []Reporter

func (rs Reporters) Start(job Job, total int) {
	for _, r := range rs {
		r.Start(job, total)
	}
}

func (rs Reporters) Report(p Snapshot, results []convert.Result) {
	for _, r := range rs {
		r.Report(p, results)
	}
}

func (rs Reporters) Finish(s *Summary) {
	for _, r := range rs {
		r.Finish(s)
	}
}

type nopReporter struct{}

func (nopReporter) Start(Job, int)                    {}
func (nopReporter) Report(Snapshot, []convert.Result) {}
func (nopReporter) Finish(*Summary)                   {}
