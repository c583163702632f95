package pipeline

import (
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xXAI-botXx/3xM/convert"
	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/json"
	"github.com/xXAI-botXx/3xM/metrics"
	"github.com/xXAI-botXx/3xM/storage"
)

// Failure records one item that produced no output.
type Failure struct {
	Name     string `json:"name"`
	Modality string `json:"modality"`
	Outcome  string `json:"outcome"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

func failureOf(res convert.Result) Failure {
	return Failure{
		Name:     res.Name,
		Modality: string(res.Modality),
		Outcome:  res.Outcome.String(),
		Kind:     string(apperrors.TypeOf(res.Err)),
		Message:  res.Err.Error(),
	}
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Job      string
	Started  time.Time
	Finished time.Time
	Workers  int
	// Total is the number of names found; Processed those whose stages all ran.
	Total     int
	Processed int
	Canceled  bool

	mu       sync.Mutex
	outputs  map[convert.Modality]int
	bytes    map[convert.Modality]int64
	failures []Failure
	errs     apperrors.ErrorChain
}

func newSummary(runID string, job Job, workers int) *Summary {
	return &Summary{
		RunID:   runID,
		Job:     job.Name,
		Started: time.Now(),
		Workers: workers,
		outputs: make(map[convert.Modality]int),
		bytes:   make(map[convert.Modality]int64),
	}
}

func (s *Summary) record(res convert.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.OK() {
		s.outputs[res.Modality]++
		s.bytes[res.Modality] += res.Bytes
		return
	}
	s.failures = append(s.failures, failureOf(res))
	s.errs.Add(res.Err)
}

// Errors returns the item errors of the run.
func (s *Summary) Errors() *apperrors.ErrorChain {
	return &s.errs
}

// Outputs returns the number of files written for modality.
func (s *Summary) Outputs(m convert.Modality) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputs[m]
}

// Bytes returns the number of bytes written for modality.
func (s *Summary) Bytes(m convert.Modality) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes[m]
}

// Failures returns the failed items sorted by name, then modality.
func (s *Summary) Failures() []Failure {
	s.mu.Lock()
	out := slices.Clone(s.failures)
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b Failure) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Modality, b.Modality)
	})
	return out
}

// FailureCount returns the number of failed items.
func (s *Summary) FailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failures)
}

// Elapsed returns the wall time of the run.
func (s *Summary) Elapsed() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}

// Report is the JSON document written after a run.
type Report struct {
	Version   string           `json:"version" default:"1"`
	RunID     string           `json:"run_id"`
	Job       string           `json:"job"`
	Started   time.Time        `json:"started"`
	Finished  time.Time        `json:"finished"`
	Elapsed   string           `json:"elapsed"`
	Workers   int              `json:"workers"`
	Total     int              `json:"total"`
	Processed int              `json:"processed"`
	Canceled  bool             `json:"canceled,omitempty"`
	Outputs   map[string]int   `json:"outputs"`
	Bytes     map[string]int64 `json:"bytes"`
	Failures  []Failure        `json:"failures"`
	Error     string           `json:"error,omitempty"`
	Metrics   []metrics.Metric `json:"metrics,omitempty"`
}

// NewReport builds the report of s. runErr is the error Run returned, if any.
func NewReport(s *Summary, runErr error, collector *metrics.Collector) *Report {
	r := &Report{
		RunID:     s.RunID,
		Job:       s.Job,
		Started:   s.Started,
		Finished:  s.Finished,
		Elapsed:   FormatElapsed(s.Elapsed()),
		Workers:   s.Workers,
		Total:     s.Total,
		Processed: s.Processed,
		Canceled:  s.Canceled,
		Outputs:   make(map[string]int),
		Bytes:     make(map[string]int64),
		Failures:  s.Failures(),
	}
	s.mu.Lock()
	for m, n := range s.outputs {
		r.Outputs[string(m)] = n
	}
	for m, n := range s.bytes {
		r.Bytes[string(m)] = n
	}
	s.mu.Unlock()

	if r.Failures == nil {
		r.Failures = []Failure{}
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	if collector != nil {
		r.Metrics = collector.Snapshot()
	}
	return r
}

// Encode writes the report as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// WriteReport writes the report to path, creating parent directories.
func WriteReport(path string, r *Report) error {
	_, err := storage.WriteFile(path, r.Encode)
	if err != nil && apperrors.TypeOf(err) != apperrors.ErrorTypeFilesystem {
		return apperrors.NewEncode(path, err)
	}
	return err
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(r io.Reader) (*Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}
