package pipeline

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Progress counts completed items of one run. It is safe for concurrent use.
type Progress struct {
	total     int
	processed atomic.Int64
	failed    atomic.Int64
	started   time.Time
}

// NewProgress starts tracking a run of total items.
func NewProgress(total int) *Progress {
	return &Progress{total: total, started: time.Now()}
}

// Done records one finished item and returns the new snapshot.
func (p *Progress) Done(failed bool) Snapshot {
	if failed {
		p.failed.Add(1)
	}
	p.processed.Add(1)
	return p.Snapshot()
}

// Snapshot returns the current counts. Counts may be stale by the time they are read.
func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		Processed: int(p.processed.Load()),
		Failed:    int(p.failed.Load()),
		Total:     p.total,
		Elapsed:   time.Since(p.started),
	}
}

// Snapshot is a point-in-time view of a Progress.
type Snapshot struct {
	Processed int
	Failed    int
	Total     int
	Elapsed   time.Duration
}

// Fraction returns processed/total, or 1 for an empty run.
func (s Snapshot) Fraction() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Processed) / float64(s.Total)
}

// Remaining estimates the time left from the average item duration so far.
func (s Snapshot) Remaining() time.Duration {
	if s.Processed == 0 || s.Processed >= s.Total {
		return 0
	}
	perItem := s.Elapsed / time.Duration(s.Processed)
	return perItem * time.Duration(s.Total-s.Processed)
}

// FormatBar renders "[#####     ] 5/10" with a bar of width cells.
func FormatBar(processed, total, width int) string {
	filled := width
	if total > 0 {
		filled = processed * width / total
	}
	filled = min(max(filled, 0), width)
	return fmt.Sprintf("[%s%s] %d/%d", strings.Repeat("#", filled), strings.Repeat(" ", width-filled), processed, total)
}

// FormatElapsed renders d as "D Days H Hours M Minutes".
func FormatElapsed(d time.Duration) string {
	minutes := int(d / time.Minute)
	days := minutes / (24 * 60)
	hours := minutes / 60 % 24
	return fmt.Sprintf("%d Days %d Hours %d Minutes", days, hours, minutes%60)
}
