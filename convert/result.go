package convert

import (
	"fmt"
	"time"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// Modality names one image kind of the dataset.
type Modality string

const (
	ModalityRGB   Modality = "rgb"
	ModalityDepth Modality = "depth"
	ModalityMask  Modality = "mask"
)

// Modalities lists every modality in processing order.
var Modalities = []Modality{ModalityRGB, ModalityDepth, ModalityMask}

// ParseModality validates a modality name.
func ParseModality(s string) (Modality, error) {
	for _, m := range Modalities {
		if string(m) == s {
			return m, nil
		}
	}
	return "", apperrors.NewInvalid("modality", s, "expected rgb, depth or mask")
}

// SourceDir is the dataset directory holding the modality's originals.
func (m Modality) SourceDir() string { return string(m) }

// OutputDir is the dataset directory the prepared images are written to.
func (m Modality) OutputDir() string { return string(m) + "-prep" }

// Outcome classifies how one item ended.
type Outcome int

const (
	// OutcomeOK means exactly one output file was written.
	OutcomeOK Outcome = iota
	// OutcomeSkipped means the source could not be loaded; nothing was written.
	OutcomeSkipped
	// OutcomeFailed means the item was rejected; the batch continues.
	OutcomeFailed
	// OutcomeFatal means the filesystem refused a write; the batch must stop.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result reports the processing of one item.
type Result struct {
	Name      string
	Modality  Modality
	Outcome   Outcome
	Err       error
	Output    string
	Bytes     int64
	Instances int
	Duration  time.Duration
}

// OK reports whether the item produced its output.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// OutcomeOf maps an item error to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case apperrors.IsBatchFatal(err):
		return OutcomeFatal
	case apperrors.TypeOf(err) == apperrors.ErrorTypeImageLoad:
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

func finish(item Item, modality Modality, start time.Time, res Result, err error) Result {
	res.Name = item.Name
	res.Modality = modality
	res.Outcome = OutcomeOf(err)
	res.Err = err
	res.Duration = time.Since(start)
	if err != nil {
		res.Output = ""
		res.Bytes = 0
	}
	return res
}
