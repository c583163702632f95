package convert

import (
	"context"
	"image"
	"io"
	"path/filepath"
	"strings"

	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/imaging"
	"github.com/xXAI-botXx/3xM/storage"
)

// Item is one source image and the path its prepared version is written to.
type Item struct {
	Name   string
	Source string
	Output string
	Size   imaging.Size
}

// Processor prepares single items of one modality.
type Processor interface {
	Modality() Modality
	Process(ctx context.Context, item Item) Result
}

// Options configures the processors.
type Options struct {
	JPEGQuality int
	// Interpolation is used by the rgb and depth processors. Masks always use
	// nearest-neighbour sampling.
	Interpolation imaging.Interpolation
}

// Option configures a processor.
type Option func(*Options)

// WithJPEGQuality sets the quality used for JPEG outputs.
func WithJPEGQuality(q int) Option {
	return func(o *Options) { o.JPEGQuality = q }
}

// WithInterpolation sets how rgb and depth images are resized.
func WithInterpolation(interp imaging.Interpolation) Option {
	return func(o *Options) { o.Interpolation = interp }
}

func newOptions(opts []Option) Options {
	o := Options{JPEGQuality: imaging.DefaultJPEGQuality, Interpolation: imaging.InterpolationBilinear}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the processor for modality.
func New(modality Modality, opts ...Option) (Processor, error) {
	switch modality {
	case ModalityRGB:
		return NewRGBProcessor(opts...), nil
	case ModalityDepth:
		return NewDepthProcessor(opts...), nil
	case ModalityMask:
		return NewMaskConverter(opts...), nil
	default:
		return nil, apperrors.NewInvalid("modality", modality, "no processor")
	}
}

// writeImage encodes img to path in the format its extension names.
func writeImage(path string, img image.Image, quality int) (int64, error) {
	opts := imaging.EncodeOptions{Format: imaging.FormatFromPath(path), Quality: quality}
	n, err := storage.WriteFile(path, func(w io.Writer) error {
		return imaging.Encode(w, img, opts)
	})
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return 0, err
		}
		return 0, apperrors.NewEncode(path, err)
	}
	return n, nil
}

// LabelOutputPath returns path with a .png extension. Label images are never
// written lossy.
func LabelOutputPath(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".png") {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".png"
}
