package convert

import (
	"context"
	"time"

	"github.com/xXAI-botXx/3xM/imaging"
)

// RGBProcessor resizes color images, bilinear unless configured otherwise.
type RGBProcessor struct {
	opts    Options
	resizer imaging.Resizer
}

func NewRGBProcessor(opts ...Option) *RGBProcessor {
	o := newOptions(opts)
	return &RGBProcessor{opts: o, resizer: imaging.NewResizer(o.Interpolation)}
}

func (p *RGBProcessor) Modality() Modality { return ModalityRGB }

func (p *RGBProcessor) Process(ctx context.Context, item Item) Result {
	start := time.Now()

	img, err := imaging.Load(item.Source)
	if err != nil {
		return finish(item, ModalityRGB, start, Result{}, err)
	}

	n, err := writeImage(item.Output, p.resizer.Resize(img, item.Size), p.opts.JPEGQuality)
	return finish(item, ModalityRGB, start, Result{Output: item.Output, Bytes: n}, err)
}

// DepthProcessor keeps the G channel of a depth image and resizes it, bilinear
// unless configured otherwise.
type DepthProcessor struct {
	opts    Options
	resizer imaging.Resizer
}

func NewDepthProcessor(opts ...Option) *DepthProcessor {
	o := newOptions(opts)
	return &DepthProcessor{opts: o, resizer: imaging.NewResizer(o.Interpolation)}
}

func (p *DepthProcessor) Modality() Modality { return ModalityDepth }

func (p *DepthProcessor) Process(ctx context.Context, item Item) Result {
	start := time.Now()

	img, err := imaging.Load(item.Source)
	if err != nil {
		return finish(item, ModalityDepth, start, Result{}, err)
	}

	depth := p.resizer.Resize(imaging.GreenChannel(img), item.Size)
	n, err := writeImage(item.Output, depth, p.opts.JPEGQuality)
	return finish(item, ModalityDepth, start, Result{Output: item.Output, Bytes: n}, err)
}
