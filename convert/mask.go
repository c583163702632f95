package convert

import (
	"context"
	"image"
	"time"

	"github.com/xXAI-botXx/3xM/imaging"
	"github.com/xXAI-botXx/3xM/mask"
)

// MaskConverter turns color-coded instance masks into verified 8-bit label images.
type MaskConverter struct {
	opts Options
}

// NewMaskConverter creates a MaskConverter.
func NewMaskConverter(opts ...Option) *MaskConverter {
	return &MaskConverter{opts: newOptions(opts)}
}

func (c *MaskConverter) Modality() Modality { return ModalityMask }

// Process loads the mask at item.Source, labels and verifies it, resizes it with
// nearest-neighbour sampling and writes it as PNG. A source that cannot be loaded
// is skipped; a mask that fails verification produces no output.
func (c *MaskConverter) Process(ctx context.Context, item Item) Result {
	start := time.Now()

	img, err := imaging.Load(item.Source)
	if err != nil {
		return finish(item, ModalityMask, start, Result{}, err)
	}

	labels, instances, err := ConvertMask(img, item.Size)
	if err != nil {
		return finish(item, ModalityMask, start, Result{}, err)
	}

	out := LabelOutputPath(item.Output)
	n, err := writeImage(out, labels, c.opts.JPEGQuality)
	return finish(item, ModalityMask, start, Result{Output: out, Bytes: n, Instances: instances}, err)
}

// ConvertMask labels and verifies img and scales the label image to size. It
// returns the label image and the number of instances found.
func ConvertMask(img image.Image, size imaging.Size) (*image.Gray, int, error) {
	raw := mask.RawMaskFromImage(img)

	cmap, labels, err := mask.Assign(raw)
	if err != nil {
		return nil, 0, err
	}
	if err := mask.Verify(raw, labels); err != nil {
		return nil, 0, err
	}
	return imaging.ResizeNearestGray(labels.Gray(), size), cmap.Instances(), nil
}
