package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// Interpolation selects how a resize samples the source image.
type Interpolation int

const (
	// InterpolationNearest copies the nearest source pixel. Required for label images.
	InterpolationNearest Interpolation = iota
	// InterpolationBilinear blends the four nearest source pixels.
	InterpolationBilinear
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationNearest:
		return "nearest"
	case InterpolationBilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("interpolation(%d)", int(i))
	}
}

// ParseInterpolation maps a config value to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "nearest":
		return InterpolationNearest, nil
	case "bilinear", "linear", "":
		return InterpolationBilinear, nil
	default:
		return 0, apperrors.NewInvalid("interpolation", s, "expected nearest or bilinear")
	}
}

// Size is a resize target. The zero Size means "keep the original resolution".
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether no resize was requested.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Matches reports whether r already has the target size.
func (s Size) Matches(r image.Rectangle) bool {
	return r.Dx() == s.Width && r.Dy() == s.Height
}

func (s Size) String() string {
	if s.IsZero() {
		return "original"
	}
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Resizer resizes decoded images to a fixed policy.
type Resizer interface {
	Resize(img image.Image, size Size) image.Image
}

// NativeResizer implements Resizer using pure Go libraries.
type NativeResizer struct {
	Interpolation Interpolation
}

// NewResizer returns a resizer using the given interpolation.
func NewResizer(interp Interpolation) *NativeResizer {
	return &NativeResizer{Interpolation: interp}
}

// Resize scales img to size. It returns img unchanged when size is zero or
// already matches.
func (r *NativeResizer) Resize(img image.Image, size Size) image.Image {
	if size.IsZero() || size.Matches(img.Bounds()) {
		return img
	}
	switch r.Interpolation {
	case InterpolationNearest:
		if gray, ok := img.(*image.Gray); ok {
			return ResizeNearestGray(gray, size)
		}
		dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
		nearestScale(dst, img)
		return dst
	default:
		return resize.Resize(uint(size.Width), uint(size.Height), img, resize.Bilinear)
	}
}

// ResizeNearestGray scales a greyscale image by index sampling. Every output
// value is copied from a source pixel, so no new values can appear. The
// nfnt NearestNeighbor filter averages taps when downscaling and is not used here.
func ResizeNearestGray(src *image.Gray, size Size) *image.Gray {
	sb := src.Bounds()
	if size.IsZero() || size.Matches(sb) {
		out := image.NewGray(image.Rect(0, 0, sb.Dx(), sb.Dy()))
		draw.Draw(out, out.Bounds(), src, sb.Min, draw.Src)
		return out
	}
	sw, sh := sb.Dx(), sb.Dy()
	dw, dh := size.Width, size.Height
	dst := image.NewGray(image.Rect(0, 0, dw, dh))

	xs := make([]int, dw)
	for x := range xs {
		xs[x] = x * sw / dw
	}
	for y := 0; y < dh; y++ {
		sy := y * sh / dh
		srcRow := src.Pix[src.PixOffset(sb.Min.X, sb.Min.Y+sy):]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+dw]
		for x, sx := range xs {
			dstRow[x] = srcRow[sx]
		}
	}
	return dst
}

func nearestScale(dst draw.Image, src image.Image) {
	sb := src.Bounds()
	db := dst.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	dw, dh := db.Dx(), db.Dy()
	for y := 0; y < dh; y++ {
		sy := sb.Min.Y + y*sh/dh
		for x := 0; x < dw; x++ {
			sx := sb.Min.X + x*sw/dw
			dst.Set(x, y, src.At(sx, sy))
		}
	}
}
