package imaging

import (
	"image"
	"image/color"
)

// GreenChannel returns the G channel of img as a greyscale image. Depth maps are
// stored as three identical channels, and G is the one the dataset keeps.
// Greyscale inputs are copied through; 16-bit greyscale keeps its high byte.
func GreenChannel(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[off:off+w])
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = src.Pix[off+x*2]
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = src.Pix[off+x*4+1]
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				out.Pix[y*out.Stride+x] = c.G
			}
		}
	}
	return out
}
