package mask

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
)

// MaxLabel is the largest instance label an 8-bit LabelMask can hold.
const MaxLabel = 255

// Color is one RGB mask color. Equality is exact.
type Color struct {
	R, G, B uint8
}

// Background is the reserved color that always maps to label 0.
var Background = Color{}

// IsBackground reports whether c is the background color.
func (c Color) IsBackground() bool {
	return c == Background
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Compare orders colors lexicographically on (B, G, R), the channel order the
// dataset tooling has always stored and sorted masks in. It returns -1, 0 or +1.
func (c Color) Compare(o Color) int {
	if r := cmp.Compare(c.B, o.B); r != 0 {
		return r
	}
	if r := cmp.Compare(c.G, o.G); r != 0 {
		return r
	}
	return cmp.Compare(c.R, o.R)
}

// RawMask is a row-major grid of mask colors.
type RawMask struct {
	Width  int
	Height int
	Pix    []Color
}

// NewRawMask allocates an all-background mask.
func NewRawMask(width, height int) *RawMask {
	return &RawMask{
		Width:  width,
		Height: height,
		Pix:    make([]Color, width*height),
	}
}

// At returns the color at (x, y).
func (m *RawMask) At(x, y int) Color {
	return m.Pix[y*m.Width+x]
}

// Set stores the color at (x, y).
func (m *RawMask) Set(x, y int, c Color) {
	m.Pix[y*m.Width+x] = c
}

// Histogram returns the pixel count of every distinct color.
func (m *RawMask) Histogram() map[Color]int {
	counts := make(map[Color]int)
	for _, c := range m.Pix {
		counts[c]++
	}
	return counts
}

// RawMaskFromImage copies img into a RawMask. Channels are read without
// premultiplication and alpha is dropped, so a translucent mask keeps its colors.
func RawMaskFromImage(img image.Image) *RawMask {
	b := img.Bounds()
	m := NewRawMask(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < m.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+m.Width*4]
			for x := 0; x < m.Width; x++ {
				m.Pix[y*m.Width+x] = Color{R: row[x*4], G: row[x*4+1], B: row[x*4+2]}
			}
		}
	case *image.Gray:
		for y := 0; y < m.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+m.Width]
			for x := 0; x < m.Width; x++ {
				v := row[x]
				m.Pix[y*m.Width+x] = Color{R: v, G: v, B: v}
			}
		}
	default:
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				m.Pix[y*m.Width+x] = Color{R: c.R, G: c.G, B: c.B}
			}
		}
	}
	return m
}

// Image returns the mask as an opaque NRGBA image.
func (m *RawMask) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, c := range m.Pix {
		img.Pix[i*4] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// LabelMask is a row-major grid of 8-bit instance labels; 0 is background.
type LabelMask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewLabelMask allocates an all-background label mask.
func NewLabelMask(width, height int) *LabelMask {
	return &LabelMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the label at (x, y).
func (m *LabelMask) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// Histogram returns the pixel count of every distinct label.
func (m *LabelMask) Histogram() map[uint8]int {
	var counts [MaxLabel + 1]int
	for _, v := range m.Pix {
		counts[v]++
	}
	out := make(map[uint8]int)
	for v, n := range counts {
		if n > 0 {
			out[uint8(v)] = n
		}
	}
	return out
}

// Labels returns the distinct labels present, ascending.
func (m *LabelMask) Labels() []uint8 {
	var seen [MaxLabel + 1]bool
	for _, v := range m.Pix {
		seen[v] = true
	}
	var out []uint8
	for v, ok := range seen {
		if ok {
			out = append(out, uint8(v))
		}
	}
	return out
}

// Gray returns the label mask as a greyscale image sharing no memory with m.
func (m *LabelMask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Pix)
	return img
}

// LabelMaskFromGray copies a greyscale image into a LabelMask.
func LabelMaskFromGray(img *image.Gray) *LabelMask {
	b := img.Bounds()
	m := NewLabelMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(m.Pix[y*m.Width:(y+1)*m.Width], img.Pix[off:off+m.Width])
	}
	return m
}
