package mask

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

var (
	red   = Color{R: 255}
	green = Color{G: 255}
	blue  = Color{B: 255}
)

func maskOf(width, height int, pix ...Color) *RawMask {
	m := NewRawMask(width, height)
	copy(m.Pix, pix)
	return m
}

// randomMask builds a mask with n instances scattered over a background.
func randomMask(t *testing.T, seed int64, width, height, n int) *RawMask {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	palette := make([]Color, n)
	for i := range palette {
		palette[i] = Color{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(1 + rng.Intn(255))}
	}
	m := NewRawMask(width, height)
	for i := range m.Pix {
		if rng.Intn(3) == 0 {
			continue
		}
		m.Pix[i] = palette[rng.Intn(n)]
	}
	return m
}

func TestAssignEndToEndExample(t *testing.T) {
	raw := maskOf(2, 2, Background, red, red, green)

	cmap, labels, err := Assign(raw)
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 1, 1, 2}, labels.Pix)
	assert.Equal(t, 3, cmap.Len())
	assert.Equal(t, 2, cmap.Instances())

	l, ok := cmap.Label(red)
	require.True(t, ok)
	assert.Equal(t, uint8(1), l)
	l, ok = cmap.Label(green)
	require.True(t, ok)
	assert.Equal(t, uint8(2), l)

	require.NoError(t, Verify(raw, labels))
}

func TestColorCompareUsesBGROrder(t *testing.T) {
	assert.Equal(t, -1, red.Compare(green))
	assert.Equal(t, -1, green.Compare(blue))
	assert.Equal(t, -1, Color{R: 9, G: 0, B: 1}.Compare(Color{R: 0, G: 1, B: 1}))
	assert.Equal(t, 0, red.Compare(Color{R: 255}))
	assert.Equal(t, 1, blue.Compare(red))
}

func TestAssignOnlyBackground(t *testing.T) {
	raw := NewRawMask(3, 2)

	cmap, labels, err := Assign(raw)
	require.NoError(t, err)

	assert.Equal(t, make([]uint8, 6), labels.Pix)
	assert.Equal(t, 1, cmap.Len())
	assert.Equal(t, 0, cmap.Instances())
	assert.Equal(t, []uint8{0}, labels.Labels())
}

func TestAssignWithoutBackground(t *testing.T) {
	raw := maskOf(3, 1, blue, red, blue)

	_, labels, err := Assign(raw)
	require.NoError(t, err)

	assert.Equal(t, []uint8{2, 1, 2}, labels.Pix)
	assert.NotContains(t, labels.Labels(), uint8(0))
}

func TestAssignIsDeterministic(t *testing.T) {
	raw := randomMask(t, 7, 64, 48, 40)

	_, first, err := Assign(raw)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, again, err := Assign(raw)
		require.NoError(t, err)
		require.Equal(t, first.Pix, again.Pix)
	}
}

func TestAssignProperties(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		raw := randomMask(t, seed, 40, 30, 1+int(seed)*7)

		_, labels, err := Assign(raw)
		require.NoError(t, err)

		for i, c := range raw.Pix {
			if c.IsBackground() {
				require.Zero(t, labels.Pix[i], "background must map to 0")
			} else {
				require.NotZero(t, labels.Pix[i], "only background may map to 0")
			}
		}

		colorHist := raw.Histogram()
		labelHist := labels.Histogram()
		require.Len(t, labelHist, len(colorHist))
		assert.ElementsMatch(t, countsOf(colorHist), countsOf(labelHist))
		require.NoError(t, Verify(raw, labels))
	}
}

func TestAssignTooManyInstances(t *testing.T) {
	raw := NewRawMask(300, 1)
	for x := 0; x < 256; x++ {
		raw.Set(x, 0, Color{R: uint8(x), G: 1})
	}

	_, _, err := Assign(raw)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeTooManyInstances, apperrors.TypeOf(err))
}

func TestAssignExactlyMaxLabelInstances(t *testing.T) {
	raw := NewRawMask(256, 1)
	for x := 1; x < 256; x++ {
		raw.Set(x, 0, Color{R: uint8(x)})
	}

	cmap, labels, err := Assign(raw)
	require.NoError(t, err)
	assert.Equal(t, MaxLabel, cmap.Instances())
	assert.Len(t, labels.Labels(), 256)
}

func TestVerifyObjectCountMismatch(t *testing.T) {
	raw := maskOf(2, 2, Background, red, red, green)
	labels := &LabelMask{Width: 2, Height: 2, Pix: []uint8{0, 1, 1, 1}}

	err := VerifyObjectCount(raw, labels)
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrorTypeObjectCountMismatch, appErr.Type)
	assert.Equal(t, 3, appErr.Details["expected"])
	assert.Equal(t, 2, appErr.Details["actual"])

	assert.Equal(t, apperrors.ErrorTypeObjectCountMismatch, apperrors.TypeOf(Verify(raw, labels)))
}

func TestVerifyPixelCountMismatch(t *testing.T) {
	raw := maskOf(3, 2, Background, red, red, red, green, green)
	// Same number of objects, but label 1 now covers four pixels.
	labels := &LabelMask{Width: 3, Height: 2, Pix: []uint8{0, 1, 1, 1, 1, 2}}

	require.NoError(t, VerifyObjectCount(raw, labels))

	err := VerifyPixelCounts(raw, labels)
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrorTypePixelCountMismatch, appErr.Type)
	assert.Equal(t, []int{1, 2, 3}, appErr.Details["expected_counts"])
	assert.Equal(t, []int{1, 1, 4}, appErr.Details["actual_counts"])
	assert.Equal(t, apperrors.ErrorTypePixelCountMismatch, apperrors.TypeOf(Verify(raw, labels)))

	// Two-object mask where both labels get a count that no color has.
	raw = maskOf(3, 1, red, red, green)
	labels = &LabelMask{Width: 3, Height: 1, Pix: []uint8{1, 1, 1}}
	assert.Equal(t, apperrors.ErrorTypeObjectCountMismatch, apperrors.TypeOf(Verify(raw, labels)))
	labels = &LabelMask{Width: 3, Height: 1, Pix: []uint8{1, 2, 3}}
	assert.Equal(t, apperrors.ErrorTypeObjectCountMismatch, apperrors.TypeOf(Verify(raw, labels)))
}

func TestVerifyAcceptsSwappedEqualCounts(t *testing.T) {
	raw := maskOf(2, 1, red, green)
	// Pairing is not checked: red and green share a pixel count.
	labels := &LabelMask{Width: 2, Height: 1, Pix: []uint8{2, 1}}

	assert.NoError(t, Verify(raw, labels))
}

func TestRawMaskFromImageIgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0x80})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0xff})

	raw := RawMaskFromImage(img)
	assert.Equal(t, raw.Pix[0], raw.Pix[1])
	assert.Equal(t, Color{R: 10, G: 20, B: 30}, raw.Pix[0])
}

func TestRawMaskFromImageSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 255, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	raw := RawMaskFromImage(sub)
	require.Equal(t, 2, raw.Width)
	assert.Equal(t, red, raw.At(0, 0))
	assert.Equal(t, Background, raw.At(1, 1))
}

func TestLabelMaskGrayRoundTrip(t *testing.T) {
	labels := &LabelMask{Width: 3, Height: 2, Pix: []uint8{0, 1, 2, 3, 4, 5}}

	back := LabelMaskFromGray(labels.Gray())
	assert.Equal(t, labels, back)
}
