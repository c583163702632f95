// Package testutil builds image fixtures and dataset layouts for tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xXAI-botXx/3xM/imaging"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/mask"
)

// Context returns a context that times out after 30 seconds and is cancelled
// when the test ends.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Logger returns a logger that records every entry at debug level and above.
func Logger(t *testing.T) (logging.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.FromZap(zap.New(core)), logs
}

// WriteImage encodes img to path, choosing the codec by extension.
func WriteImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	var buf bytes.Buffer
	opts := imaging.EncodeOptions{Format: imaging.FormatFromPath(path), Quality: 100}
	require.NoError(t, imaging.Encode(&buf, img, opts))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// WriteCorrupt writes bytes that no image codec accepts.
func WriteCorrupt(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG truncated"), 0o644))
}

// MaskImage renders a color mask, row-major.
func MaskImage(width, height int, pix ...mask.Color) *image.NRGBA {
	raw := mask.NewRawMask(width, height)
	copy(raw.Pix, pix)
	return raw.Image()
}

// RandomMask renders a mask with up to n instances scattered over a background.
func RandomMask(seed int64, width, height, n int) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	palette := make([]mask.Color, n)
	for i := range palette {
		palette[i] = mask.Color{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(1 + rng.Intn(255))}
	}
	raw := mask.NewRawMask(width, height)
	for i := range raw.Pix {
		if rng.Intn(3) > 0 {
			raw.Pix[i] = palette[rng.Intn(n)]
		}
	}
	return raw.Image()
}

// RGBImage renders a horizontal gradient.
func RGBImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(x * 255 / max(width-1, 1))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8(y), A: 255})
		}
	}
	return img
}

// DepthImage renders a three-channel depth map whose G channel holds the depth.
func DepthImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := uint8((x + y) % 256)
			img.SetNRGBA(x, y, color.NRGBA{R: d / 2, G: d, B: d / 3, A: 255})
		}
	}
	return img
}

// Dataset lays out root/rgb, root/depth and root/mask with one image per name.
func Dataset(t *testing.T, root string, width, height int, names ...string) {
	t.Helper()
	for i, name := range names {
		WriteImage(t, filepath.Join(root, "rgb", name), RGBImage(width, height))
		WriteImage(t, filepath.Join(root, "depth", name), DepthImage(width, height))
		WriteImage(t, filepath.Join(root, "mask", name), RandomMask(int64(i+1), width, height, 5))
	}
}
