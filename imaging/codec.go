package imaging

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality matches the quality the dataset has always been written with.
const DefaultJPEGQuality = 95

// EncodeOptions configures Encode.
type EncodeOptions struct {
	Format  Format
	Quality int
}

// FormatFromPath picks the encoding from the file extension. Unknown extensions
// fall back to PNG, which is lossless for label images.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// Decode reads one image from r using any registered codec.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(bufio.NewReader(r))
}

// Load opens and decodes the image at path. Any failure, a missing file
// included, is reported as an image_load error.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewImageLoad(path, err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, apperrors.NewImageLoad(path, err)
	}
	return img, nil
}

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	switch opts.Format {
	case FormatJPEG:
		quality := opts.Quality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatPNG, "":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}
