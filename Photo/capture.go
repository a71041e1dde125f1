package Photo

import (
	"bytes"
	"errors"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	ErrTooHeavy      = errors.New("La foto es muy pesada (máx. 12MB).")
	ErrStillTooLarge = errors.New("La foto sigue siendo muy grande. Probá con una foto más cercana o con menos resolución.")
	ErrUnprocessable = errors.New("No se pudo procesar la foto")
)

// Options bound the size of a captured photo before and after compression.
type Options struct {
	// MaxInputBytes rejects the upload before decoding.
	MaxInputBytes int64
	// MaxSide is the longest side, in pixels, after downscaling.
	MaxSide int
	// Quality is the JPEG quality factor (1-100).
	Quality int
	// MaxEncodedBytes is the ceiling for the re-encoded JPEG.
	MaxEncodedBytes int
}

// DefaultOptions keep the base64 payload under ~1.2MB so it fits the request body limit.
var DefaultOptions = Options{
	MaxInputBytes:   12 * 1024 * 1024,
	MaxSide:         1280,
	Quality:         75,
	MaxEncodedBytes: 900 * 1024,
}

// Encoded is a compressed JPEG ready to be stored.
type Encoded struct {
	Data   []byte
	Width  int
	Height int
}

// Capture runs DefaultOptions.Capture.
func Capture(r io.Reader, size int64) (*Encoded, error) {
	return DefaultOptions.Capture(r, size)
}

// Capture decodes a user supplied image, downsizes it and re-encodes it as
// JPEG. size is the declared upload size, or -1 when unknown.
func (o Options) Capture(r io.Reader, size int64) (*Encoded, error) {
	if size > o.MaxInputBytes {
		return nil, ErrTooHeavy
	}

	data, err := io.ReadAll(io.LimitReader(r, o.MaxInputBytes+1))
	if err != nil {
		return nil, ErrUnprocessable
	}
	if int64(len(data)) > o.MaxInputBytes {
		return nil, ErrTooHeavy
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrUnprocessable
	}

	return o.Compress(img)
}

// Compress scales img down so neither side exceeds MaxSide (never up) and
// encodes it as JPEG at the configured quality.
func (o Options) Compress(img image.Image) (*Encoded, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, ErrUnprocessable
	}

	width, height := ScaledSize(bounds.Dx(), bounds.Dy(), o.MaxSide)
	if width != bounds.Dx() || height != bounds.Dy() {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(o.Quality)); err != nil {
		return nil, ErrUnprocessable
	}
	if buf.Len() > o.MaxEncodedBytes {
		return nil, ErrStillTooLarge
	}

	return &Encoded{Data: buf.Bytes(), Width: width, Height: height}, nil
}

// ScaledSize returns the dimensions after fitting width x height inside a
// maxSide square. The ratio is capped at 1 and each side is at least 1px.
func ScaledSize(width, height, maxSide int) (int, int) {
	ratio := math.Min(1, float64(maxSide)/float64(max(width, height)))
	w := max(1, int(math.Round(float64(width)*ratio)))
	h := max(1, int(math.Round(float64(height)*ratio)))
	return w, h
}
