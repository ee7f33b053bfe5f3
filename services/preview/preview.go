// Package preview validates uploaded food photos and shrinks them into JPEG
// payloads and thumbnails.
package preview

import (
	"bytes"
	"calorie-tracker/apperr"
	"calorie-tracker/enums"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegMime = "image/jpeg"

type Options struct {
	MaxWidth  int
	MaxHeight int
	// Quality is in (0, 1], like a canvas toDataURL quality factor.
	Quality float64
}

var (
	ThumbnailProfile  = Options{MaxWidth: 400, MaxHeight: 400, Quality: 0.7}
	AggressiveProfile = Options{MaxWidth: 200, MaxHeight: 200, Quality: 0.5}
	UploadProfile     = Options{MaxWidth: 1024, MaxHeight: 1024, Quality: 0.85}
)

// Result is an encoded image ready to send or store.
type Result struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
	// Fallback is set when the original bytes were returned unchanged
	// because decoding or encoding failed.
	Fallback bool
}

// ValidateUpload rejects non-image MIME types and files over maxBytes
// before any decoding happens. maxBytes <= 0 means the 5 MB default.
func ValidateUpload(size int64, mimeType string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = enums.MaxUploadBytes
	}
	if !IsImageMime(mimeType) {
		return apperr.Validation("Please select an image file (png, jpg, jpeg)")
	}
	if size > maxBytes {
		return apperr.Validation(fmt.Sprintf("Image size should be less than %s", humanize.IBytes(uint64(maxBytes))))
	}
	return nil
}

func IsImageMime(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Resize decodes src, scales it to fit inside the bounds without upscaling,
// and re-encodes it as JPEG.
func Resize(src []byte, opts Options) (Result, error) {
	if len(src) == 0 {
		return Result{}, errors.New("empty image")
	}
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG has no alpha; paint transparent areas white instead of black
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return Result{Data: out.Bytes(), MimeType: jpegMime, Width: width, Height: height}, nil
}

// Thumbnail produces the stored preview: a 400px pass, then a 200px pass if
// the first one is still over 100 KB. Any failure returns the original.
func Thumbnail(src []byte, mimeType string) Result {
	first, err := Resize(src, ThumbnailProfile)
	if err != nil {
		return Result{Data: src, MimeType: mimeType, Fallback: true}
	}
	if len(first.Data) <= enums.ThumbnailTargetBytes {
		return first
	}
	second, err := Resize(src, AggressiveProfile)
	if err != nil {
		return first
	}
	return second
}

// ForUpload shrinks a photo before it is sent for analysis, falling back to
// the original bytes when it cannot be decoded.
func ForUpload(src []byte, mimeType string) Result {
	result, err := Resize(src, UploadProfile)
	if err != nil || len(result.Data) >= len(src) {
		return Result{Data: src, MimeType: mimeType, Fallback: err != nil}
	}
	return result
}

func DataURI(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 1, 1
	}
	scale := 1.0
	if maxWidth > 0 && width > maxWidth {
		scale = math.Min(scale, float64(maxWidth)/float64(width))
	}
	if maxHeight > 0 && height > maxHeight {
		scale = math.Min(scale, float64(maxHeight)/float64(height))
	}
	if scale >= 1 {
		return width, height
	}
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func jpegQuality(q float64) int {
	if q <= 0 || q > 1 {
		return jpeg.DefaultQuality
	}
	quality := int(math.Round(q * 100))
	if quality < 1 {
		quality = 1
	}
	return quality
}
