package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Transform turns a decoded image into the bitmap handed to the engine
type Transform func(img image.Image) *image.Gray

// MaxImagePixels bounds width*height of an image we agree to decode
const MaxImagePixels = 50_000_000

// Preprocess decodes data and applies the category transform
func Preprocess(data []byte, transform Transform) (*image.Gray, error) {
	if _, err := SniffImage(data); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	out := transform(img)
	log.Debug().
		Str("format", format).
		Int("width", out.Bounds().Dx()).
		Int("height", out.Bounds().Dy()).
		Msg("Image preprocessing complete")

	return out, nil
}

// SniffImage checks that data starts with a supported image header whose
// declared size is within MaxImagePixels
func SniffImage(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", &DecodeError{Err: fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)}
	}
	return format, nil
}

// GrayscaleOtsu converts to grayscale, optionally rescales towards
// targetHeight, then binarizes with Otsu's threshold.
func GrayscaleOtsu(targetHeight int) Transform {
	return func(img image.Image) *image.Gray {
		gray := ToGray(img)
		gray = RescaleToHeight(gray, targetHeight)
		return Binarize(gray, OtsuThreshold(gray))
	}
}

// ToGray returns a single-channel copy of img anchored at the origin
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// RescaleToHeight scales gray so its height approaches target. Images already
// within [target/1.5, target*1.5] are left alone, as are small images
// (< 200px) when the target is large. target <= 0 disables rescaling.
func RescaleToHeight(gray *image.Gray, target int) *image.Gray {
	if target <= 0 {
		return gray
	}

	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	if height == 0 {
		return gray
	}

	t := float64(target)
	h := float64(height)
	if h >= t/1.5 && h <= t*1.5 {
		return gray
	}
	if height < 200 && target > 500 {
		return gray
	}

	scale := t / h
	newWidth := int(float64(width) * scale)
	newHeight := int(h * scale)
	if newWidth < 1 || newHeight < 1 {
		return gray
	}

	dst := image.NewGray(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), gray, b, draw.Src, nil)

	log.Debug().
		Int("from_width", width).Int("from_height", height).
		Int("to_width", newWidth).Int("to_height", newHeight).
		Msg("Rescaled image")

	return dst
}

// OtsuThreshold picks the gray level maximizing between-class variance
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride : (y-b.Min.Y)*gray.Stride+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for i, count := range hist {
		sum += float64(i) * float64(count)
	}

	var (
		sumB       float64
		weightB    int
		maxBetween float64
		threshold  int
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		diff := meanB - meanF
		between := float64(weightB) * float64(weightF) * diff * diff

		if between > maxBetween {
			maxBetween = between
			threshold = t
		}
	}

	return uint8(threshold)
}

// Binarize maps pixels above threshold to white and the rest to black
func Binarize(gray *image.Gray, threshold uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, v := range src {
			if v > threshold {
				dst[x] = 255
			}
		}
	}
	return out
}
