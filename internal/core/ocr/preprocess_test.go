package ocr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoToneImage draws dark "text" pixels on a light, slightly noisy background
func twoToneImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 230, G: 228 + uint8(x%4), B: 225, A: 255}
			if y > h/3 && y < 2*h/3 && x%5 < 2 {
				c = color.RGBA{R: 20 + uint8(y%6), G: 25, B: 30, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessProducesBinaryBitmap(t *testing.T) {
	data := encodePNG(t, twoToneImage(60, 30))

	out, err := Preprocess(data, GrayscaleOtsu(0))
	require.NoError(t, err)

	assert.Equal(t, 60, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())

	var black, white int
	for _, v := range out.Pix {
		switch v {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("pixel value %d is neither black nor white", v)
		}
	}
	assert.Positive(t, black)
	assert.Positive(t, white)
	assert.Greater(t, white, black)
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("definitely not an image"), GrayscaleOtsu(0))

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w x h
// grayscale canvas, with no pixel data behind it
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte("\x89PNG\r\n\x1a\n"))

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 0, 0, 0, 0) // 8-bit gray, no interlace

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(chunk)-4))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestPreprocessRejectsOversizedCanvas(t *testing.T) {
	data := pngHeader(100000, 100000)

	_, err := SniffImage(data)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.True(t, errors.Is(err, ErrImageTooLarge))

	_, err = Preprocess(data, GrayscaleOtsu(0))
	require.True(t, errors.As(err, &decodeErr))
	assert.True(t, errors.Is(err, ErrImageTooLarge))
}

func TestSniffImage(t *testing.T) {
	format, err := SniffImage(encodePNG(t, twoToneImage(4, 4)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = SniffImage([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}

func TestOtsuThresholdSeparatesModes(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range gray.Pix {
		if i < 30 {
			gray.Pix[i] = 40
		} else {
			gray.Pix[i] = 200
		}
	}

	th := OtsuThreshold(gray)
	assert.GreaterOrEqual(t, th, uint8(40))
	assert.Less(t, th, uint8(200))

	bin := Binarize(gray, th)
	assert.Equal(t, uint8(0), bin.Pix[0])
	assert.Equal(t, uint8(255), bin.Pix[99])
}

func TestOtsuThresholdUniformImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}

	bin := Binarize(gray, OtsuThreshold(gray))
	for _, v := range bin.Pix {
		assert.Contains(t, []uint8{0, 255}, v)
	}
}

func TestRescaleToHeight(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		target     int
		wantHeight int
	}{
		{"disabled", 100, 300, 0, 300},
		{"within band", 100, 900, 1000, 900},
		{"small image kept", 50, 150, 1000, 150},
		{"upscale", 200, 400, 1000, 1000},
		{"downscale", 400, 3000, 1000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gray := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			out := RescaleToHeight(gray, tt.target)
			assert.Equal(t, tt.wantHeight, out.Bounds().Dy())
		})
	}
}

func TestToGrayNormalizesOrigin(t *testing.T) {
	src := twoToneImage(20, 20).SubImage(image.Rect(5, 5, 15, 12))

	gray := ToGray(src)
	assert.Equal(t, image.Rect(0, 0, 10, 7), gray.Bounds())
}
