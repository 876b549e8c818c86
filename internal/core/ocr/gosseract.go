//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

func init() {
	RegisterEngine("gosseract", func(opts EngineOptions) Engine {
		return NewGosseractEngine(opts.TessdataPrefix)
	})
}

// GosseractEngine calls libtesseract in-process through gosseract.
// Build with -tags gosseract and the tesseract/leptonica headers installed.
type GosseractEngine struct {
	clientFactory  func() *gosseract.Client
	tessdataPrefix string
}

// NewGosseractEngine constructs a gosseract-backed engine
func NewGosseractEngine(tessdataPrefix string) *GosseractEngine {
	return &GosseractEngine{clientFactory: gosseract.NewClient, tessdataPrefix: tessdataPrefix}
}

func (e *GosseractEngine) Name() string {
	return "Tesseract OCR (libtesseract " + gosseract.Version() + ")"
}

// Recognize runs word-level recognition. The cgo call cannot be interrupted,
// so ctx is only checked before starting.
func (e *GosseractEngine) Recognize(ctx context.Context, bitmap *image.Gray, cfg EngineConfig) ([]TokenRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "recognition cancelled", Err: err}
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return nil, &EngineError{Languages: cfg.LanguageString(), Message: "set tessdata prefix", Err: err}
		}
	}
	if err := c.SetLanguage(cfg.Languages...); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "set languages", Err: err}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.Mode)); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "set page segmentation mode", Err: err}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, bitmap); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "failed to encode bitmap", Err: err}
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "set image", Err: err}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		if isLanguageLoadError(err) {
			return nil, &LanguageDataError{Language: cfg.LanguageString(), TessdataPrefix: e.tessdataPrefix, Output: err.Error()}
		}
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "recognize words", Err: err}
	}

	rows := make([]TokenRow, 0, len(boxes))
	for _, b := range boxes {
		rows = append(rows, TokenRow{
			Text:       b.Word,
			Left:       strconv.Itoa(b.Box.Min.X),
			Top:        strconv.Itoa(b.Box.Min.Y),
			Width:      strconv.Itoa(b.Box.Dx()),
			Height:     strconv.Itoa(b.Box.Dy()),
			Confidence: fmt.Sprintf("%g", b.Confidence),
		})
	}
	return rows, nil
}

// libtesseract reports missing traineddata as an init failure
func isLanguageLoadError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "TessBaseAPI") || strings.Contains(msg, "traineddata")
}
