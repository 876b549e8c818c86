package ocr

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
)

// PageSegMode is the Tesseract page segmentation mode (--psm)
type PageSegMode int

const (
	PSMAuto       PageSegMode = 3  // fully automatic page segmentation
	PSMSparseText PageSegMode = 11 // sparse text, no layout assumption
)

// Engine is an OCR backend. Given a bitmap and a configuration it returns the
// raw token table in the bitmap's pixel coordinate space.
type Engine interface {
	Recognize(ctx context.Context, bitmap *image.Gray, cfg EngineConfig) ([]TokenRow, error)

	// Name returns the engine name
	Name() string
}

// EngineConfig holds the per-call engine configuration
type EngineConfig struct {
	Languages []string
	Mode      PageSegMode
}

// LanguageString joins languages the way Tesseract expects them (eng+ind)
func (c EngineConfig) LanguageString() string {
	return strings.Join(c.Languages, "+")
}

func (c EngineConfig) String() string {
	return fmt.Sprintf("-l %s --psm %d", c.LanguageString(), c.Mode)
}

// TokenRow is one row of the engine's token table. Fields are kept as the
// engine emitted them so a malformed row can be skipped on its own.
type TokenRow struct {
	Text       string
	Left       string
	Top        string
	Width      string
	Height     string
	Confidence string
}

// Word is a recognized word that survived filtering
type Word struct {
	Text       string  `json:"text"`
	Left       int     `json:"left"`
	Top        int     `json:"top"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// OCRResult is the response of a single OCR request
type OCRResult struct {
	ProcessedImageWidth  int    `json:"processed_image_width"`
	ProcessedImageHeight int    `json:"processed_image_height"`
	Words                []Word `json:"words"`
	FullText             string `json:"full_text"`
}

// EngineOptions configures engine construction
type EngineOptions struct {
	Command        string // tesseract binary, CLI engine only
	TessdataPrefix string
}

// EngineFactory builds an engine from options
type EngineFactory func(opts EngineOptions) Engine

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]EngineFactory)
)

// RegisterEngine makes an engine available under name. Engines register
// themselves from init so optional builds (cgo) only add an entry.
func RegisterEngine(name string, factory EngineFactory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = factory
}

// NewEngine constructs a registered engine
func NewEngine(name string, opts EngineOptions) (Engine, error) {
	enginesMu.RLock()
	factory, ok := engines[name]
	enginesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown OCR engine %q (available: %s)", name, strings.Join(EngineNames(), ", "))
	}
	return factory(opts), nil
}

// EngineNames lists registered engines
func EngineNames() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
