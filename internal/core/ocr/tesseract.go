package ocr

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

func init() {
	RegisterEngine("tesseract", func(opts EngineOptions) Engine {
		return NewTesseractProvider(opts.Command, opts.TessdataPrefix)
	})
}

var (
	failedLanguageRe = regexp.MustCompile(`Failed loading language '([^']+)'`)
	missingDataRe    = regexp.MustCompile(`([A-Za-z0-9_\-]+)\.traineddata`)
)

// TesseractProvider runs the tesseract CLI and reads its TSV output
type TesseractProvider struct {
	tesseractPath  string
	tessdataPrefix string
}

// NewTesseractProvider creates a new Tesseract CLI engine.
// tesseractPath defaults to "tesseract" looked up in PATH.
func NewTesseractProvider(tesseractPath, tessdataPrefix string) *TesseractProvider {
	if tesseractPath == "" {
		tesseractPath = "tesseract" // Assumes tesseract is in PATH
	}

	return &TesseractProvider{
		tesseractPath:  tesseractPath,
		tessdataPrefix: tessdataPrefix,
	}
}

// Recognize pipes the bitmap as PNG into `tesseract stdin stdout ... tsv`
func (p *TesseractProvider) Recognize(ctx context.Context, bitmap *image.Gray, cfg EngineConfig) ([]TokenRow, error) {
	binPath, err := exec.LookPath(p.tesseractPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineNotInstalled, err)
	}

	var input bytes.Buffer
	if err := png.Encode(&input, bitmap); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "failed to encode bitmap", Err: err}
	}

	args := []string{"stdin", "stdout", "-l", cfg.LanguageString(), "--psm", strconv.Itoa(int(cfg.Mode)), "tsv"}
	cmd := exec.CommandContext(ctx, binPath, args...)
	cmd.Stdin = &input
	if p.tessdataPrefix != "" {
		cmd.Env = append(os.Environ(), "TESSDATA_PREFIX="+p.tessdataPrefix)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("config", cfg.String()).Msg("🔍 Running Tesseract")

	runErr := cmd.Run()
	if langErr := p.languageError(stderr.String(), cfg); langErr != nil {
		return nil, langErr
	}
	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrEngineNotInstalled, runErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &EngineError{Languages: cfg.LanguageString(), Message: "tesseract was interrupted", Err: ctxErr}
		}
		return nil, &EngineError{
			Languages: cfg.LanguageString(),
			Message:   strings.TrimSpace(stderr.String()),
			Err:       runErr,
		}
	}

	rows, err := ParseTSV(&stdout)
	if err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "failed to read tesseract output", Err: err}
	}

	return rows, nil
}

// Name returns the name of the engine
func (p *TesseractProvider) Name() string {
	return "Tesseract OCR"
}

// languageError detects missing traineddata in tesseract's stderr. Tesseract
// keeps going when only some languages fail to load, so this is checked even
// when the command succeeds.
func (p *TesseractProvider) languageError(stderr string, cfg EngineConfig) error {
	if !strings.Contains(stderr, "Failed loading language") && !strings.Contains(stderr, "Error opening data file") {
		return nil
	}

	lang := cfg.LanguageString()
	if m := failedLanguageRe.FindStringSubmatch(stderr); m != nil {
		lang = m[1]
	} else if m := missingDataRe.FindStringSubmatch(stderr); m != nil {
		lang = m[1]
	}

	return &LanguageDataError{
		Language:       lang,
		TessdataPrefix: p.tessdataPrefix,
		Output:         strings.TrimSpace(stderr),
	}
}

// ParseTSV reads tesseract's TSV output into token rows. Columns are located
// by header name. Lines with fewer columns than the header have empty text.
func ParseTSV(r io.Reader) ([]TokenRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return []TokenRow{}, nil
	}

	columns := make(map[string]int)
	for i, name := range strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t") {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"left", "top", "width", "height", "conf", "text"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("tsv header is missing column %q", required)
		}
	}

	field := func(fields []string, name string) string {
		idx := columns[name]
		if idx < len(fields) {
			return fields[idx]
		}
		return ""
	}

	rows := []TokenRow{}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		rows = append(rows, TokenRow{
			Text:       field(fields, "text"),
			Left:       field(fields, "left"),
			Top:        field(fields, "top"),
			Width:      field(fields, "width"),
			Height:     field(fields, "height"),
			Confidence: field(fields, "conf"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}
