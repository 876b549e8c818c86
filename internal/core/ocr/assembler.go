package ocr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultMinConfidence is the confidence a word must exceed to be kept
const DefaultMinConfidence = 35.0

// Assemble filters the token table and builds the word list and full text.
// Rows are kept when their confidence is strictly above minConfidence and
// their text is not blank. Order is preserved. Rows that cannot be coerced
// are skipped individually.
func Assemble(rows []TokenRow, minConfidence float64) ([]Word, string) {
	words := []Word{}

	for i, row := range rows {
		conf, err := strconv.ParseFloat(strings.TrimSpace(row.Confidence), 64)
		if err != nil || math.IsNaN(conf) {
			log.Debug().Int("row", i).Str("conf", row.Confidence).Msg("Skipping OCR row with invalid confidence")
			continue
		}
		if conf <= minConfidence {
			continue
		}
		if strings.TrimSpace(row.Text) == "" {
			continue
		}

		word, err := coerceWord(row, conf)
		if err != nil {
			log.Warn().Err(err).Int("row", i).Str("text", row.Text).Msg("⚠️ Skipping malformed OCR row")
			continue
		}

		words = append(words, word)
	}

	return words, JoinText(words)
}

// JoinText joins word texts with single spaces and trims the result
func JoinText(words []Word) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}

func coerceWord(row TokenRow, conf float64) (Word, error) {
	left, err := parseCoordinate(row.Left)
	if err != nil {
		return Word{}, err
	}
	top, err := parseCoordinate(row.Top)
	if err != nil {
		return Word{}, err
	}
	width, err := parseCoordinate(row.Width)
	if err != nil {
		return Word{}, err
	}
	height, err := parseCoordinate(row.Height)
	if err != nil {
		return Word{}, err
	}

	return Word{
		Text:       row.Text,
		Left:       left,
		Top:        top,
		Width:      width,
		Height:     height,
		Confidence: conf,
	}, nil
}

// parseCoordinate accepts integers and integral floats ("12", "12.0")
func parseCoordinate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", s)
	}
	return int(f), nil
}
