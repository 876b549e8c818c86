package ocr

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(text, conf string) TokenRow {
	return TokenRow{Text: text, Left: "10", Top: "20", Width: "30", Height: "40", Confidence: conf}
}

func TestAssembleFiltersByConfidenceAndText(t *testing.T) {
	rows := []TokenRow{
		row("", "-1"),        // page/block level row
		row("Hello", "96.5"), // kept
		row("low", "35"),     // not strictly greater
		row("   ", "90"),     // blank text
		row("world", "35.01"),
		row("", "88"),  // missing text
		row("!", "99"), // kept
	}

	words, fullText := Assemble(rows, 35)

	require.Len(t, words, 3)
	assert.Equal(t, []string{"Hello", "world", "!"}, []string{words[0].Text, words[1].Text, words[2].Text})
	assert.Equal(t, "Hello world !", fullText)
	assert.Equal(t, Word{Text: "Hello", Left: 10, Top: 20, Width: 30, Height: 40, Confidence: 96.5}, words[0])
}

func TestAssembleThresholdProperty(t *testing.T) {
	rows := []TokenRow{
		row("a", "10"), row("b", "35"), row("c", "50"), row("d", "50.5"),
		row(" ", "95"), row("e", "95"), row("f", "-1"), row("g", "100"),
	}

	for _, threshold := range []float64{-5, 0, 10, 35, 50, 94.9, 95, 100} {
		t.Run(strconv.FormatFloat(threshold, 'f', -1, 64), func(t *testing.T) {
			words, fullText := Assemble(rows, threshold)

			var expected []string
			for _, r := range rows {
				conf, _ := strconv.ParseFloat(r.Confidence, 64)
				if conf > threshold && strings.TrimSpace(r.Text) != "" {
					expected = append(expected, r.Text)
				}
			}

			got := make([]string, 0, len(words))
			for _, w := range words {
				got = append(got, w.Text)
			}
			assert.Equal(t, len(expected), len(got))
			assert.Equal(t, strings.TrimSpace(strings.Join(expected, " ")), fullText)
			assert.Equal(t, JoinText(words), fullText)
		})
	}
}

func TestAssembleSkipsMalformedRows(t *testing.T) {
	rows := []TokenRow{
		row("first", "90"),
		{Text: "bad-conf", Left: "1", Top: "1", Width: "1", Height: "1", Confidence: "n/a"},
		{Text: "bad-left", Left: "x", Top: "1", Width: "1", Height: "1", Confidence: "90"},
		{Text: "nan", Left: "1", Top: "1", Width: "1", Height: "1", Confidence: "NaN"},
		{Text: "floaty", Left: "12.0", Top: "3", Width: "4.0", Height: "5", Confidence: "80"},
		row("last", "90"),
	}

	words, fullText := Assemble(rows, 35)

	require.Len(t, words, 3)
	assert.Equal(t, "first floaty last", fullText)
	assert.Equal(t, 12, words[1].Left)
	assert.Equal(t, 4, words[1].Width)
}

func TestAssembleEmpty(t *testing.T) {
	words, fullText := Assemble(nil, DefaultMinConfidence)

	assert.NotNil(t, words)
	assert.Empty(t, words)
	assert.Equal(t, "", fullText)
}
