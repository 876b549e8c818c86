package ocr

import (
	"context"
	"image"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultLanguages is used when a request names no usable language
var DefaultLanguages = []string{"eng", "ind"}

// Service wraps the OCR engine. Engine calls run on their own goroutine,
// bounded by a semaphore, so callers can give up on timeout or cancellation.
type Service struct {
	engine  Engine
	sem     *semaphore.Weighted
	timeout time.Duration
}

// ServiceOptions configures the invoker
type ServiceOptions struct {
	MaxConcurrency int
	Timeout        time.Duration // 0 means no bound
}

// NewService creates a new OCR service with the given engine
func NewService(engine Engine, opts ServiceOptions) *Service {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Service{
		engine:  engine,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrency)),
		timeout: opts.Timeout,
	}
}

// Recognize runs the engine against bitmap
func (s *Service) Recognize(ctx context.Context, bitmap *image.Gray, cfg EngineConfig) ([]TokenRow, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "timed out waiting for a free OCR worker", Err: err}
	}

	type outcome struct {
		rows []TokenRow
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		// The slot is held until the engine returns, even if the caller left.
		defer s.sem.Release(1)
		rows, err := s.engine.Recognize(ctx, bitmap, cfg)
		done <- outcome{rows: rows, err: err}
	}()

	select {
	case out := <-done:
		return out.rows, out.err
	case <-ctx.Done():
		return nil, &EngineError{Languages: cfg.LanguageString(), Message: "OCR engine did not finish in time", Err: ctx.Err()}
	}
}

// GetProviderName returns the name of the current engine
func (s *Service) GetProviderName() string {
	return s.engine.Name()
}

// NormalizeLanguages trims and lower-cases language codes, drops blanks and
// repeats, and falls back to DefaultLanguages when nothing usable is left.
func NormalizeLanguages(languages []string) []string {
	out := make([]string, 0, len(languages))
	seen := make(map[string]bool, len(languages))
	for _, lang := range languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultLanguages...)
	}
	return out
}
