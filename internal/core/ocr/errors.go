package ocr

import (
	"errors"
	"fmt"
)

// ErrEngineNotInstalled is returned when the OCR engine binary cannot be found
var ErrEngineNotInstalled = errors.New("tesseract executable not found")

// ErrImageTooLarge is wrapped in a DecodeError when the declared canvas is too big
var ErrImageTooLarge = errors.New("image dimensions exceed limit")

// DecodeError is returned when the uploaded bytes are not a decodable image
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// LanguageDataError is returned when traineddata for a language is missing
type LanguageDataError struct {
	Language       string
	TessdataPrefix string
	Output         string
}

func (e *LanguageDataError) Error() string {
	return fmt.Sprintf("tesseract language data (%s.traineddata) not found", e.Language)
}

// EngineError is any other engine failure
type EngineError struct {
	Languages string
	Message   string
	Err       error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tesseract failed (languages %s): %s: %v", e.Languages, e.Message, e.Err)
	}
	return fmt.Sprintf("tesseract failed (languages %s): %s", e.Languages, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
