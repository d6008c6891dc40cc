// Package ocr turns photographed word lists into raw text for the extractor.
package ocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/deutschbot/internal/config"
)

// ErrDisabled is returned when no OCR backend is configured.
var ErrDisabled = errors.New("ocr is disabled")

// Engine extracts raw text from image bytes.
type Engine interface {
	Name() string
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Prober is implemented by engines that can check their backend on startup.
type Prober interface {
	Probe(ctx context.Context) error
}

// Disabled is the engine used when OCR_PROVIDER is "none".
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) ExtractText(context.Context, []byte) (string, error) {
	return "", ErrDisabled
}

// New builds the engine selected by cfg.Provider.
func New(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Provider {
	case config.OCRProviderGemini:
		return NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout), nil
	case config.OCRProviderHTTP:
		return NewHTTPServer(cfg.Endpoint, cfg.Timeout), nil
	case config.OCRProviderNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown OCR provider %q", cfg.Provider)
	}
}
