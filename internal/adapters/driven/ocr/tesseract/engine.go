// Package tesseract provides an OCREngine backed by the tesseract CLI.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/deckqa/internal/adapters/driven/command"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// ErrTesseractNotFound is returned when the tesseract binary is missing.
var ErrTesseractNotFound = errors.New("tesseract not found: install tesseract-ocr")

// Config configures an Engine.
type Config struct {
	// Binary is the tesseract executable. Defaults to "tesseract".
	Binary string

	// Language is the trained data to use. Defaults to "eng".
	Language string

	// ForcePSM, when non-zero, overrides the mode requested by callers.
	ForcePSM driven.PageSegMode

	// TempDir holds the intermediate PNG files. Defaults to os.TempDir().
	TempDir string
}

// Engine recognises text by shelling out to tesseract.
type Engine struct {
	runner driven.CommandRunner
	cfg    Config
}

// New creates an Engine that executes tesseract directly.
func New(cfg Config) *Engine {
	return NewWithRunner(command.NewRunner(), cfg)
}

// NewWithRunner creates an Engine with a custom command runner (for testing).
func NewWithRunner(runner driven.CommandRunner, cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Engine{runner: runner, cfg: cfg}
}

// Primary returns the engine used for regular recognition.
func Primary(settings domain.OCRSettings) *Engine {
	return New(Config{Binary: settings.TesseractPath, Language: settings.Language})
}

// Secondary returns the sparse-text engine used when the primary finds too
// little signal.
func Secondary(settings domain.OCRSettings) *Engine {
	return New(Config{
		Binary:   settings.TesseractPath,
		Language: settings.Language,
		ForcePSM: driven.PageSegMode(settings.SecondaryPSM),
	})
}

// Recognise writes img as PNG and returns tesseract's stdout.
func (e *Engine) Recognise(ctx context.Context, img image.Image, mode driven.PageSegMode) (string, error) {
	if img == nil {
		return "", domain.ErrInvalidInput
	}
	if e.cfg.ForcePSM != 0 {
		mode = e.cfg.ForcePSM
	}

	f, err := os.CreateTemp(e.cfg.TempDir, "ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("ocr: create temp image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("ocr: encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ocr: write image: %w", err)
	}

	return e.RecogniseFile(ctx, path, mode)
}

// RecogniseFile runs tesseract on an image already on disk.
func (e *Engine) RecogniseFile(ctx context.Context, path string, mode driven.PageSegMode) (string, error) {
	if e.cfg.ForcePSM != 0 {
		mode = e.cfg.ForcePSM
	}
	out, err := e.runner.Run(ctx, e.cfg.Binary, path, "stdout",
		"--psm", strconv.Itoa(int(mode)), "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOCRUnavailable, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CheckAvailable returns ErrTesseractNotFound if the binary is not on PATH.
func (e *Engine) CheckAvailable() error {
	if err := command.CheckAvailable(e.cfg.Binary); err != nil {
		return ErrTesseractNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing tesseract.
func InstallInstructions() string {
	return `Install tesseract:
  macOS:  brew install tesseract
  Ubuntu: apt install tesseract-ocr
  Fedora: dnf install tesseract`
}
