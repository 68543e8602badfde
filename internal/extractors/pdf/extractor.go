// Package pdf extracts page text from PDF files with poppler, falling back to
// OCR for pages without a text layer.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/deckqa/internal/adapters/driven/command"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")

// DefaultMinSignal is the non-space character count below which the
// secondary OCR engine is tried.
const DefaultMinSignal = 10

// rasterDPI is the resolution pages are rendered at before OCR.
const rasterDPI = "300"

// Config configures an Extractor.
type Config struct {
	// Primary recognises rasterised pages. Nil disables OCR.
	Primary driven.OCREngine

	// Secondary is tried when Primary finds fewer than MinSignal characters.
	Secondary driven.OCREngine

	// MinSignal defaults to DefaultMinSignal.
	MinSignal int
}

// Extractor handles PDF documents.
type Extractor struct {
	runner driven.CommandRunner
	cfg    Config
}

// New creates a PDF extractor that runs poppler directly.
func New(cfg Config) *Extractor {
	return NewWithRunner(command.NewRunner(), cfg)
}

// NewWithRunner creates a PDF extractor with a custom command runner (for testing).
func NewWithRunner(runner driven.CommandRunner, cfg Config) *Extractor {
	if cfg.MinSignal <= 0 {
		cfg.MinSignal = DefaultMinSignal
	}
	return &Extractor{runner: runner, cfg: cfg}
}

// Extract returns one unit per page. Pages with no text layer are
// rasterised and OCR'd; OCR failures leave the page empty.
func (e *Extractor) Extract(ctx context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", req.Path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	pages := splitPages(string(out))
	units := make([]domain.ContentUnit, 0, len(pages))
	for i, text := range pages {
		page := i + 1
		if text == "" && e.cfg.Primary != nil {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("pdf: %w", err)
			}
			text = e.ocrPage(ctx, req, page)
		}
		units = append(units, domain.NewUnit(page, text))
	}
	return units, nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with one, so the trailing empty element is dropped.
func splitPages(out string) []string {
	pages := strings.Split(out, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i, p := range pages {
		pages[i] = strings.TrimSpace(p)
	}
	return pages
}

func (e *Extractor) ocrPage(ctx context.Context, req driven.ExtractRequest, page int) string {
	dir := req.WorkDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "pdf-page-")
		if err != nil {
			logger.Warn("pdf: page %d: %v", page, err)
			return ""
		}
		defer os.RemoveAll(dir)
	}

	prefix := filepath.Join(dir, "page-"+strconv.Itoa(page))
	n := strconv.Itoa(page)
	if _, err := e.runner.Run(ctx, "pdftoppm", "-r", rasterDPI, "-f", n, "-l", n,
		"-png", "-singlefile", req.Path, prefix); err != nil {
		logger.Warn("pdf: rasterise page %d: %v", page, err)
		return ""
	}
	defer os.Remove(prefix + ".png")

	f, err := os.Open(prefix + ".png")
	if err != nil {
		logger.Warn("pdf: page %d: %v", page, err)
		return ""
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		logger.Warn("pdf: decode page %d: %v", page, err)
		return ""
	}

	text, err := e.cfg.Primary.Recognise(ctx, img, driven.PSMAuto)
	if err != nil {
		logger.Warn("pdf: ocr page %d: %v", page, err)
		text = ""
	}
	text = strings.TrimSpace(text)

	if signal(text) < e.cfg.MinSignal && e.cfg.Secondary != nil {
		alt, err := e.cfg.Secondary.Recognise(ctx, img, driven.PSMSparse)
		if err != nil {
			logger.Warn("pdf: secondary ocr page %d: %v", page, err)
		} else if alt = strings.TrimSpace(alt); len(alt) > len(text) {
			text = alt
		}
	}
	return text
}

// signal counts non-space characters.
func signal(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not on PATH.
func (e *Extractor) CheckAvailable() error {
	if err := command.CheckAvailable("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing poppler.
func InstallInstructions() string {
	return `Install poppler:
  macOS:  brew install poppler
  Ubuntu: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}
