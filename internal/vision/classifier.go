// Package vision decides whether an image holds a table or running text and
// extracts its text accordingly through an OCR engine.
//
// Table detection isolates long horizontal and vertical strokes with an
// adaptive threshold and line-shaped morphological openings, then treats the
// image as a table when enough grid fragments are found. Each grid cell is
// recognised separately.
package vision

import (
	"context"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Mode is the classification outcome.
type Mode string

// Classification modes.
const (
	ModeText  Mode = "text"
	ModeTable Mode = "table"
)

// Config tunes detection. MaxSide, KernelDivisor, ClusterThreshold and
// MinBoxes are empirical and exposed through configuration.
type Config struct {
	MaxSide          int
	KernelDivisor    int
	ClusterThreshold int
	MinBoxes         int
	MinBoxWidth      int
	MinBoxHeight     int
	BlockSize        int
	ThresholdC       float64
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return ConfigFromSettings(domain.DefaultVisionSettings())
}

// ConfigFromSettings builds a Config from user settings, keeping defaults
// for unset values.
func ConfigFromSettings(s domain.VisionSettings) Config {
	d := domain.DefaultVisionSettings()
	cfg := Config{
		MaxSide:          d.MaxSide,
		KernelDivisor:    d.KernelDivisor,
		ClusterThreshold: d.ClusterThreshold,
		MinBoxes:         d.MinBoxes,
		MinBoxWidth:      40,
		MinBoxHeight:     20,
		BlockSize:        15,
		ThresholdC:       2,
	}
	if s.MaxSide > 0 {
		cfg.MaxSide = s.MaxSide
	}
	if s.KernelDivisor > 0 {
		cfg.KernelDivisor = s.KernelDivisor
	}
	if s.ClusterThreshold > 0 {
		cfg.ClusterThreshold = s.ClusterThreshold
	}
	if s.MinBoxes > 0 {
		cfg.MinBoxes = s.MinBoxes
	}
	return cfg
}

// Options force a classification outcome.
type Options struct {
	ForceText  bool
	ForceTable bool
}

// Result is the classification and the recognised text.
// Lines is set in text mode, Table in table mode.
type Result struct {
	Mode  Mode
	Lines []string
	Table [][]string
}

// TablePrefix marks table text injected into extracted content.
const TablePrefix = "[Table content]\n"

// Text flattens the result for indexing: table rows joined by newlines with
// tab-separated cells behind TablePrefix, or text lines joined by spaces.
func (r Result) Text() string {
	if r.Mode == ModeTable {
		if len(r.Table) == 0 {
			return ""
		}
		rows := make([]string, len(r.Table))
		for i, row := range r.Table {
			rows[i] = strings.Join(row, "\t")
		}
		return TablePrefix + strings.Join(rows, "\n")
	}
	return strings.Join(r.Lines, " ")
}

// Classifier runs table detection and OCR.
type Classifier struct {
	ocr driven.OCREngine
	cfg Config
}

// NewClassifier creates a classifier. A nil engine makes every result empty text.
func NewClassifier(ocr driven.OCREngine, cfg Config) *Classifier {
	return &Classifier{ocr: ocr, cfg: cfg}
}

// Classify decides table versus text and recognises the image accordingly.
// It never fails: any internal error degrades to an empty text result.
func (c *Classifier) Classify(ctx context.Context, img image.Image, opts Options) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("vision: classification aborted: %v", r)
			res = Result{Mode: ModeText}
		}
	}()

	if img == nil || c.ocr == nil {
		return Result{Mode: ModeText}
	}

	gray := Downscale(Grayscale(img), c.cfg.MaxSide)
	if opts.ForceText {
		return c.recogniseText(ctx, gray)
	}

	boxes := DetectLineBoxes(gray, c.cfg)
	logger.Debug("vision: %d grid fragments in %dx%d image", len(boxes), gray.Rect.Dx(), gray.Rect.Dy())

	if opts.ForceTable || len(boxes) >= c.cfg.MinBoxes {
		table, err := c.recogniseTable(ctx, gray, boxes)
		if err == nil {
			return Result{Mode: ModeTable, Table: table}
		}
		logger.Debug("vision: table parsing failed, falling back to text: %v", err)
	}
	return c.recogniseText(ctx, gray)
}

func (c *Classifier) recogniseText(ctx context.Context, gray *image.Gray) Result {
	return Result{Mode: ModeText, Lines: c.lines(ctx, gray, driven.PSMAuto)}
}

func (c *Classifier) lines(ctx context.Context, img image.Image, mode driven.PageSegMode) []string {
	text, err := c.ocr.Recognise(ctx, img, mode)
	if err != nil {
		logger.Warn("vision: ocr failed: %v", err)
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (c *Classifier) recogniseTable(ctx context.Context, gray *image.Gray, boxes []Box) ([][]string, error) {
	rows, cols := separators(boxes, c.cfg.ClusterThreshold)
	if len(rows) < 2 || len(cols) < 2 {
		return nil, fmt.Errorf("not enough grid lines (%d rows, %d cols)", len(rows), len(cols))
	}

	bounds := gray.Bounds()
	table := make([][]string, 0, len(rows)-1)
	for i := 0; i+1 < len(rows); i++ {
		row := make([]string, 0, len(cols)-1)
		for j := 0; j+1 < len(cols); j++ {
			cell := image.Rect(cols[j], rows[i], cols[j+1], rows[i+1]).Add(bounds.Min).Intersect(bounds)
			if cell.Empty() {
				row = append(row, "")
				continue
			}
			text := strings.Join(c.lines(ctx, gray.SubImage(cell), driven.PSMBlock), " ")
			row = append(row, strings.TrimSpace(text))
		}
		table = append(table, row)
	}

	cleaned := CleanTable(table)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("table has no text")
	}
	return cleaned, nil
}

// Grayscale converts img to an 8-bit grayscale image anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Rect, img, b.Min, draw.Src)
	return gray
}

// Downscale shrinks gray so its longest side is at most maxSide,
// preserving the aspect ratio. Smaller images are returned unchanged.
func Downscale(gray *image.Gray, maxSide int) *image.Gray {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	longest := max(w, h)
	if maxSide <= 0 || longest <= maxSide {
		return gray
	}
	scale := float64(maxSide) / float64(longest)
	nw, nh := max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, gray, gray.Rect, draw.Src, nil)
	return dst
}

// Ensure Classifier implements the image reading port.
var _ driven.ImageReader = (*Classifier)(nil)

// ReadImage classifies img and returns its flattened text.
func (c *Classifier) ReadImage(ctx context.Context, img image.Image) string {
	return c.Classify(ctx, img, Options{}).Text()
}
