package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

type mockOCR struct {
	mu       sync.Mutex
	cellText string
	pageText string
	err      error
	panics   bool
	modes    []driven.PageSegMode
}

func (m *mockOCR) Recognise(_ context.Context, _ image.Image, mode driven.PageSegMode) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes = append(m.modes, mode)
	if m.panics {
		panic("engine crashed")
	}
	if m.err != nil {
		return "", m.err
	}
	if mode == driven.PSMBlock {
		return m.cellText, nil
	}
	return m.pageText, nil
}

func blank(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// grid draws a 3x3 table with 2px black lines at 20, 120, 220 and 320.
func grid() *image.Gray {
	img := blank(340, 340)
	lines := []int{20, 120, 220, 320}
	for _, p := range lines {
		for t := 0; t < 2; t++ {
			for q := 20; q <= 321; q++ {
				img.SetGray(q, p+t, color.Gray{Y: 0})
				img.SetGray(p+t, q, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func TestClusterPositions(t *testing.T) {
	assert.Nil(t, ClusterPositions(nil, 10))
	assert.Equal(t, []int{1, 12, 30}, ClusterPositions([]int{31, 5, 1, 30, 12}, 10))
	assert.Equal(t, []int{0, 11}, ClusterPositions([]int{0, 10, 11}, 10))
}

func TestCleanTable(t *testing.T) {
	table := [][]string{
		{" |Name| ", "", "[Qty]"},
		{"", "", ""},
		{"apple", "{}", "3"},
	}

	assert.Equal(t, [][]string{{"Name", "Qty"}, {"apple", "3"}}, CleanTable(table))
	assert.Nil(t, CleanTable([][]string{{"|", " "}}))
	assert.Nil(t, CleanTable(nil))
}

func TestCleanTable_RaggedRows(t *testing.T) {
	assert.Equal(t, [][]string{{"a", ""}, {"b", "c"}}, CleanTable([][]string{{"a"}, {"b", "c"}}))
}

func TestDetectLineBoxes_Grid(t *testing.T) {
	boxes := DetectLineBoxes(grid(), DefaultConfig())

	// the outer grid plus nine cells
	assert.Len(t, boxes, 10)
	for _, b := range boxes {
		assert.Greater(t, b.W, 40)
		assert.Greater(t, b.H, 20)
	}
}

func TestDetectLineBoxes_Blank(t *testing.T) {
	assert.Empty(t, DetectLineBoxes(blank(200, 100), DefaultConfig()))
	assert.Empty(t, DetectLineBoxes(image.NewGray(image.Rect(0, 0, 0, 0)), DefaultConfig()))
}

func TestSeparators_Grid(t *testing.T) {
	rows, cols := separators(DetectLineBoxes(grid(), DefaultConfig()), 10)

	assert.Equal(t, []int{20, 121, 221, 321}, rows)
	assert.Equal(t, []int{20, 121, 221, 321}, cols)
}

func TestClassify_GridIsTable(t *testing.T) {
	ocr := &mockOCR{cellText: "|cell|\n", pageText: "unused"}
	c := NewClassifier(ocr, DefaultConfig())

	res := c.Classify(context.Background(), grid(), Options{})

	require.Equal(t, ModeTable, res.Mode)
	require.Len(t, res.Table, 3)
	for _, row := range res.Table {
		assert.Equal(t, []string{"cell", "cell", "cell"}, row)
	}
	assert.Contains(t, ocr.modes, driven.PSMBlock)
	assert.NotContains(t, ocr.modes, driven.PSMAuto)
}

func TestClassify_ForceTextOnGrid(t *testing.T) {
	ocr := &mockOCR{cellText: "cell", pageText: "line one\n\n  line two  \n"}
	c := NewClassifier(ocr, DefaultConfig())

	res := c.Classify(context.Background(), grid(), Options{ForceText: true})

	assert.Equal(t, ModeText, res.Mode)
	assert.Equal(t, []string{"line one", "line two"}, res.Lines)
	assert.Equal(t, []driven.PageSegMode{driven.PSMAuto}, ocr.modes)
}

func TestClassify_BlankIsText(t *testing.T) {
	ocr := &mockOCR{pageText: "hello"}
	res := NewClassifier(ocr, DefaultConfig()).Classify(context.Background(), blank(300, 200), Options{})

	assert.Equal(t, ModeText, res.Mode)
	assert.Equal(t, []string{"hello"}, res.Lines)
}

func TestClassify_ForceTableWithoutGridFallsBack(t *testing.T) {
	ocr := &mockOCR{pageText: "plain"}
	res := NewClassifier(ocr, DefaultConfig()).Classify(context.Background(), blank(300, 200), Options{ForceTable: true})

	assert.Equal(t, ModeText, res.Mode)
	assert.Equal(t, []string{"plain"}, res.Lines)
}

func TestClassify_EmptyCellsFallBackToText(t *testing.T) {
	ocr := &mockOCR{cellText: " | ", pageText: "fallback"}
	res := NewClassifier(ocr, DefaultConfig()).Classify(context.Background(), grid(), Options{})

	assert.Equal(t, ModeText, res.Mode)
	assert.Equal(t, []string{"fallback"}, res.Lines)
}

func TestClassify_NeverFails(t *testing.T) {
	ctx := context.Background()

	failing := NewClassifier(&mockOCR{err: errors.New("tesseract missing")}, DefaultConfig())
	assert.Equal(t, Result{Mode: ModeText}, failing.Classify(ctx, blank(50, 50), Options{}))

	panicking := NewClassifier(&mockOCR{panics: true}, DefaultConfig())
	assert.Equal(t, Result{Mode: ModeText}, panicking.Classify(ctx, grid(), Options{}))

	noEngine := NewClassifier(nil, DefaultConfig())
	assert.Equal(t, Result{Mode: ModeText}, noEngine.Classify(ctx, grid(), Options{}))
	assert.Equal(t, Result{Mode: ModeText}, failing.Classify(ctx, nil, Options{}))
}

func TestClassify_ConfigurableMinBoxes(t *testing.T) {
	cfg := ConfigFromSettings(domain.VisionSettings{MinBoxes: 50})
	ocr := &mockOCR{cellText: "cell", pageText: "text"}

	res := NewClassifier(ocr, cfg).Classify(context.Background(), grid(), Options{})

	assert.Equal(t, ModeText, res.Mode)
}

func TestConfigFromSettings_KeepsDefaults(t *testing.T) {
	cfg := ConfigFromSettings(domain.VisionSettings{ClusterThreshold: 4})

	assert.Equal(t, 4, cfg.ClusterThreshold)
	assert.Equal(t, 30, cfg.KernelDivisor)
	assert.Equal(t, 2000, cfg.MaxSide)
	assert.Equal(t, 5, cfg.MinBoxes)
}

func TestDownscale(t *testing.T) {
	img := blank(4000, 1000)

	out := Downscale(img, 2000)
	assert.Equal(t, 2000, out.Rect.Dx())
	assert.Equal(t, 500, out.Rect.Dy())

	small := blank(100, 100)
	assert.Same(t, small, Downscale(small, 2000))
}

func TestGrayscale_NormalisesOrigin(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(10, 10, 20, 30))
	rgba.Set(10, 10, color.White)

	gray := Grayscale(rgba)

	assert.Equal(t, image.Rect(0, 0, 10, 20), gray.Rect)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
}

func TestResult_Text(t *testing.T) {
	table := Result{Mode: ModeTable, Table: [][]string{{"a", "b"}, {"c", "d"}}}
	assert.Equal(t, "[Table content]\na\tb\nc\td", table.Text())

	text := Result{Mode: ModeText, Lines: []string{"one", "two"}}
	assert.Equal(t, "one two", text.Text())

	assert.Empty(t, Result{Mode: ModeTable}.Text())
}
