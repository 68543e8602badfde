package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/extractors/ooxml"
)

const (
	nsA = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	nsP = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	nsR = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
)

// fixedReader returns the same text for every picture.
type fixedReader struct {
	text  string
	calls int
}

func (r *fixedReader) ReadImage(_ context.Context, _ image.Image) string {
	r.calls++
	return r.text
}

func slideXML(body string) string {
	return `<?xml version="1.0"?><p:sld ` + nsA + ` ` + nsP + ` ` + nsR + `><p:cSld><p:spTree>` +
		body + `</p:spTree></p:cSld></p:sld>`
}

func shape(paragraphs ...string) string {
	s := `<p:sp><p:txBody>`
	for _, para := range paragraphs {
		s += `<a:p><a:r><a:t>` + para + `</a:t></a:r></a:p>`
	}
	return s + `</p:txBody></p:sp>`
}

func table(rows ...[]string) string {
	s := `<p:graphicFrame><a:graphic><a:graphicData><a:tbl>`
	for _, row := range rows {
		s += `<a:tr>`
		for _, cell := range row {
			s += `<a:tc><a:txBody><a:p><a:r><a:t>` + cell + `</a:t></a:r></a:p></a:txBody></a:tc>`
		}
		s += `</a:tr>`
	}
	return s + `</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func createTestPPTX(t *testing.T, files map[string]string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	p := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0600))
	return p
}

func TestExtract_PresentationOrderAndContent(t *testing.T) {
	path := createTestPPTX(t, map[string]string{
		"ppt/presentation.xml": `<?xml version="1.0"?><p:presentation ` + nsP + ` ` + nsR + `>` +
			`<p:sldIdLst><p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId2"/></p:sldIdLst></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>` +
			`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>` +
			`</Relationships>`,
		"ppt/slides/slide1.xml": slideXML(shape("Revenue grew 20%", "Q3 results")),
		"ppt/slides/slide2.xml": slideXML(shape("Agenda") + table([]string{"Region", "Sales"}, []string{"EU", "10"})),
	})

	units, err := New(nil).Extract(context.Background(), driven.ExtractRequest{Path: path})

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, 1, units[0].Number)
	assert.Equal(t, "Agenda\nRegion\tSales\nEU\t10", units[0].Text)
	assert.Equal(t, 2, units[1].Number)
	assert.Equal(t, "Revenue grew 20%\nQ3 results", units[1].Text)
}

func TestExtract_NumericFallbackOrder(t *testing.T) {
	path := createTestPPTX(t, map[string]string{
		"ppt/slides/slide10.xml": slideXML(shape("ten")),
		"ppt/slides/slide2.xml":  slideXML(shape("two")),
		"ppt/slides/slide1.xml":  slideXML(shape("one")),
	})

	units, err := New(nil).Extract(context.Background(), driven.ExtractRequest{Path: path})

	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "one", units[0].Text)
	assert.Equal(t, "two", units[1].Text)
	assert.Equal(t, "ten", units[2].Text)
}

func TestExtract_PictureTextInjected(t *testing.T) {
	reader := &fixedReader{text: "Revenue by region"}
	path := createTestPPTX(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(shape("Title")),
		"ppt/slides/slide2.xml": slideXML(shape("Second")),
		"ppt/slides/_rels/slide1.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>` +
			`</Relationships>`,
		"ppt/slides/_rels/slide2.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>` +
			`</Relationships>`,
		"ppt/media/image1.png": string(pngBytes(t)),
	})
	workDir := t.TempDir()

	units, err := New(reader).Extract(context.Background(), driven.ExtractRequest{Path: path, WorkDir: workDir})

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "Title\n[Image OCR/Text] Revenue by region", units[0].Text)
	assert.Equal(t, "Second\n[Image OCR/Text] Revenue by region", units[1].Text)
	assert.Equal(t, 1, reader.calls, "shared pictures are read once")

	_, err = os.Stat(filepath.Join(workDir, ooxml.CategoryImages, "image1.png"))
	assert.NoError(t, err)
}

func TestExtract_EmptyPictureTextSkipped(t *testing.T) {
	path := createTestPPTX(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML(shape("Only text")),
		"ppt/slides/_rels/slide1.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>` +
			`</Relationships>`,
		"ppt/media/image1.png": string(pngBytes(t)),
	})

	units, err := New(&fixedReader{}).Extract(context.Background(), driven.ExtractRequest{Path: path})

	require.NoError(t, err)
	assert.Equal(t, "Only text", units[0].Text)
}

func TestExtract_NotAZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.pptx")
	require.NoError(t, os.WriteFile(p, []byte("nope"), 0600))

	_, err := New(nil).Extract(context.Background(), driven.ExtractRequest{Path: p})
	assert.Error(t, err)
}

func TestExtract_NoSlides(t *testing.T) {
	path := createTestPPTX(t, map[string]string{"docProps/core.xml": "<x/>"})

	_, err := New(nil).Extract(context.Background(), driven.ExtractRequest{Path: path})
	assert.Error(t, err)
}

func TestParseSlide_SkipsBlankParagraphs(t *testing.T) {
	lines, err := parseSlide([]byte(slideXML(shape("  ", "kept"))))

	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, lines)
}
