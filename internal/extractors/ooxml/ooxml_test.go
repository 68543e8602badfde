package ooxml

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func buildZip(t *testing.T, files map[string]string) *zip.Reader {
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

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func TestReadEntry(t *testing.T) {
	zr := buildZip(t, map[string]string{"a/b.xml": "<x/>"})

	data, err := ReadEntry(zr, "a/b.xml")
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(data))

	_, err = ReadEntry(zr, "missing.xml")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReadRels(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"ppt/slides/_rels/slide1.xml.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>
</Relationships>`,
	})

	rels, err := ReadRels(zr, RelsPath("ppt/slides/slide1.xml"))
	require.NoError(t, err)
	require.Len(t, rels, 2)

	assert.True(t, rels[0].IsImage())
	assert.Equal(t, "ppt/media/image1.png", ResolveTarget("ppt/slides/slide1.xml", rels[0].Target))
	assert.True(t, rels[1].IsExternal())

	missing, err := ReadRels(zr, "nope.rels")
	assert.NoError(t, err)
	assert.Empty(t, missing)
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, "ppt/slides/slide1.xml", ResolveTarget("ppt/presentation.xml", "slides/slide1.xml"))
	assert.Equal(t, "ppt/slides/slide1.xml", ResolveTarget("ppt/presentation.xml", "/ppt/slides/slide1.xml"))
}

func TestNaturalLess(t *testing.T) {
	names := []string{"slide10.xml", "slide2.xml", "slide1.xml", "slide02.xml"}
	sort.SliceStable(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	assert.Equal(t, "slide1.xml", names[0])
	assert.Equal(t, "slide10.xml", names[3])
}

func TestMediaCategory(t *testing.T) {
	tests := map[string]string{
		"image1.PNG": CategoryImages,
		"clip.m4v":   CategoryVideos,
		"sound.wma":  CategoryAudio,
		"logo.emf":   CategoryVectors,
		"sheet.xlsx": CategoryDocuments,
		"blob.bin":   CategoryOthers,
	}
	for name, want := range tests {
		assert.Equal(t, want, MediaCategory(name), name)
	}
}

func TestExtractMedia(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"ppt/media/image10.png": "ten",
		"ppt/media/image2.png":  "two",
		"ppt/media/audio1.mp3":  "mp3",
		"ppt/slides/slide1.xml": "<x/>",
	})
	dir := t.TempDir()

	media := ExtractMedia(zr, "ppt/media/", dir)

	require.Len(t, media, 3)
	assert.Equal(t, "ppt/media/audio1.mp3", media[0].Entry)
	assert.Equal(t, "ppt/media/image2.png", media[1].Entry)
	assert.Equal(t, "ppt/media/image10.png", media[2].Entry)
	assert.Equal(t, filepath.Join(dir, CategoryImages, "image2.png"), media[1].Path)

	data, err := os.ReadFile(media[2].Path)
	require.NoError(t, err)
	assert.Equal(t, "ten", string(data))
}
