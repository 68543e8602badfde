package raster

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// grayReader reports the gray level of the top-left pixel.
type grayReader struct {
	calls int
}

func (r *grayReader) ReadImage(_ context.Context, img image.Image) string {
	r.calls++
	b := img.Bounds()
	g := color.GrayModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.Gray)
	return fmt.Sprintf("level %d", g.Y)
}

func solid(level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T, levels ...uint8) []byte {
	t.Helper()
	anim := &gif.GIF{}
	for _, level := range levels {
		frame := image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9)
		idx := uint8(color.Palette(palette.Plan9).Index(color.Gray{Y: level}))
		for i := range frame.Pix {
			frame.Pix[i] = idx
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 0)
	}
	buf := new(bytes.Buffer)
	require.NoError(t, gif.EncodeAll(buf, anim))
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0600))
	return p
}

func TestDecodeFrames_PNG(t *testing.T) {
	frames, err := DecodeFrames(pngBytes(t, solid(10)))

	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestDecodeFrames_GIF(t *testing.T) {
	frames, err := DecodeFrames(gifBytes(t, 0, 255, 0))

	require.NoError(t, err)
	assert.Len(t, frames, 3)
}

func TestDecodeFrames_TIFF(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, tiff.Encode(buf, solid(200), nil))

	frames, err := DecodeFrames(buf.Bytes())

	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestDecodeFrames_Garbage(t *testing.T) {
	_, err := DecodeFrames([]byte("not an image"))
	assert.Error(t, err)
}

func TestTIFFPageOffsets_Chain(t *testing.T) {
	// Header plus two empty IFDs: 8 → 14 → 0.
	data := make([]byte, 20)
	copy(data, "II*\x00")
	binary.LittleEndian.PutUint32(data[4:], 8)
	binary.LittleEndian.PutUint16(data[8:], 0)
	binary.LittleEndian.PutUint32(data[10:], 14)
	binary.LittleEndian.PutUint16(data[14:], 0)
	binary.LittleEndian.PutUint32(data[16:], 0)

	offsets, err := tiffPageOffsets(data)

	require.NoError(t, err)
	assert.Equal(t, []uint32{8, 14}, offsets)
}

func TestTIFFPageOffsets_Cycle(t *testing.T) {
	data := make([]byte, 14)
	copy(data, "II*\x00")
	binary.LittleEndian.PutUint32(data[4:], 8)
	binary.LittleEndian.PutUint16(data[8:], 0)
	binary.LittleEndian.PutUint32(data[10:], 8)

	offsets, err := tiffPageOffsets(data)

	require.NoError(t, err)
	assert.Equal(t, []uint32{8}, offsets)
}

func TestExtract_OneUnitPerFrame(t *testing.T) {
	reader := &grayReader{}
	path := writeFile(t, "anim.gif", gifBytes(t, 0, 255))

	units, err := New(reader).Extract(context.Background(), driven.ExtractRequest{Path: path})

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, 1, units[0].Number)
	assert.Equal(t, 2, units[1].Number)
	assert.Equal(t, "level 0", units[0].Text)
	assert.Equal(t, "level 255", units[1].Text)
	assert.Equal(t, domain.UnitStatusOK, units[1].Status)
}

func TestExtract_Missing(t *testing.T) {
	_, err := New(&grayReader{}).Extract(context.Background(), driven.ExtractRequest{Path: "/does/not/exist.png"})

	var extErr *domain.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, domain.TagReadFailed, extErr.Tag)
}

func TestReadEmbedded(t *testing.T) {
	reader := &grayReader{}

	assert.Equal(t, "level 30", ReadEmbedded(context.Background(), reader, pngBytes(t, solid(30))))
	assert.Equal(t, "", ReadEmbedded(context.Background(), reader, []byte("junk")))
	assert.Equal(t, 1, reader.calls)
}
