// Package raster extracts text from image files, one unit per frame.
package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/tiff"
)

// maxTIFFPages bounds the IFD walk of malformed files.
const maxTIFFPages = 1024

// ErrNoFrames is returned when an image decodes to nothing.
var ErrNoFrames = errors.New("image has no frames")

// DecodeFrames decodes every frame of an image. GIF animations yield one
// composited frame per image, multi-page TIFFs one frame per page, and other
// formats a single frame.
func DecodeFrames(data []byte) ([]image.Image, error) {
	switch {
	case isGIF(data):
		return decodeGIF(data)
	case isTIFF(data):
		return decodeTIFF(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return []image.Image{img}, nil
}

// DecodeFirst decodes only the first frame.
func DecodeFirst(data []byte) (image.Image, error) {
	frames, err := DecodeFrames(data)
	if err != nil {
		return nil, err
	}
	return frames[0], nil
}

func isGIF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))
}

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

func decodeGIF(data []byte) ([]image.Image, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, ErrNoFrames
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	frames := make([]image.Image, 0, len(g.Image))
	for _, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snapshot := image.NewRGBA(bounds)
		copy(snapshot.Pix, canvas.Pix)
		frames = append(frames, snapshot)
	}
	return frames, nil
}

// decodeTIFF walks the IFD chain and decodes each page by pointing the
// header's first-IFD offset at it.
func decodeTIFF(data []byte) ([]image.Image, error) {
	offsets, err := tiffPageOffsets(data)
	if err != nil {
		return nil, err
	}

	var frames []image.Image
	var firstErr error
	page := make([]byte, len(data))
	for _, off := range offsets {
		copy(page, data)
		byteOrder(data).PutUint32(page[4:8], off)
		img, err := tiff.Decode(bytes.NewReader(page))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("decode tiff: %w", firstErr)
		}
		return nil, ErrNoFrames
	}
	return frames, nil
}

func byteOrder(data []byte) binary.ByteOrder {
	if data[0] == 'M' {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func tiffPageOffsets(data []byte) ([]uint32, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("decode tiff: %w", ErrNoFrames)
	}
	order := byteOrder(data)
	seen := make(map[uint32]bool)
	var offsets []uint32

	off := order.Uint32(data[4:8])
	for off != 0 && len(offsets) < maxTIFFPages {
		if seen[off] || int(off)+2 > len(data) {
			break
		}
		seen[off] = true
		offsets = append(offsets, off)

		count := int(order.Uint16(data[off : off+2]))
		next := int(off) + 2 + count*12
		if next+4 > len(data) {
			break
		}
		off = order.Uint32(data[next : next+4])
	}
	if len(offsets) == 0 {
		return nil, ErrNoFrames
	}
	return offsets, nil
}
