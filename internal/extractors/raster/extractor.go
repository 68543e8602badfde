package raster

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads image files frame by frame.
type Extractor struct {
	reader driven.ImageReader
}

// New creates an image extractor that reads frames with reader.
func New(reader driven.ImageReader) *Extractor {
	return &Extractor{reader: reader}
}

// Extract returns one unit per frame, numbered from 1.
func (e *Extractor) Extract(ctx context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, domain.NewExtractionError(domain.TagReadFailed, err)
	}

	frames, err := DecodeFrames(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("image: %d frame(s) in %s", len(frames), req.Path)

	units := make([]domain.ContentUnit, 0, len(frames))
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("image: %w", err)
		}
		units = append(units, domain.NewUnit(i+1, e.reader.ReadImage(ctx, frame)))
	}
	return units, nil
}

// ReadEmbedded decodes the first frame of an embedded picture and reads it.
// Undecodable pictures yield "".
func ReadEmbedded(ctx context.Context, reader driven.ImageReader, data []byte) string {
	img, err := DecodeFirst(data)
	if err != nil {
		logger.Debug("image: skipping undecodable picture: %v", err)
		return ""
	}
	return reader.ReadImage(ctx, img)
}
