package extractors

import (
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/extractors/docx"
	"github.com/custodia-labs/deckqa/internal/extractors/media"
	"github.com/custodia-labs/deckqa/internal/extractors/pdf"
	"github.com/custodia-labs/deckqa/internal/extractors/plaintext"
	"github.com/custodia-labs/deckqa/internal/extractors/pptx"
	"github.com/custodia-labs/deckqa/internal/extractors/raster"
)

// Deps are the capabilities the format extractors draw on. Nil members
// leave the formats that need them unavailable.
type Deps struct {
	// Reader reads pictures, detecting tables.
	Reader driven.ImageReader

	// Primary and Secondary OCR rasterised PDF pages.
	Primary   driven.OCREngine
	Secondary driven.OCREngine
	MinSignal int

	// Transcriber turns audio into text.
	Transcriber driven.Transcriber
	FFmpegPath  string

	MaxFileSize int64
}

// NewDefault builds a dispatcher with every extractor deps can support.
func NewDefault(deps Deps) *Dispatcher {
	d := NewDispatcher(WithMaxFileSize(deps.MaxFileSize))

	d.Register(domain.FormatText, plaintext.New())
	d.Register(domain.FormatPPTX, pptx.New(deps.Reader))
	d.Register(domain.FormatDOCX, docx.New(deps.Reader))
	d.Register(domain.FormatPDF, pdf.New(pdf.Config{
		Primary:   deps.Primary,
		Secondary: deps.Secondary,
		MinSignal: deps.MinSignal,
	}))
	if deps.Reader != nil {
		d.Register(domain.FormatImage, raster.New(deps.Reader))
	}
	if deps.Transcriber != nil {
		d.Register(domain.FormatAudio, media.NewAudio(deps.Transcriber))
		d.Register(domain.FormatVideo, media.NewVideo(deps.Transcriber, deps.FFmpegPath))
	}
	return d
}
