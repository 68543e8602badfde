// Package chunker splits unit text into overlapping word windows.
package chunker

import (
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Processor splits unit text into fixed-size word windows whose size and
// overlap depend on the document's file type.
type Processor struct {
	windows map[domain.FileType]domain.ChunkWindow
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithWindow overrides the window for one file type.
// Invalid windows (overlap >= size) are ignored.
func WithWindow(ft domain.FileType, size, overlap int) Option {
	return func(p *Processor) {
		w := domain.ChunkWindow{Size: size, Overlap: overlap}
		if err := w.Validate(); err != nil {
			logger.Warn("chunker: ignoring window for %s: %v", ft, err)
			return
		}
		p.windows[ft] = w
	}
}

// WithWindows overrides several windows at once.
func WithWindows(windows map[domain.FileType]domain.ChunkWindow) Option {
	return func(p *Processor) {
		for ft, w := range windows {
			WithWindow(ft, w.Size, w.Overlap)(p)
		}
	}
}

// New creates a chunker with the default window table and the given options.
func New(opts ...Option) *Processor {
	p := &Processor{windows: domain.DefaultChunkWindows()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Window returns the window used for a file type. Unlisted types use "other".
func (p *Processor) Window(ft domain.FileType) domain.ChunkWindow {
	if w, ok := p.windows[ft]; ok {
		return w
	}
	return p.windows[domain.FileTypeOther]
}

// Chunk splits text into word windows.
//
// Windows start every size-overlap words while the start is below
// max(words-overlap, 1), so a text of W words yields
// ceil(max(W-O,1)/(S-O)) windows. Empty text yields no chunks.
func (p *Processor) Chunk(text string, ft domain.FileType) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	w := p.Window(ft)
	limit := max(len(words)-w.Overlap, 1)
	chunks := make([]string, 0, (limit+w.Step()-1)/w.Step())

	for start := 0; start < limit; start += w.Step() {
		end := min(start+w.Size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// ChunkUnits chunks every unit with text and attaches chunk metadata.
// Error units and blank units contribute nothing.
func (p *Processor) ChunkUnits(units []domain.ContentUnit, ft domain.FileType) []domain.Chunk {
	var chunks []domain.Chunk
	for i := range units {
		if !units[i].HasText() {
			continue
		}
		meta := domain.ChunkMetadata{
			Unit:       units[i].Number,
			DocumentID: units[i].DocumentID,
			FileType:   ft,
		}
		for _, text := range p.Chunk(units[i].Text, ft) {
			chunks = append(chunks, domain.Chunk{Text: text, Metadata: meta})
		}
	}
	return chunks
}
