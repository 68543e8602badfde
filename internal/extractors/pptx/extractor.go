// Package pptx extracts slide text, tables and picture text from slide decks.
package pptx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/extractors/ooxml"
	"github.com/custodia-labs/deckqa/internal/extractors/raster"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const (
	presentationPart = "ppt/presentation.xml"
	mediaPrefix      = "ppt/media/"

	// ImagePrefix marks picture text injected into a slide.
	ImagePrefix = "[Image OCR/Text] "
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extractor reads .pptx files.
type Extractor struct {
	reader driven.ImageReader
}

// New creates a slide deck extractor. Pictures are read with reader; a nil
// reader skips picture text.
func New(reader driven.ImageReader) *Extractor {
	return &Extractor{reader: reader}
}

// Extract returns one unit per slide in presentation order.
func (e *Extractor) Extract(ctx context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	zr, err := zip.OpenReader(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer zr.Close()

	if req.WorkDir != "" {
		media := ooxml.ExtractMedia(&zr.Reader, mediaPrefix, req.WorkDir)
		logger.Debug("pptx: extracted %d media file(s)", len(media))
	}

	slides := slideOrder(&zr.Reader)
	if len(slides) == 0 {
		return nil, errors.New("no slides found")
	}

	pictures := make(map[string]string)
	units := make([]domain.ContentUnit, 0, len(slides))
	for i, part := range slides {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pptx: %w", err)
		}

		lines, err := slideLines(&zr.Reader, part)
		if err != nil {
			logger.Warn("pptx: slide %d: %v", i+1, err)
		}
		for _, text := range e.slidePictures(ctx, &zr.Reader, part, pictures) {
			lines = append(lines, ImagePrefix+text)
		}
		units = append(units, domain.NewUnit(i+1, strings.Join(lines, "\n")))
	}
	return units, nil
}

// slidePictures returns the non-empty text of every picture a slide links to.
// Results are cached per media part since decks reuse pictures.
func (e *Extractor) slidePictures(ctx context.Context, zr *zip.Reader, part string, cache map[string]string) []string {
	if e.reader == nil {
		return nil
	}
	rels, err := ooxml.ReadRels(zr, ooxml.RelsPath(part))
	if err != nil {
		logger.Warn("pptx: %v", err)
		return nil
	}

	var texts []string
	seen := make(map[string]bool)
	for _, rel := range rels {
		if !rel.IsImage() || rel.IsExternal() {
			continue
		}
		target := ooxml.ResolveTarget(part, rel.Target)
		if seen[target] || ooxml.MediaCategory(target) != ooxml.CategoryImages {
			continue
		}
		seen[target] = true

		text, ok := cache[target]
		if !ok {
			data, err := ooxml.ReadEntry(zr, target)
			if err == nil {
				text = strings.TrimSpace(raster.ReadEmbedded(ctx, e.reader, data))
			}
			cache[target] = text
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

type presentation struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

// slideOrder lists slide parts in presentation order, falling back to
// numeric file order when the presentation part cannot be resolved.
func slideOrder(zr *zip.Reader) []string {
	if ordered := presentationOrder(zr); len(ordered) > 0 {
		return ordered
	}

	var parts []string
	for _, f := range zr.File {
		if slidePart.MatchString(f.Name) {
			parts = append(parts, f.Name)
		}
	}
	sort.Slice(parts, func(i, j int) bool { return ooxml.NaturalLess(parts[i], parts[j]) })
	return parts
}

func presentationOrder(zr *zip.Reader) []string {
	data, err := ooxml.ReadEntry(zr, presentationPart)
	if err != nil {
		return nil
	}
	var pres presentation
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil
	}
	rels, err := ooxml.ReadRels(zr, ooxml.RelsPath(presentationPart))
	if err != nil {
		return nil
	}
	targets := make(map[string]string, len(rels))
	for _, rel := range rels {
		targets[rel.ID] = ooxml.ResolveTarget(presentationPart, rel.Target)
	}

	var parts []string
	for _, id := range pres.SlideIDs {
		target, ok := targets[id.RelID]
		if !ok || !hasEntry(zr, target) {
			return nil
		}
		parts = append(parts, target)
	}
	return parts
}

func hasEntry(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// slideLines walks a slide's XML in document order. Every non-empty text
// paragraph becomes a line; table rows become tab-joined lines.
func slideLines(zr *zip.Reader, part string) ([]string, error) {
	data, err := ooxml.ReadEntry(zr, part)
	if err != nil {
		return nil, err
	}
	return parseSlide(data)
}

func parseSlide(data []byte) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	var (
		lines     []string
		para      strings.Builder
		inText    bool
		tableRows [][]string // stack, innermost row last
		cells     []*strings.Builder
		tableDeep int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return lines, fmt.Errorf("parse slide: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDeep++
			case "tr":
				if tableDeep > 0 {
					tableRows = append(tableRows, nil)
				}
			case "tc":
				if tableDeep > 0 {
					cells = append(cells, &strings.Builder{})
				}
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "br":
				para.WriteString(" ")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(para.String())
				if text == "" {
					continue
				}
				if tableDeep > 0 && len(cells) > 0 {
					cell := cells[len(cells)-1]
					if cell.Len() > 0 {
						cell.WriteString(" ")
					}
					cell.WriteString(text)
				} else {
					lines = append(lines, text)
				}
			case "tc":
				if tableDeep > 0 && len(cells) > 0 && len(tableRows) > 0 {
					cell := cells[len(cells)-1]
					cells = cells[:len(cells)-1]
					last := len(tableRows) - 1
					tableRows[last] = append(tableRows[last], cell.String())
				}
			case "tr":
				if tableDeep > 0 && len(tableRows) > 0 {
					row := tableRows[len(tableRows)-1]
					tableRows = tableRows[:len(tableRows)-1]
					if line := strings.Join(row, "\t"); strings.TrimSpace(line) != "" {
						lines = append(lines, line)
					}
				}
			case "tbl":
				if tableDeep > 0 {
					tableDeep--
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return lines, nil
}
