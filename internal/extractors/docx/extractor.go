// Package docx extracts body text, tables and picture text from word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
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
	documentPart = "word/document.xml"
	mediaPrefix  = "word/media/"
)

// Extractor handles DOCX documents.
type Extractor struct {
	reader driven.ImageReader
}

// New creates a DOCX extractor. A nil reader skips embedded pictures.
func New(reader driven.ImageReader) *Extractor {
	return &Extractor{reader: reader}
}

// Extract returns the body as unit 1 followed by one unit per embedded
// picture that yields text, numbered 2, 3, ...
func (e *Extractor) Extract(ctx context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	zr, err := zip.OpenReader(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer zr.Close()

	data, err := ooxml.ReadEntry(&zr.Reader, documentPart)
	if err != nil {
		return nil, err
	}
	body, err := parseDocumentXML(data)
	if err != nil {
		return nil, err
	}

	units := []domain.ContentUnit{domain.NewUnit(1, body)}
	if e.reader == nil {
		return units, nil
	}

	workDir := req.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "docx-media-")
		if err != nil {
			return units, nil
		}
		defer os.RemoveAll(workDir)
	}

	for _, media := range ooxml.ExtractMedia(&zr.Reader, mediaPrefix, workDir) {
		if media.Category != ooxml.CategoryImages {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("docx: %w", err)
		}
		picture, err := os.ReadFile(media.Path)
		if err != nil {
			logger.Warn("docx: read %s: %v", filepath.Base(media.Path), err)
			continue
		}
		text := strings.TrimSpace(raster.ReadEmbedded(ctx, e.reader, picture))
		if text == "" {
			continue
		}
		units = append(units, domain.NewUnit(len(units)+1, text))
	}
	return units, nil
}

// parseDocumentXML walks the body in document order. Paragraphs become
// lines; table rows become tab-joined lines.
func parseDocumentXML(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		lines  []string
		para   strings.Builder
		inText bool
		rows   [][]string // stack, innermost row last
		cells  []*strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			case "br", "cr":
				para.WriteString("\n")
			case "tr":
				rows = append(rows, nil)
			case "tc":
				cells = append(cells, &strings.Builder{})
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
				if len(cells) > 0 {
					cell := cells[len(cells)-1]
					if cell.Len() > 0 {
						cell.WriteString(" ")
					}
					cell.WriteString(text)
				} else {
					lines = append(lines, text)
				}
			case "tc":
				if len(cells) > 0 && len(rows) > 0 {
					cell := cells[len(cells)-1]
					cells = cells[:len(cells)-1]
					rows[len(rows)-1] = append(rows[len(rows)-1], cell.String())
				}
			case "tr":
				if len(rows) > 0 {
					row := rows[len(rows)-1]
					rows = rows[:len(rows)-1]
					if line := strings.Join(row, "\t"); strings.TrimSpace(line) != "" {
						lines = append(lines, line)
					}
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
