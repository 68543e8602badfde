// Package ooxml holds the zip and relationship plumbing shared by the
// slide deck and word document extractors.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// maxEntrySize caps a single decompressed zip entry.
const maxEntrySize = 512 << 20

// ImageRelType is the relationship type suffix of embedded pictures.
const ImageRelType = "/image"

// ReadEntry returns the decompressed bytes of the named zip entry.
// A missing entry yields an error wrapping domain.ErrNotFound.
func ReadEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
}

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// IsExternal returns true if the target lives outside the package.
func (r Relationship) IsExternal() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// IsImage returns true for picture relationships.
func (r Relationship) IsImage() bool {
	return strings.HasSuffix(r.Type, ImageRelType)
}

type relationships struct {
	Items []Relationship `xml:"Relationship"`
}

// ReadRels parses a relationships part. A missing part yields an empty list.
func ReadRels(zr *zip.Reader, name string) ([]Relationship, error) {
	data, err := ReadEntry(zr, name)
	if err != nil {
		return nil, nil
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return rels.Items, nil
}

// RelsPath returns the relationships part that belongs to part,
// e.g. ppt/slides/slide1.xml → ppt/slides/_rels/slide1.xml.rels.
func RelsPath(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget resolves a relationship target against the part that owns it.
func ResolveTarget(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(part), target)
}

// NaturalLess orders strings so that embedded numbers compare numerically:
// slide2.xml sorts before slide10.xml.
func NaturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, ra := leadingDigits(a)
			nb, rb := leadingDigits(b)
			na = strings.TrimLeft(na, "0")
			nb = strings.TrimLeft(nb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

// Media categories.
const (
	CategoryImages    = "images"
	CategoryVideos    = "videos"
	CategoryAudio     = "audio"
	CategoryVectors   = "vectors"
	CategoryDocuments = "documents"
	CategoryOthers    = "others"
)

var mediaCategories = map[string]string{
	".png": CategoryImages, ".jpg": CategoryImages, ".jpeg": CategoryImages,
	".gif": CategoryImages, ".bmp": CategoryImages, ".tiff": CategoryImages,
	".tif": CategoryImages,
	".mp4": CategoryVideos, ".mov": CategoryVideos, ".avi": CategoryVideos,
	".wmv": CategoryVideos, ".mkv": CategoryVideos, ".m4v": CategoryVideos,
	".mp3": CategoryAudio, ".wav": CategoryAudio, ".m4a": CategoryAudio,
	".aac": CategoryAudio, ".ogg": CategoryAudio, ".wma": CategoryAudio,
	".svg": CategoryVectors, ".emf": CategoryVectors, ".wmf": CategoryVectors,
	".pdf": CategoryDocuments, ".docx": CategoryDocuments, ".xlsx": CategoryDocuments,
	".pptx": CategoryDocuments, ".html": CategoryDocuments, ".htm": CategoryDocuments,
}

// MediaCategory buckets a media file by extension.
func MediaCategory(name string) string {
	if c, ok := mediaCategories[strings.ToLower(path.Ext(name))]; ok {
		return c
	}
	return CategoryOthers
}

// MediaFile is an embedded file copied out of the package.
type MediaFile struct {
	// Entry is the zip entry name, e.g. ppt/media/image1.png.
	Entry string

	// Path is where the file was written.
	Path string

	// Category is one of the Category constants.
	Category string
}

// ExtractMedia writes every entry under prefix to dir/<category>/<name>,
// in natural name order. Entries that fail to copy are skipped.
func ExtractMedia(zr *zip.Reader, prefix, dir string) []MediaFile {
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && !strings.HasSuffix(f.Name, "/") {
			names = append(names, f.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	var out []MediaFile
	for _, name := range names {
		data, err := ReadEntry(zr, name)
		if err != nil {
			continue
		}
		category := MediaCategory(name)
		target := filepath.Join(dir, category, path.Base(name))
		if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			continue
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			continue
		}
		out = append(out, MediaFile{Entry: name, Path: target, Category: category})
	}
	return out
}
