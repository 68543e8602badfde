package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileType tags a document family for chunking and metadata purposes.
type FileType string

// Known file types.
const (
	FileTypePPTX  FileType = "pptx"
	FileTypePDF   FileType = "pdf"
	FileTypeDOCX  FileType = "docx"
	FileTypeImage FileType = "image"
	FileTypeAudio FileType = "audio"
	FileTypeVideo FileType = "video"
	FileTypeText  FileType = "text"
	FileTypeOther FileType = "other"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePPTX, FileTypePDF, FileTypeDOCX, FileTypeImage,
		FileTypeAudio, FileTypeVideo, FileTypeText, FileTypeOther:
		return true
	default:
		return false
	}
}

// UnitKey returns the metadata key used for unit numbers of this type.
// Slide decks are addressed by slide, everything else by page.
func (t FileType) UnitKey() string {
	if t == FileTypePPTX {
		return "slide"
	}
	return "page"
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// Format is the closed set of extraction formats the dispatcher knows.
// FormatUnknown is the explicit fallback variant.
type Format int

// Supported extraction formats.
const (
	FormatUnknown Format = iota
	FormatImage
	FormatPDF
	FormatDOCX
	FormatPPTX
	FormatAudio
	FormatVideo
	FormatText
)

var extensionFormats = map[string]Format{
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".bmp":  FormatImage,
	".tiff": FormatImage,
	".tif":  FormatImage,
	".gif":  FormatImage,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".pptx": FormatPPTX,
	".mp3":  FormatAudio,
	".wav":  FormatAudio,
	".aac":  FormatAudio,
	".ogg":  FormatAudio,
	".m4a":  FormatAudio,
	".mp4":  FormatVideo,
	".mov":  FormatVideo,
	".avi":  FormatVideo,
	".wmv":  FormatVideo,
	".mkv":  FormatVideo,
	".txt":  FormatText,
	".md":   FormatText,
}

// FormatForExtension maps a file extension (with or without the leading dot,
// any case) to its format.
func FormatForExtension(ext string) Format {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return FormatUnknown
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if f, ok := extensionFormats[ext]; ok {
		return f
	}
	return FormatUnknown
}

// FormatForPath maps a file path to its format by extension.
func FormatForPath(path string) Format {
	return FormatForExtension(filepath.Ext(path))
}

// Formats returns every known format except FormatUnknown.
func Formats() []Format {
	return []Format{
		FormatImage, FormatPDF, FormatDOCX, FormatPPTX,
		FormatAudio, FormatVideo, FormatText,
	}
}

// Extensions returns the sorted extensions mapped to this format.
func (f Format) Extensions() []string {
	var exts []string
	for ext, format := range extensionFormats {
		if format == f {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// FileType returns the file type used for chunking documents of this format.
func (f Format) FileType() FileType {
	switch f {
	case FormatImage:
		return FileTypeImage
	case FormatPDF:
		return FileTypePDF
	case FormatDOCX:
		return FileTypeDOCX
	case FormatPPTX:
		return FileTypePPTX
	case FormatAudio:
		return FileTypeAudio
	case FormatVideo:
		return FileTypeVideo
	case FormatText:
		return FileTypeText
	default:
		return FileTypeOther
	}
}

// String returns the short name used in logs and error tags.
func (f Format) String() string {
	switch f {
	case FormatImage:
		return "image"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatPPTX:
		return "pptx"
	case FormatAudio:
		return "audio"
	case FormatVideo:
		return "video"
	case FormatText:
		return "txt"
	default:
		return "unknown"
	}
}

// IsSupportedPath returns true if the path has an extension with a dedicated extractor.
func IsSupportedPath(path string) bool {
	return FormatForPath(path) != FormatUnknown
}
