package driven

import (
	"context"
	"image"
)

// PageSegMode is the tesseract page segmentation mode.
type PageSegMode int

// Page segmentation modes used by the classifier and extractors.
const (
	// PSMAuto is fully automatic page segmentation, for running text.
	PSMAuto PageSegMode = 3

	// PSMBlock assumes a single uniform block of text, for table cells.
	PSMBlock PageSegMode = 6

	// PSMSparse finds as much text as possible in no particular order.
	PSMSparse PageSegMode = 11
)

// OCREngine recognises text in an image.
type OCREngine interface {
	// Recognise returns the text found in img.
	Recognise(ctx context.Context, img image.Image, mode PageSegMode) (string, error)
}

// Transcriber converts speech in an audio file to text.
type Transcriber interface {
	// Transcribe returns the transcript of the audio file at path.
	Transcribe(ctx context.Context, path string) (string, error)
}

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	// Run executes the named program and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ImageReader turns an image into indexable text, detecting tables and
// recognising them cell by cell. It never fails; unreadable images yield "".
type ImageReader interface {
	ReadImage(ctx context.Context, img image.Image) string
}
