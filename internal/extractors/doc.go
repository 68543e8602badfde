// Package extractors turns files into content units. The Dispatcher
// validates the input, picks the extractor for the file's format and
// normalises whatever comes back; it never fails; problems are reported
// as error units.
//
// Each format lives in its own subpackage:
//
//	pptx       slide decks, including table and picture text
//	pdf        text layer via poppler, OCR for scanned pages
//	docx       word documents and their embedded pictures
//	raster     image files, one unit per frame
//	media      audio and video transcripts
//	plaintext  text and markdown
package extractors
