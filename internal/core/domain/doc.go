// Package domain defines the core entities for deckqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file owned by a session
//   - ContentUnit: One extracted page, slide or frame of a document
//   - Chunk: A word window of a unit, the retrieval atom
//   - Reference: A (unit, accuracy, URL) attribution record
//   - Format / FileType: The closed set of supported document families
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
