// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Produces content units from one file of a given format
//   - ArtifactStore: Session directories, unit artifacts and chunk sidecars
//   - SessionStore: Immutable per-session index snapshots
//   - DocumentCatalog: Records of ingested documents
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, retrieval falls back to the first chunks.
//   - ChatService: Without it, questions get the apology answer.
//   - OCREngine: Without it, image-only content extracts as empty text.
//   - Transcriber: Without it, audio and video report an unavailable extractor.
//   - TokenCounter: Without it, prompt budgets use a rune estimate.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
