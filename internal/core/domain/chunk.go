package domain

import (
	"encoding/json"
	"fmt"
)

// ChunkMetadata locates a chunk within its source document.
type ChunkMetadata struct {
	// Unit is the page/slide number the chunk came from. Zero means unknown.
	Unit int

	// DocumentID identifies the owning document.
	DocumentID string

	// FileType selects the unit key ("slide" or "page") on the wire.
	FileType FileType
}

// UnitOrDefault returns the unit number, treating unknown units as unit 1.
func (m ChunkMetadata) UnitOrDefault() int {
	if m.Unit < 1 {
		return 1
	}
	return m.Unit
}

// MarshalJSON writes the unit under the key appropriate to the file type.
func (m ChunkMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if m.Unit > 0 {
		out[m.FileType.UnitKey()] = m.Unit
	} else {
		out[m.FileType.UnitKey()] = nil
	}
	if m.DocumentID != "" {
		out["document_id"] = m.DocumentID
	}
	if m.FileType != "" {
		out["filetype"] = m.FileType
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either unit key, plus the legacy *_number variants.
func (m *ChunkMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("chunk metadata: %w", err)
	}

	*m = ChunkMetadata{}
	for _, key := range []string{"slide", "page", "slide_number", "page_number"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var n *int
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("chunk metadata %s: %w", key, err)
		}
		if n != nil {
			m.Unit = *n
			break
		}
	}
	for _, key := range []string{"document_id", "file_id"} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, &m.DocumentID); err != nil {
				return fmt.Errorf("chunk metadata %s: %w", key, err)
			}
			break
		}
	}
	if v, ok := raw["filetype"]; ok {
		if err := json.Unmarshal(v, &m.FileType); err != nil {
			return fmt.Errorf("chunk metadata filetype: %w", err)
		}
	}
	return nil
}

// Chunk is a contiguous word window of one ContentUnit.
type Chunk struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// Metadata locates the chunk in its document.
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkWindow is a word window size and overlap.
type ChunkWindow struct {
	Size    int
	Overlap int
}

// Step returns how many words consecutive windows advance.
func (w ChunkWindow) Step() int {
	return w.Size - w.Overlap
}

// Validate checks 0 <= Overlap < Size.
func (w ChunkWindow) Validate() error {
	if w.Size <= 0 || w.Overlap < 0 || w.Overlap >= w.Size {
		return fmt.Errorf("%w: chunk window size=%d overlap=%d", ErrInvalidInput, w.Size, w.Overlap)
	}
	return nil
}

// DefaultChunkWindows returns the per-file-type window table.
func DefaultChunkWindows() map[FileType]ChunkWindow {
	return map[FileType]ChunkWindow{
		FileTypePPTX:  {Size: 500, Overlap: 75},
		FileTypePDF:   {Size: 800, Overlap: 100},
		FileTypeDOCX:  {Size: 600, Overlap: 80},
		FileTypeImage: {Size: 300, Overlap: 50},
		FileTypeAudio: {Size: 400, Overlap: 60},
		FileTypeVideo: {Size: 400, Overlap: 60},
		FileTypeOther: {Size: 500, Overlap: 75},
	}
}
