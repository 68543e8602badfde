package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.IndexCodec = Codec{}

// File format: magic, then little-endian uint32 version, dim and count,
// then count*dim float32 values.
var magic = [4]byte{'D', 'Q', 'I', 'X'}

const formatVersion = 1

// ErrBadIndexFile is returned for files that are not valid indexes.
var ErrBadIndexFile = errors.New("not a valid index file")

// Codec reads and writes Index files.
type Codec struct{}

// New returns an empty index.
func (Codec) New(dimensions int) driven.VectorIndex {
	return New(dimensions)
}

// Save writes index to path atomically via a temp file and rename.
func (Codec) Save(index driven.VectorIndex, path string) error {
	x, ok := index.(*Index)
	if !ok {
		return fmt.Errorf("flat: cannot save %T: %w", index, domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("flat: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("flat: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := x.Encode(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flat: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flat: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("flat: rename: %w", err)
	}
	return nil
}

// Load reads an index from path.
func (Codec) Load(path string) (driven.VectorIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flat: %w", err)
	}
	defer f.Close()

	x, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	return x, nil
}

// Encode serialises the index.
func (x *Index) Encode(w io.Writer) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	header := make([]byte, 16)
	copy(header, magic[:])
	binary.LittleEndian.PutUint32(header[4:], formatVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(x.dim))
	binary.LittleEndian.PutUint32(header[12:], uint32(x.len()))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("flat: write header: %w", err)
	}

	buf := make([]byte, 4)
	for _, v := range x.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("flat: write vectors: %w", err)
		}
	}
	return nil
}

// Decode reads an index written by Encode.
func Decode(r io.Reader) (*Index, error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("flat: read header: %w", ErrBadIndexFile)
	}
	if [4]byte(header[:4]) != magic {
		return nil, fmt.Errorf("flat: bad magic: %w", ErrBadIndexFile)
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != formatVersion {
		return nil, fmt.Errorf("flat: unsupported version %d: %w", v, ErrBadIndexFile)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:]))
	count := int(binary.LittleEndian.Uint32(header[12:]))
	if dim == 0 && count > 0 {
		return nil, fmt.Errorf("flat: zero dimension with %d vectors: %w", count, ErrBadIndexFile)
	}

	x := New(dim)
	x.data = make([]float32, 0, min(dim*count, 1<<20))
	buf := make([]byte, 4)
	for i := 0; i < dim*count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("flat: truncated vectors: %w", ErrBadIndexFile)
		}
		x.data = append(x.data, math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	return x, nil
}
