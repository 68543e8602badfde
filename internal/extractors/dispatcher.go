package extractors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/extractors/plaintext"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// invalidTolerance is the share of undecodable bytes (1 in N) an
// unknown-format file may contain and still be read as text.
const invalidTolerance = 100

// Ensure Dispatcher implements the interface.
var _ driven.DocumentExtractor = (*Dispatcher)(nil)

// Dispatcher routes files to format extractors.
type Dispatcher struct {
	extractors  map[domain.Format]driven.Extractor
	maxFileSize int64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExtractor registers e for format f.
func WithExtractor(f domain.Format, e driven.Extractor) Option {
	return func(d *Dispatcher) {
		d.Register(f, e)
	}
}

// WithMaxFileSize sets the size ceiling. Zero or less disables the check.
func WithMaxFileSize(n int64) Option {
	return func(d *Dispatcher) {
		d.maxFileSize = n
	}
}

// NewDispatcher creates a dispatcher with no extractors registered.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		extractors:  make(map[domain.Format]driven.Extractor),
		maxFileSize: domain.DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register sets the extractor for a format, replacing any previous one.
// A nil extractor unregisters the format.
func (d *Dispatcher) Register(f domain.Format, e driven.Extractor) {
	if e == nil {
		delete(d.extractors, f)
		return
	}
	d.extractors[f] = e
}

// Supports returns true if f has an extractor.
func (d *Dispatcher) Supports(f domain.Format) bool {
	_, ok := d.extractors[f]
	return ok
}

// Extract is ExtractDocument without a document ID.
func (d *Dispatcher) Extract(ctx context.Context, path, scratchDir string) []domain.ContentUnit {
	return d.ExtractDocument(ctx, path, scratchDir, "")
}

// ExtractDocument extracts path and stamps every unit with documentID and
// the file name. The result is never empty. Extractor scratch files go to
// <scratchDir>/extract_<id>; with an empty scratchDir they go to the system
// temp dir and are removed afterwards.
func (d *Dispatcher) ExtractDocument(ctx context.Context, path, scratchDir, documentID string) []domain.ContentUnit {
	units := d.extract(ctx, path, scratchDir)
	return normalise(units, documentID, filepath.Base(path))
}

func (d *Dispatcher) extract(ctx context.Context, path, scratchDir string) []domain.ContentUnit {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail(name, domain.NewExtractionError(domain.TagFileNotFound, nil))
	case err != nil:
		return fail(name, domain.NewExtractionError(domain.TagStatFailed, err))
	case !info.Mode().IsRegular():
		return fail(name, domain.NewExtractionError(domain.TagNotAFile, nil))
	case d.maxFileSize > 0 && info.Size() > d.maxFileSize:
		return fail(name, &domain.ExtractionError{
			Tag:    domain.TagFileTooLarge,
			Detail: fmt.Sprintf("%d bytes", info.Size()),
		})
	}

	format := domain.FormatForPath(path)
	if format == domain.FormatUnknown {
		return decodeUnknown(path)
	}

	extractor, ok := d.extractors[format]
	if !ok {
		return fail(name, domain.NewExtractionError(domain.ExtractorUnavailableTag(format), nil))
	}

	workDir, cleanup, err := makeWorkDir(scratchDir)
	if err != nil {
		return fail(name, domain.NewExtractionError(domain.TagWorkDirFailed, err))
	}
	defer cleanup()

	logger.Debug("extract: %s as %s", name, format)
	units, err := run(ctx, extractor, driven.ExtractRequest{Path: path, WorkDir: workDir})
	if err != nil {
		var extErr *domain.ExtractionError
		if !errors.As(err, &extErr) {
			extErr = domain.NewExtractionError(domain.ExtractorFailedTag(format), err)
		}
		logger.Warn("extract: %s: %s", name, extErr.Reason())
		return fail(name, extErr)
	}
	return units
}

// run calls the extractor, converting a panic into an error.
func run(ctx context.Context, e driven.Extractor, req driven.ExtractRequest) (units []domain.ContentUnit, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.Extract(ctx, req)
}

func fail(name string, err *domain.ExtractionError) []domain.ContentUnit {
	return []domain.ContentUnit{domain.ErrorUnit(name, err.Reason())}
}

func makeWorkDir(scratchDir string) (string, func(), error) {
	base := scratchDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "extract_"+strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", nil, err
	}
	if scratchDir != "" {
		return dir, func() {}, nil
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// decodeUnknown reads a file of unknown format as text when its bytes
// look like text.
func decodeUnknown(path string) []domain.ContentUnit {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(name, domain.NewExtractionError(domain.TagReadFailed, err))
	}
	if !looksLikeText(data) {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == "" {
			ext = "(none)"
		}
		return fail(name, &domain.ExtractionError{Tag: domain.TagUnsupportedFileType, Detail: ext})
	}
	return []domain.ContentUnit{domain.NewUnit(1, plaintext.Decode(data))}
}

func looksLikeText(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	invalid := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return invalid*invalidTolerance <= len(data)
}

// normalise stamps identity on every unit, renumbers units without a
// valid number and guarantees a non-empty result.
func normalise(units []domain.ContentUnit, documentID, fileName string) []domain.ContentUnit {
	if len(units) == 0 {
		units = []domain.ContentUnit{domain.NewUnit(1, "")}
	}
	out := make([]domain.ContentUnit, len(units))
	for i, u := range units {
		if u.Number < 1 {
			u.Number = i + 1
		}
		if u.Status == "" {
			u.Status = domain.UnitStatusOK
		}
		if u.DocumentID == "" {
			u.DocumentID = documentID
		}
		if u.FileName == "" {
			u.FileName = fileName
		}
		out[i] = u
	}
	return out
}
