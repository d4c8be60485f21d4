// Package metricstore reads and writes the per-fold metric artifacts
// produced by training runs.
package metricstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
	"github.com/klauspost/compress/zstd"
)

// Errors wrapped inside schema.ArtifactReadError.
var (
	ErrUnsupportedFormat = errors.New("unsupported artifact format")
	ErrSchemaMismatch    = errors.New("schema mismatch")
)

// compressedSuffix marks artifacts compressed with zstd.
const compressedSuffix = ".zst"

// Store loads metric records leniently: failures become diagnostics.
type Store struct {
	diag contract.Diagnostics
}

// New returns a Store reporting through diag; nil reports to stderr.
func New(diag contract.Diagnostics) *Store {
	if diag == nil {
		diag = contract.StderrDiagnostics{}
	}
	return &Store{diag: diag}
}

// Load reads the record at path. On any failure it reports the location
// and returns false; it never fails the caller.
func (s *Store) Load(path string) (schema.MetricRecord, bool) {
	record, err := Read(path)
	if err != nil {
		s.diag.Warn("Skipping metric artifact", err)
		return nil, false
	}
	return record, true
}

// Read is the strict variant of Store.Load. Every error is a
// *schema.ArtifactReadError.
func Read(path string) (schema.MetricRecord, error) {
	record, err := read(path)
	if err != nil {
		return nil, &schema.ArtifactReadError{Path: path, Err: err}
	}
	return record, nil
}

func read(path string) (schema.MetricRecord, error) {
	c, compressed, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	raw, err := c.decode(r)
	if err != nil {
		return nil, err
	}
	return toRecord(raw)
}

// Write encodes record at path using the codec selected by its extension,
// creating parent directories as needed.
func Write(path string, record schema.MetricRecord) (err error) {
	c, compressed, err := codecFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var zw *zstd.Encoder
	if compressed {
		if zw, err = zstd.NewWriter(bw); err != nil {
			return err
		}
		w = zw
	}

	if err := c.encode(w, record); err != nil {
		if zw != nil {
			_ = zw.Close()
		}
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// codec converts between an artifact stream and plain Go data.
type codec struct {
	decode func(io.Reader) (any, error)
	encode func(io.Writer, schema.MetricRecord) error
}

var codecs = map[string]codec{
	".pkl":    {decode: decodePickle, encode: encodePickle},
	".pickle": {decode: decodePickle, encode: encodePickle},
	".json":   {decode: decodeJSON, encode: encodeJSON},
	".yaml":   {decode: decodeYAML, encode: encodeYAML},
	".yml":    {decode: decodeYAML, encode: encodeYAML},
}

// codecFor picks the codec from the extension left after an optional .zst suffix.
func codecFor(path string) (codec, bool, error) {
	name := strings.ToLower(filepath.Base(path))
	compressed := strings.HasSuffix(name, compressedSuffix)
	name = strings.TrimSuffix(name, compressedSuffix)
	c, ok := codecs[filepath.Ext(name)]
	if !ok {
		return codec{}, false, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
	return c, compressed, nil
}
