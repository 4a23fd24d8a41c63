package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// Compression identifies the container format of a document file.
type Compression int

const (
	// None is a plain YAML file.
	None Compression = iota
	// Zstd is a zstd-compressed file (.zst).
	Zstd
	// LZ4 is an lz4 frame-compressed file (.lz4).
	LZ4
)

// CompressionFor returns the compression implied by a file name.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

// Decode parses a YAML stream from r. The documents of a multi-document
// stream are merged in order. Unknown top-level keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Document
	for {
		var next Document
		if err := dec.Decode(&next); err != nil {
			if errors.Is(err, io.EOF) {
				return &d, nil
			}
			return nil, err
		}
		d.Merge(&next)
	}
}

// Encode writes d as YAML to w.
func Encode(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// ReadFile reads and parses a document, decompressing it according to its
// extension.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	switch CompressionFor(path) {
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case LZ4:
		r = lz4.NewReader(r)
	}

	d, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, withFile(err, path))
	}
	return d, nil
}

// WriteFile encodes d to path, compressing it according to its extension.
func WriteFile(path string, d *Document) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch CompressionFor(path) {
	case Zstd:
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if err := Encode(zw, d); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case LZ4:
		lw := lz4.NewWriter(f)
		if err := Encode(lw, d); err != nil {
			lw.Close()
			return err
		}
		return lw.Close()
	default:
		w := bufio.NewWriter(f)
		if err := Encode(w, d); err != nil {
			return err
		}
		return w.Flush()
	}
}

// Glob expands patterns to a sorted, de-duplicated list of files. Patterns
// without glob characters are returned as is if the file exists.
func Glob(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("glob %q: %w", pattern, os.ErrNotExist)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

// Load expands patterns and merges all matching documents in path order.
func Load(patterns ...string) (*Document, []string, error) {
	files, err := Glob(patterns...)
	if err != nil {
		return nil, nil, err
	}
	merged := &Document{}
	for _, f := range files {
		d, err := ReadFile(f)
		if err != nil {
			return nil, nil, err
		}
		merged.Merge(d)
	}
	return merged, files, nil
}
