package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// Loader reads bill documents from disk with a size cap.
type Loader struct {
	maxBytes int64
}

// NewLoader creates a new Loader. maxBytes <= 0 means a 25 MB default.
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = 25 << 20
	}
	return &Loader{maxBytes: maxBytes}
}

// Load reads a PDF document from path. Empty files, oversized files and
// files without a PDF header are rejected before any backend is paid
// for them.
func (l *Loader) Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("document %s exceeds size limit (%d > %d bytes)", path, info.Size(), l.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document %s is empty", path)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("document %s is not a PDF", path)
	}

	return data, nil
}

// ListDocuments returns all PDF paths in dir, non-recursive, sorted by
// the directory listing order.
func (l *Loader) ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
