// Package store persists the portfolio document.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/naka-gawa/github-portfolio/internal/domain"
)

// Write encodes doc with two-space indentation and replaces path with it.
// The file is written to a temporary sibling first and renamed into place, so
// a failed or interrupted write never leaves a partial document behind.
func Write(path string, doc *domain.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return &domain.PersistenceError{Path: path, Op: "encode", Err: err}
	}
	return writeAtomic(path, data)
}

// Encode renders doc exactly as Write stores it. HTML characters are left
// unescaped and there is no trailing newline.
func Encode(doc *domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Minify reads the JSON document at src and writes it to dst with all
// insignificant whitespace removed. It knows nothing about the document's shape.
func Minify(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return &domain.PersistenceError{Path: src, Op: "read", Err: err}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return &domain.PersistenceError{Path: src, Op: "compact", Err: err}
	}
	return writeAtomic(dst, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.PersistenceError{Path: dir, Op: "create directory", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.PersistenceError{Path: path, Op: "create temp file", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &domain.PersistenceError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &domain.PersistenceError{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return &domain.PersistenceError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &domain.PersistenceError{Path: path, Op: "rename", Err: fmt.Errorf("replace %s: %w", path, err)}
	}
	return nil
}
