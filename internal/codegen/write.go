package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/gamebus/internal/manifest"
)

// WriteFile writes src to path unless the file already holds identical
// content. It reports whether the file changed.
func WriteFile(path string, src []byte) (bool, error) {
	stale, err := Stale(path, src)
	if err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}

	// Write-then-rename keeps readers from seeing a half-written file.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".eventgen-*")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(src); err != nil {
		tmp.Close()
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, fmt.Errorf("replacing %s: %w", path, err)
	}
	return true, nil
}

// Stale reports whether the file at path differs from src.
// A missing file is stale.
func Stale(path string, src []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return !bytes.Equal(existing, src), nil
}

// GenerateFile loads the manifest at manifestPath, generates code and
// writes it to outPath. It reports whether outPath changed.
func GenerateFile(manifestPath, outPath string, opts Options) (bool, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return false, err
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(manifestPath)
	}
	src, err := Generate(m, opts)
	if err != nil {
		return false, err
	}
	return WriteFile(outPath, src)
}
