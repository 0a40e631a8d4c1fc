package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathFor returns the sidecar path for a markdown document: the same
// base name with a .writing.json extension.
func PathFor(docPath string) string {
	ext := filepath.Ext(docPath)
	return strings.TrimSuffix(docPath, ext) + ".writing.json"
}

// Load reads the sidecar for docPath. When none exists yet, a fresh
// one is created, written to disk, and returned.
func Load(docPath string) (*Sidecar, error) {
	path := PathFor(docPath)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := New()
		if err := Save(docPath, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	var s Sidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the sidecar for docPath atomically (temp file, then
// rename) so a crash never leaves a truncated file.
func Save(docPath string, s *Sidecar) error {
	path := PathFor(docPath)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	return atomicWrite(path, data)
}

// ReadDocument reads the markdown document itself.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", path, err)
	}
	return string(data), nil
}

// WriteDocument writes the markdown document atomically.
func WriteDocument(path, content string) error {
	return atomicWrite(path, []byte(content))
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
