package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// IndexRelPath is the index file's path relative to project_root.
const IndexRelPath = ".context/.project/PROJECT_INDEX.json"

// IndexRelPathFor joins root with the conventional index file location.
func IndexRelPathFor(root string) string {
	return filepath.Join(root, IndexRelPath)
}

// LoadProjectIndex reads and decodes a ProjectIndex from path. A missing
// file is reported via the returned error so the caller can distinguish
// "no index yet" from a corrupt one using os.IsNotExist.
func LoadProjectIndex(path string) (*ProjectIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx ProjectIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse project index: %w", err)
	}
	return &idx, nil
}

// SaveProjectIndex atomically writes idx to path: encode to a temp file in
// the same directory, then rename over the target, so a crash mid-write
// never leaves a truncated index behind.
func SaveProjectIndex(path string, idx *ProjectIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create project index dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write project index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename project index: %w", err)
	}
	return nil
}
