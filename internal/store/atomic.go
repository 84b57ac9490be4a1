// Package store implements the JSON Store (C10): atomic read/write of the
// exercise catalog files, the shared activity pools, the history file, and
// the last-plan artifact, using goccy/go-json as the encode/decode layer.
// Like the teacher's internal/database, it owns the only file-I/O boundary
// in the module — every domain package receives already-decoded values.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path by first writing to a sibling ".tmp" file
// and renaming it over the target, matching the teacher's
// "never leave a half-written file" migration-safety discipline.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, path, err)
	}
	return nil
}
