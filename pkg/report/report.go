// Package report writes run results to disk as JSON and as Allure results.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devicelab-dev/wdakit/pkg/core"
)

// Environment describes where a run executed.
type Environment struct {
	Version  string // wdakit version
	WDAURL   string
	BundleID string
}

// WriteJSON writes the run result to path.
func WriteJSON(path string, result *core.RunResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	return atomicWriteJSON(path, result)
}

// atomicWriteJSON writes v to a temp file next to path and renames it into
// place, so readers never see a partial file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
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
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
