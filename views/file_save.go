package views

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"motion-logger/utils"
)

// ExportError reports a failed save. In-memory data is never affected, so
// the save can always be retried.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ExportPath picks the destination inside dir. It suggests
// accelerationData.csv; when that exists and overwrite is false it falls
// back to a timestamped name.
func ExportPath(dir string, overwrite bool, at time.Time) string {
	path := filepath.Join(dir, ExportBaseName+ExportExt)
	if overwrite {
		return path
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	return filepath.Join(dir, utils.StampedName(ExportBaseName, at)+ExportExt)
}

// SaveCSV writes text into dir and returns the final path. The file is
// written to a temporary sibling and renamed so a failed save never leaves
// a truncated export behind.
func SaveCSV(dir, text string, overwrite bool, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ExportError{Path: dir, Err: err}
	}
	path := ExportPath(dir, overwrite, at)

	tmp, err := os.CreateTemp(dir, "."+ExportBaseName+"-*.tmp")
	if err != nil {
		return "", &ExportError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", &ExportError{Path: path, Err: err}
	}

	if _, err := tmp.WriteString(text); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", &ExportError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", &ExportError{Path: path, Err: err}
	}
	return path, nil
}
