package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LogRotation moves an oversized or old log file aside at startup so the
// logger always appends to a fresh file.
type LogRotation struct {
	maxSize int64
	maxAge  time.Duration
	now     func() time.Time
}

// NewLogRotation disables a limit when it is zero.
func NewLogRotation(maxSize int64, maxAge time.Duration) *LogRotation {
	return &LogRotation{
		maxSize: maxSize,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (lr *LogRotation) ShouldRotate(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return false
	}

	if lr.maxSize > 0 && info.Size() >= lr.maxSize {
		return true
	}
	return lr.maxAge > 0 && lr.now().Sub(info.ModTime()) >= lr.maxAge
}

// Rotate renames path to <base>-<timestamp><ext> and returns the new name.
func (lr *LogRotation) Rotate(path string) (string, error) {
	timestamp := lr.now().Format("20060102-150405")
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]

	newPath := fmt.Sprintf("%s-%s%s", base, timestamp, ext)
	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("rotate %s: %w", path, err)
	}
	return newPath, nil
}

// RotateIfNeeded rotates path when it is over a limit. A missing file is
// not an error.
func (lr *LogRotation) RotateIfNeeded(path string) (string, error) {
	if path == "" || !lr.ShouldRotate(path) {
		return "", nil
	}
	rotated, err := lr.Rotate(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return rotated, err
}
