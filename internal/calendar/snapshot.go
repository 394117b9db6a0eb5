package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/runnerr0/factbook/internal/facts"
)

// SnapshotLayout is the UTC timestamp embedded in snapshot names.
const SnapshotLayout = "20060102-150405"

// SnapshotName returns "<stem>-YYYYmmdd-HHMMSS<ext>" for src at now.
func SnapshotName(src string, now time.Time) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + now.UTC().Format(SnapshotLayout) + ext
}

// Snapshot copies src into dir under a timestamped name and returns the
// new path. The source is never modified and its modification time is
// carried over.
func Snapshot(src, dir string, now time.Time) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat calendar: %w", err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read calendar: %w", err)
	}

	dest := filepath.Join(dir, SnapshotName(src, now))
	if err := facts.WriteAtomic(dest, data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("set snapshot times: %w", err)
	}
	return dest, nil
}
