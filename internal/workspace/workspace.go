// Package workspace provides the file system operations a merge performs on
// the target model: a snapshot of the table directory before anything is
// touched, and the writes of the merged table files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// BackupLayout is the time layout appended to backup directory names.
const BackupLayout = "20060102_150405"

// FS is the capability a merge needs from the file system.
type FS interface {
	// Snapshot copies dir to a new sibling directory and returns its path.
	Snapshot(dir string) (string, error)
	// WriteFile replaces the content of the file at path.
	WriteFile(path string, data []byte) error
}

// BackupPath returns the sibling directory a snapshot of dir taken at t is
// written to: <dir>_backup_<YYYYMMDD_HHMMSS>.
func BackupPath(dir string, t time.Time) string {
	dir = filepath.Clean(dir)
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"_backup_"+t.Format(BackupLayout))
}

// OS implements FS on the local file system.
type OS struct {
	// Now returns the snapshot time. Defaults to time.Now.
	Now func() time.Time
}

// NewOS returns an FS backed by the local file system.
func NewOS() *OS {
	return &OS{Now: time.Now}
}

// Snapshot copies the tree under dir to BackupPath(dir, now). An existing
// backup with the same timestamp is replaced.
func (o *OS) Snapshot(dir string) (string, error) {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	backup := BackupPath(dir, now())

	if err := os.RemoveAll(backup); err != nil {
		return "", fmt.Errorf("remove previous backup %s: %w", backup, err)
	}
	if err := os.CopyFS(backup, os.DirFS(dir)); err != nil {
		return "", fmt.Errorf("copy %s to %s: %w", dir, backup, err)
	}
	return backup, nil
}

// WriteFile writes data to path, creating it if needed.
func (o *OS) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: table files are shared with the modeling tool
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Memory implements FS without touching the disk. It records every call so
// dry runs can report what a merge would do.
type Memory struct {
	mu        sync.Mutex
	files     map[string][]byte
	snapshots []string
}

// NewMemory returns an empty in-memory FS.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Snapshot records dir and returns the path a real backup would use.
func (m *Memory) Snapshot(dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, dir)
	return BackupPath(dir, time.Now()), nil
}

// WriteFile stores a copy of data under path.
func (m *Memory) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), data...)
	return nil
}

// File returns the last data written to path.
func (m *Memory) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	return data, ok
}

// Paths returns the written paths, sorted.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Snapshots returns the directories passed to Snapshot.
func (m *Memory) Snapshots() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.snapshots...)
}
