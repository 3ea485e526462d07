// ABOUTME: Icon sinks for headless runs
// ABOUTME: Atomic icon file writer and fan-out to several sinks
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/micmon/micmon-go/pkg/icon"
	"github.com/micmon/micmon-go/pkg/meter"
)

// File writes every icon to a path, replacing the previous one atomically
type File struct {
	path string
}

// NewFile creates a file sink. The directory must exist.
func NewFile(path string) (*File, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("icon directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("icon directory %s is not a directory", dir)
	}
	return &File{path: path}, nil
}

// Path returns the target file
func (f *File) Path() string {
	return f.path
}

// ShowIcon validates data and swaps it into place
func (f *File) ShowIcon(data []byte) error {
	if _, err := icon.Payload(data); err != nil {
		return fmt.Errorf("refusing to write invalid icon: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".micmon-*.ico")
	if err != nil {
		return fmt.Errorf("failed to create temp icon: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write icon: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close icon: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace icon: %w", err)
	}
	return nil
}

// Multi delivers each icon to every sink. All sinks are called even when
// one fails; the first error is returned.
type Multi []meter.Sink

// ShowIcon fans data out to every sink
func (m Multi) ShowIcon(data []byte) error {
	var first error
	for _, s := range m {
		if err := s.ShowIcon(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}
