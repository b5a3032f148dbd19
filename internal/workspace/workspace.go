// Package workspace is the filesystem the generators write into. Paths are
// resolved against a root directory; new files are created exclusively so
// existing output is never truncated.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrExists is returned by Create when the target file is already present.
var ErrExists = fs.ErrExist

// Workspace is a directory of sources and generated artifacts.
type Workspace struct {
	Root string
}

// New returns a workspace rooted at root ("." when empty).
func New(root string) *Workspace {
	if root == "" {
		root = "."
	}
	return &Workspace{Root: root}
}

// Path resolves name against the root. Absolute names are returned as is.
func (w *Workspace) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.Root, name)
}

// SourceFiles returns the names of the regular files in the root whose
// name ends in ext, sorted. Subdirectories are not searched.
func (w *Workspace) SourceFiles(ext string) ([]string, error) {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", w.Root, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// Exists reports whether name is present.
func (w *Workspace) Exists(name string) bool {
	_, err := os.Stat(w.Path(name))
	return err == nil
}

// Open opens name for reading.
func (w *Workspace) Open(name string) (*os.File, error) {
	f, err := os.Open(w.Path(name))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

// Contains reports whether any line of name holds needle.
func (w *Workspace) Contains(name, needle string) (bool, error) {
	data, err := os.ReadFile(w.Path(name))
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	return strings.Contains(string(data), needle), nil
}

// Create writes content to a new file. It fails with ErrExists rather
// than touching a file that is already there.
func (w *Workspace) Create(name, content string) error {
	f, err := os.OpenFile(w.Path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("creating %s: %w", name, ErrExists)
		}
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}

// Append adds content to the end of name, creating it if needed.
func (w *Workspace) Append(name, content string) error {
	f, err := os.OpenFile(w.Path(name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", name, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending to %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	return nil
}

// AppendLine adds line to the end of name on a line of its own, creating
// the file if needed.
func (w *Workspace) AppendLine(name, line string) error {
	f, err := os.OpenFile(w.Path(name), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if last[0] != '\n' {
			line = "\n" + line
		}
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("appending to %s: %w", name, err)
	}
	return nil
}
