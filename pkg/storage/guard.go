package storage

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Validation errors returned by ValidateFilename. Their text is surfaced to
// API callers verbatim.
var (
	ErrEmptyName   = errors.New("Filename cannot be empty")
	ErrInvalidName = errors.New("Invalid filename")
	ErrHiddenName  = errors.New("Hidden files are not allowed")
)

// ErrUnsafePath is returned when a path escapes the storage root.
var ErrUnsafePath = errors.New("Invalid file path")

// ValidateFilename rejects names that could address anything outside the
// storage root or hidden files inside it. This is the rule for destructive
// operations; reads use ValidateServeName.
func ValidateFilename(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, `\`) {
		return ErrInvalidName
	}
	if strings.HasPrefix(name, ".") {
		return ErrHiddenName
	}
	return nil
}

// ValidateServeName rejects names that cannot denote a file directly under
// the storage root: empty names, names with a path separator, hidden names.
// An inner ".." stays allowed here; generated names carry one when a
// truncated stem ends in a dot, and without separators it is a plain
// filename character pair, not a parent reference.
func ValidateServeName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.Contains(name, "/") || strings.Contains(name, `\`) {
		return ErrInvalidName
	}
	if strings.HasPrefix(name, ".") {
		return ErrHiddenName
	}
	return nil
}

// Guard confines filesystem operations to the storage root.
type Guard struct {
	fs   afero.Fs
	root string
}

// NewGuard returns a Guard for the given root path.
func NewGuard(fs afero.Fs, root string) *Guard {
	return &Guard{fs: fs, root: filepath.Clean(root)}
}

// IsWithinRoot reports whether the candidate path, after canonical
// resolution, is the storage root or a descendant of it. A missing final
// component is tolerated so existence checks stay downstream; any other
// resolution failure means not safe.
func (g *Guard) IsWithinRoot(candidate string) bool {
	root, err := g.resolve(g.root)
	if err != nil {
		return false
	}
	resolved, err := g.resolve(candidate)
	if err != nil {
		return false
	}
	if resolved == root {
		return true
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolve canonicalizes a path. Symlinks are followed when the backing
// filesystem can hold them; in-memory filesystems are resolved lexically
// since cleaning is canonical there.
func (g *Guard) resolve(path string) (string, error) {
	path = filepath.Clean(path)
	if _, ok := g.fs.(afero.LinkReader); !ok {
		return path, nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, filepath.Base(path)), nil
}
