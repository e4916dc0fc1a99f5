package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/shibing624/file-server/pkg/logging"
)

// ErrNotFound is returned when a named file does not exist under the root.
var ErrNotFound = errors.New("file not found")

// stagingDir holds in-flight uploads. Listings only report regular files
// directly under the root, so it stays invisible.
const stagingDir = ".tmp"

// Store writes and removes files under the storage root. Writes are staged
// in a temporary file and renamed into place, so a concurrent reader never
// observes partial content.
type Store struct {
	fs     afero.Fs
	root   string
	guard  *Guard
	logger *logging.Logger
	now    func() time.Time
}

// NewStore returns a Store rooted at the given directory.
func NewStore(fs afero.Fs, root string, logger *logging.Logger) *Store {
	return &Store{
		fs:     fs,
		root:   filepath.Clean(root),
		guard:  NewGuard(fs, root),
		logger: logger,
		now:    time.Now,
	}
}

// EnsureRoot creates the storage root and its staging directory and verifies
// the root is writable.
func EnsureRoot(fs afero.Fs, root string) error {
	staging := filepath.Join(root, stagingDir)
	if err := fs.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("failed to create storage root: %w", err)
	}
	probe, err := afero.TempFile(fs, staging, "probe-*")
	if err != nil {
		return fmt.Errorf("storage root is not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	if err := fs.Remove(name); err != nil {
		return fmt.Errorf("failed to remove write probe: %w", err)
	}
	return nil
}

// Root returns the cleaned storage root path.
func (s *Store) Root() string { return s.root }

// Save streams the upload into a staging file while hashing it, then renames
// the result to its fingerprinted name. Returns the stored name and the byte
// count.
func (s *Store) Save(originalName string, r io.Reader) (string, int64, error) {
	tmp, err := afero.TempFile(s.fs, filepath.Join(s.root, stagingDir), "upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to stage upload: %w", err)
	}
	tmpName := tmp.Name()
	defer s.discard(tmpName)

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to flush upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close staging file: %w", err)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	name, err := s.place(tmpName, originalName, digest, written)
	if err != nil {
		return "", 0, err
	}
	return name, written, nil
}

// place renames a staged file to its final name. A same-sized file already
// holding that name is replaced in place; a different-sized one means a
// short-fingerprint collision, so the fingerprint is widened.
func (s *Store) place(tmpName, originalName, digest string, size int64) (string, error) {
	now := s.now()
	name := Compose(originalName, digest[:fingerprintLen], now)

	if info, err := s.fs.Stat(filepath.Join(s.root, name)); err == nil && info.Size() != size {
		wide := Compose(originalName, digest[:wideFingerprintLen], now)
		if info, err := s.fs.Stat(filepath.Join(s.root, wide)); err == nil && info.Size() != size {
			s.logger.Warn("fingerprint collision, replacing existing file", "filename", wide)
		}
		name = wide
	}

	if err := s.fs.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}
	return name, nil
}

// discard removes a staging file if it was not renamed away.
func (s *Store) discard(tmpName string) {
	if exists, _ := afero.Exists(s.fs, tmpName); exists {
		if err := s.fs.Remove(tmpName); err != nil {
			s.logger.Debug("failed to remove staging file", "path", tmpName, "error", err)
		}
	}
}

// Remove deletes a stored file by name. The target is confined to the root
// before anything is touched.
func (s *Store) Remove(name string) error {
	target := filepath.Join(s.root, name)
	if !s.guard.IsWithinRoot(target) {
		return ErrUnsafePath
	}
	exists, err := afero.Exists(s.fs, target)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", name, err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.fs.Remove(target); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Open returns the named stored file for reading along with its metadata.
// Directories and anything outside the root come back as ErrNotFound or
// ErrUnsafePath.
func (s *Store) Open(name string) (afero.File, os.FileInfo, error) {
	target := filepath.Join(s.root, name)
	if !s.guard.IsWithinRoot(target) {
		return nil, nil, ErrUnsafePath
	}
	info, err := s.fs.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil, ErrNotFound
	}
	f, err := s.fs.Open(target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, info, nil
}

// WithClock overrides the clock used for date prefixes. Test helper.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}
