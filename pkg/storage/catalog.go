package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// FileInfo describes one stored file in a listing.
type FileInfo struct {
	Name          string
	Size          int64
	SizeFormatted string
	Icon          string
	Created       time.Time
}

// Catalog enumerates stored files.
type Catalog struct {
	fs   afero.Fs
	root string
}

// NewCatalog returns a Catalog over the given root.
func NewCatalog(fs afero.Fs, root string) *Catalog {
	return &Catalog{fs: fs, root: root}
}

// List returns the regular files directly under the root, newest first.
// Directories and other non-regular entries, the staging area included,
// are skipped. A missing root lists as empty; any other read failure is
// returned to the caller.
func (c *Catalog) List() ([]FileInfo, error) {
	entries, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage root %s: %w", c.root, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		files = append(files, FileInfo{
			Name:          entry.Name(),
			Size:          entry.Size(),
			SizeFormatted: humanize.IBytes(uint64(entry.Size())),
			Icon:          IconFor(entry.Name()),
			Created:       entry.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Created.After(files[j].Created)
	})
	return files, nil
}
