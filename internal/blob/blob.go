// Package blob stores the raw file bytes. Content lives under a path (or
// object key) derived solely from the record id — never from caller-supplied
// names — so uploads cannot traverse or collide.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store reads and writes blob content keyed by record id.
type Store interface {
	Put(ctx context.Context, id string, r io.Reader) (int64, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

// Disk keeps blobs as flat files under a data directory. The afero
// abstraction lets tests run against an in-memory filesystem.
type Disk struct {
	fs  afero.Fs
	dir string
}

// NewDisk creates the data directory if needed and returns a disk store.
func NewDisk(fs afero.Fs, dir string) (*Disk, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Disk{fs: fs, dir: dir}, nil
}

func (d *Disk) path(id string) string {
	return filepath.Join(d.dir, id)
}

// Put writes the content under the id. Write goes to a temp file first and
// is renamed into place, so a crashed upload never leaves a partial blob
// under a servable path.
func (d *Disk) Put(_ context.Context, id string, r io.Reader) (int64, error) {
	dst := d.path(id)
	tmp := dst + ".tmp"

	f, err := d.fs.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		_ = d.fs.Remove(tmp)
		return 0, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = d.fs.Remove(tmp)
		return 0, fmt.Errorf("close blob: %w", err)
	}
	if err := d.fs.Rename(tmp, dst); err != nil {
		_ = d.fs.Remove(tmp)
		return 0, fmt.Errorf("rename blob: %w", err)
	}
	return n, nil
}

// Open returns a reader over the stored content. The caller closes it.
func (d *Disk) Open(_ context.Context, id string) (io.ReadCloser, error) {
	f, err := d.fs.Open(d.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", id, ErrMissing)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Delete removes the content. Removing an already-absent blob is not an
// error; the metadata row is the source of truth for existence.
func (d *Disk) Delete(_ context.Context, id string) error {
	err := d.fs.Remove(d.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
