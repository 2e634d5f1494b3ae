// Package file persists the store snapshot as a single JSON file on disk.
package file

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/store"
)

// Persister writes the snapshot with a temp-file + rename so a crash mid-write
// never leaves a truncated snapshot behind.
type Persister struct {
	path string
}

var _ store.Persister = (*Persister)(nil)

func NewPersister(path string) *Persister {
	return &Persister{path: path}
}

func (p *Persister) Save(data []byte) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating snapshot dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing snapshot")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing snapshot")
	}
	if err = os.Rename(tmp.Name(), p.path); err != nil {
		return errors.Wrap(err, "replacing snapshot")
	}
	return nil
}

func (p *Persister) Load() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading snapshot")
	}
	return data, nil
}
