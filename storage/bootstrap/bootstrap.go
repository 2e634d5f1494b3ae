// Package bootstrap seeds the store from a directory of JSON documents, one
// `<key>.data.json` file per collection.
package bootstrap

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/store"
)

// Dir is a store.Source backed by a directory of seed documents. A missing
// file means the collection starts empty; an unreadable one is an error so
// corrupt seeds fail loud at startup.
type Dir struct {
	path string
}

var _ store.Source = (*Dir)(nil)

func NewDir(path string) *Dir {
	return &Dir{path: path}
}

func (d *Dir) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.path, key+".data.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading bootstrap document %q", key)
	}
	return data, nil
}
