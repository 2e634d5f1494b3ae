// Package dummy keeps the snapshot in memory; used by tests and the admin CLI.
package dummy

import (
	"sync"

	"github.com/mkuu/darasa/core/store"
)

type Persister struct {
	mu   sync.Mutex
	data []byte
}

var _ store.Persister = (*Persister)(nil)

func NewPersister() *Persister {
	return &Persister{}
}

func (p *Persister) Save(data []byte) error {
	p.mu.Lock()
	p.data = append([]byte(nil), data...)
	p.mu.Unlock()
	return nil
}

func (p *Persister) Load() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, store.ErrNoSnapshot
	}
	return append([]byte(nil), p.data...), nil
}
