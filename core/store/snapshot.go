package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrNoSnapshot is returned by Persister.Load when nothing has been persisted
// yet; it distinguishes "no data" from "storage unavailable".
var ErrNoSnapshot = errors.New("no snapshot available")

type (
	// Persister writes the full store snapshot to durable storage and reads
	// it back verbatim on the next start.
	Persister interface {
		Save(snapshot []byte) error
		Load() ([]byte, error)
	}

	// Source provides the bootstrap document for a collection, keyed by its
	// registered bootstrap key. A missing document yields (nil, nil).
	Source interface {
		Read(key string) ([]byte, error)
	}
)

// encodeLocked marshals the snapshot: a single JSON object with one field per
// collection name, each holding the collection's records in insertion order.
// Callers must hold at least a read lock.
func (s *Store) encodeLocked() ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(s.colls))
	for name, coll := range s.colls {
		recs := coll.recs
		if recs == nil {
			recs = []Record{}
		}
		data, err := json.Marshal(recs)
		if err != nil {
			return nil, errors.Wrapf(err, "marshaling collection %q", name)
		}
		doc[name] = data
	}
	return json.Marshal(doc)
}

// Snapshot returns the current persisted-snapshot representation.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encodeLocked()
}

// LoadSnapshot repopulates every registered collection from the persisted
// snapshot. It returns ErrNoSnapshot when nothing was persisted yet, in which
// case callers fall back to Hydrate.
func (s *Store) LoadSnapshot() error {
	if s.persister == nil {
		return ErrNoSnapshot
	}
	data, err := s.persister.Load()
	if err != nil {
		if errors.Cause(err) == ErrNoSnapshot {
			return ErrNoSnapshot
		}
		return errors.Wrap(err, "loading snapshot")
	}
	if err = s.RestoreSnapshot(data); err != nil {
		return err
	}
	s.mu.Lock()
	s.hydrated = true
	s.mu.Unlock()
	s.fireAllHooks()
	return nil
}

// RestoreSnapshot decodes a snapshot document into the registered
// collections, replacing any in-memory state. Unregistered fields are
// dropped with a warning.
func (s *Store) RestoreSnapshot(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "decoding snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, raw := range doc {
		reg, ok := s.regs[name]
		if !ok {
			if s.logger != nil {
				s.logger.Warn("snapshot holds unregistered collection " + name)
			}
			continue
		}
		recs, err := reg.decode(raw)
		if err != nil {
			return errors.Wrapf(err, "decoding collection %q", name)
		}
		s.colls[name] = newCollection(recs)
	}
	// registered collections missing from the snapshot start out empty
	for _, name := range s.names {
		if _, ok := doc[name]; !ok {
			s.colls[name] = newCollection(nil)
		}
	}
	return nil
}

// Hydrate seeds every registered collection from the bootstrap source,
// replacing any in-memory state. It runs at most once per store; subsequent
// calls are no-ops.
func (s *Store) Hydrate(src Source) error {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	for _, name := range s.names {
		reg := s.regs[name]
		if reg.bootstrapKey == "" { // derived collection, no seed document
			s.colls[name] = newCollection(nil)
			continue
		}
		raw, err := src.Read(reg.bootstrapKey)
		if err != nil {
			s.mu.Unlock()
			return errors.Wrapf(err, "reading bootstrap document %q", reg.bootstrapKey)
		}
		recs, err := reg.decode(raw)
		if err != nil {
			s.mu.Unlock()
			return errors.Wrapf(err, "decoding bootstrap document %q", reg.bootstrapKey)
		}
		s.colls[name] = newCollection(recs)
	}
	s.hydrated = true
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		return err
	}
	s.fireAllHooks()
	return nil
}

func (s *Store) fireAllHooks() {
	s.mu.RLock()
	hooks := make([]func(), 0, len(s.onReplace))
	for _, fns := range s.onReplace {
		hooks = append(hooks, fns...)
	}
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}
