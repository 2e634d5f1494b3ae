// Package store holds every entity collection of the dashboard in memory and
// persists a full JSON snapshot of itself on each mutation. Lookups never
// fail: absent collections and unknown identifiers behave as empty results,
// which callers treat as a normal outcome. Mutations only return an error
// when the snapshot could not be persisted.
package store

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
)

// Record is any entity held in a collection.
type Record interface {
	RecordID() string
}

type (
	// collection keeps records in insertion order with an id index so that
	// lookups stay O(1) without changing the observable ordering semantics.
	collection struct {
		recs  []Record
		index map[string]int
	}

	registration struct {
		bootstrapKey string
		decode       func(data []byte) ([]Record, error)
	}

	Store struct {
		mu        sync.RWMutex
		colls     map[string]*collection
		regs      map[string]registration
		names     []string // registration order; fixes the snapshot field set
		persister Persister
		logger    core.Logger
		onReplace map[string][]func()
		hydrated  bool
	}

	Options struct {
		Persister Persister
		Logger    core.Logger
	}
)

func New(opts Options) *Store {
	return &Store{
		colls:     make(map[string]*collection),
		regs:      make(map[string]registration),
		persister: opts.Persister,
		logger:    opts.Logger,
		onReplace: make(map[string][]func()),
	}
}

// Register binds a collection name and bootstrap key to the record type T.
// Registration fixes the snapshot shape and how raw documents are decoded.
// An empty bootstrapKey marks a derived collection with no seed document.
func Register[T Record](s *Store, name, bootstrapKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[name]; ok {
		return
	}
	s.regs[name] = registration{
		bootstrapKey: bootstrapKey,
		decode: func(data []byte) ([]Record, error) {
			if len(data) == 0 {
				return nil, nil
			}
			var recs []T
			if err := json.Unmarshal(data, &recs); err != nil {
				return nil, err
			}
			out := make([]Record, len(recs))
			for i, rec := range recs {
				out[i] = rec
			}
			return out, nil
		},
	}
	s.names = append(s.names, name)
	s.colls[name] = newCollection(nil)
}

// OnReplace registers a hook fired after the named collection is wholesale
// replaced (and after hydration). Derived views subscribe here instead of
// being recomputed from unrelated code paths.
func (s *Store) OnReplace(name string, fn func()) {
	s.mu.Lock()
	s.onReplace[name] = append(s.onReplace[name], fn)
	s.mu.Unlock()
}

func newCollection(recs []Record) *collection {
	coll := &collection{
		recs:  recs,
		index: make(map[string]int, len(recs)),
	}
	for i, rec := range recs {
		coll.index[rec.RecordID()] = i
	}
	return coll
}

// coll returns the named collection, creating it ad hoc for unregistered
// names so that writes to unknown collections behave like writes to empty ones.
func (s *Store) coll(name string) *collection {
	coll, ok := s.colls[name]
	if !ok {
		coll = newCollection(nil)
		s.colls[name] = coll
	}
	return coll
}

// All returns a copy of the named collection in insertion order, or an empty
// slice when the collection is absent.
func All[T Record](s *Store, name string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.colls[name]
	if !ok {
		return []T{}
	}
	out := make([]T, 0, len(coll.recs))
	for _, rec := range coll.recs {
		if t, ok := rec.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the record with the given identifier.
func Get[T Record](s *Store, name, id string) (T, bool) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.colls[name]
	if !ok {
		return zero, false
	}
	pos, ok := coll.index[id]
	if !ok {
		return zero, false
	}
	t, ok := coll.recs[pos].(T)
	return t, ok
}

// Find returns the first record matching the predicate, in insertion order.
func Find[T Record](s *Store, name string, match func(T) bool) (T, bool) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.colls[name]
	if !ok {
		return zero, false
	}
	for _, rec := range coll.recs {
		if t, ok := rec.(T); ok && match(t) {
			return t, true
		}
	}
	return zero, false
}

// Filter returns all records matching the predicate, in insertion order.
func Filter[T Record](s *Store, name string, keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []T{}
	coll, ok := s.colls[name]
	if !ok {
		return out
	}
	for _, rec := range coll.recs {
		if t, ok := rec.(T); ok && keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of records in the named collection.
func (s *Store) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if coll, ok := s.colls[name]; ok {
		return len(coll.recs)
	}
	return 0
}

// Add appends rec to the named collection unless a record with the same
// identifier already exists (first write wins).
func Add[T Record](s *Store, name string, rec T) error {
	s.mu.Lock()
	coll := s.coll(name)
	if _, dup := coll.index[rec.RecordID()]; dup {
		s.mu.Unlock()
		return nil
	}
	coll.index[rec.RecordID()] = len(coll.recs)
	coll.recs = append(coll.recs, rec)
	s.mu.Unlock()
	return s.persist()
}

// Update applies merge to the record with the given identifier. The closure
// receives a copy and returns the replacement; fields it does not touch keep
// their previous values. Missing collections or identifiers are a silent no-op.
func Update[T Record](s *Store, name, id string, merge func(T) T) error {
	s.mu.Lock()
	coll, ok := s.colls[name]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	pos, ok := coll.index[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	cur, ok := coll.recs[pos].(T)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	next := merge(cur)
	coll.recs[pos] = next
	if nid := next.RecordID(); nid != id {
		delete(coll.index, id)
		coll.index[nid] = pos
	}
	s.mu.Unlock()
	return s.persist()
}

// Delete removes the record with the given identifier; silent no-op if absent.
func (s *Store) Delete(name, id string) error {
	s.mu.Lock()
	coll, ok := s.colls[name]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	pos, ok := coll.index[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	coll.recs = append(coll.recs[:pos], coll.recs[pos+1:]...)
	delete(coll.index, id)
	for i := pos; i < len(coll.recs); i++ {
		coll.index[coll.recs[i].RecordID()] = i
	}
	s.mu.Unlock()
	return s.persist()
}

// Replace swaps the entire named collection and fires its OnReplace hooks.
func Replace[T Record](s *Store, name string, recs []T) error {
	s.mu.Lock()
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = rec
	}
	s.colls[name] = newCollection(out)
	hooks := append([]func(){}, s.onReplace[name]...)
	s.mu.Unlock()

	err := s.persist()
	for _, fn := range hooks {
		fn()
	}
	return err
}

func (s *Store) persist() error {
	if s.persister == nil {
		return nil
	}
	s.mu.RLock()
	data, err := s.encodeLocked()
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err = s.persister.Save(data); err != nil {
		if s.logger != nil {
			s.logger.Error("persisting snapshot failed", err)
		}
		return errors.Wrap(err, "persisting snapshot")
	}
	return nil
}
