package device

import "sync"

// store is the per-instance attribute cache. A separate loaded marker per
// attribute distinguishes "fetched and empty" from "never fetched"; an
// empty table is a valid, cacheable result.
//
// The mutex makes individual load/store operations safe, but the engine's
// check-then-act sequence (check loaded, fetch, store) is not atomic across
// a network round trip. Concurrent callers racing on the same attribute can
// each trigger a fetch; serializing per attribute is the caller's job, per
// the engine's single-threaded model.
type store struct {
	mu      sync.Mutex
	scalars map[string]any
	tables  map[string]map[string]any
	loaded  map[string]bool
}

func newStore() *store {
	return &store{
		scalars: make(map[string]any),
		tables:  make(map[string]map[string]any),
		loaded:  make(map[string]bool),
	}
}

func (s *store) scalar(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded[name] {
		return nil, false
	}
	return s.scalars[name], true
}

func (s *store) setScalar(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars[name] = v
	s.loaded[name] = true
}

func (s *store) table(name string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded[name] {
		return nil, false
	}
	return s.tables[name], true
}

func (s *store) setTable(name string, rows map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = rows
	s.loaded[name] = true
}

func (s *store) invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scalars, name)
	delete(s.tables, name)
	delete(s.loaded, name)
}

func (s *store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars = make(map[string]any)
	s.tables = make(map[string]map[string]any)
	s.loaded = make(map[string]bool)
}
