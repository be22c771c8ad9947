package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/fuzeworks/fuzeworks/pkg/types"
)

// MemoryStore is an in-process Store. Records are copied on the way in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	modules  map[string][]byte
	register map[string][]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		modules:  make(map[string][]byte),
		register: make(map[string][]string),
	}
}

// SaveModule upserts a module record
func (s *MemoryStore) SaveModule(record *types.ModuleRecord) error {
	if record == nil || record.Name() == "" {
		return fmt.Errorf("module record without name")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.modules[record.Name()] = data
	s.mu.Unlock()
	return nil
}

// GetModule returns the record for name, or ErrNotFound
func (s *MemoryStore) GetModule(name string) (*types.ModuleRecord, error) {
	s.mu.RLock()
	data, ok := s.modules[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("module %s: %w", name, ErrNotFound)
	}
	var record types.ModuleRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListModules returns every module record ordered by name
func (s *MemoryStore) ListModules() ([]*types.ModuleRecord, error) {
	s.mu.RLock()
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	records := make([]*types.ModuleRecord, 0, len(names))
	for _, name := range names {
		record, err := s.GetModule(name)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteModule removes a module record
func (s *MemoryStore) DeleteModule(name string) error {
	s.mu.Lock()
	delete(s.modules, name)
	s.mu.Unlock()
	return nil
}

// SaveRegister replaces the stored event register
func (s *MemoryStore) SaveRegister(register map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register = copyRegister(register)
	return nil
}

// LoadRegister returns a copy of the stored event register
func (s *MemoryStore) LoadRegister() (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRegister(s.register), nil
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }

func copyRegister(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for name, modules := range in {
		out[name] = append([]string(nil), modules...)
	}
	return out
}
