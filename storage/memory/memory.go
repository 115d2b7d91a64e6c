// Package memory is an in-process storage.State, used by tests and by the
// development validator when no directory is configured.
package memory

import (
	"sync"

	"xdao.co/wfledger/address"
	"xdao.co/wfledger/storage"
)

type State struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ storage.State = (*State)(nil)

func New() *State {
	return &State{values: map[string][]byte{}}
}

func (s *State) Get(addr string) ([]byte, error) {
	if !address.Valid(addr) {
		return nil, storage.ErrInvalidAddress
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[addr]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *State) Put(addr string, value []byte) error {
	if !address.Valid(addr) {
		return storage.ErrInvalidAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[addr] = append([]byte(nil), value...)
	return nil
}

func (s *State) Delete(addr string) error {
	if !address.Valid(addr) {
		return storage.ErrInvalidAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, addr)
	return nil
}

func (s *State) Has(addr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[addr]
	return ok
}
