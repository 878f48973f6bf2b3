package confidential

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/google/uuid"
)

type memoryValue struct {
	owner      string
	ciphertext []byte
	grants     map[string]struct{}
}

// MemoryStore is an in-process Store used by tests and single-node
// development setups. Values and grants live only for the process lifetime.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[protocol.Handle]*memoryValue
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[protocol.Handle]*memoryValue)}
}

func (s *MemoryStore) Ingest(_ context.Context, owner string, ciphertext []byte) (protocol.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := protocol.Handle(uuid.New().String())
	s.values[handle] = &memoryValue{
		owner:      owner,
		ciphertext: append([]byte(nil), ciphertext...),
		grants:     make(map[string]struct{}),
	}
	return handle, nil
}

func (s *MemoryStore) Grant(_ context.Context, handle protocol.Handle, grantee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[handle]
	if !ok {
		return ErrUnknownHandle
	}
	v.grants[grantee] = struct{}{}
	return nil
}

func (s *MemoryStore) Open(_ context.Context, handle protocol.Handle, caller string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[handle]
	if !ok {
		return nil, ErrUnknownHandle
	}
	if caller != v.owner {
		if _, granted := v.grants[caller]; !granted {
			return nil, ErrNoGrant
		}
	}
	return append([]byte(nil), v.ciphertext...), nil
}
