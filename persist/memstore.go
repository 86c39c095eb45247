package persist

import "tachometer/core"

// MemoryStore is an in-memory core.KVStore.
// Staged writes become visible to a fresh reader only after Commit,
// matching the flash store.
type MemoryStore struct {
	committed map[string]int32
	staged    map[string]int32

	// Fault injection for tests
	FailGet    error
	FailSet    error
	FailCommit error

	Commits int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		committed: make(map[string]int32),
		staged:    make(map[string]int32),
	}
}

func memKey(namespace, key string) string {
	return namespace + "/" + key
}

// GetI32 returns the staged value if any, else the committed value
func (m *MemoryStore) GetI32(namespace, key string) (int32, error) {
	if m.FailGet != nil {
		return 0, m.FailGet
	}
	k := memKey(namespace, key)
	if v, ok := m.staged[k]; ok {
		return v, nil
	}
	if v, ok := m.committed[k]; ok {
		return v, nil
	}
	return 0, core.ErrNotFound
}

// SetI32 stages a value
func (m *MemoryStore) SetI32(namespace, key string, value int32) error {
	if m.FailSet != nil {
		return m.FailSet
	}
	m.staged[memKey(namespace, key)] = value
	return nil
}

// Commit makes staged values durable
func (m *MemoryStore) Commit() error {
	if m.FailCommit != nil {
		return m.FailCommit
	}
	for k, v := range m.staged {
		m.committed[k] = v
	}
	m.staged = make(map[string]int32)
	m.Commits++
	return nil
}

// Committed returns the durable value of a key
func (m *MemoryStore) Committed(namespace, key string) (int32, bool) {
	v, ok := m.committed[memKey(namespace, key)]
	return v, ok
}

// DropStaged discards uncommitted writes, as a power cut would
func (m *MemoryStore) DropStaged() {
	m.staged = make(map[string]int32)
}
